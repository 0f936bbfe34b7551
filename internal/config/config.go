package config // package config loads application configuration from environment variables

import (
	"log"
	"os"
)

// Config holds all runtime configuration values. Each field
// corresponds to an environment variable. Required values are
// enforced by must(); tunables fall back to sensible defaults.
type Config struct {
	Env              string // application environment (e.g. "dev", "prod")
	Port             string // HTTP port to listen on
	DBUser           string // database username
	DBPass           string // database password (optional)
	DBHost           string // database host address
	DBPort           string // database port number
	DBName           string // database name
	JWTSecret        string // secret signing access and reset tokens
	JWTRefreshSecret string // separate secret signing refresh tokens
	AccessTTLMin     int    // access token time-to-live in minutes
	RefreshTTLDays   int    // refresh token time-to-live in days
	ResetTTLMin      int    // password-reset token time-to-live in minutes
	BcryptCost       int    // bcrypt cost for password hashing
	SearchPageSize   int    // default page size of the public search
	OwnerPageSize    int    // default page size of the owner-scoped listing
	UserPageSize     int    // default page size of the account listing
	QuotaEnforced    bool   // whether listing creation consults the quota guard
	AllowSellDeleted bool   // whether a soft-deleted listing may be marked sold
	ResetLinkBase    string // base URL embedded in password-reset links
	CookieSecure     bool   // Secure attribute on the refresh cookie
}

// Load reads configuration from environment variables. Missing
// required variables abort startup with a fatal log message.
func Load() Config {
	return Config{
		Env:              must("APP_ENV"),
		Port:             must("APP_PORT"),
		DBUser:           must("DB_USER"),
		DBPass:           os.Getenv("DB_PASS"),
		DBHost:           must("DB_HOST"),
		DBPort:           must("DB_PORT"),
		DBName:           must("DB_NAME"),
		JWTSecret:        must("JWT_SECRET"),
		JWTRefreshSecret: must("JWT_REFRESH_SECRET"),
		AccessTTLMin:     envInt("ACCESS_TOKEN_TTL_MIN", 15),
		RefreshTTLDays:   envInt("REFRESH_TOKEN_TTL_DAYS", 7),
		ResetTTLMin:      envInt("RESET_TOKEN_TTL_MIN", 15),
		BcryptCost:       envInt("BCRYPT_COST", 10),
		// The public, owner and account listings page at different
		// sizes; each size is a knob rather than a hidden constant.
		SearchPageSize:   envInt("SEARCH_PAGE_SIZE", 9),
		OwnerPageSize:    envInt("OWNER_PAGE_SIZE", 25),
		UserPageSize:     envInt("USER_PAGE_SIZE", 10),
		QuotaEnforced:    envBool("QUOTA_ENFORCED", true),
		AllowSellDeleted: envBool("ALLOW_SELL_DELETED", true),
		ResetLinkBase:    envStr("RESET_LINK_BASE", "http://localhost:3000/reset-password"),
		CookieSecure:     envBool("COOKIE_SECURE", false),
	}
}

// must retrieves a required environment variable or exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}
