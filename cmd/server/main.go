package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/hpuma/carmarket/internal/config"
	"github.com/hpuma/carmarket/internal/database"
	"github.com/hpuma/carmarket/internal/handler"
	"github.com/hpuma/carmarket/internal/middleware"
	"github.com/hpuma/carmarket/internal/queue"
	"github.com/hpuma/carmarket/internal/quota"
	"github.com/hpuma/carmarket/internal/repository"
	"github.com/hpuma/carmarket/internal/router"
)

func main() {
	// .env is optional; real deployments set variables in the environment.
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Redis is optional infrastructure: cache, rate limit and token
	// revocation all degrade gracefully when the client is nil.
	rdb := config.NewRedisClient()

	users := repository.NewUserRepo(db)
	vehicles := repository.NewVehicleRepo(db)
	recent := repository.NewRecentViewsRepo(db)
	packages := repository.NewPackageRepo(db)
	brands := repository.NewBrandRepo(db)
	revoked := repository.NewRevocationStore(rdb)

	guard := quota.NewGuard(users, packages, vehicles)

	authH := handler.NewAuthHandler(cfg, users, revoked)
	userH := handler.NewUserHandler(cfg, users, vehicles, recent)
	vehicleH := handler.NewVehicleHandler(cfg, vehicles, users, guard)
	brandH := handler.NewBrandHandler(brands)
	packageH := handler.NewPackageHandler(packages)

	e := echo.New()
	e.HideBanner = true

	rlCfg := config.LoadRateLimitConfig()
	if rlCfg.Enabled {
		e.Use(middleware.NewTokenBucket(rlCfg, rdb))
	}

	var cacheMW echo.MiddlewareFunc
	cacheCfg := config.LoadCacheConfig()
	if cacheCfg.Enabled && rdb != nil {
		cacheMW = middleware.NewRedisCache(cacheCfg, rdb)
	}

	router.RegisterPublic(e, authH, userH, vehicleH, brandH, packageH, cacheMW)
	router.RegisterProtected(e, userH, vehicleH, authH, middleware.AccessAuth(cfg, users, revoked))

	// Password reset mails are delivered asynchronously; the consumer
	// reconnects on its own if the broker drops.
	go func() {
		if err := queue.StartMailConsumer(); err != nil {
			log.Printf("mail consumer: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
