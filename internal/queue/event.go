// Package queue defines message payloads exchanged over the message
// broker and the background consumer for the dev mailer.
package queue

// PasswordResetRequestedEvent is published when a user asks for a
// password reset. The mailer consuming the queue has everything it
// needs to compose the message without touching the primary database;
// the reset link embeds the 15-minute token.
type PasswordResetRequestedEvent struct {
	UserID      uint64 `json:"user_id"`
	Email       string `json:"email"`
	FirstName   string `json:"first_name"`
	ResetLink   string `json:"reset_link"`
	ExpiresInMn int    `json:"expires_in_minutes"`
	RequestedAt string `json:"requested_at"`
}
