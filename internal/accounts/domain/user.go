package domain

import "time"

// User is an account row. The id is supplied by the client at sign-up rather
// than generated; id, username and email are each unique.
type User struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string // argon2id PHC encoded, never serialized outward
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
