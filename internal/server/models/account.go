package models

import "time"

// Account is an identity provider account.
type Account struct {
	UID           string
	Email         string
	DisplayName   string
	PasswordHash  string
	Disabled      bool
	EmailVerified bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
