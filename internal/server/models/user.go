// Package models holds server-only persistence types.
package models

import "time"

// User is an account that owns movies.
type User struct {
	ID           string
	UserName     string
	PasswordHash string
	CreatedAt    time.Time
}
