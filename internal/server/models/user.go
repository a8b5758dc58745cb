// Package models holds the value types shared by repositories and services.
package models

import "time"

// User is a registered account. Email is unique and compared as stored.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	DisplayName  string
	CreatedAt    time.Time
}
