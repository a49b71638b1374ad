// Package models holds the rows the identity server persists.
package models

import "time"

// User is a stored identity. PasswordHash is an argon2id string produced by
// cryptox.HashPassword.
type User struct {
	ID            string
	Email         string
	PasswordHash  string
	Profession    string
	FullName      string
	City          string
	State         string
	Specialty     string
	Phone         string
	LicenseNumber string
	CreatedAt     time.Time
}

// ResetEmail is an outbox row for a password reset message.
type ResetEmail struct {
	ID        string
	UserID    string
	Email     string
	Link      string
	CreatedAt time.Time
	SentAt    *time.Time
}
