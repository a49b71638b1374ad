// Package models defines client-side data models shared by the identity
// backends, the session store and the orchestrating auth service.
package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/clinauth/internal/common"
)

// Profession is the account kind. It decides which screens a user gets.
type Profession string

const (
	ProfessionClinician Profession = "clinician"
	ProfessionPatient   Profession = "patient"
)

// Valid reports whether p is a known profession.
func (p Profession) Valid() bool {
	return p == ProfessionClinician || p == ProfessionPatient
}

// Profile holds the optional, free-form fields of a User.
type Profile struct {
	FullName      string `json:"full_name,omitempty"`
	City          string `json:"city,omitempty"`
	State         string `json:"state,omitempty"`
	Specialty     string `json:"specialty,omitempty"`
	Phone         string `json:"phone,omitempty"`
	LicenseNumber string `json:"license_number,omitempty"`
}

// User is an identity record. Email is unique per backend after
// normalization (see common.NormalizeEmail).
type User struct {
	ID         string     `json:"id"`
	Email      string     `json:"email"`
	Profession Profession `json:"profession"`
	Profile
	CreatedAt time.Time `json:"created_at"`
}

// HasRequiredFields reports whether u carries the fields every session
// must have to be trusted.
func (u *User) HasRequiredFields() bool {
	return u != nil && u.ID != "" && u.Email != "" && u.Profession != ""
}

// Credentials are the inputs of a login.
type Credentials struct {
	Email    string
	Password []byte
}

// Validate performs the cheap checks done before any backend is called.
func (c Credentials) Validate() error {
	if err := ValidateEmail(c.Email); err != nil {
		return err
	}
	if len(c.Password) == 0 {
		return fmt.Errorf("%w: password required", common.ErrValidation)
	}
	return nil
}

// MinPasswordLength is the shortest password accepted on register and reset.
const MinPasswordLength = 6

// RegisterData are the inputs of a registration.
type RegisterData struct {
	Email      string
	Password   []byte
	Profession Profession
	Profile    Profile
}

// Validate performs the cheap checks done before any backend is called.
func (d RegisterData) Validate() error {
	if err := ValidateEmail(d.Email); err != nil {
		return err
	}
	if err := ValidatePassword(d.Password); err != nil {
		return err
	}
	if !d.Profession.Valid() {
		return fmt.Errorf("%w: unknown profession %q", common.ErrValidation, d.Profession)
	}
	return nil
}

// ValidatePassword enforces MinPasswordLength.
func ValidatePassword(password []byte) error {
	if len(password) < MinPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters", common.ErrValidation, MinPasswordLength)
	}
	return nil
}

// ValidateEmail requires an "@" with a dotted domain after it.
func ValidateEmail(email string) error {
	if !validEmail(email) {
		return fmt.Errorf("%w: malformed email", common.ErrValidation)
	}
	return nil
}

func validEmail(email string) bool {
	email = strings.TrimSpace(email)
	at := strings.Index(email, "@")
	if at <= 0 {
		return false
	}
	domain := email[at+1:]
	dot := strings.LastIndex(domain, ".")
	return dot > 0 && dot < len(domain)-1
}

// LocalRecord is the shape of a user in the local users list. The hash is
// kept so the account can be migrated to the remote backend with its
// credentials intact.
type LocalRecord struct {
	User
	PasswordHash string `json:"password_hash,omitempty"`
}
