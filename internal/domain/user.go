// Package domain contains the core business entities and interfaces.
package domain

import (
	"context"
	"strings"
	"time"
)

// GuestIDPrefix marks identities that were self-declared rather than issued
// by the external identity provider.
const GuestIDPrefix = "guest-"

// Gender is the optional gender recorded on a profile.
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

// Valid reports whether g is a recognised gender.
func (g Gender) Valid() bool {
	return g == GenderMale || g == GenderFemale
}

// ActivityLevel is the optional self-reported activity level.
type ActivityLevel string

const (
	ActivitySedentary ActivityLevel = "sedentary"
	ActivityModerate  ActivityLevel = "moderate"
	ActivityActive    ActivityLevel = "active"
)

// Valid reports whether a is a recognised activity level.
func (a ActivityLevel) Valid() bool {
	switch a {
	case ActivitySedentary, ActivityModerate, ActivityActive:
		return true
	}
	return false
}

// User is the canonical identity of a person. Optional profile fields are
// nil until the user fills them in.
type User struct {
	ID            string         `json:"id"`
	Email         string         `json:"email"`
	Name          string         `json:"name"`
	Height        *float64       `json:"height"`
	Age           *int           `json:"age"`
	Gender        *Gender        `json:"gender"`
	ActivityLevel *ActivityLevel `json:"activityLevel"`
	CreatedAt     time.Time      `json:"createdAt"`
}

// ProfileComplete reports whether the user has a height, which BMI needs.
func (u *User) ProfileComplete() bool {
	return u.Height != nil && *u.Height > 0
}

// IdentityCandidate is the set of identity attributes a caller claims.
type IdentityCandidate struct {
	ID    string
	Email string
	Name  string
}

// ExternalProfile is what the identity provider returns for an authorization code.
type ExternalProfile struct {
	ID    string
	Email string
	Name  string
}

// ProfileUpdate carries the profile fields written by UpdateProfile.
type ProfileUpdate struct {
	Height        float64
	Age           *int
	Gender        *Gender
	ActivityLevel *ActivityLevel
}

// IsGuestID reports whether id was generated for a guest login.
func IsGuestID(id string) bool {
	return strings.HasPrefix(id, GuestIDPrefix)
}

// UserRepository defines the port for user persistence operations.
// Lookups return nil, nil when no row matches.
type UserRepository interface {
	GetUserByID(ctx context.Context, id string) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	// CreateUser returns ErrConflict when the id or email is taken.
	CreateUser(ctx context.Context, id, email, name string) (*User, error)
	// RekeyUser moves the row at currentID to newID and sets its name. Logs
	// owned by currentID move with it. Returns nil, nil when currentID is gone
	// and ErrConflict when newID is taken by another row.
	RekeyUser(ctx context.Context, currentID, newID, name string) (*User, error)
	// UpdateProfile reports false when no user has the id.
	UpdateProfile(ctx context.Context, id string, p ProfileUpdate) (bool, error)
}
