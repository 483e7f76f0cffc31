package models

import "time"

type PrincipalKind string

const (
	PrincipalAccount PrincipalKind = "account"
	PrincipalOfficer PrincipalKind = "officer"
)

// Session holds a hashed refresh token for either an account or an officer
// principal.
type Session struct {
	ID               string
	PrincipalKind    PrincipalKind
	PrincipalID      string
	RefreshTokenHash []byte
	IPAddress        string
	UserAgent        string
	CreatedAt        time.Time
	LastSeenAt       time.Time
	ExpiresAt        time.Time
}
