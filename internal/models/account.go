package models

import "time"

type AccountClass string

const (
	AccountClassSuperAdmin AccountClass = "super_admin"
	AccountClassAdmin      AccountClass = "admin"
	AccountClassUser       AccountClass = "user"
)

type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// Account is a principal that can authenticate directly with email/phone and
// password. The first account ever created becomes super_admin; everyone else
// starts as user.
type Account struct {
	ID           string
	Name         string
	Email        string
	Phone        string
	PasswordHash []byte
	Class        AccountClass
	Status       Status
	OfficerID    *string
	LastLoginAt  *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
