package models

import "time"

type Role string

const (
	// RoleAdmin is the only extra role an officer can hold.
	RoleAdmin Role = "admin"
)

// Officer is a staffed position that visitors are routed to. Phone and
// BPNumber are globally unique among officers. When an officer is granted the
// admin role, AccountID points at the admin account carrying that capability
// and the account's OfficerID points back here.
type Officer struct {
	ID           string
	Name         string
	Phone        string
	BPNumber     string
	Designation  string
	Department   string
	Unit         string
	Status       Status
	Roles        []Role
	PasswordHash []byte
	AccountID    *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// HasAdminRole reports whether the live record grants the admin role.
func (o Officer) HasAdminRole() bool {
	for _, r := range o.Roles {
		if r == RoleAdmin {
			return true
		}
	}
	return false
}
