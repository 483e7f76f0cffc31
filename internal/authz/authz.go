// Package authz resolves an authenticated principal into the permission set
// every downstream handler gates on. Resolution is a pure function of the
// principal's live record and the roles captured in its token at issuance.
package authz

import (
	"errors"

	"github.com/ArbeitTechnology/cid-visitor-backend/internal/models"
)

var (
	ErrAccountInactive   = errors.New("account inactive")
	ErrPrincipalNotFound = errors.New("principal not found")
	ErrInvalidToken      = errors.New("invalid token")
)

type EffectiveClass string

const (
	ClassSuperAdmin   EffectiveClass = "super_admin"
	ClassAdmin        EffectiveClass = "admin"
	ClassOfficer      EffectiveClass = "officer"
	ClassOfficerAdmin EffectiveClass = "officer_admin"
	ClassUser         EffectiveClass = "user"
)

// Principal is whichever of account or officer authenticated this request.
// IssuedRoles are the roles embedded in the bearer token when it was minted;
// for officers they are OR-ed with the live record so freshly granted admin
// access is picked up without invalidating sessions issued before a revoke.
type Principal struct {
	Kind        models.PrincipalKind
	Account     *models.Account
	Officer     *models.Officer
	IssuedRoles []models.Role
}

// Permissions is the canonical descriptor consumed by the HTTP layer.
type Permissions struct {
	EffectiveClass         EffectiveClass
	CanManageOfficers      bool
	CanViewAllVisitors     bool
	CanViewOwnVisitorsOnly bool
	CanCreateVisitor       bool
	IsActive               bool
}

// Resolve computes the permission descriptor for a principal, or fails with
// ErrAccountInactive / ErrPrincipalNotFound.
func Resolve(p Principal) (Permissions, error) {
	switch p.Kind {
	case models.PrincipalOfficer:
		if p.Officer == nil {
			return Permissions{}, ErrPrincipalNotFound
		}
		if p.Officer.Status != models.StatusActive {
			return Permissions{}, ErrAccountInactive
		}
		class := ClassOfficer
		if hasAdmin(p.IssuedRoles) || p.Officer.HasAdminRole() {
			class = ClassOfficerAdmin
		}
		return derive(class), nil

	case models.PrincipalAccount:
		if p.Account == nil {
			return Permissions{}, ErrPrincipalNotFound
		}
		if p.Account.Status != models.StatusActive {
			return Permissions{}, ErrAccountInactive
		}
		switch p.Account.Class {
		case models.AccountClassSuperAdmin:
			return derive(ClassSuperAdmin), nil
		case models.AccountClassAdmin:
			return derive(ClassAdmin), nil
		case models.AccountClassUser:
			return derive(ClassUser), nil
		}
		return Permissions{}, ErrPrincipalNotFound

	default:
		return Permissions{}, ErrPrincipalNotFound
	}
}

func derive(class EffectiveClass) Permissions {
	p := Permissions{
		EffectiveClass: class,
		IsActive:       true,
	}

	switch class {
	case ClassUser:
		p.CanCreateVisitor = true
		p.CanViewAllVisitors = true
	case ClassOfficer:
		p.CanViewOwnVisitorsOnly = true
	case ClassOfficerAdmin:
		p.CanViewOwnVisitorsOnly = true
		p.CanViewAllVisitors = true
		p.CanManageOfficers = true
	case ClassAdmin, ClassSuperAdmin:
		p.CanViewAllVisitors = true
		p.CanManageOfficers = true
	}

	return p
}

func hasAdmin(roles []models.Role) bool {
	for _, r := range roles {
		if r == models.RoleAdmin {
			return true
		}
	}
	return false
}
