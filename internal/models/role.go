package models

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Role of an authenticated account
// The set is closed: use ParseRole to build one from untrusted input
type Role string

const (
	RoleClient       Role = "client"
	RoleCollaborator Role = "collaborator"
	RoleAdmin        Role = "admin"
)

func ParseRole(s string) (Role, error) {
	switch r := Role(strings.ToLower(strings.TrimSpace(s))); r {
	case RoleClient, RoleCollaborator, RoleAdmin:
		return r, nil
	default:
		return "", fmt.Errorf("unknown role %q", s)
	}
}

func (r Role) String() string { return string(r) }

// Staff roles act on behalf of a company
func (r Role) IsStaff() bool { return r == RoleCollaborator || r == RoleAdmin }

func (r Role) CanAward() bool           { return r.IsStaff() }
func (r Role) CanListCompanyData() bool { return r.IsStaff() }
func (r Role) CanManageRewards() bool   { return r == RoleAdmin }
func (r Role) CanViewReports() bool     { return r == RoleAdmin }
func (r Role) CanRedeem() bool          { return r == RoleClient }

// Principal is the authenticated identity supplied to every core operation
// CompanyID is set for staff roles only
type Principal struct {
	UserID    uuid.UUID
	Role      Role
	CompanyID *uuid.UUID
}

// Company the principal acts for; uuid.Nil when the principal is not staff
func (p Principal) Company() uuid.UUID {
	if p.CompanyID == nil {
		return uuid.Nil
	}
	return *p.CompanyID
}
