package domain

import (
	"errors"
	"slices"
)

// Role identifies which kind of principal a credential belongs to. It is
// derived from the principal's kind and never stored as a mutable field.
type Role string

const (
	RoleSuperAdmin Role = "super_admin"
	RoleAdmin      Role = "admin"
	RoleAlumni     Role = "alumni"
)

var ErrUnknownRole = errors.New("unknown role")

// Roles lists every role in login precedence order.
var Roles = []Role{RoleSuperAdmin, RoleAdmin, RoleAlumni}

func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", ErrUnknownRole
	}
	return r, nil
}

func (r Role) Valid() bool { return slices.Contains(Roles, r) }

func (r Role) String() string { return string(r) }

// PrincipalRef points at a principal of a specific kind. Cross-kind
// references (who created an invitation, who invited an alumni) always carry
// both halves so the target table is never ambiguous.
type PrincipalRef struct {
	Role Role
	ID   string
}

func (r PrincipalRef) IsZero() bool { return r.Role == "" && r.ID == "" }
