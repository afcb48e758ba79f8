package models

import "publicseva-be/apperrors"

// Role enum
type Role string

const (
	RoleCitizen     Role = "citizen"
	RoleCoordinator Role = "coordinator"
	RoleAdmin       Role = "admin"
)

// StaffRoles may manage issues: change status, edit and delete.
var StaffRoles = []Role{RoleAdmin, RoleCoordinator}

func (r Role) Valid() bool {
	switch r {
	case RoleCitizen, RoleCoordinator, RoleAdmin:
		return true
	}
	return false
}

// In reports whether r is one of roles.
func (r Role) In(roles ...Role) bool {
	for _, allowed := range roles {
		if r == allowed {
			return true
		}
	}
	return false
}

// RequireRole is the single role check used by route guards and services.
func RequireRole(actual Role, allowed ...Role) error {
	if !actual.Valid() || !actual.In(allowed...) {
		return apperrors.Forbidden("You do not have permission to perform this action")
	}
	return nil
}

// Identity is what a verified token says about the caller.
type Identity struct {
	UserID   string `json:"id"`
	Role     Role   `json:"role"`
	District string `json:"district"`
}
