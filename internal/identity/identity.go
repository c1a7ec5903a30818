// Package identity describes who is calling the catalog: the business a user
// belongs to and the role that gates what they may do.
package identity

import "fmt"

// RoleName is the name of one of the global roles
type RoleName string

const (
	RoleAdmin    RoleName = "admin"
	RoleEditor   RoleName = "editor"
	RoleApprover RoleName = "approver"
	RoleViewer   RoleName = "viewer"
)

// Roles lists every role in a stable order
var Roles = []RoleName{RoleAdmin, RoleEditor, RoleApprover, RoleViewer}

func (r RoleName) String() string {
	return string(r)
}

// Valid reports whether r is a known role
func (r RoleName) Valid() bool {
	switch r {
	case RoleAdmin, RoleEditor, RoleApprover, RoleViewer:
		return true
	}
	return false
}

// ParseRole converts a role name, rejecting unknown values
func ParseRole(s string) (RoleName, error) {
	r := RoleName(s)
	if !r.Valid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

// Actor is the caller of a core operation.
//
// A nil *Actor is the anonymous caller. Business and role are optional: a user
// being bootstrapped may have neither, and callers must go through Tenant and
// RoleName so the missing case is always handled.
type Actor struct {
	UserID          uint
	Username        string
	businessID      *uint
	role            *RoleName
	isBusinessAdmin bool
}

// NewActor builds an authenticated actor. businessID and role may be nil.
func NewActor(userID uint, username string, businessID *uint, role *RoleName, isBusinessAdmin bool) *Actor {
	a := &Actor{
		UserID:          userID,
		Username:        username,
		isBusinessAdmin: isBusinessAdmin,
	}
	if businessID != nil {
		id := *businessID
		a.businessID = &id
	}
	if role != nil {
		r := *role
		a.role = &r
	}
	return a
}

// Authenticated reports whether the actor is a known user
func (a *Actor) Authenticated() bool {
	return a != nil
}

// Tenant returns the business the actor belongs to
func (a *Actor) Tenant() (uint, bool) {
	if a == nil || a.businessID == nil {
		return 0, false
	}
	return *a.businessID, true
}

// RoleName returns the actor's role
func (a *Actor) RoleName() (RoleName, bool) {
	if a == nil || a.role == nil {
		return "", false
	}
	return *a.role, true
}

// BusinessAdmin reports whether the actor administers its business
func (a *Actor) BusinessAdmin() bool {
	return a != nil && a.isBusinessAdmin
}

// SameTenant reports whether the actor belongs to businessID
func (a *Actor) SameTenant(businessID *uint) bool {
	tenant, ok := a.Tenant()
	if !ok || businessID == nil {
		return false
	}
	return tenant == *businessID
}

func (a *Actor) String() string {
	if a == nil {
		return "anonymous"
	}
	return fmt.Sprintf("user:%d", a.UserID)
}
