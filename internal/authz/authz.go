// Package authz decides whether an actor may perform an action on the catalog.
// Decide is a pure function over plain data: no I/O and no side effects.
package authz

import (
	"github.com/amoylab/catalog/internal/common/cnst"
	"github.com/amoylab/catalog/internal/identity"
	"github.com/amoylab/catalog/internal/lifecycle"
)

// Reason explains a decision
type Reason string

const (
	ReasonAllowed                Reason = "allowed"
	ReasonAuthenticationRequired Reason = "authentication_required"
	ReasonNotVisible             Reason = "not_visible"
	ReasonRoleMissing            Reason = "role_missing"
	ReasonRoleInsufficient       Reason = "role_insufficient"
	ReasonNotBusinessAdmin       Reason = "not_business_admin"
	ReasonTenantMismatch         Reason = "tenant_mismatch"
	ReasonNoTenant               Reason = "no_tenant"
	ReasonTargetRequired         Reason = "target_required"
	ReasonUnknownAction          Reason = "unknown_action"
)

// Decision is the outcome of an authorization check
type Decision struct {
	Allowed bool
	Reason  Reason
}

// Target is the object an object-level action applies to
type Target struct {
	// BusinessID is the owning tenant; nil only for users still being bootstrapped
	BusinessID *uint
	// Status is set for products; empty for other resources
	Status lifecycle.Status
}

// ProductTarget describes a product owned by businessID
func ProductTarget(businessID uint, status lifecycle.Status) *Target {
	id := businessID
	return &Target{BusinessID: &id, Status: status}
}

// UserTarget describes a user of businessID
func UserTarget(businessID *uint) *Target {
	t := &Target{}
	if businessID != nil {
		id := *businessID
		t.BusinessID = &id
	}
	return t
}

func (t *Target) public() bool {
	return t != nil && t.Status == lifecycle.StatusApproved
}

var (
	allow = Decision{Allowed: true, Reason: ReasonAllowed}
)

func deny(r Reason) Decision {
	return Decision{Allowed: false, Reason: r}
}

// objectScoped actions always need a target in the actor's own tenant
func objectScoped(action cnst.ActionType) bool {
	switch action {
	case cnst.ActionUpdate, cnst.ActionDelete, cnst.ActionApprove, cnst.ActionManageUsers:
		return true
	}
	return false
}

// Decide evaluates the rules in order; the first decisive rule wins.
//
//  1. anonymous actors may only list, or retrieve approved targets
//  2. authenticated retrieve sees approved targets and its own tenant
//  3. authenticated list is always allowed (visibility is filtered by the caller)
//  4. object-scoped mutations require the target to be in the actor's tenant
//  5. create requires the actor to belong to a business
//  6. gated actions require a role listed in the policy
//
// The tenant rule runs before the role rule so a correct role on the wrong
// tenant reports ReasonTenantMismatch.
func Decide(p *Policy, actor *identity.Actor, action cnst.ActionType, target *Target) Decision {
	if !action.Valid() {
		return deny(ReasonUnknownAction)
	}

	if !actor.Authenticated() {
		switch action {
		case cnst.ActionList:
			return allow
		case cnst.ActionRetrieve:
			if target.public() {
				return allow
			}
			return deny(ReasonNotVisible)
		default:
			return deny(ReasonAuthenticationRequired)
		}
	}

	switch action {
	case cnst.ActionList:
		return allow
	case cnst.ActionRetrieve:
		if target == nil {
			return deny(ReasonTargetRequired)
		}
		if target.public() || actor.SameTenant(target.BusinessID) {
			return allow
		}
		return deny(ReasonNotVisible)
	}

	if objectScoped(action) {
		if target == nil {
			return deny(ReasonTargetRequired)
		}
		if !actor.SameTenant(target.BusinessID) {
			return deny(ReasonTenantMismatch)
		}
	}

	if action == cnst.ActionCreate {
		if _, ok := actor.Tenant(); !ok {
			return deny(ReasonNoTenant)
		}
	}

	if p.Gated(action) {
		role, ok := actor.RoleName()
		if !ok {
			return deny(ReasonRoleMissing)
		}
		if !p.Allows(action, role) {
			return deny(ReasonRoleInsufficient)
		}
	}

	if action == cnst.ActionManageUsers && !actor.BusinessAdmin() {
		return deny(ReasonNotBusinessAdmin)
	}

	return allow
}

// Err converts a denial into the error the catalog reports.
// It returns nil for an allowed decision.
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	switch d.Reason {
	case ReasonAuthenticationRequired:
		return cnst.ErrAuthenticationRequired
	case ReasonNotVisible:
		// hide the existence of another tenant's unpublished product
		return cnst.ErrNotFound
	default:
		return cnst.ErrForbidden
	}
}
