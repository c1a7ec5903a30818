package authz

import (
	"fmt"
	"sort"

	"github.com/amoylab/catalog/internal/common/cnst"
	"github.com/amoylab/catalog/internal/identity"
)

// Policy maps each gated action to the set of roles allowed to perform it.
// Actions without an entry are not role-gated.
type Policy struct {
	roles map[cnst.ActionType]map[identity.RoleName]struct{}
}

// DefaultRoles is the role table used when configuration does not override it
func DefaultRoles() map[string][]string {
	return map[string][]string{
		string(cnst.ActionCreate):      {"admin", "editor", "approver"},
		string(cnst.ActionUpdate):      {"admin", "editor", "approver"},
		string(cnst.ActionDelete):      {"admin"},
		string(cnst.ActionApprove):     {"admin", "approver"},
		string(cnst.ActionManageUsers): {"admin"},
	}
}

// DefaultPolicy returns the policy built from DefaultRoles
func DefaultPolicy() *Policy {
	p, err := NewPolicy(DefaultRoles())
	if err != nil {
		panic(err)
	}
	return p
}

// NewPolicy builds a policy from an action -> role names table.
// Every mutating action must be present so a typo in configuration cannot open it up.
func NewPolicy(table map[string][]string) (*Policy, error) {
	p := &Policy{roles: make(map[cnst.ActionType]map[identity.RoleName]struct{}, len(table))}
	for action, names := range table {
		a := cnst.ActionType(action)
		if !a.Valid() {
			return nil, fmt.Errorf("policy: unknown action %q", action)
		}
		set := make(map[identity.RoleName]struct{}, len(names))
		for _, name := range names {
			role, err := identity.ParseRole(name)
			if err != nil {
				return nil, fmt.Errorf("policy: action %q: %w", action, err)
			}
			set[role] = struct{}{}
		}
		p.roles[a] = set
	}
	for _, a := range gatedActions {
		if _, ok := p.roles[a]; !ok {
			return nil, fmt.Errorf("policy: missing roles for action %q", a)
		}
	}
	return p, nil
}

// gatedActions must always have a role entry
var gatedActions = []cnst.ActionType{
	cnst.ActionCreate,
	cnst.ActionUpdate,
	cnst.ActionDelete,
	cnst.ActionApprove,
	cnst.ActionManageUsers,
}

// Allows reports whether role may perform action
func (p *Policy) Allows(action cnst.ActionType, role identity.RoleName) bool {
	set, ok := p.roles[action]
	if !ok {
		return false
	}
	_, ok = set[role]
	return ok
}

// Gated reports whether action has a role entry
func (p *Policy) Gated(action cnst.ActionType) bool {
	_, ok := p.roles[action]
	return ok
}

// RolesFor returns the sorted roles allowed to perform action
func (p *Policy) RolesFor(action cnst.ActionType) []identity.RoleName {
	out := make([]identity.RoleName, 0, len(p.roles[action]))
	for r := range p.roles[action] {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Permissions returns the actions a role is granted, as stored on the role row
func (p *Policy) Permissions(role identity.RoleName) map[string]any {
	perms := map[string]any{}
	for action, set := range p.roles {
		if _, ok := set[role]; ok {
			perms[string(action)] = true
		}
	}
	return perms
}
