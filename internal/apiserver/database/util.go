package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/amoylab/catalog/internal/authz"
	"github.com/amoylab/catalog/internal/common/cnst"
	"github.com/amoylab/catalog/internal/identity"
	"gorm.io/datatypes"
)

// InitDefaultRoles makes sure every known role exists, with the permissions
// the policy grants it recorded on the row. It is idempotent.
func InitDefaultRoles(ctx context.Context, db Database, policy *authz.Policy) error {
	for _, name := range identity.Roles {
		role := &Role{
			Name:        name.String(),
			Permissions: datatypes.JSONMap(policy.Permissions(name)),
		}
		if err := db.UpsertRole(ctx, role); err != nil {
			return fmt.Errorf("failed to seed role %s: %w", name, err)
		}
	}
	return nil
}

// EnsureBusiness returns the business with the given name, creating it if needed
func EnsureBusiness(ctx context.Context, db Database, name string) (*Business, error) {
	business, err := db.GetBusinessByName(ctx, name)
	if err == nil {
		return business, nil
	}
	if !errors.Is(err, cnst.ErrNotFound) {
		return nil, err
	}
	business = &Business{Name: name}
	if err := db.CreateBusiness(ctx, business); err != nil {
		return nil, err
	}
	return business, nil
}
