package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/amoylab/catalog/internal/apiserver/database"
	"github.com/amoylab/catalog/internal/catalog"
	"github.com/amoylab/catalog/internal/common/cnst"
	"github.com/amoylab/catalog/internal/common/dto"
	"github.com/amoylab/catalog/internal/identity"
	"go.uber.org/zap"
)

const (
	demoBusiness = "Demo Business"
	demoPassword = "demo-password"
)

func seed(ctx context.Context, demo bool) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	lg := initLogger(cfg)
	defer lg.Sync()

	db := initDatabase(lg, &cfg.Database)
	defer db.Close()

	policy := initPolicy(lg, &cfg.Policy)
	return seedDatabase(ctx, lg, catalog.NewService(db, policy, lg), db, demo)
}

// seedDatabase creates the roles and, when demo is set, a demo business whose
// admin is "demo_admin" and which has one more user per remaining role
func seedDatabase(ctx context.Context, lg *zap.Logger, svc *catalog.Service, db database.Database, demo bool) error {
	if err := database.InitDefaultRoles(ctx, db, svc.Policy()); err != nil {
		return err
	}
	lg.Info("roles seeded", zap.Int("count", len(identity.Roles)))
	if !demo {
		return nil
	}

	admin, err := svc.Register(ctx, &dto.RegisterRequest{
		Username:     "demo_admin",
		Email:        "admin@demo.local",
		Password:     demoPassword,
		BusinessName: demoBusiness,
	})
	if errors.Is(err, cnst.ErrConflict) {
		lg.Info("demo business already exists", zap.String("business", demoBusiness))
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to create demo business: %w", err)
	}

	for _, role := range identity.Roles {
		if role == identity.RoleAdmin {
			continue
		}
		username := "demo_" + role.String()
		if _, err := svc.CreateUser(ctx, admin.Actor(), &dto.CreateUserRequest{
			Username: username,
			Email:    role.String() + "@demo.local",
			Password: demoPassword,
			Role:     role.String(),
		}); err != nil {
			return fmt.Errorf("failed to create %s: %w", username, err)
		}
	}
	lg.Info("demo business seeded", zap.String("business", demoBusiness), zap.String("password", demoPassword))
	return nil
}
