package database

import (
	"github.com/amoylab/catalog/internal/common/config"

	"gorm.io/driver/postgres"
)

// Postgres implements the Database interface using PostgreSQL
type Postgres struct {
	*store
	cfg *config.DatabaseConfig
}

// NewPostgres creates a new Postgres instance
func NewPostgres(cfg *config.DatabaseConfig) (Database, error) {
	db := &Postgres{
		cfg: cfg,
	}

	gormDB, err := open(postgres.Open(db.cfg.GetDSN()))
	if err != nil {
		return nil, err
	}

	db.store = &store{db: gormDB}
	return db, nil
}
