package database

import (
	"github.com/amoylab/catalog/internal/common/config"

	"gorm.io/driver/mysql"
)

// MySQL implements the Database interface using MySQL
type MySQL struct {
	*store
	cfg *config.DatabaseConfig
}

// NewMySQL creates a new MySQL instance
func NewMySQL(cfg *config.DatabaseConfig) (Database, error) {
	db := &MySQL{
		cfg: cfg,
	}

	gormDB, err := open(mysql.Open(db.cfg.GetDSN()))
	if err != nil {
		return nil, err
	}

	db.store = &store{db: gormDB}
	return db, nil
}
