package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/amoylab/catalog/internal/common/cnst"
	"github.com/amoylab/catalog/pkg/trace"
)

type (
	APIServerConfig struct {
		Port       int              `yaml:"port"`
		PID        string           `yaml:"pid"`
		Database   DatabaseConfig   `yaml:"database"`
		Logger     LoggerConfig     `yaml:"logger"`
		JWT        JWTConfig        `yaml:"jwt"`
		TokenStore TokenStoreConfig `yaml:"token_store"`
		Metrics    MetricsConfig    `yaml:"metrics"`
		Tracing    trace.Config     `yaml:"tracing"`
		I18n       I18nConfig       `yaml:"i18n"`
		Policy     PolicyConfig     `yaml:"policy"`
		Bootstrap  BootstrapConfig  `yaml:"bootstrap"`
	}

	// I18nConfig represents the internationalization configuration
	I18nConfig struct {
		Path        string `yaml:"path"`         // optional directory overriding the embedded translations
		DefaultLang string `yaml:"default_lang"` // en or zh
	}

	DatabaseConfig struct {
		Type     string `yaml:"type"`     // mysql, postgres, sqlite
		Host     string `yaml:"host"`     // localhost
		Port     int    `yaml:"port"`     // 3306 (for mysql), 5432 (for postgres)
		User     string `yaml:"user"`     // root (for mysql), postgres (for postgres)
		Password string `yaml:"password"` // password
		DBName   string `yaml:"dbname"`   // database name, or file path for sqlite
		SSLMode  string `yaml:"sslmode"`  // disable (for postgres)
	}

	JWTConfig struct {
		SecretKey       string        `yaml:"secret_key"`
		Duration        time.Duration `yaml:"duration"`
		RefreshDuration time.Duration `yaml:"refresh_duration"`
	}

	// TokenStoreConfig selects where refresh tokens live
	TokenStoreConfig struct {
		Type  string                `yaml:"type"` // memory or redis
		Redis TokenStoreRedisConfig `yaml:"redis"`
	}

	TokenStoreRedisConfig struct {
		Addr     string `yaml:"addr"`
		Username string `yaml:"username"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		Prefix   string `yaml:"prefix"`
	}

	MetricsConfig struct {
		Enabled   bool      `yaml:"enabled"`
		Namespace string    `yaml:"namespace"`
		Path      string    `yaml:"path"`
		Buckets   []float64 `yaml:"buckets"`
	}

	// PolicyConfig overrides the action -> roles table
	PolicyConfig struct {
		Roles map[string][]string `yaml:"roles"`
	}

	// BootstrapConfig controls what is created on startup
	BootstrapConfig struct {
		SeedRoles bool `yaml:"seed_roles"`
	}
)

// SetDefaults fills in unset values
func (c *APIServerConfig) SetDefaults() {
	if c.Port == 0 {
		c.Port = 5234
	}
	if c.Database.Type == "" {
		c.Database.Type = cnst.DatabaseSQLite
	}
	if c.Database.Type == cnst.DatabaseSQLite && c.Database.DBName == "" {
		c.Database.DBName = "./data/catalog.db"
	}
	if c.JWT.Duration <= 0 {
		c.JWT.Duration = 24 * time.Hour
	}
	if c.JWT.RefreshDuration <= 0 {
		c.JWT.RefreshDuration = 7 * 24 * time.Hour
	}
	if c.TokenStore.Type == "" {
		c.TokenStore.Type = cnst.TokenStoreMemory
	}
	if c.TokenStore.Redis.Prefix == "" {
		c.TokenStore.Redis.Prefix = "catalog:refresh:"
	}
	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = "catalog"
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = "/metrics"
	}
	if len(c.Metrics.Buckets) == 0 {
		c.Metrics.Buckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5}
	}
	if c.Tracing.ServiceName == "" {
		c.Tracing.ServiceName = cnst.AppName
	}
	if c.I18n.DefaultLang == "" {
		c.I18n.DefaultLang = cnst.LangDefault
	}
}

// GetDSN returns the database connection string
func (c *DatabaseConfig) GetDSN() string {
	switch c.Type {
	case cnst.DatabasePostgres:
		return c.getPostgresDSN()
	case cnst.DatabaseMySQL:
		return c.getMySQLDSN()
	case cnst.DatabaseSQLite:
		if c.DBName == ":memory:" {
			return c.DBName
		}
		// Ensure the directory for the SQLite database exists.
		if err := os.MkdirAll(filepath.Dir(c.DBName), 0755); err != nil {
			panic(fmt.Errorf("failed to create directory for sqlite database: %w", err))
		}
		return c.DBName // For SQLite, DBName is the file path
	default:
		return ""
	}
}

// getPostgresDSN returns PostgreSQL connection string
func (c *DatabaseConfig) getPostgresDSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode)
}

// getMySQLDSN returns MySQL connection string
func (c *DatabaseConfig) getMySQLDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		c.User, c.Password, c.Host, c.Port, c.DBName)
}
