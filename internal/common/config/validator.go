package config

import (
	"fmt"
	"strings"

	"github.com/amoylab/catalog/internal/common/cnst"
)

// Problem is a single invalid setting
type Problem struct {
	Field   string
	Message string
}

// ValidationError collects every problem found in a configuration
type ValidationError struct {
	File     string
	Problems []Problem
}

func (e *ValidationError) Error() string {
	var sb strings.Builder
	sb.WriteString("invalid configuration")
	if e.File != "" {
		sb.WriteString(" in ")
		sb.WriteString(e.File)
	}
	sb.WriteString("\n\n")
	for _, p := range e.Problems {
		sb.WriteString("--> ")
		sb.WriteString(p.Field)
		sb.WriteString(": ")
		sb.WriteString(p.Message)
		sb.WriteString("\n")
	}
	return sb.String()
}

// Validate checks the settings the server cannot start without.
// The role table itself is validated when the policy is built.
func (c *APIServerConfig) Validate(file string) error {
	var problems []Problem
	add := func(field, format string, args ...any) {
		problems = append(problems, Problem{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	if c.Port <= 0 || c.Port > 65535 {
		add("port", "must be between 1 and 65535, got %d", c.Port)
	}

	switch c.Database.Type {
	case cnst.DatabaseSQLite:
		if c.Database.DBName == "" {
			add("database.dbname", "sqlite needs a file path")
		}
	case cnst.DatabasePostgres, cnst.DatabaseMySQL:
		if c.Database.Host == "" {
			add("database.host", "required for %s", c.Database.Type)
		}
		if c.Database.DBName == "" {
			add("database.dbname", "required for %s", c.Database.Type)
		}
	default:
		add("database.type", "unsupported database type %q", c.Database.Type)
	}

	if len(c.JWT.SecretKey) < 32 {
		add("jwt.secret_key", "must be at least 32 characters")
	}

	switch c.TokenStore.Type {
	case cnst.TokenStoreMemory:
	case cnst.TokenStoreRedis:
		if c.TokenStore.Redis.Addr == "" {
			add("token_store.redis.addr", "required for redis token store")
		}
	default:
		add("token_store.type", "unsupported token store type %q", c.TokenStore.Type)
	}

	switch c.I18n.DefaultLang {
	case cnst.LangEN, cnst.LangZH:
	default:
		add("i18n.default_lang", "unsupported language %q", c.I18n.DefaultLang)
	}

	if c.Tracing.SamplerRate < 0 || c.Tracing.SamplerRate > 1 {
		add("tracing.sampler_rate", "must be within [0, 1]")
	}

	if len(problems) == 0 {
		return nil
	}
	return &ValidationError{File: file, Problems: problems}
}
