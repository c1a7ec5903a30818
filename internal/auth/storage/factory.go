package storage

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/amoylab/catalog/internal/common/cnst"
	"github.com/amoylab/catalog/internal/common/config"
)

// NewStore creates a new refresh token store based on configuration
func NewStore(logger *zap.Logger, cfg *config.TokenStoreConfig) (Store, error) {
	logger.Info("Initializing token storage", zap.String("type", cfg.Type))
	switch cfg.Type {
	case cnst.TokenStoreMemory:
		return NewMemoryStorage(), nil
	case cnst.TokenStoreRedis:
		return NewRedisStorage(cfg.Redis)
	default:
		return nil, fmt.Errorf("unsupported token storage type: %s", cfg.Type)
	}
}
