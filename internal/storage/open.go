package storage

import (
	"fmt"

	"go.uber.org/zap"

	"Paint3D/internal/config"
)

// Open builds the backend named in cfg.
func Open(cfg config.StorageConfig, logger *zap.Logger) (KV, error) {
	switch cfg.Backend {
	case "file":
		kv, err := NewFileKV(cfg.Path, logger)
		if err != nil {
			return nil, err
		}
		return kv, nil
	case "sqlite":
		kv, err := NewSQLiteKV(cfg.Path, logger)
		if err != nil {
			return nil, err
		}
		return kv, nil
	case "memory":
		return NewMemoryKV(), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}
