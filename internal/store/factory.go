package store

import (
	"fmt"

	"ckpt-go/internal/ckpt"
	"ckpt-go/internal/config"
)

// NewStoreFromConfig creates a RestorePointStore based on the registry
// config type.
func NewStoreFromConfig(cfg config.RegistryConfig) (ckpt.RestorePointStore, error) {
	switch cfg.Type {
	case "memory":
		return NewMemoryStore(), nil
	case "file":
		if cfg.StatePath == "" {
			return nil, fmt.Errorf("file registry requires state_path to be set")
		}
		return NewFileStore(cfg.StatePath), nil
	default:
		return nil, fmt.Errorf("unknown registry type: %s", cfg.Type)
	}
}
