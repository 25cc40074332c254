/*
Package database persists the per-user key-value slots that back the
favorites and progress collections. Values are opaque JSON documents.
*/
package database

import (
	"context"
	"errors"
	"fmt"

	"Lumi_V0.1/internal/config"
)

// ErrNotFound is returned by Get when a slot has never been written.
var ErrNotFound = errors.New("slot not found")

// Slot names, one JSON document each per user.
const (
	SlotFavorites = "lumi-favorites"
	SlotProgress  = "lumi-progress"
)

// KV represents durable per-user key-value storage.
type KV interface {
	// Get returns the stored value of slot for userID, or ErrNotFound.
	Get(ctx context.Context, userID, slot string) ([]byte, error)

	// Put replaces the whole value of slot for userID.
	Put(ctx context.Context, userID, slot string, value []byte) error

	// Health returns a map of health status information.
	// The keys and values in the map are driver-specific.
	Health() map[string]string

	// Close releases the underlying connections.
	Close()
}

// Open creates the KV selected by cfg.StorageDriver.
func Open(ctx context.Context, cfg config.Config) (KV, error) {
	switch cfg.StorageDriver {
	case config.StorageMemory, "":
		return NewMemoryKV(), nil
	case config.StorageSQLite:
		return OpenSQLite(ctx, cfg.SQLitePath)
	case config.StoragePostgres:
		return OpenPostgres(ctx, cfg.DatabaseURL)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}
