package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/harmonia-app/harmonia/internal/common"
	"github.com/harmonia-app/harmonia/internal/config"
	"github.com/harmonia-app/harmonia/internal/model"
	"github.com/harmonia-app/harmonia/internal/storage"
)

// initStorage initializes the storage service with proper path expansion.
func initStorage(ctx context.Context) (*storage.SQLiteStorage, error) {
	// Get database path from config
	dbPath := config.DatabasePath(viper.GetString("database.path"))

	// Initialize storage
	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, err
	}

	// Run migrations
	if err := store.Migrate(ctx); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// requireUser resolves the caller identity from flags or config.
func requireUser() (string, error) {
	userID := strings.TrimSpace(viper.GetString("identity.user_id"))
	if userID == "" {
		return "", fmt.Errorf("caller identity required: pass --user or set identity.user_id")
	}
	return userID, nil
}

// parseCatalogType validates a catalog type argument against the registry.
func parseCatalogType(arg string) (model.CatalogType, error) {
	t := model.CatalogType(strings.TrimSpace(arg))
	if !t.Valid() {
		names := make([]string, 0, len(model.CatalogTypes()))
		for _, known := range model.CatalogTypes() {
			names = append(names, string(known))
		}
		return "", fmt.Errorf("unknown catalog type %q (one of: %s)", arg, strings.Join(names, ", "))
	}
	return t, nil
}

// describeError turns an engine error into the short label shown to users.
func describeError(err error) string {
	switch common.Kind(err) {
	case common.ErrValidation:
		return "invalid input"
	case common.ErrNotFound:
		return "not found"
	case common.ErrForbidden:
		return "not allowed"
	case common.ErrConflict:
		return "conflict"
	default:
		// Storage internals stay in the logs.
		return "internal error"
	}
}

// userMessage renders an engine error for terminal output, preserving
// field-level validation detail and hiding internals.
func userMessage(err error) string {
	var vErr *common.ValidationError
	if errors.As(err, &vErr) {
		return vErr.Error()
	}
	if common.Kind(err) == common.ErrInternal {
		return describeError(err)
	}
	return err.Error()
}
