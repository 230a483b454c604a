// Package storage provides the data persistence layer for the harmonia catalog.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/harmonia-app/harmonia/internal/model"
)

// Validation errors.
var (
	ErrNilContext         = errors.New("context cannot be nil")
	ErrEmptyString        = errors.New("string parameter cannot be empty")
	ErrInvalidItem        = errors.New("invalid catalog item")
	ErrUnknownCatalogType = errors.New("unknown catalog type")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateItem checks the storage-level invariants of a catalog item before
// it is written.
func validateItem(item *model.CatalogItem) error {
	if !item.CatalogType.Valid() {
		return fmt.Errorf("%w: %s", ErrUnknownCatalogType, item.CatalogType)
	}
	if strings.TrimSpace(item.Name) == "" {
		return fmt.Errorf("%w: missing name", ErrInvalidItem)
	}
	if strings.TrimSpace(item.Slug) == "" {
		return fmt.Errorf("%w: missing slug", ErrInvalidItem)
	}
	if item.IsSystem != (item.UserID == nil) {
		return fmt.Errorf("%w: system flag and owner are mutually exclusive", ErrInvalidItem)
	}
	if item.Level < 0 {
		return fmt.Errorf("%w: negative level", ErrInvalidItem)
	}
	return nil
}
