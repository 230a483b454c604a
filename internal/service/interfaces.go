// Package service defines the interfaces for all application services.
package service

import (
	"context"

	"github.com/harmonia-app/harmonia/internal/model"
)

// ItemFilter defines filtering options for catalog item queries.
//
// VisibleTo expresses the visibility rule at the query layer: when set, only
// system items and items owned by that user match. A nil VisibleTo disables
// the visibility filter; the engine uses that only for scope-wide checks such
// as slug uniqueness, never for read paths.
type ItemFilter struct {
	VisibleTo   *string
	ParentID    *string
	CatalogType model.CatalogType
	Slug        string
	Query       string
	ActiveOnly  bool
	// RootOnly restricts to items with no parent. A nil ParentID alone
	// places no parent constraint at all.
	RootOnly bool
}

// ItemPatch carries the updatable fields of a catalog item. Nil fields are
// left unchanged. CatalogType, ParentID and Slug are frozen after creation
// and deliberately have no place here.
type ItemPatch struct {
	Name        *string
	Description *string
	Icon        *string
	Color       *string
	SortOrder   *int
	IsActive    *bool
}

// Storage defines the contract for the catalog persistence gateway. It is
// the only component that touches the database; the engine treats it as a
// collaborator and performs no storage coordination of its own.
type Storage interface {
	// Catalog item queries
	FindMany(ctx context.Context, filter ItemFilter) ([]model.CatalogItem, error)
	FindByID(ctx context.Context, id string) (*model.CatalogItem, error)
	FindChildren(ctx context.Context, parentID string) ([]model.CatalogItem, error)
	Count(ctx context.Context, filter ItemFilter) (int, error)

	// Catalog item mutations
	CreateItem(ctx context.Context, item model.CatalogItem) (*model.CatalogItem, error)
	UpdateItem(ctx context.Context, id string, patch ItemPatch) (*model.CatalogItem, error)
	DeleteItem(ctx context.Context, id string) error

	// CountUsage aggregates references to a catalog item across the domain
	// tables mapped for its catalog type.
	CountUsage(ctx context.Context, id string, catalogType model.CatalogType) (int, error)

	// Database management
	Migrate(ctx context.Context) error
	BeginTx(ctx context.Context) (Transaction, error)
	Close() error
}

// Transaction represents a database transaction. The usage-count-then-delete
// decision runs inside one of these so a reference inserted concurrently
// cannot slip between the count and the delete.
type Transaction interface {
	Commit() error
	Rollback() error
	// Include all Storage methods for use within transaction
	Storage
}
