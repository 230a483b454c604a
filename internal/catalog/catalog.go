// Package catalog implements the shared hierarchical catalog engine: tree
// assembly, breadcrumb resolution, ownership-gated mutations and ranked
// search over the per-domain catalog trees.
package catalog

import (
	"github.com/harmonia-app/harmonia/internal/model"
	"github.com/harmonia-app/harmonia/internal/service"
)

// Service exposes the catalog operations consumed by route and CLI
// collaborators. It holds no mutable state; every operation is a pure
// function over data fetched from the persistence gateway, so concurrent
// requests need no in-process coordination.
type Service struct {
	store service.Storage
}

// NewService creates a catalog service backed by the given storage.
func NewService(store service.Storage) *Service {
	return &Service{store: store}
}

// Breadcrumb is one ancestor entry on the path from a tree root down to an
// item's immediate parent.
type Breadcrumb struct {
	ID    string
	Name  string
	Icon  string
	Color string
}

// ParentSummary is the compact parent reference attached to search results.
type ParentSummary struct {
	ID   string
	Name string
	Slug string
}

// ItemDetail is the shape all single-item read and create paths return: the
// item with its parent, direct children and breadcrumb trail. UsageCount is
// populated only when requested.
type ItemDetail struct {
	Parent      *model.CatalogItem
	UsageCount  *int
	Item        model.CatalogItem
	Children    []model.CatalogItem
	Breadcrumbs []Breadcrumb
}

// ListInput selects a flat or parent-scoped slice of one catalog tree.
type ListInput struct {
	ParentID        *string
	CatalogType     model.CatalogType
	IncludeInactive bool
}

// CreateInput carries the caller-settable fields of a new catalog item.
// Slug is derived from Name when empty.
type CreateInput struct {
	ParentID    *string
	CatalogType model.CatalogType
	Name        string
	Slug        string
	Description string
	Icon        string
	Color       string
	Metadata    string
	SortOrder   int
}

// DeleteOutcome distinguishes a hard delete from a usage-gated soft delete.
type DeleteOutcome string

const (
	// OutcomeDeleted means the row was removed.
	OutcomeDeleted DeleteOutcome = "deleted"
	// OutcomeDeactivated means outstanding references kept the row and it
	// was marked inactive instead.
	OutcomeDeactivated DeleteOutcome = "deactivated"
)

// DeleteResult reports how a delete resolved.
type DeleteResult struct {
	Outcome    DeleteOutcome
	UsageCount int
}

// SearchInput are the parameters of a ranked catalog search.
type SearchInput struct {
	ParentID    *string
	CatalogType model.CatalogType
	Query       string
	Limit       int
	Offset      int
}

// SearchResult is one ranked match with its enrichment.
type SearchResult struct {
	Parent         *ParentSummary
	Item           model.CatalogItem
	Breadcrumbs    []Breadcrumb
	Children       []model.CatalogItem
	RelevanceScore int
}

// SearchPage is a slice of the fully ranked match set.
type SearchPage struct {
	Results    []SearchResult
	Count      int
	TotalCount int
	Limit      int
	Offset     int
	HasMore    bool
}

// Search pagination bounds.
const (
	DefaultSearchLimit = 20
	MaxSearchLimit     = 100
	MinQueryLength     = 2
)
