package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/harmonia-app/harmonia/internal/common"
	"github.com/harmonia-app/harmonia/internal/model"
	"github.com/harmonia-app/harmonia/internal/service"
)

// validateName enforces the display-name length bounds.
func validateName(name string) error {
	n := utf8.RuneCountInString(strings.TrimSpace(name))
	if n < model.MinNameLength || n > model.MaxNameLength {
		return common.NewValidationError("name",
			fmt.Sprintf("must be between %d and %d characters", model.MinNameLength, model.MaxNameLength))
	}
	return nil
}

// Create validates and persists a new user-owned catalog item. The created
// item is returned in the same detail shape the read paths use, with its
// parent resolved and an empty children list.
func (s *Service) Create(ctx context.Context, in CreateInput, userID string) (*ItemDetail, error) {
	if !in.CatalogType.Valid() {
		return nil, common.NewValidationError("catalogType", "unknown catalog type "+string(in.CatalogType))
	}
	if err := validateName(in.Name); err != nil {
		return nil, err
	}

	var parent *model.CatalogItem
	level := 0
	if in.ParentID != nil {
		var err error
		parent, err = s.store.FindByID(ctx, *in.ParentID)
		if err != nil {
			slog.Error("failed to load parent", "parent_id", *in.ParentID, "error", err)
			return nil, common.Internal(err)
		}
		if parent == nil {
			return nil, common.NewValidationError("parentId", "parent does not exist")
		}
		if parent.CatalogType != in.CatalogType {
			return nil, common.NewValidationError("parentId",
				fmt.Sprintf("parent belongs to catalog type %s", parent.CatalogType))
		}
		if !parent.VisibleTo(userID) {
			return nil, common.Forbidden("parent is not accessible")
		}
		level = parent.Level + 1
	}

	slug := strings.TrimSpace(in.Slug)
	if slug == "" {
		slug = model.Slugify(in.Name)
	}
	if slug == "" {
		return nil, common.NewValidationError("slug", "cannot derive a slug from the name")
	}

	taken, err := s.store.Count(ctx, service.ItemFilter{
		CatalogType: in.CatalogType,
		ParentID:    in.ParentID,
		RootOnly:    in.ParentID == nil,
		Slug:        slug,
	})
	if err != nil {
		slog.Error("failed to check slug uniqueness", "slug", slug, "error", err)
		return nil, common.Internal(err)
	}
	if taken > 0 {
		return nil, common.Conflict(fmt.Sprintf("slug %q already exists in this scope", slug))
	}

	created, err := s.store.CreateItem(ctx, model.CatalogItem{
		CatalogType: in.CatalogType,
		Name:        strings.TrimSpace(in.Name),
		Slug:        slug,
		Description: in.Description,
		Icon:        in.Icon,
		Color:       in.Color,
		Metadata:    in.Metadata,
		ParentID:    in.ParentID,
		Level:       level,
		IsSystem:    false,
		UserID:      &userID,
		SortOrder:   in.SortOrder,
		IsActive:    true,
	})
	if err != nil {
		slog.Error("failed to create catalog item", "catalog_type", in.CatalogType, "slug", slug, "error", err)
		return nil, common.Internal(err)
	}

	crumbs, err := s.Breadcrumbs(ctx, created, userID)
	if err != nil {
		return nil, err
	}

	return &ItemDetail{
		Item:        *created,
		Parent:      parent,
		Children:    []model.CatalogItem{},
		Breadcrumbs: crumbs,
	}, nil
}

// Update applies the whitelisted fields of the patch to an item owned by the
// caller. CatalogType, ParentID and Slug are frozen after creation; the
// patch type cannot express them, which keeps level and tree scoping sound
// without a re-derivation pass.
func (s *Service) Update(ctx context.Context, id string, patch service.ItemPatch, userID string) (*model.CatalogItem, error) {
	if patch.Name != nil {
		if err := validateName(*patch.Name); err != nil {
			return nil, err
		}
	}

	item, err := s.store.FindByID(ctx, id)
	if err != nil {
		slog.Error("failed to load catalog item", "id", id, "error", err)
		return nil, common.Internal(err)
	}
	if item == nil {
		return nil, common.NotFound(id)
	}
	if !item.MutableBy(userID) {
		if item.IsSystem {
			return nil, common.Forbidden("system items cannot be modified")
		}
		return nil, common.Forbidden("item belongs to another user")
	}

	updated, err := s.store.UpdateItem(ctx, id, patch)
	if err != nil {
		slog.Error("failed to update catalog item", "id", id, "error", err)
		return nil, common.Internal(err)
	}
	if updated == nil {
		return nil, common.NotFound(id)
	}

	return updated, nil
}

// Delete removes an item owned by the caller. When domain records still
// reference the item it is deactivated instead of removed; the same applies
// when it still has children, so no parent pointer is ever left dangling.
// The usage count and the delete decision run in one storage transaction,
// and restrict-on-delete references back the decision at the database.
func (s *Service) Delete(ctx context.Context, id, userID string) (*DeleteResult, error) {
	tx, err := s.store.BeginTx(ctx)
	if err != nil {
		slog.Error("failed to begin delete transaction", "id", id, "error", err)
		return nil, common.Internal(err)
	}
	defer func() { _ = tx.Rollback() }()

	item, err := tx.FindByID(ctx, id)
	if err != nil {
		slog.Error("failed to load catalog item", "id", id, "error", err)
		return nil, common.Internal(err)
	}
	if item == nil {
		return nil, common.NotFound(id)
	}
	if !item.MutableBy(userID) {
		if item.IsSystem {
			return nil, common.Forbidden("system items cannot be deleted")
		}
		return nil, common.Forbidden("item belongs to another user")
	}

	usage, err := tx.CountUsage(ctx, item.ID, item.CatalogType)
	if err != nil {
		slog.Error("failed to count catalog item usage", "id", id, "error", err)
		return nil, common.Internal(err)
	}

	children, err := tx.Count(ctx, service.ItemFilter{
		CatalogType: item.CatalogType,
		ParentID:    &item.ID,
	})
	if err != nil {
		slog.Error("failed to count catalog item children", "id", id, "error", err)
		return nil, common.Internal(err)
	}

	if usage == 0 && children == 0 {
		if err := tx.DeleteItem(ctx, id); err != nil {
			slog.Error("failed to delete catalog item", "id", id, "error", err)
			return nil, common.Internal(err)
		}
		if err := tx.Commit(); err != nil {
			return nil, common.Internal(err)
		}
		return &DeleteResult{Outcome: OutcomeDeleted}, nil
	}

	inactive := false
	if _, err := tx.UpdateItem(ctx, id, service.ItemPatch{IsActive: &inactive}); err != nil {
		slog.Error("failed to deactivate catalog item", "id", id, "error", err)
		return nil, common.Internal(err)
	}
	if err := tx.Commit(); err != nil {
		return nil, common.Internal(err)
	}

	return &DeleteResult{Outcome: OutcomeDeactivated, UsageCount: usage}, nil
}
