package catalog

import (
	"context"
	"log/slog"

	"github.com/harmonia-app/harmonia/internal/common"
	"github.com/harmonia-app/harmonia/internal/model"
	"github.com/harmonia-app/harmonia/internal/service"
)

// List returns the flat, visibility-filtered items of one catalog tree,
// optionally scoped to a parent, ordered by (sortOrder, name).
func (s *Service) List(ctx context.Context, in ListInput, userID string) ([]model.CatalogItem, error) {
	if !in.CatalogType.Valid() {
		return nil, common.NewValidationError("catalogType", "unknown catalog type "+string(in.CatalogType))
	}

	items, err := s.store.FindMany(ctx, service.ItemFilter{
		CatalogType: in.CatalogType,
		VisibleTo:   &userID,
		ParentID:    in.ParentID,
		ActiveOnly:  !in.IncludeInactive,
	})
	if err != nil {
		slog.Error("failed to list catalog items", "catalog_type", in.CatalogType, "error", err)
		return nil, common.Internal(err)
	}

	model.SortItems(items)
	return items, nil
}

// Tree returns the same selection as List assembled into a sorted forest.
// Items whose parent falls outside the selection surface as roots.
func (s *Service) Tree(ctx context.Context, in ListInput, userID string) ([]*model.TreeNode, error) {
	items, err := s.List(ctx, in, userID)
	if err != nil {
		return nil, err
	}
	return model.BuildTree(items), nil
}

// Get fetches a single item with its parent, children and breadcrumbs.
// Items that exist but are not visible to the caller are reported as not
// found, so ids cannot be probed across users.
func (s *Service) Get(ctx context.Context, id, userID string, withUsage bool) (*ItemDetail, error) {
	item, err := s.store.FindByID(ctx, id)
	if err != nil {
		slog.Error("failed to load catalog item", "id", id, "error", err)
		return nil, common.Internal(err)
	}
	if item == nil || !item.VisibleTo(userID) {
		return nil, common.NotFound(id)
	}

	detail, err := s.buildDetail(ctx, item, userID)
	if err != nil {
		return nil, err
	}

	if withUsage {
		usage, usageErr := s.store.CountUsage(ctx, item.ID, item.CatalogType)
		if usageErr != nil {
			slog.Error("failed to count catalog item usage", "id", id, "error", usageErr)
			return nil, common.Internal(usageErr)
		}
		detail.UsageCount = &usage
	}

	return detail, nil
}

// buildDetail assembles the common read-path shape around an item.
func (s *Service) buildDetail(ctx context.Context, item *model.CatalogItem, userID string) (*ItemDetail, error) {
	detail := &ItemDetail{Item: *item}

	if item.ParentID != nil {
		parent, err := s.store.FindByID(ctx, *item.ParentID)
		if err != nil {
			return nil, common.Internal(err)
		}
		if parent != nil && parent.VisibleTo(userID) {
			detail.Parent = parent
		}
	}

	children, err := s.visibleChildren(ctx, item.ID, userID)
	if err != nil {
		return nil, err
	}
	detail.Children = children

	crumbs, err := s.Breadcrumbs(ctx, item, userID)
	if err != nil {
		return nil, err
	}
	detail.Breadcrumbs = crumbs

	return detail, nil
}

// visibleChildren returns an item's active children visible to the caller,
// in sibling order.
func (s *Service) visibleChildren(ctx context.Context, id, userID string) ([]model.CatalogItem, error) {
	children, err := s.store.FindChildren(ctx, id)
	if err != nil {
		slog.Error("failed to load catalog item children", "id", id, "error", err)
		return nil, common.Internal(err)
	}

	visible := make([]model.CatalogItem, 0, len(children))
	for _, child := range children {
		if child.IsActive && child.VisibleTo(userID) {
			visible = append(visible, child)
		}
	}

	model.SortItems(visible)
	return visible, nil
}
