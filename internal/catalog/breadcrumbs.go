package catalog

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/harmonia-app/harmonia/internal/common"
	"github.com/harmonia-app/harmonia/internal/model"
)

// Breadcrumbs resolves the ancestor chain of an item, ordered from the tree
// root down to the immediate parent; the item itself is excluded. When a
// parent is missing or not visible to the caller the walk stops early and
// the partial trail is returned. Exceeding the depth ceiling means the
// stored tree is corrupt and is reported as an internal error.
func (s *Service) Breadcrumbs(ctx context.Context, item *model.CatalogItem, userID string) ([]Breadcrumb, error) {
	if item == nil {
		return nil, nil
	}

	var trail []Breadcrumb
	parentID := item.ParentID
	depth := 0

	for parentID != nil {
		if depth >= model.MaxBreadcrumbDepth {
			slog.Error("breadcrumb depth ceiling exceeded", "id", item.ID, "depth", depth)
			return nil, common.Internal(fmt.Errorf("ancestor chain of %s exceeds depth %d", item.ID, model.MaxBreadcrumbDepth))
		}

		parent, err := s.store.FindByID(ctx, *parentID)
		if err != nil {
			slog.Error("failed to resolve breadcrumb parent", "id", *parentID, "error", err)
			return nil, common.Internal(err)
		}
		if parent == nil || !parent.VisibleTo(userID) {
			// Partial trail is acceptable; the parent was deleted or is
			// out of the caller's scope.
			break
		}

		trail = append(trail, Breadcrumb{
			ID:    parent.ID,
			Name:  parent.Name,
			Icon:  parent.Icon,
			Color: parent.Color,
		})

		parentID = parent.ParentID
		depth++
	}

	// Walked child-to-root; breadcrumbs read root-to-child.
	for i, j := 0, len(trail)-1; i < j; i, j = i+1, j-1 {
		trail[i], trail[j] = trail[j], trail[i]
	}

	return trail, nil
}
