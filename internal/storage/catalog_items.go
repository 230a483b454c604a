package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/harmonia-app/harmonia/internal/model"
	"github.com/harmonia-app/harmonia/internal/service"
)

const itemColumns = `id, catalog_type, name, slug, description, icon, color, metadata,
	parent_id, level, is_system, user_id, sort_order, is_active, created_at, updated_at`

// scanItem reads one catalog item row.
func scanItem(row interface{ Scan(...any) error }) (*model.CatalogItem, error) {
	var item model.CatalogItem
	var parentID, userID sql.NullString
	err := row.Scan(
		&item.ID, &item.CatalogType, &item.Name, &item.Slug,
		&item.Description, &item.Icon, &item.Color, &item.Metadata,
		&parentID, &item.Level, &item.IsSystem, &userID,
		&item.SortOrder, &item.IsActive, &item.CreatedAt, &item.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if parentID.Valid {
		item.ParentID = &parentID.String
	}
	if userID.Valid {
		item.UserID = &userID.String
	}
	return &item, nil
}

// escapeLike escapes LIKE wildcards in user-supplied query text.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	return strings.ReplaceAll(s, `_`, `\_`)
}

// filterClauses translates an ItemFilter into WHERE clauses and arguments.
func filterClauses(filter service.ItemFilter) (string, []any) {
	clauses := []string{"catalog_type = ?"}
	args := []any{string(filter.CatalogType)}

	if filter.VisibleTo != nil {
		clauses = append(clauses, "(is_system = 1 OR user_id = ?)")
		args = append(args, *filter.VisibleTo)
	}
	if filter.ParentID != nil {
		clauses = append(clauses, "parent_id = ?")
		args = append(args, *filter.ParentID)
	} else if filter.RootOnly {
		clauses = append(clauses, "parent_id IS NULL")
	}
	if filter.Slug != "" {
		clauses = append(clauses, "slug = ?")
		args = append(args, filter.Slug)
	}
	if filter.Query != "" {
		like := "%" + escapeLike(strings.ToLower(filter.Query)) + "%"
		clauses = append(clauses, `(LOWER(name) LIKE ? ESCAPE '\' OR LOWER(description) LIKE ? ESCAPE '\' OR LOWER(slug) LIKE ? ESCAPE '\')`)
		args = append(args, like, like, like)
	}
	if filter.ActiveOnly {
		clauses = append(clauses, "is_active = 1")
	}

	return strings.Join(clauses, " AND "), args
}

// FindMany returns catalog items matching the filter, ordered by
// (sort_order, name).
func (s *SQLiteStorage) FindMany(ctx context.Context, filter service.ItemFilter) ([]model.CatalogItem, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.findManyTx(ctx, s.db, filter)
}

func (s *SQLiteStorage) findManyTx(ctx context.Context, q dbtx, filter service.ItemFilter) ([]model.CatalogItem, error) {
	where, args := filterClauses(filter)
	query := fmt.Sprintf(`SELECT %s FROM catalog_items WHERE %s ORDER BY sort_order, name`, itemColumns, where)

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query catalog items: %w", err)
	}
	defer rows.Close()

	var items []model.CatalogItem
	for rows.Next() {
		item, scanErr := scanItem(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan catalog item: %w", scanErr)
		}
		items = append(items, *item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating catalog items: %w", err)
	}

	slog.Debug("retrieved catalog items", "catalog_type", filter.CatalogType, "count", len(items))
	return items, nil
}

// FindByID returns a catalog item by id, or nil when absent.
func (s *SQLiteStorage) FindByID(ctx context.Context, id string) (*model.CatalogItem, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}
	return s.findByIDTx(ctx, s.db, id)
}

func (s *SQLiteStorage) findByIDTx(ctx context.Context, q dbtx, id string) (*model.CatalogItem, error) {
	query := fmt.Sprintf(`SELECT %s FROM catalog_items WHERE id = ?`, itemColumns)

	item, err := scanItem(q.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil // Item not found
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query catalog item: %w", err)
	}

	return item, nil
}

// FindChildren returns the direct children of a catalog item, ordered by
// (sort_order, name).
func (s *SQLiteStorage) FindChildren(ctx context.Context, parentID string) ([]model.CatalogItem, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(parentID, "parentID"); err != nil {
		return nil, err
	}
	return s.findChildrenTx(ctx, s.db, parentID)
}

func (s *SQLiteStorage) findChildrenTx(ctx context.Context, q dbtx, parentID string) ([]model.CatalogItem, error) {
	query := fmt.Sprintf(`SELECT %s FROM catalog_items WHERE parent_id = ? ORDER BY sort_order, name`, itemColumns)

	rows, err := q.QueryContext(ctx, query, parentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query children: %w", err)
	}
	defer rows.Close()

	var items []model.CatalogItem
	for rows.Next() {
		item, scanErr := scanItem(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan catalog item: %w", scanErr)
		}
		items = append(items, *item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating children: %w", err)
	}

	return items, nil
}

// Count returns the number of catalog items matching the filter.
func (s *SQLiteStorage) Count(ctx context.Context, filter service.ItemFilter) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	return s.countTx(ctx, s.db, filter)
}

func (s *SQLiteStorage) countTx(ctx context.Context, q dbtx, filter service.ItemFilter) (int, error) {
	where, args := filterClauses(filter)
	query := fmt.Sprintf(`SELECT COUNT(*) FROM catalog_items WHERE %s`, where)

	var count int
	if err := q.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count catalog items: %w", err)
	}

	return count, nil
}

// CreateItem inserts a new catalog item. A missing ID is assigned a fresh
// uuid; timestamps are set to the current time.
func (s *SQLiteStorage) CreateItem(ctx context.Context, item model.CatalogItem) (*model.CatalogItem, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.createItemTx(ctx, s.db, item)
}

func (s *SQLiteStorage) createItemTx(ctx context.Context, q dbtx, item model.CatalogItem) (*model.CatalogItem, error) {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	if err := validateItem(&item); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	item.CreatedAt = now
	item.UpdatedAt = now

	query := fmt.Sprintf(`INSERT INTO catalog_items (%s) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, itemColumns)

	_, err := q.ExecContext(ctx, query,
		item.ID, string(item.CatalogType), item.Name, item.Slug,
		item.Description, item.Icon, item.Color, item.Metadata,
		item.ParentID, item.Level, item.IsSystem, item.UserID,
		item.SortOrder, item.IsActive, item.CreatedAt, item.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create catalog item: %w", err)
	}

	slog.Info("created catalog item",
		"id", item.ID,
		"catalog_type", item.CatalogType,
		"slug", item.Slug,
		"is_system", item.IsSystem)
	return &item, nil
}

// UpdateItem applies a patch to a catalog item and returns the updated row,
// or nil when the item does not exist.
func (s *SQLiteStorage) UpdateItem(ctx context.Context, id string, patch service.ItemPatch) (*model.CatalogItem, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}
	return s.updateItemTx(ctx, s.db, id, patch)
}

func (s *SQLiteStorage) updateItemTx(ctx context.Context, q dbtx, id string, patch service.ItemPatch) (*model.CatalogItem, error) {
	sets := []string{"updated_at = ?"}
	args := []any{time.Now().UTC()}

	if patch.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *patch.Name)
	}
	if patch.Description != nil {
		sets = append(sets, "description = ?")
		args = append(args, *patch.Description)
	}
	if patch.Icon != nil {
		sets = append(sets, "icon = ?")
		args = append(args, *patch.Icon)
	}
	if patch.Color != nil {
		sets = append(sets, "color = ?")
		args = append(args, *patch.Color)
	}
	if patch.SortOrder != nil {
		sets = append(sets, "sort_order = ?")
		args = append(args, *patch.SortOrder)
	}
	if patch.IsActive != nil {
		sets = append(sets, "is_active = ?")
		args = append(args, *patch.IsActive)
	}

	args = append(args, id)
	query := fmt.Sprintf(`UPDATE catalog_items SET %s WHERE id = ?`, strings.Join(sets, ", "))

	result, err := q.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to update catalog item: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return nil, nil // Item not found
	}

	slog.Info("updated catalog item", "id", id)
	return s.findByIDTx(ctx, q, id)
}

// DeleteItem removes a catalog item. Restrict-on-delete references from the
// domain tables make this fail when the item is still in use.
func (s *SQLiteStorage) DeleteItem(ctx context.Context, id string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}
	return s.deleteItemTx(ctx, s.db, id)
}

func (s *SQLiteStorage) deleteItemTx(ctx context.Context, q dbtx, id string) error {
	if _, err := q.ExecContext(ctx, `DELETE FROM catalog_items WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete catalog item: %w", err)
	}

	slog.Info("deleted catalog item", "id", id)
	return nil
}
