// Package testutil provides test doubles for the catalog engine.
package testutil

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/harmonia-app/harmonia/internal/model"
	"github.com/harmonia-app/harmonia/internal/service"
)

// MemStore is an in-memory service.Storage used by engine tests. It applies
// the same filter semantics as the SQLite gateway. Usage counts are injected
// per item id via SetUsage.
type MemStore struct {
	mu    sync.Mutex
	items map[string]model.CatalogItem
	usage map[string]int

	// FailNext, when set, makes the next storage call return this error.
	FailNext error
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{
		items: make(map[string]model.CatalogItem),
		usage: make(map[string]int),
	}
}

// Put inserts or replaces an item directly, bypassing validation. Missing
// ids get a fresh uuid. Returns the stored item.
func (m *MemStore) Put(item model.CatalogItem) model.CatalogItem {
	m.mu.Lock()
	defer m.mu.Unlock()
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	m.items[item.ID] = item
	return item
}

// SetUsage sets the usage count reported for an item id.
func (m *MemStore) SetUsage(id string, count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.usage[id] = count
}

// Len returns the number of stored items.
func (m *MemStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}

func (m *MemStore) takeFailure() error {
	err := m.FailNext
	m.FailNext = nil
	return err
}

func matchesFilter(item model.CatalogItem, filter service.ItemFilter) bool {
	if item.CatalogType != filter.CatalogType {
		return false
	}
	if filter.VisibleTo != nil && !item.VisibleTo(*filter.VisibleTo) {
		return false
	}
	if filter.ParentID != nil {
		if item.ParentID == nil || *item.ParentID != *filter.ParentID {
			return false
		}
	} else if filter.RootOnly && item.ParentID != nil {
		return false
	}
	if filter.Slug != "" && item.Slug != filter.Slug {
		return false
	}
	if filter.Query != "" && !item.MatchesQuery(strings.TrimSpace(filter.Query)) {
		return false
	}
	if filter.ActiveOnly && !item.IsActive {
		return false
	}
	return true
}

// FindMany implements service.Storage.
func (m *MemStore) FindMany(_ context.Context, filter service.ItemFilter) ([]model.CatalogItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.takeFailure(); err != nil {
		return nil, err
	}

	var out []model.CatalogItem
	for _, item := range m.items {
		if matchesFilter(item, filter) {
			out = append(out, item)
		}
	}
	return out, nil
}

// FindByID implements service.Storage.
func (m *MemStore) FindByID(_ context.Context, id string) (*model.CatalogItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.takeFailure(); err != nil {
		return nil, err
	}

	item, ok := m.items[id]
	if !ok {
		return nil, nil
	}
	return &item, nil
}

// FindChildren implements service.Storage.
func (m *MemStore) FindChildren(_ context.Context, parentID string) ([]model.CatalogItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.takeFailure(); err != nil {
		return nil, err
	}

	var out []model.CatalogItem
	for _, item := range m.items {
		if item.ParentID != nil && *item.ParentID == parentID {
			out = append(out, item)
		}
	}
	return out, nil
}

// Count implements service.Storage.
func (m *MemStore) Count(ctx context.Context, filter service.ItemFilter) (int, error) {
	items, err := m.FindMany(ctx, filter)
	if err != nil {
		return 0, err
	}
	return len(items), nil
}

// CreateItem implements service.Storage.
func (m *MemStore) CreateItem(_ context.Context, item model.CatalogItem) (*model.CatalogItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.takeFailure(); err != nil {
		return nil, err
	}

	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	for _, existing := range m.items {
		if existing.CatalogType == item.CatalogType && existing.Slug == item.Slug &&
			equalParent(existing.ParentID, item.ParentID) {
			return nil, fmt.Errorf("UNIQUE constraint failed: catalog_items.slug (%s)", item.Slug)
		}
	}

	now := time.Now().UTC()
	item.CreatedAt = now
	item.UpdatedAt = now
	m.items[item.ID] = item
	return &item, nil
}

func equalParent(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// UpdateItem implements service.Storage.
func (m *MemStore) UpdateItem(_ context.Context, id string, patch service.ItemPatch) (*model.CatalogItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.takeFailure(); err != nil {
		return nil, err
	}

	item, ok := m.items[id]
	if !ok {
		return nil, nil
	}

	if patch.Name != nil {
		item.Name = *patch.Name
	}
	if patch.Description != nil {
		item.Description = *patch.Description
	}
	if patch.Icon != nil {
		item.Icon = *patch.Icon
	}
	if patch.Color != nil {
		item.Color = *patch.Color
	}
	if patch.SortOrder != nil {
		item.SortOrder = *patch.SortOrder
	}
	if patch.IsActive != nil {
		item.IsActive = *patch.IsActive
	}
	item.UpdatedAt = time.Now().UTC()

	m.items[id] = item
	return &item, nil
}

// DeleteItem implements service.Storage.
func (m *MemStore) DeleteItem(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.takeFailure(); err != nil {
		return err
	}

	delete(m.items, id)
	return nil
}

// CountUsage implements service.Storage.
func (m *MemStore) CountUsage(_ context.Context, id string, _ model.CatalogType) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.takeFailure(); err != nil {
		return 0, err
	}

	return m.usage[id], nil
}

// Migrate implements service.Storage.
func (m *MemStore) Migrate(_ context.Context) error {
	return nil
}

// Close implements service.Storage.
func (m *MemStore) Close() error {
	return nil
}

// BeginTx implements service.Storage. The returned transaction operates on
// the shared state directly; Commit and Rollback are no-ops, which is enough
// for exercising the engine's transactional delete path.
func (m *MemStore) BeginTx(_ context.Context) (service.Transaction, error) {
	if err := m.takeFailure(); err != nil {
		return nil, err
	}
	return &memTx{store: m}, nil
}

type memTx struct {
	store *MemStore
}

func (t *memTx) Commit() error   { return nil }
func (t *memTx) Rollback() error { return nil }

func (t *memTx) FindMany(ctx context.Context, filter service.ItemFilter) ([]model.CatalogItem, error) {
	return t.store.FindMany(ctx, filter)
}

func (t *memTx) FindByID(ctx context.Context, id string) (*model.CatalogItem, error) {
	return t.store.FindByID(ctx, id)
}

func (t *memTx) FindChildren(ctx context.Context, parentID string) ([]model.CatalogItem, error) {
	return t.store.FindChildren(ctx, parentID)
}

func (t *memTx) Count(ctx context.Context, filter service.ItemFilter) (int, error) {
	return t.store.Count(ctx, filter)
}

func (t *memTx) CreateItem(ctx context.Context, item model.CatalogItem) (*model.CatalogItem, error) {
	return t.store.CreateItem(ctx, item)
}

func (t *memTx) UpdateItem(ctx context.Context, id string, patch service.ItemPatch) (*model.CatalogItem, error) {
	return t.store.UpdateItem(ctx, id, patch)
}

func (t *memTx) DeleteItem(ctx context.Context, id string) error {
	return t.store.DeleteItem(ctx, id)
}

func (t *memTx) CountUsage(ctx context.Context, id string, catalogType model.CatalogType) (int, error) {
	return t.store.CountUsage(ctx, id, catalogType)
}

func (t *memTx) Migrate(_ context.Context) error {
	return fmt.Errorf("migrations cannot be run within a transaction")
}

func (t *memTx) BeginTx(_ context.Context) (service.Transaction, error) {
	return nil, fmt.Errorf("nested transactions not supported")
}

func (t *memTx) Close() error {
	return fmt.Errorf("transactions must be committed or rolled back, not closed")
}
