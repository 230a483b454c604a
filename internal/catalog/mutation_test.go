package catalog

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harmonia-app/harmonia/internal/common"
	"github.com/harmonia-app/harmonia/internal/model"
	"github.com/harmonia-app/harmonia/internal/service"
	"github.com/harmonia-app/harmonia/internal/testutil"
)

func TestCreate_RootItem(t *testing.T) {
	store := testutil.NewMemStore()
	svc := NewService(store)

	detail, err := svc.Create(context.Background(), CreateInput{
		CatalogType: model.TypeMealCategory,
		Name:        "Late Night Snacks",
		Icon:        "🌙",
	}, "u1")
	require.NoError(t, err)

	item := detail.Item
	assert.NotEmpty(t, item.ID)
	assert.Equal(t, "late-night-snacks", item.Slug)
	assert.Equal(t, 0, item.Level)
	assert.False(t, item.IsSystem)
	require.NotNil(t, item.UserID)
	assert.Equal(t, "u1", *item.UserID)
	assert.True(t, item.IsActive)
	assert.Nil(t, detail.Parent)
	assert.Empty(t, detail.Breadcrumbs)
	assert.Empty(t, detail.Children)
}

func TestCreate_UnderParent(t *testing.T) {
	store := testutil.NewMemStore()
	seedFoodTree(store)
	svc := NewService(store)

	detail, err := svc.Create(context.Background(), CreateInput{
		CatalogType: model.TypeTransactionCategory,
		Name:        "Tacos",
		ParentID:    strPtr("groceries"),
	}, "u1")
	require.NoError(t, err)

	assert.Equal(t, "tacos", detail.Item.Slug)
	assert.Equal(t, 2, detail.Item.Level, "level derived from parent")
	require.NotNil(t, detail.Parent)
	assert.Equal(t, "groceries", detail.Parent.ID)
	require.Len(t, detail.Breadcrumbs, 2)
	assert.Equal(t, "Food", detail.Breadcrumbs[0].Name)
	assert.Equal(t, "Groceries", detail.Breadcrumbs[1].Name)
}

func TestCreate_ExplicitSlugKept(t *testing.T) {
	store := testutil.NewMemStore()
	svc := NewService(store)

	detail, err := svc.Create(context.Background(), CreateInput{
		CatalogType: model.TypeEventCategory,
		Name:        "Birthday Parties",
		Slug:        "bdays",
	}, "u1")
	require.NoError(t, err)
	assert.Equal(t, "bdays", detail.Item.Slug)
}

func TestCreate_ValidationFailures(t *testing.T) {
	store := testutil.NewMemStore()
	seedFoodTree(store)
	store.Put(systemItem("cardio", model.TypeExerciseCategory, "Cardio", nil, 0))
	svc := NewService(store)

	tests := []struct {
		name  string
		in    CreateInput
		field string
	}{
		{
			name:  "unknown catalog type",
			in:    CreateInput{CatalogType: "pet_category", Name: "Dogs"},
			field: "catalogType",
		},
		{
			name:  "name too short",
			in:    CreateInput{CatalogType: model.TypeMealCategory, Name: "A"},
			field: "name",
		},
		{
			name:  "name too long",
			in:    CreateInput{CatalogType: model.TypeMealCategory, Name: strings.Repeat("x", 51)},
			field: "name",
		},
		{
			name:  "missing parent",
			in:    CreateInput{CatalogType: model.TypeTransactionCategory, Name: "Tacos", ParentID: strPtr("nope")},
			field: "parentId",
		},
		{
			name:  "parent in another tree",
			in:    CreateInput{CatalogType: model.TypeTransactionCategory, Name: "Tacos", ParentID: strPtr("cardio")},
			field: "parentId",
		},
		{
			name:  "unsluggable name",
			in:    CreateInput{CatalogType: model.TypeMealCategory, Name: "!!!"},
			field: "slug",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), tt.in, "u1")
			require.ErrorIs(t, err, common.ErrValidation)

			var vErr *common.ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tt.field, vErr.Field)
		})
	}
}

func TestCreate_ForeignParentForbidden(t *testing.T) {
	store := testutil.NewMemStore()
	store.Put(userItem("their-root", "u2", model.TypeMealCategory, "Brunch", nil, 0))
	svc := NewService(store)

	_, err := svc.Create(context.Background(), CreateInput{
		CatalogType: model.TypeMealCategory,
		Name:        "Mimosas",
		ParentID:    strPtr("their-root"),
	}, "u1")
	assert.ErrorIs(t, err, common.ErrForbidden)
}

func TestCreate_DuplicateSlugConflicts(t *testing.T) {
	store := testutil.NewMemStore()
	seedFoodTree(store)
	svc := NewService(store)

	// "Groceries" already exists under Food, even though it is a system item.
	_, err := svc.Create(context.Background(), CreateInput{
		CatalogType: model.TypeTransactionCategory,
		Name:        "Groceries",
		ParentID:    strPtr("food"),
	}, "u1")
	assert.ErrorIs(t, err, common.ErrConflict)

	// The same slug is free under a different parent.
	_, err = svc.Create(context.Background(), CreateInput{
		CatalogType: model.TypeTransactionCategory,
		Name:        "Groceries",
	}, "u1")
	assert.NoError(t, err)
}

func TestUpdate_PatchesOwnItem(t *testing.T) {
	store := testutil.NewMemStore()
	store.Put(userItem("mine", "u1", model.TypeBudgetCategory, "Essentials", nil, 0))
	svc := NewService(store)

	name := "Fixed Costs"
	order := 3
	updated, err := svc.Update(context.Background(), "mine", service.ItemPatch{
		Name:      &name,
		SortOrder: &order,
	}, "u1")
	require.NoError(t, err)

	assert.Equal(t, "Fixed Costs", updated.Name)
	assert.Equal(t, 3, updated.SortOrder)
	assert.Equal(t, "essentials", updated.Slug, "slug is frozen after creation")
}

func TestUpdate_RejectsBadName(t *testing.T) {
	store := testutil.NewMemStore()
	store.Put(userItem("mine", "u1", model.TypeBudgetCategory, "Essentials", nil, 0))
	svc := NewService(store)

	bad := "x"
	_, err := svc.Update(context.Background(), "mine", service.ItemPatch{Name: &bad}, "u1")
	assert.ErrorIs(t, err, common.ErrValidation)
}

func TestUpdate_SystemItemForbidden(t *testing.T) {
	store := testutil.NewMemStore()
	seedFoodTree(store)
	svc := NewService(store)

	name := "Renamed"
	_, err := svc.Update(context.Background(), "food", service.ItemPatch{Name: &name}, "u1")
	require.ErrorIs(t, err, common.ErrForbidden)
	assert.Contains(t, err.Error(), "system")
}

func TestUpdate_ForeignItemForbidden(t *testing.T) {
	store := testutil.NewMemStore()
	store.Put(userItem("theirs", "u2", model.TypeBudgetCategory, "Essentials", nil, 0))
	svc := NewService(store)

	name := "Hijacked"
	_, err := svc.Update(context.Background(), "theirs", service.ItemPatch{Name: &name}, "u1")
	assert.ErrorIs(t, err, common.ErrForbidden)
}

func TestUpdate_MissingItem(t *testing.T) {
	svc := NewService(testutil.NewMemStore())

	name := "Renamed"
	_, err := svc.Update(context.Background(), "nope", service.ItemPatch{Name: &name}, "u1")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestDelete_UnusedItemIsRemoved(t *testing.T) {
	store := testutil.NewMemStore()
	store.Put(userItem("mine", "u1", model.TypeReminderCategory, "Chores", nil, 0))
	svc := NewService(store)

	result, err := svc.Delete(context.Background(), "mine", "u1")
	require.NoError(t, err)
	assert.Equal(t, OutcomeDeleted, result.Outcome)
	assert.Zero(t, result.UsageCount)
	assert.Equal(t, 0, store.Len(), "row should be gone")
}

func TestDelete_ReferencedItemIsDeactivated(t *testing.T) {
	store := testutil.NewMemStore()
	store.Put(userItem("mine", "u1", model.TypeReminderCategory, "Chores", nil, 0))
	store.SetUsage("mine", 4)
	svc := NewService(store)

	result, err := svc.Delete(context.Background(), "mine", "u1")
	require.NoError(t, err)
	assert.Equal(t, OutcomeDeactivated, result.Outcome)
	assert.Equal(t, 4, result.UsageCount)

	kept, err := store.FindByID(context.Background(), "mine")
	require.NoError(t, err)
	require.NotNil(t, kept, "row must survive a soft delete")
	assert.False(t, kept.IsActive)
}

func TestDelete_ParentWithChildrenIsDeactivated(t *testing.T) {
	store := testutil.NewMemStore()
	store.Put(userItem("parent", "u1", model.TypeActivityCategory, "Outdoors", nil, 0))
	store.Put(userItem("child", "u1", model.TypeActivityCategory, "Hiking", strPtr("parent"), 1))
	svc := NewService(store)

	result, err := svc.Delete(context.Background(), "parent", "u1")
	require.NoError(t, err)
	assert.Equal(t, OutcomeDeactivated, result.Outcome, "children keep their parent row alive")

	child, err := store.FindByID(context.Background(), "child")
	require.NoError(t, err)
	require.NotNil(t, child)
	assert.Equal(t, "parent", *child.ParentID, "child parent pointer stays intact")
}

func TestDelete_SystemItemForbidden(t *testing.T) {
	store := testutil.NewMemStore()
	seedFoodTree(store)
	svc := NewService(store)

	_, err := svc.Delete(context.Background(), "groceries", "u1")
	assert.ErrorIs(t, err, common.ErrForbidden)
}

func TestDelete_ForeignItemForbidden(t *testing.T) {
	store := testutil.NewMemStore()
	store.Put(userItem("theirs", "u2", model.TypeReminderCategory, "Chores", nil, 0))
	svc := NewService(store)

	_, err := svc.Delete(context.Background(), "theirs", "u1")
	assert.ErrorIs(t, err, common.ErrForbidden)
}

func TestDelete_MissingItem(t *testing.T) {
	svc := NewService(testutil.NewMemStore())

	_, err := svc.Delete(context.Background(), "nope", "u1")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestDelete_StorageFailureIsInternal(t *testing.T) {
	store := testutil.NewMemStore()
	store.Put(userItem("mine", "u1", model.TypeReminderCategory, "Chores", nil, 0))
	svc := NewService(store)

	store.FailNext = errors.New("database is locked")
	_, err := svc.Delete(context.Background(), "mine", "u1")
	assert.ErrorIs(t, err, common.ErrInternal)
}

// TestCatalogLifecycle walks the end-to-end scenario: extend a seeded system
// tree with a user item, find it by search, then remove it.
func TestCatalogLifecycle(t *testing.T) {
	store := testutil.NewMemStore()
	seedFoodTree(store)
	svc := NewService(store)
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateInput{
		CatalogType: model.TypeTransactionCategory,
		Name:        "Tacos",
		ParentID:    strPtr("groceries"),
	}, "u1")
	require.NoError(t, err)
	assert.Equal(t, 2, created.Item.Level)
	assert.Equal(t, "tacos", created.Item.Slug)

	page, err := svc.Search(ctx, SearchInput{
		CatalogType: model.TypeTransactionCategory,
		Query:       "Tacos",
	}, "u1")
	require.NoError(t, err)
	require.Equal(t, 1, page.TotalCount)
	assert.Equal(t, model.ScoreExact, page.Results[0].RelevanceScore)

	result, err := svc.Delete(ctx, created.Item.ID, "u1")
	require.NoError(t, err)
	assert.Equal(t, OutcomeDeleted, result.Outcome)

	_, err = svc.Get(ctx, created.Item.ID, "u1", false)
	assert.ErrorIs(t, err, common.ErrNotFound)
}
