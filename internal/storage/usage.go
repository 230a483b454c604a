package storage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/harmonia-app/harmonia/internal/model"
)

// usageRef names one domain table column that references catalog items.
type usageRef struct {
	table  string
	column string
}

// usageRefs maps each catalog type to the domain columns that can reference
// items of that type. Adding a 16th catalog type means adding its constant in
// the model package and its references here.
var usageRefs = map[model.CatalogType][]usageRef{
	model.TypeTransactionCategory: {
		{table: "transactions", column: "type_id"},
		{table: "transactions", column: "category_id"},
	},
	model.TypeInvestmentCategory: {
		{table: "investments", column: "category_id"},
	},
	model.TypeBudgetCategory: {
		{table: "budgets", column: "category_id"},
	},
	model.TypeExerciseCategory: {
		{table: "exercises", column: "exercise_type_id"},
	},
	model.TypeEquipmentCategory: {
		{table: "exercises", column: "equipment_id"},
	},
	model.TypeMuscleGroup: {
		{table: "exercises", column: "muscle_group_id"},
	},
	model.TypeMealCategory: {
		{table: "meals", column: "meal_category_id"},
	},
	model.TypeFoodCategory: {
		{table: "foods", column: "category_id"},
	},
	model.TypeUnitCategory: {
		{table: "foods", column: "unit_id"},
	},
	model.TypeNutritionGoalCategory: {
		{table: "nutrition_goals", column: "category_id"},
	},
	model.TypeRelationshipType: {
		{table: "family_members", column: "relationship_type_id"},
	},
	model.TypeEventCategory: {
		{table: "events", column: "category_id"},
	},
	model.TypeReminderCategory: {
		{table: "reminders", column: "category_id"},
	},
	model.TypeActivityCategory: {
		{table: "activities", column: "category_id"},
	},
	model.TypeSocialCircleType: {
		{table: "social_circles", column: "circle_type_id"},
	},
}

// CountUsage returns the number of domain records referencing a catalog
// item, summed over every column mapped for its catalog type.
func (s *SQLiteStorage) CountUsage(ctx context.Context, id string, catalogType model.CatalogType) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if err := validateString(id, "id"); err != nil {
		return 0, err
	}
	return s.countUsageTx(ctx, s.db, id, catalogType)
}

func (s *SQLiteStorage) countUsageTx(ctx context.Context, q dbtx, id string, catalogType model.CatalogType) (int, error) {
	refs, ok := usageRefs[catalogType]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownCatalogType, catalogType)
	}

	total := 0
	for _, ref := range refs {
		query := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE %s = ?`, ref.table, ref.column)

		var count int
		if err := q.QueryRowContext(ctx, query, id).Scan(&count); err != nil {
			return 0, fmt.Errorf("failed to count usage in %s.%s: %w", ref.table, ref.column, err)
		}
		total += count
	}

	slog.Debug("counted catalog item usage", "id", id, "catalog_type", catalogType, "count", total)
	return total, nil
}
