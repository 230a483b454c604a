package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/harmonia-app/harmonia/internal/model"
)

// seedNode declares one system catalog item; children nest under it.
type seedNode struct {
	name     string
	icon     string
	color    string
	children []seedNode
}

// systemCatalog is the seeded system data for every catalog type. Seeding is
// idempotent: nodes are keyed by (catalog_type, parent, slug) and existing
// rows are left untouched.
var systemCatalog = map[model.CatalogType][]seedNode{
	model.TypeTransactionCategory: {
		{name: "Food", icon: "🍽️", color: "#FF8C42", children: []seedNode{
			{name: "Groceries", icon: "🛒", color: "#FFB26B"},
			{name: "Restaurants", icon: "🍜", color: "#FFA05C"},
		}},
		{name: "Housing", icon: "🏠", color: "#4E89AE", children: []seedNode{
			{name: "Rent", color: "#6FA3C7"},
			{name: "Utilities", color: "#5E96BA"},
		}},
		{name: "Transport", icon: "🚌", color: "#43AA8B"},
		{name: "Income", icon: "💰", color: "#90BE6D", children: []seedNode{
			{name: "Salary", color: "#A5CE85"},
		}},
	},
	model.TypeInvestmentCategory: {
		{name: "Stocks", icon: "📈", color: "#577590"},
		{name: "Bonds", icon: "📜", color: "#4D908E"},
		{name: "Real Estate", icon: "🏢", color: "#F9844A"},
	},
	model.TypeBudgetCategory: {
		{name: "Essentials", icon: "📌", color: "#F94144"},
		{name: "Lifestyle", icon: "🎭", color: "#F3722C"},
		{name: "Savings", icon: "🏦", color: "#90BE6D"},
	},
	model.TypeExerciseCategory: {
		{name: "Strength", icon: "🏋️", color: "#D62828", children: []seedNode{
			{name: "Upper Body"},
			{name: "Lower Body"},
		}},
		{name: "Cardio", icon: "🏃", color: "#F77F00"},
		{name: "Mobility", icon: "🧘", color: "#FCBF49"},
	},
	model.TypeEquipmentCategory: {
		{name: "Free Weights", icon: "🏋️"},
		{name: "Machines", icon: "⚙️"},
		{name: "Bodyweight", icon: "🤸"},
	},
	model.TypeMuscleGroup: {
		{name: "Chest"}, {name: "Back"}, {name: "Legs"},
		{name: "Shoulders"}, {name: "Arms"}, {name: "Core"},
	},
	model.TypeMealCategory: {
		{name: "Breakfast", icon: "🍳"}, {name: "Lunch", icon: "🥪"},
		{name: "Dinner", icon: "🍝"}, {name: "Snack", icon: "🍎"},
	},
	model.TypeFoodCategory: {
		{name: "Produce", icon: "🥦", children: []seedNode{
			{name: "Fruit"}, {name: "Vegetables"},
		}},
		{name: "Protein", icon: "🍗"},
		{name: "Grains", icon: "🌾"},
		{name: "Dairy", icon: "🥛"},
	},
	model.TypeUnitCategory: {
		{name: "Weight", children: []seedNode{
			{name: "Gram"}, {name: "Kilogram"}, {name: "Ounce"},
		}},
		{name: "Volume", children: []seedNode{
			{name: "Milliliter"}, {name: "Cup"},
		}},
		{name: "Count", children: []seedNode{
			{name: "Piece"}, {name: "Serving"},
		}},
	},
	model.TypeNutritionGoalCategory: {
		{name: "Macros", icon: "⚖️"}, {name: "Hydration", icon: "💧"},
		{name: "Calories", icon: "🔥"},
	},
	model.TypeRelationshipType: {
		{name: "Immediate Family", children: []seedNode{
			{name: "Parent"}, {name: "Sibling"}, {name: "Child"},
		}},
		{name: "Extended Family"},
		{name: "Partner"},
	},
	model.TypeEventCategory: {
		{name: "Birthday", icon: "🎂"}, {name: "Anniversary", icon: "💍"},
		{name: "Appointment", icon: "📅"},
	},
	model.TypeReminderCategory: {
		{name: "Health", icon: "🩺"}, {name: "Finance", icon: "💳"},
		{name: "Household", icon: "🧹"},
	},
	model.TypeActivityCategory: {
		{name: "Outdoors", icon: "🏕️"}, {name: "Games", icon: "🎲"},
		{name: "Culture", icon: "🎨"},
	},
	model.TypeSocialCircleType: {
		{name: "Family", icon: "👪"}, {name: "Friends", icon: "🧑‍🤝‍🧑"},
		{name: "Colleagues", icon: "💼"},
	},
}

func countSeedNodes(nodes []seedNode) int {
	total := 0
	for _, n := range nodes {
		total += 1 + countSeedNodes(n.children)
	}
	return total
}

// SeedCount returns the total number of system items the seed defines.
func SeedCount() int {
	total := 0
	for _, nodes := range systemCatalog {
		total += countSeedNodes(nodes)
	}
	return total
}

// SeedSystemCatalog inserts the system catalog for all registered types,
// skipping items that already exist. onItem, when non-nil, is invoked once
// per seed node whether it was created or skipped, so callers can drive
// progress display. Returns the number of newly created items.
func (s *SQLiteStorage) SeedSystemCatalog(ctx context.Context, onItem func(model.CatalogItem)) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	created := 0
	for _, catalogType := range model.CatalogTypes() {
		nodes := systemCatalog[catalogType]
		n, seedErr := s.seedNodes(ctx, tx, catalogType, nil, 0, nodes, onItem)
		if seedErr != nil {
			return 0, fmt.Errorf("failed to seed %s: %w", catalogType, seedErr)
		}
		created += n
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit seed: %w", err)
	}

	slog.Info("seeded system catalog", "created", created, "total", SeedCount())
	return created, nil
}

func (s *SQLiteStorage) seedNodes(ctx context.Context, q dbtx, catalogType model.CatalogType, parent *model.CatalogItem, level int, nodes []seedNode, onItem func(model.CatalogItem)) (int, error) {
	created := 0
	for order, node := range nodes {
		slug := model.Slugify(node.name)

		var parentID *string
		if parent != nil {
			parentID = &parent.ID
		}

		existing, err := s.findSeedItem(ctx, q, catalogType, parentID, slug)
		if err != nil {
			return 0, err
		}

		item := existing
		if item == nil {
			item, err = s.createItemTx(ctx, q, model.CatalogItem{
				CatalogType: catalogType,
				Name:        node.name,
				Slug:        slug,
				Icon:        node.icon,
				Color:       node.color,
				ParentID:    parentID,
				Level:       level,
				IsSystem:    true,
				SortOrder:   order,
				IsActive:    true,
			})
			if err != nil {
				return 0, err
			}
			created++
		}

		if onItem != nil {
			onItem(*item)
		}

		n, err := s.seedNodes(ctx, q, catalogType, item, level+1, node.children, onItem)
		if err != nil {
			return 0, err
		}
		created += n
	}
	return created, nil
}

// findSeedItem looks up a system item by its seed key.
func (s *SQLiteStorage) findSeedItem(ctx context.Context, q dbtx, catalogType model.CatalogType, parentID *string, slug string) (*model.CatalogItem, error) {
	query := fmt.Sprintf(`SELECT %s FROM catalog_items
		WHERE catalog_type = ? AND COALESCE(parent_id, '') = COALESCE(?, '') AND slug = ?`, itemColumns)

	row := q.QueryRowContext(ctx, query, string(catalogType), parentID, slug)
	item, err := scanItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query seed item: %w", err)
	}
	return item, nil
}
