// Package model defines the core domain types for the harmonia catalog.
package model

import (
	"strings"
	"time"
	"unicode"
)

// CatalogType partitions catalog items into independent trees, one per
// business domain. Items of different types never share a tree.
type CatalogType string

// The closed set of catalog types. Adding a domain means adding a constant
// here and a usage mapping in the storage layer; nothing else changes.
const (
	TypeTransactionCategory   CatalogType = "transaction_category"
	TypeInvestmentCategory    CatalogType = "investment_category"
	TypeBudgetCategory        CatalogType = "budget_category"
	TypeExerciseCategory      CatalogType = "exercise_category"
	TypeEquipmentCategory     CatalogType = "equipment_category"
	TypeMuscleGroup           CatalogType = "muscle_group"
	TypeMealCategory          CatalogType = "meal_category"
	TypeFoodCategory          CatalogType = "food_category"
	TypeUnitCategory          CatalogType = "unit_category"
	TypeNutritionGoalCategory CatalogType = "nutrition_goal_category"
	TypeRelationshipType      CatalogType = "relationship_type"
	TypeEventCategory         CatalogType = "event_category"
	TypeReminderCategory      CatalogType = "reminder_category"
	TypeActivityCategory      CatalogType = "activity_category"
	TypeSocialCircleType      CatalogType = "social_circle_type"
)

// catalogTypes is the registry backing CatalogTypes and CatalogType.Valid.
var catalogTypes = []CatalogType{
	TypeTransactionCategory,
	TypeInvestmentCategory,
	TypeBudgetCategory,
	TypeExerciseCategory,
	TypeEquipmentCategory,
	TypeMuscleGroup,
	TypeMealCategory,
	TypeFoodCategory,
	TypeUnitCategory,
	TypeNutritionGoalCategory,
	TypeRelationshipType,
	TypeEventCategory,
	TypeReminderCategory,
	TypeActivityCategory,
	TypeSocialCircleType,
}

// CatalogTypes returns all registered catalog types in a stable order.
func CatalogTypes() []CatalogType {
	out := make([]CatalogType, len(catalogTypes))
	copy(out, catalogTypes)
	return out
}

// Valid reports whether t is one of the registered catalog types.
func (t CatalogType) Valid() bool {
	for _, known := range catalogTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Name length bounds for catalog items.
const (
	MinNameLength = 2
	MaxNameLength = 50
)

// MaxBreadcrumbDepth caps ancestor traversal. The tree invariants make a
// cycle impossible; hitting this ceiling means stored data is corrupt.
const MaxBreadcrumbDepth = 20

// CatalogItem is a single entry in one of the per-domain catalog trees.
// System items (IsSystem == true) are seeded, globally visible and immutable;
// user items belong to exactly one user.
type CatalogItem struct {
	CreatedAt   time.Time
	UpdatedAt   time.Time
	ParentID    *string
	UserID      *string
	ID          string
	CatalogType CatalogType
	Name        string
	Slug        string
	Description string
	Icon        string
	Color       string
	Metadata    string
	Level       int
	SortOrder   int
	IsSystem    bool
	IsActive    bool
}

// VisibleTo reports whether the item can be read by the given caller.
// System items are visible to everyone; user items only to their owner.
func (c *CatalogItem) VisibleTo(userID string) bool {
	if c.IsSystem {
		return true
	}
	return c.UserID != nil && *c.UserID == userID
}

// MutableBy reports whether the item can be modified or deleted by the
// given caller. System items are immutable through the mutation path.
func (c *CatalogItem) MutableBy(userID string) bool {
	return !c.IsSystem && c.UserID != nil && *c.UserID == userID
}

// Slugify derives a URL-safe slug from a display name: lowercase, runs of
// non-alphanumeric characters collapsed to single hyphens, no leading or
// trailing hyphen.
func Slugify(name string) string {
	var b strings.Builder
	b.Grow(len(name))

	lastHyphen := true // suppress a leading hyphen
	for _, r := range strings.ToLower(name) {
		if unicode.IsLetter(r) && r < unicode.MaxASCII || unicode.IsDigit(r) && r < unicode.MaxASCII {
			b.WriteRune(r)
			lastHyphen = false
			continue
		}
		if !lastHyphen {
			b.WriteByte('-')
			lastHyphen = true
		}
	}

	return strings.TrimSuffix(b.String(), "-")
}
