package analytics

import (
	"context"
	"errors"

	"go.uber.org/zap"
)

const (
	UnknownMeal = "Unknown Meal"
	UnknownUser = "Unknown"
)

// MealResolver turns a meal identifier found on an order line or a favorite
// into a display name. The identifier is tried as a native reference first and
// as a plain string key second; anything unresolved becomes UnknownMeal.
type MealResolver struct {
	meals  MealStore
	logger *zap.Logger
}

func NewMealResolver(meals MealStore, logger *zap.Logger) *MealResolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MealResolver{meals: meals, logger: logger}
}

func (r *MealResolver) ResolveName(ctx context.Context, id string) string {
	if id == "" || r.meals == nil {
		return UnknownMeal
	}

	meal, err := r.meals.FindMealByRef(ctx, id)
	if err == nil {
		return nameOr(meal.Name, UnknownMeal)
	}
	if !errors.Is(err, ErrNotFound) {
		r.logger.Debug("meal lookup by reference failed", zap.String("mealId", id), zap.Error(err))
	}

	meal, err = r.meals.FindMealByKey(ctx, id)
	if err == nil {
		return nameOr(meal.Name, UnknownMeal)
	}
	if !errors.Is(err, ErrNotFound) {
		r.logger.Debug("meal lookup by key failed", zap.String("mealId", id), zap.Error(err))
	}
	return UnknownMeal
}

func nameOr(name, fallback string) string {
	if name == "" {
		return fallback
	}
	return name
}
