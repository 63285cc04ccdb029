package analytics

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by lookups when the referenced record does not exist
// or the identifier is not of the form the lookup understands.
var ErrNotFound = errors.New("record not found")

// TimeRange is inclusive on both ends. A zero From or To leaves that side open.
type TimeRange struct {
	From time.Time
	To   time.Time
}

func Since(from time.Time) TimeRange {
	return TimeRange{From: from}
}

func Between(from, to time.Time) TimeRange {
	return TimeRange{From: from, To: to}
}

func (r TimeRange) Contains(t time.Time) bool {
	if !r.From.IsZero() && t.Before(r.From) {
		return false
	}
	if !r.To.IsZero() && t.After(r.To) {
		return false
	}
	return true
}

type UserFilter struct {
	Created      TimeRange
	VerifiedOnly bool
}

type UserStore interface {
	CountUsers(ctx context.Context, filter UserFilter) (int64, error)
	RecentUsers(ctx context.Context, limit int) ([]User, error)
	FindUser(ctx context.Context, id string) (User, error)
}

type OrderStore interface {
	CountOrders(ctx context.Context, r TimeRange) (int64, error)
	SumRevenue(ctx context.Context, r TimeRange) (float64, error)
	RecentOrders(ctx context.Context, limit int) ([]Order, error)
	// OrderTimes returns the order dates in r; hour bucketing happens in the
	// service location, never in the store's.
	OrderTimes(ctx context.Context, r TimeRange) ([]time.Time, error)
	// OrderCountsByUser groups the whole order history by purchaser.
	OrderCountsByUser(ctx context.Context) (map[string]int64, error)
	OrderingUsers(ctx context.Context, r TimeRange) ([]string, error)
	LineItems(ctx context.Context) ([]LineItem, error)
}

type MealStore interface {
	CountMeals(ctx context.Context) (int64, error)
	CountByType(ctx context.Context) ([]TypeCount, error)
	ListMeals(ctx context.Context) ([]Meal, error)
	// FindMealByRef looks a meal up by its native document reference.
	FindMealByRef(ctx context.Context, ref string) (Meal, error)
	// FindMealByKey looks a meal up by a plain string identifier.
	FindMealByKey(ctx context.Context, key string) (Meal, error)
}

type FavoriteStore interface {
	CountFavorites(ctx context.Context) (int64, error)
	TopFavoritedMeals(ctx context.Context, limit int) ([]MealCount, error)
	FavoritingUsers(ctx context.Context, r TimeRange) ([]string, error)
}

type UploadStore interface {
	RecentUploads(ctx context.Context, limit int) ([]Upload, error)
}

// Sources bundles the five read-only collections the report is built from.
type Sources struct {
	Users     UserStore
	Orders    OrderStore
	Meals     MealStore
	Favorites FavoriteStore
	Uploads   UploadStore
}
