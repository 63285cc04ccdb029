package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"mealplan-admin-service/internal/analytics"
)

// Store keeps every collection in memory. It backs the demo mode and the
// tests; all methods are safe for concurrent use.
type Store struct {
	mu        sync.RWMutex
	users     []analytics.User
	orders    []analytics.Order
	meals     []analytics.Meal
	favorites []analytics.Favorite
	uploads   []analytics.Upload
}

func New() *Store {
	return &Store{}
}

// Sources exposes the store under every analytics collaborator interface.
func (s *Store) Sources() analytics.Sources {
	return analytics.Sources{
		Users:     s,
		Orders:    s,
		Meals:     s,
		Favorites: s,
		Uploads:   s,
	}
}

func newID() string {
	return uuid.NewString()
}

func (s *Store) AddUser(u analytics.User) analytics.User {
	if u.ID == "" {
		u.ID = newID()
	}
	s.mu.Lock()
	s.users = append(s.users, u)
	s.mu.Unlock()
	return u
}

func (s *Store) AddOrder(o analytics.Order) analytics.Order {
	if o.ID == "" {
		o.ID = newID()
	}
	items := make([]analytics.LineItem, len(o.Items))
	for i, item := range o.Items {
		item.OrderID = o.ID
		items[i] = item
	}
	o.Items = items
	s.mu.Lock()
	s.orders = append(s.orders, o)
	s.mu.Unlock()
	return o
}

func (s *Store) AddMeal(m analytics.Meal) analytics.Meal {
	if m.ID == "" {
		m.ID = newID()
	}
	s.mu.Lock()
	s.meals = append(s.meals, m)
	s.mu.Unlock()
	return m
}

// DeleteMeal removes a meal from the catalog; orders and favorites that
// reference it are left alone.
func (s *Store) DeleteMeal(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, m := range s.meals {
		if m.ID == id {
			s.meals = append(s.meals[:i], s.meals[i+1:]...)
			return true
		}
	}
	return false
}

func (s *Store) AddFavorite(f analytics.Favorite) analytics.Favorite {
	s.mu.Lock()
	s.favorites = append(s.favorites, f)
	s.mu.Unlock()
	return f
}

func (s *Store) AddUpload(u analytics.Upload) analytics.Upload {
	if u.ID == "" {
		u.ID = newID()
	}
	s.mu.Lock()
	s.uploads = append(s.uploads, u)
	s.mu.Unlock()
	return u
}

// Users

func (s *Store) CountUsers(ctx context.Context, filter analytics.UserFilter) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	var n int64
	for _, u := range s.users {
		if filter.VerifiedOnly && !u.IsVerified {
			continue
		}
		if !filter.Created.Contains(u.CreatedAt) {
			continue
		}
		n++
	}
	return n, nil
}

func (s *Store) RecentUsers(ctx context.Context, limit int) ([]analytics.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	users := append([]analytics.User(nil), s.users...)
	s.mu.RUnlock()
	sort.SliceStable(users, func(i, j int) bool {
		return users[i].CreatedAt.After(users[j].CreatedAt)
	})
	return head(users, limit), nil
}

func (s *Store) FindUser(ctx context.Context, id string) (analytics.User, error) {
	if err := ctx.Err(); err != nil {
		return analytics.User{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.ID == id {
			return u, nil
		}
	}
	return analytics.User{}, analytics.ErrNotFound
}

// Orders

func (s *Store) CountOrders(ctx context.Context, r analytics.TimeRange) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	var n int64
	for _, o := range s.orders {
		if r.Contains(o.OrderDate) {
			n++
		}
	}
	return n, nil
}

func (s *Store) SumRevenue(ctx context.Context, r analytics.TimeRange) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	var sum float64
	for _, o := range s.orders {
		if r.Contains(o.OrderDate) {
			sum += o.TotalAmount
		}
	}
	return sum, nil
}

func (s *Store) RecentOrders(ctx context.Context, limit int) ([]analytics.Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	orders := append([]analytics.Order(nil), s.orders...)
	s.mu.RUnlock()
	sort.SliceStable(orders, func(i, j int) bool {
		return orders[i].OrderDate.After(orders[j].OrderDate)
	})
	return head(orders, limit), nil
}

func (s *Store) OrderTimes(ctx context.Context, r analytics.TimeRange) ([]time.Time, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]time.Time, 0, len(s.orders))
	for _, o := range s.orders {
		if r.Contains(o.OrderDate) {
			out = append(out, o.OrderDate)
		}
	}
	return out, nil
}

func (s *Store) OrderCountsByUser(ctx context.Context) (map[string]int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	counts := make(map[string]int64)
	for _, o := range s.orders {
		if o.UserID != "" {
			counts[o.UserID]++
		}
	}
	return counts, nil
}

func (s *Store) OrderingUsers(ctx context.Context, r analytics.TimeRange) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, o := range s.orders {
		if o.UserID == "" || !r.Contains(o.OrderDate) {
			continue
		}
		if _, ok := seen[o.UserID]; ok {
			continue
		}
		seen[o.UserID] = struct{}{}
		out = append(out, o.UserID)
	}
	return out, nil
}

func (s *Store) LineItems(ctx context.Context) ([]analytics.LineItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]analytics.LineItem, 0)
	for _, o := range s.orders {
		out = append(out, o.Items...)
	}
	return out, nil
}

// Meals

func (s *Store) CountMeals(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.meals)), nil
}

func (s *Store) CountByType(ctx context.Context) ([]analytics.TypeCount, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	counts := make(map[string]int64)
	order := make([]string, 0)
	for _, m := range s.meals {
		if _, ok := counts[m.Type]; !ok {
			order = append(order, m.Type)
		}
		counts[m.Type]++
	}
	out := make([]analytics.TypeCount, 0, len(order))
	for _, t := range order {
		out = append(out, analytics.TypeCount{Type: t, Count: counts[t]})
	}
	return out, nil
}

func (s *Store) ListMeals(ctx context.Context) ([]analytics.Meal, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]analytics.Meal{}, s.meals...), nil
}

// FindMealByRef only understands UUID references, matching the primary key
// shape of the relational store.
func (s *Store) FindMealByRef(ctx context.Context, ref string) (analytics.Meal, error) {
	if err := ctx.Err(); err != nil {
		return analytics.Meal{}, err
	}
	id, err := uuid.Parse(ref)
	if err != nil {
		return analytics.Meal{}, analytics.ErrNotFound
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, m := range s.meals {
		if parsed, err := uuid.Parse(m.ID); err == nil && parsed == id {
			return m, nil
		}
	}
	return analytics.Meal{}, analytics.ErrNotFound
}

func (s *Store) FindMealByKey(ctx context.Context, key string) (analytics.Meal, error) {
	if err := ctx.Err(); err != nil {
		return analytics.Meal{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, m := range s.meals {
		if m.LegacyID != "" && m.LegacyID == key {
			return m, nil
		}
	}
	return analytics.Meal{}, analytics.ErrNotFound
}

// Favorites

func (s *Store) CountFavorites(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.favorites)), nil
}

func (s *Store) TopFavoritedMeals(ctx context.Context, limit int) ([]analytics.MealCount, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	counts := make(map[string]int64)
	for _, f := range s.favorites {
		counts[f.MealID]++
	}
	s.mu.RUnlock()

	out := make([]analytics.MealCount, 0, len(counts))
	for id, count := range counts {
		out = append(out, analytics.MealCount{MealID: id, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].MealID < out[j].MealID
	})
	return head(out, limit), nil
}

func (s *Store) FavoritingUsers(ctx context.Context, r analytics.TimeRange) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, f := range s.favorites {
		if f.UserID == "" || !r.Contains(f.CreatedAt) {
			continue
		}
		if _, ok := seen[f.UserID]; ok {
			continue
		}
		seen[f.UserID] = struct{}{}
		out = append(out, f.UserID)
	}
	return out, nil
}

// Uploads

func (s *Store) RecentUploads(ctx context.Context, limit int) ([]analytics.Upload, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	uploads := append([]analytics.Upload(nil), s.uploads...)
	s.mu.RUnlock()
	sort.SliceStable(uploads, func(i, j int) bool {
		return uploads[i].CreatedAt.After(uploads[j].CreatedAt)
	})
	return head(uploads, limit), nil
}

func head[T any](values []T, limit int) []T {
	if limit > 0 && len(values) > limit {
		return values[:limit]
	}
	if values == nil {
		return []T{}
	}
	return values
}
