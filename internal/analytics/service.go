package analytics

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const recentUploadsLimit = 5

// Service computes the admin analytics report from the read-only sources.
// It holds no state between calls.
type Service struct {
	src      Sources
	resolver *MealResolver
	logger   *zap.Logger
	location *time.Location
	now      func() time.Time
}

type Option func(*Service)

// WithClock overrides the wall clock used to build the date windows.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLocation sets the timezone day boundaries and hours are computed in.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.location = loc
		}
	}
}

func NewService(src Sources, logger *zap.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{
		src:      src,
		logger:   logger,
		location: time.Local,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.resolver = NewMealResolver(src.Meals, logger)
	return s
}

func (s *Service) Location() *time.Location {
	return s.location
}

// Summary runs every stage concurrently and assembles the report. Any stage
// error aborts the whole report; only the active-user sub-queries are
// tolerated.
func (s *Service) Summary(ctx context.Context) (*Report, error) {
	w := NewWindows(s.now().In(s.location))

	var (
		users     userMetrics
		orders    orderMetrics
		meals     mealMetrics
		favorites favoriteMetrics
		uploads   []RecentUpload
		active    int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		m, err := s.userMetrics(gctx, w)
		if err != nil {
			return fmt.Errorf("user metrics: %w", err)
		}
		users = m
		return nil
	})
	g.Go(func() error {
		m, err := s.orderMetrics(gctx, w)
		if err != nil {
			return fmt.Errorf("order metrics: %w", err)
		}
		orders = m
		return nil
	})
	g.Go(func() error {
		m, err := s.mealMetrics(gctx)
		if err != nil {
			return fmt.Errorf("meal metrics: %w", err)
		}
		meals = m
		return nil
	})
	g.Go(func() error {
		m, err := s.favoriteMetrics(gctx)
		if err != nil {
			return fmt.Errorf("favorite metrics: %w", err)
		}
		favorites = m
		return nil
	})
	g.Go(func() error {
		recent, err := s.src.Uploads.RecentUploads(gctx, recentUploadsLimit)
		if err != nil {
			return fmt.Errorf("recent uploads: %w", err)
		}
		uploads = recentUploadRows(recent)
		return nil
	})
	g.Go(func() error {
		active = s.activeUsers(gctx, w)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return assemble(users, orders, meals, favorites, uploads, active), nil
}

func recentUploadRows(uploads []Upload) []RecentUpload {
	out := make([]RecentUpload, 0, len(uploads))
	for _, u := range uploads {
		out = append(out, RecentUpload{
			Filename:     u.Filename,
			UploadedBy:   u.UploadedBy,
			TotalRows:    u.TotalRows,
			SuccessCount: u.SuccessCount,
			ErrorCount:   u.ErrorCount,
			CreatedAt:    u.CreatedAt,
		})
	}
	return out
}

func assemble(users userMetrics, orders orderMetrics, meals mealMetrics, favorites favoriteMetrics, uploads []RecentUpload, active int) *Report {
	g := computeGrowth(orders, users)
	totalUsers := float64(users.total)
	withOrders := float64(orders.usersWithOrders)

	return &Report{
		TotalUsers:            users.total,
		VerifiedUsers:         users.verified,
		UnverifiedUsers:       users.unverified,
		ActiveUsersToday:      active,
		UsersCreatedToday:     users.createdToday,
		UsersCreatedLast7Days: users.createdLast7,
		UserGrowth:            nonNil(users.growth),
		TotalOrders:           orders.total,
		OrdersToday:           orders.today,
		TotalRevenue:          orders.revenue,
		RevenueData:           nonNil(orders.revenueData),
		OrderTrends:           nonNil(orders.orderTrends),
		RecentOrders:          nonNil(orders.recent),
		TotalMeals:            meals.total,
		PopularPlans:          popularPlans(meals.byType),
		PopularTags:           nonNil(meals.popularTags),
		FavoriteMeals:         nonNil(favorites.top),
		AverageOrderValue:     ratio(orders.revenue, float64(orders.total), 2),
		MealsPerUser:          ratio(float64(meals.total), totalUsers, 1),
		ConversionRate:        percentOf(withOrders, totalUsers),
		RepeatCustomerRate:    percentOf(float64(orders.repeatCustomers), withOrders),
		RepeatCustomersCount:  orders.repeatCustomers,
		TopSellingMeals:       nonNil(orders.topSelling),
		PriceDistribution:     nonNil(meals.prices),
		CalorieDistribution:   nonNil(meals.calories),
		AvgFavoritesPerUser:   ratio(float64(favorites.total), totalUsers, 1),
		AvgOrdersPerUser:      ratio(float64(orders.total), withOrders, 1),
		TotalFavorites:        favorites.total,
		UsersWithOrdersCount:  orders.usersWithOrders,
		RevenueGrowth:         g.revenue,
		OrdersGrowth:          g.orders,
		UsersGrowth:           g.users,
		RecentUploads:         nonNil(uploads),
		MealTypeDistribution:  nonNil(meals.byType),
		OrdersByHour:          nonNil(orders.byHour),
		RecentUsers:           nonNil(users.recent),
	}
}

func nonNil[T any](values []T) []T {
	if values == nil {
		return []T{}
	}
	return values
}
