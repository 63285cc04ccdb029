package analytics

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const favoriteMealsLimit = 5

type favoriteMetrics struct {
	total int64
	top   []FavoriteMeal
}

func (s *Service) favoriteMetrics(ctx context.Context) (favoriteMetrics, error) {
	var m favoriteMetrics
	favorites := s.src.Favorites

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		total, err := favorites.CountFavorites(gctx)
		if err != nil {
			return fmt.Errorf("count favorites: %w", err)
		}
		m.total = total
		return nil
	})
	g.Go(func() error {
		top, err := favorites.TopFavoritedMeals(gctx, favoriteMealsLimit)
		if err != nil {
			return fmt.Errorf("favorite meals: %w", err)
		}
		m.top = make([]FavoriteMeal, 0, len(top))
		for _, row := range top {
			m.top = append(m.top, FavoriteMeal{
				MealID: row.MealID,
				Name:   s.resolver.ResolveName(gctx, row.MealID),
				Count:  row.Count,
			})
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return favoriteMetrics{}, err
	}
	return m, nil
}

// activeUsers is the number of distinct users who ordered or favorited since
// the start of the 7-day window. Either source failing only shrinks the set.
func (s *Service) activeUsers(ctx context.Context, w Windows) int {
	window := Since(w.SevenDaysAgo)

	var (
		mu     sync.Mutex
		active = make(map[string]struct{})
		wg     sync.WaitGroup
	)
	collect := func(source string, load func(context.Context, TimeRange) ([]string, error)) {
		defer wg.Done()
		ids, err := load(ctx, window)
		if err != nil {
			s.logger.Warn("active users sub-query failed", zap.String("source", source), zap.Error(err))
			return
		}
		mu.Lock()
		for _, id := range ids {
			if id != "" {
				active[id] = struct{}{}
			}
		}
		mu.Unlock()
	}

	wg.Add(2)
	go collect("orders", s.src.Orders.OrderingUsers)
	go collect("favorites", s.src.Favorites.FavoritingUsers)
	wg.Wait()
	return len(active)
}
