package analytics

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

const recentUsersLimit = 5

type userMetrics struct {
	total        int64
	verified     int64
	unverified   int64
	createdToday int64
	createdLast7 int64
	createdPrev7 int64
	growth       []UserGrowthPoint
	recent       []RecentUser
}

func (s *Service) userMetrics(ctx context.Context, w Windows) (userMetrics, error) {
	var m userMetrics
	users := s.src.Users

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		total, err := users.CountUsers(gctx, UserFilter{})
		if err != nil {
			return fmt.Errorf("count users: %w", err)
		}
		m.total = total
		return nil
	})
	g.Go(func() error {
		verified, err := users.CountUsers(gctx, UserFilter{VerifiedOnly: true})
		if err != nil {
			return fmt.Errorf("count verified users: %w", err)
		}
		m.verified = verified
		return nil
	})
	g.Go(func() error {
		count, err := users.CountUsers(gctx, UserFilter{Created: Since(w.Today)})
		if err != nil {
			return fmt.Errorf("count users created today: %w", err)
		}
		m.createdToday = count
		return nil
	})
	g.Go(func() error {
		count, err := users.CountUsers(gctx, UserFilter{Created: Since(w.SevenDaysAgo)})
		if err != nil {
			return fmt.Errorf("count users created last 7 days: %w", err)
		}
		m.createdLast7 = count
		return nil
	})
	g.Go(func() error {
		previous := Between(w.FourteenDaysAgo, w.SevenDaysAgo.Add(-1))
		count, err := users.CountUsers(gctx, UserFilter{Created: previous})
		if err != nil {
			return fmt.Errorf("count users created previous 7 days: %w", err)
		}
		m.createdPrev7 = count
		return nil
	})
	g.Go(func() error {
		growth, err := mapDays(gctx, w.LastDays(7), func(ctx context.Context, day DayRange) (UserGrowthPoint, error) {
			count, err := users.CountUsers(ctx, UserFilter{Created: day.Range()})
			if err != nil {
				return UserGrowthPoint{}, err
			}
			return UserGrowthPoint{Day: day.Weekday(), Users: count}, nil
		})
		if err != nil {
			return fmt.Errorf("user growth: %w", err)
		}
		m.growth = growth
		return nil
	})
	g.Go(func() error {
		recent, err := users.RecentUsers(gctx, recentUsersLimit)
		if err != nil {
			return fmt.Errorf("recent users: %w", err)
		}
		m.recent = make([]RecentUser, 0, len(recent))
		for _, u := range recent {
			m.recent = append(m.recent, RecentUser{
				Name:       u.Name,
				Email:      u.Email,
				CreatedAt:  u.CreatedAt,
				IsVerified: u.IsVerified,
			})
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return userMetrics{}, err
	}

	m.unverified = m.total - m.verified
	if m.unverified < 0 {
		m.unverified = 0
	}
	return m, nil
}
