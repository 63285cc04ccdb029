package analytics

import (
	"context"
	"fmt"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"
)

const (
	trendDays         = 14
	recentOrdersLimit = 5
	topSellingLimit   = 5
)

type dayTotals struct {
	revenue float64
	orders  int64
}

type orderMetrics struct {
	total           int64
	today           int64
	revenue         float64
	revenueData     []RevenuePoint
	orderTrends     []OrderTrendPoint
	recent          []RecentOrder
	byHour          []HourCount
	topSelling      []TopSellingMeal
	usersWithOrders int
	repeatCustomers int
}

func (s *Service) orderMetrics(ctx context.Context, w Windows) (orderMetrics, error) {
	var m orderMetrics
	orders := s.src.Orders

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		total, err := orders.CountOrders(gctx, TimeRange{})
		if err != nil {
			return fmt.Errorf("count orders: %w", err)
		}
		m.total = total
		return nil
	})
	g.Go(func() error {
		today, err := orders.CountOrders(gctx, Since(w.Today))
		if err != nil {
			return fmt.Errorf("count orders today: %w", err)
		}
		m.today = today
		return nil
	})
	g.Go(func() error {
		revenue, err := orders.SumRevenue(gctx, TimeRange{})
		if err != nil {
			return fmt.Errorf("sum revenue: %w", err)
		}
		m.revenue = revenue
		return nil
	})
	g.Go(func() error {
		days := w.LastDays(trendDays)
		totals, err := mapDays(gctx, days, func(ctx context.Context, day DayRange) (dayTotals, error) {
			revenue, err := orders.SumRevenue(ctx, day.Range())
			if err != nil {
				return dayTotals{}, err
			}
			count, err := orders.CountOrders(ctx, day.Range())
			if err != nil {
				return dayTotals{}, err
			}
			return dayTotals{revenue: revenue, orders: count}, nil
		})
		if err != nil {
			return fmt.Errorf("daily order trends: %w", err)
		}
		m.revenueData, m.orderTrends = buildDailySeries(days, totals)
		return nil
	})
	g.Go(func() error {
		recent, err := s.recentOrders(gctx)
		if err != nil {
			return fmt.Errorf("recent orders: %w", err)
		}
		m.recent = recent
		return nil
	})
	g.Go(func() error {
		times, err := orders.OrderTimes(gctx, Since(w.ThirtyDaysAgo))
		if err != nil {
			return fmt.Errorf("orders by hour: %w", err)
		}
		m.byHour = buildOrdersByHour(times, w.Now.Location())
		return nil
	})
	g.Go(func() error {
		items, err := orders.LineItems(gctx)
		if err != nil {
			return fmt.Errorf("top selling meals: %w", err)
		}
		top := buildTopSellingMeals(items, topSellingLimit)
		for i := range top {
			top[i].MealName = s.resolver.ResolveName(gctx, top[i].MealID)
		}
		m.topSelling = top
		return nil
	})
	g.Go(func() error {
		counts, err := orders.OrderCountsByUser(gctx)
		if err != nil {
			return fmt.Errorf("orders per user: %w", err)
		}
		m.usersWithOrders, m.repeatCustomers = summarizeCustomers(counts)
		return nil
	})
	if err := g.Wait(); err != nil {
		return orderMetrics{}, err
	}
	return m, nil
}

func (s *Service) recentOrders(ctx context.Context) ([]RecentOrder, error) {
	orders, err := s.src.Orders.RecentOrders(ctx, recentOrdersLimit)
	if err != nil {
		return nil, err
	}

	out := make([]RecentOrder, 0, len(orders))
	for _, order := range orders {
		row := RecentOrder{
			ID:            order.ID,
			UserName:      UnknownUser,
			TotalAmount:   order.TotalAmount,
			ItemCount:     len(order.Items),
			PaymentStatus: order.PaymentStatus,
			OrderDate:     order.OrderDate,
		}
		if order.UserID != "" {
			if user, err := s.src.Users.FindUser(ctx, order.UserID); err == nil {
				row.UserName = nameOr(user.Name, UnknownUser)
				row.UserEmail = user.Email
			}
		}
		out = append(out, row)
	}
	return out, nil
}

func buildDailySeries(days []DayRange, totals []dayTotals) ([]RevenuePoint, []OrderTrendPoint) {
	revenue := make([]RevenuePoint, 0, len(days))
	trend := make([]OrderTrendPoint, 0, len(days))
	for i, day := range days {
		label := day.Label()
		revenue = append(revenue, RevenuePoint{Date: label, Revenue: totals[i].revenue})
		trend = append(trend, OrderTrendPoint{Date: label, Orders: totals[i].orders})
	}
	return revenue, trend
}

// buildOrdersByHour is a sparse histogram: hours without orders are omitted.
func buildOrdersByHour(times []time.Time, loc *time.Location) []HourCount {
	var counts [24]int64
	for _, t := range times {
		counts[t.In(loc).Hour()]++
	}
	out := make([]HourCount, 0)
	for hour, count := range counts {
		if count > 0 {
			out = append(out, HourCount{Hour: hour, Count: count})
		}
	}
	return out
}

func buildTopSellingMeals(items []LineItem, limit int) []TopSellingMeal {
	type aggregate struct {
		row    TopSellingMeal
		orders map[string]struct{}
	}
	byMeal := make(map[string]*aggregate)
	for _, item := range items {
		agg := byMeal[item.MealID]
		if agg == nil {
			agg = &aggregate{row: TopSellingMeal{MealID: item.MealID}, orders: map[string]struct{}{}}
			byMeal[item.MealID] = agg
		}
		agg.row.TotalQuantity += item.Quantity
		agg.row.TotalRevenue += item.Price * float64(item.Quantity)
		agg.orders[item.OrderID] = struct{}{}
	}

	out := make([]TopSellingMeal, 0, len(byMeal))
	for _, agg := range byMeal {
		agg.row.OrderCount = int64(len(agg.orders))
		agg.row.TotalRevenue = round(agg.row.TotalRevenue, 2)
		out = append(out, agg.row)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalQuantity != out[j].TotalQuantity {
			return out[i].TotalQuantity > out[j].TotalQuantity
		}
		return out[i].MealID < out[j].MealID
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

func summarizeCustomers(counts map[string]int64) (withOrders int, repeat int) {
	for _, count := range counts {
		if count >= 1 {
			withOrders++
		}
		if count > 1 {
			repeat++
		}
	}
	return withOrders, repeat
}
