package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"mealplan-admin-service/internal/analytics"
	"mealplan-admin-service/internal/utils"
)

// Store reads the analytics collections from the relational schema that
// cmd/seed migrates.
type Store struct {
	DB *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Store {
	return &Store{DB: pool}
}

func (s *Store) Sources() analytics.Sources {
	return analytics.Sources{
		Users:     s,
		Orders:    s,
		Meals:     s,
		Favorites: s,
		Uploads:   s,
	}
}

// buildRangeClause appends the inclusive bounds of r on column to where/args.
func buildRangeClause(column string, r analytics.TimeRange, where []string, args []any) ([]string, []any) {
	if !r.From.IsZero() {
		args = append(args, r.From)
		where = append(where, column+" >= $"+strconv.Itoa(len(args)))
	}
	if !r.To.IsZero() {
		args = append(args, r.To)
		where = append(where, column+" <= $"+strconv.Itoa(len(args)))
	}
	return where, args
}

func whereSQL(where []string) string {
	if len(where) == 0 {
		return ""
	}
	return " where " + strings.Join(where, " and ")
}

func notFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return analytics.ErrNotFound
	}
	return err
}

// Users

func (s *Store) CountUsers(ctx context.Context, filter analytics.UserFilter) (int64, error) {
	where, args := buildRangeClause("created_at", filter.Created, nil, nil)
	if filter.VerifiedOnly {
		where = append(where, "is_verified = true")
	}
	var count int64
	err := s.DB.QueryRow(ctx, `select count(*) from users`+whereSQL(where), args...).Scan(&count)
	return count, err
}

func (s *Store) RecentUsers(ctx context.Context, limit int) ([]analytics.User, error) {
	rows, err := s.DB.Query(ctx, `
		select id::text, coalesce(name, ''), coalesce(email, ''), is_verified, created_at
		from users
		order by created_at desc
		limit $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]analytics.User, 0, limit)
	for rows.Next() {
		var u analytics.User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.IsVerified, &u.CreatedAt); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (s *Store) FindUser(ctx context.Context, id string) (analytics.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return analytics.User{}, analytics.ErrNotFound
	}
	var u analytics.User
	err := s.DB.QueryRow(ctx, `
		select id::text, coalesce(name, ''), coalesce(email, ''), is_verified, created_at
		from users
		where id = $1`, id).Scan(&u.ID, &u.Name, &u.Email, &u.IsVerified, &u.CreatedAt)
	if err != nil {
		return analytics.User{}, notFound(err)
	}
	return u, nil
}

// Orders

func (s *Store) CountOrders(ctx context.Context, r analytics.TimeRange) (int64, error) {
	where, args := buildRangeClause("order_date", r, nil, nil)
	var count int64
	err := s.DB.QueryRow(ctx, `select count(*) from orders`+whereSQL(where), args...).Scan(&count)
	return count, err
}

func (s *Store) SumRevenue(ctx context.Context, r analytics.TimeRange) (float64, error) {
	where, args := buildRangeClause("order_date", r, nil, nil)
	var total pgtype.Numeric
	err := s.DB.QueryRow(ctx, `select coalesce(sum(total_amount), 0) from orders`+whereSQL(where), args...).Scan(&total)
	if err != nil {
		return 0, err
	}
	return utils.NumericToFloat64(total), nil
}

func (s *Store) RecentOrders(ctx context.Context, limit int) ([]analytics.Order, error) {
	rows, err := s.DB.Query(ctx, `
		select id::text, coalesce(user_id::text, ''), order_date, coalesce(payment_status, ''), total_amount
		from orders
		order by order_date desc
		limit $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := make([]analytics.Order, 0, limit)
	ids := make([]string, 0, limit)
	for rows.Next() {
		var (
			o     analytics.Order
			total pgtype.Numeric
		)
		if err := rows.Scan(&o.ID, &o.UserID, &o.OrderDate, &o.PaymentStatus, &total); err != nil {
			return nil, err
		}
		o.TotalAmount = utils.NumericToFloat64(total)
		orders = append(orders, o)
		ids = append(ids, o.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return orders, nil
	}

	items, err := s.lineItems(ctx, ` where order_id = any($1::uuid[])`, ids)
	if err != nil {
		return nil, err
	}
	byOrder := make(map[string][]analytics.LineItem, len(ids))
	for _, item := range items {
		byOrder[item.OrderID] = append(byOrder[item.OrderID], item)
	}
	for i := range orders {
		orders[i].Items = byOrder[orders[i].ID]
	}
	return orders, nil
}

func (s *Store) OrderTimes(ctx context.Context, r analytics.TimeRange) ([]time.Time, error) {
	where, args := buildRangeClause("order_date", r, nil, nil)
	rows, err := s.DB.Query(ctx, `select order_date from orders`+whereSQL(where), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]time.Time, 0)
	for rows.Next() {
		var t time.Time
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *Store) OrderCountsByUser(ctx context.Context) (map[string]int64, error) {
	rows, err := s.DB.Query(ctx, `
		select user_id::text, count(*)
		from orders
		where user_id is not null
		group by user_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var (
			userID string
			count  int64
		)
		if err := rows.Scan(&userID, &count); err != nil {
			return nil, err
		}
		counts[userID] = count
	}
	return counts, rows.Err()
}

func (s *Store) OrderingUsers(ctx context.Context, r analytics.TimeRange) ([]string, error) {
	where, args := buildRangeClause("order_date", r, []string{"user_id is not null"}, nil)
	return s.distinctIDs(ctx, `select distinct user_id::text from orders`+whereSQL(where), args...)
}

func (s *Store) LineItems(ctx context.Context) ([]analytics.LineItem, error) {
	return s.lineItems(ctx, "")
}

func (s *Store) lineItems(ctx context.Context, where string, args ...any) ([]analytics.LineItem, error) {
	rows, err := s.DB.Query(ctx, `
		select order_id::text, coalesce(meal_id, ''), coalesce(meal_name, ''), quantity, price
		from order_items`+where, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]analytics.LineItem, 0)
	for rows.Next() {
		var (
			item  analytics.LineItem
			price pgtype.Numeric
		)
		if err := rows.Scan(&item.OrderID, &item.MealID, &item.MealName, &item.Quantity, &price); err != nil {
			return nil, err
		}
		item.Price = utils.NumericToFloat64(price)
		items = append(items, item)
	}
	return items, rows.Err()
}

// Meals

const mealColumns = `id::text, coalesce(legacy_id, ''), coalesce(name, ''), coalesce(type, ''),
		price, calories, protein, carbs, fat, tags`

func scanMeal(row pgx.Row) (analytics.Meal, error) {
	var (
		m                                    analytics.Meal
		price, calories, protein, carbs, fat pgtype.Numeric
		tags                                 []byte
	)
	if err := row.Scan(&m.ID, &m.LegacyID, &m.Name, &m.Type, &price, &calories, &protein, &carbs, &fat, &tags); err != nil {
		return analytics.Meal{}, err
	}
	m.Price = utils.NumericToFloat64Ptr(price)
	m.Calories = utils.NumericToFloat64Ptr(calories)
	m.Protein = utils.NumericToFloat64Ptr(protein)
	m.Carbs = utils.NumericToFloat64Ptr(carbs)
	m.Fat = utils.NumericToFloat64Ptr(fat)
	if len(tags) > 0 {
		// A malformed tags column only loses the tags, never the meal.
		_ = json.Unmarshal(tags, &m.Tags)
	}
	return m, nil
}

func (s *Store) CountMeals(ctx context.Context) (int64, error) {
	var count int64
	err := s.DB.QueryRow(ctx, `select count(*) from meals`).Scan(&count)
	return count, err
}

func (s *Store) CountByType(ctx context.Context) ([]analytics.TypeCount, error) {
	rows, err := s.DB.Query(ctx, `
		select coalesce(type, ''), count(*)
		from meals
		group by type
		order by count(*) desc`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]analytics.TypeCount, 0)
	for rows.Next() {
		var row analytics.TypeCount
		if err := rows.Scan(&row.Type, &row.Count); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (s *Store) ListMeals(ctx context.Context) ([]analytics.Meal, error) {
	rows, err := s.DB.Query(ctx, `select `+mealColumns+` from meals`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	meals := make([]analytics.Meal, 0)
	for rows.Next() {
		m, err := scanMeal(rows)
		if err != nil {
			return nil, err
		}
		meals = append(meals, m)
	}
	return meals, rows.Err()
}

func (s *Store) FindMealByRef(ctx context.Context, ref string) (analytics.Meal, error) {
	id, err := uuid.Parse(ref)
	if err != nil {
		return analytics.Meal{}, analytics.ErrNotFound
	}
	m, err := scanMeal(s.DB.QueryRow(ctx, `select `+mealColumns+` from meals where id = $1`, id.String()))
	if err != nil {
		return analytics.Meal{}, notFound(err)
	}
	return m, nil
}

func (s *Store) FindMealByKey(ctx context.Context, key string) (analytics.Meal, error) {
	if key == "" {
		return analytics.Meal{}, analytics.ErrNotFound
	}
	m, err := scanMeal(s.DB.QueryRow(ctx, `select `+mealColumns+` from meals where legacy_id = $1 limit 1`, key))
	if err != nil {
		return analytics.Meal{}, notFound(err)
	}
	return m, nil
}

// Favorites

func (s *Store) CountFavorites(ctx context.Context) (int64, error) {
	var count int64
	err := s.DB.QueryRow(ctx, `select count(*) from favorites`).Scan(&count)
	return count, err
}

func (s *Store) TopFavoritedMeals(ctx context.Context, limit int) ([]analytics.MealCount, error) {
	rows, err := s.DB.Query(ctx, `
		select meal_id, count(*) as favorites
		from favorites
		where meal_id is not null
		group by meal_id
		order by favorites desc, meal_id asc
		limit $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]analytics.MealCount, 0, limit)
	for rows.Next() {
		var row analytics.MealCount
		if err := rows.Scan(&row.MealID, &row.Count); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (s *Store) FavoritingUsers(ctx context.Context, r analytics.TimeRange) ([]string, error) {
	where, args := buildRangeClause("created_at", r, []string{"user_id is not null"}, nil)
	return s.distinctIDs(ctx, `select distinct user_id::text from favorites`+whereSQL(where), args...)
}

func (s *Store) distinctIDs(ctx context.Context, query string, args ...any) ([]string, error) {
	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Uploads

func (s *Store) RecentUploads(ctx context.Context, limit int) ([]analytics.Upload, error) {
	rows, err := s.DB.Query(ctx, `
		select id::text, coalesce(filename, ''), coalesce(uploaded_by, ''), total_rows, success_count, error_count, errors, created_at
		from upload_history
		order by created_at desc
		limit $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	uploads := make([]analytics.Upload, 0, limit)
	for rows.Next() {
		var (
			u       analytics.Upload
			rawErrs []byte
		)
		if err := rows.Scan(&u.ID, &u.Filename, &u.UploadedBy, &u.TotalRows, &u.SuccessCount, &u.ErrorCount, &rawErrs, &u.CreatedAt); err != nil {
			return nil, err
		}
		if len(rawErrs) > 0 {
			_ = json.Unmarshal(rawErrs, &u.Errors)
		}
		uploads = append(uploads, u)
	}
	return uploads, rows.Err()
}
