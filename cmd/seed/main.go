// Command seed migrates the analytics schema and loads demo data.
//
// Usage: go run ./cmd/seed [-reset]
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"mealplan-admin-service/internal/analytics"
	"mealplan-admin-service/internal/auth"
	"mealplan-admin-service/internal/config"
	"mealplan-admin-service/internal/logger"
)

func main() {
	_ = godotenv.Load()

	reset := flag.Bool("reset", false, "truncate every analytics table before seeding")
	dsn := flag.String("dsn", "", "postgres connection string (defaults to DATABASE_URL)")
	flag.Parse()

	cfg := config.Load()
	log, err := logger.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	url := strings.TrimSpace(*dsn)
	if url == "" {
		url = cfg.DatabaseURL
	}
	if url == "" {
		log.Fatal("DATABASE_URL is required")
	}

	db, err := gorm.Open(postgres.Open(url), &gorm.Config{
		Logger:  gormlogger.Default.LogMode(gormlogger.Warn),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		log.Fatal("database connection failed", zap.Error(err))
	}

	if err := db.AutoMigrate(allModels()...); err != nil {
		log.Fatal("schema migration failed", zap.Error(err))
	}
	log.Info("schema migrated")

	if *reset {
		if err := db.Exec(`truncate table order_items, orders, favorites, meals, users, upload_history cascade`).Error; err != nil {
			log.Fatal("reset failed", zap.Error(err))
		}
		log.Info("tables truncated")
	}

	data := buildDemoData(time.Now().UTC(), rand.New(rand.NewSource(42)))
	err = db.Transaction(func(tx *gorm.DB) error {
		for _, batch := range []any{&data.users, &data.meals, &data.orders, &data.favorites, &data.uploads} {
			if err := tx.Create(batch).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		log.Fatal("seeding failed", zap.Error(err))
	}
	log.Info("demo data seeded",
		zap.Int("users", len(data.users)),
		zap.Int("meals", len(data.meals)),
		zap.Int("orders", len(data.orders)),
		zap.Int("favorites", len(data.favorites)),
		zap.Int("uploads", len(data.uploads)),
	)

	adminEmail := "admin@example.com"
	if len(cfg.AdminEmails) > 0 {
		adminEmail = cfg.AdminEmails[0]
	}
	if cfg.JWTSecret == "" {
		log.Warn("JWT_SECRET is empty; no admin token printed")
		return
	}
	token, err := auth.SignAccessToken(uuid.NewString(), adminEmail, cfg.JWTSecret, 24*time.Hour)
	if err != nil {
		log.Fatal("sign admin token failed", zap.Error(err))
	}
	fmt.Printf("Admin token for %s (24h):\n%s\n", adminEmail, token)
}

type demoData struct {
	users     []User
	meals     []Meal
	orders    []Order
	favorites []Favorite
	uploads   []UploadHistory
}

type demoMeal struct {
	legacyID string
	name     string
	kind     string
	price    float64
	calories float64
	tags     any
}

var demoCatalog = []demoMeal{
	{name: "Green Power Bowl", kind: analytics.MealTypeLunch, price: 11.5, calories: 420, tags: []string{"vegan", "High Protein", "gluten-free"}},
	{name: "Keto Salmon Plate", kind: analytics.MealTypeDinner, price: 16.9, calories: 610, tags: "keto, Low Carb, omega_3"},
	{name: "Chicken Rice Classic", kind: analytics.MealTypeLunch, price: 9.75, calories: 540, tags: []string{"high protein", "Comfort"}},
	{legacyID: "meal-004", name: "Lentil Curry", kind: analytics.MealTypeDinner, price: 8.25, calories: 480, tags: "vegetarian,spicy"},
	{legacyID: "meal-005", name: "Steak & Greens", kind: analytics.MealTypeDinner, price: 24.0, calories: 760, tags: []string{"keto", "high-protein"}},
	{name: "Overnight Oats", kind: analytics.MealTypeBreakfast, price: 5.5, calories: 310, tags: []string{"breakfast", "Vegetarian"}},
	{name: "Tofu Stir Fry", kind: analytics.MealTypeLunch, price: 10.0, calories: 390, tags: "vegan, Spicy"},
	{name: "Protein Pancakes", kind: analytics.MealTypeBreakfast, price: 7.25, calories: 520, tags: []string{"breakfast", "high protein"}},
	{name: "Trail Mix Cup", kind: analytics.MealTypeSnack, price: 3.5, calories: 240, tags: []string{"snack", "Vegan"}},
}

const demoFavorites = 18

func buildDemoData(now time.Time, rng *rand.Rand) demoData {
	var d demoData

	for i := 0; i < 14; i++ {
		d.users = append(d.users, User{
			ID:         uuid.New(),
			Name:       fmt.Sprintf("Demo User %02d", i+1),
			Email:      fmt.Sprintf("user%02d@example.com", i+1),
			IsVerified: i%3 != 0,
			CreatedAt:  now.Add(-time.Duration(rng.Intn(20*24)) * time.Hour),
		})
	}

	mealRefs := make([]string, 0, len(demoCatalog))
	for _, c := range demoCatalog {
		tags, _ := json.Marshal(c.tags)
		m := Meal{
			ID:       uuid.New(),
			Name:     c.name,
			Type:     c.kind,
			Price:    floatPtr(c.price),
			Calories: floatPtr(c.calories),
			Protein:  floatPtr(float64(10 + rng.Intn(40))),
			Carbs:    floatPtr(float64(5 + rng.Intn(60))),
			Fat:      floatPtr(float64(5 + rng.Intn(30))),
			Tags:     datatypes.JSON(tags),
		}
		ref := m.ID.String()
		if c.legacyID != "" {
			legacy := c.legacyID
			m.LegacyID = &legacy
			ref = legacy
		}
		d.meals = append(d.meals, m)
		mealRefs = append(mealRefs, ref)
	}
	// Order history still references a meal that was removed from the catalog.
	mealRefs = append(mealRefs, "meal-retired")

	for i := 0; i < 40; i++ {
		user := d.users[rng.Intn(len(d.users))]
		userID := user.ID
		order := Order{
			ID:            uuid.New(),
			UserID:        &userID,
			OrderDate:     now.Add(-time.Duration(rng.Intn(14*24*60)) * time.Minute),
			PaymentStatus: []string{"paid", "paid", "pending", "refunded"}[rng.Intn(4)],
		}
		for n := 1 + rng.Intn(3); n > 0; n-- {
			idx := rng.Intn(len(mealRefs))
			price, name := 12.0, "Retired Special"
			if idx < len(demoCatalog) {
				price, name = demoCatalog[idx].price, demoCatalog[idx].name
			}
			qty := int64(1 + rng.Intn(2))
			order.Items = append(order.Items, OrderItem{MealID: mealRefs[idx], MealName: name, Quantity: qty, Price: price})
			order.TotalAmount += price * float64(qty)
		}
		d.orders = append(d.orders, order)
	}

	type favoriteKey struct {
		user uuid.UUID
		meal string
	}
	seen := make(map[favoriteKey]struct{}, demoFavorites)
	for len(d.favorites) < demoFavorites {
		userID := d.users[rng.Intn(len(d.users))].ID
		key := favoriteKey{user: userID, meal: mealRefs[rng.Intn(len(demoCatalog))]}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		d.favorites = append(d.favorites, Favorite{
			UserID:    &userID,
			MealID:    key.meal,
			CreatedAt: now.Add(-time.Duration(rng.Intn(10*24)) * time.Hour),
		})
	}

	errs, _ := json.Marshal([]string{"row 7: missing price", "row 12: unknown meal type"})
	d.uploads = []UploadHistory{
		{Filename: "meals-march.csv", UploadedBy: "admin@example.com", TotalRows: 40, SuccessCount: 38, ErrorCount: 2, Errors: datatypes.JSON(errs), CreatedAt: now.Add(-26 * time.Hour)},
		{Filename: "meals-initial.csv", UploadedBy: "admin@example.com", TotalRows: 8, SuccessCount: 8, Errors: datatypes.JSON("[]"), CreatedAt: now.Add(-9 * 24 * time.Hour)},
	}
	return d
}

func floatPtr(v float64) *float64 {
	return &v
}
