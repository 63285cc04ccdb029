package analytics

import "time"

// Raw records as the owning collaborators store them. The analytics core
// only ever reads these.

type User struct {
	ID         string
	Name       string
	Email      string
	IsVerified bool
	CreatedAt  time.Time
}

type LineItem struct {
	OrderID  string
	MealID   string
	MealName string
	Quantity int64
	Price    float64
}

type Order struct {
	ID            string
	UserID        string
	OrderDate     time.Time
	PaymentStatus string
	TotalAmount   float64
	Items         []LineItem
}

type Meal struct {
	ID       string
	LegacyID string
	Name     string
	Type     string
	Price    *float64
	Calories *float64
	Protein  *float64
	Carbs    *float64
	Fat      *float64
	Tags     Tags
}

type Favorite struct {
	UserID    string
	MealID    string
	CreatedAt time.Time
}

type Upload struct {
	ID           string
	Filename     string
	UploadedBy   string
	TotalRows    int64
	SuccessCount int64
	ErrorCount   int64
	Errors       []string
	CreatedAt    time.Time
}

// Grouped results returned by the stores.

type TypeCount struct {
	Type  string `json:"type"`
	Count int64  `json:"count"`
}

type MealCount struct {
	MealID string
	Count  int64
}

const (
	MealTypeBreakfast = "Breakfast"
	MealTypeLunch     = "Lunch"
	MealTypeDinner    = "Dinner"
	MealTypeSnack     = "Snack"
)
