package analytics

import "time"

// Report is the flat admin dashboard payload. It is rebuilt on every request
// and never stored.
type Report struct {
	TotalUsers            int64             `json:"totalUsers"`
	VerifiedUsers         int64             `json:"verifiedUsers"`
	UnverifiedUsers       int64             `json:"unverifiedUsers"`
	ActiveUsersToday      int               `json:"activeUsersToday"`
	UsersCreatedToday     int64             `json:"usersCreatedToday"`
	UsersCreatedLast7Days int64             `json:"usersCreatedLast7Days"`
	UserGrowth            []UserGrowthPoint `json:"userGrowth"`
	TotalOrders           int64             `json:"totalOrders"`
	OrdersToday           int64             `json:"ordersToday"`
	TotalRevenue          float64           `json:"totalRevenue"`
	RevenueData           []RevenuePoint    `json:"revenueData"`
	OrderTrends           []OrderTrendPoint `json:"orderTrends"`
	RecentOrders          []RecentOrder     `json:"recentOrders"`
	TotalMeals            int64             `json:"totalMeals"`
	PopularPlans          []PopularPlan     `json:"popularPlans"`
	PopularTags           []TagCount        `json:"popularTags"`
	FavoriteMeals         []FavoriteMeal    `json:"favoriteMeals"`
	AverageOrderValue     float64           `json:"averageOrderValue"`
	MealsPerUser          float64           `json:"mealsPerUser"`
	ConversionRate        float64           `json:"conversionRate"`
	RepeatCustomerRate    float64           `json:"repeatCustomerRate"`
	RepeatCustomersCount  int               `json:"repeatCustomersCount"`
	TopSellingMeals       []TopSellingMeal  `json:"topSellingMeals"`
	PriceDistribution     []RangeCount      `json:"priceDistribution"`
	CalorieDistribution   []RangeCount      `json:"calorieDistribution"`
	AvgFavoritesPerUser   float64           `json:"avgFavoritesPerUser"`
	AvgOrdersPerUser      float64           `json:"avgOrdersPerUser"`
	TotalFavorites        int64             `json:"totalFavorites"`
	UsersWithOrdersCount  int               `json:"usersWithOrdersCount"`
	RevenueGrowth         float64           `json:"revenueGrowth"`
	OrdersGrowth          float64           `json:"ordersGrowth"`
	UsersGrowth           float64           `json:"usersGrowth"`
	RecentUploads         []RecentUpload    `json:"recentUploads"`
	MealTypeDistribution  []TypeCount       `json:"mealTypeDistribution"`
	OrdersByHour          []HourCount       `json:"ordersByHour"`
	RecentUsers           []RecentUser      `json:"recentUsers"`
}

type UserGrowthPoint struct {
	Day   string `json:"day"`
	Users int64  `json:"users"`
}

type RevenuePoint struct {
	Date    string  `json:"date"`
	Revenue float64 `json:"revenue"`
}

type OrderTrendPoint struct {
	Date   string `json:"date"`
	Orders int64  `json:"orders"`
}

type RecentOrder struct {
	ID            string    `json:"id"`
	UserName      string    `json:"userName"`
	UserEmail     string    `json:"userEmail"`
	TotalAmount   float64   `json:"totalAmount"`
	ItemCount     int       `json:"itemCount"`
	PaymentStatus string    `json:"paymentStatus"`
	OrderDate     time.Time `json:"orderDate"`
}

type PopularPlan struct {
	Name  string `json:"name"`
	Users int64  `json:"users"`
	Value int64  `json:"value"`
}

type TagCount struct {
	Tag   string `json:"tag"`
	Count int64  `json:"count"`
}

type FavoriteMeal struct {
	MealID string `json:"mealId"`
	Name   string `json:"name"`
	Count  int64  `json:"count"`
}

type TopSellingMeal struct {
	MealID        string  `json:"mealId"`
	MealName      string  `json:"mealName"`
	TotalQuantity int64   `json:"totalQuantity"`
	TotalRevenue  float64 `json:"totalRevenue"`
	OrderCount    int64   `json:"orderCount"`
}

type RangeCount struct {
	Range string `json:"range"`
	Count int64  `json:"count"`
}

type RecentUpload struct {
	Filename     string    `json:"filename"`
	UploadedBy   string    `json:"uploadedBy"`
	TotalRows    int64     `json:"totalRows"`
	SuccessCount int64     `json:"successCount"`
	ErrorCount   int64     `json:"errorCount"`
	CreatedAt    time.Time `json:"createdAt"`
}

type HourCount struct {
	Hour  int   `json:"hour"`
	Count int64 `json:"count"`
}

type RecentUser struct {
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	CreatedAt  time.Time `json:"createdAt"`
	IsVerified bool      `json:"isVerified"`
}
