package mongo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"mealplan-admin-service/internal/analytics"
)

func rawValue(t *testing.T, v any) bson.RawValue {
	t.Helper()
	typ, data, err := bson.MarshalValue(v)
	require.NoError(t, err)
	return bson.RawValue{Type: typ, Value: data}
}

func TestDecodeTags(t *testing.T) {
	tests := []struct {
		name   string
		raw    bson.RawValue
		legacy bool
		want   []string
	}{
		{name: "array", raw: rawValue(t, bson.A{"Vegan", "High Protein", 4}), want: []string{"vegan", "high-protein"}},
		{name: "legacy string", raw: rawValue(t, "gluten-free, Low Fat"), legacy: true, want: []string{"gluten-free", "low-fat"}},
		{name: "missing", raw: bson.RawValue{}, want: []string{}},
		{name: "number", raw: rawValue(t, int32(7)), want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tags := decodeTags(tt.raw)
			assert.Equal(t, tt.legacy, tags.IsLegacy())
			assert.Equal(t, tt.want, tags.Normalize())
		})
	}
}

func TestIDString(t *testing.T) {
	oid := primitive.NewObjectID()
	assert.Equal(t, oid.Hex(), idString(oid))
	assert.Equal(t, "meal-7", idString("meal-7"))
	assert.Equal(t, "", idString(nil))
}

func TestMealDocLegacyKey(t *testing.T) {
	meal := mealDoc{ID: "meal-7", Name: "Lentil Soup"}.toMeal()
	assert.Equal(t, "meal-7", meal.LegacyID)

	oid := primitive.NewObjectID()
	meal = mealDoc{ID: oid, Name: "Falafel"}.toMeal()
	assert.Equal(t, oid.Hex(), meal.ID)
	assert.Empty(t, meal.LegacyID)
}

func TestRangeFilter(t *testing.T) {
	from := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 1)

	assert.Equal(t, bson.M{}, rangeFilter(bson.M{}, "orderDate", analytics.TimeRange{}))
	assert.Equal(t, bson.M{"orderDate": bson.M{"$gte": from}}, rangeFilter(bson.M{}, "orderDate", analytics.Since(from)))
	assert.Equal(t,
		bson.M{"user": bson.M{"$ne": nil}, "createdAt": bson.M{"$gte": from, "$lte": to}},
		rangeFilter(bson.M{"user": bson.M{"$ne": nil}}, "createdAt", analytics.Between(from, to)),
	)
}

func TestActorFilters(t *testing.T) {
	from := time.Date(2026, time.March, 12, 0, 0, 0, 0, time.UTC)

	assert.Equal(t,
		bson.M{"userId": bson.M{"$ne": nil}, "createdAt": bson.M{"$gte": from}},
		favoritingUsersFilter(analytics.Since(from)),
	)
	assert.Equal(t,
		bson.M{"user": bson.M{"$ne": nil}, "orderDate": bson.M{"$gte": from}},
		orderingUsersFilter(analytics.Since(from)),
	)
}

func TestOrderDocToOrder(t *testing.T) {
	oid := primitive.NewObjectID()
	user := primitive.NewObjectID()
	meal := primitive.NewObjectID()
	order := orderDoc{
		ID:          oid,
		User:        user,
		TotalAmount: 24,
		Items: []itemDoc{
			{MealID: meal, Name: "Bowl", Quantity: 2, Price: 9},
			{MealID: "legacy-1", Name: "Soup", Quantity: 1, Price: 6},
		},
	}.toOrder()

	assert.Equal(t, oid.Hex(), order.ID)
	assert.Equal(t, user.Hex(), order.UserID)
	require.Len(t, order.Items, 2)
	assert.Equal(t, meal.Hex(), order.Items[0].MealID)
	assert.Equal(t, oid.Hex(), order.Items[0].OrderID)
	assert.Equal(t, "legacy-1", order.Items[1].MealID)
}
