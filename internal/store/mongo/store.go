package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"mealplan-admin-service/internal/analytics"
)

const (
	usersCollection     = "users"
	ordersCollection    = "orders"
	mealsCollection     = "meals"
	favoritesCollection = "favorites"
	uploadsCollection   = "uploadhistories"
)

// Owning-user fields differ between collections: orders carry a "user"
// reference, favorites store the pair as userId/mealId.
const (
	orderUserField    = "user"
	favoriteUserField = "userId"
	favoriteMealField = "mealId"
)

// Store reads the analytics collections from the document database the
// meal-plan API writes to.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

func Connect(ctx context.Context, uri, database string) (*Store, error) {
	if uri == "" {
		return nil, fmt.Errorf("MONGO_URI is required")
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return &Store{client: client, db: client.Database(database)}, nil
}

func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
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

func (s *Store) collection(name string) *mongo.Collection {
	return s.db.Collection(name)
}

// rangeFilter adds the inclusive bounds of r on field to filter.
func rangeFilter(filter bson.M, field string, r analytics.TimeRange) bson.M {
	bounds := bson.M{}
	if !r.From.IsZero() {
		bounds["$gte"] = r.From
	}
	if !r.To.IsZero() {
		bounds["$lte"] = r.To
	}
	if len(bounds) > 0 {
		filter[field] = bounds
	}
	return filter
}

// idString flattens an identifier that may be stored as an ObjectID or as a
// plain string.
func idString(v any) string {
	switch id := v.(type) {
	case primitive.ObjectID:
		return id.Hex()
	case string:
		return id
	case nil:
		return ""
	default:
		return fmt.Sprint(id)
	}
}

func notFound(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return analytics.ErrNotFound
	}
	return err
}

type userDoc struct {
	ID         any       `bson:"_id"`
	Name       string    `bson:"name"`
	Email      string    `bson:"email"`
	IsVerified bool      `bson:"isVerified"`
	CreatedAt  time.Time `bson:"createdAt"`
}

func (d userDoc) toUser() analytics.User {
	return analytics.User{
		ID:         idString(d.ID),
		Name:       d.Name,
		Email:      d.Email,
		IsVerified: d.IsVerified,
		CreatedAt:  d.CreatedAt,
	}
}

type itemDoc struct {
	MealID   any     `bson:"mealId"`
	Name     string  `bson:"name"`
	Quantity int64   `bson:"quantity"`
	Price    float64 `bson:"price"`
}

type orderDoc struct {
	ID            any       `bson:"_id"`
	User          any       `bson:"user"`
	OrderDate     time.Time `bson:"orderDate"`
	PaymentStatus string    `bson:"paymentStatus"`
	TotalAmount   float64   `bson:"totalAmount"`
	Items         []itemDoc `bson:"items"`
}

func (d orderDoc) toOrder() analytics.Order {
	o := analytics.Order{
		ID:            idString(d.ID),
		UserID:        idString(d.User),
		OrderDate:     d.OrderDate,
		PaymentStatus: d.PaymentStatus,
		TotalAmount:   d.TotalAmount,
		Items:         make([]analytics.LineItem, 0, len(d.Items)),
	}
	for _, item := range d.Items {
		o.Items = append(o.Items, item.toLineItem(o.ID))
	}
	return o
}

func (d itemDoc) toLineItem(orderID string) analytics.LineItem {
	return analytics.LineItem{
		OrderID:  orderID,
		MealID:   idString(d.MealID),
		MealName: d.Name,
		Quantity: d.Quantity,
		Price:    d.Price,
	}
}

type mealDoc struct {
	ID       any           `bson:"_id"`
	Name     string        `bson:"name"`
	Type     string        `bson:"type"`
	Price    *float64      `bson:"price"`
	Calories *float64      `bson:"calories"`
	Protein  *float64      `bson:"protein"`
	Carbs    *float64      `bson:"carbs"`
	Fat      *float64      `bson:"fat"`
	Tags     bson.RawValue `bson:"tags"`
}

func (d mealDoc) toMeal() analytics.Meal {
	m := analytics.Meal{
		ID:       idString(d.ID),
		Name:     d.Name,
		Type:     d.Type,
		Price:    d.Price,
		Calories: d.Calories,
		Protein:  d.Protein,
		Carbs:    d.Carbs,
		Fat:      d.Fat,
		Tags:     decodeTags(d.Tags),
	}
	// String primary keys are the legacy identifiers.
	if key, ok := d.ID.(string); ok {
		m.LegacyID = key
	}
	return m
}

// decodeTags resolves the stored tags value into the Tags sum type once.
func decodeTags(raw bson.RawValue) analytics.Tags {
	switch raw.Type {
	case bsontype.String:
		return analytics.LegacyTags(raw.StringValue())
	case bsontype.Array:
		var values []any
		if err := raw.Unmarshal(&values); err != nil {
			return analytics.Tags{}
		}
		tags := make([]string, 0, len(values))
		for _, v := range values {
			if tag, ok := v.(string); ok {
				tags = append(tags, tag)
			}
		}
		return analytics.TagList(tags...)
	default:
		return analytics.Tags{}
	}
}

type uploadDoc struct {
	ID           any       `bson:"_id"`
	Filename     string    `bson:"filename"`
	UploadedBy   string    `bson:"uploadedBy"`
	TotalRows    int64     `bson:"totalRows"`
	SuccessCount int64     `bson:"successCount"`
	ErrorCount   int64     `bson:"errorCount"`
	Errors       []string  `bson:"errors"`
	CreatedAt    time.Time `bson:"createdAt"`
}

// Users

func (s *Store) CountUsers(ctx context.Context, filter analytics.UserFilter) (int64, error) {
	query := rangeFilter(bson.M{}, "createdAt", filter.Created)
	if filter.VerifiedOnly {
		query["isVerified"] = true
	}
	return s.collection(usersCollection).CountDocuments(ctx, query)
}

func (s *Store) RecentUsers(ctx context.Context, limit int) ([]analytics.User, error) {
	cursor, err := s.collection(usersCollection).Find(ctx, bson.M{},
		options.Find().
			SetSort(bson.D{{Key: "createdAt", Value: -1}}).
			SetLimit(int64(limit)).
			SetProjection(bson.M{"name": 1, "email": 1, "isVerified": 1, "createdAt": 1}),
	)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []userDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	users := make([]analytics.User, 0, len(docs))
	for _, d := range docs {
		users = append(users, d.toUser())
	}
	return users, nil
}

func (s *Store) FindUser(ctx context.Context, id string) (analytics.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return analytics.User{}, analytics.ErrNotFound
	}
	var doc userDoc
	if err := s.collection(usersCollection).FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		return analytics.User{}, notFound(err)
	}
	return doc.toUser(), nil
}

// Orders

func (s *Store) CountOrders(ctx context.Context, r analytics.TimeRange) (int64, error) {
	return s.collection(ordersCollection).CountDocuments(ctx, rangeFilter(bson.M{}, "orderDate", r))
}

func (s *Store) SumRevenue(ctx context.Context, r analytics.TimeRange) (float64, error) {
	pipeline := []bson.M{
		{"$match": rangeFilter(bson.M{}, "orderDate", r)},
		{"$group": bson.M{
			"_id":   nil,
			"total": bson.M{"$sum": "$totalAmount"},
		}},
	}
	cursor, err := s.collection(ordersCollection).Aggregate(ctx, pipeline)
	if err != nil {
		return 0, err
	}
	defer cursor.Close(ctx)

	var result []struct {
		Total float64 `bson:"total"`
	}
	if err := cursor.All(ctx, &result); err != nil {
		return 0, err
	}
	if len(result) == 0 {
		return 0, nil
	}
	return result[0].Total, nil
}

func (s *Store) RecentOrders(ctx context.Context, limit int) ([]analytics.Order, error) {
	cursor, err := s.collection(ordersCollection).Find(ctx, bson.M{},
		options.Find().
			SetSort(bson.D{{Key: "orderDate", Value: -1}}).
			SetLimit(int64(limit)),
	)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []orderDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	orders := make([]analytics.Order, 0, len(docs))
	for _, d := range docs {
		orders = append(orders, d.toOrder())
	}
	return orders, nil
}

func (s *Store) OrderTimes(ctx context.Context, r analytics.TimeRange) ([]time.Time, error) {
	cursor, err := s.collection(ordersCollection).Find(ctx, rangeFilter(bson.M{}, "orderDate", r),
		options.Find().SetProjection(bson.M{"orderDate": 1}),
	)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []struct {
		OrderDate time.Time `bson:"orderDate"`
	}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	times := make([]time.Time, 0, len(docs))
	for _, d := range docs {
		times = append(times, d.OrderDate)
	}
	return times, nil
}

func (s *Store) OrderCountsByUser(ctx context.Context) (map[string]int64, error) {
	pipeline := []bson.M{
		{"$match": bson.M{orderUserField: bson.M{"$ne": nil}}},
		{"$group": bson.M{
			"_id":   "$" + orderUserField,
			"count": bson.M{"$sum": 1},
		}},
	}
	cursor, err := s.collection(ordersCollection).Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var rows []struct {
		ID    any   `bson:"_id"`
		Count int64 `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, err
	}
	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[idString(row.ID)] = row.Count
	}
	return counts, nil
}

func (s *Store) OrderingUsers(ctx context.Context, r analytics.TimeRange) ([]string, error) {
	return s.distinctIDs(ctx, ordersCollection, orderUserField, orderingUsersFilter(r))
}

func orderingUsersFilter(r analytics.TimeRange) bson.M {
	return rangeFilter(bson.M{orderUserField: bson.M{"$ne": nil}}, "orderDate", r)
}

func (s *Store) LineItems(ctx context.Context) ([]analytics.LineItem, error) {
	pipeline := []bson.M{
		{"$unwind": "$items"},
		{"$project": bson.M{"_id": 1, "item": "$items"}},
	}
	cursor, err := s.collection(ordersCollection).Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	items := make([]analytics.LineItem, 0)
	for cursor.Next(ctx) {
		var row struct {
			ID   any     `bson:"_id"`
			Item itemDoc `bson:"item"`
		}
		if err := cursor.Decode(&row); err != nil {
			return nil, err
		}
		items = append(items, row.Item.toLineItem(idString(row.ID)))
	}
	return items, cursor.Err()
}

// Meals

func (s *Store) CountMeals(ctx context.Context) (int64, error) {
	return s.collection(mealsCollection).CountDocuments(ctx, bson.M{})
}

func (s *Store) CountByType(ctx context.Context) ([]analytics.TypeCount, error) {
	pipeline := []bson.M{
		{"$group": bson.M{
			"_id":   "$type",
			"count": bson.M{"$sum": 1},
		}},
		{"$sort": bson.M{"count": -1}},
	}
	cursor, err := s.collection(mealsCollection).Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Type  any   `bson:"_id"`
		Count int64 `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, err
	}
	out := make([]analytics.TypeCount, 0, len(rows))
	for _, row := range rows {
		out = append(out, analytics.TypeCount{Type: idString(row.Type), Count: row.Count})
	}
	return out, nil
}

func (s *Store) ListMeals(ctx context.Context) ([]analytics.Meal, error) {
	cursor, err := s.collection(mealsCollection).Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	meals := make([]analytics.Meal, 0)
	for cursor.Next(ctx) {
		var doc mealDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		meals = append(meals, doc.toMeal())
	}
	return meals, cursor.Err()
}

func (s *Store) FindMealByRef(ctx context.Context, ref string) (analytics.Meal, error) {
	oid, err := primitive.ObjectIDFromHex(ref)
	if err != nil {
		return analytics.Meal{}, analytics.ErrNotFound
	}
	return s.findMeal(ctx, bson.M{"_id": oid})
}

func (s *Store) FindMealByKey(ctx context.Context, key string) (analytics.Meal, error) {
	if key == "" {
		return analytics.Meal{}, analytics.ErrNotFound
	}
	return s.findMeal(ctx, bson.M{"_id": key})
}

func (s *Store) findMeal(ctx context.Context, filter bson.M) (analytics.Meal, error) {
	var doc mealDoc
	if err := s.collection(mealsCollection).FindOne(ctx, filter).Decode(&doc); err != nil {
		return analytics.Meal{}, notFound(err)
	}
	return doc.toMeal(), nil
}

// Favorites

func (s *Store) CountFavorites(ctx context.Context) (int64, error) {
	return s.collection(favoritesCollection).CountDocuments(ctx, bson.M{})
}

func (s *Store) TopFavoritedMeals(ctx context.Context, limit int) ([]analytics.MealCount, error) {
	pipeline := []bson.M{
		{"$match": bson.M{favoriteMealField: bson.M{"$ne": nil}}},
		{"$group": bson.M{
			"_id":   "$" + favoriteMealField,
			"count": bson.M{"$sum": 1},
		}},
		{"$sort": bson.D{{Key: "count", Value: -1}, {Key: "_id", Value: 1}}},
		{"$limit": limit},
	}
	cursor, err := s.collection(favoritesCollection).Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var rows []struct {
		MealID any   `bson:"_id"`
		Count  int64 `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, err
	}
	out := make([]analytics.MealCount, 0, len(rows))
	for _, row := range rows {
		out = append(out, analytics.MealCount{MealID: idString(row.MealID), Count: row.Count})
	}
	return out, nil
}

func (s *Store) FavoritingUsers(ctx context.Context, r analytics.TimeRange) ([]string, error) {
	return s.distinctIDs(ctx, favoritesCollection, favoriteUserField, favoritingUsersFilter(r))
}

func favoritingUsersFilter(r analytics.TimeRange) bson.M {
	return rangeFilter(bson.M{favoriteUserField: bson.M{"$ne": nil}}, "createdAt", r)
}

func (s *Store) distinctIDs(ctx context.Context, collection, field string, filter bson.M) ([]string, error) {
	values, err := s.collection(collection).Distinct(ctx, field, filter)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(values))
	for _, v := range values {
		if id := idString(v); id != "" {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// Uploads

func (s *Store) RecentUploads(ctx context.Context, limit int) ([]analytics.Upload, error) {
	cursor, err := s.collection(uploadsCollection).Find(ctx, bson.M{},
		options.Find().
			SetSort(bson.D{{Key: "createdAt", Value: -1}}).
			SetLimit(int64(limit)),
	)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []uploadDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	uploads := make([]analytics.Upload, 0, len(docs))
	for _, d := range docs {
		uploads = append(uploads, analytics.Upload{
			ID:           idString(d.ID),
			Filename:     d.Filename,
			UploadedBy:   d.UploadedBy,
			TotalRows:    d.TotalRows,
			SuccessCount: d.SuccessCount,
			ErrorCount:   d.ErrorCount,
			Errors:       d.Errors,
			CreatedAt:    d.CreatedAt,
		})
	}
	return uploads, nil
}
