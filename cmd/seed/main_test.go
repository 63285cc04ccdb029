package main

import (
	"encoding/json"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mealplan-admin-service/internal/analytics"
)

func TestBuildDemoData(t *testing.T) {
	now := time.Date(2026, 3, 18, 12, 0, 0, 0, time.UTC)
	d := buildDemoData(now, rand.New(rand.NewSource(1)))

	assert.Len(t, d.meals, len(demoCatalog))
	assert.Len(t, d.orders, 40)
	assert.NotEmpty(t, d.users)

	for _, o := range d.orders {
		require.NotEmpty(t, o.Items)
		var sum float64
		for _, item := range o.Items {
			sum += item.Price * float64(item.Quantity)
		}
		assert.InDelta(t, sum, o.TotalAmount, 1e-9)
		assert.False(t, o.OrderDate.After(now))
		assert.True(t, now.Sub(o.OrderDate) < 14*24*time.Hour)
	}

	types := map[string]bool{
		analytics.MealTypeBreakfast: true,
		analytics.MealTypeLunch:     true,
		analytics.MealTypeDinner:    true,
		analytics.MealTypeSnack:     true,
	}
	for _, m := range d.meals {
		assert.True(t, types[m.Type], "unexpected meal type %q", m.Type)
	}

	require.Len(t, d.favorites, demoFavorites)
	pairs := make(map[string]struct{}, len(d.favorites))
	for _, f := range d.favorites {
		require.NotNil(t, f.UserID)
		pair := f.UserID.String() + "/" + f.MealID
		_, dup := pairs[pair]
		assert.False(t, dup, "duplicate favorite %s", pair)
		pairs[pair] = struct{}{}
	}

	var stringTags, listTags int
	for _, m := range d.meals {
		var tags analytics.Tags
		require.NoError(t, json.Unmarshal(m.Tags, &tags))
		assert.NotEmpty(t, tags.Normalize(), m.Name)
		if len(m.Tags) > 0 && m.Tags[0] == '"' {
			stringTags++
		} else {
			listTags++
		}
	}
	assert.Positive(t, stringTags)
	assert.Positive(t, listTags)
}
