package analytics_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mealplan-admin-service/internal/analytics"
)

func TestNormalizeTag(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{name: "double space", raw: "Gluten  Free", want: "gluten-free"},
		{name: "already normalized", raw: "gluten-free", want: "gluten-free"},
		{name: "surrounding whitespace", raw: "  Low Fat ", want: "low-fat"},
		{name: "tabs and newlines", raw: "high\t\nprotein", want: "high-protein"},
		{name: "single word", raw: "VEGAN", want: "vegan"},
		{name: "blank", raw: "   ", want: ""},
		{name: "no-break space", raw: "Gluten\u00a0Free", want: "gluten-free"},
		{name: "vertical tab", raw: "Low\vFat", want: "low-fat"},
		{name: "ideographic and bom", raw: "\ufeffHigh\u3000 Protein\u2003", want: "high-protein"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := analytics.NormalizeTag(tt.raw)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, analytics.NormalizeTag(got), "normalization must be idempotent")
		})
	}
}

func TestTagsNormalize(t *testing.T) {
	tests := []struct {
		name string
		tags analytics.Tags
		want []string
	}{
		{name: "legacy string", tags: analytics.LegacyTags("gluten-free, Low Fat"), want: []string{"gluten-free", "low-fat"}},
		{name: "legacy with empties", tags: analytics.LegacyTags(",vegan,, ,"), want: []string{"vegan"}},
		{name: "list with duplicates", tags: analytics.TagList("Vegan", "vegan ", "High Protein", "high  protein"), want: []string{"vegan", "high-protein"}},
		{name: "unicode space variants", tags: analytics.TagList("Gluten Free", "Gluten\u00a0Free", "gluten\u2009free"), want: []string{"gluten-free"}},
		{name: "empty list", tags: analytics.TagList(), want: []string{}},
		{name: "zero value", tags: analytics.Tags{}, want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.tags.Normalize())
		})
	}
}

func TestTagsUnmarshalJSON(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		legacy bool
		want   []string
	}{
		{name: "array", input: `["Keto","Low Carb"]`, want: []string{"keto", "low-carb"}},
		{name: "array with non strings", input: `["Keto",3,null]`, want: []string{"keto"}},
		{name: "string", input: `"keto, low carb"`, legacy: true, want: []string{"keto", "low-carb"}},
		{name: "null", input: `null`, want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var tags analytics.Tags
			require.NoError(t, json.Unmarshal([]byte(tt.input), &tags))
			assert.Equal(t, tt.legacy, tags.IsLegacy())
			assert.Equal(t, tt.want, tags.Normalize())
		})
	}

	var tags analytics.Tags
	assert.Error(t, json.Unmarshal([]byte(`{"a":1}`), &tags))
}
