package utils

import (
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

func TestNumericToFloat64(t *testing.T) {
	var n pgtype.Numeric
	if err := n.Scan("18.75"); err != nil {
		t.Fatalf("scan numeric: %v", err)
	}
	if got := NumericToFloat64(n); got != 18.75 {
		t.Fatalf("expected 18.75, got %v", got)
	}
	if got := NumericToFloat64Ptr(pgtype.Numeric{}); got != nil {
		t.Fatalf("expected nil for invalid numeric, got %v", *got)
	}
}

func TestLoadLocation(t *testing.T) {
	tests := []struct {
		name string
		tz   string
		want string
	}{
		{name: "empty", tz: "", want: time.Local.String()},
		{name: "unknown", tz: "Mars/Olympus", want: time.Local.String()},
		{name: "utc", tz: "UTC", want: "UTC"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := LoadLocation(tt.tz).String(); got != tt.want {
				t.Fatalf("expected %s, got %s", tt.want, got)
			}
		})
	}
}
