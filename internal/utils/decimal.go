package utils

import (
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

func NumericToFloat64(value pgtype.Numeric) float64 {
	if !value.Valid {
		return 0
	}
	f, err := value.Float64Value()
	if err == nil {
		return f.Float64
	}
	// fallback to decimal parse
	text, err := value.MarshalJSON()
	if err != nil {
		return 0
	}
	d, err := decimal.NewFromString(string(text))
	if err != nil {
		return 0
	}
	return d.InexactFloat64()
}

// NumericToFloat64Ptr keeps SQL NULL distinguishable from zero.
func NumericToFloat64Ptr(value pgtype.Numeric) *float64 {
	if !value.Valid {
		return nil
	}
	f := NumericToFloat64(value)
	return &f
}
