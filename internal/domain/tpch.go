package domain

import (
	"math"
	"strconv"
	"strings"
)

// TPCHRelations lists the tables produced by the TPC-H generator, in load order.
var TPCHRelations = []string{
	"region",
	"nation",
	"supplier",
	"customer",
	"part",
	"partsupp",
	"orders",
	"lineitem",
}

// TPCHQueryCount is the number of standard TPC-H queries exposed by tpch_queries().
const TPCHQueryCount = 22

// DefaultScale is the scale factor used when neither flag nor config sets one.
const DefaultScale = 1.0

// ParseScale parses a raw scale-factor value and validates it.
func ParseScale(raw string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, ErrInvalidScale(raw)
	}
	if err := ValidateScale(v); err != nil {
		return 0, ErrInvalidScale(raw)
	}
	return v, nil
}

// ValidateScale rejects zero, negative, NaN and infinite scale factors.
func ValidateScale(v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return ErrInvalidScale(FormatScale(v))
	}
	return nil
}

// FormatScale renders a scale factor the way it is passed to dbgen.
func FormatScale(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
