// Package validation collects field violations for request payloads.
package validation

import (
	"net/mail"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type Violations map[string]string

func (v Violations) Empty() bool { return len(v) == 0 }

// Add records code for field unless field already has a violation.
func (v Violations) Add(field, code string) {
	if _, ok := v[field]; !ok {
		v[field] = code
	}
}

// Basic validators
func Required(field, value string, v Violations) {
	if strings.TrimSpace(value) == "" {
		v.Add(field, "required")
	}
}

func MaxLen(field, value string, max int, v Violations) {
	if len([]rune(value)) > max {
		v.Add(field, "too_long")
	}
}

func Email(field, value string, v Violations) {
	value = strings.TrimSpace(value)
	if value == "" {
		v.Add(field, "required")
		return
	}
	if addr, err := mail.ParseAddress(value); err != nil || addr.Address != value {
		v.Add(field, "invalid_email")
	}
}

func RequiredID(field string, id uint, v Violations) {
	if id == 0 {
		v.Add(field, "required")
	}
}

func MinInt(field string, val, minVal int, v Violations) {
	if val < minVal {
		v.Add(field, "out_of_range")
	}
}

func PositiveInt(field string, val int, v Violations) {
	if val <= 0 {
		v.Add(field, "must_be_positive")
	}
}

func NonNegativeDecimal(field string, val decimal.Decimal, v Violations) {
	if val.IsNegative() {
		v.Add(field, "must_not_be_negative")
	}
}

// Percentage accepts values in percentage points, from -100 to 100.
// Negative values are discounts.
func Percentage(field string, val decimal.Decimal, v Violations) {
	if val.LessThan(decimal.NewFromInt(-100)) || val.GreaterThan(decimal.NewFromInt(100)) {
		v.Add(field, "out_of_range")
	}
}

// IntRange checks an inclusive quantity range with an optional upper bound.
func IntRange(field string, from int, to *int, v Violations) {
	if from < 0 {
		v.Add(field, "out_of_range")
		return
	}
	if to != nil && *to < from {
		v.Add(field, "invalid_range")
	}
}

// DateOrder requires !end.Before(start).
func DateOrder(field string, start, end time.Time, v Violations) {
	if end.Before(start) {
		v.Add(field, "before_start")
	}
}
