package services

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/diewo77/go-budgets/validation"
	"gorm.io/gorm"
)

// Service errors. Messages are stable codes that handlers translate.
var (
	ErrValidation              = errors.New("validation_failed")
	ErrQuoteNotFound           = errors.New("quote_not_found")
	ErrItemNotFound            = errors.New("item_not_found")
	ErrNotFound                = errors.New("not_found")
	ErrNoSellerAvailable       = errors.New("no_seller_available")
	ErrStatusChanged           = errors.New("status_changed")
	ErrReferenceInUse          = errors.New("reference_in_use")
	ErrInvalidVariantSelection = errors.New("invalid_variant_selection")
	ErrInvalidToken            = errors.New("invalid_token")
	ErrInvalidCredentials      = errors.New("invalid_credentials")
)

// ValidationError carries field violations and unwraps to ErrValidation.
type ValidationError struct {
	Violations validation.Violations
}

func (e *ValidationError) Error() string {
	fields := make([]string, 0, len(e.Violations))
	for f, code := range e.Violations {
		fields = append(fields, f+"="+code)
	}
	sort.Strings(fields)
	return fmt.Sprintf("%s: %s", ErrValidation, strings.Join(fields, ", "))
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

func invalid(v validation.Violations) error {
	if v.Empty() {
		return nil
	}
	return &ValidationError{Violations: v}
}

func invalidField(field, code string) error {
	return &ValidationError{Violations: validation.Violations{field: code}}
}

// notFound maps gorm's not-found error to sentinel and wraps everything else.
func notFound(err, sentinel error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return sentinel
	}
	return fmt.Errorf("load %s: %w", what, err)
}
