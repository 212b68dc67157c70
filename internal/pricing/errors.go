package pricing

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidQuantity       = errors.New("quantity must be > 0")
	ErrInvalidPrice          = errors.New("price must be >= 0")
	ErrProductNotFound       = errors.New("product not found")
	ErrMissingRequiredAddOns = errors.New("missing required add-ons")
)

// MissingRequiredAddOnsError names the product and the add-ons a line item
// failed to select.
type MissingRequiredAddOnsError struct {
	ProductID    string
	ProductTitle string
	Missing      []string
}

func (e *MissingRequiredAddOnsError) Error() string {
	return fmt.Sprintf("product %q is missing required add-ons: %s", e.ProductTitle, strings.Join(e.Missing, ", "))
}

func (e *MissingRequiredAddOnsError) Unwrap() error {
	return ErrMissingRequiredAddOns
}
