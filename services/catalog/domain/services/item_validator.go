// Package services contains stateless domain services for the catalog bounded context.
// Domain services enforce business rules that operate purely on domain types
// and have zero external dependencies beyond stdlib and the domain layer.
package services

import (
	"fmt"
	"math"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"

	"github.com/ghuser/catalog/services/catalog/domain/models"
)

// ValidateName enforces business rules for ItemName beyond the structural
// constraints enforced by the ItemName constructor (length 1–255).
//
// Business rules:
//   - Must not be only whitespace characters
//   - No control characters (Unicode category Cc)
func ValidateName(name models.ItemName) error {
	s := name.String()

	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("item name must not be only whitespace")
	}

	for _, r := range s {
		if unicode.IsControl(r) {
			return fmt.Errorf("item name must not contain control characters")
		}
	}

	return nil
}

// Prices must fit the narrowest price column the stores use (MySQL DECIMAL(65,30)).
const (
	maxPriceIntegerDigits  = 35
	maxPriceFractionDigits = 30
)

// ValidatePrice rejects negative prices and prices that a store could not keep
// exactly. Only the coefficient and exponent are inspected, so an absurd
// exponent is rejected without expanding the number.
func ValidatePrice(price decimal.Decimal) error {
	if price.IsNegative() {
		return fmt.Errorf("price must not be negative")
	}
	if price.IsZero() {
		return nil
	}

	exp := int64(price.Exponent())
	if exp < -maxPriceFractionDigits {
		return fmt.Errorf("price must have at most %d fractional digits", maxPriceFractionDigits)
	}
	if int64(price.NumDigits())+exp > maxPriceIntegerDigits {
		return fmt.Errorf("price must have at most %d integer digits", maxPriceIntegerDigits)
	}
	return nil
}

// ValidateItem checks an Item before it is written. It assumes the name was
// built via models.NewItemName and adds the cross-field business rules.
func ValidateItem(item *models.Item) error {
	if item == nil {
		return fmt.Errorf("item cannot be nil")
	}

	if err := ValidateName(item.Name); err != nil {
		return fmt.Errorf("invalid name: %w", err)
	}

	if strings.TrimSpace(item.Description) == "" {
		return fmt.Errorf("description must not be empty")
	}

	if err := ValidatePrice(item.Price); err != nil {
		return err
	}

	if item.Amount < 0 {
		return fmt.Errorf("amount must not be negative")
	}
	if item.Amount > math.MaxInt32 {
		return fmt.Errorf("amount must not exceed %d", math.MaxInt32)
	}

	return nil
}
