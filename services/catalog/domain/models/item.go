package models

import "github.com/shopspring/decimal"

// Item is the catalog's sole aggregate: a named, priced, quantified product.
// ID is zero until the store assigns one.
type Item struct {
	ID          int64
	Name        ItemName
	Description string
	Price       decimal.Decimal
	Amount      int
}

// NewItem constructs an unsaved Item. Rules that span fields are checked by
// services.ValidateItem.
func NewItem(name ItemName, description string, price decimal.Decimal, amount int) *Item {
	return &Item{
		Name:        name,
		Description: description,
		Price:       price,
		Amount:      amount,
	}
}

// IsPersisted reports whether the store has assigned an id.
func (i *Item) IsPersisted() bool {
	return i.ID != 0
}
