package models

import (
	"fmt"
	"unicode/utf8"
)

// ItemName is the display name of an Item: any non-empty string of at most
// 255 characters. Length is counted in runes, matching the VARCHAR(255)
// column and the request validator.
type ItemName string

const (
	minItemNameRunes = 1
	maxItemNameRunes = 255
)

// NewItemName returns s as an ItemName, or an error if its rune count is out of range.
func NewItemName(s string) (ItemName, error) {
	switch n := utf8.RuneCountInString(s); {
	case n < minItemNameRunes:
		return "", fmt.Errorf("item name must not be empty")
	case n > maxItemNameRunes:
		return "", fmt.Errorf("item name must not exceed %d characters (got %d)", maxItemNameRunes, n)
	}
	return ItemName(s), nil
}

func (n ItemName) String() string {
	return string(n)
}
