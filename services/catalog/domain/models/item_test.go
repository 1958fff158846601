package models

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestNewItem(t *testing.T) {
	price := decimal.RequireFromString("10.5")
	item := NewItem("Soccer Ball", "Ball for playing soccer", price, 25)

	if item.IsPersisted() {
		t.Fatal("new item must not have an id")
	}
	if item.Name != "Soccer Ball" || item.Description != "Ball for playing soccer" {
		t.Fatalf("unexpected text fields: %+v", item)
	}
	if !item.Price.Equal(price) || item.Price.String() != "10.5" {
		t.Fatalf("price changed: %s", item.Price)
	}
	if item.Amount != 25 {
		t.Fatalf("expected amount 25, got %d", item.Amount)
	}

	item.ID = 7
	if !item.IsPersisted() {
		t.Fatal("item with id must report persisted")
	}
}
