package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestSentinelErrors_Messages(t *testing.T) {
	tests := map[error]string{
		ErrItemNotFound:       "item not found",
		ErrInvalidItem:        "invalid item",
		ErrInvalidPageRequest: "invalid page request",
	}
	for err, want := range tests {
		if err.Error() != want {
			t.Errorf("unexpected message: got %q, want %q", err.Error(), want)
		}
	}
}

func TestSentinelErrors_WrappedIdentity(t *testing.T) {
	wrapped := fmt.Errorf("get item: %w", ErrItemNotFound)
	if !errors.Is(wrapped, ErrItemNotFound) {
		t.Fatal("errors.Is must match wrapped ErrItemNotFound")
	}

	wrapped2 := fmt.Errorf("%w: %w", ErrInvalidItem, errors.New("price must not be negative"))
	if !errors.Is(wrapped2, ErrInvalidItem) {
		t.Fatal("errors.Is must match double-wrapped ErrInvalidItem")
	}
	if errors.Is(wrapped2, ErrItemNotFound) {
		t.Fatal("distinct sentinels must not match each other")
	}
}
