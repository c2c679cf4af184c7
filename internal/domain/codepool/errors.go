package codepool

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// DuplicateCodeError reports code strings that already exist in a
// product's pool (case-sensitive exact match) or repeat within a batch.
type DuplicateCodeError struct {
	Duplicates []string
}

func (e *DuplicateCodeError) Error() string {
	return fmt.Sprintf("duplicate codes: %s", strings.Join(e.Duplicates, ", "))
}

// InsufficientStockError signals an all-or-nothing allocation failure.
// Shortfall tells the caller how many codes were missing so it can decide
// retry or refund policy.
type InsufficientStockError struct {
	ProductID uuid.UUID
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s: requested %d, available %d", e.ProductID, e.Requested, e.Available)
}

func (e *InsufficientStockError) Shortfall() int {
	return e.Requested - e.Available
}
