package codepool

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrEmptyBatch  = errors.New("code batch cannot be empty")
	ErrEmptyCode   = errors.New("code value cannot be empty")
	ErrCodeTooLong = errors.New("code value exceeds maximum length")
)

const maxCodeLength = 256

// CodeRecord mirrors one row of a product's code pool. A consumed record
// is never un-consumed and never deleted; the pool is an append-only
// audit trail of every code a seller ever uploaded.
type CodeRecord struct {
	ID          uuid.UUID
	ProductID   uuid.UUID
	Code        string
	Consumed    bool
	OrderItemID *uuid.UUID
	ConsumedAt  *time.Time
}

// Batch is a validated set of new code values for one product. Values are
// trimmed, non-empty, and unique within the batch (case-sensitive).
type Batch struct {
	productID uuid.UUID
	codes     []string
}

func NewBatch(productID uuid.UUID, raw []string) (*Batch, error) {
	if len(raw) == 0 {
		return nil, ErrEmptyBatch
	}

	seen := make(map[string]struct{}, len(raw))
	var duplicates []string
	codes := make([]string, 0, len(raw))

	for _, value := range raw {
		value = strings.TrimSpace(value)
		if value == "" {
			return nil, ErrEmptyCode
		}
		if len(value) > maxCodeLength {
			return nil, ErrCodeTooLong
		}
		if _, dup := seen[value]; dup {
			duplicates = append(duplicates, value)
			continue
		}
		seen[value] = struct{}{}
		codes = append(codes, value)
	}

	if len(duplicates) > 0 {
		return nil, &DuplicateCodeError{Duplicates: duplicates}
	}

	return &Batch{productID: productID, codes: codes}, nil
}

func (b *Batch) ProductID() uuid.UUID { return b.productID }
func (b *Batch) Codes() []string      { return b.codes }
func (b *Batch) Size() int            { return len(b.codes) }

// CheckAgainstExisting compares the batch with the code values already in
// the pool and returns the collisions, preserving batch order.
func (b *Batch) CheckAgainstExisting(existing []string) error {
	pool := make(map[string]struct{}, len(existing))
	for _, code := range existing {
		pool[code] = struct{}{}
	}

	var duplicates []string
	for _, code := range b.codes {
		if _, ok := pool[code]; ok {
			duplicates = append(duplicates, code)
		}
	}

	if len(duplicates) > 0 {
		return &DuplicateCodeError{Duplicates: duplicates}
	}
	return nil
}
