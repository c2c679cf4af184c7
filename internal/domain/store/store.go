package store

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrInvalidName   = errors.New("store name cannot be empty")
	ErrInvalidStatus = errors.New("invalid store status")
)

// Status gates whether a store's products can be sold. Only an approved
// store passes order placement checks.
type Status string

const (
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusSuspended Status = "suspended"
)

func NewStatus(value string) (Status, error) {
	s := Status(value)
	switch s {
	case StatusPending, StatusApproved, StatusSuspended:
		return s, nil
	default:
		return "", ErrInvalidStatus
	}
}

// InvalidTransitionError mirrors the order status machine: review
// actions are refused from states they do not apply to.
type InvalidTransitionError struct {
	From   Status
	Action string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("store cannot %s from status %s", e.Action, e.From)
}

type Store struct {
	id      uuid.UUID
	ownerID uuid.UUID
	name    string
	status  Status
}

func NewStore(ownerID uuid.UUID, name string) (*Store, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrInvalidName
	}
	return &Store{
		id:      uuid.New(),
		ownerID: ownerID,
		name:    name,
		status:  StatusPending,
	}, nil
}

// Reconstruct rebuilds a store from persistence without re-running
// creation rules.
func Reconstruct(id, ownerID uuid.UUID, name string, status string) (*Store, error) {
	st, err := NewStatus(status)
	if err != nil {
		return nil, err
	}
	return &Store{id: id, ownerID: ownerID, name: name, status: st}, nil
}

// Approve admits the store to the marketplace. Approving a suspended
// store reinstates it.
func (s *Store) Approve() error {
	if s.status == StatusApproved {
		return &InvalidTransitionError{From: s.status, Action: "approve"}
	}
	s.status = StatusApproved
	return nil
}

// Suspend takes the store off the marketplace; its products stop
// passing placement checks immediately.
func (s *Store) Suspend() error {
	if s.status != StatusApproved {
		return &InvalidTransitionError{From: s.status, Action: "suspend"}
	}
	s.status = StatusSuspended
	return nil
}

func (s *Store) ID() uuid.UUID      { return s.id }
func (s *Store) OwnerID() uuid.UUID { return s.ownerID }
func (s *Store) Name() string       { return s.name }
func (s *Store) Status() Status     { return s.status }
