package product

import (
	"errors"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrInvalidName         = errors.New("product name cannot be empty")
	ErrNegativePrice       = errors.New("product price cannot be negative")
	ErrInvalidDeliveryType = errors.New("invalid delivery type")
)

// DeliveryType distinguishes products whose codes are handed out by the
// allocator from those a seller fulfills by hand.
type DeliveryType string

const (
	DeliveryInstant DeliveryType = "instant"
	DeliveryManual  DeliveryType = "manual"
)

func NewDeliveryType(value string) (DeliveryType, error) {
	dt := DeliveryType(value)
	if !dt.IsValid() {
		return "", ErrInvalidDeliveryType
	}
	return dt, nil
}

func (d DeliveryType) IsValid() bool {
	switch d {
	case DeliveryInstant, DeliveryManual:
		return true
	default:
		return false
	}
}

func (d DeliveryType) String() string {
	return string(d)
}

type Product struct {
	id           uuid.UUID
	storeID      uuid.UUID
	name         string
	priceCents   int64
	deliveryType DeliveryType
	inStock      bool
}

func NewProduct(id, storeID uuid.UUID, name string, priceCents int64, deliveryType string, inStock bool) (*Product, error) {
	if strings.TrimSpace(name) == "" {
		return nil, ErrInvalidName
	}
	if priceCents < 0 {
		return nil, ErrNegativePrice
	}
	dt, err := NewDeliveryType(deliveryType)
	if err != nil {
		return nil, err
	}
	return &Product{
		id:           id,
		storeID:      storeID,
		name:         name,
		priceCents:   priceCents,
		deliveryType: dt,
		inStock:      inStock,
	}, nil
}

func (p *Product) IsInstantDelivery() bool {
	return p.deliveryType == DeliveryInstant
}

func (p *Product) ID() uuid.UUID              { return p.id }
func (p *Product) StoreID() uuid.UUID         { return p.storeID }
func (p *Product) Name() string               { return p.name }
func (p *Product) PriceCents() int64          { return p.priceCents }
func (p *Product) DeliveryType() DeliveryType { return p.deliveryType }
func (p *Product) InStock() bool              { return p.inStock }
