package queries

import (
	"context"

	"github.com/google/uuid"

	"giftcode-market/internal/domain/product"
	"giftcode-market/internal/pkg/errs"
)

var ErrEmptyCart = errs.New("cart has no items")

// Problem codes reported per cart line. The cart stays previewable even
// when a line fails, so problems are values rather than errors.
const (
	CartProblemProductNotFound   = "product_not_found"
	CartProblemStoreNotApproved  = "store_not_approved"
	CartProblemOutOfStock        = "out_of_stock"
	CartProblemInsufficientStock = "insufficient_stock"
)

type CartItem struct {
	ProductID uuid.UUID
	Quantity  int32
}

type CartQueries interface {
	// Validate runs the same checks order placement does, without
	// placing anything, so checkout can surface problems up front.
	Validate(ctx context.Context, items []CartItem) (*CartValidationView, error)
}

type CartProductReadStore interface {
	FindCartProducts(ctx context.Context, ids []uuid.UUID) ([]*CartProductRow, error)
}

type cartQueriesImpl struct {
	products CartProductReadStore
}

func NewCartQueries(products CartProductReadStore) CartQueries {
	return &cartQueriesImpl{products: products}
}

func (q *cartQueriesImpl) Validate(ctx context.Context, items []CartItem) (*CartValidationView, error) {
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}

	ids := make([]uuid.UUID, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ProductID)
	}

	rows, err := q.products.FindCartProducts(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]*CartProductRow, len(rows))
	for _, row := range rows {
		byID[row.ID] = row
	}

	view := &CartValidationView{
		Valid: true,
		Items: make([]CartItemView, 0, len(items)),
	}
	for _, it := range items {
		itemView := CartItemView{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
		}

		row, ok := byID[it.ProductID]
		if !ok {
			itemView.Problem = CartProblemProductNotFound
			view.Valid = false
			view.Items = append(view.Items, itemView)
			continue
		}

		itemView.ProductName = row.Name
		itemView.PriceCents = row.PriceCents
		itemView.LineCents = row.PriceCents * int64(it.Quantity)
		itemView.DeliveryType = row.DeliveryType

		switch {
		case row.StoreStatus != "approved":
			itemView.Problem = CartProblemStoreNotApproved
		case row.DeliveryType == string(product.DeliveryInstant) && !row.InStock:
			itemView.Problem = CartProblemOutOfStock
		case row.DeliveryType == string(product.DeliveryInstant) && row.AvailableCodes < int(it.Quantity):
			itemView.Problem = CartProblemInsufficientStock
		default:
			itemView.OK = true
			view.SubtotalCents += itemView.LineCents
		}
		if !itemView.OK {
			view.Valid = false
		}
		view.Items = append(view.Items, itemView)
	}

	return view, nil
}
