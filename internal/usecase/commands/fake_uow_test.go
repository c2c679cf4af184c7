//go:build unit

package commands_test

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"giftcode-market/internal/domain/codepool"
	"giftcode-market/internal/domain/order"
	"giftcode-market/internal/domain/product"
	"giftcode-market/internal/domain/store"
	"giftcode-market/internal/infra"
	"giftcode-market/internal/infra/db"
	"giftcode-market/internal/usecase/shared"
)

// fakeUoW is an in-memory shared.UnitOfWork. Within runs against a
// deep copy of the state and only commits it back when fn succeeds, so
// tests can assert that a failed transaction persisted nothing.
type fakeUoW struct {
	mu    sync.Mutex
	state *fakeState
}

type fakeJob struct {
	Kind    string
	Topic   string
	Payload []byte
	RunAt   time.Time
}

type fakeState struct {
	orders        map[uuid.UUID]*shared.OrderSnapshot
	products      map[uuid.UUID]shared.ProductSnapshot
	stores        map[uuid.UUID]shared.StoreSnapshot
	userStore     map[uuid.UUID]uuid.UUID
	pool          map[uuid.UUID][]codepool.CodeRecord
	delivered     map[uuid.UUID][]shared.DeliveredCodeRecord
	jobs          []fakeJob
	couponUsage   map[uuid.UUID]int
	syncedProduct []uuid.UUID
}

func newFakeUoW() *fakeUoW {
	return &fakeUoW{state: &fakeState{
		orders:      make(map[uuid.UUID]*shared.OrderSnapshot),
		products:    make(map[uuid.UUID]shared.ProductSnapshot),
		stores:      make(map[uuid.UUID]shared.StoreSnapshot),
		userStore:   make(map[uuid.UUID]uuid.UUID),
		pool:        make(map[uuid.UUID][]codepool.CodeRecord),
		delivered:   make(map[uuid.UUID][]shared.DeliveredCodeRecord),
		couponUsage: make(map[uuid.UUID]int),
	}}
}

func (s *fakeState) clone() *fakeState {
	c := &fakeState{
		orders:        make(map[uuid.UUID]*shared.OrderSnapshot, len(s.orders)),
		products:      make(map[uuid.UUID]shared.ProductSnapshot, len(s.products)),
		stores:        make(map[uuid.UUID]shared.StoreSnapshot, len(s.stores)),
		userStore:     make(map[uuid.UUID]uuid.UUID, len(s.userStore)),
		pool:          make(map[uuid.UUID][]codepool.CodeRecord, len(s.pool)),
		delivered:     make(map[uuid.UUID][]shared.DeliveredCodeRecord, len(s.delivered)),
		jobs:          append([]fakeJob(nil), s.jobs...),
		couponUsage:   make(map[uuid.UUID]int, len(s.couponUsage)),
		syncedProduct: append([]uuid.UUID(nil), s.syncedProduct...),
	}
	for id, snap := range s.products {
		c.products[id] = snap
	}
	for id, snap := range s.stores {
		c.stores[id] = snap
	}
	for userID, storeID := range s.userStore {
		c.userStore[userID] = storeID
	}
	for id, snap := range s.orders {
		cp := *snap
		cp.Items = append([]shared.OrderItemSnapshot(nil), snap.Items...)
		c.orders[id] = &cp
	}
	for id, codes := range s.pool {
		c.pool[id] = append([]codepool.CodeRecord(nil), codes...)
	}
	for id, recs := range s.delivered {
		c.delivered[id] = append([]shared.DeliveredCodeRecord(nil), recs...)
	}
	for id, n := range s.couponUsage {
		c.couponUsage[id] = n
	}
	return c
}

func (u *fakeUoW) seedOrder(snap *shared.OrderSnapshot) {
	u.state.orders[snap.ID] = snap
}

func (u *fakeUoW) seedProduct(snap shared.ProductSnapshot) {
	u.state.products[snap.ID] = snap
}

func (u *fakeUoW) seedStore(snap shared.StoreSnapshot) {
	u.state.stores[snap.ID] = snap
	u.state.userStore[snap.OwnerID] = snap.ID
}

func (u *fakeUoW) seedCodes(productID uuid.UUID, codes ...string) {
	for _, code := range codes {
		u.state.pool[productID] = append(u.state.pool[productID], codepool.CodeRecord{
			ID:        uuid.New(),
			ProductID: productID,
			Code:      code,
		})
	}
}

func (u *fakeUoW) seedDelivered(rec shared.DeliveredCodeRecord) {
	u.state.delivered[rec.OrderItemID] = append(u.state.delivered[rec.OrderItemID], rec)
}

func (u *fakeUoW) availableCodes(productID uuid.UUID) int {
	n := 0
	for _, rec := range u.state.pool[productID] {
		if !rec.Consumed {
			n++
		}
	}
	return n
}

func (u *fakeUoW) deliveredFor(orderItemID uuid.UUID) []shared.DeliveredCodeRecord {
	return u.state.delivered[orderItemID]
}

// Within serializes transactions with a mutex, mimicking fully
// serialized isolation: each fn sees a private clone and commits it
// wholesale on success.
func (u *fakeUoW) Within(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	working := u.state.clone()
	if err := fn(ctx, &fakeTx{s: working}); err != nil {
		return err
	}
	u.state = working
	return nil
}

func (u *fakeUoW) WithinReadOnly(ctx context.Context, fn func(ctx context.Context, dbtx db.DBTX) error) error {
	return fn(ctx, nil)
}

func (u *fakeUoW) WithDB(ctx context.Context, fn func(ctx context.Context, dbtx db.DBTX) error) error {
	return fn(ctx, nil)
}

func (u *fakeUoW) CommandReads() shared.CommandReads {
	return &fakeReads{s: u.state}
}

type fakeTx struct {
	s *fakeState
}

func (t *fakeTx) Orders() shared.OrderRepository                 { return &fakeOrderRepo{s: t.s} }
func (t *fakeTx) CodePool() shared.CodePoolRepository            { return &fakeCodePoolRepo{s: t.s} }
func (t *fakeTx) DeliveredCodes() shared.DeliveredCodeRepository { return &fakeDeliveredRepo{s: t.s} }
func (t *fakeTx) Coupons() shared.CouponRepository               { return &fakeCouponRepo{s: t.s} }
func (t *fakeTx) Idempotency() shared.IdempotencyRepository      { return &fakeIdempotencyRepo{} }
func (t *fakeTx) Notifications() shared.NotificationRepository   { return &fakeNotificationRepo{s: t.s} }
func (t *fakeTx) Users() shared.UserRepository                   { return &fakeUserRepo{s: t.s} }
func (t *fakeTx) Stores() shared.StoreRepository                 { return &fakeStoreRepo{s: t.s} }
func (t *fakeTx) Products() shared.ProductRepository             { return &fakeProductRepo{s: t.s} }
func (t *fakeTx) Reads() shared.CommandReads                     { return &fakeReads{s: t.s} }
func (t *fakeTx) DB() db.DBTX                                    { return nil }

type fakeOrderRepo struct {
	s *fakeState
}

func (r *fakeOrderRepo) Create(_ context.Context, _ db.DBTX, o *order.Order) (uuid.UUID, error) {
	snap := snapshotFromEntity(o)
	r.s.orders[snap.ID] = snap
	return snap.ID, nil
}

func (r *fakeOrderRepo) UpdateStatus(_ context.Context, _ db.DBTX, o *order.Order) error {
	snap, ok := r.s.orders[o.ID()]
	if !ok {
		return infra.WrapRepoErr("order not found", nil, infra.KindNotFound)
	}
	snap.Status = string(o.Status())
	snap.RejectionReason = o.RejectionReason()
	snap.PaymentVerifiedAt = o.PaymentVerifiedAt()
	snap.CodeDeliveredAt = o.CodeDeliveredAt()
	snap.CompletedAt = o.CompletedAt()
	snap.CancelledAt = o.CancelledAt()
	return nil
}

func (r *fakeOrderRepo) MarkItemFulfilled(_ context.Context, _ db.DBTX, itemID uuid.UUID, at time.Time) error {
	for _, snap := range r.s.orders {
		for i := range snap.Items {
			if snap.Items[i].ID == itemID {
				if !snap.Items[i].Fulfilled {
					snap.Items[i].Fulfilled = true
					snap.Items[i].FulfilledAt = &at
				}
				return nil
			}
		}
	}
	return infra.WrapRepoErr("order item not found", nil, infra.KindNotFound)
}

func snapshotFromEntity(o *order.Order) *shared.OrderSnapshot {
	snap := &shared.OrderSnapshot{
		ID:                o.ID(),
		UserID:            o.UserID(),
		Status:            string(o.Status()),
		PaymentMethod:     string(o.PaymentMethod()),
		SubtotalCents:     o.SubtotalCents(),
		DiscountCents:     o.DiscountCents(),
		TotalCents:        o.TotalCents(),
		CouponID:          o.CouponID(),
		RejectionReason:   o.RejectionReason(),
		CreatedAt:         o.CreatedAt(),
		PaymentVerifiedAt: o.PaymentVerifiedAt(),
		CodeDeliveredAt:   o.CodeDeliveredAt(),
		CompletedAt:       o.CompletedAt(),
		CancelledAt:       o.CancelledAt(),
		UpdatedAt:         o.UpdatedAt(),
	}
	for _, item := range o.Items() {
		snap.Items = append(snap.Items, shared.OrderItemSnapshot{
			ID:           item.ID(),
			OrderID:      o.ID(),
			ProductID:    item.ProductID(),
			StoreID:      item.StoreID(),
			Quantity:     item.Quantity(),
			PriceCents:   item.PriceCents(),
			DeliveryType: string(item.DeliveryType()),
			Fulfilled:    item.Fulfilled(),
			FulfilledAt:  item.FulfilledAt(),
		})
	}
	return snap
}

type fakeCodePoolRepo struct {
	s *fakeState
}

func (r *fakeCodePoolRepo) Append(_ context.Context, _ db.DBTX, batch *codepool.Batch) error {
	existing := make(map[string]bool)
	for _, rec := range r.s.pool[batch.ProductID()] {
		existing[rec.Code] = true
	}
	var seen []string
	for _, code := range batch.Codes() {
		if existing[code] {
			seen = append(seen, code)
		}
	}
	if len(seen) > 0 {
		return &codepool.DuplicateCodeError{Duplicates: seen}
	}
	for _, code := range batch.Codes() {
		r.s.pool[batch.ProductID()] = append(r.s.pool[batch.ProductID()], codepool.CodeRecord{
			ID:        uuid.New(),
			ProductID: batch.ProductID(),
			Code:      code,
		})
	}
	return nil
}

func (r *fakeCodePoolRepo) FindExistingCodes(_ context.Context, _ db.DBTX, productID uuid.UUID, candidates []string) ([]string, error) {
	pooled := make(map[string]bool)
	for _, rec := range r.s.pool[productID] {
		pooled[rec.Code] = true
	}
	var found []string
	for _, code := range candidates {
		if pooled[code] {
			found = append(found, code)
		}
	}
	return found, nil
}

func (r *fakeCodePoolRepo) ClaimCodes(_ context.Context, _ db.DBTX, productID, orderItemID uuid.UUID, quantity int32, at time.Time) ([]codepool.CodeRecord, error) {
	var claimed []codepool.CodeRecord
	codes := r.s.pool[productID]
	for i := range codes {
		if len(claimed) == int(quantity) {
			break
		}
		if codes[i].Consumed {
			continue
		}
		itemID := orderItemID
		consumedAt := at
		codes[i].Consumed = true
		codes[i].OrderItemID = &itemID
		codes[i].ConsumedAt = &consumedAt
		claimed = append(claimed, codes[i])
	}
	return claimed, nil
}

func (r *fakeCodePoolRepo) CountAvailable(_ context.Context, _ db.DBTX, productID uuid.UUID) (int64, error) {
	var n int64
	for _, rec := range r.s.pool[productID] {
		if !rec.Consumed {
			n++
		}
	}
	return n, nil
}

func (r *fakeCodePoolRepo) SyncProductAvailability(_ context.Context, _ db.DBTX, productID uuid.UUID) error {
	r.s.syncedProduct = append(r.s.syncedProduct, productID)
	return nil
}

type fakeDeliveredRepo struct {
	s *fakeState
}

func (r *fakeDeliveredRepo) CreateBatch(_ context.Context, _ db.DBTX, records []shared.DeliveredCodeRecord) error {
	for _, rec := range records {
		r.s.delivered[rec.OrderItemID] = append(r.s.delivered[rec.OrderItemID], rec)
	}
	return nil
}

func (r *fakeDeliveredRepo) MarkViewed(_ context.Context, _ db.DBTX, id uuid.UUID, at time.Time) error {
	for itemID, recs := range r.s.delivered {
		for i := range recs {
			if recs[i].ID == id && recs[i].ViewedAt == nil {
				viewedAt := at
				r.s.delivered[itemID][i].ViewedAt = &viewedAt
				return nil
			}
		}
	}
	return infra.WrapRepoErr("delivered code not found", nil, infra.KindNotFound)
}

type fakeCouponRepo struct {
	s *fakeState
}

func (r *fakeCouponRepo) IncrementUsage(_ context.Context, _ db.DBTX, couponID uuid.UUID) error {
	r.s.couponUsage[couponID]++
	return nil
}

type fakeIdempotencyRepo struct{}

func (r *fakeIdempotencyRepo) TryInsert(_ context.Context, _ db.DBTX, _, _ uuid.UUID, _, _ string, _ time.Time) (bool, error) {
	return true, nil
}

func (r *fakeIdempotencyRepo) UpdateStatusCompleted(_ context.Context, _ db.DBTX, _, _ uuid.UUID, _ string, _ uuid.UUID) error {
	return nil
}

type fakeNotificationRepo struct {
	s *fakeState
}

func (r *fakeNotificationRepo) CreateJob(_ context.Context, _ db.DBTX, kind, topic string, payload []byte, runAt time.Time) error {
	r.s.jobs = append(r.s.jobs, fakeJob{Kind: kind, Topic: topic, Payload: payload, RunAt: runAt})
	return nil
}

type fakeUserRepo struct {
	s *fakeState
}

func (r *fakeUserRepo) UpdateLastLogin(_ context.Context, _ db.DBTX, _ uuid.UUID) error {
	return nil
}

func (r *fakeUserRepo) AttachStore(_ context.Context, _ db.DBTX, userID, storeID uuid.UUID) error {
	if _, taken := r.s.userStore[userID]; taken {
		return infra.WrapRepoErr("user already owns a store", nil, infra.KindConflict)
	}
	r.s.userStore[userID] = storeID
	return nil
}

type fakeStoreRepo struct {
	s *fakeState
}

func (r *fakeStoreRepo) Create(_ context.Context, _ db.DBTX, st *store.Store) error {
	r.s.stores[st.ID()] = shared.StoreSnapshot{
		ID:      st.ID(),
		OwnerID: st.OwnerID(),
		Name:    st.Name(),
		Status:  string(st.Status()),
	}
	return nil
}

func (r *fakeStoreRepo) UpdateStatus(_ context.Context, _ db.DBTX, st *store.Store) error {
	snap, ok := r.s.stores[st.ID()]
	if !ok {
		return infra.WrapRepoErr("store not found", nil, infra.KindNotFound)
	}
	snap.Status = string(st.Status())
	r.s.stores[st.ID()] = snap
	return nil
}

type fakeProductRepo struct {
	s *fakeState
}

func (r *fakeProductRepo) Create(_ context.Context, _ db.DBTX, p *product.Product) error {
	r.s.products[p.ID()] = shared.ProductSnapshot{
		ID:           p.ID(),
		StoreID:      p.StoreID(),
		Name:         p.Name(),
		PriceCents:   p.PriceCents(),
		DeliveryType: string(p.DeliveryType()),
		InStock:      p.InStock(),
	}
	return nil
}

func (r *fakeProductRepo) Update(_ context.Context, _ db.DBTX, productID uuid.UUID, name string, priceCents int64) error {
	snap, ok := r.s.products[productID]
	if !ok {
		return infra.WrapRepoErr("product not found", nil, infra.KindNotFound)
	}
	snap.Name = name
	snap.PriceCents = priceCents
	r.s.products[productID] = snap
	return nil
}

func (r *fakeProductRepo) SetInStock(_ context.Context, _ db.DBTX, productID uuid.UUID, inStock bool) error {
	snap, ok := r.s.products[productID]
	if !ok {
		return infra.WrapRepoErr("product not found", nil, infra.KindNotFound)
	}
	snap.InStock = inStock
	r.s.products[productID] = snap
	return nil
}

type fakeReads struct {
	s *fakeState
}

func (r *fakeReads) ProductsByIDs(_ context.Context, ids []uuid.UUID) ([]shared.ProductSnapshot, error) {
	var out []shared.ProductSnapshot
	for _, id := range ids {
		if snap, ok := r.s.products[id]; ok {
			out = append(out, snap)
		}
	}
	return out, nil
}

func (r *fakeReads) StoreByID(_ context.Context, storeID uuid.UUID) (*shared.StoreSnapshot, error) {
	snap, ok := r.s.stores[storeID]
	if !ok {
		return nil, infra.WrapRepoErr("store not found", nil, infra.KindNotFound)
	}
	cp := snap
	return &cp, nil
}

func (r *fakeReads) StoreByOwner(_ context.Context, ownerID uuid.UUID) (*shared.StoreSnapshot, error) {
	for _, snap := range r.s.stores {
		if snap.OwnerID == ownerID {
			cp := snap
			return &cp, nil
		}
	}
	return nil, infra.WrapRepoErr("store not found", nil, infra.KindNotFound)
}

func (r *fakeReads) CouponByCode(_ context.Context, _ string) (*shared.CouponSnapshot, error) {
	return nil, infra.WrapRepoErr("coupon not found", nil, infra.KindNotFound)
}

func (r *fakeReads) UserHasCouponOrder(_ context.Context, _, _ uuid.UUID) (bool, error) {
	return false, nil
}

func (r *fakeReads) OrderByID(_ context.Context, orderID uuid.UUID) (*shared.OrderSnapshot, error) {
	snap, ok := r.s.orders[orderID]
	if !ok {
		return nil, infra.WrapRepoErr("order not found", nil, infra.KindNotFound)
	}
	cp := *snap
	cp.Items = append([]shared.OrderItemSnapshot(nil), snap.Items...)
	return &cp, nil
}

func (r *fakeReads) OrderItemByID(_ context.Context, itemID uuid.UUID) (*shared.OrderItemSnapshot, error) {
	for _, snap := range r.s.orders {
		for _, item := range snap.Items {
			if item.ID == itemID {
				cp := item
				return &cp, nil
			}
		}
	}
	return nil, infra.WrapRepoErr("order item not found", nil, infra.KindNotFound)
}

func (r *fakeReads) IdempotencyByKey(_ context.Context, _, _ uuid.UUID) (*shared.IdempotencyRecord, error) {
	return nil, infra.WrapRepoErr("idempotency key not found", nil, infra.KindNotFound)
}

func (r *fakeReads) DeliveredCodeByID(_ context.Context, id uuid.UUID) (*shared.DeliveredCodeRecord, error) {
	for _, recs := range r.s.delivered {
		for _, rec := range recs {
			if rec.ID == id {
				cp := rec
				return &cp, nil
			}
		}
	}
	return nil, infra.WrapRepoErr("delivered code not found", nil, infra.KindNotFound)
}

func (r *fakeReads) DeliveredCodesByOrderItem(_ context.Context, orderItemID uuid.UUID) ([]shared.DeliveredCodeRecord, error) {
	return append([]shared.DeliveredCodeRecord(nil), r.s.delivered[orderItemID]...), nil
}

func (r *fakeReads) AvailableCodeCount(_ context.Context, productID uuid.UUID) (int64, error) {
	var n int64
	for _, rec := range r.s.pool[productID] {
		if !rec.Consumed {
			n++
		}
	}
	return n, nil
}
