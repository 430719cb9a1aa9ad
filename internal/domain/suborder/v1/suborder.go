package v1

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shortlink-org/go-sdk/fsm"

	"github.com/shortlink-org/shop/oms/internal/domain"
	"github.com/shortlink-org/shop/oms/internal/domain/events"
	"github.com/shortlink-org/shop/oms/internal/domain/money"
)

const returnWindow = 7 * 24 * time.Hour

// SubOrder is the per-shop slice of an Order ("the unit of
// fulfillment").
type SubOrder struct {
	mu sync.Mutex

	id             uuid.UUID
	orderID        uuid.UUID
	shopID         uuid.UUID
	items          []Item
	totals         money.Totals
	status         SubOrderStatus
	shipperID      *uuid.UUID
	returnDeadline *time.Time
	coinReward     int64
	version        int

	fsm          *fsm.FSM
	domainEvents []events.Event
}

// NewSubOrder creates a SubOrder in pending, as produced by the Order's
// checkout fan-out (1 Order -> N SubOrder, one per shop in the cart).
func NewSubOrder(id, orderID, shopID uuid.UUID, items []Item, totals money.Totals) (*SubOrder, error) {
	if len(items) == 0 {
		return nil, domain.Wrap(domain.ErrValidation, "sub-order must have at least one item", nil)
	}

	itemSpec := NewItemSpecification()
	for i := range items {
		if err := itemSpec.IsSatisfiedBy(&items[i]); err != nil {
			return nil, domain.Wrap(domain.ErrValidation, "invalid item", err)
		}
	}

	if err := money.NewTotalsSpecification().IsSatisfiedBy(&totals); err != nil {
		return nil, domain.Wrap(domain.ErrValidation, "invalid totals", err)
	}

	return newSubOrder(id, orderID, shopID, items, totals, StatusPending, nil, nil, 0, 0), nil
}

// Reconstitute rebuilds a SubOrder from persisted state.
func Reconstitute(
	id, orderID, shopID uuid.UUID, items []Item, totals money.Totals, status SubOrderStatus,
	shipperID *uuid.UUID, returnDeadline *time.Time, coinReward int64, version int,
) *SubOrder {
	return newSubOrder(id, orderID, shopID, items, totals, status, shipperID, returnDeadline, coinReward, version)
}

func newSubOrder(
	id, orderID, shopID uuid.UUID, items []Item, totals money.Totals, status SubOrderStatus,
	shipperID *uuid.UUID, returnDeadline *time.Time, coinReward int64, version int,
) *SubOrder {
	s := &SubOrder{
		id: id, orderID: orderID, shopID: shopID, items: items, totals: totals,
		status: status, shipperID: shipperID, returnDeadline: returnDeadline,
		coinReward: coinReward, version: version, domainEvents: make([]events.Event, 0),
	}

	s.fsm = fsm.New(fsm.State(status))
	for from, tos := range transitions {
		for _, to := range tos {
			s.fsm.AddTransitionRule(fsm.State(from), fsm.Event(to), fsm.State(to))
		}
	}

	return s
}

func (s *SubOrder) ID() uuid.UUID        { return s.id }
func (s *SubOrder) OrderID() uuid.UUID   { return s.orderID }
func (s *SubOrder) ShopID() uuid.UUID    { return s.shopID }
func (s *SubOrder) Items() []Item        { return append([]Item(nil), s.items...) }
func (s *SubOrder) Totals() money.Totals { return s.totals }
func (s *SubOrder) Version() int         { return s.version }
func (s *SubOrder) CoinReward() int64    { return s.coinReward }

func (s *SubOrder) Status() SubOrderStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.status
}

func (s *SubOrder) ShipperID() *uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.shipperID
}

func (s *SubOrder) ReturnDeadline() *time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.returnDeadline
}

func (s *SubOrder) DomainEvents() []events.Event {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]events.Event, len(s.domainEvents))
	copy(out, s.domainEvents)

	return out
}

func (s *SubOrder) ClearDomainEvents() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.domainEvents = s.domainEvents[:0]
}

func (s *SubOrder) IncrementVersion() { s.mu.Lock(); s.version++; s.mu.Unlock() }

func (s *SubOrder) transition(to SubOrderStatus) error {
	from := s.status
	if !allowedNext(from, to) {
		return domain.Wrap(domain.ErrInvalidStatusTransition, string(from)+"->"+string(to), nil)
	}

	if err := s.fsm.TriggerEvent(context.Background(), fsm.Event(to)); err != nil {
		return domain.Wrap(domain.ErrInvalidStatusTransition, string(from)+"->"+string(to), err)
	}

	s.status = to
	s.domainEvents = append(s.domainEvents, SubOrderStatusChanged{
		SubOrderID: s.id, OrderID: s.orderID, From: from, To: to, OccurredAt: time.Now(),
	})

	return nil
}

// RecordPaymentConfirmed appends the tracking event calls for on every
// SubOrder of an Order whose payment just succeeded. SubOrders are created
// already `pending` by the checkout fan-out, so no status transition fires.
func (s *SubOrder) RecordPaymentConfirmed() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.domainEvents = append(s.domainEvents, SubOrderPaymentConfirmed{
		SubOrderID: s.id, OrderID: s.orderID, OccurredAt: time.Now(),
	})
}

// AssignShipper records the in-house shipper chosen by the Dispatcher.
func (s *SubOrder) AssignShipper(shipperID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.shipperID = &shipperID
}

// Confirm: pending -> confirmed. Called by the partner after payment
// confirmation moves every SubOrder to pending.
func (s *SubOrder) Confirm(actor domain.Actor) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !actor.OwnsShop(s.shopID) {
		return domain.Wrap(domain.ErrForbidden, "suborder.confirm", nil)
	}

	return s.transition(StatusConfirmed)
}

// Process: confirmed -> processing (partner begins packing).
func (s *SubOrder) Process(actor domain.Actor) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !actor.OwnsShop(s.shopID) {
		return domain.Wrap(domain.ErrForbidden, "suborder.process", nil)
	}

	return s.transition(StatusProcessing)
}

// MarkReadyToShip: processing -> ready_to_ship; triggers Shipment creation
// at the usecase layer (in-house via Dispatcher, or explicitly via the
// Facade for an external provider).
func (s *SubOrder) MarkReadyToShip(actor domain.Actor) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !actor.OwnsShop(s.shopID) {
		return domain.Wrap(domain.ErrForbidden, "suborder.ready_to_ship", nil)
	}

	return s.transition(StatusReadyToShip)
}

// MarkShipping: ready_to_ship -> shipping, driven by Shipment pickup (shipper
// or the shipment-status-changed event consumer acting as system).
func (s *SubOrder) MarkShipping(actor domain.Actor) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if actor.Role != domain.RoleSystem && actor.Role != domain.RoleShipper && !actor.IsAdmin() {
		return domain.Wrap(domain.ErrForbidden, "suborder.shipping", nil)
	}

	return s.transition(StatusShipping)
}

// MarkDelivered: shipping -> delivered; sets returnDeadline = deliveredAt + 7 days.
func (s *SubOrder) MarkDelivered(actor domain.Actor, deliveredAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if actor.Role != domain.RoleSystem && actor.Role != domain.RoleShipper && !actor.IsAdmin() {
		return domain.Wrap(domain.ErrForbidden, "suborder.delivered", nil)
	}

	if err := s.transition(StatusDelivered); err != nil {
		return err
	}

	deadline := deliveredAt.Add(returnWindow)
	s.returnDeadline = &deadline

	return nil
}

// CancelByPartner: {pending, confirmed, processing} -> cancelled.
func (s *SubOrder) CancelByPartner(actor domain.Actor) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !actor.OwnsShop(s.shopID) {
		return domain.Wrap(domain.ErrForbidden, "suborder.cancel", nil)
	}

	return s.transition(StatusCancelled)
}

// ConfirmReceipt: delivered -> completed, recording the coin reward. Caller
// (usecase) checks the parent Order's aggregate completion rule afterward.
func (s *SubOrder) ConfirmReceipt(actor domain.Actor, ownerUserID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !actor.OwnsUser(ownerUserID) {
		return domain.Wrap(domain.ErrForbidden, "suborder.confirm_receipt", nil)
	}

	if err := s.transition(StatusCompleted); err != nil {
		return err
	}

	s.coinReward = CoinReward(s.totals.GrandTotal)
	s.domainEvents = append(s.domainEvents, SubOrderCompleted{
		SubOrderID: s.id, OrderID: s.orderID, CoinReward: s.coinReward, OccurredAt: time.Now(),
	})

	return nil
}

// RequestReturn: delivered -> return_requested, only before returnDeadline.
func (s *SubOrder) RequestReturn(actor domain.Actor, ownerUserID uuid.UUID, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !actor.OwnsUser(ownerUserID) {
		return domain.Wrap(domain.ErrForbidden, "suborder.request_return", nil)
	}

	if s.returnDeadline != nil && now.After(*s.returnDeadline) {
		return domain.Wrap(domain.ErrValidation, "return window has closed", nil)
	}

	return s.transition(StatusReturnRequested)
}

// ApproveReturn: return_requested -> return_approved (partner decision) or
// -> completed (partner rejects the return, sub-order stands as delivered/completed).
func (s *SubOrder) ApproveReturn(actor domain.Actor, approve bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !actor.OwnsShop(s.shopID) {
		return domain.Wrap(domain.ErrForbidden, "suborder.approve_return", nil)
	}

	if approve {
		return s.transition(StatusReturnApproved)
	}

	if err := s.transition(StatusCompleted); err != nil {
		return err
	}

	s.coinReward = CoinReward(s.totals.GrandTotal)

	return nil
}

// MarkReturned: return_approved -> returned, once the shipper/admin confirms
// the parcel physically returned to the shop.
func (s *SubOrder) MarkReturned(actor domain.Actor) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if actor.Role != domain.RoleShipper && !actor.IsAdmin() {
		return domain.Wrap(domain.ErrForbidden, "suborder.returned", nil)
	}

	return s.transition(StatusReturned)
}

// Refund: returned -> refunded, once the refund has actually been issued.
func (s *SubOrder) Refund(actor domain.Actor) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if actor.Role != domain.RoleSystem && !actor.IsAdmin() {
		return domain.Wrap(domain.ErrForbidden, "suborder.refund", nil)
	}

	return s.transition(StatusRefunded)
}
