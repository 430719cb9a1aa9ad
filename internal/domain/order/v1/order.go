// Package v1 implements the Order aggregate: FSM-backed status machine,
// payment-driven transitions, customer cancel, and the aggregate completion
// rule. A mutex-guarded struct wraps *fsm.FSM; domain events accumulate on
// the aggregate and are drained by the usecase layer after commit.
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
	"github.com/shortlink-org/shop/oms/internal/domain/order/v1/vo"
)

// Timestamps holds the order lifecycle timestamps of the data model.
type Timestamps struct {
	CreatedAt   time.Time
	UpdatedAt   time.Time
	PaidAt      *time.Time
	CompletedAt *time.Time
	CancelledAt *time.Time
}

// Order is the Order aggregate root.
type Order struct {
	mu sync.Mutex

	id            uuid.UUID
	orderNumber   string
	userID        uuid.UUID
	totals        money.Totals
	paymentMethod PaymentMethod
	paymentStatus PaymentStatus
	status        OrderStatus
	shipping      vo.Address
	timestamps    Timestamps
	version       int

	fsm          *fsm.FSM
	domainEvents []events.Event
}

// NewOrder creates a brand-new order in pending_payment; this constructor
// is the boundary the (external) checkout service calls into.
func NewOrder(id, userID uuid.UUID, orderNumber string, totals money.Totals, method PaymentMethod, shipping vo.Address) (*Order, error) {
	if orderNumber == "" {
		return nil, domain.Wrap(domain.ErrValidation, "order number required", nil)
	}

	if err := money.NewTotalsSpecification().IsSatisfiedBy(&totals); err != nil {
		return nil, domain.Wrap(domain.ErrValidation, "invalid totals", err)
	}

	now := time.Now()

	return newOrder(id, userID, orderNumber, totals, method, PaymentPending, StatusPendingPayment,
		shipping, Timestamps{CreatedAt: now, UpdatedAt: now}, 0), nil
}

// Reconstitute rebuilds an Order from persisted state; no validation beyond
// what the FSM enforces (the row is assumed to have been valid on write).
func Reconstitute(
	id, userID uuid.UUID, orderNumber string, totals money.Totals,
	method PaymentMethod, paymentStatus PaymentStatus, status OrderStatus,
	shipping vo.Address, ts Timestamps, version int,
) *Order {
	return newOrder(id, userID, orderNumber, totals, method, paymentStatus, status, shipping, ts, version)
}

func newOrder(
	id, userID uuid.UUID, orderNumber string, totals money.Totals,
	method PaymentMethod, paymentStatus PaymentStatus, status OrderStatus,
	shipping vo.Address, ts Timestamps, version int,
) *Order {
	o := &Order{
		id:            id,
		orderNumber:   orderNumber,
		userID:        userID,
		totals:        totals,
		paymentMethod: method,
		paymentStatus: paymentStatus,
		status:        status,
		shipping:      shipping,
		timestamps:    ts,
		version:       version,
		domainEvents:  make([]events.Event, 0),
	}

	o.fsm = fsm.New(fsm.State(status))
	for from, tos := range orderTransitions {
		for _, to := range tos {
			o.fsm.AddTransitionRule(fsm.State(from), fsm.Event(to), fsm.State(to))
		}
	}

	return o
}

func (o *Order) ID() uuid.UUID               { return o.id }
func (o *Order) OrderNumber() string         { return o.orderNumber }
func (o *Order) UserID() uuid.UUID           { return o.userID }
func (o *Order) Totals() money.Totals        { return o.totals }
func (o *Order) PaymentMethod() PaymentMethod { return o.paymentMethod }
func (o *Order) Version() int                { return o.version }
func (o *Order) Timestamps() Timestamps      { return o.timestamps }
func (o *Order) Shipping() vo.Address        { return o.shipping }

func (o *Order) Status() OrderStatus {
	o.mu.Lock()
	defer o.mu.Unlock()

	return o.status
}

func (o *Order) PaymentStatus() PaymentStatus {
	o.mu.Lock()
	defer o.mu.Unlock()

	return o.paymentStatus
}

// DomainEvents returns events raised so far; drained via ClearDomainEvents
// by the usecase layer after a successful publish-after-commit.
func (o *Order) DomainEvents() []events.Event {
	o.mu.Lock()
	defer o.mu.Unlock()

	out := make([]events.Event, len(o.domainEvents))
	copy(out, o.domainEvents)

	return out
}

func (o *Order) ClearDomainEvents() {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.domainEvents = o.domainEvents[:0]
}

// IncrementVersion bumps the optimistic-concurrency version; called by the
// repository right before a successful Save.
func (o *Order) IncrementVersion() { o.mu.Lock(); o.version++; o.mu.Unlock() }

// transition validates s -> to against orderTransitions, triggers the FSM,
// updates the status field and appends an OrderStatusChanged event. Callers
// hold o.mu.
func (o *Order) transition(to OrderStatus) error {
	from := o.status
	if !allowedNext(from, to) {
		return domain.Wrap(domain.ErrInvalidStatusTransition, string(from)+"->"+string(to), nil)
	}

	if err := o.fsm.TriggerEvent(context.Background(), fsm.Event(to)); err != nil {
		return domain.Wrap(domain.ErrInvalidStatusTransition, string(from)+"->"+string(to), err)
	}

	o.status = to
	o.timestamps.UpdatedAt = time.Now()
	o.domainEvents = append(o.domainEvents, OrderStatusChanged{
		OrderID: o.id, From: from, To: to, OccurredAt: o.timestamps.UpdatedAt,
	})

	return nil
}

// Confirm is the COD bypass: a partner confirms the order directly without
// waiting for an online PaymentSucceeded event.
func (o *Order) Confirm(actor domain.Actor) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.paymentMethod != PaymentMethodCOD {
		return domain.Wrap(domain.ErrValidation, "only cod orders can be partner-confirmed without payment", nil)
	}

	if !actor.IsAdmin() && actor.Role != domain.RolePartner {
		return domain.Wrap(domain.ErrForbidden, "order.confirm", nil)
	}

	return o.transition(StatusConfirmed)
}

// ApplyPaymentSucceeded drives the payment-triggered transition:
// payment -> paid, Order -> processing. Caller (usecase) is responsible for
// moving every SubOrder to pending and appending PaymentConfirmed tracking
// events, since SubOrders are a separate aggregate.
func (o *Order) ApplyPaymentSucceeded() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if err := o.transition(StatusProcessing); err != nil {
		return err
	}

	o.paymentStatus = PaymentPaid
	now := time.Now()
	o.timestamps.PaidAt = &now

	return nil
}

// ApplyPaymentFailed drives the PaymentFailed path: payment -> failed,
// Order -> payment_failed. Stock release is handled by the usecase via the
// InventoryPort collaborator.
func (o *Order) ApplyPaymentFailed() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if err := o.transition(StatusPaymentFailed); err != nil {
		return err
	}

	o.paymentStatus = PaymentFailed

	return nil
}

// Cancel is the customer-cancel path: allowed only from
// {pending_payment, confirmed}; the "no SubOrder in shipping" half of the
// guard is enforced by the usecase, which has visibility into SubOrders.
// Returns whether a provider refund must be initiated (already-paid,
// non-COD order) so the usecase can call the Facade's refund path.
func (o *Order) Cancel(actor domain.Actor) (refundNeeded bool, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if !actor.OwnsUser(o.userID) && !actor.IsAdmin() {
		return false, domain.Wrap(domain.ErrForbidden, "order.cancel", nil)
	}

	refundNeeded = o.paymentStatus == PaymentPaid && o.paymentMethod != PaymentMethodCOD

	if err := o.transition(StatusCancelled); err != nil {
		return false, err
	}

	now := time.Now()
	o.timestamps.CancelledAt = &now
	o.domainEvents = append(o.domainEvents, OrderCancelled{
		OrderID: o.id, RefundPending: refundNeeded, OccurredAt: now,
	})

	return refundNeeded, nil
}

// MarkRefunded records a successful asynchronous provider refund after a cancel.
func (o *Order) MarkRefunded() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if err := o.transition(StatusRefunded); err != nil {
		return err
	}

	o.paymentStatus = PaymentRefunded

	return nil
}

// Complete applies the aggregate completion rule. The usecase
// must have already verified that every SubOrder is in
// {delivered, completed, cancelled} and at least one is not cancelled;
// Complete itself only enforces the Order-level FSM transition and the
// publish-exactly-once event.
func (o *Order) Complete() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if err := o.transition(StatusCompleted); err != nil {
		return err
	}

	now := time.Now()
	o.timestamps.CompletedAt = &now
	o.domainEvents = append(o.domainEvents, OrderCompleted{OrderID: o.id, OccurredAt: now})

	return nil
}
