package v1

// OrderStatus is the order lifecycle status.
type OrderStatus string

const (
	StatusPendingPayment OrderStatus = "pending_payment"
	StatusPaymentFailed  OrderStatus = "payment_failed"
	StatusConfirmed      OrderStatus = "confirmed"
	StatusProcessing     OrderStatus = "processing"
	StatusCompleted      OrderStatus = "completed"
	StatusCancelled      OrderStatus = "cancelled"
	StatusRefunded       OrderStatus = "refunded"
)

func (s OrderStatus) String() string { return string(s) }

// IsTerminal reports whether the order has reached an end state of its
// lifecycle. A cancelled order can still move to refunded.
func (s OrderStatus) IsTerminal() bool {
	switch s {
	case StatusPaymentFailed, StatusCompleted, StatusCancelled, StatusRefunded:
		return true
	default:
		return false
	}
}

// PaymentStatus mirrors the order's payment record.
type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentFailed   PaymentStatus = "failed"
	PaymentRefunded PaymentStatus = "refunded"
)

// PaymentMethod is an open set; cod is the only member the core special-cases
// (COD orders skip the online PaymentSucceeded wait and are confirmed
// directly by the partner).
type PaymentMethod string

const (
	PaymentMethodCOD      PaymentMethod = "cod"
	PaymentMethodMomo     PaymentMethod = "momo"
	PaymentMethodVNPay    PaymentMethod = "vnpay"
	PaymentMethodZaloPay  PaymentMethod = "zalopay"
)

// orderTransitions is the allowed-next table for Order.status, derived
// from the payment-driven, customer-cancel and receipt-confirmation flows:
//   - pending_payment -> confirmed is the COD bypass (partner confirms
//     without waiting for an online PaymentSucceeded event).
//   - pending_payment -> processing is the online-payment path
//     (PaymentSucceeded).
//   - pending_payment -> payment_failed is PaymentFailed.
//   - {pending_payment, confirmed} -> cancelled is the customer-cancel path.
//   - {confirmed, processing} -> completed is the aggregate completion rule.
//   - cancelled -> refunded is the asynchronous refund-succeeded follow-up.
var orderTransitions = map[OrderStatus][]OrderStatus{
	StatusPendingPayment: {StatusConfirmed, StatusProcessing, StatusPaymentFailed, StatusCancelled},
	StatusConfirmed:       {StatusCancelled, StatusCompleted},
	StatusProcessing:      {StatusCompleted},
	StatusCancelled:       {StatusRefunded},
}

func allowedNext(from, to OrderStatus) bool {
	for _, s := range orderTransitions[from] {
		if s == to {
			return true
		}
	}

	return false
}
