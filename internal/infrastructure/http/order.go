package http

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/shortlink-org/go-sdk/logger"

	"github.com/shortlink-org/shop/oms/internal/domain"
	"github.com/shortlink-org/shop/oms/internal/domain/money"
	orderv1 "github.com/shortlink-org/shop/oms/internal/domain/order/v1"
	"github.com/shortlink-org/shop/oms/internal/domain/ports"
	"github.com/shortlink-org/shop/oms/internal/infrastructure/http/httperr"
	"github.com/shortlink-org/shop/oms/internal/usecases/order/command/cancel"
	"github.com/shortlink-org/shop/oms/internal/usecases/order/command/confirm"
	"github.com/shortlink-org/shop/oms/internal/usecases/order/command/markrefunded"
	"github.com/shortlink-org/shop/oms/internal/usecases/order/query/getorder"
	"github.com/shortlink-org/shop/oms/internal/usecases/order/query/listbycustomer"
)

// OrderHandlers serves the customer/partner/admin order endpoints
type OrderHandlers struct {
	log            logger.Logger
	getOrder       ports.QueryHandler[getorder.Query, getorder.Result]
	listByCustomer ports.QueryHandler[listbycustomer.Query, listbycustomer.Result]
	cancelOrder    ports.CommandHandlerWithResult[cancel.Command, bool]
	confirmOrder   ports.CommandHandler[confirm.Command]
	markRefunded   ports.CommandHandler[markrefunded.Command]
}

// NewOrderHandlers wires the order HTTP surface.
func NewOrderHandlers(
	log logger.Logger,
	getOrder ports.QueryHandler[getorder.Query, getorder.Result],
	listByCustomer ports.QueryHandler[listbycustomer.Query, listbycustomer.Result],
	cancelOrder ports.CommandHandlerWithResult[cancel.Command, bool],
	confirmOrder ports.CommandHandler[confirm.Command],
	markRefunded ports.CommandHandler[markrefunded.Command],
) *OrderHandlers {
	return &OrderHandlers{
		log: log, getOrder: getOrder, listByCustomer: listByCustomer,
		cancelOrder: cancelOrder, confirmOrder: confirmOrder, markRefunded: markRefunded,
	}
}

// Register mounts the order routes onto mux.
func (h *OrderHandlers) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /orders/{id}", h.handleGet)
	mux.HandleFunc("GET /customers/{id}/orders", h.handleListByCustomer)
	mux.HandleFunc("POST /orders/{id}/cancel", h.handleCancel)
	mux.HandleFunc("PATCH /partner/orders/{id}/confirm", h.handleConfirm)
	mux.HandleFunc("PATCH /admin/orders/{id}/refunded", h.handleMarkRefunded)
}

// orderResponse is the wire shape of an Order; the aggregate itself keeps
// its fields unexported.
type orderResponse struct {
	ID            uuid.UUID        `json:"id"`
	OrderNumber   string           `json:"order_number"`
	UserID        uuid.UUID        `json:"user_id"`
	Status        string           `json:"status"`
	PaymentStatus string           `json:"payment_status"`
	PaymentMethod string           `json:"payment_method"`
	Totals        money.Totals     `json:"totals"`
	Shipping      addressBody      `json:"shipping"`
	Timestamps    orderv1.Timestamps `json:"timestamps"`
}

func toOrderResponse(order *orderv1.Order) orderResponse {
	shipping := order.Shipping()

	return orderResponse{
		ID:            order.ID(),
		OrderNumber:   order.OrderNumber(),
		UserID:        order.UserID(),
		Status:        string(order.Status()),
		PaymentStatus: string(order.PaymentStatus()),
		PaymentMethod: string(order.PaymentMethod()),
		Totals:        order.Totals(),
		Shipping: addressBody{
			Name:     shipping.Name(),
			Phone:    shipping.Phone(),
			Street:   shipping.Street(),
			City:     shipping.City(),
			District: shipping.District(),
			Lat:      shipping.Location().Latitude(),
			Lng:      shipping.Location().Longitude(),
		},
		Timestamps: order.Timestamps(),
	}
}

func (h *OrderHandlers) handleGet(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		httperr.WriteError(w, err)

		return
	}

	order, err := h.getOrder.Handle(r.Context(), getorder.NewQuery(id))
	if err != nil {
		httperr.WriteError(w, err)

		return
	}

	httperr.WriteData(w, http.StatusOK, toOrderResponse(order))
}

func (h *OrderHandlers) handleListByCustomer(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		httperr.WriteError(w, err)

		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 {
		limit = 20
	}

	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	orders, err := h.listByCustomer.Handle(r.Context(), listbycustomer.NewQuery(id, limit, offset))
	if err != nil {
		httperr.WriteError(w, err)

		return
	}

	resp := make([]orderResponse, 0, len(orders))
	for _, order := range orders {
		resp = append(resp, toOrderResponse(order))
	}

	httperr.WriteData(w, http.StatusOK, resp)
}

func (h *OrderHandlers) handleCancel(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		httperr.WriteError(w, err)

		return
	}

	actor, err := actorFromRequest(r)
	if err != nil {
		httperr.WriteError(w, err)

		return
	}

	refundNeeded, err := h.cancelOrder.Handle(r.Context(), cancel.NewCommand(id, actor))
	if err != nil {
		httperr.WriteError(w, err)

		return
	}

	httperr.WriteData(w, http.StatusOK, map[string]bool{"refund_needed": refundNeeded})
}

func (h *OrderHandlers) handleConfirm(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		httperr.WriteError(w, err)

		return
	}

	actor, err := actorFromRequest(r)
	if err != nil {
		httperr.WriteError(w, err)

		return
	}

	if err := h.confirmOrder.Handle(r.Context(), confirm.NewCommand(id, actor)); err != nil {
		httperr.WriteError(w, err)

		return
	}

	httperr.WriteData(w, http.StatusOK, nil)
}

// handleMarkRefunded records the outcome of an externally processed refund
// ticket; refund execution itself never blocks cancellation.
func (h *OrderHandlers) handleMarkRefunded(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		httperr.WriteError(w, err)

		return
	}

	actor, err := actorFromRequest(r)
	if err != nil {
		httperr.WriteError(w, err)

		return
	}

	if !actor.IsAdmin() {
		httperr.WriteError(w, domain.Wrap(domain.ErrForbidden, "admin role required", nil))

		return
	}

	if err := h.markRefunded.Handle(r.Context(), markrefunded.NewCommand(id)); err != nil {
		httperr.WriteError(w, err)

		return
	}

	httperr.WriteData(w, http.StatusOK, nil)
}
