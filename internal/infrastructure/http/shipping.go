package http

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/shortlink-org/go-sdk/logger"

	"github.com/shortlink-org/shop/oms/internal/domain"
	"github.com/shortlink-org/shop/oms/internal/domain/location"
	"github.com/shortlink-org/shop/oms/internal/domain/order/v1/vo"
	"github.com/shortlink-org/shop/oms/internal/domain/ports"
	"github.com/shortlink-org/shop/oms/internal/domain/shipping"
	"github.com/shortlink-org/shop/oms/internal/infrastructure/http/httperr"
	"github.com/shortlink-org/shop/oms/internal/usecases/dispatch/command/dispatchshipment"
	"github.com/shortlink-org/shop/oms/internal/usecases/shipment/command/applywebhook"
	"github.com/shortlink-org/shop/oms/internal/usecases/shipment/command/create"
	"github.com/shortlink-org/shop/oms/internal/usecases/shipping/facade"
)

// maxWebhookBody bounds carrier webhook payloads; anything larger is junk.
const maxWebhookBody = 1 << 20

// ShippingHandlers serves the fee-quote aggregation endpoint and the
// provider webhook intake
type ShippingHandlers struct {
	log            logger.Logger
	facade         *facade.Facade
	webhook        ports.CommandHandler[applywebhook.Command]
	createShipment ports.CommandHandlerWithResult[create.Command, uuid.UUID]
	dispatchRetry  ports.CommandHandler[dispatchshipment.Command]
}

// NewShippingHandlers wires the shipping HTTP surface.
func NewShippingHandlers(
	log logger.Logger,
	facade *facade.Facade,
	webhook ports.CommandHandler[applywebhook.Command],
	createShipment ports.CommandHandlerWithResult[create.Command, uuid.UUID],
	dispatchRetry ports.CommandHandler[dispatchshipment.Command],
) *ShippingHandlers {
	return &ShippingHandlers{log: log, facade: facade, webhook: webhook, createShipment: createShipment, dispatchRetry: dispatchRetry}
}

// Register mounts the shipping routes onto mux.
func (h *ShippingHandlers) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /shipping/fees", h.handleCalculateFees)
	mux.HandleFunc("POST /admin/shipping/webhook/{provider}", h.handleWebhook)
	mux.HandleFunc("POST /partner/shipments", h.handleCreateShipment)
	mux.HandleFunc("POST /admin/shipments/{id}/dispatch", h.handleDispatchRetry)
	mux.HandleFunc("POST /partner/shipping/{provider}/test", h.handleTestConnection)
}

// handleTestConnection verifies the shop's stored credentials against the
// carrier before the partner enables it.
func (h *ShippingHandlers) handleTestConnection(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromRequest(r)
	if err != nil {
		httperr.WriteError(w, err)

		return
	}

	if actor.ShopID == nil && !actor.IsAdmin() {
		httperr.WriteError(w, domain.Wrap(domain.ErrForbidden, "partner role required", nil))

		return
	}

	var shopID uuid.UUID
	if actor.ShopID != nil {
		shopID = *actor.ShopID
	}

	provider := shipping.ProviderCode(r.PathValue("provider"))

	if err := h.facade.TestConnection(r.Context(), shopID, provider); err != nil {
		httperr.WriteError(w, err)

		return
	}

	httperr.WriteData(w, http.StatusOK, map[string]bool{"reachable": true})
}

type addressBody struct {
	Name     string  `json:"name"`
	Phone    string  `json:"phone"`
	Street   string  `json:"street"`
	City     string  `json:"city"`
	District string  `json:"district"`
	Lat      float64 `json:"lat"`
	Lng      float64 `json:"lng"`
}

func (b addressBody) toAddress() (vo.Address, error) {
	loc, err := location.NewLocation(b.Lat, b.Lng)
	if err != nil {
		return vo.Address{}, domain.Wrap(domain.ErrValidation, "invalid coordinates", err)
	}

	addr, err := vo.NewAddress(b.Name, b.Phone, b.Street, b.City, b.District, loc)
	if err != nil {
		return vo.Address{}, domain.Wrap(domain.ErrValidation, "invalid address", err)
	}

	return addr, nil
}

type feeRequestBody struct {
	ShopID      uuid.UUID       `json:"shop_id"`
	Pickup      addressBody     `json:"pickup"`
	Delivery    addressBody     `json:"delivery"`
	WeightGrams int             `json:"weight_grams"`
	ValueVND    decimal.Decimal `json:"value_vnd"`
	CODAmount   decimal.Decimal `json:"cod_amount"`
}

// feeQuoteResponse is the wire shape of one provider's quote; failures ride
// alongside successes as a message, never as an HTTP error.
type feeQuoteResponse struct {
	Provider shipping.ProviderCode `json:"provider"`
	FeeVND   decimal.Decimal       `json:"fee_vnd"`
	Fallback bool                  `json:"fallback,omitempty"`
	Error    string                `json:"error,omitempty"`
}

func (h *ShippingHandlers) handleCalculateFees(w http.ResponseWriter, r *http.Request) {
	var body feeRequestBody

	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		httperr.WriteError(w, domain.Wrap(domain.ErrValidation, "malformed request body", err))

		return
	}

	pickup, err := body.Pickup.toAddress()
	if err != nil {
		httperr.WriteError(w, err)

		return
	}

	delivery, err := body.Delivery.toAddress()
	if err != nil {
		httperr.WriteError(w, err)

		return
	}

	quotes, err := h.facade.CalculateFee(r.Context(), shipping.FeeRequest{
		ShopID:    body.ShopID,
		Pickup:    pickup,
		Delivery:  delivery,
		Items:     shipping.Package{WeightGrams: body.WeightGrams, ValueVND: body.ValueVND},
		CODAmount: body.CODAmount,
	})
	if err != nil {
		httperr.WriteError(w, err)

		return
	}

	resp := make([]feeQuoteResponse, 0, len(quotes))

	for _, q := range quotes {
		out := feeQuoteResponse{Provider: q.ProviderCode, FeeVND: q.FeeVND, Fallback: q.Fallback}
		if q.Err != nil {
			out.Error = q.Err.Error()
		}

		resp = append(resp, out)
	}

	httperr.WriteData(w, http.StatusOK, resp)
}

// handleWebhook is the carrier -> Facade intake. Signature failure maps to
// 401 with no side effect, parse failure to 400, both via the
// domain error kinds the usecase returns.
func (h *ShippingHandlers) handleWebhook(w http.ResponseWriter, r *http.Request) {
	provider := shipping.ProviderCode(r.PathValue("provider"))

	shopID, err := uuid.Parse(r.URL.Query().Get("shop_id"))
	if err != nil {
		httperr.WriteError(w, domain.Wrap(domain.ErrValidation, "missing or malformed shop_id", err))

		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		httperr.WriteError(w, domain.Wrap(domain.ErrValidation, "unreadable webhook body", err))

		return
	}

	cmd := applywebhook.Command{
		ShopID:       shopID,
		ProviderCode: provider,
		Signature:    r.Header.Get("X-Signature"),
		Body:         body,
	}

	if err := h.webhook.Handle(r.Context(), cmd); err != nil {
		httperr.WriteError(w, err)

		return
	}

	httperr.WriteData(w, http.StatusOK, nil)
}

type createShipmentBody struct {
	SubOrderID  uuid.UUID             `json:"suborder_id"`
	Provider    shipping.ProviderCode `json:"provider"`
	Pickup      addressBody           `json:"pickup"`
	Delivery    addressBody           `json:"delivery"`
	WeightGrams int                   `json:"weight_grams"`
	ValueVND    decimal.Decimal       `json:"value_vnd"`
	CODAmount   decimal.Decimal       `json:"cod_amount"`
}

// handleCreateShipment books a Shipment for a ready_to_ship SubOrder:
// in-house shipments go to the Dispatcher, external ones through the
// carrier's createOrder.
func (h *ShippingHandlers) handleCreateShipment(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromRequest(r)
	if err != nil {
		httperr.WriteError(w, err)

		return
	}

	if actor.ShopID == nil && !actor.IsAdmin() {
		httperr.WriteError(w, domain.Wrap(domain.ErrForbidden, "partner role required", nil))

		return
	}

	var body createShipmentBody

	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		httperr.WriteError(w, domain.Wrap(domain.ErrValidation, "malformed request body", err))

		return
	}

	pickup, err := body.Pickup.toAddress()
	if err != nil {
		httperr.WriteError(w, err)

		return
	}

	delivery, err := body.Delivery.toAddress()
	if err != nil {
		httperr.WriteError(w, err)

		return
	}

	var shopID uuid.UUID
	if actor.ShopID != nil {
		shopID = *actor.ShopID
	}

	shipmentID, err := h.createShipment.Handle(r.Context(), create.Command{
		SubOrderID:   body.SubOrderID,
		ShopID:       shopID,
		ProviderCode: body.Provider,
		Pickup:       pickup,
		Delivery:     delivery,
		Package:      shipping.Package{WeightGrams: body.WeightGrams, ValueVND: body.ValueVND},
		CODAmount:    body.CODAmount,
	})
	if err != nil {
		httperr.WriteError(w, err)

		return
	}

	httperr.WriteData(w, http.StatusCreated, map[string]string{"shipment_id": shipmentID.String()})
}

// handleDispatchRetry is the admin fallback: re-run the
// Dispatcher for a shipment that previously found no eligible shipper.
func (h *ShippingHandlers) handleDispatchRetry(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromRequest(r)
	if err != nil {
		httperr.WriteError(w, err)

		return
	}

	if !actor.IsAdmin() {
		httperr.WriteError(w, domain.Wrap(domain.ErrForbidden, "admin role required", nil))

		return
	}

	id, err := pathUUID(r, "id")
	if err != nil {
		httperr.WriteError(w, err)

		return
	}

	if err := h.dispatchRetry.Handle(r.Context(), dispatchshipment.NewCommand(id)); err != nil {
		httperr.WriteError(w, err)

		return
	}

	httperr.WriteData(w, http.StatusOK, nil)
}
