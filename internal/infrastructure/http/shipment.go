package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/shortlink-org/go-sdk/logger"

	"github.com/shortlink-org/shop/oms/internal/domain"
	"github.com/shortlink-org/shop/oms/internal/domain/ports"
	"github.com/shortlink-org/shop/oms/internal/domain/shipping"
	"github.com/shortlink-org/shop/oms/internal/infrastructure/http/httperr"
	shipmentcancel "github.com/shortlink-org/shop/oms/internal/usecases/shipment/command/cancel"
	"github.com/shortlink-org/shop/oms/internal/usecases/shipment/command/collectcod"
	"github.com/shortlink-org/shop/oms/internal/usecases/shipment/command/markdelivered"
	"github.com/shortlink-org/shop/oms/internal/usecases/shipment/command/markfailed"
	"github.com/shortlink-org/shop/oms/internal/usecases/shipment/command/markpickedup"
	"github.com/shortlink-org/shop/oms/internal/usecases/shipment/query/gettracking"
)

// ShipmentHandlers serves the shipper action surface
// (pickup/deliver/fail/cod) and the tracking read
type ShipmentHandlers struct {
	log         logger.Logger
	pickedUp    ports.CommandHandler[markpickedup.Command]
	delivered   ports.CommandHandler[markdelivered.Command]
	failed      ports.CommandHandler[markfailed.Command]
	collectCOD  ports.CommandHandler[collectcod.Command]
	cancel      ports.CommandHandler[shipmentcancel.Command]
	getTracking ports.QueryHandler[gettracking.Query, shipping.TrackingResult]
}

// NewShipmentHandlers wires the shipment HTTP surface.
func NewShipmentHandlers(
	log logger.Logger,
	pickedUp ports.CommandHandler[markpickedup.Command],
	delivered ports.CommandHandler[markdelivered.Command],
	failed ports.CommandHandler[markfailed.Command],
	collectCOD ports.CommandHandler[collectcod.Command],
	cancel ports.CommandHandler[shipmentcancel.Command],
	getTracking ports.QueryHandler[gettracking.Query, shipping.TrackingResult],
) *ShipmentHandlers {
	return &ShipmentHandlers{
		log: log, pickedUp: pickedUp, delivered: delivered, failed: failed,
		collectCOD: collectCOD, cancel: cancel, getTracking: getTracking,
	}
}

// Register mounts the shipment routes onto mux.
func (h *ShipmentHandlers) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /shipper/shipments/{id}/pickup", h.handlePickup)
	mux.HandleFunc("POST /shipper/shipments/{id}/deliver", h.handleDeliver)
	mux.HandleFunc("POST /shipper/shipments/{id}/fail", h.handleFail)
	mux.HandleFunc("POST /shipper/shipments/{id}/cod", h.handleCollectCOD)
	mux.HandleFunc("POST /partner/shipments/{id}/cancel", h.handleCancel)
	mux.HandleFunc("GET /shipments/{id}/tracking", h.handleGetTracking)
}

// shipperActionBody is the optional free-text note shippers attach to a
// pickup/deliver/fail action (proof notes, failure reasons).
type shipperActionBody struct {
	Message string `json:"message"`
}

func shipperAction(w http.ResponseWriter, r *http.Request) (id uuid.UUID, msg string, ok bool) {
	id, err := pathUUID(r, "id")
	if err != nil {
		httperr.WriteError(w, err)

		return id, "", false
	}

	actor, err := actorFromRequest(r)
	if err != nil {
		httperr.WriteError(w, err)

		return id, "", false
	}

	if actor.Role != domain.RoleShipper && !actor.IsAdmin() {
		httperr.WriteError(w, domain.Wrap(domain.ErrForbidden, "shipper role required", nil))

		return id, "", false
	}

	var body shipperActionBody
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&body)
	}

	return id, body.Message, true
}

func (h *ShipmentHandlers) handlePickup(w http.ResponseWriter, r *http.Request) {
	id, msg, ok := shipperAction(w, r)
	if !ok {
		return
	}

	cmd := markpickedup.Command{ShipmentID: id, Message: msg, At: time.Now().UTC()}
	if err := h.pickedUp.Handle(r.Context(), cmd); err != nil {
		httperr.WriteError(w, err)

		return
	}

	httperr.WriteData(w, http.StatusOK, nil)
}

func (h *ShipmentHandlers) handleDeliver(w http.ResponseWriter, r *http.Request) {
	id, msg, ok := shipperAction(w, r)
	if !ok {
		return
	}

	cmd := markdelivered.Command{ShipmentID: id, Message: msg, At: time.Now().UTC()}
	if err := h.delivered.Handle(r.Context(), cmd); err != nil {
		httperr.WriteError(w, err)

		return
	}

	httperr.WriteData(w, http.StatusOK, nil)
}

func (h *ShipmentHandlers) handleFail(w http.ResponseWriter, r *http.Request) {
	id, msg, ok := shipperAction(w, r)
	if !ok {
		return
	}

	cmd := markfailed.Command{ShipmentID: id, Reason: msg, At: time.Now().UTC()}
	if err := h.failed.Handle(r.Context(), cmd); err != nil {
		httperr.WriteError(w, err)

		return
	}

	httperr.WriteData(w, http.StatusOK, nil)
}

func (h *ShipmentHandlers) handleCollectCOD(w http.ResponseWriter, r *http.Request) {
	id, _, ok := shipperAction(w, r)
	if !ok {
		return
	}

	if err := h.collectCOD.Handle(r.Context(), collectcod.Command{ShipmentID: id}); err != nil {
		httperr.WriteError(w, err)

		return
	}

	httperr.WriteData(w, http.StatusOK, nil)
}

// trackingResponse is the wire shape of a tracking read; the facade's
// TrackingResult carries a Go error which does not marshal on its own.
type trackingResponse struct {
	Status         shipping.UnifiedStatus `json:"status"`
	ProviderStatus string                 `json:"provider_status,omitempty"`
	Stale          bool                   `json:"stale,omitempty"`
	Error          string                 `json:"error,omitempty"`
	At             time.Time              `json:"at,omitempty"`
}

func (h *ShipmentHandlers) handleGetTracking(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		httperr.WriteError(w, err)

		return
	}

	result, err := h.getTracking.Handle(r.Context(), gettracking.Query{ShipmentID: id})
	if err != nil {
		httperr.WriteError(w, err)

		return
	}

	resp := trackingResponse{
		Status:         result.Status,
		ProviderStatus: result.ProviderStatus,
		Stale:          result.Stale,
		At:             result.At,
	}
	if result.Err != nil {
		resp.Error = result.Err.Error()
	}

	httperr.WriteData(w, http.StatusOK, resp)
}

// handleCancel cancels a non-terminal shipment; for an external carrier the
// booking is cancelled through the Facade first.
func (h *ShipmentHandlers) handleCancel(w http.ResponseWriter, r *http.Request) {
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

	if actor.ShopID == nil && !actor.IsAdmin() {
		httperr.WriteError(w, domain.Wrap(domain.ErrForbidden, "partner role required", nil))

		return
	}

	var body shipperActionBody
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&body)
	}

	var shopID uuid.UUID
	if actor.ShopID != nil {
		shopID = *actor.ShopID
	}

	cmd := shipmentcancel.Command{ShipmentID: id, ShopID: shopID, Reason: body.Message, At: time.Now().UTC()}
	if err := h.cancel.Handle(r.Context(), cmd); err != nil {
		httperr.WriteError(w, err)

		return
	}

	httperr.WriteData(w, http.StatusOK, nil)
}
