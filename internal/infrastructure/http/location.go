package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/shortlink-org/go-sdk/logger"

	"github.com/shortlink-org/shop/oms/internal/domain"
	"github.com/shortlink-org/shop/oms/internal/domain/location"
	"github.com/shortlink-org/shop/oms/internal/domain/ports"
	"github.com/shortlink-org/shop/oms/internal/infrastructure/http/httperr"
	"github.com/shortlink-org/shop/oms/internal/infrastructure/push"
	"github.com/shortlink-org/shop/oms/internal/usecases/location/command/ingestsample"
)

// LocationHandlers serves the shipper GPS ingestion endpoint and the
// websocket subscription endpoints for live tracking.
type LocationHandlers struct {
	log    logger.Logger
	ingest ports.CommandHandler[ingestsample.Command]
	hub    *push.Hub
}

// NewLocationHandlers wires the location HTTP surface.
func NewLocationHandlers(log logger.Logger, ingest ports.CommandHandler[ingestsample.Command], hub *push.Hub) *LocationHandlers {
	return &LocationHandlers{log: log, ingest: ingest, hub: hub}
}

// Register mounts the location routes onto mux.
func (h *LocationHandlers) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /shipper/location", h.handleIngest)
	mux.HandleFunc("GET /ws/shipments/{id}", h.handleSubscribe)
	mux.HandleFunc("GET /ws/orders/{id}", h.handleSubscribe)
}

// sampleBody mirrors the GPS sample shape pushed at ~1 Hz.
type sampleBody struct {
	ShipperID  uuid.UUID  `json:"shipper_id"`
	ShipmentID *uuid.UUID `json:"shipment_id,omitempty"`
	Lat        float64    `json:"lat"`
	Lng        float64    `json:"lng"`
	Heading    float64    `json:"heading"`
	Speed      float64    `json:"speed"`
	Accuracy   float64    `json:"accuracy"`
	At         time.Time  `json:"at"`
}

func (h *LocationHandlers) handleIngest(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromRequest(r)
	if err != nil {
		httperr.WriteError(w, err)

		return
	}

	if actor.Role != domain.RoleShipper && !actor.IsAdmin() {
		httperr.WriteError(w, domain.Wrap(domain.ErrForbidden, "shipper role required", nil))

		return
	}

	var body sampleBody

	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		httperr.WriteError(w, domain.Wrap(domain.ErrValidation, "malformed request body", err))

		return
	}

	loc, err := location.NewLocation(body.Lat, body.Lng)
	if err != nil {
		httperr.WriteError(w, domain.Wrap(domain.ErrValidation, "invalid coordinates", err))

		return
	}

	if body.At.IsZero() {
		body.At = time.Now().UTC()
	}

	cmd := ingestsample.Command{
		ShipperID:  body.ShipperID,
		ShipmentID: body.ShipmentID,
		Loc:        loc,
		Heading:    body.Heading,
		SpeedKph:   body.Speed,
		AccuracyM:  body.Accuracy,
		At:         body.At,
	}

	if err := h.ingest.Handle(r.Context(), cmd); err != nil {
		httperr.WriteError(w, err)

		return
	}

	httperr.WriteData(w, http.StatusAccepted, nil)
}

// handleSubscribe upgrades to a websocket subscribed to the entity id in
// the path; interested parties receive shipper:location / shipment:status /
// order:status envelopes keyed by that id.
func (h *LocationHandlers) handleSubscribe(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		httperr.WriteError(w, err)

		return
	}

	if _, err := actorFromRequest(r); err != nil {
		httperr.WriteError(w, err)

		return
	}

	if err := h.hub.Subscribe(id.String(), w, r); err != nil {
		h.log.Warn("websocket upgrade failed", slog.Any("error", err))
	}
}
