package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/shortlink-org/go-sdk/logger"

	"github.com/shortlink-org/shop/oms/internal/domain"
	"github.com/shortlink-org/shop/oms/internal/domain/ports"
	"github.com/shortlink-org/shop/oms/internal/infrastructure/http/httperr"
	"github.com/shortlink-org/shop/oms/internal/usecases/suborder/command/approvereturn"
	"github.com/shortlink-org/shop/oms/internal/usecases/suborder/command/cancelbypartner"
	"github.com/shortlink-org/shop/oms/internal/usecases/suborder/command/confirm"
	"github.com/shortlink-org/shop/oms/internal/usecases/suborder/command/confirmreceipt"
	"github.com/shortlink-org/shop/oms/internal/usecases/suborder/command/markreadytoship"
	"github.com/shortlink-org/shop/oms/internal/usecases/suborder/command/process"
	"github.com/shortlink-org/shop/oms/internal/usecases/suborder/command/refund"
	"github.com/shortlink-org/shop/oms/internal/usecases/suborder/command/requestreturn"
)

// SubOrderHandlers serves the partner fulfillment surface
// (confirm/pack/ready/cancel) and the customer receipt/return surface
type SubOrderHandlers struct {
	log            logger.Logger
	confirm        ports.CommandHandler[confirm.Command]
	process        ports.CommandHandler[process.Command]
	readyToShip    ports.CommandHandler[markreadytoship.Command]
	cancelPartner  ports.CommandHandler[cancelbypartner.Command]
	confirmReceipt ports.CommandHandler[confirmreceipt.Command]
	requestReturn  ports.CommandHandler[requestreturn.Command]
	approveReturn  ports.CommandHandler[approvereturn.Command]
	refund         ports.CommandHandler[refund.Command]
}

// NewSubOrderHandlers wires the sub-order HTTP surface.
func NewSubOrderHandlers(
	log logger.Logger,
	confirmHandler ports.CommandHandler[confirm.Command],
	processHandler ports.CommandHandler[process.Command],
	readyToShip ports.CommandHandler[markreadytoship.Command],
	cancelPartner ports.CommandHandler[cancelbypartner.Command],
	confirmReceipt ports.CommandHandler[confirmreceipt.Command],
	requestReturn ports.CommandHandler[requestreturn.Command],
	approveReturn ports.CommandHandler[approvereturn.Command],
	refundHandler ports.CommandHandler[refund.Command],
) *SubOrderHandlers {
	return &SubOrderHandlers{
		log: log, confirm: confirmHandler, process: processHandler, readyToShip: readyToShip,
		cancelPartner: cancelPartner, confirmReceipt: confirmReceipt,
		requestReturn: requestReturn, approveReturn: approveReturn, refund: refundHandler,
	}
}

// Register mounts the sub-order routes onto mux.
func (h *SubOrderHandlers) Register(mux *http.ServeMux) {
	mux.HandleFunc("PATCH /partner/suborders/{id}/confirm", h.handlePartner(func(cmd partnerCmd) error {
		return h.confirm.Handle(cmd.ctx, confirm.NewCommand(cmd.id, cmd.actor))
	}))
	mux.HandleFunc("PATCH /partner/suborders/{id}/pack", h.handlePartner(func(cmd partnerCmd) error {
		return h.process.Handle(cmd.ctx, process.NewCommand(cmd.id, cmd.actor))
	}))
	mux.HandleFunc("PATCH /partner/suborders/{id}/ready", h.handlePartner(func(cmd partnerCmd) error {
		return h.readyToShip.Handle(cmd.ctx, markreadytoship.NewCommand(cmd.id, cmd.actor))
	}))
	mux.HandleFunc("PATCH /partner/suborders/{id}/cancel", h.handlePartner(func(cmd partnerCmd) error {
		return h.cancelPartner.Handle(cmd.ctx, cancelbypartner.NewCommand(cmd.id, cmd.actor))
	}))
	mux.HandleFunc("PATCH /partner/suborders/{id}/return", h.handleApproveReturn)
	mux.HandleFunc("PATCH /admin/suborders/{id}/refund", h.handleRefund)

	mux.HandleFunc("POST /suborders/{id}/receipt", h.handleConfirmReceipt)
	mux.HandleFunc("POST /suborders/{id}/return", h.handleRequestReturn)
}

type partnerCmd struct {
	ctx   context.Context
	id    uuid.UUID
	actor domain.Actor
}

func (h *SubOrderHandlers) handlePartner(apply func(cmd partnerCmd) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
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

		if err := apply(partnerCmd{ctx: r.Context(), id: id, actor: actor}); err != nil {
			httperr.WriteError(w, err)

			return
		}

		httperr.WriteData(w, http.StatusOK, nil)
	}
}

func (h *SubOrderHandlers) handleConfirmReceipt(w http.ResponseWriter, r *http.Request) {
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

	if err := h.confirmReceipt.Handle(r.Context(), confirmreceipt.NewCommand(id, actor, actor.ID)); err != nil {
		httperr.WriteError(w, err)

		return
	}

	httperr.WriteData(w, http.StatusOK, nil)
}

func (h *SubOrderHandlers) handleRequestReturn(w http.ResponseWriter, r *http.Request) {
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

	cmd := requestreturn.NewCommand(id, actor, actor.ID, time.Now().UTC())
	if err := h.requestReturn.Handle(r.Context(), cmd); err != nil {
		httperr.WriteError(w, err)

		return
	}

	httperr.WriteData(w, http.StatusOK, nil)
}

func (h *SubOrderHandlers) handleApproveReturn(w http.ResponseWriter, r *http.Request) {
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

	var body struct {
		Approve bool `json:"approve"`
	}

	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		httperr.WriteError(w, domain.Wrap(domain.ErrValidation, "malformed request body", err))

		return
	}

	if err := h.approveReturn.Handle(r.Context(), approvereturn.NewCommand(id, actor, body.Approve)); err != nil {
		httperr.WriteError(w, err)

		return
	}

	httperr.WriteData(w, http.StatusOK, nil)
}

// handleRefund records that the refund for a returned SubOrder has been
// issued (returned -> refunded).
func (h *SubOrderHandlers) handleRefund(w http.ResponseWriter, r *http.Request) {
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

	if err := h.refund.Handle(r.Context(), refund.NewCommand(id, actor)); err != nil {
		httperr.WriteError(w, err)

		return
	}

	httperr.WriteData(w, http.StatusOK, nil)
}
