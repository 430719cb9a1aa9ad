package ingestsample

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/shortlink-org/go-sdk/logger"

	"github.com/shortlink-org/shop/oms/internal/domain"
	"github.com/shortlink-org/shop/oms/internal/domain/location"
	"github.com/shortlink-org/shop/oms/internal/domain/ports"
)

const (
	lastLocationTTL  = 30 * time.Second
	ringBufferLength = 100

	// Samples arrive at ~1 Hz; anything far beyond that within a minute is
	// a misbehaving client and gets rate limited.
	rateLimitWindow     = time.Minute
	rateLimitMaxSamples = 120
)

// Handler ingests one GPS sample: updates the shipper's heartbeat in
// Postgres, caches the last-known location for 30s, broadcasts it over the
// Push Channel, and keeps a small in-memory trace ring buffer per shipper.
// The ring buffer is intentionally not durable; only the heartbeat and
// the cached last-known location survive the request.
type Handler struct {
	log         logger.Logger
	uow         ports.UnitOfWork
	shipperRepo ports.ShipperRepository
	cache       ports.Cache
	push        ports.PushChannel

	mu      sync.Mutex
	buffers map[uuid.UUID]*location.RingBuffer
}

// NewHandler creates a new IngestSample handler.
func NewHandler(log logger.Logger, uow ports.UnitOfWork, shipperRepo ports.ShipperRepository, cache ports.Cache, push ports.PushChannel) (*Handler, error) {
	return &Handler{log: log, uow: uow, shipperRepo: shipperRepo, cache: cache, push: push, buffers: make(map[uuid.UUID]*location.RingBuffer)}, nil
}

func (h *Handler) Handle(ctx context.Context, cmd Command) error {
	if count, err := h.cache.Incr(ctx, rateLimitKey(cmd.ShipperID), rateLimitWindow); err == nil && count > rateLimitMaxSamples {
		return domain.Wrap(domain.ErrRateLimited, "location sample rate exceeded", nil)
	}

	sample := location.Sample{
		ShipperID: cmd.ShipperID, ShipmentID: cmd.ShipmentID, Loc: cmd.Loc,
		Heading: cmd.Heading, SpeedKph: cmd.SpeedKph, AccuracyM: cmd.AccuracyM, At: cmd.At,
	}

	h.bufferFor(cmd.ShipperID).Push(sample)

	if raw, err := json.Marshal(sample); err == nil {
		if err := h.cache.Set(ctx, lastLocationKey(cmd.ShipperID), raw, lastLocationTTL); err != nil {
			h.log.Warn("failed to cache last-known location", slog.Any("error", err))
		}
	}

	if cmd.ShipmentID != nil {
		h.push.Broadcast(ctx, cmd.ShipmentID.String(), ports.PushEnvelope{Event: "shipper:location", Payload: sample})
	}

	return h.updateHeartbeat(ctx, cmd)
}

func (h *Handler) updateHeartbeat(ctx context.Context, cmd Command) error {
	ctx, err := h.uow.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err := h.uow.Rollback(ctx); err != nil {
			h.log.Warn("transaction rollback failed", slog.Any("error", err))
		}
	}()

	shipper, err := h.shipperRepo.Load(ctx, cmd.ShipperID)
	if err != nil {
		return err
	}

	shipper.UpdateHeartbeat(cmd.Loc, cmd.At.Unix())

	if err := h.shipperRepo.Save(ctx, shipper); err != nil {
		return err
	}

	if err := h.uow.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

func (h *Handler) bufferFor(shipperID uuid.UUID) *location.RingBuffer {
	h.mu.Lock()
	defer h.mu.Unlock()

	buf, ok := h.buffers[shipperID]
	if !ok {
		buf = location.NewRingBuffer(ringBufferLength)
		h.buffers[shipperID] = buf
	}

	return buf
}

func lastLocationKey(shipperID uuid.UUID) string {
	return "shipper:location:" + shipperID.String()
}

func rateLimitKey(shipperID uuid.UUID) string {
	return "ratelimit:location:" + shipperID.String()
}
