// Package activities holds the Temporal activities behind the daily
// leg-counter reset. Activities are the bridge between
// Temporal workflows and application state; the workflow itself never
// touches repositories directly.
package activities

import (
	"context"

	"github.com/google/uuid"

	"github.com/shortlink-org/shop/oms/internal/domain/location"
	"github.com/shortlink-org/shop/oms/internal/domain/ports"
)

// Activities wraps the post-office roster and the capacity gate for the
// reset workflow.
type Activities struct {
	postOffices ports.PostOfficeRepository
	gate        ports.CapacityGate
}

// New creates a new Activities instance.
func New(postOffices ports.PostOfficeRepository, gate ports.CapacityGate) *Activities {
	return &Activities{postOffices: postOffices, gate: gate}
}

// OfficeDTO is the workflow-visible slice of a PostOffice.
type OfficeDTO struct {
	ID     uuid.UUID
	Code   string
	Region location.Region
}

// ListOfficesRequest filters the roster by region; an empty region returns
// every office.
type ListOfficesRequest struct {
	Region location.Region
}

// ListOffices returns the offices whose shippers the workflow will reset.
func (a *Activities) ListOffices(ctx context.Context, req ListOfficesRequest) ([]OfficeDTO, error) {
	offices, err := a.postOffices.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]OfficeDTO, 0, len(offices))

	for _, office := range offices {
		if req.Region != "" && office.Region() != req.Region {
			continue
		}

		out = append(out, OfficeDTO{ID: office.ID(), Code: office.Code(), Region: office.Region()})
	}

	return out, nil
}

// ResetOfficeRequest identifies one office to reset.
type ResetOfficeRequest struct {
	PostOfficeID uuid.UUID
	OfficeCode   string
}

// ResetOffice zeroes both leg counters for every shipper at the office.
// Idempotent: re-running after a partial failure re-applies a no-op UPDATE,
// and Temporal's event history is the journal that makes the retry safe.
func (a *Activities) ResetOffice(ctx context.Context, req ResetOfficeRequest) error {
	return a.gate.ResetDaily(ctx, req.PostOfficeID)
}
