package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/shortlink-org/shop/oms/internal/domain/location"
	shipperv1 "github.com/shortlink-org/shop/oms/internal/domain/shipper/v1"
)

// ShipperRepository persists Shipper entities and exposes the
// candidate-roster query the Dispatcher ranks over.
type ShipperRepository interface {
	Load(ctx context.Context, id uuid.UUID) (*shipperv1.Shipper, error)
	Save(ctx context.Context, s *shipperv1.Shipper) error
	// CandidatesForOffice returns shippers assigned to postOfficeID that pass
	// the non-counter half of the eligibility filter (active, online,
	// available); capacity is checked by CapacityGate.TryIncrement at
	// assignment time.
	CandidatesForOffice(ctx context.Context, postOfficeID uuid.UUID) ([]*shipperv1.Shipper, error)
	// ListByOffice returns every shipper at postOfficeID, eligible or not.
	ListByOffice(ctx context.Context, postOfficeID uuid.UUID) ([]*shipperv1.Shipper, error)
}

// PostOfficeRepository persists PostOffice entities and answers the
// nearest-office resolution queries.
type PostOfficeRepository interface {
	Load(ctx context.Context, id uuid.UUID) (*shipperv1.PostOffice, error)
	// NearestLocal returns the nearest `local` office to loc by Haversine
	// distance. Administrative region is not used to break ties between
	// equally near offices.
	NearestLocal(ctx context.Context, loc location.Location) (*shipperv1.PostOffice, error)
	// HubForRegion returns the `regional` hub office for a region.
	HubForRegion(ctx context.Context, region location.Region) (*shipperv1.PostOffice, error)
	ListAll(ctx context.Context) ([]*shipperv1.PostOffice, error)
}
