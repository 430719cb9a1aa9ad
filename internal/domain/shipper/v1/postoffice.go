// Package v1 implements the in-house roster: PostOffice hubs/local offices
// and Shipper entities consumed by the Dispatcher. Plain entities,
// not event-sourced aggregates: the counters they carry are authoritative
// only once persisted under the atomic conditional increment described in
//, so the entity methods here validate shape, not concurrency.
package v1

import (
	"strings"

	"github.com/google/uuid"

	"github.com/shortlink-org/shop/oms/internal/domain"
	"github.com/shortlink-org/shop/oms/internal/domain/location"
)

// OfficeType distinguishes a leaf office from a regional transit hub.
type OfficeType string

const (
	OfficeLocal    OfficeType = "local"
	OfficeRegional OfficeType = "regional"
)

// PostOffice is a pickup/delivery/transit point in the in-house network.
type PostOffice struct {
	id             uuid.UUID
	code           string
	officeType     OfficeType
	city           string
	district       string
	region         location.Region
	loc            location.Location
	parentOfficeID *uuid.UUID
}

// NewPostOffice validates and builds a PostOffice.
func NewPostOffice(id uuid.UUID, code string, officeType OfficeType, city, district string, region location.Region, loc location.Location, parentOfficeID *uuid.UUID) (*PostOffice, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, domain.Wrap(domain.ErrValidation, "post office code cannot be empty", nil)
	}

	if officeType != OfficeLocal && officeType != OfficeRegional {
		return nil, domain.Wrap(domain.ErrValidation, "unknown post office type", nil)
	}

	return &PostOffice{
		id: id, code: code, officeType: officeType, city: city, district: district,
		region: region, loc: loc, parentOfficeID: parentOfficeID,
	}, nil
}

func (p *PostOffice) ID() uuid.UUID                 { return p.id }
func (p *PostOffice) Code() string                  { return p.code }
func (p *PostOffice) Type() OfficeType              { return p.officeType }
func (p *PostOffice) City() string                  { return p.city }
func (p *PostOffice) District() string              { return p.district }
func (p *PostOffice) Region() location.Region       { return p.region }
func (p *PostOffice) Location() location.Location   { return p.loc }
func (p *PostOffice) ParentOfficeID() *uuid.UUID    { return p.parentOfficeID }
func (p *PostOffice) IsHub() bool                   { return p.officeType == OfficeRegional }
