package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/shortlink-org/shop/oms/internal/domain"
	"github.com/shortlink-org/shop/oms/internal/domain/location"
	shipperv1 "github.com/shortlink-org/shop/oms/internal/domain/shipper/v1"
)

const postOfficeColumns = `id, code, office_type, city, district, region, lat, lng, parent_office_id`

// Load retrieves a post office by id.
func (s *Store) Load(ctx context.Context, id uuid.UUID) (*shipperv1.PostOffice, error) {
	row := s.querier(ctx).QueryRow(ctx, "SELECT "+postOfficeColumns+" FROM oms_post_offices WHERE id = $1", id)

	office, err := scanPostOffice(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.Wrap(domain.ErrNotFound, "post office", nil)
		}

		return nil, domain.MapInfraErr("load post office", err)
	}

	return office, nil
}

// NearestLocal returns the nearest `local` office to loc by Haversine
// distance. Administrative region plays no part in the choice: when two
// offices are equally near, which one is returned is not defined.
func (s *Store) NearestLocal(ctx context.Context, loc location.Location) (*shipperv1.PostOffice, error) {
	rows, err := s.querier(ctx).Query(ctx, "SELECT "+postOfficeColumns+" FROM oms_post_offices WHERE office_type = 'local'")
	if err != nil {
		return nil, domain.MapInfraErr("list local post offices", err)
	}
	defer rows.Close()

	var (
		best     *shipperv1.PostOffice
		bestDist float64
	)

	for rows.Next() {
		office, err := scanPostOffice(rows)
		if err != nil {
			return nil, domain.MapInfraErr("scan post office", err)
		}

		dist := loc.DistanceTo(office.Location())
		if best == nil || dist < bestDist {
			best, bestDist = office, dist
		}
	}

	if err := rows.Err(); err != nil {
		return nil, domain.MapInfraErr("iterate post offices", err)
	}

	if best == nil {
		return nil, domain.Wrap(domain.ErrNotFound, "no local post office found", nil)
	}

	return best, nil
}

// HubForRegion returns the `regional` hub office for region.
func (s *Store) HubForRegion(ctx context.Context, region location.Region) (*shipperv1.PostOffice, error) {
	row := s.querier(ctx).QueryRow(ctx, "SELECT "+postOfficeColumns+" FROM oms_post_offices WHERE office_type = 'regional' AND region = $1 LIMIT 1", string(region))

	office, err := scanPostOffice(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.Wrap(domain.ErrNotFound, "regional hub", nil)
		}

		return nil, domain.MapInfraErr("load regional hub", err)
	}

	return office, nil
}

// ListAll returns every post office, used by admin tooling and the daily
// reset worker.
func (s *Store) ListAll(ctx context.Context) ([]*shipperv1.PostOffice, error) {
	rows, err := s.querier(ctx).Query(ctx, "SELECT "+postOfficeColumns+" FROM oms_post_offices ORDER BY code")
	if err != nil {
		return nil, domain.MapInfraErr("list post offices", err)
	}
	defer rows.Close()

	var out []*shipperv1.PostOffice

	for rows.Next() {
		office, err := scanPostOffice(rows)
		if err != nil {
			return nil, domain.MapInfraErr("scan post office", err)
		}

		out = append(out, office)
	}

	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPostOffice(row rowScanner) (*shipperv1.PostOffice, error) {
	var (
		id             uuid.UUID
		code           string
		officeType     string
		city, district string
		region         string
		lat, lng       float64
		parentOfficeID *uuid.UUID
	)

	if err := row.Scan(&id, &code, &officeType, &city, &district, &region, &lat, &lng, &parentOfficeID); err != nil {
		return nil, err
	}

	loc, err := location.NewLocation(lat, lng)
	if err != nil {
		return nil, err
	}

	return shipperv1.NewPostOffice(id, code, shipperv1.OfficeType(officeType), city, district, location.Region(region), loc, parentOfficeID)
}
