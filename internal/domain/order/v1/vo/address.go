// Package vo holds value objects shared by the order/sub-order aggregates:
// an address snapshot with contact fields (name/phone), frozen at checkout
// so later catalog or profile edits do not rewrite history.
package vo

import (
	"errors"
	"strings"

	"github.com/shortlink-org/shop/oms/internal/domain/location"
)

var (
	ErrAddressNameEmpty   = errors.New("contact name cannot be empty")
	ErrAddressPhoneEmpty  = errors.New("contact phone cannot be empty")
	ErrAddressStreetEmpty = errors.New("address street cannot be empty")
	ErrAddressCityEmpty   = errors.New("address city cannot be empty")
)

// Address is an immutable shipping/pickup/delivery address snapshot with an
// optional GPS location used by the Dispatcher to resolve the nearest post
// office.
type Address struct {
	name     string
	phone    string
	street   string
	city     string
	district string
	loc      location.Location
}

// NewAddress validates and builds an Address.
func NewAddress(name, phone, street, city, district string, loc location.Location) (Address, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Address{}, ErrAddressNameEmpty
	}

	phone = strings.TrimSpace(phone)
	if phone == "" {
		return Address{}, ErrAddressPhoneEmpty
	}

	street = strings.TrimSpace(street)
	if street == "" {
		return Address{}, ErrAddressStreetEmpty
	}

	city = strings.TrimSpace(city)
	if city == "" {
		return Address{}, ErrAddressCityEmpty
	}

	return Address{
		name:     name,
		phone:    phone,
		street:   street,
		city:     city,
		district: strings.TrimSpace(district),
		loc:      loc,
	}, nil
}

func (a Address) Name() string               { return a.name }
func (a Address) Phone() string              { return a.phone }
func (a Address) Street() string             { return a.street }
func (a Address) City() string               { return a.city }
func (a Address) District() string           { return a.district }
func (a Address) Location() location.Location { return a.loc }

// CityDistrict returns the dimension used by feeCacheKey to distinguish
// pickup/delivery locality without needing full geocoding precision.
func (a Address) CityDistrict() string {
	return a.city + "-" + a.district
}
