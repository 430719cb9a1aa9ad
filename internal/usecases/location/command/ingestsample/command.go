package ingestsample

import (
	"time"

	"github.com/google/uuid"

	"github.com/shortlink-org/shop/oms/internal/domain/location"
)

// Command carries one GPS fix pushed by a shipper's app at ~1 Hz.
type Command struct {
	ShipperID  uuid.UUID
	ShipmentID *uuid.UUID
	Loc        location.Location
	Heading    float64
	SpeedKph   float64
	AccuracyM  float64
	At         time.Time
}
