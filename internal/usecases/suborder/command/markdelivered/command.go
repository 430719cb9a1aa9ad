package markdelivered

import (
	"time"

	"github.com/google/uuid"

	"github.com/shortlink-org/shop/oms/internal/domain"
)

// Command moves a shipping SubOrder to delivered, opening the return window.
type Command struct {
	SubOrderID  uuid.UUID
	Actor       domain.Actor
	DeliveredAt time.Time
}

// NewCommand creates a new MarkDelivered command.
func NewCommand(subOrderID uuid.UUID, actor domain.Actor, deliveredAt time.Time) Command {
	return Command{SubOrderID: subOrderID, Actor: actor, DeliveredAt: deliveredAt}
}
