package requestreturn

import (
	"time"

	"github.com/google/uuid"

	"github.com/shortlink-org/shop/oms/internal/domain"
)

// Command requests a return for a delivered SubOrder, before its return
// window closes.
type Command struct {
	SubOrderID  uuid.UUID
	Actor       domain.Actor
	OwnerUserID uuid.UUID
	Now         time.Time
}

// NewCommand creates a new RequestReturn command.
func NewCommand(subOrderID uuid.UUID, actor domain.Actor, ownerUserID uuid.UUID, now time.Time) Command {
	return Command{SubOrderID: subOrderID, Actor: actor, OwnerUserID: ownerUserID, Now: now}
}
