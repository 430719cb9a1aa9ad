package domain

import "github.com/google/uuid"

// Role identifies who is calling a transition operation. Every mutating
// operation on Order/SubOrder/Shipment takes an Actor so it can enforce
// ownership without depending on an authentication layer (AuthPort is a
// named external collaborator; the core only ever receives the already
// authenticated (userId, role, shopId?) tuple).
type Role string

const (
	RoleCustomer Role = "customer"
	RolePartner  Role = "partner"
	RoleShipper  Role = "shipper"
	RoleAdmin    Role = "admin"
	RoleSystem   Role = "system"
)

// Actor is the caller identity threaded through usecase -> domain calls.
type Actor struct {
	ID     uuid.UUID
	Role   Role
	ShopID *uuid.UUID
}

// SystemActor represents the process itself (payment webhooks, schedulers,
// event consumers) acting without a human behind it.
var SystemActor = Actor{Role: RoleSystem}

// IsAdmin reports whether the actor can bypass ownership checks.
func (a Actor) IsAdmin() bool { return a.Role == RoleAdmin || a.Role == RoleSystem }

// OwnsUser reports whether the actor is the given user or an admin/system actor.
func (a Actor) OwnsUser(userID uuid.UUID) bool {
	return a.IsAdmin() || (a.Role == RoleCustomer && a.ID == userID)
}

// OwnsShop reports whether the actor is a partner acting for the given shop.
func (a Actor) OwnsShop(shopID uuid.UUID) bool {
	return a.IsAdmin() || (a.Role == RolePartner && a.ShopID != nil && *a.ShopID == shopID)
}

// IsShipper reports whether the actor is the given shipper (by user id) or an admin/system actor.
func (a Actor) IsShipper(shipperUserID uuid.UUID) bool {
	return a.IsAdmin() || (a.Role == RoleShipper && a.ID == shipperUserID)
}
