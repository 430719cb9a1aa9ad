package v1

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Item is an OrderItem: a snapshotted product/variant line, deliberately
// decoupled from the live catalog so catalog edits never rewrite history
// (data model).
type Item struct {
	ID         uuid.UUID
	ProductID  uuid.UUID
	Name       string
	SKU        string
	UnitPrice  decimal.Decimal
	Quantity   int
	TotalPrice decimal.Decimal
	ImageURL   string
}
