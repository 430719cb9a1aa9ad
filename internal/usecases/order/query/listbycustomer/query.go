package listbycustomer

import "github.com/google/uuid"

// Query represents a paginated query for a customer's Orders.
type Query struct {
	CustomerID uuid.UUID
	Limit      int
	Offset     int
}

// NewQuery creates a new ListByCustomer query.
func NewQuery(customerID uuid.UUID, limit, offset int) Query {
	return Query{CustomerID: customerID, Limit: limit, Offset: offset}
}
