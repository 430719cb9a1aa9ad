package ports

import "context"

// CommandHandler handles commands that mutate state and return no result.
// C = Command type. Grounded on the base module's cart/order command
// handler shape (usecases/order/command/cancel/handler.go): Load -> domain
// method -> Save -> publish, wrapped by middleware.LoggingCommandMiddleware.
type CommandHandler[C any] interface {
	Handle(ctx context.Context, cmd C) error
}

// CommandHandlerWithResult handles commands that return a result alongside
// a possible error (e.g. shipment creation returns the new shipment id).
type CommandHandlerWithResult[C any, R any] interface {
	Handle(ctx context.Context, cmd C) (R, error)
}

// QueryHandler handles read-only queries. Q = Query type, R = Result type.
type QueryHandler[Q any, R any] interface {
	Handle(ctx context.Context, q Q) (R, error)
}

// EventHandler handles domain events (reactions to facts already committed).
type EventHandler[E any] interface {
	Handle(ctx context.Context, event E) error
}
