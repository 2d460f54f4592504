package orders

import (
	"context"

	"order-mesh/internal/catalog"
)

// Store is the persistence collaborator. FindByID returns ErrOrderNotFound
// for a missing order; read-your-writes within one process is assumed.
type Store interface {
	Save(ctx context.Context, o *Order) error
	FindByID(ctx context.Context, id string) (*Order, error)
	FindByCustomerEmail(ctx context.Context, email string) ([]*Order, error)
}

// Publisher hands an event to the bus. It returns only after the bus has
// acknowledged receipt; it performs no retry and no buffering.
type Publisher interface {
	Publish(ctx context.Context, topic string, env Envelope) error
}

// Catalog is the remote product peer as the orchestration sees it.
// Implemented by catalog.Client; faked in tests.
type Catalog interface {
	GetProduct(ctx context.Context, id string) (catalog.Product, error)
	SetStock(ctx context.Context, id string, stock int) error
}
