package order

import (
	"context"

	"github.com/MikeMC777/storefront/internal/cart"
)

// UserValidator confirms that an account exists. It is served locally by
// *identity.Service or remotely by *identity.Client over gRPC.
type UserValidator interface {
	ValidateUser(ctx context.Context, id string) (bool, error)
}

// CartReader gives the checkout its pre-transaction view of the cart.
type CartReader interface {
	Snapshot(ctx context.Context, userID string) (cart.Snapshot, error)
}

// Publisher is told about every newly placed order.
type Publisher interface {
	Publish(o Order)
}

type PublisherFunc func(o Order)

func (f PublisherFunc) Publish(o Order) { f(o) }

type discard struct{}

func (discard) Publish(Order) {}
