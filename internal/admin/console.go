// Package admin backs the admin order console: dashboard figures, recent
// orders, status changes, spreadsheet export and the live order feed.
package admin

import (
	"context"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/MikeMC777/storefront/internal/order"
)

const RecentLimit = 10

// Stats are the dashboard figures.
// swagger:model AdminStats
type Stats struct {
	OrderCount    int             `json:"order_count"`
	RevenueSum    decimal.Decimal `json:"revenue_sum"`
	ProductCount  int             `json:"product_count"`
	CustomerCount int             `json:"customer_count"`
}

// Orders is the part of *order.Service the console drives.
type Orders interface {
	Count(ctx context.Context) (int, error)
	Revenue(ctx context.Context) (decimal.Decimal, error)
	Recent(ctx context.Context, limit, offset int) ([]order.Order, error)
	All(ctx context.Context) ([]order.Order, error)
	UpdateStatus(ctx context.Context, id string, status order.Status) (*order.Order, error)
}

type ProductCounter interface {
	CountProducts(ctx context.Context) (int, error)
}

type CustomerCounter interface {
	CountCustomers(ctx context.Context) (int, error)
}

type Console struct {
	orders    Orders
	products  ProductCounter
	customers CustomerCounter
}

func NewConsole(orders Orders, products ProductCounter, customers CustomerCounter) *Console {
	return &Console{orders: orders, products: products, customers: customers}
}

// LoadStats runs the four aggregate queries concurrently.
func (c *Console) LoadStats(ctx context.Context) (Stats, error) {
	var st Stats
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		st.OrderCount, err = c.orders.Count(ctx)
		return err
	})
	g.Go(func() (err error) {
		st.RevenueSum, err = c.orders.Revenue(ctx)
		return err
	})
	g.Go(func() (err error) {
		st.ProductCount, err = c.products.CountProducts(ctx)
		return err
	})
	g.Go(func() (err error) {
		st.CustomerCount, err = c.customers.CountCustomers(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return Stats{}, err
	}
	return st, nil
}

// RecentOrders lists the newest orders; limit <= 0 means RecentLimit.
func (c *Console) RecentOrders(ctx context.Context, limit, offset int) ([]order.Order, error) {
	if limit <= 0 {
		limit = RecentLimit
	}
	return c.orders.Recent(ctx, limit, offset)
}

func (c *Console) UpdateStatus(ctx context.Context, id string, status order.Status) (*order.Order, error) {
	return c.orders.UpdateStatus(ctx, id, status)
}
