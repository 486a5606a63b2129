package cart

import (
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// ProductRef is the slice of the product row a cart line is rendered with.
type ProductRef struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	NameAm        *string         `json:"name_am"`
	Slug          string          `json:"slug"`
	Price         decimal.Decimal `json:"price"`
	Images        []string        `json:"images"`
	StockQuantity int             `json:"stock_quantity"`
	IsActive      bool            `json:"-"`
}

type Item struct {
	ID        string     `json:"id"`
	UserID    string     `json:"user_id"`
	ProductID string     `json:"product_id"`
	Quantity  int        `json:"quantity"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	Product   ProductRef `json:"product"`
}

func (i Item) Subtotal() decimal.Decimal {
	return i.Product.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Snapshot is the cart as last read from the database.
// swagger:model CartSnapshot
type Snapshot struct {
	Items       []Item          `json:"items"`
	TotalItems  int             `json:"total_items"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

func NewSnapshot(items []Item) Snapshot {
	if items == nil {
		items = []Item{}
	}
	return Snapshot{
		Items:       items,
		TotalItems:  lo.SumBy(items, func(i Item) int { return i.Quantity }),
		TotalAmount: decimal.Sum(decimal.Zero, lo.Map(items, func(i Item, _ int) decimal.Decimal { return i.Subtotal() })...),
	}
}

func (s Snapshot) Empty() bool { return len(s.Items) == 0 }

// AddItemRequest payload of adding a product to the cart.
// swagger:model AddItemRequest
type AddItemRequest struct {
	ProductID string `json:"product_id" binding:"required,uuid" example:"4e7d4e5c-5cb9-4a3f-9f21-7e1a4f9f2b2a"`
	Quantity  int    `json:"quantity"   binding:"omitempty,min=1" example:"1"`
}

// SetQuantityRequest payload of changing a line; zero or less removes it.
// swagger:model SetQuantityRequest
type SetQuantityRequest struct {
	Quantity int `json:"quantity" example:"2"`
}
