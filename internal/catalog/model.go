package catalog

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/MikeMC777/storefront/internal/i18n"
)

type Category struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	NameAm       *string   `json:"name_am"`
	Slug         string    `json:"slug"`
	Description  *string   `json:"description,omitempty"`
	ImageURL     *string   `json:"image_url"`
	DisplayOrder int       `json:"display_order"`
	CreatedAt    time.Time `json:"created_at"`
}

type Product struct {
	ID            string  `json:"id"`
	CategoryID    *string `json:"category_id"`
	Name          string  `json:"name"`
	NameAm        *string `json:"name_am"`
	Slug          string  `json:"slug"`
	Description   *string `json:"description"`
	DescriptionAm *string `json:"description_am"`
	// NUMERIC in Postgres, read as text to avoid float rounding
	Price          decimal.Decimal     `json:"price"`
	CompareAtPrice decimal.NullDecimal `json:"compare_at_price"`
	Images         []string            `json:"images"`
	StockQuantity  int                 `json:"stock_quantity"`
	IsFeatured     bool                `json:"is_featured"`
	IsActive       bool                `json:"is_active"`
	CreatedAt      time.Time           `json:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at"`
}

// Discount is the whole-number percentage shown on a discount badge,
// zero when there is no compare-at price above the selling price.
func Discount(price decimal.Decimal, compareAt decimal.NullDecimal) int {
	if !compareAt.Valid || compareAt.Decimal.LessThanOrEqual(price) {
		return 0
	}
	pct := compareAt.Decimal.Sub(price).
		Div(compareAt.Decimal).
		Mul(decimal.NewFromInt(100)).
		Round(0)
	return int(pct.IntPart())
}

func (p Product) DisplayName(l i18n.Lang) string { return i18n.Localize(l, p.Name, p.NameAm) }

func (c Category) DisplayName(l i18n.Lang) string { return i18n.Localize(l, c.Name, c.NameAm) }

// ProductView is a product as rendered for one language.
// swagger:model ProductView
type ProductView struct {
	Product
	DisplayName        string `json:"display_name"`
	DisplayDescription string `json:"display_description,omitempty"`
	DiscountPercent    int    `json:"discount_percent"`
	InStock            bool   `json:"in_stock"`
}

func (p Product) View(l i18n.Lang) ProductView {
	desc := ""
	if p.Description != nil {
		desc = i18n.Localize(l, *p.Description, p.DescriptionAm)
	}
	return ProductView{
		Product:            p,
		DisplayName:        p.DisplayName(l),
		DisplayDescription: desc,
		DiscountPercent:    Discount(p.Price, p.CompareAtPrice),
		InStock:            p.StockQuantity > 0,
	}
}

// CategoryView is a category as rendered for one language.
// swagger:model CategoryView
type CategoryView struct {
	Category
	DisplayName string `json:"display_name"`
}

func (c Category) View(l i18n.Lang) CategoryView {
	return CategoryView{Category: c, DisplayName: c.DisplayName(l)}
}
