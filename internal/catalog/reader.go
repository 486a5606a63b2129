package catalog

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/shopspring/decimal"
	"golang.org/x/text/collate"

	"github.com/MikeMC777/storefront/internal/apperr"
	"github.com/MikeMC777/storefront/internal/cache"
	"github.com/MikeMC777/storefront/internal/i18n"
)

type Sort string

// SortName orders by the display name in the requested language and is the
// default.
const (
	SortName      Sort = "name"
	SortNewest    Sort = "newest"
	SortPriceAsc  Sort = "price_asc"
	SortPriceDesc Sort = "price_desc"
)

const (
	DefaultFeaturedLimit = 8
	maxPageSize          = 100

	keyCategories = "catalog:categories"
	keyFeatured   = "catalog:featured:"
	keyProduct    = "catalog:product:"
)

// Filter describes a shop listing. Category is a category slug.
type Filter struct {
	Category string
	Featured bool
	Search   string
	Lang     i18n.Lang
	MinPrice mo.Option[decimal.Decimal]
	MaxPrice mo.Option[decimal.Decimal]
	Sort     Sort
	Limit    int
	Offset   int
}

func (f Filter) validate() error {
	switch f.Sort {
	case "", SortName, SortNewest, SortPriceAsc, SortPriceDesc:
	default:
		return apperr.Errorf(apperr.KindValidation, apperr.CodeInvalidInput, "unknown sort %q", f.Sort)
	}
	lower, hasLower := f.MinPrice.Get()
	upper, hasUpper := f.MaxPrice.Get()
	if hasLower && lower.IsNegative() || hasUpper && upper.IsNegative() {
		return apperr.Validation(apperr.CodeInvalidInput, "negative price bound")
	}
	if hasLower && hasUpper && lower.GreaterThan(upper) {
		return apperr.Validation(apperr.CodeInvalidInput, "min_price above max_price")
	}
	if f.Limit < 0 || f.Offset < 0 {
		return apperr.Validation(apperr.CodeInvalidInput, "negative limit or offset")
	}
	return nil
}

// Reader serves catalog reads, caching the slow-changing lists.
type Reader struct {
	repo  Repository
	cache *cache.Cache
}

func NewReader(repo Repository, c *cache.Cache) *Reader {
	return &Reader{repo: repo, cache: c}
}

func (r *Reader) Categories(ctx context.Context) ([]Category, error) {
	if cats, ok := cache.GetAs[[]Category](r.cache, keyCategories); ok {
		return cats, nil
	}
	cats, err := r.repo.ListCategories(ctx)
	if err != nil {
		return nil, apperr.Internal("catalog.categories", err)
	}
	if cats == nil {
		cats = []Category{}
	}
	r.cache.Set(keyCategories, cats)
	return cats, nil
}

func (r *Reader) Featured(ctx context.Context, limit int) ([]Product, error) {
	if limit <= 0 || limit > maxPageSize {
		limit = DefaultFeaturedLimit
	}
	key := fmt.Sprintf("%s%d", keyFeatured, limit)
	if ps, ok := cache.GetAs[[]Product](r.cache, key); ok {
		return ps, nil
	}
	ps, err := r.repo.ListProducts(ctx, Query{Featured: true, Limit: limit})
	if err != nil {
		return nil, apperr.Internal("catalog.featured", err)
	}
	if ps == nil {
		ps = []Product{}
	}
	r.cache.Set(key, ps)
	return ps, nil
}

// Products lists active products. Category, featured and active flags are
// pushed to the database; text, price range, sort and paging are applied to
// the fetched rows.
func (r *Reader) Products(ctx context.Context, f Filter) ([]Product, error) {
	if err := f.validate(); err != nil {
		return nil, err
	}

	q := Query{Featured: f.Featured}
	if f.Category != "" {
		cats, err := r.Categories(ctx)
		if err != nil {
			return nil, err
		}
		cat, ok := lo.Find(cats, func(c Category) bool { return c.Slug == f.Category })
		if !ok {
			return []Product{}, nil
		}
		q.CategoryID = cat.ID
	}

	ps, err := r.repo.ListProducts(ctx, q)
	if err != nil {
		return nil, apperr.Internal("catalog.products", err)
	}
	return page(applyFilter(ps, f), f.Limit, f.Offset), nil
}

func applyFilter(ps []Product, f Filter) []Product {
	needle := strings.ToLower(strings.TrimSpace(f.Search))
	out := lo.Filter(ps, func(p Product, _ int) bool {
		if needle != "" && !strings.Contains(strings.ToLower(p.DisplayName(f.Lang)), needle) {
			return false
		}
		if lower, ok := f.MinPrice.Get(); ok && p.Price.LessThan(lower) {
			return false
		}
		if upper, ok := f.MaxPrice.Get(); ok && p.Price.GreaterThan(upper) {
			return false
		}
		return true
	})

	switch f.Sort {
	case SortPriceAsc:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Price.LessThan(out[j].Price) })
	case SortPriceDesc:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Price.GreaterThan(out[j].Price) })
	case SortNewest:
		sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	default:
		// Collator is not safe for concurrent use
		col := collate.New(f.Lang.Tag(), collate.IgnoreCase)
		sort.SliceStable(out, func(i, j int) bool {
			return col.CompareString(out[i].DisplayName(f.Lang), out[j].DisplayName(f.Lang)) < 0
		})
	}
	return out
}

func page(ps []Product, limit, offset int) []Product {
	if limit <= 0 || limit > maxPageSize {
		limit = maxPageSize
	}
	if offset >= len(ps) {
		return []Product{}
	}
	end := offset + limit
	if end > len(ps) {
		end = len(ps)
	}
	return ps[offset:end]
}

// ProductBySlug returns an active product.
func (r *Reader) ProductBySlug(ctx context.Context, slug string) (*Product, error) {
	if p, ok := cache.GetAs[*Product](r.cache, keyProduct+slug); ok {
		return p, nil
	}
	p, err := r.repo.GetBySlug(ctx, slug)
	if errors.Is(err, ErrNotFound) {
		return nil, apperr.NotFound(apperr.CodeProductNotFound)
	}
	if err != nil {
		return nil, apperr.Internal("catalog.product_by_slug", err)
	}
	r.cache.Set(keyProduct+slug, p)
	return p, nil
}

// ActiveProduct looks a product up by id for cart writes; inactive products
// are reported as not found.
func (r *Reader) ActiveProduct(ctx context.Context, id string) (*Product, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, apperr.NotFound(apperr.CodeProductNotFound)
	}
	p, err := r.repo.GetByID(ctx, id)
	if errors.Is(err, ErrNotFound) || err == nil && !p.IsActive {
		return nil, apperr.NotFound(apperr.CodeProductNotFound)
	}
	if err != nil {
		return nil, apperr.Internal("catalog.product_by_id", err)
	}
	return p, nil
}

func (r *Reader) CountProducts(ctx context.Context) (int, error) {
	n, err := r.repo.CountProducts(ctx)
	if err != nil {
		return 0, apperr.Internal("catalog.count", err)
	}
	return n, nil
}

// Invalidate drops every cached catalog list.
func (r *Reader) Invalidate() {
	r.cache.DeleteByPrefix("catalog:")
}
