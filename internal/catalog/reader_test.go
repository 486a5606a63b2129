package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/MikeMC777/storefront/internal/apperr"
	"github.com/MikeMC777/storefront/internal/cache"
	"github.com/MikeMC777/storefront/internal/i18n"
)

// stubRepo implements Repository in memory.
type stubRepo struct {
	cats      []Category
	products  []Product
	listCalls int
	catCalls  int
}

func (s *stubRepo) ListCategories(ctx context.Context) ([]Category, error) {
	s.catCalls++
	return s.cats, nil
}

func (s *stubRepo) ListProducts(ctx context.Context, q Query) ([]Product, error) {
	s.listCalls++
	var out []Product
	for _, p := range s.products {
		if !p.IsActive {
			continue
		}
		if q.CategoryID != "" && (p.CategoryID == nil || *p.CategoryID != q.CategoryID) {
			continue
		}
		if q.Featured && !p.IsFeatured {
			continue
		}
		out = append(out, p)
		if q.Limit > 0 && len(out) == q.Limit {
			break
		}
	}
	return out, nil
}

func (s *stubRepo) GetBySlug(ctx context.Context, slug string) (*Product, error) {
	for _, p := range s.products {
		if p.Slug == slug && p.IsActive {
			cp := p
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (s *stubRepo) GetByID(ctx context.Context, id string) (*Product, error) {
	for _, p := range s.products {
		if p.ID == id {
			cp := p
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (s *stubRepo) CountProducts(ctx context.Context) (int, error) { return len(s.products), nil }

func strp(s string) *string { return &s }

func fixture() *stubRepo {
	coffee := Category{ID: uuid.NewString(), Name: "Coffee", NameAm: strp("ቡና"), Slug: "coffee", DisplayOrder: 1}
	spices := Category{ID: uuid.NewString(), Name: "Spices", Slug: "spices", DisplayOrder: 2}
	base := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	mk := func(name, price string, cat Category, age int, featured, active bool) Product {
		return Product{
			ID:            uuid.NewString(),
			CategoryID:    &cat.ID,
			Name:          name,
			Slug:          name,
			Price:         decimal.RequireFromString(price),
			StockQuantity: 10,
			IsFeatured:    featured,
			IsActive:      active,
			CreatedAt:     base.Add(-time.Duration(age) * time.Hour),
		}
	}
	yirga := mk("yirgacheffe", "450", coffee, 1, true, true)
	yirga.NameAm = strp("ይርጋጨፌ")
	return &stubRepo{
		cats: []Category{coffee, spices},
		products: []Product{
			yirga,
			mk("sidamo", "380", coffee, 2, false, true),
			mk("berbere", "120", spices, 3, true, true),
			mk("mitmita", "150", spices, 4, false, false),
		},
	}
}

func newReader(repo Repository) *Reader {
	return NewReader(repo, cache.New(time.Minute, 0))
}

func TestDiscount(t *testing.T) {
	d := decimal.RequireFromString
	require.Equal(t, 25, Discount(d("150"), decimal.NewNullDecimal(d("200"))))
	require.Equal(t, 0, Discount(d("200"), decimal.NewNullDecimal(d("200"))))
	require.Equal(t, 0, Discount(d("250"), decimal.NewNullDecimal(d("200"))))
	require.Equal(t, 0, Discount(d("150"), decimal.NullDecimal{}))
	require.Equal(t, 33, Discount(d("200"), decimal.NewNullDecimal(d("300"))))
}

func TestProducts_ActiveOnlyNewestFirst(t *testing.T) {
	r := newReader(fixture())
	ps, err := r.Products(context.Background(), Filter{Sort: SortNewest})
	require.NoError(t, err)
	require.Len(t, ps, 3)
	require.Equal(t, "yirgacheffe", ps[0].Name)
	require.Equal(t, "berbere", ps[2].Name)
}

func TestProducts_DefaultSortByLocalizedName(t *testing.T) {
	repo := fixture()
	repo.products[1].NameAm = strp("ሲዳሞ")
	repo.products[2].NameAm = strp("በርበሬ")
	repo.products[0].Name = "Yirgacheffe"
	r := newReader(repo)
	ctx := context.Background()

	names := func(ps []Product, l i18n.Lang) []string {
		return lo.Map(ps, func(p Product, _ int) string { return p.DisplayName(l) })
	}

	ps, err := r.Products(ctx, Filter{})
	require.NoError(t, err)
	require.Equal(t, []string{"berbere", "sidamo", "Yirgacheffe"}, names(ps, i18n.EN))

	ps, err = r.Products(ctx, Filter{Lang: i18n.AM, Sort: SortName})
	require.NoError(t, err)
	require.Equal(t, []string{"ሲዳሞ", "በርበሬ", "ይርጋጨፌ"}, names(ps, i18n.AM))
}

func TestProducts_CategorySlug(t *testing.T) {
	r := newReader(fixture())
	ps, err := r.Products(context.Background(), Filter{Category: "spices"})
	require.NoError(t, err)
	require.Len(t, ps, 1)
	require.Equal(t, "berbere", ps[0].Name)

	ps, err = r.Products(context.Background(), Filter{Category: "no-such"})
	require.NoError(t, err)
	require.Empty(t, ps)
}

func TestProducts_SearchUsesLocalizedName(t *testing.T) {
	r := newReader(fixture())
	ps, err := r.Products(context.Background(), Filter{Search: "ይርጋ", Lang: i18n.AM})
	require.NoError(t, err)
	require.Len(t, ps, 1)

	ps, err = r.Products(context.Background(), Filter{Search: "SIDA", Lang: i18n.AM})
	require.NoError(t, err)
	require.Len(t, ps, 1, "products without Amharic names fall back to English")
}

func TestProducts_PriceRangeAndSort(t *testing.T) {
	r := newReader(fixture())
	ps, err := r.Products(context.Background(), Filter{
		MinPrice: mo.Some(decimal.NewFromInt(100)),
		MaxPrice: mo.Some(decimal.NewFromInt(400)),
		Sort:     SortPriceDesc,
	})
	require.NoError(t, err)
	require.Len(t, ps, 2)
	require.Equal(t, "sidamo", ps[0].Name)
	require.Equal(t, "berbere", ps[1].Name)

	ps, err = r.Products(context.Background(), Filter{Sort: SortPriceAsc, Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, ps, 1)
	require.Equal(t, "sidamo", ps[0].Name)
}

func TestProducts_InvalidFilter(t *testing.T) {
	r := newReader(fixture())
	_, err := r.Products(context.Background(), Filter{Sort: "random"})
	require.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	_, err = r.Products(context.Background(), Filter{
		MinPrice: mo.Some(decimal.NewFromInt(10)),
		MaxPrice: mo.Some(decimal.NewFromInt(5)),
	})
	require.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestCategoriesAndFeaturedAreCached(t *testing.T) {
	repo := fixture()
	r := newReader(repo)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		cats, err := r.Categories(ctx)
		require.NoError(t, err)
		require.Len(t, cats, 2)
		ps, err := r.Featured(ctx, 0)
		require.NoError(t, err)
		require.Len(t, ps, 2)
	}
	require.Equal(t, 1, repo.catCalls)
	require.Equal(t, 1, repo.listCalls)

	r.Invalidate()
	_, _ = r.Categories(ctx)
	require.Equal(t, 2, repo.catCalls)
}

func TestProductLookups(t *testing.T) {
	repo := fixture()
	r := newReader(repo)
	ctx := context.Background()

	p, err := r.ProductBySlug(ctx, "sidamo")
	require.NoError(t, err)
	require.Equal(t, "sidamo", p.Name)

	_, err = r.ProductBySlug(ctx, "mitmita")
	require.ErrorIs(t, err, apperr.NotFound(apperr.CodeProductNotFound))

	_, err = r.ActiveProduct(ctx, repo.products[3].ID)
	require.ErrorIs(t, err, apperr.NotFound(apperr.CodeProductNotFound))

	_, err = r.ActiveProduct(ctx, "not-a-uuid")
	require.ErrorIs(t, err, apperr.NotFound(apperr.CodeProductNotFound))

	got, err := r.ActiveProduct(ctx, repo.products[0].ID)
	require.NoError(t, err)
	require.Equal(t, "yirgacheffe", got.Name)
}

func TestViewLocalizes(t *testing.T) {
	p := fixture().products[0]
	p.CompareAtPrice = decimal.NewNullDecimal(decimal.NewFromInt(600))
	v := p.View(i18n.AM)
	require.Equal(t, "ይርጋጨፌ", v.DisplayName)
	require.Equal(t, 25, v.DiscountPercent)
	require.True(t, v.InStock)
	require.Equal(t, "yirgacheffe", p.View(i18n.EN).DisplayName)
}
