package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/shopspring/decimal"

	"github.com/MikeMC777/storefront/internal/apperr"
	"github.com/MikeMC777/storefront/internal/catalog"
	"github.com/MikeMC777/storefront/internal/httpx"
	"github.com/MikeMC777/storefront/internal/i18n"
)

type productQuery struct {
	Category string `form:"category"`
	Featured bool   `form:"featured"`
	Q        string `form:"q"`
	MinPrice string `form:"min_price"`
	MaxPrice string `form:"max_price"`
	Sort     string `form:"sort"   binding:"omitempty,oneof=name newest price_asc price_desc"`
	Limit    int    `form:"limit"  binding:"omitempty,min=0,max=100"`
	Offset   int    `form:"offset" binding:"omitempty,min=0"`
}

func optionalDecimal(s string) (mo.Option[decimal.Decimal], error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return mo.None[decimal.Decimal](), nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return mo.None[decimal.Decimal](), apperr.Errorf(apperr.KindValidation, apperr.CodeInvalidInput, "bad price %q", s)
	}
	return mo.Some(d), nil
}

func productViews(ps []catalog.Product, l i18n.Lang) []catalog.ProductView {
	return lo.Map(ps, func(p catalog.Product, _ int) catalog.ProductView { return p.View(l) })
}

// listCategoriesHandler godoc
// @Summary  List categories
// @Tags     catalog
// @Produce  json
// @Param    lang query string false "en or am"
// @Success  200 {object} map[string][]catalog.CategoryView
// @Security ApiKeyAuth
// @Router   /categories [get]
func listCategoriesHandler(cat Catalog) gin.HandlerFunc {
	return func(c *gin.Context) {
		cats, err := cat.Categories(c.Request.Context())
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		l := httpx.LangOf(c)
		c.JSON(http.StatusOK, gin.H{
			"items": lo.Map(cats, func(x catalog.Category, _ int) catalog.CategoryView { return x.View(l) }),
		})
	}
}

// listProductsHandler godoc
// @Summary  List active products
// @Tags     catalog
// @Produce  json
// @Param    category  query string false "category slug"
// @Param    featured  query bool   false "featured only"
// @Param    q         query string false "search in the localized name"
// @Param    min_price query string false "lower price bound"
// @Param    max_price query string false "upper price bound"
// @Param    sort      query string false "sort order" Enums(name, newest, price_asc, price_desc) default(name)
// @Param    limit     query int    false "page size (max 100)"
// @Param    offset    query int    false "offset"
// @Success  200 {object} map[string]interface{}
// @Failure  400 {object} map[string]string
// @Security ApiKeyAuth
// @Router   /products [get]
func listProductsHandler(cat Catalog) gin.HandlerFunc {
	return func(c *gin.Context) {
		var q productQuery
		if err := c.ShouldBindQuery(&q); err != nil {
			httpx.BadRequest(c, err)
			return
		}
		lower, err := optionalDecimal(q.MinPrice)
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		upper, err := optionalDecimal(q.MaxPrice)
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		l := httpx.LangOf(c)
		ps, err := cat.Products(c.Request.Context(), catalog.Filter{
			Category: q.Category,
			Featured: q.Featured,
			Search:   q.Q,
			Lang:     l,
			MinPrice: lower,
			MaxPrice: upper,
			Sort:     catalog.Sort(q.Sort),
			Limit:    q.Limit,
			Offset:   q.Offset,
		})
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"items": productViews(ps, l), "count": len(ps)})
	}
}

// featuredProductsHandler godoc
// @Summary  Featured products for the home page
// @Tags     catalog
// @Produce  json
// @Param    limit query int false "how many (default 8)"
// @Success  200 {object} map[string][]catalog.ProductView
// @Security ApiKeyAuth
// @Router   /products/featured [get]
func featuredProductsHandler(cat Catalog) gin.HandlerFunc {
	return func(c *gin.Context) {
		var q struct {
			Limit int `form:"limit" binding:"omitempty,min=0,max=100"`
		}
		if err := c.ShouldBindQuery(&q); err != nil {
			httpx.BadRequest(c, err)
			return
		}
		ps, err := cat.Featured(c.Request.Context(), q.Limit)
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"items": productViews(ps, httpx.LangOf(c))})
	}
}

// getProductHandler godoc
// @Summary  Product detail
// @Tags     catalog
// @Produce  json
// @Param    slug path string true "product slug"
// @Success  200 {object} catalog.ProductView
// @Failure  404 {object} map[string]string
// @Security ApiKeyAuth
// @Router   /products/{slug} [get]
func getProductHandler(cat Catalog) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := cat.ProductBySlug(c.Request.Context(), c.Param("slug"))
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		c.JSON(http.StatusOK, p.View(httpx.LangOf(c)))
	}
}
