// Package server wires the storefront services to gin routes.
package server

import (
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/MikeMC777/storefront/docs"
	"github.com/MikeMC777/storefront/internal/admin"
	"github.com/MikeMC777/storefront/internal/cart"
	"github.com/MikeMC777/storefront/internal/catalog"
	"github.com/MikeMC777/storefront/internal/httpx"
	"github.com/MikeMC777/storefront/internal/i18n"
	"github.com/MikeMC777/storefront/internal/identity"
	"github.com/MikeMC777/storefront/internal/order"
)

type Catalog interface {
	Categories(ctx context.Context) ([]catalog.Category, error)
	Products(ctx context.Context, f catalog.Filter) ([]catalog.Product, error)
	Featured(ctx context.Context, limit int) ([]catalog.Product, error)
	ProductBySlug(ctx context.Context, slug string) (*catalog.Product, error)
}

type Identity interface {
	httpx.Authenticator
	SignUp(ctx context.Context, in identity.SignUpRequest) (*identity.User, error)
	SignIn(ctx context.Context, email, password string) (*identity.SignInResponse, error)
	SignOut(ctx context.Context, sessionID string) error
	Profile(ctx context.Context, userID string) (*identity.Profile, error)
	UpdateProfile(ctx context.Context, userID string, in identity.UpdateProfileRequest) (*identity.Profile, error)
}

type Cart interface {
	Snapshot(ctx context.Context, userID string) (cart.Snapshot, error)
	AddItem(ctx context.Context, userID, productID string, qty int) (cart.Snapshot, error)
	SetQuantity(ctx context.Context, userID, productID string, qty int) (cart.Snapshot, error)
	RemoveItem(ctx context.Context, userID, productID string) (cart.Snapshot, error)
	Clear(ctx context.Context, userID string) (cart.Snapshot, error)
}

type Orders interface {
	PlaceOrder(ctx context.Context, userID string, form order.ShippingForm, idempotencyKey string) (*order.Order, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]order.Order, error)
	Get(ctx context.Context, userID, id string) (*order.Order, error)
}

type Admin interface {
	LoadStats(ctx context.Context) (admin.Stats, error)
	RecentOrders(ctx context.Context, limit, offset int) ([]order.Order, error)
	UpdateStatus(ctx context.Context, id string, status order.Status) (*order.Order, error)
	ExportOrders(ctx context.Context, w io.Writer, l i18n.Lang) error
}

// Server holds everything the routes need.
type Server struct {
	Catalog  Catalog
	Identity Identity
	Cart     Cart
	Orders   Orders
	Admin    Admin
	// Feed serves the admin websocket; *admin.Hub implements it.
	Feed http.Handler

	APIKey      string
	CORSOrigins []string
}

// Router builds the gin engine with every storefront route.
func (s *Server) Router() *gin.Engine {
	registerValidators()

	r := gin.New()
	r.Use(httpx.RequestID(), httpx.Logger(), gin.Recovery(), httpx.CORS(s.CORSOrigins), httpx.Lang())

	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := r.Group("/api/v1", httpx.APIKey(s.APIKey))
	user := httpx.Auth(s.Identity)

	api.GET("/categories", listCategoriesHandler(s.Catalog))
	api.GET("/products", httpx.Optional(s.Identity), listProductsHandler(s.Catalog))
	api.GET("/products/featured", featuredProductsHandler(s.Catalog))
	api.GET("/products/:slug", getProductHandler(s.Catalog))

	api.POST("/auth/signup", signUpHandler(s.Identity))
	api.POST("/auth/signin", signInHandler(s.Identity))
	api.POST("/auth/signout", user, signOutHandler(s.Identity))
	api.GET("/auth/session", user, sessionHandler())
	api.GET("/profile", user, getProfileHandler(s.Identity))
	api.PUT("/profile", user, updateProfileHandler(s.Identity))

	api.GET("/cart", user, getCartHandler(s.Cart))
	api.DELETE("/cart", user, clearCartHandler(s.Cart))
	api.POST("/cart/items", user, addCartItemHandler(s.Cart))
	api.PUT("/cart/items/:product_id", user, setCartItemHandler(s.Cart))
	api.DELETE("/cart/items/:product_id", user, removeCartItemHandler(s.Cart))

	api.POST("/orders", user, placeOrderHandler(s.Orders))
	api.GET("/orders", user, listOrdersHandler(s.Orders))
	api.GET("/orders/:id", user, getOrderHandler(s.Orders))

	adm := api.Group("/admin", user, httpx.RequireAdmin())
	adm.GET("/stats", statsHandler(s.Admin))
	adm.GET("/orders", recentOrdersHandler(s.Admin))
	adm.GET("/orders/export", exportOrdersHandler(s.Admin))
	adm.PUT("/orders/:id/status", updateOrderStatusHandler(s.Admin))
	if s.Feed != nil {
		adm.GET("/orders/feed", gin.WrapH(s.Feed))
	}
	return r
}
