package server

import (
	"bytes"
	"context"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/MikeMC777/storefront/internal/admin"
	"github.com/MikeMC777/storefront/internal/apperr"
	"github.com/MikeMC777/storefront/internal/cart"
	"github.com/MikeMC777/storefront/internal/catalog"
	"github.com/MikeMC777/storefront/internal/httpx"
	"github.com/MikeMC777/storefront/internal/i18n"
	"github.com/MikeMC777/storefront/internal/identity"
	"github.com/MikeMC777/storefront/internal/order"
)

//
// ---------- STUBS & FAKES ----------
//

func strp(s string) *string { return &s }

type fakeCatalog struct {
	cats     []catalog.Category
	products []catalog.Product
	lastF    catalog.Filter
}

func (f *fakeCatalog) Categories(ctx context.Context) ([]catalog.Category, error) { return f.cats, nil }

func (f *fakeCatalog) Products(ctx context.Context, flt catalog.Filter) ([]catalog.Product, error) {
	f.lastF = flt
	return f.products, nil
}

func (f *fakeCatalog) Featured(ctx context.Context, limit int) ([]catalog.Product, error) {
	var out []catalog.Product
	for _, p := range f.products {
		if p.IsFeatured {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeCatalog) ProductBySlug(ctx context.Context, slug string) (*catalog.Product, error) {
	for _, p := range f.products {
		if p.Slug == slug {
			cp := p
			return &cp, nil
		}
	}
	return nil, apperr.NotFound(apperr.CodeProductNotFound)
}

type fakeIdentity struct {
	tokens  map[string]*identity.Identity
	revoked []string
}

func (f *fakeIdentity) CurrentSession(ctx context.Context, token string) (*identity.Identity, error) {
	if token == "" {
		return nil, apperr.Unauthenticated(apperr.CodeSignInRequired)
	}
	id, ok := f.tokens[token]
	if !ok {
		return nil, apperr.Unauthenticated(apperr.CodeSessionExpired)
	}
	return id, nil
}

func (f *fakeIdentity) SignUp(ctx context.Context, in identity.SignUpRequest) (*identity.User, error) {
	if in.Email == "taken@example.com" {
		return nil, apperr.Conflict(apperr.CodeEmailTaken, "")
	}
	return &identity.User{ID: uuid.NewString(), Email: in.Email}, nil
}

func (f *fakeIdentity) SignIn(ctx context.Context, email, password string) (*identity.SignInResponse, error) {
	for tok, id := range f.tokens {
		if id.Email == email && password == "secret1" {
			return &identity.SignInResponse{Token: tok, ExpiresAt: time.Now().Add(time.Hour), Identity: *id}, nil
		}
	}
	return nil, apperr.Unauthenticated(apperr.CodeInvalidCredentials)
}

func (f *fakeIdentity) SignOut(ctx context.Context, sessionID string) error {
	f.revoked = append(f.revoked, sessionID)
	return nil
}

func (f *fakeIdentity) Profile(ctx context.Context, userID string) (*identity.Profile, error) {
	for _, id := range f.tokens {
		if id.UserID == userID {
			p := id.Profile
			return &p, nil
		}
	}
	return nil, apperr.NotFound(apperr.CodeSignInRequired)
}

func (f *fakeIdentity) UpdateProfile(ctx context.Context, userID string, in identity.UpdateProfileRequest) (*identity.Profile, error) {
	p, err := f.Profile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if in.Phone != "" {
		p.Phone = &in.Phone
	}
	return p, nil
}

// fakeCart keeps one product price list and per-user quantities.
type fakeCart struct {
	prices map[string]decimal.Decimal
	lines  map[string]map[string]int
}

func (f *fakeCart) snapshot(userID string) cart.Snapshot {
	var items []cart.Item
	for pid, q := range f.lines[userID] {
		items = append(items, cart.Item{ProductID: pid, Quantity: q, Product: cart.ProductRef{ID: pid, Price: f.prices[pid]}})
	}
	return cart.NewSnapshot(items)
}

func (f *fakeCart) Snapshot(ctx context.Context, userID string) (cart.Snapshot, error) {
	return f.snapshot(userID), nil
}

func (f *fakeCart) AddItem(ctx context.Context, userID, productID string, qty int) (cart.Snapshot, error) {
	if _, ok := f.prices[productID]; !ok {
		return cart.Snapshot{}, apperr.NotFound(apperr.CodeProductNotFound)
	}
	if qty == 0 {
		qty = 1
	}
	if f.lines[userID] == nil {
		f.lines[userID] = map[string]int{}
	}
	f.lines[userID][productID] += qty
	return f.snapshot(userID), nil
}

func (f *fakeCart) SetQuantity(ctx context.Context, userID, productID string, qty int) (cart.Snapshot, error) {
	if _, ok := f.lines[userID][productID]; !ok {
		return cart.Snapshot{}, apperr.NotFound(apperr.CodeCartItemNotFound)
	}
	f.lines[userID][productID] = qty
	return f.snapshot(userID), nil
}

func (f *fakeCart) RemoveItem(ctx context.Context, userID, productID string) (cart.Snapshot, error) {
	delete(f.lines[userID], productID)
	return f.snapshot(userID), nil
}

func (f *fakeCart) Clear(ctx context.Context, userID string) (cart.Snapshot, error) {
	delete(f.lines, userID)
	return f.snapshot(userID), nil
}

type fakeOrders struct {
	placed  []*order.Order
	lastKey string
}

func (f *fakeOrders) PlaceOrder(ctx context.Context, userID string, form order.ShippingForm, key string) (*order.Order, error) {
	f.lastKey = key
	uid := userID
	o := &order.Order{
		ID: uuid.NewString(), UserID: &uid, OrderNumber: order.NewOrderNumber(time.Now()),
		Status: order.StatusPending, TotalAmount: decimal.NewFromInt(250), CustomerName: form.FullName,
	}
	f.placed = append(f.placed, o)
	return o, nil
}

func (f *fakeOrders) ListByUser(ctx context.Context, userID string, limit, offset int) ([]order.Order, error) {
	out := []order.Order{}
	for _, o := range f.placed {
		if *o.UserID == userID {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (f *fakeOrders) Get(ctx context.Context, userID, id string) (*order.Order, error) {
	for _, o := range f.placed {
		if o.ID == id && *o.UserID == userID {
			return o, nil
		}
	}
	return nil, apperr.NotFound(apperr.CodeOrderNotFound)
}

type fakeAdmin struct {
	orders []order.Order
}

func (f *fakeAdmin) LoadStats(ctx context.Context) (admin.Stats, error) {
	return admin.Stats{OrderCount: len(f.orders), RevenueSum: decimal.NewFromInt(1200), ProductCount: 7, CustomerCount: 3}, nil
}

func (f *fakeAdmin) RecentOrders(ctx context.Context, limit, offset int) ([]order.Order, error) {
	return f.orders, nil
}

func (f *fakeAdmin) UpdateStatus(ctx context.Context, id string, st order.Status) (*order.Order, error) {
	for i := range f.orders {
		if f.orders[i].ID == id {
			f.orders[i].Status = st
			return &f.orders[i], nil
		}
	}
	return nil, apperr.NotFound(apperr.CodeOrderNotFound)
}

func (f *fakeAdmin) ExportOrders(ctx context.Context, w io.Writer, l i18n.Lang) error {
	file, err := admin.Workbook(f.orders, l)
	if err != nil {
		return err
	}
	return file.Write(w)
}

type harness struct {
	router   *gin.Engine
	catalog  *fakeCatalog
	identity *fakeIdentity
	cart     *fakeCart
	orders   *fakeOrders
	admin    *fakeAdmin
	coffeeID string
}

const apiKey = "test-key"

func newHarness() *harness {
	coffeeID := uuid.NewString()
	h := &harness{
		coffeeID: coffeeID,
		catalog: &fakeCatalog{
			cats: []catalog.Category{{ID: uuid.NewString(), Name: "Coffee", NameAm: strp("ቡና"), Slug: "coffee"}},
			products: []catalog.Product{{
				ID: coffeeID, Name: "Yirgacheffe", NameAm: strp("ይርጋጨፌ"), Slug: "yirgacheffe",
				Price:          decimal.RequireFromString("150"),
				CompareAtPrice: decimal.NewNullDecimal(decimal.RequireFromString("200")),
				StockQuantity:  4, IsFeatured: true, IsActive: true,
			}},
		},
		identity: &fakeIdentity{tokens: map[string]*identity.Identity{
			"customer-token": {UserID: uuid.NewString(), Email: "abebe@example.com", SessionID: "s1"},
			"admin-token": {UserID: uuid.NewString(), Email: "admin@example.com", SessionID: "s2",
				Profile: identity.Profile{IsAdmin: true}},
		}},
		cart: &fakeCart{
			prices: map[string]decimal.Decimal{coffeeID: decimal.RequireFromString("150")},
			lines:  map[string]map[string]int{},
		},
		orders: &fakeOrders{},
		admin: &fakeAdmin{orders: []order.Order{{
			ID: uuid.NewString(), OrderNumber: "ORD-20250101000000-X", Status: order.StatusPending,
			TotalAmount: decimal.NewFromInt(1200),
		}}},
	}
	s := &Server{
		Catalog: h.catalog, Identity: h.identity, Cart: h.cart, Orders: h.orders, Admin: h.admin,
		APIKey: apiKey,
	}
	h.router = s.Router()
	return h
}

func (h *harness) do(method, path, token, body string, headers ...string) *httptest.ResponseRecorder {
	var rd io.Reader
	if body != "" {
		rd = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set(httpx.HeaderAPIKey, apiKey)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)
	return w
}

//
// ---------- TESTS ----------
//

func TestHealthz(t *testing.T) {
	h := newHarness()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
}

func TestAPIKeyRequired(t *testing.T) {
	h := newHarness()
	w := h.do(http.MethodGet, "/api/v1/products", "", "", httpx.HeaderAPIKey, "nope")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status=%d body=%s (expected 401)", w.Code, w.Body.String())
	}
}

func TestListProducts_Localized(t *testing.T) {
	h := newHarness()

	w := h.do(http.MethodGet, "/api/v1/products?lang=am&category=coffee&min_price=100&sort=price_asc", "", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := w.Body.String()
	require.Equal(t, int64(1), gjson.Get(body, "count").Int())
	require.Equal(t, "ይርጋጨፌ", gjson.Get(body, "items.0.display_name").String())
	require.Equal(t, int64(25), gjson.Get(body, "items.0.discount_percent").Int())
	require.True(t, gjson.Get(body, "items.0.in_stock").Bool())

	f := h.catalog.lastF
	require.Equal(t, "coffee", f.Category)
	require.Equal(t, i18n.AM, f.Lang)
	require.Equal(t, catalog.SortPriceAsc, f.Sort)
	lower, ok := f.MinPrice.Get()
	require.True(t, ok)
	require.Equal(t, "100", lower.String())
	require.True(t, f.MaxPrice.IsAbsent())
}

func TestListProducts_BadQuery(t *testing.T) {
	h := newHarness()

	w := h.do(http.MethodGet, "/api/v1/products?sort=random", "", "")
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = h.do(http.MethodGet, "/api/v1/products?max_price=cheap", "", "")
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestFeaturedAndDetailRoutes(t *testing.T) {
	h := newHarness()

	w := h.do(http.MethodGet, "/api/v1/products/featured", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "Yirgacheffe", gjson.Get(w.Body.String(), "items.0.display_name").String())

	w = h.do(http.MethodGet, "/api/v1/products/yirgacheffe", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "150", gjson.Get(w.Body.String(), "price").String())

	w = h.do(http.MethodGet, "/api/v1/products/missing?lang=am", "", "")
	require.Equal(t, http.StatusNotFound, w.Code)
	require.Equal(t, "ምርት አልተገኘም", gjson.Get(w.Body.String(), "error").String())

	w = h.do(http.MethodGet, "/api/v1/categories?lang=am", "", "")
	require.Equal(t, "ቡና", gjson.Get(w.Body.String(), "items.0.display_name").String())
}

func TestAuthRoutes(t *testing.T) {
	h := newHarness()

	w := h.do(http.MethodPost, "/api/v1/auth/signup", "", `{"email":"new@example.com","password":"secret1","confirm_password":"secret1"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	require.Equal(t, "new@example.com", gjson.Get(w.Body.String(), "user.email").String())

	w = h.do(http.MethodPost, "/api/v1/auth/signup", "", `{"email":"taken@example.com","password":"secret1","confirm_password":"secret1"}`)
	require.Equal(t, http.StatusConflict, w.Code)

	w = h.do(http.MethodPost, "/api/v1/auth/signup", "", `{"email":"not-an-email","password":"secret1","confirm_password":"secret1"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = h.do(http.MethodPost, "/api/v1/auth/signin", "", `{"email":"abebe@example.com","password":"secret1"}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "customer-token", gjson.Get(w.Body.String(), "token").String())

	w = h.do(http.MethodPost, "/api/v1/auth/signin", "", `{"email":"abebe@example.com","password":"bad"}`)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Equal(t, apperr.CodeInvalidCredentials, gjson.Get(w.Body.String(), "code").String())

	w = h.do(http.MethodGet, "/api/v1/auth/session", "customer-token", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "abebe@example.com", gjson.Get(w.Body.String(), "email").String())

	w = h.do(http.MethodPost, "/api/v1/auth/signout", "customer-token", "")
	require.Equal(t, http.StatusNoContent, w.Code)
	require.Equal(t, []string{"s1"}, h.identity.revoked)
}

func TestProfileRoutes(t *testing.T) {
	h := newHarness()

	w := h.do(http.MethodPut, "/api/v1/profile", "customer-token", `{"phone":"+251911000000"}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "+251911000000", gjson.Get(w.Body.String(), "phone").String())

	w = h.do(http.MethodGet, "/api/v1/profile", "", "")
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCart_RequiresSignIn(t *testing.T) {
	h := newHarness()
	body := `{"product_id":"` + h.coffeeID + `","quantity":1}`

	w := h.do(http.MethodPost, "/api/v1/cart/items", "", body)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status=%d body=%s (expected 401)", w.Code, w.Body.String())
	}
	require.Equal(t, apperr.CodeSignInRequired, gjson.Get(w.Body.String(), "code").String())
}

func TestCart_Flow(t *testing.T) {
	h := newHarness()
	tok := "customer-token"

	w := h.do(http.MethodPost, "/api/v1/cart/items", tok, `{"product_id":"`+h.coffeeID+`","quantity":2}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.Equal(t, int64(2), gjson.Get(w.Body.String(), "total_items").Int())
	require.Equal(t, "300", gjson.Get(w.Body.String(), "total_amount").String())

	w = h.do(http.MethodPut, "/api/v1/cart/items/"+h.coffeeID, tok, `{"quantity":3}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "450", gjson.Get(w.Body.String(), "total_amount").String())

	w = h.do(http.MethodPost, "/api/v1/cart/items", tok, `{"product_id":"`+uuid.NewString()+`"}`)
	require.Equal(t, http.StatusNotFound, w.Code)

	w = h.do(http.MethodPost, "/api/v1/cart/items", tok, `{"product_id":"not-a-uuid"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = h.do(http.MethodDelete, "/api/v1/cart/items/"+h.coffeeID, tok, "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, int64(0), gjson.Get(w.Body.String(), "total_items").Int())

	w = h.do(http.MethodDelete, "/api/v1/cart", tok, "")
	require.Equal(t, http.StatusOK, w.Code)
	require.True(t, gjson.Get(w.Body.String(), "items").IsArray())
}

func TestPlaceOrder_HappyPath(t *testing.T) {
	h := newHarness()
	body := `{"full_name":"Abebe Kebede","email":"abebe@example.com","phone":"+251911000000","address":"Bole Road 12","city":"Addis Ababa"}`

	w := h.do(http.MethodPost, "/api/v1/orders?lang=en", "customer-token", body, httpx.HeaderIdempotencyKey, "k-1")
	if w.Code != http.StatusCreated {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	num := gjson.Get(w.Body.String(), "order.order_number").String()
	require.True(t, strings.HasPrefix(num, "ORD-"))
	require.Contains(t, gjson.Get(w.Body.String(), "message").String(), num)
	require.Equal(t, "k-1", h.orders.lastKey)

	w = h.do(http.MethodGet, "/api/v1/orders", "customer-token", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, int64(1), gjson.Get(w.Body.String(), "items.#").Int())

	id := h.orders.placed[0].ID
	w = h.do(http.MethodGet, "/api/v1/orders/"+id, "customer-token", "")
	require.Equal(t, http.StatusOK, w.Code)

	w = h.do(http.MethodGet, "/api/v1/orders/"+id, "admin-token", "")
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestPlaceOrder_MissingFields(t *testing.T) {
	h := newHarness()

	w := h.do(http.MethodPost, "/api/v1/orders", "customer-token", `{"full_name":"Abebe"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, apperr.CodeMissingField, gjson.Get(w.Body.String(), "code").String())
	require.Empty(t, h.orders.placed)
}

func TestAdmin_DeniesNonAdmins(t *testing.T) {
	h := newHarness()

	for _, path := range []string{"/api/v1/admin/stats", "/api/v1/admin/orders", "/api/v1/admin/orders/export"} {
		w := h.do(http.MethodGet, path, "customer-token", "")
		require.Equal(t, http.StatusForbidden, w.Code, path)
		require.Equal(t, apperr.CodeAdminOnly, gjson.Get(w.Body.String(), "code").String())
		require.False(t, gjson.Get(w.Body.String(), "order_count").Exists())
		require.False(t, gjson.Get(w.Body.String(), "items").Exists())
	}

	w := h.do(http.MethodGet, "/api/v1/admin/stats", "", "")
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAdmin_StatsAndRecent(t *testing.T) {
	h := newHarness()

	w := h.do(http.MethodGet, "/api/v1/admin/stats", "admin-token", "")
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	require.Equal(t, int64(1), gjson.Get(body, "order_count").Int())
	require.Equal(t, "1200", gjson.Get(body, "revenue_sum").String())
	require.Equal(t, int64(7), gjson.Get(body, "product_count").Int())
	require.Equal(t, int64(3), gjson.Get(body, "customer_count").Int())

	w = h.do(http.MethodGet, "/api/v1/admin/orders?lang=am", "admin-token", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "በመጠባበቅ ላይ", gjson.Get(w.Body.String(), "items.0.status_label").String())
}

func TestAdmin_UpdateStatus(t *testing.T) {
	h := newHarness()
	id := h.admin.orders[0].ID

	w := h.do(http.MethodPut, "/api/v1/admin/orders/"+id+"/status", "admin-token", `{"status":"wtf"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status=%d body=%s (expected 400)", w.Code, w.Body.String())
	}
	require.Equal(t, apperr.CodeInvalidStatus, gjson.Get(w.Body.String(), "code").String())

	w = h.do(http.MethodPut, "/api/v1/admin/orders/"+id+"/status", "admin-token", `{"status":"shipped"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.Equal(t, "shipped", gjson.Get(w.Body.String(), "order.status").String())
	require.Equal(t, order.StatusShipped, h.admin.orders[0].Status)

	w = h.do(http.MethodPut, "/api/v1/admin/orders/"+uuid.NewString()+"/status", "admin-token", `{"status":"shipped"}`)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestAdmin_Export(t *testing.T) {
	h := newHarness()

	w := h.do(http.MethodGet, "/api/v1/admin/orders/export", "admin-token", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, admin.ExportContentType, w.Header().Get("Content-Type"))
	require.Contains(t, w.Header().Get("Content-Disposition"), ".xlsx")
	require.NotZero(t, w.Body.Len())
}

func init() {
	gin.SetMode(gin.TestMode)
	gin.DefaultWriter = io.Discard
	log.SetOutput(io.Discard)
}
