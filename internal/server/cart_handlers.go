package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/MikeMC777/storefront/internal/cart"
	"github.com/MikeMC777/storefront/internal/httpx"
)

func renderCart(c *gin.Context, snap cart.Snapshot, err error) {
	if err != nil {
		httpx.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

// getCartHandler godoc
// @Summary  Current cart with totals
// @Tags     cart
// @Produce  json
// @Success  200 {object} cart.Snapshot
// @Failure  401 {object} map[string]string
// @Security ApiKeyAuth
// @Security BearerAuth
// @Router   /cart [get]
func getCartHandler(store Cart) gin.HandlerFunc {
	return func(c *gin.Context) {
		snap, err := store.Snapshot(c.Request.Context(), httpx.UserID(c))
		renderCart(c, snap, err)
	}
}

// clearCartHandler godoc
// @Summary  Empty the cart
// @Tags     cart
// @Produce  json
// @Success  200 {object} cart.Snapshot
// @Security ApiKeyAuth
// @Security BearerAuth
// @Router   /cart [delete]
func clearCartHandler(store Cart) gin.HandlerFunc {
	return func(c *gin.Context) {
		snap, err := store.Clear(c.Request.Context(), httpx.UserID(c))
		renderCart(c, snap, err)
	}
}

// addCartItemHandler godoc
// @Summary  Add a product to the cart
// @Tags     cart
// @Accept   json
// @Produce  json
// @Param    body body cart.AddItemRequest true "product and quantity"
// @Success  200 {object} cart.Snapshot
// @Failure  404 {object} map[string]string
// @Failure  409 {object} map[string]string
// @Security ApiKeyAuth
// @Security BearerAuth
// @Router   /cart/items [post]
func addCartItemHandler(store Cart) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in cart.AddItemRequest
		if err := c.ShouldBindJSON(&in); err != nil {
			httpx.BadRequest(c, err)
			return
		}
		snap, err := store.AddItem(c.Request.Context(), httpx.UserID(c), in.ProductID, in.Quantity)
		renderCart(c, snap, err)
	}
}

// setCartItemHandler godoc
// @Summary  Change the quantity of a line (0 removes it)
// @Tags     cart
// @Accept   json
// @Produce  json
// @Param    product_id path string true "product id"
// @Param    body body cart.SetQuantityRequest true "quantity"
// @Success  200 {object} cart.Snapshot
// @Security ApiKeyAuth
// @Security BearerAuth
// @Router   /cart/items/{product_id} [put]
func setCartItemHandler(store Cart) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in cart.SetQuantityRequest
		if err := c.ShouldBindJSON(&in); err != nil {
			httpx.BadRequest(c, err)
			return
		}
		snap, err := store.SetQuantity(c.Request.Context(), httpx.UserID(c), c.Param("product_id"), in.Quantity)
		renderCart(c, snap, err)
	}
}

// removeCartItemHandler godoc
// @Summary  Remove a line
// @Tags     cart
// @Produce  json
// @Param    product_id path string true "product id"
// @Success  200 {object} cart.Snapshot
// @Security ApiKeyAuth
// @Security BearerAuth
// @Router   /cart/items/{product_id} [delete]
func removeCartItemHandler(store Cart) gin.HandlerFunc {
	return func(c *gin.Context) {
		snap, err := store.RemoveItem(c.Request.Context(), httpx.UserID(c), c.Param("product_id"))
		renderCart(c, snap, err)
	}
}
