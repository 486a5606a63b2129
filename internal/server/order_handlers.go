package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/MikeMC777/storefront/internal/apperr"
	"github.com/MikeMC777/storefront/internal/httpx"
	"github.com/MikeMC777/storefront/internal/i18n"
	"github.com/MikeMC777/storefront/internal/order"
)

type pageQuery struct {
	Limit  int `form:"limit"  binding:"omitempty,min=0,max=100"`
	Offset int `form:"offset" binding:"omitempty,min=0"`
}

// placeOrderHandler godoc
// @Summary  Place an order from the cart
// @Tags     orders
// @Accept   json
// @Produce  json
// @Param    Idempotency-Key header string false "repeat-safe checkout key"
// @Param    body body order.ShippingForm true "shipping details"
// @Success  201 {object} map[string]interface{}
// @Failure  400 {object} map[string]string
// @Failure  409 {object} map[string]string
// @Security ApiKeyAuth
// @Security BearerAuth
// @Router   /orders [post]
func placeOrderHandler(orders Orders) gin.HandlerFunc {
	return func(c *gin.Context) {
		var form order.ShippingForm
		if err := c.ShouldBindJSON(&form); err != nil {
			httpx.Fail(c, apperr.Wrap(apperr.KindValidation, apperr.CodeMissingField, err))
			return
		}
		o, err := orders.PlaceOrder(c.Request.Context(), httpx.UserID(c), form, c.GetHeader(httpx.HeaderIdempotencyKey))
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{
			"order":   o,
			"message": i18n.OrderPlaced(httpx.LangOf(c), o.OrderNumber),
		})
	}
}

// listOrdersHandler godoc
// @Summary  Order history, newest first
// @Tags     orders
// @Produce  json
// @Param    limit  query int false "page size (default 20, max 100)"
// @Param    offset query int false "offset"
// @Success  200 {object} map[string][]order.Order
// @Security ApiKeyAuth
// @Security BearerAuth
// @Router   /orders [get]
func listOrdersHandler(orders Orders) gin.HandlerFunc {
	return func(c *gin.Context) {
		var q pageQuery
		if err := c.ShouldBindQuery(&q); err != nil {
			httpx.BadRequest(c, err)
			return
		}
		list, err := orders.ListByUser(c.Request.Context(), httpx.UserID(c), q.Limit, q.Offset)
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"items": list})
	}
}

// getOrderHandler godoc
// @Summary  One of the caller's orders with its items
// @Tags     orders
// @Produce  json
// @Param    id path string true "order id"
// @Success  200 {object} order.Order
// @Failure  404 {object} map[string]string
// @Security ApiKeyAuth
// @Security BearerAuth
// @Router   /orders/{id} [get]
func getOrderHandler(orders Orders) gin.HandlerFunc {
	return func(c *gin.Context) {
		o, err := orders.Get(c.Request.Context(), httpx.UserID(c), c.Param("id"))
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		c.JSON(http.StatusOK, o)
	}
}
