package server

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/MikeMC777/storefront/internal/admin"
	"github.com/MikeMC777/storefront/internal/apperr"
	"github.com/MikeMC777/storefront/internal/httpx"
	"github.com/MikeMC777/storefront/internal/i18n"
	"github.com/MikeMC777/storefront/internal/order"
)

// statsHandler godoc
// @Summary  Dashboard figures
// @Tags     admin
// @Produce  json
// @Success  200 {object} admin.Stats
// @Failure  403 {object} map[string]string
// @Security ApiKeyAuth
// @Security BearerAuth
// @Router   /admin/stats [get]
func statsHandler(console Admin) gin.HandlerFunc {
	return func(c *gin.Context) {
		st, err := console.LoadStats(c.Request.Context())
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		c.JSON(http.StatusOK, st)
	}
}

// recentOrdersHandler godoc
// @Summary  Newest orders (10 by default)
// @Tags     admin
// @Produce  json
// @Param    limit  query int false "page size"
// @Param    offset query int false "offset"
// @Success  200 {object} map[string][]order.Order
// @Failure  403 {object} map[string]string
// @Security ApiKeyAuth
// @Security BearerAuth
// @Router   /admin/orders [get]
func recentOrdersHandler(console Admin) gin.HandlerFunc {
	return func(c *gin.Context) {
		var q pageQuery
		if err := c.ShouldBindQuery(&q); err != nil {
			httpx.BadRequest(c, err)
			return
		}
		list, err := console.RecentOrders(c.Request.Context(), q.Limit, q.Offset)
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		l := httpx.LangOf(c)
		type row struct {
			order.Order
			StatusLabel string `json:"status_label"`
		}
		out := make([]row, 0, len(list))
		for _, o := range list {
			out = append(out, row{Order: o, StatusLabel: i18n.StatusLabel(l, string(o.Status))})
		}
		c.JSON(http.StatusOK, gin.H{"items": out})
	}
}

// updateOrderStatusHandler godoc
// @Summary  Change an order's status
// @Tags     admin
// @Accept   json
// @Produce  json
// @Param    id   path string true "order id"
// @Param    body body order.UpdateStatusRequest true "new status"
// @Success  200 {object} map[string]interface{}
// @Failure  400 {object} map[string]string
// @Failure  404 {object} map[string]string
// @Failure  409 {object} map[string]string
// @Security ApiKeyAuth
// @Security BearerAuth
// @Router   /admin/orders/{id}/status [put]
func updateOrderStatusHandler(console Admin) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in order.UpdateStatusRequest
		if err := c.ShouldBindJSON(&in); err != nil {
			httpx.Fail(c, apperr.Wrap(apperr.KindValidation, apperr.CodeInvalidStatus, err))
			return
		}
		o, err := console.UpdateStatus(c.Request.Context(), c.Param("id"), order.Status(in.Status))
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"order":   o,
			"message": i18n.StatusUpdated(httpx.LangOf(c)),
		})
	}
}

// exportOrdersHandler godoc
// @Summary  Download all orders as a spreadsheet
// @Tags     admin
// @Produce  application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success  200 {file} file
// @Security ApiKeyAuth
// @Security BearerAuth
// @Router   /admin/orders/export [get]
func exportOrdersHandler(console Admin) gin.HandlerFunc {
	return func(c *gin.Context) {
		var buf bytes.Buffer
		if err := console.ExportOrders(c.Request.Context(), &buf, httpx.LangOf(c)); err != nil {
			httpx.Fail(c, err)
			return
		}
		name := fmt.Sprintf("orders-%s.xlsx", time.Now().UTC().Format("20060102"))
		c.Header("Content-Disposition", "attachment; filename="+name)
		c.Data(http.StatusOK, admin.ExportContentType, buf.Bytes())
	}
}
