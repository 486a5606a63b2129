package admin

import (
	"context"
	"io"

	"github.com/tealeg/xlsx"

	"github.com/MikeMC777/storefront/internal/apperr"
	"github.com/MikeMC777/storefront/internal/i18n"
	"github.com/MikeMC777/storefront/internal/order"
)

const ExportContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var exportHeaders = []string{
	"Order Number", "Status", "Total", "Customer", "Email", "Phone",
	"Address", "City", "Region", "Payment Method", "Payment Status", "Items", "Created At",
}

// ExportOrders writes every order as an .xlsx workbook; status labels use l.
func (c *Console) ExportOrders(ctx context.Context, w io.Writer, l i18n.Lang) error {
	orders, err := c.orders.All(ctx)
	if err != nil {
		return err
	}
	file, err := Workbook(orders, l)
	if err != nil {
		return apperr.Internal("admin.export", err)
	}
	if err := file.Write(w); err != nil {
		return apperr.Internal("admin.export_write", err)
	}
	return nil
}

func Workbook(orders []order.Order, l i18n.Lang) (*xlsx.File, error) {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Orders")
	if err != nil {
		return nil, err
	}

	header := sheet.AddRow()
	for _, h := range exportHeaders {
		header.AddCell().SetValue(h)
	}

	for _, o := range orders {
		row := sheet.AddRow()
		row.AddCell().SetValue(o.OrderNumber)
		row.AddCell().SetValue(i18n.StatusLabel(l, string(o.Status)))
		row.AddCell().SetValue(o.TotalAmount.StringFixed(2))
		row.AddCell().SetValue(o.CustomerName)
		row.AddCell().SetValue(o.CustomerEmail)
		row.AddCell().SetValue(o.CustomerPhone)
		row.AddCell().SetValue(o.ShippingAddress.Address)
		row.AddCell().SetValue(o.ShippingAddress.City)
		row.AddCell().SetValue(o.ShippingAddress.Region)
		row.AddCell().SetValue(string(o.PaymentMethod))
		row.AddCell().SetValue(string(o.PaymentStatus))
		row.AddCell().SetValue(len(o.Items))
		row.AddCell().SetValue(o.CreatedAt.Format("2006-01-02 15:04:05"))
	}
	return file, nil
}
