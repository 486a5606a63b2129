package order

import (
	"strings"

	"github.com/samber/lo"

	"github.com/MikeMC777/storefront/internal/apperr"
	"github.com/MikeMC777/storefront/internal/identity"
)

// ShippingForm payload of checkout. Items and totals come from the stored
// cart, never from the client.
// swagger:model ShippingForm
type ShippingForm struct {
	FullName      string        `json:"full_name"      binding:"required" example:"Abebe Kebede"`
	Email         string        `json:"email"          binding:"required,email" example:"abebe@example.com"`
	Phone         string        `json:"phone"          binding:"required" example:"+251911000000"`
	Address       string        `json:"address"        binding:"required" example:"Bole Road 12"`
	City          string        `json:"city"           binding:"required" example:"Addis Ababa"`
	Region        string        `json:"region"         example:"Addis Ababa"`
	PaymentMethod PaymentMethod `json:"payment_method" example:"cash_on_delivery"`
	Notes         string        `json:"notes"          example:"Call before delivery"`
}

// Normalize trims the form and defaults the payment method.
func (f ShippingForm) Normalize() ShippingForm {
	f.FullName = strings.TrimSpace(f.FullName)
	f.Email = strings.TrimSpace(f.Email)
	f.Phone = strings.TrimSpace(f.Phone)
	f.Address = strings.TrimSpace(f.Address)
	f.City = strings.TrimSpace(f.City)
	f.Region = strings.TrimSpace(f.Region)
	f.Notes = strings.TrimSpace(f.Notes)
	if f.PaymentMethod == "" {
		f.PaymentMethod = PaymentCashOnDelivery
	}
	return f
}

func (f ShippingForm) Validate() error {
	missing := lo.Filter([]lo.Tuple2[string, string]{
		lo.T2("full_name", f.FullName),
		lo.T2("email", f.Email),
		lo.T2("phone", f.Phone),
		lo.T2("address", f.Address),
		lo.T2("city", f.City),
	}, func(t lo.Tuple2[string, string], _ int) bool { return t.B == "" })
	if len(missing) > 0 {
		names := lo.Map(missing, func(t lo.Tuple2[string, string], _ int) string { return t.A })
		return apperr.Validation(apperr.CodeMissingField, strings.Join(names, ","))
	}
	if !lo.Contains(PaymentMethods, f.PaymentMethod) {
		return apperr.Errorf(apperr.KindValidation, apperr.CodeInvalidInput, "unknown payment method %q", f.PaymentMethod)
	}
	return nil
}

func (f ShippingForm) ShippingAddress() identity.Address {
	return identity.Address{Address: f.Address, City: f.City, Region: f.Region}
}

// UpdateStatusRequest payload of an admin status change.
// swagger:model UpdateStatusRequest
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required,order_status" example:"processing"`
}
