// Package order turns carts into orders and tracks their fulfilment status.
package order

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MikeMC777/storefront/internal/apperr"
)

const (
	DefaultPageSize = 20
	maxPageSize     = 100
)

// NewOrderNumber formats ORD-<yyyymmddhhmmss>-<uuid>; the uuid part keeps
// numbers unique when two orders land in the same second.
func NewOrderNumber(now time.Time) string {
	return "ORD-" + now.UTC().Format("20060102150405") + "-" + strings.ToUpper(uuid.NewString())
}

type Service struct {
	repo   Repository
	carts  CartReader
	users  UserValidator
	policy Policy
	pub    Publisher
	stock  func()
	now    func() time.Time
}

func NewService(repo Repository, carts CartReader, users UserValidator, policy Policy) *Service {
	if policy == "" {
		policy = PolicyPermissive
	}
	return &Service{repo: repo, carts: carts, users: users, policy: policy, pub: discard{}, stock: func() {}, now: time.Now}
}

// OnPlaced registers the publisher told about new orders.
func (s *Service) OnPlaced(p Publisher) {
	if p == nil {
		p = discard{}
	}
	s.pub = p
}

// OnStockChanged registers fn, called after a placed order or a status
// change into or out of cancelled has moved product stock.
func (s *Service) OnStockChanged(fn func()) {
	if fn == nil {
		fn = func() {}
	}
	s.stock = fn
}

func (s *Service) Policy() Policy { return s.policy }

// PlaceOrder converts the user's cart into a pending order. A repeated
// idempotency key returns the order created by the first call.
func (s *Service) PlaceOrder(ctx context.Context, userID string, form ShippingForm, idempotencyKey string) (*Order, error) {
	if userID == "" {
		return nil, apperr.Unauthenticated(apperr.CodeSignInRequired)
	}
	ok, err := s.users.ValidateUser(ctx, userID)
	if err != nil {
		return nil, apperr.Internal("order.validate_user", err)
	}
	if !ok {
		return nil, apperr.Unauthenticated(apperr.CodeSignInRequired)
	}

	key := strings.TrimSpace(idempotencyKey)
	if key != "" {
		prev, err := s.repo.FindByIdempotencyKey(ctx, userID, key)
		if err == nil {
			return prev, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return nil, apperr.Internal("order.idempotency", err)
		}
	}

	snap, err := s.carts.Snapshot(ctx, userID)
	if err != nil {
		return nil, err
	}
	if snap.Empty() {
		return nil, apperr.Validation(apperr.CodeCartEmpty, "")
	}

	form = form.Normalize()
	if err := form.Validate(); err != nil {
		return nil, err
	}

	uid := userID
	o := &Order{
		ID:              uuid.NewString(),
		UserID:          &uid,
		OrderNumber:     NewOrderNumber(s.now()),
		Status:          StatusPending,
		CustomerName:    form.FullName,
		CustomerEmail:   form.Email,
		CustomerPhone:   form.Phone,
		ShippingAddress: form.ShippingAddress(),
		PaymentMethod:   form.PaymentMethod,
		PaymentStatus:   PaymentPending,
	}
	if form.Notes != "" {
		o.Notes = &form.Notes
	}
	if key != "" {
		o.IdempotencyKey = &key
	}

	if err := s.repo.Place(ctx, o); err != nil {
		switch {
		case errors.Is(err, ErrEmptyCart):
			return nil, apperr.Validation(apperr.CodeCartEmpty, "")
		case errors.Is(err, ErrInsufficientStock):
			return nil, apperr.Wrap(apperr.KindConflict, apperr.CodeInsufficientStock, err)
		case errors.Is(err, ErrProductUnavailable):
			return nil, apperr.Wrap(apperr.KindNotFound, apperr.CodeProductNotFound, err)
		case errors.Is(err, ErrDuplicateKey):
			prev, ferr := s.repo.FindByIdempotencyKey(ctx, userID, key)
			if ferr != nil {
				return nil, apperr.Internal("order.idempotency", ferr)
			}
			return prev, nil
		}
		return nil, apperr.Internal("order.place", err)
	}

	log.Printf("[order] placed number=%s user=%s total=%s items=%d",
		o.OrderNumber, userID, o.TotalAmount.StringFixed(2), len(o.Items))
	s.stock()
	s.pub.Publish(*o)
	return o, nil
}

// ListByUser returns the user's orders, newest first.
func (s *Service) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Order, error) {
	if userID == "" {
		return nil, apperr.Unauthenticated(apperr.CodeSignInRequired)
	}
	limit, offset = clampPage(limit, offset, DefaultPageSize)
	out, err := s.repo.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, apperr.Internal("order.list_by_user", err)
	}
	return out, nil
}

// Get returns one of the user's orders with its items. Orders of other
// users are reported as not found.
func (s *Service) Get(ctx context.Context, userID, id string) (*Order, error) {
	if userID == "" {
		return nil, apperr.Unauthenticated(apperr.CodeSignInRequired)
	}
	o, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if o.UserID == nil || *o.UserID != userID {
		return nil, apperr.NotFound(apperr.CodeOrderNotFound)
	}
	return o, nil
}

func (s *Service) get(ctx context.Context, id string) (*Order, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, apperr.NotFound(apperr.CodeOrderNotFound)
	}
	o, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil, apperr.NotFound(apperr.CodeOrderNotFound)
	}
	if err != nil {
		return nil, apperr.Internal("order.get", err)
	}
	return o, nil
}

// Recent lists all orders newest first.
func (s *Service) Recent(ctx context.Context, limit, offset int) ([]Order, error) {
	limit, offset = clampPage(limit, offset, DefaultPageSize)
	out, err := s.repo.List(ctx, limit, offset)
	if err != nil {
		return nil, apperr.Internal("order.list", err)
	}
	return out, nil
}

// All returns every order, newest first, in pages of maxPageSize.
func (s *Service) All(ctx context.Context) ([]Order, error) {
	var out []Order
	for offset := 0; ; offset += maxPageSize {
		page, err := s.repo.List(ctx, maxPageSize, offset)
		if err != nil {
			return nil, apperr.Internal("order.list", err)
		}
		out = append(out, page...)
		if len(page) < maxPageSize {
			return out, nil
		}
	}
}

// UpdateStatus applies the configured transition policy and returns the
// order as stored afterwards.
func (s *Service) UpdateStatus(ctx context.Context, id string, status Status) (*Order, error) {
	if !status.Valid() {
		return nil, apperr.Errorf(apperr.KindValidation, apperr.CodeInvalidStatus, "unknown status %q", status)
	}
	if _, err := uuid.Parse(id); err != nil {
		return nil, apperr.NotFound(apperr.CodeOrderNotFound)
	}
	var prev Status
	err := s.repo.UpdateStatus(ctx, id, status, func(from Status) error {
		prev = from
		return s.policy.Check(from, status)
	})
	switch {
	case err == nil:
	case errors.Is(err, ErrNotFound):
		return nil, apperr.NotFound(apperr.CodeOrderNotFound)
	case errors.Is(err, ErrInsufficientStock):
		return nil, apperr.Wrap(apperr.KindConflict, apperr.CodeInsufficientStock, err)
	default:
		return nil, apperr.Internal("order.update_status", err)
	}
	log.Printf("[order] status id=%s from=%s status=%s", id, prev, status)
	if (prev == StatusCancelled) != (status == StatusCancelled) {
		s.stock()
	}
	return s.get(ctx, id)
}

func (s *Service) Count(ctx context.Context) (int, error) {
	n, err := s.repo.Count(ctx)
	if err != nil {
		return 0, apperr.Internal("order.count", err)
	}
	return n, nil
}

// Revenue sums total_amount over all orders.
func (s *Service) Revenue(ctx context.Context) (decimal.Decimal, error) {
	sum, err := s.repo.Revenue(ctx)
	if err != nil {
		return decimal.Zero, apperr.Internal("order.revenue", err)
	}
	return sum, nil
}

func clampPage(limit, offset, def int) (int, int) {
	if limit <= 0 || limit > maxPageSize {
		limit = def
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
