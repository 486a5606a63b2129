// Package cart keeps a signed-in user's cart in the cart_items table. Every
// mutation is followed by a fresh read so callers always hold the stored state.
package cart

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/MikeMC777/storefront/internal/apperr"
	"github.com/MikeMC777/storefront/internal/catalog"
)

// ProductLookup resolves active products; *catalog.Reader implements it.
type ProductLookup interface {
	ActiveProduct(ctx context.Context, id string) (*catalog.Product, error)
}

type Store struct {
	repo     Repository
	products ProductLookup
}

func NewStore(repo Repository, products ProductLookup) *Store {
	return &Store{repo: repo, products: products}
}

func (s *Store) Snapshot(ctx context.Context, userID string) (Snapshot, error) {
	if userID == "" {
		return Snapshot{}, apperr.Unauthenticated(apperr.CodeSignInRequired)
	}
	items, err := s.repo.List(ctx, userID)
	if err != nil {
		return Snapshot{}, apperr.Internal("cart.list", err)
	}
	return NewSnapshot(items), nil
}

// AddItem adds qty units of a product, merging into an existing line.
func (s *Store) AddItem(ctx context.Context, userID, productID string, qty int) (Snapshot, error) {
	if userID == "" {
		return Snapshot{}, apperr.Unauthenticated(apperr.CodeSignInRequired)
	}
	if qty == 0 {
		qty = 1
	}
	if qty < 0 {
		return Snapshot{}, apperr.Validation(apperr.CodeInvalidInput, "quantity must be at least 1")
	}
	p, err := s.products.ActiveProduct(ctx, productID)
	if err != nil {
		return Snapshot{}, err
	}

	// an existing line ends up as SetQuantity(existing+qty) would leave it,
	// but the increment itself is a single atomic write
	want := qty
	existing, err := s.repo.Find(ctx, userID, productID)
	switch {
	case err == nil:
		want += existing.Quantity
	case !errors.Is(err, ErrNotFound):
		return Snapshot{}, apperr.Internal("cart.find", err)
	}

	if want > p.StockQuantity {
		return Snapshot{}, insufficientStock(productID, want, p.StockQuantity)
	}
	if err := s.repo.Add(ctx, userID, productID, qty); err != nil {
		if errors.Is(err, ErrStockExceeded) {
			return Snapshot{}, insufficientStock(productID, want, p.StockQuantity)
		}
		return Snapshot{}, apperr.Internal("cart.add", err)
	}
	return s.Snapshot(ctx, userID)
}

// SetQuantity replaces the quantity of a line; qty <= 0 removes it.
func (s *Store) SetQuantity(ctx context.Context, userID, productID string, qty int) (Snapshot, error) {
	if userID == "" {
		return Snapshot{}, apperr.Unauthenticated(apperr.CodeSignInRequired)
	}
	if qty <= 0 {
		return s.RemoveItem(ctx, userID, productID)
	}
	if _, err := uuid.Parse(productID); err != nil {
		return Snapshot{}, apperr.NotFound(apperr.CodeCartItemNotFound)
	}

	it, err := s.repo.Find(ctx, userID, productID)
	if errors.Is(err, ErrNotFound) {
		return Snapshot{}, apperr.NotFound(apperr.CodeCartItemNotFound)
	}
	if err != nil {
		return Snapshot{}, apperr.Internal("cart.find", err)
	}
	if !it.Product.IsActive {
		return Snapshot{}, apperr.NotFound(apperr.CodeProductNotFound)
	}
	if qty > it.Product.StockQuantity {
		return Snapshot{}, insufficientStock(productID, qty, it.Product.StockQuantity)
	}

	if err := s.repo.SetQuantity(ctx, userID, productID, qty); err != nil {
		if errors.Is(err, ErrNotFound) {
			return Snapshot{}, apperr.NotFound(apperr.CodeCartItemNotFound)
		}
		return Snapshot{}, apperr.Internal("cart.set_quantity", err)
	}
	return s.Snapshot(ctx, userID)
}

// RemoveItem deletes a line. Removing a line that is not there is not an error.
func (s *Store) RemoveItem(ctx context.Context, userID, productID string) (Snapshot, error) {
	if userID == "" {
		return Snapshot{}, apperr.Unauthenticated(apperr.CodeSignInRequired)
	}
	if _, err := uuid.Parse(productID); err != nil {
		return s.Snapshot(ctx, userID)
	}
	if err := s.repo.Delete(ctx, userID, productID); err != nil {
		return Snapshot{}, apperr.Internal("cart.delete", err)
	}
	return s.Snapshot(ctx, userID)
}

func (s *Store) Clear(ctx context.Context, userID string) (Snapshot, error) {
	if userID == "" {
		return Snapshot{}, apperr.Unauthenticated(apperr.CodeSignInRequired)
	}
	if err := s.repo.Clear(ctx, userID); err != nil {
		return Snapshot{}, apperr.Internal("cart.clear", err)
	}
	return NewSnapshot(nil), nil
}

func insufficientStock(productID string, want, stock int) error {
	return apperr.Errorf(apperr.KindConflict, apperr.CodeInsufficientStock,
		"product %s: %d requested, %d in stock", productID, want, stock)
}
