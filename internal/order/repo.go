package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

var (
	ErrNotFound           = errors.New("order not found")
	ErrEmptyCart          = errors.New("cart is empty")
	ErrProductUnavailable = errors.New("product unavailable")
	ErrInsufficientStock  = errors.New("insufficient stock")
	ErrDuplicateKey       = errors.New("idempotency key already used")
)

// StatusGuard vets a status change against the stored status.
type StatusGuard func(from Status) error

type Repository interface {
	// Place turns the user's cart into o inside one transaction: products
	// are locked and re-priced, stock is decremented, the order and its
	// items are inserted and the cart is emptied. o.TotalAmount and o.Items
	// are filled from the database.
	Place(ctx context.Context, o *Order) error
	FindByIdempotencyKey(ctx context.Context, userID, key string) (*Order, error)
	GetByID(ctx context.Context, id string) (*Order, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]Order, error)
	List(ctx context.Context, limit, offset int) ([]Order, error)
	// UpdateStatus changes the status, restocking items when an order is
	// cancelled and reserving them again when it leaves cancelled.
	UpdateStatus(ctx context.Context, id string, to Status, guard StatusGuard) error
	Count(ctx context.Context) (int, error)
	Revenue(ctx context.Context) (decimal.Decimal, error)
}

type PGRepo struct{ db *pgxpool.Pool }

func NewPGRepo(db *pgxpool.Pool) *PGRepo { return &PGRepo{db: db} }

const orderColumns = `
	id, user_id, order_number, status, total_amount::text, customer_name, customer_email,
	customer_phone, shipping_address, payment_method, payment_status, notes, idempotency_key,
	created_at, updated_at`

func scanOrder(row pgx.Row) (*Order, error) {
	var (
		o     Order
		total string
	)
	if err := row.Scan(&o.ID, &o.UserID, &o.OrderNumber, &o.Status, &total, &o.CustomerName,
		&o.CustomerEmail, &o.CustomerPhone, &o.ShippingAddress, &o.PaymentMethod, &o.PaymentStatus,
		&o.Notes, &o.IdempotencyKey, &o.CreatedAt, &o.UpdatedAt); err != nil {
		return nil, err
	}
	var err error
	o.TotalAmount, err = decimal.NewFromString(total)
	return &o, err
}

func collectOrders(rows pgx.Rows) ([]Order, error) {
	defer rows.Close()
	out := []Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *o)
	}
	return out, rows.Err()
}

type cartLine struct {
	productID string
	name      string
	price     decimal.Decimal
	quantity  int
	stock     int
	active    bool
}

func (r *PGRepo) Place(ctx context.Context, o *Order) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	lines, err := lockCart(ctx, tx, *o.UserID)
	if err != nil {
		return err
	}
	if len(lines) == 0 {
		return ErrEmptyCart
	}

	o.TotalAmount = decimal.Zero
	o.Items = o.Items[:0]
	for _, l := range lines {
		if !l.active {
			return fmt.Errorf("%w: %s", ErrProductUnavailable, l.name)
		}
		if l.quantity > l.stock {
			return fmt.Errorf("%w: %s (%d requested, %d left)", ErrInsufficientStock, l.name, l.quantity, l.stock)
		}
		pid := l.productID
		sub := l.price.Mul(decimal.NewFromInt(int64(l.quantity)))
		o.TotalAmount = o.TotalAmount.Add(sub)
		o.Items = append(o.Items, Item{
			ID: uuid.NewString(), OrderID: o.ID, ProductID: &pid,
			ProductName: l.name, ProductPrice: l.price, Quantity: l.quantity, Subtotal: sub,
		})
		if _, err := tx.Exec(ctx, `
			UPDATE products SET stock_quantity = stock_quantity - $2, updated_at = NOW()
			WHERE id = $1
		`, l.productID, l.quantity); err != nil {
			return err
		}
	}

	if err := tx.QueryRow(ctx, `
		INSERT INTO orders (id, user_id, order_number, status, total_amount, customer_name,
			customer_email, customer_phone, shipping_address, payment_method, payment_status,
			notes, idempotency_key, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,NOW(),NOW())
		RETURNING created_at, updated_at
	`, o.ID, o.UserID, o.OrderNumber, o.Status, o.TotalAmount.String(), o.CustomerName,
		o.CustomerEmail, o.CustomerPhone, o.ShippingAddress, o.PaymentMethod, o.PaymentStatus,
		o.Notes, o.IdempotencyKey).Scan(&o.CreatedAt, &o.UpdatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" && pgErr.ConstraintName == "orders_user_id_idempotency_key_key" {
			return ErrDuplicateKey
		}
		return err
	}

	for _, it := range o.Items {
		if _, err := tx.Exec(ctx, `
			INSERT INTO order_items (id, order_id, product_id, product_name, product_price, quantity, subtotal)
			VALUES ($1,$2,$3,$4,$5,$6,$7)
		`, it.ID, o.ID, it.ProductID, it.ProductName, it.ProductPrice.String(), it.Quantity, it.Subtotal.String()); err != nil {
			return err
		}
	}

	if _, err := tx.Exec(ctx, `DELETE FROM cart_items WHERE user_id = $1`, *o.UserID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// lockCart reads the cart joined with live product rows, locking the products.
func lockCart(ctx context.Context, tx pgx.Tx, userID string) ([]cartLine, error) {
	rows, err := tx.Query(ctx, `
		SELECT p.id, p.name, p.price::text, ci.quantity, p.stock_quantity, p.is_active
		FROM cart_items ci
		JOIN products p ON p.id = ci.product_id
		WHERE ci.user_id = $1
		ORDER BY p.id
		FOR UPDATE OF p
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []cartLine
	for rows.Next() {
		var (
			l     cartLine
			price string
		)
		if err := rows.Scan(&l.productID, &l.name, &price, &l.quantity, &l.stock, &l.active); err != nil {
			return nil, err
		}
		if l.price, err = decimal.NewFromString(price); err != nil {
			return nil, err
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

func (r *PGRepo) FindByIdempotencyKey(ctx context.Context, userID, key string) (*Order, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var id string
	err := r.db.QueryRow(ctx, `
		SELECT id FROM orders WHERE user_id = $1 AND idempotency_key = $2
	`, userID, key).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func (r *PGRepo) GetByID(ctx context.Context, id string) (*Order, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	o, err := scanOrder(r.db.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if o.Items, err = r.items(ctx, id); err != nil {
		return nil, err
	}
	return o, nil
}

func (r *PGRepo) items(ctx context.Context, orderID string) ([]Item, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, order_id, product_id, product_name, product_price::text, quantity, subtotal::text
		FROM order_items
		WHERE order_id = $1
		ORDER BY product_name
	`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []Item{}
	for rows.Next() {
		var (
			it         Item
			price, sub string
		)
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.ProductName, &price, &it.Quantity, &sub); err != nil {
			return nil, err
		}
		if it.ProductPrice, err = decimal.NewFromString(price); err != nil {
			return nil, err
		}
		if it.Subtotal, err = decimal.NewFromString(sub); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (r *PGRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Order, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.Query(ctx, `
		SELECT `+orderColumns+`
		FROM orders WHERE user_id = $1
		ORDER BY created_at DESC LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	return collectOrders(rows)
}

func (r *PGRepo) List(ctx context.Context, limit, offset int) ([]Order, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.Query(ctx, `
		SELECT `+orderColumns+`
		FROM orders
		ORDER BY created_at DESC LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, err
	}
	return collectOrders(rows)
}

func (r *PGRepo) UpdateStatus(ctx context.Context, id string, to Status, guard StatusGuard) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var from Status
	err = tx.QueryRow(ctx, `SELECT status FROM orders WHERE id = $1 FOR UPDATE`, id).Scan(&from)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if err := guard(from); err != nil {
		return err
	}

	switch {
	case to == StatusCancelled && from != StatusCancelled:
		if _, err := tx.Exec(ctx, `
			UPDATE products p
			SET stock_quantity = p.stock_quantity + oi.quantity, updated_at = NOW()
			FROM order_items oi
			WHERE oi.order_id = $1 AND oi.product_id = p.id
		`, id); err != nil {
			return err
		}
	case from == StatusCancelled && to != StatusCancelled:
		if err := reserve(ctx, tx, id); err != nil {
			return err
		}
	}

	if _, err := tx.Exec(ctx, `
		UPDATE orders SET status = $2, updated_at = NOW() WHERE id = $1
	`, id, to); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// reserve takes the items of a revived order out of stock again.
func reserve(ctx context.Context, tx pgx.Tx, orderID string) error {
	rows, err := tx.Query(ctx, `
		SELECT product_id, product_name, quantity FROM order_items
		WHERE order_id = $1 AND product_id IS NOT NULL
	`, orderID)
	if err != nil {
		return err
	}
	type line struct {
		productID, name string
		qty             int
	}
	var lines []line
	for rows.Next() {
		var l line
		if err := rows.Scan(&l.productID, &l.name, &l.qty); err != nil {
			rows.Close()
			return err
		}
		lines = append(lines, l)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	for _, l := range lines {
		tag, err := tx.Exec(ctx, `
			UPDATE products SET stock_quantity = stock_quantity - $2, updated_at = NOW()
			WHERE id = $1 AND stock_quantity >= $2
		`, l.productID, l.qty)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("%w: %s", ErrInsufficientStock, l.name)
		}
	}
	return nil
}

func (r *PGRepo) Count(ctx context.Context) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var n int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM orders`).Scan(&n)
	return n, err
}

func (r *PGRepo) Revenue(ctx context.Context) (decimal.Decimal, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var sum string
	if err := r.db.QueryRow(ctx, `SELECT COALESCE(SUM(total_amount), 0)::text FROM orders`).Scan(&sum); err != nil {
		return decimal.Zero, err
	}
	return decimal.NewFromString(sum)
}
