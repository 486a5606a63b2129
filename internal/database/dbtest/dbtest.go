// Package dbtest connects repository tests to a real Postgres. Tests are
// skipped unless STOREFRONT_TEST_DSN is set. Rows are created with fresh
// ids so packages can share one database.
package dbtest

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"

	"github.com/MikeMC777/storefront/internal/database"
)

const EnvDSN = "STOREFRONT_TEST_DSN"

// Open returns a migrated pool closed at the end of the test.
func Open(t testing.TB) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv(EnvDSN)
	if dsn == "" {
		t.Skipf("%s not set", EnvDSN)
	}
	ctx := context.Background()
	pool, err := database.Connect(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	require.NoError(t, database.Migrate(ctx, pool))
	return pool
}

// User inserts an account with a profile and returns its id.
func User(t testing.TB, pool *pgxpool.Pool) string {
	t.Helper()
	id := uuid.NewString()
	ctx := context.Background()
	_, err := pool.Exec(ctx, `INSERT INTO users (id, email, password_hash) VALUES ($1, $2, 'x')`,
		id, id+"@example.com")
	require.NoError(t, err)
	_, err = pool.Exec(ctx, `INSERT INTO user_profiles (id) VALUES ($1)`, id)
	require.NoError(t, err)
	return id
}

// Category inserts a category and returns its id.
func Category(t testing.TB, pool *pgxpool.Pool) string {
	t.Helper()
	var id string
	err := pool.QueryRow(context.Background(), `
		INSERT INTO categories (name, slug) VALUES ('Test', $1) RETURNING id
	`, "cat-"+uuid.NewString()).Scan(&id)
	require.NoError(t, err)
	return id
}

// Product inserts an active product and returns its id. categoryID may be empty.
func Product(t testing.TB, pool *pgxpool.Pool, categoryID, price string, stock int) string {
	t.Helper()
	var cat *string
	if categoryID != "" {
		cat = &categoryID
	}
	slug := "p-" + uuid.NewString()
	var id string
	err := pool.QueryRow(context.Background(), `
		INSERT INTO products (category_id, name, slug, price, stock_quantity)
		VALUES ($1, $2, $2, $3::text::numeric, $4)
		RETURNING id
	`, cat, slug, price, stock).Scan(&id)
	require.NoError(t, err)
	return id
}

// CartLine puts qty units of a product in the user's cart.
func CartLine(t testing.TB, pool *pgxpool.Pool, userID, productID string, qty int) {
	t.Helper()
	_, err := pool.Exec(context.Background(), `
		INSERT INTO cart_items (user_id, product_id, quantity) VALUES ($1, $2, $3)
		ON CONFLICT (user_id, product_id) DO UPDATE SET quantity = EXCLUDED.quantity
	`, userID, productID, qty)
	require.NoError(t, err)
}

func Stock(t testing.TB, pool *pgxpool.Pool, productID string) int {
	t.Helper()
	var n int
	require.NoError(t, pool.QueryRow(context.Background(),
		`SELECT stock_quantity FROM products WHERE id = $1`, productID).Scan(&n))
	return n
}

// CartQuantity sums the quantities in the user's cart.
func CartQuantity(t testing.TB, pool *pgxpool.Pool, userID string) int {
	t.Helper()
	var n int
	require.NoError(t, pool.QueryRow(context.Background(),
		`SELECT COALESCE(SUM(quantity), 0) FROM cart_items WHERE user_id = $1`, userID).Scan(&n))
	return n
}
