package apperr

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIsMatchesKindAndCode(t *testing.T) {
	err := fmt.Errorf("checkout: %w", Validation(CodeCartEmpty, "no lines"))

	require.ErrorIs(t, err, Validation(CodeCartEmpty, ""))
	require.ErrorIs(t, err, &Error{Kind: KindValidation})
	require.NotErrorIs(t, err, Validation(CodeMissingField, ""))
	require.NotErrorIs(t, err, NotFound(CodeCartEmpty))
}

func TestInternalClassifiesContextErrors(t *testing.T) {
	err := Internal("cart.list", context.DeadlineExceeded)
	require.Equal(t, KindUnavailable, err.Kind)
	require.True(t, err.Transient())

	err = Internal("cart.list", errors.New("boom"))
	require.Equal(t, KindInternal, err.Kind)
	require.False(t, err.Transient())
}

func TestInternalKeepsTypedErrors(t *testing.T) {
	in := Conflict(CodeInsufficientStock, "sku 1")
	require.Same(t, in, Internal("order.create", fmt.Errorf("tx: %w", in)))
	require.Nil(t, Internal("noop", nil))
}

func TestKindAndCodeOfForeignError(t *testing.T) {
	require.Equal(t, KindInternal, KindOf(errors.New("x")))
	require.Equal(t, CodeInternal, CodeOf(errors.New("x")))
	require.Equal(t, KindForbidden, KindOf(Forbidden(CodeAdminOnly)))
	require.Equal(t, CodeAdminOnly, CodeOf(Forbidden(CodeAdminOnly)))
}
