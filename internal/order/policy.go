package order

import (
	"fmt"

	"github.com/MikeMC777/storefront/internal/apperr"
)

// Policy decides which status changes an admin may make.
type Policy string

const (
	// PolicyPermissive allows any status to follow any other.
	PolicyPermissive Policy = "permissive"
	// PolicyStrict follows the fulfilment lifecycle; delivered and
	// cancelled are terminal.
	PolicyStrict Policy = "strict"
)

var strictNext = map[Status][]Status{
	StatusPending:    {StatusProcessing, StatusCancelled},
	StatusProcessing: {StatusShipped, StatusCancelled},
	StatusShipped:    {StatusDelivered},
}

func ParsePolicy(s string) (Policy, error) {
	switch Policy(s) {
	case "", PolicyPermissive:
		return PolicyPermissive, nil
	case PolicyStrict:
		return PolicyStrict, nil
	}
	return "", fmt.Errorf("unknown order status policy %q", s)
}

// Check reports whether from -> to is allowed. Setting the current status
// again is always allowed.
func (p Policy) Check(from, to Status) error {
	if !to.Valid() {
		return apperr.Errorf(apperr.KindValidation, apperr.CodeInvalidStatus, "unknown status %q", to)
	}
	if from == to || p != PolicyStrict {
		return nil
	}
	for _, next := range strictNext[from] {
		if next == to {
			return nil
		}
	}
	return apperr.Errorf(apperr.KindConflict, apperr.CodeIllegalTransition, "%s -> %s", from, to)
}
