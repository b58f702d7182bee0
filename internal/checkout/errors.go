package checkout

import (
	"errors"
	"fmt"
	"strings"
)

var IllegalTransitionError = errors.New("illegal transition of checkout state")

// ValidationError reports why a checkout could not move forward. It is
// resolved inside the checkout flow; the session stays in FILLING.
type ValidationError struct {
	MissingFields []string
	EmptyCart     bool
}

func (e *ValidationError) Error() string {
	if e.EmptyCart {
		return "cart is empty, nothing to checkout"
	}
	return fmt.Sprintf("missing required fields: %s", strings.Join(e.MissingFields, ", "))
}
