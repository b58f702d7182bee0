package domain

// CheckoutState is the checkout session lifecycle. The user fills the
// shipping form, reviews an immutable snapshot, and either cancels back
// to the form or confirms the order. Completed sessions restart with an
// explicit reset.
type CheckoutState string

const (
	CheckoutStateFilling    CheckoutState = "FILLING"
	CheckoutStateConfirming CheckoutState = "CONFIRMING"
	CheckoutStateSubmitting CheckoutState = "SUBMITTING"
	CheckoutStateCompleted  CheckoutState = "COMPLETED"
)

// String representation (for logging)
func (s CheckoutState) String() string {
	return string(s)
}

// CanTransition reports whether moving from one checkout state to
// another is legal.
func CanTransition(from, to CheckoutState) bool {
	switch from {
	case CheckoutStateFilling:
		return to == CheckoutStateConfirming
	case CheckoutStateConfirming:
		// Confirm moves forward, Cancel moves back. A confirm that fails
		// re-validation also falls back to FILLING.
		return to == CheckoutStateSubmitting || to == CheckoutStateFilling
	case CheckoutStateSubmitting:
		return to == CheckoutStateCompleted || to == CheckoutStateFilling
	case CheckoutStateCompleted:
		return to == CheckoutStateFilling
	default:
		return false
	}
}

const PaymentMethodCOD = "cod"

// CheckoutForm holds the shipping and contact details collected before
// an order is confirmed. It is never persisted beyond the session.
type CheckoutForm struct {
	Email         string `json:"email"`
	FullName      string `json:"fullName"`
	Phone         string `json:"phone"`
	Address       string `json:"address"`
	City          string `json:"city"`
	State         string `json:"state"`
	Postcode      string `json:"postcode"`
	Notes         string `json:"notes"`
	PaymentMethod string `json:"paymentMethod"`
}

// DefaultCheckoutForm returns the initial form. Cash on delivery is the
// only supported payment method.
func DefaultCheckoutForm() CheckoutForm {
	return CheckoutForm{PaymentMethod: PaymentMethodCOD}
}

// MissingFields lists the required fields that are still empty. A form
// is submittable only when this is empty.
func (f CheckoutForm) MissingFields() []string {
	var missing []string
	required := []struct {
		name  string
		value string
	}{
		{"fullName", f.FullName},
		{"phone", f.Phone},
		{"address", f.Address},
		{"city", f.City},
		{"postcode", f.Postcode},
	}
	for _, field := range required {
		if field.value == "" {
			missing = append(missing, field.name)
		}
	}
	return missing
}
