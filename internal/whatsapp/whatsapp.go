// Package whatsapp composes the order hand-off message and the deep
// link that opens it in the store's WhatsApp chat. The service never
// waits for delivery; the link is the hand-off.
package whatsapp

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/GlobalTechSoftwareSolution/farmharvesttohome-sub000/internal/domain"
)

// Notifier builds wa.me links targeting the store's business number.
// The number is digits only with country code, e.g. "919876543210".
type Notifier struct {
	phone string
}

func NewNotifier(phone string) *Notifier {
	return &Notifier{phone: phone}
}

// OrderMessage renders a human-readable summary of the confirmed order:
// one line per cart line, totals, then the delivery block.
func OrderMessage(form domain.CheckoutForm, items []domain.CartItem, subtotal, shipping, total float64) string {
	var b strings.Builder

	b.WriteString("*New Order - Farm Harvest To Home*\n\n")
	for _, it := range items {
		fmt.Fprintf(&b, "%s (%s) x%d - Rs.%.2f\n", it.Name, it.Size, it.Quantity, it.Price*float64(it.Quantity))
	}

	fmt.Fprintf(&b, "\nSubtotal: Rs.%.2f\n", subtotal)
	if shipping > 0 {
		fmt.Fprintf(&b, "Shipping: Rs.%.2f\n", shipping)
	} else {
		b.WriteString("Shipping: Free\n")
	}
	fmt.Fprintf(&b, "*Total: Rs.%.2f*\n", total)
	fmt.Fprintf(&b, "Payment: %s\n\n", paymentLabel(form.PaymentMethod))

	fmt.Fprintf(&b, "*Deliver to:*\n%s\n%s\n%s, %s", form.FullName, form.Address, form.City, form.Postcode)
	if form.State != "" {
		fmt.Fprintf(&b, "\n%s", form.State)
	}
	fmt.Fprintf(&b, "\nPhone: %s", form.Phone)
	if form.Notes != "" {
		fmt.Fprintf(&b, "\n\nNotes: %s", form.Notes)
	}

	return b.String()
}

// Link returns the pre-filled chat deep link for the given message.
func (n *Notifier) Link(message string) string {
	return fmt.Sprintf("https://wa.me/%s?text=%s", n.phone, url.QueryEscape(message))
}

// Handoff composes the order summary and wraps it in a deep link.
func (n *Notifier) Handoff(form domain.CheckoutForm, items []domain.CartItem, subtotal, shipping, total float64) string {
	return n.Link(OrderMessage(form, items, subtotal, shipping, total))
}

func paymentLabel(method string) string {
	if method == domain.PaymentMethodCOD {
		return "Cash on Delivery"
	}
	return method
}
