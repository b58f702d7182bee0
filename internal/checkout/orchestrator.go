// Package checkout drives the order flow: the user fills the shipping
// form, reviews a frozen snapshot of form and cart, then confirms. On
// confirmation the order is handed off to WhatsApp, persisted
// asynchronously, and the cart slot is cleared.
package checkout

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/GlobalTechSoftwareSolution/farmharvesttohome-sub000/internal/cart"
	"github.com/GlobalTechSoftwareSolution/farmharvesttohome-sub000/internal/domain"
	"github.com/GlobalTechSoftwareSolution/farmharvesttohome-sub000/internal/store"
)

// OrderSubmitter persists confirmed orders. Submission is
// fire-and-forget: a failure is logged, never shown as a blocking error.
type OrderSubmitter interface {
	CreateOrder(ctx context.Context, order *domain.Order) error
}

// Notifier turns the confirmed order into the hand-off deep link.
type Notifier interface {
	Handoff(form domain.CheckoutForm, items []domain.CartItem, subtotal, shipping, total float64) string
}

type session struct {
	state domain.CheckoutState
	form  domain.CheckoutForm
}

// Orchestrator owns one checkout session per cart session. It is the
// single writer of checkout state; all transitions go through it.
type Orchestrator struct {
	mu       sync.Mutex
	sessions map[string]*session

	store     store.CartStore
	submitter OrderSubmitter
	notifier  Notifier
	events    store.EventLog // optional
	shipping  cart.ShippingPolicy

	submitTimeout time.Duration
}

func NewOrchestrator(cartStore store.CartStore, submitter OrderSubmitter, notifier Notifier, events store.EventLog, shipping cart.ShippingPolicy) *Orchestrator {
	return &Orchestrator{
		sessions:      make(map[string]*session),
		store:         cartStore,
		submitter:     submitter,
		notifier:      notifier,
		events:        events,
		shipping:      shipping,
		submitTimeout: 15 * time.Second,
	}
}

// Review is the frozen snapshot shown on the confirmation step.
type Review struct {
	Items    []domain.CartItem   `json:"items"`
	Subtotal float64             `json:"subtotal"`
	Shipping float64             `json:"shipping"`
	Total    float64             `json:"total"`
	Form     domain.CheckoutForm `json:"form"`
}

// Confirmation is the result of a successful confirm: the submitted
// order and the WhatsApp link the storefront opens.
type Confirmation struct {
	Order      *domain.Order `json:"order"`
	HandoffURL string        `json:"handoff_url"`
}

func (o *Orchestrator) getSession(sessionID string) *session {
	s, ok := o.sessions[sessionID]
	if !ok {
		s = &session{state: domain.CheckoutStateFilling, form: domain.DefaultCheckoutForm()}
		o.sessions[sessionID] = s
	}
	return s
}

// Snapshot returns the current state and form for the session.
func (o *Orchestrator) Snapshot(sessionID string) (domain.CheckoutState, domain.CheckoutForm) {
	o.mu.Lock()
	defer o.mu.Unlock()

	s := o.getSession(sessionID)
	return s.state, s.form
}

// UpdateForm replaces the form while the user is still filling it.
func (o *Orchestrator) UpdateForm(sessionID string, form domain.CheckoutForm) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	s := o.getSession(sessionID)
	if s.state != domain.CheckoutStateFilling {
		return IllegalTransitionError
	}

	if form.PaymentMethod == "" {
		form.PaymentMethod = domain.PaymentMethodCOD
	}
	s.form = form
	return nil
}

// Review validates the gate into the confirmation step: the cart must
// be non-empty and every required field filled. On violation the
// session stays in FILLING and the caller gets a ValidationError.
func (o *Orchestrator) Review(ctx context.Context, sessionID string) (*Review, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	s := o.getSession(sessionID)
	if !domain.CanTransition(s.state, domain.CheckoutStateConfirming) {
		return nil, IllegalTransitionError
	}

	loaded, err := o.store.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if len(loaded.Items) == 0 {
		return nil, &ValidationError{EmptyCart: true}
	}
	if missing := s.form.MissingFields(); len(missing) > 0 {
		return nil, &ValidationError{MissingFields: missing}
	}

	s.state = domain.CheckoutStateConfirming

	subtotal := cart.Subtotal(loaded.Items)
	shipping := o.shipping.Cost(subtotal)
	return &Review{
		Items:    loaded.Items,
		Subtotal: subtotal,
		Shipping: shipping,
		Total:    subtotal + shipping,
		Form:     s.form,
	}, nil
}

// Cancel returns from the confirmation step to the form. Form and cart
// are untouched.
func (o *Orchestrator) Cancel(sessionID string) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	s := o.getSession(sessionID)
	if s.state != domain.CheckoutStateConfirming {
		return IllegalTransitionError
	}

	s.state = domain.CheckoutStateFilling
	return nil
}

// Confirm finalizes the order. The cart is re-loaded and re-validated:
// if it emptied since the review, the session falls back to FILLING
// instead of submitting an empty order. On success the hand-off link is
// composed, the order is submitted in the background, the cart slot is
// cleared and the form reset.
func (o *Orchestrator) Confirm(ctx context.Context, sessionID string) (*Confirmation, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	s := o.getSession(sessionID)
	if !domain.CanTransition(s.state, domain.CheckoutStateSubmitting) || s.state != domain.CheckoutStateConfirming {
		return nil, IllegalTransitionError
	}

	loaded, err := o.store.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if len(loaded.Items) == 0 {
		s.state = domain.CheckoutStateFilling
		return nil, &ValidationError{EmptyCart: true}
	}

	s.state = domain.CheckoutStateSubmitting

	order := o.buildOrder(s.form, loaded.Items)
	handoff := o.notifier.Handoff(s.form, loaded.Items, order.Subtotal, order.ShippingFee, order.Total)

	o.recordEvent(ctx, order)
	o.submitAsync(order)

	// The slot is cleared on the local hand-off trigger; the remote
	// write's outcome does not gate it.
	if err := o.store.Clear(ctx, sessionID); err != nil {
		log.Printf("failed to clear cart slot for session %s: %v", sessionID, err)
	}

	s.form = domain.DefaultCheckoutForm()
	s.state = domain.CheckoutStateCompleted

	return &Confirmation{Order: order, HandoffURL: handoff}, nil
}

// Reset starts a fresh checkout after a completed one.
func (o *Orchestrator) Reset(sessionID string) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	s := o.getSession(sessionID)
	if !domain.CanTransition(s.state, domain.CheckoutStateFilling) || s.state != domain.CheckoutStateCompleted {
		return IllegalTransitionError
	}

	s.state = domain.CheckoutStateFilling
	s.form = domain.DefaultCheckoutForm()
	return nil
}

func (o *Orchestrator) buildOrder(form domain.CheckoutForm, items []domain.CartItem) *domain.Order {
	orderItems := make([]domain.OrderItem, len(items))
	for i, it := range items {
		orderItems[i] = domain.OrderItem{
			ProductID: it.ProductID,
			Name:      it.Name,
			Size:      it.Size,
			UnitPrice: it.Price,
			Quantity:  it.Quantity,
			Subtotal:  cart.LineSubtotal(it),
		}
	}

	subtotal := cart.Subtotal(items)
	shipping := o.shipping.Cost(subtotal)

	return &domain.Order{
		ID:            uuid.NewString(),
		Items:         orderItems,
		Subtotal:      subtotal,
		ShippingFee:   shipping,
		Total:         subtotal + shipping,
		Status:        domain.OrderStatusPending,
		CustomerName:  form.FullName,
		Phone:         form.Phone,
		Email:         form.Email,
		Address:       form.Address,
		City:          form.City,
		State:         form.State,
		Postcode:      form.Postcode,
		Notes:         form.Notes,
		PaymentMethod: form.PaymentMethod,
		CreatedAt:     time.Now().UTC(),
	}
}

func (o *Orchestrator) recordEvent(ctx context.Context, order *domain.Order) {
	if o.events == nil {
		return
	}

	payload, err := json.Marshal(order)
	if err != nil {
		log.Printf("failed to marshal order event: %v", err)
		return
	}
	if err := o.events.RecordOrderEvent(ctx, payload); err != nil {
		log.Printf("failed to record order event: %v", err)
	}
}

func (o *Orchestrator) submitAsync(order *domain.Order) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), o.submitTimeout)
		defer cancel()
		if err := o.submitter.CreateOrder(ctx, order); err != nil {
			log.Printf("order submission failed for order %s: %v", order.ID, err)
		}
	}()
}
