package mocks

import (
	"context"

	"github.com/HarshMishra-Git/MedPath-by-AAS-EduGuide-sub000/domain"
)

// MockCheckout implements domain.Checkout interface for testing
type MockCheckout struct {
	OpenFunc func(ctx context.Context, req domain.CheckoutRequest) (*domain.CheckoutResult, error)
}

// NewMockCheckout creates a new MockCheckout with default behaviors
func NewMockCheckout() *MockCheckout {
	return &MockCheckout{}
}

// Open opens the checkout overlay
func (m *MockCheckout) Open(ctx context.Context, req domain.CheckoutRequest) (*domain.CheckoutResult, error) {
	if m.OpenFunc != nil {
		return m.OpenFunc(ctx, req)
	}
	// Default behavior: user closed the overlay
	return &domain.CheckoutResult{Outcome: domain.CheckoutDismissed}, nil
}

// SucceedWith returns an OpenFunc that completes the checkout with a signature for the requested order
func SucceedWith(paymentID, signature string) func(ctx context.Context, req domain.CheckoutRequest) (*domain.CheckoutResult, error) {
	return func(ctx context.Context, req domain.CheckoutRequest) (*domain.CheckoutResult, error) {
		return &domain.CheckoutResult{
			Outcome: domain.CheckoutSucceeded,
			Signature: &domain.SignatureTriple{
				PaymentID: paymentID,
				OrderID:   req.OrderID,
				Signature: signature,
			},
		}, nil
	}
}

// Compile-time interface compliance verification
var _ domain.Checkout = (*MockCheckout)(nil)
