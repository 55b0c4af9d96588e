package mocks

import (
	"context"
	"time"

	"github.com/HarshMishra-Git/MedPath-by-AAS-EduGuide-sub000/domain"
)

// MockPaymentGateway implements domain.PaymentGateway interface for testing
type MockPaymentGateway struct {
	GetConfigFunc        func(ctx context.Context) (*domain.PaymentConfig, error)
	InvalidateConfigFunc func()
	CreateOrderFunc      func(ctx context.Context, amountMinor int64) (*domain.PaymentOrder, error)
	VerifySignatureFunc  func(ctx context.Context, order *domain.PaymentOrder, sig domain.SignatureTriple) (*domain.VerifyPaymentResult, error)
	QueryStatusFunc      func(ctx context.Context) (*domain.PaymentStatusReport, error)
}

// NewMockPaymentGateway creates a new MockPaymentGateway with default behaviors
func NewMockPaymentGateway() *MockPaymentGateway {
	return &MockPaymentGateway{}
}

// GetConfig returns the checkout config
func (m *MockPaymentGateway) GetConfig(ctx context.Context) (*domain.PaymentConfig, error) {
	if m.GetConfigFunc != nil {
		return m.GetConfigFunc(ctx)
	}
	// Default behavior: test key
	return &domain.PaymentConfig{
		KeyID:         "rzp_test_key",
		DefaultAmount: 49900,
		Currency:      "INR",
		CompanyName:   "MedPath",
	}, nil
}

// InvalidateConfig drops the cached config
func (m *MockPaymentGateway) InvalidateConfig() {
	if m.InvalidateConfigFunc != nil {
		m.InvalidateConfigFunc()
	}
}

// CreateOrder creates an order
func (m *MockPaymentGateway) CreateOrder(ctx context.Context, amountMinor int64) (*domain.PaymentOrder, error) {
	if m.CreateOrderFunc != nil {
		return m.CreateOrderFunc(ctx, amountMinor)
	}
	// Default behavior: fixed order id
	return &domain.PaymentOrder{
		OrderID:   "order_test",
		Amount:    amountMinor,
		Currency:  "INR",
		CreatedAt: time.Now(),
	}, nil
}

// VerifySignature verifies the checkout signature
func (m *MockPaymentGateway) VerifySignature(ctx context.Context, order *domain.PaymentOrder, sig domain.SignatureTriple) (*domain.VerifyPaymentResult, error) {
	if m.VerifySignatureFunc != nil {
		return m.VerifySignatureFunc(ctx, order, sig)
	}
	// Default behavior: verified
	return &domain.VerifyPaymentResult{Success: true}, nil
}

// QueryStatus reports whether the account has paid
func (m *MockPaymentGateway) QueryStatus(ctx context.Context) (*domain.PaymentStatusReport, error) {
	if m.QueryStatusFunc != nil {
		return m.QueryStatusFunc(ctx)
	}
	// Default behavior: unpaid
	return &domain.PaymentStatusReport{HasPaid: false}, nil
}

// Compile-time interface compliance verification
var _ domain.PaymentGateway = (*MockPaymentGateway)(nil)
