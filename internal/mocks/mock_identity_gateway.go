package mocks

import (
	"context"

	"github.com/HarshMishra-Git/MedPath-by-AAS-EduGuide-sub000/domain"
)

// MockIdentityGateway implements domain.IdentityGateway interface for testing
type MockIdentityGateway struct {
	LoginFunc                func(ctx context.Context, identifier, secret string) (*domain.AuthResult, error)
	SignupFunc               func(ctx context.Context, profile domain.SignupProfile) (*domain.AuthResult, error)
	FederatedLoginFunc       func(ctx context.Context, providerToken string) (*domain.AuthResult, error)
	SendVerificationCodeFunc func(ctx context.Context, channel domain.Channel, target string) error
	VerifyCodeFunc           func(ctx context.Context, target, code string, channel domain.Channel) (*domain.VerifyCodeResult, error)
	VerifySessionFunc        func(ctx context.Context) (*domain.Account, error)
	LogoutFunc               func(ctx context.Context, session domain.TokenPair) error
}

// NewMockIdentityGateway creates a new MockIdentityGateway with default behaviors
func NewMockIdentityGateway() *MockIdentityGateway {
	return &MockIdentityGateway{}
}

// Login authenticates with a password
func (m *MockIdentityGateway) Login(ctx context.Context, identifier, secret string) (*domain.AuthResult, error) {
	if m.LoginFunc != nil {
		return m.LoginFunc(ctx, identifier, secret)
	}
	// Default behavior: reject
	return nil, domain.NewError(domain.KindInvalidCredentials, "")
}

// Signup registers a new account
func (m *MockIdentityGateway) Signup(ctx context.Context, profile domain.SignupProfile) (*domain.AuthResult, error) {
	if m.SignupFunc != nil {
		return m.SignupFunc(ctx, profile)
	}
	// Default behavior: already registered
	return nil, domain.NewError(domain.KindConflict, "")
}

// FederatedLogin exchanges a provider token
func (m *MockIdentityGateway) FederatedLogin(ctx context.Context, providerToken string) (*domain.AuthResult, error) {
	if m.FederatedLoginFunc != nil {
		return m.FederatedLoginFunc(ctx, providerToken)
	}
	// Default behavior: reject
	return nil, domain.NewError(domain.KindFederatedAuth, "")
}

// SendVerificationCode sends a one-time code
func (m *MockIdentityGateway) SendVerificationCode(ctx context.Context, channel domain.Channel, target string) error {
	if m.SendVerificationCodeFunc != nil {
		return m.SendVerificationCodeFunc(ctx, channel, target)
	}
	// Default behavior: sent
	return nil
}

// VerifyCode verifies a one-time code
func (m *MockIdentityGateway) VerifyCode(ctx context.Context, target, code string, channel domain.Channel) (*domain.VerifyCodeResult, error) {
	if m.VerifyCodeFunc != nil {
		return m.VerifyCodeFunc(ctx, target, code, channel)
	}
	// Default behavior: wrong code
	return nil, domain.NewError(domain.KindInvalidCode, "")
}

// VerifySession returns the account for the stored token
func (m *MockIdentityGateway) VerifySession(ctx context.Context) (*domain.Account, error) {
	if m.VerifySessionFunc != nil {
		return m.VerifySessionFunc(ctx)
	}
	// Default behavior: no valid session
	return nil, domain.NewError(domain.KindUnauthenticated, "")
}

// Logout revokes the session
func (m *MockIdentityGateway) Logout(ctx context.Context, session domain.TokenPair) error {
	if m.LogoutFunc != nil {
		return m.LogoutFunc(ctx, session)
	}
	// Default behavior: success
	return nil
}

// Compile-time interface compliance verification
var _ domain.IdentityGateway = (*MockIdentityGateway)(nil)
