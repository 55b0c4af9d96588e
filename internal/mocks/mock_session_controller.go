package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/HarshMishra-Git/MedPath-by-AAS-EduGuide-sub000/domain"
)

// MockSessionController is a mock implementation of domain.SessionController.
// Account is the snapshot returned by CurrentAccount, State and IsAuthenticated unless the
// matching Func is set.
type MockSessionController struct {
	mu      sync.Mutex
	Account *domain.Account
	Attempt *domain.PaymentAttempt

	StartFunc                func(ctx context.Context) (*domain.Account, error)
	LoginFunc                func(ctx context.Context, identifier, secret string) (*domain.Account, error)
	SignupFunc               func(ctx context.Context, profile domain.SignupProfile) (*domain.Account, error)
	FederatedLoginFunc       func(ctx context.Context, providerToken string) (*domain.Account, error)
	SendVerificationCodeFunc func(ctx context.Context, channel domain.Channel, target string) (*domain.VerificationChallenge, error)
	CooldownRemainingFunc    func(ctx context.Context, channel domain.Channel, target string) time.Duration
	VerifyCodeFunc           func(ctx context.Context, target, code string, channel domain.Channel) (*domain.Account, error)
	RefreshFunc              func(ctx context.Context) (*domain.Account, error)
	LogoutFunc               func(ctx context.Context) error
	PaymentConfigFunc        func(ctx context.Context) (*domain.PaymentConfig, error)
	PaymentStatusFunc        func(ctx context.Context) (*domain.PaymentStatusReport, error)
	PayFunc                  func(ctx context.Context, amountMinor int64) (*domain.PaymentAttempt, error)

	RefreshCalls int
}

// NewMockSessionController creates a controller mock holding account
func NewMockSessionController(account *domain.Account) *MockSessionController {
	return &MockSessionController{Account: account}
}

func (m *MockSessionController) SetAccount(a *domain.Account) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Account = a
}

func (m *MockSessionController) Start(ctx context.Context) (*domain.Account, error) {
	if m.StartFunc != nil {
		return m.StartFunc(ctx)
	}
	return m.CurrentAccount(), nil
}

func (m *MockSessionController) CurrentAccount() *domain.Account {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Account.Clone()
}

func (m *MockSessionController) IsAuthenticated() bool {
	return m.CurrentAccount() != nil
}

func (m *MockSessionController) State() domain.SessionState {
	return domain.StateFor(m.CurrentAccount())
}

func (m *MockSessionController) Login(ctx context.Context, identifier, secret string) (*domain.Account, error) {
	if m.LoginFunc != nil {
		return m.LoginFunc(ctx, identifier, secret)
	}
	// Default behavior: reject
	return nil, domain.NewError(domain.KindInvalidCredentials, "")
}

func (m *MockSessionController) Signup(ctx context.Context, profile domain.SignupProfile) (*domain.Account, error) {
	if m.SignupFunc != nil {
		return m.SignupFunc(ctx, profile)
	}
	return nil, domain.NewError(domain.KindConflict, "")
}

func (m *MockSessionController) FederatedLogin(ctx context.Context, providerToken string) (*domain.Account, error) {
	if m.FederatedLoginFunc != nil {
		return m.FederatedLoginFunc(ctx, providerToken)
	}
	return nil, domain.NewError(domain.KindFederatedAuth, "")
}

func (m *MockSessionController) SendVerificationCode(ctx context.Context, channel domain.Channel, target string) (*domain.VerificationChallenge, error) {
	if m.SendVerificationCodeFunc != nil {
		return m.SendVerificationCodeFunc(ctx, channel, target)
	}
	now := time.Now()
	return &domain.VerificationChallenge{Channel: channel, Target: target, SentAt: now, ResendAfter: now.Add(time.Minute)}, nil
}

func (m *MockSessionController) CooldownRemaining(ctx context.Context, channel domain.Channel, target string) time.Duration {
	if m.CooldownRemainingFunc != nil {
		return m.CooldownRemainingFunc(ctx, channel, target)
	}
	return 0
}

func (m *MockSessionController) VerifyCode(ctx context.Context, target, code string, channel domain.Channel) (*domain.Account, error) {
	if m.VerifyCodeFunc != nil {
		return m.VerifyCodeFunc(ctx, target, code, channel)
	}
	return nil, domain.NewError(domain.KindInvalidCode, "")
}

// Refresh counts calls; by default it returns the held snapshot unchanged
func (m *MockSessionController) Refresh(ctx context.Context) (*domain.Account, error) {
	m.mu.Lock()
	m.RefreshCalls++
	m.mu.Unlock()
	if m.RefreshFunc != nil {
		return m.RefreshFunc(ctx)
	}
	return m.CurrentAccount(), nil
}

func (m *MockSessionController) Logout(ctx context.Context) error {
	if m.LogoutFunc != nil {
		return m.LogoutFunc(ctx)
	}
	m.SetAccount(nil)
	return nil
}

func (m *MockSessionController) PaymentConfig(ctx context.Context) (*domain.PaymentConfig, error) {
	if m.PaymentConfigFunc != nil {
		return m.PaymentConfigFunc(ctx)
	}
	return &domain.PaymentConfig{KeyID: "rzp_test_key", DefaultAmount: 49900, Currency: "INR", CompanyName: "MedPath"}, nil
}

func (m *MockSessionController) PaymentStatus(ctx context.Context) (*domain.PaymentStatusReport, error) {
	if m.PaymentStatusFunc != nil {
		return m.PaymentStatusFunc(ctx)
	}
	return &domain.PaymentStatusReport{}, nil
}

func (m *MockSessionController) Pay(ctx context.Context, amountMinor int64) (*domain.PaymentAttempt, error) {
	if m.PayFunc != nil {
		return m.PayFunc(ctx, amountMinor)
	}
	return nil, domain.NewError(domain.KindServer, "")
}

func (m *MockSessionController) PaymentAttempt() *domain.PaymentAttempt {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Attempt.Clone()
}

func (m *MockSessionController) Subscribe(listener func(domain.SessionEvent)) func() {
	return func() {}
}

func (m *MockSessionController) Refreshes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.RefreshCalls
}

var _ domain.SessionController = (*MockSessionController)(nil)
