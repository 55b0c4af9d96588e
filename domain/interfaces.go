package domain

import (
	"context"
	"time"
)

// TokenReader exposes the stored token pair to the HTTP gateways
type TokenReader interface {
	Get() (TokenPair, bool)
}

// TokenStore persists the token pair across reloads. Operations never fail from the
// caller's point of view; an absent pair is the normal anonymous state.
type TokenStore interface {
	TokenReader
	Set(pair TokenPair)
	Clear()
}

// TokenInspector reads claims from a token without verifying its signature; the client holds no key
type TokenInspector interface {
	// ExpiresAt returns the token's expiry; ok is false for opaque tokens or tokens without exp
	ExpiresAt(token string) (exp time.Time, ok bool)
}

// CooldownStore enforces the local resend window for verification codes
type CooldownStore interface {
	// Acquire starts the window for key; it returns false and the time left when a window is already running
	Acquire(ctx context.Context, key string, window time.Duration) (bool, time.Duration)
	Remaining(ctx context.Context, key string) time.Duration
	Release(ctx context.Context, key string)
}

// IdentityGateway defines the identity service operations
type IdentityGateway interface {
	Login(ctx context.Context, identifier, secret string) (*AuthResult, error)
	Signup(ctx context.Context, profile SignupProfile) (*AuthResult, error)
	FederatedLogin(ctx context.Context, providerToken string) (*AuthResult, error)
	SendVerificationCode(ctx context.Context, channel Channel, target string) error
	VerifyCode(ctx context.Context, target, code string, channel Channel) (*VerifyCodeResult, error)
	VerifySession(ctx context.Context) (*Account, error)
	// Logout notifies the server for the given session; the local store may already be cleared
	Logout(ctx context.Context, session TokenPair) error
}

// PaymentGateway defines the billing service operations
type PaymentGateway interface {
	GetConfig(ctx context.Context) (*PaymentConfig, error)
	InvalidateConfig()
	CreateOrder(ctx context.Context, amountMinor int64) (*PaymentOrder, error)
	VerifySignature(ctx context.Context, order *PaymentOrder, sig SignatureTriple) (*VerifyPaymentResult, error)
	QueryStatus(ctx context.Context) (*PaymentStatusReport, error)
}

// PredictorGateway defines the prediction service operations
type PredictorGateway interface {
	Predict(ctx context.Context, req PredictionRequest) (*PredictionResponse, error)
	FilterOptions(ctx context.Context) (*FilterOptions, error)
}

// Checkout opens the third-party checkout overlay and blocks until it closes.
// A cancelled context resolves as dismissed.
type Checkout interface {
	Open(ctx context.Context, req CheckoutRequest) (*CheckoutResult, error)
}

// SessionController is the single source of truth for the session consumed by guards and UI
type SessionController interface {
	Start(ctx context.Context) (*Account, error)
	CurrentAccount() *Account
	IsAuthenticated() bool
	State() SessionState

	Login(ctx context.Context, identifier, secret string) (*Account, error)
	Signup(ctx context.Context, profile SignupProfile) (*Account, error)
	FederatedLogin(ctx context.Context, providerToken string) (*Account, error)
	SendVerificationCode(ctx context.Context, channel Channel, target string) (*VerificationChallenge, error)
	CooldownRemaining(ctx context.Context, channel Channel, target string) time.Duration
	VerifyCode(ctx context.Context, target, code string, channel Channel) (*Account, error)
	Refresh(ctx context.Context) (*Account, error)
	Logout(ctx context.Context) error

	PaymentConfig(ctx context.Context) (*PaymentConfig, error)
	PaymentStatus(ctx context.Context) (*PaymentStatusReport, error)
	Pay(ctx context.Context, amountMinor int64) (*PaymentAttempt, error)
	PaymentAttempt() *PaymentAttempt

	Subscribe(listener func(SessionEvent)) (unsubscribe func())
}

// AccessController evaluates a navigation against the current account snapshot
type AccessController interface {
	Evaluate(route Route, account *Account) Decision
}
