package services

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/HarshMishra-Git/MedPath-by-AAS-EduGuide-sub000/domain"
	"github.com/HarshMishra-Git/MedPath-by-AAS-EduGuide-sub000/internal/infrastructure/auth"
	"github.com/HarshMishra-Git/MedPath-by-AAS-EduGuide-sub000/internal/infrastructure/cooldown"
	"github.com/HarshMishra-Git/MedPath-by-AAS-EduGuide-sub000/internal/mocks"
)

var storedPair = domain.TokenPair{AccessToken: "access-1", RefreshToken: "refresh-1"}

func TestSessionController_StartWithoutTokens(t *testing.T) {
	f := newFixture(t)
	var called int32
	f.identity.VerifySessionFunc = func(ctx context.Context) (*domain.Account, error) {
		atomic.AddInt32(&called, 1)
		return nil, nil
	}

	account, err := f.ctrl.Start(context.Background())
	require.NoError(t, err)
	assert.Nil(t, account)
	assert.Equal(t, domain.StateAnonymous, f.ctrl.State())
	assert.Zero(t, atomic.LoadInt32(&called))
}

func TestSessionController_StartRestoresSession(t *testing.T) {
	f := newFixture(t, storedPair)
	f.identity.VerifySessionFunc = func(ctx context.Context) (*domain.Account, error) {
		return activeAccount(), nil
	}

	account, err := f.ctrl.Start(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "u1", account.ID)
	assert.Equal(t, domain.StateAuthenticatedActive, f.ctrl.State())
	assert.True(t, f.ctrl.IsAuthenticated())

	events := f.eventTypes()
	assert.Equal(t, []domain.SessionEventType{domain.RestoredEvent}, events)
	sets, clears := f.tokens.Counts()
	assert.Zero(t, sets, "restoring never rewrites tokens")
	assert.Zero(t, clears)
}

func TestSessionController_ExpiredTokenClearsExactlyOnce(t *testing.T) {
	tests := []struct {
		name  string
		pair  domain.TokenPair
		setup func(f *fixture, calls *int32)
	}{
		{
			name: "server rejects token",
			pair: storedPair,
			setup: func(f *fixture, calls *int32) {
				f.identity.VerifySessionFunc = func(ctx context.Context) (*domain.Account, error) {
					atomic.AddInt32(calls, 1)
					return nil, domain.NewError(domain.KindUnauthenticated, "jwt expired")
				}
			},
		},
		{
			name: "locally expired jwt",
			pair: domain.TokenPair{AccessToken: expiredJWT(t), RefreshToken: "r"},
			setup: func(f *fixture, calls *int32) {
				f.identity.VerifySessionFunc = func(ctx context.Context) (*domain.Account, error) {
					atomic.AddInt32(calls, 1)
					return activeAccount(), nil
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, tt.pair)
			var calls int32
			tt.setup(f, &calls)

			_, err := f.ctrl.Start(context.Background())
			assert.True(t, domain.IsUnauthenticated(err))
			assert.Equal(t, domain.StateAnonymous, f.ctrl.State())

			_, err = f.ctrl.Refresh(context.Background())
			assert.True(t, domain.IsUnauthenticated(err))
			_, err = f.ctrl.Start(context.Background())
			assert.NoError(t, err)

			_, ok := f.tokens.Get()
			assert.False(t, ok)
			_, clears := f.tokens.Counts()
			assert.Equal(t, 1, clears)
			if tt.name == "locally expired jwt" {
				assert.Zero(t, atomic.LoadInt32(&calls), "expired jwt is rejected without a round trip")
			}
		})
	}
}

func TestSessionController_StartKeepsTokensOnNetworkError(t *testing.T) {
	f := newFixture(t, storedPair)
	f.identity.VerifySessionFunc = func(ctx context.Context) (*domain.Account, error) {
		return nil, domain.NewError(domain.KindNetwork, "the server could not be reached")
	}

	_, err := f.ctrl.Start(context.Background())
	assert.ErrorIs(t, err, domain.ErrNetwork)

	pair, ok := f.tokens.Get()
	assert.True(t, ok)
	assert.Equal(t, storedPair, pair)
	assert.Equal(t, domain.StateAnonymous, f.ctrl.State())
}

func TestSessionController_Login(t *testing.T) {
	tests := []struct {
		name       string
		identifier string
		secret     string
		loginFunc  func(ctx context.Context, identifier, secret string) (*domain.AuthResult, error)
		wantErr    error
		wantState  domain.SessionState
		wantCalls  int32
	}{
		{
			name:       "success",
			identifier: " a@example.com ",
			secret:     "s3cret-pass",
			loginFunc: func(ctx context.Context, identifier, secret string) (*domain.AuthResult, error) {
				if identifier != "a@example.com" {
					return nil, errors.New("identifier not trimmed")
				}
				return &domain.AuthResult{Tokens: storedPair, Account: pendingPaymentAccount()}, nil
			},
			wantState: domain.StateAuthenticatedPendingPayment,
			wantCalls: 1,
		},
		{
			name:       "wrong password",
			identifier: "a@example.com",
			secret:     "nope",
			loginFunc: func(ctx context.Context, identifier, secret string) (*domain.AuthResult, error) {
				return nil, domain.NewError(domain.KindInvalidCredentials, "Invalid credentials")
			},
			wantErr:   domain.ErrInvalidCredentials,
			wantState: domain.StateAnonymous,
			wantCalls: 1,
		},
		{
			name:       "missing secret never reaches the server",
			identifier: "a@example.com",
			secret:     "",
			wantErr:    domain.ErrValidation,
			wantState:  domain.StateAnonymous,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			var calls int32
			f.identity.LoginFunc = func(ctx context.Context, identifier, secret string) (*domain.AuthResult, error) {
				atomic.AddInt32(&calls, 1)
				return tt.loginFunc(ctx, identifier, secret)
			}

			account, err := f.ctrl.Login(context.Background(), tt.identifier, tt.secret)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, account)
				sets, _ := f.tokens.Counts()
				assert.Zero(t, sets)
			} else {
				require.NoError(t, err)
				pair, _ := f.tokens.Get()
				assert.Equal(t, storedPair, pair)
				assert.Equal(t, []domain.SessionEventType{domain.SignedInEvent}, f.eventTypes())
			}
			assert.Equal(t, tt.wantState, f.ctrl.State())
			assert.Equal(t, tt.wantCalls, atomic.LoadInt32(&calls))
		})
	}
}

func TestSessionController_SignupConflictCreatesNoTokens(t *testing.T) {
	f := newFixture(t)
	f.identity.SignupFunc = func(ctx context.Context, profile domain.SignupProfile) (*domain.AuthResult, error) {
		return nil, domain.NewError(domain.KindConflict, "Email already registered")
	}

	_, err := f.ctrl.Signup(context.Background(), domain.SignupProfile{FullName: "Asha Rao", Email: "a@example.com", Password: "longenough"})
	assert.ErrorIs(t, err, domain.ErrConflict)
	_, ok := f.tokens.Get()
	assert.False(t, ok)
	sets, _ := f.tokens.Counts()
	assert.Zero(t, sets)
	assert.Empty(t, f.eventTypes())
}

func TestSessionController_SignupValidation(t *testing.T) {
	tests := []struct {
		name    string
		profile domain.SignupProfile
		wantMsg string
	}{
		{"no email or phone", domain.SignupProfile{FullName: "Asha Rao", Password: "longenough"}, "email or phone is required"},
		{"weak password", domain.SignupProfile{FullName: "Asha Rao", Email: "a@example.com", Password: "short"}, "password must be at least 8 characters"},
		{"malformed email", domain.SignupProfile{FullName: "Asha Rao", Email: "not-an-email", Password: "longenough"}, "email is not a valid address"},
		{"missing name", domain.SignupProfile{Email: "a@example.com", Password: "longenough"}, "fullName is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			var calls int32
			f.identity.SignupFunc = func(ctx context.Context, profile domain.SignupProfile) (*domain.AuthResult, error) {
				atomic.AddInt32(&calls, 1)
				return nil, nil
			}

			_, err := f.ctrl.Signup(context.Background(), tt.profile)
			assert.ErrorIs(t, err, domain.ErrValidation)
			assert.Equal(t, tt.wantMsg, domain.UserMessage(err))
			assert.Zero(t, atomic.LoadInt32(&calls))
		})
	}
}

func TestSessionController_FederatedLogin(t *testing.T) {
	f := newFixture(t)
	f.identity.FederatedLoginFunc = func(ctx context.Context, providerToken string) (*domain.AuthResult, error) {
		assert.Equal(t, "id-token", providerToken)
		return &domain.AuthResult{Tokens: storedPair, Account: activeAccount()}, nil
	}

	account, err := f.ctrl.FederatedLogin(context.Background(), "id-token")
	require.NoError(t, err)
	assert.True(t, account.IsActive())

	_, err = f.ctrl.FederatedLogin(context.Background(), "  ")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestSessionController_StaleLoginAfterLogoutIsDiscarded(t *testing.T) {
	f := newFixture(t)
	entered := make(chan struct{})
	release := make(chan struct{})
	f.identity.LoginFunc = func(ctx context.Context, identifier, secret string) (*domain.AuthResult, error) {
		close(entered)
		<-release
		return &domain.AuthResult{Tokens: storedPair, Account: activeAccount()}, nil
	}

	done := make(chan error, 1)
	go func() {
		_, err := f.ctrl.Login(context.Background(), "a@example.com", "pw")
		done <- err
	}()

	<-entered
	assert.Equal(t, domain.StateAuthenticating, f.ctrl.State())
	require.NoError(t, f.ctrl.Logout(context.Background()))
	close(release)

	err := <-done
	assert.ErrorIs(t, err, domain.ErrSuperseded)
	_, ok := f.tokens.Get()
	assert.False(t, ok, "a late login response must not repopulate the store")
	assert.Equal(t, domain.StateAnonymous, f.ctrl.State())
}

func TestSessionController_SendVerificationCodeCooldown(t *testing.T) {
	f := newFixture(t)
	var calls int32
	f.identity.SendVerificationCodeFunc = func(ctx context.Context, channel domain.Channel, target string) error {
		atomic.AddInt32(&calls, 1)
		return nil
	}

	ch, err := f.ctrl.SendVerificationCode(context.Background(), domain.ChannelEmail, "A@Example.com")
	require.NoError(t, err)
	assert.Equal(t, "a@example.com", ch.Target)
	assert.Equal(t, 60*time.Second, ch.ResendAfter.Sub(ch.SentAt))

	f.clock.Advance(15 * time.Second)
	_, err = f.ctrl.SendVerificationCode(context.Background(), domain.ChannelEmail, "a@example.com")
	require.ErrorIs(t, err, domain.ErrRateLimited)
	var de *domain.Error
	require.True(t, errors.As(err, &de))
	assert.Equal(t, 45*time.Second, de.RetryAfter)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "second request rejected before any network call")
	assert.Equal(t, 45*time.Second, f.ctrl.CooldownRemaining(context.Background(), domain.ChannelEmail, "a@example.com"))

	// another channel has its own window
	_, err = f.ctrl.SendVerificationCode(context.Background(), domain.ChannelSMS, "+919800000000")
	require.NoError(t, err)

	f.clock.Advance(45 * time.Second)
	_, err = f.ctrl.SendVerificationCode(context.Background(), domain.ChannelEmail, "a@example.com")
	require.NoError(t, err)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestSessionController_SendVerificationCodeFailureReleasesWindow(t *testing.T) {
	f := newFixture(t)
	fail := true
	f.identity.SendVerificationCodeFunc = func(ctx context.Context, channel domain.Channel, target string) error {
		if fail {
			return domain.NewError(domain.KindNetwork, "")
		}
		return nil
	}

	_, err := f.ctrl.SendVerificationCode(context.Background(), domain.ChannelSMS, "+919800000000")
	assert.ErrorIs(t, err, domain.ErrNetwork)

	fail = false
	_, err = f.ctrl.SendVerificationCode(context.Background(), domain.ChannelSMS, "+919800000000")
	assert.NoError(t, err, "a failed send does not burn the window")

	_, err = f.ctrl.SendVerificationCode(context.Background(), "pigeon", "x")
	assert.ErrorIs(t, err, domain.ErrValidation)
	_, err = f.ctrl.SendVerificationCode(context.Background(), domain.ChannelEmail, "not-an-email")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestSessionController_VerifyCode(t *testing.T) {
	f := newFixture(t, storedPair)
	f.identity.VerifySessionFunc = func(ctx context.Context) (*domain.Account, error) {
		return unverifiedAccount(), nil
	}
	_, err := f.ctrl.Start(context.Background())
	require.NoError(t, err)
	require.Equal(t, domain.StateAuthenticatedUnverified, f.ctrl.State())

	var calls int32
	f.identity.VerifyCodeFunc = func(ctx context.Context, target, code string, channel domain.Channel) (*domain.VerifyCodeResult, error) {
		atomic.AddInt32(&calls, 1)
		if code != "123456" {
			return nil, domain.NewError(domain.KindInvalidCode, "Invalid OTP")
		}
		a := pendingPaymentAccount()
		a.EmailVerified = true
		return &domain.VerifyCodeResult{Account: a, Tokens: domain.TokenPair{AccessToken: "rotated"}}, nil
	}

	_, err = f.ctrl.VerifyCode(context.Background(), "a@example.com", "000000", domain.ChannelEmail)
	assert.ErrorIs(t, err, domain.ErrInvalidCode)
	assert.Equal(t, domain.StateAuthenticatedUnverified, f.ctrl.State(), "a wrong code leaves state unchanged")

	account, err := f.ctrl.VerifyCode(context.Background(), "a@example.com", "123456", domain.ChannelEmail)
	require.NoError(t, err)
	assert.True(t, account.EmailVerified)
	assert.Equal(t, domain.StateAuthenticatedPendingPayment, f.ctrl.State())

	pair, _ := f.tokens.Get()
	assert.Equal(t, domain.TokenPair{AccessToken: "rotated", RefreshToken: "refresh-1"}, pair, "refresh token survives an access-only rotation")

	_, err = f.ctrl.VerifyCode(context.Background(), "a@example.com", "123456", domain.ChannelEmail)
	assert.ErrorIs(t, err, domain.ErrInvalidCode, "no replay")
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls), "replay rejected without a network call")

	assert.Contains(t, f.eventTypes(), domain.VerifiedEvent)
}

func TestSessionController_VerifyCodeWithoutAccountRefreshes(t *testing.T) {
	f := newFixture(t, storedPair)
	f.identity.VerifyCodeFunc = func(ctx context.Context, target, code string, channel domain.Channel) (*domain.VerifyCodeResult, error) {
		return &domain.VerifyCodeResult{}, nil
	}
	f.identity.VerifySessionFunc = func(ctx context.Context) (*domain.Account, error) {
		a := pendingPaymentAccount()
		a.PhoneVerified = true
		return a, nil
	}

	account, err := f.ctrl.VerifyCode(context.Background(), "+919800000000", "4321", domain.ChannelSMS)
	require.NoError(t, err)
	assert.True(t, account.PhoneVerified)
}

func TestSessionController_VerifyCodeOutOfSessionWithoutAccount(t *testing.T) {
	f := newFixture(t)
	f.identity.VerifyCodeFunc = func(ctx context.Context, target, code string, channel domain.Channel) (*domain.VerifyCodeResult, error) {
		return &domain.VerifyCodeResult{}, nil
	}

	account, err := f.ctrl.VerifyCode(context.Background(), "a@example.com", "123456", domain.ChannelEmail)
	assert.Nil(t, account)
	assert.Equal(t, domain.KindServer, domain.KindOf(err))
	assert.Equal(t, domain.StateAnonymous, f.ctrl.State())
}

func TestSessionController_LogoutRevokesTheTokensItClears(t *testing.T) {
	fresh := domain.TokenPair{AccessToken: "access-2", RefreshToken: "refresh-2"}

	for i := 0; i < 200; i++ {
		f := newFixture(t, storedPair)
		f.identity.VerifySessionFunc = func(ctx context.Context) (*domain.Account, error) {
			return activeAccount(), nil
		}
		_, err := f.ctrl.Start(context.Background())
		require.NoError(t, err)

		f.identity.LoginFunc = func(ctx context.Context, identifier, secret string) (*domain.AuthResult, error) {
			return &domain.AuthResult{Tokens: fresh, Account: activeAccount()}, nil
		}
		var (
			mu         sync.Mutex
			logoutWith domain.TokenPair
		)
		f.identity.LogoutFunc = func(ctx context.Context, session domain.TokenPair) error {
			mu.Lock()
			defer mu.Unlock()
			logoutWith = session
			return nil
		}

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, _ = f.ctrl.Login(context.Background(), "a@example.com", "pw")
		}()
		go func() {
			defer wg.Done()
			_ = f.ctrl.Logout(context.Background())
		}()
		wg.Wait()

		mu.Lock()
		sent := logoutWith
		mu.Unlock()
		require.Equal(t, f.tokens.LastCleared(), sent, "iteration %d: server logout must carry the pair cleared locally", i)
	}
}

func TestSessionController_LogoutSurvivesServerFailure(t *testing.T) {
	f := newFixture(t)
	f.identity.LoginFunc = func(ctx context.Context, identifier, secret string) (*domain.AuthResult, error) {
		return &domain.AuthResult{Tokens: storedPair, Account: activeAccount()}, nil
	}
	var logoutWith domain.TokenPair
	f.identity.LogoutFunc = func(ctx context.Context, session domain.TokenPair) error {
		logoutWith = session
		// the store is already empty when the server is called
		_, ok := f.tokens.Get()
		assert.False(t, ok)
		return domain.NewError(domain.KindNetwork, "the server could not be reached")
	}
	var invalidated int32
	f.payments.InvalidateConfigFunc = func() { atomic.AddInt32(&invalidated, 1) }

	_, err := f.ctrl.Login(context.Background(), "a@example.com", "pw")
	require.NoError(t, err)

	require.NoError(t, f.ctrl.Logout(context.Background()))

	_, ok := f.tokens.Get()
	assert.False(t, ok)
	assert.Equal(t, storedPair, logoutWith)
	assert.Nil(t, f.ctrl.CurrentAccount())
	assert.Equal(t, domain.StateAnonymous, f.ctrl.State())
	assert.Equal(t, int32(1), atomic.LoadInt32(&invalidated))
	assert.Equal(t, []domain.SessionEventType{domain.SignedInEvent, domain.SignedOutEvent}, f.eventTypes())
}

func TestSessionController_RefreshAfterSharedStoreCleared(t *testing.T) {
	f := newFixture(t, storedPair)
	f.identity.VerifySessionFunc = func(ctx context.Context) (*domain.Account, error) {
		return activeAccount(), nil
	}
	_, err := f.ctrl.Start(context.Background())
	require.NoError(t, err)

	// another process logged out on the same profile
	f.tokens.Clear()

	_, err = f.ctrl.Refresh(context.Background())
	assert.True(t, domain.IsUnauthenticated(err))
	assert.Equal(t, domain.StateAnonymous, f.ctrl.State())
	_, clears := f.tokens.Counts()
	assert.Equal(t, 1, clears, "the controller does not clear an already empty store")
	assert.Contains(t, f.eventTypes(), domain.DemotedEvent)
}

func TestSessionController_RefreshDetectsSuspension(t *testing.T) {
	f := newFixture(t, storedPair)
	status := domain.AccountActive
	f.identity.VerifySessionFunc = func(ctx context.Context) (*domain.Account, error) {
		a := activeAccount()
		a.AccountStatus = status
		return a, nil
	}
	_, err := f.ctrl.Start(context.Background())
	require.NoError(t, err)

	status = domain.AccountSuspended
	_, err = f.ctrl.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.StateSuspended, f.ctrl.State())
	_, ok := f.tokens.Get()
	assert.True(t, ok, "suspension keeps the token")
	assert.Equal(t, []domain.SessionEventType{domain.RestoredEvent, domain.SuspendedEvent}, f.eventTypes())
}

func TestSessionController_Subscribe(t *testing.T) {
	f := newFixture(t)
	f.identity.LoginFunc = func(ctx context.Context, identifier, secret string) (*domain.AuthResult, error) {
		return &domain.AuthResult{Tokens: storedPair, Account: activeAccount()}, nil
	}

	var got []domain.SessionEvent
	unsubscribe := f.ctrl.Subscribe(func(ev domain.SessionEvent) { got = append(got, ev) })

	_, err := f.ctrl.Login(context.Background(), "a@example.com", "pw")
	require.NoError(t, err)
	unsubscribe()
	unsubscribe()
	require.NoError(t, f.ctrl.Logout(context.Background()))

	require.Len(t, got, 1)
	assert.Equal(t, domain.SignedInEvent, got[0].Type)
	assert.Equal(t, domain.StateAnonymous, got[0].From)
	assert.Equal(t, domain.StateAuthenticatedActive, got[0].To)
	assert.Equal(t, "u1", got[0].AccountID)
}

// fixture wires the controller with mocks and records emitted events

type fixture struct {
	tokens   *mocks.MockTokenStore
	identity *mocks.MockIdentityGateway
	payments *mocks.MockPaymentGateway
	checkout *mocks.MockCheckout
	clock    *testClock
	ctrl     domain.SessionController

	mu     sync.Mutex
	events []domain.SessionEvent
}

type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func newFixture(t *testing.T, pair ...domain.TokenPair) *fixture {
	t.Helper()
	f := &fixture{
		tokens:   mocks.NewMockTokenStore(pair...),
		identity: mocks.NewMockIdentityGateway(),
		payments: mocks.NewMockPaymentGateway(),
		checkout: mocks.NewMockCheckout(),
		clock:    &testClock{t: time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)},
	}
	f.ctrl = NewSessionController(
		f.tokens,
		f.identity,
		f.payments,
		f.checkout,
		cooldown.NewMemoryStore(f.clock.Now),
		auth.NewJWTInspector(),
		SessionConfig{ResendCooldown: 60 * time.Second, CheckoutTimeout: time.Minute},
		zap.NewNop(),
	)
	f.ctrl.Subscribe(func(ev domain.SessionEvent) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.events = append(f.events, ev)
	})
	return f
}

func (f *fixture) eventTypes() []domain.SessionEventType {
	f.mu.Lock()
	defer f.mu.Unlock()
	types := make([]domain.SessionEventType, 0, len(f.events))
	for _, ev := range f.events {
		types = append(types, ev.Type)
	}
	return types
}

func activeAccount() *domain.Account {
	return &domain.Account{
		ID:            "u1",
		Email:         "a@example.com",
		FullName:      "Asha Rao",
		EmailVerified: true,
		AccountStatus: domain.AccountActive,
		PaymentStatus: domain.PaymentCompleted,
		Role:          domain.RoleUser,
	}
}

func pendingPaymentAccount() *domain.Account {
	a := activeAccount()
	a.AccountStatus = domain.AccountPendingPayment
	a.PaymentStatus = domain.PaymentNone
	return a
}

func unverifiedAccount() *domain.Account {
	a := pendingPaymentAccount()
	a.EmailVerified = false
	a.AccountStatus = domain.AccountPendingVerification
	return a
}

func expiredJWT(t *testing.T) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "u1",
		"exp": time.Now().Add(-time.Hour).Unix(),
	}).SignedString([]byte("identity-service-key"))
	require.NoError(t, err)
	return token
}
