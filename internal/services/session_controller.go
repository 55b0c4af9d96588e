package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/HarshMishra-Git/MedPath-by-AAS-EduGuide-sub000/domain"
)

// SessionConfig tunes the session controller
type SessionConfig struct {
	ResendCooldown  time.Duration
	DefaultAmount   int64
	CheckoutTimeout time.Duration
}

// SessionControllerImpl implements domain.SessionController. It owns the account snapshot
// and is the only writer of the token store.
//
// Every clear and every new authentication bumps generation; a request that started under
// an older generation has its result discarded, so a token clear always wins over a late
// response.
type SessionControllerImpl struct {
	tokens    domain.TokenStore
	identity  domain.IdentityGateway
	payments  domain.PaymentGateway
	checkout  domain.Checkout
	cooldowns domain.CooldownStore
	inspector domain.TokenInspector
	validate  *validator.Validate
	config    SessionConfig
	logger    *zap.Logger
	now       func() time.Time

	mu             sync.Mutex
	account        *domain.Account
	generation     uint64
	authenticating int
	attempt        *domain.PaymentAttempt
	paying         bool
	cancelCheckout context.CancelFunc
	consumed       map[string]struct{}
	listeners      map[uint64]func(domain.SessionEvent)
	nextListener   uint64
}

// NewSessionController creates a new session controller
func NewSessionController(
	tokens domain.TokenStore,
	identity domain.IdentityGateway,
	payments domain.PaymentGateway,
	checkout domain.Checkout,
	cooldowns domain.CooldownStore,
	inspector domain.TokenInspector,
	config SessionConfig,
	logger *zap.Logger,
) domain.SessionController {
	return &SessionControllerImpl{
		tokens:    tokens,
		identity:  identity,
		payments:  payments,
		checkout:  checkout,
		cooldowns: cooldowns,
		inspector: inspector,
		validate:  validator.New(),
		config:    config,
		logger:    logger,
		now:       time.Now,
		consumed:  make(map[string]struct{}),
		listeners: make(map[uint64]func(domain.SessionEvent)),
	}
}

// codeTarget is the local shape of a send-code request
type codeTarget struct {
	Channel domain.Channel `validate:"required,oneof=email sms"`
	Target  string         `validate:"required,max=254"`
}

// Start restores the session from stored tokens. Without tokens it returns (nil, nil).
func (s *SessionControllerImpl) Start(ctx context.Context) (*domain.Account, error) {
	if _, ok := s.tokens.Get(); !ok {
		s.logger.Info("no stored session")
		return nil, nil
	}
	account, err := s.refresh(ctx, true)
	if err != nil {
		s.logger.Info("stored session not restored", zap.String("kind", string(domain.KindOf(err))))
		return nil, err
	}
	return account, nil
}

// CurrentAccount returns a copy of the account snapshot, nil when anonymous
func (s *SessionControllerImpl) CurrentAccount() *domain.Account {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.account.Clone()
}

// IsAuthenticated implements domain.SessionController
func (s *SessionControllerImpl) IsAuthenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.account != nil
}

// State derives the session state from the snapshot
func (s *SessionControllerImpl) State() domain.SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked()
}

func (s *SessionControllerImpl) stateLocked() domain.SessionState {
	if s.account == nil && s.authenticating > 0 {
		return domain.StateAuthenticating
	}
	return domain.StateFor(s.account)
}

// Login implements domain.SessionController
func (s *SessionControllerImpl) Login(ctx context.Context, identifier, secret string) (*domain.Account, error) {
	creds := domain.Credentials{Identifier: strings.TrimSpace(identifier), Secret: secret}
	if err := s.validateInput(creds); err != nil {
		return nil, err
	}
	return s.authenticate(ctx, "password", func(ctx context.Context) (*domain.AuthResult, error) {
		return s.identity.Login(ctx, creds.Identifier, creds.Secret)
	})
}

// Signup implements domain.SessionController. Either email or phone must be given.
func (s *SessionControllerImpl) Signup(ctx context.Context, profile domain.SignupProfile) (*domain.Account, error) {
	profile.FullName = strings.TrimSpace(profile.FullName)
	profile.Email = strings.TrimSpace(profile.Email)
	profile.Phone = strings.TrimSpace(profile.Phone)
	if profile.Email == "" && profile.Phone == "" {
		return nil, domain.NewError(domain.KindValidation, "email or phone is required")
	}
	if err := s.validateInput(profile); err != nil {
		return nil, err
	}
	return s.authenticate(ctx, "signup", func(ctx context.Context) (*domain.AuthResult, error) {
		return s.identity.Signup(ctx, profile)
	})
}

// FederatedLogin implements domain.SessionController
func (s *SessionControllerImpl) FederatedLogin(ctx context.Context, providerToken string) (*domain.Account, error) {
	providerToken = strings.TrimSpace(providerToken)
	if providerToken == "" {
		return nil, domain.NewError(domain.KindValidation, "provider token is required")
	}
	return s.authenticate(ctx, "federated", func(ctx context.Context) (*domain.AuthResult, error) {
		return s.identity.FederatedLogin(ctx, providerToken)
	})
}

func (s *SessionControllerImpl) authenticate(ctx context.Context, method string, call func(context.Context) (*domain.AuthResult, error)) (*domain.Account, error) {
	s.mu.Lock()
	gen := s.bumpLocked()
	s.authenticating++
	s.mu.Unlock()

	res, err := call(ctx)

	s.mu.Lock()
	s.authenticating--
	if gen != s.generation {
		s.mu.Unlock()
		s.logger.Info("authentication result discarded", zap.String("method", method))
		return nil, superseded()
	}
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	if res == nil || res.Account == nil || res.Tokens.IsZero() {
		s.mu.Unlock()
		return nil, domain.NewError(domain.KindServer, "incomplete authentication response")
	}

	from := domain.StateFor(s.account)
	s.account = res.Account.Clone()
	s.tokens.Set(res.Tokens)
	to := domain.StateFor(s.account)
	ev := domain.NewSessionEvent(domain.SignedInEvent, from, to).
		WithAccount(s.account).
		WithMetadata("method", method)
	account := s.account.Clone()
	s.mu.Unlock()

	s.emit(ev)
	return account, nil
}

// SendVerificationCode starts a resend window before calling the identity service, so a
// second request inside the window never reaches the network.
func (s *SessionControllerImpl) SendVerificationCode(ctx context.Context, channel domain.Channel, target string) (*domain.VerificationChallenge, error) {
	req := codeTarget{Channel: channel, Target: normalizeTarget(target)}
	if err := s.validateInput(req); err != nil {
		return nil, err
	}
	if channel == domain.ChannelEmail {
		if err := s.validate.Var(req.Target, "email"); err != nil {
			return nil, domain.WrapError(domain.KindValidation, "email is not a valid address", err)
		}
	}

	key := cooldownKey(channel, req.Target)
	if s.config.ResendCooldown > 0 {
		if ok, remaining := s.cooldowns.Acquire(ctx, key, s.config.ResendCooldown); !ok {
			return nil, &domain.Error{
				Kind:       domain.KindRateLimited,
				Message:    fmt.Sprintf("please wait %d seconds before requesting a new code", ceilSeconds(remaining)),
				RetryAfter: remaining,
			}
		}
	}

	gen := s.currentGeneration()
	sentAt := s.now()
	if err := s.identity.SendVerificationCode(ctx, channel, req.Target); err != nil {
		if domain.KindOf(err) != domain.KindRateLimited && s.config.ResendCooldown > 0 {
			s.cooldowns.Release(ctx, key)
		}
		return nil, s.fail(gen, err)
	}

	s.logger.Info("verification code sent", zap.String("channel", string(channel)))
	return &domain.VerificationChallenge{
		Channel:     channel,
		Target:      req.Target,
		SentAt:      sentAt,
		ResendAfter: sentAt.Add(s.config.ResendCooldown),
	}, nil
}

// CooldownRemaining returns how long until a new code may be requested
func (s *SessionControllerImpl) CooldownRemaining(ctx context.Context, channel domain.Channel, target string) time.Duration {
	return s.cooldowns.Remaining(ctx, cooldownKey(channel, normalizeTarget(target)))
}

// VerifyCode implements domain.SessionController. A code accepted once is rejected locally afterwards.
func (s *SessionControllerImpl) VerifyCode(ctx context.Context, target, code string, channel domain.Channel) (*domain.Account, error) {
	req := domain.CodeVerification{Channel: channel, Target: normalizeTarget(target), Code: strings.TrimSpace(code)}
	if err := s.validateInput(req); err != nil {
		return nil, err
	}
	usedKey := cooldownKey(channel, req.Target) + ":" + req.Code

	s.mu.Lock()
	if _, used := s.consumed[usedKey]; used {
		s.mu.Unlock()
		return nil, domain.NewError(domain.KindInvalidCode, "this code has already been used")
	}
	gen := s.generation
	s.mu.Unlock()

	res, err := s.identity.VerifyCode(ctx, req.Target, req.Code, channel)
	if err != nil {
		return nil, s.fail(gen, err)
	}

	s.mu.Lock()
	s.consumed[usedKey] = struct{}{}
	if gen != s.generation {
		s.mu.Unlock()
		return nil, superseded()
	}

	current, hasTokens := s.tokens.Get()
	if !res.Tokens.IsZero() {
		rotated := domain.TokenPair{AccessToken: res.Tokens.AccessToken, RefreshToken: current.RefreshToken}
		if res.Tokens.RefreshToken != "" {
			rotated.RefreshToken = res.Tokens.RefreshToken
		}
		current, hasTokens = rotated, true
	}
	if !hasTokens {
		// verified out of session; nothing to attach the account to
		s.mu.Unlock()
		if res.Account == nil {
			return nil, domain.NewError(domain.KindServer, "verification returned no account")
		}
		return res.Account.Clone(), nil
	}

	if res.Account == nil {
		if !res.Tokens.IsZero() {
			s.tokens.Set(current)
		}
		s.mu.Unlock()
		return s.Refresh(ctx)
	}

	prev := s.account
	s.account = res.Account.Clone()
	if !res.Tokens.IsZero() {
		s.tokens.Set(current)
	}
	ev := s.snapshotEvent(domain.VerifiedEvent, prev, s.account).
		WithMetadata("channel", string(channel))
	account := s.account.Clone()
	s.mu.Unlock()

	s.emit(ev)
	return account, nil
}

// Refresh re-reads the account from the identity service
func (s *SessionControllerImpl) Refresh(ctx context.Context) (*domain.Account, error) {
	return s.refresh(ctx, false)
}

func (s *SessionControllerImpl) refresh(ctx context.Context, restoring bool) (*domain.Account, error) {
	gen := s.currentGeneration()
	pair, ok := s.tokens.Get()

	s.mu.Lock()
	if gen != s.generation {
		s.mu.Unlock()
		return nil, superseded()
	}
	if !ok {
		// another process cleared the shared store; the store is already empty
		ev := s.dropSnapshotLocked(errors.New("token store is empty"))
		s.mu.Unlock()
		s.emit(ev)
		return nil, domain.NewError(domain.KindUnauthenticated, "no active session")
	}
	if restoring {
		s.authenticating++
		defer func() {
			s.mu.Lock()
			s.authenticating--
			s.mu.Unlock()
		}()
	}
	s.mu.Unlock()

	if exp, ok := s.inspector.ExpiresAt(pair.AccessToken); ok && !s.now().Before(exp) {
		return nil, s.fail(gen, domain.NewError(domain.KindUnauthenticated, "session expired"))
	}

	account, err := s.identity.VerifySession(ctx)
	if err != nil {
		return nil, s.fail(gen, err)
	}

	s.mu.Lock()
	if gen != s.generation {
		s.mu.Unlock()
		return nil, superseded()
	}
	prev := s.account
	s.account = account.Clone()
	eventType := domain.RefreshedEvent
	if restoring {
		eventType = domain.RestoredEvent
	}
	ev := s.snapshotEvent(eventType, prev, s.account)
	result := s.account.Clone()
	s.mu.Unlock()

	s.emit(ev)
	return result, nil
}

// Logout clears the local session first and then notifies the server best-effort; it never fails
func (s *SessionControllerImpl) Logout(ctx context.Context) error {
	s.mu.Lock()
	// read under mu: logins commit their tokens under mu too
	pair, hadTokens := s.tokens.Get()
	from := domain.StateFor(s.account)
	prev := s.account
	s.account = nil
	s.attempt = nil
	s.consumed = make(map[string]struct{})
	s.bumpLocked()
	s.tokens.Clear()
	s.mu.Unlock()

	s.payments.InvalidateConfig()
	if prev != nil || hadTokens {
		s.emit(domain.NewSessionEvent(domain.SignedOutEvent, from, domain.StateAnonymous).WithAccount(prev))
	}

	if hadTokens {
		if err := s.identity.Logout(ctx, pair); err != nil {
			s.logger.Warn("server logout failed, local session already cleared", zap.Error(err))
		}
	}
	return nil
}

// PaymentConfig returns the billing service's checkout config
func (s *SessionControllerImpl) PaymentConfig(ctx context.Context) (*domain.PaymentConfig, error) {
	gen := s.currentGeneration()
	cfg, err := s.payments.GetConfig(ctx)
	if err != nil {
		return nil, s.fail(gen, err)
	}
	return cfg, nil
}

// PaymentStatus polls the billing service
func (s *SessionControllerImpl) PaymentStatus(ctx context.Context) (*domain.PaymentStatusReport, error) {
	gen := s.currentGeneration()
	report, err := s.payments.QueryStatus(ctx)
	if err != nil {
		return nil, s.fail(gen, err)
	}
	return report, nil
}

// PaymentAttempt returns a copy of the current or last payment attempt
func (s *SessionControllerImpl) PaymentAttempt() *domain.PaymentAttempt {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.attempt.Clone()
}

// Subscribe registers a listener called after every session change
func (s *SessionControllerImpl) Subscribe(listener func(domain.SessionEvent)) func() {
	s.mu.Lock()
	id := s.nextListener
	s.nextListener++
	s.listeners[id] = listener
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.listeners, id)
			s.mu.Unlock()
		})
	}
}

// fail applies the forced-logout rule: Unauthenticated demotes the session, unless a more
// recent action already replaced it. Other kinds leave state unchanged.
func (s *SessionControllerImpl) fail(gen uint64, err error) error {
	if !domain.IsUnauthenticated(err) {
		return err
	}
	s.mu.Lock()
	ev := s.demoteLocked(gen, err)
	s.mu.Unlock()
	s.emit(ev)
	return err
}

func (s *SessionControllerImpl) demoteLocked(gen uint64, cause error) *domain.SessionEvent {
	if gen != s.generation {
		return nil
	}
	from := domain.StateFor(s.account)
	prev := s.account
	s.account = nil
	s.bumpLocked()
	s.tokens.Clear()
	s.logger.Info("session demoted", zap.String("from", string(from)), zap.Error(cause))
	return domain.NewSessionEvent(domain.DemotedEvent, from, domain.StateAnonymous).
		WithAccount(prev).
		WithError(cause)
}

func (s *SessionControllerImpl) dropSnapshotLocked(cause error) *domain.SessionEvent {
	if s.account == nil {
		return nil
	}
	from := domain.StateFor(s.account)
	prev := s.account
	s.account = nil
	s.bumpLocked()
	return domain.NewSessionEvent(domain.DemotedEvent, from, domain.StateAnonymous).
		WithAccount(prev).
		WithError(cause)
}

// bumpLocked starts a new generation and abandons any open checkout
func (s *SessionControllerImpl) bumpLocked() uint64 {
	s.generation++
	if s.cancelCheckout != nil {
		s.cancelCheckout()
		s.cancelCheckout = nil
	}
	return s.generation
}

func (s *SessionControllerImpl) currentGeneration() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation
}

// snapshotEvent picks the most specific event for a snapshot change
func (s *SessionControllerImpl) snapshotEvent(fallback domain.SessionEventType, prev, next *domain.Account) *domain.SessionEvent {
	from, to := domain.StateFor(prev), domain.StateFor(next)
	eventType := fallback
	if fallback != domain.RestoredEvent && from != to {
		switch {
		case to == domain.StateAuthenticatedActive:
			eventType = domain.ActivatedEvent
		case to == domain.StateSuspended:
			eventType = domain.SuspendedEvent
		case from == domain.StateAuthenticatedUnverified:
			eventType = domain.VerifiedEvent
		}
	}
	return domain.NewSessionEvent(eventType, from, to).WithAccount(next)
}

func (s *SessionControllerImpl) emit(events ...*domain.SessionEvent) {
	s.mu.Lock()
	listeners := make([]func(domain.SessionEvent), 0, len(s.listeners))
	for _, l := range s.listeners {
		listeners = append(listeners, l)
	}
	s.mu.Unlock()

	for _, ev := range events {
		if ev == nil {
			continue
		}
		s.logger.Info("session transition",
			zap.String("event", string(ev.Type)),
			zap.String("from", string(ev.From)),
			zap.String("to", string(ev.To)),
			zap.String("account_id", ev.AccountID))
		for _, l := range listeners {
			l(*ev)
		}
	}
}

func (s *SessionControllerImpl) validateInput(v any) error {
	err := s.validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return domain.WrapError(domain.KindValidation, describeField(verrs[0]), err)
	}
	return domain.WrapError(domain.KindValidation, "", err)
}

func describeField(fe validator.FieldError) string {
	field := lowerFirst(fe.Field())
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " is not a valid address"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "numeric":
		return field + " must contain digits only"
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	default:
		return field + " is invalid"
	}
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}

func normalizeTarget(target string) string {
	return strings.ToLower(strings.TrimSpace(target))
}

func cooldownKey(channel domain.Channel, target string) string {
	return string(channel) + ":" + target
}

func ceilSeconds(d time.Duration) int {
	return int(math.Ceil(d.Seconds()))
}

func superseded() error {
	return domain.NewError(domain.KindSuperseded, "")
}
