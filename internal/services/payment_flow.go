package services

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/HarshMishra-Git/MedPath-by-AAS-EduGuide-sub000/domain"
)

// Pay runs one payment attempt: a fresh order, the checkout overlay, then server-side
// signature verification followed by a session refresh. The account is never activated
// from the overlay's callback alone.
//
// The returned attempt is always set once the attempt started, also alongside an error.
func (s *SessionControllerImpl) Pay(ctx context.Context, amountMinor int64) (*domain.PaymentAttempt, error) {
	s.mu.Lock()
	if s.account == nil {
		s.mu.Unlock()
		return nil, domain.NewError(domain.KindUnauthenticated, "sign in to continue")
	}
	if s.paying {
		s.mu.Unlock()
		return nil, domain.NewError(domain.KindCheckoutInProgress, "")
	}
	if s.account.IsActive() {
		s.mu.Unlock()
		return nil, domain.NewError(domain.KindConflict, "account is already active")
	}
	if s.account.AccountStatus == domain.AccountSuspended {
		s.mu.Unlock()
		return nil, domain.NewError(domain.KindForbidden, "account is suspended")
	}

	gen := s.generation
	account := s.account.Clone()
	attempt := &domain.PaymentAttempt{
		ID:        uuid.NewString(),
		State:     domain.AttemptIdle,
		StartedAt: s.now(),
	}
	s.attempt = attempt
	s.paying = true

	var checkoutCtx context.Context
	var cancel context.CancelFunc
	if s.config.CheckoutTimeout > 0 {
		checkoutCtx, cancel = context.WithTimeout(ctx, s.config.CheckoutTimeout)
	} else {
		checkoutCtx, cancel = context.WithCancel(ctx)
	}
	s.cancelCheckout = cancel
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.paying = false
		if s.attempt == attempt {
			s.cancelCheckout = nil
		}
		s.mu.Unlock()
		cancel()
	}()

	logger := s.logger.With(zap.String("attempt_id", attempt.ID))
	logger.Info("payment attempt started", zap.String("account_id", account.ID))

	cfg, err := s.payments.GetConfig(ctx)
	if err != nil {
		return s.abandon(attempt, domain.AttemptIdle, s.fail(gen, err))
	}

	amount := amountMinor
	if amount <= 0 {
		amount = s.config.DefaultAmount
	}
	if amount <= 0 {
		amount = cfg.DefaultAmount
	}
	if amount <= 0 {
		return s.abandon(attempt, domain.AttemptIdle, domain.NewError(domain.KindValidation, "no payment amount configured"))
	}

	order, err := s.payments.CreateOrder(ctx, amount)
	if err != nil {
		return s.abandon(attempt, domain.AttemptIdle, s.fail(gen, err))
	}
	s.mu.Lock()
	attempt.Order = order
	s.mu.Unlock()
	s.transition(attempt, domain.AttemptOrderCreated, nil)

	req := domain.CheckoutRequest{
		AttemptID:     attempt.ID,
		Key:           cfg.KeyID,
		OrderID:       order.OrderID,
		Amount:        order.Amount,
		Currency:      order.Currency,
		DisplayAmount: order.DisplayAmount(),
		Name:          cfg.CompanyName,
		ThemeColor:    cfg.ThemeColor,
		Prefill: domain.CheckoutPrefill{
			Name:    account.FullName,
			Email:   account.Email,
			Contact: account.Phone,
		},
	}

	s.transition(attempt, domain.AttemptWidgetOpen, nil)
	res, err := s.checkout.Open(checkoutCtx, req)
	if err != nil {
		return s.abandon(attempt, domain.AttemptDismissed, err)
	}

	if s.currentGeneration() != gen {
		// signed out or replaced while the overlay was open
		return s.abandon(attempt, domain.AttemptDismissed, superseded())
	}

	if res.Outcome != domain.CheckoutSucceeded {
		return s.dismissed(ctx, attempt, logger)
	}

	s.transition(attempt, domain.AttemptCallbackReceived, nil)
	if res.Signature == nil {
		return s.reject(attempt, domain.NewError(domain.KindSignatureInvalid, "checkout returned no signature"))
	}
	if res.Signature.OrderID != order.OrderID {
		return s.reject(attempt, domain.NewError(domain.KindOrderMismatch, "payment does not belong to this order"))
	}

	s.transition(attempt, domain.AttemptVerifying, nil)
	vr, err := s.payments.VerifySignature(ctx, order, *res.Signature)
	if err != nil {
		return s.reject(attempt, s.fail(gen, err))
	}
	if !vr.Success {
		return s.reject(attempt, domain.NewError(domain.KindSignatureInvalid, "payment could not be verified"))
	}

	s.transition(attempt, domain.AttemptVerified, nil)
	if _, err := s.Refresh(ctx); err != nil {
		logger.Warn("payment verified but session refresh failed", zap.Error(err))
	}
	s.emitPaymentOutcome(attempt)
	return s.attemptView(attempt), nil
}

// dismissed closes an attempt whose overlay closed without a callback. The billing service
// is asked whether a payment went through anyway; if so the session is refreshed.
func (s *SessionControllerImpl) dismissed(ctx context.Context, attempt *domain.PaymentAttempt, logger *zap.Logger) (*domain.PaymentAttempt, error) {
	s.transition(attempt, domain.AttemptDismissed, nil)

	report, err := s.PaymentStatus(ctx)
	switch {
	case err != nil:
		logger.Warn("payment status check after dismissal failed", zap.Error(err))
	case report.HasPaid:
		logger.Info("payment found after dismissal, refreshing session")
		if _, err := s.Refresh(ctx); err != nil {
			logger.Warn("session refresh after dismissal failed", zap.Error(err))
		}
	}

	s.emitPaymentOutcome(attempt)
	return s.attemptView(attempt), nil
}

func (s *SessionControllerImpl) reject(attempt *domain.PaymentAttempt, err error) (*domain.PaymentAttempt, error) {
	s.transition(attempt, domain.AttemptRejected, err)
	s.emitPaymentOutcome(attempt)
	return s.attemptView(attempt), err
}

// abandon records a failure that happened before a verdict was possible
func (s *SessionControllerImpl) abandon(attempt *domain.PaymentAttempt, state domain.PaymentAttemptState, err error) (*domain.PaymentAttempt, error) {
	s.mu.Lock()
	attempt.State = state
	attempt.Error = domain.UserMessage(err)
	finished := s.now()
	attempt.FinishedAt = &finished
	s.mu.Unlock()

	s.logger.Info("payment attempt abandoned",
		zap.String("attempt_id", attempt.ID),
		zap.String("state", string(state)),
		zap.String("kind", string(domain.KindOf(err))))
	return s.attemptView(attempt), err
}

func (s *SessionControllerImpl) attemptView(attempt *domain.PaymentAttempt) *domain.PaymentAttempt {
	s.mu.Lock()
	defer s.mu.Unlock()
	return attempt.Clone()
}

func (s *SessionControllerImpl) transition(attempt *domain.PaymentAttempt, state domain.PaymentAttemptState, err error) {
	s.mu.Lock()
	from := attempt.State
	attempt.State = state
	if err != nil {
		attempt.Error = domain.UserMessage(err)
	}
	if state.IsTerminal() {
		finished := s.now()
		attempt.FinishedAt = &finished
	}
	s.mu.Unlock()

	s.logger.Info("payment attempt transition",
		zap.String("attempt_id", attempt.ID),
		zap.String("from", string(from)),
		zap.String("to", string(state)))
}

func (s *SessionControllerImpl) emitPaymentOutcome(attempt *domain.PaymentAttempt) {
	s.mu.Lock()
	state := domain.StateFor(s.account)
	snapshot := attempt.Clone()
	account := s.account.Clone()
	s.mu.Unlock()

	ev := domain.NewSessionEvent(domain.PaymentOutcomeEvent, state, state).
		WithAccount(account).
		WithMetadata("attempt_id", snapshot.ID).
		WithMetadata("outcome", string(snapshot.State))
	if snapshot.Order != nil {
		ev.WithMetadata("order_id", snapshot.Order.OrderID)
	}
	if snapshot.Error != "" {
		ev.ErrorMsg = snapshot.Error
	}
	s.emit(ev)
}
