package checkout

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/HarshMishra-Git/MedPath-by-AAS-EduGuide-sub000/domain"
)

// Bridge implements domain.Checkout for a browser-hosted overlay. Open publishes the
// request for the checkout page and blocks until the page posts a success or dismiss.
// At most one checkout is open at a time.
type Bridge struct {
	logger *zap.Logger

	mu      sync.Mutex
	current *pending
	changed chan struct{}
}

type pending struct {
	req  domain.CheckoutRequest
	done chan domain.CheckoutResult
}

// NewBridge creates an idle bridge
func NewBridge(logger *zap.Logger) *Bridge {
	return &Bridge{logger: logger, changed: make(chan struct{})}
}

var _ domain.Checkout = (*Bridge)(nil)

// Open implements domain.Checkout. A cancelled context resolves as dismissed.
func (b *Bridge) Open(ctx context.Context, req domain.CheckoutRequest) (*domain.CheckoutResult, error) {
	p := &pending{req: req, done: make(chan domain.CheckoutResult, 1)}

	b.mu.Lock()
	if b.current != nil {
		b.mu.Unlock()
		return nil, domain.ErrCheckoutInProgress
	}
	b.current = p
	b.broadcastLocked()
	b.mu.Unlock()

	b.logger.Info("checkout opened",
		zap.String("attempt_id", req.AttemptID),
		zap.String("order_id", req.OrderID),
		zap.Int64("amount", req.Amount))

	select {
	case res := <-p.done:
		return &res, nil
	case <-ctx.Done():
		b.mu.Lock()
		if b.current == p {
			b.current = nil
			b.broadcastLocked()
		}
		b.mu.Unlock()

		// a result may have raced the cancellation
		select {
		case res := <-p.done:
			return &res, nil
		default:
		}
		b.logger.Info("checkout closed without result",
			zap.String("order_id", req.OrderID),
			zap.Error(ctx.Err()))
		return &domain.CheckoutResult{Outcome: domain.CheckoutDismissed}, nil
	}
}

// Pending returns the open checkout request, if any
func (b *Bridge) Pending() (domain.CheckoutRequest, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.current == nil {
		return domain.CheckoutRequest{}, false
	}
	return b.current.req, true
}

// WaitOpen blocks until a checkout is open or ctx is done
func (b *Bridge) WaitOpen(ctx context.Context) (domain.CheckoutRequest, error) {
	for {
		b.mu.Lock()
		if b.current != nil {
			req := b.current.req
			b.mu.Unlock()
			return req, nil
		}
		ch := b.changed
		b.mu.Unlock()

		select {
		case <-ch:
		case <-ctx.Done():
			return domain.CheckoutRequest{}, ctx.Err()
		}
	}
}

// Complete resolves the open checkout with the overlay's signature. The triple is passed
// through unchanged; matching it to the order is the caller's concern.
func (b *Bridge) Complete(sig domain.SignatureTriple) error {
	return b.resolve("", domain.CheckoutResult{Outcome: domain.CheckoutSucceeded, Signature: &sig})
}

// Dismiss resolves the open checkout as dismissed. A non-empty orderID must match the open order.
func (b *Bridge) Dismiss(orderID string) error {
	return b.resolve(orderID, domain.CheckoutResult{Outcome: domain.CheckoutDismissed})
}

func (b *Bridge) resolve(orderID string, res domain.CheckoutResult) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.current == nil {
		return domain.NewError(domain.KindNotFound, "no checkout is open")
	}
	if orderID != "" && orderID != b.current.req.OrderID {
		return domain.NewError(domain.KindOrderMismatch, "checkout is open for a different order")
	}

	b.current.done <- res
	b.logger.Info("checkout resolved",
		zap.String("order_id", b.current.req.OrderID),
		zap.String("outcome", string(res.Outcome)))
	b.current = nil
	b.broadcastLocked()
	return nil
}

func (b *Bridge) broadcastLocked() {
	close(b.changed)
	b.changed = make(chan struct{})
}
