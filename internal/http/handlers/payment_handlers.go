package handlers

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/HarshMishra-Git/MedPath-by-AAS-EduGuide-sub000/domain"
	"github.com/HarshMishra-Git/MedPath-by-AAS-EduGuide-sub000/internal/checkout"
)

// PaymentHandlers drives a payment attempt from the browser. Start runs the attempt in the
// background; the checkout page reads the overlay config and posts the overlay's outcome back.
type PaymentHandlers struct {
	session     domain.SessionController
	bridge      *checkout.Bridge
	openTimeout time.Duration
	logger      *zap.Logger

	mu  sync.Mutex
	run *paymentRun
}

type paymentRun struct {
	done    chan struct{}
	attempt *domain.PaymentAttempt
	err     error
}

// NewPaymentHandlers creates new payment handlers. openTimeout bounds how long Start waits
// for the order to be created and the overlay to be ready.
func NewPaymentHandlers(session domain.SessionController, bridge *checkout.Bridge, openTimeout time.Duration, logger *zap.Logger) *PaymentHandlers {
	if openTimeout <= 0 {
		openTimeout = 15 * time.Second
	}
	return &PaymentHandlers{session: session, bridge: bridge, openTimeout: openTimeout, logger: logger}
}

// StartPaymentRequest optionally overrides the configured amount (minor units)
type StartPaymentRequest struct {
	Amount int64 `json:"amount"`
}

// CallbackRequest is what the overlay's success handler receives
type CallbackRequest = domain.SignatureTriple

// DismissRequest is posted by the overlay's dismiss handler
type DismissRequest struct {
	OrderID string `json:"orderId"`
}

// Start begins a payment attempt and answers with the overlay config once the order exists
func (h *PaymentHandlers) Start(c *gin.Context) {
	var req StartPaymentRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			bindError(c, err)
			return
		}
	}

	h.mu.Lock()
	if h.run != nil {
		select {
		case <-h.run.done:
		default:
			h.mu.Unlock()
			writeError(c, domain.NewError(domain.KindCheckoutInProgress, ""))
			return
		}
	}
	run := &paymentRun{done: make(chan struct{})}
	h.run = run
	h.mu.Unlock()

	// the attempt outlives this request; its own checkout timeout bounds it
	payCtx := context.WithoutCancel(c.Request.Context())
	go func() {
		defer close(run.done)
		run.attempt, run.err = h.session.Pay(payCtx, req.Amount)
		if run.err != nil {
			h.logger.Info("payment attempt ended with error", zap.String("kind", string(domain.KindOf(run.err))))
		}
	}()

	waitCtx, cancel := context.WithTimeout(c.Request.Context(), h.openTimeout)
	defer cancel()
	opened := make(chan domain.CheckoutRequest, 1)
	go func() {
		if co, err := h.bridge.WaitOpen(waitCtx); err == nil {
			opened <- co
		}
	}()

	select {
	case co := <-opened:
		c.JSON(http.StatusAccepted, gin.H{
			"data": gin.H{
				"checkout": co,
				"attempt":  h.session.PaymentAttempt(),
			},
		})
	case <-run.done:
		h.writeRun(c, run)
	case <-waitCtx.Done():
		c.JSON(http.StatusGatewayTimeout, gin.H{
			"error": "checkout is taking longer than expected",
			"kind":  domain.KindNetwork,
		})
	}
}

// Checkout returns the config the overlay script is invoked with
func (h *PaymentHandlers) Checkout(c *gin.Context) {
	co, ok := h.bridge.Pending()
	if !ok {
		writeError(c, domain.NewError(domain.KindNotFound, "no checkout is open"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": gin.H{"checkout": co}})
}

// Callback receives the overlay's success triple and waits for server-side verification
func (h *PaymentHandlers) Callback(c *gin.Context) {
	var req CallbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	run := h.current()
	if err := h.bridge.Complete(req); err != nil {
		writeError(c, err)
		return
	}
	h.await(c, run)
}

// Dismiss receives the overlay's dismiss event
func (h *PaymentHandlers) Dismiss(c *gin.Context) {
	var req DismissRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			bindError(c, err)
			return
		}
	}

	run := h.current()
	if err := h.bridge.Dismiss(req.OrderID); err != nil {
		writeError(c, err)
		return
	}
	h.await(c, run)
}

// Attempt returns the current or last payment attempt
func (h *PaymentHandlers) Attempt(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{
			"attempt": h.session.PaymentAttempt(),
			"state":   h.session.State(),
		},
	})
}

func (h *PaymentHandlers) current() *paymentRun {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.run
}

func (h *PaymentHandlers) await(c *gin.Context, run *paymentRun) {
	if run == nil {
		c.JSON(http.StatusAccepted, gin.H{"data": gin.H{"message": "checkout resolved"}})
		return
	}
	select {
	case <-run.done:
		h.writeRun(c, run)
	case <-c.Request.Context().Done():
		c.JSON(http.StatusAccepted, gin.H{"data": gin.H{"message": "verification in progress"}})
	}
}

func (h *PaymentHandlers) writeRun(c *gin.Context, run *paymentRun) {
	if run.err != nil {
		writeError(c, run.err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{
			"attempt": run.attempt,
			"state":   h.session.State(),
			"user":    h.session.CurrentAccount(),
		},
	})
}
