package billing

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/HarshMishra-Git/MedPath-by-AAS-EduGuide-sub000/domain"
	"github.com/HarshMishra-Git/MedPath-by-AAS-EduGuide-sub000/internal/infrastructure/apiclient"
)

// Billing service operations, also used as metric labels
const (
	OpConfig      = "billing.config"
	OpCreateOrder = "billing.create_order"
	OpVerify      = "billing.verify"
	OpStatus      = "billing.status"
)

const defaultCurrency = "INR"

// GatewayImpl implements domain.PaymentGateway. The public checkout config is cached
// until InvalidateConfig; concurrent first loads share one request.
type GatewayImpl struct {
	client *apiclient.Client
	now    func() time.Time

	group  singleflight.Group
	mu     sync.RWMutex
	config *domain.PaymentConfig
}

// NewGateway creates a billing gateway
func NewGateway(client *apiclient.Client) domain.PaymentGateway {
	return &GatewayImpl{client: client, now: time.Now}
}

// theme is either a color string or an object carrying one
type theme struct {
	Color string
}

func (t *theme) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		t.Color = s
		return nil
	}
	var obj struct {
		Color string `json:"color"`
	}
	if err := json.Unmarshal(b, &obj); err != nil {
		return err
	}
	t.Color = obj.Color
	return nil
}

type configDTO struct {
	KeyID         string `json:"keyId"`
	DefaultAmount int64  `json:"defaultAmount"`
	Currency      string `json:"currency"`
	CompanyName   string `json:"companyName"`
	Theme         *theme `json:"theme"`
}

type orderDTO struct {
	OrderID   string `json:"orderId"`
	ID        string `json:"id"`
	PaymentID string `json:"paymentId"`
	Amount    int64  `json:"amount"`
	Currency  string `json:"currency"`
}

// GetConfig returns the cached checkout config, loading it on first use
func (g *GatewayImpl) GetConfig(ctx context.Context) (*domain.PaymentConfig, error) {
	g.mu.RLock()
	cached := g.config
	g.mu.RUnlock()
	if cached != nil {
		c := *cached
		return &c, nil
	}

	v, err, _ := g.group.Do(OpConfig, func() (any, error) {
		return g.loadConfig(ctx)
	})
	if err != nil {
		return nil, err
	}
	c := *v.(*domain.PaymentConfig)
	return &c, nil
}

func (g *GatewayImpl) loadConfig(ctx context.Context) (*domain.PaymentConfig, error) {
	g.mu.RLock()
	cached := g.config
	g.mu.RUnlock()
	if cached != nil {
		return cached, nil
	}

	var env apiclient.Envelope
	if err := g.client.Do(ctx, apiclient.Request{
		Operation: OpConfig,
		Method:    http.MethodGet,
		Path:      "/payment/config",
	}, &env); err != nil {
		return nil, err
	}

	var dto configDTO
	if err := apiclient.DecodeData(&env, &dto); err != nil {
		return nil, err
	}
	if dto.KeyID == "" {
		return nil, domain.NewError(domain.KindServer, "payment config has no key")
	}

	cfg := &domain.PaymentConfig{
		KeyID:         dto.KeyID,
		DefaultAmount: dto.DefaultAmount,
		Currency:      strings.ToUpper(dto.Currency),
		CompanyName:   dto.CompanyName,
	}
	if cfg.Currency == "" {
		cfg.Currency = defaultCurrency
	}
	if dto.Theme != nil {
		cfg.ThemeColor = dto.Theme.Color
	}

	g.mu.Lock()
	g.config = cfg
	g.mu.Unlock()
	return cfg, nil
}

// InvalidateConfig drops the cached config
func (g *GatewayImpl) InvalidateConfig() {
	g.mu.Lock()
	g.config = nil
	g.mu.Unlock()
	g.group.Forget(OpConfig)
}

// CreateOrder creates a fresh order for amountMinor (smallest currency unit)
func (g *GatewayImpl) CreateOrder(ctx context.Context, amountMinor int64) (*domain.PaymentOrder, error) {
	if amountMinor <= 0 {
		return nil, domain.NewError(domain.KindValidation, "amount must be positive")
	}

	var env apiclient.Envelope
	if err := g.client.Do(ctx, apiclient.Request{
		Operation:  OpCreateOrder,
		Method:     http.MethodPost,
		Path:       "/payment/create-order",
		Body:       map[string]int64{"amount": amountMinor},
		RejectKind: domain.KindServer,
	}, &env); err != nil {
		return nil, err
	}

	var dto orderDTO
	if err := apiclient.DecodeData(&env, &dto); err != nil {
		return nil, err
	}
	order := &domain.PaymentOrder{
		OrderID:   dto.OrderID,
		PaymentID: dto.PaymentID,
		Amount:    dto.Amount,
		Currency:  strings.ToUpper(dto.Currency),
		CreatedAt: g.now(),
	}
	if order.OrderID == "" {
		order.OrderID = dto.ID
	}
	if order.OrderID == "" {
		return nil, domain.NewError(domain.KindServer, "order has no identifier")
	}
	if order.Amount == 0 {
		order.Amount = amountMinor
	}
	if order.Currency == "" {
		order.Currency = defaultCurrency
	}
	return order, nil
}

// VerifySignature asks the billing service to check the gateway's signature for order.
// Success is reported only on an explicit positive answer.
func (g *GatewayImpl) VerifySignature(ctx context.Context, order *domain.PaymentOrder, sig domain.SignatureTriple) (*domain.VerifyPaymentResult, error) {
	if order == nil {
		return nil, domain.NewError(domain.KindOrderMismatch, "no order to verify against")
	}
	paymentID := order.PaymentID
	if paymentID == "" {
		paymentID = order.OrderID
	}

	var env apiclient.Envelope
	err := g.client.Do(ctx, apiclient.Request{
		Operation: OpVerify,
		Method:    http.MethodPost,
		Path:      "/payment/verify",
		Body: map[string]string{
			"paymentId":           paymentID,
			"razorpay_payment_id": sig.PaymentID,
			"razorpay_order_id":   sig.OrderID,
			"razorpay_signature":  sig.Signature,
		},
		Classify: func(status int) (domain.ErrorKind, bool) {
			switch status {
			case http.StatusBadRequest:
				return domain.KindSignatureInvalid, true
			case http.StatusNotFound, http.StatusConflict:
				return domain.KindOrderMismatch, true
			}
			return "", false
		},
		RejectKind: domain.KindSignatureInvalid,
	}, &env)
	if err != nil {
		return nil, err
	}
	if env.Success == nil || !*env.Success {
		return &domain.VerifyPaymentResult{Success: false}, nil
	}

	res := &domain.VerifyPaymentResult{Success: true}
	var data struct {
		User *struct {
			ID            string `json:"id"`
			AccountStatus string `json:"accountStatus"`
			PaymentStatus string `json:"paymentStatus"`
		} `json:"user"`
	}
	if len(env.Data) > 0 && json.Unmarshal(env.Data, &data) == nil && data.User != nil {
		// informational only; the session is refreshed from the identity service
		res.Account = &domain.Account{
			ID:            data.User.ID,
			AccountStatus: domain.AccountStatus(strings.ToUpper(data.User.AccountStatus)),
			PaymentStatus: domain.PaymentStatus(strings.ToUpper(data.User.PaymentStatus)),
		}
	}
	return res, nil
}

// QueryStatus polls whether the account has paid
func (g *GatewayImpl) QueryStatus(ctx context.Context) (*domain.PaymentStatusReport, error) {
	var env apiclient.Envelope
	if err := g.client.Do(ctx, apiclient.Request{
		Operation: OpStatus,
		Method:    http.MethodGet,
		Path:      "/payment/status",
	}, &env); err != nil {
		return nil, err
	}

	var report domain.PaymentStatusReport
	if err := apiclient.DecodeData(&env, &report); err != nil {
		return nil, err
	}
	return &report, nil
}
