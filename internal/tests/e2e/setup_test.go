package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/HarshMishra-Git/MedPath-by-AAS-EduGuide-sub000/internal/app"
	"github.com/HarshMishra-Git/MedPath-by-AAS-EduGuide-sub000/internal/config"
	"github.com/HarshMishra-Git/MedPath-by-AAS-EduGuide-sub000/internal/tests/fakeapi"
)

const testPassword = "correct horse battery"

// shell is one running client instance (one browser tab) wired to the fake backend
type shell struct {
	t         *testing.T
	container *app.Container
}

// response is the decoded JSON body of a shell response
type response struct {
	Status   int            `json:"-"`
	Location string         `json:"-"`
	Header   http.Header    `json:"-"`
	Data     map[string]any `json:"data"`
	Error    string         `json:"error"`
	Kind     string         `json:"kind"`
	Redirect string         `json:"redirect"`
}

func testConfig(fake *fakeapi.Server) *config.Config {
	return &config.Config{
		Port:             "0",
		GinMode:          "test",
		APIBaseURL:       fake.APIURL(),
		APITimeout:       5 * time.Second,
		PredictorURL:     fake.PredictorURL(),
		PredictorTimeout: 5 * time.Second,
		TokenStoreDriver: config.DriverMemory,
		Profile:          "default",
		ResendCooldown:   time.Minute,
		CheckoutTimeout:  time.Minute,
		LogLevel:         "error",
	}
}

// withSharedRedis points cfg at a token store that other shells can share
func withSharedRedis(mr *miniredis.Miniredis) func(*config.Config) {
	return func(cfg *config.Config) {
		cfg.TokenStoreDriver = config.DriverRedis
		cfg.RedisAddr = mr.Addr()
	}
}

func newShell(t *testing.T, fake *fakeapi.Server, opts ...func(*config.Config)) *shell {
	t.Helper()
	cfg := testConfig(fake)
	for _, opt := range opts {
		opt(cfg)
	}

	c, err := app.NewContainer(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return &shell{t: t, container: c}
}

func (s *shell) do(method, path string, body any) response {
	s.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(s.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	s.container.Router.ServeHTTP(w, req)

	res := response{Status: w.Code, Location: w.Header().Get("Location"), Header: w.Header()}
	if w.Body.Len() > 0 {
		require.NoError(s.t, json.Unmarshal(w.Body.Bytes(), &res), w.Body.String())
	}
	return res
}

func (s *shell) login(email string) response {
	s.t.Helper()
	return s.do(http.MethodPost, "/auth/login", map[string]string{"email": email, "password": testPassword})
}

// startCheckout opens the overlay and returns the order id it was opened with
func (s *shell) startCheckout() string {
	s.t.Helper()
	res := s.do(http.MethodPost, "/payment/start", nil)
	require.Equal(s.t, http.StatusAccepted, res.Status, res.Error)

	checkout, ok := res.Data["checkout"].(map[string]any)
	require.True(s.t, ok, "start response carries the checkout config")
	orderID, _ := checkout["order_id"].(string)
	require.NotEmpty(s.t, orderID)
	return orderID
}

func (s *shell) callback(orderID, paymentID, signature string) response {
	s.t.Helper()
	return s.do(http.MethodPost, "/payment/callback", map[string]string{
		"razorpay_payment_id": paymentID,
		"razorpay_order_id":   orderID,
		"razorpay_signature":  signature,
	})
}

func (s *shell) state() string {
	s.t.Helper()
	res := s.do(http.MethodGet, "/session", nil)
	require.Equal(s.t, http.StatusOK, res.Status)
	state, _ := res.Data["state"].(string)
	return state
}

func (s *shell) hasTokens() bool {
	_, ok := s.container.Tokens.Get()
	return ok
}

func seedPendingPayment(t *testing.T, fake *fakeapi.Server, email string) fakeapi.User {
	t.Helper()
	return fake.SeedUser(t, fakeapi.User{
		Email:         email,
		FullName:      "Test Student",
		EmailVerified: true,
		AccountStatus: "PENDING_PAYMENT",
	}, testPassword)
}

func seedActive(t *testing.T, fake *fakeapi.Server, email string) fakeapi.User {
	t.Helper()
	return fake.SeedUser(t, fakeapi.User{
		Email:         email,
		FullName:      "Paid Student",
		EmailVerified: true,
		AccountStatus: "ACTIVE",
		PaymentStatus: "COMPLETED",
	}, testPassword)
}
