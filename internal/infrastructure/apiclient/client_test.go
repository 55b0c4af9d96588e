package apiclient

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/HarshMishra-Git/MedPath-by-AAS-EduGuide-sub000/domain"
)

type staticTokens struct {
	pair domain.TokenPair
}

func (s staticTokens) Get() (domain.TokenPair, bool) {
	return s.pair, !s.pair.IsZero()
}

func newTestClient(t *testing.T, h http.HandlerFunc, tokens domain.TokenReader, opts ...Option) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(srv.URL+"/", 2*time.Second, tokens, zap.NewNop(), opts...)
}

func TestClient_Do_AttachesHeaders(t *testing.T) {
	var got *http.Request
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = r.Clone(context.Background())
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"data":{"hasPaid":true}}`))
	}, staticTokens{pair: domain.TokenPair{AccessToken: "stored"}})

	var env Envelope
	err := c.Do(context.Background(), Request{Operation: "status", Method: http.MethodGet, Path: "/payment/status"}, &env)
	require.NoError(t, err)

	var report domain.PaymentStatusReport
	require.NoError(t, DecodeData(&env, &report))
	assert.True(t, report.HasPaid)

	assert.Equal(t, "/payment/status", got.URL.Path)
	assert.Equal(t, "Bearer stored", got.Header.Get("Authorization"))
	assert.Equal(t, "application/json", got.Header.Get("Accept"))
	assert.NotEmpty(t, got.Header.Get("X-Request-ID"))
	assert.Empty(t, got.Header.Get("Content-Type"), "no body, no content type")
}

func TestClient_Do_BearerOverride(t *testing.T) {
	var auth string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusNoContent)
	}, staticTokens{})

	err := c.Do(context.Background(), Request{Operation: "logout", Method: http.MethodPost, Path: "/auth/logout", Bearer: "captured"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "Bearer captured", auth)
}

func TestClient_Do_NoTokenNoHeader(t *testing.T) {
	var auth string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`{}`))
	}, nil)

	require.NoError(t, c.Do(context.Background(), Request{Operation: "config", Method: http.MethodGet, Path: "/payment/config"}, nil))
	assert.Empty(t, auth)
}

func TestClient_Do_ClassifiesStatus(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		classify func(int) (domain.ErrorKind, bool)
		wantKind domain.ErrorKind
		wantMsg  string
	}{
		{"unauthorized", http.StatusUnauthorized, `{"message":"jwt expired"}`, nil, domain.KindUnauthenticated, "jwt expired"},
		{"forbidden", http.StatusForbidden, `{}`, nil, domain.KindForbidden, "Forbidden"},
		{"not found", http.StatusNotFound, `{"error":"no such user"}`, nil, domain.KindNotFound, "no such user"},
		{"conflict", http.StatusConflict, `{"message":"Email already registered"}`, nil, domain.KindConflict, "Email already registered"},
		{"bad request", http.StatusBadRequest, `{}`, nil, domain.KindValidation, "Bad Request"},
		{"unprocessable", http.StatusUnprocessableEntity, `{}`, nil, domain.KindValidation, "Unprocessable Entity"},
		{"server", http.StatusBadGateway, `<html>bad gateway</html>`, nil, domain.KindServer, "Bad Gateway"},
		{
			name:   "operation override",
			status: http.StatusUnauthorized,
			body:   `{"message":"Invalid credentials"}`,
			classify: func(status int) (domain.ErrorKind, bool) {
				if status == http.StatusUnauthorized {
					return domain.KindInvalidCredentials, true
				}
				return "", false
			},
			wantKind: domain.KindInvalidCredentials,
			wantMsg:  "Invalid credentials",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}, nil)

			err := c.Do(context.Background(), Request{Operation: tt.name, Method: http.MethodGet, Path: "/x", Classify: tt.classify}, nil)
			require.Error(t, err)

			var de *domain.Error
			require.True(t, errors.As(err, &de))
			assert.Equal(t, tt.wantKind, de.Kind)
			assert.Equal(t, tt.wantMsg, de.Message)
			assert.Equal(t, tt.status, de.Status)
		})
	}
}

func TestClient_Do_RateLimitedCarriesRetryAfter(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "42")
		w.WriteHeader(http.StatusTooManyRequests)
	}, nil)

	err := c.Do(context.Background(), Request{Operation: "send-otp", Method: http.MethodPost, Path: "/auth/send-otp", Body: map[string]string{"type": "email"}}, nil)

	var de *domain.Error
	require.True(t, errors.As(err, &de))
	assert.Equal(t, domain.KindRateLimited, de.Kind)
	assert.Equal(t, 42*time.Second, de.RetryAfter)
}

func TestClient_Do_SuccessFalseUsesRejectKind(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":false,"message":"Invalid signature"}`))
	}, nil)

	err := c.Do(context.Background(), Request{Operation: "verify", Method: http.MethodPost, Path: "/payment/verify", Body: struct{}{}, RejectKind: domain.KindSignatureInvalid}, nil)
	assert.ErrorIs(t, err, domain.ErrSignatureInvalid)

	err = c.Do(context.Background(), Request{Operation: "verify", Method: http.MethodPost, Path: "/payment/verify"}, nil)
	assert.ErrorIs(t, err, domain.ErrServer, "no reject kind falls back to server error")
}

func TestClient_Do_NetworkErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	c := New(srv.URL, 20*time.Millisecond, nil, zap.NewNop())
	err := c.Do(context.Background(), Request{Operation: "slow", Method: http.MethodGet, Path: "/"}, nil)
	assert.ErrorIs(t, err, domain.ErrNetwork)
	assert.Equal(t, "the request timed out", domain.UserMessage(err))

	unreachable := New("http://127.0.0.1:1", time.Second, nil, zap.NewNop())
	err = unreachable.Do(context.Background(), Request{Operation: "down", Method: http.MethodGet, Path: "/"}, nil)
	assert.ErrorIs(t, err, domain.ErrNetwork)
}

func TestClient_Do_MalformedSuccessBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	}, nil)

	var env Envelope
	err := c.Do(context.Background(), Request{Operation: "config", Method: http.MethodGet, Path: "/"}, &env)
	assert.ErrorIs(t, err, domain.ErrServer)
}

func TestClient_Do_Observer(t *testing.T) {
	type call struct {
		op   string
		kind domain.ErrorKind
	}
	var calls []call
	observer := WithObserver(func(op string, kind domain.ErrorKind, _ time.Duration) {
		calls = append(calls, call{op, kind})
	})

	status := http.StatusOK
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
	}, nil, observer)

	require.NoError(t, c.Do(context.Background(), Request{Operation: "a", Method: http.MethodGet, Path: "/"}, nil))
	status = http.StatusInternalServerError
	require.Error(t, c.Do(context.Background(), Request{Operation: "b", Method: http.MethodGet, Path: "/"}, nil))

	assert.Equal(t, []call{{"a", ""}, {"b", domain.KindServer}}, calls)
}

func TestDecodeData_Empty(t *testing.T) {
	err := DecodeData(&Envelope{}, &struct{}{})
	assert.ErrorIs(t, err, domain.ErrServer)
}
