package metrics

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HarshMishra-Git/MedPath-by-AAS-EduGuide-sub000/domain"
)

func TestObserveCall(t *testing.T) {
	m := New()

	m.ObserveCall("identity.login", "", 20*time.Millisecond)
	m.ObserveCall("identity.login", domain.KindInvalidCredentials, 10*time.Millisecond)
	m.ObserveCall("identity.login", domain.KindInvalidCredentials, 10*time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.gatewayCalls.WithLabelValues("identity.login", "ok")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.gatewayCalls.WithLabelValues("identity.login", "InvalidCredentials")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.gatewayDuration))
}

func TestObserveSession(t *testing.T) {
	m := New()

	m.ObserveSession(*domain.NewSessionEvent(domain.SignedInEvent, domain.StateAnonymous, domain.StateAuthenticatedPendingPayment))
	m.ObserveSession(*domain.NewSessionEvent(domain.PaymentOutcomeEvent, domain.StateAuthenticatedPendingPayment, domain.StateAuthenticatedPendingPayment).
		WithMetadata("outcome", string(domain.AttemptRejected)))
	m.ObserveSession(*domain.NewSessionEvent(domain.ActivatedEvent, domain.StateAuthenticatedPendingPayment, domain.StateAuthenticatedActive))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.sessionTransitions.WithLabelValues("SIGNED_IN", "AUTHENTICATED_PENDING_PAYMENT")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.paymentOutcomes.WithLabelValues("REJECTED")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.sessionState.WithLabelValues("AUTHENTICATED_ACTIVE")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.sessionState.WithLabelValues("AUTHENTICATED_PENDING_PAYMENT")))
}

func TestHandler(t *testing.T) {
	m := New()
	m.ObserveCall("billing.config", "", time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `predictor_client_gateway_calls_total{operation="billing.config",outcome="ok"} 1`)
	assert.Contains(t, string(body), "go_goroutines")
}
