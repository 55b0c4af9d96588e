package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountStatus is the server-owned activation status of an account
type AccountStatus string

const (
	AccountPendingVerification AccountStatus = "PENDING_VERIFICATION"
	AccountPendingPayment      AccountStatus = "PENDING_PAYMENT"
	AccountActive              AccountStatus = "ACTIVE"
	AccountSuspended           AccountStatus = "SUSPENDED"
)

// PaymentStatus is the server-owned billing status of an account
type PaymentStatus string

const (
	PaymentNone      PaymentStatus = "NONE"
	PaymentPending   PaymentStatus = "PENDING"
	PaymentCompleted PaymentStatus = "COMPLETED"
	PaymentFailed    PaymentStatus = "FAILED"
)

// Role is the account role used by admin route checks
type Role string

const (
	RoleUser       Role = "USER"
	RoleAdmin      Role = "ADMIN"
	RoleSuperAdmin Role = "SUPER_ADMIN"
)

// Account represents one registered user as last reported by the identity service.
// The client only reads it; the activation invariant is owned by the server.
type Account struct {
	ID            string        `json:"id"`
	Email         string        `json:"email,omitempty"`
	Phone         string        `json:"phone,omitempty"`
	FullName      string        `json:"fullName,omitempty"`
	EmailVerified bool          `json:"emailVerified"`
	PhoneVerified bool          `json:"phoneVerified"`
	AccountStatus AccountStatus `json:"accountStatus"`
	PaymentStatus PaymentStatus `json:"paymentStatus"`
	Role          Role          `json:"role"`
	CreatedAt     time.Time     `json:"createdAt"`
	LastLoginAt   *time.Time    `json:"lastLogin,omitempty"`
}

// IsActive reports whether the server has activated the account
func (a *Account) IsActive() bool {
	return a != nil && a.AccountStatus == AccountActive
}

// IsVerified reports whether at least one identity channel is verified
func (a *Account) IsVerified() bool {
	return a != nil && (a.EmailVerified || a.PhoneVerified)
}

// Clone returns a copy that callers may keep without sharing the controller's snapshot
func (a *Account) Clone() *Account {
	if a == nil {
		return nil
	}
	c := *a
	if a.LastLoginAt != nil {
		t := *a.LastLoginAt
		c.LastLoginAt = &t
	}
	return &c
}

// TokenPair is the only session data persisted across reloads
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// IsZero reports whether no access token is held
func (p TokenPair) IsZero() bool {
	return p.AccessToken == ""
}

// Credentials represents a password login attempt
type Credentials struct {
	Identifier string `validate:"required,max=254"`
	Secret     string `validate:"required"`
}

// SignupProfile represents a registration request. Either email or phone is required.
type SignupProfile struct {
	FullName string `json:"fullName" validate:"required,min=2,max=120"`
	Email    string `json:"email,omitempty" validate:"omitempty,email,max=254"`
	Phone    string `json:"phone,omitempty" validate:"omitempty,e164|numeric"`
	Password string `json:"password" validate:"required,min=8,max=128"`
}

// AuthResult represents a successful login, signup or federated login
type AuthResult struct {
	Tokens  TokenPair
	Account *Account
}

// Channel is an OTP delivery channel
type Channel string

const (
	ChannelEmail Channel = "email"
	ChannelSMS   Channel = "sms"
)

// VerificationChallenge is one "send code" attempt. The code itself never reaches the client.
type VerificationChallenge struct {
	Channel     Channel   `json:"channel"`
	Target      string    `json:"target"`
	SentAt      time.Time `json:"sentAt"`
	ResendAfter time.Time `json:"resendAfter"`
}

// CodeVerification is the local shape of a verify-code request
type CodeVerification struct {
	Channel Channel `validate:"required,oneof=email sms"`
	Target  string  `validate:"required,max=254"`
	Code    string  `validate:"required,numeric,min=4,max=8"`
}

// VerifyCodeResult carries the refreshed account and, when the server rotates them, new tokens
type VerifyCodeResult struct {
	Account *Account
	Tokens  TokenPair
}

// PaymentConfig is the billing service's public checkout configuration
type PaymentConfig struct {
	KeyID         string `json:"keyId"`
	DefaultAmount int64  `json:"defaultAmount"`
	Currency      string `json:"currency"`
	CompanyName   string `json:"companyName"`
	ThemeColor    string `json:"themeColor,omitempty"`
}

// PaymentOrder is created fresh for every payment attempt and consumed by one verification
type PaymentOrder struct {
	OrderID   string    `json:"orderId"`
	PaymentID string    `json:"paymentId,omitempty"`
	Amount    int64     `json:"amount"`
	Currency  string    `json:"currency"`
	CreatedAt time.Time `json:"createdAt"`
}

// DisplayAmount renders the minor-unit amount in major units, e.g. 49900 -> "499.00"
func (o *PaymentOrder) DisplayAmount() string {
	return FormatMinorUnits(o.Amount)
}

// FormatMinorUnits renders an amount held in minor units with two decimals
func FormatMinorUnits(amount int64) string {
	return decimal.New(amount, -2).StringFixed(2)
}

// SignatureTriple is what the checkout overlay hands back on success
type SignatureTriple struct {
	PaymentID string `json:"razorpay_payment_id"`
	OrderID   string `json:"razorpay_order_id"`
	Signature string `json:"razorpay_signature"`
}

// VerifyPaymentResult is the billing service's answer to a signature verification
type VerifyPaymentResult struct {
	Success bool
	Account *Account
}

// PaymentStatusReport is the fallback poll result
type PaymentStatusReport struct {
	HasPaid bool `json:"hasPaid"`
}

// PaymentAttemptState tracks one attempt through the checkout flow
type PaymentAttemptState string

const (
	AttemptIdle             PaymentAttemptState = "IDLE"
	AttemptOrderCreated     PaymentAttemptState = "ORDER_CREATED"
	AttemptWidgetOpen       PaymentAttemptState = "WIDGET_OPEN"
	AttemptCallbackReceived PaymentAttemptState = "CALLBACK_RECEIVED"
	AttemptVerifying        PaymentAttemptState = "VERIFYING"
	AttemptVerified         PaymentAttemptState = "VERIFIED"
	AttemptRejected         PaymentAttemptState = "REJECTED"
	AttemptDismissed        PaymentAttemptState = "DISMISSED"
)

// IsTerminal reports whether no further transition is possible
func (s PaymentAttemptState) IsTerminal() bool {
	return s == AttemptVerified || s == AttemptRejected || s == AttemptDismissed
}

// PaymentAttempt is a read-only view of the current or last payment attempt
type PaymentAttempt struct {
	ID         string              `json:"id"`
	State      PaymentAttemptState `json:"state"`
	Order      *PaymentOrder       `json:"order,omitempty"`
	Error      string              `json:"error,omitempty"`
	StartedAt  time.Time           `json:"startedAt"`
	FinishedAt *time.Time          `json:"finishedAt,omitempty"`
}

// Clone returns a deep copy
func (a *PaymentAttempt) Clone() *PaymentAttempt {
	if a == nil {
		return nil
	}
	c := *a
	if a.Order != nil {
		o := *a.Order
		c.Order = &o
	}
	if a.FinishedAt != nil {
		t := *a.FinishedAt
		c.FinishedAt = &t
	}
	return &c
}

// CheckoutOutcome is how the overlay closed
type CheckoutOutcome string

const (
	CheckoutSucceeded CheckoutOutcome = "succeeded"
	CheckoutDismissed CheckoutOutcome = "dismissed"
)

// CheckoutPrefill is the customer data handed to the overlay
type CheckoutPrefill struct {
	Name    string `json:"name,omitempty"`
	Email   string `json:"email,omitempty"`
	Contact string `json:"contact,omitempty"`
}

// CheckoutRequest is the config object the overlay script is invoked with
type CheckoutRequest struct {
	AttemptID     string          `json:"attemptId"`
	Key           string          `json:"key"`
	OrderID       string          `json:"order_id"`
	Amount        int64           `json:"amount"`
	Currency      string          `json:"currency"`
	DisplayAmount string          `json:"displayAmount"`
	Name          string          `json:"name"`
	ThemeColor    string          `json:"themeColor,omitempty"`
	Prefill       CheckoutPrefill `json:"prefill"`
}

// CheckoutResult is the overlay's terminal result. Signature is set only on success.
type CheckoutResult struct {
	Outcome   CheckoutOutcome
	Signature *SignatureTriple
}

// SessionState is derived from the account snapshot, never stored
type SessionState string

const (
	StateAnonymous                   SessionState = "ANONYMOUS"
	StateAuthenticating              SessionState = "AUTHENTICATING"
	StateAuthenticatedUnverified     SessionState = "AUTHENTICATED_UNVERIFIED"
	StateAuthenticatedPendingPayment SessionState = "AUTHENTICATED_PENDING_PAYMENT"
	StateAuthenticatedActive         SessionState = "AUTHENTICATED_ACTIVE"
	StateSuspended                   SessionState = "SUSPENDED"
)

// StateFor derives the session state for an account snapshot
func StateFor(a *Account) SessionState {
	if a == nil {
		return StateAnonymous
	}
	switch a.AccountStatus {
	case AccountSuspended:
		return StateSuspended
	case AccountActive:
		return StateAuthenticatedActive
	case AccountPendingPayment:
		return StateAuthenticatedPendingPayment
	default:
		return StateAuthenticatedUnverified
	}
}

// IsAuthenticated reports whether the state carries a session
func (s SessionState) IsAuthenticated() bool {
	return s != StateAnonymous && s != StateAuthenticating
}

// RequirementKind is what a route demands of the session
type RequirementKind string

const (
	RequirePublic        RequirementKind = "public"
	RequireAuth          RequirementKind = "requiresAuth"
	RequireActivePayment RequirementKind = "requiresAuth+ActivePayment"
	RequireRole          RequirementKind = "requiresRole"
)

// Requirement is a route's declarative access requirement
type Requirement struct {
	Kind RequirementKind
	Role Role
}

// Route is one navigation evaluated by the access controller
type Route struct {
	Path        string
	Requirement Requirement
}

// DecisionAction is the access controller's verdict
type DecisionAction string

const (
	ActionRender          DecisionAction = "render"
	ActionRedirectLogin   DecisionAction = "redirect_login"
	ActionRedirectPayment DecisionAction = "redirect_payment"
)

// Decision is the result of evaluating a route
type Decision struct {
	Action   DecisionAction
	Location string
}

// PredictionRequest is forwarded to the external prediction service
type PredictionRequest struct {
	State             string `json:"state" binding:"required"`
	Quota             string `json:"quota" binding:"required"`
	Category          string `json:"category" binding:"required"`
	Course            string `json:"course" binding:"required"`
	AIR               int    `json:"air" binding:"required,min=1,max=200000"`
	IncludeGovernment *bool  `json:"include_government,omitempty"`
	IncludePrivate    *bool  `json:"include_private,omitempty"`
}

// CollegePrediction is one ranked result from the prediction service
type CollegePrediction struct {
	Institute            string         `json:"institute"`
	Course               string         `json:"course"`
	State                string         `json:"state"`
	Category             string         `json:"category"`
	Quota                string         `json:"quota"`
	AdmissionProbability float64        `json:"admission_probability"`
	PredictedClosingRank *int           `json:"predicted_closing_rank"`
	AnnualFees           string         `json:"annual_fees"`
	StipendYear1         string         `json:"stipend_year1,omitempty"`
	BondYears            string         `json:"bond_years,omitempty"`
	BondAmount           string         `json:"bond_amount,omitempty"`
	TotalBeds            string         `json:"total_beds,omitempty"`
	RecommendationScore  float64        `json:"recommendation_score"`
	InstituteType        string         `json:"institute_type"`
	ConfidenceScore      *float64       `json:"confidence_score,omitempty"`
	RoundPredictions     map[string]any `json:"round_predictions,omitempty"`
}

// PredictionResponse is the prediction service's answer
type PredictionResponse struct {
	TotalCollegesFound int                 `json:"total_colleges_found"`
	Predictions        []CollegePrediction `json:"predictions"`
	ProcessingTimeMS   int                 `json:"processing_time_ms"`
	FiltersApplied     map[string]any      `json:"filters_applied,omitempty"`
}

// FilterOptions are the cascading filters offered by the prediction service
type FilterOptions struct {
	States            []string            `json:"states"`
	QuotasByState     map[string][]string `json:"quotas_by_state"`
	CategoriesByQuota map[string][]string `json:"categories_by_quota"`
	CoursesByState    map[string][]string `json:"courses_by_state"`
	TotalRecords      int                 `json:"total_records"`
}
