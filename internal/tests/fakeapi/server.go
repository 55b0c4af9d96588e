// Package fakeapi is an in-process identity, billing and prediction backend for end-to-end tests.
// It speaks the same JSON envelopes as the real services.
package fakeapi

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Defaults handed to every server
const (
	DefaultOTP     = "123456"
	DefaultKeyID   = "rzp_test_fake"
	DefaultAmount  = int64(49900)
	GoogleTokenFor = "google:"
)

// User is the backend's record of an account
type User struct {
	ID            string    `json:"id"`
	Email         string    `json:"email,omitempty"`
	Phone         string    `json:"phone,omitempty"`
	FullName      string    `json:"fullName"`
	EmailVerified bool      `json:"emailVerified"`
	PhoneVerified bool      `json:"phoneVerified"`
	AccountStatus string    `json:"accountStatus"`
	PaymentStatus string    `json:"paymentStatus"`
	Role          string    `json:"role"`
	CreatedAt     time.Time `json:"createdAt"`

	passwordHash string
}

type order struct {
	ID     string
	UserID string
	Amount int64
	Paid   bool
}

// Server is a running fake backend
type Server struct {
	*httptest.Server

	secret         []byte
	razorpaySecret []byte
	accessTTL      time.Duration

	mu       sync.Mutex
	users    map[string]*User
	revoked  map[string]bool
	orders   map[string]*order
	calls    map[string]int
	failures map[string]int
	codes    int
}

// New starts a fake backend and stops it when the test ends
func New(t *testing.T) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	s := &Server{
		secret:         []byte("fake-identity-secret"),
		razorpaySecret: []byte("fake-razorpay-secret"),
		accessTTL:      time.Hour,
		users:          make(map[string]*User),
		revoked:        make(map[string]bool),
		orders:         make(map[string]*order),
		calls:          make(map[string]int),
		failures:       make(map[string]int),
	}
	s.Server = httptest.NewServer(s.router())
	t.Cleanup(s.Close)
	return s
}

// APIURL is the identity and billing base URL
func (s *Server) APIURL() string { return s.URL + "/api" }

// PredictorURL is the prediction service base URL
func (s *Server) PredictorURL() string { return s.URL + "/ml" }

func (s *Server) router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.track())

	api := r.Group("/api")
	api.POST("/auth/signup", s.signup)
	api.POST("/auth/login", s.login)
	api.POST("/auth/google-login", s.googleLogin)
	api.POST("/auth/send-otp", s.sendOTP)
	api.POST("/auth/verify-otp", s.verifyOTP)
	api.GET("/auth/verify", s.authenticated(s.verify))
	api.POST("/auth/logout", s.authenticated(s.logout))

	api.GET("/payment/config", s.paymentConfig)
	api.POST("/payment/create-order", s.authenticated(s.createOrder))
	api.POST("/payment/verify", s.authenticated(s.verifyPayment))
	api.GET("/payment/status", s.authenticated(s.paymentStatus))

	ml := r.Group("/ml")
	ml.GET("/filter-options", s.filterOptions)
	ml.POST("/predict", s.predict)
	return r
}

// track counts calls per path and serves injected failures
func (s *Server) track() gin.HandlerFunc {
	return func(c *gin.Context) {
		path := strings.TrimPrefix(c.Request.URL.Path, "/api")
		s.mu.Lock()
		s.calls[path]++
		status, fail := s.failures[path]
		s.mu.Unlock()

		if fail {
			c.AbortWithStatusJSON(status, gin.H{"success": false, "message": "injected failure"})
			return
		}
		c.Next()
	}
}

// Fail makes every call to path (without the /api prefix) answer with status
func (s *Server) Fail(path string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[path] = status
}

// Recover removes all injected failures
func (s *Server) Recover() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = make(map[string]int)
}

// Calls returns how many requests reached path (without the /api prefix)
func (s *Server) Calls(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[path]
}

// CodesSent returns how many verification codes were delivered
func (s *Server) CodesSent() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.codes
}

// SeedUser stores a user with the given password and returns a copy
func (s *Server) SeedUser(t *testing.T, u User, password string) User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.Role == "" {
		u.Role = "USER"
	}
	if u.PaymentStatus == "" {
		u.PaymentStatus = "NONE"
	}
	if u.AccountStatus == "" {
		u.AccountStatus = "PENDING_PAYMENT"
	}
	u.CreatedAt = time.Now().UTC()
	u.passwordHash = string(hash)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.ID] = &u
	return u
}

// UserByEmail returns a copy of the stored user
func (s *Server) UserByEmail(email string) (User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u := s.findLocked(email); u != nil {
		return *u, true
	}
	return User{}, false
}

// SetAccountStatus changes a user's status, e.g. to suspend it
func (s *Server) SetAccountStatus(email, status string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u := s.findLocked(email); u != nil {
		u.AccountStatus = status
	}
}

// MarkPaid settles an order out of band, as the gateway's webhook would
func (s *Server) MarkPaid(orderID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, found := s.orders[orderID]
	if !found {
		return
	}
	o.Paid = true
	if u := s.users[o.UserID]; u != nil {
		u.AccountStatus = "ACTIVE"
		u.PaymentStatus = "COMPLETED"
	}
}

// IssueToken signs an access token for userID that expires after ttl (negative for an expired one)
func (s *Server) IssueToken(userID string, ttl time.Duration) string {
	now := time.Now()
	token, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   userID,
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}).SignedString(s.secret)
	return token
}

// Sign computes the gateway signature the billing service accepts for an order and payment
func (s *Server) Sign(orderID, paymentID string) string {
	mac := hmac.New(sha256.New, s.razorpaySecret)
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

func (s *Server) findLocked(identifier string) *User {
	identifier = strings.ToLower(strings.TrimSpace(identifier))
	for _, u := range s.users {
		if identifier != "" && (strings.ToLower(u.Email) == identifier || u.Phone == identifier) {
			return u
		}
	}
	return nil
}

// session issues a token pair for u
func (s *Server) session(u *User) gin.H {
	return gin.H{
		"user":         *u,
		"accessToken":  s.IssueToken(u.ID, s.accessTTL),
		"refreshToken": uuid.NewString(),
	}
}

func reject(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"success": false, "message": message})
}

func ok(c *gin.Context, status int, data any) {
	c.JSON(status, gin.H{"success": true, "data": data})
}

// authenticated resolves the bearer token to a user id
func (s *Server) authenticated(next func(c *gin.Context, u *User)) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
		if raw == "" {
			reject(c, http.StatusUnauthorized, "No token provided")
			return
		}

		claims := &jwt.RegisteredClaims{}
		_, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
			return s.secret, nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil {
			reject(c, http.StatusUnauthorized, "Invalid or expired token")
			return
		}

		s.mu.Lock()
		revoked := s.revoked[raw]
		u := s.users[claims.Subject]
		s.mu.Unlock()
		if revoked {
			reject(c, http.StatusUnauthorized, "Session has been revoked")
			return
		}
		if u == nil {
			reject(c, http.StatusNotFound, "User not found")
			return
		}
		c.Set("token", raw)
		next(c, u)
	}
}
