package fakeapi

import (
	"crypto/hmac"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/HarshMishra-Git/MedPath-by-AAS-EduGuide-sub000/domain"
)

type signupRequest struct {
	FullName string `json:"fullName" binding:"required"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password" binding:"required"`
}

// signup answers with the tokens at the top level of the envelope
func (s *Server) signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		reject(c, http.StatusBadRequest, err.Error())
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.MinCost)
	if err != nil {
		reject(c, http.StatusInternalServerError, "could not hash password")
		return
	}

	s.mu.Lock()
	if s.findLocked(req.Email) != nil || s.findLocked(req.Phone) != nil {
		s.mu.Unlock()
		reject(c, http.StatusConflict, "An account with this email or phone already exists")
		return
	}
	u := &User{
		ID:            uuid.NewString(),
		Email:         strings.ToLower(req.Email),
		Phone:         req.Phone,
		FullName:      req.FullName,
		AccountStatus: string(domain.AccountPendingVerification),
		PaymentStatus: string(domain.PaymentNone),
		Role:          string(domain.RoleUser),
		passwordHash:  string(hash),
	}
	s.users[u.ID] = u
	snapshot := *u
	s.mu.Unlock()

	c.JSON(http.StatusCreated, gin.H{
		"success":      true,
		"message":      "Account created",
		"token":        s.IssueToken(u.ID, s.accessTTL),
		"refreshToken": uuid.NewString(),
		"data":         gin.H{"user": snapshot},
	})
}

func (s *Server) login(c *gin.Context) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		reject(c, http.StatusBadRequest, err.Error())
		return
	}

	s.mu.Lock()
	u := s.findLocked(req.Email)
	var snapshot User
	if u != nil {
		snapshot = *u
	}
	s.mu.Unlock()

	if u == nil {
		reject(c, http.StatusNotFound, "No account found")
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(snapshot.passwordHash), []byte(req.Password)) != nil {
		reject(c, http.StatusUnauthorized, "Invalid email or password")
		return
	}
	ok(c, http.StatusOK, s.session(&snapshot))
}

// googleLogin accepts tokens of the form "google:<email>" and registers unknown addresses
func (s *Server) googleLogin(c *gin.Context) {
	var req struct {
		Token string `json:"token"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || !strings.HasPrefix(req.Token, GoogleTokenFor) {
		reject(c, http.StatusUnauthorized, "Google authentication failed")
		return
	}
	email := strings.TrimPrefix(req.Token, GoogleTokenFor)

	s.mu.Lock()
	u := s.findLocked(email)
	if u == nil {
		u = &User{
			ID:            uuid.NewString(),
			Email:         strings.ToLower(email),
			FullName:      email,
			EmailVerified: true,
			AccountStatus: string(domain.AccountPendingPayment),
			PaymentStatus: string(domain.PaymentNone),
			Role:          string(domain.RoleUser),
		}
		s.users[u.ID] = u
	}
	snapshot := *u
	s.mu.Unlock()

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"user":         snapshot,
			"token":        s.IssueToken(snapshot.ID, s.accessTTL),
			"refreshToken": uuid.NewString(),
		},
	})
}

func (s *Server) sendOTP(c *gin.Context) {
	var req struct {
		Type       string `json:"type" binding:"required,oneof=email sms"`
		Identifier string `json:"identifier" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		reject(c, http.StatusBadRequest, err.Error())
		return
	}

	s.mu.Lock()
	s.codes++
	s.mu.Unlock()
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "OTP sent"})
}

// verifyOTP answers with the user object as data and does not rotate tokens
func (s *Server) verifyOTP(c *gin.Context) {
	var req struct {
		Identifier string `json:"identifier"`
		OTP        string `json:"otp"`
		Type       string `json:"type"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		reject(c, http.StatusBadRequest, err.Error())
		return
	}
	if req.OTP != DefaultOTP {
		reject(c, http.StatusBadRequest, "Invalid or expired OTP")
		return
	}

	s.mu.Lock()
	u := s.findLocked(req.Identifier)
	if u == nil {
		s.mu.Unlock()
		reject(c, http.StatusNotFound, "No account found")
		return
	}
	if req.Type == string(domain.ChannelSMS) {
		u.PhoneVerified = true
	} else {
		u.EmailVerified = true
	}
	if u.AccountStatus == string(domain.AccountPendingVerification) {
		u.AccountStatus = string(domain.AccountPendingPayment)
	}
	snapshot := *u
	s.mu.Unlock()

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Verified", "data": snapshot})
}

func (s *Server) verify(c *gin.Context, u *User) {
	s.mu.Lock()
	snapshot := *u
	s.mu.Unlock()
	ok(c, http.StatusOK, gin.H{"user": snapshot})
}

func (s *Server) logout(c *gin.Context, _ *User) {
	s.mu.Lock()
	s.revoked[c.GetString("token")] = true
	s.mu.Unlock()
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Logged out"})
}

func (s *Server) paymentConfig(c *gin.Context) {
	ok(c, http.StatusOK, gin.H{
		"keyId":         DefaultKeyID,
		"defaultAmount": DefaultAmount,
		"currency":      "inr",
		"companyName":   "MedPath",
		"theme":         gin.H{"color": "#2563eb"},
	})
}

func (s *Server) createOrder(c *gin.Context, u *User) {
	var req struct {
		Amount int64 `json:"amount"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Amount <= 0 {
		reject(c, http.StatusBadRequest, "amount must be positive")
		return
	}

	o := &order{ID: "order_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:14], UserID: u.ID, Amount: req.Amount}
	s.mu.Lock()
	s.orders[o.ID] = o
	s.mu.Unlock()

	ok(c, http.StatusOK, gin.H{"orderId": o.ID, "amount": o.Amount, "currency": "INR"})
}

func (s *Server) verifyPayment(c *gin.Context, u *User) {
	var req struct {
		PaymentID         string `json:"paymentId"`
		RazorpayPaymentID string `json:"razorpay_payment_id"`
		RazorpayOrderID   string `json:"razorpay_order_id"`
		RazorpaySignature string `json:"razorpay_signature"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		reject(c, http.StatusBadRequest, err.Error())
		return
	}

	s.mu.Lock()
	o, found := s.orders[req.RazorpayOrderID]
	s.mu.Unlock()
	if !found || o.UserID != u.ID {
		reject(c, http.StatusNotFound, "Payment order not found")
		return
	}

	want := s.Sign(req.RazorpayOrderID, req.RazorpayPaymentID)
	if !hmac.Equal([]byte(want), []byte(req.RazorpaySignature)) {
		reject(c, http.StatusBadRequest, "Invalid payment signature")
		return
	}

	s.MarkPaid(o.ID)
	s.mu.Lock()
	snapshot := *u
	s.mu.Unlock()
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Payment verified",
		"data":    gin.H{"user": snapshot},
	})
}

func (s *Server) paymentStatus(c *gin.Context, u *User) {
	s.mu.Lock()
	hasPaid := u.PaymentStatus == string(domain.PaymentCompleted)
	s.mu.Unlock()
	ok(c, http.StatusOK, gin.H{"hasPaid": hasPaid})
}

var catalogueFilters = domain.FilterOptions{
	States:            []string{"All India", "Karnataka"},
	QuotasByState:     map[string][]string{"All India": {"AIQ"}, "Karnataka": {"State"}},
	CategoriesByQuota: map[string][]string{"AIQ": {"GEN", "OBC"}, "State": {"GEN"}},
	CoursesByState:    map[string][]string{"All India": {"MBBS", "BDS"}, "Karnataka": {"MBBS"}},
	TotalRecords:      3,
}

func (s *Server) filterOptions(c *gin.Context) {
	c.JSON(http.StatusOK, catalogueFilters)
}

// predict ranks a fixed catalogue, keeping colleges whose closing rank is at or above the given AIR
func (s *Server) predict(c *gin.Context) {
	var req domain.PredictionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
		return
	}

	catalogue := []struct {
		institute string
		closing   int
		kind      string
	}{
		{"AIIMS New Delhi", 60, "Government"},
		{"Bangalore Medical College", 5200, "Government"},
		{"Kasturba Medical College", 48000, "Private"},
	}

	predictions := []domain.CollegePrediction{}
	for _, col := range catalogue {
		if col.closing < req.AIR {
			continue
		}
		if col.kind == "Private" && req.IncludePrivate != nil && !*req.IncludePrivate {
			continue
		}
		if col.kind == "Government" && req.IncludeGovernment != nil && !*req.IncludeGovernment {
			continue
		}
		closing := col.closing
		predictions = append(predictions, domain.CollegePrediction{
			Institute:            col.institute,
			Course:               req.Course,
			State:                req.State,
			Category:             req.Category,
			Quota:                req.Quota,
			AdmissionProbability: 1 - float64(req.AIR)/float64(closing+1),
			PredictedClosingRank: &closing,
			InstituteType:        col.kind,
		})
	}

	c.JSON(http.StatusOK, domain.PredictionResponse{
		TotalCollegesFound: len(predictions),
		Predictions:        predictions,
		ProcessingTimeMS:   1,
	})
}
