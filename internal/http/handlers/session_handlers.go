package handlers

import (
	"math"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/HarshMishra-Git/MedPath-by-AAS-EduGuide-sub000/domain"
)

// SessionHandlers serves the sign-in, verification and account pages
type SessionHandlers struct {
	session domain.SessionController
	logger  *zap.Logger
}

// NewSessionHandlers creates new session handlers
func NewSessionHandlers(session domain.SessionController, logger *zap.Logger) *SessionHandlers {
	return &SessionHandlers{session: session, logger: logger}
}

// LoginRequest represents a password login. Identifier may be an email or a phone number.
type LoginRequest struct {
	Identifier string `json:"identifier"`
	Email      string `json:"email"`
	Password   string `json:"password"`
}

// GoogleLoginRequest carries the provider's ID token
type GoogleLoginRequest struct {
	Token string `json:"token"`
}

// SendOTPRequest represents a "send code" click
type SendOTPRequest struct {
	Type       domain.Channel `json:"type"`
	Identifier string         `json:"identifier"`
}

// VerifyOTPRequest represents a code submission
type VerifyOTPRequest struct {
	Type       domain.Channel `json:"type"`
	Identifier string         `json:"identifier"`
	OTP        string         `json:"otp"`
}

// Session reports the current state without touching the network
func (h *SessionHandlers) Session(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{
			"state":         h.session.State(),
			"authenticated": h.session.IsAuthenticated(),
			"user":          h.session.CurrentAccount(),
		},
	})
}

// Login handles password login
func (h *SessionHandlers) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	identifier := req.Identifier
	if identifier == "" {
		identifier = req.Email
	}

	account, err := h.session.Login(c.Request.Context(), identifier, req.Password)
	if err != nil {
		writeError(c, err)
		return
	}
	h.writeAccount(c, http.StatusOK, account)
}

// Signup handles registration
func (h *SessionHandlers) Signup(c *gin.Context) {
	var req domain.SignupProfile
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	account, err := h.session.Signup(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	h.writeAccount(c, http.StatusCreated, account)
}

// GoogleLogin handles federated login with a Google ID token
func (h *SessionHandlers) GoogleLogin(c *gin.Context) {
	var req GoogleLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	account, err := h.session.FederatedLogin(c.Request.Context(), req.Token)
	if err != nil {
		writeError(c, err)
		return
	}
	h.writeAccount(c, http.StatusOK, account)
}

// SendOTP asks the identity service to deliver a code
func (h *SessionHandlers) SendOTP(c *gin.Context) {
	var req SendOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	challenge, err := h.session.SendVerificationCode(c.Request.Context(), req.Type, req.Identifier)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{
			"message":   "OTP sent successfully",
			"challenge": challenge,
		},
	})
}

// ResendStatus returns the seconds left before a new code may be requested
func (h *SessionHandlers) ResendStatus(c *gin.Context) {
	channel := domain.Channel(c.Query("type"))
	remaining := h.session.CooldownRemaining(c.Request.Context(), channel, c.Query("identifier"))
	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{
			"canResend":        remaining <= 0,
			"remainingSeconds": int(math.Ceil(remaining.Seconds())),
		},
	})
}

// VerifyOTP submits a code
func (h *SessionHandlers) VerifyOTP(c *gin.Context) {
	var req VerifyOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	account, err := h.session.VerifyCode(c.Request.Context(), req.Identifier, req.OTP, req.Type)
	if err != nil {
		writeError(c, err)
		return
	}
	h.writeAccount(c, http.StatusOK, account)
}

// Logout always succeeds locally
func (h *SessionHandlers) Logout(c *gin.Context) {
	_ = h.session.Logout(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"data": gin.H{"message": "Logged out"}})
}

// Account renders the account page. Billing config and status are loaded concurrently while
// the account still needs payment.
func (h *SessionHandlers) Account(c *gin.Context) {
	account := h.session.CurrentAccount()
	data := gin.H{
		"state":   h.session.State(),
		"user":    account,
		"payment": h.session.PaymentAttempt(),
	}

	if account != nil && !account.IsActive() {
		var (
			cfg    *domain.PaymentConfig
			report *domain.PaymentStatusReport
		)
		g, ctx := errgroup.WithContext(c.Request.Context())
		g.Go(func() error {
			var err error
			cfg, err = h.session.PaymentConfig(ctx)
			return err
		})
		g.Go(func() error {
			var err error
			report, err = h.session.PaymentStatus(ctx)
			return err
		})
		if err := g.Wait(); err != nil {
			h.logger.Warn("billing details unavailable on account page", zap.Error(err))
			data["billingError"] = domain.UserMessage(err)
		} else {
			data["billing"] = gin.H{
				"keyId":         cfg.KeyID,
				"amount":        cfg.DefaultAmount,
				"displayAmount": domain.FormatMinorUnits(cfg.DefaultAmount),
				"currency":      cfg.Currency,
				"hasPaid":       report.HasPaid,
			}
			if report.HasPaid {
				// billing is ahead of the snapshot, e.g. paid in another tab
				refreshed, err := h.session.Refresh(c.Request.Context())
				switch {
				case domain.IsUnauthenticated(err):
					writeError(c, err)
					return
				case err != nil:
					h.logger.Warn("account refresh after payment failed", zap.Error(err))
				default:
					data["user"] = refreshed
					data["state"] = h.session.State()
				}
			}
		}
	}

	c.JSON(http.StatusOK, gin.H{"data": data})
}

func (h *SessionHandlers) writeAccount(c *gin.Context, status int, account *domain.Account) {
	c.JSON(status, gin.H{
		"data": gin.H{
			"user":  account,
			"state": h.session.State(),
		},
	})
}
