package httpx

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/HarshMishra-Git/MedPath-by-AAS-EduGuide-sub000/domain"
	"github.com/HarshMishra-Git/MedPath-by-AAS-EduGuide-sub000/internal/http/handlers"
	"github.com/HarshMishra-Git/MedPath-by-AAS-EduGuide-sub000/internal/http/middleware"
)

// Handlers groups everything the router mounts
type Handlers struct {
	Session   *handlers.SessionHandlers
	Payment   *handlers.PaymentHandlers
	Predictor *handlers.PredictorHandlers
	Admin     *handlers.AdminHandlers
	Metrics   http.Handler
}

func BuildRouter(h Handlers, guard *middleware.Guard, logger *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(logger))

	r.GET("/health", handlers.Health)
	if h.Metrics != nil {
		r.GET("/metrics", gin.WrapH(h.Metrics))
	}

	pub := r.Group("/").Use(guard.Public())
	pub.GET("/session", h.Session.Session)
	pub.GET("/login", h.Session.Session)

	auth := r.Group("/auth")
	auth.POST("/login", h.Session.Login)
	auth.POST("/signup", h.Session.Signup)
	auth.POST("/google", h.Session.GoogleLogin)
	auth.POST("/otp/send", h.Session.SendOTP)
	auth.GET("/otp/status", h.Session.ResendStatus)
	auth.POST("/otp/verify", h.Session.VerifyOTP)
	auth.POST("/logout", h.Session.Logout)

	acct := r.Group("/account").Use(guard.RequireAuth())
	acct.GET("", h.Session.Account)
	acct.GET("/payment", h.Session.Account)

	pay := r.Group("/payment").Use(guard.RequireAuth())
	pay.POST("/start", h.Payment.Start)
	pay.GET("/checkout", h.Payment.Checkout)
	pay.POST("/callback", h.Payment.Callback)
	pay.POST("/dismiss", h.Payment.Dismiss)
	pay.GET("/attempt", h.Payment.Attempt)

	pred := r.Group("/predictor").Use(guard.RequireActivePayment())
	pred.GET("", h.Predictor.Page)
	pred.POST("/predict", h.Predictor.Predict)
	pred.GET("/filter-options", h.Predictor.FilterOptions)

	adm := r.Group("/admin").Use(guard.RequireRole(domain.RoleAdmin))
	adm.GET("", h.Admin.Dashboard)

	return r
}
