package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/HarshMishra-Git/MedPath-by-AAS-EduGuide-sub000/domain"
)

// AdminHandlers serves the role-gated admin view
type AdminHandlers struct {
	session domain.SessionController
	started time.Time
}

// NewAdminHandlers creates new admin handlers
func NewAdminHandlers(session domain.SessionController) *AdminHandlers {
	return &AdminHandlers{session: session, started: time.Now()}
}

// Dashboard shows who is signed in and the shell's session bookkeeping
func (h *AdminHandlers) Dashboard(c *gin.Context) {
	account := h.session.CurrentAccount()
	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{
			"user":        account,
			"state":       h.session.State(),
			"lastPayment": h.session.PaymentAttempt(),
			"uptime":      time.Since(h.started).Round(time.Second).String(),
		},
	})
}

// Health reports liveness
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
