package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/HarshMishra-Git/MedPath-by-AAS-EduGuide-sub000/domain"
	"github.com/HarshMishra-Git/MedPath-by-AAS-EduGuide-sub000/internal/services"
)

// AccountKey is the gin context key holding the account a guarded handler was admitted with
const AccountKey = "account"

// Guard evaluates route requirements before a view renders
type Guard struct {
	session domain.SessionController
	access  domain.AccessController
	logger  *zap.Logger
}

// NewGuard creates the route guard
func NewGuard(session domain.SessionController, access domain.AccessController, logger *zap.Logger) *Guard {
	return &Guard{session: session, access: access, logger: logger}
}

// Public admits everyone
func (g *Guard) Public() gin.HandlerFunc {
	return g.Require(domain.Requirement{Kind: domain.RequirePublic})
}

// RequireAuth admits any signed-in account
func (g *Guard) RequireAuth() gin.HandlerFunc {
	return g.Require(domain.Requirement{Kind: domain.RequireAuth})
}

// RequireActivePayment admits only accounts the server reports as ACTIVE
func (g *Guard) RequireActivePayment() gin.HandlerFunc {
	return g.Require(domain.Requirement{Kind: domain.RequireActivePayment})
}

// RequireRole admits accounts holding role or a role above it
func (g *Guard) RequireRole(role domain.Role) gin.HandlerFunc {
	return g.Require(domain.Requirement{Kind: domain.RequireRole, Role: role})
}

// Require builds the middleware for one requirement. Payment- and role-gated routes re-read
// the account from the identity service first, so a cached snapshot never grants them.
func (g *Guard) Require(req domain.Requirement) gin.HandlerFunc {
	return func(c *gin.Context) {
		route := domain.Route{Path: c.Request.URL.Path, Requirement: req}

		account := g.session.CurrentAccount()
		if sensitive(req) && account != nil {
			fresh, err := g.session.Refresh(c.Request.Context())
			switch {
			case err == nil:
				account = fresh
			case domain.IsUnauthenticated(err):
				account = nil
			default:
				g.logger.Warn("session refresh failed on guarded route",
					zap.String("path", route.Path),
					zap.String("kind", string(domain.KindOf(err))))
				deny(c, unverifiable(req))
				return
			}
		}

		d := g.access.Evaluate(route, account)
		if d.Action != domain.ActionRender {
			g.logger.Info("navigation redirected",
				zap.String("path", route.Path),
				zap.String("action", string(d.Action)),
				zap.String("location", d.Location))
			deny(c, d)
			return
		}

		if account != nil {
			c.Set(AccountKey, account)
		}
		c.Next()
	}
}

func sensitive(req domain.Requirement) bool {
	return req.Kind == domain.RequireActivePayment || req.Kind == domain.RequireRole
}

// unverifiable is the decision when the account could not be re-read
func unverifiable(req domain.Requirement) domain.Decision {
	if req.Kind == domain.RequireRole {
		return domain.Decision{Action: domain.ActionRedirectLogin, Location: services.LoginPath}
	}
	return domain.Decision{Action: domain.ActionRedirectPayment, Location: services.PaymentPath}
}

func deny(c *gin.Context, d domain.Decision) {
	c.Header("Location", d.Location)
	c.AbortWithStatusJSON(http.StatusSeeOther, gin.H{
		"redirect": d.Location,
		"action":   d.Action,
	})
}
