package services

import (
	"net/url"

	"github.com/casbin/casbin/v2"
	"go.uber.org/zap"

	"github.com/HarshMishra-Git/MedPath-by-AAS-EduGuide-sub000/domain"
	"github.com/HarshMishra-Git/MedPath-by-AAS-EduGuide-sub000/internal/infrastructure/auth"
)

// Redirect targets
const (
	LoginPath   = "/login"
	PaymentPath = "/account/payment"
)

// AccessControllerImpl implements domain.AccessController. It is a pure function of the
// route requirement and the account snapshot handed in; keeping that snapshot fresh is
// the caller's job.
type AccessControllerImpl struct {
	enforcer *casbin.Enforcer
	logger   *zap.Logger
}

// NewAccessController creates a new access controller
func NewAccessController(enforcer *casbin.Enforcer, logger *zap.Logger) domain.AccessController {
	return &AccessControllerImpl{enforcer: enforcer, logger: logger}
}

// Evaluate implements domain.AccessController
func (a *AccessControllerImpl) Evaluate(route domain.Route, account *domain.Account) domain.Decision {
	switch route.Requirement.Kind {
	case domain.RequirePublic, "":
		return render()

	case domain.RequireAuth:
		if account == nil {
			return loginWithNext(route.Path)
		}
		return render()

	case domain.RequireActivePayment:
		if account == nil {
			return loginWithNext(route.Path)
		}
		// status alone decides; a locally cached COMPLETED payment does not count
		if account.AccountStatus != domain.AccountActive {
			return domain.Decision{Action: domain.ActionRedirectPayment, Location: PaymentPath}
		}
		return render()

	case domain.RequireRole:
		if account == nil || account.AccountStatus == domain.AccountSuspended || !a.hasRole(account.Role, route.Requirement.Role) {
			// no next: do not reveal that the path exists
			return domain.Decision{Action: domain.ActionRedirectLogin, Location: LoginPath}
		}
		return render()

	default:
		a.logger.Warn("unknown route requirement, denying", zap.String("path", route.Path), zap.String("kind", string(route.Requirement.Kind)))
		return domain.Decision{Action: domain.ActionRedirectLogin, Location: LoginPath}
	}
}

func (a *AccessControllerImpl) hasRole(have, want domain.Role) bool {
	if want == "" {
		want = domain.RoleAdmin
	}
	ok, err := a.enforcer.Enforce(auth.Subject(have), auth.Object(want), auth.ActionEnter)
	if err != nil {
		a.logger.Error("role check failed", zap.Error(err))
		return false
	}
	return ok
}

func render() domain.Decision {
	return domain.Decision{Action: domain.ActionRender}
}

func loginWithNext(path string) domain.Decision {
	return domain.Decision{
		Action:   domain.ActionRedirectLogin,
		Location: LoginPath + "?next=" + url.QueryEscape(path),
	}
}
