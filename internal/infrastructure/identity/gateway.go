package identity

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/HarshMishra-Git/MedPath-by-AAS-EduGuide-sub000/domain"
	"github.com/HarshMishra-Git/MedPath-by-AAS-EduGuide-sub000/internal/infrastructure/apiclient"
)

// Identity service operations, also used as metric labels
const (
	OpLogin          = "identity.login"
	OpSignup         = "identity.signup"
	OpFederatedLogin = "identity.google_login"
	OpSendCode       = "identity.send_otp"
	OpVerifyCode     = "identity.verify_otp"
	OpVerifySession  = "identity.verify"
	OpLogout         = "identity.logout"
)

// GatewayImpl implements domain.IdentityGateway over the identity service's REST API
type GatewayImpl struct {
	client *apiclient.Client
}

// NewGateway creates an identity gateway
func NewGateway(client *apiclient.Client) domain.IdentityGateway {
	return &GatewayImpl{client: client}
}

// userDTO accepts both "id" and the document store's "_id"
type userDTO struct {
	ID            string     `json:"id"`
	DocumentID    string     `json:"_id"`
	Email         string     `json:"email"`
	Phone         string     `json:"phone"`
	FullName      string     `json:"fullName"`
	EmailVerified bool       `json:"emailVerified"`
	PhoneVerified bool       `json:"phoneVerified"`
	AccountStatus string     `json:"accountStatus"`
	PaymentStatus string     `json:"paymentStatus"`
	Role          string     `json:"role"`
	CreatedAt     *time.Time `json:"createdAt"`
	LastLogin     *time.Time `json:"lastLogin"`
}

func (u *userDTO) toDomain() *domain.Account {
	a := &domain.Account{
		ID:            u.ID,
		Email:         u.Email,
		Phone:         u.Phone,
		FullName:      u.FullName,
		EmailVerified: u.EmailVerified,
		PhoneVerified: u.PhoneVerified,
		AccountStatus: domain.AccountStatus(strings.ToUpper(u.AccountStatus)),
		PaymentStatus: domain.PaymentStatus(strings.ToUpper(u.PaymentStatus)),
		Role:          domain.Role(strings.ToUpper(u.Role)),
		LastLoginAt:   u.LastLogin,
	}
	if a.ID == "" {
		a.ID = u.DocumentID
	}
	if a.PaymentStatus == "" {
		a.PaymentStatus = domain.PaymentNone
	}
	if a.Role == "" {
		a.Role = domain.RoleUser
	}
	if u.CreatedAt != nil {
		a.CreatedAt = *u.CreatedAt
	}
	return a
}

// sessionData covers every data shape the auth endpoints return
type sessionData struct {
	User         *userDTO `json:"user"`
	AccessToken  string   `json:"accessToken"`
	Token        string   `json:"token"`
	RefreshToken string   `json:"refreshToken"`
}

type authEnvelope struct {
	apiclient.Envelope
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken"`
}

// Login implements domain.IdentityGateway
func (g *GatewayImpl) Login(ctx context.Context, identifier, secret string) (*domain.AuthResult, error) {
	var env authEnvelope
	err := g.client.Do(ctx, apiclient.Request{
		Operation: OpLogin,
		Method:    http.MethodPost,
		Path:      "/auth/login",
		Body:      map[string]string{"email": identifier, "password": secret},
		Classify: overrides(map[int]domain.ErrorKind{
			http.StatusUnauthorized: domain.KindInvalidCredentials,
			http.StatusNotFound:     domain.KindNotFound,
		}),
		RejectKind: domain.KindInvalidCredentials,
	}, &env)
	if err != nil {
		return nil, err
	}
	return authResult(&env, true)
}

// Signup implements domain.IdentityGateway
func (g *GatewayImpl) Signup(ctx context.Context, profile domain.SignupProfile) (*domain.AuthResult, error) {
	var env authEnvelope
	err := g.client.Do(ctx, apiclient.Request{
		Operation:  OpSignup,
		Method:     http.MethodPost,
		Path:       "/auth/signup",
		Body:       profile,
		Classify:   overrides(map[int]domain.ErrorKind{http.StatusConflict: domain.KindConflict}),
		RejectKind: domain.KindValidation,
	}, &env)
	if err != nil {
		return nil, err
	}
	return authResult(&env, true)
}

// FederatedLogin exchanges a provider ID token for a session
func (g *GatewayImpl) FederatedLogin(ctx context.Context, providerToken string) (*domain.AuthResult, error) {
	var env authEnvelope
	err := g.client.Do(ctx, apiclient.Request{
		Operation: OpFederatedLogin,
		Method:    http.MethodPost,
		Path:      "/auth/google-login",
		Body:      map[string]string{"token": providerToken},
		Classify: overrides(map[int]domain.ErrorKind{
			http.StatusBadRequest:   domain.KindFederatedAuth,
			http.StatusUnauthorized: domain.KindFederatedAuth,
		}),
		RejectKind: domain.KindFederatedAuth,
	}, &env)
	if err != nil {
		return nil, err
	}
	return authResult(&env, true)
}

// SendVerificationCode implements domain.IdentityGateway
func (g *GatewayImpl) SendVerificationCode(ctx context.Context, channel domain.Channel, target string) error {
	return g.client.Do(ctx, apiclient.Request{
		Operation:  OpSendCode,
		Method:     http.MethodPost,
		Path:       "/auth/send-otp",
		Body:       map[string]string{"type": string(channel), "identifier": target},
		RejectKind: domain.KindValidation,
	}, nil)
}

// VerifyCode implements domain.IdentityGateway. Tokens are returned only when the server rotated them.
func (g *GatewayImpl) VerifyCode(ctx context.Context, target, code string, channel domain.Channel) (*domain.VerifyCodeResult, error) {
	var env authEnvelope
	invalid := domain.KindInvalidCode
	err := g.client.Do(ctx, apiclient.Request{
		Operation: OpVerifyCode,
		Method:    http.MethodPost,
		Path:      "/auth/verify-otp",
		Body:      map[string]string{"identifier": target, "otp": code, "type": string(channel)},
		Classify: overrides(map[int]domain.ErrorKind{
			http.StatusBadRequest:          invalid,
			http.StatusGone:                invalid,
			http.StatusUnprocessableEntity: invalid,
		}),
		RejectKind: invalid,
	}, &env)
	if err != nil {
		return nil, err
	}

	res, err := authResult(&env, false)
	if err != nil {
		return nil, err
	}
	return &domain.VerifyCodeResult{Account: res.Account, Tokens: res.Tokens}, nil
}

// VerifySession fetches the current account for the stored access token
func (g *GatewayImpl) VerifySession(ctx context.Context) (*domain.Account, error) {
	var env authEnvelope
	err := g.client.Do(ctx, apiclient.Request{
		Operation: OpVerifySession,
		Method:    http.MethodGet,
		Path:      "/auth/verify",
		Classify: overrides(map[int]domain.ErrorKind{
			http.StatusUnauthorized: domain.KindUnauthenticated,
			http.StatusNotFound:     domain.KindUnauthenticated,
		}),
		RejectKind: domain.KindUnauthenticated,
	}, &env)
	if err != nil {
		return nil, err
	}

	res, err := authResult(&env, false)
	if err != nil {
		return nil, err
	}
	if res.Account == nil {
		return nil, domain.NewError(domain.KindServer, "session check returned no account")
	}
	return res.Account, nil
}

// Logout revokes the given session server-side
func (g *GatewayImpl) Logout(ctx context.Context, session domain.TokenPair) error {
	if session.IsZero() {
		return nil
	}
	var body any
	if session.RefreshToken != "" {
		body = map[string]string{"refreshToken": session.RefreshToken}
	}
	return g.client.Do(ctx, apiclient.Request{
		Operation: OpLogout,
		Method:    http.MethodPost,
		Path:      "/auth/logout",
		Body:      body,
		Bearer:    session.AccessToken,
	}, nil)
}

func authResult(env *authEnvelope, requireToken bool) (*domain.AuthResult, error) {
	var data sessionData
	var account *domain.Account
	if len(env.Data) > 0 && string(env.Data) != "null" {
		if err := json.Unmarshal(env.Data, &data); err != nil {
			return nil, domain.WrapError(domain.KindServer, "unexpected response from server", err)
		}
		user := data.User
		if user == nil {
			// data is the user object itself
			var direct userDTO
			if err := json.Unmarshal(env.Data, &direct); err == nil && (direct.ID != "" || direct.DocumentID != "") {
				user = &direct
			}
		}
		if user != nil {
			account = user.toDomain()
			if account.ID == "" {
				return nil, domain.NewError(domain.KindServer, "account has no identifier")
			}
		}
	}

	tokens := domain.TokenPair{
		AccessToken:  firstNonEmpty(env.Token, data.AccessToken, data.Token),
		RefreshToken: firstNonEmpty(env.RefreshToken, data.RefreshToken),
	}
	if requireToken {
		if tokens.IsZero() {
			return nil, domain.NewError(domain.KindServer, "server returned no session token")
		}
		if account == nil {
			return nil, domain.NewError(domain.KindServer, "server returned no account")
		}
	}
	return &domain.AuthResult{Tokens: tokens, Account: account}, nil
}

func overrides(m map[int]domain.ErrorKind) func(int) (domain.ErrorKind, bool) {
	return func(status int) (domain.ErrorKind, bool) {
		kind, ok := m[status]
		return kind, ok
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
