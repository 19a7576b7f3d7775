package session

import (
	"context"
	"fmt"
	"strings"

	"github.com/dropDatabas3/centinela/internal/auth"
	dto "github.com/dropDatabas3/centinela/internal/http/dto/session"
	"github.com/dropDatabas3/centinela/internal/metrics"
	"github.com/dropDatabas3/centinela/internal/observability/logger"
	"github.com/dropDatabas3/centinela/internal/store"
	"go.uber.org/zap"
)

// LoginService defines operations for session-based login.
type LoginService interface {
	Login(ctx context.Context, req dto.LoginRequest, ip, browser string) (*LoginResult, error)
}

// LoginResult contains the result of a successful login.
type LoginResult struct {
	Token     string
	TenantID  string
	Username  string
	Principal auth.Principal
	ExpiresIn int64 // seconds
}

// LoginDeps contains dependencies for the login service.
type LoginDeps struct {
	Credentials store.CredentialRepository
	Sessions    *auth.Store
}

type loginService struct {
	creds    store.CredentialRepository
	sessions *auth.Store
}

// NewLoginService creates a new LoginService.
func NewLoginService(deps LoginDeps) LoginService {
	return &loginService{
		creds:    deps.Credentials,
		sessions: deps.Sessions,
	}
}

// Service errors
var (
	ErrLoginMissingTenant      = fmt.Errorf("tenant_id is required")
	ErrLoginMissingUsername    = fmt.Errorf("username is required")
	ErrLoginMissingPassword    = fmt.Errorf("password is required")
	ErrLoginInvalidCredentials = fmt.Errorf("invalid credentials")
	ErrLoginNoDatabase         = fmt.Errorf("credential store not available")
	ErrLoginSessionFailed      = fmt.Errorf("failed to create session")
)

// Login authenticates a user and creates a distributed session.
func (s *loginService) Login(ctx context.Context, req dto.LoginRequest, ip, browser string) (*LoginResult, error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("session.login"),
		logger.Op("Login"),
	)

	tenantID := strings.TrimSpace(req.TenantID)
	username := strings.TrimSpace(req.Username)
	password := req.Password

	if tenantID == "" {
		return nil, ErrLoginMissingTenant
	}
	if username == "" {
		return nil, ErrLoginMissingUsername
	}
	if password == "" {
		return nil, ErrLoginMissingPassword
	}

	if s.creds == nil {
		return nil, ErrLoginNoDatabase
	}

	user, err := s.creds.GetUserByUsername(ctx, tenantID, username)
	if err != nil {
		if err == store.ErrNotFound {
			log.Debug("user not found")
			metrics.RecordLogin(false)
			return nil, ErrLoginInvalidCredentials
		}
		log.Error("user lookup failed", logger.Err(err))
		return nil, ErrLoginNoDatabase
	}

	if !user.CheckPassword(password) {
		log.Debug("password mismatch")
		metrics.RecordLogin(false)
		return nil, ErrLoginInvalidCredentials
	}

	principal := auth.Principal{
		UserID:       user.ID,
		RoleIDs:      user.RoleIDs,
		IsSuperAdmin: user.IsSuperAdmin,
	}

	token, err := s.sessions.Create(ctx, username, tenantID, principal, ip, browser)
	if err != nil {
		log.Error("failed to create session", logger.Err(err))
		return nil, ErrLoginSessionFailed
	}

	metrics.RecordLogin(true)
	log.Debug("session created",
		zap.String("user_id", user.ID),
		zap.String("tenant_id", tenantID),
	)

	return &LoginResult{
		Token:     token,
		TenantID:  tenantID,
		Username:  username,
		Principal: principal,
		ExpiresIn: int64(s.sessions.Expiry().Seconds()),
	}, nil
}
