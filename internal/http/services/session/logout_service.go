package session

import (
	"context"
	"fmt"

	"github.com/dropDatabas3/centinela/internal/auth"
	"github.com/dropDatabas3/centinela/internal/metrics"
	"github.com/dropDatabas3/centinela/internal/observability/logger"
)

// LogoutService defines operations for session termination.
type LogoutService interface {
	Logout(ctx context.Context, token string) error
}

type logoutService struct {
	sessions *auth.Store
}

// NewLogoutService creates a new LogoutService.
func NewLogoutService(sessions *auth.Store) LogoutService {
	return &logoutService{sessions: sessions}
}

// ErrLogoutFailed indicates the session could not be removed from the cache.
var ErrLogoutFailed = fmt.Errorf("failed to remove session")

// Logout removes the session and its user-index entry. Logging out a token
// that no longer exists is not an error.
func (s *logoutService) Logout(ctx context.Context, token string) error {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("session.logout"),
		logger.Op("Logout"),
	)

	if err := s.sessions.Remove(ctx, token); err != nil {
		log.Error("failed to remove session", logger.Err(err))
		return ErrLogoutFailed
	}

	metrics.RecordLogout()
	log.Debug("session removed", logger.Token(token))
	return nil
}
