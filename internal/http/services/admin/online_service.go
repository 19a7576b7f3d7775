package admin

import (
	"context"
	"fmt"

	"github.com/dropDatabas3/centinela/internal/auth"
	dto "github.com/dropDatabas3/centinela/internal/http/dto/admin"
	"github.com/dropDatabas3/centinela/internal/metrics"
	"github.com/dropDatabas3/centinela/internal/observability/logger"
	"github.com/dropDatabas3/centinela/internal/tenant"
)

// OnlineService exposes the online-session directory to admin callers.
type OnlineService interface {
	List(ctx context.Context) (*dto.OnlineListResponse, error)
	Kick(ctx context.Context, token string) (int, error)
	KickUser(ctx context.Context, tenantID, userID string) (int, error)
}

// OnlineDeps contains dependencies for the online service.
type OnlineDeps struct {
	Directory *auth.Directory
	Sessions  *auth.Store
}

type onlineService struct {
	dir      *auth.Directory
	sessions *auth.Store
}

// NewOnlineService creates a new OnlineService.
func NewOnlineService(deps OnlineDeps) OnlineService {
	return &onlineService{
		dir:      deps.Directory,
		sessions: deps.Sessions,
	}
}

// Service errors
var (
	ErrOnlineForbidden   = fmt.Errorf("caller may not act outside its own tenant")
	ErrOnlineUnavailable = fmt.Errorf("session directory not available")
)

// List returns the online users visible to the caller. Super-tenant callers
// see every tenant; everyone else sees only their own.
func (s *onlineService) List(ctx context.Context) (*dto.OnlineListResponse, error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("admin.online"),
		logger.Op("List"),
	)

	tc, _ := tenant.From(ctx)
	users, err := s.dir.ListOnlineUsers(ctx, tc.TenantID, tc.IsSuperTenant())
	if err != nil {
		log.Error("online scan failed", logger.Err(err))
		return nil, ErrOnlineUnavailable
	}

	resp := &dto.OnlineListResponse{Users: make([]dto.OnlineUser, 0, len(users))}
	for _, u := range users {
		out := dto.OnlineUser{
			TenantID: u.TenantID,
			UserID:   u.UserID,
			Username: u.Username,
			Sessions: make([]dto.OnlineSession, 0, len(u.Sessions)),
		}
		for _, sess := range u.Sessions {
			out.Sessions = append(out.Sessions, dto.OnlineSession{
				Token:     sess.Token,
				IP:        sess.IP,
				Browser:   sess.Browser,
				LoginTime: sess.LoginTime,
			})
		}
		resp.Users = append(resp.Users, out)
	}
	resp.Total = len(resp.Users)
	return resp, nil
}

// Kick terminates one session by token and returns how many sessions it
// removed. Non-super callers may only kick sessions that belong to their own
// tenant. Kicking an absent token succeeds with a count of zero.
func (s *onlineService) Kick(ctx context.Context, token string) (int, error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("admin.online"),
		logger.Op("Kick"),
	)

	tc, _ := tenant.From(ctx)
	if !tc.IsSuperTenant() {
		sess, err := s.sessions.Peek(ctx, token)
		if err != nil {
			log.Error("session lookup failed", logger.Err(err))
			return 0, ErrOnlineUnavailable
		}
		if sess != nil && sess.TenantID != tc.TenantID {
			return 0, ErrOnlineForbidden
		}
	}

	n, err := s.dir.Kickout(ctx, token)
	if err != nil {
		log.Error("kickout failed", logger.Err(err))
		return 0, ErrOnlineUnavailable
	}

	metrics.RecordKickout(n)
	log.Info("session kicked", logger.Token(token), logger.Count(n))
	return n, nil
}

// KickUser terminates every session of one user. Non-super callers are
// restricted to their own tenant.
func (s *onlineService) KickUser(ctx context.Context, tenantID, userID string) (int, error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("admin.online"),
		logger.Op("KickUser"),
	)

	tc, _ := tenant.From(ctx)
	if !tc.IsSuperTenant() && tenantID != tc.TenantID {
		return 0, ErrOnlineForbidden
	}

	n, err := s.dir.KickoutUser(ctx, tenantID, userID)
	if err != nil {
		log.Error("kickout by user failed", logger.Err(err))
		return n, ErrOnlineUnavailable
	}

	metrics.RecordKickout(n)
	log.Info("user sessions kicked",
		logger.TenantID(tenantID),
		logger.UserID(userID),
		logger.Count(n),
	)
	return n, nil
}
