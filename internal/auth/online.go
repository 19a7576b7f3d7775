package auth

import (
	"context"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/dropDatabas3/centinela/internal/metrics"
	"github.com/dropDatabas3/centinela/internal/observability/logger"
)

// DefaultScanCount es el tamaño de lote del cursor SCAN.
const DefaultScanCount = 100

// hydrateWorkers acota la concurrencia al hidratar tokens escaneados.
const hydrateWorkers = 8

// OnlineSession es el detalle por dispositivo de una sesión viva.
type OnlineSession struct {
	Token     string `json:"token"`
	IP        string `json:"ip"`
	Browser   string `json:"browser"`
	LoginTime int64  `json:"loginTime"`
}

// UserSessions agrupa las sesiones vivas de un usuario.
type UserSessions struct {
	TenantID string          `json:"tenantId"`
	UserID   string          `json:"userId"`
	Username string          `json:"username"`
	Sessions []OnlineSession `json:"sessions"`
}

// Directory es la agregación read-side sobre el Store para visibilidad
// administrativa y logout forzado. No tiene estado propio.
type Directory struct {
	store     *Store
	scanCount int64
}

// NewDirectory crea el directorio de sesiones online.
func NewDirectory(store *Store) *Directory {
	return &Directory{store: store, scanCount: DefaultScanCount}
}

// ListOnlineUsers enumera todas las sesiones vivas vía SCAN con cursor y
// lotes acotados, las hidrata, y agrupa por (tenantId, userId) en un registro
// por usuario. Entradas que no hidratan o sin principal se descartan. Si el
// caller no es super, solo ve su propio tenant.
func (d *Directory) ListOnlineUsers(ctx context.Context, tenantFilter string, isSuperCaller bool) ([]UserSessions, error) {
	var tokens []string
	err := d.store.cache.Scan(ctx, tokenKeyPrefix+"*", d.scanCount, func(key string) error {
		tokens = append(tokens, strings.TrimPrefix(key, tokenKeyPrefix))
		return nil
	})
	if err != nil {
		return nil, err
	}

	var (
		mu      sync.Mutex
		live    int
		grouped = map[string]*UserSessions{}
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(hydrateWorkers)
	for _, token := range tokens {
		token := token
		g.Go(func() error {
			// Peek: listar sesiones no debe extender su TTL.
			sess, err := d.store.Peek(gctx, token)
			if err != nil {
				// Cache inalcanzable: cortar el listado completo.
				return err
			}
			if sess == nil || sess.Principal.UserID == "" {
				// No hidrata o sin principal: se descarta en silencio.
				return nil
			}
			mu.Lock()
			live++
			mu.Unlock()
			if !isSuperCaller && sess.TenantID != tenantFilter {
				return nil
			}

			mu.Lock()
			defer mu.Unlock()
			gk := sess.TenantID + ":" + sess.Principal.UserID
			u, ok := grouped[gk]
			if !ok {
				u = &UserSessions{
					TenantID: sess.TenantID,
					UserID:   sess.Principal.UserID,
					Username: sess.Username,
				}
				grouped[gk] = u
			}
			u.Sessions = append(u.Sessions, OnlineSession{
				Token:     sess.Token,
				IP:        sess.IP,
				Browser:   sess.Browser,
				LoginTime: sess.LoginTime,
			})
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	// El conteo es global (pre-filtro de tenant): es la verdad del keyspace
	// al momento del scan.
	metrics.ObserveLiveSessions(live)

	out := make([]UserSessions, 0, len(grouped))
	for _, u := range grouped {
		sort.Slice(u.Sessions, func(i, j int) bool {
			return u.Sessions[i].LoginTime < u.Sessions[j].LoginTime
		})
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TenantID != out[j].TenantID {
			return out[i].TenantID < out[j].TenantID
		}
		return out[i].UserID < out[j].UserID
	})
	return out, nil
}

// Kickout fuerza el logout de un token y retorna cuántas sesiones removió
// (0 o 1). Idempotente: remover un token ya ausente es un no-op.
func (d *Directory) Kickout(ctx context.Context, token string) (int, error) {
	sess, err := d.store.Peek(ctx, token)
	if err != nil {
		return 0, err
	}
	if sess == nil {
		return 0, nil
	}
	if err := d.store.Remove(ctx, token); err != nil {
		return 0, err
	}
	return 1, nil
}

// KickoutUser remueve todas las sesiones vivas de un usuario.
// Retorna cuántas sesiones se removieron.
func (d *Directory) KickoutUser(ctx context.Context, tenantID, userID string) (int, error) {
	var tokens []string
	err := d.store.cache.Scan(ctx, tokenKeyPrefix+"*", d.scanCount, func(key string) error {
		tokens = append(tokens, strings.TrimPrefix(key, tokenKeyPrefix))
		return nil
	})
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, token := range tokens {
		sess, err := d.store.Peek(ctx, token)
		if err != nil {
			return removed, err
		}
		if sess == nil || sess.TenantID != tenantID || sess.Principal.UserID != userID {
			continue
		}
		if err := d.store.Remove(ctx, token); err != nil {
			return removed, err
		}
		logger.From(ctx).Info("session kicked",
			logger.Component("auth.directory"),
			logger.TenantID(tenantID), logger.UserID(userID), logger.Token(token))
		removed++
	}
	return removed, nil
}
