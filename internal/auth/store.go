package auth

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/dropDatabas3/centinela/internal/cache"
	"github.com/dropDatabas3/centinela/internal/observability/logger"
)

// DefaultRefreshThreshold es el umbral de sliding expiration: si al leer una
// sesión le queda menos que esto, su TTL (y el del índice) se resetea al
// expiry completo.
const DefaultRefreshThreshold = 10 * time.Minute

// StoreOptions configura el Store.
type StoreOptions struct {
	// Expiry es el TTL de cada sesión. Obligatorio.
	Expiry time.Duration

	// MultiDevice permite más de un token vivo por (tenantId, username).
	// En false, un login nuevo desaloja la sesión anterior.
	MultiDevice bool

	// RefreshThreshold para sliding expiration.
	// Default: DefaultRefreshThreshold.
	RefreshThreshold time.Duration
}

// Store implementa el CRUD de sesiones sobre el cache compartido.
//
// Semántica de fallos: "no encontrado" nunca es error (retorna nil); un error
// de conectividad del cache sí se propaga, distinto de ausente, para que el
// lookup de sesión pueda fallar cerrado (cache caído ⇒ "no hay sesión
// válida", jamás "asumir autenticado").
type Store struct {
	cache   cache.Client
	expiry  time.Duration
	multi   bool
	refresh time.Duration
}

// NewStore crea un Store de sesiones.
func NewStore(c cache.Client, opts StoreOptions) *Store {
	refresh := opts.RefreshThreshold
	if refresh <= 0 {
		refresh = DefaultRefreshThreshold
	}
	return &Store{
		cache:   c,
		expiry:  opts.Expiry,
		multi:   opts.MultiDevice,
		refresh: refresh,
	}
}

// Expiry retorna el TTL configurado.
func (s *Store) Expiry() time.Duration { return s.expiry }

// MultiDevice indica si el modo multi-dispositivo está habilitado.
func (s *Store) MultiDevice() bool { return s.multi }

// Create genera un token fresco y escribe la sesión y su entrada en el
// índice usuario→tokens. En modo single-device primero desaloja el token
// previo del usuario (si existía) borrando su registro de sesión.
//
// Las dos escrituras (sesión + índice) no son atómicas como par: un crash
// entre ambas deja una referencia colgante que Get trata como ausente, así
// que el estado se auto-repara en la próxima lectura.
func (s *Store) Create(ctx context.Context, username, tenantID string, p Principal, ip, browser string) (string, error) {
	token := uuid.NewString()
	idxKey := UserTokensKey(tenantID, username)

	if !s.multi {
		old, err := s.cache.Get(ctx, idxKey)
		switch {
		case err == nil && old != "" && old != token:
			if derr := s.cache.Delete(ctx, TokenKey(old)); derr != nil {
				return "", derr
			}
		case err != nil && !cache.IsNotFound(err):
			return "", err
		}
	}

	sess := Session{
		Token:     token,
		Username:  username,
		TenantID:  tenantID,
		Principal: p,
		IP:        ip,
		Browser:   browser,
		LoginTime: time.Now().UnixMilli(),
	}
	raw, err := json.Marshal(sess)
	if err != nil {
		return "", err
	}
	if err := s.cache.Set(ctx, TokenKey(token), string(raw), s.expiry); err != nil {
		return "", err
	}

	if s.multi {
		if err := s.cache.SAdd(ctx, idxKey, token); err != nil {
			return "", err
		}
	} else {
		if err := s.cache.Set(ctx, idxKey, token, s.expiry); err != nil {
			return "", err
		}
	}
	// Refrescar el TTL del índice junto con cada alta.
	if err := s.cache.Expire(ctx, idxKey, s.expiry); err != nil {
		return "", err
	}

	return token, nil
}

// Get resuelve un token a su sesión. Retorna (nil, nil) si el token no existe
// o el payload cacheado está corrupto; retorna error solo cuando el cache es
// inalcanzable. En un hit con TTL restante por debajo del umbral, resetea el
// TTL de la sesión y del índice al expiry completo (sliding expiration).
func (s *Store) Get(ctx context.Context, token string) (*Session, error) {
	sess, err := s.Peek(ctx, token)
	if err != nil || sess == nil {
		return sess, err
	}
	s.slide(ctx, sess)
	return sess, nil
}

// Peek es Get sin sliding expiration. Lo usa el directorio online para no
// extender sesiones ajenas al listarlas.
func (s *Store) Peek(ctx context.Context, token string) (*Session, error) {
	raw, err := s.cache.Get(ctx, TokenKey(token))
	if cache.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var sess Session
	if uerr := json.Unmarshal([]byte(raw), &sess); uerr != nil {
		// Payload corrupto: se loguea y se trata como ausente, nunca se
		// propaga al handler.
		logger.From(ctx).Warn("malformed session record, treating as absent",
			logger.Component("auth.store"),
			logger.Token(token),
			logger.Err(uerr),
		)
		return nil, nil
	}
	return &sess, nil
}

// slide aplica sliding expiration: solo actúa si el TTL restante cayó por
// debajo del umbral. Los fallos acá no invalidan el hit.
func (s *Store) slide(ctx context.Context, sess *Session) {
	key := TokenKey(sess.Token)
	ttl, err := s.cache.TTL(ctx, key)
	if err != nil || ttl <= 0 || ttl >= s.refresh {
		return
	}
	idxKey := UserTokensKey(sess.TenantID, sess.Username)
	if err := s.cache.Expire(ctx, key, s.expiry); err != nil {
		logger.From(ctx).Warn("session ttl refresh failed",
			logger.Component("auth.store"), logger.Token(sess.Token), logger.Err(err))
		return
	}
	if err := s.cache.Expire(ctx, idxKey, s.expiry); err != nil {
		logger.From(ctx).Warn("user index ttl refresh failed",
			logger.Component("auth.store"), logger.Key(idxKey), logger.Err(err))
	}
}

// Remove borra una sesión y su referencia en el índice. Remover un token
// ausente es un no-op, no un error (idempotente).
func (s *Store) Remove(ctx context.Context, token string) error {
	sess, err := s.Peek(ctx, token)
	if err != nil {
		return err
	}
	if sess == nil {
		// Puede quedar la key con payload corrupto: borrarla igual.
		return s.cache.Delete(ctx, TokenKey(token))
	}

	if err := s.cache.Delete(ctx, TokenKey(token)); err != nil {
		return err
	}

	idxKey := UserTokensKey(sess.TenantID, sess.Username)
	if s.multi {
		return s.cache.SRem(ctx, idxKey, token)
	}
	return s.cache.Delete(ctx, idxKey)
}
