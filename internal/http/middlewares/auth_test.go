package middlewares

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/dropDatabas3/centinela/internal/auth"
	"github.com/dropDatabas3/centinela/internal/cache"
	"github.com/dropDatabas3/centinela/internal/tenant"
)

// downCache simula un outage total del cache.
type downCache struct{}

var errCacheDown = fmt.Errorf("cache down")

func (downCache) Get(ctx context.Context, key string) (string, error) { return "", errCacheDown }
func (downCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return errCacheDown
}
func (downCache) Delete(ctx context.Context, key string) error               { return errCacheDown }
func (downCache) TTL(ctx context.Context, key string) (time.Duration, error) { return 0, errCacheDown }
func (downCache) Expire(ctx context.Context, key string, ttl time.Duration) error {
	return errCacheDown
}
func (downCache) SAdd(ctx context.Context, key, member string) error        { return errCacheDown }
func (downCache) SRem(ctx context.Context, key, member string) error        { return errCacheDown }
func (downCache) SMembers(ctx context.Context, key string) ([]string, error) { return nil, errCacheDown }
func (downCache) Scan(ctx context.Context, match string, count int64, fn func(string) error) error {
	return errCacheDown
}
func (downCache) IncrWindow(ctx context.Context, key string, max int64, window time.Duration) (int64, error) {
	return 0, errCacheDown
}
func (downCache) Ping(ctx context.Context) error { return errCacheDown }
func (downCache) Close() error                   { return nil }

func principalProbe(gotSession **auth.Session, gotPrincipal *auth.Principal, gotTenant *tenant.Context) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		*gotSession = GetSession(ctx)
		if p, ok := GetPrincipal(ctx); ok {
			*gotPrincipal = p
		}
		tc, _ := tenant.From(ctx)
		*gotTenant = tc
		w.WriteHeader(http.StatusOK)
	})
}

func TestResolvePrincipalWithSessionToken(t *testing.T) {
	ctx := context.Background()
	store := auth.NewStore(cache.NewMemory(""), auth.StoreOptions{Expiry: 30 * time.Minute, MultiDevice: true})

	token, err := store.Create(ctx, "john", "t1", auth.Principal{UserID: "u1", RoleIDs: []string{"r1"}}, "10.0.0.1", "firefox")
	if err != nil {
		t.Fatal(err)
	}

	var (
		gotSession   *auth.Session
		gotPrincipal auth.Principal
		gotTenant    tenant.Context
	)
	h := ResolvePrincipal(store, "")(principalProbe(&gotSession, &gotPrincipal, &gotTenant))

	req := httptest.NewRequest(http.MethodGet, "/v1/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if gotSession == nil {
		t.Fatal("expected session in context")
	}
	if gotPrincipal.UserID != "u1" {
		t.Fatalf("expected principal u1, got %+v", gotPrincipal)
	}
	if gotTenant.TenantID != "t1" || gotTenant.Username != "john" || gotTenant.UserID != "u1" {
		t.Fatalf("expected full tenant binding, got %+v", gotTenant)
	}
}

func TestResolvePrincipalUnknownToken(t *testing.T) {
	store := auth.NewStore(cache.NewMemory(""), auth.StoreOptions{Expiry: 30 * time.Minute})

	h := Chain(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) }),
		ResolvePrincipal(store, ""),
		RequireSession(),
	)

	req := httptest.NewRequest(http.MethodGet, "/v1/auth/me", nil)
	req.Header.Set("Authorization", "Bearer no-such-token")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("unknown token must end in 401, got %d", rec.Code)
	}
}

func TestResolvePrincipalFailsClosedOnOutage(t *testing.T) {
	store := auth.NewStore(downCache{}, auth.StoreOptions{Expiry: 30 * time.Minute})

	h := Chain(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) }),
		ResolvePrincipal(store, ""),
		RequireSession(),
	)

	req := httptest.NewRequest(http.MethodGet, "/v1/auth/me", nil)
	req.Header.Set("Authorization", "Bearer some-token")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	// Cache caído jamás equivale a "asumir autenticado".
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("outage must fail closed with 401, got %d", rec.Code)
	}
}

func TestRequireSessionWithoutBearer(t *testing.T) {
	h := RequireSession()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/auth/me", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func signTestJWT(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestResolvePrincipalWithJWT(t *testing.T) {
	store := auth.NewStore(cache.NewMemory(""), auth.StoreOptions{Expiry: 30 * time.Minute})
	const secret = "test-secret"

	var (
		gotSession   *auth.Session
		gotPrincipal auth.Principal
		gotTenant    tenant.Context
	)
	h := ResolvePrincipal(store, secret)(principalProbe(&gotSession, &gotPrincipal, &gotTenant))

	raw := signTestJWT(t, secret, jwt.MapClaims{
		"tid":                "t1",
		"sub":                "u1",
		"preferred_username": "john",
		"roles":              []any{"r1", "r2"},
		"super":              true,
		"exp":                time.Now().Add(time.Hour).Unix(),
	})

	req := httptest.NewRequest(http.MethodGet, "/v1/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+raw)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if gotSession != nil {
		t.Fatal("JWT path must not fabricate a cache session")
	}
	if gotPrincipal.UserID != "u1" || !gotPrincipal.IsSuperAdmin || len(gotPrincipal.RoleIDs) != 2 {
		t.Fatalf("unexpected principal: %+v", gotPrincipal)
	}
	if gotTenant.TenantID != "t1" || gotTenant.Username != "john" {
		t.Fatalf("unexpected tenant binding: %+v", gotTenant)
	}
}

func TestResolvePrincipalRejectsBadJWTSignature(t *testing.T) {
	store := auth.NewStore(cache.NewMemory(""), auth.StoreOptions{Expiry: 30 * time.Minute})

	h := Chain(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) }),
		ResolvePrincipal(store, "right-secret"),
		RequireSession(),
	)

	raw := signTestJWT(t, "wrong-secret", jwt.MapClaims{
		"tid": "t1",
		"sub": "u1",
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	req := httptest.NewRequest(http.MethodGet, "/v1/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+raw)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("bad signature must end in 401, got %d", rec.Code)
	}
}
