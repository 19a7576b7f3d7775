package auth

import (
	"context"
	"testing"
	"time"

	"github.com/dropDatabas3/centinela/internal/cache"
)

func newTestStore(t *testing.T, multi bool) (*Store, cache.Client) {
	t.Helper()
	c := cache.NewMemory("")
	s := NewStore(c, StoreOptions{
		Expiry:           30 * time.Minute,
		MultiDevice:      multi,
		RefreshThreshold: 10 * time.Minute,
	})
	return s, c
}

func TestCreateAndGet(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t, true)

	p := Principal{UserID: "u1", RoleIDs: []string{"r1"}, IsSuperAdmin: false}
	token, err := s.Create(ctx, "john", "t1", p, "10.0.0.1", "firefox")
	if err != nil {
		t.Fatal(err)
	}
	if token == "" {
		t.Fatal("expected non-empty token")
	}

	sess, err := s.Get(ctx, token)
	if err != nil {
		t.Fatal(err)
	}
	if sess == nil {
		t.Fatal("expected session, got nil")
	}
	if sess.Username != "john" || sess.TenantID != "t1" {
		t.Fatalf("unexpected session identity: %+v", sess)
	}
	if sess.Principal.UserID != "u1" || len(sess.Principal.RoleIDs) != 1 {
		t.Fatalf("unexpected principal: %+v", sess.Principal)
	}
	if sess.IP != "10.0.0.1" || sess.Browser != "firefox" {
		t.Fatalf("unexpected session metadata: %+v", sess)
	}
	if sess.LoginTime == 0 {
		t.Fatal("expected login time in epoch millis")
	}
}

func TestGetAbsentToken(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t, true)

	sess, err := s.Get(ctx, "no-such-token")
	if err != nil {
		t.Fatalf("absent token must not be an error, got %v", err)
	}
	if sess != nil {
		t.Fatalf("expected nil session, got %+v", sess)
	}
}

func TestGetMalformedPayload(t *testing.T) {
	ctx := context.Background()
	s, c := newTestStore(t, true)

	_ = c.Set(ctx, TokenKey("bad"), "{not json", time.Minute)

	sess, err := s.Get(ctx, "bad")
	if err != nil {
		t.Fatalf("malformed payload must not propagate, got %v", err)
	}
	if sess != nil {
		t.Fatalf("malformed payload must read as absent, got %+v", sess)
	}
}

func TestSingleDeviceEviction(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t, false)

	p := Principal{UserID: "u1"}
	first, err := s.Create(ctx, "john", "t1", p, "", "")
	if err != nil {
		t.Fatal(err)
	}
	second, err := s.Create(ctx, "john", "t1", p, "", "")
	if err != nil {
		t.Fatal(err)
	}

	// El login nuevo desaloja al anterior.
	if sess, _ := s.Get(ctx, first); sess != nil {
		t.Fatalf("first session should be evicted, got %+v", sess)
	}
	if sess, _ := s.Get(ctx, second); sess == nil {
		t.Fatal("second session should be alive")
	}
}

func TestMultiDeviceCoexistence(t *testing.T) {
	ctx := context.Background()
	s, c := newTestStore(t, true)

	p := Principal{UserID: "u1"}
	first, _ := s.Create(ctx, "john", "t1", p, "", "")
	second, _ := s.Create(ctx, "john", "t1", p, "", "")

	if sess, _ := s.Get(ctx, first); sess == nil {
		t.Fatal("first session should still be alive")
	}
	if sess, _ := s.Get(ctx, second); sess == nil {
		t.Fatal("second session should be alive")
	}

	members, err := c.SMembers(ctx, UserTokensKey("t1", "john"))
	if err != nil {
		t.Fatal(err)
	}
	if len(members) != 2 {
		t.Fatalf("expected 2 indexed tokens, got %v", members)
	}
}

func TestSlidingExpiration(t *testing.T) {
	ctx := context.Background()
	s, c := newTestStore(t, true)

	token, err := s.Create(ctx, "john", "t1", Principal{UserID: "u1"}, "", "")
	if err != nil {
		t.Fatal(err)
	}

	// Por debajo del umbral: el hit resetea al expiry completo.
	if err := c.Expire(ctx, TokenKey(token), time.Minute); err != nil {
		t.Fatal(err)
	}
	if sess, _ := s.Get(ctx, token); sess == nil {
		t.Fatal("session should hydrate")
	}
	ttl, err := c.TTL(ctx, TokenKey(token))
	if err != nil {
		t.Fatal(err)
	}
	if ttl < 29*time.Minute {
		t.Fatalf("ttl should reset to full expiry, got %v", ttl)
	}

	// Por encima del umbral: el hit no toca el TTL.
	if err := c.Expire(ctx, TokenKey(token), 11*time.Minute); err != nil {
		t.Fatal(err)
	}
	if sess, _ := s.Get(ctx, token); sess == nil {
		t.Fatal("session should hydrate")
	}
	ttl, err = c.TTL(ctx, TokenKey(token))
	if err != nil {
		t.Fatal(err)
	}
	if ttl > 11*time.Minute {
		t.Fatalf("ttl above threshold must not refresh, got %v", ttl)
	}
}

func TestPeekDoesNotSlide(t *testing.T) {
	ctx := context.Background()
	s, c := newTestStore(t, true)

	token, _ := s.Create(ctx, "john", "t1", Principal{UserID: "u1"}, "", "")
	_ = c.Expire(ctx, TokenKey(token), time.Minute)

	if sess, _ := s.Peek(ctx, token); sess == nil {
		t.Fatal("session should hydrate")
	}
	ttl, _ := c.TTL(ctx, TokenKey(token))
	if ttl > time.Minute {
		t.Fatalf("peek must not refresh ttl, got %v", ttl)
	}
}

func TestRemoveIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s, c := newTestStore(t, false)

	token, _ := s.Create(ctx, "john", "t1", Principal{UserID: "u1"}, "", "")

	if err := s.Remove(ctx, token); err != nil {
		t.Fatal(err)
	}
	if sess, _ := s.Get(ctx, token); sess != nil {
		t.Fatal("session should be gone")
	}
	if _, err := c.Get(ctx, UserTokensKey("t1", "john")); !cache.IsNotFound(err) {
		t.Fatalf("single-device index should be gone, got %v", err)
	}

	// Remover dos veces no es error.
	if err := s.Remove(ctx, token); err != nil {
		t.Fatal(err)
	}
}

func TestRemoveMultiDeviceKeepsSiblings(t *testing.T) {
	ctx := context.Background()
	s, c := newTestStore(t, true)

	first, _ := s.Create(ctx, "john", "t1", Principal{UserID: "u1"}, "", "")
	second, _ := s.Create(ctx, "john", "t1", Principal{UserID: "u1"}, "", "")

	if err := s.Remove(ctx, first); err != nil {
		t.Fatal(err)
	}

	if sess, _ := s.Get(ctx, second); sess == nil {
		t.Fatal("sibling session should survive")
	}
	members, _ := c.SMembers(ctx, UserTokensKey("t1", "john"))
	if len(members) != 1 || members[0] != second {
		t.Fatalf("index should keep only the sibling, got %v", members)
	}
}
