package auth

import (
	"context"
	"testing"
	"time"

	"github.com/dropDatabas3/centinela/internal/cache"
)

func seedDirectory(t *testing.T) (*Directory, *Store) {
	t.Helper()
	c := cache.NewMemory("")
	s := NewStore(c, StoreOptions{Expiry: 30 * time.Minute, MultiDevice: true})
	return NewDirectory(s), s
}

func TestListOnlineUsersGroupsByUser(t *testing.T) {
	ctx := context.Background()
	d, s := seedDirectory(t)

	// Dos sesiones del mismo usuario, una de otro usuario, una de otro tenant.
	_, _ = s.Create(ctx, "john", "t1", Principal{UserID: "u1"}, "10.0.0.1", "firefox")
	_, _ = s.Create(ctx, "john", "t1", Principal{UserID: "u1"}, "10.0.0.2", "chrome")
	_, _ = s.Create(ctx, "jane", "t1", Principal{UserID: "u2"}, "", "")
	_, _ = s.Create(ctx, "root", "t2", Principal{UserID: "u9"}, "", "")

	users, err := d.ListOnlineUsers(ctx, "", true)
	if err != nil {
		t.Fatal(err)
	}
	if len(users) != 3 {
		t.Fatalf("expected 3 online users, got %d", len(users))
	}

	// Orden estable: tenant, luego user.
	if users[0].TenantID != "t1" || users[0].UserID != "u1" {
		t.Fatalf("unexpected first user: %+v", users[0])
	}
	if len(users[0].Sessions) != 2 {
		t.Fatalf("expected 2 sessions for u1, got %d", len(users[0].Sessions))
	}
	if users[2].TenantID != "t2" {
		t.Fatalf("unexpected last user: %+v", users[2])
	}
}

func TestListOnlineUsersTenantScoped(t *testing.T) {
	ctx := context.Background()
	d, s := seedDirectory(t)

	_, _ = s.Create(ctx, "john", "t1", Principal{UserID: "u1"}, "", "")
	_, _ = s.Create(ctx, "root", "t2", Principal{UserID: "u9"}, "", "")

	users, err := d.ListOnlineUsers(ctx, "t1", false)
	if err != nil {
		t.Fatal(err)
	}
	if len(users) != 1 || users[0].TenantID != "t1" {
		t.Fatalf("non-super caller must only see its tenant, got %+v", users)
	}
}

func TestListOnlineUsersSkipsPrincipalless(t *testing.T) {
	ctx := context.Background()
	d, s := seedDirectory(t)

	_, _ = s.Create(ctx, "ghost", "t1", Principal{}, "", "")
	_, _ = s.Create(ctx, "john", "t1", Principal{UserID: "u1"}, "", "")

	users, err := d.ListOnlineUsers(ctx, "", true)
	if err != nil {
		t.Fatal(err)
	}
	if len(users) != 1 || users[0].UserID != "u1" {
		t.Fatalf("sessions without principal must be skipped, got %+v", users)
	}
}

func TestKickoutUser(t *testing.T) {
	ctx := context.Background()
	d, s := seedDirectory(t)

	first, _ := s.Create(ctx, "john", "t1", Principal{UserID: "u1"}, "", "")
	second, _ := s.Create(ctx, "john", "t1", Principal{UserID: "u1"}, "", "")
	other, _ := s.Create(ctx, "jane", "t1", Principal{UserID: "u2"}, "", "")

	n, err := d.KickoutUser(ctx, "t1", "u1")
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Fatalf("expected 2 removed, got %d", n)
	}

	if sess, _ := s.Get(ctx, first); sess != nil {
		t.Fatal("first session should be gone")
	}
	if sess, _ := s.Get(ctx, second); sess != nil {
		t.Fatal("second session should be gone")
	}
	if sess, _ := s.Get(ctx, other); sess == nil {
		t.Fatal("other user's session must survive")
	}
}

func TestKickoutAbsentToken(t *testing.T) {
	ctx := context.Background()
	d, _ := seedDirectory(t)

	n, err := d.Kickout(ctx, "no-such-token")
	if err != nil {
		t.Fatalf("kicking an absent token must be a no-op, got %v", err)
	}
	if n != 0 {
		t.Fatalf("absent token removed = %d, want 0", n)
	}
}
