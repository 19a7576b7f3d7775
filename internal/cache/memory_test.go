package cache

import (
	"context"
	"testing"
	"time"
)

func TestMemoryGetSetDelete(t *testing.T) {
	ctx := context.Background()
	c := NewMemory("")

	if _, err := c.Get(ctx, "missing"); !IsNotFound(err) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := c.Set(ctx, "k", "v", time.Minute); err != nil {
		t.Fatal(err)
	}
	v, err := c.Get(ctx, "k")
	if err != nil {
		t.Fatal(err)
	}
	if v != "v" {
		t.Fatalf("expected v, got %q", v)
	}

	if err := c.Delete(ctx, "k"); err != nil {
		t.Fatal(err)
	}
	if _, err := c.Get(ctx, "k"); !IsNotFound(err) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestMemoryTTLAndExpire(t *testing.T) {
	ctx := context.Background()
	c := NewMemory("")

	if _, err := c.TTL(ctx, "missing"); !IsNotFound(err) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := c.Set(ctx, "k", "v", time.Hour); err != nil {
		t.Fatal(err)
	}
	ttl, err := c.TTL(ctx, "k")
	if err != nil {
		t.Fatal(err)
	}
	if ttl <= 50*time.Minute || ttl > time.Hour {
		t.Fatalf("unexpected ttl %v", ttl)
	}

	if err := c.Expire(ctx, "k", time.Minute); err != nil {
		t.Fatal(err)
	}
	ttl, err = c.TTL(ctx, "k")
	if err != nil {
		t.Fatal(err)
	}
	if ttl > time.Minute {
		t.Fatalf("expire did not shrink ttl: %v", ttl)
	}
}

func TestMemorySets(t *testing.T) {
	ctx := context.Background()
	c := NewMemory("")

	if err := c.SAdd(ctx, "s", "a"); err != nil {
		t.Fatal(err)
	}
	if err := c.SAdd(ctx, "s", "b"); err != nil {
		t.Fatal(err)
	}

	members, err := c.SMembers(ctx, "s")
	if err != nil {
		t.Fatal(err)
	}
	if len(members) != 2 {
		t.Fatalf("expected 2 members, got %v", members)
	}

	if err := c.SRem(ctx, "s", "a"); err != nil {
		t.Fatal(err)
	}
	if err := c.SRem(ctx, "s", "b"); err != nil {
		t.Fatal(err)
	}

	// Un set vacío desaparece, igual que en Redis.
	members, err = c.SMembers(ctx, "s")
	if err != nil {
		t.Fatal(err)
	}
	if len(members) != 0 {
		t.Fatalf("expected empty set, got %v", members)
	}
}

func TestMemoryScan(t *testing.T) {
	ctx := context.Background()
	c := NewMemory("")

	_ = c.Set(ctx, "auth:token:a", "1", time.Minute)
	_ = c.Set(ctx, "auth:token:b", "2", time.Minute)
	_ = c.Set(ctx, "rate_limit:login", "3", time.Minute)

	var keys []string
	err := c.Scan(ctx, "auth:token:*", 10, func(key string) error {
		keys = append(keys, key)
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(keys) != 2 {
		t.Fatalf("expected 2 keys, got %v", keys)
	}
}

func TestMemoryIncrWindow(t *testing.T) {
	ctx := context.Background()
	c := NewMemory("")

	const max = 3
	for i := 1; i <= max; i++ {
		n, err := c.IncrWindow(ctx, "w", max, time.Minute)
		if err != nil {
			t.Fatal(err)
		}
		if n != int64(i) {
			t.Fatalf("hit %d: expected count %d, got %d", i, i, n)
		}
	}

	// El hit max+1 incrementa (queda en max+1) y a partir de ahí el contador
	// no crece más: las denegaciones no consumen ventana.
	n, err := c.IncrWindow(ctx, "w", max, time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	if n != max+1 {
		t.Fatalf("expected count %d, got %d", max+1, n)
	}
	n, err = c.IncrWindow(ctx, "w", max, time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	if n != max+1 {
		t.Fatalf("rejected hit must not increment: expected %d, got %d", max+1, n)
	}
}

func TestMemoryPrefix(t *testing.T) {
	ctx := context.Background()
	c := NewMemory("test")

	_ = c.Set(ctx, "auth:token:x", "1", time.Minute)

	var keys []string
	_ = c.Scan(ctx, "auth:token:*", 10, func(key string) error {
		keys = append(keys, key)
		return nil
	})
	if len(keys) != 1 || keys[0] != "auth:token:x" {
		t.Fatalf("scan must strip the prefix, got %v", keys)
	}
}
