package cache

import (
	"context"
	"path"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// memoryClient implementa Client sobre go-cache.
// Útil para desarrollo y testing; no es distribuido.
type memoryClient struct {
	prefix string
	c      *gocache.Cache

	// mu serializa operaciones compuestas (sets y contadores) que en Redis
	// son atómicas por sí mismas o vía script.
	mu sync.Mutex
}

// NewMemory crea un cliente de cache en memoria.
func NewMemory(prefix string) *memoryClient {
	return &memoryClient{
		prefix: prefix,
		c:      gocache.New(gocache.NoExpiration, time.Minute),
	}
}

func (c *memoryClient) key(k string) string {
	if c.prefix == "" {
		return k
	}
	return c.prefix + ":" + k
}

func (c *memoryClient) unkey(k string) string {
	if c.prefix == "" {
		return k
	}
	return k[len(c.prefix)+1:]
}

// remaining retorna el TTL restante de una key viva.
// El segundo retorno es false si la key no existe.
func (c *memoryClient) remaining(k string) (time.Duration, bool) {
	_, exp, ok := c.c.GetWithExpiration(k)
	if !ok {
		return 0, false
	}
	if exp.IsZero() {
		return gocache.NoExpiration, true
	}
	return time.Until(exp), true
}

func (c *memoryClient) Get(ctx context.Context, key string) (string, error) {
	v, ok := c.c.Get(c.key(key))
	if !ok {
		return "", ErrNotFound
	}
	s, ok := v.(string)
	if !ok {
		return "", ErrNotFound
	}
	return s, nil
}

func (c *memoryClient) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = gocache.NoExpiration
	}
	c.c.Set(c.key(key), value, ttl)
	return nil
}

func (c *memoryClient) Delete(ctx context.Context, key string) error {
	c.c.Delete(c.key(key))
	return nil
}

func (c *memoryClient) TTL(ctx context.Context, key string) (time.Duration, error) {
	d, ok := c.remaining(c.key(key))
	if !ok {
		return 0, ErrNotFound
	}
	if d == gocache.NoExpiration {
		return 0, nil
	}
	return d, nil
}

func (c *memoryClient) Expire(ctx context.Context, key string, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	v, _, ok := c.c.GetWithExpiration(c.key(key))
	if !ok {
		return nil
	}
	if ttl <= 0 {
		ttl = gocache.NoExpiration
	}
	c.c.Set(c.key(key), v, ttl)
	return nil
}

func (c *memoryClient) SAdd(ctx context.Context, key, member string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	k := c.key(key)
	set := map[string]struct{}{}
	ttl := gocache.NoExpiration
	if v, exp, ok := c.c.GetWithExpiration(k); ok {
		if prev, ok := v.(map[string]struct{}); ok {
			for m := range prev {
				set[m] = struct{}{}
			}
		}
		if !exp.IsZero() {
			ttl = time.Until(exp)
		}
	}
	set[member] = struct{}{}
	c.c.Set(k, set, ttl)
	return nil
}

func (c *memoryClient) SRem(ctx context.Context, key, member string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	k := c.key(key)
	v, exp, ok := c.c.GetWithExpiration(k)
	if !ok {
		return nil
	}
	prev, ok := v.(map[string]struct{})
	if !ok {
		return nil
	}
	set := map[string]struct{}{}
	for m := range prev {
		if m != member {
			set[m] = struct{}{}
		}
	}
	// Igual que Redis: un set que queda vacío desaparece.
	if len(set) == 0 {
		c.c.Delete(k)
		return nil
	}
	ttl := gocache.NoExpiration
	if !exp.IsZero() {
		ttl = time.Until(exp)
	}
	c.c.Set(k, set, ttl)
	return nil
}

func (c *memoryClient) SMembers(ctx context.Context, key string) ([]string, error) {
	v, ok := c.c.Get(c.key(key))
	if !ok {
		return []string{}, nil
	}
	set, ok := v.(map[string]struct{})
	if !ok {
		return []string{}, nil
	}
	out := make([]string, 0, len(set))
	for m := range set {
		out = append(out, m)
	}
	return out, nil
}

func (c *memoryClient) Scan(ctx context.Context, match string, count int64, fn func(key string) error) error {
	pattern := c.key(match)
	// Items() ya excluye entradas expiradas.
	for k := range c.c.Items() {
		if ok, _ := path.Match(pattern, k); !ok {
			continue
		}
		if err := fn(c.unkey(k)); err != nil {
			return err
		}
	}
	return nil
}

func (c *memoryClient) IncrWindow(ctx context.Context, key string, max int64, window time.Duration) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	k := c.key(key)
	v, exp, ok := c.c.GetWithExpiration(k)
	if !ok {
		c.c.Set(k, int64(1), window)
		return 1, nil
	}
	cur, _ := v.(int64)
	if cur > max {
		return cur, nil
	}
	n := cur + 1
	ttl := gocache.NoExpiration
	if !exp.IsZero() {
		ttl = time.Until(exp)
	}
	c.c.Set(k, n, ttl)
	return n, nil
}

func (c *memoryClient) Ping(ctx context.Context) error { return nil }

func (c *memoryClient) Close() error { return nil }
