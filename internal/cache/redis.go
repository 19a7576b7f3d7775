package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// incrWindowScript es el check-and-increment del rate limiter. Se ejecuta
// server-side en una sola evaluación para que no exista ventana entre el
// check y el incremento bajo concurrencia.
//
// ARGV[1] = max, ARGV[2] = window en segundos.
// Si el contador ya superó max, retorna el valor actual sin incrementar.
// Si no, incrementa; el primer hit de una ventana nueva fija el EXPIRE.
var incrWindowScript = redis.NewScript(`
local cur = redis.call('GET', KEYS[1])
if cur and tonumber(cur) > tonumber(ARGV[1]) then
  return tonumber(cur)
end
local n = redis.call('INCR', KEYS[1])
if n == 1 then
  redis.call('EXPIRE', KEYS[1], ARGV[2])
end
return n
`)

// redisClient implementa Client usando Redis.
type redisClient struct {
	client *redis.Client
	prefix string
}

// NewRedis crea un cliente de cache Redis.
func NewRedis(cfg Config) (*redisClient, error) {
	addr := cfg.Addr
	if addr == "" {
		addr = "localhost:6379"
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Verificar conexión
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("cache: redis ping failed: %w", err)
	}

	return &redisClient{
		client: rdb,
		prefix: cfg.Prefix,
	}, nil
}

func (c *redisClient) key(k string) string {
	if c.prefix == "" {
		return k
	}
	return c.prefix + ":" + k
}

func (c *redisClient) unkey(k string) string {
	if c.prefix == "" {
		return k
	}
	return k[len(c.prefix)+1:]
}

func (c *redisClient) Get(ctx context.Context, key string) (string, error) {
	val, err := c.client.Get(ctx, c.key(key)).Result()
	if err == redis.Nil {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return val, nil
}

func (c *redisClient) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return c.client.Set(ctx, c.key(key), value, ttl).Err()
}

func (c *redisClient) Delete(ctx context.Context, key string) error {
	return c.client.Del(ctx, c.key(key)).Err()
}

func (c *redisClient) TTL(ctx context.Context, key string) (time.Duration, error) {
	d, err := c.client.TTL(ctx, c.key(key)).Result()
	if err != nil {
		return 0, err
	}
	// Redis reporta -2 para key inexistente y -1 para key sin expiración.
	if d == -2*time.Second {
		return 0, ErrNotFound
	}
	if d == -1*time.Second {
		return 0, nil
	}
	return d, nil
}

func (c *redisClient) Expire(ctx context.Context, key string, ttl time.Duration) error {
	return c.client.Expire(ctx, c.key(key), ttl).Err()
}

func (c *redisClient) SAdd(ctx context.Context, key, member string) error {
	return c.client.SAdd(ctx, c.key(key), member).Err()
}

func (c *redisClient) SRem(ctx context.Context, key, member string) error {
	return c.client.SRem(ctx, c.key(key), member).Err()
}

func (c *redisClient) SMembers(ctx context.Context, key string) ([]string, error) {
	return c.client.SMembers(ctx, c.key(key)).Result()
}

func (c *redisClient) Scan(ctx context.Context, match string, count int64, fn func(key string) error) error {
	if count <= 0 {
		count = 100
	}
	var cursor uint64
	for {
		keys, next, err := c.client.Scan(ctx, cursor, c.key(match), count).Result()
		if err != nil {
			return err
		}
		for _, k := range keys {
			if err := fn(c.unkey(k)); err != nil {
				return err
			}
		}
		if next == 0 {
			return nil
		}
		cursor = next
	}
}

func (c *redisClient) IncrWindow(ctx context.Context, key string, max int64, window time.Duration) (int64, error) {
	secs := int64(window.Seconds())
	if secs < 1 {
		secs = 1
	}
	n, err := incrWindowScript.Run(ctx, c.client, []string{c.key(key)}, max, secs).Int64()
	if err != nil {
		return 0, err
	}
	return n, nil
}

func (c *redisClient) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *redisClient) Close() error {
	return c.client.Close()
}
