package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

// memRedis implements the commands RedisCache issues over a map.
type memRedis struct {
	redis.UniversalClient
	data   map[string][]byte
	ttls   map[string]time.Duration
	closed bool
}

func newMemRedis() *memRedis {
	return &memRedis{data: make(map[string][]byte), ttls: make(map[string]time.Duration)}
}

func (m *memRedis) Get(_ context.Context, key string) *redis.StringCmd {
	v, ok := m.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(string(v), nil)
}

func (m *memRedis) Set(_ context.Context, key string, value any, ttl time.Duration) *redis.StatusCmd {
	m.data[key] = value.([]byte)
	m.ttls[key] = ttl
	return redis.NewStatusResult("OK", nil)
}

func (m *memRedis) Del(_ context.Context, keys ...string) *redis.IntCmd {
	var n int64
	for _, k := range keys {
		if _, ok := m.data[k]; ok {
			delete(m.data, k)
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

func (m *memRedis) Close() error {
	m.closed = true
	return nil
}

func TestRedisCache(t *testing.T) {
	ctx := context.Background()
	client := newMemRedis()
	c := NewRedisCacheFromClient(client)

	if _, ok, err := c.Get(ctx, "tav:http:npm:express"); ok || err != nil {
		t.Fatalf("Get on empty cache = ok %v, err %v; want miss", ok, err)
	}

	if err := c.Set(ctx, "tav:http:npm:express", []byte(`{"4.18.2":{}}`), TTLVersions); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	if client.ttls["tav:http:npm:express"] != TTLVersions {
		t.Errorf("ttl = %v, want %v", client.ttls["tav:http:npm:express"], TTLVersions)
	}

	data, ok, err := c.Get(ctx, "tav:http:npm:express")
	if err != nil || !ok || string(data) != `{"4.18.2":{}}` {
		t.Errorf("Get = %q, %v, %v", data, ok, err)
	}

	if err := c.Delete(ctx, "tav:http:npm:express"); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	if _, ok, _ := c.Get(ctx, "tav:http:npm:express"); ok {
		t.Error("entry still present after Delete")
	}

	if err := c.Close(); err != nil || !client.closed {
		t.Errorf("Close() = %v, client closed = %v", err, client.closed)
	}
}

type failingRedis struct {
	redis.UniversalClient
}

func (failingRedis) Get(context.Context, string) *redis.StringCmd {
	return redis.NewStringResult("", errors.New("connection reset"))
}

func TestRedisCacheGetError(t *testing.T) {
	c := NewRedisCacheFromClient(failingRedis{})
	if _, ok, err := c.Get(context.Background(), "k"); err == nil || ok {
		t.Errorf("Get() = ok %v, err %v; want error", ok, err)
	}
}
