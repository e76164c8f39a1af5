package redis

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ojastore/storefront-backend/pkg/config"
)

// memRedis keeps strings and counters in one keyspace, like the server.
type memRedis struct {
	values  map[string]string
	ttl     map[string]time.Duration
	expires []string
}

func newMemRedis() *memRedis {
	return &memRedis{values: map[string]string{}, ttl: map[string]time.Duration{}}
}

func testClient() (*Client, *memRedis) {
	mem := newMemRedis()
	return &Client{store: mem}, mem
}

func (m *memRedis) lookup(key string) *redis.StringCmd {
	if v, ok := m.values[key]; ok {
		return redis.NewStringResult(v, nil)
	}
	return redis.NewStringResult("", redis.Nil)
}

func (m *memRedis) Ping(context.Context) *redis.StatusCmd {
	return redis.NewStatusResult("PONG", nil)
}

func (m *memRedis) Set(_ context.Context, key string, value any, ttl time.Duration) *redis.StatusCmd {
	if raw, ok := value.([]byte); ok {
		value = string(raw)
	}
	m.values[key] = fmt.Sprint(value)
	m.ttl[key] = ttl
	return redis.NewStatusResult("OK", nil)
}

func (m *memRedis) Get(_ context.Context, key string) *redis.StringCmd {
	return m.lookup(key)
}

func (m *memRedis) GetDel(_ context.Context, key string) *redis.StringCmd {
	cmd := m.lookup(key)
	delete(m.values, key)
	return cmd
}

func (m *memRedis) SetNX(ctx context.Context, key string, value any, ttl time.Duration) *redis.BoolCmd {
	if _, taken := m.values[key]; taken {
		return redis.NewBoolResult(false, nil)
	}
	m.Set(ctx, key, value, ttl)
	return redis.NewBoolResult(true, nil)
}

func (m *memRedis) Incr(_ context.Context, key string) *redis.IntCmd {
	var n int64
	fmt.Sscan(m.values[key], &n)
	n++
	m.values[key] = fmt.Sprint(n)
	return redis.NewIntResult(n, nil)
}

func (m *memRedis) Expire(_ context.Context, key string, ttl time.Duration) *redis.BoolCmd {
	m.expires = append(m.expires, key)
	m.ttl[key] = ttl
	return redis.NewBoolResult(true, nil)
}

func (m *memRedis) TTL(_ context.Context, key string) *redis.DurationCmd {
	if ttl, ok := m.ttl[key]; ok && ttl > 0 {
		return redis.NewDurationResult(ttl, nil)
	}
	return redis.NewDurationResult(-1, nil)
}

func (m *memRedis) Del(_ context.Context, keys ...string) *redis.IntCmd {
	var removed int64
	for _, key := range keys {
		if _, ok := m.values[key]; ok {
			removed++
		}
		delete(m.values, key)
		delete(m.ttl, key)
	}
	return redis.NewIntResult(removed, nil)
}

func TestFixedWindowCountsWithinWindow(t *testing.T) {
	ctx := context.Background()
	client, mem := testClient()

	var got []bool
	for i := 0; i < 3; i++ {
		allowed, count, err := client.FixedWindowAllow(ctx, "ip:login:1.2.3.4", 2, time.Second)
		require.NoError(t, err)
		assert.EqualValues(t, i+1, count)
		got = append(got, allowed)
	}
	assert.Equal(t, []bool{true, true, false}, got)
	assert.Len(t, mem.expires, 1, "window expiry is set once")
	assert.Equal(t, time.Second, mem.ttl[client.RateLimitKey("ip:login:1.2.3.4")])
}

func TestFixedWindowRepairsMissingTTL(t *testing.T) {
	ctx := context.Background()
	client, mem := testClient()
	key := client.RateLimitKey("ip:login:10.0.0.1")
	mem.values[key] = "3"

	_, count, err := client.FixedWindowAllow(ctx, "ip:login:10.0.0.1", 5, time.Minute)
	require.NoError(t, err)
	assert.EqualValues(t, 4, count)
	assert.Equal(t, []string{key}, mem.expires)
	assert.Equal(t, time.Minute, mem.ttl[key])
}

func TestCatalogCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	client, mem := testClient()
	const path = "/products?limit=100"

	_, ok, err := client.Load(ctx, path)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, client.Store(ctx, path, []byte(`{"products":[]}`), time.Minute))
	payload, ok, err := client.Load(ctx, path)
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `{"products":[]}`, string(payload))
	assert.Contains(t, mem.values, "oja:catalog:"+path)
}

func TestSessionKeyIsSingleUse(t *testing.T) {
	ctx := context.Background()
	client, _ := testClient()
	key := client.AccessSessionKey("a1")

	require.NoError(t, client.Set(ctx, key, "digest", time.Hour))
	got, err := client.GetDel(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "digest", got)

	_, err = client.GetDel(ctx, key)
	assert.ErrorIs(t, err, redis.Nil)
	_, err = client.Get(ctx, key)
	assert.ErrorIs(t, err, redis.Nil)
}

func TestSetNXClaimsOnce(t *testing.T) {
	ctx := context.Background()
	client, _ := testClient()
	key := client.IdempotencyKey("POST:/api/v1/orders", "k1")

	first, err := client.SetNX(ctx, key, "pending", time.Minute)
	require.NoError(t, err)
	second, err := client.SetNX(ctx, key, "pending", time.Minute)
	require.NoError(t, err)
	assert.True(t, first)
	assert.False(t, second)

	require.NoError(t, client.Del(ctx, key))
	again, err := client.SetNX(ctx, key, "pending", time.Minute)
	require.NoError(t, err)
	assert.True(t, again)
}

func TestKeyLayout(t *testing.T) {
	var client Client
	cases := map[string]string{
		client.IdempotencyKey("scope", "id"): "oja:idempotency:scope:id",
		client.RateLimitKey("scope"):         "oja:rate_limit:scope",
		client.AccessSessionKey("abc"):       "oja:session:access:abc",
		client.CatalogKey(""):                "oja:catalog",
	}
	for got, want := range cases {
		assert.Equal(t, want, got)
	}
}

func TestUninitializedClientFails(t *testing.T) {
	var client Client
	assert.True(t, errors.Is(client.Ping(context.Background()), errNotInitialized))
	_, _, err := client.FixedWindowAllow(context.Background(), "s", 1, time.Second)
	assert.Error(t, err)
}

func TestOptionsFromConfig(t *testing.T) {
	opts, err := optionsFromConfig(config.RedisConfig{URL: "redis://:pw@cache:6380/2", PoolSize: 7, DialTimeout: 3 * time.Second})
	require.NoError(t, err)
	assert.Equal(t, "cache:6380", opts.Addr)
	assert.Equal(t, 2, opts.DB)
	assert.Equal(t, "pw", opts.Password)
	assert.Equal(t, 7, opts.PoolSize)
	assert.Equal(t, 3*time.Second, opts.DialTimeout)

	opts, err = optionsFromConfig(config.RedisConfig{Address: "localhost:6379", DB: 1})
	require.NoError(t, err)
	assert.Equal(t, "localhost:6379", opts.Addr)
	assert.Equal(t, 1, opts.DB)

	_, err = optionsFromConfig(config.RedisConfig{})
	assert.Error(t, err)
}
