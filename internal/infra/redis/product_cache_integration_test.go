//go:build integration

package redis

import (
	"context"
	"fmt"
	"testing"
	"time"

	"delivery-service/internal/domain"

	goredis "github.com/go-redis/redis/v8"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func TestProductCache(t *testing.T) {
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "6379")
	require.NoError(t, err)

	rdb := goredis.NewClient(&goredis.Options{Addr: fmt.Sprintf("%s:%s", host, port.Port())})
	defer rdb.Close()

	cache := NewProductCache(rdb, time.Minute)

	miss, err := cache.Get(ctx, "p-1")
	require.NoError(t, err)
	assert.Nil(t, miss)

	milk := &domain.Product{ID: "p-1", Name: "Milk", Price: decimal.RequireFromString("80.50")}
	require.NoError(t, cache.Set(ctx, milk))

	hit, err := cache.Get(ctx, "p-1")
	require.NoError(t, err)
	require.NotNil(t, hit)
	assert.Equal(t, "Milk", hit.Name)
	assert.True(t, hit.Price.Equal(milk.Price))

	ttl, err := rdb.TTL(ctx, "product:p-1").Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
}
