package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGenerateKey(t *testing.T) {
	c := NewRedisCache("localhost:0", "restaurant-orders")

	assert.Equal(t, "restaurant-orders:bill:42", c.GenerateKey("bill", "42"))
}

func TestPingUnreachableServer(t *testing.T) {
	c := NewRedisCache("127.0.0.1:1", "restaurant-orders")
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	assert.Error(t, Ping(ctx, c))
}

type staticCache struct{ Cache }

func TestPingIgnoresOtherCaches(t *testing.T) {
	assert.NoError(t, Ping(context.Background(), staticCache{}))
}
