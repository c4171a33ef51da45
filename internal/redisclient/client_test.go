package redisclient

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()

	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("Integration test - set TEST_REDIS_ADDR to run")
	}

	client, err := NewClient(addr, "", 0)
	require.NoError(t, err)
	t.Cleanup(func() {
		client.Delete(context.Background(), lowStockKey)
		client.Close()
	})
	return client
}

func TestJSONRoundTrip(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()
	key := fmt.Sprintf("test:json:%d", time.Now().UnixNano())

	var miss map[string]int
	hit, err := client.GetJSON(ctx, key, &miss)
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, client.SetJSON(ctx, key, map[string]int{"orders": 3}, time.Minute))

	var got map[string]int
	hit, err = client.GetJSON(ctx, key, &got)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, 3, got["orders"])

	require.NoError(t, client.Delete(ctx, key))
}

func TestLowStockSet(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	added, err := client.MarkLowStock(ctx, "RING-002")
	require.NoError(t, err)
	assert.True(t, added)

	added, err = client.MarkLowStock(ctx, "RING-002")
	require.NoError(t, err)
	assert.False(t, added)

	_, err = client.MarkLowStock(ctx, "NECK-001")
	require.NoError(t, err)

	skus, err := client.LowStockSKUs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"NECK-001", "RING-002"}, skus)

	removed, err := client.ClearLowStock(ctx, "RING-002")
	require.NoError(t, err)
	assert.True(t, removed)

	skus, err = client.LowStockSKUs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"NECK-001"}, skus)
}
