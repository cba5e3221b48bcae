package app

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tair/pos-core/internal/config"
	"github.com/tair/pos-core/internal/store"
)

func memoryConfig() *config.Config {
	return &config.Config{
		ServiceName:        "pos-core",
		Timezone:           "UTC",
		HTTPPort:           "0",
		GRPCPort:           "0",
		JWTSecret:          "app-test-secret",
		JWTTTL:             time.Hour,
		AdminPassword:      "admin-pass",
		CashierPassword:    "cashier-pass",
		SeedDemo:           true,
		NotificationWindow: 20,
		LoginRateLimit:     5,
		LoginRateWindow:    time.Minute,
		Sync:               config.SyncConfig{Interval: time.Second},
	}
}

func TestInitializeAppInMemory(t *testing.T) {
	a, cleanup, err := InitializeApp(memoryConfig())
	require.NoError(t, err)
	defer cleanup()

	assert.Nil(t, a.Publisher())
	assert.Empty(t, a.Store().MirrorStatus())

	ctx := context.Background()
	require.NoError(t, a.Prepare(ctx))
	assert.Len(t, a.Store().Products(), len(store.DemoProducts()))

	accounts, err := a.accounts.FindAll(ctx)
	require.NoError(t, err)
	assert.Len(t, accounts, 2)

	// a second start keeps the existing catalog and accounts
	require.NoError(t, a.Prepare(ctx))
	assert.Len(t, a.Store().Products(), len(store.DemoProducts()))
	accounts, err = a.accounts.FindAll(ctx)
	require.NoError(t, err)
	assert.Len(t, accounts, 2)
}

func TestRunStopsWithContext(t *testing.T) {
	a, cleanup, err := InitializeApp(memoryConfig())
	require.NoError(t, err)
	defer cleanup()
	require.NoError(t, a.Prepare(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not stop after cancellation")
	}
}
