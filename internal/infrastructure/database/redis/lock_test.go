package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMutex_TryLockAndUnlock(t *testing.T) {
	client, _ := newTestClient(t)
	ctx := context.Background()
	m := NewMutex(client, "cleanup", time.Minute)

	ok, err := m.TryLock(ctx)
	require.NoError(t, err)
	assert.True(t, ok)

	// Second acquisition of the same name fails while held.
	other := NewMutex(client, "cleanup", time.Minute)
	ok, err = other.TryLock(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, m.Unlock(ctx))

	ok, err = other.TryLock(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMutex_UnlockRequiresOwnership(t *testing.T) {
	client, _ := newTestClient(t)
	ctx := context.Background()

	holder := NewMutex(client, "job", time.Minute)
	ok, err := holder.TryLock(ctx)
	require.NoError(t, err)
	require.True(t, ok)

	imposter := NewMutex(client, "job", time.Minute)
	assert.ErrorIs(t, imposter.Unlock(ctx), ErrLockNotHeld)

	// The real owner can still release.
	assert.NoError(t, holder.Unlock(ctx))
}

func TestMutex_LockBlocksUntilReleased(t *testing.T) {
	client, _ := newTestClient(t)
	ctx := context.Background()

	first := NewMutex(client, "serial", time.Minute)
	ok, err := first.TryLock(ctx)
	require.NoError(t, err)
	require.True(t, ok)

	second := NewMutex(client, "serial", time.Minute)
	done := make(chan error, 1)
	go func() {
		done <- second.Lock(ctx)
	}()

	time.Sleep(100 * time.Millisecond)
	require.NoError(t, first.Unlock(ctx))

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Lock did not acquire after release")
	}
}

func TestMutex_LockRespectsContext(t *testing.T) {
	client, _ := newTestClient(t)

	holder := NewMutex(client, "held", time.Minute)
	ok, err := holder.TryLock(context.Background())
	require.NoError(t, err)
	require.True(t, ok)

	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()

	waiter := NewMutex(client, "held", time.Minute)
	assert.Error(t, waiter.Lock(ctx))
}
