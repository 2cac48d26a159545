package media

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSweepRemovesOnlyExpiredPendingUploads(t *testing.T) {
	m, store, ledger := newTestManager(t)
	ctx := context.Background()

	old, err := m.Upload(ctx, File{Name: "old.png", Body: strings.NewReader("o")})
	require.NoError(t, err)

	m.now = func() time.Time { return time.UnixMilli(1700000000000).Add(2 * time.Hour) }
	fresh, err := m.Upload(ctx, File{Name: "fresh.png", Body: strings.NewReader("f")})
	require.NoError(t, err)

	kept, err := m.Upload(ctx, File{Name: "kept.png", Body: strings.NewReader("k")})
	require.NoError(t, err)
	require.NoError(t, m.Commit(ctx, kept.Key))

	s := NewSweeper(store, ledger, time.Hour)
	s.now = func() time.Time { return time.UnixMilli(1700000000000).Add(2*time.Hour + time.Minute) }

	removed, err := s.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	exists := func(key string) bool {
		ok, err := store.Exists(ctx, key)
		require.NoError(t, err)
		return ok
	}
	assert.False(t, exists(old.Key))
	assert.True(t, exists(fresh.Key))
	assert.True(t, exists(kept.Key))

	pending, err := ledger.Expired(ctx, time.UnixMilli(1700000000000).Add(3*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, []string{fresh.Key}, pending)
}

func TestSweepReleasesEntriesWhoseObjectIsGone(t *testing.T) {
	m, store, ledger := newTestManager(t)
	ctx := context.Background()
	require.NoError(t, ledger.Track(ctx, "ghost.png", time.UnixMilli(0)))

	s := NewSweeper(store, ledger, time.Minute)
	removed, err := s.Sweep(ctx)
	require.NoError(t, err)
	assert.Zero(t, removed)

	pending, err := ledger.Expired(ctx, m.now())
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestSweeperStartRejectsBadSchedule(t *testing.T) {
	_, store, ledger := newTestManager(t)
	s := NewSweeper(store, ledger, time.Minute)
	assert.Error(t, s.Start("not a schedule"))
	s.Stop()
}
