package result

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestRegistry(now *time.Time) *Registry {
	n := 0
	return NewRegistry(time.Minute,
		WithClock(func() time.Time { return *now }),
		WithIDGenerator(func() string { n++; return fmt.Sprintf("view-%d", n) }),
	)
}

func TestRegistryMountReplacesSessionView(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	r := newTestRegistry(&now)

	first := r.Mount("s1", *catPayload(), Options{Scheduler: NewManualScheduler()})
	second := r.Mount("s1", *catPayload(), Options{})

	require.False(t, first.View.Mounted())
	require.True(t, second.View.Mounted())
	require.Equal(t, 1, r.Len())

	_, err := r.Get("s1", first.View.ID())
	require.ErrorIs(t, err, ErrNotFound)

	cur, ok := r.Current("s1")
	require.True(t, ok)
	require.Equal(t, "view-2", cur.View.ID())
}

func TestRegistryGetIsSessionBound(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	r := newTestRegistry(&now)
	m := r.Mount("s1", *catPayload(), Options{})

	_, err := r.Get("s2", m.View.ID())
	require.ErrorIs(t, err, ErrNotFound)
	got, err := r.Get("s1", m.View.ID())
	require.NoError(t, err)
	require.Same(t, m.View, got.View)
}

func TestRegistryReleaseUnmountsAndCancels(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	r := newTestRegistry(&now)
	sched := NewManualScheduler()
	m := r.Mount("s1", *catPayload(), Options{Scheduler: sched})
	require.NoError(t, m.View.Download())

	require.True(t, r.Release("s1"))
	require.False(t, r.Release("s1"))
	require.Zero(t, sched.Pending())
	require.Zero(t, m.Browser.Pending())
}

func TestRegistrySweepExpiresIdleViews(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	r := newTestRegistry(&now)
	m := r.Mount("s1", *catPayload(), Options{})

	now = now.Add(30 * time.Second)
	_, err := r.Get("s1", m.View.ID())
	require.NoError(t, err, "access extends the lifetime")

	now = now.Add(45 * time.Second)
	require.Zero(t, r.Sweep())

	now = now.Add(time.Minute)
	require.Equal(t, 1, r.Sweep())
	require.False(t, m.View.Mounted())
	_, ok := r.Current("s1")
	require.False(t, ok)
}

func TestRegistrySavePointsAtImageEndpoint(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	r := newTestRegistry(&now)
	sched := NewManualScheduler()
	m := r.Mount("s1", *catPayload(), Options{Scheduler: sched})

	require.NoError(t, m.View.Download())
	sched.Advance(DefaultDownloadDelay)

	got := m.Browser.Drain()
	require.Len(t, got, 1)
	require.Equal(t, "/result/view-1/image", got[0].URI)
	require.Equal(t, DownloadFilename, got[0].Filename)
}
