package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestKeyedLimiterAllowsBurstPerKey(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	l := newKeyedLimiter(2, time.Minute)
	l.clock = func() time.Time { return now }

	require.True(t, l.Allow("a"))
	require.True(t, l.Allow("a"))
	require.False(t, l.Allow("a"))
	require.True(t, l.Allow("b"), "keys are independent")

	now = now.Add(30 * time.Second)
	require.True(t, l.Allow("a"), "one token refills every window/limit")
}

func TestKeyedLimiterDisabled(t *testing.T) {
	var l *keyedLimiter = newKeyedLimiter(0, time.Minute)
	require.Nil(t, l)
	for i := 0; i < 100; i++ {
		require.True(t, l.Allow("a"))
	}
}
