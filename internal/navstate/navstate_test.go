package navstate

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestTakeResultConsumesOnce(t *testing.T) {
	t.Parallel()

	s := NewStore(time.Minute)
	res := GenerationResult{Prompt: "a cat", Style: "cartoon", Complexity: "simple", GeneratedImage: "data:image/png;base64,AA=="}
	s.PutResult("sess", res)

	got, err := s.TakeResult("sess")
	require.NoError(t, err)
	require.Equal(t, res, got)

	_, err = s.TakeResult("sess")
	require.True(t, errors.Is(err, ErrNotFound), "second take must find nothing")
}

func TestStateIsScopedBySessionAndKind(t *testing.T) {
	t.Parallel()

	s := NewStore(time.Minute)
	s.PutResult("a", GenerationResult{Prompt: "a"})
	s.PutSeed("a", FormSeed{Prompt: "seed"})

	_, err := s.TakeResult("b")
	require.ErrorIs(t, err, ErrNotFound)

	seed, err := s.TakeSeed("a")
	require.NoError(t, err)
	require.Equal(t, "seed", seed.Prompt)

	res, err := s.TakeResult("a")
	require.NoError(t, err)
	require.Equal(t, "a", res.Prompt)
}

func TestExpiredEntriesAreNotReturned(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	s := NewStore(time.Minute)
	s.SetClock(func() time.Time { return now })
	s.PutSeed("sess", FormSeed{Prompt: "late"})
	s.PutResult("other", GenerationResult{Prompt: "x"})

	now = now.Add(2 * time.Minute)
	_, err := s.TakeSeed("sess")
	require.ErrorIs(t, err, ErrNotFound)

	require.Equal(t, 1, s.Sweep())
	require.Zero(t, s.Len())
}

func TestEmptySessionIsIgnored(t *testing.T) {
	t.Parallel()

	s := NewStore(time.Minute)
	s.PutResult("", GenerationResult{Prompt: "x"})
	require.Zero(t, s.Len())
	_, err := s.TakeResult("")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestGenerationResultHelpers(t *testing.T) {
	t.Parallel()

	res := GenerationResult{Prompt: "p", Style: "s", Complexity: "c", Theme: " ", GeneratedImage: ""}
	require.False(t, res.HasImage())
	require.False(t, res.HasTheme())
	require.Equal(t, FormSeed{Prompt: "p", Style: "s", Complexity: "c", Theme: " "}, res.Seed())
}
