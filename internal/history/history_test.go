package history

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"finitefield.org/colorcraft-web/internal/navstate"
)

func TestAddKeepsNewestFirstWithinLimit(t *testing.T) {
	t.Parallel()

	s := NewStore(3)
	for i := 0; i < 5; i++ {
		s.Add("sess", navstate.GenerationResult{Prompt: fmt.Sprintf("p%d", i)})
	}
	list := s.List("sess")
	require.Len(t, list, 3)
	require.Equal(t, "p4", list[0].Result.Prompt)
	require.Equal(t, "p2", list[2].Result.Prompt)
}

func TestGetIsSessionScoped(t *testing.T) {
	t.Parallel()

	s := NewStore(0)
	e := s.Add("a", navstate.GenerationResult{Prompt: "mine"})

	got, err := s.Get("a", e.ID)
	require.NoError(t, err)
	require.Equal(t, "mine", got.Result.Prompt)

	_, err = s.Get("b", e.ID)
	require.ErrorIs(t, err, ErrNotFound)
	require.Empty(t, s.List("b"))
}

func TestAddWithoutSessionIsNotStored(t *testing.T) {
	t.Parallel()

	s := NewStore(0)
	e := s.Add("", navstate.GenerationResult{Prompt: "x"})
	require.NotEmpty(t, e.ID)
	require.Empty(t, s.List(""))
}
