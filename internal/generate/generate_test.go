package generate

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validRequest() Request {
	return Request{Prompt: "a cat on a skateboard", Style: "cartoon", Complexity: "simple"}
}

func TestValidateAcceptsFormValues(t *testing.T) {
	t.Parallel()

	req := Request{Prompt: "  a cat  ", Style: "Cartoon", Complexity: "SIMPLE", Theme: " animals "}.Normalize()
	require.NoError(t, req.Validate())
	require.Equal(t, "a cat", req.Prompt)
	require.Equal(t, "cartoon", req.Style)
	require.Equal(t, "animals", req.Theme)
}

func TestValidateReportsFormFieldNames(t *testing.T) {
	t.Parallel()

	err := Request{Prompt: "", Style: "watercolor", Complexity: "simple", Theme: "bad\x00"}.Validate()
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrInvalidRequest))

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.Equal(t, "required", verr.Fields["prompt"])
	require.Equal(t, "oneof", verr.Fields["style"])
	require.Equal(t, "prompt_text", verr.Fields["theme"])
	require.False(t, verr.Has("complexity"))
	require.Contains(t, verr.Error(), "prompt (required)")
}

func TestMockClientReturnsDeterministicPNG(t *testing.T) {
	t.Parallel()

	c := NewClient("", "", 0)
	require.True(t, c.Mock())

	a, err := c.Generate(context.Background(), validRequest())
	require.NoError(t, err)
	b, err := c.Generate(context.Background(), validRequest())
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(a.Image, "data:image/png;base64,"))
	require.Equal(t, a.Image, b.Image)
}

func TestClientRejectsInvalidBeforeCalling(t *testing.T) {
	t.Parallel()

	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { called = true }))
	t.Cleanup(srv.Close)

	_, err := NewClient(srv.URL, "", time.Second).Generate(context.Background(), Request{})
	require.ErrorIs(t, err, ErrInvalidRequest)
	require.False(t, called)
}

func TestClientPostsToGenerator(t *testing.T) {
	t.Parallel()

	var got Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/generate", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"image":"https://cdn.test/p.png"}`))
	}))
	t.Cleanup(srv.Close)

	res, err := NewClient(srv.URL+"/v1/", "secret", time.Second).Generate(context.Background(), validRequest())
	require.NoError(t, err)
	require.Equal(t, "https://cdn.test/p.png", res.Image)
	require.Equal(t, validRequest(), got)
}

func TestClientSurfacesUpstreamErrors(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "model overloaded", http.StatusServiceUnavailable)
	}))
	t.Cleanup(srv.Close)

	_, err := NewClient(srv.URL, "", time.Second).Generate(context.Background(), validRequest())
	require.Error(t, err)
	require.Contains(t, err.Error(), "status 503")
	require.Contains(t, err.Error(), "model overloaded")
}
