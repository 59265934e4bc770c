package platform

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBrowserQueuesInCallOrder(t *testing.T) {
	t.Parallel()

	b := NewBrowser()
	require.NoError(t, b.WriteClipboard("https://example.test/result"))
	b.Notify("Link copied to clipboard!")

	got := b.Drain()
	require.Equal(t, []Instruction{
		{Op: OpClipboard, Text: "https://example.test/result"},
		{Op: OpNotify, Text: "Link copied to clipboard!"},
	}, got)
	require.Zero(t, b.Pending())
	require.Empty(t, b.Drain())
}

func TestBrowserShareRequiresCapability(t *testing.T) {
	t.Parallel()

	b := NewBrowser()
	err := b.Share(context.Background(), ShareData{Title: "t"})
	require.ErrorIs(t, err, ErrShareUnavailable)
	require.Zero(t, b.Pending())

	b.SetCanShare(true)
	require.NoError(t, b.Share(context.Background(), ShareData{Title: "t", URL: "u"}))
	got := b.Drain()
	require.Len(t, got, 1)
	require.Equal(t, OpShare, got[0].Op)
	require.Equal(t, "u", got[0].Share.URL)
}

func TestBrowserShareHonoursCancelledContext(t *testing.T) {
	t.Parallel()

	b := NewBrowser()
	b.SetCanShare(true)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, b.Share(ctx, ShareData{}), context.Canceled)
}

func TestSaveHrefRewritesURI(t *testing.T) {
	t.Parallel()

	b := NewBrowser(WithSaveHref(func(string) string { return "/result/abc/image" }))
	b.Save("data:image/png;base64,AA==", "coloring-page.png")
	require.Equal(t, []Instruction{{Op: OpSave, URI: "/result/abc/image", Filename: "coloring-page.png"}}, b.Drain())
}

func TestAddEventsSerializesForClient(t *testing.T) {
	t.Parallel()

	require.Nil(t, AddEvents(nil, nil))

	events := AddEvents(map[string]any{"other": true}, []Instruction{{Op: OpNotify, Text: "hi"}})
	raw, err := json.Marshal(events)
	require.NoError(t, err)
	require.JSONEq(t, `{"other":true,"platform":[{"op":"notify","text":"hi"}]}`, string(raw))
}
