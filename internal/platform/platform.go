// Package platform abstracts the host capabilities the result view relies on:
// file save, share sheet, clipboard and user alerts.
//
// The browser implementation cannot call those APIs from the server, so it
// queues instructions that are flushed to the client in an HX-Trigger event
// and executed by public/assets/app.js.
package platform

import (
	"context"
	"errors"
	"sync"
)

// ShareData is the payload handed to the platform share sheet.
type ShareData struct {
	Title string `json:"title"`
	Text  string `json:"text"`
	URL   string `json:"url"`
}

// Services are the host capabilities available to a view.
type Services interface {
	// Save triggers a browser-level download of uri as filename. Fire and forget.
	Save(uri, filename string)
	// CanShare reports whether the host advertises a share sheet.
	CanShare() bool
	Share(ctx context.Context, data ShareData) error
	WriteClipboard(text string) error
	// Notify shows a blocking user notification.
	Notify(message string)
}

// ErrShareUnavailable is returned by Share when the host has no share capability.
var ErrShareUnavailable = errors.New("platform: share not available")

// EventName is the HX-Trigger event carrying queued instructions.
const EventName = "platform"

// Op names a client-side instruction.
type Op string

const (
	OpSave      Op = "save"
	OpShare     Op = "share"
	OpClipboard Op = "clipboard"
	OpNotify    Op = "notify"
)

// Instruction is one queued call, serialized for app.js.
type Instruction struct {
	Op       Op         `json:"op"`
	URI      string     `json:"uri,omitempty"`
	Filename string     `json:"filename,omitempty"`
	Share    *ShareData `json:"share,omitempty"`
	Text     string     `json:"text,omitempty"`
}

// Browser queues instructions for one client.
type Browser struct {
	mu       sync.Mutex
	canShare bool
	saveHref func(uri string) string
	pending  []Instruction
}

// BrowserOption configures a Browser.
type BrowserOption func(*Browser)

// WithSaveHref rewrites the URI handed to Save before it reaches the client,
// e.g. to point at a server endpoint instead of an inline data URI.
func WithSaveHref(fn func(uri string) string) BrowserOption {
	return func(b *Browser) { b.saveHref = fn }
}

// NewBrowser returns an empty outbox. Share capability starts unknown (false).
func NewBrowser(opts ...BrowserOption) *Browser {
	b := &Browser{}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// SetCanShare records the capability the client advertised with its request.
func (b *Browser) SetCanShare(v bool) {
	b.mu.Lock()
	b.canShare = v
	b.mu.Unlock()
}

// CanShare implements Services.
func (b *Browser) CanShare() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.canShare
}

// Save implements Services.
func (b *Browser) Save(uri, filename string) {
	if b.saveHref != nil {
		uri = b.saveHref(uri)
	}
	b.push(Instruction{Op: OpSave, URI: uri, Filename: filename})
}

// Share implements Services. Completion happens on the client; a failure is
// reported back on a separate request.
func (b *Browser) Share(ctx context.Context, data ShareData) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !b.CanShare() {
		return ErrShareUnavailable
	}
	b.push(Instruction{Op: OpShare, Share: &data})
	return nil
}

// WriteClipboard implements Services.
func (b *Browser) WriteClipboard(text string) error {
	b.push(Instruction{Op: OpClipboard, Text: text})
	return nil
}

// Notify implements Services.
func (b *Browser) Notify(message string) {
	b.push(Instruction{Op: OpNotify, Text: message})
}

// Drain returns and clears the queued instructions in call order.
func (b *Browser) Drain() []Instruction {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := b.pending
	b.pending = nil
	return out
}

// Pending reports how many instructions are queued.
func (b *Browser) Pending() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.pending)
}

func (b *Browser) push(in Instruction) {
	b.mu.Lock()
	b.pending = append(b.pending, in)
	b.mu.Unlock()
}

// AddEvents merges drained instructions into an HX-Trigger event map.
// Nothing is added when ins is empty.
func AddEvents(events map[string]any, ins []Instruction) map[string]any {
	if len(ins) == 0 {
		return events
	}
	if events == nil {
		events = map[string]any{}
	}
	events[EventName] = ins
	return events
}
