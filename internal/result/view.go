// Package result implements the result page state machine.
//
// A View is Empty when it was mounted without a generated image and Populated
// otherwise. Only a Populated view accepts actions. Every mutation happens
// under the view mutex, and callbacks that fire after Unmount leave the view
// untouched.
package result

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"finitefield.org/colorcraft-web/internal/navstate"
	"finitefield.org/colorcraft-web/internal/platform"
)

const (
	// DownloadFilename is the name offered to the browser save dialog.
	DownloadFilename = "coloring-page.png"
	// DefaultDownloadDelay is the simulated preparation time before saving.
	DefaultDownloadDelay = 2 * time.Second
	// ShareTitle is the share sheet title.
	ShareTitle = "My ColorCraft AI Creation"
	// CopiedMessage is shown after the clipboard fallback.
	CopiedMessage = "Link copied to clipboard!"
	// CreatePath is where regenerate and the empty state lead.
	CreatePath = "/create"
)

var (
	ErrEmpty            = errors.New("result: no generated image")
	ErrDownloadInFlight = errors.New("result: download already in progress")
	ErrUnmounted        = errors.New("result: view is no longer mounted")
)

// State of a mounted view.
type State int

const (
	StateEmpty State = iota
	StatePopulated
)

func (s State) String() string {
	if s == StatePopulated {
		return "populated"
	}
	return "empty"
}

// Navigator moves the client to another page, handing seed to the create form.
type Navigator interface {
	Navigate(path string, seed navstate.FormSeed)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(path string, seed navstate.FormSeed)

// Navigate implements Navigator.
func (fn NavigatorFunc) Navigate(path string, seed navstate.FormSeed) { fn(path, seed) }

// Options tune a View. Zero values pick production defaults.
type Options struct {
	Scheduler     Scheduler
	DownloadDelay time.Duration
	Now           func() time.Time
	Logger        *zap.Logger
}

func (o Options) withDefaults() Options {
	if o.Scheduler == nil {
		o.Scheduler = TimerScheduler
	}
	if o.DownloadDelay <= 0 {
		o.DownloadDelay = DefaultDownloadDelay
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	return o
}

// View is one mounted result page.
type View struct {
	id      string
	state   State
	payload navstate.GenerationResult
	svc     platform.Services
	opts    Options

	mu             sync.Mutex
	liked          bool
	downloading    bool
	mounted        bool
	cancelDownload func() bool
}

// NewView mounts a view for payload. A nil payload or one without an image
// yields an Empty view.
func NewView(id string, payload *navstate.GenerationResult, svc platform.Services, opts Options) *View {
	v := &View{
		id:      id,
		state:   StateEmpty,
		svc:     svc,
		opts:    opts.withDefaults(),
		mounted: true,
	}
	if payload != nil && payload.HasImage() {
		v.state = StatePopulated
		v.payload = *payload
	}
	return v
}

// ID returns the view identifier used in action URLs.
func (v *View) ID() string { return v.id }

// State returns Empty or Populated. It never changes after mount.
func (v *View) State() State { return v.state }

// Payload returns the generation result the view was mounted with.
func (v *View) Payload() navstate.GenerationResult { return v.payload }

// Snapshot is the render model of a view.
type Snapshot struct {
	ID          string
	State       State
	Prompt      string
	Style       string
	Complexity  string
	Theme       string
	Image       string
	Liked       bool
	Downloading bool
	Mounted     bool
	RenderedAt  time.Time
}

// Populated is a template helper.
func (s Snapshot) Populated() bool { return s.State == StatePopulated }

// Snapshot captures the current state. RenderedAt is taken from the view clock
// at call time.
func (v *View) Snapshot() Snapshot {
	v.mu.Lock()
	defer v.mu.Unlock()
	return Snapshot{
		ID:          v.id,
		State:       v.state,
		Prompt:      v.payload.Prompt,
		Style:       v.payload.Style,
		Complexity:  v.payload.Complexity,
		Theme:       v.payload.Theme,
		Image:       v.payload.GeneratedImage,
		Liked:       v.liked,
		Downloading: v.downloading,
		Mounted:     v.mounted,
		RenderedAt:  v.opts.Now(),
	}
}

// Mounted reports whether the view is still live.
func (v *View) Mounted() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.mounted
}

func (v *View) actionable() error {
	if v.state != StatePopulated {
		return ErrEmpty
	}
	if !v.mounted {
		return ErrUnmounted
	}
	return nil
}

// ToggleLike flips the cosmetic liked flag and returns the new value.
func (v *View) ToggleLike() (bool, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if err := v.actionable(); err != nil {
		return v.liked, err
	}
	v.liked = !v.liked
	return v.liked, nil
}

// Download marks the view as downloading and schedules the save after the
// configured delay. A second call while in flight is rejected.
func (v *View) Download() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if err := v.actionable(); err != nil {
		return err
	}
	if v.downloading {
		return ErrDownloadInFlight
	}
	v.downloading = true
	v.cancelDownload = v.opts.Scheduler.AfterFunc(v.opts.DownloadDelay, v.finishDownload)
	v.opts.Logger.Debug("download scheduled", zap.String("view_id", v.id), zap.Duration("delay", v.opts.DownloadDelay))
	return nil
}

func (v *View) finishDownload() {
	v.mu.Lock()
	if !v.mounted || !v.downloading {
		v.mu.Unlock()
		return
	}
	v.downloading = false
	v.cancelDownload = nil
	uri := v.payload.GeneratedImage
	v.mu.Unlock()

	v.svc.Save(uri, DownloadFilename)
	v.opts.Logger.Info("download delivered", zap.String("view_id", v.id))
}

// Regenerate sends the client back to the create form with the original inputs.
func (v *View) Regenerate(nav Navigator) error {
	v.mu.Lock()
	if err := v.actionable(); err != nil {
		v.mu.Unlock()
		return err
	}
	seed := v.payload.Seed()
	v.mu.Unlock()

	nav.Navigate(CreatePath, seed)
	return nil
}

// ShareData builds the share sheet payload for pageURL.
func (v *View) ShareData(pageURL string) platform.ShareData {
	return platform.ShareData{
		Title: ShareTitle,
		Text:  fmt.Sprintf("Check out this coloring page I created with AI: \"%s\"", v.payload.Prompt),
		URL:   pageURL,
	}
}

// Share opens the platform share sheet, or copies pageURL to the clipboard and
// notifies the user when the capability is missing. Share failures are logged
// and swallowed.
func (v *View) Share(ctx context.Context, pageURL string) error {
	v.mu.Lock()
	if err := v.actionable(); err != nil {
		v.mu.Unlock()
		return err
	}
	v.mu.Unlock()

	if v.svc.CanShare() {
		if err := v.svc.Share(ctx, v.ShareData(pageURL)); err != nil {
			v.logShareFailure("", err.Error())
		}
		return nil
	}
	if err := v.svc.WriteClipboard(pageURL); err != nil {
		v.opts.Logger.Warn("clipboard write failed", zap.String("view_id", v.id), zap.Error(err))
	}
	v.svc.Notify(CopiedMessage)
	return nil
}

// ShareFailed records a failure the client hit while showing the share sheet.
func (v *View) ShareFailed(name, message string) {
	v.logShareFailure(name, message)
}

// AbortError is the DOMException name for a share the user dismissed.
const AbortError = "AbortError"

func (v *View) logShareFailure(name, message string) {
	fields := []zap.Field{
		zap.String("view_id", v.id),
		zap.String("error_name", name),
		zap.String("error", message),
	}
	if name == AbortError {
		v.opts.Logger.Info("share cancelled", fields...)
		return
	}
	v.opts.Logger.Warn("share failed", fields...)
}

// Unmount tears the view down and cancels a pending download.
func (v *View) Unmount() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.mounted {
		return
	}
	v.mounted = false
	if v.cancelDownload != nil {
		v.cancelDownload()
		v.cancelDownload = nil
	}
	v.downloading = false
}
