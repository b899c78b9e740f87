package cues

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/text/message"

	"github.com/lowaak/interval-trainer/internal/events"
	"github.com/lowaak/interval-trainer/internal/go_func_utils"
	"github.com/lowaak/interval-trainer/internal/i18n"
)

// TonePlayer plays a single tone and returns once it is done or failed.
type TonePlayer interface {
	Play(ctx context.Context, tone Tone) error
}

// Notifier dispatches OS-level notifications.
type Notifier interface {
	// RequestPermission checks that notifications can be shown at all.
	RequestPermission(ctx context.Context) error
	Notify(ctx context.Context, title, body string) error
}

// WakeLock keeps the display awake while held.
type WakeLock interface {
	Acquire(ctx context.Context) error
	Release(ctx context.Context) error
}

// FocusSignal reports whether the user is currently looking at the app.
type FocusSignal interface {
	Focused() bool
}

// Channels is the set of side-effect channels. A nil channel is absent and
// silently skipped.
type Channels struct {
	Tone     TonePlayer
	Notifier Notifier
	WakeLock WakeLock
	Focus    FocusSignal
}

// ErrChannelUnavailable is matched by every ChannelError.
var ErrChannelUnavailable = errors.New("cue channel unavailable")

// ChannelError reports a failed side effect. It never leaves the emitter
// except through logs and tests.
type ChannelError struct {
	Channel string
	Err     error
}

func (e *ChannelError) Error() string {
	return fmt.Sprintf("%s channel unavailable: %v", e.Channel, e.Err)
}

func (e *ChannelError) Unwrap() error { return e.Err }

func (e *ChannelError) Is(target error) bool { return target == ErrChannelUnavailable }

type permission int32

const (
	permissionUnknown permission = iota
	permissionPending
	permissionGranted
	permissionDenied
)

// Options tune the emitter. Zero values are replaced with defaults.
type Options struct {
	Locale      string
	QueueSize   int
	CallTimeout time.Duration

	// AfterFunc schedules f after d on another goroutine. Tone patterns use
	// it so tests can run them synchronously.
	AfterFunc func(d time.Duration, f func())
}

type request struct {
	event          Event
	releaseDisplay bool
}

// Emitter maps events to side effects. Fire never blocks: events are queued
// and dispatched in order by a single worker goroutine, so wake-lock
// acquire/release keep their relative order.
type Emitter struct {
	channels Channels
	options  Options
	printer  *message.Printer
	logger   *log.Logger

	queue      chan request
	fired      *events.CallbackEvent[Event]
	permission atomic.Int32

	// owned by the worker goroutine
	displayHeld bool

	doneChan     chan struct{}
	wg           sync.WaitGroup
	shutdownOnce sync.Once
}

// NewEmitter creates an Emitter and starts its dispatch goroutine.
func NewEmitter(channels Channels, logger *log.Logger, options Options) *Emitter {
	if logger == nil {
		panic("Emitter: logger cannot be nil")
	}
	if options.QueueSize <= 0 {
		options.QueueSize = 32
	}
	if options.CallTimeout <= 0 {
		options.CallTimeout = 2 * time.Second
	}
	if options.AfterFunc == nil {
		options.AfterFunc = defaultAfterFunc
	}

	e := &Emitter{
		channels: channels,
		options:  options,
		printer:  i18n.Printer(options.Locale),
		logger:   logger,
		queue:    make(chan request, options.QueueSize),
		fired:    events.NewCallbackEvent[Event](),
		doneChan: make(chan struct{}),
	}

	e.wg.Add(1)
	go_func_utils.SafeGo(logger, func() { e.run() })

	return e
}

func defaultAfterFunc(d time.Duration, f func()) {
	if d <= 0 {
		go f()
		return
	}
	time.AfterFunc(d, f)
}

// Fire queues event for dispatch. A full queue drops the event.
func (e *Emitter) Fire(event Event) {
	e.enqueue(request{event: event})
}

// ReleaseDisplay queues a wake-lock release without any audible cue.
func (e *Emitter) ReleaseDisplay() {
	e.enqueue(request{releaseDisplay: true})
}

// Listen registers a callback invoked after each event is dispatched.
// Callbacks run on the emitter goroutine and must not block.
func (e *Emitter) Listen(callback func(Event)) func() {
	return e.fired.Listen(callback)
}

// Shutdown stops the dispatch goroutine and releases the wake-lock.
// Safe to call multiple times - only the first call has effect
func (e *Emitter) Shutdown() {
	e.shutdownOnce.Do(func() {
		e.logger.Printf("CueEmitter: Shutting down")
		close(e.doneChan)
		e.wg.Wait()
		e.releaseDisplay()
		e.logger.Printf("CueEmitter: Shutdown complete")
	})
}

func (e *Emitter) enqueue(req request) {
	select {
	case <-e.doneChan:
		return
	default:
	}
	select {
	case e.queue <- req:
	default:
		e.logger.Printf("CueEmitter: queue full, dropping %v", req.event)
	}
}

func (e *Emitter) run() {
	defer e.wg.Done()
	for {
		select {
		case <-e.doneChan:
			return
		case req := <-e.queue:
			e.dispatch(req)
		}
	}
}

// dispatch performs every side effect of one request. Each channel fails
// independently.
func (e *Emitter) dispatch(req request) {
	if req.releaseDisplay {
		e.releaseDisplay()
		return
	}

	event := req.event
	e.playPattern(TonePattern(event.Kind))

	switch event.Kind {
	case PhaseChanged:
		body := e.printer.Sprintf(i18n.KeyNowPhase, event.Phase.Name) + ". " + i18n.KindLabel(e.printer, event.Phase.Kind)
		e.notify(e.printer.Sprintf(i18n.KeyPhaseChanged), body)
	case WorkoutComplete:
		e.notify(e.printer.Sprintf(i18n.KeyWorkoutComplete), e.printer.Sprintf(i18n.KeyWellDone, event.PlanName))
		e.releaseDisplay()
	case SessionResumed:
		e.requestPermission()
		e.acquireDisplay()
	case SessionPaused:
		e.releaseDisplay()
	}

	e.fired.Notify(event)
}

func (e *Emitter) playPattern(pattern []ToneStep) {
	if e.channels.Tone == nil {
		return
	}
	for _, step := range pattern {
		tone := step.Tone
		e.options.AfterFunc(step.Offset, func() {
			_ = e.call("tone", func(ctx context.Context) error {
				return e.channels.Tone.Play(ctx, tone)
			})
		})
	}
}

func (e *Emitter) notify(title, body string) {
	if e.channels.Notifier == nil {
		return
	}
	if e.channels.Focus != nil && e.channels.Focus.Focused() {
		e.logger.Printf("CueEmitter: notification %q suppressed, app has focus", title)
		return
	}
	if permission(e.permission.Load()) != permissionGranted {
		e.logger.Printf("CueEmitter: notification %q skipped, permission not granted", title)
		return
	}
	_ = e.call("notification", func(ctx context.Context) error {
		return e.channels.Notifier.Notify(ctx, title, body)
	})
}

// requestPermission asks for notification permission off the dispatch
// goroutine; the outcome only flips the availability flag.
func (e *Emitter) requestPermission() {
	if e.channels.Notifier == nil {
		return
	}
	if !e.permission.CompareAndSwap(int32(permissionUnknown), int32(permissionPending)) &&
		!e.permission.CompareAndSwap(int32(permissionDenied), int32(permissionPending)) {
		return
	}
	e.wg.Add(1)
	go_func_utils.SafeGo(e.logger, func() {
		defer e.wg.Done()
		err := e.call("notification-permission", func(ctx context.Context) error {
			return e.channels.Notifier.RequestPermission(ctx)
		})
		if err != nil {
			e.permission.Store(int32(permissionDenied))
			return
		}
		e.permission.Store(int32(permissionGranted))
		e.logger.Printf("CueEmitter: notification permission granted")
	})
}

func (e *Emitter) acquireDisplay() {
	if e.channels.WakeLock == nil || e.displayHeld {
		return
	}
	err := e.call("wakelock", func(ctx context.Context) error {
		return e.channels.WakeLock.Acquire(ctx)
	})
	e.displayHeld = err == nil
}

func (e *Emitter) releaseDisplay() {
	if e.channels.WakeLock == nil || !e.displayHeld {
		return
	}
	e.displayHeld = false
	_ = e.call("wakelock", func(ctx context.Context) error {
		return e.channels.WakeLock.Release(ctx)
	})
}

// call runs one side effect with a timeout, converting errors and panics
// into a logged *ChannelError.
func (e *Emitter) call(channel string, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(context.Background(), e.options.CallTimeout)
	defer cancel()

	err := go_func_utils.SafeCall(e.logger, channel, func() error { return fn(ctx) })
	if err == nil {
		return nil
	}
	channelErr := &ChannelError{Channel: channel, Err: err}
	e.logger.Printf("CueEmitter: %v", channelErr)
	return channelErr
}
