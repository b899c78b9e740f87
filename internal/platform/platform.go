package platform

import (
	"context"
	"errors"

	"github.com/lowaak/interval-trainer/internal/cues"
)

// ErrUnsupported is returned by channels the current desktop cannot provide.
var ErrUnsupported = errors.New("not supported on this platform")

// Desktop bundles the desktop integration channels of one process.
type Desktop struct {
	Notifier cues.Notifier
	WakeLock cues.WakeLock
	close    func() error
}

// NewDesktop returns the notification and wake-lock channels for the
// running platform. appName is shown by the notification daemon.
func NewDesktop(appName string) *Desktop {
	return newDesktop(appName)
}

// Close releases the underlying desktop connection.
func (d *Desktop) Close() error {
	if d.close == nil {
		return nil
	}
	return d.close()
}

type unsupportedNotifier struct{}

func (unsupportedNotifier) RequestPermission(ctx context.Context) error { return ErrUnsupported }
func (unsupportedNotifier) Notify(ctx context.Context, title, body string) error {
	return ErrUnsupported
}

type unsupportedWakeLock struct{}

func (unsupportedWakeLock) Acquire(ctx context.Context) error { return ErrUnsupported }
func (unsupportedWakeLock) Release(ctx context.Context) error { return nil }
