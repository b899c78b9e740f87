//go:build linux

package platform

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/godbus/dbus/v5"
)

const (
	notificationsDest  = "org.freedesktop.Notifications"
	notificationsPath  = dbus.ObjectPath("/org/freedesktop/Notifications")
	notificationsIface = "org.freedesktop.Notifications"

	screenSaverDest  = "org.freedesktop.ScreenSaver"
	screenSaverPath  = dbus.ObjectPath("/org/freedesktop/ScreenSaver")
	screenSaverIface = "org.freedesktop.ScreenSaver"

	notificationTimeout = 8 * time.Second
	inhibitReason       = "Workout in progress"
)

func newDesktop(appName string) *Desktop {
	bus := NewSessionBus()
	return &Desktop{
		Notifier: NewDBusNotifier(bus, appName),
		WakeLock: NewDBusWakeLock(bus, appName),
		close:    bus.Close,
	}
}

// busObjects is the part of *dbus.Conn the channels need.
type busObjects interface {
	Object(dest string, path dbus.ObjectPath) dbus.BusObject
}

// SessionBus is a lazily dialed connection to the user's session bus,
// shared by the notification and wake-lock channels.
type SessionBus struct {
	mu      sync.Mutex
	conn    *dbus.Conn
	objects busObjects
	dial    func() (*dbus.Conn, error)
}

func NewSessionBus() *SessionBus {
	return &SessionBus{
		dial: func() (*dbus.Conn, error) { return dbus.ConnectSessionBus() },
	}
}

// Object returns a proxy for path on dest, dialing the bus on first use.
func (b *SessionBus) Object(dest string, path dbus.ObjectPath) (dbus.BusObject, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.objects == nil {
		conn, err := b.dial()
		if err != nil {
			return nil, fmt.Errorf("connect session bus: %w", err)
		}
		b.conn = conn
		b.objects = conn
	}
	return b.objects.Object(dest, path), nil
}

func (b *SessionBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.conn == nil {
		return nil
	}
	err := b.conn.Close()
	b.conn = nil
	b.objects = nil
	return err
}

// DBusNotifier posts desktop notifications through org.freedesktop.Notifications.
// Each notification replaces the previous one so only the latest is shown.
type DBusNotifier struct {
	bus     *SessionBus
	appName string

	mu        sync.Mutex
	replaceID uint32
}

func NewDBusNotifier(bus *SessionBus, appName string) *DBusNotifier {
	if bus == nil {
		panic("DBusNotifier: bus cannot be nil")
	}
	return &DBusNotifier{bus: bus, appName: appName}
}

// RequestPermission succeeds when a notification daemon owns the name and
// can display a body.
func (n *DBusNotifier) RequestPermission(ctx context.Context) error {
	obj, err := n.bus.Object(notificationsDest, notificationsPath)
	if err != nil {
		return err
	}
	var capabilities []string
	if err := obj.CallWithContext(ctx, notificationsIface+".GetCapabilities", 0).Store(&capabilities); err != nil {
		return fmt.Errorf("notification capabilities: %w", err)
	}
	if !slices.Contains(capabilities, "body") {
		return fmt.Errorf("notification daemon cannot show a body (capabilities %v)", capabilities)
	}
	return nil
}

func (n *DBusNotifier) Notify(ctx context.Context, title, body string) error {
	obj, err := n.bus.Object(notificationsDest, notificationsPath)
	if err != nil {
		return err
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	var id uint32
	call := obj.CallWithContext(ctx, notificationsIface+".Notify", 0,
		n.appName,
		n.replaceID,
		"",
		title,
		body,
		[]string{},
		map[string]dbus.Variant{"urgency": dbus.MakeVariant(byte(1))},
		int32(notificationTimeout/time.Millisecond),
	)
	if err := call.Store(&id); err != nil {
		return fmt.Errorf("notify: %w", err)
	}
	n.replaceID = id
	return nil
}

// DBusWakeLock keeps the screen awake through org.freedesktop.ScreenSaver.
type DBusWakeLock struct {
	bus     *SessionBus
	appName string

	mu     sync.Mutex
	cookie uint32
	held   bool
}

func NewDBusWakeLock(bus *SessionBus, appName string) *DBusWakeLock {
	if bus == nil {
		panic("DBusWakeLock: bus cannot be nil")
	}
	return &DBusWakeLock{bus: bus, appName: appName}
}

func (w *DBusWakeLock) Acquire(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.held {
		return nil
	}

	obj, err := w.bus.Object(screenSaverDest, screenSaverPath)
	if err != nil {
		return err
	}
	var cookie uint32
	if err := obj.CallWithContext(ctx, screenSaverIface+".Inhibit", 0, w.appName, inhibitReason).Store(&cookie); err != nil {
		return fmt.Errorf("inhibit screensaver: %w", err)
	}
	w.cookie = cookie
	w.held = true
	return nil
}

func (w *DBusWakeLock) Release(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.held {
		return nil
	}

	obj, err := w.bus.Object(screenSaverDest, screenSaverPath)
	if err != nil {
		return err
	}
	w.held = false
	if call := obj.CallWithContext(ctx, screenSaverIface+".UnInhibit", 0, w.cookie); call.Err != nil {
		return fmt.Errorf("uninhibit screensaver: %w", call.Err)
	}
	return nil
}
