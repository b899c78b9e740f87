//go:build !linux

package platform

func newDesktop(appName string) *Desktop {
	return &Desktop{
		Notifier: unsupportedNotifier{},
		WakeLock: unsupportedWakeLock{},
	}
}
