package alert

import "github.com/gen2brain/beeep"

// DesktopNotifier raises notifications through the platform's native
// notification service.
type DesktopNotifier struct{}

// NewDesktopNotifier returns a notifier for the local desktop.
func NewDesktopNotifier() *DesktopNotifier {
	return &DesktopNotifier{}
}

// Notify shows one notification.
func (DesktopNotifier) Notify(title, body string) error {
	return beeep.Notify(title, body, "")
}
