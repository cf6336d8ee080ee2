// Package notify posts desktop notifications over the session bus so the
// person at the machine can see when an agent holds the input seat.
package notify

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/godbus/dbus/v5"
)

const (
	busName    = "org.freedesktop.Notifications"
	objectPath = dbus.ObjectPath("/org/freedesktop/Notifications")
	notifyCall = busName + ".Notify"
)

// Urgency levels of the freedesktop notification protocol.
const (
	UrgencyLow      byte = 0
	UrgencyNormal   byte = 1
	UrgencyCritical byte = 2
)

type caller interface {
	Call(method string, flags dbus.Flags, args ...interface{}) *dbus.Call
}

// Notifier posts notifications. Each new notification replaces the previous
// one so a session shows a single bubble. A nil Notifier is a no-op.
type Notifier struct {
	app    string
	conn   *dbus.Conn
	obj    caller
	logger *slog.Logger

	mu     sync.Mutex
	lastID uint32
}

// New connects a private session bus connection.
func New(app string, logger *slog.Logger) (*Notifier, error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to session bus: %w", err)
	}
	n := newNotifier(app, conn.Object(busName, objectPath), logger)
	n.conn = conn
	return n, nil
}

func newNotifier(app string, obj caller, logger *slog.Logger) *Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Notifier{app: app, obj: obj, logger: logger}
}

// Notify shows summary and body. timeoutMs of -1 leaves expiry to the
// notification server, 0 keeps the bubble until dismissed.
func (n *Notifier) Notify(summary, body string, urgency byte, timeoutMs int32) error {
	if n == nil {
		return nil
	}
	n.mu.Lock()
	defer n.mu.Unlock()

	hints := map[string]dbus.Variant{"urgency": dbus.MakeVariant(urgency)}
	call := n.obj.Call(notifyCall, 0,
		n.app, n.lastID, "input-mouse", summary, body, []string{}, hints, timeoutMs)
	if call.Err != nil {
		return fmt.Errorf("notify: %w", call.Err)
	}
	var id uint32
	if err := call.Store(&id); err != nil {
		return fmt.Errorf("notify reply: %w", err)
	}
	n.lastID = id
	return nil
}

// Post is Notify that logs failures instead of returning them.
func (n *Notifier) Post(summary, body string, urgency byte) {
	if err := n.Notify(summary, body, urgency, -1); err != nil {
		n.logger.Debug("notification failed", "error", err)
	}
}

// Close releases the bus connection.
func (n *Notifier) Close() error {
	if n == nil || n.conn == nil {
		return nil
	}
	return n.conn.Close()
}
