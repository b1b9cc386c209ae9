// Package alert turns an episode decision into outbound
// notifications: at most one SMS and one desktop notification per
// episode. Channel failures are logged and never propagate back into
// the detection loop.
package alert

import (
	"context"
	"log/slog"

	"github.com/tonypeng1/moomoo/internal/episode"
)

// Transport sends one message to a remote channel.
type Transport interface {
	Send(ctx context.Context, message string) error
}

// Notifier raises a local desktop notification.
type Notifier interface {
	Notify(title, body string) error
}

// Outcome records which channels fired for an episode.
type Outcome struct {
	SMSSent  bool
	Notified bool
}

// Dispatcher fans an alert out to its configured channels. Either
// channel may be nil, in which case it is simply skipped.
type Dispatcher struct {
	transport Transport
	notifier  Notifier
	maxLen    int
}

// NewDispatcher builds a dispatcher. maxLen caps the SMS body length
// in runes; zero or negative applies the default.
func NewDispatcher(transport Transport, notifier Notifier, maxLen int) *Dispatcher {
	if maxLen <= 0 {
		maxLen = DefaultMaxMessageLen
	}
	return &Dispatcher{transport: transport, notifier: notifier, maxLen: maxLen}
}

// Dispatch sends the episode's alert on every configured channel.
// Each channel is attempted independently; a failure on one never
// blocks the other.
func (d *Dispatcher) Dispatch(ctx context.Context, ep *episode.Episode) {
	d.dispatch(ctx, ep)
}

// dispatch is the Outcome-returning form, split out for tests.
func (d *Dispatcher) dispatch(ctx context.Context, ep *episode.Episode) Outcome {
	var out Outcome
	msg := Summary(ep, d.maxLen)

	if d.transport != nil {
		if err := d.transport.Send(ctx, msg); err != nil {
			slog.Error("sms send failed", "episode", ep.ID, "error", err)
		} else {
			out.SMSSent = true
			slog.Info("sms sent", "episode", ep.ID)
		}
	}

	if d.notifier != nil {
		if err := d.notifier.Notify(notifyTitle, msg); err != nil {
			slog.Error("desktop notification failed", "episode", ep.ID, "error", err)
		} else {
			out.Notified = true
		}
	}
	return out
}
