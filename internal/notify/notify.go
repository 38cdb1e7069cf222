// Package notify delivers user-facing notifications raised by the refresh
// controller. Delivery is fire-and-forget: a failed notification is logged
// and dropped, never propagated into the refresh that raised it.
package notify

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

// Notification is one user-facing message with an optional navigation target
// for the presentation layer.
type Notification struct {
	// ID uniquely identifies the notification (UUID format).
	ID string `json:"id"`

	// Title is the short headline ("2 new splits").
	Title string `json:"title"`

	// Body is the message text.
	Body string `json:"body"`

	// Target names the view the presentation layer should navigate to when
	// the notification is tapped, e.g. "splits" or "group:<id>". Optional.
	Target string `json:"target,omitempty"`
}

// New builds a Notification with a fresh ID.
func New(title, body, target string) Notification {
	return Notification{
		ID:     uuid.New().String(),
		Title:  title,
		Body:   body,
		Target: target,
	}
}

// Notifier delivers notifications. Implementations must be safe for
// concurrent use.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// SlogNotifier writes notifications to the structured log. The default sink
// when no platform notifier is wired in.
type SlogNotifier struct{}

// Notify implements Notifier.
func (SlogNotifier) Notify(ctx context.Context, n Notification) error {
	slog.Info("Notification",
		"notification_id", n.ID,
		"title", n.Title,
		"body", n.Body,
		"target", n.Target,
	)
	return nil
}
