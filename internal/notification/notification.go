package notification

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

const (
	// KindWalletFunded is emitted after a successful deposit.
	KindWalletFunded = "wallet_funded"
	// KindWalletWithdrawn is emitted after a successful withdrawal.
	KindWalletWithdrawn = "wallet_withdrawn"
)

// Message describes a wallet event.
type Message struct {
	Kind        string
	Destination string
	Body        string
	OccurredAt  time.Time
}

// Notifier delivers wallet events to downstream systems.
type Notifier interface {
	Send(ctx context.Context, message Message) error
}

// LoggerNotifier writes events to the structured logger.
type LoggerNotifier struct {
	logger *slog.Logger
}

// NewLoggerNotifier constructs a logging notifier.
func NewLoggerNotifier(logger *slog.Logger) *LoggerNotifier {
	return &LoggerNotifier{logger: logger}
}

// Send writes the message to the structured logger.
func (n *LoggerNotifier) Send(_ context.Context, message Message) error {
	if n == nil || n.logger == nil {
		return nil
	}
	n.logger.Info("notification",
		slog.String("kind", message.Kind),
		slog.String("destination", message.Destination),
		slog.String("body", message.Body),
		slog.Time("occurred_at", message.OccurredAt),
	)
	return nil
}

// Multi fans a message out to every notifier, returning the joined errors.
type Multi []Notifier

// Send delivers to all notifiers even when some of them fail.
func (m Multi) Send(ctx context.Context, message Message) error {
	var errs []error
	for _, n := range m {
		if n == nil {
			continue
		}
		if err := n.Send(ctx, message); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
