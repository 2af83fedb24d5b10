package notification

import (
	"context"
	"log/slog"
	"time"
)

const (
	// KindAccountOpened is emitted once a new account has been persisted.
	KindAccountOpened = "account_opened"
	// KindAccountClosed is emitted when an account moves to CLOSED.
	KindAccountClosed = "account_closed"
	// KindTransactionApplied is emitted after a transaction has been committed.
	KindTransactionApplied = "transaction_applied"
)

// Message describes a domain event delivered to downstream systems.
type Message struct {
	Kind          string    `json:"kind"`
	AccountID     int64     `json:"account_id"`
	AccountNumber string    `json:"account_number"`
	TransactionID string    `json:"transaction_id,omitempty"`
	Amount        string    `json:"amount,omitempty"`
	Body          string    `json:"body,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// Notifier delivers notifications to downstream systems.
type Notifier interface {
	Send(ctx context.Context, message Message) error
}

// LoggerNotifier writes notifications to the structured logger.
type LoggerNotifier struct {
	logger *slog.Logger
}

// NewLoggerNotifier constructs a logging notifier.
func NewLoggerNotifier(logger *slog.Logger) *LoggerNotifier {
	return &LoggerNotifier{logger: logger}
}

// Send writes the message to the structured logger.
func (n *LoggerNotifier) Send(ctx context.Context, message Message) error {
	if n == nil || n.logger == nil {
		return nil
	}
	n.logger.InfoContext(ctx, "notification",
		slog.String("kind", message.Kind),
		slog.Int64("account_id", message.AccountID),
		slog.String("account_number", message.AccountNumber),
		slog.String("transaction_id", message.TransactionID),
		slog.String("amount", message.Amount),
		slog.String("body", message.Body),
	)
	return nil
}
