// Package notifier delivers best-effort customer notifications. Delivery is
// logged; a notice without an email address is silently dropped and failures
// never propagate to the calling operation.
package notifier

import (
	"context"

	"wallet-ledger/internal/core/ports"
	"wallet-ledger/pkg/money"

	"github.com/rs/zerolog"
)

// LogNotifier implements ports.Notifier by writing structured log events.
// It stands in for an outbound mail integration.
type LogNotifier struct {
	log zerolog.Logger
}

// New creates a log-backed notifier.
func New(log zerolog.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

// TransferReceived notifies the recipient of an incoming transfer.
func (n *LogNotifier) TransferReceived(ctx context.Context, notice ports.TransferNotice) {
	if notice.Email == "" {
		return
	}
	n.log.Info().
		Str("email", notice.Email).
		Str("from", notice.FromName).
		Str("to", notice.ToName).
		Str("currency", notice.Currency).
		Str("amount", money.Format(notice.Amount)).
		Msg("transfer notification sent")
}

// ExchangeCompleted notifies the owner of a completed exchange.
func (n *LogNotifier) ExchangeCompleted(ctx context.Context, notice ports.ExchangeNotice) {
	if notice.Email == "" {
		return
	}
	n.log.Info().
		Str("email", notice.Email).
		Str("name", notice.Name).
		Str("from_currency", notice.FromCurrency).
		Str("to_currency", notice.ToCurrency).
		Str("from_amount", money.Format(notice.FromAmount)).
		Str("to_amount", money.Format(notice.ToAmount)).
		Msg("exchange notification sent")
}

// CredentialsReset delivers a newly generated secret to the account holder.
func (n *LogNotifier) CredentialsReset(ctx context.Context, notice ports.ResetNotice) {
	if notice.Email == "" {
		return
	}
	// The secret itself is never logged.
	n.log.Info().
		Str("email", notice.Email).
		Str("name", notice.Name).
		Msg("credentials reset notification sent")
}
