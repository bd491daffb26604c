// Package notifier sends transfer notifications over SMTP.
package notifier

import (
	"context"
	"fmt"
	"net/smtp"

	"github.com/rs/zerolog"

	"github.com/go-petr/wallet-ledger/internal/domain"
	"github.com/go-petr/wallet-ledger/pkg/configpkg"
)

// SMTP sends a plain-text email to the transfer parties. Errors are logged,
// never propagated: notifications must not fail a committed transfer.
type SMTP struct {
	addr   string
	auth   smtp.Auth
	from   string
	logger zerolog.Logger
}

// NewSMTP returns an SMTP notifier from the application config.
func NewSMTP(config configpkg.Config, logger zerolog.Logger) *SMTP {
	return &SMTP{
		addr:   config.SMTPHost + ":" + config.SMTPPort,
		auth:   smtp.PlainAuth("", config.SMTPUsername, config.SMTPPassword, config.SMTPHost),
		from:   config.SMTPFrom,
		logger: logger,
	}
}

// TransferCompleted emails both parties of a completed transfer.
func (s *SMTP) TransferCompleted(ctx context.Context, transaction domain.Transaction) {
	subject := "Transfer completed"
	body := fmt.Sprintf(
		"%s\r\n\r\nTotal: %s %s\r\nTransaction: %s\r\n",
		transaction.Description,
		transaction.Total.String(),
		transaction.SenderCurrency,
		transaction.ID,
	)

	msg := []byte(fmt.Sprintf(
		"From: %s\r\nTo: %s, %s\r\nSubject: %s\r\n\r\n%s",
		s.from, transaction.Sender, transaction.Recipient, subject, body,
	))

	to := []string{transaction.Sender, transaction.Recipient}

	if err := smtp.SendMail(s.addr, s.auth, s.from, to, msg); err != nil {
		s.logger.Error().Err(err).Str("transaction", transaction.ID).Msg("transfer notification failed")
	}
}

// Noop discards notifications. Used when SMTP is not configured.
type Noop struct{}

// TransferCompleted does nothing.
func (Noop) TransferCompleted(context.Context, domain.Transaction) {}
