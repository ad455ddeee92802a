package notification

import (
	"context"
	"fmt"
	"strings"

	"github.com/avery69gael/mi-proyecto-trading/internal/infrastructure/mailer"
)

// EmailNotifier mails the alert owner when their condition fires.
// Events without a recipient are skipped; alerts created without an email
// only go to the push and log channels.
type EmailNotifier struct {
	mail *mailer.Client
}

func NewEmailNotifier(mail *mailer.Client) *EmailNotifier {
	return &EmailNotifier{mail: mail}
}

func (n *EmailNotifier) Send(ctx context.Context, ev Event) error {
	if ev.Email == "" || !n.mail.IsEnabled() {
		return nil
	}

	subject := fmt.Sprintf("Trading alert triggered: %s", FormatEvent(ev))
	html := fmt.Sprintf(
		"<h1>Alert Triggered</h1>"+
			"<p>Your alert for %s has fired: <strong>%s</strong>.</p>"+
			"<p>Observed value: %g</p>",
		strings.ToUpper(ev.CoinID), FormatEvent(ev), ev.Observed,
	)

	return n.mail.Send(ctx, ev.Email, subject, html)
}
