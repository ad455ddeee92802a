package notification

import (
	"context"
	"fmt"

	"github.com/avery69gael/mi-proyecto-trading/internal/infrastructure/fcm"
	"github.com/avery69gael/mi-proyecto-trading/internal/repository"
)

// FCMNotifier multicasts fired alerts to every registered device token.
type FCMNotifier struct {
	client *fcm.Client
	tokens *repository.TokenRepository
}

func NewFCMNotifier(client *fcm.Client, tokens *repository.TokenRepository) *FCMNotifier {
	return &FCMNotifier{client: client, tokens: tokens}
}

func (n *FCMNotifier) Send(ctx context.Context, ev Event) error {
	if !n.client.IsEnabled() {
		return nil // push not configured
	}

	tokens := n.tokens.GetAllTokens()
	if len(tokens) == 0 {
		return nil
	}

	title := fmt.Sprintf("🚨 Alert: %s", FormatEvent(ev))
	body := fmt.Sprintf("Observed %g against threshold %g", ev.Observed, ev.Threshold)

	data := map[string]string{
		"coin":      ev.CoinID,
		"kind":      string(ev.Kind),
		"threshold": fmt.Sprintf("%g", ev.Threshold),
		"observed":  fmt.Sprintf("%g", ev.Observed),
	}

	return n.client.SendMulticast(ctx, tokens, title, body, data)
}
