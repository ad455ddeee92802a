// Package notification fans triggered alerts out to external channels
// (FCM push, transactional email) behind a single Notifier interface.
package notification

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/avery69gael/mi-proyecto-trading/internal/domain"
)

// Event describes one fired alert: which condition crossed, the threshold
// it was configured with, and the value observed when it crossed.
type Event struct {
	CoinID    string
	Kind      domain.AlertKind
	Threshold float64
	Observed  float64
	Email     string // optional recipient for mail channels
}

// FormatEvent renders the condition the way the dashboard shows it,
// e.g. "BITCOIN > 50000" or "RSI < 30".
func FormatEvent(ev Event) string {
	coin := strings.ToUpper(ev.CoinID)
	switch ev.Kind {
	case domain.AlertPriceAbove:
		return fmt.Sprintf("%s > %g", coin, ev.Threshold)
	case domain.AlertPriceBelow:
		return fmt.Sprintf("%s < %g", coin, ev.Threshold)
	case domain.AlertRsiAbove:
		return fmt.Sprintf("RSI > %g", ev.Threshold)
	case domain.AlertRsiBelow:
		return fmt.Sprintf("RSI < %g", ev.Threshold)
	default:
		return fmt.Sprintf("%s %s %g", coin, ev.Kind, ev.Threshold)
	}
}

// Notifier is the interface for all notification backends.
// Send failures are logged by callers, never propagated into the refresh
// cycle.
type Notifier interface {
	Send(ctx context.Context, ev Event) error
}

// LogNotifier writes alerts to the process log. Used in development and
// as the always-on baseline channel.
type LogNotifier struct{}

func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

func (n *LogNotifier) Send(ctx context.Context, ev Event) error {
	log.Printf("[notify] alert fired: %s (observed %g)", FormatEvent(ev), ev.Observed)
	return nil
}
