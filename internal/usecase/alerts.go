package usecase

import (
	"context"
	"fmt"
	"log"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/avery69gael/mi-proyecto-trading/internal/domain"
	"github.com/avery69gael/mi-proyecto-trading/internal/infrastructure/mailer"
	"github.com/avery69gael/mi-proyecto-trading/internal/metrics"
	"github.com/avery69gael/mi-proyecto-trading/internal/notification"
)

// alertCooldown is the minimum gap between two notifications for the same
// alert, even if the condition stays true the whole time.
const alertCooldown = 5 * time.Minute

// AlertUsecase owns alert CRUD and the per-refresh evaluation pass.
type AlertUsecase struct {
	repo      domain.AlertRepository
	notifiers []notification.Notifier
	mail      *mailer.Client // optional, confirmation emails on create
	metrics   *metrics.Metrics

	cooldown time.Duration
	now      func() time.Time
}

func NewAlertUsecase(repo domain.AlertRepository, notifiers []notification.Notifier, mail *mailer.Client, m *metrics.Metrics) *AlertUsecase {
	return &AlertUsecase{
		repo:      repo,
		notifiers: notifiers,
		mail:      mail,
		metrics:   m,
		cooldown:  alertCooldown,
		now:       time.Now,
	}
}

// Create validates and persists a new alert. When the alert carries an
// email, a confirmation is sent best-effort; mail failure never fails the
// create.
func (u *AlertUsecase) Create(ctx context.Context, coinID string, kind domain.AlertKind, threshold float64, email string) (*domain.Alert, error) {
	if coinID == "" {
		return nil, fmt.Errorf("coin id is required")
	}
	if !domain.ValidKind(kind) {
		return nil, fmt.Errorf("unknown alert kind %q", kind)
	}
	if math.IsNaN(threshold) || math.IsInf(threshold, 0) {
		return nil, fmt.Errorf("threshold must be a finite number")
	}

	alert := &domain.Alert{
		ID:        uuid.NewString(),
		CoinID:    coinID,
		Kind:      kind,
		Threshold: threshold,
		Email:     email,
		CreatedAt: u.now(),
	}

	if err := u.repo.Create(ctx, alert); err != nil {
		return nil, err
	}

	if email != "" && u.mail.IsEnabled() {
		if err := u.sendConfirmation(ctx, alert); err != nil {
			log.Printf("[alerts] confirmation email for %s failed: %v", alert.ID, err)
		}
	}

	return alert, nil
}

func (u *AlertUsecase) sendConfirmation(ctx context.Context, alert *domain.Alert) error {
	condition := notification.FormatEvent(notification.Event{
		CoinID:    alert.CoinID,
		Kind:      alert.Kind,
		Threshold: alert.Threshold,
	})
	html := fmt.Sprintf(
		"<h1>Alert Confirmation</h1>"+
			"<p>Your alert for %s was created successfully.</p>"+
			"<p>You will be notified when the condition fires: <strong>%s</strong>.</p>",
		strings.ToUpper(alert.CoinID), condition,
	)
	return u.mail.Send(ctx, alert.Email, "Trading Alert Created", html)
}

// List returns the alerts stored for a coin.
func (u *AlertUsecase) List(ctx context.Context, coinID string) ([]domain.Alert, error) {
	return u.repo.ListByCoin(ctx, coinID)
}

// Delete removes an alert by id.
func (u *AlertUsecase) Delete(ctx context.Context, id string) error {
	return u.repo.Delete(ctx, id)
}

// Evaluate runs every stored alert for the coin against the freshly
// refreshed price and signal. It is called after every successful refresh,
// never on its own timer. Notification failures are logged and counted,
// nothing more.
func (u *AlertUsecase) Evaluate(ctx context.Context, coinID string, price *float64, sig *domain.Signal) {
	if price == nil && sig == nil {
		return // nothing to compare against yet
	}

	alerts, err := u.repo.ListByCoin(ctx, coinID)
	if err != nil {
		log.Printf("[alerts] listing alerts for %s: %v", coinID, err)
		return
	}

	now := u.now()
	for _, a := range alerts {
		observed, triggered := evaluateAlert(a, price, sig)
		if !triggered {
			continue
		}
		if a.LastTriggeredAt != nil && now.Sub(*a.LastTriggeredAt) <= u.cooldown {
			continue // still cooling down
		}

		ev := notification.Event{
			CoinID:    a.CoinID,
			Kind:      a.Kind,
			Threshold: a.Threshold,
			Observed:  observed,
			Email:     a.Email,
		}
		for _, n := range u.notifiers {
			if err := n.Send(ctx, ev); err != nil {
				log.Printf("[alerts] notify %s: %v", notification.FormatEvent(ev), err)
				u.metrics.NotifyFailures.Inc()
			}
		}

		if err := u.repo.MarkTriggered(ctx, a.ID, now); err != nil {
			log.Printf("[alerts] marking %s triggered: %v", a.ID, err)
		}
		u.metrics.AlertsTriggered.Inc()
	}
}

func evaluateAlert(a domain.Alert, price *float64, sig *domain.Signal) (float64, bool) {
	switch a.Kind {
	case domain.AlertPriceAbove:
		if price != nil && *price > a.Threshold {
			return *price, true
		}
	case domain.AlertPriceBelow:
		if price != nil && *price < a.Threshold {
			return *price, true
		}
	case domain.AlertRsiAbove:
		if sig != nil && sig.RSI > a.Threshold {
			return sig.RSI, true
		}
	case domain.AlertRsiBelow:
		if sig != nil && sig.RSI < a.Threshold {
			return sig.RSI, true
		}
	}
	return 0, false
}
