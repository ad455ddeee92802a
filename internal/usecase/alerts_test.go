package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/avery69gael/mi-proyecto-trading/internal/domain"
	"github.com/avery69gael/mi-proyecto-trading/internal/metrics"
	"github.com/avery69gael/mi-proyecto-trading/internal/notification"
	"github.com/avery69gael/mi-proyecto-trading/internal/repository"
)

type recordingNotifier struct {
	mu     sync.Mutex
	events []notification.Event
}

func (n *recordingNotifier) Send(ctx context.Context, ev notification.Event) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, ev)
	return nil
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.events)
}

func newTestAlertUsecase(t *testing.T) (*AlertUsecase, *recordingNotifier) {
	t.Helper()
	notifier := &recordingNotifier{}
	uc := NewAlertUsecase(
		repository.NewInMemoryAlertRepository(),
		[]notification.Notifier{notifier},
		nil,
		metrics.NewMetrics(),
	)
	return uc, notifier
}

func TestCreateValidation(t *testing.T) {
	uc, _ := newTestAlertUsecase(t)
	ctx := context.Background()

	if _, err := uc.Create(ctx, "", domain.AlertPriceAbove, 50000, ""); err == nil {
		t.Error("expected error for empty coin id")
	}
	if _, err := uc.Create(ctx, "bitcoin", "volumeAbove", 50000, ""); err == nil {
		t.Error("expected error for unknown kind")
	}

	alert, err := uc.Create(ctx, "bitcoin", domain.AlertPriceAbove, 50000, "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if alert.ID == "" {
		t.Error("expected generated id")
	}
	if alert.LastTriggeredAt != nil {
		t.Error("new alert should never have been triggered")
	}
}

func TestEvaluateAlertKinds(t *testing.T) {
	price := 61000.0
	sig := &domain.Signal{RSI: 72}

	tests := []struct {
		name      string
		kind      domain.AlertKind
		threshold float64
		fires     bool
		observed  float64
	}{
		{"price above crossed", domain.AlertPriceAbove, 60000, true, 61000},
		{"price above not crossed", domain.AlertPriceAbove, 70000, false, 0},
		{"price below crossed", domain.AlertPriceBelow, 65000, true, 61000},
		{"price below not crossed", domain.AlertPriceBelow, 50000, false, 0},
		{"rsi above crossed", domain.AlertRsiAbove, 70, true, 72},
		{"rsi above not crossed", domain.AlertRsiAbove, 80, false, 0},
		{"rsi below not crossed", domain.AlertRsiBelow, 30, false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := domain.Alert{Kind: tt.kind, Threshold: tt.threshold}
			observed, fired := evaluateAlert(a, &price, sig)
			if fired != tt.fires {
				t.Fatalf("expected fired=%v, got %v", tt.fires, fired)
			}
			if fired && observed != tt.observed {
				t.Errorf("expected observed %v, got %v", tt.observed, observed)
			}
		})
	}
}

func TestEvaluateSkipsThresholdEquality(t *testing.T) {
	price := 50000.0
	a := domain.Alert{Kind: domain.AlertPriceAbove, Threshold: 50000}
	if _, fired := evaluateAlert(a, &price, nil); fired {
		t.Error("crossing must be strict, equality should not fire")
	}
}

func TestEvaluateRsiAlertWithoutSignal(t *testing.T) {
	price := 61000.0
	a := domain.Alert{Kind: domain.AlertRsiAbove, Threshold: 10}
	if _, fired := evaluateAlert(a, &price, nil); fired {
		t.Error("rsi alert must not fire without a signal")
	}
}

func TestEvaluateCooldown(t *testing.T) {
	uc, notifier := newTestAlertUsecase(t)
	ctx := context.Background()

	base := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
	current := base
	uc.now = func() time.Time { return current }

	if _, err := uc.Create(ctx, "bitcoin", domain.AlertPriceAbove, 50000, ""); err != nil {
		t.Fatalf("create: %v", err)
	}

	price := 60000.0
	uc.Evaluate(ctx, "bitcoin", &price, nil)
	if got := notifier.count(); got != 1 {
		t.Fatalf("expected 1 notification, got %d", got)
	}

	// Condition still true inside the cooldown window: no re-fire.
	current = base.Add(3 * time.Minute)
	uc.Evaluate(ctx, "bitcoin", &price, nil)
	if got := notifier.count(); got != 1 {
		t.Fatalf("expected cooldown to suppress, got %d notifications", got)
	}

	// Exactly at the cooldown boundary: still suppressed.
	current = base.Add(alertCooldown)
	uc.Evaluate(ctx, "bitcoin", &price, nil)
	if got := notifier.count(); got != 1 {
		t.Fatalf("expected boundary to suppress, got %d notifications", got)
	}

	// Past the cooldown: fires again.
	current = base.Add(alertCooldown + time.Second)
	uc.Evaluate(ctx, "bitcoin", &price, nil)
	if got := notifier.count(); got != 2 {
		t.Fatalf("expected re-fire after cooldown, got %d notifications", got)
	}
}

func TestEvaluateNothingToCompare(t *testing.T) {
	uc, notifier := newTestAlertUsecase(t)
	ctx := context.Background()

	if _, err := uc.Create(ctx, "bitcoin", domain.AlertPriceBelow, 1e9, ""); err != nil {
		t.Fatalf("create: %v", err)
	}

	uc.Evaluate(ctx, "bitcoin", nil, nil)
	if got := notifier.count(); got != 0 {
		t.Errorf("expected no notifications without price or signal, got %d", got)
	}
}

func TestEvaluateIgnoresOtherCoins(t *testing.T) {
	uc, notifier := newTestAlertUsecase(t)
	ctx := context.Background()

	if _, err := uc.Create(ctx, "ethereum", domain.AlertPriceAbove, 1, ""); err != nil {
		t.Fatalf("create: %v", err)
	}

	price := 60000.0
	uc.Evaluate(ctx, "bitcoin", &price, nil)
	if got := notifier.count(); got != 0 {
		t.Errorf("expected no notifications for another coin, got %d", got)
	}
}
