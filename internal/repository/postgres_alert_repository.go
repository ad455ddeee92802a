package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/avery69gael/mi-proyecto-trading/internal/domain"
)

// PostgresAlertRepository stores user alerts in the user_alerts table
// (Supabase-hosted Postgres in the deployed setup).
type PostgresAlertRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresAlertRepository(pool *pgxpool.Pool) *PostgresAlertRepository {
	return &PostgresAlertRepository{pool: pool}
}

func (r *PostgresAlertRepository) Create(ctx context.Context, alert *domain.Alert) error {
	if alert == nil {
		return errors.New("nil alert")
	}

	_, err := r.pool.Exec(ctx, `
		insert into user_alerts(id, email, coin, alert_type, alert_value, created_at, last_triggered_at)
		values ($1,$2,$3,$4,$5,$6,$7)
	`,
		alert.ID,
		alert.Email,
		alert.CoinID,
		string(alert.Kind),
		alert.Threshold,
		alert.CreatedAt,
		alert.LastTriggeredAt,
	)
	return err
}

func (r *PostgresAlertRepository) ListByCoin(ctx context.Context, coinID string) ([]domain.Alert, error) {
	rows, err := r.pool.Query(ctx, `
		select id, email, coin, alert_type, alert_value, created_at, last_triggered_at
		from user_alerts
		where coin = $1
		order by created_at
	`, coinID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var alerts []domain.Alert
	for rows.Next() {
		var (
			a    domain.Alert
			kind string
			last *time.Time
		)
		if err := rows.Scan(&a.ID, &a.Email, &a.CoinID, &kind, &a.Threshold, &a.CreatedAt, &last); err != nil {
			return nil, err
		}
		a.Kind = domain.AlertKind(kind)
		a.LastTriggeredAt = last
		alerts = append(alerts, a)
	}
	return alerts, rows.Err()
}

func (r *PostgresAlertRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `delete from user_alerts where id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("alert %s not found", id)
	}
	return nil
}

func (r *PostgresAlertRepository) MarkTriggered(ctx context.Context, id string, at time.Time) error {
	tag, err := r.pool.Exec(ctx, `
		update user_alerts set last_triggered_at = $2 where id = $1
	`, id, at)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("alert %s not found", id)
	}
	return nil
}
