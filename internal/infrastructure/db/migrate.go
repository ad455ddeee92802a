package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Migrate creates the minimal tables needed by this app.
// This keeps setup simple (no external migration tool), but still gives persistence.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	stmts := []string{
		`create table if not exists user_alerts (
			id text primary key,
			email text not null default '',
			coin text not null,
			alert_type text not null,
			alert_value double precision not null,
			created_at timestamptz not null default now(),
			last_triggered_at timestamptz null
		);`,
		`create index if not exists user_alerts_coin_idx on user_alerts(coin);`,
		`create index if not exists user_alerts_created_at_idx on user_alerts(created_at desc);`,
	}

	for _, stmt := range stmts {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
