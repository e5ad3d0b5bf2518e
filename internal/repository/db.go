package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// NewDB creates a new PostgreSQL connection pool.
func NewDB(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	config.MaxConns = 10
	config.MinConns = 2

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return pool, nil
}

// RunMigrations executes the initial schema migration.
func RunMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	query := `
		CREATE TABLE IF NOT EXISTS profiles (
			id                    TEXT PRIMARY KEY,
			email                 TEXT NOT NULL UNIQUE,
			password              TEXT NOT NULL,
			full_name             TEXT,
			plan                  TEXT NOT NULL DEFAULT 'starter',
			subscription_status   TEXT NOT NULL DEFAULT 'trialing',
			trial_ends_at         TIMESTAMPTZ,
			gumroad_sale_id       TEXT,
			gumroad_subscriber_id TEXT,
			webhook_outreach      TEXT,
			webhook_calendar      TEXT,
			last_event_at         TIMESTAMPTZ,
			created_at            TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at            TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_profiles_email ON profiles(email);

		CREATE TABLE IF NOT EXISTS pending_subscriptions (
			email                 TEXT PRIMARY KEY,
			plan                  TEXT NOT NULL,
			gumroad_sale_id       TEXT NOT NULL,
			gumroad_subscriber_id TEXT,
			created_at            TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at            TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE TABLE IF NOT EXISTS jobs (
			id            TEXT PRIMARY KEY,
			user_id       TEXT NOT NULL,
			title         TEXT NOT NULL,
			client        TEXT NOT NULL,
			salary        TEXT,
			location      TEXT,
			status        TEXT NOT NULL DEFAULT 'active',
			description   TEXT,
			contact_name  TEXT,
			contact_email TEXT,
			archived_at   TIMESTAMPTZ,
			created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_jobs_user_id ON jobs(user_id);

		CREATE TABLE IF NOT EXISTS candidates (
			id               TEXT PRIMARY KEY,
			job_id           TEXT NOT NULL,
			user_id          TEXT NOT NULL,
			name             TEXT NOT NULL,
			title            TEXT,
			company          TEXT,
			linkedin_url     TEXT,
			email            TEXT,
			phone            TEXT,
			stage            TEXT NOT NULL DEFAULT 'sourced',
			notes            TEXT,
			outreach_draft   TEXT,
			last_activity_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			archived_at      TIMESTAMPTZ,
			created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_candidates_job_id ON candidates(job_id);
		CREATE INDEX IF NOT EXISTS idx_candidates_user_id ON candidates(user_id);

		CREATE TABLE IF NOT EXISTS webhook_logs (
			id          BIGSERIAL PRIMARY KEY,
			alert_type  TEXT,
			email       TEXT,
			sale_id     TEXT,
			raw_payload TEXT,
			received_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE TABLE IF NOT EXISTS usage_logs (
			id         BIGSERIAL PRIMARY KEY,
			user_id    TEXT NOT NULL,
			action     TEXT NOT NULL,
			metadata   JSONB,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_usage_logs_user_id ON usage_logs(user_id);
	`
	_, err := pool.Exec(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}
