package infrastructure

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresClient struct {
	Pool *pgxpool.Pool
}

func NewPostgresClient(ctx context.Context, connString string) (*PostgresClient, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("unable to parse connection string: %w", err)
	}

	// Pool configuration
	config.MaxConns = 10
	config.MinConns = 2
	config.MaxConnLifetime = time.Hour
	config.MaxConnIdleTime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	return &PostgresClient{Pool: pool}, nil
}

var postgresSchema = []struct {
	name string
	ddl  string
}{
	{"companies", `
		CREATE TABLE IF NOT EXISTS companies (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			email TEXT UNIQUE NOT NULL,
			password_hash TEXT NOT NULL,
			phone TEXT NOT NULL DEFAULT '',
			profile TEXT NOT NULL DEFAULT '',
			instagram_id TEXT UNIQUE NOT NULL,
			company_id TEXT NOT NULL DEFAULT '',
			bot_identity TEXT NOT NULL DEFAULT '',
			bot_role TEXT NOT NULL DEFAULT '',
			conversation_flow TEXT NOT NULL DEFAULT '',
			faqs JSONB NOT NULL DEFAULT '[]',
			keywords TEXT[] NOT NULL DEFAULT '{}',
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
	`},
	{"chat_histories", `
		CREATE TABLE IF NOT EXISTS chat_histories (
			id TEXT PRIMARY KEY,
			sender_id TEXT NOT NULL,
			recipient_id TEXT NOT NULL,
			company_id TEXT NOT NULL DEFAULT '',
			company_instagram_id TEXT NOT NULL,
			message TEXT NOT NULL DEFAULT '',
			message_id TEXT UNIQUE NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS chat_histories_company_created_idx
			ON chat_histories (company_instagram_id, created_at DESC);
	`},
	{"appointments", `
		CREATE TABLE IF NOT EXISTS appointments (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			phone TEXT NOT NULL,
			email TEXT NOT NULL DEFAULT '',
			user_instagram_id TEXT NOT NULL,
			company_instagram_id TEXT NOT NULL,
			date TEXT NOT NULL,
			start_time TEXT NOT NULL,
			end_time TEXT NOT NULL DEFAULT '',
			service TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'pending',
			notes TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS appointments_company_idx
			ON appointments (company_instagram_id, date DESC, start_time DESC);
	`},
	{"product_details", `
		CREATE TABLE IF NOT EXISTS product_details (
			id TEXT PRIMARY KEY,
			company_instagram_id TEXT NOT NULL,
			details VARCHAR(5000) NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS product_details_company_created_idx
			ON product_details (company_instagram_id, created_at DESC);
	`},
}

// Migrate creates tables and indexes. It is idempotent.
func (p *PostgresClient) Migrate(ctx context.Context) error {
	for _, t := range postgresSchema {
		if _, err := p.Pool.Exec(ctx, t.ddl); err != nil {
			return fmt.Errorf("create %s table: %w", t.name, err)
		}
	}
	return nil
}

func (p *PostgresClient) Close() {
	p.Pool.Close()
}
