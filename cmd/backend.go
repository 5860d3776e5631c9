package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"

	"instadm/internal/config"
	"instadm/internal/infrastructure"
	"instadm/internal/interfaces"
	"instadm/internal/logging"
	"instadm/internal/repository"
	"instadm/internal/repository/memory"
	"instadm/internal/repository/mongostore"
)

type backend struct {
	stores interfaces.Stores
	ping   func(ctx context.Context) error
	close  func()
}

// openBackend connects to the configured database. With migrate set the
// schema (Postgres) or indexes (MongoDB) are created first.
func openBackend(ctx context.Context, cfg config.DatabaseConfig, migrate bool) (*backend, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	switch cfg.Driver {
	case config.DriverMongo:
		client, err := infrastructure.NewMongoClient(connectCtx, cfg.URL.Value(), cfg.Name)
		if err != nil {
			return nil, err
		}
		if migrate {
			if err := client.EnsureIndexes(connectCtx); err != nil {
				_ = client.Close(context.Background())
				return nil, err
			}
		}
		return &backend{
			stores: mongostore.NewStores(client.DB),
			ping: func(ctx context.Context) error {
				return client.Client.Ping(ctx, readpref.Primary())
			},
			close: func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = client.Close(ctx)
			},
		}, nil

	case config.DriverPostgres:
		client, err := infrastructure.NewPostgresClient(connectCtx, cfg.URL.Value())
		if err != nil {
			return nil, err
		}
		if migrate {
			if err := client.Migrate(connectCtx); err != nil {
				client.Close()
				return nil, err
			}
		}
		return &backend{
			stores: repository.NewStores(client.Pool),
			ping:   client.Pool.Ping,
			close:  client.Close,
		}, nil

	case config.DriverMemory:
		return &backend{stores: memory.New().Stores(), close: func() {}}, nil
	}
	return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger, err := logging.New(cfg.Log)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	b, err := openBackend(cmd.Context(), cfg.Database, true)
	if err != nil {
		return fmt.Errorf("migrate %s: %w", cfg.Database.Driver, err)
	}
	b.close()
	logger.Info("migration complete")
	return nil
}
