package app

import (
	"context"
	"errors"
	"fmt"

	"member-portal/internal/config"
	"member-portal/internal/db"
	"member-portal/internal/logger"
	"member-portal/internal/mongo"
	"member-portal/internal/redis"
	"member-portal/internal/users"
)

type Infra struct {
	Users users.Store
	Redis *redis.Client

	closers []func(context.Context) error
}

func setupInfra(ctx context.Context, cfg config.Config) (*Infra, error) {
	infra := &Infra{}

	userStore, err := infra.openUserStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	infra.Users = userStore

	redisClient, err := redis.New(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		_ = infra.Close(ctx)
		return nil, err
	}
	infra.Redis = redisClient
	infra.closers = append(infra.closers, func(context.Context) error {
		return redisClient.Close()
	})

	logger.Info("redis ready", map[string]any{"addr": cfg.RedisAddr})

	return infra, nil
}

func (i *Infra) openUserStore(ctx context.Context, cfg config.Config) (users.Store, error) {
	switch cfg.UserStore {
	case config.UserStoreMongo:
		client, err := mongo.New(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, err
		}
		i.closers = append(i.closers, client.Close)

		store := users.NewMongoStore(client.Database())
		if err := store.EnsureIndexes(ctx); err != nil {
			_ = i.Close(ctx)
			return nil, err
		}
		logger.Info("mongo ready", map[string]any{"database": cfg.MongoDatabase})
		return store, nil

	case config.UserStorePostgres:
		pg, err := db.Open(ctx, cfg.DatabaseDSN)
		if err != nil {
			return nil, err
		}
		i.closers = append(i.closers, func(context.Context) error {
			return pg.Close()
		})
		logger.Info("database ready", nil)
		return users.NewPostgresStore(pg), nil

	case config.UserStoreMemory:
		logger.Warn("using in-memory user store; accounts are lost on restart", nil)
		return users.NewMemoryStore(), nil

	default:
		return nil, fmt.Errorf("app: unknown user store %q", cfg.UserStore)
	}
}

// Close releases connections in reverse order of opening.
func (i *Infra) Close(ctx context.Context) error {
	var errs []error
	for n := len(i.closers) - 1; n >= 0; n-- {
		if err := i.closers[n](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	i.closers = nil
	return errors.Join(errs...)
}
