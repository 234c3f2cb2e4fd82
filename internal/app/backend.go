package app

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/afero"

	"github.com/shariqkhan335/RFI-PROJ/internal/config"
	"github.com/shariqkhan335/RFI-PROJ/internal/database"
	"github.com/shariqkhan335/RFI-PROJ/internal/inventory/repository"
	"github.com/shariqkhan335/RFI-PROJ/pkg/logger"
)

// Mongo connection retry policy used at startup.
const (
	mongoAttempts = 5
	mongoBackoff  = time.Second
)

// OpenBackend builds the record backend named by cfg.Storage.Backend.
// Closing the backend releases its connections.
func OpenBackend(ctx context.Context, cfg *config.Config) (repository.Backend, error) {
	switch cfg.Storage.Backend {
	case "", "file":
		b, err := repository.NewFileRepo(afero.NewOsFs(), cfg.Storage.DataDir)
		if err != nil {
			return nil, err
		}
		logger.Infof("using file backend in %s", cfg.Storage.DataDir)
		return b, nil
	case "memory":
		logger.Warnf("using in-memory backend; records are lost on exit")
		return repository.NewMemoryRepo(), nil
	case "sqlite":
		b, err := repository.OpenSQLite(cfg.Storage.SQLitePath)
		if err != nil {
			return nil, err
		}
		logger.Infof("using sqlite backend at %s", cfg.Storage.SQLitePath)
		return b, nil
	case "mongo":
		client, err := database.ConnectMongoRetry(ctx, cfg.MongoDB.URI, cfg.MongoDB.Timeout, mongoAttempts, mongoBackoff)
		if err != nil {
			return nil, err
		}
		logger.Infof("using mongo backend, database %s", cfg.MongoDB.Database)
		return repository.NewMongoRepo(client, cfg.MongoDB.Database), nil
	case "redis":
		client, err := database.ConnectRedis(ctx, cfg.Redis.Addr(), cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return nil, err
		}
		logger.Infof("using redis backend at %s", cfg.Redis.Addr())
		return &redisBackend{RedisRepo: repository.NewRedisRepo(client, cfg.Redis.Prefix), close: client.Close}, nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}

// redisBackend owns the client it was opened with.
type redisBackend struct {
	*repository.RedisRepo
	close func() error
}

func (r *redisBackend) Close() error { return r.close() }
