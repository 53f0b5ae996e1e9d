package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/oops"

	"taskapi/internal/logger"
)

func Connect(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	db, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, oops.Code("DB_POOL_FAILED").Wrap(err)
	}

	if err := db.Ping(ctx); err != nil {
		db.Close()
		return nil, oops.Code("DB_PING_FAILED").Wrap(err)
	}

	logger.Info("database connected")
	return db, nil
}
