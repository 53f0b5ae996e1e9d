// Package storage selects and opens the document store named by the
// configuration.
package storage

import (
	"context"

	"github.com/samber/oops"

	"taskapi/internal/config"
	"taskapi/internal/db"
	"taskapi/internal/docstore"
	"taskapi/internal/docstore/mongostore"
	"taskapi/internal/docstore/pgstore"
)

// Open connects the store selected by cfg.StoreDriver. Mongo indexes and the
// in-memory email constraint are ensured here; the Postgres schema is applied
// by cmd/migrate_apply.
func Open(ctx context.Context, cfg *config.Config) (docstore.Database, error) {
	switch cfg.StoreDriver {
	case config.DriverMongo:
		mdb, err := mongostore.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, err
		}
		if err := mdb.EnsureIndexes(ctx); err != nil {
			_ = mdb.Close(context.Background())
			return nil, err
		}
		return mdb, nil

	case config.DriverPostgres:
		pool, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return pgstore.New(pool), nil

	case config.DriverMemory:
		mem := docstore.NewMemory()
		mem.EnsureUnique(docstore.UsersCollection, "email")
		return mem, nil

	default:
		return nil, oops.Code("CONFIG_INVALID").
			With("driver", cfg.StoreDriver).
			Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}
