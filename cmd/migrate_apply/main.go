package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"taskapi/internal/config"
	"taskapi/internal/db"
	"taskapi/internal/docstore/mongostore"
)

func main() {
	apply := flag.Bool("apply", false, "apply migrations (default lists them)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	switch cfg.StoreDriver {
	case config.DriverPostgres:
		if !*apply {
			names, err := db.Migrations()
			if err != nil {
				log.Fatal(err)
			}
			for _, name := range names {
				fmt.Println(name)
			}
			return
		}

		pool, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatal(err)
		}
		defer pool.Close()

		err = db.Migrate(ctx, pool, func(name string) {
			fmt.Printf("applied %s\n", name)
		})
		if err != nil {
			log.Fatalf("migration failed: %v", err)
		}

	case config.DriverMongo:
		if !*apply {
			fmt.Println("users_email_unique")
			return
		}

		mdb, err := mongostore.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			log.Fatal(err)
		}
		defer mdb.Close(context.Background())

		if err := mdb.EnsureIndexes(ctx); err != nil {
			log.Fatalf("index creation failed: %v", err)
		}
		fmt.Println("applied users_email_unique")

	default:
		fmt.Printf("nothing to migrate for driver %q\n", cfg.StoreDriver)
	}
}
