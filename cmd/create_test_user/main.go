package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"

	"taskapi/internal/config"
	"taskapi/internal/repository"
	"taskapi/internal/service"
	"taskapi/internal/storage"
)

func main() {
	email := flag.String("email", "tester@example.com", "fixture user email")
	password := flag.String("password", "tester-password", "fixture user password")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	store, err := storage.Open(ctx, cfg)
	if err != nil {
		log.Fatalf("open store: %v", err)
	}
	defer store.Close(ctx)

	tokens, err := service.NewTokenService(cfg.JWTSecret)
	if err != nil {
		log.Fatal(err)
	}
	auth, err := service.NewAuthService(repository.NewUserRepository(store), service.NewBcryptHasher(cfg.BcryptCost), tokens)
	if err != nil {
		log.Fatal(err)
	}

	// try to register, fall back to login for an existing user
	token, err := auth.Register(ctx, *email, *password)
	switch {
	case err == nil:
		log.Printf("user created email=%s\n", *email)
	case errors.Is(err, repository.ErrEmailTaken):
		log.Printf("user already exists email=%s\n", *email)
		token, err = auth.Login(ctx, *email, *password)
		if err != nil {
			log.Fatalf("login failed: %v", err)
		}
	default:
		log.Fatalf("register failed: %v", err)
	}

	sub, err := tokens.Verify(token)
	if err != nil {
		log.Fatalf("issued token does not verify: %v", err)
	}
	log.Printf("user id=%s\n", sub)
	fmt.Println(token)
}
