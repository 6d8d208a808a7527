package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/godaily/godaily/internal/application/auth"
	"github.com/godaily/godaily/internal/config"
	"github.com/godaily/godaily/internal/domain"
	"github.com/godaily/godaily/internal/infrastructure/keygen"
	"github.com/godaily/godaily/internal/infrastructure/persistence/postgres"
)

// Command-line tool to issue a bearer token for an existing account, for scripts
// and machines that cannot go through /auth/login.
func main() {
	email := flag.String("email", "", "Email of the account the token belongs to (required)")
	name := flag.String("name", "", "Name/description for the token (required)")
	days := flag.Int("days", 0, "Number of days until expiration (0 = never expires)")

	flag.Parse()

	cfg, err := config.LoadAPIKeyGenConfig(*email, *name, *days)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		flag.Usage()
		log.Fatal(err)
	}

	ctx := context.Background()

	store, err := postgres.NewStoreWithConfig(ctx, postgres.DBConfig{
		DSN:             cfg.Database.DSN,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		ConnMaxIdleTime: cfg.Database.ConnMaxIdleTime,
		AutoMigrate:     cfg.Database.AutoMigrate,
	})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Printf("Failed to close store: %v", err)
		}
	}()

	addr, err := domain.NewEmail(cfg.Email)
	if err != nil {
		log.Fatalf("Invalid email: %v", err)
	}
	user, err := store.FindUserByEmail(ctx, addr.String())
	if err != nil {
		log.Fatalf("Failed to find account %s: %v", addr, err)
	}

	var expiresAt *time.Time
	if cfg.DaysValid > 0 {
		expiry := time.Now().UTC().AddDate(0, 0, cfg.DaysValid)
		expiresAt = &expiry
	}

	token, err := auth.IssueToken(ctx, store, user.ID, cfg.Name, expiresAt)
	if err != nil {
		log.Fatalf("Failed to create token: %v", err)
	}

	rule := strings.Repeat("-", 40)
	fmt.Println("\nToken created successfully!")
	fmt.Println(rule)
	fmt.Printf("Account: %s\n", user.Email)
	fmt.Printf("Name: %s\n", cfg.Name)
	fmt.Printf("Token ID: %s\n", keygen.Mask(token))
	if expiresAt != nil {
		fmt.Printf("Expires: %s (%d days)\n", expiresAt.Format(time.RFC3339), cfg.DaysValid)
	} else {
		fmt.Println("Expires: Never")
	}
	fmt.Println(rule)
	fmt.Printf("\nToken: %s\n\n", token)
	fmt.Println("IMPORTANT: Save this token now! It will not be shown again.")
	fmt.Println(rule)
	fmt.Println("Usage example:")
	fmt.Printf("  curl -H \"Authorization: Bearer %s\" http://localhost:8000/tasks\n", token)
}
