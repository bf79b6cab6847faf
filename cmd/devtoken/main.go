// Command devtoken prints a signed access token for local testing.
//
//	go run ./cmd/devtoken -email me@example.com
//
// The token is signed with JWT_SECRET, read from the environment or .env.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/moonwavetravel/backend/internal/auth"
	"github.com/moonwavetravel/backend/internal/config"
)

func main() {
	userFlag := flag.String("user", "", "user id (random when empty)")
	email := flag.String("email", "dev@moonwave.local", "e-mail claim, used to accept invitations")
	ttl := flag.Duration("ttl", 24*time.Hour, "token lifetime")
	flag.Parse()

	if err := config.LoadDotEnv(); err != nil {
		slog.Error("load .env", "error", err)
		os.Exit(1)
	}
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		slog.Error("JWT_SECRET is not set")
		os.Exit(1)
	}

	userID := uuid.New()
	if *userFlag != "" {
		id, err := uuid.Parse(*userFlag)
		if err != nil {
			slog.Error("invalid -user", "error", err)
			os.Exit(1)
		}
		userID = id
	}

	token, err := auth.GenerateToken(userID, *email, secret, *ttl)
	if err != nil {
		slog.Error("generate token", "error", err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stderr, "user_id=%s email=%s expires_in=%s\n", userID, *email, *ttl)
	fmt.Println(token)
}
