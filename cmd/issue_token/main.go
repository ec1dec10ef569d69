package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/fixora/resourcesvc/application/port/outbound"
	"github.com/fixora/resourcesvc/infrastructure/config"
	"github.com/fixora/resourcesvc/infrastructure/service/jwt"
)

// issue_token mints an access token for local testing, signed with the
// configured JWT_SECRET.
func main() {
	userID := flag.String("user", "", "actor id to put in the user_id claim (required)")
	role := flag.String("role", "", "optional role claim")
	flag.Parse()

	if *userID == "" {
		log.Fatal("-user is required")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	tokenService, err := jwt.NewJWTService(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize JWT service: %v", err)
	}

	token, err := tokenService.GenerateAccessToken(outbound.TokenClaims{UserID: *userID, Role: *role})
	if err != nil {
		log.Fatalf("Failed to generate token: %v", err)
	}

	fmt.Println(token)
}
