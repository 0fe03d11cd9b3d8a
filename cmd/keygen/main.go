package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/arnavshah/duty-roster-api/pkg/auth"
	"github.com/arnavshah/duty-roster-api/pkg/config"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: keygen <userID>")
		os.Exit(1)
	}

	userID := os.Args[1]
	if strings.Contains(userID, ".") {
		fmt.Println("Error: userID must not contain '.'")
		os.Exit(1)
	}

	cfg, err := config.Load(os.Getenv("ROSTER_CONFIG"))
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	if cfg.Auth.APIMasterSecret == "" {
		fmt.Println("Error: auth.api_master_secret (API_MASTER_SECRET) is not set")
		os.Exit(1)
	}

	apiKey := auth.NewAuthenticator(&cfg.Auth).GenerateHMACKey(userID)
	fmt.Printf("Generated Key for %s:\n%s\n", userID, apiKey)
}
