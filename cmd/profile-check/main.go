package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"go.uber.org/zap"

	"github.com/HarshMishra-Git/MedPath-by-AAS-EduGuide-sub000/internal/app"
	"github.com/HarshMishra-Git/MedPath-by-AAS-EduGuide-sub000/internal/config"
	"github.com/HarshMishra-Git/MedPath-by-AAS-EduGuide-sub000/internal/infrastructure/auth"
)

// Reports what the configured token store holds for a profile and optionally restores or clears it
func main() {
	configPath := flag.String("config", "", "path to the YAML config file")
	verify := flag.Bool("verify", false, "ask the identity service whether the stored session is still valid")
	clearSession := flag.Bool("clear", false, "remove the stored session")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	fmt.Println("Profile Check")
	fmt.Println("=============")
	fmt.Printf("Driver:  %s\n", cfg.TokenStoreDriver)
	fmt.Printf("Profile: %s\n", cfg.Profile)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.APITimeout+5*time.Second)
	defer cancel()

	c, err := app.NewContainer(ctx, cfg, zap.NewNop())
	if err != nil {
		log.Fatalf("Failed to open token store: %v", err)
	}
	defer c.Close()

	pair, ok := c.Tokens.Get()
	if !ok {
		fmt.Println("No stored session")
		return
	}
	fmt.Println("✓ Stored session found")

	if exp, ok := auth.NewJWTInspector().ExpiresAt(pair.AccessToken); ok {
		if time.Now().Before(exp) {
			fmt.Printf("  access token expires %s (in %s)\n", exp.Format(time.RFC3339), time.Until(exp).Round(time.Second))
		} else {
			fmt.Printf("  access token expired %s\n", exp.Format(time.RFC3339))
		}
	} else {
		fmt.Println("  access token carries no expiry")
	}

	if *verify {
		account, err := c.Session.Start(ctx)
		switch {
		case err != nil:
			fmt.Printf("✗ Session not restored: %v\n", err)
		case account != nil:
			fmt.Printf("✓ Signed in as %s (%s)\n", account.ID, c.Session.State())
		}
	}

	if *clearSession {
		c.Tokens.Clear()
		fmt.Println("✓ Stored session removed")
	}
}
