// scripts/gcal-auth/main.go
//
// Run once locally to authorize Google Calendar access for desktop OAuth
// credentials and write the token file the scheduler reads.
//
// Usage:
//   go run ./scripts/gcal-auth --credentials google-credentials.json --token token.json

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/natefinch/atomic"
	"github.com/spf13/pflag"
	"golang.org/x/oauth2"

	"weekly-scheduler/pkg/gcalendar"
)

func main() {
	credsPath := pflag.String("credentials", "google-credentials.json", "OAuth desktop app credentials")
	tokenPath := pflag.String("token", "token.json", "where to write the token")
	pflag.Parse()

	data, err := os.ReadFile(*credsPath)
	if err != nil {
		log.Fatalf("Failed to read credentials file %q: %v", *credsPath, err)
	}

	config, err := gcalendar.OAuthConfigFromJSON(data)
	if err != nil {
		log.Fatalf("Failed to parse credentials: %v\nMake sure %q is an OAuth Desktop App credentials file.", err, *credsPath)
	}

	authURL := config.AuthCodeURL("state-token", oauth2.AccessTypeOffline)
	fmt.Println("=================================================================")
	fmt.Println("STEP 1: open this URL and sign in with the calendar's Google account:")
	fmt.Println()
	fmt.Println(authURL)
	fmt.Println()
	fmt.Println("=================================================================")
	fmt.Print("STEP 2: paste the authorization code and press Enter: ")

	var code string
	if _, err := fmt.Scan(&code); err != nil {
		log.Fatalf("Failed to read authorization code: %v", err)
	}

	tok, err := config.Exchange(context.Background(), code)
	if err != nil {
		log.Fatalf("Failed to exchange authorization code: %v", err)
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(tok); err != nil {
		log.Fatalf("Failed to encode token: %v", err)
	}
	if err := atomic.WriteFile(*tokenPath, &buf); err != nil {
		log.Fatalf("Failed to write %s: %v", *tokenPath, err)
	}
	if err := os.Chmod(*tokenPath, 0o600); err != nil {
		log.Fatalf("Failed to restrict %s: %v", *tokenPath, err)
	}

	fmt.Println()
	fmt.Printf("Token saved to %s. Set google_calendar.enabled and restart the scheduler.\n", *tokenPath)
}
