package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/rendis/jenkgate/internal/config"
	"github.com/rendis/jenkgate/internal/credentials"
)

// runCredentials handles the set/delete/check subcommands against the
// platform vault for the configured account.
func runCredentials(args []string) int {
	if len(args) == 0 {
		printUsage()
		return 2
	}

	cfg := loadConfig()
	logger := newLogger(cfg.LogLevel)
	settings, err := config.Resolve(cfg.Raw)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		return 1
	}
	account := settings.AccountName

	ctx := context.Background()
	credStore := credentials.NewDefaultStore(logger)

	switch args[0] {
	case "set":
		if len(args) != 3 {
			fmt.Fprintln(os.Stderr, "usage: jenkgate credentials set <username> <api-token>")
			return 2
		}
		username := strings.TrimSpace(args[1])
		token := strings.TrimSpace(args[2])
		if username == "" || token == "" {
			fmt.Fprintln(os.Stderr, "username and api-token must be non-empty")
			return 2
		}
		if !credStore.Write(ctx, credentials.Credentials{Principal: username, Secret: token}, account) {
			fmt.Fprintln(os.Stderr, "failed to store credentials; platform vault unavailable on this system")
			return 1
		}
		fmt.Printf("credentials stored for account %q\n", account)
		return 0

	case "delete":
		if !credStore.Delete(ctx, account) {
			fmt.Fprintln(os.Stderr, "failed to delete credentials")
			return 1
		}
		fmt.Printf("credentials removed for account %q\n", account)
		return 0

	case "check":
		if credStore.Exists(ctx, account) {
			fmt.Printf("credentials available for account %q\n", account)
			return 0
		}
		fmt.Printf("no credentials for account %q\n", account)
		return 1

	default:
		fmt.Fprintf(os.Stderr, "unknown credentials subcommand %q\n", args[0])
		return 2
	}
}
