// Command travel-chat is an interactive terminal client for the travel
// assistant API.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/couchcryptid/travel-assistant/internal/chatclient"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		apiURL    string
		sessionID string
		newSess   bool
		timeout   time.Duration
	)

	defaultURL := os.Getenv("API_URL")
	if defaultURL == "" {
		defaultURL = chatclient.DefaultBaseURL
	}

	cmd := &cobra.Command{
		Use:          "travel-chat",
		Short:        "Chat with the travel assistant from the terminal",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			client := chatclient.New(apiURL, timeout)
			if newSess {
				id, err := client.NewSession(ctx)
				if err != nil {
					return fmt.Errorf("create session: %w", err)
				}
				sessionID = id
				fmt.Fprintf(cmd.OutOrStdout(), "Session %s\n", sessionID)
			}
			err := chatclient.REPL(ctx, client, sessionID, cmd.InOrStdin(), cmd.OutOrStdout())
			if errors.Is(err, context.Canceled) {
				fmt.Fprint(cmd.OutOrStdout(), "\nGoodbye!\n\n")
				return nil
			}
			return err
		},
	}

	cmd.Flags().StringVar(&apiURL, "api-url", defaultURL, "base URL of the travel assistant API (env API_URL)")
	cmd.Flags().StringVar(&sessionID, "session", "", "conversation session id; empty uses the default session")
	cmd.Flags().BoolVar(&newSess, "new-session", false, "start a fresh server-side session")
	cmd.Flags().DurationVar(&timeout, "timeout", 90*time.Second, "per-request timeout")
	cmd.SetContext(context.Background())

	return cmd
}
