package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	cfg    *Config
	client *Client
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cfg = DefaultConfig()

	rootCmd := &cobra.Command{
		Use:   "letterstacks",
		Short: "Play and administer letter stacks",
		Long: `letterstacks is a CLI for the letter stacks word game.

It drives sessions on a running server through the JSON API, streams their
events, and can also play a game or audit the spawn scheduler locally without
a server.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			client = NewClient(cfg.ServerURL, cfg.Token)
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfg.ServerURL, "server", cfg.ServerURL, "Server URL (env: "+EnvServer+")")
	rootCmd.PersistentFlags().StringVar(&cfg.Token, "token", cfg.Token, "Session token (env: "+EnvToken+")")
	rootCmd.PersistentFlags().StringVar(&cfg.StateFile, "state-file", cfg.StateFile, "Current session file (env: "+EnvStateFile+")")
	rootCmd.PersistentFlags().StringVarP(&cfg.Output, "output", "o", cfg.Output, "Output format: text, json")
	rootCmd.PersistentFlags().BoolVarP(&cfg.Verbose, "verbose", "v", cfg.Verbose, "Verbose output")

	// Add subcommands
	rootCmd.AddCommand(newSessionCmd())
	rootCmd.AddCommand(newEventsCmd())
	rootCmd.AddCommand(newScoresCmd())
	rootCmd.AddCommand(newSettingsCmd())
	rootCmd.AddCommand(newWordCmd())
	rootCmd.AddCommand(newHealthCmd())
	rootCmd.AddCommand(newPlayCmd())
	rootCmd.AddCommand(newAuditCmd())

	return rootCmd
}

// Execute runs the root command
func Execute(ctx context.Context) {
	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && cfg.Output == "json" {
			NewOutput("json", os.Stderr).Print(ErrorResponse{Error: *apiErr})
		} else {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}

func output(cmd *cobra.Command) *Output {
	return NewOutput(cfg.Output, cmd.OutOrStdout())
}

// resolveSession picks the session a command acts on: the --session flag if
// given, else the one saved by 'session new'. The saved token is used unless
// a token was passed explicitly.
func resolveSession(flagID string) (string, error) {
	st, err := cfg.LoadState()
	if err != nil {
		return "", fmt.Errorf("read state file: %w", err)
	}
	id := flagID
	if id == "" {
		id = st.SessionID
	}
	if id == "" {
		return "", errors.New("no current session: run 'letterstacks session new' or pass --session")
	}
	if cfg.Token == "" && st.SessionID == id {
		client.SetToken(st.Token)
		cfg.Token = st.Token
	}
	return id, nil
}
