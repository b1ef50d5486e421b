package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/YusuphaJuwara/chatbotgermano/internal/adapters/driving/api"
	"github.com/YusuphaJuwara/chatbotgermano/internal/core/ports/driving"
	"github.com/YusuphaJuwara/chatbotgermano/internal/logger"
)

// ServeConfig holds the dependencies of the serve command.
type ServeConfig struct {
	Sessions driving.SessionService
	Corpus   api.CorpusReader

	// PromptWatcher, when set, is started alongside the server and
	// reloads prompt files as they change. It must block until its
	// context is cancelled.
	PromptWatcher func(ctx context.Context) error

	// ListenAddr is the default listen address from configuration.
	ListenAddr string
}

var serveConfig *ServeConfig

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	Long: `Start the HTTP API for chat sessions.

The server exposes session, message, citation and document lookup
endpoints backed by the same retrieval pipeline as the CLI.`,
	RunE: runServe,
}

// SetServeConfig sets the configuration for the serve command.
func SetServeConfig(config *ServeConfig) {
	serveConfig = config
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides configuration)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	if serveConfig == nil || serveConfig.Sessions == nil {
		return errors.New("session service not configured")
	}

	addr := serveAddr
	if addr == "" {
		addr = serveConfig.ListenAddr
	}
	if addr == "" {
		addr = ":8000"
	}

	if serveConfig.PromptWatcher != nil {
		watchCtx, cancel := context.WithCancel(cmd.Context())
		defer cancel()
		go func() {
			if err := serveConfig.PromptWatcher(watchCtx); err != nil {
				logger.Warn("prompt watcher stopped: %v", err)
			}
		}()
	}

	server := api.NewServer(serveConfig.Sessions, serveConfig.Corpus)
	if err := server.Run(addr); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}
