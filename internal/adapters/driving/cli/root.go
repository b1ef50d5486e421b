// Package cli implements the germano command line interface using cobra.
// Commands talk to the core exclusively through driving ports; the
// composition root injects the concrete services before Execute runs.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/YusuphaJuwara/chatbotgermano/internal/core/ports/driving"
	"github.com/YusuphaJuwara/chatbotgermano/internal/logger"
)

// version is set at build time via ldflags.
var version = "dev"

// Services injected by the composition root.
var (
	chatService    driving.ChatService
	sessionService driving.SessionService
)

var verboseFlag bool

var rootCmd = &cobra.Command{
	Use:   "germano",
	Short: "Grounded chat over your FAQ corpus",
	Long: `Germano is a retrieval-augmented chat assistant for ecommerce FAQs.

It indexes the FAQ corpus with dense embeddings, retrieves and reranks
the passages relevant to each question, and answers with span-level
citations back to the source documents.`,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verboseFlag)
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "enable verbose output")
}

// SetVersion sets the version string reported by the version command.
func SetVersion(v string) {
	version = v
}

// SetServices injects the driving ports used by the commands. Either
// service may be nil; commands that need a missing service fail with a
// configuration error.
func SetServices(chat driving.ChatService, sessions driving.SessionService) {
	chatService = chat
	sessionService = sessions
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
