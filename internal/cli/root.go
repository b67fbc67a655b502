// Package cli provides the command-line interface for omnimind.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/raphaelgruber/omnimind/internal/client"
	"github.com/raphaelgruber/omnimind/internal/config"
	"github.com/raphaelgruber/omnimind/internal/metrics"
	"github.com/spf13/cobra"
)

var (
	// Version is set at build time.
	Version = "0.1.0"

	// Global flags
	verbose bool
	apiURL  string

	// Global config, logger and service client
	cfg         config.Config
	logger      *slog.Logger
	closeLogger func() error
	apiClient   *client.Client
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "omnimind",
	Short: "Terminal client for the OmniMind assistant",
	Long: `OmniMind is a terminal client for the OmniMind conversational assistant.

Run without arguments to open the interactive chat with its boot sequence,
live telemetry and voice meter. The subcommands talk to the same service
for scripting and diagnostics.`,
	Version:           Version,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if closeLogger != nil {
			if err := closeLogger(); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to close log file: %v\n", err)
			}
		}
	},
	RunE: runChat,
}

// setup loads configuration, installs the logger and creates the service client.
func setup(cmd *cobra.Command, args []string) error {
	if cmd.Name() == "version" || cmd.Name() == "help" {
		return nil
	}

	var err error
	cfg, err = config.Load()
	if err != nil {
		return err
	}
	if apiURL != "" {
		cfg.APIURL = apiURL
		if os.Getenv("OMNIMIND_VOICE_URL") == "" {
			cfg.VoiceURL = config.VoiceURLFor(apiURL)
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid --api-url: %w", err)
		}
	}

	level := cfg.LogLevel
	if verbose {
		level = slog.LevelDebug
	}
	// The full-screen chat owns the terminal, so it logs to the file only.
	if usesFullScreen(cmd) {
		logger, closeLogger = config.SetupFileLogger(cfg.LogFile, level)
	} else {
		logger, closeLogger = config.SetupLogger(cfg.LogFile, level)
	}
	slog.SetDefault(logger)

	apiClient = client.New(
		client.WithBaseURL(cfg.APIURL),
		client.WithVoiceURL(cfg.VoiceURL),
		client.WithStatusTimeout(cfg.StatusTimeout),
		client.WithChatTimeout(cfg.ChatTimeout),
		client.WithLogger(logger),
		client.WithMetrics(metrics.NewCollector()),
	)
	logger.Debug("client configured", "api_url", cfg.APIURL, "voice_url", cfg.VoiceURL)
	return nil
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "assistant API base URL (overrides OMNIMIND_API_URL)")

	// Add subcommands
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(sendCmd)
	rootCmd.AddCommand(skillsCmd)
	rootCmd.AddCommand(profileCmd)
	rootCmd.AddCommand(voiceCmd)
	rootCmd.AddCommand(bootCmd)
	rootCmd.AddCommand(statsCmd)
}
