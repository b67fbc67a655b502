package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var voiceText string

var voiceCmd = &cobra.Command{
	Use:   "voice",
	Short: "Check the voice socket",
	Long: `Open the voice WebSocket, optionally send one message, and close it.

Examples:
  omnimind voice
  omnimind voice --say "hello"`,
	Args: cobra.NoArgs,
	RunE: runVoice,
}

func init() {
	voiceCmd.Flags().StringVar(&voiceText, "say", "", "send text and print the first event received")
}

func runVoice(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if voiceText != "" {
		ev, err := apiClient.PingVoice(ctx, voiceText)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "[%s] %s\n", ev.Type, ev.Message)
		return nil
	}

	conn, err := apiClient.OpenVoiceSocket(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Voice socket connected: %s\n", conn.RemoteAddr())
	return conn.Close()
}
