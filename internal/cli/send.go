package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/raphaelgruber/omnimind/internal/controller"
	"github.com/spf13/cobra"
)

var sendCmd = &cobra.Command{
	Use:   "send <message>",
	Short: "Send one message and print the reply",
	Long: `Send a single chat message and print the assistant's reply.

Examples:
  omnimind send "What is the latest news?"
  omnimind send tell me a joke`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSend,
}

func runSend(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	out := cmd.OutOrStdout()
	text := strings.Join(args, " ")

	ctrl := controller.New(apiClient, controller.WithLogger(logger))
	defer ctrl.Close()

	ctrl.Initialize(ctx)
	if !ctrl.Snapshot().Connected {
		return fmt.Errorf("assistant service unreachable at %s", apiClient.BaseURL())
	}
	if !ctrl.Submit(ctx, text) {
		return fmt.Errorf("message is empty")
	}

	s := ctrl.Snapshot()
	fmt.Fprintln(out, s.Messages[len(s.Messages)-1].Content)
	if !s.Connected {
		return fmt.Errorf("send failed")
	}
	if len(s.Suggestions) > 0 {
		fmt.Fprintf(out, "\nSuggestions: %s\n", strings.Join(s.Suggestions, " | "))
	}
	return nil
}
