package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show past conversations stored by the service",
	Long: `Show the conversation history kept by the assistant service.

The interactive chat always starts fresh; use this command to look back.

Examples:
  omnimind history
  omnimind history -n 5`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "max conversations (0 for all)")
}

func runHistory(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	out := cmd.OutOrStdout()

	entries, err := apiClient.GetConversations(ctx)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Fprintln(out, "No conversations yet.")
		return nil
	}

	start := 0
	if historyLimit > 0 && len(entries) > historyLimit {
		start = len(entries) - historyLimit
	}
	for _, e := range entries[start:] {
		fmt.Fprintf(out, "── %s\n", e.Time().Format("2006-01-02 15:04:05"))
		fmt.Fprintf(out, "you:      %s\n", e.User)
		fmt.Fprintf(out, "omnimind: %s\n\n", e.Assistant)
	}
	if start > 0 {
		fmt.Fprintf(out, "(%d older conversations not shown)\n", start)
	}
	return nil
}
