package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/raphaelgruber/omnimind/internal/metrics"
	"github.com/spf13/cobra"
)

var (
	statsRounds  int
	statsHistory bool
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Measure service latency",
	Long: `Call the read-only endpoints of the assistant service and print
per-operation timing statistics.

Examples:
  omnimind stats
  omnimind stats --rounds 20
  omnimind stats --history=false`,
	Args: cobra.NoArgs,
	RunE: runStats,
}

func init() {
	statsCmd.Flags().IntVarP(&statsRounds, "rounds", "n", 5, "calls per endpoint")
	statsCmd.Flags().BoolVar(&statsHistory, "history", true, "include the conversations endpoint")
}

func runStats(cmd *cobra.Command, args []string) error {
	if statsRounds < 1 {
		return fmt.Errorf("--rounds must be at least 1")
	}
	ctx := context.Background()

	for i := 0; i < statsRounds; i++ {
		apiClient.GetStatus(ctx)
		// Failures are recorded by the collector; keep probing.
		_, _ = apiClient.ListSkills(ctx)
		if statsHistory {
			_, _ = apiClient.GetConversations(ctx)
		}
	}

	printStats(cmd.OutOrStdout(), apiClient.Metrics().Snapshot())
	return nil
}

// printStats displays client-side timing statistics.
func printStats(w io.Writer, snap metrics.Snapshot) {
	fmt.Fprintf(w, "Service Latency (client-side, %d rounds)\n", statsRounds)
	fmt.Fprintf(w, "═══════════════════════════════════════════════\n")
	fmt.Fprintf(w, "Elapsed: %.1f seconds\n", snap.UptimeSeconds)

	for _, op := range snap.Operations {
		fmt.Fprintf(w, "\n%s:\n", op.Name)
		printOpStats(w, op)
	}
}

// printOpStats displays timing statistics for an operation.
func printOpStats(w io.Writer, op metrics.OperationSnapshot) {
	fmt.Fprintf(w, "  Calls: %d, Failures: %d, Total: %dms\n", op.Count, op.Failures, op.TotalTimeMs)
	fmt.Fprintf(w, "  Time: avg %.1fms, min %dms, max %dms\n",
		op.AvgTimeMs, op.MinTimeMs, op.MaxTimeMs)
	if op.LastError != "" {
		fmt.Fprintf(w, "  Last error: %s\n", op.LastError)
	}
}
