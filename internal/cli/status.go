package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/raphaelgruber/omnimind/internal/client"
	"github.com/spf13/cobra"
)

var statusWatch bool

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the assistant's system status",
	Long: `Probe the assistant service and print its system status.

The probe never fails: an unreachable service is reported as offline.

Examples:
  omnimind status
  omnimind status --watch`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().BoolVarP(&statusWatch, "watch", "w", false, "refresh every OMNIMIND_STATUS_POLL until interrupted")
}

func runStatus(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	printStatus(os.Stdout, apiClient.GetStatus(ctx))
	if !statusWatch {
		return nil
	}

	ticker := time.NewTicker(cfg.StatusPollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			fmt.Println()
			printStatus(os.Stdout, apiClient.GetStatus(ctx))
		}
	}
}

// printStatus displays a status payload.
func printStatus(w io.Writer, s client.Status) {
	state := "ONLINE"
	if !s.Online() {
		state = "OFFLINE"
	}
	fmt.Fprintf(w, "OmniMind %s (%s)\n", state, s.Status)
	fmt.Fprintf(w, "═══════════════════════════════\n")
	fmt.Fprintf(w, "Neural load: %s\n", s.NeuralLoad)
	fmt.Fprintf(w, "Processing:  %s\n", s.Processing)
	fmt.Fprintf(w, "Memory:      %s\n", s.Memory)
	fmt.Fprintf(w, "Connection:  %s\n", s.Connection)

	d := s.Detailed
	if d == nil {
		return
	}
	fmt.Fprintf(w, "\nCPU:  %.1f%% of %d cores at %.1f GHz\n", d.CPU.UsagePercent, d.CPU.Cores, d.CPU.FrequencyGHz)
	fmt.Fprintf(w, "RAM:  %.1f%% (%.1f / %.1f GB)\n", d.Memory.UsagePercent, d.Memory.UsedGB, d.Memory.TotalGB)
	fmt.Fprintf(w, "Disk: %.1f%% (%.1f GB free)\n", d.Disk.UsagePercent, d.Disk.FreeGB)
	if d.Battery != nil {
		fmt.Fprintf(w, "Battery: %.0f%% (plugged in: %t)\n", d.Battery.Percent, d.Battery.PluggedIn)
	}
	if len(d.TopProcesses) > 0 {
		fmt.Fprintf(w, "\nTop processes:\n")
		for _, p := range d.TopProcesses {
			fmt.Fprintf(w, "  %-25s cpu %5.1f%%  mem %5.1f%%\n", p.Name, p.CPUPercent, p.MemoryPercent)
		}
	}
}
