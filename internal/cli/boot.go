package cli

import (
	"context"
	"fmt"

	"github.com/raphaelgruber/omnimind/internal/session"
	"github.com/spf13/cobra"
)

var bootCmd = &cobra.Command{
	Use:   "boot",
	Short: "Inspect or reset the boot sequence gate",
	Long: `The boot sequence plays once per terminal session.

Subcommands:
  status  Show whether the next chat will play the boot sequence (default)
  reset   Make the next chat in this session play it again`,
	RunE: runBootStatus,
}

var bootStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show whether the boot sequence will play",
	Args:  cobra.NoArgs,
	RunE:  runBootStatus,
}

var bootResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Re-arm the boot sequence for this session",
	Args:  cobra.NoArgs,
	RunE:  runBootReset,
}

func init() {
	bootCmd.AddCommand(bootStatusCmd)
	bootCmd.AddCommand(bootResetCmd)
}

func runBootStatus(cmd *cobra.Command, args []string) error {
	store, closeStore, err := openBootStore(context.Background())
	if err != nil {
		return err
	}
	defer closeStore()

	gate := session.NewGate(store, session.WithLogger(logger))
	defer gate.Close()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Session: %s (%s store)\n", session.ResolveID(cfg.SessionID), cfg.BootStore)
	if gate.ShowBoot() {
		fmt.Fprintf(out, "Boot sequence will play (%s).\n", session.TotalBootDuration())
	} else {
		fmt.Fprintln(out, "Boot sequence already played in this session.")
	}
	return nil
}

func runBootReset(cmd *cobra.Command, args []string) error {
	store, closeStore, err := openBootStore(context.Background())
	if err != nil {
		return err
	}
	defer closeStore()

	gate := session.NewGate(store, session.WithLogger(logger))
	defer gate.Close()
	gate.Reset()

	fmt.Fprintln(cmd.OutOrStdout(), "Boot sequence re-armed.")
	return nil
}
