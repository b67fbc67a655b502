package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/raphaelgruber/omnimind/internal/ambient"
	"github.com/raphaelgruber/omnimind/internal/controller"
	"github.com/raphaelgruber/omnimind/internal/models"
	"github.com/raphaelgruber/omnimind/internal/session"
	"github.com/raphaelgruber/omnimind/internal/tui"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var chatNoBoot bool

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Open the interactive chat (default)",
	Long: `Open the interactive chat.

The boot sequence plays once per terminal session; re-running omnimind from
the same shell skips it. When stdout is not a terminal, chat reads one
message per line from stdin and prints the replies.

Examples:
  omnimind
  omnimind chat --no-boot
  echo "What is the latest news?" | omnimind chat`,
	Args: cobra.NoArgs,
	RunE: runChat,
}

func init() {
	chatCmd.Flags().BoolVar(&chatNoBoot, "no-boot", false, "skip the boot sequence")
}

// opensChat reports whether cmd runs the chat: the root command or chat itself.
func opensChat(cmd *cobra.Command) bool {
	return !cmd.HasParent() || cmd.Name() == chatCmd.Name()
}

// usesFullScreen reports whether cmd will take over the terminal.
func usesFullScreen(cmd *cobra.Command) bool {
	return opensChat(cmd) && term.IsTerminal(int(os.Stdout.Fd()))
}

func runChat(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		ctrl := controller.New(apiClient, controller.WithLogger(logger))
		defer ctrl.Close()
		return runLineMode(ctx, ctrl, os.Stdin, os.Stdout)
	}

	store, closeStore, err := openBootStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	gate := session.NewGate(store, session.WithLogger(logger))
	defer gate.Close()
	if chatNoBoot && gate.Booting() {
		gate.Complete()
	}

	notifier := &tui.Notifier{}
	ctrl := controller.New(apiClient,
		controller.WithLogger(logger),
		controller.WithObserver(notifier.Observe),
	)
	defer ctrl.Close()

	return tui.Run(ctx, tui.Options{
		Controller:   ctrl,
		Gate:         gate,
		Signal:       ambient.NewSimulator(),
		Metrics:      apiClient.Metrics(),
		PollInterval: cfg.StatusPollInterval,
	}, notifier)
}

// runLineMode is the non-interactive chat: one message per input line.
func runLineMode(ctx context.Context, ctrl *controller.Controller, in io.Reader, out io.Writer) error {
	ctrl.Initialize(ctx)
	printed := printNewMessages(out, ctrl.Snapshot().Messages, 0)

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		if ctx.Err() != nil {
			break
		}
		if !ctrl.Submit(ctx, scanner.Text()) {
			continue
		}
		msgs := ctrl.Snapshot().Messages
		printed = printNewMessages(out, msgs, printed)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	if !ctrl.Snapshot().Connected {
		return fmt.Errorf("assistant service unreachable at %s", cfg.APIURL)
	}
	return nil
}

// printNewMessages writes assistant messages from index from onward and
// returns the new count.
func printNewMessages(out io.Writer, msgs []models.Message, from int) int {
	for _, m := range msgs[from:] {
		if m.Role == models.RoleAssistant {
			fmt.Fprintln(out, m.Content)
		}
	}
	return len(msgs)
}
