// Command fairaudit audits binary classifier outputs for group fairness.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Process exit codes.
const (
	exitFair   = 0
	exitError  = 1
	exitUnfair = 2
)

// cliError carries the exit code a failed command should produce.
type cliError struct {
	code int
	err  error
}

func (e cliError) Error() string { return e.err.Error() }

func (e cliError) Unwrap() error { return e.err }

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := newRootCommand()
	if err := root.ExecuteContext(ctx); err != nil {
		var ce cliError
		if errors.As(err, &ce) {
			fmt.Fprintln(os.Stderr, ce.err)
			stop()
			os.Exit(ce.code)
		}
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(exitError)
	}
}

// rootOptions holds state shared by every subcommand.
type rootOptions struct {
	verbose bool
	logger  *zap.Logger
}

func newRootCommand() *cobra.Command {
	ro := &rootOptions{logger: zap.NewNop()}

	root := &cobra.Command{
		Use:   "fairaudit",
		Short: "Audit binary predictions for group fairness",
		Long: `fairaudit compares outcome rates of a binary classifier across the groups
of a sensitive attribute. It reports statistical parity (also known as
demographic parity) and equal opportunity, and passes a dataset only when
every metric's disparity stays below the tolerance.

Exit status is 0 when every dataset is fair, 2 when any dataset exceeds the
tolerance, and 1 when an input or configuration is rejected.`,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			config := zap.NewProductionConfig()
			if ro.verbose {
				config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
			}
			logger, err := config.Build()
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			ro.logger = logger
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = ro.logger.Sync()
		},
	}
	root.PersistentFlags().BoolVarP(&ro.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(newAuditCommand(ro))
	root.AddCommand(newMetricsCommand())
	return root
}
