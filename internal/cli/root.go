// Package cli implements boothlagctl, the operator CLI. Commands run the
// service in-process against the configured ledger, or against a running
// engine with --remote.
package cli

import (
	"context"

	"github.com/spf13/cobra"
)

type options struct {
	configPath string
	remote     string
	key        string
	verbose    bool
}

// RootCmd returns the boothlagctl command tree.
func RootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   "boothlagctl",
		Short: "Record coating booth entries and inspect lag recommendations",
		Long: `boothlagctl appends operator entry lines to the booth ledger, retracts the
last entry, and prints the annotated table, learned frontiers and summaries.`,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "Path to configuration file (default $BOOTHLAG_CONFIG)")
	rootCmd.PersistentFlags().StringVar(&opts.remote, "remote", "", "gRPC address of a running engine; empty runs against the local ledger")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Log at the configured level instead of warn")

	rootCmd.AddCommand(addCmd(opts))
	rootCmd.AddCommand(retractCmd(opts))
	rootCmd.AddCommand(tableCmd(opts))
	rootCmd.AddCommand(frontiersCmd(opts))
	rootCmd.AddCommand(summaryCmd(opts))
	rootCmd.AddCommand(exportCmd(opts))
	return rootCmd
}

// withBackend opens the selected backend, runs fn and closes it.
func withBackend(ctx context.Context, opts *options, fn func(context.Context, backend) error) error {
	var (
		b   backend
		err error
	)
	if opts.remote != "" {
		b, err = openRemote(opts.remote)
	} else {
		b, err = openLocal(opts.configPath, opts.verbose)
	}
	if err != nil {
		return err
	}
	defer b.Close()

	ctx, cancel := withTimeout(ctx)
	defer cancel()
	return fn(ctx, b)
}
