package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/coatline/boothlag/internal/entry"
	"github.com/coatline/boothlag/internal/export"
	"github.com/coatline/boothlag/internal/models"
)

func addCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <line>",
		Short: "Append an entry line",
		Long: `Append one entry line of the form

  <batchId> <slot>;<date> <operator> <inBooth> <start> <end>;<topcoat>;<extra>

Use "~" for a stage that was not run and "x" for an unknown field. The
arguments are joined with spaces, so the line may be passed unquoted as long
as the shell leaves the semicolons alone.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return submit(cmd, opts, strings.Join(args, " "))
		},
	}
	cmd.Flags().StringVar(&opts.key, "key", "", "Idempotency key; a repeated key within the TTL is ignored")
	return cmd
}

func retractCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "retract",
		Short: "Remove the most recent entry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return submit(cmd, opts, entry.RetractDirective)
		},
	}
}

func submit(cmd *cobra.Command, opts *options, line string) error {
	return withBackend(cmd.Context(), opts, func(ctx context.Context, b backend) error {
		result, err := b.AddLine(ctx, line, opts.key)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, outcomeLabel(result))
		fmt.Fprintln(out)
		return renderTable(out, result.Analysis.Table)
	})
}

func tableCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "table",
		Short: "Print the annotated ledger",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBackend(cmd.Context(), opts, func(ctx context.Context, b backend) error {
				analysis, err := b.Table(ctx)
				if err != nil {
					return err
				}
				return renderTable(cmd.OutOrStdout(), analysis.Table)
			})
		},
	}
}

func frontiersCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "frontiers",
		Short: "Print the learned lag frontiers per slot and stage",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBackend(cmd.Context(), opts, func(ctx context.Context, b backend) error {
				analysis, err := b.Table(ctx)
				if err != nil {
					return err
				}
				renderFrontiers(cmd.OutOrStdout(), analysis)
				return nil
			})
		},
	}
}

func summaryCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Print avoidable lag per slot and stage, worst first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBackend(cmd.Context(), opts, func(ctx context.Context, b backend) error {
				groups, err := b.Summary(ctx)
				if err != nil {
					return err
				}
				return renderSummary(cmd.OutOrStdout(), groups)
			})
		},
	}
}

func exportCmd(opts *options) *cobra.Command {
	var format, outPath string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the annotated ledger as xlsx or csv",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var write func(io.Writer, []models.AnnotatedRecord) error
			switch strings.ToLower(format) {
			case "xlsx":
				write = export.WriteXLSX
			case "csv":
				write = export.WriteCSV
			default:
				return fmt.Errorf("unknown export format %q (want xlsx or csv)", format)
			}
			if outPath == "" {
				outPath = "paint_records." + strings.ToLower(format)
			}

			return withBackend(cmd.Context(), opts, func(ctx context.Context, b backend) error {
				analysis, err := b.Table(ctx)
				if err != nil {
					return err
				}
				f, err := os.Create(outPath)
				if err != nil {
					return fmt.Errorf("failed to create %s: %w", outPath, err)
				}
				if err := write(f, analysis.Table); err != nil {
					f.Close()
					return fmt.Errorf("failed to export: %w", err)
				}
				if err := f.Close(); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d records to %s\n", len(analysis.Table), outPath)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&format, "format", "xlsx", "Export format: xlsx or csv")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Output file (default paint_records.<format>)")
	return cmd
}
