package main

import (
	"context"
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"
)

var (
	// Version is the semantic version (set by build flags)
	Version = "0.1.0"
	// GitCommit is the git commit hash (set by build flags)
	GitCommit = "unknown"
)

// rootFlags are the persistent flags shared by every subcommand.
type rootFlags struct {
	config string
	pretty bool
}

func newRootCmd() *cobra.Command {
	root := &rootFlags{}
	cmd := &cobra.Command{
		Use:   "exportable",
		Short: "Export tables to CSV, JSON, spreadsheets, Parquet and more",
		Long: `exportable reads a table from a CSV or JSON lines file, or from a SQL
query, and streams it out in any of the supported formats: to a file, to
stdout, or straight into an S3 bucket.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVarP(&root.config, "config", "c", "", "YAML config file path")
	cmd.PersistentFlags().BoolVar(&root.pretty, "pretty", false, "human-readable logs instead of JSON")

	cmd.AddCommand(newConvertCmd(root), newFormatsCmd(), newVersionCmd())
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "exportable %s\n", Version)
			fmt.Fprintf(out, "Git Commit: %s\n", GitCommit)
			fmt.Fprintf(out, "Go Version: %s\n", runtime.Version())
		},
	}
}

// Execute runs the command tree and returns the process exit code.
func Execute(ctx context.Context) int {
	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}
	return 0
}
