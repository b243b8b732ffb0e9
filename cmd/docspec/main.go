// Package main provides the docspec CLI entry point.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/docspec/pkg/version"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := newRootCmd().ExecuteContext(ctx)

	stop()

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	state := &app{}

	rootCmd := &cobra.Command{
		Use:   "docspec",
		Short: "Typed grammar trees for natural-language specification sentences",
		Long: `docspec turns chart-parser output for tokenized specification sentences
into typed grammar trees, one category per node and one token per leaf.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&state.cfgFile, "config", "", "config file (default is ./docspec.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&state.verbose, "verbose", "v", false, "debug logging")

	rootCmd.AddCommand(reconstructCmd(state))
	rootCmd.AddCommand(batchCmd(state))
	rootCmd.AddCommand(symbolsCmd())
	rootCmd.AddCommand(classifyCmd())
	rootCmd.AddCommand(validateCmd())
	rootCmd.AddCommand(diffCmd(state))
	rootCmd.AddCommand(convertCmd())
	rootCmd.AddCommand(serverCmd(state))
	rootCmd.AddCommand(mcpCmd(state))
	rootCmd.AddCommand(versionCmd())

	return rootCmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), version.String())

			return err
		},
	}
}
