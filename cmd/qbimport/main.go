// Command qbimport normalizes question bank exports from the command line.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		if _, fprintfErr := fmt.Fprintf(os.Stderr, "qbimport: %v\n", err); fprintfErr != nil {
			panic(fmt.Errorf("failed to output an error: %w. Reason: %w", err, fprintfErr))
		}
		os.Exit(1)
	}
}

type rootOptions struct {
	curriculum string
	subject    string
	workers    int
	debug      bool
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "qbimport",
		Short:         "Normalize question bank imports and map them onto the curriculum",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.curriculum, "curriculum", "", "curriculum YAML directory (overrides INGEST_CURRICULUM_PATH)")
	root.PersistentFlags().StringVar(&opts.subject, "subject", "", "default subject for structure rules")
	root.PersistentFlags().IntVar(&opts.workers, "workers", 0, "concurrent questions (0 uses GOMAXPROCS)")
	root.PersistentFlags().BoolVar(&opts.debug, "debug", false, "enable debug logging")

	root.AddCommand(
		newNormalizeCommand(opts),
		newReportCommand(opts),
	)
	return root
}
