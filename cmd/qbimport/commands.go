package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/p-n-ai/pai-qbank/internal/app"
	"github.com/p-n-ai/pai-qbank/internal/ingest"
	"github.com/p-n-ai/pai-qbank/internal/platform/config"
	"github.com/p-n-ai/pai-qbank/internal/platform/logging"
	"github.com/p-n-ai/pai-qbank/internal/report"
)

func newNormalizeCommand(opts *rootOptions) *cobra.Command {
	var save bool

	command := &cobra.Command{
		Use:   "normalize <file>",
		Short: "Normalize a JSON question export and print the batch as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			batch, err := runBatch(cmd, opts, args[0], save)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(batch)
		},
	}
	command.Flags().BoolVar(&save, "save", false, "save the batch to the PostgreSQL review store")

	return command
}

func newReportCommand(opts *rootOptions) *cobra.Command {
	var output string

	command := &cobra.Command{
		Use:   "report <file>",
		Short: "Normalize a JSON question export and write an xlsx review report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if output == "" {
				return fmt.Errorf("--output is required")
			}
			batch, err := runBatch(cmd, opts, args[0], false)
			if err != nil {
				return err
			}

			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("creating report: %w", err)
			}
			if err := report.Write(f, batch); err != nil {
				_ = f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("closing report: %w", err)
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "wrote %s: %d questions, %d failures, %d need mapping\n",
				output, batch.Summary.Processed, len(batch.Failures), batch.Summary.NeedsMapping)
			return err
		},
	}
	command.Flags().StringVarP(&output, "output", "o", "", "xlsx file to write")

	return command
}

// runBatch loads configuration, wires the app and normalizes the input file
// ("-" for stdin). With persist the batch is also saved for review.
func runBatch(cmd *cobra.Command, opts *rootOptions, path string, persist bool) (*ingest.Batch, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}
	cfg.Review.Persist = persist

	data, err := readInput(cmd.InOrStdin(), path)
	if err != nil {
		return nil, err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	logger := logging.New(cmd.ErrOrStderr(), logLevel(cfg, opts), "text")
	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	defer a.Close()

	batch, err := a.Normalizer.Normalize(ctx, data)
	if err != nil {
		return nil, fmt.Errorf("normalizing %s: %w", path, err)
	}
	if persist {
		n, err := a.Reviews.SaveBatch(ctx, batch)
		if err != nil {
			return nil, fmt.Errorf("saving batch for review: %w", err)
		}
		logger.Info("batch saved for review", "run_id", batch.RunID, "questions", n)
	}
	return batch, nil
}

func loadConfig(opts *rootOptions) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if opts.curriculum != "" {
		cfg.Curriculum.Source = config.SourceFile
		cfg.Curriculum.Path = opts.curriculum
	}
	if opts.subject != "" {
		cfg.Ingest.Subject = opts.subject
	}
	if opts.workers > 0 {
		cfg.Ingest.Workers = opts.workers
	}
	return cfg, nil
}

func logLevel(cfg *config.Config, opts *rootOptions) string {
	if opts.debug {
		return "debug"
	}
	return cfg.Log.Level
}

func readInput(stdin io.Reader, path string) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("reading stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return data, nil
}
