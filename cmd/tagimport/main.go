/*
 * Copyright 2025 tomoncle.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Command tagimport loads tag rows from a CSV file into the DynamoDB tag table.
//
//	tagimport --config storekeeper.yaml --file tags.csv [--dry-run]
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/tomoncle/storekeeper/config"
	"github.com/tomoncle/storekeeper/ingest"
	"github.com/tomoncle/storekeeper/utils"
)

type importOptions struct {
	configPath  string
	envFile     string
	file        string
	dryRun      bool
	concurrency int
	printConfig bool
}

func newRootCmd() *cobra.Command {
	var opts importOptions

	cmd := &cobra.Command{
		Use:          "tagimport",
		Short:        "Import tags from a CSV file into DynamoDB",
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, opts)
			if err != nil {
				return err
			}
			if opts.printConfig {
				out, err := config.Dump(cfg)
				if err != nil {
					return err
				}
				_, err = io.WriteString(cmd.OutOrStdout(), out)
				return err
			}
			return runImport(cmd.Context(), cfg, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&opts.configPath, "config", "", "YAML config file (default: defaults and STOREKEEPER_* env)")
	cmd.Flags().StringVar(&opts.envFile, "env-file", ".env", "dotenv file loaded before the config")
	cmd.Flags().StringVar(&opts.file, "file", "", "CSV file with a tag_id column")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "Build every batch but do not send it")
	cmd.Flags().IntVar(&opts.concurrency, "concurrency", 0, "Batches in flight (default from config)")
	cmd.Flags().BoolVar(&opts.printConfig, "print-config", false, "Print the effective config and exit")
	return cmd
}

// loadConfig merges, in increasing priority, defaults, the dotenv file, the
// config file and STOREKEEPER_* env, then explicit flags.
func loadConfig(cmd *cobra.Command, opts importOptions) (*config.Config, error) {
	if opts.envFile != "" {
		if err := godotenv.Load(opts.envFile); err != nil {
			// the default .env is optional
			if !errors.Is(err, fs.ErrNotExist) || cmd.Flags().Changed("env-file") {
				return nil, fmt.Errorf("failed to load %s: %w", opts.envFile, err)
			}
		}
	}
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}
	flags := cmd.Flags()
	if flags.Changed("file") {
		cfg.Ingest.File = opts.file
	}
	if flags.Changed("dry-run") {
		cfg.Ingest.DryRun = opts.dryRun
	}
	if flags.Changed("concurrency") {
		cfg.Ingest.Concurrency = opts.concurrency
	}
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runImport(ctx context.Context, cfg *config.Config, out io.Writer) error {
	utils.ConfigureConsoleLogFormat(cfg.Log.Format)
	utils.ConfigureLogLevel(cfg.Log.Level)
	logger := utils.NewLogger("TAGIMPORT")

	if cfg.Ingest.File == "" {
		return errors.New("no input file: set --file or ingest.file")
	}
	f, err := os.Open(cfg.Ingest.File)
	if err != nil {
		return fmt.Errorf("failed to open input: %w", err)
	}
	defer f.Close()
	records, err := ingest.ReadAll(f)
	if err != nil {
		return err
	}

	var writer ingest.BatchWriter
	if cfg.Ingest.DryRun {
		writer = ingest.DryRunWriter{Logger: logger}
	} else {
		client, err := ingest.NewDynamoDBClient(ctx, cfg.Dynamo)
		if err != nil {
			return err
		}
		writer = client
	}

	logger.WithField("file", cfg.Ingest.File).WithField("records", len(records)).Info("starting tag import")
	pipeline := ingest.NewPipeline(writer, cfg.Dynamo.Table,
		ingest.WithConcurrency(cfg.Ingest.Concurrency),
		ingest.WithLogger(utils.NewLogger("INGEST")),
	)
	report, runErr := pipeline.Run(ctx, records)

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return errors.Join(runErr, err)
	}
	return runErr
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
