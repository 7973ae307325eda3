package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/exposure/internal/catalog"
	"github.com/JonMunkholm/exposure/internal/category"
	"github.com/JonMunkholm/exposure/internal/config"
	"github.com/JonMunkholm/exposure/internal/logging"
)

// options holds the flags shared by every subcommand.
type options struct {
	source      string
	catalogPath string
	databaseURL string
	table       string
	logLevel    string

	cfg *config.Config
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           "exposurectl",
		Short:         "Work with category tables and exposure input files",
		Long:          `Builds the category table from the reference catalog and converts between full tables and compact exposure input files.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.load(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.source, "source", "", "Catalog source: csv or postgres (default from CATALOG_SOURCE)")
	flags.StringVarP(&opts.catalogPath, "catalog", "c", "", "Catalog CSV path (default from CATALOG_PATH)")
	flags.StringVar(&opts.databaseURL, "database-url", "", "Catalog database URL (default from CATALOG_DATABASE_URL)")
	flags.StringVar(&opts.table, "table", "", "Catalog table (default from CATALOG_TABLE)")
	flags.StringVar(&opts.logLevel, "log-level", "warn", "Log level: debug, info, warn or error")

	root.AddCommand(newTableCmd(opts))
	root.AddCommand(newValidateCmd(opts))
	root.AddCommand(newCompactCmd(opts))
	root.AddCommand(newExpandCmd(opts))
	return root
}

// load reads .env and the environment, then applies flag overrides.
func (o *options) load(cmd *cobra.Command) error {
	_ = godotenv.Load()

	slog.SetDefault(logging.New(cmd.ErrOrStderr(), o.logLevel, "text"))

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	if o.source != "" {
		cfg.Catalog.Source = o.source
	}
	if o.catalogPath != "" {
		cfg.Catalog.Path = o.catalogPath
	}
	if o.databaseURL != "" {
		cfg.Catalog.DatabaseURL = o.databaseURL
	}
	if o.table != "" {
		cfg.Catalog.Table = o.table
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	o.cfg = cfg
	return nil
}

// codec opens the configured catalog. The caller must call release.
func (o *options) codec(ctx context.Context) (codec *category.Codec, release func(), err error) {
	src, release, err := catalog.Open(ctx, o.cfg.Catalog)
	if err != nil {
		return nil, nil, err
	}
	return category.NewCodec(category.NewCanonical(src)), release, nil
}

// readInput reads the named file, or stdin for "-".
func readInput(cmd *cobra.Command, name string) ([]byte, error) {
	if name == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	data, err := os.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return data, nil
}

// writeOutput writes data to the named file, or stdout when name is empty.
func writeOutput(cmd *cobra.Command, name string, data []byte) error {
	if name == "" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	if err := os.WriteFile(name, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	slog.Info("file written", "path", name, "bytes", len(data))
	return nil
}
