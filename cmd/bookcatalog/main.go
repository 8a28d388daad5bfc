package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/AntonStoeckl/bookcatalog/catalog"
	"github.com/AntonStoeckl/bookcatalog/catalog/sqlengine"
	"github.com/AntonStoeckl/bookcatalog/console"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := newRootCommand(os.Stdin, os.Stdout, os.Stderr).ExecuteContext(ctx)
	stop()

	if err != nil {
		os.Exit(1)
	}
}

func newRootCommand(in io.Reader, out io.Writer, errOut io.Writer) *cobra.Command {
	flags := &flagValues{}

	rootCmd := &cobra.Command{
		Use:   "bookcatalog",
		Short: "Bookcatalog - console catalog of authors and books",
		Long: `Bookcatalog keeps a catalog of authors and their books in a relational database.
Commands are read line by line from standard input, type Help to list them.
The database is taken from the DB_CONNECTION_STRING environment variable.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), flags, cmd.Flags().Changed(flagAdapter), in, out, errOut)
		},
	}

	rootCmd.Flags().StringVarP(&flags.adapter, flagAdapter, "a", adapterPGX, "Database adapter: pgx, sql, sqlx or sqlite (or set DB_ADAPTER env var)")
	rootCmd.Flags().StringVarP(&flags.output, "output", "o", string(console.OutputText), "Output format of lists: text or json")
	rootCmd.Flags().StringVar(&flags.envFile, "env-file", ".env", "File with environment variables, ignored if it does not exist")
	rootCmd.Flags().StringVar(&flags.authorsTable, "authors-table", "authors", "Name of the authors table")
	rootCmd.Flags().StringVar(&flags.booksTable, "books-table", "books", "Name of the books table")
	rootCmd.Flags().CountVarP(&flags.verbosity, "verbose", "v", "Increase verbosity (-v info, -vv debug with SQL statements)")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, _ []string) {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "bookcatalog %s (commit: %s, built: %s)\n", version, commit, date)
		},
	})

	rootCmd.SetOut(out)
	rootCmd.SetErr(errOut)

	return rootCmd
}

func run(ctx context.Context, flags *flagValues, adapterFlagSet bool, in io.Reader, out io.Writer, errOut io.Writer) error {
	logger := setupLogging(flags.verbosity, errOut)

	cfg, err := loadConfig(flags, adapterFlagSet)
	if err != nil {
		logger.Error().Err(err).Msg("Invalid configuration")
		return err
	}

	engine, closeDB, err := openEngine(ctx, cfg, logger)
	if err != nil {
		logger.Error().Err(err).Str("adapter", cfg.adapter).Msg("Failed to open database")
		return err
	}
	defer closeDB()

	if err = engine.EnsureSchema(ctx); err != nil {
		logger.Error().Err(err).Msg("Failed to ensure database schema")
		return err
	}

	service, err := catalog.NewService(sqlengine.NewAuthorRepository(engine), sqlengine.NewBookRepository(engine))
	if err != nil {
		return err
	}

	handler := console.NewHandler()
	if err = console.RegisterCatalogCommands(handler, service, console.WithOutputFormat(cfg.output)); err != nil {
		return err
	}

	logger.Info().
		Str("version", version).
		Str("adapter", cfg.adapter).
		Str("output", string(cfg.output)).
		Msg("Starting bookcatalog")

	err = handler.Run(ctx, console.NewSession(in, out))
	if errors.Is(err, context.Canceled) {
		logger.Info().Msg("Interrupted, shutting down")
		return nil
	}

	return err
}

func setupLogging(verbosity int, w io.Writer) zerolog.Logger {
	// Pretty console output, stdout belongs to the catalog commands
	output := zerolog.ConsoleWriter{Out: w, TimeFormat: "2006-01-02 15:04:05"}

	level := zerolog.WarnLevel
	switch verbosity {
	case 0:
	case 1:
		level = zerolog.InfoLevel
	default: // 2+
		level = zerolog.DebugLevel
	}

	return zerolog.New(output).Level(level).With().Timestamp().Logger()
}
