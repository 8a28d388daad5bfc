package main

import (
	"errors"
	"io/fs"
	"os"

	"github.com/joho/godotenv"

	"github.com/AntonStoeckl/bookcatalog/console"
)

const (
	envConnectionString = "DB_CONNECTION_STRING"
	envAdapter          = "DB_ADAPTER"
	flagAdapter         = "adapter"
	adapterPGX          = "pgx"
	adapterSQL          = "sql"
	adapterSQLX         = "sqlx"
	adapterSQLite       = "sqlite"
)

var (
	ErrMissingConnectionString = errors.New(envConnectionString + " environment variable is not set")
	ErrUnsupportedAdapter      = errors.New("unsupported database adapter")
	ErrLoadingEnvFileFailed    = errors.New("loading env file failed")
	ErrConnectingFailed        = errors.New("connecting to the database failed")
)

type flagValues struct {
	adapter      string
	output       string
	envFile      string
	authorsTable string
	booksTable   string
	verbosity    int
}

type config struct {
	connectionString string
	adapter          string
	output           console.OutputFormat
	authorsTable     string
	booksTable       string
}

// loadConfig merges the env file, the environment and the flags.
// Variables already present in the environment win over the env file.
func loadConfig(flags *flagValues, adapterFlagSet bool) (config, error) {
	if flags.envFile != "" {
		if err := godotenv.Load(flags.envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return config{}, errors.Join(ErrLoadingEnvFileFailed, err)
		}
	}

	connectionString := os.Getenv(envConnectionString)
	if connectionString == "" {
		return config{}, ErrMissingConnectionString
	}

	adapter := flags.adapter
	if envValue := os.Getenv(envAdapter); envValue != "" && !adapterFlagSet {
		adapter = envValue
	}

	switch adapter {
	case adapterPGX, adapterSQL, adapterSQLX, adapterSQLite:
	default:
		return config{}, errors.Join(ErrUnsupportedAdapter, errors.New("adapter: "+adapter))
	}

	output := console.OutputFormat(flags.output)
	if !output.IsValid() {
		return config{}, errors.Join(console.ErrUnsupportedOutputFormat, errors.New("output: "+flags.output))
	}

	return config{
		connectionString: connectionString,
		adapter:          adapter,
		output:           output,
		authorsTable:     flags.authorsTable,
		booksTable:       flags.booksTable,
	}, nil
}
