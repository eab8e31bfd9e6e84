// Package cli implements the lakeboot command tree.
package cli

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"lakeboot/internal/config"
	"lakeboot/internal/domain"
	"lakeboot/internal/engine"
	"lakeboot/internal/logging"
	"lakeboot/internal/storage"
)

var (
	version = "dev"
	commit  = "none"
)

// deps are the process boundaries commands reach through. Tests swap them.
type deps struct {
	stdout    io.Writer
	stderr    io.Writer
	lookupEnv config.LookupFunc
	loadEnv   func(path string) ([]string, error)

	openDB          func(dsn string) (*sql.DB, error)
	newBucketClient func(ctx context.Context, storageType string, creds config.Credentials) (domain.BucketManager, error)
	inspect         func(ctx context.Context, backend, path string) (*domain.CatalogStatus, error)
}

func defaultDeps() *deps {
	return &deps{
		stdout:          os.Stdout,
		stderr:          os.Stderr,
		lookupEnv:       os.LookupEnv,
		loadEnv:         config.LoadDotEnv,
		openDB:          engine.Open,
		newBucketClient: storage.NewClient,
		inspect:         engine.Inspect,
	}
}

// Execute runs the CLI against os.Args and returns the process exit code.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return run(ctx, os.Args[1:], defaultDeps())
}

func run(ctx context.Context, args []string, d *deps) int {
	rootCmd := newRootCmd(d)
	rootCmd.SetArgs(args)
	rootCmd.SetOut(d.stdout)
	rootCmd.SetErr(d.stderr)
	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		_, _ = fmt.Fprintf(d.stderr, "Error: %v\n", err)
	}
	return domain.ExitCode(err)
}

// rootOptions hold the persistent flags.
type rootOptions struct {
	configPath string
	envFile    string
	logLevel   string
	output     string
}

func newRootCmd(d *deps) *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "lakeboot",
		Short: "Bootstrap a DuckLake lakehouse on S3-compatible storage",
		Long: "lakeboot provisions the storage bucket, attaches a DuckLake catalog through an\n" +
			"embedded DuckDB engine and loads the TPC-H benchmark dataset into it.",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          noArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return validateOutputFormat(opts.output)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&opts.configPath, "config", "c", config.DefaultPath, "Settings file")
	flags.StringVar(&opts.envFile, "env-file", ".env", "Environment file loaded before credentials are resolved")
	flags.StringVar(&opts.logLevel, "log-level", "", "Log level (debug, info, warn, error); overrides "+logging.LevelEnv)
	flags.StringVarP(&opts.output, "output", "o", "table", "Output format (table, json)")

	rootCmd.AddCommand(newInitConfigCmd(d, opts))
	rootCmd.AddCommand(newEnsureBucketCmd(d, opts))
	rootCmd.AddCommand(newAttachCmd(d, opts))
	rootCmd.AddCommand(newLoadTPCHCmd(d, opts))
	rootCmd.AddCommand(newQueryTPCHCmd(d, opts))
	rootCmd.AddCommand(newStatusCmd(d, opts))
	rootCmd.AddCommand(newWaitStorageCmd(d, opts))
	rootCmd.AddCommand(newConfigCmd(d, opts))
	rootCmd.AddCommand(newVersionCmd(d))
	rootCmd.AddCommand(newCommandsCmd())

	return rootCmd
}

// noArgs rejects positional arguments, naming the first one as an unknown command.
func noArgs(_ *cobra.Command, args []string) error {
	if len(args) > 0 {
		return domain.ErrUnknownCommand(args[0])
	}
	return nil
}

// env is everything a command needs after the settings file is loaded.
type env struct {
	cfg    *config.Config
	creds  config.Credentials
	logger zerolog.Logger
	deps   *deps
	opts   *rootOptions
}

// load reads the environment file and settings, then builds the logger and credentials.
func (o *rootOptions) load(d *deps) (*env, error) {
	applied, err := d.loadEnv(o.envFile)
	if err != nil {
		return nil, domain.WrapConfig(err, "environment file")
	}
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}

	logger := logging.New(logging.Options{
		Level:  logging.ResolveLevel(o.logLevel, d.lookupEnv, cfg.Log.Level),
		Format: cfg.Log.Format,
		Out:    d.stderr,
	})
	creds := config.ResolveCredentials(cfg, d.lookupEnv)

	logger.Debug().
		Str("config", cfg.Path).
		Strs("env_file_keys", applied).
		Interface("credential_sources", creds.Sources).
		Msg("settings loaded")
	if defaulted := creds.Defaulted(); len(defaulted) > 0 {
		logger.Warn().Strs("fields", defaulted).Msg("using built-in storage defaults")
	}
	return &env{cfg: cfg, creds: creds, logger: logger, deps: d, opts: o}, nil
}

// bareLogger is used by commands that run without a settings file.
func (o *rootOptions) bareLogger(d *deps) zerolog.Logger {
	return logging.New(logging.Options{
		Level: logging.ResolveLevel(o.logLevel, d.lookupEnv, config.DefaultLogLevel),
		Out:   d.stderr,
	})
}

// openSession opens an in-memory engine and pins a session on it. The
// returned closer releases both.
func (e *env) openSession(ctx context.Context) (*engine.Session, func(), error) {
	db, err := e.deps.openDB("")
	if err != nil {
		return nil, nil, err
	}
	session, err := engine.NewSession(ctx, db, e.logger)
	if err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	closer := func() {
		if err := session.Close(); err != nil {
			e.logger.Debug().Err(err).Msg("close session")
		}
		if err := db.Close(); err != nil {
			e.logger.Debug().Err(err).Msg("close engine")
		}
	}
	return session, closer, nil
}

func (e *env) bucketClient(ctx context.Context) (domain.BucketManager, error) {
	return e.deps.newBucketClient(ctx, e.cfg.Storage.Type, e.creds)
}
