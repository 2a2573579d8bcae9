// Copyright (c) 2026 Keymaster Team
// dbterm - database control terminal
// This source code is licensed under the MIT license found in the LICENSE file.

// main.go sets up the command-line interface for dbterm using the Cobra
// library. It defines the root command, which runs the interactive terminal,
// the provision, debug and version subcommands, and the shared flags.

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/toeirei/dbterm/buildvars"
	"github.com/toeirei/dbterm/config"
	"github.com/toeirei/dbterm/i18n"
	"github.com/toeirei/dbterm/internal/auth"
	"github.com/toeirei/dbterm/internal/console"
	"github.com/toeirei/dbterm/internal/db"
	"github.com/toeirei/dbterm/internal/logging"
	"github.com/toeirei/dbterm/internal/render"
	"github.com/toeirei/dbterm/internal/shell"
	"github.com/toeirei/dbterm/internal/snapshot"
)

const modulePath = "github.com/toeirei/dbterm"

var version = "dev"   // this will be set by the linker
var gitCommit = "dev" // set at build time with the short commit SHA
var buildDate = ""    // set at build time (RFC3339)
var cfgFile string
var verbose bool

var appConfig config.Config

func setupDefaultServices(cmd *cobra.Command, args []string) error {
	logging.SetOutput(cmd.ErrOrStderr())
	logging.SetDebug(verbose)

	optionalConfigPath, err := getConfigPathFromCli(cmd)
	if err != nil {
		return err
	}

	var notFound bool
	appConfig, err = config.LoadConfig[config.Config](cmd, config.Defaults(), optionalConfigPath)
	// A missing file is expected on first run; everything else is fatal.
	if errors.As(err, &viper.ConfigFileNotFoundError{}) {
		notFound = true
	} else if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}

	if appConfig.Database.Type == "" {
		appConfig.Database.Type = "sqlite"
	}
	if appConfig.Language == "" {
		appConfig.Language = "en"
	}
	i18n.Init(appConfig.Language)
	logging.SetDebug(verbose || appConfig.Verbose)

	if notFound {
		if writeErr := config.WriteConfigFile(&appConfig, false); writeErr != nil {
			// The terminal runs on defaults, so this is not fatal.
			logging.Warnf("could not write default config file: %v", writeErr)
		} else if p, perr := config.GetConfigPath(false); perr == nil {
			logging.Infof("%s", i18n.T("cli.config_written", p))
		}
	}
	logging.Debugf("config: database.type=%s language=%s provision=%t",
		appConfig.Database.Type, appConfig.Language, appConfig.Provision)
	return nil
}

// Execute runs the CLI entrypoint. The root main package calls this and
// handles the process exit.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return NewRootCmd().ExecuteContext(ctx)
}

func applyDefaultFlags(cmd *cobra.Command) {
	// NewRootCmd may be called repeatedly in tests; pflag panics on
	// duplicate definitions.
	if cmd.PersistentFlags().Lookup("database.type") == nil {
		cmd.PersistentFlags().String("database.type", "sqlite", "Database type (sqlite, mysql, postgres)")
	}
	if cmd.PersistentFlags().Lookup("database.dsn") == nil {
		cmd.PersistentFlags().String("database.dsn", "./terminal_db.sqlite", "Database connection string (DSN)")
	}
}

func getConfigPathFromCli(cmd *cobra.Command) (*string, error) {
	// Only proceed if the user has explicitly set the --config flag.
	if !cmd.Flags().Changed("config") {
		return nil, nil
	}
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, fmt.Errorf("could not read --config flag: %w", err)
	}
	if path == "" {
		return nil, nil
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("config file specified via --config flag not found or is not accessible: %w", err)
	}
	return &path, nil
}

// NewRootCmd creates and configures a new root cobra command. Tests call it
// for a fresh, isolated command tree.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:               "dbterm",
		Short:             i18n.T("cli.short"),
		Long:              i18n.T("cli.long"),
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: setupDefaultServices,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTerminal(cmd)
		},
	}
	cmd.Version = compositeVersion()

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file")
	cmd.PersistentFlags().String("language", "en", `Terminal language ("en", "de")`)
	cmd.Flags().Bool("provision", true, "Drop, recreate and seed the tables before the session starts")
	applyDefaultFlags(cmd)

	cmd.AddCommand(newProvisionCmd(), newDebugCmd(), newVersionCmd())
	return cmd
}

// openStore connects to the configured backend, creating the MySQL
// database first when it does not exist.
func openStore(ctx context.Context) (*db.Store, error) {
	if err := db.EnsureDatabase(ctx, appConfig.Database.Type, appConfig.Database.Dsn); err != nil {
		return nil, err
	}
	return db.Open(ctx, appConfig.Database.Type, appConfig.Database.Dsn)
}

func provision(ctx context.Context, store *db.Store, out *render.Printer) error {
	stats, err := store.Provision(ctx)
	if err != nil {
		out.Error(i18n.T("cli.provision_failed", err))
		return err
	}
	logging.Infof("provisioned %d users and %d products", stats.Users, stats.Products)
	return nil
}

// newReader picks readline for an interactive terminal and plain line
// reading for anything else.
func newReader(cmd *cobra.Command) (console.Reader, error) {
	if f, ok := cmd.InOrStdin().(*os.File); ok && console.IsTerminal(f) {
		return console.NewReadline(console.Options{
			HistoryFile: appConfig.Shell.HistoryFile,
			Commands:    shell.Names(),
			Stdin:       f,
			Stdout:      cmd.OutOrStdout(),
		})
	}
	return console.NewPlain(cmd.InOrStdin(), cmd.OutOrStdout()), nil
}

// runTerminal is the root command: connect, provision, log in and hand the
// session to the shell.
func runTerminal(cmd *cobra.Command) error {
	ctx := cmd.Context()
	out := render.New(cmd.OutOrStdout())

	store, err := openStore(ctx)
	if err != nil {
		out.Error(i18n.T("cli.connect_failed", err))
		return err
	}
	defer func() { _ = store.Close() }()

	if appConfig.Provision {
		if err := provision(ctx, store, out); err != nil {
			return err
		}
	}

	snaps, err := snapshot.New(appConfig.Snapshot, appConfig.Database.Type, appConfig.Database.Dsn, store)
	if err != nil {
		return err
	}

	in, err := newReader(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	out.Clear()
	out.Banner(i18n.T("banner.title"), i18n.T("banner.subtitle"))

	gate := auth.NewGate(store, in, out, auth.Config{
		MaxAttempts: appConfig.Shell.MaxAttempts,
		LoginDelay:  appConfig.Shell.LoginDelay,
	})
	sess, err := gate.Authenticate(ctx)
	if errors.Is(err, io.EOF) {
		out.Blank()
		out.Println(i18n.T("cli.goodbye"))
		return nil
	}
	if err != nil {
		return err
	}

	return shell.New(store, snaps, in, out).Run(ctx, sess)
}

func newProvisionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "provision",
		Short: i18n.T("cli.provision_short"),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := render.New(cmd.OutOrStdout())
			store, err := openStore(ctx)
			if err != nil {
				out.Error(i18n.T("cli.connect_failed", err))
				return err
			}
			defer func() { _ = store.Close() }()

			stats, err := store.Provision(ctx)
			if err != nil {
				out.Error(i18n.T("cli.provision_failed", err))
				return err
			}
			out.Success(i18n.T("cli.provisioned", stats.Users, stats.Products))
			return nil
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: i18n.T("cli.version_short"),
		Args:  cobra.NoArgs,
		// No config or store needed.
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
		Run: func(cmd *cobra.Command, args []string) {
			v, c, d := resolveBuildVersion(nil)
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "version: %s\n", v)
			fmt.Fprintf(w, "commit: %s\n", c)
			if d != "" {
				fmt.Fprintf(w, "built: %s\n", d)
			}
		},
	}
}

func compositeVersion() string {
	v, c, d := resolveBuildVersion(nil)
	if c != "" && c != "dev" {
		v = v + " (" + c + ")"
	}
	if d != "" {
		v = v + " built: " + d
	}
	return v
}

// resolveBuildVersion computes the best-available version, commit and build
// date for the running binary. If info is nil, it reads build info from the
// runtime.
func resolveBuildVersion(info *debug.BuildInfo) (versionOut, commitOut, dateOut string) {
	resolvedVersion := buildvars.VersionOrDefault(version)
	resolvedCommit := gitCommit
	resolvedDate := buildDate

	if info == nil {
		if local, ok := debug.ReadBuildInfo(); ok {
			info = local
		}
	}

	if info != nil {
		if info.Main.Version != "" && info.Main.Version != "(devel)" {
			resolvedVersion = info.Main.Version
		}
		// Some build paths only record our module as a dependency.
		if resolvedVersion == "dev" || resolvedVersion == "(devel)" {
			for _, dep := range info.Deps {
				if dep.Path == modulePath && dep.Version != "" {
					resolvedVersion = dep.Version
					break
				}
			}
		}
		for _, s := range info.Settings {
			switch s.Key {
			case "vcs.revision":
				if s.Value != "" {
					resolvedCommit = s.Value
				}
			case "vcs.time":
				if s.Value != "" {
					resolvedDate = s.Value
				}
			}
		}
	}

	// Last resort: a commit passed via ldflags.
	if resolvedVersion == "dev" && gitCommit != "dev" && gitCommit != "" {
		resolvedVersion = gitCommit
	}
	return resolvedVersion, resolvedCommit, resolvedDate
}
