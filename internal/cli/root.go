package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"doneit-cli/internal/format"
	"doneit-cli/internal/logging"
	"doneit-cli/internal/store"
	"doneit-cli/internal/tui"
)

type App struct {
	Dir        string
	PrettyJSON bool
	Format     string
	LogLevel   string
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:          "doneit",
		Short:        "doneit: nested todo lists in the terminal",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Start the interactive TUI
  doneit

  # Scriptable commands
  doneit workspaces list
  doneit items list --workspace ws-home
  doneit export --format yaml
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand => interactive TUI.
			if cmd.HasSubCommands() && len(args) == 0 {
				return runTUI(app)
			}
			return cmd.Help()
		},
	}

	cmd.PersistentFlags().StringVar(&app.Dir, "dir", envOr("DONEIT_DIR", ""), "Path to store dir (overrides config data_dir)")
	cmd.PersistentFlags().BoolVar(&app.PrettyJSON, "pretty", false, "Pretty-print JSON output")
	cmd.PersistentFlags().StringVar(&app.Format, "format", envOr("DONEIT_FORMAT", "json"), "Output format (json|yaml)")
	cmd.PersistentFlags().StringVar(&app.LogLevel, "log-level", envOr("DONEIT_LOG", ""), "Log level (debug|info|warn|error)")

	cmd.AddCommand(newInitCmd(app))
	cmd.AddCommand(newWorkspacesCmd(app))
	cmd.AddCommand(newItemsCmd(app))
	cmd.AddCommand(newExportCmd(app))
	cmd.AddCommand(newImportCmd(app))

	return cmd
}

func runTUI(app *App) error {
	// One writer per store; concurrent editors would clobber each other's
	// replace-all saves. The lock is held for the whole session.
	db, s, release, err := loadDBLocked(app)
	if err != nil {
		return err
	}
	defer release()

	cfg, err := store.LoadConfig()
	if err != nil {
		return err
	}
	level := app.LogLevel
	if level == "" {
		level = cfg.LogLevel
	}
	logger, logFile, err := logging.ForTUI(level)
	if err != nil {
		return err
	}
	if logFile != nil {
		defer logFile.Close()
	}
	theme, err := store.LoadTheme(cfg.Theme)
	if err != nil {
		logger.Warn("theme load failed, using defaults", "err", err)
	}

	return tui.Run(s.Dir, db, theme, logger)
}

func storeFor(app *App) (store.Store, error) {
	dir := app.Dir
	if dir == "" {
		d, err := store.DefaultDir()
		if err != nil {
			return store.Store{}, err
		}
		dir = d
		app.Dir = dir
	}
	return store.Store{Dir: dir}, nil
}

func loadDB(app *App) (*store.DB, store.Store, error) {
	s, err := storeFor(app)
	if err != nil {
		return nil, store.Store{}, err
	}
	db, err := s.Load(context.Background())
	if err != nil {
		return nil, store.Store{}, err
	}
	return db, s, nil
}

// loadDBLocked takes the store lock before reading, so a load-modify-save
// sequence cannot interleave with another writer. The caller must invoke the
// returned release function once its save is done.
func loadDBLocked(app *App) (*store.DB, store.Store, func(), error) {
	s, err := storeFor(app)
	if err != nil {
		return nil, store.Store{}, nil, err
	}
	lock, err := s.AcquireLock()
	if err != nil {
		return nil, store.Store{}, nil, err
	}
	db, err := s.Load(context.Background())
	if err != nil {
		_ = lock.Unlock()
		return nil, store.Store{}, nil, err
	}
	return db, s, func() { _ = lock.Unlock() }, nil
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func writeOut(cmd *cobra.Command, app *App, v any) error {
	return format.Write(cmd.OutOrStdout(), v, app.Format, app.PrettyJSON)
}

func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
	return err
}
