// cmd/agrovoo/main.go
//
// This is the entry point for the AgroVoo CLI.
// Running `agrovoo` opens the terminal app: the intro animation followed
// by the landing page, login and registration screens.
//
// Flow:
// 1. Create the .agrovoo folder and load its config
// 2. Open the log file and the account database
// 3. Launch the TUI

package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kingrea/agrovoo/internal/authstore"
	"github.com/kingrea/agrovoo/internal/config"
	"github.com/kingrea/agrovoo/internal/logging"
	"github.com/kingrea/agrovoo/internal/prefs"
	"github.com/kingrea/agrovoo/internal/screens"
	"github.com/kingrea/agrovoo/internal/tui"
)

var (
	// Global flags
	baseDir string
	verbose bool

	// Root flags
	noSplash   bool
	saveSplash bool
	startRoute string

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "agrovoo",
	Short: "AgroVoo - drone field scans for rural producers",
	Long: `AgroVoo opens with an animated drone scan of a growing field and then
lets producers sign in or register their rural property.

Run without arguments to start the interactive app.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		dir := baseDir
		if dir == "" {
			cwd, err := os.Getwd()
			if err != nil {
				return fmt.Errorf("get working directory: %w", err)
			}
			dir = cwd
		}
		if err := config.InitAppDir(dir); err != nil {
			return fmt.Errorf("initialize %s: %w", config.AppDir, err)
		}
		loaded, err := config.NewConfig(dir)
		if err != nil {
			return err
		}
		cfg = loaded
		logger, err = logging.New(cfg, verbose)
		if err != nil {
			return err
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: runApp,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&baseDir, "dir", "", "directory holding .agrovoo (defaults to the working directory)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "write debug entries to the log file")
	rootCmd.Flags().BoolVar(&noSplash, "no-splash", false, "skip the intro animation")
	rootCmd.Flags().BoolVar(&saveSplash, "save", false, "store the --no-splash choice in the config for later runs")
	rootCmd.Flags().StringVar(&startRoute, "route", "/", "page shown after the intro (/, /login or /register)")
	rootCmd.AddCommand(splashCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runApp(cmd *cobra.Command, args []string) error {
	store, err := authstore.Open(cfg.DatabasePath(),
		authstore.WithLogger(logger),
		authstore.WithOptions(authstore.Options{
			MinPasswordLength: cfg.App.Auth.MinPasswordLength,
			MaxFailedAttempts: cfg.App.Auth.MaxFailedAttempts,
			LockoutWindow:     cfg.App.Auth.LockoutWindow,
		}),
	)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := &screens.Context{
		Config: cfg,
		Auth:   store,
		Prefs:  prefs.New(cfg.PrefsPath()),
		Logger: logger,
	}
	splashOn, err := splashEnabled(cfg, noSplash, saveSplash)
	if err != nil {
		return err
	}
	opts := []tui.AppOption{tui.WithStartRoute(startRoute)}
	if !splashOn {
		opts = append(opts, tui.WithSplash(false))
	}
	app, err := tui.NewApp(ctx, opts...)
	if err != nil {
		return err
	}
	defer app.Close()

	logger.Info("agrovoo: starting",
		zap.String("dir", cfg.BaseDir),
		zap.String("database", store.Path()),
		zap.Bool("splash", splashOn))

	// Use the alternate screen buffer like a full screen app
	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run TUI: %w", err)
	}
	return nil
}

// splashEnabled reports whether the intro should play. With save set the
// --no-splash choice is written to the config first.
func splashEnabled(c *config.Config, noSplash, save bool) (bool, error) {
	if save {
		if err := c.SetSplashEnabled(!noSplash); err != nil {
			return false, fmt.Errorf("save splash setting: %w", err)
		}
	}
	return c.SplashEnabled() && !noSplash, nil
}
