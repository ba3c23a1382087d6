// Package cli defines the wellbeing command tree.
package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/Someshwar1006/Digital-Wellbeing-for-Linux/internal/config"
	"github.com/Someshwar1006/Digital-Wellbeing-for-Linux/internal/database"
	"github.com/Someshwar1006/Digital-Wellbeing-for-Linux/internal/web"
	"github.com/Someshwar1006/Digital-Wellbeing-for-Linux/version"
)

var rootCmd = &cobra.Command{
	Use:   "wellbeing",
	Short: "Track app usage and run focus sessions on the Linux desktop",
	Long: `wellbeing records which application window holds focus, how long you
spend in it, and when you go idle. It also runs time-boxed focus
sessions with optional app blocking.

Tracking happens in a background daemon; the other commands talk to it
or read the shared database.`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.Version = version.Version
	rootCmd.AddCommand(
		startCmd,
		runCmd,
		stopCmd,
		statusCmd,
		reportCmd,
		focusCmd,
		settingsCmd,
		clearCmd,
	)
}

// loadConfig builds the effective configuration from defaults plus
// environment overrides.
func loadConfig() (*config.Config, error) {
	cfg := config.New()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// openDatabase connects to the shared database for commands that read
// or write it directly.
func openDatabase(cfg *config.Config) (*database.DB, *database.Repository, error) {
	db, err := database.Connect(cfg.Database.Path)
	if err != nil {
		return nil, nil, err
	}
	if err := db.Initialize(); err != nil {
		db.Close()
		return nil, nil, err
	}
	return db, database.NewRepository(db), nil
}

// apiClient returns a client for the daemon's HTTP API.
func apiClient(cfg *config.Config) *web.Client {
	return web.NewClient(cfg.Web.Host, cfg.Web.Port)
}
