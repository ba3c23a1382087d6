package cli

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Someshwar1006/Digital-Wellbeing-for-Linux/internal/config"
	"github.com/Someshwar1006/Digital-Wellbeing-for-Linux/internal/daemon"
	"github.com/Someshwar1006/Digital-Wellbeing-for-Linux/internal/focus"
	"github.com/Someshwar1006/Digital-Wellbeing-for-Linux/internal/notify"
	"github.com/Someshwar1006/Digital-Wellbeing-for-Linux/internal/reporter"
	"github.com/Someshwar1006/Digital-Wellbeing-for-Linux/internal/tracker"
	"github.com/Someshwar1006/Digital-Wellbeing-for-Linux/internal/web"
	"github.com/Someshwar1006/Digital-Wellbeing-for-Linux/pkg/idle"
	"github.com/Someshwar1006/Digital-Wellbeing-for-Linux/pkg/observer"
	"github.com/Someshwar1006/Digital-Wellbeing-for-Linux/pkg/window"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the tracking daemon in the background",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		dm := daemon.New(cfg.Daemon.PIDFile)
		running, pid, err := dm.IsRunning()
		if err != nil {
			return fmt.Errorf("failed to check daemon status: %w", err)
		}
		if running {
			return fmt.Errorf("daemon is already running (PID: %d)", pid)
		}

		if !daemon.IsChild() {
			pid, err := daemon.Detach()
			if err != nil {
				return err
			}
			fmt.Printf("Daemon started (PID: %d)\n", pid)
			fmt.Printf("API: http://%s:%d\n", cfg.Web.Host, cfg.Web.Port)
			fmt.Printf("Logs: %s\n", cfg.Daemon.LogFile)
			return nil
		}

		return runDaemon(cfg, dm)
	},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the tracking daemon in the foreground",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		dm := daemon.New(cfg.Daemon.PIDFile)
		running, pid, err := dm.IsRunning()
		if err != nil {
			return fmt.Errorf("failed to check daemon status: %w", err)
		}
		if running {
			return fmt.Errorf("daemon is already running (PID: %d)", pid)
		}

		return runDaemon(cfg, dm)
	},
}

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the tracking daemon",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		dm := daemon.New(cfg.Daemon.PIDFile)
		running, pid, err := dm.IsRunning()
		if err != nil {
			return fmt.Errorf("failed to check daemon status: %w", err)
		}
		if !running {
			fmt.Println("Daemon is not running")
			return nil
		}

		fmt.Printf("Stopping daemon (PID: %d)...\n", pid)
		if err := dm.Stop(); err != nil {
			return err
		}
		fmt.Println("Daemon stopped")
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show daemon status and current activity",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		dm := daemon.New(cfg.Daemon.PIDFile)
		running, pid, err := dm.IsRunning()
		if err != nil {
			return fmt.Errorf("failed to check daemon status: %w", err)
		}

		green := color.New(color.FgGreen)
		red := color.New(color.FgRed)

		if !running {
			red.Println("Status: Not running")
			return nil
		}

		green.Printf("Status: Running (PID: %d)\n", pid)
		fmt.Printf("Poll Interval: %v\n", cfg.Tracker.PollInterval)
		fmt.Printf("Database: %s\n", cfg.Database.Path)

		status, err := apiClient(cfg).Status()
		if err != nil {
			fmt.Printf("\nCould not query daemon API: %v\n", err)
			return nil
		}

		if cw, ok := status["current_window"].(map[string]interface{}); ok {
			fmt.Println("\nCurrent Window:")
			fmt.Printf("  App: %v\n", cw["app_name"])
			fmt.Printf("  Title: %v\n", cw["window_title"])
		}
		if idleState, ok := status["idle"].(bool); ok {
			fmt.Printf("\nIdle: %v\n", idleState)
		}
		if fs, ok := status["focus_session"].(map[string]interface{}); ok {
			fmt.Println("\nFocus Session:")
			fmt.Printf("  Remaining: %vs\n", fs["remaining_seconds"])
			fmt.Printf("  Progress: %.1f%%\n", fs["progress_percent"])
		}

		return nil
	},
}

// runDaemon wires the full daemon: database, observers, tracker, focus
// manager, housekeeping and the HTTP API. Blocks until SIGINT/SIGTERM.
func runDaemon(cfg *config.Config, dm *daemon.Daemon) error {
	if daemon.IsChild() {
		logFile, err := os.OpenFile(cfg.Daemon.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err == nil {
			log.SetOutput(logFile)
			defer logFile.Close()
		}
	}

	db, repo, err := openDatabase(cfg)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	obs := observer.New()
	defer obs.Close()
	log.Printf("Window observer initialized: backends=%v", obs.Backends())

	idleMon := idle.New()
	defer idleMon.Close()

	if err := dm.WritePID(); err != nil {
		return fmt.Errorf("failed to write PID file: %w", err)
	}
	defer dm.RemovePID()

	notifier := notify.NewDesktop(cfg.Notify.Enabled)

	trackerSvc := tracker.NewService(cfg, repo, obs, idleMon, repo)
	focusMgr := focus.NewManager(cfg, repo, notifier)
	maintenance := daemon.NewService(repo, trackerSvc, notifier)
	maintenance.SetFocusDefaults(focusMgr)

	// Daily screen-time goal check rides on focus changes; notify once
	// per day when the goal is crossed.
	rep := reporter.New(cfg, repo)
	var goalNotifiedDay string
	trackerSvc.SetOnWindowChange(func(snap window.Snapshot) {
		day := snap.ObservedAt.Format("2006-01-02")
		if goalNotifiedDay == day {
			return
		}
		if used, goal, _, err := rep.DailyGoalProgress(); err == nil && used >= goal {
			goalNotifiedDay = day
			notifier.Send(
				"Daily Screen Time Goal Reached",
				fmt.Sprintf("You've been on screen for %s today.", reporter.FormatDuration(used)),
				notify.UrgencyNormal,
			)
		}
	})

	maintenance.Recover()

	handler := web.NewHandler(cfg, repo, trackerSvc, focusMgr)
	webServer := web.NewServer(cfg, handler, 0)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := webServer.Start(); err != nil && err != http.ErrServerClosed {
			log.Printf("Web server error: %v", err)
		}
	}()

	go maintenance.Run(ctx)

	go func() {
		if err := trackerSvc.Start(ctx); err != nil && err != context.Canceled {
			log.Printf("Tracker error: %v", err)
		}
	}()

	log.Println("Daemon started")
	log.Printf("Configuration:\n%s", cfg.String())

	<-sigChan
	log.Println("Received shutdown signal")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	cancel()
	trackerSvc.Stop()
	focusMgr.Shutdown()
	if err := webServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error shutting down web server: %v", err)
	}

	log.Println("Daemon stopped")
	return nil
}
