package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Someshwar1006/Digital-Wellbeing-for-Linux/internal/focus"
	"github.com/Someshwar1006/Digital-Wellbeing-for-Linux/internal/reporter"
	"github.com/Someshwar1006/Digital-Wellbeing-for-Linux/internal/web"
)

var (
	focusDuration    int
	focusPreset      string
	focusBlock       []string
	focusBlockPreset string
	focusKillFirst   bool
	focusHistoryDays int
)

var focusCmd = &cobra.Command{
	Use:   "focus",
	Short: "Manage focus sessions",
}

var focusStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start a focus session",
	Long: fmt.Sprintf(`Start a time-boxed focus session in the running daemon.

Duration presets: %s
Block presets: %s`,
		strings.Join(presetNames(), ", "),
		strings.Join(blockPresetNames(), ", ")),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		client := apiClient(cfg)

		info, err := client.FocusStart(web.FocusStartRequest{
			DurationMinutes: focusDuration,
			BlockedApps:     focusBlock,
			DurationPreset:  focusPreset,
			BlockPreset:     focusBlockPreset,
		})
		if err != nil {
			return err
		}

		if focusKillFirst && len(info.BlockedApps) > 0 {
			killed, err := client.FocusKill()
			if err != nil {
				fmt.Printf("Could not close blocked apps: %v\n", err)
			} else if len(killed) > 0 {
				fmt.Printf("Closed: %s\n", strings.Join(killed, ", "))
			}
		}

		green := color.New(color.FgGreen, color.Bold)
		green.Printf("Focus session started: %d minutes\n", info.PlannedSeconds/60)
		if len(info.BlockedApps) > 0 {
			fmt.Printf("Blocking: %s\n", strings.Join(info.BlockedApps, ", "))
		}
		return nil
	},
}

var focusStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "End the current focus session early",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		if err := apiClient(cfg).FocusStop(); err != nil {
			return err
		}
		fmt.Println("Focus session ended")
		return nil
	},
}

var focusStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current focus session",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		info, err := apiClient(cfg).FocusInfo()
		if err != nil {
			return err
		}
		if info == nil {
			fmt.Println("No active focus session")
			return nil
		}

		cyan := color.New(color.FgCyan, color.Bold)
		cyan.Println("Focus session active")
		fmt.Printf("  Remaining: %s\n", info.FormattedRemaining())
		fmt.Printf("  Progress: %.1f%%\n", info.ProgressPercent)
		if len(info.BlockedApps) > 0 {
			fmt.Printf("  Blocking: %s\n", strings.Join(info.BlockedApps, ", "))
		}
		return nil
	},
}

var focusExtendCmd = &cobra.Command{
	Use:   "extend <minutes>",
	Short: "Add minutes to the current focus session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var minutes int
		if _, err := fmt.Sscanf(args[0], "%d", &minutes); err != nil {
			return fmt.Errorf("invalid minutes: %q", args[0])
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		info, err := apiClient(cfg).FocusExtend(minutes)
		if err != nil {
			return err
		}
		fmt.Printf("Session extended; %s remaining\n", info.FormattedRemaining())
		return nil
	},
}

var focusHistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent focus sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		db, repo, err := openDatabase(cfg)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()

		sessions, err := repo.FocusHistory(focusHistoryDays)
		if err != nil {
			return err
		}

		rep := reporter.New(cfg, repo)
		fmt.Print(rep.FormatFocusHistory(sessions))
		return nil
	},
}

func presetNames() []string {
	names := make([]string, 0, len(focus.DurationPresets))
	for name, minutes := range focus.DurationPresets {
		names = append(names, fmt.Sprintf("%s (%dm)", name, minutes))
	}
	sort.Strings(names)
	return names
}

func blockPresetNames() []string {
	names := make([]string, 0, len(focus.BlockPresets))
	for name := range focus.BlockPresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func init() {
	focusStartCmd.Flags().IntVar(&focusDuration, "duration", 0, "Session length in minutes")
	focusStartCmd.Flags().StringVar(&focusPreset, "preset", "", "Duration preset name")
	focusStartCmd.Flags().StringSliceVar(&focusBlock, "block", nil, "Apps to block (repeatable or comma-separated)")
	focusStartCmd.Flags().StringVar(&focusBlockPreset, "block-preset", "", "Blocklist preset name")
	focusStartCmd.Flags().BoolVar(&focusKillFirst, "kill", false, "Close blocked apps that are already running")
	focusHistoryCmd.Flags().IntVar(&focusHistoryDays, "days", 7, "How many days of history to show")

	focusCmd.AddCommand(focusStartCmd, focusStopCmd, focusStatusCmd, focusExtendCmd, focusHistoryCmd)
}
