package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/Someshwar1006/Digital-Wellbeing-for-Linux/internal/models"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show all settings",
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

		settings, err := repo.AllSettings()
		if err != nil {
			return err
		}

		keys := make([]string, 0, len(settings))
		for key := range settings {
			keys = append(keys, key)
		}
		sort.Strings(keys)

		for _, key := range keys {
			fmt.Printf("%-26s %s\n", key, settings[key])
		}
		return nil
	},
}

var settingsGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Show one setting",
	Args:  cobra.ExactArgs(1),
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

		value, err := repo.GetSetting(args[0], "")
		if err != nil {
			return err
		}
		if value == "" {
			return fmt.Errorf("unknown setting: %s", args[0])
		}

		fmt.Println(value)
		return nil
	},
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change a setting",
	Long: `Change a setting. The daemon picks up changes on its periodic
settings reload.

Known keys: idle_threshold, break_reminder_interval,
daily_goal_minutes, enable_notifications, track_window_titles,
focus_default_duration.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]
		if _, known := models.DefaultSettings()[key]; !known {
			return fmt.Errorf("unknown setting: %s", key)
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		db, repo, err := openDatabase(cfg)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()

		if err := repo.SetSetting(key, value); err != nil {
			return err
		}
		fmt.Printf("%s = %s\n", key, value)
		return nil
	},
}

func init() {
	settingsCmd.AddCommand(settingsGetCmd, settingsSetCmd)
}
