package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var clearYes bool

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all tracking data",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !clearYes {
			fmt.Print("This will delete all tracking data. Are you sure? (yes/no): ")
			var response string
			fmt.Scanln(&response)
			if response != "yes" && response != "y" {
				fmt.Println("Operation cancelled")
				return nil
			}
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

		if err := repo.Clear(); err != nil {
			return fmt.Errorf("failed to clear database: %w", err)
		}
		fmt.Println("Database cleared")
		return nil
	},
}

func init() {
	clearCmd.Flags().BoolVarP(&clearYes, "yes", "y", false, "Skip the confirmation prompt")
}
