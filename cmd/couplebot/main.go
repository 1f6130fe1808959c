package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/tazhate/couplebot/cmd/couplebot/commands"
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "couplebot",
		Short:        "Couple anniversary tracker",
		Long:         `couplebot keeps a couple's relationship start date, birthdays and events, derives the anniversaries and serves them over Telegram, a REST API and CalDAV.`,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(commands.NewServeCommand())
	rootCmd.AddCommand(commands.NewMigrateCommand())
	rootCmd.AddCommand(commands.NewAnniversariesCommand())
	rootCmd.AddCommand(commands.NewImportICSCommand())
	rootCmd.AddCommand(commands.NewExportCommand())
	rootCmd.AddCommand(commands.NewBackupCommand())

	if err := rootCmd.Execute(); err != nil {
		log.Printf("Command execution failed: %v", err)
		os.Exit(1)
	}
}
