// Package main is rtmctl, the operator CLI for the RTM portal: database
// migrations, SharePoint sync runs and questionnaire checks.
package main

import (
	"fmt"
	"log"
	"os"

	"rtm-portal/cmd/rtmctl/internal/commands"

	"github.com/spf13/cobra"
)

var exitFunc = os.Exit

func main() {
	if err := run(os.Args[1:]); err != nil {
		log.Printf("Error: %v", err)
		exitFunc(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "rtmctl",
		Short: "Operator tool for the RTM portal",
		Long: `rtmctl runs maintenance tasks against the RTM portal's database,
Redis and SharePoint using the same environment as the service
(DATABASE_URL, REDIS_ADDR, AUTH_JWT_SECRET, SHAREPOINT_*).`,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().String("env-file", ".env", "dotenv file to read before the environment")

	commands.InitMigrateCommands(rootCmd)
	commands.InitSyncCommands(rootCmd)
	commands.InitQuestionnaireCommands(rootCmd)
	commands.InitBuildingCommands(rootCmd)
	return rootCmd
}

func run(args []string) error {
	rootCmd := newRootCmd()
	rootCmd.SetArgs(args)
	if err := rootCmd.Execute(); err != nil {
		return fmt.Errorf("command execution failed: %w", err)
	}
	return nil
}
