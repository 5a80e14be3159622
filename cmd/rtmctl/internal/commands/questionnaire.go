package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"rtm-portal/internal/questionnaire"

	"github.com/spf13/cobra"
)

// InitQuestionnaireCommands registers "questionnaire validate [file]".
func InitQuestionnaireCommands(rootCmd *cobra.Command) {
	questionnaireCmd := &cobra.Command{
		Use:   "questionnaire",
		Short: "Work with eligibility questionnaire definitions",
	}

	validateCmd := &cobra.Command{
		Use:   "validate [file]",
		Short: "Check a questionnaire JSON file (default: the built-in flow)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			flow := questionnaire.Default()
			source := "built-in"
			if len(args) == 1 {
				f, err := os.Open(filepath.Clean(args[0]))
				if err != nil {
					return err
				}
				defer f.Close()
				flow, err = questionnaire.Load(f)
				if err != nil {
					return fmt.Errorf("%s: %w", args[0], err)
				}
				source = args[0]
			}
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "%s: flow %q is valid (%d questions, %d outcomes)\n",
				source, flow.ID, len(flow.Questions), len(flow.Outcomes))
			return err
		},
	}

	questionnaireCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(questionnaireCmd)
}
