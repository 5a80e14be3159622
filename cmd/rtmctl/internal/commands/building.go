package commands

import (
	"fmt"

	"rtm-portal/internal/service"

	"github.com/spf13/cobra"
)

// InitBuildingCommands registers "building-id <address> <postcode>".
func InitBuildingCommands(rootCmd *cobra.Command) {
	rootCmd.AddCommand(&cobra.Command{
		Use:     "building-id <address> <postcode>",
		Short:   "Print the building id derived from an address and postcode",
		Example: `  rtmctl building-id "Flat 2, 1 High St" "SW1A 1AA"`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := service.BuildingID(args[0], args[1])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, id)
			fmt.Fprintf(out, "normalized: %q %s\n", service.NormalizeAddress(args[0]), service.FormatPostcode(args[1]))
			return nil
		},
	})
}
