package cmd

import (
	"fmt"

	"gatewaymonitor/database"

	"github.com/spf13/cobra"
)

func normalizeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "normalize <connection-string>",
		Short: "Print the connection string the monitor would open",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), database.NormalizeConnectionString(args[0]))
			return nil
		},
	}
}
