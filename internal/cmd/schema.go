package cmd

import (
	"github.com/pthm/widgetlint/internal/snapshot"
	"github.com/spf13/cobra"
)

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the snapshot JSON Schema",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := cmd.OutOrStdout().Write(snapshot.Schema())
		return err
	},
}

func init() {
	RootCmd.AddCommand(schemaCmd)
}
