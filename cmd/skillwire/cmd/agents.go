package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/skillwire/skillwire/internal/core/agent"
)

var agentsCmd = &cobra.Command{
	Use:   "agents",
	Short: "List supported agents and whether they are detected on this machine",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tPROJECT DIR\tDETECTED")
		for _, a := range agent.All() {
			detected := "no"
			if a.Installed() {
				detected = "yes"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", a.ID, a.Name, a.ProjectDir, detected)
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(agentsCmd)
}
