package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/skillwire/skillwire/internal/core"
)

var uninstallCmd = &cobra.Command{
	Use:   "uninstall <skill-slug>",
	Short: "Remove a skill from your agents and the canonical store",
	Long: `Remove the skill's symlinks (or copied directories) from the target
agents, delete its canonical store directory, and drop its lock entry.

Examples:
  skillwire uninstall code-review
  skillwire uninstall code-review --agents cursor --project`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d := newDeps(verboseFlag(cmd))

		cfg, fileCfg, err := loadRunConfig(cmd, d)
		if err != nil {
			return err
		}
		agents, err := resolveTargetAgents(cmd)
		if err != nil {
			return err
		}
		scope, err := resolveScope(cmd)
		if err != nil {
			return err
		}

		orch := core.NewOrchestrator(cfg, core.Options{
			Log:              d.log,
			DisableTelemetry: fileCfg.DisableTelemetry,
		})
		report, err := orch.RemoveSkill(args[0], agents, scope)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		for _, p := range report.RemovedPaths {
			fmt.Fprintf(out, "removed %s\n", p)
		}
		if report.LockRemoved {
			fmt.Fprintf(out, "Uninstalled %s\n", report.Slug)
		} else {
			fmt.Fprintf(out, "%s was not in the lock file; cleaned up anyway\n", report.Slug)
		}
		return nil
	},
}

func init() {
	addTargetFlags(uninstallCmd)
	addConfigFlags(uninstallCmd)
	rootCmd.AddCommand(uninstallCmd)
}
