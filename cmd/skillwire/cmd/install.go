package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/skillwire/skillwire/internal/core"
)

var installCmd = &cobra.Command{
	Use:   "install <plugin-slug>",
	Short: "Install a plugin's skills and wire them into your agents",
	Long: `Fetch the plugin's manifest from the registry, download each skill into
the canonical store (verifying content hashes), and symlink every skill
into the target agents' skill directories.

Examples:
  skillwire install code-review
  skillwire install code-review --agents cursor,claude-code
  skillwire install code-review --project --overwrite`,
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
		overwrite, _ := cmd.Flags().GetBool("overwrite")

		sink := newProgressSink(cmd, 0)
		orch := core.NewOrchestrator(cfg, core.Options{
			Progress:         sink,
			Log:              d.log,
			DisableTelemetry: fileCfg.DisableTelemetry,
		})

		report, err := orch.InstallPlugin(cmd.Context(), args[0], agents, scope, core.InstallRunOptions{
			Overwrite: overwrite,
		})
		finishProgress(sink)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		dl := report.Download
		if cfg.DryRun {
			fmt.Fprintf(out, "Dry run: %d skill(s) would be installed from %s@%s\n",
				dl.Total, report.Manifest.Plugin.Slug, report.Manifest.Plugin.Version)
			return nil
		}

		fmt.Fprintf(out, "\n%s@%s: %d downloaded, %d skipped, %d failed\n",
			report.Manifest.Plugin.Slug, report.Manifest.Plugin.Version,
			dl.Success, dl.Skipped, dl.Failed)
		for _, res := range report.Installs {
			fmt.Fprintf(out, "  %s: %s\n", res.Slug, agentSummary(res))
		}

		if dl.Failed > 0 {
			return fmt.Errorf("%d skill(s) failed to install", dl.Failed)
		}
		return nil
	},
}

func init() {
	addTargetFlags(installCmd)
	addConfigFlags(installCmd)
	installCmd.Flags().Bool("overwrite", false, "Re-download skills that are already in the store")
	installCmd.Flags().Bool("skip-verify", false, "Skip content hash verification")
	installCmd.Flags().Bool("dry-run", false, "Resolve and report without writing anything")
	installCmd.Flags().Bool("plain", false, "Disable the animated progress display")
	rootCmd.AddCommand(installCmd)
}
