package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/skillwire/skillwire/internal/core"
)

var updateCmd = &cobra.Command{
	Use:   "update <plugin-slug>",
	Short: "Check a plugin's skills for updates",
	Long: `Fetch the plugin's current manifest and compare it against the lock
file. With --apply, re-download and re-link every skill that changed.

Examples:
  skillwire update code-review
  skillwire update code-review --apply`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d := newDeps(verboseFlag(cmd))

		cfg, fileCfg, err := loadRunConfig(cmd, d)
		if err != nil {
			return err
		}
		orch := core.NewOrchestrator(cfg, core.Options{
			Log:              d.log,
			DisableTelemetry: fileCfg.DisableTelemetry,
		})

		infos, err := orch.CheckUpdates(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if len(infos) == 0 {
			fmt.Fprintf(out, "No skills from %s are installed.\n", args[0])
			return nil
		}

		var pending []string
		w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "SKILL\tINSTALLED\tAVAILABLE\tSTATUS")
		for _, info := range infos {
			status := "up to date"
			if info.HasUpdate {
				status = "update available"
				pending = append(pending, info.Slug)
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", info.Slug, info.Installed, info.Available, status)
		}
		if err := w.Flush(); err != nil {
			return err
		}

		apply, _ := cmd.Flags().GetBool("apply")
		if !apply {
			if len(pending) > 0 {
				fmt.Fprintf(out, "\nRun 'skillwire update %s --apply' to install.\n", args[0])
			}
			return nil
		}
		if len(pending) == 0 {
			fmt.Fprintln(out, "\nNothing to update.")
			return nil
		}

		agents, err := resolveTargetAgents(cmd)
		if err != nil {
			return err
		}
		scope, err := resolveScope(cmd)
		if err != nil {
			return err
		}

		sink := newProgressSink(cmd, 0)
		orch = core.NewOrchestrator(cfg, core.Options{
			Progress:         sink,
			Log:              d.log,
			DisableTelemetry: fileCfg.DisableTelemetry,
		})
		// Only the changed skills, so up-to-date siblings are left alone.
		report, err := orch.InstallPlugin(cmd.Context(), args[0], agents, scope, core.InstallRunOptions{
			Overwrite: true,
			Only:      pending,
		})
		finishProgress(sink)
		if err != nil {
			return err
		}

		fmt.Fprintf(out, "\nUpdated to %s@%s: %d downloaded, %d failed\n",
			report.Manifest.Plugin.Slug, report.Manifest.Plugin.Version,
			report.Download.Success, report.Download.Failed)
		if report.Download.Failed > 0 {
			return fmt.Errorf("%d skill(s) failed to update", report.Download.Failed)
		}
		return nil
	},
}

func init() {
	addTargetFlags(updateCmd)
	addConfigFlags(updateCmd)
	updateCmd.Flags().Bool("apply", false, "Install available updates")
	updateCmd.Flags().Bool("skip-verify", false, "Skip content hash verification")
	updateCmd.Flags().Bool("plain", false, "Disable the animated progress display")
	rootCmd.AddCommand(updateCmd)
}
