package cmd

import (
	"fmt"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/skillwire/skillwire/internal/core"
	"github.com/skillwire/skillwire/internal/core/agent"
	"github.com/skillwire/skillwire/internal/core/fsys"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List installed skills",
	Long: `List every skill recorded in the lock file, with the agents that
currently hold a link to it, plus any untracked directories found in the
canonical store.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		d := newDeps(verboseFlag(cmd))

		cfg, _, err := loadRunConfig(cmd, d)
		if err != nil {
			return err
		}
		orch := core.NewOrchestrator(cfg, core.Options{Log: d.log})

		entries, err := orch.Lock().All()
		if err != nil {
			return fmt.Errorf("reading lock file: %w", err)
		}
		storeSlugs, err := orch.Store().InstalledSlugs()
		if err != nil {
			return err
		}

		locked := make(map[string]bool, len(entries))
		for _, e := range entries {
			locked[e.Slug] = true
		}

		out := cmd.OutOrStdout()
		if len(entries) == 0 && len(storeSlugs) == 0 {
			fmt.Fprintln(out, "No skills installed.")
			return nil
		}

		scope, err := resolveScope(cmd)
		if err != nil {
			return err
		}
		detected := agent.Detect()

		w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "SKILL\tVERSION\tSOURCE\tAGENTS\tINSTALLED")
		for _, e := range entries {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				e.Slug, e.Version, e.Source, linkedAgents(detected, scope, e.Slug), formatTime(e.InstalledAt))
		}
		for _, slug := range storeSlugs {
			if !locked[slug] {
				fmt.Fprintf(w, "%s\t-\t-\t%s\t(untracked)\n", slug, linkedAgents(detected, scope, slug))
			}
		}
		return w.Flush()
	},
}

// linkedAgents lists the detected agents whose skill root currently holds an
// entry for slug.
func linkedAgents(agents []agent.Agent, scope core.InstallScope, slug string) string {
	var ids []string
	for _, a := range agents {
		target := filepath.Join(a.SkillRoot(scope.Global, scope.Cwd), core.SanitizeSlug(slug))
		if fsys.Exists(fsys.OS{}, target) {
			ids = append(ids, a.ID)
		}
	}
	if len(ids) == 0 {
		return "-"
	}
	return strings.Join(ids, ",")
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}

func init() {
	addConfigFlags(listCmd)
	listCmd.Flags().Bool("project", false, "Check links in each agent's project skill directory instead of the global one")
	rootCmd.AddCommand(listCmd)
}
