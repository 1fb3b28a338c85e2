package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/skillwire/skillwire/internal/core"
	"github.com/skillwire/skillwire/internal/core/agent"
	"github.com/skillwire/skillwire/internal/tui"
)

// addTargetFlags adds the flags shared by every command that touches agents.
// Scope defaults to each agent's global skill directory; --project opts into
// the project-relative directory under the current working directory.
func addTargetFlags(cmd *cobra.Command) {
	cmd.Flags().String("agents", "", "Comma-separated agent IDs (e.g. cursor,claude-code); default: all detected agents")
	cmd.Flags().Bool("project", false, "Target each agent's project skill directory under the current directory instead of the global one")
}

// addConfigFlags adds per-run overrides of the persisted configuration.
func addConfigFlags(cmd *cobra.Command) {
	cmd.Flags().String("api-url", "", "Registry API base URL (overrides config)")
	cmd.Flags().String("install-dir", "", "Canonical store directory (overrides config)")
}

// loadRunConfig loads the persisted config and applies flag overrides.
func loadRunConfig(cmd *cobra.Command, d *deps) (core.Config, *core.FileConfig, error) {
	fileCfg, err := d.config.Load()
	if err != nil {
		return core.Config{}, nil, fmt.Errorf("loading config: %w", err)
	}
	cfg := fileCfg.RunConfig()

	if v, _ := cmd.Flags().GetString("api-url"); v != "" {
		cfg.APIBaseURL = v
	}
	if v, _ := cmd.Flags().GetString("install-dir"); v != "" {
		cfg.InstallDir = v
	}
	if cmd.Flags().Changed("skip-verify") {
		cfg.SkipVerify, _ = cmd.Flags().GetBool("skip-verify")
	}
	if cmd.Flags().Changed("dry-run") {
		cfg.DryRun, _ = cmd.Flags().GetBool("dry-run")
	}
	return cfg, fileCfg, nil
}

// resolveTargetAgents parses --agents into agent definitions, falling back to
// the agents detected on this machine.
func resolveTargetAgents(cmd *cobra.Command) ([]agent.Agent, error) {
	flag, _ := cmd.Flags().GetString("agents")
	if flag != "" {
		ids := strings.Split(flag, ",")
		for i := range ids {
			ids[i] = strings.TrimSpace(ids[i])
		}
		return agent.ResolveIDs(ids)
	}

	detected := agent.Detect()
	if len(detected) == 0 {
		return nil, fmt.Errorf("no agents detected; pass --agents to choose targets explicitly")
	}
	return detected, nil
}

// resolveScope builds the install scope from --project and the working directory.
func resolveScope(cmd *cobra.Command) (core.InstallScope, error) {
	project, _ := cmd.Flags().GetBool("project")
	cwd, err := os.Getwd()
	if err != nil {
		return core.InstallScope{}, fmt.Errorf("getting current directory: %w", err)
	}
	return core.InstallScope{Global: !project, Cwd: cwd}, nil
}

// progressFinisher is implemented by sinks that need a shutdown call.
type progressFinisher interface {
	Finish()
}

// newProgressSink picks the animated renderer on a terminal and the plain
// line writer everywhere else (CI, pipes, --plain).
func newProgressSink(cmd *cobra.Command, total int) core.ProgressSink {
	plain, _ := cmd.Flags().GetBool("plain")
	if plain || !term.IsTerminal(int(os.Stdout.Fd())) {
		return tui.PlainSink{Out: cmd.OutOrStdout()}
	}
	return tui.Start(cmd.OutOrStdout(), total)
}

func finishProgress(sink core.ProgressSink) {
	if f, ok := sink.(progressFinisher); ok {
		f.Finish()
	}
}

func verboseFlag(cmd *cobra.Command) bool {
	v, _ := cmd.Flags().GetBool("verbose")
	return v
}

// agentSummary formats a fan-out result as "2 linked, 1 copied, 0 failed".
func agentSummary(res core.MultiAgentInstallResult) string {
	copied := 0
	for _, ar := range res.Agents {
		if ar.Success && ar.Mode == core.ModeCopy {
			copied++
		}
	}
	linked := res.SuccessCount - copied
	return fmt.Sprintf("%d linked, %d copied, %d failed", linked, copied, res.FailCount)
}
