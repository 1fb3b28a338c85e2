package agent

// Claude Code reads skills from .claude/skills in a project and
// ~/.claude/skills globally.
func init() {
	Register(Agent{
		ID:          "claude-code",
		Name:        "Claude Code",
		ProjectDir:  ".claude/skills",
		GlobalDir:   "~/.claude/skills",
		DetectPaths: []string{"~/.claude"},
	})
}
