package agent

func init() {
	Register(Agent{
		ID:          "codex",
		Name:        "Codex",
		ProjectDir:  ".codex/skills",
		GlobalDir:   "~/.codex/skills",
		DetectPaths: []string{"~/.codex"},
	})
}
