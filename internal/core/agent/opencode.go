package agent

func init() {
	Register(Agent{
		ID:          "opencode",
		Name:        "OpenCode",
		ProjectDir:  ".opencode/skills",
		GlobalDir:   "~/.config/opencode/skills",
		DetectPaths: []string{"~/.config/opencode"},
	})
}
