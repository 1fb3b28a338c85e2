package agent

func init() {
	Register(Agent{
		ID:          "windsurf",
		Name:        "Windsurf",
		ProjectDir:  ".windsurf/skills",
		GlobalDir:   "~/.codeium/windsurf/skills",
		DetectPaths: []string{"~/.codeium/windsurf"},
	})
}
