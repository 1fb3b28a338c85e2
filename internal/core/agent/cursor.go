package agent

func init() {
	Register(Agent{
		ID:          "cursor",
		Name:        "Cursor",
		ProjectDir:  ".cursor/skills",
		GlobalDir:   "~/.cursor/skills",
		DetectPaths: []string{"~/.cursor"},
	})
}
