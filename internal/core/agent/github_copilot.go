package agent

func init() {
	Register(Agent{
		ID:          "github-copilot",
		Name:        "GitHub Copilot",
		ProjectDir:  ".github/skills",
		GlobalDir:   "~/.copilot/skills",
		DetectPaths: []string{"~/.copilot"},
	})
}
