package agent

func init() {
	Register(Agent{
		ID:          "gemini-cli",
		Name:        "Gemini CLI",
		ProjectDir:  ".gemini/skills",
		GlobalDir:   "~/.gemini/skills",
		DetectPaths: []string{"~/.gemini"},
	})
}
