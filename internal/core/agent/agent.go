// Package agent defines the static registry of consumer tools that receive
// skills. Each agent knows its own skill directories and detection paths.
// Agents are self-contained Go structs; the installer core consumes them and
// never mutates them.
package agent

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Agent describes one consumer tool's skill directory conventions.
type Agent struct {
	ID          string   // machine name: "claude-code", "cursor"
	Name        string   // human name: "Claude Code", "Cursor"
	ProjectDir  string   // project-relative skill directory, e.g. ".claude/skills"
	GlobalDir   string   // global skill directory, e.g. "~/.claude/skills"
	DetectPaths []string // files/dirs whose presence means the agent is installed
}

// Installed reports whether any of the agent's detect paths exist on disk.
func (a Agent) Installed() bool {
	for _, p := range a.DetectPaths {
		if _, err := os.Stat(expandPath(p)); err == nil {
			return true
		}
	}
	return false
}

// SkillRoot returns the directory that receives skill symlinks: the global
// directory by default, or the project-relative directory joined to cwd.
func (a Agent) SkillRoot(global bool, cwd string) string {
	if global {
		return expandPath(a.GlobalDir)
	}
	return filepath.Join(cwd, a.ProjectDir)
}

// --- Registry ---

var agents []Agent

// Register adds an agent to the global registry. Called from init()
// functions in the per-agent files.
func Register(a Agent) {
	agents = append(agents, a)
}

// All returns every registered agent, in registration order.
func All() []Agent {
	out := make([]Agent, len(agents))
	copy(out, agents)
	return out
}

// Detect returns the registered agents that are installed on this machine.
func Detect() []Agent {
	var detected []Agent
	for _, a := range agents {
		if a.Installed() {
			detected = append(detected, a)
		}
	}
	return detected
}

// ByID returns the agent with the given ID.
func ByID(id string) (Agent, bool) {
	for _, a := range agents {
		if a.ID == id {
			return a, true
		}
	}
	return Agent{}, false
}

// ResolveIDs resolves a list of agent IDs, failing on the first unknown one
// with the valid IDs listed in the error.
func ResolveIDs(ids []string) ([]Agent, error) {
	result := make([]Agent, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		a, ok := ByID(id)
		if !ok {
			var valid []string
			for _, reg := range agents {
				valid = append(valid, reg.ID)
			}
			return nil, fmt.Errorf("unknown agent %q; available: %s", id, strings.Join(valid, ", "))
		}
		result = append(result, a)
	}
	return result, nil
}

// expandPath expands a leading ~ to the user's home directory.
func expandPath(p string) string {
	if strings.HasPrefix(p, "~/") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, p[2:])
	}
	if p == "~" {
		home, _ := os.UserHomeDir()
		return home
	}
	return p
}
