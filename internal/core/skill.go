package core

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// SkillMetadata is the YAML frontmatter of a skill's SKILL.md content.
type SkillMetadata struct {
	Name        string              `yaml:"name"`
	Description string              `yaml:"description"`
	License     string              `yaml:"license,omitempty"`
	Metadata    SkillMetadataExtras `yaml:"metadata,omitempty"`
}

// SkillMetadataExtras holds optional frontmatter fields.
type SkillMetadataExtras struct {
	Author  string `yaml:"author,omitempty"`
	Version string `yaml:"version,omitempty"`
}

// ParseSkillContent extracts the frontmatter from skill markdown. The body
// after the closing delimiter is returned unmodified.
func ParseSkillContent(content string) (*SkillMetadata, string, error) {
	trimmed := strings.TrimLeft(content, "\ufeff\n\r ")
	if !strings.HasPrefix(trimmed, "---") {
		return nil, "", fmt.Errorf("missing frontmatter")
	}

	rest := trimmed[3:]
	idx := strings.Index(rest, "\n---")
	if idx < 0 {
		return nil, "", fmt.Errorf("unterminated frontmatter")
	}

	var meta SkillMetadata
	if err := yaml.Unmarshal([]byte(rest[:idx]), &meta); err != nil {
		return nil, "", fmt.Errorf("parsing frontmatter: %w", err)
	}

	body := rest[idx+4:]
	if i := strings.Index(body, "\n"); i >= 0 {
		body = body[i+1:]
	} else {
		body = ""
	}
	return &meta, body, nil
}
