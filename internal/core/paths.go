package core

import (
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

const fallbackSlug = "unnamed-skill"

// PathTraversalError reports a computed path that escaped its base directory.
// It is fatal for the single skill or agent involved, never coerced into a
// "safe" path.
type PathTraversalError struct {
	Base string
	Path string
}

func (e *PathTraversalError) Error() string {
	return fmt.Sprintf("path %q escapes base directory %q", e.Path, e.Base)
}

// SanitizeSlug normalizes a skill slug for use as a single path segment.
// Path separators and NUL bytes are stripped, surrounding whitespace and
// dots trimmed, the result truncated to at most 255 bytes on a rune
// boundary, and an empty result
// replaced with a fixed placeholder. Every place a slug becomes a path
// segment must go through this function.
func SanitizeSlug(slug string) string {
	var b strings.Builder
	for _, r := range slug {
		switch r {
		case '/', '\\', 0:
			// dropped
		default:
			b.WriteRune(r)
		}
	}
	s := strings.TrimSpace(b.String())
	s = strings.Trim(s, ".")
	s = strings.TrimSpace(s)
	if len(s) > 255 {
		cut := 255
		// back off to a rune boundary so truncation never yields invalid UTF-8
		for cut > 0 && !utf8.RuneStart(s[cut]) {
			cut--
		}
		s = s[:cut]
	}
	if s == "" {
		s = fallbackSlug
	}
	return s
}

// EnsureWithin verifies that path resolves to a descendant of base.
// Returns a *PathTraversalError before any filesystem mutation otherwise.
func EnsureWithin(base, path string) error {
	absBase, err := filepath.Abs(base)
	if err != nil {
		return fmt.Errorf("resolving base %q: %w", base, err)
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolving path %q: %w", path, err)
	}
	rel, err := filepath.Rel(absBase, absPath)
	if err != nil {
		return &PathTraversalError{Base: absBase, Path: absPath}
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return &PathTraversalError{Base: absBase, Path: absPath}
	}
	return nil
}
