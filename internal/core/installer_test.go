package core

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/skillwire/skillwire/internal/core/agent"
	"github.com/skillwire/skillwire/internal/core/fsys"
)

// installFixture creates a populated canonical store plus a fake agent
// rooted in the same temp tree.
type installFixture struct {
	installDir string
	cwd        string
	store      *Store
	installer  *Installer
	agent      agent.Agent
	scope      InstallScope
}

func newInstallFixture(t *testing.T) *installFixture {
	t.Helper()
	base := t.TempDir()
	f := &installFixture{
		installDir: filepath.Join(base, "data"),
		cwd:        filepath.Join(base, "project"),
	}
	if err := os.MkdirAll(f.cwd, 0o755); err != nil {
		t.Fatal(err)
	}
	f.store = NewStore(f.installDir, fsys.OS{})
	f.installer = NewInstaller(f.store, fsys.OS{}, nil)
	f.agent = agent.Agent{
		ID:         "testagent",
		Name:       "Test Agent",
		ProjectDir: ".testagent/skills",
		GlobalDir:  filepath.Join(base, "global", "skills"),
	}
	f.scope = InstallScope{Cwd: f.cwd}
	return f
}

func (f *installFixture) seedSkill(t *testing.T, slug, content string) {
	t.Helper()
	dir, err := f.store.EnsureSkillDir(slug)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "SKILL.md"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func (f *installFixture) agentPath(slug string) string {
	return filepath.Join(f.cwd, f.agent.ProjectDir, slug)
}

func TestInstallToAgentsCreatesRelativeSymlink(t *testing.T) {
	f := newInstallFixture(t)
	f.seedSkill(t, "alpha", "# Alpha\n")

	res := f.installer.InstallToAgents("alpha", []agent.Agent{f.agent}, f.scope)
	if !res.Success || res.SuccessCount != 1 {
		t.Fatalf("result = %+v", res)
	}

	link := f.agentPath("alpha")
	info, err := os.Lstat(link)
	if err != nil {
		t.Fatalf("Lstat: %v", err)
	}
	if info.Mode()&os.ModeSymlink == 0 {
		t.Fatalf("%s is not a symlink", link)
	}

	dest, err := os.Readlink(link)
	if err != nil {
		t.Fatal(err)
	}
	if filepath.IsAbs(dest) {
		t.Errorf("symlink target is absolute: %s", dest)
	}

	// Following the link reaches the canonical content.
	data, err := os.ReadFile(filepath.Join(link, "SKILL.md"))
	if err != nil {
		t.Fatalf("reading through link: %v", err)
	}
	if string(data) != "# Alpha\n" {
		t.Errorf("content through link = %q", data)
	}
}

func TestInstallToAgentsIdempotent(t *testing.T) {
	f := newInstallFixture(t)
	f.seedSkill(t, "alpha", "x")

	first := f.installer.InstallToAgents("alpha", []agent.Agent{f.agent}, f.scope)
	if !first.Success {
		t.Fatalf("first install failed: %+v", first)
	}
	before, err := os.Lstat(f.agentPath("alpha"))
	if err != nil {
		t.Fatal(err)
	}

	second := f.installer.InstallToAgents("alpha", []agent.Agent{f.agent}, f.scope)
	if !second.Success {
		t.Fatalf("second install failed: %+v", second)
	}
	after, err := os.Lstat(f.agentPath("alpha"))
	if err != nil {
		t.Fatal(err)
	}
	// A correct link is left untouched, not recreated.
	if !before.ModTime().Equal(after.ModTime()) {
		t.Errorf("link was recreated on idempotent reinstall")
	}
}

func TestInstallToAgentsReplacesWrongLink(t *testing.T) {
	f := newInstallFixture(t)
	f.seedSkill(t, "alpha", "x")

	link := f.agentPath("alpha")
	if err := os.MkdirAll(filepath.Dir(link), 0o755); err != nil {
		t.Fatal(err)
	}
	other := t.TempDir()
	if err := os.Symlink(other, link); err != nil {
		t.Fatal(err)
	}

	res := f.installer.InstallToAgents("alpha", []agent.Agent{f.agent}, f.scope)
	if !res.Success {
		t.Fatalf("result = %+v", res)
	}
	if !f.installer.linkPointsTo(link, res.CanonicalPath) {
		t.Errorf("link still points elsewhere")
	}
}

func TestInstallToAgentsReplacesPlainDirectory(t *testing.T) {
	f := newInstallFixture(t)
	f.seedSkill(t, "alpha", "canonical")

	// A pre-existing real directory (e.g. a manually copied skill).
	link := f.agentPath("alpha")
	if err := os.MkdirAll(link, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(link, "SKILL.md"), []byte("stale"), 0o644); err != nil {
		t.Fatal(err)
	}

	res := f.installer.InstallToAgents("alpha", []agent.Agent{f.agent}, f.scope)
	if !res.Success {
		t.Fatalf("result = %+v", res)
	}
	info, err := os.Lstat(link)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode()&os.ModeSymlink == 0 {
		t.Errorf("directory was not replaced by a symlink")
	}
	data, _ := os.ReadFile(filepath.Join(link, "SKILL.md"))
	if string(data) != "canonical" {
		t.Errorf("content = %q, want canonical", data)
	}
}

func TestInstallToAgentsMultipleAgents(t *testing.T) {
	f := newInstallFixture(t)
	f.seedSkill(t, "alpha", "x")

	second := agent.Agent{
		ID:         "other",
		Name:       "Other",
		ProjectDir: ".other/skills",
	}
	res := f.installer.InstallToAgents("alpha", []agent.Agent{f.agent, second}, f.scope)
	if res.SuccessCount != 2 || res.FailCount != 0 {
		t.Fatalf("result = %+v", res)
	}
	if len(res.Agents) != 2 {
		t.Fatalf("agent results = %d, want 2", len(res.Agents))
	}
	for _, r := range res.Agents {
		if r.Mode != ModeSymlink || r.SymlinkFailed {
			t.Errorf("agent %s: mode = %s, symlinkFailed = %v", r.AgentID, r.Mode, r.SymlinkFailed)
		}
	}
}

func TestInstallToAgentsGlobalScope(t *testing.T) {
	f := newInstallFixture(t)
	f.seedSkill(t, "alpha", "x")

	res := f.installer.InstallToAgents("alpha", []agent.Agent{f.agent}, InstallScope{Global: true})
	if !res.Success {
		t.Fatalf("result = %+v", res)
	}
	want := filepath.Join(f.agent.GlobalDir, "alpha")
	if res.Agents[0].Path != want {
		t.Errorf("path = %q, want %q", res.Agents[0].Path, want)
	}
	if _, err := os.Lstat(want); err != nil {
		t.Errorf("global link missing: %v", err)
	}
}

func TestInstallToAgentsMissingCanonical(t *testing.T) {
	f := newInstallFixture(t)

	res := f.installer.InstallToAgents("ghost", []agent.Agent{f.agent}, f.scope)
	if res.Success || res.FailCount != 1 {
		t.Fatalf("result = %+v", res)
	}
	if res.Agents[0].Err == nil {
		t.Fatal("agent result has no error")
	}
	if !strings.Contains(res.Agents[0].Err.Error(), "not in the canonical store") {
		t.Errorf("error = %v", res.Agents[0].Err)
	}
	// No dangling link was created.
	if _, err := os.Lstat(f.agentPath("ghost")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("agent entry exists for a skill the store never held")
	}
}

// noSymlinkFS behaves like the real filesystem except symlink creation
// always fails, as on filesystems without symlink support.
type noSymlinkFS struct {
	fsys.FS
}

func (noSymlinkFS) Symlink(oldname, newname string) error {
	return errors.New("operation not supported")
}

// unreadableFS also fails file reads, so the copy fallback cannot
// succeed either.
type unreadableFS struct {
	fsys.FS
}

func (unreadableFS) Symlink(oldname, newname string) error {
	return errors.New("operation not supported")
}

func (unreadableFS) ReadFile(name string) ([]byte, error) {
	return nil, errors.New("read denied")
}

func TestInstallToAgentsCopiesWhenSymlinkFails(t *testing.T) {
	f := newInstallFixture(t)
	f.seedSkill(t, "alpha", "# Alpha\n")

	inst := NewInstaller(f.store, noSymlinkFS{fsys.OS{}}, nil)
	res := inst.InstallToAgents("alpha", []agent.Agent{f.agent}, f.scope)
	if !res.Success || res.SuccessCount != 1 {
		t.Fatalf("result = %+v", res)
	}
	r := res.Agents[0]
	if r.Mode != ModeCopy {
		t.Errorf("mode = %s, want %s", r.Mode, ModeCopy)
	}
	if !r.SymlinkFailed {
		t.Error("SymlinkFailed not set on copy fallback")
	}

	// The agent holds an independent copy, not a link.
	target := f.agentPath("alpha")
	info, err := os.Lstat(target)
	if err != nil {
		t.Fatalf("Lstat: %v", err)
	}
	if info.Mode()&os.ModeSymlink != 0 {
		t.Errorf("%s is a symlink, expected a copied directory", target)
	}
	data, err := os.ReadFile(filepath.Join(target, "SKILL.md"))
	if err != nil {
		t.Fatalf("reading copied skill: %v", err)
	}
	if string(data) != "# Alpha\n" {
		t.Errorf("copied content = %q", data)
	}
}

func TestInstallToAgentsFailsWhenCopyAlsoFails(t *testing.T) {
	f := newInstallFixture(t)
	f.seedSkill(t, "alpha", "x")

	inst := NewInstaller(f.store, unreadableFS{fsys.OS{}}, nil)
	res := inst.InstallToAgents("alpha", []agent.Agent{f.agent}, f.scope)
	if res.Success || res.FailCount != 1 {
		t.Fatalf("result = %+v", res)
	}
	r := res.Agents[0]
	if r.Err == nil {
		t.Fatal("agent result has no error")
	}
	if !strings.Contains(r.Err.Error(), "symlink and copy both failed") {
		t.Errorf("error = %v, want both failures reported", r.Err)
	}
}

func TestRemoveFromAgents(t *testing.T) {
	f := newInstallFixture(t)
	f.seedSkill(t, "alpha", "x")
	f.seedSkill(t, "beta", "y")
	f.installer.InstallToAgents("alpha", []agent.Agent{f.agent}, f.scope)
	f.installer.InstallToAgents("beta", []agent.Agent{f.agent}, f.scope)

	removed := f.installer.RemoveFromAgents("alpha", []agent.Agent{f.agent}, f.scope)
	if len(removed) != 1 {
		t.Fatalf("removed = %v, want 1 path", removed)
	}
	if _, err := os.Lstat(f.agentPath("alpha")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("alpha link still present")
	}
	// Sibling skill and the canonical store are untouched.
	if _, err := os.Lstat(f.agentPath("beta")); err != nil {
		t.Errorf("beta link disturbed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(f.store.Root(), "alpha", "SKILL.md")); err != nil {
		t.Errorf("canonical content removed: %v", err)
	}
}

func TestRemoveFromAgentsPrunesEmptyDir(t *testing.T) {
	f := newInstallFixture(t)
	f.seedSkill(t, "alpha", "x")
	f.installer.InstallToAgents("alpha", []agent.Agent{f.agent}, f.scope)

	f.installer.RemoveFromAgents("alpha", []agent.Agent{f.agent}, f.scope)
	if _, err := os.Stat(filepath.Join(f.cwd, f.agent.ProjectDir)); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("empty skill dir was not pruned")
	}
}

func TestRemoveFromAgentsMissingEntry(t *testing.T) {
	f := newInstallFixture(t)

	removed := f.installer.RemoveFromAgents("ghost", []agent.Agent{f.agent}, f.scope)
	if len(removed) != 0 {
		t.Errorf("removed = %v, want none", removed)
	}
}

func TestIsCircularLink(t *testing.T) {
	dir := t.TempDir()
	loop := filepath.Join(dir, "loop")
	if err := os.Symlink(loop, loop); err != nil {
		t.Skipf("cannot create self-referencing symlink: %v", err)
	}
	if !isCircularLink(fsys.OS{}, loop) {
		t.Error("self-referencing link not detected as circular")
	}

	regular := filepath.Join(dir, "regular")
	if err := os.Mkdir(regular, 0o755); err != nil {
		t.Fatal(err)
	}
	if isCircularLink(fsys.OS{}, regular) {
		t.Error("regular directory reported as circular")
	}
}

func TestInstallToAgentsRecoversCircularLink(t *testing.T) {
	f := newInstallFixture(t)
	f.seedSkill(t, "alpha", "x")

	link := f.agentPath("alpha")
	if err := os.MkdirAll(filepath.Dir(link), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.Symlink(link, link); err != nil {
		t.Skipf("cannot create self-referencing symlink: %v", err)
	}

	res := f.installer.InstallToAgents("alpha", []agent.Agent{f.agent}, f.scope)
	if !res.Success {
		t.Fatalf("install over circular link failed: %+v", res)
	}
	if !f.installer.linkPointsTo(link, res.CanonicalPath) {
		t.Errorf("link does not point at canonical path")
	}
}

func TestCopyDirectory(t *testing.T) {
	src := t.TempDir()
	if err := os.MkdirAll(filepath.Join(src, "sub"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(src, "SKILL.md"), []byte("top"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(src, "sub", "extra.md"), []byte("nested"), 0o644); err != nil {
		t.Fatal(err)
	}

	dst := filepath.Join(t.TempDir(), "copy")
	if err := copyDirectory(fsys.OS{}, src, dst); err != nil {
		t.Fatalf("copyDirectory() error: %v", err)
	}

	for path, want := range map[string]string{
		filepath.Join(dst, "SKILL.md"):        "top",
		filepath.Join(dst, "sub", "extra.md"): "nested",
	} {
		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("reading %s: %v", path, err)
		}
		if string(data) != want {
			t.Errorf("%s = %q, want %q", path, data, want)
		}
	}
}
