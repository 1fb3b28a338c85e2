// Package fsys abstracts the filesystem operations the installer and store
// need, so they can be exercised against a temp directory or a fake in tests.
package fsys

import (
	"io/fs"
	"os"
)

// FS is the capability surface used by the canonical store and the symlink
// installer. The OS implementation delegates straight to the os package.
type FS interface {
	Stat(name string) (fs.FileInfo, error)
	Lstat(name string) (fs.FileInfo, error)
	MkdirAll(path string, perm fs.FileMode) error
	Symlink(oldname, newname string) error
	Readlink(name string) (string, error)
	Remove(name string) error
	RemoveAll(path string) error
	ReadFile(name string) ([]byte, error)
	WriteFile(name string, data []byte, perm fs.FileMode) error
	ReadDir(name string) ([]fs.DirEntry, error)
}

// OS is the real-filesystem implementation of FS.
type OS struct{}

func (OS) Stat(name string) (fs.FileInfo, error)  { return os.Stat(name) }
func (OS) Lstat(name string) (fs.FileInfo, error) { return os.Lstat(name) }
func (OS) MkdirAll(path string, perm fs.FileMode) error {
	return os.MkdirAll(path, perm)
}
func (OS) Symlink(oldname, newname string) error { return os.Symlink(oldname, newname) }
func (OS) Readlink(name string) (string, error)  { return os.Readlink(name) }
func (OS) Remove(name string) error              { return os.Remove(name) }
func (OS) RemoveAll(path string) error           { return os.RemoveAll(path) }
func (OS) ReadFile(name string) ([]byte, error)  { return os.ReadFile(name) }
func (OS) WriteFile(name string, data []byte, perm fs.FileMode) error {
	return os.WriteFile(name, data, perm)
}
func (OS) ReadDir(name string) ([]fs.DirEntry, error) { return os.ReadDir(name) }

// Exists reports whether a path exists without following a final symlink.
func Exists(f FS, path string) bool {
	_, err := f.Lstat(path)
	return err == nil
}

// DirExists reports whether path exists and is a directory (links followed).
func DirExists(f FS, path string) bool {
	info, err := f.Stat(path)
	return err == nil && info.IsDir()
}
