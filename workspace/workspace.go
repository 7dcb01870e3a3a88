// Package workspace maps local workspace files to their remote counterparts
// and owns the workspace-level settings file.
package workspace

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// SettingsFile is the per-workspace configuration file, located at the
// workspace root.
const SettingsFile = ".scriptsync.json"

// Settings holds the per-workspace connection and sync configuration.
type Settings struct {
	URL        string   `json:"url"`
	Token      string   `json:"token"`
	RemoteRoot string   `json:"remote_root"` // remote path prefix, e.g. a package name
	Include    []string `json:"include"`     // doublestar patterns; empty means everything
	Exclude    []string `json:"exclude"`
	TimeoutMs  int      `json:"timeout_ms"`
}

// Workspace is one local directory synchronized against a remote project.
type Workspace struct {
	Root     string
	Settings *Settings
}

// Open loads the workspace rooted at the given directory. The settings file
// must exist; a workspace without one is not under sync.
func Open(root string) (*Workspace, error) {
	root = filepath.Clean(root)
	settings, err := loadSettings(filepath.Join(root, SettingsFile))
	if err != nil {
		return nil, err
	}
	return &Workspace{Root: root, Settings: settings}, nil
}

func loadSettings(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}
	var s Settings
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse settings %s: %w", path, err)
	}
	if s.URL == "" {
		return nil, fmt.Errorf("settings %s: url is required", path)
	}
	return &s, nil
}

// Rel converts an absolute local path to the workspace-relative slash form
// used for pattern matching and remote mapping. Returns false for paths
// outside the workspace.
func (w *Workspace) Rel(absPath string) (string, bool) {
	rel, err := filepath.Rel(w.Root, filepath.Clean(absPath))
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return filepath.ToSlash(rel), true
}

// Included reports whether a workspace-relative path participates in sync,
// per the include and exclude patterns. The settings file itself never does.
func (w *Workspace) Included(relPath string) bool {
	if relPath == SettingsFile {
		return false
	}
	if len(w.Settings.Include) > 0 {
		matched := false
		for _, pat := range w.Settings.Include {
			if ok, err := doublestar.Match(pat, relPath); err == nil && ok {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}
	for _, pat := range w.Settings.Exclude {
		if ok, err := doublestar.Match(pat, relPath); err == nil && ok {
			return false
		}
	}
	return true
}

// RemotePath maps a workspace-relative path to its remote identity.
func (w *Workspace) RemotePath(relPath string) string {
	if w.Settings.RemoteRoot == "" {
		return relPath
	}
	return strings.TrimSuffix(w.Settings.RemoteRoot, "/") + "/" + relPath
}

// LocalPath maps a remote path back to an absolute local path. Remote paths
// outside the configured remote root are rejected.
func (w *Workspace) LocalPath(remotePath string) (string, bool) {
	rel := remotePath
	if root := strings.TrimSuffix(w.Settings.RemoteRoot, "/"); root != "" {
		var found bool
		rel, found = strings.CutPrefix(remotePath, root+"/")
		if !found {
			return "", false
		}
	}
	return filepath.Join(w.Root, filepath.FromSlash(rel)), true
}

// ReadFile reads a workspace-relative file. The second return reports
// whether the file exists.
func (w *Workspace) ReadFile(relPath string) (string, bool, error) {
	data, err := os.ReadFile(filepath.Join(w.Root, filepath.FromSlash(relPath)))
	if os.IsNotExist(err) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return string(data), true, nil
}

// WriteFile writes a workspace-relative file, creating parent directories as
// needed. Used to materialize files that exist remotely but not locally.
func (w *Workspace) WriteFile(relPath, content string) error {
	path := filepath.Join(w.Root, filepath.FromSlash(relPath))
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(content), 0644)
}

// Files walks the workspace and returns the relative paths of all regular
// files that participate in sync.
func (w *Workspace) Files() ([]string, error) {
	var files []string
	err := filepath.WalkDir(w.Root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}
		rel, ok := w.Rel(path)
		if !ok || !w.Included(rel) {
			return nil
		}
		files = append(files, rel)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}
