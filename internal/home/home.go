package home

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	// DefaultDirName is the default name for the translate home directory.
	DefaultDirName = ".translate"

	// SourcesDirName is the subdirectory holding source text files.
	SourcesDirName = "sources"

	// SiteDirName is the subdirectory receiving generated pages.
	SiteDirName = "site"

	// ConfigFileName is the default config file name.
	ConfigFileName = "config.yaml"

	// ManifestFileName is the default manifest file name.
	ManifestFileName = "manifest.yaml"

	// IndexFileName is the navigation page written into the site directory.
	IndexFileName = "index.html"
)

// Dir represents the translate home directory structure.
type Dir struct {
	path string
}

// New creates a new Dir with the given path.
// If path is empty, uses the default (~/.translate).
func New(path string) (*Dir, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get user home directory: %w", err)
		}
		path = filepath.Join(home, DefaultDirName)
	}

	return &Dir{path: path}, nil
}

// Path returns the root path of the home directory.
func (d *Dir) Path() string {
	return d.path
}

// SourcesPath returns the path to the source texts directory.
func (d *Dir) SourcesPath() string {
	return filepath.Join(d.path, SourcesDirName)
}

// SitePath returns the path to the generated site directory.
func (d *Dir) SitePath() string {
	return filepath.Join(d.path, SiteDirName)
}

// ConfigPath returns the path to the default config file.
func (d *Dir) ConfigPath() string {
	return filepath.Join(d.path, ConfigFileName)
}

// ManifestPath returns the path to the default manifest file.
func (d *Dir) ManifestPath() string {
	return filepath.Join(d.path, ManifestFileName)
}

// SourcePath resolves a manifest file reference to an absolute path.
// Absolute references are used as-is; relative ones resolve under sources/.
func (d *Dir) SourcePath(file string) string {
	if filepath.IsAbs(file) {
		return file
	}
	return filepath.Join(d.SourcesPath(), file)
}

// PagePath returns the output path for a source file's generated page.
func (d *Dir) PagePath(file string) string {
	return filepath.Join(d.SitePath(), PageName(file))
}

// IndexPath returns the output path for the navigation page.
func (d *Dir) IndexPath() string {
	return filepath.Join(d.SitePath(), IndexFileName)
}

// PageName derives the generated page file name from a source file name.
func PageName(file string) string {
	base := filepath.Base(file)
	ext := filepath.Ext(base)
	if ext != "" {
		base = strings.TrimSuffix(base, ext)
	}
	return base + ".html"
}

// EnsureExists creates the home directory and subdirectories if they don't exist.
func (d *Dir) EnsureExists() error {
	for _, p := range []string{d.SourcesPath(), d.SitePath()} {
		if err := os.MkdirAll(p, 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", p, err)
		}
	}
	return nil
}

// Exists returns true if the home directory exists.
func (d *Dir) Exists() bool {
	_, err := os.Stat(d.path)
	return err == nil
}

// ConfigExists returns true if the config file exists in the home directory.
func (d *Dir) ConfigExists() bool {
	_, err := os.Stat(d.ConfigPath())
	return err == nil
}
