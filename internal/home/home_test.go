package home

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNew(t *testing.T) {
	t.Run("with explicit path", func(t *testing.T) {
		dir, err := New("/tmp/test-translate")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if dir.Path() != "/tmp/test-translate" {
			t.Errorf("expected path /tmp/test-translate, got %s", dir.Path())
		}
	})

	t.Run("with empty path uses default", func(t *testing.T) {
		dir, err := New("")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		home, _ := os.UserHomeDir()
		expected := filepath.Join(home, DefaultDirName)
		if dir.Path() != expected {
			t.Errorf("expected path %s, got %s", expected, dir.Path())
		}
	})
}

func TestDir_Paths(t *testing.T) {
	dir, _ := New("/tmp/test-translate")

	t.Run("SourcesPath", func(t *testing.T) {
		expected := "/tmp/test-translate/sources"
		if dir.SourcesPath() != expected {
			t.Errorf("expected %s, got %s", expected, dir.SourcesPath())
		}
	})

	t.Run("SitePath", func(t *testing.T) {
		expected := "/tmp/test-translate/site"
		if dir.SitePath() != expected {
			t.Errorf("expected %s, got %s", expected, dir.SitePath())
		}
	})

	t.Run("ConfigPath", func(t *testing.T) {
		expected := "/tmp/test-translate/config.yaml"
		if dir.ConfigPath() != expected {
			t.Errorf("expected %s, got %s", expected, dir.ConfigPath())
		}
	})

	t.Run("SourcePath keeps absolute references", func(t *testing.T) {
		if got := dir.SourcePath("/data/guanju.txt"); got != "/data/guanju.txt" {
			t.Errorf("expected /data/guanju.txt, got %s", got)
		}
	})

	t.Run("SourcePath resolves relative references", func(t *testing.T) {
		expected := "/tmp/test-translate/sources/shijing/guanju.txt"
		if got := dir.SourcePath("shijing/guanju.txt"); got != expected {
			t.Errorf("expected %s, got %s", expected, got)
		}
	})

	t.Run("PagePath", func(t *testing.T) {
		expected := "/tmp/test-translate/site/guanju.html"
		if got := dir.PagePath("shijing/guanju.txt"); got != expected {
			t.Errorf("expected %s, got %s", expected, got)
		}
	})
}

func TestPageName(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"guanju.txt", "guanju.html"},
		{"shijing/guanju.txt", "guanju.html"},
		{"noext", "noext.html"},
		{"a.b.txt", "a.b.html"},
	}
	for _, c := range cases {
		if got := PageName(c.in); got != c.want {
			t.Errorf("PageName(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestDir_EnsureExists(t *testing.T) {
	tmpDir := t.TempDir()
	homeDir := filepath.Join(tmpDir, "translate-test")

	dir, err := New(homeDir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if dir.Exists() {
		t.Error("directory should not exist yet")
	}

	if err := dir.EnsureExists(); err != nil {
		t.Fatalf("EnsureExists failed: %v", err)
	}

	if !dir.Exists() {
		t.Error("directory should exist after EnsureExists")
	}
	for _, p := range []string{dir.SourcesPath(), dir.SitePath()} {
		if _, err := os.Stat(p); err != nil {
			t.Errorf("expected %s to exist: %v", p, err)
		}
	}
}
