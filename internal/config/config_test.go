package config

import (
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("RECOLLECT_DB", "")
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(cfg.DBPath) != "recollect.db" {
		t.Errorf("DBPath = %q, want a recollect.db default", cfg.DBPath)
	}
	if cfg.SearchLimit != 10 {
		t.Errorf("SearchLimit = %d, want 10", cfg.SearchLimit)
	}
	if cfg.SessionListLimit != 20 {
		t.Errorf("SessionListLimit = %d, want 20", cfg.SessionListLimit)
	}
	if cfg.Format != "json" {
		t.Errorf("Format = %q, want json", cfg.Format)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("RECOLLECT_DB", "/tmp/custom.db")
	t.Setenv("RECOLLECT_SEARCH_LIMIT", "25")
	t.Setenv("RECOLLECT_SESSION_LIST_LIMIT", "5")
	t.Setenv("RECOLLECT_FORMAT", "text")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.DBPath != "/tmp/custom.db" {
		t.Errorf("DBPath = %q, want /tmp/custom.db", cfg.DBPath)
	}
	if cfg.SearchLimit != 25 {
		t.Errorf("SearchLimit = %d, want 25", cfg.SearchLimit)
	}
	if cfg.SessionListLimit != 5 {
		t.Errorf("SessionListLimit = %d, want 5", cfg.SessionListLimit)
	}
	if cfg.Format != "text" {
		t.Errorf("Format = %q, want text", cfg.Format)
	}
}

func TestLoadRejectsBadLimit(t *testing.T) {
	t.Setenv("RECOLLECT_SEARCH_LIMIT", "lots")

	if _, err := Load(); err == nil {
		t.Fatal("Load() with non-numeric limit should fail")
	}
}
