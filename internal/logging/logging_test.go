package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewFile_WritesEntries(t *testing.T) {
	// Given: a logger writing to a temp file at info level
	path := filepath.Join(t.TempDir(), "contacts.log")
	log, sync, err := NewFile(path, "info")
	if err != nil {
		t.Fatalf("NewFile: %v", err)
	}

	// When: entries at several levels are written
	log.Debugw("hidden", "k", 1)
	log.Infow("contact saved", "id", "7")
	sync()

	// Then: only entries at or above the level reach the file
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	got := string(data)
	if !strings.Contains(got, "contact saved") || !strings.Contains(got, `"id": "7"`) {
		t.Errorf("log missing entry:\n%s", got)
	}
	if strings.Contains(got, "hidden") {
		t.Errorf("debug entry should be filtered:\n%s", got)
	}
}

func TestNewFile_DebugLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "contacts.log")
	log, sync, err := NewFile(path, "debug")
	if err != nil {
		t.Fatal(err)
	}
	log.Debug("visible")
	sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "visible") {
		t.Errorf("debug entry missing:\n%s", data)
	}
}

func TestNewFile_BadLevel(t *testing.T) {
	_, _, err := NewFile(filepath.Join(t.TempDir(), "x.log"), "loud")
	if err == nil {
		t.Fatal("expected error for unknown level")
	}
}

func TestNewConsole(t *testing.T) {
	log, sync, err := NewConsole("warn")
	if err != nil {
		t.Fatalf("NewConsole: %v", err)
	}
	defer sync()
	if log.Desugar().Core().Enabled(-1) {
		t.Error("debug should be disabled at warn level")
	}
}

func TestDefaultFile(t *testing.T) {
	if got := DefaultFile(); filepath.Base(got) != "contacts.log" {
		t.Errorf("DefaultFile() = %q", got)
	}
}

func TestNop(t *testing.T) {
	// Nop must be usable without setup.
	Nop().Infow("ignored", "k", "v")
}
