package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/obreitwi/neorg-task-sync/tasks"
)

func TestResolveTasklist_ExactID(t *testing.T) {
	lists := []tasks.TaskList{
		{ID: "abc123", Title: "Groceries"},
		{ID: "def456", Title: "Work"},
	}
	got, err := resolveTasklist("def456", lists)
	if err != nil {
		t.Fatalf("resolveTasklist() error = %v", err)
	}
	if got.ID != "def456" {
		t.Fatalf("resolveTasklist() = %+v, want def456", got)
	}
}

func TestResolveTasklist_ExactTitleCaseInsensitive(t *testing.T) {
	lists := []tasks.TaskList{
		{ID: "abc123", Title: "Groceries"},
		{ID: "def456", Title: "Work"},
	}
	got, err := resolveTasklist("groceries", lists)
	if err != nil {
		t.Fatalf("resolveTasklist() error = %v", err)
	}
	if got.ID != "abc123" {
		t.Fatalf("resolveTasklist() = %+v, want abc123", got)
	}
}

func TestResolveTasklist_FuzzyTitle(t *testing.T) {
	lists := []tasks.TaskList{
		{ID: "abc123", Title: "Groceries"},
		{ID: "def456", Title: "Work projects"},
	}
	got, err := resolveTasklist("grcries", lists)
	if err != nil {
		t.Fatalf("resolveTasklist() error = %v", err)
	}
	if got.ID != "abc123" {
		t.Fatalf("resolveTasklist() = %+v, want abc123", got)
	}
}

func TestResolveTasklist_NoMatch(t *testing.T) {
	lists := []tasks.TaskList{{ID: "abc123", Title: "Groceries"}}
	if _, err := resolveTasklist("zzzzzz", lists); err == nil {
		t.Fatal("resolveTasklist() error = nil, want error")
	}
}

func TestWriteConfigValue_PreservesOtherKeys(t *testing.T) {
	dir := t.TempDir()
	viper.Set("config_dir", dir)
	t.Cleanup(func() { viper.Set("config_dir", "") })

	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("section_todos: TODOs\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if err := writeConfigValue("tasklist", "abc123"); err != nil {
		t.Fatalf("writeConfigValue() error = %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read config: %v", err)
	}
	var cfg map[string]any
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg["tasklist"] != "abc123" {
		t.Fatalf("tasklist = %v, want abc123", cfg["tasklist"])
	}
	if cfg["section_todos"] != "TODOs" {
		t.Fatalf("section_todos = %v, want preserved", cfg["section_todos"])
	}
}
