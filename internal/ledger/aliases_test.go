package ledger

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNewAliasesNormalizes(t *testing.T) {
	a := NewAliases(map[string]string{"  Эндер   Жемчуг ": "Жемчуг Края", "": "x", "y": " "})
	if got, ok := a.Resolve("эндер жемчуг"); !ok || got != "жемчуг края" {
		t.Errorf("Expected normalized alias, got %q (ok=%v)", got, ok)
	}
	if len(a) != 1 {
		t.Errorf("Expected empty keys and targets to be dropped, got %v", a)
	}
}

func TestLoadAliases(t *testing.T) {
	path := filepath.Join(t.TempDir(), "aliases.yaml")
	content := "шалкер: Шалкеровый ящик\nалмазы: Алмазный блок\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write aliases file: %v", err)
	}

	a, err := LoadAliases(path)
	if err != nil {
		t.Fatalf("LoadAliases: unexpected error: %v", err)
	}
	if got, _ := a.Resolve("шалкер"); got != "шалкеровый ящик" {
		t.Errorf("Expected file alias, got %q", got)
	}
	if got, _ := a.Resolve("алмазы"); got != "алмазный блок" {
		t.Errorf("Expected file to override defaults, got %q", got)
	}
	if got, _ := a.Resolve("эндер жемчуг"); got != "жемчуг края" {
		t.Errorf("Expected defaults to be kept, got %q", got)
	}
}

func TestLoadAliasesErrors(t *testing.T) {
	if _, err := LoadAliases(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Expected error for missing file")
	}
	path := filepath.Join(t.TempDir(), "bad.yaml")
	os.WriteFile(path, []byte("- just\n- a list\n"), 0644)
	if _, err := LoadAliases(path); err == nil {
		t.Error("Expected error for non-mapping YAML")
	}
}
