package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestLoad_YAML(t *testing.T) {
	cfg, err := Load([]byte("log_level: debug\npage_size: 25\nrules_path: rules.yaml\n"), ".yml")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := Default()
	want.LogLevel = "debug"
	want.PageSize = 25
	want.RulesPath = "rules.yaml"
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("config (-want +got):\n%s", diff)
	}
}

func TestLoad_DetectJSON(t *testing.T) {
	cfg, err := Load([]byte(`{"log_format": "json", "max_depth": 8, "parallel": 2}`), "")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.LogFormat != "json" || cfg.MaxDepth != 8 || cfg.Parallel != 2 {
		t.Errorf("got %+v", cfg)
	}
	if cfg.PageSize != Default().PageSize {
		t.Errorf("page size default not applied: %d", cfg.PageSize)
	}
}

func TestLoad_Invalid(t *testing.T) {
	cases := map[string]string{
		"bad level":  "log_level: loud\n",
		"bad format": "log_format: xml\n",
		"bad yaml":   "page_size: [\n",
	}
	for name, doc := range cases {
		if _, err := Load([]byte(doc), ".yaml"); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestLoadFromPath_ResolvesRulesPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sprintlens.yaml")
	if err := os.WriteFile(path, []byte("rules_path: custom/rules.yaml\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath: %v", err)
	}
	if want := filepath.Join(dir, "custom", "rules.yaml"); cfg.RulesPath != want {
		t.Errorf("RulesPath = %q, want %q", cfg.RulesPath, want)
	}
}

func TestResolve(t *testing.T) {
	t.Setenv(EnvPath, "")
	cfg, err := Resolve("")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Errorf("defaults (-want +got):\n%s", diff)
	}

	path := filepath.Join(t.TempDir(), "c.json")
	if err := os.WriteFile(path, []byte(`{"page_size": 3}`), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(EnvPath, path)
	cfg, err = Resolve("")
	if err != nil {
		t.Fatalf("Resolve via env: %v", err)
	}
	if cfg.PageSize != 3 {
		t.Errorf("PageSize = %d, want 3", cfg.PageSize)
	}

	if _, err := Resolve(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}
