package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"BLOGMARK_DB", "BLOGMARK_DB_PATH", "BLOGMARK_USER",
		"BLOGMARK_EXPORT_FORMAT", "BLOGMARK_RECOMMEND_TOP_N",
	} {
		t.Setenv(key, "")
	}
}

func TestResolveMissingConfigFile(t *testing.T) {
	clearEnv(t)
	cfg, err := ResolveConfig(ResolveOptions{ConfigPath: filepath.Join(t.TempDir(), "nope.yaml")})
	if err != nil {
		t.Fatalf("missing config file should not error: %v", err)
	}
	if cfg.DBPath.Value != "" {
		t.Errorf("expected empty db path, got %q", cfg.DBPath.Value)
	}
	if cfg.ExportFormat.Value != "markdown" || cfg.ExportFormat.Source != SourceDefault {
		t.Errorf("expected built-in markdown default, got %+v", cfg.ExportFormat)
	}
}

func TestResolveMalformedConfig(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, "db_path: [not: a: string")
	if _, err := ResolveConfig(ResolveOptions{ConfigPath: path}); err == nil {
		t.Error("expected parse error for malformed yaml")
	}
}

func TestResolveFromConfigFile(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
db_path: /tmp/custom.db
user_id: alice
export:
  format: json
recommend:
  top_n: "7"
`)
	cfg, err := ResolveConfig(ResolveOptions{ConfigPath: path})
	if err != nil {
		t.Fatalf("ResolveConfig failed: %v", err)
	}
	if cfg.DBPath.Value != "/tmp/custom.db" || cfg.DBPath.Source != SourceConfig {
		t.Errorf("db path: %+v", cfg.DBPath)
	}
	if cfg.UserID.Value != "alice" {
		t.Errorf("user: %+v", cfg.UserID)
	}
	if cfg.ExportFormat.Value != "json" || cfg.ExportFormat.Source != SourceConfig {
		t.Errorf("format: %+v", cfg.ExportFormat)
	}
	if cfg.RecommendTopN.Value != "7" {
		t.Errorf("top_n: %+v", cfg.RecommendTopN)
	}
}

func TestEnvOverridesConfig(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, "db_path: /tmp/from-config.db\nuser_id: alice\n")
	t.Setenv("BLOGMARK_DB", "/tmp/from-env.db")
	t.Setenv("BLOGMARK_USER", "bob")

	cfg, err := ResolveConfig(ResolveOptions{ConfigPath: path})
	if err != nil {
		t.Fatalf("ResolveConfig failed: %v", err)
	}
	if cfg.DBPath.Value != "/tmp/from-env.db" || cfg.DBPath.Source != SourceEnv {
		t.Errorf("env should win over config: %+v", cfg.DBPath)
	}
	if cfg.UserID.Value != "bob" || cfg.UserID.From != "BLOGMARK_USER" {
		t.Errorf("env provenance: %+v", cfg.UserID)
	}
}

func TestCLIOverridesEverything(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, "db_path: /tmp/from-config.db\n")
	t.Setenv("BLOGMARK_DB", "/tmp/from-env.db")
	t.Setenv("BLOGMARK_EXPORT_FORMAT", "json")

	cfg, err := ResolveConfig(ResolveOptions{
		ConfigPath: path,
		CLIDBPath:  "/tmp/from-cli.db",
		CLIFormat:  "csv",
		CLITopN:    "3",
	})
	if err != nil {
		t.Fatalf("ResolveConfig failed: %v", err)
	}
	if cfg.DBPath.Value != "/tmp/from-cli.db" || cfg.DBPath.Source != SourceCLI {
		t.Errorf("cli should win: %+v", cfg.DBPath)
	}
	if cfg.ExportFormat.Value != "csv" || cfg.ExportFormat.From != "--format" {
		t.Errorf("format provenance: %+v", cfg.ExportFormat)
	}
	if cfg.RecommendTopN.Value != "3" {
		t.Errorf("top_n: %+v", cfg.RecommendTopN)
	}
}

func TestTildeExpansion(t *testing.T) {
	clearEnv(t)
	cfg, err := ResolveConfig(ResolveOptions{
		ConfigPath: filepath.Join(t.TempDir(), "nope.yaml"),
		CLIDBPath:  "~/notes/blogmark.db",
	})
	if err != nil {
		t.Fatalf("ResolveConfig failed: %v", err)
	}
	home, _ := os.UserHomeDir()
	want := filepath.Join(home, "notes", "blogmark.db")
	if cfg.DBPath.Value != want {
		t.Errorf("tilde expansion: got %q, want %q", cfg.DBPath.Value, want)
	}
}
