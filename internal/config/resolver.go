// Package config resolves blogmark settings from the config file, environment
// variables, and CLI flags, recording where each value came from.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ValueSource identifies where a resolved value came from.
type ValueSource string

const (
	SourceUnknown ValueSource = "unknown"
	SourceConfig  ValueSource = "config"
	SourceEnv     ValueSource = "env"
	SourceCLI     ValueSource = "cli"
	SourceDefault ValueSource = "default"
)

// ResolvedValue is a setting plus its provenance.
type ResolvedValue struct {
	Value  string      `json:"value"`
	Source ValueSource `json:"source"`
	From   string      `json:"from,omitempty"`
}

// ResolveOptions carries CLI-level overrides into resolution.
type ResolveOptions struct {
	ConfigPath string
	CLIDBPath  string
	CLIUser    string
	CLIFormat  string
	CLITopN    string
}

// ResolvedConfig is the full resolved settings set.
type ResolvedConfig struct {
	ConfigPath string `json:"config_path"`

	DBPath        ResolvedValue `json:"db_path"`
	UserID        ResolvedValue `json:"user_id"`
	ExportFormat  ResolvedValue `json:"export_format"`
	RecommendTopN ResolvedValue `json:"recommend_top_n"`
}

type fileConfig struct {
	DBPath string `yaml:"db_path"`
	UserID string `yaml:"user_id"`
	Export struct {
		Format string `yaml:"format"`
	} `yaml:"export"`
	Recommend struct {
		TopN string `yaml:"top_n"`
	} `yaml:"recommend"`
}

// DefaultConfigPath is ~/.blogmark/config.yaml.
func DefaultConfigPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".blogmark", "config.yaml")
}

// ResolveConfig layers config file, then environment, then CLI overrides.
func ResolveConfig(opts ResolveOptions) (ResolvedConfig, error) {
	path := strings.TrimSpace(opts.ConfigPath)
	if path == "" {
		path = DefaultConfigPath()
	}

	out := ResolvedConfig{ConfigPath: path}

	cfg, err := loadConfig(path)
	if err != nil {
		return out, err
	}

	if cfg != nil {
		apply(&out.DBPath, cfg.DBPath, SourceConfig, path)
		apply(&out.UserID, cfg.UserID, SourceConfig, path)
		apply(&out.ExportFormat, cfg.Export.Format, SourceConfig, path)
		apply(&out.RecommendTopN, cfg.Recommend.TopN, SourceConfig, path)
	}

	applyEnv(&out.DBPath, "BLOGMARK_DB")
	applyEnv(&out.DBPath, "BLOGMARK_DB_PATH")
	applyEnv(&out.UserID, "BLOGMARK_USER")
	applyEnv(&out.ExportFormat, "BLOGMARK_EXPORT_FORMAT")
	applyEnv(&out.RecommendTopN, "BLOGMARK_RECOMMEND_TOP_N")

	apply(&out.DBPath, opts.CLIDBPath, SourceCLI, "--db")
	apply(&out.UserID, opts.CLIUser, SourceCLI, "--user")
	apply(&out.ExportFormat, opts.CLIFormat, SourceCLI, "--format")
	apply(&out.RecommendTopN, opts.CLITopN, SourceCLI, "--top")

	if out.DBPath.Value != "" {
		out.DBPath.Value = expandUserPath(out.DBPath.Value)
	}
	if out.ExportFormat.Value == "" {
		out.ExportFormat = ResolvedValue{Value: "markdown", Source: SourceDefault, From: "built-in default"}
	}

	return out, nil
}

func apply(dst *ResolvedValue, raw string, source ValueSource, from string) {
	v := strings.TrimSpace(raw)
	if v == "" {
		return
	}
	*dst = ResolvedValue{Value: v, Source: source, From: from}
}

func applyEnv(dst *ResolvedValue, envKey string) {
	if v := strings.TrimSpace(os.Getenv(envKey)); v != "" {
		*dst = ResolvedValue{Value: v, Source: SourceEnv, From: envKey}
	}
}

func loadConfig(path string) (*fileConfig, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	var cfg fileConfig
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return &cfg, nil
}

func expandUserPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
