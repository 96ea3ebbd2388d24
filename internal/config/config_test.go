package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/viewguard/viewguard/internal/category"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "viewguard.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("missing file should not error: %v", err)
	}
	if cfg.Logging.Level != "info" {
		t.Fatalf("default logging level = %q", cfg.Logging.Level)
	}
	if len(cfg.Patterns) == 0 {
		t.Fatalf("defaults should include built-in escalation patterns")
	}
	if len(cfg.SceneAdjustments) == 0 {
		t.Fatalf("defaults should include scene adjustments")
	}
}

func TestLoadOverrides(t *testing.T) {
	path := writeConfig(t, `
logging:
  level: debug
  development: true
engine:
  output_threshold: 75
  bucket_seconds: 5
attention:
  learning_rate: 0.2
bayes:
  veto_strength: 6
  priors:
    gore: 0.2
emitter:
  queue_size: 64
  shutdown_timeout_ms: 500
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Logging.Level != "debug" || !cfg.Logging.Development {
		t.Fatalf("logging section not applied: %+v", cfg.Logging)
	}
	if cfg.Engine.OutputThreshold != 75 || cfg.Engine.BucketSeconds != 5 {
		t.Fatalf("engine section not applied: %+v", cfg.Engine)
	}
	if cfg.AttentionConfig().LearningRate != 0.2 {
		t.Fatalf("attention conversion wrong: %+v", cfg.AttentionConfig())
	}

	tables := cfg.BayesTables()
	if tables.VetoStrength != 6 {
		t.Fatalf("veto strength override = %v", tables.VetoStrength)
	}
	if tables.Priors[category.Gore] != 0.2 {
		t.Fatalf("gore prior override = %v", tables.Priors[category.Gore])
	}
	// Untouched entries keep the built-in values.
	if tables.Priors[category.Violence] != 0.15 {
		t.Fatalf("violence prior should stay at default, got %v", tables.Priors[category.Violence])
	}

	if got := cfg.EmitConfig(); got.QueueSize != 64 || got.ShutdownTimeout != 500*time.Millisecond {
		t.Fatalf("emit conversion wrong: %+v", got)
	}
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := writeConfig(t, "engine: [not a map")
	if _, err := Load(path); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestValidateAcceptsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := Validate(cfg); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad log level", func(c *Config) { c.Logging.Level = "verbose" }},
		{"threshold above 100", func(c *Config) { c.Engine.OutputThreshold = 150 }},
		{"negative penalty", func(c *Config) { c.Engine.CorroborationPenalty = -0.5 }},
		{"min above max weight", func(c *Config) { c.Attention.MinWeight = 0.9; c.Attention.MaxWeight = 0.1 }},
		{"learning rate above 1", func(c *Config) { c.Attention.LearningRate = 1.5 }},
		{"prior at 1", func(c *Config) { c.Bayes.Priors = map[category.Category]float64{category.Gore: 1} }},
		{"pattern without name", func(c *Config) { c.Patterns[0].Name = " " }},
		{"pattern without window", func(c *Config) { c.Patterns[0].WindowSeconds = 0 }},
		{"webhook bad scheme", func(c *Config) { c.Emitter.WebhookURL = "ftp://example.com" }},
		{"webhook not a url", func(c *Config) { c.Emitter.WebhookURL = "::::" }},
	}
	for _, tc := range cases {
		cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
		if err != nil {
			t.Fatalf("%s: load: %v", tc.name, err)
		}
		tc.mutate(cfg)
		if err := Validate(cfg); err == nil {
			t.Fatalf("%s: expected validation error", tc.name)
		}
	}
}

func TestValidateNilConfig(t *testing.T) {
	if err := Validate(nil); err == nil {
		t.Fatalf("nil config must be rejected")
	}
}

func TestCustomPatternFromYAML(t *testing.T) {
	path := writeConfig(t, `
patterns:
  - name: custom_buildup
    category: violence
    phases:
      - ["threat one"]
      - ["threat two"]
    minimum_phases: 2
    window_seconds: 45
    base_confidence: 65
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := Validate(cfg); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if len(cfg.Patterns) != 1 {
		t.Fatalf("custom patterns should replace the defaults, got %d", len(cfg.Patterns))
	}
	p := cfg.Patterns[0]
	if p.Name != "custom_buildup" || p.Category != category.Violence || p.WindowSeconds != 45 {
		t.Fatalf("pattern decoded wrong: %+v", p)
	}
}
