// Package config loads the engine's externally supplied tuning from a YAML
// file. Every tunable the engine exposes lives here; zero values defer to
// the owning package's defaults so a partial file stays valid.
package config

import (
	"os"
	"time"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"

	"github.com/viewguard/viewguard/internal/attention"
	"github.com/viewguard/viewguard/internal/bayes"
	"github.com/viewguard/viewguard/internal/category"
	"github.com/viewguard/viewguard/internal/emit"
	"github.com/viewguard/viewguard/internal/escalation"
	"github.com/viewguard/viewguard/internal/fusion"
	"github.com/viewguard/viewguard/internal/temporal"
)

// Config holds ViewGuard configuration.
type Config struct {
	Logging          LoggingConfig             `yaml:"logging"`
	Engine           EngineConfig              `yaml:"engine"`
	Attention        AttentionConfig           `yaml:"attention"`
	Temporal         TemporalConfig            `yaml:"temporal"`
	Bayes            BayesConfig               `yaml:"bayes"`
	Patterns         []escalation.Pattern      `yaml:"patterns"`
	SceneAdjustments temporal.SceneAdjustments `yaml:"scene_adjustments"`
	Emitter          EmitterConfig             `yaml:"emitter"`
}

type LoggingConfig struct {
	Level       string `yaml:"level"`       // debug | info | warn | error
	Development bool   `yaml:"development"` // console encoder instead of JSON
}

type EngineConfig struct {
	DetectionWindow      float64 `yaml:"detection_window"`
	BucketSeconds        float64 `yaml:"bucket_seconds"`
	OutputThreshold      float64 `yaml:"output_threshold"`
	MinConfidence        float64 `yaml:"min_confidence"`
	CorroborationPenalty float64 `yaml:"corroboration_penalty"`
	CorrelationBonusStep float64 `yaml:"correlation_bonus_step"`
	MaxCorrelationBonus  float64 `yaml:"max_correlation_bonus"`
	OrderingAdjustment   float64 `yaml:"ordering_adjustment"`
	SubscriberBuffer     int     `yaml:"subscriber_buffer"`
}

type AttentionConfig struct {
	MinWeight          float64 `yaml:"min_weight"`
	MaxWeight          float64 `yaml:"max_weight"`
	LearningRate       float64 `yaml:"learning_rate"`
	EMAAlpha           float64 `yaml:"ema_alpha"`
	AgreementThreshold float64 `yaml:"agreement_threshold"`
	AgreementBoost     float64 `yaml:"agreement_boost"`
	IsolationPenalty   float64 `yaml:"isolation_penalty"`
}

type TemporalConfig struct {
	HistoryWindow    float64 `yaml:"history_window"`
	AdjacentWindow   float64 `yaml:"adjacent_window"`
	SmoothingWindow  float64 `yaml:"smoothing_window"`
	SmoothingFactor  float64 `yaml:"smoothing_factor"`
	BoostPerAdjacent float64 `yaml:"boost_per_adjacent"`
	MaxBoost         float64 `yaml:"max_boost"`
	JumpThreshold    float64 `yaml:"jump_threshold"`
	JumpTimeDelta    float64 `yaml:"jump_time_delta"`
	MaxJumpPenalty   float64 `yaml:"max_jump_penalty"`
	StrongConfidence float64 `yaml:"strong_confidence"`
	SustainDuration  float64 `yaml:"sustain_duration"`
	AbsoluteWarn     float64 `yaml:"absolute_warn"`
	WarnThreshold    float64 `yaml:"warn_threshold"`
}

type BayesConfig struct {
	VetoStrength float64                       `yaml:"veto_strength"`
	DefaultPrior float64                       `yaml:"default_prior"`
	Priors       map[category.Category]float64 `yaml:"priors"`
}

type EmitterConfig struct {
	QueueSize         int               `yaml:"queue_size"`
	Workers           int               `yaml:"workers"`
	ShutdownTimeoutMs int               `yaml:"shutdown_timeout_ms"`
	FilePath          string            `yaml:"file_path"`
	WebhookURL        string            `yaml:"webhook_url"`
	WebhookTimeoutMs  int               `yaml:"webhook_timeout_ms"`
	WebhookHeaders    map[string]string `yaml:"webhook_headers"`
}

// Load reads configuration from a YAML file. If the file doesn't exist, it
// returns a default config and no error.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return defaultConfig(), nil
		}
		return nil, errors.Wrapf(err, "read config %s", path)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrapf(err, "parse config %s", path)
	}
	applyDefaults(&cfg)
	return &cfg, nil
}

func defaultConfig() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *Config) {
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if len(cfg.Patterns) == 0 {
		cfg.Patterns = escalation.DefaultPatterns()
	}
	if len(cfg.SceneAdjustments) == 0 {
		cfg.SceneAdjustments = temporal.DefaultSceneAdjustments()
	}
}

// FusionConfig converts the engine section.
func (c *Config) FusionConfig() fusion.Config {
	e := c.Engine
	return fusion.Config{
		DetectionWindow:      e.DetectionWindow,
		BucketSeconds:        e.BucketSeconds,
		OutputThreshold:      e.OutputThreshold,
		MinConfidence:        e.MinConfidence,
		CorroborationPenalty: e.CorroborationPenalty,
		CorrelationBonusStep: e.CorrelationBonusStep,
		MaxCorrelationBonus:  e.MaxCorrelationBonus,
		OrderingAdjustment:   e.OrderingAdjustment,
		SubscriberBuffer:     e.SubscriberBuffer,
	}
}

// AttentionConfig converts the attention section.
func (c *Config) AttentionConfig() attention.Config {
	a := c.Attention
	return attention.Config{
		MinWeight:          a.MinWeight,
		MaxWeight:          a.MaxWeight,
		LearningRate:       a.LearningRate,
		EMAAlpha:           a.EMAAlpha,
		AgreementThreshold: a.AgreementThreshold,
		AgreementBoost:     a.AgreementBoost,
		IsolationPenalty:   a.IsolationPenalty,
	}
}

// TemporalConfig converts the temporal section.
func (c *Config) TemporalConfig() temporal.Config {
	t := c.Temporal
	return temporal.Config{
		HistoryWindow:    t.HistoryWindow,
		AdjacentWindow:   t.AdjacentWindow,
		SmoothingWindow:  t.SmoothingWindow,
		SmoothingFactor:  t.SmoothingFactor,
		BoostPerAdjacent: t.BoostPerAdjacent,
		MaxBoost:         t.MaxBoost,
		JumpThreshold:    t.JumpThreshold,
		JumpTimeDelta:    t.JumpTimeDelta,
		MaxJumpPenalty:   t.MaxJumpPenalty,
		StrongConfidence: t.StrongConfidence,
		SustainDuration:  t.SustainDuration,
		AbsoluteWarn:     t.AbsoluteWarn,
		WarnThreshold:    t.WarnThreshold,
	}
}

// BayesTables overlays the bayes section onto the built-in tables.
func (c *Config) BayesTables() bayes.Tables {
	tables := bayes.DefaultTables()
	if c.Bayes.VetoStrength > 0 {
		tables.VetoStrength = c.Bayes.VetoStrength
	}
	if c.Bayes.DefaultPrior > 0 && c.Bayes.DefaultPrior < 1 {
		tables.DefaultPrior = c.Bayes.DefaultPrior
	}
	for cat, p := range c.Bayes.Priors {
		if p > 0 && p < 1 {
			tables.Priors[cat] = p
		}
	}
	return tables
}

// EmitConfig converts the emitter section.
func (c *Config) EmitConfig() emit.Config {
	e := c.Emitter
	return emit.Config{
		QueueSize:       e.QueueSize,
		Workers:         e.Workers,
		ShutdownTimeout: time.Duration(e.ShutdownTimeoutMs) * time.Millisecond,
	}
}
