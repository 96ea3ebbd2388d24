package config

import (
	"net/url"
	"strings"

	"github.com/cockroachdb/errors"
)

// Validate checks the loaded config for out-of-range values. Zero values
// are always accepted; they defer to package defaults.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.New("config is nil")
	}

	switch cfg.Logging.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return errors.Newf("logging.level %q is not one of debug|info|warn|error", cfg.Logging.Level)
	}

	if err := validatePercent("engine.output_threshold", cfg.Engine.OutputThreshold); err != nil {
		return err
	}
	if err := validatePercent("engine.min_confidence", cfg.Engine.MinConfidence); err != nil {
		return err
	}
	if err := validateFraction("engine.corroboration_penalty", cfg.Engine.CorroborationPenalty); err != nil {
		return err
	}
	if cfg.Engine.DetectionWindow < 0 || cfg.Engine.BucketSeconds < 0 {
		return errors.New("engine window sizes must be non-negative")
	}

	a := cfg.Attention
	if err := validateFraction("attention.min_weight", a.MinWeight); err != nil {
		return err
	}
	if err := validateFraction("attention.max_weight", a.MaxWeight); err != nil {
		return err
	}
	if a.MinWeight > 0 && a.MaxWeight > 0 && a.MinWeight >= a.MaxWeight {
		return errors.New("attention.min_weight must be below attention.max_weight")
	}
	if err := validateFraction("attention.learning_rate", a.LearningRate); err != nil {
		return err
	}
	if err := validateFraction("attention.ema_alpha", a.EMAAlpha); err != nil {
		return err
	}

	t := cfg.Temporal
	if err := validateFraction("temporal.smoothing_factor", t.SmoothingFactor); err != nil {
		return err
	}
	if err := validateFraction("temporal.max_jump_penalty", t.MaxJumpPenalty); err != nil {
		return err
	}
	if err := validatePercent("temporal.absolute_warn", t.AbsoluteWarn); err != nil {
		return err
	}
	if err := validatePercent("temporal.warn_threshold", t.WarnThreshold); err != nil {
		return err
	}

	if cfg.Bayes.DefaultPrior < 0 || cfg.Bayes.DefaultPrior >= 1 {
		return errors.New("bayes.default_prior must lie in [0,1)")
	}
	for cat, p := range cfg.Bayes.Priors {
		if p <= 0 || p >= 1 {
			return errors.Newf("bayes.priors[%s] must lie in (0,1)", cat)
		}
	}

	for i, p := range cfg.Patterns {
		if strings.TrimSpace(p.Name) == "" {
			return errors.Newf("patterns[%d] missing name", i)
		}
		if len(p.Phases) == 0 {
			return errors.Newf("pattern %q has no phases", p.Name)
		}
		if p.WindowSeconds <= 0 {
			return errors.Newf("pattern %q needs a positive window_seconds", p.Name)
		}
		if p.MinimumPhases < 0 || p.MinimumPhases > len(p.Phases) {
			return errors.Newf("pattern %q minimum_phases out of range", p.Name)
		}
		if err := validatePercent("pattern base_confidence", p.BaseConfidence); err != nil {
			return errors.Wrapf(err, "pattern %q", p.Name)
		}
	}

	if cfg.Emitter.WebhookURL != "" {
		u, err := url.Parse(cfg.Emitter.WebhookURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return errors.New("emitter.webhook_url is invalid")
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return errors.New("emitter.webhook_url must be http or https")
		}
	}

	return nil
}

func validatePercent(field string, v float64) error {
	if v < 0 || v > 100 {
		return errors.Newf("%s must lie in [0,100], got %v", field, v)
	}
	return nil
}

func validateFraction(field string, v float64) error {
	if v < 0 || v > 1 {
		return errors.Newf("%s must lie in [0,1], got %v", field, v)
	}
	return nil
}
