// Package bayes computes the probability that a category is present given
// evidence from several modalities. Evidence is combined multiplicatively in
// log-odds space; an item's confidence scales how far it may move the odds,
// and contradicting states apply a strong discount after ordinary evidence.
package bayes

import (
	"math"

	"go.uber.org/zap"

	"github.com/viewguard/viewguard/internal/category"
)

// Common evidence states. States are category-specific free-form labels;
// these are the ones the built-in tables know about.
const (
	StateTrue      = "True"
	StateFalse     = "False"
	StateCartoon   = "Cartoon"
	StateAnimated  = "Animated"
	StateMusic     = "Music"
	StateFireworks = "Fireworks"
)

// EvidenceItem is one modality's report: a discrete state and how sure the
// sensor is about it.
type EvidenceItem struct {
	State      string  `json:"state"`
	Confidence float64 `json:"confidence"` // 0-1
}

// Evidence maps each reporting modality to its item.
type Evidence map[category.Modality]EvidenceItem

// Calculator turns priors plus evidence into posterior probabilities.
type Calculator struct {
	tables Tables
	log    *zap.Logger
}

// New builds a calculator over the given tables. A nil logger is replaced
// with a no-op one.
func New(tables Tables, log *zap.Logger) *Calculator {
	if log == nil {
		log = zap.NewNop()
	}
	if tables.DefaultPrior <= 0 || tables.DefaultPrior >= 1 {
		tables.DefaultPrior = 0.10
	}
	if tables.VetoStrength <= 0 {
		tables.VetoStrength = 4.0
	}
	return &Calculator{
		tables: tables,
		log:    log.With(zap.String("component", "bayes")),
	}
}

// NewDefault builds a calculator over the built-in calibration tables.
func NewDefault(log *zap.Logger) *Calculator {
	return New(DefaultTables(), log)
}

// Prior returns the base rate for a category. Unknown categories fall back
// to the neutral 0.5 — a degraded path, not an error.
func (c *Calculator) Prior(cat category.Category) float64 {
	if !category.Known(cat) {
		c.log.Warn("unknown category, using neutral prior", zap.String("category", string(cat)))
		return 0.5
	}
	if p, ok := c.tables.Priors[cat]; ok && p > 0 && p < 1 {
		return p
	}
	return c.tables.DefaultPrior
}

// Posterior combines the prior with every evidence item and returns the
// probability that cat is present, in [0,1].
func (c *Calculator) Posterior(cat category.Category, ev Evidence) float64 {
	prior := c.Prior(cat)
	logOdds := math.Log(prior / (1 - prior))

	// Ordinary evidence first, in fixed modality order so replaying the
	// same input always accumulates identically. Each item contributes
	// confidence-scaled log-likelihood, so zero confidence is exactly
	// neutral.
	for _, mod := range category.Modalities() {
		item, ok := ev[mod]
		if !ok {
			continue
		}
		conf := clamp01(item.Confidence)
		lr := c.ratioFor(cat, mod, item.State)
		if lr <= 0 {
			continue
		}
		logOdds += conf * math.Log(lr)
	}

	// Vetoes after combination: contradicting states pull the posterior
	// down proportionally to their confidence, but other strong evidence
	// can still partially offset them.
	for _, mod := range category.Modalities() {
		item, ok := ev[mod]
		if !ok {
			continue
		}
		if c.isVeto(cat, mod, item.State) {
			logOdds -= c.tables.VetoStrength * clamp01(item.Confidence)
		}
	}

	return clamp01(1 / (1 + math.Exp(-logOdds)))
}

// ratioFor resolves the effective likelihood ratio for one evidence state.
// States outside {True, False} carry no ordinary weight of their own; veto
// states are handled separately.
func (c *Calculator) ratioFor(cat category.Category, mod category.Modality, state string) float64 {
	var lr LikelihoodRatio
	if byMod, ok := c.tables.Ratios[cat]; ok {
		if r, ok := byMod[mod]; ok {
			lr = r
		}
	}
	if lr.True == 0 && lr.False == 0 {
		lr = c.tables.DefaultRatios[mod]
	}
	switch state {
	case StateTrue:
		return lr.True
	case StateFalse:
		return lr.False
	default:
		return 1
	}
}

func (c *Calculator) isVeto(cat category.Category, mod category.Modality, state string) bool {
	byMod, ok := c.tables.Vetoes[cat]
	if !ok {
		return false
	}
	for _, s := range byMod[mod] {
		if s == state {
			return true
		}
	}
	return false
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
