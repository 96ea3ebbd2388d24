// Package attention maintains per-category reliability weights for the
// text/audio/visual modalities. Weights start from a category-specific seed,
// flex per detection event with sensor reliability and cross-modal
// agreement, and drift over time as labeled feedback arrives.
package attention

import (
	"time"

	"go.uber.org/zap"

	"github.com/viewguard/viewguard/internal/category"
)

// Outcome labels a feedback event.
type Outcome string

const (
	OutcomeCorrect   Outcome = "correct"
	OutcomeIncorrect Outcome = "incorrect"
)

// Config bounds the learning behavior. Zero values use defaults.
type Config struct {
	MinWeight          float64 // default 0.05
	MaxWeight          float64 // default 0.90
	LearningRate       float64 // default 0.1
	EMAAlpha           float64 // default 0.2
	AgreementThreshold float64 // input confidence (0-100) counted as "strong", default 60
	AgreementBoost     float64 // default 1.20
	IsolationPenalty   float64 // default 0.90
}

func (c *Config) applyDefaults() {
	if c.MinWeight == 0 {
		c.MinWeight = 0.05
	}
	if c.MaxWeight == 0 {
		c.MaxWeight = 0.90
	}
	if c.LearningRate == 0 {
		c.LearningRate = 0.1
	}
	if c.EMAAlpha == 0 {
		c.EMAAlpha = 0.2
	}
	if c.AgreementThreshold == 0 {
		c.AgreementThreshold = 60
	}
	if c.AgreementBoost == 0 {
		c.AgreementBoost = 1.20
	}
	if c.IsolationPenalty == 0 {
		c.IsolationPenalty = 0.90
	}
}

// state is one category's learned weight record.
type state struct {
	weights     map[category.Modality]float64
	performance map[category.Modality]float64 // EMA of contribution on correct outcomes
	correct     int
	incorrect   int
	updatedAt   time.Time
}

// Mechanism owns the per-category weight states. One instance per engine;
// no global state.
type Mechanism struct {
	cfg    Config
	states map[category.Category]*state
	log    *zap.Logger
}

// New builds a mechanism with lazily initialized category states.
func New(cfg Config, log *zap.Logger) *Mechanism {
	cfg.applyDefaults()
	if log == nil {
		log = zap.NewNop()
	}
	return &Mechanism{
		cfg:    cfg,
		states: make(map[category.Category]*state),
		log:    log.With(zap.String("component", "attention")),
	}
}

func (m *Mechanism) stateFor(cat category.Category) *state {
	if s, ok := m.states[cat]; ok {
		return s
	}
	if !category.Known(cat) {
		m.log.Warn("unknown category, using balanced weights", zap.String("category", string(cat)))
	}
	s := &state{
		weights:     BaseWeights(cat),
		performance: make(map[category.Modality]float64, 3),
		updatedAt:   time.Now(),
	}
	for m2, w := range s.weights {
		s.performance[m2] = w
	}
	m.states[cat] = s
	return s
}

// ComputeAttention returns the normalized weight per modality for one
// detection event. reliability scales each modality by external sensor
// quality in [0,1]; inputConfidence carries each modality's current raw
// confidence in [0,100]. Missing reliability entries count as 1, missing
// confidences as 0.
func (m *Mechanism) ComputeAttention(cat category.Category, reliability, inputConfidence map[category.Modality]float64) map[category.Modality]float64 {
	s := m.stateFor(cat)

	w := make(map[category.Modality]float64, 3)
	for _, mod := range category.Modalities() {
		w[mod] = s.weights[mod]
	}

	for _, mod := range category.Modalities() {
		if r, ok := reliability[mod]; ok {
			w[mod] *= clamp(r, 0, 1)
		}
	}

	// Cross-modal agreement: two or more strong modalities reinforce each
	// other; a single strong modality in isolation is slightly distrusted.
	var strong []category.Modality
	for _, mod := range category.Modalities() {
		if inputConfidence[mod] >= m.cfg.AgreementThreshold {
			strong = append(strong, mod)
		}
	}
	switch {
	case len(strong) >= 2:
		for _, mod := range strong {
			w[mod] *= m.cfg.AgreementBoost
		}
	case len(strong) == 1:
		w[strong[0]] *= m.cfg.IsolationPenalty
	}

	// Confidence micro-adjustment: at most a ±10% swing per modality.
	for _, mod := range category.Modalities() {
		w[mod] *= 1 + (inputConfidence[mod]/100-0.5)*0.1
	}

	normalize(w)
	for _, mod := range category.Modalities() {
		w[mod] = clamp(w[mod], m.cfg.MinWeight, m.cfg.MaxWeight)
	}
	normalize(w)
	return w
}

// UpdateLearnedWeights folds one labeled outcome into the category's
// learned weights. contributions holds each modality's share of the fused
// decision, in [0,1].
func (m *Mechanism) UpdateLearnedWeights(cat category.Category, outcome Outcome, contributions map[category.Modality]float64) {
	s := m.stateFor(cat)
	switch outcome {
	case OutcomeCorrect:
		s.correct++
		for mod, contrib := range contributions {
			contrib = clamp(contrib, 0, 1)
			s.performance[mod] = m.cfg.EMAAlpha*contrib + (1-m.cfg.EMAAlpha)*s.performance[mod]
			s.weights[mod] += m.cfg.LearningRate * (s.performance[mod] - s.weights[mod])
		}
	case OutcomeIncorrect:
		s.incorrect++
		for mod, contrib := range contributions {
			s.weights[mod] -= m.cfg.LearningRate * clamp(contrib, 0, 1) * 0.5
		}
	default:
		m.log.Warn("ignoring unknown feedback outcome", zap.String("outcome", string(outcome)))
		return
	}
	for mod := range s.weights {
		s.weights[mod] = clamp(s.weights[mod], m.cfg.MinWeight, m.cfg.MaxWeight)
	}
	s.updatedAt = time.Now()
}

// Weights returns a copy of the category's current learned weights.
func (m *Mechanism) Weights(cat category.Category) map[category.Modality]float64 {
	s := m.stateFor(cat)
	out := make(map[category.Modality]float64, len(s.weights))
	for mod, w := range s.weights {
		out[mod] = w
	}
	return out
}

// Feedback returns the cumulative correct/incorrect counts for a category.
func (m *Mechanism) Feedback(cat category.Category) (correct, incorrect int) {
	s := m.stateFor(cat)
	return s.correct, s.incorrect
}

// ResetCategory discards one category's learned state; the next access
// reverts to base weights.
func (m *Mechanism) ResetCategory(cat category.Category) {
	delete(m.states, cat)
}

// ResetAll discards every category's learned state.
func (m *Mechanism) ResetAll() {
	m.states = make(map[category.Category]*state)
}

func normalize(w map[category.Modality]float64) {
	sum := 0.0
	for _, mod := range category.Modalities() {
		sum += w[mod]
	}
	if sum <= 0 {
		// All-zero weights are not an error: fall back to an equal split.
		for _, mod := range category.Modalities() {
			w[mod] = 1.0 / float64(len(w))
		}
		return
	}
	for _, mod := range category.Modalities() {
		w[mod] /= sum
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
