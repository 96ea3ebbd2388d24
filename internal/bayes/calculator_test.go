package bayes

import (
	"math"
	"testing"

	"go.uber.org/zap"

	"github.com/viewguard/viewguard/internal/category"
)

func TestPosteriorNoEvidenceEqualsPrior(t *testing.T) {
	c := NewDefault(zap.NewNop())
	got := c.Posterior(category.Gore, nil)
	if math.Abs(got-0.08) > 1e-9 {
		t.Fatalf("no evidence should return the prior, got %v", got)
	}
}

func TestPriorUnknownCategoryNeutral(t *testing.T) {
	c := NewDefault(zap.NewNop())
	if got := c.Prior(category.Category("deepfake")); got != 0.5 {
		t.Fatalf("unknown category prior = %v, want 0.5", got)
	}
}

func TestPriorFallsBackToDefault(t *testing.T) {
	c := NewDefault(zap.NewNop())
	// Claustrophobia has no configured prior.
	if got := c.Prior(category.Claustrophobia); got != 0.10 {
		t.Fatalf("default prior = %v, want 0.10", got)
	}
}

func TestVetoOverridesCorroboration(t *testing.T) {
	c := NewDefault(zap.NewNop())
	post := c.Posterior(category.Gore, Evidence{
		category.ModalityText:   {State: StateTrue, Confidence: 0.9},
		category.ModalityAudio:  {State: StateTrue, Confidence: 0.85},
		category.ModalityVisual: {State: StateCartoon, Confidence: 0.95},
	})
	if post >= 0.2 {
		t.Fatalf("confident cartoon frame must suppress gore, got %v", post)
	}
}

func TestCorroboratedEvidenceRaisesPosterior(t *testing.T) {
	c := NewDefault(zap.NewNop())
	post := c.Posterior(category.Gore, Evidence{
		category.ModalityText:   {State: StateTrue, Confidence: 0.9},
		category.ModalityAudio:  {State: StateTrue, Confidence: 0.85},
		category.ModalityVisual: {State: StateTrue, Confidence: 0.95},
	})
	if post <= 0.9 {
		t.Fatalf("three agreeing modalities should dominate the prior, got %v", post)
	}
}

func TestZeroConfidenceEvidenceIsNeutral(t *testing.T) {
	c := NewDefault(zap.NewNop())
	post := c.Posterior(category.Gore, Evidence{
		category.ModalityVisual: {State: StateTrue, Confidence: 0},
	})
	if math.Abs(post-0.08) > 1e-9 {
		t.Fatalf("zero-confidence evidence moved the posterior: %v", post)
	}
}

func TestFalseEvidenceLowersPosterior(t *testing.T) {
	c := NewDefault(zap.NewNop())
	post := c.Posterior(category.Gore, Evidence{
		category.ModalityVisual: {State: StateFalse, Confidence: 1},
	})
	if post >= 0.08 {
		t.Fatalf("absence report should lower the posterior, got %v", post)
	}
}

func TestPosteriorMonotonicInConfidence(t *testing.T) {
	c := NewDefault(zap.NewNop())
	low := c.Posterior(category.Violence, Evidence{
		category.ModalityVisual: {State: StateTrue, Confidence: 0.3},
	})
	high := c.Posterior(category.Violence, Evidence{
		category.ModalityVisual: {State: StateTrue, Confidence: 0.9},
	})
	if high <= low {
		t.Fatalf("higher confidence should raise posterior: low=%v high=%v", low, high)
	}
}

func TestPosteriorBounds(t *testing.T) {
	c := NewDefault(zap.NewNop())
	post := c.Posterior(category.FlashingLights, Evidence{
		category.ModalityVisual: {State: StateTrue, Confidence: 1},
		category.ModalityAudio:  {State: StateTrue, Confidence: 1},
		category.ModalityText:   {State: StateTrue, Confidence: 1},
	})
	if post <= 0 || post >= 1 {
		t.Fatalf("posterior must stay inside (0,1), got %v", post)
	}
}

func TestUnrecognizedStateCarriesNoWeight(t *testing.T) {
	c := NewDefault(zap.NewNop())
	post := c.Posterior(category.Violence, Evidence{
		category.ModalityAudio: {State: "Chatter", Confidence: 1},
	})
	if math.Abs(post-0.15) > 1e-9 {
		t.Fatalf("unknown non-veto state should be neutral, got %v", post)
	}
}

func TestMusicVetoesGunshots(t *testing.T) {
	c := NewDefault(zap.NewNop())
	with := c.Posterior(category.Gunshots, Evidence{
		category.ModalityAudio: {State: StateMusic, Confidence: 0.9},
	})
	without := c.Posterior(category.Gunshots, nil)
	if with >= without {
		t.Fatalf("music should argue against gunshots: with=%v without=%v", with, without)
	}
}

func TestBadTableValuesFallBack(t *testing.T) {
	c := New(Tables{DefaultPrior: 1.5, VetoStrength: -2}, zap.NewNop())
	// Both out-of-range values are replaced with the defaults.
	if got := c.Prior(category.Violence); got != 0.10 {
		t.Fatalf("prior fallback = %v, want 0.10", got)
	}
}
