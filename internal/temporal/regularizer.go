// Package temporal smooths per-category detection confidence over time:
// adjacent agreement raises trust, sudden jumps are penalized, and
// short-lived isolated spikes are suppressed rather than surfaced as
// flickering warnings.
package temporal

import (
	"math"

	"go.uber.org/zap"

	"github.com/viewguard/viewguard/internal/category"
	"github.com/viewguard/viewguard/internal/detection"
)

// Config bounds the regularizer. Zero values use defaults.
type Config struct {
	HistoryWindow    float64 // seconds of per-category history kept, default 30
	AdjacentWindow   float64 // seconds counted as "adjacent", default 3
	SmoothingWindow  float64 // seconds feeding the EMA blend, default 5
	SmoothingFactor  float64 // weight on history in the blend, default 0.3
	BoostPerAdjacent float64 // default 0.05
	MaxBoost         float64 // default 0.20
	JumpThreshold    float64 // confidence points, default 30
	JumpTimeDelta    float64 // seconds, default 2
	MaxJumpPenalty   float64 // default 0.30
	StrongConfidence float64 // confidence counted toward boost/sustain, default 50
	SustainDuration  float64 // seconds of qualifying span, default 2
	AbsoluteWarn     float64 // always warn at/above this, default 85
	WarnThreshold    float64 // default 60
}

func (c *Config) applyDefaults() {
	if c.HistoryWindow == 0 {
		c.HistoryWindow = 30
	}
	if c.AdjacentWindow == 0 {
		c.AdjacentWindow = 3
	}
	if c.SmoothingWindow == 0 {
		c.SmoothingWindow = 5
	}
	if c.SmoothingFactor == 0 {
		c.SmoothingFactor = 0.3
	}
	if c.BoostPerAdjacent == 0 {
		c.BoostPerAdjacent = 0.05
	}
	if c.MaxBoost == 0 {
		c.MaxBoost = 0.20
	}
	if c.JumpThreshold == 0 {
		c.JumpThreshold = 30
	}
	if c.JumpTimeDelta == 0 {
		c.JumpTimeDelta = 2
	}
	if c.MaxJumpPenalty == 0 {
		c.MaxJumpPenalty = 0.30
	}
	if c.StrongConfidence == 0 {
		c.StrongConfidence = 50
	}
	if c.SustainDuration == 0 {
		c.SustainDuration = 2
	}
	if c.AbsoluteWarn == 0 {
		c.AbsoluteWarn = 85
	}
	if c.WarnThreshold == 0 {
		c.WarnThreshold = 60
	}
}

// SceneAdjustments maps category x scene type to an additive multiplier on
// the regularized confidence. Missing entries mean no adjustment.
type SceneAdjustments map[category.Category]map[string]float64

// DefaultSceneAdjustments returns the illustrative built-in table; in
// production deployments it is external configuration.
func DefaultSceneAdjustments() SceneAdjustments {
	return SceneAdjustments{
		category.Violence:  {"battle": 0.15, "sports": -0.20, "cartoon": -0.25},
		category.Gore:      {"medical_drama": -0.15, "cartoon": -0.30, "horror": 0.10},
		category.Blood:     {"medical_drama": -0.15, "cartoon": -0.30},
		category.Gunshots:  {"battle": 0.15, "fireworks": -0.30},
		category.Screaming: {"concert": -0.30, "horror": 0.10},
	}
}

// Result explains one regularization decision.
type Result struct {
	Regularized     float64 `json:"regularized"`
	Coherence       float64 `json:"coherence"`
	Boost           float64 `json:"boost"`
	Penalty         float64 `json:"penalty"`
	Smoothed        float64 `json:"smoothed"`
	SceneAdjustment float64 `json:"scene_adjustment"`
	Sustained       bool    `json:"sustained"`
	ShouldWarn      bool    `json:"should_warn"`
}

// Regularizer keeps the rolling per-category history plus optional scene
// intervals. Owned by one engine instance; single-threaded.
type Regularizer struct {
	cfg    Config
	scenes SceneAdjustments

	history        map[category.Category][]detection.Detection
	sceneIntervals []detection.SceneContext

	boostsApplied    int
	penaltiesApplied int
	suppressed       int

	log *zap.Logger
}

// New builds a regularizer. A nil scene table disables scene adjustments.
func New(cfg Config, scenes SceneAdjustments, log *zap.Logger) *Regularizer {
	cfg.applyDefaults()
	if log == nil {
		log = zap.NewNop()
	}
	return &Regularizer{
		cfg:     cfg,
		scenes:  scenes,
		history: make(map[category.Category][]detection.Detection),
		log:     log.With(zap.String("component", "temporal")),
	}
}

// AddScene registers an externally supplied scene interval.
func (r *Regularizer) AddScene(s detection.SceneContext) {
	r.sceneIntervals = append(r.sceneIntervals, s)
}

// Counters reports boosts, penalties, and suppressions applied so far.
func (r *Regularizer) Counters() (boosts, penalties, suppressed int) {
	return r.boostsApplied, r.penaltiesApplied, r.suppressed
}

// Regularize scores d against the category's recent history and decides
// whether it should surface as a warning. The raw detection is appended to
// history regardless of the decision: history reflects observed evidence,
// not emitted warnings.
func (r *Regularizer) Regularize(d detection.Detection, now float64) Result {
	r.prune(d.Category, now)
	hist := r.history[d.Category]

	res := Result{}
	res.Coherence = r.coherence(d, hist)
	res.Boost = r.boost(d, hist)
	res.Penalty = r.jumpPenalty(d, hist)
	res.Smoothed = r.smooth(d, hist)
	res.SceneAdjustment = r.sceneAdjustment(d.Category, now)
	res.Sustained = r.sustained(d, hist)

	res.Regularized = clamp(res.Smoothed*(1+res.Boost)*(1-res.Penalty)*(1+res.SceneAdjustment), 0, 100)

	switch {
	case res.Regularized >= r.cfg.AbsoluteWarn:
		res.ShouldWarn = true
	case res.Coherence < 50 && !res.Sustained:
		res.ShouldWarn = false
	default:
		res.ShouldWarn = res.Regularized >= r.cfg.WarnThreshold
	}

	if res.Boost > 0 {
		r.boostsApplied++
	}
	if res.Penalty > 0 {
		r.penaltiesApplied++
	}
	if !res.ShouldWarn {
		r.suppressed++
		r.log.Debug("detection suppressed",
			zap.String("category", string(d.Category)),
			zap.Float64("regularized", res.Regularized),
			zap.Float64("coherence", res.Coherence),
		)
	}

	r.history[d.Category] = append(hist, d)
	return res
}

// Observe appends d to the category history without scoring it. Used when a
// detection is screened out upstream but its evidence should still inform
// later coherence.
func (r *Regularizer) Observe(d detection.Detection, now float64) {
	r.prune(d.Category, now)
	r.history[d.Category] = append(r.history[d.Category], d)
}

func (r *Regularizer) prune(cat category.Category, now float64) {
	cutoff := now - r.cfg.HistoryWindow
	hist := r.history[cat]
	i := 0
	for i < len(hist) && hist[i].Timestamp < cutoff {
		i++
	}
	if i > 0 {
		r.history[cat] = append(hist[:0], hist[i:]...)
	}
}

func (r *Regularizer) adjacent(d detection.Detection, hist []detection.Detection) []detection.Detection {
	var out []detection.Detection
	for _, h := range hist {
		if math.Abs(h.Timestamp-d.Timestamp) <= r.cfg.AdjacentWindow {
			out = append(out, h)
		}
	}
	return out
}

// coherence measures how consistent this detection is with temporally
// adjacent ones: 50 is neutral (first detection), 30 flags isolation.
func (r *Regularizer) coherence(d detection.Detection, hist []detection.Detection) float64 {
	if len(hist) == 0 {
		return 50
	}
	adj := r.adjacent(d, hist)
	if len(adj) == 0 {
		return 30
	}
	sum := 0.0
	for _, a := range adj {
		sum += a.Confidence
	}
	avg := sum / float64(len(adj))
	return clamp(100-math.Abs(d.Confidence-avg), 0, 100)
}

func (r *Regularizer) boost(d detection.Detection, hist []detection.Detection) float64 {
	n := 0
	for _, a := range r.adjacent(d, hist) {
		if a.Confidence >= r.cfg.StrongConfidence {
			n++
		}
	}
	return math.Min(r.cfg.MaxBoost, r.cfg.BoostPerAdjacent*float64(n))
}

// jumpPenalty punishes a sudden confidence spike over the most recent
// earlier detection, scaled by how far past the threshold the jump goes.
func (r *Regularizer) jumpPenalty(d detection.Detection, hist []detection.Detection) float64 {
	var prev *detection.Detection
	for i := len(hist) - 1; i >= 0; i-- {
		if hist[i].Timestamp <= d.Timestamp {
			prev = &hist[i]
			break
		}
	}
	if prev == nil {
		return 0
	}
	jump := d.Confidence - prev.Confidence
	if jump <= r.cfg.JumpThreshold || d.Timestamp-prev.Timestamp >= r.cfg.JumpTimeDelta {
		return 0
	}
	scale := (jump - r.cfg.JumpThreshold) / (100 - r.cfg.JumpThreshold)
	return r.cfg.MaxJumpPenalty * clamp(scale, 0, 1)
}

// smooth blends the raw confidence with an EMA over detections inside the
// smoothing window.
func (r *Regularizer) smooth(d detection.Detection, hist []detection.Detection) float64 {
	var window []detection.Detection
	for _, h := range hist {
		if math.Abs(h.Timestamp-d.Timestamp) <= r.cfg.SmoothingWindow {
			window = append(window, h)
		}
	}
	if len(window) == 0 {
		return d.Confidence
	}
	ema := window[0].Confidence
	for _, h := range window[1:] {
		ema = 0.5*h.Confidence + 0.5*ema
	}
	return (1-r.cfg.SmoothingFactor)*d.Confidence + r.cfg.SmoothingFactor*ema
}

func (r *Regularizer) sceneAdjustment(cat category.Category, now float64) float64 {
	if len(r.scenes) == 0 {
		return 0
	}
	for _, s := range r.sceneIntervals {
		if !s.Covers(now) {
			continue
		}
		if byScene, ok := r.scenes[cat]; ok {
			if adj, ok := byScene[s.SceneType]; ok {
				return adj
			}
		}
	}
	return 0
}

// sustained reports whether the category shows at least two qualifying
// detections spanning the minimum duration, counting the current one.
func (r *Regularizer) sustained(d detection.Detection, hist []detection.Detection) bool {
	minT, maxT := d.Timestamp, d.Timestamp
	count := 0
	if d.Confidence >= r.cfg.StrongConfidence {
		count = 1
	}
	for _, h := range hist {
		if h.Confidence < r.cfg.StrongConfidence {
			continue
		}
		count++
		if h.Timestamp < minT {
			minT = h.Timestamp
		}
		if h.Timestamp > maxT {
			maxT = h.Timestamp
		}
	}
	return count >= 2 && maxT-minT >= r.cfg.SustainDuration
}

// HistoryLen reports the buffered history size for one category.
func (r *Regularizer) HistoryLen(cat category.Category) int {
	return len(r.history[cat])
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) || v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
