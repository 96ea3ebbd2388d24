// Package fusion is the top-level orchestrator: it buffers recent
// detections, gathers related evidence, combines confidence through the
// Bayesian calculator under attention weights, regularizes the result over
// time, screens false positives, and emits deduplicated fused warnings to
// subscribers.
package fusion

import (
	"fmt"
	"math"
	"sort"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/viewguard/viewguard/internal/attention"
	"github.com/viewguard/viewguard/internal/bayes"
	"github.com/viewguard/viewguard/internal/category"
	"github.com/viewguard/viewguard/internal/contextual"
	"github.com/viewguard/viewguard/internal/detection"
	"github.com/viewguard/viewguard/internal/escalation"
	"github.com/viewguard/viewguard/internal/temporal"
)

// Config bounds the fusion engine. Zero values use defaults.
type Config struct {
	DetectionWindow      float64 // seconds of recent detections kept, default 30
	BucketSeconds        float64 // warning dedup bucket, default 10
	OutputThreshold      float64 // emit at/above this regularized confidence, default 60
	MinConfidence        float64 // false-positive screen for uncorroborated claims, default 40
	CorroborationPenalty float64 // single-modality factor for visual categories, default 0.5
	CorrelationBonusStep float64 // per extra agreeing source, default 0.10
	MaxCorrelationBonus  float64 // default 0.30
	OrderingAdjustment   float64 // plausible/implausible build-up swing, default 0.05
	SubscriberBuffer     int     // default 16
}

func (c *Config) applyDefaults() {
	if c.DetectionWindow == 0 {
		c.DetectionWindow = 30
	}
	if c.BucketSeconds == 0 {
		c.BucketSeconds = 10
	}
	if c.OutputThreshold == 0 {
		c.OutputThreshold = 60
	}
	if c.MinConfidence == 0 {
		c.MinConfidence = 40
	}
	if c.CorroborationPenalty == 0 {
		c.CorroborationPenalty = 0.5
	}
	if c.CorrelationBonusStep == 0 {
		c.CorrelationBonusStep = 0.10
	}
	if c.MaxCorrelationBonus == 0 {
		c.MaxCorrelationBonus = 0.30
	}
	if c.OrderingAdjustment == 0 {
		c.OrderingAdjustment = 0.05
	}
	if c.SubscriberBuffer <= 0 {
		c.SubscriberBuffer = 16
	}
}

// Stats is the engine's observability snapshot.
type Stats struct {
	DetectionsProcessed int `json:"detections_processed"`
	DetectionsRejected  int `json:"detections_rejected"`
	CuesProcessed       int `json:"cues_processed"`
	FusionsAttempted    int `json:"fusions_attempted"`
	WarningsEmitted     int `json:"warnings_emitted"`
	Deduplicated        int `json:"deduplicated"`
	Suppressed          int `json:"suppressed"`
	BoostsApplied       int `json:"boosts_applied"`
	PenaltiesApplied    int `json:"penalties_applied"`
	WarningsDropped     int `json:"warnings_dropped"` // slow subscribers
}

// Engine fuses detections for one media session. Instances own all of their
// state; never share one across sessions. All methods are synchronous and
// intended for a single logical thread of control.
type Engine struct {
	cfg Config

	attn   *attention.Mechanism
	reg    *temporal.Regularizer
	calc   *bayes.Calculator
	esc    *escalation.Detector
	ctxan  *contextual.Analyzer
	recent []detection.Detection

	// emitted is the dedup registry: one warning per (category, bucket).
	emitted map[string]*detection.FusedWarning
	// lastByCategory tracks the most recent warning per category so a later
	// bucket can supersede it in the registry.
	lastByCategory map[category.Category]*detection.FusedWarning

	subs   map[string]chan detection.FusedWarning
	subSeq func() string

	stats Stats
	log   *zap.Logger
}

// Options collects the engine's collaborators. Nil fields are replaced with
// defaults so a zero Options still yields a working engine.
type Options struct {
	Attention   *attention.Mechanism
	Regularizer *temporal.Regularizer
	Calculator  *bayes.Calculator
	Escalation  *escalation.Detector
	Contextual  *contextual.Analyzer
	Logger      *zap.Logger
}

// New builds an engine for a single media session.
func New(cfg Config, opts Options) *Engine {
	cfg.applyDefaults()
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	e := &Engine{
		cfg:            cfg,
		attn:           opts.Attention,
		reg:            opts.Regularizer,
		calc:           opts.Calculator,
		esc:            opts.Escalation,
		ctxan:          opts.Contextual,
		emitted:        make(map[string]*detection.FusedWarning),
		lastByCategory: make(map[category.Category]*detection.FusedWarning),
		subs:           make(map[string]chan detection.FusedWarning),
		subSeq:         newSubID,
		log:            log.With(zap.String("component", "fusion")),
	}
	if e.attn == nil {
		e.attn = attention.New(attention.Config{}, log)
	}
	if e.reg == nil {
		e.reg = temporal.New(temporal.Config{}, temporal.DefaultSceneAdjustments(), log)
	}
	if e.calc == nil {
		e.calc = bayes.NewDefault(log)
	}
	if e.esc == nil {
		e.esc = escalation.New(escalation.DefaultPatterns(), log)
	}
	if e.ctxan == nil {
		e.ctxan = contextual.New(contextual.Config{})
	}
	return e
}

// AddDetection validates, buffers, and fuses one detection. Malformed
// detections are rejected before touching any buffer; unknown categories
// are processed on the degraded neutral path, not refused.
func (e *Engine) AddDetection(d detection.Detection) error {
	if err := d.Validate(); err != nil {
		e.stats.DetectionsRejected++
		return err
	}
	if !category.Known(d.Category) {
		e.log.Warn("processing unknown category on degraded path", zap.String("category", string(d.Category)))
	}
	e.stats.DetectionsProcessed++
	e.recent = append(e.recent, d)
	e.pruneRecent(d.Timestamp)
	e.attemptFusion(d)
	return nil
}

// AddTextDetection runs the contextual analyzer over a subtitle/text match
// and, unless the match is rejected outright, feeds the adjusted confidence
// into the engine as a text detection.
func (e *Engine) AddTextDetection(cat category.Category, t float64, in contextual.Input) (contextual.Result, error) {
	res := e.ctxan.Analyze(in)
	if res.Rejected || res.Confidence <= 0 {
		return res, nil
	}
	err := e.AddDetection(detection.Detection{
		Source:      category.SourceText,
		Category:    cat,
		Timestamp:   t,
		Confidence:  res.Confidence,
		Evidence:    in.Keyword,
		Description: in.Text,
	})
	return res, err
}

// AddCue feeds one raw subtitle cue to the escalation detector; pattern
// firings re-enter the engine as temporal-pattern detections.
func (e *Engine) AddCue(text string, t float64) error {
	e.stats.CuesProcessed++
	for _, w := range e.esc.AddCue(text, t) {
		err := e.AddDetection(detection.Detection{
			Source:      category.SourceTemporalPattern,
			Category:    w.Category,
			Timestamp:   w.EndTime,
			Confidence:  w.Confidence,
			Evidence:    w.Pattern,
			Description: fmt.Sprintf("escalation pattern %q (%d/%d phases)", w.Pattern, w.MatchedPhases, w.TotalPhases),
		})
		if err != nil {
			return errors.Wrapf(err, "escalation firing %q", w.Pattern)
		}
	}
	return nil
}

// AddSceneContext registers a scene interval with the regularizer.
func (e *Engine) AddSceneContext(s detection.SceneContext) {
	e.reg.AddScene(s)
}

// RecordFeedback folds a labeled outcome into the attention mechanism.
func (e *Engine) RecordFeedback(cat category.Category, outcome attention.Outcome, contributions map[category.Modality]float64) {
	e.attn.UpdateLearnedWeights(cat, outcome, contributions)
}

// Weights exposes the current learned weights for a category.
func (e *Engine) Weights(cat category.Category) map[category.Modality]float64 {
	return e.attn.Weights(cat)
}

// Stats returns the engine's counters, merged with the regularizer's.
func (e *Engine) Stats() Stats {
	s := e.stats
	boosts, penalties, suppressed := e.reg.Counters()
	s.BoostsApplied = boosts
	s.PenaltiesApplied = penalties
	s.Suppressed += suppressed
	return s
}

// Warnings returns every warning emitted so far, ordered by start time.
func (e *Engine) Warnings() []detection.FusedWarning {
	out := make([]detection.FusedWarning, 0, len(e.emitted))
	for _, w := range e.emitted {
		out = append(out, *w)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].StartTime != out[j].StartTime {
			return out[i].StartTime < out[j].StartTime
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (e *Engine) pruneRecent(now float64) {
	cutoff := now - e.cfg.DetectionWindow
	i := 0
	for i < len(e.recent) && e.recent[i].Timestamp < cutoff {
		i++
	}
	if i > 0 {
		e.recent = append(e.recent[:0], e.recent[i:]...)
	}
}

// attemptFusion combines d with buffered related detections and decides
// whether a fused warning should surface.
func (e *Engine) attemptFusion(d detection.Detection) {
	e.stats.FusionsAttempted++

	contributors := e.relatedDetections(d)

	// Escalation firings arrive pre-calibrated: the detector already scaled
	// its base confidence by the matched-phase fraction. Re-deriving a
	// posterior from the category prior would crush a lone firing, so they
	// skip the evidence combination and go straight to the temporal gate.
	if d.Source == category.SourceTemporalPattern {
		res := e.reg.Regularize(d, d.Timestamp)
		if res.ShouldWarn && res.Regularized >= e.cfg.OutputThreshold {
			e.emit(d, contributors, res.Regularized)
		}
		return
	}

	// Per-modality evidence: strongest confidence per channel, scaled by
	// the attention weights relative to an equal split so trusted channels
	// move the odds further.
	byModality := make(map[category.Modality]float64, 3)
	inputConf := make(map[category.Modality]float64, 3)
	for _, c := range contributors {
		mod := c.Modality()
		if c.Confidence > byModality[mod] {
			byModality[mod] = c.Confidence
			inputConf[mod] = c.Confidence
		}
	}
	weights := e.attn.ComputeAttention(d.Category, nil, inputConf)

	ev := make(bayes.Evidence, len(byModality))
	for mod, conf := range byModality {
		scaled := (conf / 100) * (weights[mod] * 3)
		ev[mod] = bayes.EvidenceItem{State: bayes.StateTrue, Confidence: clamp01(scaled)}
	}

	combined := e.calc.Posterior(d.Category, ev) * 100

	// Visually observable categories need a second modality before a
	// single-channel claim is taken at face value.
	if category.RequiresVisualCorroboration(d.Category) && len(byModality) < 2 {
		combined *= e.cfg.CorroborationPenalty
	}

	combined *= e.correlationBonus(contributors)
	combined *= e.orderingAdjustment(contributors)
	combined = clamp(combined, 0, 100)

	// False-positive screen: a lone low-confidence claim never surfaces.
	// Counted here only; Observe keeps the evidence in history without
	// running it through the regularizer's own counters.
	if len(contributors) == 1 && combined < e.cfg.MinConfidence {
		e.stats.Suppressed++
		e.reg.Observe(d, d.Timestamp)
		return
	}

	fusedInput := d
	fusedInput.Confidence = combined
	res := e.reg.Regularize(fusedInput, d.Timestamp)
	if !res.ShouldWarn || res.Regularized < e.cfg.OutputThreshold {
		return
	}

	e.emit(d, contributors, res.Regularized)
}

// relatedDetections returns the buffered detections sharing the same or a
// related category, always including d itself.
func (e *Engine) relatedDetections(d detection.Detection) []detection.Detection {
	var out []detection.Detection
	for _, c := range e.recent {
		if category.AreRelated(d.Category, c.Category) {
			out = append(out, c)
		}
	}
	return out
}

// correlationBonus rewards independently agreeing sources, diminishing and
// capped.
func (e *Engine) correlationBonus(contributors []detection.Detection) float64 {
	sources := make(map[category.Source]struct{}, len(contributors))
	for _, c := range contributors {
		sources[c.Source] = struct{}{}
	}
	n := len(sources)
	if n <= 1 {
		return 1
	}
	bonus := e.cfg.CorrelationBonusStep * float64(n-1)
	if bonus > e.cfg.MaxCorrelationBonus {
		bonus = e.cfg.MaxCorrelationBonus
	}
	return 1 + bonus
}

// orderingAdjustment nudges the confidence by whether the evidence ordering
// matches a plausible build-up: a textual warning followed by audio/visual
// corroboration is plausible; text arriving last, alone, is not.
func (e *Engine) orderingAdjustment(contributors []detection.Detection) float64 {
	var firstText, firstOther, lastText, lastOther = math.Inf(1), math.Inf(1), math.Inf(-1), math.Inf(-1)
	for _, c := range contributors {
		if c.Modality() == category.ModalityText {
			firstText = math.Min(firstText, c.Timestamp)
			lastText = math.Max(lastText, c.Timestamp)
		} else {
			firstOther = math.Min(firstOther, c.Timestamp)
			lastOther = math.Max(lastOther, c.Timestamp)
		}
	}
	if math.IsInf(firstText, 1) || math.IsInf(firstOther, 1) {
		return 1 // single-channel evidence carries no ordering signal
	}
	if firstText <= firstOther {
		return 1 + e.cfg.OrderingAdjustment
	}
	if firstText > lastOther {
		return 1 - e.cfg.OrderingAdjustment
	}
	return 1
}

func (e *Engine) emit(d detection.Detection, contributors []detection.Detection, confidence float64) {
	bucket := detection.Bucket(d.Timestamp, e.cfg.BucketSeconds)
	id := detection.WarningID(d.Category, bucket)
	if _, exists := e.emitted[id]; exists {
		e.stats.Deduplicated++
		return
	}

	start, end := d.Timestamp, d.Timestamp
	sourceSet := make(map[category.Source]struct{}, len(contributors))
	for _, c := range contributors {
		start = math.Min(start, c.Timestamp)
		end = math.Max(end, c.Timestamp)
		sourceSet[c.Source] = struct{}{}
	}
	sources := make([]category.Source, 0, len(sourceSet))
	for s := range sourceSet {
		sources = append(sources, s)
	}
	sort.Slice(sources, func(i, j int) bool { return sources[i] < sources[j] })

	desc := d.Description
	if desc == "" {
		desc = fmt.Sprintf("%s content detected (%d sources)", d.Category, len(sources))
	}

	w := &detection.FusedWarning{
		ID:          id,
		Category:    d.Category,
		StartTime:   start,
		EndTime:     end,
		Confidence:  math.Round(confidence),
		Status:      detection.StatusActive,
		Sources:     sources,
		Description: desc,
	}

	// A later bucket supersedes the category's previous warning in the
	// registry; already-delivered copies stay untouched.
	if prev, ok := e.lastByCategory[d.Category]; ok && prev.ID != id {
		prev.Status = detection.StatusSuperseded
	}
	e.emitted[id] = w
	e.lastByCategory[d.Category] = w
	e.stats.WarningsEmitted++

	e.log.Info("fused warning emitted",
		zap.String("id", id),
		zap.String("category", string(d.Category)),
		zap.Float64("confidence", w.Confidence),
		zap.Int("sources", len(sources)),
	)

	for _, ch := range e.subs {
		select {
		case ch <- *w:
		default:
			e.stats.WarningsDropped++
		}
	}
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

func clamp01(v float64) float64 {
	return clamp(v, 0, 1)
}
