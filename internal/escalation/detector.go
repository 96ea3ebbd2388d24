// Package escalation recognizes ordered multi-phase narrative patterns in a
// stream of text cues, e.g. the build-up from despair to farewell language
// that precedes self-harm content. Patterns are static configuration; the
// detector owns only the cue buffer and per-pattern firing state.
package escalation

import (
	"strings"

	"go.uber.org/zap"

	"github.com/viewguard/viewguard/internal/category"
)

// Pattern describes one narrative escalation to watch for. Each phase is a
// set of alternative trigger phrases; the pattern fires when at least
// MinimumPhases match in time order inside WindowSeconds.
type Pattern struct {
	Name           string            `yaml:"name"`
	Category       category.Category `yaml:"category"`
	Phases         [][]string        `yaml:"phases"`
	MinimumPhases  int               `yaml:"minimum_phases"`
	WindowSeconds  float64           `yaml:"window_seconds"`
	BaseConfidence float64           `yaml:"base_confidence"`
}

// Warning is one pattern firing. Its span runs from the first matched cue
// to the last.
type Warning struct {
	Pattern       string            `json:"pattern"`
	Category      category.Category `json:"category"`
	StartTime     float64           `json:"start_time"`
	EndTime       float64           `json:"end_time"`
	Confidence    float64           `json:"confidence"`
	MatchedPhases int               `json:"matched_phases"`
	TotalPhases   int               `json:"total_phases"`
}

type cue struct {
	text string // lowercased
	time float64
}

// Detector buffers text cues and evaluates every configured pattern on each
// new arrival. Single-threaded, like the rest of the engine.
type Detector struct {
	patterns  []Pattern
	cues      []cue
	maxWindow float64
	// lastFired records the first-match time of each pattern's most recent
	// firing so overlapping re-matches inside the same window stay silent.
	lastFired map[string]float64
	log       *zap.Logger
}

// New builds a detector over the given patterns. Patterns with no phases or
// a non-positive window are dropped.
func New(patterns []Pattern, log *zap.Logger) *Detector {
	if log == nil {
		log = zap.NewNop()
	}
	d := &Detector{
		lastFired: make(map[string]float64),
		log:       log.With(zap.String("component", "escalation")),
	}
	for _, p := range patterns {
		if len(p.Phases) == 0 || p.WindowSeconds <= 0 {
			d.log.Warn("dropping malformed escalation pattern", zap.String("pattern", p.Name))
			continue
		}
		if p.MinimumPhases <= 0 || p.MinimumPhases > len(p.Phases) {
			p.MinimumPhases = len(p.Phases)
		}
		d.patterns = append(d.patterns, p)
		if p.WindowSeconds > d.maxWindow {
			d.maxWindow = p.WindowSeconds
		}
	}
	return d
}

// AddCue appends one (text, time) cue, prunes the buffer to the largest
// pattern window, and returns any pattern firings the cue completed.
func (d *Detector) AddCue(text string, t float64) []Warning {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	d.cues = append(d.cues, cue{text: strings.ToLower(text), time: t})
	d.prune(t)

	var fired []Warning
	for i := range d.patterns {
		if w, ok := d.evaluate(&d.patterns[i], t); ok {
			fired = append(fired, w)
			d.log.Info("escalation pattern fired",
				zap.String("pattern", w.Pattern),
				zap.String("category", string(w.Category)),
				zap.Float64("confidence", w.Confidence),
				zap.Int("matched_phases", w.MatchedPhases),
			)
		}
	}
	return fired
}

// BufferLen reports the current cue buffer size, for observability.
func (d *Detector) BufferLen() int { return len(d.cues) }

func (d *Detector) prune(now float64) {
	cutoff := now - d.maxWindow
	i := 0
	for i < len(d.cues) && d.cues[i].time < cutoff {
		i++
	}
	if i > 0 {
		d.cues = append(d.cues[:0], d.cues[i:]...)
	}
}

// evaluate greedily matches phases in order: the cue satisfying phase k must
// occur at or after the cue satisfying phase k-1. Missing phases are skipped
// without advancing the time cursor.
func (d *Detector) evaluate(p *Pattern, now float64) (Warning, bool) {
	windowStart := now - p.WindowSeconds

	matched := 0
	cursor := windowStart
	first, last := -1.0, -1.0
	for _, phase := range p.Phases {
		if t, ok := d.findPhase(phase, cursor); ok {
			matched++
			cursor = t
			if first < 0 {
				first = t
			}
			last = t
		}
	}
	if matched < p.MinimumPhases {
		return Warning{}, false
	}

	// One firing per pattern+window: a match whose span starts inside the
	// previously fired window is the same narrative, not a new one.
	if prev, ok := d.lastFired[p.Name]; ok && first < prev+p.WindowSeconds {
		return Warning{}, false
	}
	d.lastFired[p.Name] = first

	conf := p.BaseConfidence * float64(matched) / float64(len(p.Phases))
	if conf > 100 {
		conf = 100
	}
	return Warning{
		Pattern:       p.Name,
		Category:      p.Category,
		StartTime:     first,
		EndTime:       last,
		Confidence:    conf,
		MatchedPhases: matched,
		TotalPhases:   len(p.Phases),
	}, true
}

// findPhase returns the earliest buffered cue at or after the cursor that
// contains any of the phase's phrases.
func (d *Detector) findPhase(phrases []string, cursor float64) (float64, bool) {
	for _, c := range d.cues {
		if c.time < cursor {
			continue
		}
		for _, phrase := range phrases {
			if phrase != "" && strings.Contains(c.text, strings.ToLower(phrase)) {
				return c.time, true
			}
		}
	}
	return 0, false
}
