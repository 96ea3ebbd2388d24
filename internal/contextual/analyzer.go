// Package contextual adjusts a single text detection's confidence using the
// linguistic context around the matched keyword. Adjustments run as a fixed,
// ordered list of named stages so each multiplier stays independently
// testable and the composition order is explicit.
package contextual

import (
	"math"
	"regexp"
	"strings"
)

// Input describes one keyword match to analyze.
type Input struct {
	Text                string
	Keyword             string
	BaseConfidence      float64 // 0-100
	RequireWordBoundary bool
}

// Result carries the adjusted confidence plus the flags each stage set,
// used both to gate emission and for diagnostic summaries.
type Result struct {
	Confidence    float64  `json:"confidence"`
	Rejected      bool     `json:"rejected"` // word-boundary hard reject
	Negated       bool     `json:"negated"`
	PastTense     bool     `json:"past_tense"`
	Educational   bool     `json:"educational"`
	Hypothetical  bool     `json:"hypothetical"`
	RelatedCount  int      `json:"related_count"`
	StagesApplied []string `json:"stages_applied,omitempty"`
}

// Config holds the word lists and multipliers driving each stage. Zero
// values fall back to the built-in defaults.
type Config struct {
	NegationWords      []string
	NegationVerbs      []string
	PastIndicators     []string
	PresentIndicators  []string
	FutureIndicators   []string
	EducationalPhrases []string
	HypotheticalCues   []string
	TriggerWords       []string // vocabulary for the related-density bonus

	NegationFactor     float64 // default 0.25
	PastTenseFactor    float64 // default 0.8
	EducationalFactor  float64 // default 0.7
	HypotheticalFactor float64 // default 0.6
	RelatedBonusStep   float64 // default 0.15 per extra trigger word
	LookbackWords      int     // default 5
	TenseWindowWords   int     // default 10
}

// Analyzer applies the contextual adjustment pipeline.
type Analyzer struct {
	cfg    Config
	stages []stage
}

type stage struct {
	name  string
	apply func(*matchContext, *Result) float64 // returns a multiplier
}

// New builds an analyzer, filling unset config fields with defaults.
func New(cfg Config) *Analyzer {
	applyDefaults(&cfg)
	a := &Analyzer{cfg: cfg}
	a.stages = []stage{
		{name: "negation", apply: a.negationStage},
		{name: "past_tense", apply: a.tenseStage},
		{name: "educational", apply: a.educationalStage},
		{name: "hypothetical", apply: a.hypotheticalStage},
		{name: "related_density", apply: a.relatedStage},
	}
	return a
}

func applyDefaults(cfg *Config) {
	if len(cfg.NegationWords) == 0 {
		cfg.NegationWords = []string{"no", "not", "never", "without", "none", "neither", "nor", "hardly", "isn't", "wasn't", "don't", "didn't", "can't", "won't"}
	}
	if len(cfg.NegationVerbs) == 0 {
		cfg.NegationVerbs = []string{"prevent", "prevents", "prevented", "avoid", "avoids", "avoided", "stop", "stops", "stopped", "refuse", "refused"}
	}
	if len(cfg.PastIndicators) == 0 {
		// Bare auxiliaries ("was", "did") are too ambiguous to count; only
		// explicit past framing moves the needle.
		cfg.PastIndicators = []string{"ago", "yesterday", "back then", "used to", "had been", "last year", "last night", "remembered", "in the past"}
	}
	if len(cfg.PresentIndicators) == 0 {
		cfg.PresentIndicators = []string{"is", "are", "am", "now", "currently", "happening", "right now", "tonight"}
	}
	if len(cfg.FutureIndicators) == 0 {
		cfg.FutureIndicators = []string{"will", "shall", "going to", "tomorrow", "soon", "about to"}
	}
	if len(cfg.EducationalPhrases) == 0 {
		cfg.EducationalPhrases = []string{
			"hotline", "seek help", "if you or someone", "warning signs",
			"prevention", "awareness", "documentary", "for more information",
			"talk to someone", "reach out", "crisis line", "988", "samaritans",
		}
	}
	if len(cfg.HypotheticalCues) == 0 {
		cfg.HypotheticalCues = []string{"what if", "imagine", "suppose", "hypothetically", "pretend", "in theory", "let's say"}
	}
	if len(cfg.TriggerWords) == 0 {
		cfg.TriggerWords = []string{
			"blood", "knife", "gun", "kill", "die", "dead", "hurt", "cut",
			"shot", "stab", "scream", "attack", "beat", "choke", "drown",
			"overdose", "pills", "suicide", "hang", "burn", "wound", "corpse",
		}
	}
	if cfg.NegationFactor == 0 {
		cfg.NegationFactor = 0.25
	}
	if cfg.PastTenseFactor == 0 {
		cfg.PastTenseFactor = 0.8
	}
	if cfg.EducationalFactor == 0 {
		cfg.EducationalFactor = 0.7
	}
	if cfg.HypotheticalFactor == 0 {
		cfg.HypotheticalFactor = 0.6
	}
	if cfg.RelatedBonusStep == 0 {
		cfg.RelatedBonusStep = 0.15
	}
	if cfg.LookbackWords == 0 {
		cfg.LookbackWords = 5
	}
	if cfg.TenseWindowWords == 0 {
		cfg.TenseWindowWords = 10
	}
}

// matchContext is the tokenized view of one input, shared across stages.
type matchContext struct {
	lowerText  string
	words      []string
	keywordIdx int // index of the matched keyword in words, -1 if absent
	keyword    string
}

var wordSplit = regexp.MustCompile(`[^a-z0-9']+`)

func tokenize(text string) []string {
	parts := wordSplit.Split(strings.ToLower(text), -1)
	out := parts[:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Analyze runs the full pipeline on one keyword match.
func (a *Analyzer) Analyze(in Input) Result {
	res := Result{Confidence: clamp100(in.BaseConfidence)}
	keyword := strings.ToLower(strings.TrimSpace(in.Keyword))
	if keyword == "" || in.Text == "" {
		return res
	}

	if in.RequireWordBoundary && !matchesWholeWord(in.Text, keyword) {
		// Hard reject: "sex" inside "Sussex" is not a match at all.
		return Result{Confidence: 0, Rejected: true}
	}

	mc := &matchContext{
		lowerText: strings.ToLower(in.Text),
		words:     tokenize(in.Text),
		keyword:   keyword,
	}
	mc.keywordIdx = -1
	kwFirst := tokenize(keyword)
	if len(kwFirst) > 0 {
		for i, w := range mc.words {
			if w == kwFirst[0] {
				mc.keywordIdx = i
				break
			}
		}
	}

	conf := res.Confidence
	for _, s := range a.stages {
		mult := s.apply(mc, &res)
		if mult != 1 {
			res.StagesApplied = append(res.StagesApplied, s.name)
		}
		conf *= mult
		if conf > 100 {
			conf = 100
		}
	}
	res.Confidence = clamp100(math.Round(conf))
	return res
}

func matchesWholeWord(text, keyword string) bool {
	re, err := regexp.Compile(`(?i)\b` + regexp.QuoteMeta(keyword) + `\b`)
	if err != nil {
		return false
	}
	return re.MatchString(text)
}

// negationStage looks back a bounded number of words for negation words or
// negation-reducing verbs.
func (a *Analyzer) negationStage(mc *matchContext, res *Result) float64 {
	if mc.keywordIdx < 0 {
		return 1
	}
	start := mc.keywordIdx - a.cfg.LookbackWords
	if start < 0 {
		start = 0
	}
	for _, w := range mc.words[start:mc.keywordIdx] {
		if containsWord(a.cfg.NegationWords, w) || containsWord(a.cfg.NegationVerbs, w) {
			res.Negated = true
			return a.cfg.NegationFactor
		}
	}
	return 1
}

// tenseStage compares past/present/future indicator counts in a window
// around the keyword; a past majority softens the confidence.
func (a *Analyzer) tenseStage(mc *matchContext, res *Result) float64 {
	if mc.keywordIdx < 0 {
		return 1
	}
	start := mc.keywordIdx - a.cfg.TenseWindowWords
	if start < 0 {
		start = 0
	}
	end := mc.keywordIdx + a.cfg.TenseWindowWords + 1
	if end > len(mc.words) {
		end = len(mc.words)
	}
	window := strings.Join(mc.words[start:end], " ")

	past := countIndicators(window, a.cfg.PastIndicators)
	present := countIndicators(window, a.cfg.PresentIndicators)
	future := countIndicators(window, a.cfg.FutureIndicators)
	if past > present && past > future {
		res.PastTense = true
		return a.cfg.PastTenseFactor
	}
	return 1
}

// educationalStage checks the whole text for informative framing such as
// hotline references.
func (a *Analyzer) educationalStage(mc *matchContext, res *Result) float64 {
	for _, p := range a.cfg.EducationalPhrases {
		if strings.Contains(mc.lowerText, p) {
			res.Educational = true
			return a.cfg.EducationalFactor
		}
	}
	return 1
}

// hypotheticalStage looks back a bounded number of words for hypothetical
// framing markers.
func (a *Analyzer) hypotheticalStage(mc *matchContext, res *Result) float64 {
	if mc.keywordIdx < 0 {
		return 1
	}
	start := mc.keywordIdx - a.cfg.LookbackWords
	if start < 0 {
		start = 0
	}
	preceding := strings.Join(mc.words[start:mc.keywordIdx], " ")
	for _, cue := range a.cfg.HypotheticalCues {
		if strings.Contains(preceding, cue) {
			res.Hypothetical = true
			return a.cfg.HypotheticalFactor
		}
	}
	return 1
}

// relatedStage counts other distinct trigger words in the text; more than
// one raises confidence by a diminishing bonus.
func (a *Analyzer) relatedStage(mc *matchContext, res *Result) float64 {
	count := 0
	for _, trigger := range a.cfg.TriggerWords {
		if trigger == mc.keyword {
			continue
		}
		if containsWord(mc.words, trigger) {
			count++
		}
	}
	res.RelatedCount = count
	if count > 1 {
		return 1 + a.cfg.RelatedBonusStep*float64(count-1)
	}
	return 1
}

func countIndicators(window string, indicators []string) int {
	n := 0
	for _, ind := range indicators {
		if strings.Contains(ind, " ") {
			if strings.Contains(window, ind) {
				n++
			}
			continue
		}
		for _, w := range strings.Fields(window) {
			if w == ind {
				n++
			}
		}
	}
	return n
}

func containsWord(words []string, w string) bool {
	for _, x := range words {
		if x == w {
			return true
		}
	}
	return false
}

func clamp100(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
