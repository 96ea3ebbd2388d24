package fusion

import (
	"math"
	"testing"

	"github.com/cockroachdb/errors"

	"github.com/viewguard/viewguard/internal/attention"
	"github.com/viewguard/viewguard/internal/category"
	"github.com/viewguard/viewguard/internal/contextual"
	"github.com/viewguard/viewguard/internal/detection"
)

func newTestEngine() *Engine {
	return New(Config{}, Options{})
}

func gore(src category.Source, t, conf float64) detection.Detection {
	return detection.Detection{Source: src, Category: category.Gore, Timestamp: t, Confidence: conf}
}

func TestRejectsInvalidDetection(t *testing.T) {
	e := newTestEngine()
	err := e.AddDetection(detection.Detection{
		Source:     category.SourceVisual,
		Category:   category.Gore,
		Timestamp:  5,
		Confidence: 150,
	})
	if err == nil {
		t.Fatalf("expected rejection")
	}
	if !errors.Is(err, detection.ErrInvalidDetection) {
		t.Fatalf("wrong error: %v", err)
	}
	s := e.Stats()
	if s.DetectionsRejected != 1 || s.DetectionsProcessed != 0 {
		t.Fatalf("stats after rejection: %+v", s)
	}
}

func TestLoneLowConfidenceClaimSuppressed(t *testing.T) {
	e := newTestEngine()
	if err := e.AddDetection(gore(category.SourceText, 4, 70)); err != nil {
		t.Fatalf("add: %v", err)
	}
	if got := len(e.Warnings()); got != 0 {
		t.Fatalf("uncorroborated text claim must not surface, got %d warnings", got)
	}
	if e.Stats().Suppressed == 0 {
		t.Fatalf("suppression should be counted")
	}
}

func TestCorroborationEmitsAndDeduplicates(t *testing.T) {
	e := newTestEngine()
	if err := e.AddDetection(gore(category.SourceText, 4, 70)); err != nil {
		t.Fatalf("add text: %v", err)
	}
	if err := e.AddDetection(gore(category.SourceVisual, 5, 90)); err != nil {
		t.Fatalf("add visual: %v", err)
	}

	warnings := e.Warnings()
	if len(warnings) != 1 {
		t.Fatalf("expected one fused warning, got %d", len(warnings))
	}
	w := warnings[0]
	if w.ID != "gore-0" {
		t.Fatalf("warning id = %q", w.ID)
	}
	if w.Status != detection.StatusActive {
		t.Fatalf("status = %q", w.Status)
	}
	if w.StartTime != 4 || w.EndTime != 5 {
		t.Fatalf("span = [%v,%v], want [4,5]", w.StartTime, w.EndTime)
	}
	if len(w.Sources) != 2 || w.Sources[0] != category.SourceText || w.Sources[1] != category.SourceVisual {
		t.Fatalf("sources = %v", w.Sources)
	}
	if math.Abs(w.Confidence-70) > 1 {
		t.Fatalf("confidence = %v, want ~70", w.Confidence)
	}

	// Same bucket fuses again but emits nothing new.
	if err := e.AddDetection(gore(category.SourceVisual, 6, 90)); err != nil {
		t.Fatalf("add repeat: %v", err)
	}
	s := e.Stats()
	if s.WarningsEmitted != 1 || s.Deduplicated != 1 {
		t.Fatalf("dedup stats: %+v", s)
	}
}

func TestLaterBucketSupersedes(t *testing.T) {
	e := newTestEngine()
	for _, d := range []detection.Detection{
		gore(category.SourceText, 4, 70),
		gore(category.SourceVisual, 5, 90),
		gore(category.SourceVisual, 15, 90),
	} {
		if err := e.AddDetection(d); err != nil {
			t.Fatalf("add: %v", err)
		}
	}
	warnings := e.Warnings()
	if len(warnings) != 2 {
		t.Fatalf("expected two warnings, got %d", len(warnings))
	}
	if warnings[0].ID != "gore-0" || warnings[0].Status != detection.StatusSuperseded {
		t.Fatalf("first warning should be superseded: %+v", warnings[0])
	}
	if warnings[1].ID != "gore-1" || warnings[1].Status != detection.StatusActive {
		t.Fatalf("second warning should be active: %+v", warnings[1])
	}
}

func TestSubscriberReceivesWarnings(t *testing.T) {
	e := newTestEngine()
	sub := e.Subscribe()

	_ = e.AddDetection(gore(category.SourceText, 4, 70))
	_ = e.AddDetection(gore(category.SourceVisual, 5, 90))

	select {
	case w := <-sub.C:
		if w.ID != "gore-0" {
			t.Fatalf("subscriber got %q", w.ID)
		}
	default:
		t.Fatalf("subscriber should have a buffered warning")
	}

	e.Unsubscribe(sub.ID)
	if _, open := <-sub.C; open {
		t.Fatalf("channel should be closed after unsubscribe")
	}
}

func TestSlowSubscriberDropsInsteadOfBlocking(t *testing.T) {
	e := New(Config{SubscriberBuffer: 1}, Options{})
	_ = e.Subscribe()

	for _, d := range []detection.Detection{
		gore(category.SourceText, 4, 70),
		gore(category.SourceVisual, 5, 90),
		gore(category.SourceVisual, 15, 90),
	} {
		_ = e.AddDetection(d)
	}

	s := e.Stats()
	if s.WarningsEmitted != 2 {
		t.Fatalf("expected 2 emissions, got %+v", s)
	}
	if s.WarningsDropped != 1 {
		t.Fatalf("second warning should be dropped for the full subscriber: %+v", s)
	}
}

func TestUnknownCategoryDegradedPath(t *testing.T) {
	e := newTestEngine()
	err := e.AddDetection(detection.Detection{
		Source:     category.SourceVisual,
		Category:   category.Category("deepfake"),
		Timestamp:  5,
		Confidence: 80,
	})
	if err != nil {
		t.Fatalf("unknown category must be processed, not refused: %v", err)
	}
	if e.Stats().DetectionsProcessed != 1 {
		t.Fatalf("degraded path should still count as processed")
	}
}

func TestAddTextDetection(t *testing.T) {
	e := newTestEngine()

	res, err := e.AddTextDetection(category.SexualContent, 10, contextual.Input{
		Text:                "We drove through Sussex on holiday",
		Keyword:             "sex",
		BaseConfidence:      90,
		RequireWordBoundary: true,
	})
	if err != nil {
		t.Fatalf("rejected match should not error: %v", err)
	}
	if !res.Rejected || e.Stats().DetectionsProcessed != 0 {
		t.Fatalf("rejected match must not enter the engine: %+v", res)
	}

	res, err = e.AddTextDetection(category.Blood, 10, contextual.Input{
		Text:           "blood everywhere on the knife and the gun after the attack",
		Keyword:        "blood",
		BaseConfidence: 80,
	})
	if err != nil {
		t.Fatalf("add text detection: %v", err)
	}
	if res.Confidence <= 80 {
		t.Fatalf("related triggers should have raised confidence, got %v", res.Confidence)
	}
	if e.Stats().DetectionsProcessed != 1 {
		t.Fatalf("adjusted match should enter the engine")
	}
}

func TestAddCueFeedsEscalation(t *testing.T) {
	e := newTestEngine()
	for _, c := range []struct {
		text string
		t    float64
	}{
		{"I just can't take this anymore", 10},
		{"maybe there's no other choice", 60},
		{"goodbye everyone", 120},
	} {
		if err := e.AddCue(c.text, c.t); err != nil {
			t.Fatalf("add cue: %v", err)
		}
	}
	s := e.Stats()
	if s.CuesProcessed != 3 {
		t.Fatalf("cues processed = %d", s.CuesProcessed)
	}
	// The pattern firing re-enters as a temporal-pattern detection.
	if s.DetectionsProcessed != 1 {
		t.Fatalf("escalation firing should become a detection: %+v", s)
	}

	// The firing's confidence is already calibrated; it must surface as a
	// warning without corroboration from other channels.
	warnings := e.Warnings()
	if len(warnings) != 1 {
		t.Fatalf("full build-up should surface a warning, got %d", len(warnings))
	}
	w := warnings[0]
	if w.Category != category.Suicide {
		t.Fatalf("warning category = %q", w.Category)
	}
	if w.Confidence != 90 {
		t.Fatalf("confidence = %v, want the firing confidence 90", w.Confidence)
	}
	if len(w.Sources) != 1 || w.Sources[0] != category.SourceTemporalPattern {
		t.Fatalf("sources = %v", w.Sources)
	}
	if s.WarningsEmitted != 1 || s.Suppressed != 0 {
		t.Fatalf("firing must not be screened: %+v", s)
	}
}

func TestScreenedClaimCountedOnce(t *testing.T) {
	e := newTestEngine()
	if err := e.AddDetection(gore(category.SourceText, 4, 50)); err != nil {
		t.Fatalf("add: %v", err)
	}
	s := e.Stats()
	if s.Suppressed != 1 {
		t.Fatalf("one screened claim should count one suppression, got %+v", s)
	}
	if len(e.Warnings()) != 0 {
		t.Fatalf("screened claim must not surface")
	}
}

func TestRecordFeedbackReachesAttention(t *testing.T) {
	e := newTestEngine()
	before := e.Weights(category.Blood)[category.ModalityVisual]
	e.RecordFeedback(category.Blood, attention.OutcomeIncorrect, map[category.Modality]float64{
		category.ModalityVisual: 1,
	})
	after := e.Weights(category.Blood)[category.ModalityVisual]
	if after >= before {
		t.Fatalf("incorrect feedback should reduce the visual weight: %v -> %v", before, after)
	}
}

func TestWarningsReturnsCopies(t *testing.T) {
	e := newTestEngine()
	_ = e.AddDetection(gore(category.SourceText, 4, 70))
	_ = e.AddDetection(gore(category.SourceVisual, 5, 90))

	warnings := e.Warnings()
	warnings[0].Confidence = 0
	if e.Warnings()[0].Confidence == 0 {
		t.Fatalf("mutating the returned slice must not touch the registry")
	}
}

func TestStatsMergesRegularizerCounters(t *testing.T) {
	e := newTestEngine()
	_ = e.AddDetection(gore(category.SourceText, 4, 70))
	_ = e.AddDetection(gore(category.SourceVisual, 5, 90))
	s := e.Stats()
	if s.BoostsApplied == 0 {
		t.Fatalf("adjacent agreement should register a boost: %+v", s)
	}
}
