package contextual

import "testing"

func analyze(t *testing.T, in Input) Result {
	t.Helper()
	return New(Config{}).Analyze(in)
}

func TestNegationReducesConfidence(t *testing.T) {
	res := analyze(t, Input{
		Text:           "There was no blood at all",
		Keyword:        "blood",
		BaseConfidence: 80,
	})
	if !res.Negated {
		t.Fatalf("expected negation flag, got %+v", res)
	}
	if res.Confidence != 20 {
		t.Fatalf("expected 80*0.25 = 20, got %v", res.Confidence)
	}
}

func TestNegationVerb(t *testing.T) {
	res := analyze(t, Input{
		Text:           "The medics prevented the overdose",
		Keyword:        "overdose",
		BaseConfidence: 60,
	})
	if !res.Negated {
		t.Fatalf("negation-reducing verb should count: %+v", res)
	}
	if res.Confidence != 15 {
		t.Fatalf("expected 60*0.25 = 15, got %v", res.Confidence)
	}
}

func TestWordBoundaryHardReject(t *testing.T) {
	res := analyze(t, Input{
		Text:                "We drove through Sussex on holiday",
		Keyword:             "sex",
		BaseConfidence:      90,
		RequireWordBoundary: true,
	})
	if !res.Rejected {
		t.Fatalf("substring inside another word must be rejected: %+v", res)
	}
	if res.Confidence != 0 {
		t.Fatalf("rejected match must carry zero confidence, got %v", res.Confidence)
	}
}

func TestWordBoundaryAcceptsWholeWord(t *testing.T) {
	res := analyze(t, Input{
		Text:                "The scene contains sex and nudity",
		Keyword:             "sex",
		BaseConfidence:      75,
		RequireWordBoundary: true,
	})
	if res.Rejected {
		t.Fatalf("whole-word match should not be rejected")
	}
	if res.Confidence != 75 {
		t.Fatalf("no stage should fire here, got %v", res.Confidence)
	}
}

func TestPastTenseSoftens(t *testing.T) {
	res := analyze(t, Input{
		Text:           "Years ago he was shot in the war",
		Keyword:        "shot",
		BaseConfidence: 70,
	})
	if !res.PastTense {
		t.Fatalf("expected past-tense flag: %+v", res)
	}
	if res.Confidence != 56 {
		t.Fatalf("expected 70*0.8 = 56, got %v", res.Confidence)
	}
}

func TestPresentTenseNotSoftened(t *testing.T) {
	res := analyze(t, Input{
		Text:           "He is bleeding right now there is blood everywhere",
		Keyword:        "blood",
		BaseConfidence: 70,
	})
	if res.PastTense {
		t.Fatalf("present framing must not soften: %+v", res)
	}
	if res.Confidence != 70 {
		t.Fatalf("expected 70, got %v", res.Confidence)
	}
}

func TestEducationalFraming(t *testing.T) {
	res := analyze(t, Input{
		Text:           "suicide prevention hotline information follows",
		Keyword:        "suicide",
		BaseConfidence: 90,
	})
	if !res.Educational {
		t.Fatalf("expected educational flag: %+v", res)
	}
	if res.Confidence != 63 {
		t.Fatalf("expected 90*0.7 = 63, got %v", res.Confidence)
	}
}

func TestHypotheticalFraming(t *testing.T) {
	res := analyze(t, Input{
		Text:           "imagine a gun",
		Keyword:        "gun",
		BaseConfidence: 50,
	})
	if !res.Hypothetical {
		t.Fatalf("expected hypothetical flag: %+v", res)
	}
	if res.Confidence != 30 {
		t.Fatalf("expected 50*0.6 = 30, got %v", res.Confidence)
	}
}

func TestRelatedDensityBonus(t *testing.T) {
	res := analyze(t, Input{
		Text:           "He grabbed the knife and the gun before the attack",
		Keyword:        "knife",
		BaseConfidence: 60,
	})
	if res.RelatedCount != 2 {
		t.Fatalf("expected 2 related triggers, got %d", res.RelatedCount)
	}
	// 1 + 0.15*(2-1) = 1.15
	if res.Confidence != 69 {
		t.Fatalf("expected 69, got %v", res.Confidence)
	}
}

func TestSingleRelatedTriggerNoBonus(t *testing.T) {
	res := analyze(t, Input{
		Text:           "He grabbed the knife and the gun",
		Keyword:        "knife",
		BaseConfidence: 60,
	})
	if res.Confidence != 60 {
		t.Fatalf("one extra trigger should not raise confidence, got %v", res.Confidence)
	}
}

func TestConfidenceClampedTo100(t *testing.T) {
	res := analyze(t, Input{
		Text:           "blood knife gun kill attack scream",
		Keyword:        "blood",
		BaseConfidence: 90,
	})
	if res.Confidence != 100 {
		t.Fatalf("expected clamp at 100, got %v", res.Confidence)
	}
}

func TestBaseConfidenceClamped(t *testing.T) {
	if res := analyze(t, Input{Text: "blood", Keyword: "blood", BaseConfidence: -5}); res.Confidence != 0 {
		t.Fatalf("negative base should clamp to 0, got %v", res.Confidence)
	}
	if res := analyze(t, Input{Text: "blood", Keyword: "blood", BaseConfidence: 150}); res.Confidence != 100 {
		t.Fatalf("oversized base should clamp to 100, got %v", res.Confidence)
	}
}

func TestEmptyInputPassesThrough(t *testing.T) {
	res := analyze(t, Input{Text: "", Keyword: "blood", BaseConfidence: 40})
	if res.Confidence != 40 || res.Rejected {
		t.Fatalf("empty text should pass base through: %+v", res)
	}
	res = analyze(t, Input{Text: "some blood here", Keyword: "", BaseConfidence: 40})
	if res.Confidence != 40 {
		t.Fatalf("empty keyword should pass base through: %+v", res)
	}
}

func TestStagesComposeInOrder(t *testing.T) {
	// Negated and hypothetical at once: 80 * 0.25 * 0.6 = 12.
	res := analyze(t, Input{
		Text:           "suppose there was no blood",
		Keyword:        "blood",
		BaseConfidence: 80,
	})
	if !res.Negated || !res.Hypothetical {
		t.Fatalf("expected both flags: %+v", res)
	}
	if res.Confidence != 12 {
		t.Fatalf("expected 12, got %v", res.Confidence)
	}
	if len(res.StagesApplied) != 2 {
		t.Fatalf("expected 2 applied stages, got %v", res.StagesApplied)
	}
	if res.StagesApplied[0] != "negation" || res.StagesApplied[1] != "hypothetical" {
		t.Fatalf("stage order wrong: %v", res.StagesApplied)
	}
}
