package escalation

import (
	"math"
	"testing"

	"github.com/viewguard/viewguard/internal/category"
)

func addAll(d *Detector, cues []struct {
	text string
	t    float64
}) []Warning {
	var fired []Warning
	for _, c := range cues {
		fired = append(fired, d.AddCue(c.text, c.t)...)
	}
	return fired
}

func TestFullBuildupFiresInOrder(t *testing.T) {
	d := New(DefaultPatterns(), nil)

	fired := addAll(d, []struct {
		text string
		t    float64
	}{
		{"I just can't take this anymore", 10},
		{"maybe there's no other choice", 60},
		{"goodbye everyone", 120},
	})
	if len(fired) != 1 {
		t.Fatalf("expected exactly one firing, got %d", len(fired))
	}
	w := fired[0]
	if w.Pattern != "suicide_buildup" || w.Category != category.Suicide {
		t.Fatalf("wrong pattern fired: %+v", w)
	}
	if w.StartTime != 10 || w.EndTime != 120 {
		t.Fatalf("span = [%v,%v], want [10,120]", w.StartTime, w.EndTime)
	}
	if w.MatchedPhases != 3 || w.Confidence != 90 {
		t.Fatalf("expected full match at 90, got %+v", w)
	}
}

func TestOutOfOrderPhasesDoNotFire(t *testing.T) {
	d := New(DefaultPatterns(), nil)

	fired := addAll(d, []struct {
		text string
		t    float64
	}{
		{"goodbye everyone", 10},
		{"maybe there's no other choice", 60},
		{"I just can't take this anymore", 120},
	})
	if len(fired) != 0 {
		t.Fatalf("reversed phases must not fire, got %+v", fired)
	}
}

func TestPartialMatchScaledConfidence(t *testing.T) {
	d := New(DefaultPatterns(), nil)

	fired := addAll(d, []struct {
		text string
		t    float64
	}{
		{"this is your last warning", 5},
		{"I'll kill you for this", 30},
	})
	if len(fired) != 1 {
		t.Fatalf("expected one firing, got %d", len(fired))
	}
	w := fired[0]
	if w.Pattern != "violence_buildup" {
		t.Fatalf("wrong pattern: %+v", w)
	}
	if w.MatchedPhases != 2 || w.TotalPhases != 3 {
		t.Fatalf("expected 2/3 phases, got %+v", w)
	}
	want := 80.0 * 2 / 3
	if math.Abs(w.Confidence-want) > 1e-9 {
		t.Fatalf("confidence = %v, want %v", w.Confidence, want)
	}
}

func TestSameWindowFiresOnce(t *testing.T) {
	d := New(DefaultPatterns(), nil)

	first := addAll(d, []struct {
		text string
		t    float64
	}{
		{"can't take this", 10},
		{"no other choice", 60},
		{"goodbye", 120},
	})
	if len(first) != 1 {
		t.Fatalf("expected initial firing, got %d", len(first))
	}

	// A repeat cue inside the same window re-matches the same narrative.
	again := d.AddCue("goodbye again", 130)
	if len(again) != 0 {
		t.Fatalf("same-window re-match must stay silent, got %+v", again)
	}

	// A fresh sequence past the window fires independently.
	later := addAll(d, []struct {
		text string
		t    float64
	}{
		{"can't take this", 400},
		{"no other choice", 420},
		{"goodbye", 440},
	})
	if len(later) != 1 {
		t.Fatalf("new window should fire again, got %d", len(later))
	}
	if later[0].StartTime != 400 {
		t.Fatalf("second firing should span the new cues: %+v", later[0])
	}
}

func TestMalformedPatternsDropped(t *testing.T) {
	d := New([]Pattern{
		{Name: "no_phases", WindowSeconds: 60},
		{Name: "no_window", Phases: [][]string{{"x"}}},
	}, nil)
	if fired := d.AddCue("x", 1); len(fired) != 0 {
		t.Fatalf("malformed patterns must not fire, got %+v", fired)
	}
}

func TestMinimumPhasesNormalized(t *testing.T) {
	d := New([]Pattern{{
		Name:           "strict",
		Category:       category.Violence,
		Phases:         [][]string{{"a"}, {"b"}},
		WindowSeconds:  60,
		BaseConfidence: 50,
		// MinimumPhases 0 means all phases are required.
	}}, nil)
	if fired := d.AddCue("a", 1); len(fired) != 0 {
		t.Fatalf("single phase should not satisfy an all-phases pattern")
	}
	fired := d.AddCue("b", 2)
	if len(fired) != 1 || fired[0].Confidence != 50 {
		t.Fatalf("both phases matched, expected full-confidence firing: %+v", fired)
	}
}

func TestEmptyCueIgnored(t *testing.T) {
	d := New(DefaultPatterns(), nil)
	if fired := d.AddCue("   ", 5); fired != nil {
		t.Fatalf("blank cue should be ignored")
	}
	if d.BufferLen() != 0 {
		t.Fatalf("blank cue should not be buffered")
	}
}

func TestBufferPrunedToWindow(t *testing.T) {
	d := New(DefaultPatterns(), nil) // largest window is 180s
	d.AddCue("hello", 0)
	d.AddCue("hello", 200)
	d.AddCue("hello", 300)
	if d.BufferLen() != 2 {
		t.Fatalf("cue at t=0 should have been pruned, buffer=%d", d.BufferLen())
	}
}
