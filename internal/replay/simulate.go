package replay

import (
	"encoding/json"
	"io"
	"math/rand"

	"github.com/cockroachdb/errors"

	"github.com/viewguard/viewguard/internal/category"
	"github.com/viewguard/viewguard/internal/detection"
)

// Simulate writes a deterministic synthetic event stream: clustered
// multi-modal detections for a handful of categories, an escalation cue
// sequence, and a scene interval. Useful for smoke-testing a config end to
// end without recorded sensor output.
func Simulate(w io.Writer, seconds float64, seed int64) (int, error) {
	rng := rand.New(rand.NewSource(seed))
	enc := json.NewEncoder(w)
	n := 0
	write := func(ev Event) error {
		if err := enc.Encode(ev); err != nil {
			return errors.Wrap(err, "encode event")
		}
		n++
		return nil
	}

	clusters := []struct {
		cat     category.Category
		sources []category.Source
	}{
		{category.Violence, []category.Source{category.SourceText, category.SourceAudioWaveform, category.SourceVisual}},
		{category.Blood, []category.Source{category.SourceVisual, category.SourceText}},
		{category.LoudNoises, []category.Source{category.SourceAudioFrequency, category.SourceAudioWaveform}},
		{category.FlashingLights, []category.Source{category.SourcePhotosensitivity, category.SourceVisual}},
	}

	if err := write(Event{Type: "scene", Scene: &detection.SceneContext{SceneType: "battle", Start: 0, End: seconds / 2}}); err != nil {
		return n, err
	}

	for t := 5.0; t < seconds; t += 4 + rng.Float64()*8 {
		cl := clusters[rng.Intn(len(clusters))]
		base := 55 + rng.Float64()*35
		for i, src := range cl.sources {
			if i > 0 && rng.Float64() < 0.3 {
				continue // occasionally a modality stays silent
			}
			d := detection.Detection{
				Source:     src,
				Category:   cl.cat,
				Timestamp:  t + float64(i)*0.8,
				Confidence: clampConf(base + rng.Float64()*10 - 5),
			}
			if err := write(Event{Type: "detection", Detection: &d}); err != nil {
				return n, err
			}
		}
	}

	// One escalation arc near the end of the stream.
	cueStart := seconds * 0.7
	cues := []string{
		"I can't take this anymore",
		"there's only one way out for me",
		"goodbye everyone",
	}
	for i, text := range cues {
		ev := Event{Type: "cue", Cue: &CueEvent{Text: text, Time: cueStart + float64(i)*20}}
		if err := write(ev); err != nil {
			return n, err
		}
	}

	return n, nil
}

func clampConf(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
