// Package replay drives a fusion engine from a JSONL event stream, one
// envelope per line. It exists for offline runs: re-scoring a recorded
// session, smoke-testing a config, benchmarking.
package replay

import (
	"bufio"
	"encoding/json"
	"io"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/viewguard/viewguard/internal/attention"
	"github.com/viewguard/viewguard/internal/category"
	"github.com/viewguard/viewguard/internal/detection"
	"github.com/viewguard/viewguard/internal/fusion"
)

// Event is one line of a replay stream. Type selects which payload field is
// read; the others stay nil.
type Event struct {
	Type      string                  `json:"type"` // detection | cue | scene | feedback
	Detection *detection.Detection    `json:"detection,omitempty"`
	Cue       *CueEvent               `json:"cue,omitempty"`
	Scene     *detection.SceneContext `json:"scene,omitempty"`
	Feedback  *FeedbackEvent          `json:"feedback,omitempty"`
}

// CueEvent is a raw subtitle cue for the escalation detector.
type CueEvent struct {
	Text string  `json:"text"`
	Time float64 `json:"time"`
}

// FeedbackEvent is a labeled outcome for the attention mechanism.
type FeedbackEvent struct {
	Category      category.Category             `json:"category"`
	Outcome       attention.Outcome             `json:"outcome"`
	Contributions map[category.Modality]float64 `json:"contributions"`
}

// Summary reports what a run applied.
type Summary struct {
	Lines      int
	Detections int
	Cues       int
	Scenes     int
	Feedback   int
	Rejected   int
}

// Run feeds every event from r into the engine in order. Invalid detections
// are counted and skipped — rejecting bad input is the engine's contract,
// not a reason to abort the stream. Malformed JSON aborts with the line
// number.
func Run(r io.Reader, eng *fusion.Engine, log *zap.Logger) (Summary, error) {
	if log == nil {
		log = zap.NewNop()
	}
	var sum Summary

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		sum.Lines++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var ev Event
		if err := json.Unmarshal(line, &ev); err != nil {
			return sum, errors.Wrapf(err, "line %d", sum.Lines)
		}

		switch ev.Type {
		case "detection":
			if ev.Detection == nil {
				return sum, errors.Newf("line %d: detection event without payload", sum.Lines)
			}
			sum.Detections++
			if err := eng.AddDetection(*ev.Detection); err != nil {
				sum.Rejected++
				log.Warn("detection rejected", zap.Int("line", sum.Lines), zap.Error(err))
			}
		case "cue":
			if ev.Cue == nil {
				return sum, errors.Newf("line %d: cue event without payload", sum.Lines)
			}
			sum.Cues++
			if err := eng.AddCue(ev.Cue.Text, ev.Cue.Time); err != nil {
				sum.Rejected++
				log.Warn("cue rejected", zap.Int("line", sum.Lines), zap.Error(err))
			}
		case "scene":
			if ev.Scene == nil {
				return sum, errors.Newf("line %d: scene event without payload", sum.Lines)
			}
			sum.Scenes++
			eng.AddSceneContext(*ev.Scene)
		case "feedback":
			if ev.Feedback == nil {
				return sum, errors.Newf("line %d: feedback event without payload", sum.Lines)
			}
			sum.Feedback++
			eng.RecordFeedback(ev.Feedback.Category, ev.Feedback.Outcome, ev.Feedback.Contributions)
		default:
			return sum, errors.Newf("line %d: unknown event type %q", sum.Lines, ev.Type)
		}
	}
	if err := scanner.Err(); err != nil {
		return sum, errors.Wrap(err, "read stream")
	}
	return sum, nil
}
