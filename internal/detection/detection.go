// Package detection holds the core domain model: the per-sensor Detection
// event, the fused warning emitted after confidence calibration, and the
// optional scene context supplied by the host player.
package detection

import (
	"fmt"
	"math"

	"github.com/cockroachdb/errors"

	"github.com/viewguard/viewguard/internal/category"
)

// ErrInvalidDetection marks a detection rejected at the boundary. Malformed
// events are never buffered; callers get the reason synchronously.
var ErrInvalidDetection = errors.New("invalid detection")

// Detection is a single timestamped, confidence-scored claim from one
// sensor about one content category. Immutable once created.
type Detection struct {
	Source     category.Source   `json:"source"`
	Category   category.Category `json:"category"`
	Timestamp  float64           `json:"timestamp"`  // seconds into the media
	Confidence float64           `json:"confidence"` // 0-100
	Evidence   string            `json:"evidence,omitempty"`
	// Description is the draft warning text the sensor proposes; the fused
	// warning may reuse or replace it.
	Description string `json:"description,omitempty"`
}

// Validate rejects malformed detections before they can corrupt buffers.
func (d Detection) Validate() error {
	if !category.KnownSource(d.Source) {
		return errors.Wrapf(ErrInvalidDetection, "unknown source %q", d.Source)
	}
	if d.Category == "" {
		return errors.Wrap(ErrInvalidDetection, "empty category")
	}
	if math.IsNaN(d.Timestamp) || math.IsInf(d.Timestamp, 0) || d.Timestamp < 0 {
		return errors.Wrapf(ErrInvalidDetection, "bad timestamp %v", d.Timestamp)
	}
	if math.IsNaN(d.Confidence) || d.Confidence < 0 || d.Confidence > 100 {
		return errors.Wrapf(ErrInvalidDetection, "confidence %v outside [0,100]", d.Confidence)
	}
	return nil
}

// Modality returns the evidence channel this detection belongs to.
func (d Detection) Modality() category.Modality {
	return category.ModalityOf(d.Source)
}

// WarningStatus tracks a fused warning's lifecycle.
type WarningStatus string

const (
	StatusActive     WarningStatus = "active"
	StatusSuperseded WarningStatus = "superseded"
)

// FusedWarning is the deduplicated, calibrated output for one category and
// time bucket. Never mutated after emission; a later bucket supersedes it.
type FusedWarning struct {
	ID          string            `json:"id"`
	Category    category.Category `json:"category"`
	StartTime   float64           `json:"start_time"`
	EndTime     float64           `json:"end_time"`
	Confidence  float64           `json:"confidence_level"` // 0-100
	Status      WarningStatus     `json:"status"`
	Sources     []category.Source `json:"sources,omitempty"`
	Description string            `json:"description,omitempty"`
}

// Bucket rounds a media timestamp down to its dedup bucket.
func Bucket(timestamp, bucketSeconds float64) int64 {
	if bucketSeconds <= 0 {
		bucketSeconds = 10
	}
	return int64(math.Floor(timestamp / bucketSeconds))
}

// WarningID derives the deterministic identity for a (category, bucket)
// pair. Re-emitting the same bucket always yields the same id, which is
// what makes emission idempotent.
func WarningID(c category.Category, bucket int64) string {
	return fmt.Sprintf("%s-%d", c, bucket)
}

// SceneContext is an externally supplied label for a span of the media,
// used only as an optional multiplicative adjustment during regularization.
type SceneContext struct {
	SceneType string  `json:"scene_type"`
	Start     float64 `json:"start"`
	End       float64 `json:"end"`
}

// Covers reports whether t falls inside the scene interval.
func (s SceneContext) Covers(t float64) bool {
	return t >= s.Start && t <= s.End
}
