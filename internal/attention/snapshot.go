package attention

import (
	"time"

	"github.com/viewguard/viewguard/internal/category"
)

// StateSnapshot is the serializable form of one category's learned state.
type StateSnapshot struct {
	Weights     map[category.Modality]float64 `json:"weights"`
	Performance map[category.Modality]float64 `json:"performance"`
	Correct     int                           `json:"correct"`
	Incorrect   int                           `json:"incorrect"`
	UpdatedAt   time.Time                     `json:"updated_at"`
}

// Snapshot captures every category's learned state. The engine does no
// storage I/O itself; callers persist and restore snapshots between
// sessions.
type Snapshot map[category.Category]StateSnapshot

// Snapshot copies the current learned state.
func (m *Mechanism) Snapshot() Snapshot {
	out := make(Snapshot, len(m.states))
	for cat, s := range m.states {
		ss := StateSnapshot{
			Weights:     make(map[category.Modality]float64, len(s.weights)),
			Performance: make(map[category.Modality]float64, len(s.performance)),
			Correct:     s.correct,
			Incorrect:   s.incorrect,
			UpdatedAt:   s.updatedAt,
		}
		for mod, w := range s.weights {
			ss.Weights[mod] = w
		}
		for mod, p := range s.performance {
			ss.Performance[mod] = p
		}
		out[cat] = ss
	}
	return out
}

// Restore replaces the learned state with a previously captured snapshot.
// Weights are re-clamped so a hand-edited snapshot cannot violate bounds.
func (m *Mechanism) Restore(snap Snapshot) {
	m.states = make(map[category.Category]*state, len(snap))
	for cat, ss := range snap {
		s := &state{
			weights:     make(map[category.Modality]float64, 3),
			performance: make(map[category.Modality]float64, 3),
			correct:     ss.Correct,
			incorrect:   ss.Incorrect,
			updatedAt:   ss.UpdatedAt,
		}
		for _, mod := range category.Modalities() {
			w, ok := ss.Weights[mod]
			if !ok {
				w = 1.0 / 3.0
			}
			s.weights[mod] = clamp(w, m.cfg.MinWeight, m.cfg.MaxWeight)
			if p, ok := ss.Performance[mod]; ok {
				s.performance[mod] = clamp(p, 0, 1)
			} else {
				s.performance[mod] = s.weights[mod]
			}
		}
		m.states[cat] = s
	}
}
