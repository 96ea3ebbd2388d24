package fusion

import (
	"github.com/google/uuid"

	"github.com/viewguard/viewguard/internal/detection"
)

// Subscription is a registered warning consumer. Warnings are delivered in
// emission order; a full channel drops the warning for that subscriber and
// is counted in Stats.WarningsDropped rather than blocking the engine.
type Subscription struct {
	ID string
	C  <-chan detection.FusedWarning
}

func newSubID() string {
	return uuid.NewString()
}

// Subscribe registers a new warning consumer.
func (e *Engine) Subscribe() Subscription {
	id := e.subSeq()
	ch := make(chan detection.FusedWarning, e.cfg.SubscriberBuffer)
	e.subs[id] = ch
	return Subscription{ID: id, C: ch}
}

// Unsubscribe removes a consumer and closes its channel.
func (e *Engine) Unsubscribe(id string) {
	if ch, ok := e.subs[id]; ok {
		delete(e.subs, id)
		close(ch)
	}
}

// Close drops all subscribers, closing their channels.
func (e *Engine) Close() {
	for id, ch := range e.subs {
		delete(e.subs, id)
		close(ch)
	}
}
