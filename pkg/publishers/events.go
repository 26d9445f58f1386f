package publishers

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Adda-Baaj/arogya-feed/internal/domain"
	"github.com/Adda-Baaj/arogya-feed/internal/logger"
	"github.com/google/uuid"
)

// Event kinds emitted after successful writes.
const (
	KindTestimonialCreated  = "testimonial.created"
	KindSubscriptionCreated = "subscription.created"
)

// Logger is the logging facade publishers write to.
type Logger = logger.Logger

// Event is the envelope delivered to every publisher.
type Event struct {
	ID         string          `json:"id"`
	Kind       string          `json:"kind"`
	OccurredAt time.Time       `json:"occurred_at"`
	Payload    json.RawMessage `json:"payload"`
}

// Publisher delivers events to one sink.
type Publisher interface {
	ID() string
	Type() string
	Publish(ctx context.Context, evt Event) error
}

func ensureLogger(log Logger) Logger { return logger.Ensure(log) }

func newEvent(kind string, payload any, at time.Time) (Event, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Event{}, err
	}
	return Event{ID: uuid.NewString(), Kind: kind, OccurredAt: at.UTC(), Payload: raw}, nil
}

// TestimonialCreated builds the event for a stored testimonial.
func TestimonialCreated(t domain.Testimonial) (Event, error) {
	return newEvent(KindTestimonialCreated, t, t.CreatedAt)
}

// SubscriptionCreated builds the event for a stored newsletter signup.
func SubscriptionCreated(s domain.Subscription) (Event, error) {
	return newEvent(KindSubscriptionCreated, s, s.CreatedAt)
}

// Fanout publishes each event to every configured publisher. Failures
// are logged per publisher and never block the others.
type Fanout struct {
	pubs []Publisher
	log  Logger
}

// NewFanout wraps the given publishers. A Fanout with no publishers is a no-op.
func NewFanout(log Logger, pubs ...Publisher) *Fanout {
	return &Fanout{pubs: pubs, log: ensureLogger(log)}
}

// Len reports the number of publishers.
func (f *Fanout) Len() int {
	if f == nil {
		return 0
	}
	return len(f.pubs)
}

// Publish delivers evt and returns how many publishers accepted it.
func (f *Fanout) Publish(ctx context.Context, evt Event) int {
	if f == nil {
		return 0
	}
	delivered := 0
	for _, p := range f.pubs {
		if err := p.Publish(ctx, evt); err != nil {
			f.log.ErrorObj("publisher delivery failed", "publisher_error", map[string]any{
				"publisher_id": p.ID(),
				"type":         p.Type(),
				"kind":         evt.Kind,
				"event_id":     evt.ID,
				"error":        err.Error(),
			})
			continue
		}
		delivered++
	}
	return delivered
}
