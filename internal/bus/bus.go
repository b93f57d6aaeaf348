// Package bus carries the one cross-component signal in the workspace: a
// request to open the calendar focused on a specific item. Delivery is
// fire-and-forget, at most once per dispatch, and never blocks the sender.
package bus

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/infinity-apps/workspace/internal/metrics"
)

// SignalCalendarOpen is the wire name of the signal.
const SignalCalendarOpen = "infinity:calendar-open"

// OpenRequest asks the calendar UI to open and focus an item.
type OpenRequest struct {
	ItemID string `json:"itemId"`
}

// Bus fans OpenRequests out to current subscribers.
type Bus struct {
	mu      sync.Mutex
	subs    map[int]chan OpenRequest
	nextSub int

	metrics *metrics.Metrics
	logger  zerolog.Logger
}

// New creates an empty bus. m may be nil.
func New(m *metrics.Metrics, logger zerolog.Logger) *Bus {
	return &Bus{
		subs:    make(map[int]chan OpenRequest),
		metrics: m,
		logger:  logger.With().Str("component", "bus").Logger(),
	}
}

// Publish delivers the request to every current subscriber. A subscriber
// whose buffer is full misses this dispatch; there is no retry and no ack.
func (b *Bus) Publish(req OpenRequest) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, ch := range b.subs {
		select {
		case ch <- req:
		default:
			b.metrics.RecordSignalDropped()
			b.logger.Debug().Str("item_id", req.ItemID).Msg("slow subscriber, signal dropped")
		}
	}
}

// Subscribe registers a listener. The returned func cancels the
// subscription and closes the channel.
func (b *Bus) Subscribe() (<-chan OpenRequest, func()) {
	ch := make(chan OpenRequest, 4)

	b.mu.Lock()
	id := b.nextSub
	b.nextSub++
	b.subs[id] = ch
	if b.metrics != nil {
		b.metrics.SubscribersActive.Inc()
	}
	b.mu.Unlock()

	cancel := func() {
		b.mu.Lock()
		if _, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(ch)
			if b.metrics != nil {
				b.metrics.SubscribersActive.Dec()
			}
		}
		b.mu.Unlock()
	}
	return ch, cancel
}

// Subscribers returns the current subscriber count.
func (b *Bus) Subscribers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}
