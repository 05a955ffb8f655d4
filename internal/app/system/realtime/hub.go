// Package realtime fans out change events to stream subscribers.
//
// Every write that mutates a timeline publishes an event to one or more
// topics ("channel:<id>", "conversation:<id>", "thread:<id>"). Publish
// holds the hub lock while enqueueing to every subscriber of a topic, so
// all subscribers of one topic observe events in the same commit order.
package realtime

import (
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Topic constructors. Topics are plain strings so the hub stays ignorant
// of the domain.

func ChannelTopic(id primitive.ObjectID) string      { return "channel:" + id.Hex() }
func ConversationTopic(id primitive.ObjectID) string { return "conversation:" + id.Hex() }
func ThreadTopic(id primitive.ObjectID) string       { return "thread:" + id.Hex() }

// Event is one change notification delivered to subscribers.
type Event struct {
	Topic string      `json:"topic"`
	Kind  string      `json:"kind"` // message.created, message.updated, message.deleted, reaction.toggled
	At    time.Time   `json:"at"`
	Data  interface{} `json:"data,omitempty"`
}

// Event kinds.
const (
	KindMessageCreated  = "message.created"
	KindMessageUpdated  = "message.updated"
	KindMessageDeleted  = "message.deleted"
	KindReactionToggled = "reaction.toggled"
)

// subscriberBuffer is the per-subscriber queue depth. A subscriber that
// falls this far behind is dropped rather than allowed to stall writers.
const subscriberBuffer = 64

// Subscription is one subscriber's event feed.
type Subscription struct {
	C      <-chan Event
	ch     chan Event
	topics map[string]struct{}
}

// Topics reports the topics this subscription covers.
func (s *Subscription) Topics() []string {
	out := make([]string, 0, len(s.topics))
	for t := range s.topics {
		out = append(out, t)
	}
	return out
}

// Hub routes events from writers to stream subscribers.
type Hub struct {
	mu     sync.Mutex
	topics map[string]map[*Subscription]struct{}
	logger *zap.Logger
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		topics: make(map[string]map[*Subscription]struct{}),
		logger: logger,
	}
}

// Subscribe registers a subscriber for the given topics. The caller must
// Unsubscribe when done or the subscription leaks.
func (h *Hub) Subscribe(topics ...string) *Subscription {
	ch := make(chan Event, subscriberBuffer)
	sub := &Subscription{C: ch, ch: ch, topics: make(map[string]struct{}, len(topics))}

	h.mu.Lock()
	defer h.mu.Unlock()
	for _, t := range topics {
		sub.topics[t] = struct{}{}
		set := h.topics[t]
		if set == nil {
			set = make(map[*Subscription]struct{})
			h.topics[t] = set
		}
		set[sub] = struct{}{}
	}
	return sub
}

// Unsubscribe removes a subscriber and closes its channel.
func (h *Hub) Unsubscribe(sub *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()
	removed := false
	for t := range sub.topics {
		if set, ok := h.topics[t]; ok {
			if _, member := set[sub]; member {
				delete(set, sub)
				removed = true
				if len(set) == 0 {
					delete(h.topics, t)
				}
			}
		}
	}
	if removed {
		close(sub.ch)
	}
}

// Publish delivers an event to every subscriber of its topic. Delivery
// happens under the hub lock, so per-topic ordering matches publish
// order. A subscriber with a full queue is dropped.
func (h *Hub) Publish(ev Event) {
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	set := h.topics[ev.Topic]
	var slow []*Subscription
	for sub := range set {
		select {
		case sub.ch <- ev:
		default:
			slow = append(slow, sub)
		}
	}
	for _, sub := range slow {
		h.dropLocked(sub)
		h.logger.Warn("dropping slow stream subscriber", zap.String("topic", ev.Topic))
	}
}

// dropLocked removes a subscription from every topic. Caller holds mu.
func (h *Hub) dropLocked(sub *Subscription) {
	removed := false
	for t := range sub.topics {
		if set, ok := h.topics[t]; ok {
			if _, member := set[sub]; member {
				delete(set, sub)
				removed = true
				if len(set) == 0 {
					delete(h.topics, t)
				}
			}
		}
	}
	if removed {
		close(sub.ch)
	}
}

// SubscriberCount reports how many subscribers a topic has.
func (h *Hub) SubscriberCount(topic string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.topics[topic])
}
