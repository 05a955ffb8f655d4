package realtime_test

import (
	"testing"
	"time"

	"github.com/harborteam/harbor/internal/app/system/realtime"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func TestHub_PublishReachesSubscriber(t *testing.T) {
	hub := realtime.NewHub(zap.NewNop())
	topic := realtime.ChannelTopic(primitive.NewObjectID())

	sub := hub.Subscribe(topic)
	defer hub.Unsubscribe(sub)

	hub.Publish(realtime.Event{Topic: topic, Kind: realtime.KindMessageCreated})

	select {
	case ev := <-sub.C:
		if ev.Kind != realtime.KindMessageCreated {
			t.Errorf("expected kind %q, got %q", realtime.KindMessageCreated, ev.Kind)
		}
		if ev.At.IsZero() {
			t.Error("expected At to be stamped")
		}
	case <-time.After(time.Second):
		t.Fatal("expected event, got none")
	}
}

func TestHub_TopicIsolation(t *testing.T) {
	hub := realtime.NewHub(zap.NewNop())
	topicA := realtime.ChannelTopic(primitive.NewObjectID())
	topicB := realtime.ChannelTopic(primitive.NewObjectID())

	sub := hub.Subscribe(topicA)
	defer hub.Unsubscribe(sub)

	hub.Publish(realtime.Event{Topic: topicB, Kind: realtime.KindMessageCreated})

	select {
	case ev := <-sub.C:
		t.Errorf("expected no event, got %+v", ev)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHub_PerTopicOrdering(t *testing.T) {
	hub := realtime.NewHub(zap.NewNop())
	topic := realtime.ConversationTopic(primitive.NewObjectID())

	sub := hub.Subscribe(topic)
	defer hub.Unsubscribe(sub)

	kinds := []string{
		realtime.KindMessageCreated,
		realtime.KindMessageUpdated,
		realtime.KindReactionToggled,
		realtime.KindMessageDeleted,
	}
	for _, k := range kinds {
		hub.Publish(realtime.Event{Topic: topic, Kind: k})
	}

	for i, want := range kinds {
		select {
		case ev := <-sub.C:
			if ev.Kind != want {
				t.Fatalf("event %d: expected kind %q, got %q", i, want, ev.Kind)
			}
		case <-time.After(time.Second):
			t.Fatalf("event %d: timed out", i)
		}
	}
}

func TestHub_MultipleTopicsOneSubscription(t *testing.T) {
	hub := realtime.NewHub(zap.NewNop())
	channel := realtime.ChannelTopic(primitive.NewObjectID())
	thread := realtime.ThreadTopic(primitive.NewObjectID())

	sub := hub.Subscribe(channel, thread)
	defer hub.Unsubscribe(sub)

	hub.Publish(realtime.Event{Topic: channel, Kind: realtime.KindMessageCreated})
	hub.Publish(realtime.Event{Topic: thread, Kind: realtime.KindMessageCreated})

	got := 0
	for got < 2 {
		select {
		case <-sub.C:
			got++
		case <-time.After(time.Second):
			t.Fatalf("expected 2 events, got %d", got)
		}
	}
}

func TestHub_UnsubscribeClosesChannel(t *testing.T) {
	hub := realtime.NewHub(zap.NewNop())
	topic := realtime.ChannelTopic(primitive.NewObjectID())

	sub := hub.Subscribe(topic)
	hub.Unsubscribe(sub)

	if _, open := <-sub.C; open {
		t.Error("expected channel to be closed after Unsubscribe")
	}
	if n := hub.SubscriberCount(topic); n != 0 {
		t.Errorf("expected 0 subscribers, got %d", n)
	}

	// A second Unsubscribe must be a no-op, not a double close.
	hub.Unsubscribe(sub)
}

func TestHub_SlowSubscriberDropped(t *testing.T) {
	hub := realtime.NewHub(zap.NewNop())
	topic := realtime.ChannelTopic(primitive.NewObjectID())

	sub := hub.Subscribe(topic)

	// Fill the queue and then overflow it. The subscriber never reads.
	for i := 0; i < 70; i++ {
		hub.Publish(realtime.Event{Topic: topic, Kind: realtime.KindMessageCreated})
	}

	if n := hub.SubscriberCount(topic); n != 0 {
		t.Errorf("expected slow subscriber to be dropped, still %d subscribed", n)
	}

	// Drain; the channel must end closed.
	for range sub.C {
	}
}
