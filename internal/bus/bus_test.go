package bus

import (
	"testing"
	"time"
)

func TestPubSubBusDeliversByTopic(t *testing.T) {
	b := New(nil)
	t.Cleanup(b.Close)

	upserts := b.Subscribe(TopicMarkerUpsert)
	all := b.Subscribe(TopicMarkerUpsert, TopicMarkerRemove)

	b.Publish(TopicMarkerRemove, "gone")
	b.Publish(TopicMarkerUpsert, "new")

	select {
	case msg := <-upserts:
		if msg != "new" {
			t.Fatalf("unexpected upsert payload: %v", msg)
		}
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for upsert")
	}

	got := make([]any, 0, 2)
	for len(got) < 2 {
		select {
		case msg := <-all:
			got = append(got, msg)
		case <-time.After(time.Second):
			t.Fatalf("timed out waiting for fan-in subscription, got %v", got)
		}
	}
	if got[0] != "gone" || got[1] != "new" {
		t.Fatalf("unexpected delivery order: %v", got)
	}
}

func TestPayloadType(t *testing.T) {
	if payloadType(nil) != "<nil>" {
		t.Fatalf("unexpected nil payload type")
	}
	if payloadType(42) != "int" {
		t.Fatalf("unexpected int payload type: %s", payloadType(42))
	}
}
