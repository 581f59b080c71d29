package logstream

import (
	"testing"

	"github.com/rs/zerolog"
)

func newTestLogger() *zerolog.Logger {
	logger := zerolog.Nop()
	return &logger
}

func TestBroadcaster_DeliversToSubscriber(t *testing.T) {
	b := NewBroadcaster(newTestLogger())

	ch, cancel := b.Subscribe("test-1")
	defer cancel()

	b.Emit("test-1", "info", "turn recorded", map[string]string{"turn": "1"})

	record := <-ch
	if record.Message != "turn recorded" {
		t.Errorf("unexpected message: %q", record.Message)
	}
	if record.Metadata["turn"] != "1" {
		t.Errorf("unexpected metadata: %v", record.Metadata)
	}
}

func TestBroadcaster_ScopedByTestID(t *testing.T) {
	b := NewBroadcaster(newTestLogger())

	ch, cancel := b.Subscribe("test-1")
	defer cancel()

	b.Emit("test-2", "info", "other test", nil)

	select {
	case record := <-ch:
		t.Errorf("received record for wrong test: %+v", record)
	default:
	}
}

func TestBroadcaster_UnsubscribeDoesNotAffectOthers(t *testing.T) {
	b := NewBroadcaster(newTestLogger())

	ch1, cancel1 := b.Subscribe("test-1")
	ch2, cancel2 := b.Subscribe("test-1")
	defer cancel2()

	cancel1()
	b.Emit("test-1", "info", "still flowing", nil)

	if _, open := <-ch1; open {
		t.Error("expected cancelled subscriber channel to be closed")
	}

	record := <-ch2
	if record.Message != "still flowing" {
		t.Errorf("remaining subscriber missed the record: %+v", record)
	}
}

func TestBroadcaster_EmitWithoutSubscribersDoesNotBlock(t *testing.T) {
	b := NewBroadcaster(newTestLogger())

	// Must return immediately.
	b.Emit("test-1", "info", "nobody listening", nil)
}

func TestBroadcaster_SlowSubscriberDoesNotBlockEmit(t *testing.T) {
	b := NewBroadcaster(newTestLogger())

	_, cancel := b.Subscribe("test-1")
	defer cancel()

	// Overflow the buffer; Emit must never block.
	for i := 0; i < subscriberBuffer*2; i++ {
		b.Emit("test-1", "info", "burst", nil)
	}
}
