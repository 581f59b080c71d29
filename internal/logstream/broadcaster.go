package logstream

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const subscriberBuffer = 64

// Record is one ordered log entry scoped to a test run.
type Record struct {
	TestID   string            `json:"test_id"`
	Time     time.Time         `json:"time"`
	Level    string            `json:"level"`
	Message  string            `json:"message"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Broadcaster fans out per-test log records to any number of subscribers.
// Emission is fire-and-forget: a full or departed subscriber never blocks
// the emitting conversation or the other subscribers.
type Broadcaster struct {
	mu          sync.Mutex
	subscribers map[string]map[int]chan Record
	nextID      int
	logger      *zerolog.Logger
}

func NewBroadcaster(logger *zerolog.Logger) *Broadcaster {
	return &Broadcaster{
		subscribers: make(map[string]map[int]chan Record),
		logger:      logger,
	}
}

// Emit delivers a record to every live subscriber of testID. Records a
// subscriber cannot keep up with are dropped for that subscriber only.
func (b *Broadcaster) Emit(testID, level, message string, metadata map[string]string) {
	record := Record{
		TestID:   testID,
		Time:     time.Now(),
		Level:    level,
		Message:  message,
		Metadata: metadata,
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	for id, ch := range b.subscribers[testID] {
		select {
		case ch <- record:
		default:
			b.logger.Debug().Str("test_id", testID).Int("subscriber", id).
				Msg("subscriber buffer full, dropping record")
		}
	}
}

// Subscribe registers a listener for testID. The returned cancel function
// must be called exactly once; it closes the channel.
func (b *Broadcaster) Subscribe(testID string) (<-chan Record, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.subscribers[testID] == nil {
		b.subscribers[testID] = make(map[int]chan Record)
	}

	id := b.nextID
	b.nextID++
	ch := make(chan Record, subscriberBuffer)
	b.subscribers[testID][id] = ch

	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()

		if subs, ok := b.subscribers[testID]; ok {
			if sub, ok := subs[id]; ok {
				delete(subs, id)
				close(sub)
			}
			if len(subs) == 0 {
				delete(b.subscribers, testID)
			}
		}
	}

	return ch, cancel
}

// SubscriberCount reports the live subscribers for a test.
func (b *Broadcaster) SubscriberCount(testID string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subscribers[testID])
}
