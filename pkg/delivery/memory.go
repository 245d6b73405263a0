// pkg/delivery/memory.go

package delivery

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Recorder is a Dispatcher that keeps messages in memory. Setting Err makes
// every Send fail with it.
type Recorder struct {
	mu     sync.Mutex
	Outbox []Message
	Err    error
	Now    func() time.Time
}

// Send records msg or fails with r.Err.
func (r *Recorder) Send(_ context.Context, msg Message) (Ack, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return Ack{}, Wrap(msg.To, r.Err)
	}
	r.Outbox = append(r.Outbox, msg)
	now := time.Now
	if r.Now != nil {
		now = r.Now
	}
	return Ack{Recipient: msg.To, MessageID: uuid.NewString(), SentAt: now()}, nil
}

// Sent returns a copy of the recorded messages.
func (r *Recorder) Sent() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Message(nil), r.Outbox...)
}

// Nop is a Dispatcher used when delivery is not configured.
type Nop struct{}

// Send always fails: there is no transport to hand the message to.
func (Nop) Send(_ context.Context, msg Message) (Ack, error) {
	return Ack{}, &DeliveryError{Recipient: msg.To, Err: ErrNotConfigured}
}
