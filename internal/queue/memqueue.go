package queue

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// Mem is an in-memory Client, used for local runs and tests, and as the
// client the entrypoint wires in normal mode, where no real queue client is
// configured. Each enqueued message gets a synthetic uuid receipt.
type Mem struct {
	mu      sync.Mutex
	pending []Message
	leased  map[string]Message
}

// NewMem returns an empty in-memory queue.
func NewMem() *Mem {
	return &Mem{leased: make(map[string]Message)}
}

// Enqueue adds a message body (a game id) to the queue, minting a fresh
// receipt.
func (m *Mem) Enqueue(body string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pending = append(m.pending, Message{Body: body, Receipt: uuid.NewString()})
}

// Receive returns up to maxMessages pending messages, moving them to the
// leased set. longPollSeconds and visibilityTimeoutSeconds are accepted for
// interface compatibility but have no effect on this in-memory double.
func (m *Mem) Receive(_ context.Context, maxMessages int, _ int, _ int) ([]Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := maxMessages
	if n > len(m.pending) {
		n = len(m.pending)
	}
	out := make([]Message, n)
	copy(out, m.pending[:n])
	m.pending = m.pending[n:]
	for _, msg := range out {
		m.leased[msg.Receipt] = msg
	}
	return out, nil
}

// Delete removes a leased message permanently.
func (m *Mem) Delete(_ context.Context, receipt string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.leased[receipt]; !ok {
		return fmt.Errorf("memqueue: unknown receipt %q", receipt)
	}
	delete(m.leased, receipt)
	return nil
}

// ExtendVisibility is a no-op on the in-memory double (there is no
// visibility timeout to race against a single process).
func (m *Mem) ExtendVisibility(_ context.Context, receipt string, _ int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.leased[receipt]; !ok {
		return fmt.Errorf("memqueue: unknown receipt %q", receipt)
	}
	return nil
}
