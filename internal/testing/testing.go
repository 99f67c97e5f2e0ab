// package testing contains shared testing utilities
package testing

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/groupscout/groupscout/internal/bridge"
	"github.com/groupscout/groupscout/internal/models"
	"github.com/groupscout/groupscout/internal/shared"
)

// MockBridge is a test double for [bridge.Bridge]. Sent commands are
// recorded; tests push inbound events with Emit.
type MockBridge struct {
	mu       sync.Mutex
	sent     []bridge.Command
	events   chan bridge.Event
	sendErr  error
	closed   bool
	closeOne sync.Once
}

func NewMockBridge() *MockBridge {
	return &MockBridge{events: make(chan bridge.Event, 64)}
}

// FailSends makes subsequent Send calls return err.
func (m *MockBridge) FailSends(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sendErr = err
}

func (m *MockBridge) Send(cmd bridge.Command) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return shared.ErrBridgeClosed
	}
	if m.sendErr != nil {
		return m.sendErr
	}
	m.sent = append(m.sent, cmd)
	return nil
}

func (m *MockBridge) Events() <-chan bridge.Event {
	return m.events
}

func (m *MockBridge) Close() error {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	m.closeOne.Do(func() { close(m.events) })
	return nil
}

// Emit delivers an inbound event as if the backend had sent it.
func (m *MockBridge) Emit(ev bridge.Event) {
	m.events <- ev
}

// Sent returns a copy of every command sent so far.
func (m *MockBridge) Sent() []bridge.Command {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]bridge.Command(nil), m.sent...)
}

// SentOfType returns the sent commands with the given type.
func (m *MockBridge) SentOfType(cmdType string) []bridge.Command {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []bridge.Command
	for _, cmd := range m.sent {
		if cmd.Type == cmdType {
			out = append(out, cmd)
		}
	}
	return out
}

// MockActors is a test double for the session's actor source.
type MockActors struct {
	mu     sync.Mutex
	actors []models.Actor
}

func NewMockActors(actors ...models.Actor) *MockActors {
	return &MockActors{actors: actors}
}

// SetActors replaces the actor list, emulating a directory reload.
func (m *MockActors) SetActors(actors ...models.Actor) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.actors = actors
}

func (m *MockActors) Ready() []models.Actor {
	m.mu.Lock()
	defer m.mu.Unlock()
	var ready []models.Actor
	for _, a := range m.actors {
		if a.Status == models.ActorReady {
			ready = append(ready, a)
		}
	}
	return ready
}

// ReadyActor builds a ready actor with matching id and label.
func ReadyActor(id string) models.Actor {
	return models.Actor{ID: id, Label: id, Status: models.ActorReady}
}

// Clock is a manual time source for watchdog tests.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

func NewClock(start time.Time) *Clock {
	return &Clock{now: start}
}

// Now is the function to inject via session.WithClock.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward.
func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// MemorySnapshots is an in-memory [session.SnapshotStore].
type MemorySnapshots struct {
	mu      sync.Mutex
	snap    *models.Snapshot
	saveErr error
}

func NewMemorySnapshots() *MemorySnapshots {
	return &MemorySnapshots{}
}

// FailSaves makes subsequent Save calls return err.
func (m *MemorySnapshots) FailSaves(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saveErr = err
}

func (m *MemorySnapshots) Save(snap models.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	copied := snap
	copied.Items = append([]models.DiscoveredItem(nil), snap.Items...)
	m.snap = &copied
	return nil
}

func (m *MemorySnapshots) Load() (models.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.snap == nil {
		return models.Snapshot{}, shared.ErrSnapshotMissing
	}
	return *m.snap, nil
}

func (m *MemorySnapshots) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snap = nil
	return nil
}

// Stored returns the held snapshot, or nil.
func (m *MemorySnapshots) Stored() *models.Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snap
}

// FWriter is an [io.Writer] whose writes always fail.
type FWriter struct{}

func (FWriter) Write(p []byte) (int, error) {
	return 0, errors.New("write failed")
}

// Eventually polls cond until it holds or the deadline passes.
func Eventually(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not met within %v", timeout)
}
