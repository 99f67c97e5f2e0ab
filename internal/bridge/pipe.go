package bridge

import (
	"sync"

	"github.com/groupscout/groupscout/internal/shared"
)

// Pipe returns a connected in-process bridge pair: the client end used by the
// session, and the backend end a test or demo peer drives.
//
// The backend end is the sole writer of the event channel, so only
// PipeBackend.Close closes it; PipeClient.Close signals the backend to stop.
func Pipe() (*PipeClient, *PipeBackend) {
	done := make(chan struct{})
	commands := make(chan Command, eventBuffer)
	events := make(chan Event, eventBuffer)

	client := &PipeClient{done: done, commands: commands, events: events}
	backend := &PipeBackend{done: done, commands: commands, events: events}
	return client, backend
}

// PipeClient is the client end of an in-process bridge.
type PipeClient struct {
	done     chan struct{}
	commands chan Command
	events   chan Event
	once     sync.Once
}

var _ Bridge = (*PipeClient)(nil)

func (p *PipeClient) Send(cmd Command) error {
	select {
	case <-p.done:
		return shared.ErrBridgeClosed
	case p.commands <- cmd:
		return nil
	}
}

func (p *PipeClient) Events() <-chan Event {
	return p.events
}

// Close signals the backend end to stop. The event channel closes once the
// backend observes the signal and calls its own Close.
func (p *PipeClient) Close() error {
	p.once.Do(func() { close(p.done) })
	return nil
}

// PipeBackend is the backend end of an in-process bridge: it consumes
// commands and emits events.
type PipeBackend struct {
	done     chan struct{}
	commands chan Command
	events   chan Event
	once     sync.Once
}

// Commands returns the outbound commands from the client end.
func (p *PipeBackend) Commands() <-chan Command {
	return p.commands
}

// Done signals that the client end has closed.
func (p *PipeBackend) Done() <-chan struct{} {
	return p.done
}

// Emit delivers an event to the client end.
func (p *PipeBackend) Emit(ev Event) error {
	select {
	case <-p.done:
		return shared.ErrBridgeClosed
	case p.events <- ev:
		return nil
	}
}

// Close ends the event stream. Call after the last Emit.
func (p *PipeBackend) Close() error {
	p.once.Do(func() {
		close(p.events)
	})
	return nil
}
