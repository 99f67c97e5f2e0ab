package bridge

import (
	"bufio"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/groupscout/groupscout/internal/shared"
)

// eventBuffer sizes the inbound event channel. The dispatch loop drains it
// continuously; the buffer only absorbs short bursts.
const eventBuffer = 64

// Conn is a Bridge over a newline-delimited JSON TCP connection. One JSON
// object per line in each direction.
type Conn struct {
	conn   net.Conn
	events chan Event

	mu     sync.Mutex
	closed bool
}

var _ Bridge = (*Conn)(nil)

// Dial connects to the backend at addr and starts the read loop.
func Dial(addr string, timeout time.Duration) (*Conn, error) {
	nc, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to dial backend at %s: %w", addr, err)
	}
	return NewConn(nc), nil
}

// NewConn wraps an established connection. Useful for tests using net.Pipe.
func NewConn(nc net.Conn) *Conn {
	c := &Conn{
		conn:   nc,
		events: make(chan Event, eventBuffer),
	}
	go c.readLoop()
	return c
}

// Send marshals the command and writes it as one line.
func (c *Conn) Send(cmd Command) error {
	data, err := json.Marshal(cmd)
	if err != nil {
		return fmt.Errorf("failed to encode command: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return shared.ErrBridgeClosed
	}
	if _, err := c.conn.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write command: %w", err)
	}
	return nil
}

// Events returns the inbound event stream. The channel closes when the
// connection drops or Close is called.
func (c *Conn) Events() <-chan Event {
	return c.events
}

// Close tears down the connection; the read loop then closes Events.
func (c *Conn) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()
	return c.conn.Close()
}

func (c *Conn) readLoop() {
	defer close(c.events)

	scanner := bufio.NewScanner(c.conn)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var ev Event
		if err := json.Unmarshal(line, &ev); err != nil {
			// Malformed frames are dropped; the watchdog covers a
			// backend that only ever sends garbage.
			continue
		}
		c.events <- ev
	}
}
