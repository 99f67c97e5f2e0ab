// package server implements a loopback demo backend speaking the bridge
// protocol over newline-delimited JSON.
//
// It exists so the client can be exercised end to end without the real
// discovery service: start-search is answered with a scripted batch →
// progress → result sequence, start-action with a delayed action-complete.
package server

import (
	"bufio"
	"fmt"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/groupscout/groupscout/internal/bridge"
)

// Options configures the demo backend.
type Options struct {
	Addr    string        // listen address, e.g. 127.0.0.1:7600
	Latency time.Duration // pause between scripted events (default 300ms)
	Logger  *log.Logger
}

// Server accepts bridge connections and answers commands with scripted
// events.
type Server struct {
	ln      net.Listener
	latency time.Duration
	logger  *log.Logger

	mu     sync.Mutex
	closed bool
}

// Listen binds the demo backend to its address.
func Listen(opts Options) (*Server, error) {
	if opts.Latency <= 0 {
		opts.Latency = 300 * time.Millisecond
	}

	ln, err := net.Listen("tcp", opts.Addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", opts.Addr, err)
	}
	return &Server{ln: ln, latency: opts.Latency, logger: opts.Logger}, nil
}

// Addr returns the bound listen address.
func (s *Server) Addr() string {
	return s.ln.Addr().String()
}

// Serve accepts connections until Close. Blocks.
func (s *Server) Serve() error {
	for {
		conn, err := s.ln.Accept()
		if err != nil {
			s.mu.Lock()
			closed := s.closed
			s.mu.Unlock()
			if closed {
				return nil
			}
			return fmt.Errorf("accept failed: %w", err)
		}
		go s.handle(conn)
	}
}

// Close stops accepting and unblocks Serve.
func (s *Server) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return s.ln.Close()
}

// peer is one connected client with a write lock so scripted goroutines can
// interleave events safely.
type peer struct {
	conn net.Conn
	mu   sync.Mutex
}

func (p *peer) emit(ev bridge.Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	_, err = p.conn.Write(append(data, '\n'))
	return err
}

func (s *Server) handle(conn net.Conn) {
	defer conn.Close()
	p := &peer{conn: conn}

	if s.logger != nil {
		s.logger.Info("client connected", "remote", conn.RemoteAddr())
	}

	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		var cmd bridge.Command
		if err := json.Unmarshal(scanner.Bytes(), &cmd); err != nil {
			continue
		}

		switch cmd.Type {
		case bridge.CmdStartSearch:
			if cmd.Search != nil {
				go s.runSearch(p, *cmd.Search)
			}
		case bridge.CmdStartAction:
			if cmd.Action != nil {
				go s.runAction(p, *cmd.Action)
			}
		}
	}
}

// runSearch plays the scripted discovery sequence for one query.
func (s *Server) runSearch(p *peer, req bridge.StartSearch) {
	records := scriptedRecords(req)

	half := len(records) / 2
	if half == 0 {
		half = len(records)
	}
	batch := bridge.Event{
		Type: bridge.EventBatch,
		Batch: &bridge.Batch{
			Items:         records[:half],
			SourceLabel:   firstChannel(req),
			StatusMessage: fmt.Sprintf("Found %d so far...", half),
		},
	}
	if err := p.emit(batch); err != nil {
		return
	}

	time.Sleep(s.latency)
	p.emit(bridge.Event{Type: bridge.EventProgress, Progress: &bridge.Progress{
		Phase:         bridge.PhaseEnriching,
		StatusMessage: "Fetching details...",
	}})

	time.Sleep(s.latency)
	newCount := 0
	for i := range records {
		if records[i].Novelty == "new" {
			newCount++
		}
	}
	p.emit(bridge.Event{Type: bridge.EventResult, Result: &bridge.Result{
		Items:      records,
		NewCount:   newCount,
		KnownCount: len(records) - newCount,
	}})
}

// runAction answers a join with a delayed success.
func (s *Server) runAction(p *peer, req bridge.StartAction) {
	time.Sleep(s.latency)
	members := 1200
	p.emit(bridge.Event{Type: bridge.EventActionComplete, Action: &bridge.ActionComplete{
		ItemID:             req.ItemID,
		Handle:             req.Handle,
		ExternalID:         req.ExternalID,
		Success:            true,
		ActorID:            req.ActorID,
		UpdatedMemberCount: &members,
	}})
}

func firstChannel(req bridge.StartSearch) string {
	if len(req.Channels) > 0 {
		return req.Channels[0]
	}
	return "global"
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// scriptedRecords fabricates a plausible result set for the query.
func scriptedRecords(req bridge.StartSearch) []bridge.Record {
	topic := strings.ToLower(strings.Fields(req.Query + " chat")[0])
	kinds := []string{"group", "channel", "group", "group", "channel"}
	novelty := []string{"new", "known", "new", "known", "new"}

	count := 5
	if req.Limit > 0 && req.Limit < count {
		count = req.Limit
	}

	records := make([]bridge.Record, 0, count)
	for i := 0; i < count; i++ {
		score := 1.0 - float64(i)*0.15
		rec := bridge.Record{
			ExternalID:  uuid.New().String(),
			Handle:      fmt.Sprintf("%s_%d", topic, i+1),
			Title:       fmt.Sprintf("%s hub #%d", capitalize(topic), i+1),
			Description: fmt.Sprintf("Discussion about %s, found via %s", req.Query, firstChannel(req)),
			Kind:        kinds[i%len(kinds)],
			Members:     5000 - i*700,
			Score:       &score,
			Novelty:     novelty[i%len(novelty)],
			Source:      firstChannel(req),
		}
		if i == count-1 {
			// One private group with no resolved identity yet.
			rec.ExternalID = ""
			rec.Handle = ""
			rec.Members = 0
			rec.Participants = 320
		}
		records = append(records, rec)
	}
	return records
}
