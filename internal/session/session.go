// package session implements the search-session orchestrator.
//
// One Session owns the lifecycle of a discovery run: it validates the
// submission, arms the heartbeat watchdog, feeds inbound bridge events
// through the merge pipeline into the result store, tracks in-flight join
// actions, and snapshots completed sessions. All state is guarded by one
// mutex; event dispatch, watchdog ticks, and operator calls serialize on it,
// so every handler runs to completion before the next observes the state.
package session

import (
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/groupscout/groupscout/internal/bridge"
	"github.com/groupscout/groupscout/internal/models"
	"github.com/groupscout/groupscout/internal/shared"
	"golang.org/x/time/rate"
)

// Phase is the lifecycle state of one search operation.
type Phase int

const (
	Idle Phase = iota
	Armed
	Streaming
	Enriching
	Completed
	Failed
	TimedOut
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Armed:
		return "armed"
	case Streaming:
		return "streaming"
	case Enriching:
		return "enriching"
	case Completed:
		return "completed"
	case Failed:
		return "failed"
	case TimedOut:
		return "timed_out"
	default:
		return ""
	}
}

// Terminal reports whether the phase ends a session. Terminal phases only
// leave via a fresh submit.
func (p Phase) Terminal() bool {
	return p == Completed || p == Failed || p == TimedOut
}

// active reports whether inbound events should still be applied.
func (p Phase) active() bool {
	return p == Armed || p == Streaming || p == Enriching
}

// Config tunes one Session. Zero fields fall back to the defaults below.
type Config struct {
	IdleTimeout  time.Duration // silence window before TimedOut
	WatchdogTick time.Duration // watchdog polling interval
	ResultLimit  int           // limit passed on start-search
	SnapshotTTL  time.Duration // snapshot freshness window
	JoinRate     rate.Limit    // join actions per second
	JoinBurst    int
}

const (
	defaultIdleTimeout  = 25 * time.Second
	defaultWatchdogTick = time.Second
	defaultResultLimit  = 100
	defaultSnapshotTTL  = 30 * time.Minute
	defaultJoinBurst    = 5
)

func (c Config) withDefaults() Config {
	if c.IdleTimeout <= 0 {
		c.IdleTimeout = defaultIdleTimeout
	}
	if c.WatchdogTick <= 0 {
		c.WatchdogTick = defaultWatchdogTick
	}
	if c.ResultLimit <= 0 {
		c.ResultLimit = defaultResultLimit
	}
	if c.SnapshotTTL <= 0 {
		c.SnapshotTTL = defaultSnapshotTTL
	}
	if c.JoinRate <= 0 {
		c.JoinRate = rate.Limit(defaultJoinBurst)
	}
	if c.JoinBurst <= 0 {
		c.JoinBurst = defaultJoinBurst
	}
	return c
}

// SnapshotStore persists completed sessions. The repositories package
// provides the sqlite implementation.
type SnapshotStore interface {
	Save(snap models.Snapshot) error
	Load() (models.Snapshot, error) // shared.ErrSnapshotMissing when absent
	Clear() error
}

// ActorSource exposes the reactive actor list. The session only reads it.
type ActorSource interface {
	Ready() []models.Actor
}

// Session drives one search operation at a time against the backend.
type Session struct {
	cfg    Config
	bridge bridge.Bridge
	actors ActorSource
	store  SnapshotStore
	logger *log.Logger

	recordQuery func(string)
	now         func() time.Time
	limiter     *rate.Limiter

	mu           sync.Mutex
	id           string
	epoch        int
	phase        Phase
	query        string
	channels     []string
	items        []models.DiscoveredItem
	newCount     int
	knownCount   int
	lastProgress time.Time
	errMessage   string
	status       string
	nextSeq      int

	pending  map[int]PendingAction
	held     *heldAction
	watchdog *watchdog

	updates chan Update
	stopped bool
}

// Option configures a Session.
type Option func(*Session)

// WithClock injects a time source. Tests use this to drive the watchdog
// deterministically.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// WithSnapshotStore attaches the persistence port. Without one, completed
// sessions are simply not snapshotted.
func WithSnapshotStore(store SnapshotStore) Option {
	return func(s *Session) { s.store = store }
}

// WithQueryRecorder registers a callback invoked with every successfully
// submitted query. The recent-queries repository hooks in here.
func WithQueryRecorder(record func(query string)) Option {
	return func(s *Session) { s.recordQuery = record }
}

// New creates a Session over the given bridge and actor source.
func New(cfg Config, b bridge.Bridge, actorSrc ActorSource, logger *log.Logger, opts ...Option) *Session {
	cfg = cfg.withDefaults()
	s := &Session{
		cfg:     cfg,
		bridge:  b,
		actors:  actorSrc,
		logger:  logger,
		now:     time.Now,
		limiter: rate.NewLimiter(cfg.JoinRate, cfg.JoinBurst),
		phase:   Idle,
		pending: make(map[int]PendingAction),
		updates: make(chan Update, updateBuffer),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start consumes bridge events until the bridge closes. Call once, from its
// own goroutine or via `go s.Start()`.
func (s *Session) Start() {
	for ev := range s.bridge.Events() {
		s.HandleEvent(ev)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
	if s.phase.active() {
		s.errMessage = shared.ErrBridgeClosed.Error()
		s.finalizeLocked(Failed)
	}
}

// Updates returns the session's update stream for UI consumption. Sends are
// non-blocking, so a slow consumer can lose updates; authoritative state is
// always read back from the Session itself.
func (s *Session) Updates() <-chan Update {
	return s.updates
}

// Submit starts a new search. Valid from Idle or any terminal phase; while a
// search is running it acts as a manual restart: the old watchdog is
// disarmed and late events for the abandoned run are dropped by the epoch
// check.
func (s *Session) Submit(query string, channels []string) error {
	if query == "" {
		return shared.ErrEmptyQuery
	}
	if len(channels) == 0 {
		return shared.ErrNoSourcesSelected
	}
	ready := s.actors.Ready()
	if len(ready) == 0 {
		return shared.ErrNoReadyActor
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.epoch++
	s.id = shared.GenerateID()
	s.query = query
	s.channels = append([]string(nil), channels...)
	s.items = nil
	s.newCount = 0
	s.knownCount = 0
	s.errMessage = ""
	s.status = "Starting search..."
	s.nextSeq = 0
	s.pending = make(map[int]PendingAction)
	s.held = nil
	s.phase = Armed
	s.lastProgress = s.now()

	s.armWatchdogLocked()

	cmd := bridge.Command{
		Type: bridge.CmdStartSearch,
		Search: &bridge.StartSearch{
			Query:    query,
			Channels: s.channels,
			ActorID:  ready[0].ID,
			Limit:    s.cfg.ResultLimit,
		},
	}
	if err := s.bridge.Send(cmd); err != nil {
		s.errMessage = err.Error()
		s.finalizeLocked(Failed)
		return fmt.Errorf("%w: %v", shared.ErrSearchFailed, err)
	}

	s.logger.Info("search submitted", "query", query, "channels", len(channels), "session", s.id)
	s.sendUpdate(phaseUpdate(Armed, "Search started"))
	if s.recordQuery != nil {
		s.recordQuery(query)
	}
	return nil
}

// HandleEvent applies one inbound event. Events in a terminal or idle phase
// are no-ops: a finished session stays finished until the next submit.
func (s *Session) HandleEvent(ev bridge.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.phase.active() {
		// Action completions still resolve after a session ends; they
		// are matched by identity and never re-open the session.
		if ev.Type == bridge.EventActionComplete && ev.Action != nil {
			s.handleActionCompleteLocked(ev.Action)
		}
		return
	}

	// Every inbound event is a heartbeat, whatever its type.
	s.lastProgress = s.now()

	if s.phase == Armed {
		s.phase = Streaming
	}

	switch ev.Type {
	case bridge.EventBatch:
		if ev.Batch != nil {
			s.applyBatchLocked(ev.Batch)
		}
	case bridge.EventProgress:
		if ev.Progress != nil {
			s.applyProgressLocked(ev.Progress)
		}
	case bridge.EventResult:
		if ev.Result != nil {
			s.applyResultLocked(ev.Result)
		}
	case bridge.EventError:
		if ev.Error != nil {
			s.errMessage = ev.Error.Message
			s.finalizeLocked(Failed)
		}
	case bridge.EventActionComplete:
		if ev.Action != nil {
			s.handleActionCompleteLocked(ev.Action)
		}
	default:
		s.logger.Debug("unknown event treated as heartbeat", "type", ev.Type)
	}
}

// finalizeLocked enters a terminal phase: the watchdog is disarmed, the
// in-progress status cleared, and completed sessions snapshotted.
func (s *Session) finalizeLocked(phase Phase) {
	s.phase = phase
	s.status = ""
	s.disarmWatchdogLocked()

	switch phase {
	case Completed:
		s.persistLocked()
		s.sendUpdate(phaseUpdate(phase, "Search complete"))
	case Failed:
		s.logger.Warn("search failed", "session", s.id, "err", s.errMessage)
		s.sendUpdate(errorUpdate(phase, s.errMessage))
	case TimedOut:
		s.errMessage = shared.ErrSearchTimeout.Error()
		s.logger.Warn("search timed out", "session", s.id)
		s.sendUpdate(errorUpdate(phase, "No response from backend; search abandoned"))
	}
}

// persistLocked writes the completion snapshot. Storage failures are logged
// and swallowed; they never surface to the operator.
func (s *Session) persistLocked() {
	if s.store == nil {
		return
	}
	snap := models.Snapshot{
		Query:      s.query,
		Items:      append([]models.DiscoveredItem(nil), s.items...),
		NewCount:   s.newCount,
		KnownCount: s.knownCount,
		SavedAt:    s.now(),
	}
	if err := s.store.Save(snap); err != nil {
		s.logger.Warn("failed to persist session snapshot", "err", err)
	}
}

// Restore hydrates the session from a stored snapshot if one exists and is
// still fresh. Stale snapshots are deleted and the session stays Idle.
func (s *Session) Restore() error {
	if s.store == nil {
		return shared.ErrSnapshotMissing
	}
	snap, err := s.store.Load()
	if err != nil {
		return err
	}
	if s.now().Sub(snap.SavedAt) > s.cfg.SnapshotTTL {
		if err := s.store.Clear(); err != nil {
			s.logger.Warn("failed to clear stale snapshot", "err", err)
		}
		return shared.ErrSnapshotStale
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.query = snap.Query
	s.items = append([]models.DiscoveredItem(nil), snap.Items...)
	s.newCount = snap.NewCount
	s.knownCount = snap.KnownCount
	s.phase = Completed
	s.nextSeq = len(snap.Items)
	s.logger.Info("session restored from snapshot", "query", snap.Query, "items", len(snap.Items))
	s.sendUpdate(itemsUpdate(len(s.items), "Restored previous session"))
	return nil
}

// ToggleSaved flips the operator-persisted flag on one item.
func (s *Session) ToggleSaved(internalID int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		if s.items[i].InternalID == internalID {
			s.items[i].Saved = !s.items[i].Saved
			return s.items[i].Saved
		}
	}
	return false
}

// Items returns a copy of the result store in arrival order.
func (s *Session) Items() []models.DiscoveredItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.DiscoveredItem(nil), s.items...)
}

// Phase returns the current lifecycle phase.
func (s *Session) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// Query returns the query of the current or last session.
func (s *Session) Query() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.query
}

// Counts returns the backend-reported new/known totals. Authoritative only
// once the phase is Completed.
func (s *Session) Counts() (newCount, knownCount int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.newCount, s.knownCount
}

// ErrorMessage returns the surfaced failure message, if any.
func (s *Session) ErrorMessage() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.errMessage
}

// Status returns the transient "in progress" text cleared on any terminal
// transition.
func (s *Session) Status() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// LastProgress returns the time of the last inbound event.
func (s *Session) LastProgress() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastProgress
}
