// package bridge defines the duplex event channel between the client and the
// discovery backend.
//
// Commands flow out (start-search, start-action); events flow in (batch,
// progress, result, error, action-complete). The transport is abstract: Conn
// speaks newline-delimited JSON over TCP, Pipe is an in-process pair used by
// tests and the demo backend.
package bridge

// Command type names on the wire.
const (
	CmdStartSearch = "start-search"
	CmdStartAction = "start-action"
)

// Event type names on the wire.
const (
	EventBatch          = "batch"
	EventProgress       = "progress"
	EventResult         = "result"
	EventError          = "error"
	EventActionComplete = "action-complete"
)

// Progress phase labels carried by progress events.
const (
	PhaseStreaming = "streaming"
	PhaseEnriching = "enriching"
)

// Bridge is the client end of the event channel.
//
// Events() is closed when the underlying transport goes away; Send returns
// shared.ErrBridgeClosed after Close.
type Bridge interface {
	Send(cmd Command) error
	Events() <-chan Event
	Close() error
}

// Command is the outbound envelope. Exactly one payload field is set,
// matching Type.
type Command struct {
	Type   string       `json:"type"`
	Search *StartSearch `json:"search,omitempty"`
	Action *StartAction `json:"action,omitempty"`
}

// StartSearch asks the backend to begin a discovery run.
type StartSearch struct {
	Query    string   `json:"query"`
	Channels []string `json:"channels"`
	ActorID  string   `json:"actor_id"`
	Limit    int      `json:"limit"`
}

// StartAction asks the backend to join one discovered item with the given
// actor. At least one of ExternalID, Handle, ItemID identifies the target.
type StartAction struct {
	ItemID     int    `json:"item_id,omitempty"`
	Handle     string `json:"handle,omitempty"`
	ExternalID string `json:"external_id,omitempty"`
	ActorID    string `json:"actor_id"`
}

// Event is the inbound envelope. Exactly one payload field is set, matching
// Type. Unknown types decode with all payloads nil; receivers treat them as
// bare heartbeats.
type Event struct {
	Type     string          `json:"type"`
	Batch    *Batch          `json:"batch,omitempty"`
	Progress *Progress       `json:"progress,omitempty"`
	Result   *Result         `json:"result,omitempty"`
	Error    *SearchError    `json:"error,omitempty"`
	Action   *ActionComplete `json:"action,omitempty"`
}

// Record is one raw item listing as the backend reports it. Mapping to a
// models.DiscoveredItem (member-count fallback, membership default, novelty
// gating) happens in the session package.
type Record struct {
	ExternalID   string   `json:"external_id,omitempty"`
	Handle       string   `json:"handle,omitempty"`
	Title        string   `json:"title"`
	Description  string   `json:"description,omitempty"`
	Kind         string   `json:"kind,omitempty"`
	Members      int      `json:"members,omitempty"`
	Participants int      `json:"participants,omitempty"` // legacy member count
	MembersDelta *int     `json:"members_delta,omitempty"`
	Score        *float64 `json:"score,omitempty"`
	Membership   string   `json:"membership,omitempty"`
	Novelty      string   `json:"novelty,omitempty"`
	Source       string   `json:"source,omitempty"`
}

// Batch is an early, cumulative, possibly-incomplete listing. A batch always
// supersedes the previous batch for the session.
type Batch struct {
	Items         []Record `json:"items"`
	SourceLabel   string   `json:"source_label,omitempty"`
	StatusMessage string   `json:"status_message,omitempty"`
}

// Progress signals a phase change or liveness without altering results.
type Progress struct {
	Phase         string `json:"phase,omitempty"`
	StatusMessage string `json:"status_message,omitempty"`
}

// Result is the terminal success event carrying the final listing and the
// backend-reported novelty totals.
type Result struct {
	Items      []Record `json:"items"`
	NewCount   int      `json:"new_count"`
	KnownCount int      `json:"known_count"`
}

// SearchError is the terminal failure event.
type SearchError struct {
	Message string `json:"message"`
}

// ActionComplete reports the outcome of a join. The target is matched by
// ExternalID, then Handle, then ItemID.
type ActionComplete struct {
	ItemID             int    `json:"item_id,omitempty"`
	Handle             string `json:"handle,omitempty"`
	ExternalID         string `json:"external_id,omitempty"`
	Success            bool   `json:"success"`
	ActorID            string `json:"actor_id,omitempty"`
	UpdatedMemberCount *int   `json:"updated_member_count,omitempty"`
	Message            string `json:"message,omitempty"`
}
