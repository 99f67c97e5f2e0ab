package models

import (
	"strconv"
	"time"
)

// ItemKind distinguishes the two kinds of discoverable resources.
type ItemKind int

const (
	KindGroup ItemKind = iota
	KindChannel
)

func (k ItemKind) String() string {
	switch k {
	case KindGroup:
		return "group"
	case KindChannel:
		return "channel"
	default:
		return ""
	}
}

// ParseItemKind maps a wire label to an ItemKind. Unknown labels default to
// KindGroup, matching the backend's own default.
func ParseItemKind(s string) ItemKind {
	if s == "channel" {
		return KindChannel
	}
	return KindGroup
}

// MembershipState tracks the join lifecycle of a discovered item.
//
// Legal transitions: NotJoined → Joining → {Joined | NotJoined}. Once Joined
// (or Monitoring) the state never regresses.
type MembershipState int

const (
	NotJoined MembershipState = iota
	Joining
	Joined
	Monitoring
)

func (s MembershipState) String() string {
	switch s {
	case NotJoined:
		return "not_joined"
	case Joining:
		return "joining"
	case Joined:
		return "joined"
	case Monitoring:
		return "monitoring"
	default:
		return ""
	}
}

// IsMember reports whether the state counts as "joined" for filtering
// purposes (Joined and Monitoring both do).
func (s MembershipState) IsMember() bool {
	return s == Joined || s == Monitoring
}

// Novelty is the backend-asserted "new vs. already known" classification.
// It stays NoveltyUnknown until the backend includes an explicit indicator.
type Novelty int

const (
	NoveltyUnknown Novelty = iota
	NoveltyNew
	NoveltyKnown
)

func (n Novelty) String() string {
	switch n {
	case NoveltyNew:
		return "new"
	case NoveltyKnown:
		return "known"
	default:
		return "unknown"
	}
}

// DiscoveredItem represents one group or channel returned by a search.
//
// InternalID is a session-local sequence number: unique and stable within one
// search, but not a durable identity. ExternalID, once the backend resolves
// it, is the durable identity and the preferred track key.
type DiscoveredItem struct {
	InternalID       int
	ExternalID       string // empty until the backend resolves a durable id
	Handle           string // public alias, empty for private groups
	Title            string
	Description      string
	Kind             ItemKind
	MemberCount      int
	MemberCountDelta *int // vs. last known value, nil when unreported
	RelevanceScore   *float64
	Membership       MembershipState
	JoinedViaActor   string // actor that performed the join, if any
	Source           string // discovery source that produced this item
	Query            string // query string that produced this item
	Novelty          Novelty
	Saved            bool
}

// TrackKey returns the preferred stable identifier for the item:
// external id, then handle, then the session-local internal id.
func (d DiscoveredItem) TrackKey() string {
	if d.ExternalID != "" {
		return "ext:" + d.ExternalID
	}
	if d.Handle != "" {
		return "handle:" + d.Handle
	}
	return internalKey(d.InternalID)
}

func internalKey(id int) string {
	return "seq:" + strconv.Itoa(id)
}

// Actionable reports whether the item carries an identity a join command can
// reference. Items with neither an external id nor a handle cannot be acted on.
func (d DiscoveredItem) Actionable() bool {
	return d.ExternalID != "" || d.Handle != ""
}

// ActorStatus reports whether an account is usable for join actions.
type ActorStatus int

const (
	ActorNotReady ActorStatus = iota
	ActorReady
)

func (s ActorStatus) String() string {
	if s == ActorReady {
		return "ready"
	}
	return "not_ready"
}

// Actor is an authenticated account capable of performing joins. The client
// only reads actor records; the directory owns them.
type Actor struct {
	ID     string
	Label  string
	Status ActorStatus
}

// Snapshot is the persisted form of a completed search session.
type Snapshot struct {
	Query      string           `json:"query"`
	Items      []DiscoveredItem `json:"items"`
	NewCount   int              `json:"new_count"`
	KnownCount int              `json:"known_count"`
	SavedAt    time.Time        `json:"saved_at"`
}
