package session

import (
	"fmt"
	"time"

	"github.com/groupscout/groupscout/internal/bridge"
	"github.com/groupscout/groupscout/internal/models"
	"github.com/groupscout/groupscout/internal/shared"
)

// PendingAction is one in-flight join, keyed by the target's session-local
// id. It exists from dispatch until the terminal completion callback,
// however long that takes; at most one per item.
type PendingAction struct {
	InternalID  int
	ExternalID  string
	Handle      string
	ChosenActor string
	StartedAt   time.Time
}

// heldAction is the account-selection sub-flow: the target item parked while
// the operator picks an actor.
type heldAction struct {
	internalID int
	eligible   []models.Actor
}

// Decision reports how BeginAction proceeded.
type Decision int

const (
	// Dispatched means the action command went out with the single
	// eligible actor.
	Dispatched Decision = iota
	// NeedsActor means more than one actor is eligible; the item is held
	// until ConfirmActor or CancelActorSelection.
	NeedsActor
)

// BeginAction starts a join for the item with the given session-local id.
//
// It rejects items with nothing to act on, items with an action already in
// flight, and submissions with no ready actor. With exactly one ready actor
// the command is dispatched immediately; with several, the selection
// sub-flow opens and the eligible actors are returned.
func (s *Session) BeginAction(internalID int) (Decision, []models.Actor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item := s.findItemLocked(internalID)
	if item == nil {
		return 0, nil, fmt.Errorf("%w: no item with id %d", shared.ErrInvalidArgument, internalID)
	}
	if !item.Actionable() {
		return 0, nil, shared.ErrNoActionTarget
	}
	if _, inFlight := s.pending[internalID]; inFlight {
		return 0, nil, shared.ErrActionPending
	}

	eligible := s.actors.Ready()
	switch len(eligible) {
	case 0:
		return 0, nil, shared.ErrNoReadyActor
	case 1:
		if err := s.executeLocked(item, eligible[0]); err != nil {
			return 0, nil, err
		}
		return Dispatched, eligible, nil
	default:
		s.held = &heldAction{internalID: internalID, eligible: eligible}
		return NeedsActor, eligible, nil
	}
}

// ConfirmActor resolves the selection sub-flow with the chosen actor and
// dispatches the held action.
func (s *Session) ConfirmActor(actorID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.held == nil {
		return fmt.Errorf("%w: no actor selection open", shared.ErrInvalidInput)
	}

	var chosen *models.Actor
	for i := range s.held.eligible {
		if s.held.eligible[i].ID == actorID {
			chosen = &s.held.eligible[i]
			break
		}
	}
	if chosen == nil {
		return fmt.Errorf("%w: %s", shared.ErrUnknownActor, actorID)
	}

	item := s.findItemLocked(s.held.internalID)
	s.held = nil
	if item == nil {
		// The view changed under the modal; nothing to act on anymore.
		return fmt.Errorf("%w: held item is gone", shared.ErrInvalidInput)
	}
	return s.executeLocked(item, *chosen)
}

// CancelActorSelection discards the held item with no side effects.
func (s *Session) CancelActorSelection() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.held = nil
}

// ActorSelectionOpen reports whether the sub-flow is waiting on the operator
// and returns the eligible actors when it is.
func (s *Session) ActorSelectionOpen() ([]models.Actor, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.held == nil {
		return nil, false
	}
	return append([]models.Actor(nil), s.held.eligible...), true
}

// executeLocked creates the PendingAction, sends the join command, and
// optimistically marks the item Joining.
func (s *Session) executeLocked(item *models.DiscoveredItem, actor models.Actor) error {
	if !s.limiter.Allow() {
		return shared.ErrActionThrottle
	}

	cmd := bridge.Command{
		Type: bridge.CmdStartAction,
		Action: &bridge.StartAction{
			ItemID:     item.InternalID,
			Handle:     item.Handle,
			ExternalID: item.ExternalID,
			ActorID:    actor.ID,
		},
	}
	if err := s.bridge.Send(cmd); err != nil {
		return fmt.Errorf("failed to dispatch action: %w", err)
	}

	s.pending[item.InternalID] = PendingAction{
		InternalID:  item.InternalID,
		ExternalID:  item.ExternalID,
		Handle:      item.Handle,
		ChosenActor: actor.ID,
		StartedAt:   s.now(),
	}
	if item.Membership == models.NotJoined {
		item.Membership = models.Joining
	}
	s.logger.Info("join dispatched", "item", item.Title, "actor", actor.ID)
	s.sendUpdate(actionUpdate(fmt.Sprintf("Joining %s as %s", item.Title, actor.Label)))
	return nil
}

// handleActionCompleteLocked resolves a join callback. The target is matched
// by identity (external id, then handle, then internal id), never by list
// position; a completion for an item no longer displayed clears its pending
// entry and is otherwise ignored.
func (s *Session) handleActionCompleteLocked(ev *bridge.ActionComplete) {
	item := s.matchItemLocked(ev)

	actorID := ev.ActorID
	if pending, key, ok := s.matchPendingLocked(ev); ok {
		delete(s.pending, key)
		if actorID == "" {
			actorID = pending.ChosenActor
		}
	}

	if item == nil {
		s.logger.Debug("action completion for unknown item ignored",
			"external_id", ev.ExternalID, "handle", ev.Handle, "item_id", ev.ItemID)
		return
	}

	if ev.Success {
		if !item.Membership.IsMember() {
			item.Membership = models.Joined
		}
		item.JoinedViaActor = actorID
		if ev.UpdatedMemberCount != nil {
			item.MemberCount = *ev.UpdatedMemberCount
		}
		s.sendUpdate(actionUpdate(fmt.Sprintf("Joined %s", item.Title)))
	} else {
		// The item must not stay stuck at Joining; joined state never
		// regresses.
		if item.Membership == models.Joining {
			item.Membership = models.NotJoined
		}
		msg := ev.Message
		if msg == "" {
			msg = "join failed"
		}
		s.logger.Warn("join failed", "item", item.Title, "err", msg)
		s.sendUpdate(actionUpdate(fmt.Sprintf("Could not join %s: %s", item.Title, msg)))
	}
}

// PendingCount returns the number of in-flight actions.
func (s *Session) PendingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// HasPending reports whether the item has an in-flight action.
func (s *Session) HasPending(internalID int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.pending[internalID]
	return ok
}

func (s *Session) findItemLocked(internalID int) *models.DiscoveredItem {
	for i := range s.items {
		if s.items[i].InternalID == internalID {
			return &s.items[i]
		}
	}
	return nil
}

// matchItemLocked resolves a completion target against the current items by
// identity preference: external id, then handle, then internal id.
func (s *Session) matchItemLocked(ev *bridge.ActionComplete) *models.DiscoveredItem {
	if ev.ExternalID != "" {
		for i := range s.items {
			if s.items[i].ExternalID == ev.ExternalID {
				return &s.items[i]
			}
		}
	}
	if ev.Handle != "" {
		for i := range s.items {
			if s.items[i].Handle == ev.Handle {
				return &s.items[i]
			}
		}
	}
	if ev.ItemID != 0 {
		return s.findItemLocked(ev.ItemID)
	}
	return nil
}

// matchPendingLocked finds the pending entry for a completion using the same
// identity preference as item matching.
func (s *Session) matchPendingLocked(ev *bridge.ActionComplete) (PendingAction, int, bool) {
	if ev.ExternalID != "" {
		for key, p := range s.pending {
			if p.ExternalID == ev.ExternalID {
				return p, key, true
			}
		}
	}
	if ev.Handle != "" {
		for key, p := range s.pending {
			if p.Handle == ev.Handle {
				return p, key, true
			}
		}
	}
	if ev.ItemID != 0 {
		if p, ok := s.pending[ev.ItemID]; ok {
			return p, ev.ItemID, true
		}
	}
	return PendingAction{}, 0, false
}
