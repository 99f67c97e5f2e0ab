package session

import (
	"errors"
	"testing"

	"github.com/groupscout/groupscout/internal/bridge"
	"github.com/groupscout/groupscout/internal/models"
	"github.com/groupscout/groupscout/internal/shared"
	tu "github.com/groupscout/groupscout/internal/testing"
	"golang.org/x/time/rate"
)

func actionComplete(ev bridge.ActionComplete) bridge.Event {
	return bridge.Event{Type: bridge.EventActionComplete, Action: &ev}
}

func TestBeginAction(t *testing.T) {
	t.Run("dispatches immediately with one ready actor", func(t *testing.T) {
		f := newFixture(t, Config{})
		f.submit(t, "crypto")
		f.sess.HandleEvent(batchEvent(record("alpha_chat", "Alpha")))

		decision, eligible, err := f.sess.BeginAction(1)
		if err != nil {
			t.Fatalf("begin failed: %v", err)
		}
		if decision != Dispatched || len(eligible) != 1 {
			t.Errorf("expected immediate dispatch, got %v with %d eligible", decision, len(eligible))
		}

		sent := f.bridge.SentOfType(bridge.CmdStartAction)
		if len(sent) != 1 {
			t.Fatalf("expected 1 action command, got %d", len(sent))
		}
		if sent[0].Action.Handle != "alpha_chat" || sent[0].Action.ActorID != "primary" {
			t.Errorf("unexpected action payload: %+v", sent[0].Action)
		}

		items := f.sess.Items()
		if items[0].Membership != models.Joining {
			t.Errorf("expected optimistic Joining, got %v", items[0].Membership)
		}
		if !f.sess.HasPending(1) {
			t.Error("expected pending entry recorded")
		}
	})

	t.Run("opens the selection sub-flow with several ready actors", func(t *testing.T) {
		f := newFixture(t, Config{})
		f.actors.SetActors(tu.ReadyActor("primary"), tu.ReadyActor("burner"))
		f.submit(t, "crypto")
		f.sess.HandleEvent(batchEvent(record("alpha_chat", "Alpha")))

		decision, eligible, err := f.sess.BeginAction(1)
		if err != nil {
			t.Fatalf("begin failed: %v", err)
		}
		if decision != NeedsActor || len(eligible) != 2 {
			t.Errorf("expected NeedsActor with 2 eligible, got %v/%d", decision, len(eligible))
		}
		if len(f.bridge.SentOfType(bridge.CmdStartAction)) != 0 {
			t.Error("nothing may be dispatched until the operator confirms")
		}
		if _, open := f.sess.ActorSelectionOpen(); !open {
			t.Error("expected selection sub-flow open")
		}
	})

	t.Run("rejects an unknown item", func(t *testing.T) {
		f := newFixture(t, Config{})
		f.submit(t, "crypto")

		if _, _, err := f.sess.BeginAction(42); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("rejects an item with no actionable identity", func(t *testing.T) {
		f := newFixture(t, Config{})
		f.submit(t, "crypto")
		f.sess.HandleEvent(batchEvent(bridge.Record{Title: "Private group", Participants: 320}))

		if _, _, err := f.sess.BeginAction(1); !errors.Is(err, shared.ErrNoActionTarget) {
			t.Errorf("expected ErrNoActionTarget, got %v", err)
		}
	})

	t.Run("rejects a second action on the same item", func(t *testing.T) {
		f := newFixture(t, Config{})
		f.submit(t, "crypto")
		f.sess.HandleEvent(batchEvent(record("alpha_chat", "Alpha")))

		if _, _, err := f.sess.BeginAction(1); err != nil {
			t.Fatalf("first begin failed: %v", err)
		}
		if _, _, err := f.sess.BeginAction(1); !errors.Is(err, shared.ErrActionPending) {
			t.Errorf("expected ErrActionPending, got %v", err)
		}
	})

	t.Run("rejects when no actor is ready", func(t *testing.T) {
		f := newFixture(t, Config{})
		f.submit(t, "crypto")
		f.sess.HandleEvent(batchEvent(record("alpha_chat", "Alpha")))
		f.actors.SetActors()

		if _, _, err := f.sess.BeginAction(1); !errors.Is(err, shared.ErrNoReadyActor) {
			t.Errorf("expected ErrNoReadyActor, got %v", err)
		}
	})

	t.Run("throttles rapid dispatches", func(t *testing.T) {
		f := newFixture(t, Config{JoinRate: rate.Limit(1e-9), JoinBurst: 1})
		f.submit(t, "crypto")
		f.sess.HandleEvent(batchEvent(record("a", "A"), record("b", "B")))

		if _, _, err := f.sess.BeginAction(1); err != nil {
			t.Fatalf("first action should pass the burst: %v", err)
		}
		if _, _, err := f.sess.BeginAction(2); !errors.Is(err, shared.ErrActionThrottle) {
			t.Errorf("expected ErrActionThrottle, got %v", err)
		}
	})
}

func TestConfirmActor(t *testing.T) {
	prepare := func(t *testing.T) *fixture {
		t.Helper()
		f := newFixture(t, Config{})
		f.actors.SetActors(tu.ReadyActor("primary"), tu.ReadyActor("burner"))
		f.submit(t, "crypto")
		f.sess.HandleEvent(batchEvent(record("alpha_chat", "Alpha")))
		if _, _, err := f.sess.BeginAction(1); err != nil {
			t.Fatalf("begin failed: %v", err)
		}
		return f
	}

	t.Run("dispatches with the chosen actor", func(t *testing.T) {
		f := prepare(t)

		if err := f.sess.ConfirmActor("burner"); err != nil {
			t.Fatalf("confirm failed: %v", err)
		}
		sent := f.bridge.SentOfType(bridge.CmdStartAction)
		if len(sent) != 1 || sent[0].Action.ActorID != "burner" {
			t.Errorf("expected dispatch attributed to burner, got %+v", sent)
		}
		if _, open := f.sess.ActorSelectionOpen(); open {
			t.Error("expected sub-flow closed after confirm")
		}
	})

	t.Run("rejects an actor outside the eligible set", func(t *testing.T) {
		f := prepare(t)

		if err := f.sess.ConfirmActor("stranger"); !errors.Is(err, shared.ErrUnknownActor) {
			t.Errorf("expected ErrUnknownActor, got %v", err)
		}
	})

	t.Run("rejects with no selection open", func(t *testing.T) {
		f := newFixture(t, Config{})
		if err := f.sess.ConfirmActor("primary"); !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("cancel discards the held item", func(t *testing.T) {
		f := prepare(t)

		f.sess.CancelActorSelection()
		if _, open := f.sess.ActorSelectionOpen(); open {
			t.Error("expected sub-flow closed after cancel")
		}
		if len(f.bridge.SentOfType(bridge.CmdStartAction)) != 0 {
			t.Error("cancel must not dispatch anything")
		}
		if f.sess.HasPending(1) {
			t.Error("cancel must not leave a pending entry")
		}
	})
}

func TestActionComplete(t *testing.T) {
	joinFoo := func(t *testing.T, f *fixture) {
		t.Helper()
		f.sess.HandleEvent(batchEvent(record("foo", "Foo"), record("bar", "Bar")))
		if _, _, err := f.sess.BeginAction(1); err != nil {
			t.Fatalf("begin failed: %v", err)
		}
	}

	t.Run("success marks the item joined", func(t *testing.T) {
		f := newFixture(t, Config{})
		f.submit(t, "crypto")
		joinFoo(t, f)

		members := 4200
		f.sess.HandleEvent(actionComplete(bridge.ActionComplete{
			Handle: "foo", Success: true, ActorID: "primary", UpdatedMemberCount: &members,
		}))

		items := f.sess.Items()
		if items[0].Membership != models.Joined {
			t.Errorf("expected Joined, got %v", items[0].Membership)
		}
		if items[0].JoinedViaActor != "primary" {
			t.Errorf("expected join attributed to primary, got %q", items[0].JoinedViaActor)
		}
		if items[0].MemberCount != 4200 {
			t.Errorf("expected member count refreshed, got %d", items[0].MemberCount)
		}
		if f.sess.PendingCount() != 0 {
			t.Error("expected pending entry cleared")
		}
	})

	t.Run("failure rolls Joining back to NotJoined", func(t *testing.T) {
		f := newFixture(t, Config{})
		f.submit(t, "crypto")
		joinFoo(t, f)

		f.sess.HandleEvent(actionComplete(bridge.ActionComplete{
			Handle: "foo", Success: false, Message: "flood wait",
		}))

		items := f.sess.Items()
		if items[0].Membership != models.NotJoined {
			t.Errorf("expected rollback to NotJoined, got %v", items[0].Membership)
		}
		if f.sess.PendingCount() != 0 {
			t.Error("expected pending entry cleared on failure too")
		}
	})

	t.Run("matches by external id before handle", func(t *testing.T) {
		f := newFixture(t, Config{})
		f.submit(t, "crypto")
		f.sess.HandleEvent(batchEvent(
			bridge.Record{ExternalID: "ext-1", Handle: "foo", Title: "Real", Members: 10},
			bridge.Record{Handle: "foo", Title: "Decoy", Members: 10},
		))
		if _, _, err := f.sess.BeginAction(1); err != nil {
			t.Fatalf("begin failed: %v", err)
		}

		f.sess.HandleEvent(actionComplete(bridge.ActionComplete{
			ExternalID: "ext-1", Handle: "foo", Success: true,
		}))

		items := f.sess.Items()
		if items[0].Membership != models.Joined {
			t.Errorf("expected the external-id match joined, got %v", items[0].Membership)
		}
		if items[1].Membership == models.Joined {
			t.Error("the handle decoy must not be touched")
		}
	})

	t.Run("backfills the actor from the pending entry", func(t *testing.T) {
		f := newFixture(t, Config{})
		f.submit(t, "crypto")
		joinFoo(t, f)

		f.sess.HandleEvent(actionComplete(bridge.ActionComplete{Handle: "foo", Success: true}))

		items := f.sess.Items()
		if items[0].JoinedViaActor != "primary" {
			t.Errorf("expected actor backfilled from pending entry, got %q", items[0].JoinedViaActor)
		}
	})

	t.Run("completion for a vanished item is ignored", func(t *testing.T) {
		f := newFixture(t, Config{})
		f.submit(t, "crypto")
		joinFoo(t, f)

		// A later batch drops foo entirely.
		f.sess.HandleEvent(batchEvent(record("bar", "Bar")))
		f.sess.HandleEvent(actionComplete(bridge.ActionComplete{Handle: "foo", Success: true}))

		for _, item := range f.sess.Items() {
			if item.Membership == models.Joined {
				t.Errorf("no current item may be marked joined: %+v", item)
			}
		}
		if f.sess.PendingCount() != 0 {
			t.Error("expected the orphaned pending entry cleared")
		}
	})

	t.Run("completions resolve after the session ends", func(t *testing.T) {
		f := newFixture(t, Config{})
		f.submit(t, "crypto")
		joinFoo(t, f)
		f.sess.HandleEvent(resultEvent(2, 0, record("foo", "Foo"), record("bar", "Bar")))
		if f.sess.Phase() != Completed {
			t.Fatalf("expected Completed, got %v", f.sess.Phase())
		}

		f.sess.HandleEvent(actionComplete(bridge.ActionComplete{Handle: "foo", Success: true}))

		items := f.sess.Items()
		if items[0].Membership != models.Joined {
			t.Errorf("expected late completion applied, got %v", items[0].Membership)
		}
		if f.sess.Phase() != Completed {
			t.Errorf("late completion must not re-open the session, got %v", f.sess.Phase())
		}
	})

	t.Run("success never regresses monitoring state", func(t *testing.T) {
		f := newFixture(t, Config{})
		f.submit(t, "crypto")
		f.sess.HandleEvent(batchEvent(bridge.Record{Handle: "foo", Title: "Foo", Members: 10, Membership: "monitoring"}))

		f.sess.HandleEvent(actionComplete(bridge.ActionComplete{Handle: "foo", Success: true}))

		if got := f.sess.Items()[0].Membership; got != models.Monitoring {
			t.Errorf("expected Monitoring preserved, got %v", got)
		}
	})
}
