package session

import (
	"github.com/groupscout/groupscout/internal/bridge"
	"github.com/groupscout/groupscout/internal/models"
)

// mapRecordsLocked converts raw backend records into discovered items,
// assigning fresh session-local sequence numbers in arrival order.
//
// Mapping rules: the member count falls back from the primary field to the
// legacy participants field to zero; membership defaults to NotJoined unless
// the backend explicitly reports otherwise; novelty is set only when the
// backend includes an indicator.
func (s *Session) mapRecordsLocked(records []bridge.Record, fallbackSource string) []models.DiscoveredItem {
	items := make([]models.DiscoveredItem, 0, len(records))
	for _, rec := range records {
		s.nextSeq++

		item := models.DiscoveredItem{
			InternalID:       s.nextSeq,
			ExternalID:       rec.ExternalID,
			Handle:           rec.Handle,
			Title:            rec.Title,
			Description:      rec.Description,
			Kind:             models.ParseItemKind(rec.Kind),
			MemberCount:      memberCount(rec),
			MemberCountDelta: rec.MembersDelta,
			RelevanceScore:   rec.Score,
			Membership:       parseMembership(rec.Membership),
			Source:           rec.Source,
			Query:            s.query,
			Novelty:          parseNovelty(rec.Novelty),
		}
		if item.Source == "" {
			item.Source = fallbackSource
		}
		items = append(items, item)
	}
	return items
}

func memberCount(rec bridge.Record) int {
	if rec.Members > 0 {
		return rec.Members
	}
	if rec.Participants > 0 {
		return rec.Participants
	}
	return 0
}

func parseMembership(label string) models.MembershipState {
	switch label {
	case "joined":
		return models.Joined
	case "monitoring":
		return models.Monitoring
	default:
		return models.NotJoined
	}
}

func parseNovelty(label string) models.Novelty {
	switch label {
	case "new":
		return models.NoveltyNew
	case "known":
		return models.NoveltyKnown
	default:
		return models.NoveltyUnknown
	}
}

// applyBatchLocked replaces the result store with the batch listing. Batches
// are cumulative backend state, not deltas, so the last batch wins outright.
func (s *Session) applyBatchLocked(batch *bridge.Batch) {
	s.items = s.mapRecordsLocked(batch.Items, batch.SourceLabel)
	if batch.StatusMessage != "" {
		s.status = batch.StatusMessage
	}
	s.sendUpdate(itemsUpdate(len(s.items), s.status))
}

// applyProgressLocked flips between Streaming and Enriching and refreshes
// the status line; items are untouched.
func (s *Session) applyProgressLocked(p *bridge.Progress) {
	switch p.Phase {
	case bridge.PhaseEnriching:
		s.phase = Enriching
	case bridge.PhaseStreaming:
		s.phase = Streaming
	}
	if p.StatusMessage != "" {
		s.status = p.StatusMessage
	}
	s.sendUpdate(phaseUpdate(s.phase, s.status))
}

// applyResultLocked installs the final listing, records the backend-reported
// novelty totals, clears any stale error, and completes the session.
func (s *Session) applyResultLocked(res *bridge.Result) {
	s.items = s.mapRecordsLocked(res.Items, "")
	s.newCount = res.NewCount
	s.knownCount = res.KnownCount
	s.errMessage = ""
	s.finalizeLocked(Completed)
}
