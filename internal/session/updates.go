package session

// updateBuffer sizes the update channel; sends never block, so a slow
// consumer loses intermediate updates rather than stalling event handling.
const updateBuffer = 50

// UpdateKind classifies a session update.
type UpdateKind int

const (
	UpdatePhase UpdateKind = iota
	UpdateItems
	UpdateAction
	UpdateError
)

func (k UpdateKind) String() string {
	switch k {
	case UpdatePhase:
		return "phase"
	case UpdateItems:
		return "items"
	case UpdateAction:
		return "action"
	case UpdateError:
		return "error"
	default:
		return ""
	}
}

// Update is a progress event pushed to the CLI or UI layer. It carries
// display data only; consumers read authoritative state from the Session.
type Update struct {
	Kind    UpdateKind
	Phase   Phase
	Count   int // item count for UpdateItems
	Message string
}

// sendUpdate pushes an update without blocking. Uses select with default so
// update reporting never stalls the event handler.
func (s *Session) sendUpdate(u Update) {
	select {
	case s.updates <- u:
	default:
	}
}

func phaseUpdate(phase Phase, message string) Update {
	return Update{Kind: UpdatePhase, Phase: phase, Message: message}
}

func itemsUpdate(count int, message string) Update {
	return Update{Kind: UpdateItems, Count: count, Message: message}
}

func actionUpdate(message string) Update {
	return Update{Kind: UpdateAction, Message: message}
}

func errorUpdate(phase Phase, message string) Update {
	return Update{Kind: UpdateError, Phase: phase, Message: message}
}
