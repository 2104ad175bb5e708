package projector

import (
	"fmt"
	"time"

	"campaignd/internal/events"
	"campaignd/pkg/logging"
)

// Inconsistency is a diagnostic raised when an event contradicts the
// snapshot invariants, e.g. a task completion beyond the planned total.
// It signals an upstream ordering or duplication bug and is surfaced on
// the sync feed rather than silently corrected.
type Inconsistency struct {
	CampaignID string
	EventID    string
	Message    string
}

func (i *Inconsistency) Error() string {
	return fmt.Sprintf("projection inconsistency in campaign %s (event %s): %s",
		i.CampaignID, i.EventID, i.Message)
}

// Apply folds one event into a campaign snapshot. It is pure: the input
// state is not mutated, the same (state, event) pair always yields the
// same result, and replaying a prefix then the suffix equals replaying
// the whole sequence.
//
// Unknown event types leave the state unchanged and are reported via a
// debug diagnostic only, so new variants never crash older folds.
func Apply(state CampaignState, event events.Event) (CampaignState, *Inconsistency) {
	next := state.Clone()
	if next.CampaignID == "" {
		next.CampaignID = event.CampaignID()
	}

	switch e := event.(type) {
	case events.CampaignCreated:
		next.Name = e.Name
		next.Phase = PhaseCreated
		next.CompletedTasks = 0
		next.TotalTasks = 0
		next.LeadsDiscovered = 0
		next.LeadsScored = 0
		next.CurrentTask = nil

	case events.PhaseChanged:
		next.Phase = Phase(e.Phase)

	case events.TasksPlanned:
		if e.Count > 0 {
			next.TotalTasks += e.Count
		}

	case events.TaskStarted:
		next.CurrentTask = &TaskState{
			ID:          e.TaskID,
			Title:       e.Title,
			Description: e.Description,
			Status:      TaskRunning,
			OrderIndex:  e.OrderIndex,
		}

	case events.TaskCompleted:
		if next.CurrentTask != nil && next.CurrentTask.ID == e.TaskID {
			next.CurrentTask = nil
		}
		if next.CompletedTasks >= next.TotalTasks {
			// Not clamped away silently: the counter stays capped and
			// the caller receives the diagnostic to surface.
			next.LastUpdated = laterOf(next.LastUpdated, event.OccurredAt())
			return next, &Inconsistency{
				CampaignID: event.CampaignID(),
				EventID:    event.EventID(),
				Message: fmt.Sprintf("task %s completed but completedTasks (%d) already equals totalTasks (%d)",
					e.TaskID, next.CompletedTasks, next.TotalTasks),
			}
		}
		next.CompletedTasks++

	case events.LeadsDiscovered:
		if e.Count > 0 {
			next.LeadsDiscovered += e.Count
		}

	case events.LeadsScored:
		if e.Count > 0 {
			next.LeadsScored += e.Count
		}

	default:
		logging.Debug("Projector", "Ignoring unknown event type %s for campaign %s",
			event.EventType(), event.CampaignID())
		return state.Clone(), nil
	}

	next.LastUpdated = laterOf(next.LastUpdated, event.OccurredAt())
	return next, nil
}

// laterOf keeps LastUpdated monotonically non-decreasing even if an
// event carries a timestamp older than the snapshot.
func laterOf(current, candidate time.Time) time.Time {
	if candidate.After(current) {
		return candidate
	}
	return current
}
