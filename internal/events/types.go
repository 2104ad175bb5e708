package events

import (
	"time"

	"github.com/google/uuid"
)

// Type discriminates domain event variants on the wire and in the
// projector's fold.
type Type string

const (
	// TypeCampaignCreated records the creation of a campaign.
	TypeCampaignCreated Type = "campaign.created"
	// TypePhaseChanged records a campaign moving to a new phase.
	TypePhaseChanged Type = "campaign.phase_changed"
	// TypeTasksPlanned records tasks being added to a campaign's plan.
	TypeTasksPlanned Type = "task.planned"
	// TypeTaskStarted records a task entering execution.
	TypeTaskStarted Type = "task.started"
	// TypeTaskCompleted records a task finishing.
	TypeTaskCompleted Type = "task.completed"
	// TypeLeadsDiscovered records leads found by a tool invocation.
	TypeLeadsDiscovered Type = "lead.discovered"
	// TypeLeadsScored records leads that received a score.
	TypeLeadsScored Type = "lead.scored"
)

// Event is an immutable fact about a campaign, task, or lead lifecycle
// transition. Events are append-only and ordered by emission sequence per
// campaign; the id and timestamp are set by the producer at emission.
type Event interface {
	// EventID is globally unique.
	EventID() string
	// CampaignID scopes ordering: within one campaign, events are
	// applied in publish order.
	CampaignID() string
	// OccurredAt is the producer-assigned timestamp.
	OccurredAt() time.Time
	// EventType discriminates the variant.
	EventType() Type
}

// Meta carries the fields shared by every event variant.
type Meta struct {
	ID        string    `json:"eventId"`
	Campaign  string    `json:"campaignId"`
	Timestamp time.Time `json:"timestamp"`
}

func (m Meta) EventID() string       { return m.ID }
func (m Meta) CampaignID() string    { return m.Campaign }
func (m Meta) OccurredAt() time.Time { return m.Timestamp }

// NewMeta stamps an event with a fresh id and the current time.
func NewMeta(campaignID string) Meta {
	return Meta{
		ID:        uuid.NewString(),
		Campaign:  campaignID,
		Timestamp: time.Now().UTC(),
	}
}

// CampaignCreated records the creation of a campaign.
type CampaignCreated struct {
	Meta
	Name string `json:"name"`
}

func (CampaignCreated) EventType() Type { return TypeCampaignCreated }

// PhaseChanged records a campaign moving to a new phase label.
type PhaseChanged struct {
	Meta
	Phase string `json:"phase"`
}

func (PhaseChanged) EventType() Type { return TypePhaseChanged }

// TasksPlanned records Count tasks being added to the campaign's plan.
type TasksPlanned struct {
	Meta
	Count int `json:"count"`
}

func (TasksPlanned) EventType() Type { return TypeTasksPlanned }

// TaskStarted records a task entering execution. It carries the full task
// description so the projector can surface it as the current task.
type TaskStarted struct {
	Meta
	TaskID      string `json:"taskId"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	OrderIndex  int    `json:"orderIndex"`
}

func (TaskStarted) EventType() Type { return TypeTaskStarted }

// TaskCompleted records a task finishing.
type TaskCompleted struct {
	Meta
	TaskID      string `json:"taskId"`
	Title       string `json:"title"`
	CompletedBy string `json:"completedBy,omitempty"`
}

func (TaskCompleted) EventType() Type { return TypeTaskCompleted }

// LeadsDiscovered records Count leads found by the named source, e.g. a
// tool server. Source is informational only.
type LeadsDiscovered struct {
	Meta
	Count  int    `json:"count"`
	Source string `json:"source,omitempty"`
}

func (LeadsDiscovered) EventType() Type { return TypeLeadsDiscovered }

// LeadsScored records Count leads receiving a score.
type LeadsScored struct {
	Meta
	Count int `json:"count"`
}

func (LeadsScored) EventType() Type { return TypeLeadsScored }
