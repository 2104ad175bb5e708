package projector

import "time"

// Phase labels the stage a campaign is in. The set is open: external
// producers may introduce new phases, and unknown labels pass through
// unchanged so older consumers keep working. Wire format stays a plain
// string.
type Phase string

const (
	PhaseCreated   Phase = "created"
	PhaseDiscovery Phase = "discovery"
	PhaseScoring   Phase = "scoring"
	PhaseOutreach  Phase = "outreach"
	PhaseCompleted Phase = "completed"
)

// TaskStatus labels a task's progress. Open set with string wire format,
// like Phase.
type TaskStatus string

const (
	TaskPending   TaskStatus = "pending"
	TaskRunning   TaskStatus = "running"
	TaskCompleted TaskStatus = "completed"
	TaskError     TaskStatus = "error"
)

// TaskState is the in-flight task embedded in a campaign snapshot. It is
// never persisted independently by this subsystem.
type TaskState struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Status      TaskStatus `json:"status"`
	// OrderIndex defines presentation order. Unique per campaign, not
	// necessarily contiguous.
	OrderIndex int `json:"orderIndex"`
}

// CampaignState is the live snapshot of one campaign, owned exclusively
// by the projector. Everyone else receives value copies and treats them
// as read-only.
//
// Invariants: 0 <= CompletedTasks <= TotalTasks; LeadsDiscovered and
// LeadsScored never decrease; LastUpdated is monotonically
// non-decreasing; CurrentTask is non-nil only while a task is in flight.
type CampaignState struct {
	CampaignID      string     `json:"campaignId"`
	Name            string     `json:"name"`
	Phase           Phase      `json:"phase"`
	CompletedTasks  int        `json:"completedTasks"`
	TotalTasks      int        `json:"totalTasks"`
	CurrentTask     *TaskState `json:"currentTask,omitempty"`
	LeadsDiscovered int        `json:"leadsDiscovered"`
	LeadsScored     int        `json:"leadsScored"`
	LastUpdated     time.Time  `json:"lastUpdated"`
}

// NewCampaignState returns the zero state a campaign's fold starts from.
func NewCampaignState(campaignID string) CampaignState {
	return CampaignState{CampaignID: campaignID}
}

// Clone returns a deep copy safe to hand to readers while the fold
// continues mutating its own copy.
func (s CampaignState) Clone() CampaignState {
	clone := s
	if s.CurrentTask != nil {
		task := *s.CurrentTask
		clone.CurrentTask = &task
	}
	return clone
}
