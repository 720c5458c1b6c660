package models

import "time"

// Run states. A run is one dispatched solver request for one host window,
// keyed by its correlation id (SingletonID).
const (
	RunDispatched       = "dispatched"
	RunAwaitingCallback = "awaiting_callback"
	RunReconciling      = "reconciling"
	RunReconciled       = "reconciled"
	RunTimedOut         = "timed_out"
	RunFailed           = "failed"
)

// PlannerRun is the persisted state machine for one solver round trip. The
// dispatch and the callback are separate process invocations correlated
// only through this row, which is what makes reconciliation idempotent and
// restart-safe.
type PlannerRun struct {
	SingletonID string `gorm:"primaryKey" json:"singletonId"`
	HostID      string `gorm:"index" json:"hostId"`
	MeetingID   string `json:"meetingId,omitempty"`
	FileKey     string `json:"fileKey"`
	// ArtifactChecksum is the SHA-256 of the dispatched request payload;
	// the callback handler refuses to reconcile against a drifted artifact.
	ArtifactChecksum string `json:"artifactChecksum,omitempty"`

	Status string `gorm:"index" json:"status"`

	WindowStartDate time.Time `json:"windowStartDate"`
	WindowEndDate   time.Time `json:"windowEndDate"`
	HostTimezone    string    `json:"hostTimezone"`

	DispatchedAt time.Time  `json:"dispatchedAt"`
	CallbackAt   *time.Time `json:"callbackAt,omitempty"`

	FailureReason string `json:"failureReason,omitempty"`

	CreatedAt time.Time `json:"createdDate"`
	UpdatedAt time.Time `json:"updatedAt"`
}
