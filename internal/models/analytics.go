package models

// Analytics is the admin dashboard snapshot: request counts by lifecycle
// status plus volunteer counts by approval status.
type Analytics struct {
	TotalSOS      int64 `json:"total_sos"`
	PendingSOS    int64 `json:"pending_sos"`
	AcceptedSOS   int64 `json:"accepted_sos"`
	InProgressSOS int64 `json:"in_progress_sos"`
	CompletedSOS  int64 `json:"completed_sos"`
	CancelledSOS  int64 `json:"cancelled_sos"`

	TotalVolunteers     int64 `json:"total_volunteers"`
	ApprovedVolunteers  int64 `json:"approved_volunteers"`
	PendingVolunteers   int64 `json:"pending_volunteers"`
	SuspendedVolunteers int64 `json:"suspended_volunteers"`
}
