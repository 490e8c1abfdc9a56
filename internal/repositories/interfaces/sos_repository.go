package interfaces

import (
	"context"
	"errors"

	"reliefnet/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ErrNotFound is returned when a lookup misses.
var ErrNotFound = errors.New("record not found")

// ErrPreconditionFailed is returned by the conditional mutations when the
// record exists but no longer satisfies the update's pre-state filter. The
// caller re-fetches to decide what actually happened.
var ErrPreconditionFailed = errors.New("precondition failed")

// SOSRepository owns SOS request records. All status and assignment
// mutations are single atomic conditional updates: the write applies only if
// the record still matches the expected pre-state, which is what keeps two
// concurrent accepts from both succeeding.
type SOSRepository interface {
	Create(ctx context.Context, sos *models.SOSRequest) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.SOSRequest, error)

	// ListOpenOrAssigned returns Pending requests plus requests assigned to
	// the given volunteer, newest first.
	ListOpenOrAssigned(ctx context.Context, volunteerID primitive.ObjectID) ([]*models.SOSRequest, error)
	ListAll(ctx context.Context) ([]*models.SOSRequest, error)
	CountsByStatus(ctx context.Context) (map[models.SOSStatus]int64, error)

	// TryAssign claims a Pending request for the volunteer. Succeeds when the
	// request is unassigned or already assigned to this same volunteer
	// (idempotent re-accept).
	TryAssign(ctx context.Context, id, volunteerID primitive.ObjectID) (*models.SOSRequest, error)

	// UpdateStatusIfAssignee moves an Accepted/InProgress request to the new
	// status, but only for the volunteer currently holding the assignment.
	UpdateStatusIfAssignee(ctx context.Context, id, volunteerID primitive.ObjectID, status models.SOSStatus) (*models.SOSRequest, error)

	// CancelIfActive cancels a Pending/Accepted/InProgress request and clears
	// the assignment.
	CancelIfActive(ctx context.Context, id primitive.ObjectID) (*models.SOSRequest, error)

	// AdminAssign binds a volunteer and sets the status on any non-terminal
	// request, regardless of current assignment.
	AdminAssign(ctx context.Context, id, volunteerID primitive.ObjectID, status models.SOSStatus) (*models.SOSRequest, error)

	AppendChat(ctx context.Context, id primitive.ObjectID, msg models.ChatMessage) error
}
