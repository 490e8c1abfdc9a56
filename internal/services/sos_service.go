package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"reliefnet/internal/models"
	"reliefnet/internal/repositories/interfaces"
	"reliefnet/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const analyticsCacheKey = "analytics:snapshot"
const analyticsCacheTTL = 30 * time.Second

// EventBroadcaster fans out state changes to connected sessions. Delivery is
// best-effort and at-most-once per session; the store stays the source of
// truth and clients reconcile with a full fetch after reconnecting.
type EventBroadcaster interface {
	BroadcastNewSOS(sos *models.SOSRequest)
	BroadcastStatusUpdate(sos *models.SOSRequest)
	BroadcastChatMessage(sosID primitive.ObjectID, msg models.ChatMessage)
}

// SMSNotifier alerts a volunteer out-of-band when an admin assigns them.
type SMSNotifier interface {
	SendSMS(ctx context.Context, phone, message string) error
}

type SOSService interface {
	Create(ctx context.Context, request *CreateSOSRequest) (*models.SOSRequest, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.SOSRequest, error)
	Accept(ctx context.Context, id, volunteerID primitive.ObjectID) (*models.SOSRequest, error)
	UpdateStatus(ctx context.Context, id, volunteerID primitive.ObjectID, status models.SOSStatus) (*models.SOSRequest, error)
	AssignVolunteer(ctx context.Context, id, volunteerID primitive.ObjectID, status models.SOSStatus) (*models.SOSRequest, error)
	Cancel(ctx context.Context, id primitive.ObjectID) (*models.SOSRequest, error)
	AppendChat(ctx context.Context, id primitive.ObjectID, sender, message string) (*models.ChatMessage, error)
	ListOpenOrMine(ctx context.Context, volunteerID primitive.ObjectID) ([]*models.SOSRequest, error)
	ListAll(ctx context.Context) ([]*models.SOSRequest, error)
	Analytics(ctx context.Context) (*models.Analytics, error)
}

type CreateSOSRequest struct {
	Name      string   `json:"name"`
	Phone     string   `json:"phone"`
	Message   string   `json:"message"`
	Address   string   `json:"address"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

type sosService struct {
	sosRepo       interfaces.SOSRepository
	volunteerRepo interfaces.VolunteerRepository
	broadcaster   EventBroadcaster
	cache         CacheService
	sms           SMSNotifier
	logger        *logger.Logger

	// One mutex per live SOS id, held across commit and broadcast so a
	// record's events always leave in commit order.
	locks sync.Map
}

func NewSOSService(
	sosRepo interfaces.SOSRepository,
	volunteerRepo interfaces.VolunteerRepository,
	broadcaster EventBroadcaster,
	cache CacheService,
	sms SMSNotifier,
	log *logger.Logger,
) SOSService {
	return &sosService{
		sosRepo:       sosRepo,
		volunteerRepo: volunteerRepo,
		broadcaster:   broadcaster,
		cache:         cache,
		sms:           sms,
		logger:        log,
	}
}

func (s *sosService) lockFor(id primitive.ObjectID) *sync.Mutex {
	mu, _ := s.locks.LoadOrStore(id, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

func (s *sosService) Create(ctx context.Context, request *CreateSOSRequest) (*models.SOSRequest, error) {
	if request.Latitude == nil || request.Longitude == nil {
		return nil, NewValidationError("latitude and longitude are required")
	}
	lat, lng := *request.Latitude, *request.Longitude
	if math.IsNaN(lat) || math.IsNaN(lng) || lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return nil, NewValidationError("latitude and longitude are out of range")
	}

	sos := &models.SOSRequest{
		RequesterName:   defaultIfBlank(request.Name, models.DefaultRequesterName),
		Phone:           defaultIfBlank(request.Phone, models.DefaultPhone),
		Message:         defaultIfBlank(request.Message, models.DefaultMessage),
		ProvidedAddress: defaultIfBlank(request.Address, models.DefaultAddress),
		Location:        models.Location{Latitude: lat, Longitude: lng},
		Status:          models.SOSStatusPending,
	}

	if err := s.sosRepo.Create(ctx, sos); err != nil {
		return nil, err
	}

	s.invalidateAnalytics(ctx)
	s.broadcaster.BroadcastNewSOS(sos)

	s.logger.WithSOSID(sos.ID).Info("SOS request created")
	return sos, nil
}

func (s *sosService) GetByID(ctx context.Context, id primitive.ObjectID) (*models.SOSRequest, error) {
	sos, err := s.sosRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return sos, nil
}

func (s *sosService) Accept(ctx context.Context, id, volunteerID primitive.ObjectID) (*models.SOSRequest, error) {
	mu := s.lockFor(id)
	mu.Lock()
	defer mu.Unlock()

	sos, err := s.sosRepo.TryAssign(ctx, id, volunteerID)
	if err != nil {
		if errors.Is(err, interfaces.ErrPreconditionFailed) {
			return nil, s.explainAcceptFailure(ctx, id, volunteerID)
		}
		return nil, err
	}

	s.invalidateAnalytics(ctx)
	s.broadcaster.BroadcastStatusUpdate(sos)

	s.logger.WithSOSID(id).WithVolunteerID(volunteerID).Info("SOS request accepted")
	return sos, nil
}

// explainAcceptFailure re-fetches the record to turn a failed conditional
// assign into the right caller-facing error.
func (s *sosService) explainAcceptFailure(ctx context.Context, id, volunteerID primitive.ObjectID) error {
	current, err := s.sosRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}

	if current.Status.IsTerminal() {
		return ErrInvalidTransition
	}
	if current.AssignedVolunteer != nil && *current.AssignedVolunteer != volunteerID {
		return ErrConflict
	}
	// Own assignment but already past Accepted.
	return ErrInvalidTransition
}

func (s *sosService) UpdateStatus(ctx context.Context, id, volunteerID primitive.ObjectID, status models.SOSStatus) (*models.SOSRequest, error) {
	if status != models.SOSStatusInProgress && status != models.SOSStatusCompleted {
		return nil, NewValidationError(fmt.Sprintf("status must be %s or %s", models.SOSStatusInProgress, models.SOSStatusCompleted))
	}

	mu := s.lockFor(id)
	mu.Lock()
	defer mu.Unlock()

	sos, err := s.sosRepo.UpdateStatusIfAssignee(ctx, id, volunteerID, status)
	if err != nil {
		if errors.Is(err, interfaces.ErrPreconditionFailed) {
			return nil, s.explainStatusFailure(ctx, id, volunteerID)
		}
		return nil, err
	}

	s.invalidateAnalytics(ctx)
	s.broadcaster.BroadcastStatusUpdate(sos)

	s.logger.WithSOSID(id).WithVolunteerID(volunteerID).WithField("status", string(status)).Info("SOS status updated")
	return sos, nil
}

func (s *sosService) explainStatusFailure(ctx context.Context, id, volunteerID primitive.ObjectID) error {
	current, err := s.sosRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}

	// Ownership is an identity check, not a role check: a different
	// volunteer with a perfectly valid credential is still rejected.
	if current.AssignedVolunteer == nil || *current.AssignedVolunteer != volunteerID {
		return ErrForbidden
	}
	return ErrInvalidTransition
}

func (s *sosService) AssignVolunteer(ctx context.Context, id, volunteerID primitive.ObjectID, status models.SOSStatus) (*models.SOSRequest, error) {
	if status == "" {
		status = models.SOSStatusAccepted
	}
	switch status {
	case models.SOSStatusAccepted, models.SOSStatusInProgress, models.SOSStatusCompleted:
	default:
		return nil, NewValidationError("assignment status must keep the request assigned")
	}

	volunteer, err := s.volunteerRepo.GetByID(ctx, volunteerID)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	mu := s.lockFor(id)
	mu.Lock()
	defer mu.Unlock()

	sos, err := s.sosRepo.AdminAssign(ctx, id, volunteerID, status)
	if err != nil {
		if errors.Is(err, interfaces.ErrPreconditionFailed) {
			return nil, s.explainTerminalFailure(ctx, id)
		}
		return nil, err
	}

	s.invalidateAnalytics(ctx)
	s.broadcaster.BroadcastStatusUpdate(sos)
	s.notifyAssignment(ctx, sos, volunteer)

	s.logger.WithSOSID(id).WithVolunteerID(volunteerID).Info("volunteer assigned by admin")
	return sos, nil
}

// notifyAssignment texts the volunteer about the new assignment. Best
// effort: delivery failure is logged, never surfaced to the admin.
func (s *sosService) notifyAssignment(ctx context.Context, sos *models.SOSRequest, volunteer *models.Volunteer) {
	if s.sms == nil || volunteer.Phone == "" {
		return
	}
	body := fmt.Sprintf("You have been assigned to SOS request %s near (%.5f, %.5f).",
		sos.ID.Hex(), sos.Location.Latitude, sos.Location.Longitude)
	if err := s.sms.SendSMS(ctx, volunteer.Phone, body); err != nil {
		s.logger.WithSOSID(sos.ID).WithError(err).Warn("failed to send assignment SMS")
	}
}

func (s *sosService) Cancel(ctx context.Context, id primitive.ObjectID) (*models.SOSRequest, error) {
	mu := s.lockFor(id)
	mu.Lock()
	defer mu.Unlock()

	sos, err := s.sosRepo.CancelIfActive(ctx, id)
	if err != nil {
		if errors.Is(err, interfaces.ErrPreconditionFailed) {
			return nil, s.explainTerminalFailure(ctx, id)
		}
		return nil, err
	}

	s.invalidateAnalytics(ctx)
	s.broadcaster.BroadcastStatusUpdate(sos)

	s.logger.WithSOSID(id).Info("SOS request cancelled")
	return sos, nil
}

// explainTerminalFailure distinguishes an unknown id from a record that has
// already reached a terminal state.
func (s *sosService) explainTerminalFailure(ctx context.Context, id primitive.ObjectID) error {
	if _, err := s.sosRepo.GetByID(ctx, id); err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	return ErrInvalidTransition
}

func (s *sosService) AppendChat(ctx context.Context, id primitive.ObjectID, sender, message string) (*models.ChatMessage, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, NewValidationError("message is required")
	}

	msg := models.ChatMessage{
		Sender:    defaultIfBlank(sender, models.DefaultRequesterName),
		Message:   message,
		Timestamp: time.Now(),
	}

	mu := s.lockFor(id)
	mu.Lock()
	defer mu.Unlock()

	if err := s.sosRepo.AppendChat(ctx, id, msg); err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	s.broadcaster.BroadcastChatMessage(id, msg)
	return &msg, nil
}

func (s *sosService) ListOpenOrMine(ctx context.Context, volunteerID primitive.ObjectID) ([]*models.SOSRequest, error) {
	return s.sosRepo.ListOpenOrAssigned(ctx, volunteerID)
}

func (s *sosService) ListAll(ctx context.Context) ([]*models.SOSRequest, error) {
	return s.sosRepo.ListAll(ctx)
}

func (s *sosService) Analytics(ctx context.Context) (*models.Analytics, error) {
	if s.cache != nil {
		var cached models.Analytics
		if err := s.cache.Get(ctx, analyticsCacheKey, &cached); err == nil {
			return &cached, nil
		}
	}

	sosCounts, err := s.sosRepo.CountsByStatus(ctx)
	if err != nil {
		return nil, err
	}
	volunteerCounts, err := s.volunteerRepo.CountsByStatus(ctx)
	if err != nil {
		return nil, err
	}

	analytics := &models.Analytics{
		PendingSOS:          sosCounts[models.SOSStatusPending],
		AcceptedSOS:         sosCounts[models.SOSStatusAccepted],
		InProgressSOS:       sosCounts[models.SOSStatusInProgress],
		CompletedSOS:        sosCounts[models.SOSStatusCompleted],
		CancelledSOS:        sosCounts[models.SOSStatusCancelled],
		ApprovedVolunteers:  volunteerCounts[models.VolunteerStatusApproved],
		PendingVolunteers:   volunteerCounts[models.VolunteerStatusPending],
		SuspendedVolunteers: volunteerCounts[models.VolunteerStatusSuspended],
	}
	for _, count := range sosCounts {
		analytics.TotalSOS += count
	}
	for _, count := range volunteerCounts {
		analytics.TotalVolunteers += count
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, analyticsCacheKey, analytics, analyticsCacheTTL); err != nil {
			s.logger.WithError(err).Debug("failed to cache analytics snapshot")
		}
	}

	return analytics, nil
}

func (s *sosService) invalidateAnalytics(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, analyticsCacheKey); err != nil {
		s.logger.WithError(err).Debug("failed to invalidate analytics cache")
	}
}

func defaultIfBlank(value, fallback string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return fallback
	}
	return value
}
