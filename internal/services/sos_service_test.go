package services

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"reliefnet/internal/models"
	"reliefnet/internal/repositories/interfaces"
	"reliefnet/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// memSOSRepo is an in-memory SOSRepository that honors the same conditional
// update contract as the MongoDB implementation: every mutation checks its
// pre-state filter under a single lock, so concurrent callers contend the
// way they would against findOneAndUpdate.
type memSOSRepo struct {
	mu      sync.Mutex
	records map[primitive.ObjectID]*models.SOSRequest
}

func newMemSOSRepo() *memSOSRepo {
	return &memSOSRepo{records: make(map[primitive.ObjectID]*models.SOSRequest)}
}

func cloneSOS(sos *models.SOSRequest) *models.SOSRequest {
	out := *sos
	if sos.AssignedVolunteer != nil {
		id := *sos.AssignedVolunteer
		out.AssignedVolunteer = &id
	}
	out.Chat = append([]models.ChatMessage(nil), sos.Chat...)
	return &out
}

func (r *memSOSRepo) Create(ctx context.Context, sos *models.SOSRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	sos.ID = primitive.NewObjectID()
	now := time.Now()
	sos.CreatedAt = now
	sos.UpdatedAt = now
	r.records[sos.ID] = cloneSOS(sos)
	return nil
}

func (r *memSOSRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.SOSRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sos, ok := r.records[id]
	if !ok {
		return nil, interfaces.ErrNotFound
	}
	return cloneSOS(sos), nil
}

func (r *memSOSRepo) ListOpenOrAssigned(ctx context.Context, volunteerID primitive.ObjectID) ([]*models.SOSRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.SOSRequest
	for _, sos := range r.records {
		if sos.Status == models.SOSStatusPending ||
			(sos.AssignedVolunteer != nil && *sos.AssignedVolunteer == volunteerID) {
			out = append(out, cloneSOS(sos))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *memSOSRepo) ListAll(ctx context.Context) ([]*models.SOSRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.SOSRequest
	for _, sos := range r.records {
		out = append(out, cloneSOS(sos))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *memSOSRepo) CountsByStatus(ctx context.Context) (map[models.SOSStatus]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := make(map[models.SOSStatus]int64)
	for _, sos := range r.records {
		counts[sos.Status]++
	}
	return counts, nil
}

func (r *memSOSRepo) TryAssign(ctx context.Context, id, volunteerID primitive.ObjectID) (*models.SOSRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sos, ok := r.records[id]
	if !ok {
		return nil, interfaces.ErrPreconditionFailed
	}
	unassigned := sos.Status == models.SOSStatusPending && sos.AssignedVolunteer == nil
	reaccept := (sos.Status == models.SOSStatusPending || sos.Status == models.SOSStatusAccepted) &&
		sos.AssignedVolunteer != nil && *sos.AssignedVolunteer == volunteerID
	if !unassigned && !reaccept {
		return nil, interfaces.ErrPreconditionFailed
	}
	vid := volunteerID
	sos.AssignedVolunteer = &vid
	sos.Status = models.SOSStatusAccepted
	sos.UpdatedAt = time.Now()
	return cloneSOS(sos), nil
}

func (r *memSOSRepo) UpdateStatusIfAssignee(ctx context.Context, id, volunteerID primitive.ObjectID, status models.SOSStatus) (*models.SOSRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sos, ok := r.records[id]
	if !ok {
		return nil, interfaces.ErrPreconditionFailed
	}
	if sos.AssignedVolunteer == nil || *sos.AssignedVolunteer != volunteerID {
		return nil, interfaces.ErrPreconditionFailed
	}
	if sos.Status != models.SOSStatusAccepted && sos.Status != models.SOSStatusInProgress {
		return nil, interfaces.ErrPreconditionFailed
	}
	sos.Status = status
	sos.UpdatedAt = time.Now()
	return cloneSOS(sos), nil
}

func (r *memSOSRepo) CancelIfActive(ctx context.Context, id primitive.ObjectID) (*models.SOSRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sos, ok := r.records[id]
	if !ok {
		return nil, interfaces.ErrPreconditionFailed
	}
	if sos.Status.IsTerminal() {
		return nil, interfaces.ErrPreconditionFailed
	}
	sos.Status = models.SOSStatusCancelled
	sos.AssignedVolunteer = nil
	sos.UpdatedAt = time.Now()
	return cloneSOS(sos), nil
}

func (r *memSOSRepo) AdminAssign(ctx context.Context, id, volunteerID primitive.ObjectID, status models.SOSStatus) (*models.SOSRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sos, ok := r.records[id]
	if !ok {
		return nil, interfaces.ErrPreconditionFailed
	}
	if sos.Status.IsTerminal() {
		return nil, interfaces.ErrPreconditionFailed
	}
	vid := volunteerID
	sos.AssignedVolunteer = &vid
	sos.Status = status
	sos.UpdatedAt = time.Now()
	return cloneSOS(sos), nil
}

func (r *memSOSRepo) AppendChat(ctx context.Context, id primitive.ObjectID, msg models.ChatMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	sos, ok := r.records[id]
	if !ok {
		return interfaces.ErrNotFound
	}
	sos.Chat = append(sos.Chat, msg)
	sos.UpdatedAt = time.Now()
	return nil
}

// memVolunteerRepo backs the volunteer lookups the SOS service needs.
type memVolunteerRepo struct {
	mu         sync.Mutex
	volunteers map[primitive.ObjectID]*models.Volunteer
	byEmail    map[string]primitive.ObjectID
}

func newMemVolunteerRepo() *memVolunteerRepo {
	return &memVolunteerRepo{
		volunteers: make(map[primitive.ObjectID]*models.Volunteer),
		byEmail:    make(map[string]primitive.ObjectID),
	}
}

func (r *memVolunteerRepo) Create(ctx context.Context, volunteer *models.Volunteer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byEmail[volunteer.Email]; ok {
		return interfaces.ErrDuplicateEmail
	}
	volunteer.ID = primitive.NewObjectID()
	now := time.Now()
	volunteer.CreatedAt = now
	volunteer.UpdatedAt = now
	copied := *volunteer
	r.volunteers[volunteer.ID] = &copied
	r.byEmail[volunteer.Email] = volunteer.ID
	return nil
}

func (r *memVolunteerRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Volunteer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	volunteer, ok := r.volunteers[id]
	if !ok {
		return nil, interfaces.ErrNotFound
	}
	copied := *volunteer
	return &copied, nil
}

func (r *memVolunteerRepo) GetByEmail(ctx context.Context, email string) (*models.Volunteer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.byEmail[email]
	if !ok {
		return nil, interfaces.ErrNotFound
	}
	copied := *r.volunteers[id]
	return &copied, nil
}

func (r *memVolunteerRepo) List(ctx context.Context) ([]*models.Volunteer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Volunteer
	for _, volunteer := range r.volunteers {
		copied := *volunteer
		out = append(out, &copied)
	}
	return out, nil
}

func (r *memVolunteerRepo) UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.VolunteerStatus) (*models.Volunteer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	volunteer, ok := r.volunteers[id]
	if !ok {
		return nil, interfaces.ErrNotFound
	}
	volunteer.Status = status
	volunteer.UpdatedAt = time.Now()
	copied := *volunteer
	return &copied, nil
}

func (r *memVolunteerRepo) CountsByStatus(ctx context.Context) (map[models.VolunteerStatus]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := make(map[models.VolunteerStatus]int64)
	for _, volunteer := range r.volunteers {
		counts[volunteer.Status]++
	}
	return counts, nil
}

// recordingBroadcaster captures what the service emits without a socket.
type recordingBroadcaster struct {
	mu            sync.Mutex
	newSOS        []*models.SOSRequest
	statusUpdates []*models.SOSRequest
	chatMessages  []models.ChatMessage
}

func (b *recordingBroadcaster) BroadcastNewSOS(sos *models.SOSRequest) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.newSOS = append(b.newSOS, sos)
}

func (b *recordingBroadcaster) BroadcastStatusUpdate(sos *models.SOSRequest) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.statusUpdates = append(b.statusUpdates, sos)
}

func (b *recordingBroadcaster) BroadcastChatMessage(sosID primitive.ObjectID, msg models.ChatMessage) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.chatMessages = append(b.chatMessages, msg)
}

func (b *recordingBroadcaster) counts() (int, int, int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.newSOS), len(b.statusUpdates), len(b.chatMessages)
}

func newTestLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.NewLogger(&logger.Config{Level: "error", Format: "text", Output: "stderr"})
	require.NoError(t, err)
	return log
}

type sosFixture struct {
	service       SOSService
	sosRepo       *memSOSRepo
	volunteerRepo *memVolunteerRepo
	broadcaster   *recordingBroadcaster
}

func newSOSFixture(t *testing.T) *sosFixture {
	t.Helper()
	f := &sosFixture{
		sosRepo:       newMemSOSRepo(),
		volunteerRepo: newMemVolunteerRepo(),
		broadcaster:   &recordingBroadcaster{},
	}
	f.service = NewSOSService(f.sosRepo, f.volunteerRepo, f.broadcaster, nil, nil, newTestLogger(t))
	return f
}

func float64Ptr(v float64) *float64 { return &v }

func (f *sosFixture) createSOS(t *testing.T) *models.SOSRequest {
	t.Helper()
	sos, err := f.service.Create(context.Background(), &CreateSOSRequest{
		Name:      "Dana",
		Phone:     "+15550100",
		Message:   "trapped on the second floor",
		Address:   "17 River St",
		Latitude:  float64Ptr(40.7128),
		Longitude: float64Ptr(-74.0060),
	})
	require.NoError(t, err)
	return sos
}

func (f *sosFixture) addVolunteer(t *testing.T, name string) *models.Volunteer {
	t.Helper()
	volunteer := &models.Volunteer{
		Name:   name,
		Email:  name + "@example.com",
		Phone:  "+15550200",
		Status: models.VolunteerStatusApproved,
	}
	require.NoError(t, f.volunteerRepo.Create(context.Background(), volunteer))
	return volunteer
}

func TestCreateSOSAppliesDefaults(t *testing.T) {
	f := newSOSFixture(t)

	sos, err := f.service.Create(context.Background(), &CreateSOSRequest{
		Name:      "   ",
		Latitude:  float64Ptr(12.5),
		Longitude: float64Ptr(77.6),
	})
	require.NoError(t, err)

	assert.Equal(t, models.DefaultRequesterName, sos.RequesterName)
	assert.Equal(t, models.DefaultPhone, sos.Phone)
	assert.Equal(t, models.DefaultMessage, sos.Message)
	assert.Equal(t, models.DefaultAddress, sos.ProvidedAddress)
	assert.Equal(t, models.SOSStatusPending, sos.Status)
	assert.Nil(t, sos.AssignedVolunteer)

	newCount, _, _ := f.broadcaster.counts()
	assert.Equal(t, 1, newCount)
}

func TestCreateSOSRequiresCoordinates(t *testing.T) {
	f := newSOSFixture(t)

	_, err := f.service.Create(context.Background(), &CreateSOSRequest{Name: "Dana"})
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)

	_, err = f.service.Create(context.Background(), &CreateSOSRequest{
		Latitude:  float64Ptr(123.0),
		Longitude: float64Ptr(0),
	})
	require.ErrorAs(t, err, &validationErr)

	newCount, _, _ := f.broadcaster.counts()
	assert.Zero(t, newCount)
}

func TestAcceptClaimsPendingRequest(t *testing.T) {
	f := newSOSFixture(t)
	sos := f.createSOS(t)
	volunteer := f.addVolunteer(t, "vera")

	accepted, err := f.service.Accept(context.Background(), sos.ID, volunteer.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SOSStatusAccepted, accepted.Status)
	require.NotNil(t, accepted.AssignedVolunteer)
	assert.Equal(t, volunteer.ID, *accepted.AssignedVolunteer)

	// Re-accept by the same volunteer is idempotent.
	again, err := f.service.Accept(context.Background(), sos.ID, volunteer.ID)
	require.NoError(t, err)
	assert.Equal(t, volunteer.ID, *again.AssignedVolunteer)
}

func TestAcceptRaceHasExactlyOneWinner(t *testing.T) {
	f := newSOSFixture(t)
	sos := f.createSOS(t)
	first := f.addVolunteer(t, "first")
	second := f.addVolunteer(t, "second")

	errs := make([]error, 2)
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, errs[0] = f.service.Accept(context.Background(), sos.ID, first.ID)
	}()
	go func() {
		defer wg.Done()
		_, errs[1] = f.service.Accept(context.Background(), sos.ID, second.ID)
	}()
	wg.Wait()

	winners := 0
	for _, err := range errs {
		if err == nil {
			winners++
		} else {
			assert.ErrorIs(t, err, ErrConflict)
		}
	}
	assert.Equal(t, 1, winners)

	current, err := f.service.GetByID(context.Background(), sos.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SOSStatusAccepted, current.Status)
	require.NotNil(t, current.AssignedVolunteer)
}

func TestAcceptRejectedOnTerminalRequest(t *testing.T) {
	f := newSOSFixture(t)
	sos := f.createSOS(t)
	volunteer := f.addVolunteer(t, "vera")

	_, err := f.service.Cancel(context.Background(), sos.ID)
	require.NoError(t, err)

	_, err = f.service.Accept(context.Background(), sos.ID, volunteer.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestAcceptUnknownID(t *testing.T) {
	f := newSOSFixture(t)
	volunteer := f.addVolunteer(t, "vera")

	_, err := f.service.Accept(context.Background(), primitive.NewObjectID(), volunteer.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateStatusByAssignee(t *testing.T) {
	f := newSOSFixture(t)
	sos := f.createSOS(t)
	volunteer := f.addVolunteer(t, "vera")

	_, err := f.service.Accept(context.Background(), sos.ID, volunteer.ID)
	require.NoError(t, err)

	inProgress, err := f.service.UpdateStatus(context.Background(), sos.ID, volunteer.ID, models.SOSStatusInProgress)
	require.NoError(t, err)
	assert.Equal(t, models.SOSStatusInProgress, inProgress.Status)

	completed, err := f.service.UpdateStatus(context.Background(), sos.ID, volunteer.ID, models.SOSStatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, models.SOSStatusCompleted, completed.Status)

	// Terminal records reject further transitions.
	_, err = f.service.UpdateStatus(context.Background(), sos.ID, volunteer.ID, models.SOSStatusInProgress)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestUpdateStatusByNonAssigneeIsForbidden(t *testing.T) {
	f := newSOSFixture(t)
	sos := f.createSOS(t)
	assignee := f.addVolunteer(t, "assignee")
	intruder := f.addVolunteer(t, "intruder")

	_, err := f.service.Accept(context.Background(), sos.ID, assignee.ID)
	require.NoError(t, err)

	_, statusBefore, chatBefore := f.broadcaster.counts()

	_, err = f.service.UpdateStatus(context.Background(), sos.ID, intruder.ID, models.SOSStatusInProgress)
	assert.ErrorIs(t, err, ErrForbidden)

	// Rejected mutation: no new broadcast, record untouched.
	_, statusAfter, chatAfter := f.broadcaster.counts()
	assert.Equal(t, statusBefore, statusAfter)
	assert.Equal(t, chatBefore, chatAfter)

	current, err := f.service.GetByID(context.Background(), sos.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SOSStatusAccepted, current.Status)
	assert.Equal(t, assignee.ID, *current.AssignedVolunteer)
}

func TestUpdateStatusRejectsOutOfBandValues(t *testing.T) {
	f := newSOSFixture(t)
	sos := f.createSOS(t)
	volunteer := f.addVolunteer(t, "vera")

	_, err := f.service.Accept(context.Background(), sos.ID, volunteer.ID)
	require.NoError(t, err)

	var validationErr *ValidationError
	_, err = f.service.UpdateStatus(context.Background(), sos.ID, volunteer.ID, models.SOSStatusPending)
	assert.ErrorAs(t, err, &validationErr)
	_, err = f.service.UpdateStatus(context.Background(), sos.ID, volunteer.ID, models.SOSStatus("Done"))
	assert.ErrorAs(t, err, &validationErr)
}

func TestCancelClearsAssignment(t *testing.T) {
	f := newSOSFixture(t)
	sos := f.createSOS(t)
	volunteer := f.addVolunteer(t, "vera")

	_, err := f.service.Accept(context.Background(), sos.ID, volunteer.ID)
	require.NoError(t, err)

	cancelled, err := f.service.Cancel(context.Background(), sos.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SOSStatusCancelled, cancelled.Status)
	assert.Nil(t, cancelled.AssignedVolunteer)
}

func TestCancelTerminalRequestRejected(t *testing.T) {
	f := newSOSFixture(t)
	sos := f.createSOS(t)
	volunteer := f.addVolunteer(t, "vera")

	_, err := f.service.Accept(context.Background(), sos.ID, volunteer.ID)
	require.NoError(t, err)
	_, err = f.service.UpdateStatus(context.Background(), sos.ID, volunteer.ID, models.SOSStatusCompleted)
	require.NoError(t, err)

	_, err = f.service.Cancel(context.Background(), sos.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	current, err := f.service.GetByID(context.Background(), sos.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SOSStatusCompleted, current.Status)
	assert.Equal(t, volunteer.ID, *current.AssignedVolunteer)
}

func TestAdminAssignDefaultsToAccepted(t *testing.T) {
	f := newSOSFixture(t)
	sos := f.createSOS(t)
	volunteer := f.addVolunteer(t, "vera")

	assigned, err := f.service.AssignVolunteer(context.Background(), sos.ID, volunteer.ID, "")
	require.NoError(t, err)
	assert.Equal(t, models.SOSStatusAccepted, assigned.Status)
	assert.Equal(t, volunteer.ID, *assigned.AssignedVolunteer)
}

func TestAdminAssignOverridesExistingAssignment(t *testing.T) {
	f := newSOSFixture(t)
	sos := f.createSOS(t)
	original := f.addVolunteer(t, "original")
	replacement := f.addVolunteer(t, "replacement")

	_, err := f.service.Accept(context.Background(), sos.ID, original.ID)
	require.NoError(t, err)

	assigned, err := f.service.AssignVolunteer(context.Background(), sos.ID, replacement.ID, models.SOSStatusInProgress)
	require.NoError(t, err)
	assert.Equal(t, models.SOSStatusInProgress, assigned.Status)
	assert.Equal(t, replacement.ID, *assigned.AssignedVolunteer)
}

func TestAdminAssignValidation(t *testing.T) {
	f := newSOSFixture(t)
	sos := f.createSOS(t)
	volunteer := f.addVolunteer(t, "vera")

	// Statuses that would leave an assigned record unassigned are rejected.
	var validationErr *ValidationError
	_, err := f.service.AssignVolunteer(context.Background(), sos.ID, volunteer.ID, models.SOSStatusPending)
	assert.ErrorAs(t, err, &validationErr)
	_, err = f.service.AssignVolunteer(context.Background(), sos.ID, volunteer.ID, models.SOSStatusCancelled)
	assert.ErrorAs(t, err, &validationErr)

	// Unknown volunteer.
	_, err = f.service.AssignVolunteer(context.Background(), sos.ID, primitive.NewObjectID(), "")
	assert.ErrorIs(t, err, ErrNotFound)

	// Terminal record.
	_, err = f.service.Cancel(context.Background(), sos.ID)
	require.NoError(t, err)
	_, err = f.service.AssignVolunteer(context.Background(), sos.ID, volunteer.ID, "")
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestAppendChat(t *testing.T) {
	f := newSOSFixture(t)
	sos := f.createSOS(t)

	msg, err := f.service.AppendChat(context.Background(), sos.ID, "", "  anyone there?  ")
	require.NoError(t, err)
	assert.Equal(t, models.DefaultRequesterName, msg.Sender)
	assert.Equal(t, "anyone there?", msg.Message)

	_, err = f.service.AppendChat(context.Background(), sos.ID, "Dana", "   ")
	var validationErr *ValidationError
	assert.ErrorAs(t, err, &validationErr)

	_, err = f.service.AppendChat(context.Background(), primitive.NewObjectID(), "Dana", "hello")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAppendChatAllowedOnTerminalRequest(t *testing.T) {
	f := newSOSFixture(t)
	sos := f.createSOS(t)

	_, err := f.service.Cancel(context.Background(), sos.ID)
	require.NoError(t, err)

	_, err = f.service.AppendChat(context.Background(), sos.ID, "Dana", "thanks anyway")
	require.NoError(t, err)

	current, err := f.service.GetByID(context.Background(), sos.ID)
	require.NoError(t, err)
	require.Len(t, current.Chat, 1)
	assert.Equal(t, "thanks anyway", current.Chat[0].Message)
}

func TestAppendChatPreservesOrder(t *testing.T) {
	f := newSOSFixture(t)
	sos := f.createSOS(t)

	want := []string{"first", "second", "third", "fourth"}
	for _, text := range want {
		_, err := f.service.AppendChat(context.Background(), sos.ID, "Dana", text)
		require.NoError(t, err)
	}

	current, err := f.service.GetByID(context.Background(), sos.ID)
	require.NoError(t, err)
	require.Len(t, current.Chat, len(want))
	for i, text := range want {
		assert.Equal(t, text, current.Chat[i].Message)
	}

	_, _, chatCount := f.broadcaster.counts()
	assert.Equal(t, len(want), chatCount)
}

func TestListOpenOrMine(t *testing.T) {
	f := newSOSFixture(t)
	mine := f.addVolunteer(t, "mine")
	other := f.addVolunteer(t, "other")

	open := f.createSOS(t)
	claimed := f.createSOS(t)
	foreign := f.createSOS(t)

	_, err := f.service.Accept(context.Background(), claimed.ID, mine.ID)
	require.NoError(t, err)
	_, err = f.service.Accept(context.Background(), foreign.ID, other.ID)
	require.NoError(t, err)

	visible, err := f.service.ListOpenOrMine(context.Background(), mine.ID)
	require.NoError(t, err)

	ids := make(map[primitive.ObjectID]bool, len(visible))
	for _, sos := range visible {
		ids[sos.ID] = true
	}
	assert.True(t, ids[open.ID])
	assert.True(t, ids[claimed.ID])
	assert.False(t, ids[foreign.ID])
}

func TestAnalyticsCounts(t *testing.T) {
	f := newSOSFixture(t)
	volunteer := f.addVolunteer(t, "vera")
	pending := f.addVolunteer(t, "rookie")
	_, err := f.volunteerRepo.UpdateStatus(context.Background(), pending.ID, models.VolunteerStatusPending)
	require.NoError(t, err)

	f.createSOS(t)
	accepted := f.createSOS(t)
	cancelled := f.createSOS(t)

	_, err = f.service.Accept(context.Background(), accepted.ID, volunteer.ID)
	require.NoError(t, err)
	_, err = f.service.Cancel(context.Background(), cancelled.ID)
	require.NoError(t, err)

	analytics, err := f.service.Analytics(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(3), analytics.TotalSOS)
	assert.Equal(t, int64(1), analytics.PendingSOS)
	assert.Equal(t, int64(1), analytics.AcceptedSOS)
	assert.Equal(t, int64(1), analytics.CancelledSOS)
	assert.Equal(t, int64(2), analytics.TotalVolunteers)
	assert.Equal(t, int64(1), analytics.ApprovedVolunteers)
	assert.Equal(t, int64(1), analytics.PendingVolunteers)
}
