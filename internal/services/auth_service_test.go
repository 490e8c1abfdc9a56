package services

import (
	"context"
	"sync"
	"testing"

	"reliefnet/internal/models"
	"reliefnet/internal/repositories/interfaces"
	"reliefnet/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type memAdminRepo struct {
	mu     sync.Mutex
	admins map[string]*models.Admin
}

func newMemAdminRepo() *memAdminRepo {
	return &memAdminRepo{admins: make(map[string]*models.Admin)}
}

func (r *memAdminRepo) Create(ctx context.Context, admin *models.Admin) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	admin.ID = primitive.NewObjectID()
	copied := *admin
	r.admins[admin.Email] = &copied
	return nil
}

func (r *memAdminRepo) GetByEmail(ctx context.Context, email string) (*models.Admin, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	admin, ok := r.admins[email]
	if !ok {
		return nil, interfaces.ErrNotFound
	}
	copied := *admin
	return &copied, nil
}

const testJWTSecret = "test-secret"

func newAuthFixture(t *testing.T) (AuthService, *memVolunteerRepo, *memAdminRepo) {
	t.Helper()
	volunteerRepo := newMemVolunteerRepo()
	adminRepo := newMemAdminRepo()
	service := NewAuthService(volunteerRepo, adminRepo, testJWTSecret, BootstrapAdminConfig{
		Name:     "Super Admin",
		Email:    "admin@example.com",
		Password: "securepassword",
	}, newTestLogger(t))
	return service, volunteerRepo, adminRepo
}

func TestRegisterVolunteerStartsPending(t *testing.T) {
	service, _, _ := newAuthFixture(t)

	volunteer, err := service.RegisterVolunteer(context.Background(), &RegisterRequest{
		Name:     "Vera",
		Email:    "vera@example.com",
		Password: "hunter2hunter2",
		Phone:    "+15550100",
	})
	require.NoError(t, err)
	assert.Equal(t, models.VolunteerStatusPending, volunteer.Status)
	assert.NotEqual(t, "hunter2hunter2", volunteer.PasswordHash)
}

func TestRegisterVolunteerValidation(t *testing.T) {
	service, _, _ := newAuthFixture(t)

	var validationErr *ValidationError
	_, err := service.RegisterVolunteer(context.Background(), &RegisterRequest{
		Name:     "Vera",
		Email:    "not-an-email",
		Password: "hunter2hunter2",
	})
	assert.ErrorAs(t, err, &validationErr)

	_, err = service.RegisterVolunteer(context.Background(), &RegisterRequest{
		Name:     "Vera",
		Email:    "vera@example.com",
		Password: "short",
	})
	assert.ErrorAs(t, err, &validationErr)
}

func TestRegisterVolunteerDuplicateEmail(t *testing.T) {
	service, _, _ := newAuthFixture(t)

	request := &RegisterRequest{
		Name:     "Vera",
		Email:    "vera@example.com",
		Password: "hunter2hunter2",
	}
	_, err := service.RegisterVolunteer(context.Background(), request)
	require.NoError(t, err)

	var validationErr *ValidationError
	_, err = service.RegisterVolunteer(context.Background(), request)
	assert.ErrorAs(t, err, &validationErr)
}

func TestLoginVolunteerApprovalGate(t *testing.T) {
	service, _, _ := newAuthFixture(t)

	volunteer, err := service.RegisterVolunteer(context.Background(), &RegisterRequest{
		Name:     "Vera",
		Email:    "vera@example.com",
		Password: "hunter2hunter2",
	})
	require.NoError(t, err)

	login := &LoginRequest{Email: "vera@example.com", Password: "hunter2hunter2"}

	// Pending registrations cannot log in yet.
	_, err = service.LoginVolunteer(context.Background(), login)
	assert.ErrorIs(t, err, ErrNotApproved)

	_, err = service.UpdateVolunteerStatus(context.Background(), volunteer.ID, models.VolunteerStatusApproved)
	require.NoError(t, err)

	response, err := service.LoginVolunteer(context.Background(), login)
	require.NoError(t, err)
	assert.Equal(t, utils.RoleVolunteer, response.Role)
	assert.Equal(t, volunteer.Name, response.Name)

	identity, err := utils.ValidateToken(response.Token, testJWTSecret)
	require.NoError(t, err)
	assert.Equal(t, volunteer.ID, identity.ID)
	assert.Equal(t, utils.RoleVolunteer, identity.Role)

	// Suspension locks the account back out.
	_, err = service.UpdateVolunteerStatus(context.Background(), volunteer.ID, models.VolunteerStatusSuspended)
	require.NoError(t, err)
	_, err = service.LoginVolunteer(context.Background(), login)
	assert.ErrorIs(t, err, ErrNotApproved)
}

func TestLoginVolunteerBadCredentials(t *testing.T) {
	service, _, _ := newAuthFixture(t)

	volunteer, err := service.RegisterVolunteer(context.Background(), &RegisterRequest{
		Name:     "Vera",
		Email:    "vera@example.com",
		Password: "hunter2hunter2",
	})
	require.NoError(t, err)
	_, err = service.UpdateVolunteerStatus(context.Background(), volunteer.ID, models.VolunteerStatusApproved)
	require.NoError(t, err)

	// Unknown email and wrong password produce the same error.
	_, err = service.LoginVolunteer(context.Background(), &LoginRequest{Email: "nobody@example.com", Password: "hunter2hunter2"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = service.LoginVolunteer(context.Background(), &LoginRequest{Email: "vera@example.com", Password: "wrong-password"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestEnsureBootstrapAdmin(t *testing.T) {
	service, _, adminRepo := newAuthFixture(t)

	require.NoError(t, service.EnsureBootstrapAdmin(context.Background()))

	admin, err := adminRepo.GetByEmail(context.Background(), "admin@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Super Admin", admin.Name)

	// Idempotent: a second run must not replace the account.
	require.NoError(t, service.EnsureBootstrapAdmin(context.Background()))
	again, err := adminRepo.GetByEmail(context.Background(), "admin@example.com")
	require.NoError(t, err)
	assert.Equal(t, admin.ID, again.ID)
}

func TestLoginAdmin(t *testing.T) {
	service, _, _ := newAuthFixture(t)
	require.NoError(t, service.EnsureBootstrapAdmin(context.Background()))

	response, err := service.LoginAdmin(context.Background(), &LoginRequest{
		Email:    "admin@example.com",
		Password: "securepassword",
	})
	require.NoError(t, err)
	assert.Equal(t, utils.RoleAdmin, response.Role)

	identity, err := utils.ValidateToken(response.Token, testJWTSecret)
	require.NoError(t, err)
	assert.Equal(t, utils.RoleAdmin, identity.Role)
	assert.True(t, identity.Satisfies(utils.RoleVolunteer))

	_, err = service.LoginAdmin(context.Background(), &LoginRequest{
		Email:    "admin@example.com",
		Password: "wrong",
	})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestUpdateVolunteerStatusRejectsUnknownValue(t *testing.T) {
	service, volunteerRepo, _ := newAuthFixture(t)

	volunteer := &models.Volunteer{Name: "Vera", Email: "vera@example.com"}
	require.NoError(t, volunteerRepo.Create(context.Background(), volunteer))

	var validationErr *ValidationError
	_, err := service.UpdateVolunteerStatus(context.Background(), volunteer.ID, models.VolunteerStatus("Banned"))
	assert.ErrorAs(t, err, &validationErr)

	_, err = service.UpdateVolunteerStatus(context.Background(), primitive.NewObjectID(), models.VolunteerStatusApproved)
	assert.ErrorIs(t, err, ErrNotFound)
}
