package services

import (
	"context"
	"errors"

	"reliefnet/internal/models"
	"reliefnet/internal/repositories/interfaces"
	"reliefnet/internal/utils"
	"reliefnet/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

type AuthService interface {
	RegisterVolunteer(ctx context.Context, request *RegisterRequest) (*models.Volunteer, error)
	LoginVolunteer(ctx context.Context, request *LoginRequest) (*AuthResponse, error)
	LoginAdmin(ctx context.Context, request *LoginRequest) (*AuthResponse, error)

	// EnsureBootstrapAdmin creates the initial admin account at process
	// start when none exists.
	EnsureBootstrapAdmin(ctx context.Context) error

	ListVolunteers(ctx context.Context) ([]*models.Volunteer, error)
	UpdateVolunteerStatus(ctx context.Context, id primitive.ObjectID, status models.VolunteerStatus) (*models.Volunteer, error)
}

type RegisterRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Phone    string `json:"phone"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type AuthResponse struct {
	Token string      `json:"token"`
	ID    string      `json:"id"`
	Name  string      `json:"name"`
	Role  utils.Role  `json:"role"`
}

type BootstrapAdminConfig struct {
	Name     string
	Email    string
	Password string
}

type authService struct {
	volunteerRepo interfaces.VolunteerRepository
	adminRepo     interfaces.AdminRepository
	jwtSecret     string
	bootstrap     BootstrapAdminConfig
	logger        *logger.Logger
}

func NewAuthService(
	volunteerRepo interfaces.VolunteerRepository,
	adminRepo interfaces.AdminRepository,
	jwtSecret string,
	bootstrap BootstrapAdminConfig,
	log *logger.Logger,
) AuthService {
	return &authService{
		volunteerRepo: volunteerRepo,
		adminRepo:     adminRepo,
		jwtSecret:     jwtSecret,
		bootstrap:     bootstrap,
		logger:        log,
	}
}

func (s *authService) RegisterVolunteer(ctx context.Context, request *RegisterRequest) (*models.Volunteer, error) {
	if err := utils.ValidateStruct(request); err != nil {
		return nil, NewValidationError(err.Error())
	}

	hash, err := hashPassword(request.Password)
	if err != nil {
		return nil, err
	}

	volunteer := &models.Volunteer{
		Name:         request.Name,
		Email:        request.Email,
		PasswordHash: hash,
		Phone:        request.Phone,
		Status:       models.VolunteerStatusPending,
	}

	if err := s.volunteerRepo.Create(ctx, volunteer); err != nil {
		if errors.Is(err, interfaces.ErrDuplicateEmail) {
			return nil, NewValidationError("volunteer already exists")
		}
		return nil, err
	}

	s.logger.WithVolunteerID(volunteer.ID).Info("volunteer registered, awaiting approval")
	return volunteer, nil
}

func (s *authService) LoginVolunteer(ctx context.Context, request *LoginRequest) (*AuthResponse, error) {
	if err := utils.ValidateStruct(request); err != nil {
		return nil, NewValidationError(err.Error())
	}

	volunteer, err := s.volunteerRepo.GetByEmail(ctx, request.Email)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !checkPassword(request.Password, volunteer.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	if !volunteer.CanLogin() {
		return nil, ErrNotApproved
	}

	token, err := utils.GenerateToken(volunteer.ID, utils.RoleVolunteer, volunteer.Name, s.jwtSecret)
	if err != nil {
		return nil, err
	}

	return &AuthResponse{
		Token: token,
		ID:    volunteer.ID.Hex(),
		Name:  volunteer.Name,
		Role:  utils.RoleVolunteer,
	}, nil
}

func (s *authService) LoginAdmin(ctx context.Context, request *LoginRequest) (*AuthResponse, error) {
	if err := utils.ValidateStruct(request); err != nil {
		return nil, NewValidationError(err.Error())
	}

	admin, err := s.adminRepo.GetByEmail(ctx, request.Email)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !checkPassword(request.Password, admin.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	token, err := utils.GenerateToken(admin.ID, utils.RoleAdmin, admin.Name, s.jwtSecret)
	if err != nil {
		return nil, err
	}

	return &AuthResponse{
		Token: token,
		ID:    admin.ID.Hex(),
		Name:  admin.Name,
		Role:  utils.RoleAdmin,
	}, nil
}

func (s *authService) EnsureBootstrapAdmin(ctx context.Context) error {
	_, err := s.adminRepo.GetByEmail(ctx, s.bootstrap.Email)
	if err == nil {
		return nil
	}
	if !errors.Is(err, interfaces.ErrNotFound) {
		return err
	}

	hash, err := hashPassword(s.bootstrap.Password)
	if err != nil {
		return err
	}

	admin := &models.Admin{
		Name:         s.bootstrap.Name,
		Email:        s.bootstrap.Email,
		PasswordHash: hash,
	}
	if err := s.adminRepo.Create(ctx, admin); err != nil {
		return err
	}

	s.logger.WithField("email", admin.Email).Info("bootstrap admin account created")
	return nil
}

func (s *authService) ListVolunteers(ctx context.Context) ([]*models.Volunteer, error) {
	return s.volunteerRepo.List(ctx)
}

func (s *authService) UpdateVolunteerStatus(ctx context.Context, id primitive.ObjectID, status models.VolunteerStatus) (*models.Volunteer, error) {
	if !status.IsValid() {
		return nil, NewValidationError("invalid volunteer status")
	}

	volunteer, err := s.volunteerRepo.UpdateStatus(ctx, id, status)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	s.logger.WithVolunteerID(id).WithField("status", string(status)).Info("volunteer status updated")
	return volunteer, nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func checkPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
