package interfaces

import (
	"context"
	"errors"

	"reliefnet/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ErrDuplicateEmail is returned when a registration collides with an
// existing volunteer email (unique index).
var ErrDuplicateEmail = errors.New("email already registered")

type VolunteerRepository interface {
	Create(ctx context.Context, volunteer *models.Volunteer) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Volunteer, error)
	GetByEmail(ctx context.Context, email string) (*models.Volunteer, error)
	List(ctx context.Context) ([]*models.Volunteer, error)
	UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.VolunteerStatus) (*models.Volunteer, error)
	CountsByStatus(ctx context.Context) (map[models.VolunteerStatus]int64, error)
}
