package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type VolunteerStatus string

const (
	VolunteerStatusPending   VolunteerStatus = "Pending"
	VolunteerStatusApproved  VolunteerStatus = "Approved"
	VolunteerStatusSuspended VolunteerStatus = "Suspended"
)

type Volunteer struct {
	ID           primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name         string             `json:"name" bson:"name" validate:"required"`
	Email        string             `json:"email" bson:"email" validate:"required,email"`
	PasswordHash string             `json:"-" bson:"password_hash"`
	Phone        string             `json:"phone" bson:"phone"`
	Status       VolunteerStatus    `json:"status" bson:"status"`
	CreatedAt    time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at" bson:"updated_at"`
}

func (s VolunteerStatus) IsValid() bool {
	switch s {
	case VolunteerStatusPending, VolunteerStatusApproved, VolunteerStatusSuspended:
		return true
	}
	return false
}

// CanLogin gates authentication: registrations sit in Pending until an
// admin approves them, and suspension locks the account out.
func (v *Volunteer) CanLogin() bool {
	return v.Status == VolunteerStatusApproved
}
