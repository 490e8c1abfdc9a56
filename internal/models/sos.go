package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type SOSStatus string

const (
	SOSStatusPending    SOSStatus = "Pending"
	SOSStatusAccepted   SOSStatus = "Accepted"
	SOSStatusInProgress SOSStatus = "InProgress"
	SOSStatusCompleted  SOSStatus = "Completed"
	SOSStatusCancelled  SOSStatus = "Cancelled"
)

// Defaults applied when the requester leaves optional fields blank.
const (
	DefaultRequesterName = "Anonymous"
	DefaultPhone         = "Not provided"
	DefaultMessage       = "No message provided"
	DefaultAddress       = "Address not provided"
)

type Location struct {
	Latitude  float64 `json:"latitude" bson:"latitude"`
	Longitude float64 `json:"longitude" bson:"longitude"`
}

type ChatMessage struct {
	Sender    string    `json:"sender" bson:"sender"`
	Message   string    `json:"message" bson:"message"`
	Timestamp time.Time `json:"timestamp" bson:"timestamp"`
}

type SOSRequest struct {
	ID                primitive.ObjectID  `json:"id" bson:"_id,omitempty"`
	RequesterName     string              `json:"requester_name" bson:"requester_name"`
	Phone             string              `json:"phone" bson:"phone"`
	Message           string              `json:"message" bson:"message"`
	ProvidedAddress   string              `json:"provided_address" bson:"provided_address"`
	Location          Location            `json:"location" bson:"location"`
	Status            SOSStatus           `json:"status" bson:"status"`
	AssignedVolunteer *primitive.ObjectID `json:"assigned_volunteer" bson:"assigned_volunteer"`
	// Resolved from the volunteer record on every read so clients see a
	// consistent denormalized view. Never persisted.
	AssignedVolunteerName string        `json:"assigned_volunteer_name,omitempty" bson:"-"`
	Chat                  []ChatMessage `json:"chat" bson:"chat"`
	CreatedAt             time.Time     `json:"created_at" bson:"created_at"`
	UpdatedAt             time.Time     `json:"updated_at" bson:"updated_at"`
}

// IsTerminal reports whether the request can no longer change status or
// assignment. Chat appends and reads remain allowed.
func (s SOSStatus) IsTerminal() bool {
	return s == SOSStatusCompleted || s == SOSStatusCancelled
}

// IsValid reports membership in the closed status enumeration.
func (s SOSStatus) IsValid() bool {
	switch s {
	case SOSStatusPending, SOSStatusAccepted, SOSStatusInProgress, SOSStatusCompleted, SOSStatusCancelled:
		return true
	}
	return false
}
