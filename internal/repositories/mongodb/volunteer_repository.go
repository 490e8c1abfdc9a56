package mongodb

import (
	"context"
	"fmt"
	"time"

	"reliefnet/internal/models"
	"reliefnet/internal/repositories/interfaces"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type volunteerRepository struct {
	collection *mongo.Collection
}

func NewVolunteerRepository(db *mongo.Database) interfaces.VolunteerRepository {
	return &volunteerRepository{
		collection: db.Collection("volunteers"),
	}
}

func (r *volunteerRepository) Create(ctx context.Context, volunteer *models.Volunteer) error {
	volunteer.ID = primitive.NewObjectID()
	now := time.Now()
	volunteer.CreatedAt = now
	volunteer.UpdatedAt = now

	_, err := r.collection.InsertOne(ctx, volunteer)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return interfaces.ErrDuplicateEmail
		}
		return fmt.Errorf("failed to create volunteer: %w", err)
	}

	return nil
}

func (r *volunteerRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Volunteer, error) {
	var volunteer models.Volunteer
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&volunteer)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, interfaces.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get volunteer: %w", err)
	}

	return &volunteer, nil
}

func (r *volunteerRepository) GetByEmail(ctx context.Context, email string) (*models.Volunteer, error) {
	var volunteer models.Volunteer
	err := r.collection.FindOne(ctx, bson.M{"email": email}).Decode(&volunteer)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, interfaces.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get volunteer by email: %w", err)
	}

	return &volunteer, nil
}

func (r *volunteerRepository) List(ctx context.Context) ([]*models.Volunteer, error) {
	opts := options.Find().SetSort(bson.M{"created_at": -1})
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list volunteers: %w", err)
	}
	defer cursor.Close(ctx)

	var volunteers []*models.Volunteer
	if err := cursor.All(ctx, &volunteers); err != nil {
		return nil, fmt.Errorf("failed to decode volunteers: %w", err)
	}

	return volunteers, nil
}

func (r *volunteerRepository) UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.VolunteerStatus) (*models.Volunteer, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	update := bson.M{"$set": bson.M{
		"status":     status,
		"updated_at": time.Now(),
	}}

	var volunteer models.Volunteer
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&volunteer)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, interfaces.ErrNotFound
		}
		return nil, fmt.Errorf("failed to update volunteer status: %w", err)
	}

	return &volunteer, nil
}

func (r *volunteerRepository) CountsByStatus(ctx context.Context) (map[models.VolunteerStatus]int64, error) {
	cursor, err := r.collection.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$group", Value: bson.M{"_id": "$status", "count": bson.M{"$sum": 1}}}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to count volunteers: %w", err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Status models.VolunteerStatus `bson:"_id"`
		Count  int64                  `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode volunteer counts: %w", err)
	}

	counts := make(map[models.VolunteerStatus]int64)
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}
