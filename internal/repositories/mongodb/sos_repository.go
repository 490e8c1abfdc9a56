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

type sosRepository struct {
	collection *mongo.Collection
	volunteers *mongo.Collection
}

func NewSOSRepository(db *mongo.Database) interfaces.SOSRepository {
	return &sosRepository{
		collection: db.Collection("sos_requests"),
		volunteers: db.Collection("volunteers"),
	}
}

func (r *sosRepository) Create(ctx context.Context, sos *models.SOSRequest) error {
	sos.ID = primitive.NewObjectID()
	now := time.Now()
	sos.CreatedAt = now
	sos.UpdatedAt = now
	if sos.Chat == nil {
		sos.Chat = []models.ChatMessage{}
	}

	_, err := r.collection.InsertOne(ctx, sos)
	if err != nil {
		return fmt.Errorf("failed to create sos request: %w", err)
	}

	return nil
}

func (r *sosRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.SOSRequest, error) {
	var sos models.SOSRequest
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&sos)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, interfaces.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get sos request: %w", err)
	}

	r.resolveVolunteerName(ctx, &sos)
	return &sos, nil
}

func (r *sosRepository) ListOpenOrAssigned(ctx context.Context, volunteerID primitive.ObjectID) ([]*models.SOSRequest, error) {
	filter := bson.M{
		"$or": []bson.M{
			{"status": models.SOSStatusPending},
			{"assigned_volunteer": volunteerID},
		},
	}
	return r.list(ctx, filter)
}

func (r *sosRepository) ListAll(ctx context.Context) ([]*models.SOSRequest, error) {
	return r.list(ctx, bson.M{})
}

func (r *sosRepository) list(ctx context.Context, filter bson.M) ([]*models.SOSRequest, error) {
	opts := options.Find().SetSort(bson.M{"created_at": -1})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list sos requests: %w", err)
	}
	defer cursor.Close(ctx)

	var requests []*models.SOSRequest
	if err := cursor.All(ctx, &requests); err != nil {
		return nil, fmt.Errorf("failed to decode sos requests: %w", err)
	}

	// Resolve volunteer names in one pass, reusing lookups.
	names := make(map[primitive.ObjectID]string)
	for _, sos := range requests {
		if sos.AssignedVolunteer == nil {
			continue
		}
		name, ok := names[*sos.AssignedVolunteer]
		if !ok {
			name = r.lookupVolunteerName(ctx, *sos.AssignedVolunteer)
			names[*sos.AssignedVolunteer] = name
		}
		sos.AssignedVolunteerName = name
	}

	return requests, nil
}

func (r *sosRepository) CountsByStatus(ctx context.Context) (map[models.SOSStatus]int64, error) {
	cursor, err := r.collection.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$group", Value: bson.M{"_id": "$status", "count": bson.M{"$sum": 1}}}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to count sos requests: %w", err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Status models.SOSStatus `bson:"_id"`
		Count  int64            `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode sos counts: %w", err)
	}

	counts := make(map[models.SOSStatus]int64)
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

func (r *sosRepository) TryAssign(ctx context.Context, id, volunteerID primitive.ObjectID) (*models.SOSRequest, error) {
	// Claims a Pending request, or re-confirms one this volunteer already
	// holds. Any other pre-state fails the filter and the service decides
	// between NotFound, Conflict and InvalidTransition.
	filter := bson.M{
		"_id": id,
		"$or": []bson.M{
			{"status": models.SOSStatusPending, "assigned_volunteer": nil},
			{
				"status":             bson.M{"$in": []models.SOSStatus{models.SOSStatusPending, models.SOSStatusAccepted}},
				"assigned_volunteer": volunteerID,
			},
		},
	}
	update := bson.M{"$set": bson.M{
		"status":             models.SOSStatusAccepted,
		"assigned_volunteer": volunteerID,
		"updated_at":         time.Now(),
	}}

	return r.findOneAndUpdate(ctx, filter, update)
}

func (r *sosRepository) UpdateStatusIfAssignee(ctx context.Context, id, volunteerID primitive.ObjectID, status models.SOSStatus) (*models.SOSRequest, error) {
	filter := bson.M{
		"_id":                id,
		"assigned_volunteer": volunteerID,
		"status":             bson.M{"$in": []models.SOSStatus{models.SOSStatusAccepted, models.SOSStatusInProgress}},
	}
	update := bson.M{"$set": bson.M{
		"status":     status,
		"updated_at": time.Now(),
	}}

	return r.findOneAndUpdate(ctx, filter, update)
}

func (r *sosRepository) CancelIfActive(ctx context.Context, id primitive.ObjectID) (*models.SOSRequest, error) {
	filter := bson.M{
		"_id": id,
		"status": bson.M{"$in": []models.SOSStatus{
			models.SOSStatusPending,
			models.SOSStatusAccepted,
			models.SOSStatusInProgress,
		}},
	}
	// Cancellation always releases the assignment so a cancelled record
	// never references a volunteer.
	update := bson.M{"$set": bson.M{
		"status":             models.SOSStatusCancelled,
		"assigned_volunteer": nil,
		"updated_at":         time.Now(),
	}}

	return r.findOneAndUpdate(ctx, filter, update)
}

func (r *sosRepository) AdminAssign(ctx context.Context, id, volunteerID primitive.ObjectID, status models.SOSStatus) (*models.SOSRequest, error) {
	filter := bson.M{
		"_id": id,
		"status": bson.M{"$nin": []models.SOSStatus{
			models.SOSStatusCompleted,
			models.SOSStatusCancelled,
		}},
	}
	update := bson.M{"$set": bson.M{
		"status":             status,
		"assigned_volunteer": volunteerID,
		"updated_at":         time.Now(),
	}}

	return r.findOneAndUpdate(ctx, filter, update)
}

func (r *sosRepository) AppendChat(ctx context.Context, id primitive.ObjectID, msg models.ChatMessage) error {
	result, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": id},
		bson.M{
			"$push": bson.M{"chat": msg},
			"$set":  bson.M{"updated_at": time.Now()},
		},
	)
	if err != nil {
		return fmt.Errorf("failed to append chat message: %w", err)
	}
	if result.MatchedCount == 0 {
		return interfaces.ErrNotFound
	}

	return nil
}

// findOneAndUpdate runs the conditional update and returns the post-update
// document. ErrPreconditionFailed means the filter matched nothing; the
// service layer re-fetches to tell NotFound from Conflict.
func (r *sosRepository) findOneAndUpdate(ctx context.Context, filter, update bson.M) (*models.SOSRequest, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var sos models.SOSRequest
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&sos)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, interfaces.ErrPreconditionFailed
		}
		return nil, fmt.Errorf("failed to update sos request: %w", err)
	}

	r.resolveVolunteerName(ctx, &sos)
	return &sos, nil
}

func (r *sosRepository) resolveVolunteerName(ctx context.Context, sos *models.SOSRequest) {
	if sos.AssignedVolunteer == nil {
		return
	}
	sos.AssignedVolunteerName = r.lookupVolunteerName(ctx, *sos.AssignedVolunteer)
}

func (r *sosRepository) lookupVolunteerName(ctx context.Context, id primitive.ObjectID) string {
	var volunteer struct {
		Name string `bson:"name"`
	}
	err := r.volunteers.FindOne(ctx, bson.M{"_id": id}).Decode(&volunteer)
	if err != nil {
		// Dangling reference reads as unknown instead of failing the caller.
		return ""
	}
	return volunteer.Name
}
