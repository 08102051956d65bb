package repository

import (
	"context"
	"errors"
	"time"

	"traveldesk-service/internal/domain/entity"
	"traveldesk-service/internal/domain/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoTravelRecordRepository implements TravelRecordRepository
type MongoTravelRecordRepository struct {
	collection *mongo.Collection
}

// NewMongoTravelRecordRepository creates a new travel record repository
func NewMongoTravelRecordRepository(db *mongo.Database) repository.TravelRecordRepository {
	collection := db.Collection("travel_records")

	// Owner-scoped listing and the re-arm scan drive the two queries
	// this service runs constantly.
	ctx := context.Background()
	collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}},
	})
	collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "departureUtc", Value: 1}},
	})
	collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "batchId", Value: 1}},
	})

	return &MongoTravelRecordRepository{collection: collection}
}

// InsertBatch writes the records of one opt-in action in order,
// stopping at the first failure so the caller can roll back the batch.
func (r *MongoTravelRecordRepository) InsertBatch(ctx context.Context, records []*entity.TravelRecord) error {
	if len(records) == 0 {
		return nil
	}

	now := time.Now().UTC()
	docs := make([]interface{}, 0, len(records))
	for _, record := range records {
		if record.ID == "" {
			record.ID = primitive.NewObjectID().Hex()
		}
		if record.CreatedAt.IsZero() {
			record.CreatedAt = now
		}
		docs = append(docs, record)
	}

	_, err := r.collection.InsertMany(ctx, docs, options.InsertMany().SetOrdered(true))
	return err
}

// DeleteBatch removes every record sharing the batch id. Used to roll
// back a partially inserted batch.
func (r *MongoTravelRecordRepository) DeleteBatch(ctx context.Context, batchID string) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{"batchId": batchID})
	return err
}

// FindByID finds a travel record by id
func (r *MongoTravelRecordRepository) FindByID(ctx context.Context, id string) (*entity.TravelRecord, error) {
	var record entity.TravelRecord
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&record)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, entity.ErrRecordNotFound
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// FindByBatch returns every leg of one saved itinerary, ordered by
// departure
func (r *MongoTravelRecordRepository) FindByBatch(ctx context.Context, batchID string) ([]*entity.TravelRecord, error) {
	opts := options.Find().SetSort(bson.D{{Key: "departureUtc", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"batchId": batchID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var records []*entity.TravelRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// ListByUser returns the owner's records, newest first
func (r *MongoTravelRecordRepository) ListByUser(ctx context.Context, userID string) ([]*entity.TravelRecord, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"userId": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var records []*entity.TravelRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// FindUpcoming returns records departing at or after the given instant
func (r *MongoTravelRecordRepository) FindUpcoming(ctx context.Context, from time.Time) ([]*entity.TravelRecord, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"departureUtc": bson.M{"$gte": from}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var records []*entity.TravelRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// SetAlertFlag marks one reminder offset fired. The update only ever
// sets the flag true, keeping the transition monotonic.
func (r *MongoTravelRecordRepository) SetAlertFlag(ctx context.Context, id string, offset entity.ReminderOffset) error {
	field := "checkin24hAlert"
	if offset == entity.Offset3h {
		field = "checkin3hAlert"
	}

	result, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{field: true}},
	)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return entity.ErrRecordNotFound
	}
	return nil
}

// SetCheckinCompleted marks the record checked in
func (r *MongoTravelRecordRepository) SetCheckinCompleted(ctx context.Context, id string) error {
	result, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"checkinCompleted": true}},
	)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return entity.ErrRecordNotFound
	}
	return nil
}

// Delete removes a travel record by id
func (r *MongoTravelRecordRepository) Delete(ctx context.Context, id string) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return entity.ErrRecordNotFound
	}
	return nil
}
