package bookingrec

import (
	"context"
	"fmt"
	"time"

	"campflow/database"
	"campflow/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoBookingRecordRepo implements Repository on MongoDB.
type MongoBookingRecordRepo struct {
	coll *mongo.Collection
}

// NewMongoBookingRecordRepo returns a repository over the bookings
// collection.
func NewMongoBookingRecordRepo() *MongoBookingRecordRepo {
	return &MongoBookingRecordRepo{
		coll: database.MongoClient.Database("campflow").Collection("bookings"),
	}
}

// Insert stores a new booking record.
func (repo *MongoBookingRecordRepo) Insert(ctx context.Context, record *models.BookingRecord) error {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := repo.coll.InsertOne(ctxWithTimeout, record)
	if err != nil {
		return fmt.Errorf("error inserting booking record: %w", err)
	}
	return nil
}

// GetByGlobalID retrieves a booking record by its global id.
func (repo *MongoBookingRecordRepo) GetByGlobalID(ctx context.Context, globalID string) (*models.BookingRecord, error) {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var record models.BookingRecord
	err := repo.coll.FindOne(ctxWithTimeout, bson.M{"globalId": globalID}).Decode(&record)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error fetching booking record: %w", err)
	}
	return &record, nil
}

// GetByUser retrieves all booking records for a user, newest first.
func (repo *MongoBookingRecordRepo) GetByUser(ctx context.Context, userSub string) ([]models.BookingRecord, error) {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := repo.coll.Find(ctxWithTimeout, bson.M{"userSub": userSub}, opts)
	if err != nil {
		return nil, fmt.Errorf("error querying booking records: %w", err)
	}
	defer cursor.Close(ctxWithTimeout)

	var records []models.BookingRecord
	if err := cursor.All(ctxWithTimeout, &records); err != nil {
		return nil, fmt.Errorf("error decoding booking records: %w", err)
	}
	return records, nil
}

// UpdateStatus flips the status of an existing booking record.
func (repo *MongoBookingRecordRepo) UpdateStatus(ctx context.Context, globalID, status string) error {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"globalId": globalID}
	update := bson.M{"$set": bson.M{"status": status}}
	result, err := repo.coll.UpdateOne(ctxWithTimeout, filter, update)
	if err != nil {
		return fmt.Errorf("error updating booking record %s: %w", globalID, err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("booking record %s not found", globalID)
	}
	return nil
}
