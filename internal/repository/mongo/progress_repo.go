package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"dietcascade/portal-api/internal/domain"
	"dietcascade/portal-api/internal/repository"
)

const progressCollectionName = "progress_entries"

var (
	// Chronological order; same-day entries keep insertion order.
	progressAscending  = bson.D{{Key: "date", Value: 1}, {Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}}
	progressDescending = bson.D{{Key: "date", Value: -1}, {Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}
)

// mongoProgressRepository implements repository.ProgressRepository
type mongoProgressRepository struct {
	collection *mongo.Collection
}

// NewMongoProgressRepository creates a new ProgressEntry repository backed by MongoDB.
func NewMongoProgressRepository(db *mongo.Database) repository.ProgressRepository {
	return &mongoProgressRepository{
		collection: db.Collection(progressCollectionName),
	}
}

// Create inserts a new progress entry.
func (r *mongoProgressRepository) Create(ctx context.Context, entry *domain.ProgressEntry) (primitive.ObjectID, error) {
	if entry.ClientID == primitive.NilObjectID || entry.Date.IsZero() {
		return primitive.NilObjectID, errors.New("progress entry requires clientId and date")
	}

	entry.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	entry.CreatedAt = now
	entry.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, entry)
	if err != nil {
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted entry ID")
	}
	return insertedID, nil
}

// GetByID retrieves a single entry.
func (r *mongoProgressRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.ProgressEntry, error) {
	var entry domain.ProgressEntry
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&entry); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &entry, nil
}

// Update replaces the stored document. Unset optional fields are dropped,
// which is how a measurement or the photo gets cleared.
func (r *mongoProgressRepository) Update(ctx context.Context, entry *domain.ProgressEntry) error {
	entry.UpdatedAt = time.Now().UTC()

	result, err := r.collection.ReplaceOne(ctx, bson.M{"_id": entry.ID, "clientId": entry.ClientID}, entry)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Delete removes an entry.
func (r *mongoProgressRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// ListByClient returns every entry of the client in chronological order.
func (r *mongoProgressRepository) ListByClient(ctx context.Context, clientID primitive.ObjectID) ([]domain.ProgressEntry, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"clientId": clientID}, options.Find().SetSort(progressAscending))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	entries := []domain.ProgressEntry{}
	if err = cursor.All(ctx, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// Latest returns the chronologically last entry, or ErrNotFound.
func (r *mongoProgressRepository) Latest(ctx context.Context, clientID primitive.ObjectID) (*domain.ProgressEntry, error) {
	var entry domain.ProgressEntry
	opts := options.FindOne().SetSort(progressDescending)
	if err := r.collection.FindOne(ctx, bson.M{"clientId": clientID}, opts).Decode(&entry); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &entry, nil
}

// CountByClient returns the exact number of entries of the client.
func (r *mongoProgressRepository) CountByClient(ctx context.Context, clientID primitive.ObjectID) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"clientId": clientID})
}

// EnsureProgressIndexes creates necessary indexes for the progress_entries collection.
func EnsureProgressIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "clientId", Value: 1}, {Key: "date", Value: 1}, {Key: "createdAt", Value: 1}},
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}
