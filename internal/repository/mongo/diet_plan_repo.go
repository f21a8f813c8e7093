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

const dietPlanCollectionName = "diet_plans"

var dietPlanNewestFirst = bson.D{{Key: "uploadedAt", Value: -1}, {Key: "_id", Value: -1}}

// mongoDietPlanRepository implements repository.DietPlanRepository
type mongoDietPlanRepository struct {
	collection *mongo.Collection
}

// NewMongoDietPlanRepository creates a new DietPlan repository backed by MongoDB.
func NewMongoDietPlanRepository(db *mongo.Database) repository.DietPlanRepository {
	return &mongoDietPlanRepository{
		collection: db.Collection(dietPlanCollectionName),
	}
}

// Create inserts diet plan metadata. UploadedAt is stamped here.
func (r *mongoDietPlanRepository) Create(ctx context.Context, plan *domain.DietPlan) (primitive.ObjectID, error) {
	if plan.ClientID == primitive.NilObjectID || plan.PlanName == "" || plan.FileURL == "" {
		return primitive.NilObjectID, errors.New("diet plan requires clientId, planName, and fileUrl")
	}

	plan.ID = primitive.NewObjectID()
	plan.UploadedAt = time.Now().UTC()

	result, err := r.collection.InsertOne(ctx, plan)
	if err != nil {
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted ID")
	}
	return insertedID, nil
}

// GetByID retrieves diet plan metadata by its ID.
func (r *mongoDietPlanRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.DietPlan, error) {
	var plan domain.DietPlan
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&plan); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &plan, nil
}

// ListByClient returns the client's plans, newest first.
func (r *mongoDietPlanRepository) ListByClient(ctx context.Context, clientID primitive.ObjectID) ([]domain.DietPlan, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"clientId": clientID}, options.Find().SetSort(dietPlanNewestFirst))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	plans := []domain.DietPlan{}
	if err = cursor.All(ctx, &plans); err != nil {
		return nil, err
	}
	return plans, nil
}

// Latest returns the most recently uploaded plan, or ErrNotFound.
func (r *mongoDietPlanRepository) Latest(ctx context.Context, clientID primitive.ObjectID) (*domain.DietPlan, error) {
	var plan domain.DietPlan
	opts := options.FindOne().SetSort(dietPlanNewestFirst)
	if err := r.collection.FindOne(ctx, bson.M{"clientId": clientID}, opts).Decode(&plan); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &plan, nil
}

// Delete removes diet plan metadata. The file is released by the caller.
func (r *mongoDietPlanRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsureDietPlanIndexes creates necessary indexes for the diet_plans collection.
func EnsureDietPlanIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "clientId", Value: 1}, {Key: "uploadedAt", Value: -1}},
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}
