package mongo

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"dietcascade/portal-api/internal/domain"
	"dietcascade/portal-api/internal/repository"
)

const clientCollectionName = "clients"

// mongoClientRepository implements repository.ClientRepository
type mongoClientRepository struct {
	collection *mongo.Collection
}

// NewMongoClientRepository creates a new Client repository backed by MongoDB.
func NewMongoClientRepository(db *mongo.Database) repository.ClientRepository {
	return &mongoClientRepository{
		collection: db.Collection(clientCollectionName),
	}
}

// Create inserts a new client.
func (r *mongoClientRepository) Create(ctx context.Context, client *domain.Client) (primitive.ObjectID, error) {
	if client.UserID == primitive.NilObjectID || client.FullName == "" {
		return primitive.NilObjectID, errors.New("client requires userId and fullName")
	}

	client.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	client.CreatedAt = now
	client.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, client)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return primitive.NilObjectID, repository.ErrDuplicateKey
		}
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted client ID")
	}
	return insertedID, nil
}

func (r *mongoClientRepository) findOne(ctx context.Context, filter bson.M) (*domain.Client, error) {
	var client domain.Client
	if err := r.collection.FindOne(ctx, filter).Decode(&client); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &client, nil
}

// GetByID retrieves a client by its ID.
func (r *mongoClientRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Client, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

// GetByUserID retrieves the client linked to a login user.
func (r *mongoClientRepository) GetByUserID(ctx context.Context, userID primitive.ObjectID) (*domain.Client, error) {
	return r.findOne(ctx, bson.M{"userId": userID})
}

// clientListFilter translates the directory filter into a Mongo query.
func clientListFilter(f repository.ClientFilter) bson.M {
	filter := bson.M{}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if search := strings.TrimSpace(f.Search); search != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(search), Options: "i"}
		filter["$or"] = bson.A{
			bson.M{"fullName": pattern},
			bson.M{"phone": pattern},
			bson.M{"instagram": pattern},
		}
	}
	return filter
}

// List returns the clients matching filter, newest first.
func (r *mongoClientRepository) List(ctx context.Context, f repository.ClientFilter) ([]domain.Client, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})

	cursor, err := r.collection.Find(ctx, clientListFilter(f), opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	clients := []domain.Client{}
	if err = cursor.All(ctx, &clients); err != nil {
		return nil, err
	}
	return clients, nil
}

// Counts groups all clients by status in a single aggregation.
func (r *mongoClientRepository) Counts(ctx context.Context) (*repository.ClientCounts, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$status"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var groups []struct {
		Status domain.ClientStatus `bson:"_id"`
		Count  int64               `bson:"count"`
	}
	if err = cursor.All(ctx, &groups); err != nil {
		return nil, err
	}

	counts := &repository.ClientCounts{}
	for _, g := range groups {
		counts.Total += g.Count
		switch g.Status {
		case domain.StatusActive:
			counts.Active = g.Count
		case domain.StatusCompleted:
			counts.Completed = g.Count
		case domain.StatusPaused:
			counts.Paused = g.Count
		}
	}
	return counts, nil
}

func (r *mongoClientRepository) updateFields(ctx context.Context, id primitive.ObjectID, set bson.M) error {
	set["updatedAt"] = time.Now().UTC()
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Update applies the non-nil profile fields.
func (r *mongoClientRepository) Update(ctx context.Context, id primitive.ObjectID, u repository.ClientUpdate) error {
	set := bson.M{}
	if u.FullName != nil {
		set["fullName"] = *u.FullName
	}
	if u.Phone != nil {
		set["phone"] = *u.Phone
	}
	if u.Instagram != nil {
		set["instagram"] = *u.Instagram
	}
	if u.InitialGoals != nil {
		set["initialGoals"] = *u.InitialGoals
	}
	return r.updateFields(ctx, id, set)
}

// UpdatePlan stores plan type and the already computed date range.
func (r *mongoClientRepository) UpdatePlan(ctx context.Context, id primitive.ObjectID, plan domain.PlanRecord) error {
	return r.updateFields(ctx, id, bson.M{
		"assignedPlanType": plan.PlanType,
		"planStartDate":    plan.StartDate,
		"planEndDate":      plan.EndDate,
	})
}

// UpdateStatus sets the client status.
func (r *mongoClientRepository) UpdateStatus(ctx context.Context, id primitive.ObjectID, status domain.ClientStatus) error {
	return r.updateFields(ctx, id, bson.M{"status": status})
}

// EnsureClientIndexes creates necessary indexes for the clients collection.
func EnsureClientIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{
			// One client record per login user
			Keys:    bson.D{{Key: "userId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "status", Value: 1}, {Key: "createdAt", Value: -1}},
		},
		{
			Keys: bson.D{{Key: "createdAt", Value: -1}},
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}
