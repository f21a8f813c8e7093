package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"dietcascade/portal-api/internal/domain"
)

// Error constants for repository layer
var (
	ErrNotFound     = RepositoryError("not found")
	ErrDuplicateKey = RepositoryError("duplicate key")
	ErrUpdateFailed = RepositoryError("update failed")
	ErrDeleteFailed = RepositoryError("delete failed")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// ClientFilter narrows the admin client directory. Zero values match everything.
type ClientFilter struct {
	Search string // Case-insensitive match on name, phone or instagram
	Status domain.ClientStatus
}

// ClientCounts summarises the whole directory regardless of filter.
type ClientCounts struct {
	Total     int64 `json:"total"`
	Active    int64 `json:"active"`
	Completed int64 `json:"completed"`
	Paused    int64 `json:"paused"`
}

// ClientUpdate carries the profile fields the admin may edit. Nil means unchanged.
type ClientUpdate struct {
	FullName     *string
	Phone        *string
	Instagram    *string
	InitialGoals *string
}

// UserRepository defines the interface for interacting with user data.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// ClientRepository persists clients and their plan records.
type ClientRepository interface {
	Create(ctx context.Context, client *domain.Client) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Client, error)
	GetByUserID(ctx context.Context, userID primitive.ObjectID) (*domain.Client, error)
	List(ctx context.Context, filter ClientFilter) ([]domain.Client, error) // Newest first
	Counts(ctx context.Context) (*ClientCounts, error)
	Update(ctx context.Context, id primitive.ObjectID, update ClientUpdate) error
	UpdatePlan(ctx context.Context, id primitive.ObjectID, plan domain.PlanRecord) error
	UpdateStatus(ctx context.Context, id primitive.ObjectID, status domain.ClientStatus) error
}

// ProgressRepository persists progress entries. Lists are ordered by date,
// then createdAt, then _id.
type ProgressRepository interface {
	Create(ctx context.Context, entry *domain.ProgressEntry) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.ProgressEntry, error)
	Update(ctx context.Context, entry *domain.ProgressEntry) error // Full replace of mutable fields
	Delete(ctx context.Context, id primitive.ObjectID) error
	ListByClient(ctx context.Context, clientID primitive.ObjectID) ([]domain.ProgressEntry, error)
	Latest(ctx context.Context, clientID primitive.ObjectID) (*domain.ProgressEntry, error)
	CountByClient(ctx context.Context, clientID primitive.ObjectID) (int64, error)
}

// DietPlanRepository persists diet plan document metadata. Lists are newest first.
type DietPlanRepository interface {
	Create(ctx context.Context, plan *domain.DietPlan) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.DietPlan, error)
	ListByClient(ctx context.Context, clientID primitive.ObjectID) ([]domain.DietPlan, error)
	Latest(ctx context.Context, clientID primitive.ObjectID) (*domain.DietPlan, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}
