package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PlanType is the enrollment duration category shown to the admin.
type PlanType string

const (
	PlanOneMonth   PlanType = "1 Month Plan"
	PlanThreeMonth PlanType = "3 Month Plan"
	PlanSixMonth   PlanType = "6 Month Plan"
)

// Months returns the plan length in calendar months. Unknown plan types count as one month.
func (p PlanType) Months() int {
	switch p {
	case PlanThreeMonth:
		return 3
	case PlanSixMonth:
		return 6
	default:
		return 1
	}
}

// ParsePlanType matches s against the known plan types.
func ParsePlanType(s string) (PlanType, bool) {
	switch p := PlanType(s); p {
	case PlanOneMonth, PlanThreeMonth, PlanSixMonth:
		return p, true
	}
	return "", false
}

// ClientStatus is managed by hand by the admin; any status may follow any other.
type ClientStatus string

const (
	StatusActive    ClientStatus = "active"
	StatusPaused    ClientStatus = "paused"
	StatusCompleted ClientStatus = "completed"
	StatusInactive  ClientStatus = "inactive"
	StatusPending   ClientStatus = "pending"
)

// Valid reports whether s is one of the known statuses.
func (s ClientStatus) Valid() bool {
	switch s {
	case StatusActive, StatusPaused, StatusCompleted, StatusInactive, StatusPending:
		return true
	}
	return false
}

// Client is an end customer enrolled in a plan. Clients are never hard-deleted.
type Client struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID       primitive.ObjectID `bson:"userId" json:"userId"` // Login account of the client
	FullName     string             `bson:"fullName" json:"fullName"`
	Phone        string             `bson:"phone,omitempty" json:"phone,omitempty"`
	Instagram    string             `bson:"instagram,omitempty" json:"instagram,omitempty"`
	InitialGoals string             `bson:"initialGoals,omitempty" json:"initialGoals,omitempty"`

	// Plan record
	PlanType      PlanType     `bson:"assignedPlanType" json:"assignedPlanType"`
	PlanStartDate *time.Time   `bson:"planStartDate,omitempty" json:"planStartDate,omitempty"`
	PlanEndDate   *time.Time   `bson:"planEndDate,omitempty" json:"planEndDate,omitempty"` // Derived once from start + plan type
	Status        ClientStatus `bson:"status" json:"status"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// PlanRecord is the plan-lifecycle view of a Client.
type PlanRecord struct {
	ClientID  primitive.ObjectID
	PlanType  PlanType
	StartDate *time.Time
	EndDate   *time.Time
	Status    ClientStatus
}

// Plan extracts the plan record from the client.
func (c *Client) Plan() PlanRecord {
	return PlanRecord{
		ClientID:  c.ID,
		PlanType:  c.PlanType,
		StartDate: c.PlanStartDate,
		EndDate:   c.PlanEndDate,
		Status:    c.Status,
	}
}
