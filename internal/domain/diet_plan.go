package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DietPlan stores metadata about a plan document (PDF or image) uploaded by
// the admin for a client. The file itself lives in the diet plan bucket.
type DietPlan struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ClientID   primitive.ObjectID `bson:"clientId" json:"clientId"`
	PlanName   string             `bson:"planName" json:"planName"`
	FileURL    string             `bson:"fileUrl" json:"fileUrl"`
	Notes      string             `bson:"notes,omitempty" json:"notes,omitempty"`
	UploadedBy primitive.ObjectID `bson:"uploadedBy" json:"uploadedBy"`
	UploadedAt time.Time          `bson:"uploadedAt" json:"uploadedAt"`
}
