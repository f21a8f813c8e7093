package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Metric names one of the optional body measurements of a progress entry.
type Metric string

const (
	MetricWeight Metric = "weight_kg"
	MetricChest  Metric = "chest_cm"
	MetricWaist  Metric = "waist_cm"
	MetricHips   Metric = "hips_cm"
)

// Metrics lists every metric in display order.
var Metrics = []Metric{MetricWeight, MetricChest, MetricWaist, MetricHips}

// Valid reports whether m is a known metric.
func (m Metric) Valid() bool {
	for _, known := range Metrics {
		if m == known {
			return true
		}
	}
	return false
}

// Label is the human readable name with unit, e.g. "Weight (kg)".
func (m Metric) Label() string {
	switch m {
	case MetricWeight:
		return "Weight (kg)"
	case MetricChest:
		return "Chest (cm)"
	case MetricWaist:
		return "Waist (cm)"
	case MetricHips:
		return "Hips (cm)"
	}
	return string(m)
}

// ProgressEntry is one dated measurement event of a client.
// Every measurement is optional, but an entry must carry at least one
// measurement, a photo or a note.
type ProgressEntry struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ClientID primitive.ObjectID `bson:"clientId" json:"clientId"`
	Date     time.Time          `bson:"date" json:"date"` // Calendar date, UTC midnight

	WeightKg *float64 `bson:"weightKg,omitempty" json:"weightKg,omitempty"`
	ChestCm  *float64 `bson:"chestCm,omitempty" json:"chestCm,omitempty"`
	WaistCm  *float64 `bson:"waistCm,omitempty" json:"waistCm,omitempty"`
	HipsCm   *float64 `bson:"hipsCm,omitempty" json:"hipsCm,omitempty"`

	PhotoURL string `bson:"photoUrl,omitempty" json:"photoUrl,omitempty"`
	Notes    string `bson:"notes,omitempty" json:"notes,omitempty"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"` // Tie-break for entries sharing a date
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// Value returns the value recorded for m, or nil when it was not recorded.
func (e *ProgressEntry) Value(m Metric) *float64 {
	switch m {
	case MetricWeight:
		return e.WeightKg
	case MetricChest:
		return e.ChestCm
	case MetricWaist:
		return e.WaistCm
	case MetricHips:
		return e.HipsCm
	}
	return nil
}

// SetValue stores v (nil clears it) for m.
func (e *ProgressEntry) SetValue(m Metric, v *float64) {
	switch m {
	case MetricWeight:
		e.WeightKg = v
	case MetricChest:
		e.ChestCm = v
	case MetricWaist:
		e.WaistCm = v
	case MetricHips:
		e.HipsCm = v
	}
}

// HasContent reports whether at least one measurement, the photo or the note is set.
func (e *ProgressEntry) HasContent() bool {
	for _, m := range Metrics {
		if e.Value(m) != nil {
			return true
		}
	}
	return e.PhotoURL != "" || e.Notes != ""
}
