package validation

import (
	"errors"
	"testing"
)

type measurementInput struct {
	Date     string   `json:"date" validate:"required,datetime=2006-01-02"`
	WeightKg *float64 `json:"weight_kg" validate:"omitempty,gte=20,lte=300"`
	Status   string   `form:"status" validate:"omitempty,oneof=active paused"`
}

func ptr(v float64) *float64 { return &v }

func TestStructValid(t *testing.T) {
	v := New()
	in := measurementInput{Date: "2024-01-01", WeightKg: ptr(80)}
	if err := v.Struct(in); err != nil {
		t.Fatalf("expected valid input, got %v", err)
	}
}

func TestFormatValidationErrorsUsesWireNames(t *testing.T) {
	v := New()
	err := v.Struct(measurementInput{WeightKg: ptr(301), Status: "gone"})
	if err == nil {
		t.Fatal("expected validation error")
	}

	fields := FormatValidationErrors(err)
	want := map[string]string{
		"date":      "date is required",
		"weight_kg": "weight_kg must be less than or equal to 300",
		"status":    "status must be one of: active, paused",
	}
	for k, msg := range want {
		if fields[k] != msg {
			t.Errorf("fields[%q] = %q, want %q", k, fields[k], msg)
		}
	}
}

func TestFormatValidationErrorsBadDate(t *testing.T) {
	err := New().Struct(measurementInput{Date: "01/02/2024"})
	if got := FormatValidationErrors(err)["date"]; got != "date must be a date in YYYY-MM-DD format" {
		t.Errorf("unexpected message %q", got)
	}
}

func TestFormatValidationErrorsOtherError(t *testing.T) {
	if got := FormatValidationErrors(errors.New("boom")); len(got) != 0 {
		t.Errorf("expected empty map, got %v", got)
	}
}
