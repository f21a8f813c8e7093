package mongo

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"dietcascade/portal-api/internal/domain"
	"dietcascade/portal-api/internal/repository"
)

func TestClientListFilterEmpty(t *testing.T) {
	if f := clientListFilter(repository.ClientFilter{Search: "   "}); len(f) != 0 {
		t.Errorf("expected empty filter, got %v", f)
	}
}

func TestClientListFilterSearchAndStatus(t *testing.T) {
	f := clientListFilter(repository.ClientFilter{Search: " a.b ", Status: domain.StatusPaused})

	if f["status"] != domain.StatusPaused {
		t.Errorf("status filter = %v", f["status"])
	}
	or, ok := f["$or"].(bson.A)
	if !ok || len(or) != 3 {
		t.Fatalf("expected three $or clauses, got %v", f["$or"])
	}
	clause := or[0].(bson.M)
	re, ok := clause["fullName"].(primitive.Regex)
	if !ok {
		t.Fatalf("expected regex on fullName, got %v", clause)
	}
	// Search text is matched literally and case-insensitively.
	if re.Pattern != `a\.b` || re.Options != "i" {
		t.Errorf("regex = %+v", re)
	}
}
