package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"dietcascade/portal-api/internal/config"
	"dietcascade/portal-api/internal/domain"
)

func newAuthFixture() (AuthService, *fakeUserRepo) {
	log, _ := newTestLogger()
	users := newFakeUserRepo()
	return NewAuthService(users, log, "test-secret", time.Hour), users
}

func TestLoginIssuesToken(t *testing.T) {
	auth, _ := newAuthFixture()
	ctx := context.Background()
	if _, err := auth.Register(ctx, "Coach", "coach@example.com", "password123", domain.RoleAdmin); err != nil {
		t.Fatalf("Register: %v", err)
	}

	token, user, err := auth.Login(ctx, " Coach@Example.com ", "password123")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if user.PasswordHash != "" {
		t.Error("password hash leaked")
	}

	claims := &jwtClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	if err != nil || !parsed.Valid {
		t.Fatalf("token invalid: %v", err)
	}
	if claims.UserID != user.ID.Hex() || claims.Role != domain.RoleAdmin {
		t.Errorf("unexpected claims %+v", claims)
	}
}

func TestLoginFailures(t *testing.T) {
	auth, _ := newAuthFixture()
	ctx := context.Background()
	if _, err := auth.Register(ctx, "C", "c@example.com", "password123", domain.RoleClient); err != nil {
		t.Fatal(err)
	}

	if _, _, err := auth.Login(ctx, "c@example.com", "wrong-password"); !errors.Is(err, ErrAuthenticationFailed) {
		t.Errorf("wrong password: got %v", err)
	}
	if _, _, err := auth.Login(ctx, "nobody@example.com", "password123"); !errors.Is(err, ErrAuthenticationFailed) {
		t.Errorf("unknown user: got %v", err)
	}
	var vErr *ValidationError
	if _, _, err := auth.Login(ctx, "", ""); !errors.As(err, &vErr) {
		t.Errorf("empty credentials: got %v", err)
	}
}

func TestEnsureAdminIsIdempotent(t *testing.T) {
	auth, users := newAuthFixture()
	ctx := context.Background()
	cfg := config.AdminConfig{Email: "admin@example.com", Password: "password123", Name: "Admin"}

	for i := 0; i < 2; i++ {
		if err := auth.EnsureAdmin(ctx, cfg); err != nil {
			t.Fatalf("EnsureAdmin #%d: %v", i, err)
		}
	}
	if len(users.users) != 1 {
		t.Fatalf("expected one admin, got %d users", len(users.users))
	}
	for _, u := range users.users {
		if u.Role != domain.RoleAdmin {
			t.Errorf("role = %s", u.Role)
		}
	}

	if err := auth.EnsureAdmin(ctx, config.AdminConfig{}); err != nil {
		t.Errorf("unconfigured seed should be skipped, got %v", err)
	}
}

func TestGetUser(t *testing.T) {
	auth, _ := newAuthFixture()
	ctx := context.Background()
	created, err := auth.Register(ctx, "C", "c@example.com", "password123", domain.RoleClient)
	if err != nil {
		t.Fatal(err)
	}

	user, err := auth.GetUser(ctx, created.ID)
	if err != nil || user.Email != "c@example.com" || user.PasswordHash != "" {
		t.Errorf("GetUser = %+v, %v", user, err)
	}
}
