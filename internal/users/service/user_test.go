package service

import (
	"context"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	usererrors "fleetdesk/internal/users/errors"
	"fleetdesk/pkg/auth"
	"fleetdesk/pkg/config"
	apperrors "fleetdesk/pkg/errors"
	"fleetdesk/pkg/logger"
	"fleetdesk/pkg/model"
)

type mockUserRepo struct {
	CreateFunc      func(ctx context.Context, user *model.User) error
	FindByIDFunc    func(ctx context.Context, id string) (*model.User, error)
	FindByEmailFunc func(ctx context.Context, email string) (*model.User, error)
	FindAllFunc     func(ctx context.Context, limit int, offset int64) ([]*model.User, error)
	UpdateRoleFunc  func(ctx context.Context, id string, role string) error
	DeleteFunc      func(ctx context.Context, id string) error
	CountFunc       func(ctx context.Context) (int64, error)
}

func (m *mockUserRepo) Create(ctx context.Context, user *model.User) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, user)
	}
	return nil
}

func (m *mockUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return nil, usererrors.ErrNotFound
}

func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	if m.FindByEmailFunc != nil {
		return m.FindByEmailFunc(ctx, email)
	}
	return nil, usererrors.ErrNotFound
}

func (m *mockUserRepo) FindAll(ctx context.Context, limit int, offset int64) ([]*model.User, error) {
	if m.FindAllFunc != nil {
		return m.FindAllFunc(ctx, limit, offset)
	}
	return nil, nil
}

func (m *mockUserRepo) UpdateRole(ctx context.Context, id string, role string) error {
	if m.UpdateRoleFunc != nil {
		return m.UpdateRoleFunc(ctx, id, role)
	}
	return nil
}

func (m *mockUserRepo) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

func (m *mockUserRepo) Count(ctx context.Context) (int64, error) {
	if m.CountFunc != nil {
		return m.CountFunc(ctx)
	}
	return 0, nil
}

type mockGreeter struct {
	welcomed []string
}

func (m *mockGreeter) SendWelcome(to, name string) {
	m.welcomed = append(m.welcomed, to)
}

func testConfig() *config.Config {
	return &config.Config{
		Log: logger.New(logger.Config{Level: "error", Format: logger.JSON, Service: "test"}),
	}
}

func newTestUserService(repo *mockUserRepo, greeter Greeter) UserService {
	return NewUserService(repo, auth.NewManager("test-secret", time.Hour), greeter, testConfig())
}

func TestRegister(t *testing.T) {
	var stored *model.User
	repo := &mockUserRepo{
		CreateFunc: func(ctx context.Context, user *model.User) error {
			stored = user
			return nil
		},
	}
	greeter := &mockGreeter{}
	svc := newTestUserService(repo, greeter)

	registered, err := svc.Register(context.Background(), &model.User{
		Name:     "  Maya   Okafor ",
		Email:    "Maya.Okafor@Example.COM",
		Password: "s3cret-password",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if stored.Email != "maya.okafor@example.com" {
		t.Errorf("expected normalized email, got %q", stored.Email)
	}
	if stored.Name != "Maya Okafor" {
		t.Errorf("expected normalized name, got %q", stored.Name)
	}
	if stored.Role != model.RoleEmployee {
		t.Errorf("expected default role employee, got %q", stored.Role)
	}
	if stored.Password == "s3cret-password" {
		t.Error("password must be hashed before storage")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(stored.Password), []byte("s3cret-password")); err != nil {
		t.Error("stored hash must verify against the original password")
	}

	if registered.Password != "" {
		t.Error("returned user must not carry the password")
	}
	if len(greeter.welcomed) != 1 || greeter.welcomed[0] != stored.Email {
		t.Errorf("expected welcome email to the new user, got %v", greeter.welcomed)
	}
}

func TestRegister_Invalid(t *testing.T) {
	svc := newTestUserService(&mockUserRepo{}, &mockGreeter{})

	tests := []struct {
		name string
		user *model.User
	}{
		{"short password", &model.User{Name: "Maya", Email: "maya@example.com", Password: "short"}},
		{"bad email", &model.User{Name: "Maya", Email: "nope", Password: "s3cret-password"}},
		{"missing name", &model.User{Email: "maya@example.com", Password: "s3cret-password"}},
		{"bad role", &model.User{Name: "Maya", Email: "maya@example.com", Password: "s3cret-password", Role: "root"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), tt.user)
			if err == nil {
				t.Fatal("expected validation error")
			}
			if appErr := apperrors.AsAppError(err); appErr.StatusCode() != 400 {
				t.Errorf("expected HTTP 400, got %d", appErr.StatusCode())
			}
		})
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	repo := &mockUserRepo{
		CreateFunc: func(ctx context.Context, user *model.User) error {
			return usererrors.ErrDuplicateEmail
		},
	}
	greeter := &mockGreeter{}
	svc := newTestUserService(repo, greeter)

	_, err := svc.Register(context.Background(), &model.User{
		Name:     "Maya Okafor",
		Email:    "maya@example.com",
		Password: "s3cret-password",
	})
	if err == nil {
		t.Fatal("expected conflict")
	}
	if appErr := apperrors.AsAppError(err); appErr.StatusCode() != 409 {
		t.Errorf("expected HTTP 409, got %d", appErr.StatusCode())
	}
	if len(greeter.welcomed) != 0 {
		t.Error("no welcome email on failed registration")
	}
}

func TestLogin(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("s3cret-password"), bcrypt.MinCost)
	stored := &model.User{
		ID:       "user-1",
		Name:     "Maya Okafor",
		Email:    "maya@example.com",
		Password: string(hash),
		Role:     model.RoleManager,
	}

	repo := &mockUserRepo{
		FindByEmailFunc: func(ctx context.Context, email string) (*model.User, error) {
			if email != stored.Email {
				return nil, usererrors.ErrNotFound
			}
			return stored, nil
		},
	}
	tokens := auth.NewManager("test-secret", time.Hour)
	svc := NewUserService(repo, tokens, &mockGreeter{}, testConfig())

	resp, err := svc.Login(context.Background(), &model.Credentials{
		Email:    "Maya@Example.com",
		Password: "s3cret-password",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.ExpiresIn != 3600 {
		t.Errorf("expected one hour expiry, got %d", resp.ExpiresIn)
	}

	claims, err := tokens.VerifyToken(resp.AccessToken)
	if err != nil {
		t.Fatalf("issued token must verify: %v", err)
	}
	if claims.Subject != stored.ID {
		t.Errorf("expected subject %s, got %s", stored.ID, claims.Subject)
	}
	if claims.Role != model.RoleManager {
		t.Errorf("expected role manager, got %s", claims.Role)
	}
}

func TestLogin_InvalidCredentials(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("s3cret-password"), bcrypt.MinCost)
	repo := &mockUserRepo{
		FindByEmailFunc: func(ctx context.Context, email string) (*model.User, error) {
			if email == "maya@example.com" {
				return &model.User{ID: "user-1", Email: email, Password: string(hash)}, nil
			}
			return nil, usererrors.ErrNotFound
		},
	}
	svc := NewUserService(repo, auth.NewManager("test-secret", time.Hour), &mockGreeter{}, testConfig())

	tests := []struct {
		name  string
		creds *model.Credentials
	}{
		{"unknown email", &model.Credentials{Email: "nobody@example.com", Password: "s3cret-password"}},
		{"wrong password", &model.Credentials{Email: "maya@example.com", Password: "wrong-password"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Login(context.Background(), tt.creds)
			if err == nil {
				t.Fatal("expected unauthorized")
			}

			// Unknown email and wrong password must be indistinguishable.
			appErr := apperrors.AsAppError(err)
			if appErr.StatusCode() != 401 {
				t.Errorf("expected HTTP 401, got %d", appErr.StatusCode())
			}
			if appErr.Message != "Invalid credentials" {
				t.Errorf("expected uniform message, got %q", appErr.Message)
			}
		})
	}
}

func TestChangeRole(t *testing.T) {
	var gotRole string
	repo := &mockUserRepo{
		UpdateRoleFunc: func(ctx context.Context, id string, role string) error {
			gotRole = role
			return nil
		},
	}
	svc := newTestUserService(repo, &mockGreeter{})

	if err := svc.ChangeRole(context.Background(), "user-1", model.RoleAdmin); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotRole != model.RoleAdmin {
		t.Errorf("expected role admin passed through, got %q", gotRole)
	}

	err := svc.ChangeRole(context.Background(), "user-1", "root")
	if err == nil {
		t.Fatal("expected rejection of unknown role")
	}
	if appErr := apperrors.AsAppError(err); appErr.StatusCode() != 400 {
		t.Errorf("expected HTTP 400, got %d", appErr.StatusCode())
	}
}

func TestGetAll_RedactsPasswords(t *testing.T) {
	repo := &mockUserRepo{
		CountFunc: func(ctx context.Context) (int64, error) { return 1, nil },
		FindAllFunc: func(ctx context.Context, limit int, offset int64) ([]*model.User, error) {
			return []*model.User{{ID: "user-1", Email: "maya@example.com", Password: "hash"}}, nil
		},
	}
	svc := newTestUserService(repo, &mockGreeter{})

	users, total, err := svc.GetAll(context.Background(), 10, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 1 {
		t.Errorf("expected total 1, got %d", total)
	}
	for _, u := range users {
		if u.Password != "" {
			t.Errorf("user %s still carries a password", u.ID)
		}
	}
}
