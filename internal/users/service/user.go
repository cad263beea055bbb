package service

import (
	"context"
	"errors"
	"sync"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	usererrors "fleetdesk/internal/users/errors"
	"fleetdesk/internal/users/repository"
	"fleetdesk/pkg/auth"
	"fleetdesk/pkg/config"
	apperrors "fleetdesk/pkg/errors"
	"fleetdesk/pkg/model"
	"fleetdesk/pkg/sanitizer"
)

// Greeter sends the post-registration welcome email. Best effort;
// registration never fails on delivery problems.
type Greeter interface {
	SendWelcome(to, name string)
}

type UserService interface {
	Register(ctx context.Context, user *model.User) (*model.User, error)
	Login(ctx context.Context, creds *model.Credentials) (*model.TokenResponse, error)
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetAll(ctx context.Context, limit int, offset int64) ([]*model.User, int64, error)
	ChangeRole(ctx context.Context, id string, role string) error
	Delete(ctx context.Context, id string) error
}

type userService struct {
	repo     repository.UserRepository
	tokens   *auth.Manager
	greeter  Greeter
	validate *validator.Validate
	cfg      *config.Config
}

func NewUserService(
	repo repository.UserRepository,
	tokens *auth.Manager,
	greeter Greeter,
	cfg *config.Config,
) UserService {
	return &userService{
		repo:     repo,
		tokens:   tokens,
		greeter:  greeter,
		validate: validator.New(),
		cfg:      cfg,
	}
}

func (s *userService) Register(ctx context.Context, user *model.User) (*model.User, error) {
	user.Name = sanitizer.NormalizeName(user.Name)
	user.Email = sanitizer.NormalizeEmail(user.Email)
	if user.Role == "" {
		user.Role = model.RoleEmployee
	}

	if err := s.validate.Struct(user); err != nil {
		s.cfg.Log.Warn("User validation failed", "error", err)
		return nil, apperrors.Validation("User validation failed", map[string]any{"error": err.Error()})
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperrors.Internal("Failed to hash password", err)
	}
	user.Password = string(hash)

	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, usererrors.ErrDuplicateEmail) {
			return nil, apperrors.Conflict("A user with this email already exists")
		}
		s.cfg.Log.Error("Failed to create user", "error", err)
		return nil, apperrors.Internal("Failed to create user", err)
	}

	s.cfg.Log.Info("User registered", "id", user.ID, "role", user.Role)

	if s.greeter != nil {
		s.greeter.SendWelcome(user.Email, user.Name)
	}

	return user.Redacted(), nil
}

func (s *userService) Login(ctx context.Context, creds *model.Credentials) (*model.TokenResponse, error) {
	email := sanitizer.NormalizeEmail(creds.Email)
	if email == "" || creds.Password == "" {
		return nil, apperrors.InvalidInput("Email and password are required")
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, usererrors.ErrNotFound) {
			// Same response as a wrong password to avoid user enumeration.
			return nil, apperrors.Unauthorized("Invalid credentials")
		}
		return nil, apperrors.Internal("Failed to look up user", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(creds.Password)); err != nil {
		s.cfg.Log.Warn("Login failed", "email", email)
		return nil, apperrors.Unauthorized("Invalid credentials")
	}

	token, err := s.tokens.GenerateToken(user.ID, user.Name, user.Email, user.Role)
	if err != nil {
		return nil, apperrors.Internal("Failed to issue token", err)
	}

	s.cfg.Log.Info("User logged in", "id", user.ID, "role", user.Role)

	return &model.TokenResponse{
		AccessToken: token,
		ExpiresIn:   int64(s.tokens.TTL().Seconds()),
	}, nil
}

func (s *userService) GetByID(ctx context.Context, id string) (*model.User, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("User ID cannot be empty")
	}

	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapLookupError(err, id)
	}

	return user.Redacted(), nil
}

func (s *userService) GetAll(ctx context.Context, limit int, offset int64) ([]*model.User, int64, error) {
	var count int64
	var users []*model.User
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.Count(ctx)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count users", "error", errCount)
			errCount = apperrors.Internal("Failed to count users", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		users, errFind = s.repo.FindAll(ctx, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list users", "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve users", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	for i, u := range users {
		users[i] = u.Redacted()
	}
	return users, count, nil
}

func (s *userService) ChangeRole(ctx context.Context, id string, role string) error {
	if id == "" {
		return apperrors.InvalidInput("User ID cannot be empty")
	}

	switch role {
	case model.RoleEmployee, model.RoleManager, model.RoleAdmin, model.RoleSuperAdmin:
	default:
		return apperrors.InvalidInput("Invalid role")
	}

	if err := s.repo.UpdateRole(ctx, id, role); err != nil {
		return s.mapLookupError(err, id)
	}

	s.cfg.Log.Info("User role changed", "id", id, "role", role)
	return nil
}

func (s *userService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.InvalidInput("User ID cannot be empty")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return s.mapLookupError(err, id)
	}

	s.cfg.Log.Info("User deleted", "id", id)
	return nil
}

func (s *userService) mapLookupError(err error, id string) error {
	if errors.Is(err, usererrors.ErrNotFound) {
		return apperrors.NotFoundWithID("User", id)
	}
	if errors.Is(err, usererrors.ErrInvalidID) {
		return apperrors.InvalidInput("Invalid user ID format")
	}
	return apperrors.Internal("Failed to retrieve user", err)
}
