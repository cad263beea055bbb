package service

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/google/uuid"

	proferrors "fleetdesk/internal/professionals/errors"
	"fleetdesk/internal/professionals/repository"
	"fleetdesk/internal/professionals/validator"
	"fleetdesk/pkg/config"
	apperrors "fleetdesk/pkg/errors"
	"fleetdesk/pkg/model"
	"fleetdesk/pkg/sanitizer"
	"fleetdesk/pkg/storage"
)

type ProfessionalService interface {
	Create(ctx context.Context, professional *model.Professional) error
	GetByID(ctx context.Context, id string) (*model.Professional, error)
	GetAll(ctx context.Context, limit int, offset int64) ([]*model.Professional, int64, error)
	Update(ctx context.Context, id string, professional *model.Professional) error
	Delete(ctx context.Context, id string) error
	SetAvatar(ctx context.Context, id string, avatar io.Reader) (*model.Professional, error)
}

type professionalService struct {
	repo      repository.ProfessionalRepository
	validator *validator.ProfessionalValidator
	uploader  storage.Uploader
	cfg       *config.Config
}

func NewProfessionalService(
	repo repository.ProfessionalRepository,
	professionalValidator *validator.ProfessionalValidator,
	uploader storage.Uploader,
	cfg *config.Config,
) ProfessionalService {
	return &professionalService{
		repo:      repo,
		validator: professionalValidator,
		uploader:  uploader,
		cfg:       cfg,
	}
}

func (s *professionalService) Create(ctx context.Context, professional *model.Professional) error {
	s.sanitize(professional)

	if err := s.validate(professional); err != nil {
		return err
	}

	// Pre-insert check for a friendly conflict; the unique index still
	// backstops concurrent registrations.
	if _, err := s.repo.FindByEmail(ctx, professional.Email); err == nil {
		return apperrors.Conflict("A professional with this email already exists")
	} else if !errors.Is(err, proferrors.ErrNotFound) {
		s.cfg.Log.Error("Failed to check professional email", "error", err)
		return apperrors.Internal("Failed to create professional", err)
	}

	if err := s.repo.Create(ctx, professional); err != nil {
		if errors.Is(err, proferrors.ErrDuplicateEmail) {
			return apperrors.Conflict("A professional with this email already exists")
		}
		s.cfg.Log.Error("Failed to create professional", "error", err)
		return apperrors.Internal("Failed to create professional", err)
	}

	s.cfg.Log.Info("Professional created", "id", professional.ID, "email", professional.Email)
	return nil
}

func (s *professionalService) GetByID(ctx context.Context, id string) (*model.Professional, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Professional ID cannot be empty")
	}

	professional, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapLookupError(err, id)
	}

	return professional, nil
}

func (s *professionalService) GetAll(ctx context.Context, limit int, offset int64) ([]*model.Professional, int64, error) {
	var count int64
	var professionals []*model.Professional
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.Count(ctx)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count professionals", "error", errCount)
			errCount = apperrors.Internal("Failed to count professionals", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		professionals, errFind = s.repo.FindAll(ctx, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list professionals", "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve professionals", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return professionals, count, nil
}

func (s *professionalService) Update(ctx context.Context, id string, professional *model.Professional) error {
	if id == "" {
		return apperrors.InvalidInput("Professional ID cannot be empty")
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return s.mapLookupError(err, id)
	}

	s.sanitize(professional)
	professional.ID = id
	professional.CreatedAt = existing.CreatedAt
	if professional.Avatar == "" {
		professional.Avatar = existing.Avatar
	}

	if err := s.validate(professional); err != nil {
		return err
	}

	if err := s.repo.Update(ctx, id, professional); err != nil {
		if errors.Is(err, proferrors.ErrDuplicateEmail) {
			return apperrors.Conflict("A professional with this email already exists")
		}
		if errors.Is(err, proferrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Professional", id)
		}
		s.cfg.Log.Error("Failed to update professional", "id", id, "error", err)
		return apperrors.Internal("Failed to update professional", err)
	}

	s.cfg.Log.Info("Professional updated", "id", id)
	return nil
}

func (s *professionalService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.InvalidInput("Professional ID cannot be empty")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return s.mapLookupError(err, id)
	}

	s.cfg.Log.Info("Professional deleted", "id", id)
	return nil
}

// SetAvatar uploads the profile image and replaces the professional's
// avatar URL.
func (s *professionalService) SetAvatar(ctx context.Context, id string, avatar io.Reader) (*model.Professional, error) {
	professional, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	url, err := s.uploader.Upload(ctx, avatar, "professional_"+id+"_"+uuid.NewString(), "professionals")
	if err != nil {
		s.cfg.Log.Error("Failed to upload avatar", "id", id, "error", err)
		return nil, apperrors.Internal("Failed to upload avatar", err)
	}
	if url == "" {
		return nil, apperrors.InvalidInput("Avatar storage is not configured")
	}

	professional.Avatar = url
	if err := s.repo.Update(ctx, id, professional); err != nil {
		return nil, apperrors.Internal("Failed to save avatar URL", err)
	}

	s.cfg.Log.Info("Professional avatar updated", "id", id)
	return professional, nil
}

func (s *professionalService) sanitize(p *model.Professional) {
	p.FirstName = sanitizer.NormalizeName(p.FirstName)
	p.LastName = sanitizer.NormalizeName(p.LastName)
	p.Email = sanitizer.NormalizeEmail(p.Email)
	p.Country = sanitizer.TrimAndNormalize(p.Country)
	p.Location = sanitizer.TrimAndNormalize(p.Location)
	p.Address = sanitizer.TrimAndNormalize(p.Address)
	p.ActiveDays = sanitizer.NormalizeDays(p.ActiveDays)
}

func (s *professionalService) validate(professional *model.Professional) error {
	if err := s.validator.Validate(professional); err != nil {
		s.cfg.Log.Warn("Professional validation failed", "error", err)
		return apperrors.Validation("Professional validation failed", map[string]any{"error": err.Error()})
	}
	return nil
}

func (s *professionalService) mapLookupError(err error, id string) error {
	if errors.Is(err, proferrors.ErrNotFound) {
		return apperrors.NotFoundWithID("Professional", id)
	}
	if errors.Is(err, proferrors.ErrInvalidID) {
		return apperrors.InvalidInput("Invalid professional ID format")
	}
	return apperrors.Internal("Failed to retrieve professional", err)
}
