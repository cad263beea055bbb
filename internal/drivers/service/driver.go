package service

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/google/uuid"

	driververrors "fleetdesk/internal/drivers/errors"
	"fleetdesk/internal/drivers/repository"
	"fleetdesk/internal/drivers/validator"
	"fleetdesk/pkg/config"
	apperrors "fleetdesk/pkg/errors"
	"fleetdesk/pkg/model"
	"fleetdesk/pkg/sanitizer"
	"fleetdesk/pkg/storage"
)

type DriverService interface {
	Create(ctx context.Context, driver *model.Driver) error
	GetByID(ctx context.Context, id string) (*model.Driver, error)
	GetAll(ctx context.Context, limit int, offset int64) ([]*model.Driver, int64, error)
	Update(ctx context.Context, id string, driver *model.Driver) error
	Delete(ctx context.Context, id string) error
	AddPhoto(ctx context.Context, id string, photo io.Reader) (*model.Driver, error)
}

type driverService struct {
	repo      repository.DriverRepository
	validator *validator.DriverValidator
	uploader  storage.Uploader
	cfg       *config.Config
}

func NewDriverService(
	repo repository.DriverRepository,
	driverValidator *validator.DriverValidator,
	uploader storage.Uploader,
	cfg *config.Config,
) DriverService {
	return &driverService{
		repo:      repo,
		validator: driverValidator,
		uploader:  uploader,
		cfg:       cfg,
	}
}

func (s *driverService) Create(ctx context.Context, driver *model.Driver) error {
	s.sanitize(driver)
	s.applyDefaults(driver)

	if err := s.validate(driver); err != nil {
		return err
	}

	// Pre-insert check for a friendly conflict; the unique index still
	// backstops concurrent registrations.
	if _, err := s.repo.FindByEmail(ctx, driver.Email); err == nil {
		return apperrors.Conflict("A driver with this email already exists")
	} else if !errors.Is(err, driververrors.ErrNotFound) {
		s.cfg.Log.Error("Failed to check driver email", "error", err)
		return apperrors.Internal("Failed to create driver", err)
	}

	if err := s.repo.Create(ctx, driver); err != nil {
		if errors.Is(err, driververrors.ErrDuplicateEmail) {
			return apperrors.Conflict("A driver with this email already exists")
		}
		s.cfg.Log.Error("Failed to create driver", "error", err)
		return apperrors.Internal("Failed to create driver", err)
	}

	s.cfg.Log.Info("Driver created", "id", driver.ID, "email", driver.Email)
	return nil
}

func (s *driverService) GetByID(ctx context.Context, id string) (*model.Driver, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Driver ID cannot be empty")
	}

	driver, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapLookupError(err, id)
	}

	return driver, nil
}

func (s *driverService) GetAll(ctx context.Context, limit int, offset int64) ([]*model.Driver, int64, error) {
	var count int64
	var drivers []*model.Driver
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.Count(ctx)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count drivers", "error", errCount)
			errCount = apperrors.Internal("Failed to count drivers", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		drivers, errFind = s.repo.FindAll(ctx, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list drivers", "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve drivers", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return drivers, count, nil
}

func (s *driverService) Update(ctx context.Context, id string, driver *model.Driver) error {
	if id == "" {
		return apperrors.InvalidInput("Driver ID cannot be empty")
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return s.mapLookupError(err, id)
	}

	s.sanitize(driver)
	s.applyDefaults(driver)
	driver.ID = id
	driver.CreatedAt = existing.CreatedAt
	if driver.Photos == nil {
		driver.Photos = existing.Photos
	}

	if err := s.validate(driver); err != nil {
		return err
	}

	if err := s.repo.Update(ctx, id, driver); err != nil {
		if errors.Is(err, driververrors.ErrDuplicateEmail) {
			return apperrors.Conflict("A driver with this email already exists")
		}
		if errors.Is(err, driververrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Driver", id)
		}
		s.cfg.Log.Error("Failed to update driver", "id", id, "error", err)
		return apperrors.Internal("Failed to update driver", err)
	}

	s.cfg.Log.Info("Driver updated", "id", id)
	return nil
}

func (s *driverService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.InvalidInput("Driver ID cannot be empty")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return s.mapLookupError(err, id)
	}

	s.cfg.Log.Info("Driver deleted", "id", id)
	return nil
}

// AddPhoto uploads one profile photo and appends its URL to the driver
// record.
func (s *driverService) AddPhoto(ctx context.Context, id string, photo io.Reader) (*model.Driver, error) {
	driver, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	url, err := s.uploader.Upload(ctx, photo, "driver_"+id+"_"+uuid.NewString(), "drivers")
	if err != nil {
		s.cfg.Log.Error("Failed to upload driver photo", "id", id, "error", err)
		return nil, apperrors.Internal("Failed to upload photo", err)
	}
	if url == "" {
		return nil, apperrors.InvalidInput("Photo storage is not configured")
	}

	driver.Photos = append(driver.Photos, url)
	if err := s.repo.Update(ctx, id, driver); err != nil {
		return nil, apperrors.Internal("Failed to save photo URL", err)
	}

	s.cfg.Log.Info("Driver photo added", "id", id)
	return driver, nil
}

func (s *driverService) sanitize(d *model.Driver) {
	d.FirstName = sanitizer.NormalizeName(d.FirstName)
	d.LastName = sanitizer.NormalizeName(d.LastName)
	d.Email = sanitizer.NormalizeEmail(d.Email)
	d.Country = sanitizer.TrimAndNormalize(d.Country)
	d.BaseLocation = sanitizer.TrimAndNormalize(d.BaseLocation)
	d.ActiveDays = sanitizer.NormalizeDays(d.ActiveDays)
}

func (s *driverService) applyDefaults(d *model.Driver) {
	if d.Priority == "" {
		d.Priority = model.PriorityMedium
	}
}

func (s *driverService) validate(driver *model.Driver) error {
	if err := s.validator.Validate(driver); err != nil {
		s.cfg.Log.Warn("Driver validation failed", "error", err)
		return apperrors.Validation("Driver validation failed", map[string]any{"error": err.Error()})
	}
	return nil
}

func (s *driverService) mapLookupError(err error, id string) error {
	if errors.Is(err, driververrors.ErrNotFound) {
		return apperrors.NotFoundWithID("Driver", id)
	}
	if errors.Is(err, driververrors.ErrInvalidID) {
		return apperrors.InvalidInput("Invalid driver ID format")
	}
	return apperrors.Internal("Failed to retrieve driver", err)
}
