package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	schedulerrors "fleetdesk/internal/schedules/errors"
	"fleetdesk/internal/schedules/repository"
	"fleetdesk/internal/schedules/validator"
	"fleetdesk/pkg/config"
	apperrors "fleetdesk/pkg/errors"
	"fleetdesk/pkg/model"
	"fleetdesk/pkg/sanitizer"
)

// Mutation kinds reported to the notifier so it can route the right
// notification variant.
const (
	MutationCreated     = "created"
	MutationCancelled   = "cancelled"
	MutationRescheduled = "rescheduled"
	MutationUpdated     = "updated"
)

// ResourceDirectory resolves the availability metadata of the two
// resources a booking references. Availability is fetched fresh per
// request, never cached, since it can change between bookings.
type ResourceDirectory interface {
	DriverAvailability(ctx context.Context, id string) (model.Availability, bool, error)
	ProfessionalAvailability(ctx context.Context, id string) (model.Availability, bool, error)
}

// Notifier receives successful schedule mutations. Implementations must
// never fail the mutation: delivery problems are theirs to log and
// swallow.
type Notifier interface {
	ScheduleMutated(ctx context.Context, kind string, schedule *model.Schedule)
}

type ScheduleService interface {
	Create(ctx context.Context, input *model.ScheduleInput) (*model.Schedule, error)
	Update(ctx context.Context, id string, input *model.ScheduleInput) (*model.Schedule, error)
	GetByID(ctx context.Context, id string) (*model.Schedule, error)
	GetAll(ctx context.Context, limit int, offset int64) ([]*model.Schedule, int64, error)
	Delete(ctx context.Context, id string) (*model.Schedule, error)
	Export(ctx context.Context, fromDate, toDate string) ([]*model.Schedule, error)
}

type scheduleService struct {
	repo      repository.ScheduleRepository
	lockRepo  repository.SlotLockRepository
	directory ResourceDirectory
	validator *validator.BookingValidator
	notifier  Notifier
	cfg       *config.Config
}

func NewScheduleService(
	repo repository.ScheduleRepository,
	lockRepo repository.SlotLockRepository,
	directory ResourceDirectory,
	bookingValidator *validator.BookingValidator,
	notifier Notifier,
	cfg *config.Config,
) ScheduleService {
	return &scheduleService{
		repo:      repo,
		lockRepo:  lockRepo,
		directory: directory,
		validator: bookingValidator,
		notifier:  notifier,
		cfg:       cfg,
	}
}

func (s *scheduleService) Create(ctx context.Context, input *model.ScheduleInput) (*model.Schedule, error) {
	s.sanitize(input)

	candidate, appErr := s.validator.ValidateInput(input, false)
	if appErr != nil {
		s.cfg.Log.Warn("Schedule create rejected", "reason", appErr.Code)
		return nil, appErr
	}

	snapshot, err := s.resolveResources(ctx, candidate)
	if err != nil {
		return nil, err
	}

	release, err := s.acquireSlotLocks(ctx, candidate)
	if err != nil {
		return nil, err
	}
	defer release()

	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		sameDay, err := s.repo.FindByDate(sessCtx, candidate.Date)
		if err != nil {
			return apperrors.Internal("Failed to read existing schedules", err)
		}

		if appErr := s.validator.ValidateState(candidate, "", snapshot, sameDay); appErr != nil {
			return appErr
		}

		if err := s.repo.Create(sessCtx, candidate); err != nil {
			return apperrors.Internal("Failed to create schedule", err)
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to create schedule", "error", err)
		return nil, err
	}

	s.cfg.Log.Info("Schedule created",
		"id", candidate.ID,
		"driver", candidate.Driver,
		"professional", candidate.Professional,
		"date", candidate.Date.Format("2006-01-02"),
	)

	s.notifier.ScheduleMutated(ctx, MutationCreated, candidate)
	return candidate, nil
}

func (s *scheduleService) Update(ctx context.Context, id string, input *model.ScheduleInput) (*model.Schedule, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Schedule ID cannot be empty")
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapLookupError(err, id)
	}

	s.sanitize(input)

	allowPast := s.cfg.AllowPastStatusUpdate && slotUnchanged(existing, input)

	candidate, appErr := s.validator.ValidateInput(input, allowPast)
	if appErr != nil {
		s.cfg.Log.Warn("Schedule update rejected", "id", id, "reason", appErr.Code)
		return nil, appErr
	}
	candidate.ID = id
	candidate.CreatedAt = existing.CreatedAt

	snapshot, err := s.resolveResources(ctx, candidate)
	if err != nil {
		return nil, err
	}

	release, err := s.acquireSlotLocks(ctx, candidate)
	if err != nil {
		return nil, err
	}
	defer release()

	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		sameDay, err := s.repo.FindByDate(sessCtx, candidate.Date)
		if err != nil {
			return apperrors.Internal("Failed to read existing schedules", err)
		}

		if appErr := s.validator.ValidateState(candidate, id, snapshot, sameDay); appErr != nil {
			return appErr
		}

		if err := s.repo.Replace(sessCtx, id, candidate); err != nil {
			if errors.Is(err, schedulerrors.ErrNotFound) {
				return apperrors.NotFoundWithID("Schedule", id)
			}
			return apperrors.Internal("Failed to update schedule", err)
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to update schedule", "id", id, "error", err)
		return nil, err
	}

	kind := mutationKind(existing, candidate)
	s.cfg.Log.Info("Schedule updated", "id", id, "mutation", kind)

	s.notifier.ScheduleMutated(ctx, kind, candidate)
	return candidate, nil
}

func (s *scheduleService) GetByID(ctx context.Context, id string) (*model.Schedule, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Schedule ID cannot be empty")
	}

	schedule, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapLookupError(err, id)
	}

	return schedule, nil
}

func (s *scheduleService) GetAll(ctx context.Context, limit int, offset int64) ([]*model.Schedule, int64, error) {
	var count int64
	var schedules []*model.Schedule
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.Count(ctx)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count schedules", "error", errCount)
			errCount = apperrors.Internal("Failed to count schedules", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		schedules, errFind = s.repo.FindAll(ctx, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list schedules", "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve schedules", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return schedules, count, nil
}

func (s *scheduleService) Delete(ctx context.Context, id string) (*model.Schedule, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Schedule ID cannot be empty")
	}

	deleted, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapLookupError(err, id)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, schedulerrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Schedule", id)
		}
		return nil, apperrors.Internal("Failed to delete schedule", err)
	}

	s.cfg.Log.Info("Schedule deleted", "id", id)
	return deleted, nil
}

// Export returns the schedules in the inclusive date range ordered by
// professional then date, the layout the CSV export is keyed on.
func (s *scheduleService) Export(ctx context.Context, fromDate, toDate string) ([]*model.Schedule, error) {
	from, err := time.Parse("2006-01-02", fromDate)
	if err != nil {
		return nil, apperrors.InvalidInput(fmt.Sprintf("fromDate %q is not a valid date", fromDate))
	}
	to, err := time.Parse("2006-01-02", toDate)
	if err != nil {
		return nil, apperrors.InvalidInput(fmt.Sprintf("toDate %q is not a valid date", toDate))
	}
	if to.Before(from) {
		return nil, apperrors.InvalidInput("toDate must not be before fromDate")
	}

	schedules, err := s.repo.FindByDateRange(ctx, from.UTC(), to.UTC())
	if err != nil {
		s.cfg.Log.Error("Failed to export schedules", "error", err)
		return nil, apperrors.Internal("Failed to export schedules", err)
	}

	return schedules, nil
}

// --- Helpers ---

func (s *scheduleService) sanitize(input *model.ScheduleInput) {
	input.ClientName = sanitizer.NormalizeName(input.ClientName)
	input.Destination = sanitizer.TrimAndNormalize(input.Destination)
	input.Description = sanitizer.TrimAndNormalize(input.Description)
	input.Service = sanitizer.TrimAndNormalize(input.Service)
}

func (s *scheduleService) resolveResources(ctx context.Context, candidate *model.Schedule) (validator.ResourceSnapshot, error) {
	var snapshot validator.ResourceSnapshot

	driver, found, err := s.directory.DriverAvailability(ctx, candidate.Driver)
	if err != nil {
		return snapshot, apperrors.Internal("Failed to resolve driver", err)
	}
	if !found {
		return snapshot, validator.ResourceNotFound("driver", candidate.Driver)
	}

	professional, found, err := s.directory.ProfessionalAvailability(ctx, candidate.Professional)
	if err != nil {
		return snapshot, apperrors.Internal("Failed to resolve professional", err)
	}
	if !found {
		return snapshot, validator.ResourceNotFound("professional", candidate.Professional)
	}

	snapshot.Driver = driver
	snapshot.Professional = professional
	return snapshot, nil
}

// acquireSlotLocks serializes writes per (driver, date) and
// (professional, date). Both locks are taken in a fixed order; the
// returned release function drops whichever were acquired.
func (s *scheduleService) acquireSlotLocks(ctx context.Context, candidate *model.Schedule) (func(), error) {
	date := candidate.Date.Format("2006-01-02")
	lockIDs := []string{
		fmt.Sprintf("slot_driver_%s_%s", candidate.Driver, date),
		fmt.Sprintf("slot_professional_%s_%s", candidate.Professional, date),
	}

	var held []string
	release := func() {
		for _, id := range held {
			if err := s.lockRepo.Delete(ctx, id); err != nil {
				s.cfg.Log.Warn("Failed to release slot lock", "lock_id", id, "error", err)
			}
		}
	}

	for _, lockID := range lockIDs {
		lock := &model.SlotLock{
			ID:        lockID,
			ExpiresAt: time.Now().Add(s.cfg.SlotLockTTL),
		}
		if _, err := s.lockRepo.Create(ctx, lock); err != nil {
			release()
			if mongo.IsDuplicateKeyError(err) {
				return nil, apperrors.Conflict("This slot is currently being booked by another request. Please try again.")
			}
			return nil, apperrors.Internal("Failed to acquire slot lock", err)
		}
		held = append(held, lockID)
	}

	return release, nil
}

func (s *scheduleService) mapLookupError(err error, id string) error {
	if errors.Is(err, schedulerrors.ErrNotFound) {
		return apperrors.NotFoundWithID("Schedule", id)
	}
	if errors.Is(err, schedulerrors.ErrInvalidID) {
		return apperrors.InvalidInput("Invalid schedule ID format")
	}
	return apperrors.Internal("Failed to retrieve schedule", err)
}

// slotUnchanged reports whether the update keeps every scheduling
// coordinate of the stored record, touching only status or descriptive
// metadata. Such updates may bypass the no-past-date rule.
func slotUnchanged(existing *model.Schedule, input *model.ScheduleInput) bool {
	return existing.Professional == input.Professional &&
		existing.Driver == input.Driver &&
		existing.Date.Format("2006-01-02") == input.Date &&
		existing.StartTime == input.StartTime &&
		existing.EndTime == input.EndTime
}

func mutationKind(existing, updated *model.Schedule) string {
	if existing.Status != model.StatusCancelled && updated.Status == model.StatusCancelled {
		return MutationCancelled
	}
	if !existing.Date.Equal(updated.Date) ||
		existing.StartTime != updated.StartTime ||
		existing.EndTime != updated.EndTime {
		return MutationRescheduled
	}
	return MutationUpdated
}
