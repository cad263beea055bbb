package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	schedulerrors "fleetdesk/internal/schedules/errors"
	"fleetdesk/internal/schedules/validator"
	"fleetdesk/pkg/config"
	mongotx "fleetdesk/pkg/db/mongo"
	apperrors "fleetdesk/pkg/errors"
	"fleetdesk/pkg/logger"
	"fleetdesk/pkg/model"
)

type mockScheduleRepo struct {
	CreateFunc             func(ctx context.Context, schedule *model.Schedule) error
	FindByIDFunc           func(ctx context.Context, id string) (*model.Schedule, error)
	FindAllFunc            func(ctx context.Context, limit int, offset int64) ([]*model.Schedule, error)
	FindByDateFunc         func(ctx context.Context, date time.Time) ([]*model.Schedule, error)
	FindByDateRangeFunc    func(ctx context.Context, from, to time.Time) ([]*model.Schedule, error)
	ReplaceFunc            func(ctx context.Context, id string, schedule *model.Schedule) error
	DeleteFunc             func(ctx context.Context, id string) error
	CountFunc              func(ctx context.Context) (int64, error)
	ExecuteTransactionFunc func(ctx context.Context, fn mongotx.TransactionFunc) error
}

func (m *mockScheduleRepo) Create(ctx context.Context, schedule *model.Schedule) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, schedule)
	}
	return nil
}

func (m *mockScheduleRepo) FindByID(ctx context.Context, id string) (*model.Schedule, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return nil, schedulerrors.ErrNotFound
}

func (m *mockScheduleRepo) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Schedule, error) {
	if m.FindAllFunc != nil {
		return m.FindAllFunc(ctx, limit, offset)
	}
	return nil, nil
}

func (m *mockScheduleRepo) FindByDate(ctx context.Context, date time.Time) ([]*model.Schedule, error) {
	if m.FindByDateFunc != nil {
		return m.FindByDateFunc(ctx, date)
	}
	return nil, nil
}

func (m *mockScheduleRepo) FindByDateRange(ctx context.Context, from, to time.Time) ([]*model.Schedule, error) {
	if m.FindByDateRangeFunc != nil {
		return m.FindByDateRangeFunc(ctx, from, to)
	}
	return nil, nil
}

func (m *mockScheduleRepo) Replace(ctx context.Context, id string, schedule *model.Schedule) error {
	if m.ReplaceFunc != nil {
		return m.ReplaceFunc(ctx, id, schedule)
	}
	return nil
}

func (m *mockScheduleRepo) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

func (m *mockScheduleRepo) Count(ctx context.Context) (int64, error) {
	if m.CountFunc != nil {
		return m.CountFunc(ctx)
	}
	return 0, nil
}

func (m *mockScheduleRepo) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	if m.ExecuteTransactionFunc != nil {
		return m.ExecuteTransactionFunc(ctx, fn)
	}
	return fn(nil)
}

type mockLockRepo struct {
	CreateFunc func(ctx context.Context, lock *model.SlotLock) (*model.SlotLock, error)
	DeleteFunc func(ctx context.Context, lockID string) error

	created []string
	deleted []string
}

func (m *mockLockRepo) Create(ctx context.Context, lock *model.SlotLock) (*model.SlotLock, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, lock)
	}
	m.created = append(m.created, lock.ID)
	return lock, nil
}

func (m *mockLockRepo) Delete(ctx context.Context, lockID string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, lockID)
	}
	m.deleted = append(m.deleted, lockID)
	return nil
}

type mockDirectory struct {
	DriverAvailabilityFunc       func(ctx context.Context, id string) (model.Availability, bool, error)
	ProfessionalAvailabilityFunc func(ctx context.Context, id string) (model.Availability, bool, error)
}

func (m *mockDirectory) DriverAvailability(ctx context.Context, id string) (model.Availability, bool, error) {
	if m.DriverAvailabilityFunc != nil {
		return m.DriverAvailabilityFunc(ctx, id)
	}
	return fullWeekAvailability(), true, nil
}

func (m *mockDirectory) ProfessionalAvailability(ctx context.Context, id string) (model.Availability, bool, error) {
	if m.ProfessionalAvailabilityFunc != nil {
		return m.ProfessionalAvailabilityFunc(ctx, id)
	}
	return fullWeekAvailability(), true, nil
}

type mockNotifier struct {
	kinds     []string
	schedules []*model.Schedule
}

func (m *mockNotifier) ScheduleMutated(_ context.Context, kind string, schedule *model.Schedule) {
	m.kinds = append(m.kinds, kind)
	m.schedules = append(m.schedules, schedule)
}

func fullWeekAvailability() model.Availability {
	return model.Availability{
		StartTime:  "08:00",
		EndTime:    "18:00",
		ActiveDays: append([]string{}, model.Weekdays...),
	}
}

func testConfig() *config.Config {
	return &config.Config{
		Log: logger.New(logger.Config{
			Level:   "error",
			Format:  logger.JSON,
			Service: "test",
		}),
		AllowPastStatusUpdate: true,
		SlotLockTTL:           10 * time.Second,
	}
}

func newTestService(repo *mockScheduleRepo, locks *mockLockRepo, dir *mockDirectory, notifier *mockNotifier, cfg *config.Config) *scheduleService {
	if cfg == nil {
		cfg = testConfig()
	}
	return &scheduleService{
		repo:      repo,
		lockRepo:  locks,
		directory: dir,
		validator: validator.NewBookingValidator(cfg.Log),
		notifier:  notifier,
		cfg:       cfg,
	}
}

func futureInput() *model.ScheduleInput {
	return &model.ScheduleInput{
		Professional: "64f000000000000000000001",
		Driver:       "64f000000000000000000002",
		ClientName:   "Acme Logistics",
		Date:         time.Now().UTC().AddDate(0, 0, 7).Format("2006-01-02"),
		StartTime:    "10:00",
		EndTime:      "11:00",
	}
}

func TestCreate_Success(t *testing.T) {
	var created *model.Schedule
	repo := &mockScheduleRepo{
		CreateFunc: func(ctx context.Context, schedule *model.Schedule) error {
			created = schedule
			return nil
		},
	}
	locks := &mockLockRepo{}
	notifier := &mockNotifier{}
	svc := newTestService(repo, locks, &mockDirectory{}, notifier, nil)

	schedule, err := svc.Create(context.Background(), futureInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created == nil {
		t.Fatal("expected repository create to be called")
	}
	if schedule.Status != model.StatusPending {
		t.Errorf("expected default status Pending, got %s", schedule.Status)
	}

	if len(locks.created) != 2 {
		t.Fatalf("expected both slot locks acquired, got %v", locks.created)
	}
	if len(locks.deleted) != 2 {
		t.Errorf("expected both slot locks released, got %v", locks.deleted)
	}

	if len(notifier.kinds) != 1 || notifier.kinds[0] != MutationCreated {
		t.Errorf("expected a single created notification, got %v", notifier.kinds)
	}
}

func TestCreate_ResourceNotFound(t *testing.T) {
	dir := &mockDirectory{
		DriverAvailabilityFunc: func(ctx context.Context, id string) (model.Availability, bool, error) {
			return model.Availability{}, false, nil
		},
	}
	locks := &mockLockRepo{}
	notifier := &mockNotifier{}
	svc := newTestService(&mockScheduleRepo{}, locks, dir, notifier, nil)

	_, err := svc.Create(context.Background(), futureInput())
	if err == nil {
		t.Fatal("expected error for unknown driver")
	}

	appErr := apperrors.AsAppError(err)
	if appErr.Code != validator.ReasonResourceNotFound {
		t.Errorf("expected RESOURCE_NOT_FOUND, got %s", appErr.Code)
	}
	if appErr.StatusCode() != 400 {
		t.Errorf("expected HTTP 400, got %d", appErr.StatusCode())
	}
	if len(locks.created) != 0 {
		t.Errorf("no locks should be taken before resources resolve, got %v", locks.created)
	}
	if len(notifier.kinds) != 0 {
		t.Errorf("no notification on rejection, got %v", notifier.kinds)
	}
}

func TestCreate_SlotLockContention(t *testing.T) {
	dupErr := mongo.WriteException{
		WriteErrors: mongo.WriteErrors{{Code: 11000}},
	}

	locks := &mockLockRepo{
		CreateFunc: func(ctx context.Context, lock *model.SlotLock) (*model.SlotLock, error) {
			return nil, dupErr
		},
	}
	svc := newTestService(&mockScheduleRepo{}, locks, &mockDirectory{}, &mockNotifier{}, nil)

	_, err := svc.Create(context.Background(), futureInput())
	if err == nil {
		t.Fatal("expected conflict when the slot lock is held")
	}

	appErr := apperrors.AsAppError(err)
	if appErr.Code != apperrors.CodeConflict {
		t.Errorf("expected CONFLICT, got %s", appErr.Code)
	}
	if appErr.StatusCode() != 409 {
		t.Errorf("expected HTTP 409, got %d", appErr.StatusCode())
	}
}

func TestCreate_OverlapRejectedInTransaction(t *testing.T) {
	input := futureInput()
	date, _ := time.Parse("2006-01-02", input.Date)

	existing := &model.Schedule{
		ID:           "existing-1",
		Professional: "64f000000000000000000099",
		Driver:       input.Driver,
		ClientName:   "Other Client",
		Day:          date.Weekday().String(),
		Date:         date,
		StartTime:    "10:30",
		EndTime:      "11:30",
		Status:       model.StatusPending,
	}

	createCalled := false
	repo := &mockScheduleRepo{
		FindByDateFunc: func(ctx context.Context, d time.Time) ([]*model.Schedule, error) {
			return []*model.Schedule{existing}, nil
		},
		CreateFunc: func(ctx context.Context, schedule *model.Schedule) error {
			createCalled = true
			return nil
		},
	}
	locks := &mockLockRepo{}
	notifier := &mockNotifier{}
	svc := newTestService(repo, locks, &mockDirectory{}, notifier, nil)

	_, err := svc.Create(context.Background(), input)
	if err == nil {
		t.Fatal("expected overlap rejection")
	}

	appErr := apperrors.AsAppError(err)
	if appErr.Code != validator.ReasonDriverDoubleBooked {
		t.Errorf("expected DRIVER_DOUBLE_BOOKED, got %s", appErr.Code)
	}
	if createCalled {
		t.Error("create must not run when validation fails")
	}
	if len(locks.deleted) != len(locks.created) {
		t.Errorf("locks must be released on rejection: created %v, deleted %v", locks.created, locks.deleted)
	}
	if len(notifier.kinds) != 0 {
		t.Errorf("no notification on rejection, got %v", notifier.kinds)
	}
}

func TestUpdate_NotFound(t *testing.T) {
	repo := &mockScheduleRepo{
		FindByIDFunc: func(ctx context.Context, id string) (*model.Schedule, error) {
			return nil, schedulerrors.ErrNotFound
		},
	}
	svc := newTestService(repo, &mockLockRepo{}, &mockDirectory{}, &mockNotifier{}, nil)

	_, err := svc.Update(context.Background(), "missing-id", futureInput())
	if err == nil {
		t.Fatal("expected not found error")
	}

	appErr := apperrors.AsAppError(err)
	if appErr.Code != apperrors.CodeNotFound {
		t.Errorf("expected NOT_FOUND, got %s", appErr.Code)
	}
	if appErr.StatusCode() != 404 {
		t.Errorf("expected HTTP 404, got %d", appErr.StatusCode())
	}
}

func TestUpdate_MutationKinds(t *testing.T) {
	base := futureInput()
	date, _ := time.Parse("2006-01-02", base.Date)

	stored := &model.Schedule{
		ID:           "sched-1",
		Professional: base.Professional,
		Driver:       base.Driver,
		ClientName:   base.ClientName,
		Day:          date.Weekday().String(),
		Date:         date,
		StartTime:    "10:00",
		EndTime:      "11:00",
		Status:       model.StatusPending,
		CreatedAt:    time.Now().Add(-time.Hour),
	}

	tests := []struct {
		name     string
		mutate   func(*model.ScheduleInput)
		wantKind string
	}{
		{
			name:     "status change to cancelled",
			mutate:   func(in *model.ScheduleInput) { in.Status = model.StatusCancelled },
			wantKind: MutationCancelled,
		},
		{
			name: "time window change",
			mutate: func(in *model.ScheduleInput) {
				in.StartTime = "14:00"
				in.EndTime = "15:00"
			},
			wantKind: MutationRescheduled,
		},
		{
			name:     "metadata only change",
			mutate:   func(in *model.ScheduleInput) { in.Description = "pick up at the depot" },
			wantKind: MutationUpdated,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mockScheduleRepo{
				FindByIDFunc: func(ctx context.Context, id string) (*model.Schedule, error) {
					copy := *stored
					return &copy, nil
				},
			}
			notifier := &mockNotifier{}
			svc := newTestService(repo, &mockLockRepo{}, &mockDirectory{}, notifier, nil)

			input := futureInput()
			tt.mutate(input)

			updated, err := svc.Update(context.Background(), stored.ID, input)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if updated.ID != stored.ID {
				t.Errorf("expected ID preserved, got %s", updated.ID)
			}
			if !updated.CreatedAt.Equal(stored.CreatedAt) {
				t.Error("expected CreatedAt preserved across replace")
			}
			if len(notifier.kinds) != 1 || notifier.kinds[0] != tt.wantKind {
				t.Errorf("expected notification %s, got %v", tt.wantKind, notifier.kinds)
			}
		})
	}
}

func TestUpdate_PastDateStatusOnly(t *testing.T) {
	pastDate, _ := time.Parse("2006-01-02", "2020-01-15")

	stored := &model.Schedule{
		ID:           "sched-1",
		Professional: "64f000000000000000000001",
		Driver:       "64f000000000000000000002",
		ClientName:   "Acme Logistics",
		Day:          pastDate.Weekday().String(),
		Date:         pastDate,
		StartTime:    "10:00",
		EndTime:      "11:00",
		Status:       model.StatusPending,
	}

	input := &model.ScheduleInput{
		Professional: stored.Professional,
		Driver:       stored.Driver,
		ClientName:   stored.ClientName,
		Date:         "2020-01-15",
		StartTime:    stored.StartTime,
		EndTime:      stored.EndTime,
		Status:       model.StatusCompleted,
	}

	newRepo := func() *mockScheduleRepo {
		return &mockScheduleRepo{
			FindByIDFunc: func(ctx context.Context, id string) (*model.Schedule, error) {
				copy := *stored
				return &copy, nil
			},
		}
	}

	// With the policy enabled, a slot-unchanged status update of a
	// historical booking goes through.
	svc := newTestService(newRepo(), &mockLockRepo{}, &mockDirectory{}, &mockNotifier{}, nil)
	updated, err := svc.Update(context.Background(), stored.ID, input)
	if err != nil {
		t.Fatalf("expected historical status update to succeed, got %v", err)
	}
	if updated.Status != model.StatusCompleted {
		t.Errorf("expected status Completed, got %s", updated.Status)
	}

	// With the policy disabled, the past-date rule applies.
	cfg := testConfig()
	cfg.AllowPastStatusUpdate = false
	svc = newTestService(newRepo(), &mockLockRepo{}, &mockDirectory{}, &mockNotifier{}, cfg)
	_, err = svc.Update(context.Background(), stored.ID, input)
	if err == nil {
		t.Fatal("expected rejection with the policy disabled")
	}
	if appErr := apperrors.AsAppError(err); appErr.Code != validator.ReasonDateInPast {
		t.Errorf("expected DATE_IN_PAST, got %s", appErr.Code)
	}

	// Moving a historical booking to a new slot is never exempt.
	moved := *input
	moved.EndTime = "12:00"
	svc = newTestService(newRepo(), &mockLockRepo{}, &mockDirectory{}, &mockNotifier{}, nil)
	_, err = svc.Update(context.Background(), stored.ID, &moved)
	if err == nil {
		t.Fatal("expected rejection when rescheduling into the past")
	}
	if appErr := apperrors.AsAppError(err); appErr.Code != validator.ReasonDateInPast {
		t.Errorf("expected DATE_IN_PAST, got %s", appErr.Code)
	}
}

func TestGetAll(t *testing.T) {
	repo := &mockScheduleRepo{
		CountFunc: func(ctx context.Context) (int64, error) {
			return 42, nil
		},
		FindAllFunc: func(ctx context.Context, limit int, offset int64) ([]*model.Schedule, error) {
			return []*model.Schedule{{ID: "a"}, {ID: "b"}}, nil
		},
	}
	svc := newTestService(repo, &mockLockRepo{}, &mockDirectory{}, &mockNotifier{}, nil)

	schedules, total, err := svc.GetAll(context.Background(), 10, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 42 {
		t.Errorf("expected total 42, got %d", total)
	}
	if len(schedules) != 2 {
		t.Errorf("expected 2 schedules, got %d", len(schedules))
	}
}

func TestGetAll_FindError(t *testing.T) {
	repo := &mockScheduleRepo{
		FindAllFunc: func(ctx context.Context, limit int, offset int64) ([]*model.Schedule, error) {
			return nil, errors.New("cursor failure")
		},
	}
	svc := newTestService(repo, &mockLockRepo{}, &mockDirectory{}, &mockNotifier{}, nil)

	_, _, err := svc.GetAll(context.Background(), 10, 0)
	if err == nil {
		t.Fatal("expected error")
	}
	if appErr := apperrors.AsAppError(err); appErr.StatusCode() != 500 {
		t.Errorf("expected HTTP 500, got %d", appErr.StatusCode())
	}
}

func TestDelete_ReturnsDeletedRecord(t *testing.T) {
	stored := &model.Schedule{ID: "sched-1", ClientName: "Acme Logistics"}
	repo := &mockScheduleRepo{
		FindByIDFunc: func(ctx context.Context, id string) (*model.Schedule, error) {
			return stored, nil
		},
	}
	svc := newTestService(repo, &mockLockRepo{}, &mockDirectory{}, &mockNotifier{}, nil)

	deleted, err := svc.Delete(context.Background(), "sched-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if deleted.ID != stored.ID {
		t.Errorf("expected deleted record returned, got %+v", deleted)
	}
}

func TestExport_DateValidation(t *testing.T) {
	svc := newTestService(&mockScheduleRepo{}, &mockLockRepo{}, &mockDirectory{}, &mockNotifier{}, nil)

	tests := []struct {
		name     string
		from, to string
	}{
		{"bad from date", "yesterday", "2030-01-31"},
		{"bad to date", "2030-01-01", "soon"},
		{"inverted range", "2030-01-31", "2030-01-01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Export(context.Background(), tt.from, tt.to)
			if err == nil {
				t.Fatal("expected error")
			}
			if appErr := apperrors.AsAppError(err); appErr.StatusCode() != 400 {
				t.Errorf("expected HTTP 400, got %d", appErr.StatusCode())
			}
		})
	}
}

func TestExport_PassesRange(t *testing.T) {
	var gotFrom, gotTo time.Time
	repo := &mockScheduleRepo{
		FindByDateRangeFunc: func(ctx context.Context, from, to time.Time) ([]*model.Schedule, error) {
			gotFrom, gotTo = from, to
			return []*model.Schedule{{ID: "a"}}, nil
		},
	}
	svc := newTestService(repo, &mockLockRepo{}, &mockDirectory{}, &mockNotifier{}, nil)

	schedules, err := svc.Export(context.Background(), "2030-01-01", "2030-01-31")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(schedules) != 1 {
		t.Errorf("expected 1 schedule, got %d", len(schedules))
	}
	if gotFrom.Day() != 1 || gotTo.Day() != 31 {
		t.Errorf("unexpected range passed to repository: %v - %v", gotFrom, gotTo)
	}
}
