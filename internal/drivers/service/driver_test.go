package service

import (
	"context"
	"io"
	"strings"
	"testing"

	driververrors "fleetdesk/internal/drivers/errors"
	"fleetdesk/internal/drivers/validator"
	"fleetdesk/pkg/config"
	apperrors "fleetdesk/pkg/errors"
	"fleetdesk/pkg/logger"
	"fleetdesk/pkg/model"
)

type mockDriverRepo struct {
	CreateFunc      func(ctx context.Context, driver *model.Driver) error
	FindByIDFunc    func(ctx context.Context, id string) (*model.Driver, error)
	FindByEmailFunc func(ctx context.Context, email string) (*model.Driver, error)
	FindAllFunc     func(ctx context.Context, limit int, offset int64) ([]*model.Driver, error)
	UpdateFunc      func(ctx context.Context, id string, driver *model.Driver) error
	DeleteFunc      func(ctx context.Context, id string) error
	CountFunc       func(ctx context.Context) (int64, error)
}

func (m *mockDriverRepo) Create(ctx context.Context, driver *model.Driver) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, driver)
	}
	return nil
}

func (m *mockDriverRepo) FindByID(ctx context.Context, id string) (*model.Driver, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return nil, driververrors.ErrNotFound
}

func (m *mockDriverRepo) FindByEmail(ctx context.Context, email string) (*model.Driver, error) {
	if m.FindByEmailFunc != nil {
		return m.FindByEmailFunc(ctx, email)
	}
	return nil, driververrors.ErrNotFound
}

func (m *mockDriverRepo) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Driver, error) {
	if m.FindAllFunc != nil {
		return m.FindAllFunc(ctx, limit, offset)
	}
	return nil, nil
}

func (m *mockDriverRepo) Update(ctx context.Context, id string, driver *model.Driver) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, id, driver)
	}
	return nil
}

func (m *mockDriverRepo) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

func (m *mockDriverRepo) Count(ctx context.Context) (int64, error) {
	if m.CountFunc != nil {
		return m.CountFunc(ctx)
	}
	return 0, nil
}

type mockUploader struct {
	UploadFunc func(ctx context.Context, file io.Reader, publicID, folder string) (string, error)
	DeleteFunc func(ctx context.Context, publicID string) error
}

func (m *mockUploader) Upload(ctx context.Context, file io.Reader, publicID, folder string) (string, error) {
	if m.UploadFunc != nil {
		return m.UploadFunc(ctx, file, publicID, folder)
	}
	return "https://cdn.example.com/" + folder + "/" + publicID + ".jpg", nil
}

func (m *mockUploader) Delete(ctx context.Context, publicID string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, publicID)
	}
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		Log: logger.New(logger.Config{Level: "error", Format: logger.JSON, Service: "test"}),
	}
}

func newTestDriverService(repo *mockDriverRepo, uploader *mockUploader) DriverService {
	cfg := testConfig()
	return NewDriverService(repo, validator.NewDriverValidator(cfg.Log), uploader, cfg)
}

func validDriver() *model.Driver {
	return &model.Driver{
		FirstName:       "Maya",
		LastName:        "Okafor",
		DateOfBirth:     "1990-04-12",
		Email:           "maya.okafor@example.com",
		PhoneNo:         "+31612345678",
		Country:         "Netherlands",
		BaseLocation:    "Rotterdam depot",
		VehicleCapacity: 4,
		StartTime:       "08:00",
		EndTime:         "17:00",
		BreakStartTime:  "12:00",
		BreakEndTime:    "12:30",
		ActiveDays:      []string{"Monday", "Tuesday"},
	}
}

func TestCreateDriver_SanitizesAndDefaults(t *testing.T) {
	var stored *model.Driver
	repo := &mockDriverRepo{
		CreateFunc: func(ctx context.Context, driver *model.Driver) error {
			stored = driver
			return nil
		},
	}
	svc := newTestDriverService(repo, &mockUploader{})

	driver := validDriver()
	driver.FirstName = "  Maya "
	driver.Email = "Maya.Okafor@Example.COM"
	driver.ActiveDays = []string{" Monday ", "", "Tuesday"}
	driver.Priority = ""

	if err := svc.Create(context.Background(), driver); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if stored.FirstName != "Maya" {
		t.Errorf("expected trimmed first name, got %q", stored.FirstName)
	}
	if stored.Email != "maya.okafor@example.com" {
		t.Errorf("expected normalized email, got %q", stored.Email)
	}
	if len(stored.ActiveDays) != 2 {
		t.Errorf("expected empty day entries dropped, got %v", stored.ActiveDays)
	}
	if stored.Priority != model.PriorityMedium {
		t.Errorf("expected default priority Medium, got %q", stored.Priority)
	}
}

func TestCreateDriver_DuplicateEmail(t *testing.T) {
	repo := &mockDriverRepo{
		CreateFunc: func(ctx context.Context, driver *model.Driver) error {
			return driververrors.ErrDuplicateEmail
		},
	}
	svc := newTestDriverService(repo, &mockUploader{})

	err := svc.Create(context.Background(), validDriver())
	if err == nil {
		t.Fatal("expected conflict")
	}
	if appErr := apperrors.AsAppError(err); appErr.StatusCode() != 409 {
		t.Errorf("expected HTTP 409, got %d", appErr.StatusCode())
	}
}

func TestCreateDriver_EmailAlreadyRegistered(t *testing.T) {
	existing := validDriver()
	existing.ID = "64f000000000000000000002"

	repo := &mockDriverRepo{
		FindByEmailFunc: func(ctx context.Context, email string) (*model.Driver, error) {
			if email == existing.Email {
				return existing, nil
			}
			return nil, driververrors.ErrNotFound
		},
		CreateFunc: func(ctx context.Context, driver *model.Driver) error {
			t.Fatal("insert must not run when the email is already registered")
			return nil
		},
	}
	svc := newTestDriverService(repo, &mockUploader{})

	err := svc.Create(context.Background(), validDriver())
	if err == nil {
		t.Fatal("expected conflict for registered email")
	}
	if appErr := apperrors.AsAppError(err); appErr.StatusCode() != 409 {
		t.Errorf("expected HTTP 409, got %d", appErr.StatusCode())
	}
}

func TestCreateDriver_ValidationFailure(t *testing.T) {
	repo := &mockDriverRepo{
		CreateFunc: func(ctx context.Context, driver *model.Driver) error {
			t.Fatal("repository must not be called on invalid input")
			return nil
		},
	}
	svc := newTestDriverService(repo, &mockUploader{})

	driver := validDriver()
	driver.StartTime = "8:00"

	err := svc.Create(context.Background(), driver)
	if err == nil {
		t.Fatal("expected validation error")
	}
	if appErr := apperrors.AsAppError(err); appErr.StatusCode() != 400 {
		t.Errorf("expected HTTP 400, got %d", appErr.StatusCode())
	}
}

func TestUpdateDriver_PreservesPhotos(t *testing.T) {
	stored := validDriver()
	stored.ID = "64f000000000000000000002"
	stored.Photos = []string{"https://cdn.example.com/drivers/old.jpg"}

	var updated *model.Driver
	repo := &mockDriverRepo{
		FindByIDFunc: func(ctx context.Context, id string) (*model.Driver, error) {
			copy := *stored
			return &copy, nil
		},
		UpdateFunc: func(ctx context.Context, id string, driver *model.Driver) error {
			updated = driver
			return nil
		},
	}
	svc := newTestDriverService(repo, &mockUploader{})

	input := validDriver()
	input.BaseLocation = "Utrecht depot"

	if err := svc.Update(context.Background(), stored.ID, input); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(updated.Photos) != 1 {
		t.Errorf("expected existing photos preserved, got %v", updated.Photos)
	}
	if updated.ID != stored.ID {
		t.Errorf("expected ID preserved, got %q", updated.ID)
	}
}

func TestAddPhoto(t *testing.T) {
	stored := validDriver()
	stored.ID = "64f000000000000000000002"

	var savedPublicID, savedFolder string
	uploader := &mockUploader{
		UploadFunc: func(ctx context.Context, file io.Reader, publicID, folder string) (string, error) {
			savedPublicID, savedFolder = publicID, folder
			return "https://cdn.example.com/drivers/photo.jpg", nil
		},
	}
	repo := &mockDriverRepo{
		FindByIDFunc: func(ctx context.Context, id string) (*model.Driver, error) {
			copy := *stored
			return &copy, nil
		},
	}
	svc := newTestDriverService(repo, uploader)

	driver, err := svc.AddPhoto(context.Background(), stored.ID, strings.NewReader("fake image bytes"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(driver.Photos) != 1 || driver.Photos[0] != "https://cdn.example.com/drivers/photo.jpg" {
		t.Errorf("expected uploaded URL appended, got %v", driver.Photos)
	}
	if !strings.HasPrefix(savedPublicID, "driver_"+stored.ID+"_") {
		t.Errorf("unexpected public id %q", savedPublicID)
	}
	if savedFolder != "drivers" {
		t.Errorf("expected folder drivers, got %q", savedFolder)
	}
}

func TestAddPhoto_StorageNotConfigured(t *testing.T) {
	stored := validDriver()
	stored.ID = "64f000000000000000000002"

	uploader := &mockUploader{
		UploadFunc: func(ctx context.Context, file io.Reader, publicID, folder string) (string, error) {
			// The no-op uploader reports success with an empty URL.
			return "", nil
		},
	}
	repo := &mockDriverRepo{
		FindByIDFunc: func(ctx context.Context, id string) (*model.Driver, error) {
			copy := *stored
			return &copy, nil
		},
	}
	svc := newTestDriverService(repo, uploader)

	_, err := svc.AddPhoto(context.Background(), stored.ID, strings.NewReader("fake image bytes"))
	if err == nil {
		t.Fatal("expected error when storage is not configured")
	}
	if appErr := apperrors.AsAppError(err); appErr.StatusCode() != 400 {
		t.Errorf("expected HTTP 400, got %d", appErr.StatusCode())
	}
}
