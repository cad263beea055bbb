package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	driververrors "fleetdesk/internal/drivers/errors"
	"fleetdesk/pkg/config"
	"fleetdesk/pkg/model"
)

const (
	CollectionName = "Drivers"
)

type DriverRepository interface {
	Create(ctx context.Context, driver *model.Driver) error
	FindByID(ctx context.Context, id string) (*model.Driver, error)
	FindByEmail(ctx context.Context, email string) (*model.Driver, error)
	FindAll(ctx context.Context, limit int, offset int64) ([]*model.Driver, error)
	Update(ctx context.Context, id string, driver *model.Driver) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)
}

type mongoDriverRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoDriverRepository(cfg *config.Config) DriverRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoDriverRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
	}
}

func (r *mongoDriverRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

func (r *mongoDriverRepository) Create(ctx context.Context, driver *model.Driver) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	driver.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	result, err := r.collection.InsertOne(ctx, driver)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return driververrors.ErrDuplicateEmail
		}
		return fmt.Errorf("failed to create driver: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		driver.ID = oid.Hex()
	}
	return nil
}

func (r *mongoDriverRepository) FindByID(ctx context.Context, id string) (*model.Driver, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", driververrors.ErrInvalidID, id)
	}

	var driver model.Driver
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&driver)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, driververrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find driver: %w", err)
	}

	return &driver, nil
}

func (r *mongoDriverRepository) FindByEmail(ctx context.Context, email string) (*model.Driver, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var driver model.Driver
	err := r.collection.FindOne(ctx, bson.M{"email": email}).Decode(&driver)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, driververrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find driver by email: %w", err)
	}

	return &driver, nil
}

func (r *mongoDriverRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Driver, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "last_name", Value: 1}, {Key: "first_name", Value: 1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find drivers: %w", err)
	}
	defer cursor.Close(ctx)

	var drivers []*model.Driver
	if err = cursor.All(ctx, &drivers); err != nil {
		return nil, fmt.Errorf("failed to decode drivers: %w", err)
	}

	return drivers, nil
}

func (r *mongoDriverRepository) Update(ctx context.Context, id string, driver *model.Driver) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", driververrors.ErrInvalidID, id)
	}

	update := bson.M{
		"$set": bson.M{
			"first_name":       driver.FirstName,
			"last_name":        driver.LastName,
			"date_of_birth":    driver.DateOfBirth,
			"email":            driver.Email,
			"phone_no":         driver.PhoneNo,
			"country":          driver.Country,
			"base_location":    driver.BaseLocation,
			"vehicle_capacity": driver.VehicleCapacity,
			"start_time":       driver.StartTime,
			"end_time":         driver.EndTime,
			"break_start_time": driver.BreakStartTime,
			"break_end_time":   driver.BreakEndTime,
			"priority":         driver.Priority,
			"active_days":      driver.ActiveDays,
			"photos":           driver.Photos,
			"updated_at":       time.Now().UTC().Truncate(time.Millisecond),
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return driververrors.ErrDuplicateEmail
		}
		return fmt.Errorf("failed to update driver: %w", err)
	}

	if result.MatchedCount == 0 {
		return driververrors.ErrNotFound
	}

	return nil
}

func (r *mongoDriverRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", driververrors.ErrInvalidID, id)
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return fmt.Errorf("failed to delete driver: %w", err)
	}

	if result.DeletedCount == 0 {
		return driververrors.ErrNotFound
	}

	return nil
}

func (r *mongoDriverRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count drivers: %w", err)
	}

	return count, nil
}
