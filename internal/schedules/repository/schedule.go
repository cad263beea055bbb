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

	schedulerrors "fleetdesk/internal/schedules/errors"
	"fleetdesk/pkg/config"
	mongotx "fleetdesk/pkg/db/mongo"
	"fleetdesk/pkg/model"
)

const (
	CollectionName = "Schedules"
)

type ScheduleRepository interface {
	Create(ctx context.Context, schedule *model.Schedule) error
	FindByID(ctx context.Context, id string) (*model.Schedule, error)
	FindAll(ctx context.Context, limit int, offset int64) ([]*model.Schedule, error)
	FindByDate(ctx context.Context, date time.Time) ([]*model.Schedule, error)
	FindByDateRange(ctx context.Context, from, to time.Time) ([]*model.Schedule, error)
	Replace(ctx context.Context, id string, schedule *model.Schedule) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)
	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

type mongoScheduleRepository struct {
	cfg        *config.Config
	db         *mongo.Database
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

func NewMongoScheduleRepository(cfg *config.Config) ScheduleRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoScheduleRepository{
		cfg:        cfg,
		db:         db,
		collection: db.Collection(CollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

// withTimeout wraps the context with a timeout unless already inside a
// transaction. A SessionContext cannot be wrapped without breaking
// transaction semantics, so it is returned unchanged with a no-op
// cancel.
func (r *mongoScheduleRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}

	deadline, hasDeadline := ctx.Deadline()
	if !hasDeadline {
		return context.WithTimeout(ctx, timeout)
	}

	remaining := time.Until(deadline)
	if remaining < timeout {
		return context.WithTimeout(ctx, remaining)
	}

	return context.WithTimeout(ctx, timeout)
}

func (r *mongoScheduleRepository) Create(ctx context.Context, schedule *model.Schedule) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	schedule.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	result, err := r.collection.InsertOne(ctx, schedule)
	if err != nil {
		return fmt.Errorf("failed to create schedule: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		schedule.ID = oid.Hex()
	}
	return nil
}

func (r *mongoScheduleRepository) FindByID(ctx context.Context, id string) (*model.Schedule, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", schedulerrors.ErrInvalidID, id)
	}

	var schedule model.Schedule
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&schedule)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, schedulerrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find schedule: %w", err)
	}

	return &schedule, nil
}

func (r *mongoScheduleRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Schedule, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "date", Value: 1}, {Key: "start_time", Value: 1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find schedules: %w", err)
	}
	defer cursor.Close(ctx)

	var schedules []*model.Schedule
	if err = cursor.All(ctx, &schedules); err != nil {
		return nil, fmt.Errorf("failed to decode schedules: %w", err)
	}

	return schedules, nil
}

// FindByDate returns every schedule on the given calendar date. The
// validator runs its duplicate and overlap scans against this single
// snapshot.
func (r *mongoScheduleRepository) FindByDate(ctx context.Context, date time.Time) ([]*model.Schedule, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	dayEnd := dayStart.AddDate(0, 0, 1)

	filter := bson.M{
		"date": bson.M{"$gte": dayStart, "$lt": dayEnd},
	}

	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "start_time", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to find schedules by date: %w", err)
	}
	defer cursor.Close(ctx)

	var schedules []*model.Schedule
	if err = cursor.All(ctx, &schedules); err != nil {
		return nil, fmt.Errorf("failed to decode schedules: %w", err)
	}

	return schedules, nil
}

func (r *mongoScheduleRepository) FindByDateRange(ctx context.Context, from, to time.Time) ([]*model.Schedule, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{
		"date": bson.M{"$gte": from, "$lte": to},
	}

	opts := options.Find().SetSort(bson.D{
		{Key: "professional", Value: 1},
		{Key: "date", Value: 1},
		{Key: "start_time", Value: 1},
	})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find schedules by date range: %w", err)
	}
	defer cursor.Close(ctx)

	var schedules []*model.Schedule
	if err = cursor.All(ctx, &schedules); err != nil {
		return nil, fmt.Errorf("failed to decode schedules: %w", err)
	}

	return schedules, nil
}

func (r *mongoScheduleRepository) Replace(ctx context.Context, id string, schedule *model.Schedule) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", schedulerrors.ErrInvalidID, id)
	}

	update := bson.M{
		"$set": bson.M{
			"professional": schedule.Professional,
			"driver":       schedule.Driver,
			"client_name":  schedule.ClientName,
			"day":          schedule.Day,
			"date":         schedule.Date,
			"start_time":   schedule.StartTime,
			"end_time":     schedule.EndTime,
			"destination":  schedule.Destination,
			"description":  schedule.Description,
			"service":      schedule.Service,
			"status":       schedule.Status,
			"updated_at":   time.Now().UTC().Truncate(time.Millisecond),
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		return fmt.Errorf("failed to update schedule: %w", err)
	}

	if result.MatchedCount == 0 {
		return schedulerrors.ErrNotFound
	}

	return nil
}

func (r *mongoScheduleRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", schedulerrors.ErrInvalidID, id)
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return fmt.Errorf("failed to delete schedule: %w", err)
	}

	if result.DeletedCount == 0 {
		return schedulerrors.ErrNotFound
	}

	return nil
}

func (r *mongoScheduleRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count schedules: %w", err)
	}

	return count, nil
}

func (r *mongoScheduleRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}
