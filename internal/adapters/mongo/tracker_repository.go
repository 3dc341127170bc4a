package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/emiliopalmerini/punchclock/internal/domain"
	"github.com/emiliopalmerini/punchclock/internal/ports"
)

// CollectionName is the collection holding one document per employee.
const CollectionName = "employee_trackers"

// TrackerRepository stores trackers in MongoDB, keyed by employee id.
type TrackerRepository struct {
	coll *mongo.Collection
}

func NewTrackerRepository(db *mongo.Database) *TrackerRepository {
	return &TrackerRepository{coll: db.Collection(CollectionName)}
}

// EnsureIndexes creates the lookup indexes for session ids and the active
// flag. It is safe to call on every start.
func (r *TrackerRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "sessions.sessionId", Value: 1}}},
		{Keys: bson.D{{Key: "currentSession.sessionId", Value: 1}}},
		{Keys: bson.D{{Key: "isActive", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("create tracker indexes: %w", err)
	}
	return nil
}

func (r *TrackerRepository) Get(ctx context.Context, employeeID string) (*domain.Tracker, error) {
	return r.findOne(ctx, bson.D{{Key: "_id", Value: employeeID}})
}

func (r *TrackerRepository) GetBySessionID(ctx context.Context, sessionID string) (*domain.Tracker, error) {
	return r.findOne(ctx, bson.D{{Key: "$or", Value: bson.A{
		bson.D{{Key: "currentSession.sessionId", Value: sessionID}},
		bson.D{{Key: "sessions.sessionId", Value: sessionID}},
	}}})
}

func (r *TrackerRepository) findOne(ctx context.Context, filter bson.D) (*domain.Tracker, error) {
	var t domain.Tracker
	if err := r.coll.FindOne(ctx, filter).Decode(&t); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get tracker: %w", err)
	}
	return &t, nil
}

// Save inserts a new tracker or replaces the stored one when its version
// still matches.
func (r *TrackerRepository) Save(ctx context.Context, t *domain.Tracker) error {
	next := t.Version + 1
	doc := *t
	doc.Version = next

	if t.Version == 0 {
		if _, err := r.coll.InsertOne(ctx, &doc); err != nil {
			if mongo.IsDuplicateKeyError(err) {
				return ports.ErrVersionConflict
			}
			return fmt.Errorf("failed to insert tracker: %w", err)
		}
		t.Version = next
		return nil
	}

	filter := bson.D{
		{Key: "_id", Value: t.EmployeeID},
		{Key: "version", Value: t.Version},
	}
	res, err := r.coll.ReplaceOne(ctx, filter, &doc)
	if err != nil {
		return fmt.Errorf("failed to replace tracker: %w", err)
	}
	if res.MatchedCount == 0 {
		return ports.ErrVersionConflict
	}
	t.Version = next
	return nil
}

func (r *TrackerRepository) Delete(ctx context.Context, employeeID string) error {
	if _, err := r.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: employeeID}}); err != nil {
		return fmt.Errorf("failed to delete tracker: %w", err)
	}
	return nil
}

func (r *TrackerRepository) ListActive(ctx context.Context) ([]string, error) {
	opts := options.Find().
		SetProjection(bson.D{{Key: "_id", Value: 1}}).
		SetSort(bson.D{{Key: "_id", Value: 1}})
	cur, err := r.coll.Find(ctx, bson.D{{Key: "isActive", Value: true}}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list active trackers: %w", err)
	}
	defer cur.Close(ctx)

	var rows []struct {
		ID string `bson:"_id"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode active trackers: %w", err)
	}
	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}
	return ids, nil
}
