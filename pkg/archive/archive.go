// Package archive persists finished run reports. Production machines
// push every run's summary and machining record into MongoDB so batch
// yields can be correlated with sequencing parameters later.
package archive

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/memslab/lasermill/pkg/errors"
)

// RunReport is one archived run.
type RunReport struct {
	RunID       string    `bson:"run_id" json:"run_id"`
	StartedAt   time.Time `bson:"started_at" json:"started_at"`
	FinishedAt  time.Time `bson:"finished_at" json:"finished_at"`
	LayoutPath  string    `bson:"layout_path" json:"layout_path"`
	Policy      string    `bson:"policy" json:"policy"`
	NumPolygons int       `bson:"num_polygons" json:"num_polygons"`
	NumHoles    int       `bson:"num_holes" json:"num_holes"`
	ProgramPath string    `bson:"program_path" json:"program_path"`
	LogLines    []string  `bson:"log_lines" json:"log_lines"`
}

// Store reads and writes run reports.
type Store interface {
	// Put archives one report.
	Put(ctx context.Context, report RunReport) error

	// Get fetches a report by run ID.
	Get(ctx context.Context, runID string) (RunReport, error)

	// Recent lists the most recent reports, newest first.
	Recent(ctx context.Context, limit int) ([]RunReport, error)

	// Close releases the connection.
	Close(ctx context.Context) error
}

// MongoStore is the MongoDB-backed Store.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// MongoConfig configures the archive connection.
type MongoConfig struct {
	URI        string
	Database   string
	Collection string
}

// NewMongoStore connects and verifies the connection.
func NewMongoStore(ctx context.Context, cfg MongoConfig) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "connect archive %s", cfg.URI)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "ping archive %s", cfg.URI)
	}
	return &MongoStore{
		client: client,
		coll:   client.Database(cfg.Database).Collection(cfg.Collection),
	}, nil
}

// Put implements Store. Reports are upserted by run ID so a retried
// archive push never duplicates a run.
func (s *MongoStore) Put(ctx context.Context, report RunReport) error {
	_, err := s.coll.ReplaceOne(ctx,
		bson.M{"run_id": report.RunID},
		report,
		options.Replace().SetUpsert(true))
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "archive run %s", report.RunID)
	}
	return nil
}

// Get implements Store.
func (s *MongoStore) Get(ctx context.Context, runID string) (RunReport, error) {
	var report RunReport
	err := s.coll.FindOne(ctx, bson.M{"run_id": runID}).Decode(&report)
	if err == mongo.ErrNoDocuments {
		return RunReport{}, errors.New(errors.ErrCodeNotFound, "run %s is not archived", runID)
	}
	if err != nil {
		return RunReport{}, errors.Wrap(errors.ErrCodeInternal, err, "fetch run %s", runID)
	}
	return report, nil
}

// Recent implements Store.
func (s *MongoStore) Recent(ctx context.Context, limit int) ([]RunReport, error) {
	if limit < 1 {
		limit = 10
	}
	cur, err := s.coll.Find(ctx, bson.M{},
		options.Find().SetSort(bson.M{"started_at": -1}).SetLimit(int64(limit)))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "list runs")
	}
	defer cur.Close(ctx)

	var reports []RunReport
	if err := cur.All(ctx, &reports); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "decode runs")
	}
	return reports, nil
}

// Close implements Store.
func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

var _ Store = (*MongoStore)(nil)
