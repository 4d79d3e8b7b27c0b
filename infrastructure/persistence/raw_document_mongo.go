package persistence

import (
	"context"
	"fmt"
	"strings"
	"time"

	"solar-pipeline/domain/model"
	"solar-pipeline/domain/repository"
	"solar-pipeline/infrastructure/logger"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// rawVideoDocument is one video of a raw document as stored in MongoDB.
type rawVideoDocument struct {
	ID         string    `bson:"_id"`
	Pipeline   string    `bson:"pipeline"`
	VideoID    string    `bson:"video_id"`
	VideoTitle string    `bson:"video_title"`
	RawThreads []bson.D  `bson:"raw_threads"`
	WrittenAt  time.Time `bson:"written_at"`
}

// RawDocumentMongoStore upserts one MongoDB document per video, keyed by
// "<pipeline>:<videoId>".
type RawDocumentMongoStore struct {
	collection *mongo.Collection
	now        func() time.Time
}

func NewRawDocumentMongoStore(db *mongo.Client, database, collection string) repository.IRawDocumentStore {
	return &RawDocumentMongoStore{
		collection: db.Database(database).Collection(collection),
		now:        time.Now,
	}
}

func (s *RawDocumentMongoStore) Save(ctx context.Context, name string, doc *model.RawDocument) error {
	docs, err := toMongoDocuments(pipelineName(name), doc, s.now().UTC())
	if err != nil {
		return err
	}
	if len(docs) == 0 {
		return nil
	}

	models := make([]mongo.WriteModel, 0, len(docs))
	for _, d := range docs {
		models = append(models, mongo.NewReplaceOneModel().
			SetFilter(bson.D{{Key: "_id", Value: d.ID}}).
			SetReplacement(d).
			SetUpsert(true))
	}

	res, err := s.collection.BulkWrite(ctx, models, options.BulkWrite().SetOrdered(false))
	if err != nil {
		return fmt.Errorf("failed to upsert raw documents: %w", err)
	}
	logger.GetLogger().
		WithField("document", name).
		WithField("upserted", res.UpsertedCount).
		WithField("modified", res.ModifiedCount).
		Info("Raw document mirrored to MongoDB")
	return nil
}

func pipelineName(name string) string {
	return strings.TrimSuffix(name, ".json")
}

func toMongoDocuments(pipeline string, doc *model.RawDocument, writtenAt time.Time) ([]rawVideoDocument, error) {
	out := make([]rawVideoDocument, 0, doc.Len())
	for _, e := range doc.Entries() {
		threads := make([]bson.D, 0, len(e.Threads))
		for _, t := range e.Threads {
			raw, err := t.RawWithReplies()
			if err != nil {
				return nil, fmt.Errorf("failed to build thread %s of video %s: %w", t.ID, e.VideoID, err)
			}
			var d bson.D
			if err := bson.UnmarshalExtJSON(raw, false, &d); err != nil {
				return nil, fmt.Errorf("failed to convert thread %s of video %s: %w", t.ID, e.VideoID, err)
			}
			threads = append(threads, d)
		}
		out = append(out, rawVideoDocument{
			ID:         pipeline + ":" + e.VideoID,
			Pipeline:   pipeline,
			VideoID:    e.VideoID,
			VideoTitle: e.VideoTitle,
			RawThreads: threads,
			WrittenAt:  writtenAt,
		})
	}
	return out, nil
}
