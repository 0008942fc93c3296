package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"debatehub/internal/model"
)

// ResponseRepo is the persistence collaborator for recorded responses. The
// engine never blocks on it: single saves are advisory and bulk saves run
// from the auto-save flusher.
type ResponseRepo interface {
	Save(ctx context.Context, record *model.ResponseRecord) error
	BulkSave(ctx context.Context, records []model.ResponseRecord, meta model.SessionMetadata) error
	GetBySessionID(ctx context.Context, sessionID string) ([]*model.ResponseRecord, error)
}

type responseRepo struct {
	responses *mongo.Collection
	flushes   *mongo.Collection
}

// NewResponseRepo creates a new response repository
func NewResponseRepo(db *mongo.Database) ResponseRepo {
	return &responseRepo{
		responses: db.Collection("responses"),
		flushes:   db.Collection("session_flushes"),
	}
}

// Save upserts a single response keyed by session and question, so edits
// before finalization overwrite rather than duplicate.
func (r *responseRepo) Save(ctx context.Context, record *model.ResponseRecord) error {
	if record.SavedAt.IsZero() {
		record.SavedAt = time.Now()
	}

	filter := bson.M{"sessionId": record.SessionID, "questionId": record.QuestionID}
	update := bson.M{"$set": bson.M{
		"respondentId":     record.RespondentID,
		"questionnaireId":  record.QuestionnaireID,
		"value":            record.Value,
		"confidenceLevel":  record.ConfidenceLevel,
		"completionTimeMs": record.CompletionTimeMs,
		"savedAt":          record.SavedAt,
	}}
	opts := options.Update().SetUpsert(true)
	_, err := r.responses.UpdateOne(ctx, filter, update, opts)
	return err
}

// BulkSave flushes a whole session's responses plus flush metadata
func (r *responseRepo) BulkSave(ctx context.Context, records []model.ResponseRecord, meta model.SessionMetadata) error {
	for i := range records {
		if err := r.Save(ctx, &records[i]); err != nil {
			return err
		}
	}

	opts := options.Replace().SetUpsert(true)
	_, err := r.flushes.ReplaceOne(ctx, bson.M{"sessionId": meta.SessionID}, meta, opts)
	return err
}

func (r *responseRepo) GetBySessionID(ctx context.Context, sessionID string) ([]*model.ResponseRecord, error) {
	cursor, err := r.responses.Find(ctx, bson.M{"sessionId": sessionID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var records []*model.ResponseRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, err
	}
	return records, nil
}
