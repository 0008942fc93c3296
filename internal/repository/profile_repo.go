package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"debatehub/internal/model"
)

// ProfileRepo handles MongoDB operations for finalized respondent profiles
type ProfileRepo interface {
	Upsert(ctx context.Context, profile *model.RespondentProfile) error
	GetByRespondent(ctx context.Context, respondentID, questionnaireID string) (*model.RespondentProfile, error)
}

type profileRepo struct {
	collection *mongo.Collection
}

// NewProfileRepo creates a new profile repository
func NewProfileRepo(db *mongo.Database) ProfileRepo {
	return &profileRepo{
		collection: db.Collection("respondent_profiles"),
	}
}

func (r *profileRepo) Upsert(ctx context.Context, profile *model.RespondentProfile) error {
	filter := bson.M{"respondentId": profile.RespondentID, "questionnaireId": profile.QuestionnaireID}
	opts := options.Replace().SetUpsert(true)
	_, err := r.collection.ReplaceOne(ctx, filter, profile, opts)
	return err
}

func (r *profileRepo) GetByRespondent(ctx context.Context, respondentID, questionnaireID string) (*model.RespondentProfile, error) {
	var profile model.RespondentProfile
	filter := bson.M{"respondentId": respondentID, "questionnaireId": questionnaireID}
	err := r.collection.FindOne(ctx, filter).Decode(&profile)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &profile, nil
}
