package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"debatehub/internal/model"
)

func main() {
	mongoURI := os.Getenv("MONGO_URI")
	if mongoURI == "" {
		mongoURI = "mongodb://localhost:27017"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI))
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer client.Disconnect(ctx)

	dbName := os.Getenv("MONGO_DB")
	if dbName == "" {
		dbName = "debatehub"
	}
	db := client.Database(dbName)
	coll := db.Collection("questionnaires")

	hostID := "host_8263b93c"

	questionnaire := model.Questionnaire{
		HostID:      hostID,
		Title:       "Debater Onboarding Survey",
		Description: "Helps us understand your background, experience and beliefs so we can match you with the right debates.",
		Questions: []model.QuestionDescriptor{
			{
				ID:       "bg_motivation",
				Type:     model.QuestionTypeFreeText,
				Section:  "background",
				Required: true,
				Prompt:   "What draws you to structured debate?",
			},
			{
				ID:       "bg_frequency",
				Type:     model.QuestionTypeMultiChoice,
				Section:  "background",
				Required: true,
				Prompt:   "How often do you engage in debates or structured discussions?",
				Options:  []string{"Weekly or more", "A few times a month", "A few times a year", "This is my first time"},
			},
			{
				ID:       "exp_years",
				Type:     model.QuestionTypeScale,
				Section:  "debate-experience",
				Required: true,
				Prompt:   "How would you rate your debate experience, from beginner (1) to expert (5)?",
				ScaleMin: 1,
				ScaleMax: 5,
			},
			{
				ID:      "exp_formats",
				Type:    model.QuestionTypeRanking,
				Section: "debate-experience",
				Prompt:  "Rank these debate formats by your preference.",
				Options: []string{"British Parliamentary", "Lincoln-Douglas", "Public Forum", "Informal panel"},
			},
			{
				ID:       "exp_competitive",
				Type:     model.QuestionTypeBinary,
				Section:  "debate-experience",
				Required: true,
				Prompt:   "Have you ever competed in an organized debate tournament?",
			},
			{
				ID:       "bel_evidence",
				Type:     model.QuestionTypeSlider,
				Section:  "beliefs",
				Required: true,
				Prompt:   "When forming opinions, how much do you weigh empirical evidence versus personal values? (0 = values only, 100 = evidence only)",
				ScaleMin: 0,
				ScaleMax: 100,
			},
			{
				ID:       "bel_change",
				Type:     model.QuestionTypeScale,
				Section:  "beliefs",
				Required: true,
				Prompt:   "How open are you to changing your position when presented with a strong counter-argument?",
				ScaleMin: 1,
				ScaleMax: 5,
			},
			{
				ID:      "refl_topics",
				Type:    model.QuestionTypeFreeText,
				Section: "optional-reflection",
				Prompt:  "Are there any topics you would especially like to debate, or would rather avoid?",
			},
			{
				ID:      "refl_feedback",
				Type:    model.QuestionTypeFreeText,
				Section: "optional-reflection",
				Prompt:  "Anything else we should know about how you like to discuss and learn?",
			},
		},
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	result, err := coll.InsertOne(ctx, questionnaire)
	if err != nil {
		log.Fatalf("Failed to insert questionnaire: %v", err)
	}

	fmt.Printf("Successfully created questionnaire '%s' for host '%s' (id=%v)\n", questionnaire.Title, hostID, result.InsertedID)
}
