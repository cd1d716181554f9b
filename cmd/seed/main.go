package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/behuman/cascade/internal/model"
	"github.com/behuman/cascade/internal/repository"
)

func main() {
	mongoURI := os.Getenv("MONGO_URI")
	if mongoURI == "" {
		mongoURI = "mongodb://localhost:27017"
	}
	mongoDB := os.Getenv("MONGO_DB")
	if mongoDB == "" {
		mongoDB = "cascadedb"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI))
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer client.Disconnect(ctx)

	catalogRepo := repository.NewCatalogRepo(client.Database(mongoDB))

	catalog := defaultCatalog()
	if err := catalogRepo.Upsert(ctx, catalog); err != nil {
		log.Fatalf("Failed to upsert catalog: %v", err)
	}

	fmt.Printf("Seeded catalog %q (v%d) with %d questions\n", catalog.ID, catalog.Version, len(catalog.Questions))
}

func defaultCatalog() *model.Catalog {
	return &model.Catalog{
		ID:      "cascade_v1",
		Name:    "AI Readiness Assessment",
		Version: 1,
		Questions: []model.Question{
			// Phase 1: profile
			{
				ID: "profile_role", Phase: "profile", Section: "about_you",
				Text:      "What best describes your role at {company}?",
				InputType: model.InputOpenText, Required: true,
			},
			{
				ID: "profile_industry", Phase: "profile", Section: "about_you",
				Text:      "What industry does {company} operate in?",
				InputType: model.InputOpenText, Required: true,
			},
			{
				ID: "profile_company_size", Phase: "profile", Section: "about_you",
				Text:      "How many people work at {company}?",
				InputType: model.InputSingleChoice, Required: true,
				Options: []string{"1-10", "11-50", "51-200", "201-1000", "1000+"},
			},
			{
				ID: "team_size", Phase: "profile", Section: "about_you",
				Text:      "How many people report to you, directly or indirectly?",
				InputType: model.InputScale, ScaleMin: 0, ScaleMax: 50,
				Dimensions: []string{"team_capacity"}, Weight: 0.5,
			},
			{
				ID: "tech_decisions", Phase: "profile", Section: "about_you",
				Text:       "Who makes technology adoption decisions at {company}?",
				InputType:  model.InputSingleChoice,
				Options:    []string{"I do", "A leadership group", "IT / technical lead", "It varies"},
				Dimensions: []string{"investment_readiness"}, Weight: 0.5,
			},

			// Phase 2: awareness and action
			{
				ID: "ai_familiarity", Phase: "awareness", Section: "ai_today",
				Text:      "How familiar are you with what AI tools can do for a business like {company}?",
				InputType: model.InputScale, Required: true, ScaleMin: 1, ScaleMax: 5,
				Dimensions: []string{"ai_awareness"}, Weight: 1,
			},
			{
				ID: "ai_tools_in_use", Phase: "awareness", Section: "ai_today",
				Text:      "Which of these does {company} already use?",
				InputType: model.InputMultiChoice,
				Options: []string{
					"Chat assistants (ChatGPT, Claude, Gemini)",
					"AI features inside existing software",
					"Custom AI integrations or automations",
					"None yet",
				},
				Dimensions: []string{"ai_action"}, Weight: 1,
			},
			{
				ID: "ai_experiments", Phase: "awareness", Section: "ai_today",
				Text:       "Tell me about any AI experiments {company} has tried, even small ones.",
				InputType:  model.InputConversation,
				Dimensions: []string{"ai_action", "ai_awareness"}, Weight: 1.5,
				DialogueGuidance: "Probe for concrete examples: who ran the experiment, what happened, why it stuck or stalled. If they have none, explore what has held them back.",
			},

			// Phase 3: process and strategy
			{
				ID: "process_documentation", Phase: "operations", Section: "how_work_happens",
				Text:      "How well documented are the day-to-day processes at {company}?",
				InputType: model.InputScale, ScaleMin: 1, ScaleMax: 5,
				Dimensions: []string{"process_readiness"}, Weight: 1,
			},
			{
				ID: "repetitive_work", Phase: "operations", Section: "how_work_happens",
				Text:       "What repetitive work eats the most time at {company}?",
				InputType:  model.InputOpenText,
				Dimensions: []string{"process_readiness"}, Weight: 1,
			},
			{
				ID: "data_accessibility", Phase: "operations", Section: "how_work_happens",
				Text:      "If you needed a report on last quarter's operations today, how hard would it be to pull the data?",
				InputType: model.InputSingleChoice,
				Options: []string{
					"A few clicks, it's all in one place",
					"Possible, but spread across systems",
					"Painful, mostly spreadsheets and memory",
					"Honestly, we couldn't",
				},
				Dimensions: []string{"process_readiness"}, Weight: 1,
			},
			{
				ID: "strategic_priorities", Phase: "strategy", Section: "direction",
				Text:      "What are the top priorities for {company} over the next twelve months?",
				InputType: model.InputConversation, Required: true,
				Dimensions: []string{"strategic_clarity", "mission_alignment"}, Weight: 1.5,
				DialogueGuidance: "Surface whether priorities are specific and shared, or vague and held by one person. Ask how success is measured.",
			},
			{
				ID: "growth_blockers", Phase: "strategy", Section: "direction",
				Text:       "What is the single biggest thing slowing {company} down right now?",
				InputType:  model.InputVoice,
				Dimensions: []string{"strategic_clarity", "change_energy"}, Weight: 1,
			},

			// Phase 4: people and change
			{
				ID: "change_appetite", Phase: "people", Section: "team",
				Text:       "When {company} last rolled out a new tool or process, how did the team take it?",
				InputType:  model.InputOpenText,
				Dimensions: []string{"change_energy", "team_capacity"}, Weight: 1,
			},
			{
				ID: "team_bandwidth", Phase: "people", Section: "team",
				Text:      "How much slack does the team have to learn something new this quarter?",
				InputType: model.InputScale, ScaleMin: 1, ScaleMax: 5,
				Dimensions: []string{"team_capacity"}, Weight: 1,
			},
			{
				ID: "mission_fit", Phase: "people", Section: "team",
				Text:       "Does bringing AI into the work feel aligned with what {company} stands for, or in tension with it?",
				InputType:  model.InputConversation,
				Dimensions: []string{"mission_alignment"}, Weight: 1.5,
				DialogueGuidance: "Mission-driven organizations often carry quiet skepticism. Let them voice reservations; probe whether alignment concerns are values-based or fear-based.",
			},

			// Phase 5: investment
			{
				ID: "budget_readiness", Phase: "investment", Section: "commitment",
				Text:      "If a pilot showed clear value, how quickly could {company} fund a real rollout?",
				InputType: model.InputSingleChoice,
				Options: []string{
					"Within a month",
					"Within a quarter",
					"Next budget cycle",
					"Unclear, budget is tight",
				},
				Dimensions: []string{"investment_readiness"}, Weight: 1,
			},
			{
				ID: "time_investment", Phase: "investment", Section: "commitment",
				Text:      "How many hours a week could you personally put into an AI initiative?",
				InputType: model.InputScale, ScaleMin: 0, ScaleMax: 20,
				Dimensions: []string{"investment_readiness", "change_energy"}, Weight: 1,
			},
			{
				ID: "success_picture", Phase: "investment", Section: "commitment",
				Text:      "Paint me a picture: a year from now, AI is working well at {company}. What changed?",
				InputType: model.InputOpenText, Required: true,
				Dimensions: []string{"strategic_clarity", "ai_awareness"}, Weight: 1.5,
			},
			{
				ID: "final_reflections", Phase: "wrap_up", Section: "closing",
				Text:      "Anything about {company} and AI we haven't covered that you want on the record?",
				InputType: model.InputOpenText,
				Weight:    0.5,
			},
		},
	}
}
