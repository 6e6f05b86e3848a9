// Package advisor runs the generative flows: eco tips with a category and an
// illustration, and insights for a recorded carbon footprint.
package advisor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/dukerupert/ecotrack/internal/genai"
	"github.com/dukerupert/ecotrack/internal/model"
	"github.com/dukerupert/ecotrack/internal/store"
)

// ErrFootprintNotFound is returned when no footprint exists for the requested date.
var ErrFootprintNotFound = errors.New("carbon footprint data not found")

const (
	fallbackTip     = "Reduce your plastic waste by using reusable shopping bags."
	fallbackInsight = "Try to reduce your carbon footprint by using public transportation more often."

	tipInstruction      = "You are an AI assistant specialized in generating practical and actionable eco-friendly tips. Provide a concise, motivating tip that an individual can easily implement in their daily life."
	tipRequest          = "Generate an eco-friendly tip."
	categoryInstruction = "You are an AI that categorizes eco-friendly tips. Provide a single word category for the given tip."
	insightInstruction  = "You are an AI assistant specialized in analyzing carbon footprint data and providing actionable short insights. Analyze the given data and provide personalized advice for reducing carbon emissions."

	maxTipLength = 500
)

// Generator is the text and image generation capability.
type Generator interface {
	Chat(ctx context.Context, model string, messages ...genai.Message) (string, error)
	GenerateImage(ctx context.Context, req genai.ImageRequest) (string, error)
}

type FootprintFinder interface {
	GetByDate(ctx context.Context, ownerID string, date model.Date) (*model.CarbonFootprint, error)
}

type InsightCreator interface {
	Create(ctx context.Context, ownerID string, footprintID int64, date model.Date, text string) (*model.CarbonInsight, error)
}

type TipCreator interface {
	Create(ctx context.Context, ownerID string, in store.EcoTipInput) (*model.EcoTip, error)
}

// ImageMirror copies a generated image somewhere durable and returns its URL.
type ImageMirror interface {
	Mirror(ctx context.Context, ownerID, sourceURL string) (string, error)
}

// CallObserver records the outcome of each generative call.
type CallObserver interface {
	ObserveGenAICall(kind, outcome string)
}

type Models struct {
	Tip      string
	Category string
	Insight  string
	Image    string
}

func DefaultModels() Models {
	return Models{
		Tip:      "gpt-4",
		Category: "gpt-3.5-turbo",
		Insight:  "gpt-4",
		Image:    "dall-e-3",
	}
}

type Deps struct {
	Generator  Generator
	Footprints FootprintFinder
	Insights   InsightCreator
	Tips       TipCreator
	Images     ImageMirror
	Observer   CallObserver
	Models     Models
	Logger     *slog.Logger
}

type Advisor struct {
	gen        Generator
	footprints FootprintFinder
	insights   InsightCreator
	tips       TipCreator
	images     ImageMirror
	observer   CallObserver
	models     Models
	logger     *slog.Logger
}

type nopObserver struct{}

func (nopObserver) ObserveGenAICall(string, string) {}

func New(d Deps) *Advisor {
	a := &Advisor{
		gen:        d.Generator,
		footprints: d.Footprints,
		insights:   d.Insights,
		tips:       d.Tips,
		images:     d.Images,
		observer:   d.Observer,
		models:     d.Models,
		logger:     d.Logger,
	}
	if a.observer == nil {
		a.observer = nopObserver{}
	}
	if a.logger == nil {
		a.logger = slog.Default()
	}
	if a.models == (Models{}) {
		a.models = DefaultModels()
	}
	return a
}

func (a *Advisor) observe(kind string, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	a.observer.ObserveGenAICall(kind, outcome)
}

func (a *Advisor) chat(ctx context.Context, kind, model string, messages ...genai.Message) (string, error) {
	text, err := a.gen.Chat(ctx, model, messages...)
	a.observe(kind, err)
	return text, err
}

// GenerateTip produces a tip, classifies it, illustrates it and stores the
// result. Nothing is stored unless every step succeeds.
func (a *Advisor) GenerateTip(ctx context.Context, ownerID string) (*model.EcoTip, error) {
	tip, err := a.chat(ctx, "tip", a.models.Tip, genai.System(tipInstruction), genai.User(tipRequest))
	if err != nil {
		return nil, fmt.Errorf("generate tip: %w", err)
	}
	if tip == "" {
		tip = fallbackTip
	}
	if utf8.RuneCountInString(tip) > maxTipLength {
		tip = strings.TrimSpace(string([]rune(tip)[:maxTipLength]))
	}

	rawCategory, err := a.chat(ctx, "category", a.models.Category,
		genai.System(categoryInstruction),
		genai.User("Categorize this eco tip: "+tip),
	)
	if err != nil {
		return nil, fmt.Errorf("categorize tip: %w", err)
	}
	category := NormalizeCategory(rawCategory)

	imageURL, err := a.gen.GenerateImage(ctx, genai.ImageRequest{
		Model:  a.models.Image,
		Prompt: ImagePrompt(tip),
	})
	a.observe("image", err)
	if err != nil {
		return nil, fmt.Errorf("illustrate tip: %w", err)
	}

	if a.images != nil {
		imageURL, err = a.images.Mirror(ctx, ownerID, imageURL)
		if err != nil {
			return nil, fmt.Errorf("mirror image: %w", err)
		}
	}

	saved, err := a.tips.Create(ctx, ownerID, store.EcoTipInput{
		Tip:         tip,
		Category:    category,
		ImageURL:    imageURL,
		AIGenerated: true,
	})
	if err != nil {
		return nil, fmt.Errorf("save tip: %w", err)
	}

	a.logger.Info("eco tip generated", "owner", ownerID, "id", saved.ID, "category", category)
	return saved, nil
}

// ImagePrompt is the illustration prompt for a tip.
func ImagePrompt(tip string) string {
	return "A simple, inspiring image representing the eco-friendly tip: " + tip
}

// InsightPrompt embeds the footprint's figures in the analysis request.
func InsightPrompt(f *model.CarbonFootprint) string {
	return fmt.Sprintf(`Analyze this carbon footprint data and provide insights and tips:
Date: %s
Transportation: %s kg CO2
Energy: %s kg CO2
Food: %s kg CO2
Total: %s kg CO2`, f.Date, f.Transportation, f.Energy, f.Food, f.Total)
}

// GenerateInsight analyzes the owner's footprint for date and stores the advice.
func (a *Advisor) GenerateInsight(ctx context.Context, ownerID string, date model.Date) (*model.CarbonInsight, error) {
	footprint, err := a.footprints.GetByDate(ctx, ownerID, date)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrFootprintNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find footprint: %w", err)
	}

	text, err := a.chat(ctx, "insight", a.models.Insight,
		genai.System(insightInstruction),
		genai.User(InsightPrompt(footprint)),
	)
	if err != nil {
		return nil, fmt.Errorf("generate insight: %w", err)
	}
	if text == "" {
		text = fallbackInsight
	}

	saved, err := a.insights.Create(ctx, ownerID, footprint.ID, footprint.Date, text)
	if err != nil {
		return nil, fmt.Errorf("save insight: %w", err)
	}

	a.logger.Info("insight generated", "owner", ownerID, "id", saved.ID, "footprint_id", footprint.ID)
	return saved, nil
}
