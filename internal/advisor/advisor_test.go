package advisor

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/dukerupert/ecotrack/internal/database"
	"github.com/dukerupert/ecotrack/internal/genai"
	"github.com/dukerupert/ecotrack/internal/model"
	"github.com/dukerupert/ecotrack/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type chatCall struct {
	model    string
	messages []genai.Message
}

// fakeGenerator answers chat calls in order and records what it was asked.
type fakeGenerator struct {
	replies  []string
	chatErr  error
	imageURL string
	imageErr error

	calls       []chatCall
	imagePrompt string
}

func (f *fakeGenerator) Chat(_ context.Context, model string, messages ...genai.Message) (string, error) {
	f.calls = append(f.calls, chatCall{model: model, messages: messages})
	if f.chatErr != nil {
		return "", f.chatErr
	}
	if len(f.replies) == 0 {
		return "", nil
	}
	r := f.replies[0]
	f.replies = f.replies[1:]
	return r, nil
}

func (f *fakeGenerator) GenerateImage(_ context.Context, req genai.ImageRequest) (string, error) {
	f.imagePrompt = req.Prompt
	return f.imageURL, f.imageErr
}

type fakeMirror struct {
	err error
}

func (m fakeMirror) Mirror(_ context.Context, ownerID, sourceURL string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	return "https://cdn.test/" + ownerID + "/copy.png", nil
}

type countingObserver map[string]int

func (c countingObserver) ObserveGenAICall(kind, outcome string) {
	c[kind+":"+outcome]++
}

type fixture struct {
	advisor    *Advisor
	gen        *fakeGenerator
	footprints *store.FootprintStore
	insights   *store.InsightStore
	tips       *store.EcoTipStore
	observer   countingObserver
}

func newFixture(t *testing.T, gen *fakeGenerator, mirror ImageMirror) *fixture {
	t.Helper()
	db, err := database.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	f := &fixture{
		gen:        gen,
		footprints: store.NewFootprintStore(db),
		insights:   store.NewInsightStore(db),
		tips:       store.NewEcoTipStore(db),
		observer:   countingObserver{},
	}
	f.advisor = New(Deps{
		Generator:  gen,
		Footprints: f.footprints,
		Insights:   f.insights,
		Tips:       f.tips,
		Images:     mirror,
		Observer:   f.observer,
	})
	return f
}

func TestGenerateTip(t *testing.T) {
	gen := &fakeGenerator{
		replies:  []string{"Take shorter showers.", "water conservation"},
		imageURL: "https://upstream.test/img.png",
	}
	f := newFixture(t, gen, fakeMirror{})

	tip, err := f.advisor.GenerateTip(context.Background(), "user_a")
	require.NoError(t, err)

	assert.Equal(t, "Take shorter showers.", tip.Tip)
	assert.Equal(t, "Water", tip.Category)
	assert.Equal(t, "https://cdn.test/user_a/copy.png", tip.ImageURL)
	assert.True(t, tip.IsAIGenerated)
	assert.Equal(t, "user_a", tip.UserID)

	require.Len(t, gen.calls, 2)
	assert.Equal(t, "gpt-4", gen.calls[0].model)
	assert.Equal(t, "gpt-3.5-turbo", gen.calls[1].model)
	assert.Equal(t, "Categorize this eco tip: Take shorter showers.", gen.calls[1].messages[1].Content)
	assert.Equal(t, "A simple, inspiring image representing the eco-friendly tip: Take shorter showers.", gen.imagePrompt)

	assert.Equal(t, 1, f.observer["tip:success"])
	assert.Equal(t, 1, f.observer["category:success"])
	assert.Equal(t, 1, f.observer["image:success"])
}

func TestGenerateTipFallbacks(t *testing.T) {
	gen := &fakeGenerator{replies: []string{"", ""}, imageURL: "https://upstream.test/img.png"}
	f := newFixture(t, gen, nil)

	tip, err := f.advisor.GenerateTip(context.Background(), "user_a")
	require.NoError(t, err)

	assert.Equal(t, "Reduce your plastic waste by using reusable shopping bags.", tip.Tip)
	assert.Equal(t, "General", tip.Category)
	assert.Equal(t, "https://upstream.test/img.png", tip.ImageURL)
}

func TestGenerateTipTruncatesLongText(t *testing.T) {
	gen := &fakeGenerator{replies: []string{strings.Repeat("a", 600), "Energy"}, imageURL: "u"}
	f := newFixture(t, gen, nil)

	tip, err := f.advisor.GenerateTip(context.Background(), "user_a")
	require.NoError(t, err)
	assert.Len(t, tip.Tip, 500)
}

func TestGenerateTipPersistsNothingOnFailure(t *testing.T) {
	boom := errors.New("upstream down")

	tests := []struct {
		name   string
		gen    *fakeGenerator
		mirror ImageMirror
	}{
		{"chat fails", &fakeGenerator{chatErr: boom}, nil},
		{"image fails", &fakeGenerator{replies: []string{"tip", "Energy"}, imageErr: boom}, nil},
		{"mirror fails", &fakeGenerator{replies: []string{"tip", "Energy"}, imageURL: "u"}, fakeMirror{err: boom}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, tt.gen, tt.mirror)

			_, err := f.advisor.GenerateTip(context.Background(), "user_a")
			require.ErrorIs(t, err, boom)

			n, err := f.tips.Count(context.Background(), "user_a")
			require.NoError(t, err)
			assert.Zero(t, n)
		})
	}
}

func TestGenerateInsight(t *testing.T) {
	gen := &fakeGenerator{replies: []string{"Carpool twice a week."}}
	f := newFixture(t, gen, nil)
	ctx := context.Background()

	day, err := model.ParseDate("2024-01-01")
	require.NoError(t, err)
	fp, err := f.footprints.Create(ctx, "user_a", store.FootprintInput{Date: day, Transportation: 500, Energy: 300, Food: 200})
	require.NoError(t, err)

	ins, err := f.advisor.GenerateInsight(ctx, "user_a", day)
	require.NoError(t, err)

	assert.Equal(t, "Carpool twice a week.", ins.Insight)
	assert.Equal(t, fp.ID, ins.CarbonFootprintID)
	assert.Equal(t, "2024-01-01", ins.Date.String())

	require.Len(t, gen.calls, 1)
	prompt := gen.calls[0].messages[1].Content
	assert.Contains(t, prompt, "Transportation: 5.00 kg CO2")
	assert.Contains(t, prompt, "Total: 10.00 kg CO2")
	assert.Equal(t, 1, f.observer["insight:success"])
}

func TestGenerateInsightFallbackAndNotFound(t *testing.T) {
	gen := &fakeGenerator{replies: []string{""}}
	f := newFixture(t, gen, nil)
	ctx := context.Background()

	day, err := model.ParseDate("2024-01-01")
	require.NoError(t, err)

	_, err = f.advisor.GenerateInsight(ctx, "user_a", day)
	assert.ErrorIs(t, err, ErrFootprintNotFound)
	assert.Empty(t, gen.calls)

	// Another owner's footprint for the same date is invisible.
	_, err = f.footprints.Create(ctx, "user_b", store.FootprintInput{Date: day})
	require.NoError(t, err)
	_, err = f.advisor.GenerateInsight(ctx, "user_a", day)
	assert.ErrorIs(t, err, ErrFootprintNotFound)

	_, err = f.footprints.Create(ctx, "user_a", store.FootprintInput{Date: day, Energy: 100})
	require.NoError(t, err)
	ins, err := f.advisor.GenerateInsight(ctx, "user_a", day)
	require.NoError(t, err)
	assert.Equal(t, "Try to reduce your carbon footprint by using public transportation more often.", ins.Insight)
}
