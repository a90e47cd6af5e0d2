package service

import (
	"context"
	"encoding/json"
	"testing"

	"studypath_backend/internal/config"
	"studypath_backend/internal/llm"
	"studypath_backend/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGenerationService(responses ...llm.MockResponse) (*GenerationService, *llm.MockProvider) {
	provider := llm.NewMockProvider(responses...)
	cfg := config.LLMConfig{Provider: "mock", MaxTokens: 1024}
	return NewGenerationService(provider, nil, cfg), provider
}

func TestGenerateContentReturnsProviderResult(t *testing.T) {
	body := model.ContentBody{
		Explanation: "Fractions represent parts of a whole.",
		Examples:    []string{"1/2 + 1/4 = 3/4"},
		Tips:        []string{"Find a common denominator first."},
	}
	raw, err := json.Marshal(body)
	require.NoError(t, err)

	svc, provider := newTestGenerationService(llm.MockResponse{Content: raw})
	profile := testProfile()

	got, fellBack := svc.GenerateContent(context.Background(), &profile, "math", "fractions")
	assert.False(t, fellBack)
	assert.Equal(t, body, *got)

	require.Len(t, provider.Calls, 1)
	assert.Contains(t, provider.Calls[0].Messages[0].Content, "fractions")
	assert.Equal(t, contentSchema, provider.Calls[0].Schema)
}

func TestGenerateContentFallsBackOnProviderError(t *testing.T) {
	svc, _ := newTestGenerationService(llm.MockResponse{Err: &llm.ErrProviderUnavailable{}})
	profile := testProfile()

	got, fellBack := svc.GenerateContent(context.Background(), &profile, "math", "fractions")
	assert.True(t, fellBack)
	require.NotNil(t, got, "fallback is same-shape, never nil")
	assert.NotEmpty(t, got.Explanation)
}

func TestGenerateContentFallsBackOnUndecodableJSON(t *testing.T) {
	svc, _ := newTestGenerationService(llm.MockResponse{Content: json.RawMessage(`"just a string"`)})
	profile := testProfile()

	got, fellBack := svc.GenerateContent(context.Background(), &profile, "math", "fractions")
	assert.True(t, fellBack)
	require.NotNil(t, got)
}

func TestGenerateQuizDefaultsQuestionCount(t *testing.T) {
	svc, provider := newTestGenerationService(llm.MockResponse{Err: &llm.ErrProviderUnavailable{}})
	profile := testProfile()

	quiz, fellBack := svc.GenerateQuiz(context.Background(), &profile, "math", "fractions", 0)
	assert.True(t, fellBack)
	require.NotNil(t, quiz)
	assert.NotEmpty(t, quiz.Questions)

	require.Len(t, provider.Calls, 1)
	assert.Contains(t, provider.Calls[0].Messages[0].Content, "5-question")
}

func TestGenerateQuizStampsSubjectAndTopic(t *testing.T) {
	generated := GeneratedQuiz{Questions: []model.QuizQuestion{
		{ID: "q1", Text: "1/2 + 1/2 = ?", Options: []string{"1", "2", "1/4", "0"}, CorrectAnswer: "1"},
	}}
	raw, err := json.Marshal(generated)
	require.NoError(t, err)

	svc, _ := newTestGenerationService(llm.MockResponse{Content: raw})
	profile := testProfile()

	quiz, fellBack := svc.GenerateQuiz(context.Background(), &profile, "math", "fractions", 1)
	assert.False(t, fellBack)
	assert.Equal(t, "math", quiz.Subject)
	assert.Equal(t, "fractions", quiz.Topic)
	require.Len(t, quiz.Questions, 1)
}

func TestGenerateLearningPathFallbackCoversAllSubjects(t *testing.T) {
	svc, _ := newTestGenerationService(llm.MockResponse{Err: &llm.ErrProviderUnavailable{}})
	profile := testProfile()

	plan, fellBack := svc.GenerateLearningPath(context.Background(), &profile)
	assert.True(t, fellBack)
	require.NotNil(t, plan)
	require.Len(t, plan.Milestones, len(profile.Subjects))
	assert.Equal(t, "math", plan.Milestones[0].Subject)
}

func TestAnswerQuestionNeverErrors(t *testing.T) {
	svc, _ := newTestGenerationService() // empty queue: every call fails
	profile := testProfile()

	answer, fellBack := svc.AnswerQuestion(context.Background(), &profile, "What is a derivative?")
	assert.True(t, fellBack)
	require.NotNil(t, answer)
	assert.NotEmpty(t, answer.Answer)
}

func TestGenerationCacheKeyIsStablePerPrompt(t *testing.T) {
	a := generationCacheKey(KindQuiz, "prompt one")
	b := generationCacheKey(KindQuiz, "prompt one")
	c := generationCacheKey(KindQuiz, "prompt two")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Contains(t, a, "gen:cache:"+KindQuiz+":")
}
