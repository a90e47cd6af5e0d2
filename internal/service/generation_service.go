package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"studypath_backend/internal/config"
	"studypath_backend/internal/llm"
	"studypath_backend/internal/model"
	"studypath_backend/pkg/logger"
	"studypath_backend/pkg/monitoring"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// GenerationService fronts the hosted generation collaborator. Every
// method returns well-formed content: on any failure (network,
// malformed response, timeout) it substitutes the local fallback of the
// same shape, so failures never propagate past this boundary. Results
// are cached briefly in redis keyed by a prompt hash.
type GenerationService struct {
	Provider llm.Provider
	Redis    *redis.Client
	Cfg      config.LLMConfig
}

func NewGenerationService(provider llm.Provider, rdb *redis.Client, cfg config.LLMConfig) *GenerationService {
	return &GenerationService{
		Provider: provider,
		Redis:    rdb,
		Cfg:      cfg,
	}
}

// GenerateContent produces a personalized lesson. The second return
// value reports whether the fallback was substituted.
func (s *GenerationService) GenerateContent(ctx context.Context, profile *model.Profile, subject, topic string) (*model.ContentBody, bool) {
	prompt := profileSummary(profile) +
		fmt.Sprintf("\nWrite a lesson on %q for the subject %q. Match the learner's level and learning styles. Include worked examples, practical tips and, when helpful, YouTube search phrases.", topic, subject)

	var body model.ContentBody
	if ok := s.generate(ctx, KindPersonalizedContent, prompt, contentSchema, &body); !ok {
		return fallbackContent(subject, topic), true
	}
	return &body, false
}

// GenerateQuiz produces a multiple-choice quiz for one topic.
func (s *GenerationService) GenerateQuiz(ctx context.Context, profile *model.Profile, subject, topic string, questionCount int) (*GeneratedQuiz, bool) {
	if questionCount <= 0 {
		questionCount = 5
	}
	prompt := profileSummary(profile) +
		fmt.Sprintf("\nCreate a %d-question multiple-choice quiz on %q for the subject %q. Four options per question, exactly one correct. Pitch the difficulty at the learner's current level.", questionCount, topic, subject)

	var quiz GeneratedQuiz
	if ok := s.generate(ctx, KindQuiz, prompt, quizSchema, &quiz); !ok {
		return fallbackQuiz(subject, topic), true
	}
	quiz.Subject = subject
	quiz.Topic = topic
	return &quiz, false
}

// GenerateLearningPath produces an adaptive study plan across all of
// the learner's subjects.
func (s *GenerationService) GenerateLearningPath(ctx context.Context, profile *model.Profile) (*LearningPathPlan, bool) {
	prompt := profileSummary(profile) +
		"\nDesign a study plan that closes the gap between each subject's current and target level within the learner's weekly hours. Order milestones by subject priority."

	var plan LearningPathPlan
	if ok := s.generate(ctx, KindLearningPath, prompt, learningPathSchema, &plan); !ok {
		return fallbackLearningPath(profile), true
	}
	return &plan, false
}

// AnswerQuestion produces a tutoring answer to a free-form question.
func (s *GenerationService) AnswerQuestion(ctx context.Context, profile *model.Profile, question string) (*TutorAnswer, bool) {
	prompt := profileSummary(profile) + "\nQuestion: " + question

	var answer TutorAnswer
	if ok := s.generate(ctx, KindTutorAnswer, prompt, tutorSchema, &answer); !ok {
		return fallbackTutorAnswer(), true
	}
	return &answer, false
}

// generate runs one schema-validated request through cache, provider
// and decode. It reports false on any failure; callers substitute the
// fallback.
func (s *GenerationService) generate(ctx context.Context, kind, prompt string, schema *llm.Schema, out any) bool {
	cacheKey := generationCacheKey(kind, prompt)

	if raw, ok := s.cacheGet(ctx, cacheKey); ok {
		if err := json.Unmarshal(raw, out); err == nil {
			monitoring.GenerationCounter.WithLabelValues(kind, "cache_hit").Inc()
			return true
		}
		// Unreadable cache entries are dropped and regenerated.
		s.Redis.Del(ctx, cacheKey)
	}

	if s.Cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Cfg.Timeout)
		defer cancel()
	}

	resp, err := s.Provider.Generate(ctx, llm.Request{
		System:      tutorSystemPrompt,
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: prompt}},
		Schema:      schema,
		MaxTokens:   s.Cfg.MaxTokens,
		Temperature: s.Cfg.Temperature,
	})
	if err != nil {
		logger.Log.Warn("generation failed, substituting fallback",
			zap.String("kind", kind), zap.Error(err))
		monitoring.GenerationCounter.WithLabelValues(kind, "fallback").Inc()
		return false
	}

	if err := json.Unmarshal(resp.Content, out); err != nil {
		logger.Log.Warn("generation returned undecodable JSON, substituting fallback",
			zap.String("kind", kind), zap.Error(err))
		monitoring.GenerationCounter.WithLabelValues(kind, "fallback").Inc()
		return false
	}

	s.cacheSet(ctx, cacheKey, resp.Content)
	monitoring.GenerationCounter.WithLabelValues(kind, "generated").Inc()
	return true
}

func generationCacheKey(kind, prompt string) string {
	sum := sha256.Sum256([]byte(prompt))
	return "gen:cache:" + kind + ":" + hex.EncodeToString(sum[:8])
}

func (s *GenerationService) cacheGet(ctx context.Context, key string) (json.RawMessage, bool) {
	if s.Redis == nil {
		return nil, false
	}
	raw, err := s.Redis.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}
	return raw, true
}

func (s *GenerationService) cacheSet(ctx context.Context, key string, raw json.RawMessage) {
	if s.Redis == nil {
		return
	}
	if err := s.Redis.Set(ctx, key, []byte(raw), s.Cfg.CacheTTL).Err(); err != nil {
		logger.Log.Debug("generation cache write failed", zap.Error(err))
	}
}
