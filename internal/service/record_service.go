package service

import (
	"encoding/json"
	"fmt"
	"math"
	"sync"
	"time"

	"studypath_backend/internal/model"
	"studypath_backend/internal/repository"
	"studypath_backend/internal/util"
	"studypath_backend/pkg/logger"

	"go.uber.org/zap"
)

// DefaultActivityPoints is awarded for an activity without an explicit
// score. Fixed constant, not configurable.
const DefaultActivityPoints = 10

// RecordService owns the StudentData aggregate. All mutations are
// read-modify-commit against the decoded snapshot: load the JSON value
// from the slot, mutate a fresh copy, write the whole aggregate back.
// Readers therefore observe exactly one atomic transition per
// operation. A per-key mutex serializes overlapping requests for the
// same learner; cross-instance writers are not supported (last write
// wins).
type RecordService struct {
	Slot repository.SlotStore

	locks sync.Map // key -> *sync.Mutex

	// overridable in tests
	now   func() time.Time
	newID func() string
}

func NewRecordService(slot repository.SlotStore) *RecordService {
	return &RecordService{
		Slot:  slot,
		now:   time.Now,
		newID: model.GenerateUUID,
	}
}

// RecordKey derives the slot key for a learner.
func RecordKey(userID uint) string {
	return fmt.Sprintf("student:data:%d", userID)
}

func (s *RecordService) lock(key string) *sync.Mutex {
	v, _ := s.locks.LoadOrStore(key, &sync.Mutex{})
	return v.(*sync.Mutex)
}

// Read returns the learner's aggregate, or ok=false when no record
// exists. No side effects.
func (s *RecordService) Read(key string) (*model.StudentData, bool) {
	raw, ok, err := s.Slot.Get(key)
	if err != nil || !ok {
		return nil, false
	}
	return s.decode(key, raw)
}

func (s *RecordService) decode(key, raw string) (*model.StudentData, bool) {
	var data model.StudentData
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		logger.Log.Error("corrupt student record, treating as absent",
			zap.String("key", key), zap.Error(err))
		return nil, false
	}
	if data.SchemaVersion > model.StudentDataSchemaVersion {
		logger.Log.Warn("student record written by a newer schema, treating as absent",
			zap.String("key", key), zap.Int("version", data.SchemaVersion))
		return nil, false
	}
	return &data, true
}

func (s *RecordService) commit(key string, data *model.StudentData) error {
	data.SchemaVersion = model.StudentDataSchemaVersion
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return s.Slot.Set(key, string(raw))
}

// Replace wholesale-sets the aggregate (onboarding completion).
func (s *RecordService) Replace(key string, data *model.StudentData) error {
	if !data.Profile.Validate() {
		return util.ErrInvalidProfile
	}

	mu := s.lock(key)
	mu.Lock()
	defer mu.Unlock()

	return s.commit(key, data)
}

// RecordPatch shallow-merges top-level fields into the aggregate.
// Nil fields are left untouched.
type RecordPatch struct {
	Profile          *model.Profile            `json:"profile,omitempty"`
	ContentLibrary   *[]model.GeneratedContent `json:"contentLibrary,omitempty"`
	QuizHistory      *[]model.QuizAttempt      `json:"quizHistory,omitempty"`
	ActivityLog      *[]model.LearningActivity `json:"activityLog,omitempty"`
	CompletedModules *[]string                 `json:"completedModules,omitempty"`
	Stats            *model.StudentStats       `json:"stats,omitempty"`
}

// Merge applies a partial update. Fails with ErrNoActiveRecord when the
// learner has not onboarded (or has reset).
func (s *RecordService) Merge(key string, patch RecordPatch) (*model.StudentData, error) {
	mu := s.lock(key)
	mu.Lock()
	defer mu.Unlock()

	data, ok := s.Read(key)
	if !ok {
		return nil, util.ErrNoActiveRecord
	}

	if patch.Profile != nil {
		if !patch.Profile.Validate() {
			return nil, util.ErrInvalidProfile
		}
		data.Profile = *patch.Profile
	}
	if patch.ContentLibrary != nil {
		data.ContentLibrary = *patch.ContentLibrary
	}
	if patch.QuizHistory != nil {
		data.QuizHistory = *patch.QuizHistory
	}
	if patch.ActivityLog != nil {
		data.ActivityLog = *patch.ActivityLog
	}
	if patch.CompletedModules != nil {
		data.CompletedModules = *patch.CompletedModules
	}
	if patch.Stats != nil {
		data.Stats = *patch.Stats
	}

	if err := s.commit(key, data); err != nil {
		return nil, err
	}
	return data, nil
}

// ActivityInput describes a trackable action. ID and timestamp are
// assigned by the store.
type ActivityInput struct {
	Subject string `json:"subject"`
	Topic   string `json:"topic"`
	Type    string `json:"type" binding:"required"`
	Score   *int   `json:"score,omitempty"`
}

// LogActivity appends a LearningActivity to the front of the log and
// adds the activity's score (or the flat default) to total points. The
// append and the increment commit together; a reader never observes one
// without the other. When no record exists this is a silent no-op.
func (s *RecordService) LogActivity(key string, input ActivityInput) *model.StudentData {
	mu := s.lock(key)
	mu.Lock()
	defer mu.Unlock()

	data, ok := s.Read(key)
	if !ok {
		return nil
	}

	points := DefaultActivityPoints
	if input.Score != nil {
		points = *input.Score
	}

	activity := model.LearningActivity{
		ID:          s.newID(),
		Subject:     input.Subject,
		Topic:       input.Topic,
		Type:        input.Type,
		Score:       input.Score,
		CompletedAt: s.now(),
	}

	data.ActivityLog = append([]model.LearningActivity{activity}, data.ActivityLog...)
	data.Stats.TotalPoints += points

	if err := s.commit(key, data); err != nil {
		logger.Log.Error("failed to commit activity", zap.String("key", key), zap.Error(err))
		return nil
	}
	return data
}

// ContentInput is a generated lesson minus the store-assigned fields.
type ContentInput struct {
	Subject     string            `json:"subject" binding:"required"`
	Topic       string            `json:"topic" binding:"required"`
	ContentType string            `json:"contentType"`
	Body        model.ContentBody `json:"body"`
}

// SaveGeneratedContent appends to the content library with a generated
// id and timestamp. Insertion order is preserved for display grouping.
func (s *RecordService) SaveGeneratedContent(key string, input ContentInput) (*model.GeneratedContent, error) {
	mu := s.lock(key)
	mu.Lock()
	defer mu.Unlock()

	data, ok := s.Read(key)
	if !ok {
		return nil, util.ErrNoActiveRecord
	}

	content := model.GeneratedContent{
		ID:          s.newID(),
		Subject:     input.Subject,
		Topic:       input.Topic,
		ContentType: input.ContentType,
		Body:        input.Body,
		CreatedAt:   s.now(),
	}

	data.ContentLibrary = append(data.ContentLibrary, content)

	if err := s.commit(key, data); err != nil {
		return nil, err
	}
	return &content, nil
}

// AttemptInput is a completed quiz minus the store-assigned fields.
type AttemptInput struct {
	Subject     string               `json:"subject" binding:"required"`
	Topic       string               `json:"topic"`
	Questions   []model.QuizQuestion `json:"questions"`
	UserAnswers map[string]string    `json:"userAnswers"`
	Score       int                  `json:"score"`
}

// SaveQuizAttempt appends to the quiz history and nudges the matching
// subject's current level: above 80 raises it by 0.1, below 50 lowers
// it by 0.1, clamped to [1,10] and rounded to one decimal. A simple
// threshold nudge, deliberately not a mastery model.
func (s *RecordService) SaveQuizAttempt(key string, input AttemptInput) (*model.QuizAttempt, error) {
	mu := s.lock(key)
	mu.Lock()
	defer mu.Unlock()

	data, ok := s.Read(key)
	if !ok {
		return nil, util.ErrNoActiveRecord
	}

	attempt := model.QuizAttempt{
		ID:          s.newID(),
		Subject:     input.Subject,
		Topic:       input.Topic,
		Questions:   input.Questions,
		UserAnswers: input.UserAnswers,
		Score:       input.Score,
		CompletedAt: s.now(),
	}

	data.QuizHistory = append(data.QuizHistory, attempt)

	for i := range data.Profile.Subjects {
		if data.Profile.Subjects[i].Subject != input.Subject {
			continue
		}
		level := data.Profile.Subjects[i].CurrentLevel
		switch {
		case input.Score > 80:
			level += 0.1
		case input.Score < 50:
			level -= 0.1
		}
		level = math.Min(10, math.Max(1, level))
		data.Profile.Subjects[i].CurrentLevel = math.Round(level*10) / 10
		break
	}

	if err := s.commit(key, data); err != nil {
		return nil, err
	}
	return &attempt, nil
}

// Reset clears the record and purges the underlying slot,
// unconditionally and idempotently. A stale persisted value must never
// resurrect after a reset.
func (s *RecordService) Reset(key string) error {
	mu := s.lock(key)
	mu.Lock()
	defer mu.Unlock()

	return s.Slot.Remove(key)
}

// ScoreQuiz grades submitted answers: round(100 * correct / total).
// An empty quiz scores 0.
func ScoreQuiz(questions []model.QuizQuestion, answers map[string]string) int {
	if len(questions) == 0 {
		return 0
	}
	correct := 0
	for _, q := range questions {
		if answers[q.ID] == q.CorrectAnswer {
			correct++
		}
	}
	return int(math.Round(100 * float64(correct) / float64(len(questions))))
}
