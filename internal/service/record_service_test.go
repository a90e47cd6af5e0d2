package service

import (
	"fmt"
	"testing"
	"time"

	"studypath_backend/internal/model"
	"studypath_backend/internal/repository"
	"studypath_backend/internal/util"
	"studypath_backend/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	logger.Log = zap.NewNop()
}

func newTestRecordService() *RecordService {
	s := NewRecordService(repository.NewMemorySlotStore())
	seq := 0
	s.newID = func() string {
		seq++
		return fmt.Sprintf("id-%d", seq)
	}
	s.now = func() time.Time {
		return time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)
	}
	return s
}

func testProfile() model.Profile {
	return model.Profile{
		Name:       "Ada",
		Age:        16,
		GradeLevel: "10",
		Subjects: []model.SubjectPreference{
			{Subject: "math", Priority: 1, CurrentLevel: 5, TargetLevel: 8, WeeklyHours: 4},
			{Subject: "physics", Priority: 2, CurrentLevel: 4, TargetLevel: 8, WeeklyHours: 2},
		},
		StudyDays:    []string{"mon", "wed", "fri"},
		DailyMinutes: 45,
	}
}

func TestReplaceThenReadRoundTrip(t *testing.T) {
	s := newTestRecordService()
	key := RecordKey(1)

	data := model.NewStudentData(testProfile())
	require.NoError(t, s.Replace(key, data))

	got, ok := s.Read(key)
	require.True(t, ok)
	assert.Equal(t, data, got)
	assert.Equal(t, model.StudentDataSchemaVersion, got.SchemaVersion)
}

func TestReplaceRejectsInvalidProfile(t *testing.T) {
	s := newTestRecordService()

	dup := testProfile()
	dup.Subjects = append(dup.Subjects, model.SubjectPreference{Subject: "math", CurrentLevel: 3, TargetLevel: 6})
	err := s.Replace(RecordKey(1), model.NewStudentData(dup))
	assert.ErrorIs(t, err, util.ErrInvalidProfile)

	outOfRange := testProfile()
	outOfRange.Subjects[0].CurrentLevel = 11
	err = s.Replace(RecordKey(1), model.NewStudentData(outOfRange))
	assert.ErrorIs(t, err, util.ErrInvalidProfile)

	_, ok := s.Read(RecordKey(1))
	assert.False(t, ok, "rejected replace must not write")
}

func TestMergeWithoutRecordFails(t *testing.T) {
	s := newTestRecordService()

	_, err := s.Merge(RecordKey(1), RecordPatch{CompletedModules: &[]string{"m1"}})
	assert.ErrorIs(t, err, util.ErrNoActiveRecord)
}

func TestMergeUpdatesOnlyProvidedFields(t *testing.T) {
	s := newTestRecordService()
	key := RecordKey(1)
	require.NoError(t, s.Replace(key, model.NewStudentData(testProfile())))

	stats := model.StudentStats{StreakDays: 3, TotalPoints: 120}
	got, err := s.Merge(key, RecordPatch{
		Stats:            &stats,
		CompletedModules: &[]string{"algebra-1"},
	})
	require.NoError(t, err)

	assert.Equal(t, stats, got.Stats)
	assert.Equal(t, []string{"algebra-1"}, got.CompletedModules)
	assert.Equal(t, testProfile(), got.Profile, "untouched fields survive")

	persisted, ok := s.Read(key)
	require.True(t, ok)
	assert.Equal(t, got, persisted)
}

func TestMergeRejectsInvalidProfilePatch(t *testing.T) {
	s := newTestRecordService()
	key := RecordKey(1)
	require.NoError(t, s.Replace(key, model.NewStudentData(testProfile())))

	bad := testProfile()
	bad.Subjects[0].TargetLevel = 0
	_, err := s.Merge(key, RecordPatch{Profile: &bad})
	assert.ErrorIs(t, err, util.ErrInvalidProfile)

	got, ok := s.Read(key)
	require.True(t, ok)
	assert.Equal(t, testProfile(), got.Profile, "rejected merge leaves the record unchanged")
}

func TestResetIsIdempotentAndPurges(t *testing.T) {
	s := newTestRecordService()
	key := RecordKey(1)

	require.NoError(t, s.Reset(key), "reset of an absent record succeeds")

	require.NoError(t, s.Replace(key, model.NewStudentData(testProfile())))
	require.NoError(t, s.Reset(key))

	_, ok := s.Read(key)
	assert.False(t, ok)

	_, ok, err := s.Slot.Get(key)
	require.NoError(t, err)
	assert.False(t, ok, "slot value is purged, not just hidden")

	require.NoError(t, s.Reset(key), "second reset is still fine")
}

func TestLogActivityAppendsAndAddsPoints(t *testing.T) {
	s := newTestRecordService()
	key := RecordKey(1)
	require.NoError(t, s.Replace(key, model.NewStudentData(testProfile())))

	got := s.LogActivity(key, ActivityInput{Subject: "math", Topic: "fractions", Type: "lesson"})
	require.NotNil(t, got)
	assert.Equal(t, DefaultActivityPoints, got.Stats.TotalPoints)
	require.Len(t, got.ActivityLog, 1)

	score := 25
	got = s.LogActivity(key, ActivityInput{Subject: "math", Type: "quiz", Score: &score})
	require.NotNil(t, got)
	assert.Equal(t, DefaultActivityPoints+25, got.Stats.TotalPoints)
	require.Len(t, got.ActivityLog, 2)
	assert.Equal(t, "quiz", got.ActivityLog[0].Type, "newest entry is first")

	persisted, ok := s.Read(key)
	require.True(t, ok)
	assert.Equal(t, got.Stats.TotalPoints, persisted.Stats.TotalPoints)
	assert.Len(t, persisted.ActivityLog, 2)
}

func TestLogActivityWithoutRecordIsNoOp(t *testing.T) {
	s := newTestRecordService()
	key := RecordKey(1)

	got := s.LogActivity(key, ActivityInput{Type: "lesson"})
	assert.Nil(t, got)

	_, ok := s.Read(key)
	assert.False(t, ok)
}

func TestSaveGeneratedContentAssignsDistinctIDsInOrder(t *testing.T) {
	s := newTestRecordService()
	key := RecordKey(1)
	require.NoError(t, s.Replace(key, model.NewStudentData(testProfile())))

	first, err := s.SaveGeneratedContent(key, ContentInput{Subject: "math", Topic: "fractions", ContentType: "lesson"})
	require.NoError(t, err)
	second, err := s.SaveGeneratedContent(key, ContentInput{Subject: "math", Topic: "decimals", ContentType: "lesson"})
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)

	got, ok := s.Read(key)
	require.True(t, ok)
	require.Len(t, got.ContentLibrary, 2)
	assert.Equal(t, "fractions", got.ContentLibrary[0].Topic)
	assert.Equal(t, "decimals", got.ContentLibrary[1].Topic)
}

func TestSaveGeneratedContentWithoutRecordFails(t *testing.T) {
	s := newTestRecordService()

	_, err := s.SaveGeneratedContent(RecordKey(1), ContentInput{Subject: "math", Topic: "fractions"})
	assert.ErrorIs(t, err, util.ErrNoActiveRecord)
}

func TestSaveQuizAttemptNudgesLevel(t *testing.T) {
	cases := []struct {
		name       string
		startLevel float64
		score      int
		wantLevel  float64
	}{
		{"high score raises", 5, 95, 5.1},
		{"low score lowers", 5, 30, 4.9},
		{"middle score holds", 5, 65, 5},
		{"boundary 80 holds", 5, 80, 5},
		{"boundary 50 holds", 5, 50, 5},
		{"clamped at ceiling", 9.95, 95, 10},
		{"clamped at floor", 1.05, 30, 1},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := newTestRecordService()
			key := RecordKey(1)

			profile := testProfile()
			profile.Subjects[0].CurrentLevel = tc.startLevel
			require.NoError(t, s.Replace(key, model.NewStudentData(profile)))

			_, err := s.SaveQuizAttempt(key, AttemptInput{Subject: "math", Score: tc.score})
			require.NoError(t, err)

			got, ok := s.Read(key)
			require.True(t, ok)
			assert.Equal(t, tc.wantLevel, got.Profile.Subjects[0].CurrentLevel)
			assert.Equal(t, 4.0, got.Profile.Subjects[1].CurrentLevel, "other subjects untouched")
			require.Len(t, got.QuizHistory, 1)
			assert.Equal(t, tc.score, got.QuizHistory[0].Score)
		})
	}
}

func TestSaveQuizAttemptUnknownSubjectStillRecorded(t *testing.T) {
	s := newTestRecordService()
	key := RecordKey(1)
	require.NoError(t, s.Replace(key, model.NewStudentData(testProfile())))

	_, err := s.SaveQuizAttempt(key, AttemptInput{Subject: "chemistry", Score: 95})
	require.NoError(t, err)

	got, ok := s.Read(key)
	require.True(t, ok)
	assert.Len(t, got.QuizHistory, 1)
	assert.Equal(t, 5.0, got.Profile.Subjects[0].CurrentLevel)
}

func TestReadTreatsCorruptValueAsAbsent(t *testing.T) {
	s := newTestRecordService()
	key := RecordKey(1)

	require.NoError(t, s.Slot.Set(key, "{not json"))
	_, ok := s.Read(key)
	assert.False(t, ok)
}

func TestReadTreatsNewerSchemaAsAbsent(t *testing.T) {
	s := newTestRecordService()
	key := RecordKey(1)

	require.NoError(t, s.Slot.Set(key, `{"schemaVersion": 99}`))
	_, ok := s.Read(key)
	assert.False(t, ok)
}

func TestScoreQuiz(t *testing.T) {
	questions := []model.QuizQuestion{
		{ID: "q1", CorrectAnswer: "a"},
		{ID: "q2", CorrectAnswer: "b"},
		{ID: "q3", CorrectAnswer: "c"},
	}

	assert.Equal(t, 0, ScoreQuiz(nil, nil))
	assert.Equal(t, 0, ScoreQuiz(questions, map[string]string{}))
	assert.Equal(t, 100, ScoreQuiz(questions, map[string]string{"q1": "a", "q2": "b", "q3": "c"}))
	assert.Equal(t, 67, ScoreQuiz(questions, map[string]string{"q1": "a", "q2": "b", "q3": "x"}))
	assert.Equal(t, 33, ScoreQuiz(questions, map[string]string{"q1": "a"}))
}

func TestRecordKey(t *testing.T) {
	assert.Equal(t, "student:data:42", RecordKey(42))
}
