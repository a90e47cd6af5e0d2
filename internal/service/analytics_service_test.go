package service

import (
	"testing"
	"time"

	"studypath_backend/internal/model"
	"studypath_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeOverallProgress(t *testing.T) {
	assert.Equal(t, 0.0, ComputeOverallProgress(&model.Profile{}))

	profile := &model.Profile{Subjects: []model.SubjectPreference{
		{Subject: "math", CurrentLevel: 5, TargetLevel: 8},
		{Subject: "physics", CurrentLevel: 4, TargetLevel: 8},
	}}
	assert.InDelta(t, 56.25, ComputeOverallProgress(profile), 1e-9)

	done := &model.Profile{Subjects: []model.SubjectPreference{
		{Subject: "math", CurrentLevel: 8, TargetLevel: 8},
	}}
	assert.InDelta(t, 100, ComputeOverallProgress(done), 1e-9)

	mixed := &model.Profile{Subjects: []model.SubjectPreference{
		{Subject: "math", CurrentLevel: 5, TargetLevel: 10},
		{Subject: "physics", CurrentLevel: 6, TargetLevel: 8},
	}}
	assert.InDelta(t, 62.5, ComputeOverallProgress(mixed), 1e-9)
}

func TestComputeSkillRadar(t *testing.T) {
	profile := &model.Profile{Subjects: []model.SubjectPreference{
		{Subject: "math", CurrentLevel: 5.1, TargetLevel: 8},
	}}

	radar := ComputeSkillRadar(profile)
	require.Len(t, radar, 1)
	assert.Equal(t, "math", radar[0].Subject)
	assert.InDelta(t, 51, radar[0].Current, 1e-9)
	assert.InDelta(t, 80, radar[0].Target, 1e-9)
	assert.Equal(t, 100, radar[0].FullMark)

	assert.Empty(t, ComputeSkillRadar(&model.Profile{}))
}

func TestWeeklyProgressAveragesWithinWindows(t *testing.T) {
	now := time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)
	profile := &model.Profile{Subjects: []model.SubjectPreference{
		{Subject: "math", CurrentLevel: 5, TargetLevel: 8},
	}}

	history := []model.QuizAttempt{
		{Subject: "math", Score: 60, CompletedAt: now.AddDate(0, 0, -10)},
		{Subject: "math", Score: 80, CompletedAt: now.AddDate(0, 0, -9)},
		{Subject: "math", Score: 90, CompletedAt: now.AddDate(0, 0, -1)},
	}

	series := ComputeWeeklyProgressSeries(profile, history, 3, now)
	require.Len(t, series, 3)

	assert.Equal(t, "Week 1", series[0].Week)
	assert.Equal(t, "Week 3", series[2].Week)

	// Oldest window has no attempts: backfilled from the current level.
	assert.InDelta(t, 50, series[0].Scores["math"], 1e-9)
	// Middle window averages the two attempts inside it.
	assert.InDelta(t, 70, series[1].Scores["math"], 1e-9)
	// Latest window holds the single recent attempt.
	assert.InDelta(t, 90, series[2].Scores["math"], 1e-9)
}

func TestWeeklyProgressForwardFillsGaps(t *testing.T) {
	now := time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)
	profile := &model.Profile{Subjects: []model.SubjectPreference{
		{Subject: "math", CurrentLevel: 5, TargetLevel: 8},
	}}

	// One attempt three weeks back, then silence.
	history := []model.QuizAttempt{
		{Subject: "math", Score: 75, CompletedAt: now.AddDate(0, 0, -16)},
	}

	series := ComputeWeeklyProgressSeries(profile, history, 4, now)
	require.Len(t, series, 4)

	assert.InDelta(t, 50, series[0].Scores["math"], 1e-9)
	assert.InDelta(t, 75, series[1].Scores["math"], 1e-9)
	assert.InDelta(t, 75, series[2].Scores["math"], 1e-9, "empty week carries the previous value")
	assert.InDelta(t, 75, series[3].Scores["math"], 1e-9)
}

func TestWeeklyProgressDefaultsWeekCount(t *testing.T) {
	profile := &model.Profile{Subjects: []model.SubjectPreference{
		{Subject: "math", CurrentLevel: 5, TargetLevel: 8},
	}}

	series := ComputeWeeklyProgressSeries(profile, nil, 0, time.Now())
	assert.Len(t, series, 8)
}

func TestAnalyticsServiceRequiresRecord(t *testing.T) {
	record := newTestRecordService()
	analytics := NewAnalyticsService(record)
	key := RecordKey(1)

	_, err := analytics.GetOverview(key)
	assert.ErrorIs(t, err, util.ErrNoActiveRecord)
	_, err = analytics.GetWeeklyProgress(key, 4)
	assert.ErrorIs(t, err, util.ErrNoActiveRecord)
	_, err = analytics.GetSkillRadar(key)
	assert.ErrorIs(t, err, util.ErrNoActiveRecord)
}

func TestAnalyticsOverviewCountsArtifacts(t *testing.T) {
	record := newTestRecordService()
	analytics := NewAnalyticsService(record)
	key := RecordKey(1)

	require.NoError(t, record.Replace(key, model.NewStudentData(testProfile())))
	_, err := record.SaveGeneratedContent(key, ContentInput{Subject: "math", Topic: "fractions"})
	require.NoError(t, err)
	_, err = record.SaveQuizAttempt(key, AttemptInput{Subject: "math", Score: 70})
	require.NoError(t, err)
	record.LogActivity(key, ActivityInput{Subject: "math", Type: "lesson"})

	overview, err := analytics.GetOverview(key)
	require.NoError(t, err)
	assert.Equal(t, 1, overview.QuizzesTaken)
	assert.Equal(t, 1, overview.LessonsGenerated)
	assert.Equal(t, 0, overview.CompletedModules)
	assert.Equal(t, DefaultActivityPoints, overview.TotalPoints)
	assert.Len(t, overview.Subjects, 2)
}
