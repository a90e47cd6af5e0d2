package service

import (
	"fmt"
	"testing"

	"studypath_backend/internal/model"
	"studypath_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDashboardRequiresRecord(t *testing.T) {
	record := newTestRecordService()
	dash := NewDashboardService(record, NewAnalyticsService(record))

	_, err := dash.GetDashboard(RecordKey(1))
	assert.ErrorIs(t, err, util.ErrNoActiveRecord)
}

func TestDashboardAggregatesRecentItems(t *testing.T) {
	record := newTestRecordService()
	dash := NewDashboardService(record, NewAnalyticsService(record))
	key := RecordKey(1)

	require.NoError(t, record.Replace(key, model.NewStudentData(testProfile())))

	for i := 0; i < 7; i++ {
		record.LogActivity(key, ActivityInput{Subject: "math", Topic: fmt.Sprintf("t%d", i), Type: "lesson"})
		_, err := record.SaveQuizAttempt(key, AttemptInput{Subject: "math", Topic: fmt.Sprintf("t%d", i), Score: 60})
		require.NoError(t, err)
	}

	got, err := dash.GetDashboard(key)
	require.NoError(t, err)

	assert.Equal(t, "Ada", got.StudentName)
	assert.Equal(t, 7*DefaultActivityPoints, got.TotalPoints)
	assert.Len(t, got.RecentActivities, 5)
	assert.Equal(t, "t6", got.RecentActivities[0].Topic, "activity log is newest first")
	assert.Len(t, got.RecentQuizzes, 5)
	assert.Equal(t, "t6", got.RecentQuizzes[0].Topic, "quiz history is reversed for display")
}
