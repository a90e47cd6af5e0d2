package service

import (
	"studypath_backend/internal/model"
	"studypath_backend/internal/util"
)

// DashboardService 聚合仪表盘数据
type DashboardService struct {
	Record    *RecordService
	Analytics *AnalyticsService
}

func NewDashboardService(record *RecordService, analytics *AnalyticsService) *DashboardService {
	return &DashboardService{Record: record, Analytics: analytics}
}

// Dashboard is the aggregate view backing the home screen.
type Dashboard struct {
	StudentName      string                    `json:"studentName"`
	OverallProgress  float64                   `json:"overallProgress"`
	TotalPoints      int                       `json:"totalPoints"`
	StreakDays       int                       `json:"streakDays"`
	Subjects         []model.SubjectPreference `json:"subjects"`
	RecentActivities []model.LearningActivity  `json:"recentActivities"`
	RecentQuizzes    []model.QuizAttempt       `json:"recentQuizzes"`
	ContentCount     int                       `json:"contentCount"`
	CompletedModules []string                  `json:"completedModules"`
}

func (s *DashboardService) GetDashboard(key string) (*Dashboard, error) {
	data, ok := s.Record.Read(key)
	if !ok {
		return nil, util.ErrNoActiveRecord
	}

	dash := &Dashboard{
		StudentName:      data.Profile.Name,
		OverallProgress:  ComputeOverallProgress(&data.Profile),
		TotalPoints:      data.Stats.TotalPoints,
		StreakDays:       data.Stats.StreakDays,
		Subjects:         data.Profile.Subjects,
		ContentCount:     len(data.ContentLibrary),
		CompletedModules: data.CompletedModules,
	}

	// 活动日志最新在前，直接截取
	dash.RecentActivities = data.ActivityLog
	if len(dash.RecentActivities) > 5 {
		dash.RecentActivities = dash.RecentActivities[:5]
	}

	// 测验历史按追加顺序存储，取末尾几条并倒序
	attempts := data.QuizHistory
	n := len(attempts)
	limit := 5
	if n < limit {
		limit = n
	}
	dash.RecentQuizzes = make([]model.QuizAttempt, 0, limit)
	for i := n - 1; i >= n-limit; i-- {
		dash.RecentQuizzes = append(dash.RecentQuizzes, attempts[i])
	}

	return dash, nil
}
