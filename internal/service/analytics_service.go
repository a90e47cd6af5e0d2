package service

import (
	"fmt"
	"time"

	"studypath_backend/internal/model"
	"studypath_backend/internal/util"
)

// SkillRadarEntry feeds one spoke of the skill radar chart.
type SkillRadarEntry struct {
	Subject  string  `json:"subject"`
	Current  float64 `json:"current"`
	Target   float64 `json:"target"`
	FullMark int     `json:"fullMark"`
}

// WeeklyProgressPoint is one week's per-subject score series.
type WeeklyProgressPoint struct {
	Week      string             `json:"week"`
	WeekStart time.Time          `json:"weekStart"`
	Scores    map[string]float64 `json:"scores"`
}

// LearningOverview summarizes the record for the analytics dashboard.
type LearningOverview struct {
	OverallProgress  float64                   `json:"overallProgress"`
	TotalPoints      int                       `json:"totalPoints"`
	StreakDays       int                       `json:"streakDays"`
	QuizzesTaken     int                       `json:"quizzesTaken"`
	LessonsGenerated int                       `json:"lessonsGenerated"`
	CompletedModules int                       `json:"completedModules"`
	Subjects         []model.SubjectPreference `json:"subjects"`
}

// ComputeOverallProgress averages 100*current/target over the profile's
// subjects. Returns 0 for a profile with no subjects.
func ComputeOverallProgress(profile *model.Profile) float64 {
	if len(profile.Subjects) == 0 {
		return 0
	}
	var sum float64
	for _, s := range profile.Subjects {
		if s.TargetLevel == 0 {
			continue
		}
		sum += 100 * s.CurrentLevel / s.TargetLevel
	}
	return sum / float64(len(profile.Subjects))
}

// ComputeSkillRadar maps subject levels onto a 100-point radar scale.
func ComputeSkillRadar(profile *model.Profile) []SkillRadarEntry {
	entries := make([]SkillRadarEntry, 0, len(profile.Subjects))
	for _, s := range profile.Subjects {
		entries = append(entries, SkillRadarEntry{
			Subject:  s.Subject,
			Current:  s.CurrentLevel * 10,
			Target:   s.TargetLevel * 10,
			FullMark: 100,
		})
	}
	return entries
}

// ComputeWeeklyProgressSeries partitions the last weekCount 7-day
// windows ending at now. Each week holds, per subject, the average quiz
// score inside that window. A week with no attempts carries the
// previous week's value forward; with no previous value it falls back
// to currentLevel*10. The backfill deliberately uses the present-day
// level for past weeks, matching chart continuity over historical
// accuracy.
func ComputeWeeklyProgressSeries(profile *model.Profile, quizHistory []model.QuizAttempt, weekCount int, now time.Time) []WeeklyProgressPoint {
	if weekCount <= 0 {
		weekCount = 8
	}

	series := make([]WeeklyProgressPoint, 0, weekCount)
	prev := make(map[string]float64)

	// Oldest window first so forward-fill flows toward the present.
	for i := weekCount - 1; i >= 0; i-- {
		end := now.AddDate(0, 0, -7*i)
		start := end.AddDate(0, 0, -7)

		point := WeeklyProgressPoint{
			Week:      fmt.Sprintf("Week %d", weekCount-i),
			WeekStart: start,
			Scores:    make(map[string]float64, len(profile.Subjects)),
		}

		for _, subject := range profile.Subjects {
			var sum float64
			var count int
			for _, attempt := range quizHistory {
				if attempt.Subject != subject.Subject {
					continue
				}
				if attempt.CompletedAt.After(start) && !attempt.CompletedAt.After(end) {
					sum += float64(attempt.Score)
					count++
				}
			}

			var value float64
			switch {
			case count > 0:
				value = sum / float64(count)
			default:
				if carried, ok := prev[subject.Subject]; ok {
					value = carried
				} else {
					value = subject.CurrentLevel * 10
				}
			}

			point.Scores[subject.Subject] = value
			prev[subject.Subject] = value
		}

		series = append(series, point)
	}

	return series
}

// AnalyticsService folds the student record into dashboard views. It is
// stateless; everything is recomputed from the current snapshot.
type AnalyticsService struct {
	Record *RecordService
}

func NewAnalyticsService(record *RecordService) *AnalyticsService {
	return &AnalyticsService{Record: record}
}

func (s *AnalyticsService) GetOverview(key string) (*LearningOverview, error) {
	data, ok := s.Record.Read(key)
	if !ok {
		return nil, util.ErrNoActiveRecord
	}

	return &LearningOverview{
		OverallProgress:  ComputeOverallProgress(&data.Profile),
		TotalPoints:      data.Stats.TotalPoints,
		StreakDays:       data.Stats.StreakDays,
		QuizzesTaken:     len(data.QuizHistory),
		LessonsGenerated: len(data.ContentLibrary),
		CompletedModules: len(data.CompletedModules),
		Subjects:         data.Profile.Subjects,
	}, nil
}

func (s *AnalyticsService) GetWeeklyProgress(key string, weeks int) ([]WeeklyProgressPoint, error) {
	data, ok := s.Record.Read(key)
	if !ok {
		return nil, util.ErrNoActiveRecord
	}
	return ComputeWeeklyProgressSeries(&data.Profile, data.QuizHistory, weeks, time.Now()), nil
}

func (s *AnalyticsService) GetSkillRadar(key string) ([]SkillRadarEntry, error) {
	data, ok := s.Record.Read(key)
	if !ok {
		return nil, util.ErrNoActiveRecord
	}
	return ComputeSkillRadar(&data.Profile), nil
}
