package service

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"studypath_backend/internal/util"
	"studypath_backend/pkg/logger"
)

// ExportService 生成学习进度报表
type ExportService struct {
	Analytics *AnalyticsService
	Storage   *StorageService
}

func NewExportService(analytics *AnalyticsService, storage *StorageService) *ExportService {
	return &ExportService{Analytics: analytics, Storage: storage}
}

// ProgressReport is the result of an export: the xlsx bytes plus, when a
// storage backend is configured, a URL where the file was uploaded.
type ProgressReport struct {
	Filename string `json:"filename"`
	URL      string `json:"url,omitempty"`
	Data     []byte `json:"-"`
}

// BuildProgressReport renders the student's analytics views into a
// three-sheet workbook (overview, weekly progress, skill radar).
func (s *ExportService) BuildProgressReport(ctx context.Context, key string, userID uint) (*ProgressReport, error) {
	overview, err := s.Analytics.GetOverview(key)
	if err != nil {
		return nil, err
	}
	weekly, err := s.Analytics.GetWeeklyProgress(key, 8)
	if err != nil {
		return nil, err
	}
	radar, err := s.Analytics.GetSkillRadar(key)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	// 概览
	sheet := "Overview"
	f.SetSheetName("Sheet1", sheet)
	rows := [][]interface{}{
		{"Overall Progress (%)", overview.OverallProgress},
		{"Total Points", overview.TotalPoints},
		{"Streak Days", overview.StreakDays},
		{"Quizzes Taken", overview.QuizzesTaken},
		{"Lessons Generated", overview.LessonsGenerated},
		{"Completed Modules", overview.CompletedModules},
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, err
		}
	}

	// 周进度
	weeklySheet := "Weekly Progress"
	if _, err := f.NewSheet(weeklySheet); err != nil {
		return nil, err
	}
	subjects := make([]string, 0, len(overview.Subjects))
	for _, sp := range overview.Subjects {
		subjects = append(subjects, sp.Subject)
	}
	header := []interface{}{"Week", "Week Start"}
	for _, subj := range subjects {
		header = append(header, subj)
	}
	if err := f.SetSheetRow(weeklySheet, "A1", &header); err != nil {
		return nil, err
	}
	for i, point := range weekly {
		row := []interface{}{point.Week, point.WeekStart.Format("2006-01-02")}
		for _, subj := range subjects {
			row = append(row, point.Scores[subj])
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(weeklySheet, cell, &row); err != nil {
			return nil, err
		}
	}

	// 技能雷达
	radarSheet := "Skill Radar"
	if _, err := f.NewSheet(radarSheet); err != nil {
		return nil, err
	}
	radarHeader := []interface{}{"Subject", "Current", "Target", "Full Mark"}
	if err := f.SetSheetRow(radarSheet, "A1", &radarHeader); err != nil {
		return nil, err
	}
	for i, entry := range radar {
		row := []interface{}{entry.Subject, entry.Current, entry.Target, entry.FullMark}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(radarSheet, cell, &row); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}

	report := &ProgressReport{
		Filename: fmt.Sprintf("reports/progress_%d_%s.xlsx", userID, time.Now().Format("20060102_150405")),
		Data:     buf.Bytes(),
	}

	if s.Storage != nil {
		url, err := s.Storage.Upload(ctx, report.Filename, bytes.NewReader(report.Data), int64(len(report.Data)),
			"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		if err != nil {
			if err != util.ErrStorageDisabled && logger.Log != nil {
				logger.Log.Warn("report upload failed", zap.Error(err))
			}
		} else {
			report.URL = url
		}
	}

	return report, nil
}
