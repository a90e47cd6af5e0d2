package model

import (
	"time"
)

// StudentDataSchemaVersion tags the persisted aggregate so future shape
// changes can migrate old records instead of silently breaking reads.
const StudentDataSchemaVersion = 1

// SubjectPreference is one subject the learner is working on.
// CurrentLevel and TargetLevel are self-assessed on a 1-10 scale and are
// nudged by quiz results (see RecordService.SaveQuizAttempt).
type SubjectPreference struct {
	Subject      string  `json:"subject"`
	Priority     int     `json:"priority"`
	CurrentLevel float64 `json:"currentLevel"`
	TargetLevel  float64 `json:"targetLevel"`
	WeeklyHours  int     `json:"weeklyHours"`
}

// Profile holds the learner's stable preferences collected at onboarding.
// It is replaced wholesale on profile edit; subjects carry no duplicates.
type Profile struct {
	Name           string              `json:"name"`
	Age            int                 `json:"age"`
	GradeLevel     string              `json:"gradeLevel"`
	ExamTypes      []string            `json:"examTypes"`
	LearningStyles []string            `json:"learningStyles"`
	Subjects       []SubjectPreference `json:"subjects"`
	StudyDays      []string            `json:"studyDays"`
	DailyMinutes   int                 `json:"dailyMinutes"`
	Goals          []string            `json:"goals"`
}

// ContentBody is the structured body of one generated lesson.
type ContentBody struct {
	Explanation        string   `json:"explanation"`
	Examples           []string `json:"examples"`
	Tips               []string `json:"tips"`
	YoutubeSuggestions []string `json:"youtubeSuggestions,omitempty"`
}

// GeneratedContent is one AI-produced lesson artifact. Append-only:
// never mutated after creation.
type GeneratedContent struct {
	ID          string      `json:"id"`
	Subject     string      `json:"subject"`
	Topic       string      `json:"topic"`
	ContentType string      `json:"contentType"`
	Body        ContentBody `json:"body"`
	CreatedAt   time.Time   `json:"createdAt"`
}

// QuizQuestion is one question inside a generated quiz.
type QuizQuestion struct {
	ID            string   `json:"id"`
	Text          string   `json:"text"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correctAnswer"`
	Explanation   string   `json:"explanation,omitempty"`
}

// QuizAttempt is one completed quiz. Score is an integer percentage in
// [0,100], computed as round(100 * correct / total).
type QuizAttempt struct {
	ID          string            `json:"id"`
	Subject     string            `json:"subject"`
	Topic       string            `json:"topic"`
	Questions   []QuizQuestion    `json:"questions"`
	UserAnswers map[string]string `json:"userAnswers"`
	Score       int               `json:"score"`
	CompletedAt time.Time         `json:"completedAt"`
}

// LearningActivity is a lightweight log entry recorded for every
// trackable action; it feeds point accumulation.
type LearningActivity struct {
	ID          string    `json:"id"`
	Subject     string    `json:"subject"`
	Topic       string    `json:"topic"`
	Type        string    `json:"type"`
	Score       *int      `json:"score,omitempty"`
	CompletedAt time.Time `json:"completedAt"`
}

type StudentStats struct {
	StreakDays  int `json:"streakDays"`
	TotalPoints int `json:"totalPoints"`
}

// StudentData is the per-learner aggregate root. Exactly one instance
// exists per learner, identified by the persistence slot's key.
type StudentData struct {
	SchemaVersion    int                `json:"schemaVersion"`
	Profile          Profile            `json:"profile"`
	ContentLibrary   []GeneratedContent `json:"contentLibrary"`
	QuizHistory      []QuizAttempt      `json:"quizHistory"`
	ActivityLog      []LearningActivity `json:"activityLog"`
	CompletedModules []string           `json:"completedModules"`
	Stats            StudentStats       `json:"stats"`
}

// NewStudentData builds a fresh aggregate for a newly onboarded learner.
func NewStudentData(profile Profile) *StudentData {
	return &StudentData{
		SchemaVersion:    StudentDataSchemaVersion,
		Profile:          profile,
		ContentLibrary:   []GeneratedContent{},
		QuizHistory:      []QuizAttempt{},
		ActivityLog:      []LearningActivity{},
		CompletedModules: []string{},
	}
}

// Validate reports whether the profile satisfies the aggregate
// invariants: no duplicate subject names, every level in [1,10].
func (p *Profile) Validate() bool {
	seen := make(map[string]bool, len(p.Subjects))
	for _, s := range p.Subjects {
		if seen[s.Subject] {
			return false
		}
		seen[s.Subject] = true
		if s.CurrentLevel < 1 || s.CurrentLevel > 10 {
			return false
		}
		if s.TargetLevel < 1 || s.TargetLevel > 10 {
			return false
		}
	}
	return true
}
