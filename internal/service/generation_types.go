package service

import (
	"fmt"
	"strings"

	"studypath_backend/internal/llm"
	"studypath_backend/internal/model"
)

// Generation kinds. Each maps to one prompt, one response schema and
// one local fallback of the same shape.
const (
	KindLearningPath        = "learning-path"
	KindPersonalizedContent = "personalized-content"
	KindQuiz                = "quiz"
	KindTutorAnswer         = "tutor-answer"
)

// LearningPathMilestone is one step of a generated study plan.
type LearningPathMilestone struct {
	Title         string   `json:"title"`
	Subject       string   `json:"subject"`
	DurationWeeks int      `json:"durationWeeks"`
	Topics        []string `json:"topics"`
}

// LearningPathPlan is the generated adaptive study plan.
type LearningPathPlan struct {
	Overview   string                  `json:"overview"`
	Milestones []LearningPathMilestone `json:"milestones"`
}

// GeneratedQuiz is a quiz produced by the generation collaborator,
// before the learner attempts it.
type GeneratedQuiz struct {
	Subject   string               `json:"subject"`
	Topic     string               `json:"topic"`
	Questions []model.QuizQuestion `json:"questions"`
}

// TutorAnswer is a tutoring reply to a free-form question.
type TutorAnswer struct {
	Answer    string   `json:"answer"`
	Steps     []string `json:"steps"`
	FollowUps []string `json:"followUps"`
}

var contentSchema = &llm.Schema{
	Name:        "personalized-content",
	Description: "A personalized lesson for one subject and topic",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"explanation": map[string]any{"type": "string"},
			"examples": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string"},
			},
			"tips": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string"},
			},
			"youtubeSuggestions": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string"},
			},
		},
		"required": []any{"explanation", "examples", "tips"},
	},
}

var quizSchema = &llm.Schema{
	Name:        "study-quiz",
	Description: "A multiple-choice quiz for one subject and topic",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"questions": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"id":            map[string]any{"type": "string"},
						"text":          map[string]any{"type": "string"},
						"options":       map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
						"correctAnswer": map[string]any{"type": "string"},
						"explanation":   map[string]any{"type": "string"},
					},
					"required": []any{"id", "text", "options", "correctAnswer"},
				},
			},
		},
		"required": []any{"questions"},
	},
}

var learningPathSchema = &llm.Schema{
	Name:        "learning-path",
	Description: "An adaptive study plan across the learner's subjects",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"overview": map[string]any{"type": "string"},
			"milestones": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"title":         map[string]any{"type": "string"},
						"subject":       map[string]any{"type": "string"},
						"durationWeeks": map[string]any{"type": "integer"},
						"topics":        map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
					},
					"required": []any{"title", "subject", "durationWeeks", "topics"},
				},
			},
		},
		"required": []any{"overview", "milestones"},
	},
}

var tutorSchema = &llm.Schema{
	Name:        "tutor-answer",
	Description: "A step-by-step tutoring answer",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"answer":    map[string]any{"type": "string"},
			"steps":     map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
			"followUps": map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
		},
		"required": []any{"answer", "steps"},
	},
}

// profileSummary renders the parts of the profile the prompts rely on.
func profileSummary(p *model.Profile) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Learner: %s, age %d, grade %s.\n", p.Name, p.Age, p.GradeLevel)
	if len(p.ExamTypes) > 0 {
		fmt.Fprintf(&b, "Preparing for: %s.\n", strings.Join(p.ExamTypes, ", "))
	}
	if len(p.LearningStyles) > 0 {
		fmt.Fprintf(&b, "Learning styles: %s.\n", strings.Join(p.LearningStyles, ", "))
	}
	for _, s := range p.Subjects {
		fmt.Fprintf(&b, "Subject %s: current level %.1f/10, target %.1f/10, %d hours/week.\n",
			s.Subject, s.CurrentLevel, s.TargetLevel, s.WeeklyHours)
	}
	if len(p.Goals) > 0 {
		fmt.Fprintf(&b, "Goals: %s.\n", strings.Join(p.Goals, "; "))
	}
	return b.String()
}

const tutorSystemPrompt = "You are a patient exam-prep tutor. Answer with short, concrete steps a student can follow. Stay on the student's subjects and politely decline anything unrelated to studying."

// Fallbacks. The record store never sees a failed-content state: when
// generation fails, the caller gets one of these, same shape as the
// generated artifact.

func fallbackContent(subject, topic string) *model.ContentBody {
	return &model.ContentBody{
		Explanation: fmt.Sprintf("We could not generate a fresh lesson for %s (%s) right now. Review your notes on %s and try again shortly.", subject, topic, topic),
		Examples:    []string{fmt.Sprintf("Revisit a solved %s example from your last session.", topic)},
		Tips:        []string{"Short, frequent practice beats long cram sessions.", "Re-attempt questions you got wrong yesterday."},
	}
}

func fallbackQuiz(subject, topic string) *GeneratedQuiz {
	return &GeneratedQuiz{
		Subject: subject,
		Topic:   topic,
		Questions: []model.QuizQuestion{
			{
				ID:            "fallback-1",
				Text:          fmt.Sprintf("Which study habit most improves retention in %s?", subject),
				Options:       []string{"Cramming overnight", "Spaced practice with self-testing", "Re-reading notes once", "Skipping review"},
				CorrectAnswer: "Spaced practice with self-testing",
				Explanation:   "Spaced retrieval practice is the most reliable way to retain material.",
			},
		},
	}
}

func fallbackLearningPath(p *model.Profile) *LearningPathPlan {
	plan := &LearningPathPlan{
		Overview: "A steady default plan while personalized generation is unavailable. Work each subject in priority order.",
	}
	for _, s := range p.Subjects {
		plan.Milestones = append(plan.Milestones, LearningPathMilestone{
			Title:         fmt.Sprintf("Strengthen %s fundamentals", s.Subject),
			Subject:       s.Subject,
			DurationWeeks: 2,
			Topics:        []string{"Review core concepts", "Practice past questions"},
		})
	}
	return plan
}

func fallbackTutorAnswer() *TutorAnswer {
	return &TutorAnswer{
		Answer: "The tutor is unavailable right now. Try breaking the problem into smaller steps and attempt each one.",
		Steps: []string{
			"Write down what the question asks for.",
			"List the facts and formulas you already know.",
			"Solve the smallest piece first, then build up.",
		},
	}
}
