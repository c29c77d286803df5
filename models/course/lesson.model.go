package course

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Lesson represents a single lesson belonging to a course, optionally in a module
type Lesson struct {
	gorm.Model
	CourseID    uint   `json:"course_id" gorm:"index;not null;uniqueIndex:idx_course_lesson_slug"`
	ModuleID    *uint  `json:"module_id" gorm:"index"`
	Title       string `json:"title"`
	Slug        string `json:"slug" gorm:"uniqueIndex:idx_course_lesson_slug"`
	Description string `json:"description" gorm:"type:text"`
	OrderIndex  int    `json:"order_index" gorm:"default:0"` // Lesson order in course

	// Rich content blocks (opaque to this core, stored as-is)
	Content datatypes.JSON `json:"content"`

	VideoURL             string `json:"video_url"`
	VideoDurationSeconds int    `json:"video_duration_seconds" gorm:"default:0"`
	LessonType           string `json:"lesson_type" gorm:"default:'video'"` // video, live, replay
}

// LessonQuiz is the optional one-to-one quiz attached to a lesson.
// Callers must null-check the association, never probe for presence.
type LessonQuiz struct {
	gorm.Model
	LessonID     uint   `json:"lesson_id" gorm:"uniqueIndex;not null"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	IsRequired   bool   `json:"is_required" gorm:"default:false"` // Required to complete the lesson
	PassingScore int    `json:"passing_score" gorm:"default:70"`  // 0-100
}

// LessonQuizQuestion is a single A-D multiple choice question
type LessonQuizQuestion struct {
	gorm.Model
	QuizID        uint   `json:"quiz_id" gorm:"index;not null"`
	Text          string `json:"text" gorm:"type:text"`
	OptionA       string `json:"option_a"`
	OptionB       string `json:"option_b"`
	OptionC       string `json:"option_c"`
	OptionD       string `json:"option_d"`
	CorrectOption string `json:"-"` // A, B, C or D; never serialized to students
	OrderIndex    int    `json:"order_index" gorm:"default:0"`
}

// LessonQuizAttempt is an append-only record of a quiz submission
type LessonQuizAttempt struct {
	gorm.Model
	UserID      uint              `json:"user_id" gorm:"index;not null"`
	QuizID      uint              `json:"quiz_id" gorm:"index;not null"`
	Score       float64           `json:"score"` // 0-100
	Passed      bool              `json:"passed" gorm:"default:false"`
	Answers     datatypes.JSONMap `json:"answers"` // {question_id: "A".."D"}
	CompletedAt time.Time         `json:"completed_at"`
}
