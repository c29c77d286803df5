package course

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Exam is the optional one-to-one final exam for a course
type Exam struct {
	gorm.Model
	CourseID         uint   `json:"course_id" gorm:"uniqueIndex;not null"`
	Title            string `json:"title"`
	Description      string `json:"description"`
	PassingScore     int    `json:"passing_score" gorm:"default:70"` // 0-100
	MaxAttempts      int    `json:"max_attempts" gorm:"default:0"`   // 0 = unlimited
	TimeLimitMinutes *int   `json:"time_limit_minutes"`              // nil = no limit
	IsActive         bool   `json:"is_active" gorm:"default:true"`
}

// ExamQuestion is a single A-D multiple choice exam question
type ExamQuestion struct {
	gorm.Model
	ExamID        uint   `json:"exam_id" gorm:"index;not null"`
	Text          string `json:"text" gorm:"type:text"`
	OptionA       string `json:"option_a"`
	OptionB       string `json:"option_b"`
	OptionC       string `json:"option_c"`
	OptionD       string `json:"option_d"`
	CorrectOption string `json:"-"` // A, B, C or D; never serialized to students
	OrderIndex    int    `json:"order_index" gorm:"default:0"`
}

// ExamAttempt is an append-only record of an exam submission. The only
// post-creation mutation allowed is the one-time time_taken correction.
type ExamAttempt struct {
	gorm.Model
	UserID           uint              `json:"user_id" gorm:"index;not null"`
	ExamID           uint              `json:"exam_id" gorm:"index;not null"`
	Score            float64           `json:"score"` // 0-100
	Passed           bool              `json:"passed" gorm:"default:false"`
	StartedAt        time.Time         `json:"started_at"`
	CompletedAt      *time.Time        `json:"completed_at"`
	TimeTakenSeconds *int              `json:"time_taken_seconds"`
	Answers          datatypes.JSONMap `json:"answers"` // {question_id: "A".."D"}
	IsFinal          bool              `json:"is_final" gorm:"default:false"` // true only on the first passing attempt
}
