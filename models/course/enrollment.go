package course

import (
	"time"

	"gorm.io/gorm"
)

// CourseEnrollment is the legacy enrollment table, kept as an independent
// access source for backward compatibility with pre-ledger data.
type CourseEnrollment struct {
	gorm.Model
	UserID      uint      `json:"user_id" gorm:"index;not null;uniqueIndex:idx_user_course_enrollment"`
	CourseID    uint      `json:"course_id" gorm:"index;not null;uniqueIndex:idx_user_course_enrollment"`
	EnrolledAt  time.Time `json:"enrolled_at"`
	PaymentType string    `json:"payment_type" gorm:"default:'full'"` // full, installment
}

// FavoriteCourse marks a course as favorited by a user
type FavoriteCourse struct {
	gorm.Model
	UserID   uint `json:"user_id" gorm:"index;not null;uniqueIndex:idx_user_course_favorite"`
	CourseID uint `json:"course_id" gorm:"index;not null;uniqueIndex:idx_user_course_favorite"`
}
