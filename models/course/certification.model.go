package course

import (
	"time"

	"gorm.io/gorm"
)

// Certification status
const (
	CertNotEligible = "not_eligible"
	CertEligible    = "eligible"
	CertPassed      = "passed"
	CertFailed      = "failed"
)

// Certification records the outcome of a course's exam for a user.
// At most one row per (user, course); re-passing after a failed state
// updates in place instead of duplicating.
type Certification struct {
	gorm.Model
	UserID   uint   `json:"user_id" gorm:"index;not null;uniqueIndex:idx_user_course_cert"`
	CourseID uint   `json:"course_id" gorm:"index;not null;uniqueIndex:idx_user_course_cert"`
	Status   string `json:"status" gorm:"default:'not_eligible'"`

	CertificateNumber string `json:"certificate_number" gorm:"uniqueIndex"`

	// External issuer references (best-effort, may stay empty)
	AccredibleCertificateID  string `json:"accredible_certificate_id"`
	AccredibleCertificateURL string `json:"accredible_certificate_url"`

	IssuedAt             *time.Time `json:"issued_at"`
	PassingExamAttemptID *uint      `json:"passing_exam_attempt_id"`
}
