package course

import (
	"time"

	"gorm.io/gorm"
)

// Course visibility
const (
	VisibilityPublic      = "public"
	VisibilityMembersOnly = "members_only"
	VisibilityHidden      = "hidden"
	VisibilityPrivate     = "private"
)

// Course status
const (
	CourseActive     = "active"
	CourseLocked     = "locked"
	CourseComingSoon = "coming_soon"
)

// Enrollment method
const (
	EnrollOpen             = "open"
	EnrollPurchase         = "purchase"
	EnrollInviteOnly       = "invite_only"
	EnrollCohortOnly       = "cohort_only"
	EnrollSubscriptionOnly = "subscription_only"
)

// Access duration type
const (
	DurationLifetime  = "lifetime"
	DurationFixedDays = "fixed_days"
	DurationUntilDate = "until_date"
	DurationDrip      = "drip"
)

// Course represents a learning course with its access-control configuration
type Course struct {
	gorm.Model
	Name             string `json:"name"`
	Slug             string `json:"slug" gorm:"uniqueIndex;not null"`
	CourseType       string `json:"course_type" gorm:"default:'sprint'"` // sprint, speaking, consultancy, special
	Status           string `json:"status" gorm:"default:'active'"`
	Description      string `json:"description" gorm:"type:text"`
	ShortDescription string `json:"short_description"`
	CoachName        string `json:"coach_name"`
	SpecialTag       string `json:"special_tag"`

	// Access control
	Visibility         string     `json:"visibility" gorm:"default:'public'"`
	EnrollmentMethod   string     `json:"enrollment_method" gorm:"default:'open'"`
	AccessDurationType string     `json:"access_duration_type" gorm:"default:'lifetime'"`
	AccessDurationDays *int       `json:"access_duration_days"`
	AccessUntilDate    *time.Time `json:"access_until_date"`
	RequiredQuizScore  int        `json:"required_quiz_score" gorm:"default:0"`

	// Exam unlocks this many days after enrollment; 0 = immediately
	ExamUnlockDays int `json:"exam_unlock_days" gorm:"default:0"`

	IsAccredibleCertified bool `json:"is_accredible_certified" gorm:"default:false"`

	// Non-symmetric: a course may require others without the reverse
	Prerequisites []*Course `json:"-" gorm:"many2many:course_prerequisites;joinForeignKey:CourseID;joinReferences:PrerequisiteID"`
}

// IsPubliclyOpen reports whether the course needs no grant at all
func (c *Course) IsPubliclyOpen() bool {
	return c.Visibility == VisibilityPublic && c.EnrollmentMethod == EnrollOpen
}
