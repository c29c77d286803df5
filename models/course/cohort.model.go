package course

import (
	"time"

	"gorm.io/gorm"
)

// Cohort is a named group whose members share course access
type Cohort struct {
	gorm.Model
	Name        string    `json:"name" gorm:"uniqueIndex;not null"`
	Description string    `json:"description" gorm:"type:text"`
	IsActive    bool      `json:"is_active" gorm:"default:true"`
	Courses     []*Course `json:"-" gorm:"many2many:cohort_courses"`
}

// CohortMember links a user to a cohort
type CohortMember struct {
	gorm.Model
	CohortID uint      `json:"cohort_id" gorm:"index;not null;uniqueIndex:idx_cohort_user"`
	UserID   uint      `json:"user_id" gorm:"index;not null;uniqueIndex:idx_cohort_user"`
	JoinedAt time.Time `json:"joined_at"`
	// Revoke cohort-sourced grants when the member leaves
	RemoveAccessOnLeave bool `json:"remove_access_on_leave" gorm:"default:true"`
}
