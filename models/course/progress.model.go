package course

import (
	"time"

	"gorm.io/gorm"
)

// Progress status
const (
	ProgressNotStarted = "not_started"
	ProgressInProgress = "in_progress"
	ProgressCompleted  = "completed"
)

// UserProgress tracks a user's watch/completion state for one lesson.
// One row per (user, lesson); created on first view, never deleted.
type UserProgress struct {
	gorm.Model
	UserID   uint `json:"user_id" gorm:"index;not null;uniqueIndex:idx_user_lesson"`
	LessonID uint `json:"lesson_id" gorm:"index;not null;uniqueIndex:idx_user_lesson"`

	Status    string `json:"status" gorm:"default:'not_started'"`
	Completed bool   `json:"completed" gorm:"default:false"`

	VideoWatchPercentage     float64 `json:"video_watch_percentage" gorm:"default:0"`
	LastWatchedTimestamp     float64 `json:"last_watched_timestamp" gorm:"default:0"` // seconds into the video
	VideoCompletionThreshold float64 `json:"video_completion_threshold" gorm:"default:90"`
	ProgressPercentage       int     `json:"progress_percentage" gorm:"default:0"`

	StartedAt    *time.Time `json:"started_at"`
	CompletedAt  *time.Time `json:"completed_at"`
	LastAccessed time.Time  `json:"last_accessed"`
}

// UpdateStatus re-derives status/completed from the watch percentage.
// Completion is monotonic: completed_at and started_at are never cleared
// even if the watch percentage later regresses.
func (p *UserProgress) UpdateStatus(now time.Time) {
	if p.VideoWatchPercentage >= p.VideoCompletionThreshold {
		p.Status = ProgressCompleted
		p.Completed = true
		if p.CompletedAt == nil {
			t := now
			p.CompletedAt = &t
		}
		if p.StartedAt == nil {
			t := now
			p.StartedAt = &t
		}
	} else if p.VideoWatchPercentage > 0 || p.Completed {
		if p.Completed {
			// Already completed once; keep it.
			p.Status = ProgressCompleted
		} else {
			p.Status = ProgressInProgress
		}
		if p.StartedAt == nil {
			t := now
			p.StartedAt = &t
		}
	} else {
		p.Status = ProgressNotStarted
	}
}
