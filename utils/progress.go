package utils

import (
	"time"

	"lms/config"
	"lms/database"
	courseModels "lms/models/course"

	"gorm.io/gorm"
)

// QuizRequired signals that a required quiz must be passed before the lesson
// can be completed. A recoverable precondition failure, not a hard error.
type QuizRequired struct {
	QuizID uint
}

// RecordVideoProgress upserts the progress record for (user, lesson),
// overwrites the watch position and re-derives completion state.
func RecordVideoProgress(userID uint, lesson *courseModels.Lesson, watchPercentage, timestampSeconds float64) (*courseModels.UserProgress, error) {
	db := database.Database.Db
	now := time.Now()

	progress, err := getOrCreateProgress(db, userID, lesson.ID, now)
	if err != nil {
		return nil, err
	}

	progress.VideoWatchPercentage = watchPercentage
	progress.LastWatchedTimestamp = timestampSeconds
	progress.ProgressPercentage = clampPercent(int(watchPercentage))
	progress.LastAccessed = now
	progress.UpdateStatus(now)

	if err := db.Save(progress).Error; err != nil {
		return nil, err
	}
	return progress, nil
}

// CompleteLesson force-marks a lesson complete regardless of watch
// percentage. When the lesson carries a required quiz, the user must hold a
// passing attempt first; otherwise the call is refused with QuizRequired and
// the progress record stays untouched.
func CompleteLesson(userID uint, lesson *courseModels.Lesson) (*courseModels.UserProgress, *QuizRequired, error) {
	db := database.Database.Db

	var quiz courseModels.LessonQuiz
	err := db.Where("lesson_id = ?", lesson.ID).First(&quiz).Error
	if err == nil && quiz.IsRequired {
		var passedAttempts int64
		db.Model(&courseModels.LessonQuizAttempt{}).
			Where("user_id = ? AND quiz_id = ? AND passed = ?", userID, quiz.ID, true).
			Count(&passedAttempts)
		if passedAttempts == 0 {
			return nil, &QuizRequired{QuizID: quiz.ID}, nil
		}
	} else if err != nil && err != gorm.ErrRecordNotFound {
		return nil, nil, err
	}

	now := time.Now()
	progress, err := getOrCreateProgress(db, userID, lesson.ID, now)
	if err != nil {
		return nil, nil, err
	}

	progress.Status = courseModels.ProgressCompleted
	progress.Completed = true
	progress.VideoWatchPercentage = 100.0
	progress.ProgressPercentage = 100
	progress.LastAccessed = now
	if progress.StartedAt == nil {
		t := now
		progress.StartedAt = &t
	}
	if progress.CompletedAt == nil {
		t := now
		progress.CompletedAt = &t
	}

	if err := db.Save(progress).Error; err != nil {
		return nil, nil, err
	}
	return progress, nil, nil
}

// TouchLessonProgress creates the progress record on first view and bumps
// last_accessed on every view.
func TouchLessonProgress(userID, lessonID uint) (*courseModels.UserProgress, error) {
	db := database.Database.Db
	now := time.Now()

	progress, err := getOrCreateProgress(db, userID, lessonID, now)
	if err != nil {
		return nil, err
	}
	progress.LastAccessed = now
	if err := db.Save(progress).Error; err != nil {
		return nil, err
	}
	return progress, nil
}

// CourseProgressPercent returns floor(100 * completed / total) clamped to
// [0,100]; a course with no lessons is 0, never a division error.
func CourseProgressPercent(userID, courseID uint) int {
	db := database.Database.Db

	var totalLessons int64
	db.Model(&courseModels.Lesson{}).Where("course_id = ?", courseID).Count(&totalLessons)
	if totalLessons == 0 {
		return 0
	}

	var completedLessons int64
	db.Model(&courseModels.UserProgress{}).
		Joins("JOIN lessons ON lessons.id = user_progresses.lesson_id").
		Where("user_progresses.user_id = ? AND lessons.course_id = ? AND user_progresses.completed = ?",
			userID, courseID, true).
		Count(&completedLessons)

	return clampPercent(int(completedLessons * 100 / totalLessons))
}

// CompletedLessonCount returns (completed, total) lesson counts for a course
func CompletedLessonCount(userID, courseID uint) (int64, int64) {
	db := database.Database.Db

	var totalLessons int64
	db.Model(&courseModels.Lesson{}).Where("course_id = ?", courseID).Count(&totalLessons)

	var completedLessons int64
	db.Model(&courseModels.UserProgress{}).
		Joins("JOIN lessons ON lessons.id = user_progresses.lesson_id").
		Where("user_progresses.user_id = ? AND lessons.course_id = ? AND user_progresses.completed = ?",
			userID, courseID, true).
		Count(&completedLessons)

	return completedLessons, totalLessons
}

func getOrCreateProgress(db *gorm.DB, userID, lessonID uint, now time.Time) (*courseModels.UserProgress, error) {
	progress := courseModels.UserProgress{UserID: userID, LessonID: lessonID}
	result := db.Where(courseModels.UserProgress{UserID: userID, LessonID: lessonID}).
		Attrs(courseModels.UserProgress{
			Status:                   courseModels.ProgressNotStarted,
			VideoCompletionThreshold: config.AppConfig.VideoCompletionThreshold,
			LastAccessed:             now,
		}).
		FirstOrCreate(&progress)
	if result.Error != nil {
		return nil, result.Error
	}
	return &progress, nil
}

func clampPercent(p int) int {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}
