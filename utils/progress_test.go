package utils

import (
	"testing"
	"time"

	courseModels "lms/models/course"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordVideoProgressThreshold(t *testing.T) {
	db := setupTestDb(t)
	user := createTestUser(t, db, "video@test.com")
	course := createTestCourse(t, db, "video-course", courseModels.VisibilityPublic, courseModels.EnrollOpen)
	lessons := createTestLessons(t, db, course.ID, 1)

	progress, err := RecordVideoProgress(user.ID, &lessons[0], 45.0, 120.0)
	require.NoError(t, err)
	assert.Equal(t, courseModels.ProgressInProgress, progress.Status)
	assert.False(t, progress.Completed)
	assert.NotNil(t, progress.StartedAt)
	assert.Nil(t, progress.CompletedAt)

	progress, err = RecordVideoProgress(user.ID, &lessons[0], 95.0, 280.0)
	require.NoError(t, err)
	assert.Equal(t, courseModels.ProgressCompleted, progress.Status)
	assert.True(t, progress.Completed)
	assert.NotNil(t, progress.CompletedAt)
}

func TestVideoProgressCompletionIsMonotonic(t *testing.T) {
	db := setupTestDb(t)
	user := createTestUser(t, db, "mono@test.com")
	course := createTestCourse(t, db, "mono-course", courseModels.VisibilityPublic, courseModels.EnrollOpen)
	lessons := createTestLessons(t, db, course.ID, 1)

	progress, err := RecordVideoProgress(user.ID, &lessons[0], 95.0, 280.0)
	require.NoError(t, err)
	require.True(t, progress.Completed)
	completedAt := progress.CompletedAt

	// Rewatching from the start must not clear completion
	progress, err = RecordVideoProgress(user.ID, &lessons[0], 5.0, 15.0)
	require.NoError(t, err)
	assert.True(t, progress.Completed)
	assert.Equal(t, courseModels.ProgressCompleted, progress.Status)
	require.NotNil(t, progress.CompletedAt)
	assert.Equal(t, completedAt.Unix(), progress.CompletedAt.Unix())
	assert.Equal(t, 5.0, progress.VideoWatchPercentage)
}

func TestCompleteLessonRefusedWhileQuizUnpassed(t *testing.T) {
	db := setupTestDb(t)
	user := createTestUser(t, db, "quizreq@test.com")
	course := createTestCourse(t, db, "quizreq-course", courseModels.VisibilityPublic, courseModels.EnrollOpen)
	lessons := createTestLessons(t, db, course.ID, 1)

	quiz := courseModels.LessonQuiz{LessonID: lessons[0].ID, IsRequired: true, PassingScore: 70}
	require.NoError(t, db.Create(&quiz).Error)

	progress, quizRequired, err := CompleteLesson(user.ID, &lessons[0])
	require.NoError(t, err)
	assert.Nil(t, progress)
	require.NotNil(t, quizRequired)
	assert.Equal(t, quiz.ID, quizRequired.QuizID)

	// The refusal must not have created or completed a progress record
	var count int64
	db.Model(&courseModels.UserProgress{}).
		Where("user_id = ? AND lesson_id = ?", user.ID, lessons[0].ID).Count(&count)
	assert.Equal(t, int64(0), count)

	// A passing attempt unblocks completion
	require.NoError(t, db.Create(&courseModels.LessonQuizAttempt{
		UserID:      user.ID,
		QuizID:      quiz.ID,
		Score:       80,
		Passed:      true,
		CompletedAt: time.Now(),
	}).Error)

	progress, quizRequired, err = CompleteLesson(user.ID, &lessons[0])
	require.NoError(t, err)
	assert.Nil(t, quizRequired)
	require.NotNil(t, progress)
	assert.True(t, progress.Completed)
	assert.Equal(t, 100, progress.ProgressPercentage)
}

func TestCompleteLessonIgnoresOptionalQuiz(t *testing.T) {
	db := setupTestDb(t)
	user := createTestUser(t, db, "optquiz@test.com")
	course := createTestCourse(t, db, "optquiz-course", courseModels.VisibilityPublic, courseModels.EnrollOpen)
	lessons := createTestLessons(t, db, course.ID, 1)

	quiz := courseModels.LessonQuiz{LessonID: lessons[0].ID, IsRequired: false}
	require.NoError(t, db.Create(&quiz).Error)

	progress, quizRequired, err := CompleteLesson(user.ID, &lessons[0])
	require.NoError(t, err)
	assert.Nil(t, quizRequired)
	require.NotNil(t, progress)
	assert.True(t, progress.Completed)
}

func TestCourseProgressPercent(t *testing.T) {
	db := setupTestDb(t)
	user := createTestUser(t, db, "percent@test.com")
	course := createTestCourse(t, db, "percent-course", courseModels.VisibilityPublic, courseModels.EnrollOpen)
	lessons := createTestLessons(t, db, course.ID, 3)

	assert.Equal(t, 0, CourseProgressPercent(user.ID, course.ID))

	completeLessons(t, db, user.ID, lessons[:1])
	assert.Equal(t, 33, CourseProgressPercent(user.ID, course.ID))

	completeLessons(t, db, user.ID, lessons[1:])
	assert.Equal(t, 100, CourseProgressPercent(user.ID, course.ID))
}

func TestCourseProgressPercentNoLessons(t *testing.T) {
	db := setupTestDb(t)
	user := createTestUser(t, db, "empty@test.com")
	course := createTestCourse(t, db, "empty-course", courseModels.VisibilityPublic, courseModels.EnrollOpen)

	assert.Equal(t, 0, CourseProgressPercent(user.ID, course.ID))
}

func TestTouchLessonProgressCreatesAndBumps(t *testing.T) {
	db := setupTestDb(t)
	user := createTestUser(t, db, "touch@test.com")
	course := createTestCourse(t, db, "touch-course", courseModels.VisibilityPublic, courseModels.EnrollOpen)
	lessons := createTestLessons(t, db, course.ID, 1)

	progress, err := TouchLessonProgress(user.ID, lessons[0].ID)
	require.NoError(t, err)
	assert.Equal(t, courseModels.ProgressNotStarted, progress.Status)
	assert.Equal(t, 90.0, progress.VideoCompletionThreshold)

	firstAccess := progress.LastAccessed
	time.Sleep(10 * time.Millisecond)

	progress, err = TouchLessonProgress(user.ID, lessons[0].ID)
	require.NoError(t, err)
	assert.True(t, progress.LastAccessed.After(firstAccess))

	var count int64
	db.Model(&courseModels.UserProgress{}).
		Where("user_id = ? AND lesson_id = ?", user.ID, lessons[0].ID).Count(&count)
	assert.Equal(t, int64(1), count)
}
