package utils

import (
	"strconv"
	"testing"
	"time"

	courseModels "lms/models/course"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// examFixture builds a public open course with completed lessons and an
// active exam, so eligibility checks pass unless a test breaks one on purpose.
type examFixture struct {
	db      *gorm.DB
	userID  uint
	course  *courseModels.Course
	exam    *courseModels.Exam
	lessons []courseModels.Lesson
}

func setupExamFixture(t *testing.T, slug string, maxAttempts int) *examFixture {
	t.Helper()
	db := setupTestDb(t)
	user := createTestUser(t, db, slug+"@test.com")
	course := createTestCourse(t, db, slug, courseModels.VisibilityPublic, courseModels.EnrollOpen)
	lessons := createTestLessons(t, db, course.ID, 2)
	completeLessons(t, db, user.ID, lessons)

	exam := courseModels.Exam{
		CourseID:     course.ID,
		Title:        "Final Exam",
		PassingScore: 70,
		MaxAttempts:  maxAttempts,
		IsActive:     true,
	}
	require.NoError(t, db.Create(&exam).Error)

	correct := []string{"A", "B", "C", "D"}
	for i, opt := range correct {
		require.NoError(t, db.Create(&courseModels.ExamQuestion{
			ExamID:        exam.ID,
			Text:          "Question",
			CorrectOption: opt,
			OrderIndex:    i + 1,
		}).Error)
	}

	return &examFixture{db: db, userID: user.ID, course: course, exam: &exam, lessons: lessons}
}

// perfectAnswers returns a fully correct submission for the fixture's exam
func (f *examFixture) perfectAnswers(t *testing.T) map[string]string {
	t.Helper()
	key, err := ExamAnswerKey(f.exam.ID)
	require.NoError(t, err)
	answers := make(map[string]string, len(key))
	for _, q := range key {
		answers[strconv.FormatUint(uint64(q.QuestionID), 10)] = q.CorrectOption
	}
	return answers
}

func TestEligibilityNoExam(t *testing.T) {
	db := setupTestDb(t)
	user := createTestUser(t, db, "noexam@test.com")
	course := createTestCourse(t, db, "noexam-course", courseModels.VisibilityPublic, courseModels.EnrollOpen)

	eligible, reason := CheckExamEligibility(user.ID, course)
	assert.False(t, eligible)
	assert.Equal(t, "No exam exists for this course", reason)
}

func TestEligibilityInactiveExam(t *testing.T) {
	f := setupExamFixture(t, "inactive-exam", 0)
	require.NoError(t, f.db.Model(f.exam).Update("is_active", false).Error)

	eligible, reason := CheckExamEligibility(f.userID, f.course)
	assert.False(t, eligible)
	assert.Equal(t, "Exam is not active", reason)
}

func TestEligibilityRequiresAccess(t *testing.T) {
	f := setupExamFixture(t, "noaccess-exam", 0)

	other := createTestCourse(t, f.db, "noaccess-hidden", courseModels.VisibilityHidden, courseModels.EnrollPurchase)
	require.NoError(t, f.db.Create(&courseModels.Exam{
		CourseID: other.ID, PassingScore: 70, IsActive: true,
	}).Error)

	eligible, reason := CheckExamEligibility(f.userID, other)
	assert.False(t, eligible)
	assert.Equal(t, "No access to this course", reason)
}

func TestEligibilityRequiresCompletedLessons(t *testing.T) {
	f := setupExamFixture(t, "lessons-exam", 0)

	extra := courseModels.Lesson{CourseID: f.course.ID, Title: "Extra", Slug: "extra", OrderIndex: 99}
	require.NoError(t, f.db.Create(&extra).Error)

	eligible, reason := CheckExamEligibility(f.userID, f.course)
	assert.False(t, eligible)
	assert.Equal(t, "1 lesson(s) not completed", reason)
}

func TestEligibilityExamUnlockWindow(t *testing.T) {
	f := setupExamFixture(t, "unlock-exam", 0)
	require.NoError(t, f.db.Model(f.course).Update("exam_unlock_days", 5).Error)
	f.course.ExamUnlockDays = 5

	// No enrollment and no grant means no anchor date
	eligible, reason := CheckExamEligibility(f.userID, f.course)
	assert.False(t, eligible)
	assert.Equal(t, "No enrollment found", reason)

	require.NoError(t, f.db.Create(&courseModels.CourseEnrollment{
		UserID:     f.userID,
		CourseID:   f.course.ID,
		EnrolledAt: time.Now().AddDate(0, 0, -3),
	}).Error)

	eligible, reason = CheckExamEligibility(f.userID, f.course)
	assert.False(t, eligible)
	assert.Equal(t, "Exam unlocks in 2 day(s)", reason)

	require.NoError(t, f.db.Model(&courseModels.CourseEnrollment{}).
		Where("user_id = ? AND course_id = ?", f.userID, f.course.ID).
		Update("enrolled_at", time.Now().AddDate(0, 0, -6)).Error)

	eligible, reason = CheckExamEligibility(f.userID, f.course)
	assert.True(t, eligible)
	assert.Equal(t, "Eligible", reason)
}

func TestSubmitExamPassIssuesCertification(t *testing.T) {
	f := setupExamFixture(t, "pass-exam", 0)

	attempt, refusal, err := SubmitExam(f.userID, f.course, f.perfectAnswers(t), nil, nil)
	require.NoError(t, err)
	assert.Empty(t, refusal)
	require.NotNil(t, attempt)

	assert.Equal(t, 100.0, attempt.Score)
	assert.True(t, attempt.Passed)
	assert.True(t, attempt.IsFinal)
	require.NotNil(t, attempt.TimeTakenSeconds)

	var cert courseModels.Certification
	require.NoError(t, f.db.Where("user_id = ? AND course_id = ?", f.userID, f.course.ID).First(&cert).Error)
	assert.Equal(t, courseModels.CertPassed, cert.Status)
	assert.NotEmpty(t, cert.CertificateNumber)
	require.NotNil(t, cert.PassingExamAttemptID)
	assert.Equal(t, attempt.ID, *cert.PassingExamAttemptID)
}

func TestSubmitExamFailBelowPassingScore(t *testing.T) {
	f := setupExamFixture(t, "fail-exam", 0)

	answers := f.perfectAnswers(t)
	// Break three of four answers; 25% is below the 70% bar
	count := 0
	for k, v := range answers {
		if count == 3 {
			break
		}
		if v == "A" {
			answers[k] = "B"
		} else {
			answers[k] = "A"
		}
		count++
	}

	attempt, refusal, err := SubmitExam(f.userID, f.course, answers, nil, nil)
	require.NoError(t, err)
	assert.Empty(t, refusal)
	require.NotNil(t, attempt)

	assert.Equal(t, 25.0, attempt.Score)
	assert.False(t, attempt.Passed)
	assert.False(t, attempt.IsFinal)

	var certCount int64
	f.db.Model(&courseModels.Certification{}).
		Where("user_id = ? AND course_id = ?", f.userID, f.course.ID).Count(&certCount)
	assert.Equal(t, int64(0), certCount)
}

func TestSubmitExamMaxAttemptsEnforced(t *testing.T) {
	f := setupExamFixture(t, "max-exam", 2)
	answers := f.perfectAnswers(t)

	for i := 0; i < 2; i++ {
		_, refusal, err := SubmitExam(f.userID, f.course, answers, nil, nil)
		require.NoError(t, err)
		assert.Empty(t, refusal)
	}

	attempt, refusal, err := SubmitExam(f.userID, f.course, answers, nil, nil)
	require.NoError(t, err)
	assert.Nil(t, attempt)
	assert.Equal(t, "Maximum attempts (2) reached", refusal)

	var count int64
	f.db.Model(&courseModels.ExamAttempt{}).
		Where("user_id = ? AND exam_id = ?", f.userID, f.exam.ID).Count(&count)
	assert.Equal(t, int64(2), count)
}

func TestSubmitExamIsFinalOnlyOnFirstPass(t *testing.T) {
	f := setupExamFixture(t, "final-exam", 0)
	answers := f.perfectAnswers(t)

	first, _, err := SubmitExam(f.userID, f.course, answers, nil, nil)
	require.NoError(t, err)
	assert.True(t, first.IsFinal)

	var cert courseModels.Certification
	require.NoError(t, f.db.Where("user_id = ? AND course_id = ?", f.userID, f.course.ID).First(&cert).Error)
	firstIssuedAt := cert.IssuedAt

	second, _, err := SubmitExam(f.userID, f.course, answers, nil, nil)
	require.NoError(t, err)
	assert.False(t, second.IsFinal)

	// Certification stays anchored to the first passing attempt
	require.NoError(t, f.db.Where("user_id = ? AND course_id = ?", f.userID, f.course.ID).First(&cert).Error)
	require.NotNil(t, cert.PassingExamAttemptID)
	assert.Equal(t, first.ID, *cert.PassingExamAttemptID)
	assert.Equal(t, firstIssuedAt.Unix(), cert.IssuedAt.Unix())
}

func TestSubmitExamTimeTakenServerFallback(t *testing.T) {
	f := setupExamFixture(t, "time-fallback", 0)

	// No client timing at all: server measures, start defaults to now
	attempt, _, err := SubmitExam(f.userID, f.course, f.perfectAnswers(t), nil, nil)
	require.NoError(t, err)
	require.NotNil(t, attempt.TimeTakenSeconds)
	assert.LessOrEqual(t, *attempt.TimeTakenSeconds, 2)
}

func TestSubmitExamTimeTakenClientWithinTolerance(t *testing.T) {
	f := setupExamFixture(t, "time-kept", 0)

	started := time.Now().Add(-5 * time.Minute)
	clientElapsed := 310 // ~10s off the server's ~300s measurement
	attempt, _, err := SubmitExam(f.userID, f.course, f.perfectAnswers(t), &clientElapsed, &started)
	require.NoError(t, err)
	require.NotNil(t, attempt.TimeTakenSeconds)
	assert.Equal(t, 310, *attempt.TimeTakenSeconds)
}

func TestSubmitExamTimeTakenClientDivergenceOverwritten(t *testing.T) {
	f := setupExamFixture(t, "time-overwrite", 0)

	started := time.Now().Add(-5 * time.Minute)
	clientElapsed := 10 // claims 10s for a 5 minute window
	attempt, _, err := SubmitExam(f.userID, f.course, f.perfectAnswers(t), &clientElapsed, &started)
	require.NoError(t, err)
	require.NotNil(t, attempt.TimeTakenSeconds)
	assert.InDelta(t, 300, *attempt.TimeTakenSeconds, 2)

	var stored courseModels.ExamAttempt
	require.NoError(t, f.db.First(&stored, attempt.ID).Error)
	require.NotNil(t, stored.TimeTakenSeconds)
	assert.Equal(t, *attempt.TimeTakenSeconds, *stored.TimeTakenSeconds)
}
