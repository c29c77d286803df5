package utils

import (
	"testing"
	"time"

	courseModels "lms/models/course"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func createPassedAttempt(t *testing.T, db *gorm.DB, userID, courseID uint) *courseModels.ExamAttempt {
	t.Helper()
	exam := courseModels.Exam{CourseID: courseID, PassingScore: 70, IsActive: true}
	require.NoError(t, db.Create(&exam).Error)

	now := time.Now()
	attempt := courseModels.ExamAttempt{
		UserID:      userID,
		ExamID:      exam.ID,
		Score:       85,
		Passed:      true,
		StartedAt:   now.Add(-10 * time.Minute),
		CompletedAt: &now,
	}
	require.NoError(t, db.Create(&attempt).Error)
	return &attempt
}

func TestIssueCertificationIsIdempotent(t *testing.T) {
	db := setupTestDb(t)
	user := createTestUser(t, db, "cert@test.com")
	course := createTestCourse(t, db, "cert-course", courseModels.VisibilityPublic, courseModels.EnrollOpen)
	attempt := createPassedAttempt(t, db, user.ID, course.ID)

	first, err := IssueCertification(user.ID, course.ID, attempt)
	require.NoError(t, err)
	assert.Equal(t, courseModels.CertPassed, first.Status)
	assert.NotEmpty(t, first.CertificateNumber)
	require.NotNil(t, first.IssuedAt)

	second, err := IssueCertification(user.ID, course.ID, attempt)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.CertificateNumber, second.CertificateNumber)
	assert.Equal(t, first.IssuedAt.Unix(), second.IssuedAt.Unix())

	var count int64
	db.Model(&courseModels.Certification{}).
		Where("user_id = ? AND course_id = ?", user.ID, course.ID).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestIssueCertificationRejectsFailedAttempt(t *testing.T) {
	db := setupTestDb(t)
	user := createTestUser(t, db, "certfail@test.com")
	course := createTestCourse(t, db, "certfail-course", courseModels.VisibilityPublic, courseModels.EnrollOpen)
	attempt := createPassedAttempt(t, db, user.ID, course.ID)
	attempt.Passed = false

	_, err := IssueCertification(user.ID, course.ID, attempt)
	assert.ErrorIs(t, err, ErrAttemptNotPassed)
}

func TestIssueCertificationUpgradesFailedRecord(t *testing.T) {
	db := setupTestDb(t)
	user := createTestUser(t, db, "certup@test.com")
	course := createTestCourse(t, db, "certup-course", courseModels.VisibilityPublic, courseModels.EnrollOpen)

	existing := courseModels.Certification{
		UserID:            user.ID,
		CourseID:          course.ID,
		Status:            courseModels.CertFailed,
		CertificateNumber: "pre-existing",
	}
	require.NoError(t, db.Create(&existing).Error)

	attempt := createPassedAttempt(t, db, user.ID, course.ID)
	cert, err := IssueCertification(user.ID, course.ID, attempt)
	require.NoError(t, err)

	assert.Equal(t, existing.ID, cert.ID)
	assert.Equal(t, courseModels.CertPassed, cert.Status)
	require.NotNil(t, cert.IssuedAt)
	require.NotNil(t, cert.PassingExamAttemptID)
	assert.Equal(t, attempt.ID, *cert.PassingExamAttemptID)
}

func TestTrophyTiers(t *testing.T) {
	assert.Equal(t, "", TrophyTier(0))
	assert.Equal(t, "bronze", TrophyTier(1))
	assert.Equal(t, "silver", TrophyTier(2))
	assert.Equal(t, "gold", TrophyTier(3))
	assert.Equal(t, "gold", TrophyTier(4))
	assert.Equal(t, "platinum", TrophyTier(5))
	assert.Equal(t, "diamond", TrophyTier(10))
	assert.Equal(t, "ultimate", TrophyTier(25))
}

func TestNextTrophyTier(t *testing.T) {
	tier, needed := NextTrophyTier(0)
	assert.Equal(t, "bronze", tier)
	assert.Equal(t, int64(1), needed)

	tier, needed = NextTrophyTier(3)
	assert.Equal(t, "platinum", tier)
	assert.Equal(t, int64(2), needed)

	tier, needed = NextTrophyTier(20)
	assert.Equal(t, "", tier)
	assert.Equal(t, int64(0), needed)
}
