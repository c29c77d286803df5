package utils

import (
	"fmt"
	"time"

	"lms/database"
	courseModels "lms/models/course"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Maximum divergence between client-reported and server-measured elapsed
// time before the server value overwrites the stored one.
const timeTakenToleranceSeconds = 60

// CheckExamEligibility runs the ordered eligibility checks for a course
// exam. First failure wins; the reason is always human-readable.
func CheckExamEligibility(userID uint, course *courseModels.Course) (bool, string) {
	db := database.Database.Db

	if userID == 0 {
		return false, "User not authenticated"
	}

	exam, err := GetCourseExam(course.ID)
	if err != nil {
		return false, "No exam exists for this course"
	}
	if !exam.IsActive {
		return false, "Exam is not active"
	}

	if decision := HasCourseAccess(userID, course); !decision.Granted {
		return false, "No access to this course"
	}

	completed, total := CompletedLessonCount(userID, course.ID)
	if total > 0 && completed < total {
		return false, fmt.Sprintf("%d lesson(s) not completed", total-completed)
	}

	if course.ExamUnlockDays > 0 {
		enrolledAt, ok := earliestEnrollmentDate(db, userID, course.ID)
		if !ok {
			return false, "No enrollment found"
		}
		daysSinceEnrollment := int(time.Since(enrolledAt).Hours() / 24)
		if daysSinceEnrollment < course.ExamUnlockDays {
			daysRemaining := course.ExamUnlockDays - daysSinceEnrollment
			return false, fmt.Sprintf("Exam unlocks in %d day(s)", daysRemaining)
		}
	}

	if exam.MaxAttempts > 0 {
		var attemptCount int64
		db.Model(&courseModels.ExamAttempt{}).
			Where("user_id = ? AND exam_id = ?", userID, exam.ID).
			Count(&attemptCount)
		if attemptCount >= int64(exam.MaxAttempts) {
			return false, fmt.Sprintf("Maximum attempts (%d) reached", exam.MaxAttempts)
		}
	}

	return true, "Eligible"
}

// GetCourseExam returns the course's exam or gorm.ErrRecordNotFound
func GetCourseExam(courseID uint) (*courseModels.Exam, error) {
	var exam courseModels.Exam
	if err := database.Database.Db.Where("course_id = ?", courseID).First(&exam).Error; err != nil {
		return nil, err
	}
	return &exam, nil
}

// ExamAnswerKey loads the answer key for an exam, ordered by question order
func ExamAnswerKey(examID uint) ([]AnswerKey, error) {
	var questions []courseModels.ExamQuestion
	if err := database.Database.Db.Where("exam_id = ?", examID).
		Order("order_index asc, id asc").Find(&questions).Error; err != nil {
		return nil, err
	}
	key := make([]AnswerKey, len(questions))
	for i, q := range questions {
		key[i] = AnswerKey{QuestionID: q.ID, CorrectOption: q.CorrectOption}
	}
	return key, nil
}

// SubmitExam scores an exam submission and records the attempt. Returns a
// refusal reason (empty when accepted) for eligibility failures; the attempt
// row, its time_taken correction and any certification issuance commit in one
// transaction. The attempt-count check and insert run under a row lock on the
// exam so concurrent double-submission cannot exceed max_attempts.
func SubmitExam(userID uint, course *courseModels.Course, answers map[string]string, clientElapsedSec *int, clientStartTime *time.Time) (*courseModels.ExamAttempt, string, error) {
	db := database.Database.Db

	if eligible, reason := CheckExamEligibility(userID, course); !eligible {
		return nil, reason, nil
	}

	exam, err := GetCourseExam(course.ID)
	if err != nil {
		return nil, "", err
	}

	key, err := ExamAnswerKey(exam.ID)
	if err != nil {
		return nil, "", err
	}

	score, _, _ := ScoreAnswers(key, answers)
	passed := score >= float64(exam.PassingScore)

	now := time.Now()
	startedAt := now
	if clientStartTime != nil && clientStartTime.Before(now) {
		startedAt = *clientStartTime
	}

	answersJSON := make(map[string]interface{}, len(answers))
	for k, v := range answers {
		answersJSON[k] = v
	}

	attempt := courseModels.ExamAttempt{
		UserID:           userID,
		ExamID:           exam.ID,
		Score:            score,
		Passed:           passed,
		StartedAt:        startedAt,
		CompletedAt:      &now,
		TimeTakenSeconds: clientElapsedSec,
		Answers:          answersJSON,
	}

	refusal := ""
	err = db.Transaction(func(tx *gorm.DB) error {
		// Serialize per exam: the count and the insert must not interleave
		// with a concurrent submission of the same exam.
		var lockedExam courseModels.Exam
		if err := lockForUpdate(tx).First(&lockedExam, exam.ID).Error; err != nil {
			return err
		}

		if lockedExam.MaxAttempts > 0 {
			var attemptCount int64
			if err := tx.Model(&courseModels.ExamAttempt{}).
				Where("user_id = ? AND exam_id = ?", userID, exam.ID).
				Count(&attemptCount).Error; err != nil {
				return err
			}
			if attemptCount >= int64(lockedExam.MaxAttempts) {
				refusal = fmt.Sprintf("Maximum attempts (%d) reached", lockedExam.MaxAttempts)
				return nil
			}
		}

		if passed {
			var priorPasses int64
			if err := tx.Model(&courseModels.ExamAttempt{}).
				Where("user_id = ? AND exam_id = ? AND passed = ?", userID, exam.ID, true).
				Count(&priorPasses).Error; err != nil {
				return err
			}
			// Only the first pass anchors certification
			attempt.IsFinal = priorPasses == 0
		}

		if err := tx.Create(&attempt).Error; err != nil {
			return err
		}

		// One-time correction: the server wall clock wins when the client
		// timing is missing or diverges beyond tolerance.
		serverElapsed := int(now.Sub(startedAt).Seconds())
		if clientElapsedSec == nil || abs(*clientElapsedSec-serverElapsed) > timeTakenToleranceSeconds {
			attempt.TimeTakenSeconds = &serverElapsed
			if err := tx.Model(&attempt).Update("time_taken_seconds", serverElapsed).Error; err != nil {
				return err
			}
		}

		if passed {
			if _, err := issueCertification(tx, userID, course.ID, &attempt); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, "", err
	}
	if refusal != "" {
		return nil, refusal, nil
	}

	// External issuance and mail are best-effort, after the local commit
	if passed {
		finalizeCertification(userID, course)
	}

	return &attempt, "", nil
}

// earliestEnrollmentDate finds when the user first got into the course:
// legacy enrollment first, then the oldest unlocked grant.
func earliestEnrollmentDate(db *gorm.DB, userID, courseID uint) (time.Time, bool) {
	var enrollment courseModels.CourseEnrollment
	if err := db.Where("user_id = ? AND course_id = ?", userID, courseID).
		Order("enrolled_at asc").First(&enrollment).Error; err == nil {
		return enrollment.EnrolledAt, true
	}

	var access courseModels.CourseAccess
	if err := db.Where("user_id = ? AND course_id = ? AND status = ?",
		userID, courseID, courseModels.AccessUnlocked).
		Order("granted_at asc").First(&access).Error; err == nil {
		return access.GrantedAt, true
	}

	return time.Time{}, false
}

// lockForUpdate applies a FOR UPDATE row lock on dialects that support it.
// sqlite serializes writers on its own.
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "postgres" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
