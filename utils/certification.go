package utils

import (
	"errors"
	"fmt"
	"log"
	"time"

	"lms/config"
	"lms/database"
	"lms/models"
	courseModels "lms/models/course"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrAttemptNotPassed means a caller tried to certify a failed attempt.
// That is a programming-contract violation, not a user-facing condition.
var ErrAttemptNotPassed = errors.New("cannot issue certification for failed exam attempt")

// IssueCertification issues (idempotently) the certification for a passing
// exam attempt. The local record commits transactionally; the external
// issuer call is best-effort and never rolls anything back.
func IssueCertification(userID, courseID uint, attempt *courseModels.ExamAttempt) (*courseModels.Certification, error) {
	db := database.Database.Db

	var cert *courseModels.Certification
	err := db.Transaction(func(tx *gorm.DB) error {
		c, err := issueCertification(tx, userID, courseID, attempt)
		cert = c
		return err
	})
	if err != nil {
		return nil, err
	}

	var course courseModels.Course
	if err := db.First(&course, courseID).Error; err == nil {
		finalizeCertification(userID, &course)
	}

	return cert, nil
}

// issueCertification is the transactional get-or-create. At most one
// certification per (user, course): an existing passed record is left
// untouched (issued_at preserved); a non-passed one transitions to passed
// and relinks to the new attempt.
func issueCertification(tx *gorm.DB, userID, courseID uint, attempt *courseModels.ExamAttempt) (*courseModels.Certification, error) {
	if !attempt.Passed {
		return nil, ErrAttemptNotPassed
	}

	now := time.Now()
	attemptID := attempt.ID

	var cert courseModels.Certification
	err := tx.Where("user_id = ? AND course_id = ?", userID, courseID).First(&cert).Error
	if err == gorm.ErrRecordNotFound {
		cert = courseModels.Certification{
			UserID:               userID,
			CourseID:             courseID,
			Status:               courseModels.CertPassed,
			CertificateNumber:    uuid.NewString(),
			IssuedAt:             &now,
			PassingExamAttemptID: &attemptID,
		}
		if err := tx.Create(&cert).Error; err != nil {
			return nil, err
		}
		return &cert, nil
	}
	if err != nil {
		return nil, err
	}

	if cert.Status != courseModels.CertPassed {
		cert.Status = courseModels.CertPassed
		cert.IssuedAt = &now
		cert.PassingExamAttemptID = &attemptID
		if err := tx.Save(&cert).Error; err != nil {
			return nil, err
		}
	}

	return &cert, nil
}

// finalizeCertification runs the best-effort tail of issuance: the external
// Accredible certificate and the notification mail. Failures are logged and
// swallowed; they must never fail the exam-submission flow.
func finalizeCertification(userID uint, course *courseModels.Course) {
	db := database.Database.Db

	var cert courseModels.Certification
	if err := db.Where("user_id = ? AND course_id = ? AND status = ?",
		userID, course.ID, courseModels.CertPassed).First(&cert).Error; err != nil {
		return
	}

	if course.IsAccredibleCertified && config.AppConfig.AccredibleApiKey != "" && cert.AccredibleCertificateID == "" {
		externalID, externalURL, err := CreateAccredibleCertificate(userID, course, cert.PassingExamAttemptID)
		if err != nil {
			log.Printf("[CERTIFICATION] Accredible certificate creation failed: %v", err)
		} else {
			cert.AccredibleCertificateID = externalID
			cert.AccredibleCertificateURL = externalURL
			if err := db.Save(&cert).Error; err != nil {
				log.Printf("[CERTIFICATION] Failed to store Accredible reference: %v", err)
			}
		}
	}

	var user models.User
	if err := db.First(&user, userID).Error; err == nil && user.Email != "" {
		if err := SendCertificationIssuedEmail(user.Email, user.Name, course.Name, cert.CertificateNumber); err != nil {
			log.Printf("[CERTIFICATION] Failed to send certification email to %s: %v", user.Email, err)
		}
	}
}

// UserCertificationCount counts a user's passed certifications
func UserCertificationCount(userID uint) int64 {
	var count int64
	database.Database.Db.Model(&courseModels.Certification{}).
		Where("user_id = ? AND status = ?", userID, courseModels.CertPassed).
		Count(&count)
	return count
}

// TrophyTier maps a certification count to the student's trophy tier
func TrophyTier(certCount int64) string {
	switch {
	case certCount >= 20:
		return "ultimate"
	case certCount >= 10:
		return "diamond"
	case certCount >= 5:
		return "platinum"
	case certCount >= 3:
		return "gold"
	case certCount >= 2:
		return "silver"
	case certCount >= 1:
		return "bronze"
	default:
		return ""
	}
}

// NextTrophyTier returns the next tier and how many more certifications it
// needs; empty tier when already at the top.
func NextTrophyTier(certCount int64) (string, int64) {
	thresholds := []struct {
		tier string
		min  int64
	}{
		{"bronze", 1},
		{"silver", 2},
		{"gold", 3},
		{"platinum", 5},
		{"diamond", 10},
		{"ultimate", 20},
	}
	for _, t := range thresholds {
		if certCount < t.min {
			return t.tier, t.min - certCount
		}
	}
	return "", 0
}

// CertificateDisplayName is the name printed on issued certificates
func CertificateDisplayName(user *models.User) string {
	if user.Name != "" {
		return user.Name
	}
	return fmt.Sprintf("Student #%d", user.ID)
}
