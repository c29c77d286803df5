package utils

import (
	"log"
	"time"

	"lms/database"
	"lms/models"
	courseModels "lms/models/course"

	"github.com/robfig/cron/v3"
)

// InitializeAccessScheduler sets up the daily access expiry scheduler
func InitializeAccessScheduler() {
	log.Println("[ACCESS-SCHEDULER] Initializing access scheduler...")

	c := cron.New()

	// Run daily at 9 AM to sweep expiring and expired grants
	c.AddFunc("0 9 * * *", func() {
		log.Println("[ACCESS-SCHEDULER] Running daily access check...")
		ProcessExpiringAccess()
		ExpireCourseAccess()
	})

	c.Start()
	log.Println("[ACCESS-SCHEDULER] Access scheduler started - runs daily at 9 AM")
}

// ProcessExpiringAccess sends reminder emails for grants expiring in 2 days
func ProcessExpiringAccess() {
	db := database.Database.Db
	now := time.Now()
	twoDaysFromNow := now.AddDate(0, 0, 2)

	var expiringGrants []courseModels.CourseAccess
	if err := db.
		Where("status = ? AND reminder_sent = false AND expires_at IS NOT NULL", courseModels.AccessUnlocked).
		Where("expires_at BETWEEN ? AND ?", now, twoDaysFromNow).
		Find(&expiringGrants).Error; err != nil {
		log.Printf("[ACCESS-SCHEDULER] Error fetching expiring grants: %v", err)
		return
	}

	log.Printf("[ACCESS-SCHEDULER] Found %d grants expiring soon", len(expiringGrants))

	for _, grant := range expiringGrants {
		var user models.User
		if err := db.Where("id = ?", grant.UserID).First(&user).Error; err != nil {
			log.Printf("[ACCESS-SCHEDULER] Error fetching user %d: %v", grant.UserID, err)
			continue
		}
		var course courseModels.Course
		if err := db.Where("id = ?", grant.CourseID).First(&course).Error; err != nil {
			continue
		}

		daysLeft := int(time.Until(*grant.ExpiresAt).Hours()/24) + 1
		if err := SendAccessExpiryReminder(user.Email, user.Name, course.Name, daysLeft); err != nil {
			log.Printf("[ACCESS-SCHEDULER] Failed to send expiry reminder to %s: %v", user.Email, err)
			continue
		}

		db.Model(&grant).Update("reminder_sent", true)
		log.Printf("[ACCESS-SCHEDULER] Sent expiry reminder for grant %d to %s", grant.ID, user.Email)
	}
}

// ExpireCourseAccess flips unlocked grants whose expiry has passed to EXPIRED
// and records an audit row for each. The lazy flip in IsActive catches the
// same grants on read; this sweep keeps the ledger clean between reads.
func ExpireCourseAccess() {
	db := database.Database.Db
	now := time.Now()

	var staleGrants []courseModels.CourseAccess
	if err := db.
		Where("status = ? AND expires_at IS NOT NULL AND expires_at < ?", courseModels.AccessUnlocked, now).
		Find(&staleGrants).Error; err != nil {
		log.Printf("[ACCESS-SCHEDULER] Error fetching stale grants: %v", err)
		return
	}

	for i := range staleGrants {
		grant := &staleGrants[i]
		grant.Status = courseModels.AccessExpired
		if err := db.Save(grant).Error; err != nil {
			log.Printf("[ACCESS-SCHEDULER] Error expiring grant %d: %v", grant.ID, err)
			continue
		}
		db.Create(&courseModels.AccessAuditLog{
			CourseAccessID: grant.ID,
			Action:         courseModels.AuditExpired,
			Reason:         "scheduled expiry sweep",
		})
	}

	if len(staleGrants) > 0 {
		log.Printf("[ACCESS-SCHEDULER] Expired %d grants", len(staleGrants))
	}
}
