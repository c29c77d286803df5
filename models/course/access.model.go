package course

import (
	"fmt"
	"time"

	"lms/models"

	"gorm.io/gorm"
)

// Access type
const (
	AccessPurchase     = "purchase"
	AccessManual       = "manual"
	AccessCohort       = "cohort"
	AccessSubscription = "subscription"
	AccessBundle       = "bundle"
)

// Access status
const (
	AccessUnlocked = "unlocked"
	AccessLocked   = "locked"
	AccessRevoked  = "revoked"
	AccessExpired  = "expired"
	AccessPending  = "pending"
)

// Audit actions
const (
	AuditGranted = "granted"
	AuditRevoked = "revoked"
	AuditExpired = "expired"
)

// CourseAccess is the ledger entry for one grant of course access.
// At most one row per (user, course, access_type, purchase_id) so replayed
// purchase events cannot duplicate grants. Rows are never hard-deleted.
type CourseAccess struct {
	gorm.Model
	UserID     uint   `json:"user_id" gorm:"index;not null;uniqueIndex:idx_access_tuple"`
	CourseID   uint   `json:"course_id" gorm:"index;not null;uniqueIndex:idx_access_tuple"`
	AccessType string `json:"access_type" gorm:"uniqueIndex:idx_access_tuple"`
	Status     string `json:"status" gorm:"default:'unlocked'"`

	// Source tracking
	BundlePurchaseID *uint  `json:"bundle_purchase_id" gorm:"index"`
	CohortID         *uint  `json:"cohort_id" gorm:"index"`
	PurchaseID       string `json:"purchase_id" gorm:"default:'';uniqueIndex:idx_access_tuple"` // external order id
	GrantedByID      *uint  `json:"granted_by_id"`
	GrantedAt        time.Time `json:"granted_at"`

	// Expiration & revocation
	ExpiresAt        *time.Time `json:"expires_at"`
	ReminderSent     bool       `json:"reminder_sent" gorm:"default:false"`
	RevokedAt        *time.Time `json:"revoked_at"`
	RevokedByID      *uint      `json:"revoked_by_id"`
	RevocationReason string     `json:"revocation_reason"`
	Notes            string     `json:"notes" gorm:"type:text"` // append-only audit notes
}

// AccessAuditLog is the structured append-only audit trail for a grant
type AccessAuditLog struct {
	gorm.Model
	CourseAccessID uint   `json:"course_access_id" gorm:"index;not null"`
	ActorID        *uint  `json:"actor_id"` // nil for system actions (expiry sweep)
	Action         string `json:"action"`   // granted, revoked, expired
	Reason         string `json:"reason"`
}

// IsActive reports whether the grant currently confers access. Reading an
// unlocked grant whose expiry has passed flips it to expired and persists the
// flip, so listing queries stay consistent afterwards.
func (a *CourseAccess) IsActive(db *gorm.DB) bool {
	if a.Status == AccessRevoked || a.Status == AccessExpired {
		return false
	}
	if a.ExpiresAt != nil && time.Now().After(*a.ExpiresAt) {
		a.Status = AccessExpired
		db.Model(a).Update("status", AccessExpired)
		db.Create(&AccessAuditLog{
			CourseAccessID: a.ID,
			Action:         AuditExpired,
			Reason:         "expiry reached on read",
		})
		return false
	}
	return a.Status == AccessUnlocked
}

// SourceDisplay returns a human-readable description of where access came from
func (a *CourseAccess) SourceDisplay(db *gorm.DB) string {
	if a.BundlePurchaseID != nil {
		var purchase BundlePurchase
		if err := db.First(&purchase, *a.BundlePurchaseID).Error; err == nil {
			var bundle Bundle
			if err := db.First(&bundle, purchase.BundleID).Error; err == nil {
				return fmt.Sprintf("Bundle: %s", bundle.Name)
			}
		}
	}
	if a.CohortID != nil {
		var cohort Cohort
		if err := db.First(&cohort, *a.CohortID).Error; err == nil {
			return fmt.Sprintf("Cohort: %s", cohort.Name)
		}
	}
	if a.PurchaseID != "" {
		return fmt.Sprintf("Purchase: %s", a.PurchaseID)
	}
	if a.GrantedByID != nil {
		var admin models.User
		if err := db.First(&admin, *a.GrantedByID).Error; err == nil {
			return fmt.Sprintf("Manual grant by %s", admin.Name)
		}
	}
	return a.AccessType
}

// AppendNote appends to the audit notes without overwriting prior entries
func (a *CourseAccess) AppendNote(note string) {
	if note == "" {
		return
	}
	if a.Notes == "" {
		a.Notes = note
		return
	}
	a.Notes = a.Notes + "\n" + note
}
