package utils

import (
	"fmt"
	"log"
	"time"

	"lms/database"
	"lms/models"
	courseModels "lms/models/course"
)

// AccessDecision is the result of resolving access for a (user, course) pair.
// Reason is always set; Grant is nil for public courses and denials.
type AccessDecision struct {
	Granted bool                       `json:"granted"`
	Grant   *courseModels.CourseAccess `json:"grant"`
	Reason  string                     `json:"reason"`
}

// GrantOptions carries the optional fields of a grant event
type GrantOptions struct {
	AccessType       string
	GrantedByID      *uint
	ExpiresAt        *time.Time
	BundlePurchaseID *uint
	CohortID         *uint
	PurchaseID       string
	Notes            string
}

// HasCourseAccess resolves whether a user may view a course. Checks run in
// order, first match wins:
//  1. anonymous users are denied
//  2. any active ledger grant (reading may lazily expire stale grants)
//  3. public courses with open enrollment need no grant
//  4. a legacy enrollment materializes a manual grant on first touch
func HasCourseAccess(userID uint, course *courseModels.Course) AccessDecision {
	db := database.Database.Db

	if userID == 0 {
		return AccessDecision{Granted: false, Reason: "User not authenticated"}
	}

	var grants []courseModels.CourseAccess
	db.Where("user_id = ? AND course_id = ?", userID, course.ID).Find(&grants)

	for i := range grants {
		if grants[i].IsActive(db) {
			return AccessDecision{
				Granted: true,
				Grant:   &grants[i],
				Reason:  fmt.Sprintf("Access via %s", grants[i].SourceDisplay(db)),
			}
		}
	}

	if course.IsPubliclyOpen() {
		return AccessDecision{Granted: true, Reason: "Public course"}
	}

	// Legacy enrollment support: materialize a grant so later lookups hit the ledger
	var enrollment courseModels.CourseEnrollment
	if err := db.Where("user_id = ? AND course_id = ?", userID, course.ID).First(&enrollment).Error; err == nil {
		access := courseModels.CourseAccess{
			UserID:     userID,
			CourseID:   course.ID,
			AccessType: courseModels.AccessManual,
		}
		result := db.Where(courseModels.CourseAccess{
			UserID:     userID,
			CourseID:   course.ID,
			AccessType: courseModels.AccessManual,
			PurchaseID: "",
		}).Attrs(courseModels.CourseAccess{
			Status:    courseModels.AccessUnlocked,
			GrantedAt: time.Now(),
			Notes:     "Auto-created from enrollment",
		}).FirstOrCreate(&access)
		if result.Error == nil {
			if result.RowsAffected > 0 {
				db.Create(&courseModels.AccessAuditLog{
					CourseAccessID: access.ID,
					Action:         courseModels.AuditGranted,
					Reason:         "auto-created from enrollment",
				})
			}
			if result.RowsAffected > 0 || access.IsActive(db) {
				return AccessDecision{Granted: true, Grant: &access, Reason: "Access via enrollment"}
			}
		}
	}

	return AccessDecision{Granted: false, Reason: "No active access found"}
}

// GrantCourseAccess appends a grant to the ledger. Creation is idempotent on
// the (user, course, access_type, purchase_id) tuple, so replayed purchase
// events return the existing record instead of duplicating it.
func GrantCourseAccess(userID, courseID uint, opts GrantOptions) (*courseModels.CourseAccess, error) {
	db := database.Database.Db

	if opts.AccessType == "" {
		opts.AccessType = courseModels.AccessManual
	}

	expiresAt := opts.ExpiresAt
	if expiresAt == nil {
		var course courseModels.Course
		if err := db.First(&course, courseID).Error; err != nil {
			return nil, err
		}
		expiresAt = defaultExpiry(&course, time.Now())
	}

	access := courseModels.CourseAccess{
		UserID:     userID,
		CourseID:   courseID,
		AccessType: opts.AccessType,
		PurchaseID: opts.PurchaseID,
	}
	result := db.Where(courseModels.CourseAccess{
		UserID:     userID,
		CourseID:   courseID,
		AccessType: opts.AccessType,
		PurchaseID: opts.PurchaseID,
	}).Attrs(courseModels.CourseAccess{
		Status:           courseModels.AccessUnlocked,
		GrantedByID:      opts.GrantedByID,
		GrantedAt:        time.Now(),
		ExpiresAt:        expiresAt,
		BundlePurchaseID: opts.BundlePurchaseID,
		CohortID:         opts.CohortID,
		Notes:            opts.Notes,
	}).FirstOrCreate(&access)
	if result.Error != nil {
		return nil, result.Error
	}

	if result.RowsAffected > 0 {
		db.Create(&courseModels.AccessAuditLog{
			CourseAccessID: access.ID,
			ActorID:        opts.GrantedByID,
			Action:         courseModels.AuditGranted,
			Reason:         opts.Notes,
		})
		sendGrantEmail(userID, courseID)
	}

	return &access, nil
}

// RevokeCourseAccess revokes every currently-unlocked grant for the pair.
// Notes are appended to each record's audit trail, never overwritten.
func RevokeCourseAccess(userID, courseID uint, revokedByID uint, reason, notes string) ([]courseModels.CourseAccess, error) {
	db := database.Database.Db

	var grants []courseModels.CourseAccess
	if err := db.Where("user_id = ? AND course_id = ? AND status = ?",
		userID, courseID, courseModels.AccessUnlocked).Find(&grants).Error; err != nil {
		return nil, err
	}

	now := time.Now()
	revoked := make([]courseModels.CourseAccess, 0, len(grants))
	for i := range grants {
		access := &grants[i]
		access.Status = courseModels.AccessRevoked
		access.RevokedAt = &now
		access.RevokedByID = &revokedByID
		access.RevocationReason = reason
		access.AppendNote("Revoked: " + notes)
		if err := db.Save(access).Error; err != nil {
			return revoked, err
		}
		db.Create(&courseModels.AccessAuditLog{
			CourseAccessID: access.ID,
			ActorID:        &revokedByID,
			Action:         courseModels.AuditRevoked,
			Reason:         reason,
		})
		revoked = append(revoked, *access)
	}

	return revoked, nil
}

// GetUserAccessibleCourses returns every course the user can view. Four
// independent predicates are unioned on purpose (intentional redundancy for
// backward compatibility): active grants, legacy enrollments, public open
// courses, and any course the user already has progress in.
func GetUserAccessibleCourses(userID uint) ([]courseModels.Course, error) {
	db := database.Database.Db

	if userID == 0 {
		return []courseModels.Course{}, nil
	}

	courseIDs := make(map[uint]bool)

	// 1. Active ledger grants
	var grants []courseModels.CourseAccess
	db.Where("user_id = ? AND status = ? AND (expires_at IS NULL OR expires_at >= ?)",
		userID, courseModels.AccessUnlocked, time.Now()).Find(&grants)
	for _, g := range grants {
		courseIDs[g.CourseID] = true
	}

	// 2. Legacy enrollments
	var enrollments []courseModels.CourseEnrollment
	db.Where("user_id = ?", userID).Find(&enrollments)
	for _, e := range enrollments {
		courseIDs[e.CourseID] = true
	}

	// 3. Public open active courses
	var publicCourses []courseModels.Course
	db.Where("visibility = ? AND enrollment_method = ? AND status = ?",
		courseModels.VisibilityPublic, courseModels.EnrollOpen, courseModels.CourseActive).Find(&publicCourses)
	for _, c := range publicCourses {
		courseIDs[c.ID] = true
	}

	// 4. Courses with any progress record: if they can view it, they have access
	var progressCourseIDs []uint
	db.Model(&courseModels.UserProgress{}).
		Joins("JOIN lessons ON lessons.id = user_progresses.lesson_id").
		Where("user_progresses.user_id = ?", userID).
		Distinct().Pluck("lessons.course_id", &progressCourseIDs)
	for _, id := range progressCourseIDs {
		courseIDs[id] = true
	}

	if len(courseIDs) == 0 {
		return []courseModels.Course{}, nil
	}

	ids := make([]uint, 0, len(courseIDs))
	for id := range courseIDs {
		ids = append(ids, id)
	}

	var courses []courseModels.Course
	if err := db.Where("id IN ?", ids).Find(&courses).Error; err != nil {
		return nil, err
	}
	return courses, nil
}

// CourseCatalog partitions all courses by accessibility for one user
type CourseCatalog struct {
	MyCourses         []courseModels.Course `json:"my_courses"`
	AvailableToUnlock []courseModels.Course `json:"available_to_unlock"`
	NotAvailable      []courseModels.Course `json:"not_available"`
}

// GetCoursesByVisibility categorizes all courses for a user into accessible,
// available-to-unlock, and not-available buckets.
func GetCoursesByVisibility(userID uint) (*CourseCatalog, error) {
	db := database.Database.Db

	if userID == 0 {
		catalog := &CourseCatalog{MyCourses: []courseModels.Course{}}
		db.Where("visibility = ? AND status = ?",
			courseModels.VisibilityPublic, courseModels.CourseActive).Find(&catalog.AvailableToUnlock)
		db.Where("visibility <> ? AND status <> ?",
			courseModels.VisibilityPublic, courseModels.CourseActive).Find(&catalog.NotAvailable)
		return catalog, nil
	}

	myCourses, err := GetUserAccessibleCourses(userID)
	if err != nil {
		return nil, err
	}

	myIDs := make([]uint, 0, len(myCourses))
	for _, c := range myCourses {
		myIDs = append(myIDs, c.ID)
	}
	// Avoid an empty NOT IN clause
	if len(myIDs) == 0 {
		myIDs = append(myIDs, 0)
	}

	catalog := &CourseCatalog{MyCourses: myCourses}

	db.Where("status = ? AND visibility IN ? AND id NOT IN ?",
		courseModels.CourseActive,
		[]string{courseModels.VisibilityPublic, courseModels.VisibilityMembersOnly},
		myIDs).Find(&catalog.AvailableToUnlock)

	db.Where("(visibility IN ? OR status IN ?) AND id NOT IN ?",
		[]string{courseModels.VisibilityHidden, courseModels.VisibilityPrivate},
		[]string{courseModels.CourseLocked, courseModels.CourseComingSoon},
		myIDs).Find(&catalog.NotAvailable)

	return catalog, nil
}

// CheckCoursePrerequisites reports whether the user completed every
// prerequisite course. A prerequisite with no lessons counts as satisfied.
func CheckCoursePrerequisites(userID uint, course *courseModels.Course) (bool, []courseModels.Course, error) {
	db := database.Database.Db

	var prerequisites []*courseModels.Course
	if err := db.Model(course).Association("Prerequisites").Find(&prerequisites); err != nil {
		return false, nil, err
	}

	missing := []courseModels.Course{}
	for _, prereq := range prerequisites {
		var totalLessons int64
		db.Model(&courseModels.Lesson{}).Where("course_id = ?", prereq.ID).Count(&totalLessons)
		if totalLessons == 0 {
			continue
		}

		var completedLessons int64
		db.Model(&courseModels.UserProgress{}).
			Joins("JOIN lessons ON lessons.id = user_progresses.lesson_id").
			Where("user_progresses.user_id = ? AND lessons.course_id = ? AND user_progresses.completed = ?",
				userID, prereq.ID, true).
			Count(&completedLessons)

		if completedLessons < totalLessons {
			missing = append(missing, *prereq)
		}
	}

	return len(missing) == 0, missing, nil
}

// GrantBundleAccess expands a bundle purchase into one grant per course.
// Pick-your-own bundles expand only the purchaser's selected subset.
func GrantBundleAccess(userID uint, purchase *courseModels.BundlePurchase) ([]courseModels.CourseAccess, error) {
	db := database.Database.Db

	var bundle courseModels.Bundle
	if err := db.First(&bundle, purchase.BundleID).Error; err != nil {
		return nil, err
	}

	var courses []*courseModels.Course
	if bundle.BundleType == courseModels.BundlePickYourOwn && len(purchase.SelectedCourseIDs) > 0 {
		var selected []courseModels.Course
		if err := db.Where("id IN ?", []uint(purchase.SelectedCourseIDs)).Find(&selected).Error; err != nil {
			return nil, err
		}
		for i := range selected {
			courses = append(courses, &selected[i])
		}
	} else {
		if err := db.Model(&bundle).Association("Courses").Find(&courses); err != nil {
			return nil, err
		}
	}

	granted := []courseModels.CourseAccess{}
	for _, c := range courses {
		purchaseID := purchase.ID
		access, err := GrantCourseAccess(userID, c.ID, GrantOptions{
			AccessType:       courseModels.AccessBundle,
			BundlePurchaseID: &purchaseID,
			PurchaseID:       purchase.PurchaseID,
			Notes:            fmt.Sprintf("Access via bundle purchase: %s", bundle.Name),
		})
		if err != nil {
			return granted, err
		}
		granted = append(granted, *access)
	}

	return granted, nil
}

// JoinCohort adds the user to a cohort and grants its courses
func JoinCohort(userID, cohortID uint) (*courseModels.CohortMember, error) {
	db := database.Database.Db

	var cohort courseModels.Cohort
	if err := db.First(&cohort, cohortID).Error; err != nil {
		return nil, err
	}
	if !cohort.IsActive {
		return nil, fmt.Errorf("cohort %q is not active", cohort.Name)
	}

	member := courseModels.CohortMember{CohortID: cohortID, UserID: userID}
	result := db.Where(courseModels.CohortMember{CohortID: cohortID, UserID: userID}).
		Attrs(courseModels.CohortMember{JoinedAt: time.Now(), RemoveAccessOnLeave: true}).
		FirstOrCreate(&member)
	if result.Error != nil {
		return nil, result.Error
	}

	var courses []*courseModels.Course
	if err := db.Model(&cohort).Association("Courses").Find(&courses); err != nil {
		return nil, err
	}
	for _, c := range courses {
		id := cohortID
		if _, err := GrantCourseAccess(userID, c.ID, GrantOptions{
			AccessType: courseModels.AccessCohort,
			CohortID:   &id,
			Notes:      fmt.Sprintf("Access via cohort: %s", cohort.Name),
		}); err != nil {
			return &member, err
		}
	}

	return &member, nil
}

// LeaveCohort removes the member and, when remove_access_on_leave is set,
// revokes every cohort-sourced grant as a required side effect.
func LeaveCohort(userID, cohortID uint, removedByID uint) error {
	db := database.Database.Db

	var member courseModels.CohortMember
	if err := db.Where("cohort_id = ? AND user_id = ?", cohortID, userID).First(&member).Error; err != nil {
		return err
	}

	if member.RemoveAccessOnLeave {
		var grants []courseModels.CourseAccess
		db.Where("user_id = ? AND cohort_id = ? AND status = ?",
			userID, cohortID, courseModels.AccessUnlocked).Find(&grants)
		now := time.Now()
		for i := range grants {
			access := &grants[i]
			access.Status = courseModels.AccessRevoked
			access.RevokedAt = &now
			access.RevokedByID = &removedByID
			access.RevocationReason = "left cohort"
			access.AppendNote("Revoked: removed from cohort")
			if err := db.Save(access).Error; err != nil {
				return err
			}
			db.Create(&courseModels.AccessAuditLog{
				CourseAccessID: access.ID,
				ActorID:        &removedByID,
				Action:         courseModels.AuditRevoked,
				Reason:         "left cohort",
			})
		}
	}

	return db.Delete(&member).Error
}

// defaultExpiry derives a grant expiry from the course's access duration config
func defaultExpiry(course *courseModels.Course, grantedAt time.Time) *time.Time {
	switch course.AccessDurationType {
	case courseModels.DurationFixedDays:
		if course.AccessDurationDays != nil {
			t := grantedAt.AddDate(0, 0, *course.AccessDurationDays)
			return &t
		}
	case courseModels.DurationUntilDate:
		return course.AccessUntilDate
	}
	return nil
}

func sendGrantEmail(userID, courseID uint) {
	db := database.Database.Db

	var user models.User
	if err := db.First(&user, userID).Error; err != nil || user.Email == "" {
		return
	}
	var course courseModels.Course
	if err := db.First(&course, courseID).Error; err != nil {
		return
	}
	if err := SendCourseGrantedEmail(user.Email, user.Name, course.Name); err != nil {
		log.Printf("[ACCESS] Failed to send grant email to %s: %v", user.Email, err)
	}
}
