package controllers

import (
	"time"

	"lms/database"
	"lms/middleware"
	"lms/models"
	courseModels "lms/models/course"
	"lms/utils"

	"github.com/gofiber/fiber/v2"
)

// AdminGrantAccess manually grants course access to a student
func AdminGrantAccess(c *fiber.Ctx) error {
	adminID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	reqData := new(struct {
		UserID    uint       `json:"user_id"`
		CourseID  uint       `json:"course_id"`
		ExpiresAt *time.Time `json:"expires_at"`
		Notes     string     `json:"notes"`
	})
	if err := c.BodyParser(reqData); err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
	}
	if reqData.UserID == 0 || reqData.CourseID == 0 {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "User ID and course ID are required!", nil)
	}

	var student models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", reqData.UserID, false).First(&student).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Student not found!", nil)
	}
	var course courseModels.Course
	if err := database.Database.Db.First(&course, reqData.CourseID).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	access, err := utils.GrantCourseAccess(reqData.UserID, reqData.CourseID, utils.GrantOptions{
		AccessType:  courseModels.AccessManual,
		GrantedByID: &adminID,
		ExpiresAt:   reqData.ExpiresAt,
		Notes:       reqData.Notes,
	})
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to grant access!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Access granted!", fiber.Map{"access": access})
}

// AdminRevokeAccess revokes every active grant a student holds for a course
func AdminRevokeAccess(c *fiber.Ctx) error {
	adminID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	reqData := new(struct {
		UserID   uint   `json:"user_id"`
		CourseID uint   `json:"course_id"`
		Reason   string `json:"reason"`
		Notes    string `json:"notes"`
	})
	if err := c.BodyParser(reqData); err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
	}
	if reqData.UserID == 0 || reqData.CourseID == 0 {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "User ID and course ID are required!", nil)
	}

	revoked, err := utils.RevokeCourseAccess(reqData.UserID, reqData.CourseID, adminID, reqData.Reason, reqData.Notes)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to revoke access!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Access revoked!", fiber.Map{
		"revoked_count": len(revoked),
		"revoked":       revoked,
	})
}

// AdminGetStudentGrants lists a student's grants with their audit trails
func AdminGetStudentGrants(c *fiber.Ctx) error {
	if _, ok := c.Locals("userId").(uint); !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	studentID := c.Locals("studentID").(int)

	var student models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", studentID, false).First(&student).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Student not found!", nil)
	}

	var grants []courseModels.CourseAccess
	database.Database.Db.Where("user_id = ?", studentID).Order("granted_at desc").Find(&grants)

	type grantWithAudit struct {
		courseModels.CourseAccess
		Source   string                        `json:"source"`
		AuditLog []courseModels.AccessAuditLog `json:"audit_log"`
	}
	list := make([]grantWithAudit, len(grants))
	for i := range grants {
		list[i] = grantWithAudit{
			CourseAccess: grants[i],
			Source:       grants[i].SourceDisplay(database.Database.Db),
		}
		database.Database.Db.Where("course_access_id = ?", grants[i].ID).
			Order("id asc").Find(&list[i].AuditLog)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Grants fetched successfully!", fiber.Map{
		"student": fiber.Map{"id": student.ID, "name": student.Name, "email": student.Email},
		"grants":  list,
	})
}
