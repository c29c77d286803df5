package controllers

import (
	"lms/database"
	"lms/middleware"
	courseModels "lms/models/course"
	"lms/utils"

	"github.com/gofiber/fiber/v2"
)

// GetMyCertifications lists the user's passed certifications with course
// details and the trophy tier derived from the count
func GetMyCertifications(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var certs []courseModels.Certification
	if err := database.Database.Db.
		Where("user_id = ? AND status = ?", userID, courseModels.CertPassed).
		Order("issued_at desc").Find(&certs).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch certifications!", nil)
	}

	type certWithCourse struct {
		courseModels.Certification
		CourseName string `json:"course_name"`
		CourseSlug string `json:"course_slug"`
	}
	list := make([]certWithCourse, len(certs))
	for i, cert := range certs {
		list[i] = certWithCourse{Certification: cert}
		var course courseModels.Course
		if err := database.Database.Db.First(&course, cert.CourseID).Error; err == nil {
			list[i].CourseName = course.Name
			list[i].CourseSlug = course.Slug
		}
	}

	certCount := int64(len(certs))
	nextTier, toNext := utils.NextTrophyTier(certCount)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Certifications fetched successfully!", fiber.Map{
		"certifications":     list,
		"count":              certCount,
		"trophy_tier":        utils.TrophyTier(certCount),
		"next_trophy_tier":   nextTier,
		"certs_to_next_tier": toNext,
	})
}
