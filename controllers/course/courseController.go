package controllers

import (
	"lms/database"
	"lms/middleware"
	courseModels "lms/models/course"
	"lms/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// GetCourseDetails returns one course with the user's progress, prerequisite
// state, favorite flag and exam availability
func GetCourseDetails(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	courseID := c.Locals("courseID").(int)

	var course courseModels.Course
	if err := database.Database.Db.First(&course, courseID).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	decision := utils.HasCourseAccess(userID, &course)
	if !decision.Granted {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, decision.Reason, nil)
	}

	prereqsMet, missing, err := utils.CheckCoursePrerequisites(userID, &course)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to check prerequisites!", nil)
	}

	var modules []courseModels.Module
	database.Database.Db.Where("course_id = ?", course.ID).Order("order_index asc").Find(&modules)

	var lessons []courseModels.Lesson
	database.Database.Db.Where("course_id = ?", course.ID).Order("order_index asc, id asc").Find(&lessons)

	var favorite courseModels.FavoriteCourse
	isFavorite := database.Database.Db.
		Where("user_id = ? AND course_id = ?", userID, course.ID).
		First(&favorite).Error == nil

	hasExam := false
	if _, err := utils.GetCourseExam(course.ID); err == nil {
		hasExam = true
	}

	completed, total := utils.CompletedLessonCount(userID, course.ID)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course fetched successfully!", fiber.Map{
		"course":                course,
		"access":                decision,
		"modules":               modules,
		"lessons":               lessons,
		"progress_percent":      utils.CourseProgressPercent(userID, course.ID),
		"completed_lessons":     completed,
		"total_lessons":         total,
		"prerequisites_met":     prereqsMet,
		"missing_prerequisites": missing,
		"is_favorite":           isFavorite,
		"has_exam":              hasExam,
	})
}

// ToggleFavoriteCourse flips the favorite flag for (user, course)
func ToggleFavoriteCourse(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	courseID := c.Locals("courseID").(int)

	var course courseModels.Course
	if err := database.Database.Db.First(&course, courseID).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	var favorite courseModels.FavoriteCourse
	err := database.Database.Db.
		Where("user_id = ? AND course_id = ?", userID, course.ID).
		First(&favorite).Error
	if err == gorm.ErrRecordNotFound {
		favorite = courseModels.FavoriteCourse{UserID: userID, CourseID: course.ID}
		if err := database.Database.Db.Create(&favorite).Error; err != nil {
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to favorite course!", nil)
		}
		return middleware.JsonResponse(c, fiber.StatusOK, true, "Course favorited!", fiber.Map{"is_favorite": true})
	}
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to favorite course!", nil)
	}

	if err := database.Database.Db.Unscoped().Delete(&favorite).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to unfavorite course!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course unfavorited!", fiber.Map{"is_favorite": false})
}

// GetDashboardStats aggregates the user's learning stats for the dashboard
func GetDashboardStats(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	courses, err := utils.GetUserAccessibleCourses(userID)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch stats!", nil)
	}

	inProgress := 0
	completedCourses := 0
	for _, course := range courses {
		switch p := utils.CourseProgressPercent(userID, course.ID); {
		case p >= 100:
			completedCourses++
		case p > 0:
			inProgress++
		}
	}

	var completedLessons int64
	database.Database.Db.Model(&courseModels.UserProgress{}).
		Where("user_id = ? AND completed = ?", userID, true).
		Count(&completedLessons)

	certCount := utils.UserCertificationCount(userID)
	nextTier, toNext := utils.NextTrophyTier(certCount)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Stats fetched successfully!", fiber.Map{
		"total_courses":       len(courses),
		"courses_in_progress": inProgress,
		"courses_completed":   completedCourses,
		"lessons_completed":   completedLessons,
		"certifications":      certCount,
		"trophy_tier":         utils.TrophyTier(certCount),
		"next_trophy_tier":    nextTier,
		"certs_to_next_tier":  toNext,
	})
}
