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

// GetMyCourses lists every course the user can currently view
func GetMyCourses(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	courses, err := utils.GetUserAccessibleCourses(userID)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch courses!", nil)
	}

	type courseWithProgress struct {
		courseModels.Course
		ProgressPercent int `json:"progress_percent"`
	}
	list := make([]courseWithProgress, len(courses))
	for i, course := range courses {
		list[i] = courseWithProgress{
			Course:          course,
			ProgressPercent: utils.CourseProgressPercent(userID, course.ID),
		}
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Courses fetched successfully!", fiber.Map{
		"courses": list,
		"count":   len(list),
	})
}

// GetCourseCatalog categorizes all courses for the user into my-courses,
// available-to-unlock and not-available buckets. Works for anonymous users
// too; the route does not require authentication.
func GetCourseCatalog(c *fiber.Ctx) error {
	userID, _ := c.Locals("userId").(uint)

	catalog, err := utils.GetCoursesByVisibility(userID)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch catalog!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Catalog fetched successfully!", catalog)
}

// ResolveCourseAccess resolves whether the user may view one course
func ResolveCourseAccess(c *fiber.Ctx) error {
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
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Access resolved!", decision)
}

// EnrollInCourse enrolls the user into an open public course. Enrollment here
// records the fact; access resolution happens independently on read.
func EnrollInCourse(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var user models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", userID, false).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
	}

	courseID := c.Locals("courseID").(int)

	var course courseModels.Course
	if err := database.Database.Db.First(&course, courseID).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	if course.Status != courseModels.CourseActive {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Course is not open for enrollment!", nil)
	}
	if !course.IsPubliclyOpen() {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Course requires purchase or invitation!", nil)
	}

	ok, missing, err := utils.CheckCoursePrerequisites(userID, &course)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to check prerequisites!", nil)
	}
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Prerequisite courses not completed!", fiber.Map{
			"missing_prerequisites": missing,
		})
	}

	enrollment := courseModels.CourseEnrollment{UserID: userID, CourseID: course.ID}
	result := database.Database.Db.
		Where(courseModels.CourseEnrollment{UserID: userID, CourseID: course.ID}).
		Attrs(courseModels.CourseEnrollment{EnrolledAt: time.Now()}).
		FirstOrCreate(&enrollment)
	if result.Error != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to enroll!", nil)
	}
	if result.RowsAffected == 0 {
		return middleware.JsonResponse(c, fiber.StatusOK, true, "Already enrolled!", fiber.Map{"enrollment": enrollment})
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Enrolled successfully!", fiber.Map{"enrollment": enrollment})
}
