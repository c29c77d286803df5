package controllers

import (
	"time"

	"lms/database"
	"lms/middleware"
	courseModels "lms/models/course"
	"lms/utils"

	"github.com/gofiber/fiber/v2"
)

// GetExamEligibility reports whether the user may take the course exam and,
// when eligible, returns the exam with its questions.
func GetExamEligibility(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	courseID := c.Locals("courseID").(int)

	var course courseModels.Course
	if err := database.Database.Db.First(&course, courseID).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	eligible, reason := utils.CheckExamEligibility(userID, &course)
	data := fiber.Map{
		"eligible": eligible,
		"reason":   reason,
	}

	if eligible {
		exam, err := utils.GetCourseExam(course.ID)
		if err != nil {
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to load exam!", nil)
		}

		var questions []courseModels.ExamQuestion
		database.Database.Db.Where("exam_id = ?", exam.ID).Order("order_index asc, id asc").Find(&questions)

		data["exam"] = exam
		data["questions"] = questions
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Eligibility checked!", data)
}

// SubmitExam scores and records an exam submission. A passing attempt issues
// the course certification in the same transaction.
func SubmitExam(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	courseID := c.Locals("courseID").(int)

	reqData := new(struct {
		Answers          map[string]string `json:"answers"`
		TimeTakenSeconds *int              `json:"time_taken_seconds"`
		StartedAt        *time.Time        `json:"started_at"`
	})
	if err := c.BodyParser(reqData); err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
	}

	var course courseModels.Course
	if err := database.Database.Db.First(&course, courseID).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	attempt, refusal, err := utils.SubmitExam(userID, &course, reqData.Answers, reqData.TimeTakenSeconds, reqData.StartedAt)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to submit exam!", nil)
	}
	if refusal != "" {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, refusal, nil)
	}

	data := fiber.Map{
		"attempt": attempt,
		"passed":  attempt.Passed,
		"score":   attempt.Score,
	}
	if attempt.Passed {
		var cert courseModels.Certification
		if err := database.Database.Db.
			Where("user_id = ? AND course_id = ?", userID, course.ID).
			First(&cert).Error; err == nil {
			data["certification"] = cert
		}
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Exam submitted!", data)
}

// GetMyExamAttempts lists the user's attempts for a course exam
func GetMyExamAttempts(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	courseID := c.Locals("courseID").(int)

	exam, err := utils.GetCourseExam(uint(courseID))
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "No exam exists for this course!", nil)
	}

	var attempts []courseModels.ExamAttempt
	database.Database.Db.
		Where("user_id = ? AND exam_id = ?", userID, exam.ID).
		Order("created_at desc").Find(&attempts)

	remaining := -1 // unlimited
	if exam.MaxAttempts > 0 {
		remaining = exam.MaxAttempts - len(attempts)
		if remaining < 0 {
			remaining = 0
		}
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Attempts fetched successfully!", fiber.Map{
		"attempts":           attempts,
		"max_attempts":       exam.MaxAttempts,
		"remaining_attempts": remaining,
	})
}
