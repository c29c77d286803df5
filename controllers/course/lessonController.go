package controllers

import (
	"time"

	"lms/database"
	"lms/middleware"
	courseModels "lms/models/course"
	"lms/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// GetLessonDetail returns one lesson with the user's progress, the previous
// and next lessons for navigation, and quiz presence. Viewing the lesson
// creates or touches the progress record.
func GetLessonDetail(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	courseID := c.Locals("courseID").(int)
	lessonID := c.Locals("lessonID").(int)

	var course courseModels.Course
	if err := database.Database.Db.First(&course, courseID).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	decision := utils.HasCourseAccess(userID, &course)
	if !decision.Granted {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, decision.Reason, nil)
	}

	var lesson courseModels.Lesson
	if err := database.Database.Db.Where("id = ? AND course_id = ?", lessonID, courseID).First(&lesson).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Lesson not found!", nil)
	}

	progress, err := utils.TouchLessonProgress(userID, lesson.ID)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to track lesson view!", nil)
	}

	var prevLesson, nextLesson courseModels.Lesson
	hasPrev := database.Database.Db.
		Where("course_id = ? AND (order_index < ? OR (order_index = ? AND id < ?))",
			courseID, lesson.OrderIndex, lesson.OrderIndex, lesson.ID).
		Order("order_index desc, id desc").First(&prevLesson).Error == nil
	hasNext := database.Database.Db.
		Where("course_id = ? AND (order_index > ? OR (order_index = ? AND id > ?))",
			courseID, lesson.OrderIndex, lesson.OrderIndex, lesson.ID).
		Order("order_index asc, id asc").First(&nextLesson).Error == nil

	data := fiber.Map{
		"lesson":   lesson,
		"progress": progress,
	}
	if hasPrev {
		data["previous_lesson"] = fiber.Map{"id": prevLesson.ID, "title": prevLesson.Title, "slug": prevLesson.Slug}
	}
	if hasNext {
		data["next_lesson"] = fiber.Map{"id": nextLesson.ID, "title": nextLesson.Title, "slug": nextLesson.Slug}
	}

	var quiz courseModels.LessonQuiz
	if err := database.Database.Db.Where("lesson_id = ?", lesson.ID).First(&quiz).Error; err == nil {
		var questions []courseModels.LessonQuizQuestion
		database.Database.Db.Where("quiz_id = ?", quiz.ID).Order("order_index asc, id asc").Find(&questions)
		data["quiz"] = fiber.Map{
			"id":            quiz.ID,
			"title":         quiz.Title,
			"is_required":   quiz.IsRequired,
			"passing_score": quiz.PassingScore,
			"questions":     questions,
		}
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Lesson fetched successfully!", data)
}

// RecordVideoProgress stores the user's watch position for a lesson video
func RecordVideoProgress(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	courseID := c.Locals("courseID").(int)
	lessonID := c.Locals("lessonID").(int)

	reqData := new(struct {
		WatchPercentage  float64 `json:"watch_percentage"`
		TimestampSeconds float64 `json:"timestamp_seconds"`
	})
	if err := c.BodyParser(reqData); err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
	}
	if reqData.WatchPercentage < 0 || reqData.WatchPercentage > 100 {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Watch percentage must be between 0 and 100!", nil)
	}

	var course courseModels.Course
	if err := database.Database.Db.First(&course, courseID).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}
	if decision := utils.HasCourseAccess(userID, &course); !decision.Granted {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, decision.Reason, nil)
	}

	var lesson courseModels.Lesson
	if err := database.Database.Db.Where("id = ? AND course_id = ?", lessonID, courseID).First(&lesson).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Lesson not found!", nil)
	}

	progress, err := utils.RecordVideoProgress(userID, &lesson, reqData.WatchPercentage, reqData.TimestampSeconds)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to record progress!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Progress recorded!", fiber.Map{"progress": progress})
}

// CompleteLesson force-marks a lesson complete. When the lesson's quiz is
// required and not yet passed the request is refused with a quiz_required
// payload rather than an error.
func CompleteLesson(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	courseID := c.Locals("courseID").(int)
	lessonID := c.Locals("lessonID").(int)

	var course courseModels.Course
	if err := database.Database.Db.First(&course, courseID).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}
	if decision := utils.HasCourseAccess(userID, &course); !decision.Granted {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, decision.Reason, nil)
	}

	var lesson courseModels.Lesson
	if err := database.Database.Db.Where("id = ? AND course_id = ?", lessonID, courseID).First(&lesson).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Lesson not found!", nil)
	}

	progress, quizRequired, err := utils.CompleteLesson(userID, &lesson)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to complete lesson!", nil)
	}
	if quizRequired != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Quiz must be passed before completing this lesson!", fiber.Map{
			"quiz_required": true,
			"quiz_id":       quizRequired.QuizID,
		})
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Lesson completed!", fiber.Map{
		"progress":        progress,
		"course_progress": utils.CourseProgressPercent(userID, uint(courseID)),
	})
}

// SubmitLessonQuiz scores a quiz submission and records the attempt
func SubmitLessonQuiz(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	courseID := c.Locals("courseID").(int)
	lessonID := c.Locals("lessonID").(int)

	reqData := new(struct {
		Answers map[string]string `json:"answers"`
	})
	if err := c.BodyParser(reqData); err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
	}

	var course courseModels.Course
	if err := database.Database.Db.First(&course, courseID).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}
	if decision := utils.HasCourseAccess(userID, &course); !decision.Granted {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, decision.Reason, nil)
	}

	var lesson courseModels.Lesson
	if err := database.Database.Db.Where("id = ? AND course_id = ?", lessonID, courseID).First(&lesson).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Lesson not found!", nil)
	}

	var quiz courseModels.LessonQuiz
	if err := database.Database.Db.Where("lesson_id = ?", lesson.ID).First(&quiz).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "No quiz for this lesson!", nil)
		}
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to load quiz!", nil)
	}

	var questions []courseModels.LessonQuizQuestion
	database.Database.Db.Where("quiz_id = ?", quiz.ID).Order("order_index asc, id asc").Find(&questions)

	key := make([]utils.AnswerKey, len(questions))
	for i, q := range questions {
		key[i] = utils.AnswerKey{QuestionID: q.ID, CorrectOption: q.CorrectOption}
	}

	score, correct, total := utils.ScoreAnswers(key, reqData.Answers)
	passed := score >= float64(quiz.PassingScore)

	answersJSON := make(map[string]interface{}, len(reqData.Answers))
	for k, v := range reqData.Answers {
		answersJSON[k] = v
	}

	attempt := courseModels.LessonQuizAttempt{
		UserID:      userID,
		QuizID:      quiz.ID,
		Score:       score,
		Passed:      passed,
		Answers:     answersJSON,
		CompletedAt: time.Now(),
	}
	if err := database.Database.Db.Create(&attempt).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to submit quiz!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Quiz submitted!", fiber.Map{
		"attempt": attempt,
		"passed":  passed,
		"score":   score,
		"correct": correct,
		"total":   total,
	})
}
