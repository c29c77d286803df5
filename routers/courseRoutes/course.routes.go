package courseRoutes

import (
	controllers "lms/controllers/course"
	"lms/middleware"
	validators "lms/validators/course"

	"github.com/gofiber/fiber/v2"
)

// SetupCourseRoutes sets up all student-facing course routes
func SetupCourseRoutes(app *fiber.App) {
	courseGroup := app.Group("/course")

	// Catalog is open to anonymous users; everything else needs a token
	courseGroup.Get("/catalog", controllers.GetCourseCatalog)

	courseGroup.Get("/my", middleware.JWTMiddleware, controllers.GetMyCourses)
	courseGroup.Get("/:id", middleware.JWTMiddleware, validators.CourseID(), controllers.GetCourseDetails)
	courseGroup.Get("/:id/access", middleware.JWTMiddleware, validators.CourseID(), controllers.ResolveCourseAccess)
	courseGroup.Post("/:id/enroll", middleware.JWTMiddleware, validators.CourseID(), controllers.EnrollInCourse)
	courseGroup.Post("/:id/favorite", middleware.JWTMiddleware, validators.CourseID(), controllers.ToggleFavoriteCourse)

	// Lessons and progress
	courseGroup.Get("/:course_id/lesson/:lesson_id", middleware.JWTMiddleware, validators.CourseAndLessonID(), controllers.GetLessonDetail)
	courseGroup.Post("/:course_id/lesson/:lesson_id/video-progress", middleware.JWTMiddleware, validators.CourseAndLessonID(), controllers.RecordVideoProgress)
	courseGroup.Post("/:course_id/lesson/:lesson_id/complete", middleware.JWTMiddleware, validators.CourseAndLessonID(), controllers.CompleteLesson)
	courseGroup.Post("/:course_id/lesson/:lesson_id/quiz/submit", middleware.JWTMiddleware, validators.CourseAndLessonID(), controllers.SubmitLessonQuiz)

	// Exam
	courseGroup.Get("/:id/exam/eligibility", middleware.JWTMiddleware, validators.CourseID(), controllers.GetExamEligibility)
	courseGroup.Post("/:id/exam/submit", middleware.JWTMiddleware, validators.CourseID(), controllers.SubmitExam)
	courseGroup.Get("/:id/exam/attempts", middleware.JWTMiddleware, validators.CourseID(), controllers.GetMyExamAttempts)

	// Bundles and cohorts
	bundleGroup := app.Group("/bundle")
	bundleGroup.Post("/purchase", middleware.JWTMiddleware, controllers.RegisterBundlePurchase)

	cohortGroup := app.Group("/cohort")
	cohortGroup.Post("/:id/join", middleware.JWTMiddleware, validators.CohortID(), controllers.JoinCohort)
	cohortGroup.Post("/:id/leave", middleware.JWTMiddleware, validators.CohortID(), controllers.LeaveCohort)

	// User dashboard and certificates
	userGroup := app.Group("/user")
	userGroup.Get("/dashboard", middleware.JWTMiddleware, controllers.GetDashboardStats)
	userGroup.Get("/certifications", middleware.JWTMiddleware, controllers.GetMyCertifications)
}
