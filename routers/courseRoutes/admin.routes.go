package courseRoutes

import (
	controllers "lms/controllers/course"
	"lms/middleware"
	validators "lms/validators/course"

	"github.com/gofiber/fiber/v2"
)

// SetupAdminRoutes sets up the staff-only access management routes
func SetupAdminRoutes(app *fiber.App) {
	adminGroup := app.Group("/admin/access", middleware.JWTMiddleware, middleware.StaffOnlyMiddleware)

	adminGroup.Post("/grant", controllers.AdminGrantAccess)
	adminGroup.Post("/revoke", controllers.AdminRevokeAccess)
	adminGroup.Get("/student/:id", validators.StudentID(), controllers.AdminGetStudentGrants)
}
