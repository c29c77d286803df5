package controllers

import (
	"lms/middleware"
	"lms/utils"

	"github.com/gofiber/fiber/v2"
)

// JoinCohort adds the user to a cohort, granting its courses
func JoinCohort(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	cohortID := c.Locals("cohortID").(int)

	member, err := utils.JoinCohort(userID, uint(cohortID))
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Failed to join cohort!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Joined cohort!", fiber.Map{"member": member})
}

// LeaveCohort removes the user from a cohort. Cohort-sourced grants are
// revoked when the membership carries remove_access_on_leave.
func LeaveCohort(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	cohortID := c.Locals("cohortID").(int)

	if err := utils.LeaveCohort(userID, uint(cohortID), userID); err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Failed to leave cohort!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Left cohort!", nil)
}
