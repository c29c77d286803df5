package controllers

import (
	"time"

	"lms/database"
	"lms/middleware"
	courseModels "lms/models/course"
	"lms/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/datatypes"
)

// RegisterBundlePurchase records a validated bundle purchase and expands it
// into per-course access grants. Replaying the same external purchase id is
// a no-op on the grants; expansion is idempotent.
func RegisterBundlePurchase(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	reqData := new(struct {
		BundleID          uint   `json:"bundle_id"`
		PurchaseID        string `json:"purchase_id"`
		SelectedCourseIDs []uint `json:"selected_course_ids"`
	})
	if err := c.BodyParser(reqData); err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
	}
	if reqData.BundleID == 0 || reqData.PurchaseID == "" {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Bundle ID and purchase ID are required!", nil)
	}

	var bundle courseModels.Bundle
	if err := database.Database.Db.First(&bundle, reqData.BundleID).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Bundle not found!", nil)
	}
	if !bundle.IsActive {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Bundle is not active!", nil)
	}

	if bundle.BundleType == courseModels.BundlePickYourOwn {
		if len(reqData.SelectedCourseIDs) == 0 {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Course selection is required for this bundle!", nil)
		}
		if bundle.MaxCourseSelections > 0 && len(reqData.SelectedCourseIDs) > bundle.MaxCourseSelections {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Too many courses selected!", nil)
		}
	}

	purchase := courseModels.BundlePurchase{
		UserID:     userID,
		BundleID:   bundle.ID,
		PurchaseID: reqData.PurchaseID,
	}
	result := database.Database.Db.
		Where(courseModels.BundlePurchase{UserID: userID, BundleID: bundle.ID, PurchaseID: reqData.PurchaseID}).
		Attrs(courseModels.BundlePurchase{
			PurchaseDate:      time.Now(),
			SelectedCourseIDs: datatypes.JSONSlice[uint](reqData.SelectedCourseIDs),
		}).
		FirstOrCreate(&purchase)
	if result.Error != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to record purchase!", nil)
	}

	granted, err := utils.GrantBundleAccess(userID, &purchase)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to grant bundle access!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Bundle purchase registered!", fiber.Map{
		"purchase":        purchase,
		"granted_courses": len(granted),
		"grants":          granted,
	})
}
