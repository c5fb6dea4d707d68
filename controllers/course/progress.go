package controllers

import (
	"elearn/database"
	"elearn/middleware"
	"elearn/models"

	"github.com/gofiber/fiber/v2"
)

// RecordLessonProgress handles the player's periodic playback heartbeat. It
// is high-frequency and low-stakes: losing or duplicating one must never
// corrupt the enrollment's watch-time accounting.
func RecordLessonProgress(c *fiber.Ctx) error {
	// Retrieve userId from JWT middleware
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	// Check if user exists
	var user models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", userID, false).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
	}

	courseID := c.Locals("courseID").(int)
	lessonID := c.Locals("lessonID").(int)

	reqData, ok := c.Locals("validatedWatchProgress").(*struct {
		WatchedSeconds int `json:"watched_seconds"`
		LastPosition   int `json:"last_position"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	// The enrollment must belong to the caller
	enrollment, err := Engine.Get(c.Context(), userID, uint(courseID))
	if err != nil {
		return engineErrorResponse(c, err)
	}

	watch, err := Engine.RecordWatch(c.Context(), enrollment.ID, uint(lessonID), reqData.WatchedSeconds, reqData.LastPosition)
	if err != nil {
		return engineErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Progress recorded successfully!", watch)
}

// MarkLessonComplete marks a lesson as completed for the caller's
// enrollment. Re-submitting the same completion is an idempotent success.
func MarkLessonComplete(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var user models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", userID, false).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
	}

	courseID := c.Locals("courseID").(int)
	lessonID := c.Locals("lessonID").(int)

	enrollment, err := Engine.Get(c.Context(), userID, uint(courseID))
	if err != nil {
		return engineErrorResponse(c, err)
	}

	snapshot, err := Engine.MarkComplete(c.Context(), enrollment.ID, uint(lessonID))
	if err != nil {
		return engineErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Lesson marked as completed successfully!", snapshot)
}

// GetUserProgress gets the user's progress in a course
func GetUserProgress(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var user models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", userID, false).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
	}

	courseID := c.Locals("courseID").(int)

	enrollment, err := Engine.Get(c.Context(), userID, uint(courseID))
	if err != nil {
		return engineErrorResponse(c, err)
	}

	snapshot, err := Engine.Progress(c.Context(), enrollment.ID)
	if err != nil {
		return engineErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Progress fetched successfully!", snapshot)
}
