package controllers

import (
	"elearn/database"
	"elearn/middleware"
	"elearn/models"

	"github.com/gofiber/fiber/v2"
)

// GetNavigation resolves the lesson the player should land on for the
// caller's enrollment: the current lesson, or its neighbour in flattened
// curriculum order when direction is next/previous.
func GetNavigation(c *fiber.Ctx) error {
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
	direction := c.Locals("navDirection").(string)
	fromLesson, _ := c.Locals("fromLessonID").(*uint)

	enrollment, err := Engine.Get(c.Context(), userID, uint(courseID))
	if err != nil {
		return engineErrorResponse(c, err)
	}

	lessonID, found, err := Engine.Navigation(c.Context(), enrollment.ID, fromLesson, direction)
	if err != nil {
		return engineErrorResponse(c, err)
	}

	if !found {
		return middleware.JsonResponse(c, fiber.StatusOK, true, "No lesson in that direction!", fiber.Map{
			"lesson_id": nil,
			"found":     false,
		})
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Lesson resolved successfully!", fiber.Map{
		"lesson_id": lessonID,
		"found":     true,
	})
}
