package courseValidator

import (
	"strconv"
	"strings"

	"elearn/curriculum"
	"elearn/middleware"

	"github.com/gofiber/fiber/v2"
)

func lessonParams(c *fiber.Ctx) (int, int, bool) {
	courseIDStr := strings.TrimSpace(c.Params("id"))
	lessonIDStr := strings.TrimSpace(c.Params("lessonId"))

	courseID, err := strconv.Atoi(courseIDStr)
	if err != nil || courseID <= 0 {
		return 0, 0, false
	}

	lessonID, err := strconv.Atoi(lessonIDStr)
	if err != nil || lessonID <= 0 {
		return 0, 0, false
	}

	return courseID, lessonID, true
}

// RecordWatchProgress validates the playback heartbeat request
func RecordWatchProgress() fiber.Handler {
	return func(c *fiber.Ctx) error {
		courseID, lessonID, ok := lessonParams(c)
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Course or Lesson ID!", nil)
		}

		reqData := new(struct {
			WatchedSeconds int `json:"watched_seconds"`
			LastPosition   int `json:"last_position"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if reqData.WatchedSeconds < 0 {
			errors["watched_seconds"] = "Watched seconds cannot be negative!"
		}
		if reqData.WatchedSeconds > 24*60*60 {
			errors["watched_seconds"] = "Watched seconds is implausibly large!"
		}
		if reqData.LastPosition < 0 {
			errors["last_position"] = "Last position cannot be negative!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("courseID", courseID)
		c.Locals("lessonID", lessonID)
		c.Locals("validatedWatchProgress", reqData)
		return c.Next()
	}
}

// MarkLessonComplete validates the completion request
func MarkLessonComplete() fiber.Handler {
	return func(c *fiber.Ctx) error {
		courseID, lessonID, ok := lessonParams(c)
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Course or Lesson ID!", nil)
		}

		c.Locals("courseID", courseID)
		c.Locals("lessonID", lessonID)
		return c.Next()
	}
}

// GetProgress validates the progress snapshot request
func GetProgress() fiber.Handler {
	return func(c *fiber.Ctx) error {
		courseIDStr := strings.TrimSpace(c.Params("id"))
		courseID, err := strconv.Atoi(courseIDStr)
		if err != nil || courseID <= 0 {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Course ID!", nil)
		}

		c.Locals("courseID", courseID)
		return c.Next()
	}
}

// Navigation validates the lesson navigation request
func Navigation() fiber.Handler {
	return func(c *fiber.Ctx) error {
		courseIDStr := strings.TrimSpace(c.Params("id"))
		courseID, err := strconv.Atoi(courseIDStr)
		if err != nil || courseID <= 0 {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Course ID!", nil)
		}

		direction := strings.ToLower(strings.TrimSpace(c.Params("direction")))
		if !curriculum.ValidDirection(direction) {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Direction must be one of current, next, previous!", nil)
		}

		// Optional override of the anchor lesson
		var fromLessonID *uint
		if lessonIDStr := strings.TrimSpace(c.Query("lesson_id")); lessonIDStr != "" {
			lessonID, err := strconv.Atoi(lessonIDStr)
			if err != nil || lessonID <= 0 {
				return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid lesson_id query parameter!", nil)
			}
			id := uint(lessonID)
			fromLessonID = &id
		}

		c.Locals("courseID", courseID)
		c.Locals("navDirection", direction)
		c.Locals("fromLessonID", fromLessonID)
		return c.Next()
	}
}
