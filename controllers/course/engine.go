package controllers

import (
	"errors"

	"elearn/middleware"
	"elearn/progress"

	"github.com/gofiber/fiber/v2"
)

// Engine is the progress engine shared by the course controllers; main wires
// it up after the database and logger are ready.
var Engine *progress.Engine

// engineErrorResponse maps engine errors onto the HTTP error taxonomy.
// Validation-class errors are client errors and are never retried here.
func engineErrorResponse(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, progress.ErrAlreadyEnrolled):
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "User already enrolled in this course!", nil)
	case errors.Is(err, progress.ErrCourseUnavailable):
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found or not published!", nil)
	case errors.Is(err, progress.ErrNotEnrolled):
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "User not enrolled in this course!", nil)
	case errors.Is(err, progress.ErrEnrollmentInactive):
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "This enrollment is no longer active!", nil)
	case errors.Is(err, progress.ErrLessonNotInCourse):
		return middleware.JsonResponse(c, fiber.StatusUnprocessableEntity, false, "Lesson does not belong to this course!", nil)
	case errors.Is(err, progress.ErrPersistenceConflict):
		return middleware.JsonResponse(c, fiber.StatusServiceUnavailable, false, "Progress update conflicted, please retry!", nil)
	default:
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Something went wrong!", nil)
	}
}
