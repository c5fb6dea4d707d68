package courseValidator

import (
	"strconv"
	"strings"

	"elearn/middleware"

	"github.com/gofiber/fiber/v2"
)

// CourseList validates pagination for the public catalog
func CourseList() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Page  *int `json:"page"`
			Limit *int `json:"limit"`
		})

		if err := c.QueryParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid query parameters!", nil)
		}

		errors := make(map[string]string)

		if reqData.Page != nil && *reqData.Page < 1 {
			errors["page"] = "Page must be greater than 0!"
		}

		if reqData.Limit != nil && (*reqData.Limit < 1 || *reqData.Limit > 100) {
			errors["limit"] = "Limit must be between 1 and 100!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedList", reqData)
		return c.Next()
	}
}

// GetCourseDetail validates the course detail request
func GetCourseDetail() fiber.Handler {
	return func(c *fiber.Ctx) error {
		courseIDStr := strings.TrimSpace(c.Params("id"))
		if courseIDStr == "" {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Course ID is required!", nil)
		}

		courseID, err := strconv.Atoi(courseIDStr)
		if err != nil || courseID <= 0 {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Course ID!", nil)
		}

		c.Locals("courseID", courseID)
		return c.Next()
	}
}
