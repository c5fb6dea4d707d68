package courseValidator

import (
	"strconv"
	"strings"

	"elearn/middleware"
	courseModels "elearn/models/course"

	"github.com/gofiber/fiber/v2"
)

func EnrollCourse() fiber.Handler {
	return func(c *fiber.Ctx) error {
		courseIDStr := strings.TrimSpace(c.Params("id"))
		if courseIDStr == "" {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Course ID is required!", nil)
		}

		// Validate CourseID is a valid integer
		courseID, err := strconv.Atoi(courseIDStr)
		if err != nil || courseID <= 0 {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Course ID!", nil)
		}

		reqData := new(struct {
			EnrollmentType string `json:"enrollment_type"`
		})

		// Body is optional, a bare enroll defaults to FREE
		if len(c.Body()) > 0 {
			if err := c.BodyParser(reqData); err != nil {
				return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
			}
		}

		reqData.EnrollmentType = strings.ToUpper(strings.TrimSpace(reqData.EnrollmentType))
		if reqData.EnrollmentType == "" {
			reqData.EnrollmentType = courseModels.EnrollFree
		}

		if !courseModels.ValidEnrollmentType(reqData.EnrollmentType) {
			return middleware.ValidationErrorResponse(c, map[string]string{
				"enrollment_type": "Enrollment type must be one of FREE, PAID, GIFTED, PROMOTIONAL!",
			})
		}

		c.Locals("courseID", courseID)
		c.Locals("enrollmentType", reqData.EnrollmentType)
		return c.Next()
	}
}

func GetEnrollment() fiber.Handler {
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

// UpdateEnrollmentStatus validates the service-to-service status update.
// Only statuses owned by the billing side may be set this way.
func UpdateEnrollmentStatus() fiber.Handler {
	return func(c *fiber.Ctx) error {
		enrollmentIDStr := strings.TrimSpace(c.Params("id"))
		if enrollmentIDStr == "" {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Enrollment ID is required!", nil)
		}

		enrollmentID, err := strconv.Atoi(enrollmentIDStr)
		if err != nil || enrollmentID <= 0 {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Enrollment ID!", nil)
		}

		reqData := new(struct {
			Status string `json:"status"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		reqData.Status = strings.ToUpper(strings.TrimSpace(reqData.Status))
		if !courseModels.ExternalStatus(reqData.Status) {
			return middleware.ValidationErrorResponse(c, map[string]string{
				"status": "Status must be one of REFUNDED, SUSPENDED, EXPIRED!",
			})
		}

		c.Locals("enrollmentID", enrollmentID)
		c.Locals("enrollmentStatus", reqData.Status)
		return c.Next()
	}
}
