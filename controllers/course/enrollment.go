package controllers

import (
	"elearn/database"
	"elearn/middleware"
	"elearn/models"
	courseModels "elearn/models/course"

	"github.com/gofiber/fiber/v2"
)

// EnrollInCourse creates an enrollment for the authenticated user.
func EnrollInCourse(c *fiber.Ctx) error {
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

	// Retrieve validated course ID and enrollment type
	courseID := c.Locals("courseID").(int)
	enrollmentType, _ := c.Locals("enrollmentType").(string)

	enrollment, err := Engine.Enroll(c.Context(), userID, uint(courseID), enrollmentType)
	if err != nil {
		return engineErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Enrolled in course successfully!", enrollment)
}

// GetEnrollment returns the caller's enrollment in a course. A request for a
// course the user never enrolled in is rejected, never silently created.
func GetEnrollment(c *fiber.Ctx) error {
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

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Enrollment fetched successfully!", enrollment)
}

// GetUserEnrollmentsList gets all enrollments for the current user
func GetUserEnrollmentsList(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var user models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", userID, false).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
	}

	type EnrollmentWithCourse struct {
		courseModels.Enrollment
		CourseName        string `json:"course_name"`
		CourseDescription string `json:"course_description"`
		CourseAuthor      string `json:"course_author"`
	}

	var enrollments []courseModels.Enrollment
	if err := database.Database.Db.Where("user_id = ? AND is_deleted = ?", userID, false).Order("created_at desc").Find(&enrollments).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch enrollments!", nil)
	}

	result := make([]EnrollmentWithCourse, len(enrollments))
	for i, e := range enrollments {
		var course courseModels.Course
		database.Database.Db.Where("id = ?", e.CourseID).First(&course)
		result[i] = EnrollmentWithCourse{
			Enrollment:        e,
			CourseName:        course.Title,
			CourseDescription: course.Description,
			CourseAuthor:      course.Author,
		}
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Enrollments fetched successfully!", fiber.Map{
		"enrollments": result,
		"total":       len(result),
	})
}

// SetEnrollmentStatus is the internal callback for the payment/refund
// collaborator: it pushes REFUNDED, SUSPENDED or EXPIRED onto an enrollment.
// The overwrite is idempotent; repeating a transition is not an error.
func SetEnrollmentStatus(c *fiber.Ctx) error {
	enrollmentID := c.Locals("enrollmentID").(int)
	status := c.Locals("enrollmentStatus").(string)

	enrollment, err := Engine.SetStatus(c.Context(), uint(enrollmentID), status)
	if err != nil {
		return engineErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Enrollment status updated successfully!", enrollment)
}
