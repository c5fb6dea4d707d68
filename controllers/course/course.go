package controllers

import (
	"elearn/database"
	"elearn/middleware"
	"elearn/models"
	courseModels "elearn/models/course"

	"github.com/gofiber/fiber/v2"
)

func GetAllCourses(c *fiber.Ctx) error {
	// Retrieve userId from JWT middleware
	userId, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	// Check if user exists
	var user models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", userId, false).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Access Denied!", nil)
	}

	reqData, ok := c.Locals("validatedList").(*struct {
		Page  *int `json:"page"`
		Limit *int `json:"limit"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	// Set default pagination
	page := 1
	limit := 10
	if reqData.Page != nil {
		page = *reqData.Page
	}
	if reqData.Limit != nil {
		limit = *reqData.Limit
	}
	offset := (page - 1) * limit

	db := database.Database.Db.Model(&courseModels.Course{}).
		Where("is_deleted = ? AND is_published = ? AND status = ?", false, true, courseModels.CourseActive)

	// Get total count
	var total int64
	db.Count(&total)

	// Fetch paginated data
	var courses []courseModels.Course
	if err := db.Offset(offset).Limit(limit).Order("created_at desc").Find(&courses).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch courses!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Courses fetched successfully!", fiber.Map{
		"courses": courses,
		"pagination": fiber.Map{
			"page":  page,
			"limit": limit,
			"total": total,
		},
	})
}

// GetCourseDetails gets course details with sections and lessons for users
func GetCourseDetails(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var user models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", userID, false).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
	}

	courseID := c.Locals("courseID").(int)

	var course courseModels.Course
	if err := database.Database.Db.Where("id = ? AND is_deleted = ? AND is_published = ?", courseID, false, true).First(&course).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	// Get sections in display order
	var sections []courseModels.Section
	database.Database.Db.Where("course_id = ? AND is_deleted = ?", courseID, false).
		Order("order_index asc, id asc").Find(&sections)

	// Group published lessons under their sections
	var lessons []courseModels.Lesson
	database.Database.Db.Where("course_id = ? AND is_deleted = ? AND is_published = ?", courseID, false, true).
		Order("order_index asc, id asc").Find(&lessons)

	type SectionWithLessons struct {
		courseModels.Section
		Lessons []courseModels.Lesson `json:"lessons"`
	}

	result := make([]SectionWithLessons, len(sections))
	for i, section := range sections {
		result[i] = SectionWithLessons{Section: section, Lessons: []courseModels.Lesson{}}
		for _, lesson := range lessons {
			if lesson.SectionID == section.ID {
				result[i].Lessons = append(result[i].Lessons, lesson)
			}
		}
	}

	// Check if user is enrolled
	var enrollment courseModels.Enrollment
	isEnrolled := database.Database.Db.Where("user_id = ? AND course_id = ? AND is_deleted = ?", userID, courseID, false).
		First(&enrollment).Error == nil

	data := fiber.Map{
		"course":      course,
		"sections":    result,
		"is_enrolled": isEnrolled,
	}
	if isEnrolled {
		data["enrollment"] = enrollment
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course details fetched successfully!", data)
}
