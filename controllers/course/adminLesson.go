package controllers

import (
	"elearn/database"
	"elearn/middleware"
	"elearn/models"
	courseModels "elearn/models/course"

	"github.com/gofiber/fiber/v2"
)

// AdminCreateLesson creates a new lesson inside a section
func AdminCreateLesson(c *fiber.Ctx) error {
	userId, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var user models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", userId, false).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
	}

	if user.Role != models.RoleAdmin && user.Role != models.RoleInstructor {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Access denied! Instructor or admin only.", nil)
	}

	courseID := c.Locals("courseID").(int)
	sectionID := c.Locals("sectionID").(int)

	// The section must exist and belong to the course
	var section courseModels.Section
	if err := database.Database.Db.Where("id = ? AND course_id = ? AND is_deleted = ?", sectionID, courseID, false).First(&section).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Section not found!", nil)
	}

	reqData, ok := c.Locals("validatedLesson").(*struct {
		Title           string `json:"title"`
		Description     string `json:"description"`
		VideoURL        string `json:"video_url"`
		DurationSeconds int    `json:"duration_seconds"`
		OrderIndex      int    `json:"order_index"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	// Get the next order index if not provided
	orderIndex := reqData.OrderIndex
	if orderIndex == 0 {
		var maxOrder int
		database.Database.Db.Model(&courseModels.Lesson{}).Where("section_id = ? AND is_deleted = ?", sectionID, false).Select("COALESCE(MAX(order_index), 0)").Scan(&maxOrder)
		orderIndex = maxOrder + 1
	}

	lesson := courseModels.Lesson{
		CourseID:        uint(courseID),
		SectionID:       uint(sectionID),
		Title:           reqData.Title,
		Description:     reqData.Description,
		VideoURL:        reqData.VideoURL,
		DurationSeconds: reqData.DurationSeconds,
		OrderIndex:      orderIndex,
		IsPublished:     false,
	}

	if err := database.Database.Db.Create(&lesson).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create lesson!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Lesson created successfully!", lesson)
}

// AdminUpdateLesson updates an existing lesson
func AdminUpdateLesson(c *fiber.Ctx) error {
	userId, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var user models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", userId, false).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
	}

	if user.Role != models.RoleAdmin && user.Role != models.RoleInstructor {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Access denied! Instructor or admin only.", nil)
	}

	courseID := c.Locals("courseID").(int)
	lessonID := c.Locals("lessonID").(int)

	var lesson courseModels.Lesson
	if err := database.Database.Db.Where("id = ? AND course_id = ? AND is_deleted = ?", lessonID, courseID, false).First(&lesson).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Lesson not found!", nil)
	}

	reqData, ok := c.Locals("validatedLessonUpdate").(*struct {
		Title           string `json:"title"`
		Description     string `json:"description"`
		VideoURL        string `json:"video_url"`
		DurationSeconds int    `json:"duration_seconds"`
		OrderIndex      int    `json:"order_index"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	if reqData.Title != "" {
		lesson.Title = reqData.Title
	}
	if reqData.Description != "" {
		lesson.Description = reqData.Description
	}
	if reqData.VideoURL != "" {
		lesson.VideoURL = reqData.VideoURL
	}
	if reqData.DurationSeconds > 0 {
		lesson.DurationSeconds = reqData.DurationSeconds
	}
	if reqData.OrderIndex > 0 {
		lesson.OrderIndex = reqData.OrderIndex
	}

	if err := database.Database.Db.Save(&lesson).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update lesson!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Lesson updated successfully!", lesson)
}

// AdminPublishLesson toggles the published flag of a lesson
func AdminPublishLesson(c *fiber.Ctx) error {
	userId, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var user models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", userId, false).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
	}

	if user.Role != models.RoleAdmin && user.Role != models.RoleInstructor {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Access denied! Instructor or admin only.", nil)
	}

	courseID := c.Locals("courseID").(int)
	lessonID := c.Locals("lessonID").(int)

	var lesson courseModels.Lesson
	if err := database.Database.Db.Where("id = ? AND course_id = ? AND is_deleted = ?", lessonID, courseID, false).First(&lesson).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Lesson not found!", nil)
	}

	reqData, ok := c.Locals("validatedPublish").(*struct {
		IsPublished *bool `json:"is_published"`
	})
	if !ok || reqData.IsPublished == nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	if *reqData.IsPublished && lesson.VideoURL == "" {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Cannot publish a lesson without a video!", nil)
	}

	lesson.IsPublished = *reqData.IsPublished
	if err := database.Database.Db.Save(&lesson).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update lesson!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Lesson publish status updated successfully!", lesson)
}

// AdminDeleteLesson soft deletes a lesson
func AdminDeleteLesson(c *fiber.Ctx) error {
	userId, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var user models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", userId, false).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
	}

	if user.Role != models.RoleAdmin && user.Role != models.RoleInstructor {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Access denied! Instructor or admin only.", nil)
	}

	courseID := c.Locals("courseID").(int)
	lessonID := c.Locals("lessonID").(int)

	var lesson courseModels.Lesson
	if err := database.Database.Db.Where("id = ? AND course_id = ? AND is_deleted = ?", lessonID, courseID, false).First(&lesson).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Lesson not found!", nil)
	}

	lesson.IsDeleted = true
	lesson.IsPublished = false
	if err := database.Database.Db.Save(&lesson).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to delete lesson!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Lesson deleted successfully!", nil)
}
