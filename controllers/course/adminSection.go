package controllers

import (
	"elearn/database"
	"elearn/middleware"
	"elearn/models"
	courseModels "elearn/models/course"

	"github.com/gofiber/fiber/v2"
)

// AdminCreateSection creates a new section in a course
func AdminCreateSection(c *fiber.Ctx) error {
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

	// Check if course exists
	var course courseModels.Course
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", courseID, false).First(&course).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	reqData, ok := c.Locals("validatedSection").(*struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		OrderIndex  int    `json:"order_index"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	// Get the next order index if not provided
	orderIndex := reqData.OrderIndex
	if orderIndex == 0 {
		var maxOrder int
		database.Database.Db.Model(&courseModels.Section{}).Where("course_id = ? AND is_deleted = ?", courseID, false).Select("COALESCE(MAX(order_index), 0)").Scan(&maxOrder)
		orderIndex = maxOrder + 1
	}

	section := courseModels.Section{
		CourseID:    uint(courseID),
		Title:       reqData.Title,
		Description: reqData.Description,
		OrderIndex:  orderIndex,
	}

	if err := database.Database.Db.Create(&section).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create section!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Section created successfully!", section)
}

// AdminUpdateSection updates an existing section
func AdminUpdateSection(c *fiber.Ctx) error {
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

	var section courseModels.Section
	if err := database.Database.Db.Where("id = ? AND course_id = ? AND is_deleted = ?", sectionID, courseID, false).First(&section).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Section not found!", nil)
	}

	reqData, ok := c.Locals("validatedSectionUpdate").(*struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		OrderIndex  int    `json:"order_index"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	if reqData.Title != "" {
		section.Title = reqData.Title
	}
	if reqData.Description != "" {
		section.Description = reqData.Description
	}
	if reqData.OrderIndex > 0 {
		section.OrderIndex = reqData.OrderIndex
	}

	if err := database.Database.Db.Save(&section).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update section!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Section updated successfully!", section)
}

// AdminDeleteSection soft deletes a section and its lessons
func AdminDeleteSection(c *fiber.Ctx) error {
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

	var section courseModels.Section
	if err := database.Database.Db.Where("id = ? AND course_id = ? AND is_deleted = ?", sectionID, courseID, false).First(&section).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Section not found!", nil)
	}

	section.IsDeleted = true
	if err := database.Database.Db.Save(&section).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to delete section!", nil)
	}

	// Lessons of a deleted section drop out of the curriculum too
	database.Database.Db.Model(&courseModels.Lesson{}).
		Where("section_id = ? AND is_deleted = ?", sectionID, false).
		Update("is_deleted", true)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Section deleted successfully!", nil)
}

// AdminGetSections lists sections of a course with their lessons
func AdminGetSections(c *fiber.Ctx) error {
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

	var course courseModels.Course
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", courseID, false).First(&course).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	var sections []courseModels.Section
	if err := database.Database.Db.Where("course_id = ? AND is_deleted = ?", courseID, false).Order("order_index asc, id asc").Find(&sections).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch sections!", nil)
	}

	var lessons []courseModels.Lesson
	database.Database.Db.Where("course_id = ? AND is_deleted = ?", courseID, false).
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

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Sections fetched successfully!", fiber.Map{
		"course":   course,
		"sections": result,
	})
}
