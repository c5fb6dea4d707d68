package controllers

import (
	"elearn/database"
	"elearn/middleware"
	"elearn/models"
	courseModels "elearn/models/course"

	"github.com/gofiber/fiber/v2"
)

// AdminCreateCourse creates a new course
func AdminCreateCourse(c *fiber.Ctx) error {
	// Check instructor or admin role
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

	// Get validated request data
	reqData, ok := c.Locals("validatedCourse").(*struct {
		Title        string `json:"title"`
		Description  string `json:"description"`
		Author       string `json:"author"`
		Duration     int64  `json:"duration"`
		ThumbnailURL string `json:"thumbnail_url"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	course := courseModels.Course{
		Title:        reqData.Title,
		Description:  reqData.Description,
		Author:       reqData.Author,
		Duration:     reqData.Duration,
		ThumbnailURL: reqData.ThumbnailURL,
		Status:       courseModels.CourseDraft,
		IsPublished:  false,
	}

	if err := database.Database.Db.Create(&course).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create course!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Course created successfully!", course)
}

// AdminUpdateCourse updates an existing course
func AdminUpdateCourse(c *fiber.Ctx) error {
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

	reqData, ok := c.Locals("validatedCourseUpdate").(*struct {
		Title        string `json:"title"`
		Description  string `json:"description"`
		Author       string `json:"author"`
		Duration     int64  `json:"duration"`
		ThumbnailURL string `json:"thumbnail_url"`
		Status       string `json:"status"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	// Update only provided fields
	if reqData.Title != "" {
		course.Title = reqData.Title
	}
	if reqData.Description != "" {
		course.Description = reqData.Description
	}
	if reqData.Author != "" {
		course.Author = reqData.Author
	}
	if reqData.Duration > 0 {
		course.Duration = reqData.Duration
	}
	if reqData.ThumbnailURL != "" {
		course.ThumbnailURL = reqData.ThumbnailURL
	}
	if reqData.Status != "" {
		course.Status = reqData.Status
	}

	if err := database.Database.Db.Save(&course).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update course!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course updated successfully!", course)
}

// AdminPublishCourse makes a course visible to learners
func AdminPublishCourse(c *fiber.Ctx) error {
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

	// A course needs at least one published lesson before it can go live
	var lessonCount int64
	database.Database.Db.Model(&courseModels.Lesson{}).
		Where("course_id = ? AND is_deleted = ? AND is_published = ?", courseID, false, true).Count(&lessonCount)
	if lessonCount == 0 {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Cannot publish a course with no published lessons!", nil)
	}

	course.IsPublished = true
	course.Status = courseModels.CourseActive
	if err := database.Database.Db.Save(&course).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to publish course!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course published successfully!", course)
}

// AdminDeleteCourse soft deletes a course
func AdminDeleteCourse(c *fiber.Ctx) error {
	userId, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var user models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", userId, false).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
	}

	if user.Role != models.RoleAdmin {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Access denied! Admin only.", nil)
	}

	courseID := c.Locals("courseID").(int)

	var course courseModels.Course
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", courseID, false).First(&course).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	course.IsDeleted = true
	course.IsPublished = false
	if err := database.Database.Db.Save(&course).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to delete course!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course deleted successfully!", nil)
}

// AdminGetAllCourses lists all courses for staff, drafts included
func AdminGetAllCourses(c *fiber.Ctx) error {
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

	reqData, ok := c.Locals("validatedAdminList").(*struct {
		Page  *int `json:"page"`
		Limit *int `json:"limit"`
	})

	page := 1
	limit := 10
	if ok && reqData.Page != nil && *reqData.Page > 0 {
		page = *reqData.Page
	}
	if ok && reqData.Limit != nil && *reqData.Limit > 0 {
		limit = *reqData.Limit
	}
	offset := (page - 1) * limit

	var courses []courseModels.Course
	var total int64

	db := database.Database.Db.Model(&courseModels.Course{}).Where("is_deleted = ?", false)
	db.Count(&total)

	if err := db.Offset(offset).Limit(limit).Order("created_at desc").Find(&courses).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch courses!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Courses fetched successfully!", fiber.Map{
		"courses": courses,
		"pagination": fiber.Map{
			"total": total,
			"page":  page,
			"limit": limit,
		},
	})
}
