package controllers

import (
	"time"

	"elearn/database"
	"elearn/middleware"
	"elearn/models"
	courseModels "elearn/models/course"

	"github.com/gofiber/fiber/v2"
)

// AdminGetCourseEnrollments gets all enrolled students for a course
func AdminGetCourseEnrollments(c *fiber.Ctx) error {
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

	reqData, _ := c.Locals("validatedEnrollmentQuery").(*struct {
		Page   *int   `json:"page"`
		Limit  *int   `json:"limit"`
		Status string `json:"status"`
	})

	page := 1
	limit := 10
	if reqData != nil && reqData.Page != nil && *reqData.Page > 0 {
		page = *reqData.Page
	}
	if reqData != nil && reqData.Limit != nil && *reqData.Limit > 0 {
		limit = *reqData.Limit
	}
	offset := (page - 1) * limit

	db := database.Database.Db.Model(&courseModels.Enrollment{}).Where("course_id = ? AND is_deleted = ?", courseID, false)

	if reqData != nil && reqData.Status != "" {
		db = db.Where("status = ?", reqData.Status)
	}

	var total int64
	db.Count(&total)

	type EnrollmentWithUser struct {
		courseModels.Enrollment
		UserName  string `json:"user_name"`
		UserEmail string `json:"user_email"`
	}

	var enrollments []courseModels.Enrollment
	if err := db.Offset(offset).Limit(limit).Order("created_at desc").Find(&enrollments).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch enrollments!", nil)
	}

	// Fetch user details for each enrollment
	result := make([]EnrollmentWithUser, len(enrollments))
	for i, e := range enrollments {
		var enrolledUser models.User
		database.Database.Db.Where("id = ?", e.UserID).First(&enrolledUser)
		result[i] = EnrollmentWithUser{
			Enrollment: e,
			UserName:   enrolledUser.Name,
			UserEmail:  enrolledUser.Email,
		}
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Enrollments fetched successfully!", fiber.Map{
		"enrollments": result,
		"pagination": fiber.Map{
			"total": total,
			"page":  page,
			"limit": limit,
		},
	})
}

// AdminGetCompletedStudents gets students who completed a course
func AdminGetCompletedStudents(c *fiber.Ctx) error {
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

	type CompletedStudent struct {
		UserID          uint       `json:"user_id"`
		UserName        string     `json:"user_name"`
		UserEmail       string     `json:"user_email"`
		PercentComplete int        `json:"percent_complete"`
		CertificateRef  *string    `json:"certificate_ref"`
		CompletedAt     *time.Time `json:"completed_at"`
	}

	var enrollments []courseModels.Enrollment
	if err := database.Database.Db.Where("course_id = ? AND status = ? AND is_deleted = ?", courseID, courseModels.EnrollmentCompleted, false).
		Order("completed_at desc").Find(&enrollments).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch completed students!", nil)
	}

	result := make([]CompletedStudent, len(enrollments))
	for i, e := range enrollments {
		var enrolledUser models.User
		database.Database.Db.Where("id = ?", e.UserID).First(&enrolledUser)
		result[i] = CompletedStudent{
			UserID:          e.UserID,
			UserName:        enrolledUser.Name,
			UserEmail:       enrolledUser.Email,
			PercentComplete: e.PercentComplete,
			CertificateRef:  e.CertificateRef,
			CompletedAt:     e.CompletedAt,
		}
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Completed students fetched successfully!", fiber.Map{
		"completed_students": result,
		"total":              len(result),
	})
}

// AdminGetStudentProgress gets detailed progress for a student across courses
func AdminGetStudentProgress(c *fiber.Ctx) error {
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

	targetUserID := c.Locals("targetUserID").(int)

	// Get target user
	var targetUser models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", targetUserID, false).First(&targetUser).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Student not found!", nil)
	}

	// Get all enrollments for the user
	var enrollments []courseModels.Enrollment
	if err := database.Database.Db.Where("user_id = ? AND is_deleted = ?", targetUserID, false).Find(&enrollments).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch enrollments!", nil)
	}

	type CourseProgress struct {
		CourseID         uint       `json:"course_id"`
		CourseName       string     `json:"course_name"`
		Status           string     `json:"status"`
		PercentComplete  int        `json:"percent_complete"`
		CompletedLessons int64      `json:"completed_lessons"`
		TotalWatchTime   int64      `json:"total_watch_time"`
		EnrolledAt       time.Time  `json:"enrolled_at"`
		CompletedAt      *time.Time `json:"completed_at"`
	}

	courseProgress := make([]CourseProgress, len(enrollments))
	for i, e := range enrollments {
		var course courseModels.Course
		database.Database.Db.Where("id = ?", e.CourseID).First(&course)

		var completedLessons int64
		database.Database.Db.Model(&courseModels.LessonCompletion{}).
			Where("enrollment_id = ?", e.ID).Count(&completedLessons)

		courseProgress[i] = CourseProgress{
			CourseID:         e.CourseID,
			CourseName:       course.Title,
			Status:           e.Status,
			PercentComplete:  e.PercentComplete,
			CompletedLessons: completedLessons,
			TotalWatchTime:   e.TotalWatchTime,
			EnrolledAt:       e.CreatedAt,
			CompletedAt:      e.CompletedAt,
		}
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Student progress fetched successfully!", fiber.Map{
		"student": fiber.Map{
			"id":    targetUser.ID,
			"name":  targetUser.Name,
			"email": targetUser.Email,
		},
		"course_progress": courseProgress,
	})
}

// AdminGetCertificateOutbox lists certificate outbox entries by status
func AdminGetCertificateOutbox(c *fiber.Ctx) error {
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

	reqData, _ := c.Locals("validatedCertificateQuery").(*struct {
		Page   *int   `json:"page"`
		Limit  *int   `json:"limit"`
		Status string `json:"status"`
	})

	page := 1
	limit := 10
	status := courseModels.CertificatePending
	if reqData != nil && reqData.Page != nil && *reqData.Page > 0 {
		page = *reqData.Page
	}
	if reqData != nil && reqData.Limit != nil && *reqData.Limit > 0 {
		limit = *reqData.Limit
	}
	if reqData != nil && reqData.Status != "" {
		status = reqData.Status
	}
	offset := (page - 1) * limit

	var total int64
	database.Database.Db.Model(&courseModels.CertificateOutbox{}).Where("status = ?", status).Count(&total)

	var entries []courseModels.CertificateOutbox
	if err := database.Database.Db.Where("status = ?", status).
		Offset(offset).Limit(limit).Order("created_at asc").Find(&entries).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch certificate outbox!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Certificate outbox fetched successfully!", fiber.Map{
		"entries": entries,
		"pagination": fiber.Map{
			"total": total,
			"page":  page,
			"limit": limit,
		},
	})
}

// AdminDashboardStats gets dashboard statistics
func AdminDashboardStats(c *fiber.Ctx) error {
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

	var totalCourses, publishedCourses, totalEnrollments, completedEnrollments, pendingCertificates int64

	database.Database.Db.Model(&courseModels.Course{}).Where("is_deleted = ?", false).Count(&totalCourses)
	database.Database.Db.Model(&courseModels.Course{}).Where("is_deleted = ? AND is_published = ?", false, true).Count(&publishedCourses)
	database.Database.Db.Model(&courseModels.Enrollment{}).Where("is_deleted = ?", false).Count(&totalEnrollments)
	database.Database.Db.Model(&courseModels.Enrollment{}).Where("is_deleted = ? AND status = ?", false, courseModels.EnrollmentCompleted).Count(&completedEnrollments)
	database.Database.Db.Model(&courseModels.CertificateOutbox{}).Where("status = ?", courseModels.CertificatePending).Count(&pendingCertificates)

	// Get recent enrollments
	type RecentEnrollment struct {
		UserName   string    `json:"user_name"`
		CourseName string    `json:"course_name"`
		EnrolledAt time.Time `json:"enrolled_at"`
	}

	var recentEnrollments []courseModels.Enrollment
	database.Database.Db.Where("is_deleted = ?", false).Order("created_at desc").Limit(5).Find(&recentEnrollments)

	recent := make([]RecentEnrollment, len(recentEnrollments))
	for i, e := range recentEnrollments {
		var enrolledUser models.User
		var course courseModels.Course
		database.Database.Db.Where("id = ?", e.UserID).First(&enrolledUser)
		database.Database.Db.Where("id = ?", e.CourseID).First(&course)
		recent[i] = RecentEnrollment{
			UserName:   enrolledUser.Name,
			CourseName: course.Title,
			EnrolledAt: e.CreatedAt,
		}
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Dashboard stats fetched successfully!", fiber.Map{
		"stats": fiber.Map{
			"total_courses":         totalCourses,
			"published_courses":     publishedCourses,
			"total_enrollments":     totalEnrollments,
			"completed_enrollments": completedEnrollments,
			"pending_certificates":  pendingCertificates,
		},
		"recent_enrollments": recent,
	})
}
