package courseValidator

import (
	"regexp"
	"strconv"
	"strings"

	"elearn/middleware"
	courseModels "elearn/models/course"

	"github.com/gofiber/fiber/v2"
)

// ============ Course Validators ============

// CreateCourseAdmin validates course creation request
func CreateCourseAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Title        string `json:"title"`
			Description  string `json:"description"`
			Author       string `json:"author"`
			Duration     int64  `json:"duration"`
			ThumbnailURL string `json:"thumbnail_url"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		reqData.Title = strings.TrimSpace(reqData.Title)
		reqData.Description = strings.TrimSpace(reqData.Description)
		reqData.Author = strings.TrimSpace(reqData.Author)

		if reqData.Title == "" {
			errors["title"] = "Title is required!"
		} else if len(reqData.Title) < 3 {
			errors["title"] = "Title must be at least 3 characters long!"
		} else if len(reqData.Title) > 100 {
			errors["title"] = "Title must not exceed 100 characters!"
		} else if matched, _ := regexp.MatchString(`[<>{}]`, reqData.Title); matched {
			errors["title"] = "Title contains invalid characters (e.g., <, >, {, })!"
		}

		if reqData.Description == "" {
			errors["description"] = "Description is required!"
		} else if len(reqData.Description) < 5 {
			errors["description"] = "Description must be at least 5 characters long!"
		}

		if reqData.Author == "" {
			errors["author"] = "Author is required!"
		} else if matched, _ := regexp.MatchString(`[<>{}]`, reqData.Author); matched {
			errors["author"] = "Author name contains invalid characters!"
		}

		if reqData.Duration < 0 {
			errors["duration"] = "Duration cannot be negative!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedCourse", reqData)
		return c.Next()
	}
}

// UpdateCourseAdmin validates course update request
func UpdateCourseAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		courseIDStr := strings.TrimSpace(c.Params("id"))
		if courseIDStr == "" {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Course ID is required!", nil)
		}

		courseID, err := strconv.Atoi(courseIDStr)
		if err != nil || courseID <= 0 {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Course ID!", nil)
		}

		reqData := new(struct {
			Title        string `json:"title"`
			Description  string `json:"description"`
			Author       string `json:"author"`
			Duration     int64  `json:"duration"`
			ThumbnailURL string `json:"thumbnail_url"`
			Status       string `json:"status"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		reqData.Title = strings.TrimSpace(reqData.Title)
		reqData.Status = strings.ToUpper(strings.TrimSpace(reqData.Status))

		if reqData.Title != "" && len(reqData.Title) < 3 {
			errors["title"] = "Title must be at least 3 characters long!"
		}

		if reqData.Status != "" &&
			reqData.Status != courseModels.CourseDraft &&
			reqData.Status != courseModels.CourseActive &&
			reqData.Status != courseModels.CourseInactive {
			errors["status"] = "Status must be one of DRAFT, ACTIVE, INACTIVE!"
		}

		if reqData.Duration < 0 {
			errors["duration"] = "Duration cannot be negative!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("courseID", courseID)
		c.Locals("validatedCourseUpdate", reqData)
		return c.Next()
	}
}

func DeleteCourse() fiber.Handler {
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

// PublishCourse validates course publish request
func PublishCourse() fiber.Handler {
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

// ============ Section Validators ============

func CreateSection() fiber.Handler {
	return func(c *fiber.Ctx) error {
		courseIDStr := strings.TrimSpace(c.Params("id"))
		courseID, err := strconv.Atoi(courseIDStr)
		if err != nil || courseID <= 0 {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Course ID!", nil)
		}

		reqData := new(struct {
			Title       string `json:"title"`
			Description string `json:"description"`
			OrderIndex  int    `json:"order_index"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		reqData.Title = strings.TrimSpace(reqData.Title)

		if reqData.Title == "" {
			errors["title"] = "Title is required!"
		} else if len(reqData.Title) < 3 {
			errors["title"] = "Title must be at least 3 characters long!"
		}

		if reqData.OrderIndex < 0 {
			errors["order_index"] = "Order index cannot be negative!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("courseID", courseID)
		c.Locals("validatedSection", reqData)
		return c.Next()
	}
}

func UpdateSection() fiber.Handler {
	return func(c *fiber.Ctx) error {
		courseIDStr := strings.TrimSpace(c.Params("id"))
		sectionIDStr := strings.TrimSpace(c.Params("sectionId"))

		courseID, err := strconv.Atoi(courseIDStr)
		if err != nil || courseID <= 0 {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Course ID!", nil)
		}

		sectionID, err := strconv.Atoi(sectionIDStr)
		if err != nil || sectionID <= 0 {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Section ID!", nil)
		}

		reqData := new(struct {
			Title       string `json:"title"`
			Description string `json:"description"`
			OrderIndex  int    `json:"order_index"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		if reqData.OrderIndex < 0 {
			return middleware.ValidationErrorResponse(c, map[string]string{
				"order_index": "Order index cannot be negative!",
			})
		}

		c.Locals("courseID", courseID)
		c.Locals("sectionID", sectionID)
		c.Locals("validatedSectionUpdate", reqData)
		return c.Next()
	}
}

func DeleteSection() fiber.Handler {
	return func(c *fiber.Ctx) error {
		courseIDStr := strings.TrimSpace(c.Params("id"))
		sectionIDStr := strings.TrimSpace(c.Params("sectionId"))

		courseID, err := strconv.Atoi(courseIDStr)
		if err != nil || courseID <= 0 {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Course ID!", nil)
		}

		sectionID, err := strconv.Atoi(sectionIDStr)
		if err != nil || sectionID <= 0 {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Section ID!", nil)
		}

		c.Locals("courseID", courseID)
		c.Locals("sectionID", sectionID)
		return c.Next()
	}
}

func ListSections() fiber.Handler {
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

// ============ Lesson Validators ============

func CreateLesson() fiber.Handler {
	return func(c *fiber.Ctx) error {
		courseIDStr := strings.TrimSpace(c.Params("id"))
		sectionIDStr := strings.TrimSpace(c.Params("sectionId"))

		courseID, err := strconv.Atoi(courseIDStr)
		if err != nil || courseID <= 0 {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Course ID!", nil)
		}

		sectionID, err := strconv.Atoi(sectionIDStr)
		if err != nil || sectionID <= 0 {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Section ID!", nil)
		}

		reqData := new(struct {
			Title           string `json:"title"`
			Description     string `json:"description"`
			VideoURL        string `json:"video_url"`
			DurationSeconds int    `json:"duration_seconds"`
			OrderIndex      int    `json:"order_index"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		reqData.Title = strings.TrimSpace(reqData.Title)
		reqData.VideoURL = strings.TrimSpace(reqData.VideoURL)

		if reqData.Title == "" {
			errors["title"] = "Title is required!"
		} else if len(reqData.Title) < 3 {
			errors["title"] = "Title must be at least 3 characters long!"
		}

		if reqData.DurationSeconds < 0 {
			errors["duration_seconds"] = "Duration cannot be negative!"
		}

		if reqData.OrderIndex < 0 {
			errors["order_index"] = "Order index cannot be negative!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("courseID", courseID)
		c.Locals("sectionID", sectionID)
		c.Locals("validatedLesson", reqData)
		return c.Next()
	}
}

func UpdateLesson() fiber.Handler {
	return func(c *fiber.Ctx) error {
		courseIDStr := strings.TrimSpace(c.Params("id"))
		lessonIDStr := strings.TrimSpace(c.Params("lessonId"))

		courseID, err := strconv.Atoi(courseIDStr)
		if err != nil || courseID <= 0 {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Course ID!", nil)
		}

		lessonID, err := strconv.Atoi(lessonIDStr)
		if err != nil || lessonID <= 0 {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Lesson ID!", nil)
		}

		reqData := new(struct {
			Title           string `json:"title"`
			Description     string `json:"description"`
			VideoURL        string `json:"video_url"`
			DurationSeconds int    `json:"duration_seconds"`
			OrderIndex      int    `json:"order_index"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if reqData.DurationSeconds < 0 {
			errors["duration_seconds"] = "Duration cannot be negative!"
		}

		if reqData.OrderIndex < 0 {
			errors["order_index"] = "Order index cannot be negative!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("courseID", courseID)
		c.Locals("lessonID", lessonID)
		c.Locals("validatedLessonUpdate", reqData)
		return c.Next()
	}
}

// PublishLesson validates lesson publish/unpublish request
func PublishLesson() fiber.Handler {
	return func(c *fiber.Ctx) error {
		courseIDStr := strings.TrimSpace(c.Params("id"))
		lessonIDStr := strings.TrimSpace(c.Params("lessonId"))

		courseID, err := strconv.Atoi(courseIDStr)
		if err != nil || courseID <= 0 {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Course ID!", nil)
		}

		lessonID, err := strconv.Atoi(lessonIDStr)
		if err != nil || lessonID <= 0 {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Lesson ID!", nil)
		}

		reqData := new(struct {
			IsPublished *bool `json:"is_published"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		if reqData.IsPublished == nil {
			return middleware.ValidationErrorResponse(c, map[string]string{
				"is_published": "is_published is required!",
			})
		}

		c.Locals("courseID", courseID)
		c.Locals("lessonID", lessonID)
		c.Locals("validatedPublish", reqData)
		return c.Next()
	}
}

func DeleteLesson() fiber.Handler {
	return func(c *fiber.Ctx) error {
		courseIDStr := strings.TrimSpace(c.Params("id"))
		lessonIDStr := strings.TrimSpace(c.Params("lessonId"))

		courseID, err := strconv.Atoi(courseIDStr)
		if err != nil || courseID <= 0 {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Course ID!", nil)
		}

		lessonID, err := strconv.Atoi(lessonIDStr)
		if err != nil || lessonID <= 0 {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Lesson ID!", nil)
		}

		c.Locals("courseID", courseID)
		c.Locals("lessonID", lessonID)
		return c.Next()
	}
}

// ============ Dashboard Validators ============

func GetCourseEnrollments() fiber.Handler {
	return func(c *fiber.Ctx) error {
		courseIDStr := strings.TrimSpace(c.Params("id"))
		if courseIDStr == "" {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Course ID is required!", nil)
		}

		courseID, err := strconv.Atoi(courseIDStr)
		if err != nil || courseID <= 0 {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Course ID!", nil)
		}

		reqData := new(struct {
			Page   *int   `json:"page"`
			Limit  *int   `json:"limit"`
			Status string `json:"status"`
		})

		if err := c.QueryParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid query parameters!", nil)
		}

		reqData.Status = strings.ToUpper(strings.TrimSpace(reqData.Status))

		c.Locals("courseID", courseID)
		c.Locals("validatedEnrollmentQuery", reqData)
		return c.Next()
	}
}

// GetStudentProgress validates student progress request
func GetStudentProgress() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userIDStr := strings.TrimSpace(c.Params("user_id"))
		if userIDStr == "" {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "User ID is required!", nil)
		}

		userID, err := strconv.Atoi(userIDStr)
		if err != nil || userID <= 0 {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid User ID!", nil)
		}

		c.Locals("targetUserID", userID)
		return c.Next()
	}
}

// GetCertificateOutbox validates certificate outbox list request
func GetCertificateOutbox() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Page   *int   `json:"page"`
			Limit  *int   `json:"limit"`
			Status string `json:"status"`
		})

		if err := c.QueryParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid query parameters!", nil)
		}

		reqData.Status = strings.ToUpper(strings.TrimSpace(reqData.Status))
		if reqData.Status != "" &&
			reqData.Status != courseModels.CertificatePending &&
			reqData.Status != courseModels.CertificateSent &&
			reqData.Status != courseModels.CertificateFailed {
			return middleware.ValidationErrorResponse(c, map[string]string{
				"status": "Status must be one of PENDING, SENT, FAILED!",
			})
		}

		c.Locals("validatedCertificateQuery", reqData)
		return c.Next()
	}
}

// AdminList validates admin list request with pagination
func AdminList() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Page  *int `json:"page"`
			Limit *int `json:"limit"`
		})

		if err := c.QueryParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid query parameters!", nil)
		}

		c.Locals("validatedAdminList", reqData)
		return c.Next()
	}
}
