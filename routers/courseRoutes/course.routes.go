package courseRoutes

import (
	controllers "elearn/controllers/course"
	"elearn/middleware"
	validators "elearn/validators/course"

	"github.com/gofiber/fiber/v2"
)

// SetupCourseRoutes sets up all learner-facing course routes
func SetupCourseRoutes(app *fiber.App) {
	userGroup := app.Group("/course")

	// Course catalog
	userGroup.Get("/list", middleware.JWTMiddleware, validators.CourseList(), controllers.GetAllCourses)
	userGroup.Get("/:id", middleware.JWTMiddleware, validators.GetCourseDetail(), controllers.GetCourseDetails)

	// Enrollment
	userGroup.Post("/:id/enroll", middleware.JWTMiddleware, validators.EnrollCourse(), controllers.EnrollInCourse)
	userGroup.Get("/:id/enrollment", middleware.JWTMiddleware, validators.GetEnrollment(), controllers.GetEnrollment)

	// Lesson progress
	userGroup.Post("/:id/lesson/:lessonId/watch", middleware.JWTMiddleware, validators.RecordWatchProgress(), controllers.RecordLessonProgress)
	userGroup.Post("/:id/lesson/:lessonId/complete", middleware.JWTMiddleware, validators.MarkLessonComplete(), controllers.MarkLessonComplete)
	userGroup.Get("/:id/progress", middleware.JWTMiddleware, validators.GetProgress(), controllers.GetUserProgress)

	// Navigation within the curriculum
	userGroup.Get("/:id/navigate/:direction", middleware.JWTMiddleware, validators.Navigation(), controllers.GetNavigation)

	// User enrollments
	userEnrollGroup := app.Group("/user")
	userEnrollGroup.Get("/enrollments", middleware.JWTMiddleware, controllers.GetUserEnrollmentsList)

	// Service-to-service enrollment status updates (billing, refunds)
	internalGroup := app.Group("/internal")
	internalGroup.Put("/enrollment/:id/status", middleware.ServiceKeyMiddleware, validators.UpdateEnrollmentStatus(), controllers.SetEnrollmentStatus)
}
