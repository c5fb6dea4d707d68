package courseRoutes

import (
	controllers "elearn/controllers/course"
	"elearn/middleware"
	validators "elearn/validators/course"

	"github.com/gofiber/fiber/v2"
)

// SetupAdminCourseRoutes sets up all course management routes
func SetupAdminCourseRoutes(app *fiber.App) {
	adminGroup := app.Group("/admin/course")

	// Course CRUD
	adminGroup.Post("/create", middleware.JWTMiddleware, validators.CreateCourseAdmin(), controllers.AdminCreateCourse)
	adminGroup.Get("/list", middleware.JWTMiddleware, validators.AdminList(), controllers.AdminGetAllCourses)
	adminGroup.Put("/:id", middleware.JWTMiddleware, validators.UpdateCourseAdmin(), controllers.AdminUpdateCourse)
	adminGroup.Delete("/:id", middleware.JWTMiddleware, validators.DeleteCourse(), controllers.AdminDeleteCourse)
	adminGroup.Post("/:id/publish", middleware.JWTMiddleware, validators.PublishCourse(), controllers.AdminPublishCourse)

	// Section management
	adminGroup.Post("/:id/section", middleware.JWTMiddleware, validators.CreateSection(), controllers.AdminCreateSection)
	adminGroup.Get("/:id/sections", middleware.JWTMiddleware, validators.ListSections(), controllers.AdminGetSections)
	adminGroup.Put("/:id/section/:sectionId", middleware.JWTMiddleware, validators.UpdateSection(), controllers.AdminUpdateSection)
	adminGroup.Delete("/:id/section/:sectionId", middleware.JWTMiddleware, validators.DeleteSection(), controllers.AdminDeleteSection)

	// Lesson management
	adminGroup.Post("/:id/section/:sectionId/lesson", middleware.JWTMiddleware, validators.CreateLesson(), controllers.AdminCreateLesson)
	adminGroup.Put("/:id/lesson/:lessonId", middleware.JWTMiddleware, validators.UpdateLesson(), controllers.AdminUpdateLesson)
	adminGroup.Post("/:id/lesson/:lessonId/publish", middleware.JWTMiddleware, validators.PublishLesson(), controllers.AdminPublishLesson)
	adminGroup.Delete("/:id/lesson/:lessonId", middleware.JWTMiddleware, validators.DeleteLesson(), controllers.AdminDeleteLesson)

	// Enrollment and progress tracking
	adminGroup.Get("/:id/enrollments", middleware.JWTMiddleware, validators.GetCourseEnrollments(), controllers.AdminGetCourseEnrollments)
	adminGroup.Get("/:id/completed", middleware.JWTMiddleware, validators.GetCourseEnrollments(), controllers.AdminGetCompletedStudents)

	studentGroup := app.Group("/admin/student")
	studentGroup.Get("/:user_id/progress", middleware.JWTMiddleware, validators.GetStudentProgress(), controllers.AdminGetStudentProgress)

	// Certificate outbox
	certGroup := app.Group("/admin/certificates")
	certGroup.Get("/outbox", middleware.JWTMiddleware, validators.GetCertificateOutbox(), controllers.AdminGetCertificateOutbox)

	// Dashboard
	dashGroup := app.Group("/admin/dashboard")
	dashGroup.Get("/stats", middleware.JWTMiddleware, controllers.AdminDashboardStats)
}
