package controllers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"elearn/config"
	controllers "elearn/controllers/course"
	"elearn/database"
	"elearn/logger"
	"elearn/middleware"
	"elearn/models"
	courseModels "elearn/models/course"
	"elearn/progress"
	courseRoutes "elearn/routers/courseRoutes"

	"github.com/gofiber/fiber/v2"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var dbSeq int64

func setupApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:routetest%d?mode=memory&cache=shared", atomic.AddInt64(&dbSeq, 1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(database.Models()...); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	prevDB := database.Database
	prevCfg := config.AppConfig
	prevEngine := controllers.Engine
	database.Database = database.DbInstance{Db: db}
	config.AppConfig = &config.Config{
		JWTKey:        "test-secret",
		ServiceApiKey: "service-secret",
	}
	controllers.Engine = progress.NewEngine(db, logger.NewNop(), progress.NewOutboxRequester(), 30*24*time.Hour)
	t.Cleanup(func() {
		database.Database = prevDB
		config.AppConfig = prevCfg
		controllers.Engine = prevEngine
	})

	app := fiber.New()
	courseRoutes.SetupCourseRoutes(app)
	courseRoutes.SetupAdminCourseRoutes(app)
	return app, db
}

func seedPublishedCourse(t *testing.T, db *gorm.DB) (uint, []uint) {
	t.Helper()
	course := courseModels.Course{Title: "Go Basics", Status: courseModels.CourseActive, IsPublished: true}
	if err := db.Create(&course).Error; err != nil {
		t.Fatalf("create course: %v", err)
	}
	sec := courseModels.Section{CourseID: course.ID, Title: "Intro", OrderIndex: 1}
	if err := db.Create(&sec).Error; err != nil {
		t.Fatalf("create section: %v", err)
	}
	var lessonIDs []uint
	for i := 1; i <= 2; i++ {
		l := courseModels.Lesson{
			CourseID: course.ID, SectionID: sec.ID,
			Title: fmt.Sprintf("Lesson %d", i), OrderIndex: i, IsPublished: true,
		}
		if err := db.Create(&l).Error; err != nil {
			t.Fatalf("create lesson: %v", err)
		}
		lessonIDs = append(lessonIDs, l.ID)
	}
	return course.ID, lessonIDs
}

func seedUser(t *testing.T, db *gorm.DB, role string) (models.User, string) {
	t.Helper()
	user := models.User{Name: "Test Learner", Email: fmt.Sprintf("u%d@example.com", time.Now().UnixNano()), Role: role}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	token, err := middleware.GenerateJWT(user.ID, user.Name, user.Role, user.Email)
	if err != nil {
		t.Fatalf("generate jwt: %v", err)
	}
	return user, token
}

func doJSON(t *testing.T, app *fiber.App, method, path, token string, body interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	var parsed map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp, parsed
}

func TestEnrollAndCompleteOverHTTP(t *testing.T) {
	app, db := setupApp(t)
	courseID, lessons := seedPublishedCourse(t, db)
	_, token := seedUser(t, db, models.RoleUser)

	// Enroll
	resp, _ := doJSON(t, app, "POST", fmt.Sprintf("/course/%d/enroll", courseID), token, nil)
	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("enroll status = %d", resp.StatusCode)
	}

	// Duplicate enroll conflicts
	resp, _ = doJSON(t, app, "POST", fmt.Sprintf("/course/%d/enroll", courseID), token, nil)
	if resp.StatusCode != fiber.StatusConflict {
		t.Fatalf("duplicate enroll status = %d, want 409", resp.StatusCode)
	}

	// Watch and complete the first lesson
	resp, _ = doJSON(t, app, "POST", fmt.Sprintf("/course/%d/lesson/%d/watch", courseID, lessons[0]), token,
		map[string]interface{}{"watched_seconds": 30, "last_position": 30})
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("watch status = %d", resp.StatusCode)
	}

	resp, parsed := doJSON(t, app, "POST", fmt.Sprintf("/course/%d/lesson/%d/complete", courseID, lessons[0]), token, nil)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("complete status = %d", resp.StatusCode)
	}
	data := parsed["data"].(map[string]interface{})
	if pct := data["percent_complete"].(float64); pct != 50 {
		t.Fatalf("percent = %v, want 50", pct)
	}

	// Finish the course
	resp, parsed = doJSON(t, app, "POST", fmt.Sprintf("/course/%d/lesson/%d/complete", courseID, lessons[1]), token, nil)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("complete status = %d", resp.StatusCode)
	}
	data = parsed["data"].(map[string]interface{})
	if status := data["status"].(string); status != courseModels.EnrollmentCompleted {
		t.Fatalf("status = %q, want COMPLETED", status)
	}

	// Completion queued exactly one certificate
	var outbox int64
	db.Model(&courseModels.CertificateOutbox{}).Count(&outbox)
	if outbox != 1 {
		t.Fatalf("outbox rows = %d, want 1", outbox)
	}
}

func TestProgressRequiresEnrollment(t *testing.T) {
	app, db := setupApp(t)
	courseID, lessons := seedPublishedCourse(t, db)
	_, token := seedUser(t, db, models.RoleUser)

	resp, _ := doJSON(t, app, "POST", fmt.Sprintf("/course/%d/lesson/%d/complete", courseID, lessons[0]), token, nil)
	if resp.StatusCode != fiber.StatusForbidden {
		t.Fatalf("status = %d, want 403 for non-enrolled user", resp.StatusCode)
	}
}

func TestInternalStatusRouteRequiresServiceKey(t *testing.T) {
	app, db := setupApp(t)
	courseID, _ := seedPublishedCourse(t, db)
	user, token := seedUser(t, db, models.RoleUser)

	resp, _ := doJSON(t, app, "POST", fmt.Sprintf("/course/%d/enroll", courseID), token, nil)
	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("enroll status = %d", resp.StatusCode)
	}
	var enrollment courseModels.Enrollment
	if err := db.Where("user_id = ?", user.ID).First(&enrollment).Error; err != nil {
		t.Fatalf("load enrollment: %v", err)
	}

	// Missing service key is rejected
	body := map[string]interface{}{"status": "REFUNDED"}
	var buf bytes.Buffer
	json.NewEncoder(&buf).Encode(body)
	req := httptest.NewRequest("PUT", fmt.Sprintf("/internal/enrollment/%d/status", enrollment.ID), &buf)
	req.Header.Set("Content-Type", "application/json")
	resp2, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp2.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("status = %d, want 401 without service key", resp2.StatusCode)
	}

	// With the key the refund lands
	buf.Reset()
	json.NewEncoder(&buf).Encode(body)
	req = httptest.NewRequest("PUT", fmt.Sprintf("/internal/enrollment/%d/status", enrollment.ID), &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Service-Key", "service-secret")
	resp2, err = app.Test(req, -1)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp2.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want 200 with service key", resp2.StatusCode)
	}

	db.First(&enrollment, enrollment.ID)
	if enrollment.Status != courseModels.EnrollmentRefunded {
		t.Fatalf("status = %q, want REFUNDED", enrollment.Status)
	}

	// Progress is now blocked
	resp3, _ := doJSON(t, app, "GET", fmt.Sprintf("/course/%d/navigate/current", courseID), token, nil)
	if resp3.StatusCode != fiber.StatusOK {
		// navigation on a terminal enrollment is still readable
		t.Fatalf("navigate status = %d", resp3.StatusCode)
	}
}

func TestAdminCourseLifecycle(t *testing.T) {
	app, db := setupApp(t)
	_, token := seedUser(t, db, models.RoleInstructor)

	// Create a course
	resp, parsed := doJSON(t, app, "POST", "/admin/course/create", token, map[string]interface{}{
		"title":       "New Course",
		"description": "A course about things",
		"author":      "Jane Doe",
		"duration":    10,
	})
	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("create course status = %d (%v)", resp.StatusCode, parsed)
	}
	courseID := uint(parsed["data"].(map[string]interface{})["ID"].(float64))

	// Publishing without lessons is rejected
	resp, _ = doJSON(t, app, "POST", fmt.Sprintf("/admin/course/%d/publish", courseID), token, nil)
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("publish empty course status = %d, want 400", resp.StatusCode)
	}

	// Add a section and a lesson, publish the lesson, then the course
	resp, parsed = doJSON(t, app, "POST", fmt.Sprintf("/admin/course/%d/section", courseID), token, map[string]interface{}{
		"title": "Getting Started",
	})
	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("create section status = %d", resp.StatusCode)
	}
	sectionID := uint(parsed["data"].(map[string]interface{})["ID"].(float64))

	resp, parsed = doJSON(t, app, "POST", fmt.Sprintf("/admin/course/%d/section/%d/lesson", courseID, sectionID), token, map[string]interface{}{
		"title":            "Hello World",
		"video_url":        "https://cdn.example.com/v/1.mp4",
		"duration_seconds": 300,
	})
	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("create lesson status = %d", resp.StatusCode)
	}
	lessonID := uint(parsed["data"].(map[string]interface{})["ID"].(float64))

	resp, _ = doJSON(t, app, "POST", fmt.Sprintf("/admin/course/%d/lesson/%d/publish", courseID, lessonID), token, map[string]interface{}{
		"is_published": true,
	})
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("publish lesson status = %d", resp.StatusCode)
	}

	resp, _ = doJSON(t, app, "POST", fmt.Sprintf("/admin/course/%d/publish", courseID), token, nil)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("publish course status = %d", resp.StatusCode)
	}

	// A learner can now enroll
	_, learnerToken := seedUser(t, db, models.RoleUser)
	resp, _ = doJSON(t, app, "POST", fmt.Sprintf("/course/%d/enroll", courseID), learnerToken, nil)
	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("enroll status = %d", resp.StatusCode)
	}

	// But a plain user cannot touch the admin surface
	resp, _ = doJSON(t, app, "POST", "/admin/course/create", learnerToken, map[string]interface{}{
		"title": "Nope", "description": "still nope", "author": "X",
	})
	if resp.StatusCode != fiber.StatusForbidden {
		t.Fatalf("admin create as USER status = %d, want 403", resp.StatusCode)
	}
}
