package utils

import (
	"testing"
	"time"

	"elearn/logger"
	courseModels "elearn/models/course"
)

func TestExpireEnrollments(t *testing.T) {
	db := setupDispatcherTest(t, "http://unused")

	yesterday := time.Now().AddDate(0, 0, -1)
	nextWeek := time.Now().AddDate(0, 0, 7)

	stale := courseModels.Enrollment{
		UserID: 1, CourseID: 1,
		Status:    courseModels.EnrollmentActive,
		ExpiresAt: &yesterday,
	}
	current := courseModels.Enrollment{
		UserID: 2, CourseID: 1,
		Status:    courseModels.EnrollmentActive,
		ExpiresAt: &nextWeek,
	}
	open := courseModels.Enrollment{
		UserID: 3, CourseID: 1,
		Status: courseModels.EnrollmentActive,
	}
	for _, e := range []*courseModels.Enrollment{&stale, &current, &open} {
		if err := db.Create(e).Error; err != nil {
			t.Fatalf("create enrollment: %v", err)
		}
	}

	ExpireEnrollments(logger.NewNop())

	var got courseModels.Enrollment
	db.First(&got, stale.ID)
	if got.Status != courseModels.EnrollmentExpired {
		t.Fatalf("stale enrollment status = %q, want EXPIRED", got.Status)
	}
	if got.Version != stale.Version+1 {
		t.Fatalf("version = %d, expiry must bump the write guard", got.Version)
	}

	got = courseModels.Enrollment{}
	db.First(&got, current.ID)
	if got.Status != courseModels.EnrollmentActive {
		t.Fatalf("future-dated enrollment must stay ACTIVE, got %q", got.Status)
	}

	got = courseModels.Enrollment{}
	db.First(&got, open.ID)
	if got.Status != courseModels.EnrollmentActive {
		t.Fatalf("open-ended enrollment must stay ACTIVE, got %q", got.Status)
	}

	// Idempotent sweep
	ExpireEnrollments(logger.NewNop())
	got = courseModels.Enrollment{}
	db.First(&got, stale.ID)
	if got.Status != courseModels.EnrollmentExpired {
		t.Fatalf("second sweep changed status to %q", got.Status)
	}
}
