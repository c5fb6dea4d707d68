package progress

import (
	"context"
	"testing"

	courseModels "elearn/models/course"
	"gorm.io/gorm"
)

func TestOutboxRequester_OneRowPerEnrollment(t *testing.T) {
	db := testDB(t)
	r := NewOutboxRequester()

	enrollment := &courseModels.Enrollment{
		Model:    gorm.Model{ID: 7},
		UserID:   1,
		CourseID: 2,
	}

	if err := r.Request(context.Background(), db, enrollment); err != nil {
		t.Fatalf("Request: %v", err)
	}
	// A racing duplicate collapses into the existing row
	if err := r.Request(context.Background(), db, enrollment); err != nil {
		t.Fatalf("duplicate Request: %v", err)
	}

	var count int64
	db.Model(&courseModels.CertificateOutbox{}).Where("enrollment_id = ?", enrollment.ID).Count(&count)
	if count != 1 {
		t.Fatalf("outbox rows = %d, want 1", count)
	}

	var row courseModels.CertificateOutbox
	if err := db.Where("enrollment_id = ?", enrollment.ID).First(&row).Error; err != nil {
		t.Fatalf("load outbox row: %v", err)
	}
	if row.Status != courseModels.CertificatePending {
		t.Fatalf("status = %q, want PENDING", row.Status)
	}
	if row.Reference == "" {
		t.Fatalf("reference must be set")
	}
	if len(row.Payload) == 0 {
		t.Fatalf("payload must be set")
	}
}
