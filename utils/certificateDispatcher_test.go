package utils

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"elearn/config"
	"elearn/database"
	"elearn/logger"
	courseModels "elearn/models/course"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var dbSeq int64

func setupDispatcherTest(t *testing.T, apiURL string) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:dispatchtest%d?mode=memory&cache=shared", atomic.AddInt64(&dbSeq, 1))
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
	database.Database = database.DbInstance{Db: db}
	config.AppConfig = &config.Config{
		CertificateApiURL:     apiURL,
		CertificateApiKey:     "test-key",
		CertificateMaxRetries: 2,
	}
	t.Cleanup(func() {
		database.Database = prevDB
		config.AppConfig = prevCfg
	})

	return db
}

func seedOutboxEntry(t *testing.T, db *gorm.DB) courseModels.CertificateOutbox {
	t.Helper()
	enrollment := courseModels.Enrollment{
		UserID:   1,
		CourseID: 2,
		Status:   courseModels.EnrollmentCompleted,
	}
	if err := db.Create(&enrollment).Error; err != nil {
		t.Fatalf("create enrollment: %v", err)
	}
	entry := courseModels.CertificateOutbox{
		EnrollmentID: enrollment.ID,
		UserID:       1,
		CourseID:     2,
		Reference:    "ref-123",
		Status:       courseModels.CertificatePending,
		Payload:      []byte(`{"enrollment_id":1}`),
	}
	if err := db.Create(&entry).Error; err != nil {
		t.Fatalf("create outbox entry: %v", err)
	}
	return entry
}

func TestDispatchPendingCertificates_MarksSentAndStampsEnrollment(t *testing.T) {
	var gotKey atomic.Value
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey.Store(r.Header.Get("X-Api-Key"))
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	db := setupDispatcherTest(t, server.URL)
	entry := seedOutboxEntry(t, db)

	DispatchPendingCertificates(logger.NewNop())

	var updated courseModels.CertificateOutbox
	if err := db.First(&updated, entry.ID).Error; err != nil {
		t.Fatalf("load entry: %v", err)
	}
	if updated.Status != courseModels.CertificateSent {
		t.Fatalf("status = %q, want SENT", updated.Status)
	}
	if updated.SentAt == nil {
		t.Fatalf("sent_at must be set")
	}
	if key, _ := gotKey.Load().(string); key != "test-key" {
		t.Fatalf("api key header = %q", key)
	}

	var enrollment courseModels.Enrollment
	if err := db.First(&enrollment, entry.EnrollmentID).Error; err != nil {
		t.Fatalf("load enrollment: %v", err)
	}
	if enrollment.CertificateRef == nil || *enrollment.CertificateRef != "ref-123" {
		t.Fatalf("certificate_ref = %v, want ref-123", enrollment.CertificateRef)
	}
}

func TestDispatchPendingCertificates_SkipsOverlappingSweep(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	var requests int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&requests, 1)
		close(started)
		<-release
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	db := setupDispatcherTest(t, server.URL)
	entry := seedOutboxEntry(t, db)

	done := make(chan struct{})
	go func() {
		DispatchPendingCertificates(logger.NewNop())
		close(done)
	}()

	// A sweep started while the first is still mid-delivery must back off
	// instead of picking up the same pending row again
	<-started
	DispatchPendingCertificates(logger.NewNop())

	close(release)
	<-done

	if n := atomic.LoadInt64(&requests); n != 1 {
		t.Fatalf("certificate service requests = %d, want 1", n)
	}

	var updated courseModels.CertificateOutbox
	db.First(&updated, entry.ID)
	if updated.Status != courseModels.CertificateSent || updated.Attempts != 1 {
		t.Fatalf("status=%q attempts=%d, want SENT after a single delivery", updated.Status, updated.Attempts)
	}
}

func TestDispatchPendingCertificates_RetriesThenFails(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	db := setupDispatcherTest(t, server.URL)
	entry := seedOutboxEntry(t, db)

	// First sweep: attempt 1 of 2, still pending
	DispatchPendingCertificates(logger.NewNop())

	var updated courseModels.CertificateOutbox
	db.First(&updated, entry.ID)
	if updated.Status != courseModels.CertificatePending || updated.Attempts != 1 {
		t.Fatalf("after first sweep: status=%q attempts=%d", updated.Status, updated.Attempts)
	}
	if updated.LastError == "" {
		t.Fatalf("last_error must record the failure")
	}

	// Second sweep exhausts the retry budget
	DispatchPendingCertificates(logger.NewNop())

	db.First(&updated, entry.ID)
	if updated.Status != courseModels.CertificateFailed || updated.Attempts != 2 {
		t.Fatalf("after second sweep: status=%q attempts=%d", updated.Status, updated.Attempts)
	}

	// Failed entries are not retried again
	DispatchPendingCertificates(logger.NewNop())
	db.First(&updated, entry.ID)
	if updated.Attempts != 2 {
		t.Fatalf("failed entry was retried: attempts=%d", updated.Attempts)
	}
}
