package progress

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"elearn/curriculum"
	"elearn/logger"
	courseModels "elearn/models/course"
)

// CertificateRequester enqueues a certificate-issuance request for a
// completed enrollment. The engine calls it at most once per enrollment and
// never waits on actual delivery.
type CertificateRequester interface {
	Request(ctx context.Context, tx *gorm.DB, enrollment *courseModels.Enrollment) error
}

// Engine owns enrollment lifecycle and progress tracking: enrollment
// creation, per-lesson watch accounting, the completed-lesson set, aggregate
// percent computation and the completion transition.
type Engine struct {
	db    *gorm.DB
	log   *logger.Logger
	certs CertificateRequester

	promoValidity time.Duration // validity window for PROMOTIONAL enrollments
}

func NewEngine(db *gorm.DB, baseLog *logger.Logger, certs CertificateRequester, promoValidity time.Duration) *Engine {
	return &Engine{
		db:            db,
		log:           baseLog.With("component", "progress.Engine"),
		certs:         certs,
		promoValidity: promoValidity,
	}
}

// Enroll creates an ACTIVE enrollment for the user in the course. A terminal
// (expired/refunded/suspended) record for the pair is revived in place, so
// the (user, course) identity stays unique; prior lesson history is kept.
func (e *Engine) Enroll(ctx context.Context, userID, courseID uint, enrollmentType string) (*courseModels.Enrollment, error) {
	if !courseModels.ValidEnrollmentType(enrollmentType) {
		enrollmentType = courseModels.EnrollFree
	}

	// Course must exist and be published
	var course courseModels.Course
	if err := e.db.WithContext(ctx).
		Where("id = ? AND is_deleted = ?", courseID, false).
		First(&course).Error; err != nil {
		return nil, ErrCourseUnavailable
	}
	if !course.IsPublished || course.Status != courseModels.CourseActive {
		return nil, ErrCourseUnavailable
	}

	var existing courseModels.Enrollment
	err := e.db.WithContext(ctx).
		Where("user_id = ? AND course_id = ? AND is_deleted = ?", userID, courseID, false).
		First(&existing).Error
	if err == nil {
		if !existing.Terminal() {
			return nil, ErrAlreadyEnrolled
		}
		return e.revive(ctx, &existing, enrollmentType)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	enrollment := courseModels.Enrollment{
		UserID:         userID,
		CourseID:       courseID,
		EnrollmentType: enrollmentType,
		Status:         courseModels.EnrollmentActive,
		ExpiresAt:      e.expiryFor(enrollmentType),
	}
	if err := e.db.WithContext(ctx).Create(&enrollment).Error; err != nil {
		// A concurrent enroll may have won the unique (user, course) index
		raceErr := e.db.WithContext(ctx).
			Where("user_id = ? AND course_id = ? AND is_deleted = ?", userID, courseID, false).
			First(&existing).Error
		if raceErr == nil {
			return nil, ErrAlreadyEnrolled
		}
		return nil, err
	}

	// Hook for the notification collaborator; delivery is not this engine's
	// concern.
	e.log.Info("enrollment created",
		"enrollment_id", enrollment.ID,
		"user_id", userID,
		"course_id", courseID,
		"type", enrollmentType,
	)
	return &enrollment, nil
}

// revive reactivates a terminal enrollment (e.g. re-purchase after a refund)
// without losing the completed-lesson history already recorded.
func (e *Engine) revive(ctx context.Context, enrollment *courseModels.Enrollment, enrollmentType string) (*courseModels.Enrollment, error) {
	updates := map[string]interface{}{
		"status":          courseModels.EnrollmentActive,
		"enrollment_type": enrollmentType,
		"expires_at":      e.expiryFor(enrollmentType),
		"version":         enrollment.Version + 1,
	}
	res := e.db.WithContext(ctx).Model(&courseModels.Enrollment{}).
		Where("id = ? AND version = ?", enrollment.ID, enrollment.Version).
		Updates(updates)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrPersistenceConflict
	}

	e.log.Info("enrollment revived",
		"enrollment_id", enrollment.ID,
		"user_id", enrollment.UserID,
		"course_id", enrollment.CourseID,
		"type", enrollmentType,
	)
	return e.byID(ctx, enrollment.ID)
}

func (e *Engine) expiryFor(enrollmentType string) *time.Time {
	if enrollmentType != courseModels.EnrollPromotional || e.promoValidity <= 0 {
		return nil
	}
	expires := time.Now().Add(e.promoValidity)
	return &expires
}

// Get returns the user's enrollment in the course, or ErrNotEnrolled. Access
// gating only: a missing enrollment is never silently created.
func (e *Engine) Get(ctx context.Context, userID, courseID uint) (*courseModels.Enrollment, error) {
	var enrollment courseModels.Enrollment
	err := e.db.WithContext(ctx).
		Where("user_id = ? AND course_id = ? AND is_deleted = ?", userID, courseID, false).
		First(&enrollment).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotEnrolled
	}
	if err != nil {
		return nil, err
	}
	return &enrollment, nil
}

// SetStatus applies an externally-owned status transition (refund, suspend,
// expire) as an idempotent overwrite. Completion cannot be pushed from
// outside; it is only ever reached through MarkComplete.
func (e *Engine) SetStatus(ctx context.Context, enrollmentID uint, status string) (*courseModels.Enrollment, error) {
	if !courseModels.ExternalStatus(status) {
		return nil, fmt.Errorf("status %q cannot be set externally", status)
	}

	enrollment, err := e.byID(ctx, enrollmentID)
	if err != nil {
		return nil, err
	}
	if enrollment.Status == status {
		return enrollment, nil
	}

	res := e.db.WithContext(ctx).Model(&courseModels.Enrollment{}).
		Where("id = ?", enrollmentID).
		Updates(map[string]interface{}{
			"status":  status,
			"version": gorm.Expr("version + 1"),
		})
	if res.Error != nil {
		return nil, res.Error
	}

	e.log.Info("enrollment status set externally",
		"enrollment_id", enrollmentID,
		"status", status,
	)
	return e.byID(ctx, enrollmentID)
}

// byID loads an enrollment by primary key.
func (e *Engine) byID(ctx context.Context, enrollmentID uint) (*courseModels.Enrollment, error) {
	var enrollment courseModels.Enrollment
	err := e.db.WithContext(ctx).
		Where("id = ? AND is_deleted = ?", enrollmentID, false).
		First(&enrollment).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotEnrolled
	}
	if err != nil {
		return nil, err
	}
	return &enrollment, nil
}

// index rebuilds the flattened curriculum for a course from live data.
// Integrity warnings are logged, never fatal: rendering degrades instead of
// crashing.
func (e *Engine) index(ctx context.Context, courseID uint) (*curriculum.Index, error) {
	var sections []courseModels.Section
	if err := e.db.WithContext(ctx).
		Where("course_id = ? AND is_deleted = ?", courseID, false).
		Find(&sections).Error; err != nil {
		return nil, err
	}

	var lessons []courseModels.Lesson
	if err := e.db.WithContext(ctx).
		Where("course_id = ? AND is_deleted = ? AND is_published = ?", courseID, false, true).
		Find(&lessons).Error; err != nil {
		return nil, err
	}

	idx, warnings := curriculum.Flatten(sections, lessons)
	for _, w := range warnings {
		e.log.Warn("curriculum integrity warning",
			"course_id", courseID,
			"lesson_id", w.LessonID,
			"section_id", w.SectionID,
			"detail", w.Message,
		)
	}
	return idx, nil
}
