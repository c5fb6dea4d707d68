package course

import (
	"time"

	"gorm.io/gorm"
)

// Enrollment types
const (
	EnrollFree        = "FREE"
	EnrollPaid        = "PAID"
	EnrollGifted      = "GIFTED"
	EnrollPromotional = "PROMOTIONAL"
)

// Enrollment statuses. COMPLETED is only ever set by the progress engine;
// EXPIRED, REFUNDED and SUSPENDED arrive from outside (payment/refund
// collaborator, expiry scheduler) and are terminal for progress tracking.
const (
	EnrollmentActive    = "ACTIVE"
	EnrollmentCompleted = "COMPLETED"
	EnrollmentExpired   = "EXPIRED"
	EnrollmentRefunded  = "REFUNDED"
	EnrollmentSuspended = "SUSPENDED"
)

// ValidEnrollmentType reports whether t is a known enrollment type.
func ValidEnrollmentType(t string) bool {
	switch t {
	case EnrollFree, EnrollPaid, EnrollGifted, EnrollPromotional:
		return true
	}
	return false
}

// ExternalStatus reports whether s is a status the payment/refund
// collaborator (or the expiry scheduler) is allowed to push.
func ExternalStatus(s string) bool {
	switch s {
	case EnrollmentExpired, EnrollmentRefunded, EnrollmentSuspended:
		return true
	}
	return false
}

// Enrollment tracks a user's enrollment in a course with progress.
// PercentComplete is always recomputed server-side from the completion set
// and the live curriculum; it is never accepted from a client.
type Enrollment struct {
	gorm.Model
	UserID               uint       `json:"user_id" gorm:"index:idx_user_course,unique;not null"`
	CourseID             uint       `json:"course_id" gorm:"index:idx_user_course,unique;not null"`
	EnrollmentType       string     `json:"enrollment_type" gorm:"default:'FREE'"`
	Status               string     `json:"status" gorm:"default:'ACTIVE'"`
	PercentComplete      int        `json:"percent_complete" gorm:"default:0"`
	CurrentLessonID      *uint      `json:"current_lesson_id"`
	TotalWatchTime       int64      `json:"total_watch_time" gorm:"default:0"` // seconds, never decreases
	CompletedAt          *time.Time `json:"completed_at"`
	CertificateRequested bool       `json:"certificate_requested" gorm:"default:false"`
	CertificateRef       *string    `json:"certificate_ref"`
	ExpiresAt            *time.Time `json:"expires_at"`
	Version              int        `json:"-" gorm:"default:0"` // optimistic write guard
	IsDeleted            bool       `gorm:"default:false"`
}

// Active reports whether progress may still be recorded on the enrollment.
func (e *Enrollment) Active() bool {
	return e.Status == EnrollmentActive
}

// Terminal reports whether the enrollment is in a state the progress engine
// must refuse to mutate (everything except ACTIVE and COMPLETED).
func (e *Enrollment) Terminal() bool {
	switch e.Status {
	case EnrollmentExpired, EnrollmentRefunded, EnrollmentSuspended:
		return true
	}
	return false
}
