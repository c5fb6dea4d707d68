package course

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Certificate outbox statuses
const (
	CertificatePending = "PENDING"
	CertificateSent    = "SENT"
	CertificateFailed  = "FAILED"
)

// CertificateOutbox records a certificate-issuance request owed to the
// external certificate service. The progress engine only inserts rows here;
// delivery and retries belong to the dispatcher, so completing an enrollment
// never waits on the certificate service. One row per enrollment, ever.
type CertificateOutbox struct {
	gorm.Model
	EnrollmentID uint           `json:"enrollment_id" gorm:"uniqueIndex;not null"`
	UserID       uint           `json:"user_id" gorm:"index;not null"`
	CourseID     uint           `json:"course_id" gorm:"index;not null"`
	Reference    string         `json:"reference" gorm:"unique"` // our request id, quoted to the certificate service
	Status       string         `json:"status" gorm:"default:'PENDING'"` // PENDING, SENT, FAILED
	Payload      datatypes.JSON `json:"payload"`
	Attempts     int            `json:"attempts" gorm:"default:0"`
	LastError    string         `json:"last_error"`
	SentAt       *time.Time     `json:"sent_at"`
}
