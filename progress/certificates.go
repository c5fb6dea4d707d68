package progress

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	courseModels "elearn/models/course"
)

// OutboxRequester records certificate requests in the certificate outbox
// table. The dispatcher in utils drains the table and talks to the external
// certificate service; enqueueing here is all the engine ever does.
type OutboxRequester struct{}

func NewOutboxRequester() *OutboxRequester {
	return &OutboxRequester{}
}

func (r *OutboxRequester) Request(ctx context.Context, tx *gorm.DB, enrollment *courseModels.Enrollment) error {
	reference := uuid.NewString()

	payload, err := json.Marshal(map[string]interface{}{
		"enrollment_id": enrollment.ID,
		"user_id":       enrollment.UserID,
		"course_id":     enrollment.CourseID,
		"reference":     reference,
	})
	if err != nil {
		return fmt.Errorf("marshal certificate payload: %w", err)
	}

	row := courseModels.CertificateOutbox{
		EnrollmentID: enrollment.ID,
		UserID:       enrollment.UserID,
		CourseID:     enrollment.CourseID,
		Reference:    reference,
		Status:       courseModels.CertificatePending,
		Payload:      payload,
	}

	// The unique enrollment_id index backs up the engine's guard flag: even
	// if two completion events race, only one outbox row can exist.
	return tx.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "enrollment_id"}},
			DoNothing: true,
		}).
		Create(&row).Error
}
