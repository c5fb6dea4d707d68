package progress

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"elearn/curriculum"
	courseModels "elearn/models/course"
)

// errStaleEnrollment signals that an optimistic enrollment write matched
// zero rows and the attempt's transaction was rolled back.
var errStaleEnrollment = errors.New("enrollment version changed")

// Snapshot is the progress state reported back to the player and dashboards.
// PercentComplete is recomputed from the completion set and the live
// curriculum on every read, so curriculum edits show up immediately.
type Snapshot struct {
	EnrollmentID     uint   `json:"enrollment_id"`
	Status           string `json:"status"`
	CompletedLessons []uint `json:"completed_lessons"`
	PercentComplete  int    `json:"percent_complete"`
	CurrentLessonID  *uint  `json:"current_lesson_id"`
	TotalWatchTime   int64  `json:"total_watch_time"`
}

// RecordWatch applies a playback heartbeat: it credits watch time by the
// delta actually moved forward since the last recorded position, updates the
// resume point, and nothing else. Duplicate or out-of-order heartbeats can
// only under-count, never double-count and never decrease TotalWatchTime.
func (e *Engine) RecordWatch(ctx context.Context, enrollmentID, lessonID uint, watchedSeconds, lastPosition int) (*courseModels.LessonWatch, error) {
	enrollment, err := e.byID(ctx, enrollmentID)
	if err != nil {
		return nil, err
	}
	if enrollment.Terminal() {
		return nil, ErrEnrollmentInactive
	}

	idx, err := e.index(ctx, enrollment.CourseID)
	if err != nil {
		return nil, err
	}
	if !idx.Contains(lessonID) {
		return nil, ErrLessonNotInCourse
	}

	if watchedSeconds < 0 {
		watchedSeconds = 0
	}
	if lastPosition < 0 {
		lastPosition = 0
	}

	var watch courseModels.LessonWatch
	if err := e.db.WithContext(ctx).
		Where(courseModels.LessonWatch{EnrollmentID: enrollmentID, LessonID: lessonID}).
		FirstOrCreate(&watch).Error; err != nil {
		return nil, err
	}

	// Credit at most the claimed delta, and at most the forward movement of
	// the playhead. A replayed or reordered heartbeat sees zero forward
	// movement and applies nothing.
	applied := lastPosition - watch.LastPosition
	if applied < 0 {
		applied = 0
	}
	if applied > watchedSeconds {
		applied = watchedSeconds
	}

	updates := map[string]interface{}{
		"watched_seconds": gorm.Expr("watched_seconds + ?", applied),
	}
	if lastPosition > watch.LastPosition {
		updates["last_position"] = lastPosition
	}
	if err := e.db.WithContext(ctx).Model(&courseModels.LessonWatch{}).
		Where("id = ?", watch.ID).
		Updates(updates).Error; err != nil {
		return nil, err
	}

	// Atomic increment: concurrent heartbeats for different lessons must not
	// lose watch time to a read-modify-write race.
	if err := e.db.WithContext(ctx).Model(&courseModels.Enrollment{}).
		Where("id = ?", enrollmentID).
		Updates(map[string]interface{}{
			"total_watch_time":  gorm.Expr("total_watch_time + ?", applied),
			"current_lesson_id": lessonID,
		}).Error; err != nil {
		return nil, err
	}

	watch.WatchedSeconds += applied
	if lastPosition > watch.LastPosition {
		watch.LastPosition = lastPosition
	}
	return &watch, nil
}

// MarkComplete adds the lesson to the enrollment's completed set and
// recomputes aggregate progress. Calling it again for the same lesson is an
// idempotent success. Once every lesson in the curriculum is completed the
// enrollment transitions to COMPLETED and exactly one certificate request is
// issued;
// completion is sticky after that, whatever the instructor does to the
// curriculum.
func (e *Engine) MarkComplete(ctx context.Context, enrollmentID, lessonID uint) (*Snapshot, error) {
	enrollment, err := e.byID(ctx, enrollmentID)
	if err != nil {
		return nil, err
	}
	if enrollment.Terminal() {
		return nil, ErrEnrollmentInactive
	}

	idx, err := e.index(ctx, enrollment.CourseID)
	if err != nil {
		return nil, err
	}
	if !idx.Contains(lessonID) {
		return nil, ErrLessonNotInCourse
	}

	// Completion never regresses: a second event on a completed enrollment
	// (or one fired after the instructor shrank the course) reports success
	// without touching state.
	if enrollment.Status == courseModels.EnrollmentCompleted {
		return e.snapshot(ctx, enrollment, idx)
	}

	// Set-add at the database level so concurrent completions of different
	// lessons cannot lose an update.
	completion := courseModels.LessonCompletion{
		EnrollmentID: enrollmentID,
		LessonID:     lessonID,
		CourseID:     enrollment.CourseID,
		UserID:       enrollment.UserID,
	}
	if err := e.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "enrollment_id"}, {Name: "lesson_id"}},
			DoNothing: true,
		}).
		Create(&completion).Error; err != nil {
		return nil, err
	}

	// Two attempts: the optimistic write may lose to a concurrent completion
	// of another lesson, in which case the percent is recomputed from the
	// freshly re-read state before giving up.
	for attempt := 0; attempt < 2; attempt++ {
		// Re-read the authoritative set size after the insert, never a value
		// captured before the write.
		completed, err := e.completedCount(ctx, enrollmentID, idx)
		if err != nil {
			return nil, err
		}
		percent := RoundPercent(completed, idx.Len())

		updates := map[string]interface{}{
			"percent_complete":  percent,
			"current_lesson_id": lessonID,
			"version":           enrollment.Version + 1,
		}

		// Completion requires the whole lesson set: rounding can report 100
		// one lesson early, but the transition waits for the last lesson.
		finished := idx.Len() > 0 && completed >= idx.Len() && enrollment.Status == courseModels.EnrollmentActive
		requestCertificate := false
		if finished {
			now := time.Now()
			updates["status"] = courseModels.EnrollmentCompleted
			updates["completed_at"] = &now
			if !enrollment.CertificateRequested {
				// Guard flag: a later completion event (lesson added then
				// removed) must not request a second certificate.
				updates["certificate_requested"] = true
				requestCertificate = true
			}
		}

		txErr := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			res := tx.Model(&courseModels.Enrollment{}).
				Where("id = ? AND version = ?", enrollmentID, enrollment.Version).
				Updates(updates)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return errStaleEnrollment
			}
			if requestCertificate {
				var fresh courseModels.Enrollment
				if err := tx.Where("id = ?", enrollmentID).First(&fresh).Error; err != nil {
					return err
				}
				// The guard flag and the outbox row commit together: a failed
				// enqueue rolls the flag (and the transition) back, so a later
				// completion event can request the certificate again. Delivery
				// itself stays with the dispatcher.
				if err := e.certs.Request(ctx, tx, &fresh); err != nil {
					return err
				}
			}
			return nil
		})
		if errors.Is(txErr, errStaleEnrollment) {
			// Lost the race; retry once on fresh state
			enrollment, err = e.byID(ctx, enrollmentID)
			if err != nil {
				return nil, err
			}
			if enrollment.Terminal() {
				return nil, ErrEnrollmentInactive
			}
			if enrollment.Status == courseModels.EnrollmentCompleted {
				return e.snapshot(ctx, enrollment, idx)
			}
			continue
		}
		if txErr != nil {
			return nil, txErr
		}

		if finished {
			e.log.Info("enrollment completed",
				"enrollment_id", enrollmentID,
				"user_id", enrollment.UserID,
				"course_id", enrollment.CourseID,
			)
		}

		fresh, err := e.byID(ctx, enrollmentID)
		if err != nil {
			return nil, err
		}
		return e.snapshot(ctx, fresh, idx)
	}

	return nil, ErrPersistenceConflict
}

// Progress returns the current progress snapshot for an enrollment.
func (e *Engine) Progress(ctx context.Context, enrollmentID uint) (*Snapshot, error) {
	enrollment, err := e.byID(ctx, enrollmentID)
	if err != nil {
		return nil, err
	}
	idx, err := e.index(ctx, enrollment.CourseID)
	if err != nil {
		return nil, err
	}
	return e.snapshot(ctx, enrollment, idx)
}

// completedCount counts completed lessons that still exist in the current
// curriculum, so lessons removed by the instructor stop counting toward the
// percentage (completion already reached stays sticky regardless).
func (e *Engine) completedCount(ctx context.Context, enrollmentID uint, idx *curriculum.Index) (int, error) {
	lessonIDs := idx.Lessons()
	if len(lessonIDs) == 0 {
		return 0, nil
	}
	var count int64
	err := e.db.WithContext(ctx).Model(&courseModels.LessonCompletion{}).
		Where("enrollment_id = ? AND lesson_id IN ?", enrollmentID, lessonIDs).
		Count(&count).Error
	return int(count), err
}

func (e *Engine) snapshot(ctx context.Context, enrollment *courseModels.Enrollment, idx *curriculum.Index) (*Snapshot, error) {
	var completions []courseModels.LessonCompletion
	if err := e.db.WithContext(ctx).
		Where("enrollment_id = ?", enrollment.ID).
		Find(&completions).Error; err != nil {
		return nil, err
	}

	completedSet := make(map[uint]bool, len(completions))
	for _, c := range completions {
		completedSet[c.LessonID] = true
	}

	// Report completed lessons in flattened curriculum order; completions of
	// since-removed lessons are kept in the set but not in the ordering.
	ordered := make([]uint, 0, len(completedSet))
	inCurriculum := 0
	for _, id := range idx.Lessons() {
		if completedSet[id] {
			ordered = append(ordered, id)
			inCurriculum++
		}
	}

	percent := RoundPercent(inCurriculum, idx.Len())
	if enrollment.Status == courseModels.EnrollmentCompleted && percent < 100 {
		// Sticky completion: a completed enrollment reports 100 even after
		// the instructor grew or reshuffled the course.
		percent = enrollment.PercentComplete
	}

	return &Snapshot{
		EnrollmentID:     enrollment.ID,
		Status:           enrollment.Status,
		CompletedLessons: ordered,
		PercentComplete:  percent,
		CurrentLessonID:  enrollment.CurrentLessonID,
		TotalWatchTime:   enrollment.TotalWatchTime,
	}, nil
}

// RoundPercent computes the integer completion percentage with standard
// round-half-up semantics, clamped to [0, 100]. A zero-lesson curriculum is
// 0 percent: an empty course cannot be completed.
func RoundPercent(completed, total int) int {
	if total <= 0 || completed <= 0 {
		return 0
	}
	percent := (completed*100*2 + total) / (total * 2)
	if percent > 100 {
		percent = 100
	}
	return percent
}
