package progress

import (
	"context"

	"elearn/curriculum"
)

// Navigation answers "which lesson is current / next / previous" for the
// player. fromLesson overrides the persisted resume point when the caller is
// mid-navigation; a resume point that no longer exists in the curriculum
// falls back to the first lesson. ok is false when there is no lesson to
// return: past either boundary, or an empty curriculum.
func (e *Engine) Navigation(ctx context.Context, enrollmentID uint, fromLesson *uint, direction string) (lessonID uint, ok bool, err error) {
	enrollment, err := e.byID(ctx, enrollmentID)
	if err != nil {
		return 0, false, err
	}

	idx, err := e.index(ctx, enrollment.CourseID)
	if err != nil {
		return 0, false, err
	}

	anchor := enrollment.CurrentLessonID
	if fromLesson != nil {
		anchor = fromLesson
	}

	lessonID, ok = curriculum.Resolve(idx, anchor, direction)
	return lessonID, ok, nil
}
