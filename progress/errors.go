package progress

import "errors"

// Engine error taxonomy. Controllers map these onto HTTP statuses; none of
// them are retried automatically except ErrPersistenceConflict, which the
// engine itself retries once before surfacing.
var (
	// ErrAlreadyEnrolled - an ACTIVE or COMPLETED enrollment already exists
	// for this user and course.
	ErrAlreadyEnrolled = errors.New("user already enrolled in this course")

	// ErrCourseUnavailable - the course does not exist or is not published.
	ErrCourseUnavailable = errors.New("course not found or not published")

	// ErrNotEnrolled - no enrollment exists for this user and course. The
	// engine never creates one implicitly.
	ErrNotEnrolled = errors.New("user not enrolled in this course")

	// ErrEnrollmentInactive - the enrollment was refunded, suspended or
	// expired; progress can no longer be recorded against it.
	ErrEnrollmentInactive = errors.New("this enrollment is no longer active")

	// ErrLessonNotInCourse - the lesson does not belong to the enrollment's
	// course (stale or cross-course client state).
	ErrLessonNotInCourse = errors.New("lesson does not belong to this course")

	// ErrPersistenceConflict - a concurrent write raced the enrollment update
	// and the internal retry also lost.
	ErrPersistenceConflict = errors.New("enrollment was modified concurrently, please retry")
)
