package course

import "gorm.io/gorm"

// LessonCompletion is one element of an enrollment's completed-lesson set.
// The unique index gives the set its membership semantics: concurrent inserts
// for the same lesson collapse into a single row (ON CONFLICT DO NOTHING).
type LessonCompletion struct {
	gorm.Model
	EnrollmentID uint `json:"enrollment_id" gorm:"index:idx_enrollment_lesson,unique;not null"`
	LessonID     uint `json:"lesson_id" gorm:"index:idx_enrollment_lesson,unique;not null"`
	CourseID     uint `json:"course_id" gorm:"index;not null"`
	UserID       uint `json:"user_id" gorm:"index;not null"`
}

// LessonWatch tracks per-lesson playback state for one enrollment.
// WatchedSeconds only grows; LastPosition is the furthest point reached, so
// replays and out-of-order heartbeats cannot double-count watch time.
type LessonWatch struct {
	gorm.Model
	EnrollmentID   uint `json:"enrollment_id" gorm:"index:idx_enrollment_watch,unique;not null"`
	LessonID       uint `json:"lesson_id" gorm:"index:idx_enrollment_watch,unique;not null"`
	LastPosition   int  `json:"last_position" gorm:"default:0"`   // seconds into the lesson
	WatchedSeconds int  `json:"watched_seconds" gorm:"default:0"` // accumulated, monotonic
}
