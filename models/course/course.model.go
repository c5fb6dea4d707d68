package course

import "gorm.io/gorm"

// Course statuses
const (
	CourseDraft    = "DRAFT"
	CourseActive   = "ACTIVE"
	CourseInactive = "INACTIVE"
)

// Course represents a learning course
type Course struct {
	gorm.Model
	Title        string `json:"title"`
	Description  string `json:"description"`
	Author       string `json:"author"`
	Duration     int64  `json:"duration" gorm:"default:0"`     // duration in hours
	Status       string `json:"status" gorm:"default:'DRAFT'"` // DRAFT, ACTIVE, INACTIVE
	ThumbnailURL string `json:"thumbnail_url"`
	IsPublished  bool   `json:"is_published" gorm:"default:false"`
	IsDeleted    bool   `gorm:"default:false"`
}

// Section represents an ordered section within a course
type Section struct {
	gorm.Model
	CourseID    uint   `json:"course_id" gorm:"index;not null"`
	Title       string `json:"title"`
	Description string `json:"description"`
	OrderIndex  int    `json:"order_index" gorm:"default:0"` // Section order in course
	IsDeleted   bool   `gorm:"default:false"`
}

// Lesson represents a single lesson within a section
type Lesson struct {
	gorm.Model
	CourseID        uint   `json:"course_id" gorm:"index;not null"`
	SectionID       uint   `json:"section_id" gorm:"index;not null"`
	Title           string `json:"title"`
	Description     string `json:"description"`
	VideoURL        string `json:"video_url"`
	DurationSeconds int    `json:"duration_seconds" gorm:"default:0"`
	OrderIndex      int    `json:"order_index" gorm:"default:0"` // Order within section
	IsPublished     bool   `json:"is_published" gorm:"default:false"`
	IsDeleted       bool   `gorm:"default:false"`
}
