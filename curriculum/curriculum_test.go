package curriculum

import (
	"reflect"
	"testing"

	courseModels "elearn/models/course"
	"gorm.io/gorm"
)

func section(id uint, order int) courseModels.Section {
	return courseModels.Section{Model: gorm.Model{ID: id}, CourseID: 1, OrderIndex: order}
}

func lesson(id, sectionID uint, order int) courseModels.Lesson {
	return courseModels.Lesson{Model: gorm.Model{ID: id}, CourseID: 1, SectionID: sectionID, OrderIndex: order}
}

func TestFlatten_OrdersBySectionThenLesson(t *testing.T) {
	sections := []courseModels.Section{
		section(2, 2),
		section(1, 1),
	}
	lessons := []courseModels.Lesson{
		lesson(20, 2, 1),
		lesson(11, 1, 2),
		lesson(10, 1, 1),
		lesson(21, 2, 2),
	}

	idx, warnings := Flatten(sections, lessons)
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", warnings)
	}

	want := []uint{10, 11, 20, 21}
	if !reflect.DeepEqual(idx.Lessons(), want) {
		t.Fatalf("order = %v, want %v", idx.Lessons(), want)
	}
}

func TestFlatten_TieBreaksOnID(t *testing.T) {
	// Same order index everywhere: the lower ID wins, and the output is the
	// same no matter how the input is shuffled.
	sections := []courseModels.Section{
		section(5, 1),
		section(3, 1),
	}
	lessons := []courseModels.Lesson{
		lesson(32, 3, 1),
		lesson(31, 3, 1),
		lesson(50, 5, 1),
	}

	idx, _ := Flatten(sections, lessons)
	want := []uint{31, 32, 50}
	if !reflect.DeepEqual(idx.Lessons(), want) {
		t.Fatalf("order = %v, want %v", idx.Lessons(), want)
	}

	shuffled := []courseModels.Lesson{lessons[2], lessons[0], lessons[1]}
	idx2, _ := Flatten([]courseModels.Section{sections[1], sections[0]}, shuffled)
	if !reflect.DeepEqual(idx2.Lessons(), want) {
		t.Fatalf("order after shuffle = %v, want %v", idx2.Lessons(), want)
	}
}

func TestFlatten_SkipsEmptySections(t *testing.T) {
	sections := []courseModels.Section{
		section(1, 1),
		section(2, 2), // no lessons
		section(3, 3),
	}
	lessons := []courseModels.Lesson{
		lesson(10, 1, 1),
		lesson(30, 3, 1),
	}

	idx, warnings := Flatten(sections, lessons)
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", warnings)
	}
	want := []uint{10, 30}
	if !reflect.DeepEqual(idx.Lessons(), want) {
		t.Fatalf("order = %v, want %v", idx.Lessons(), want)
	}
}

func TestFlatten_WarnsOnOrphanLesson(t *testing.T) {
	sections := []courseModels.Section{section(1, 1)}
	lessons := []courseModels.Lesson{
		lesson(10, 1, 1),
		lesson(99, 42, 1), // section 42 does not exist
	}

	idx, warnings := Flatten(sections, lessons)
	if len(warnings) != 1 {
		t.Fatalf("expected 1 warning, got %d", len(warnings))
	}
	if warnings[0].LessonID != 99 || warnings[0].SectionID != 42 {
		t.Fatalf("unexpected warning: %+v", warnings[0])
	}
	if idx.Contains(99) {
		t.Fatalf("orphan lesson must be excluded from the ordering")
	}
	if idx.Len() != 1 {
		t.Fatalf("len = %d, want 1", idx.Len())
	}
}

func TestFlatten_Empty(t *testing.T) {
	idx, warnings := Flatten(nil, nil)
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", warnings)
	}
	if idx.Len() != 0 {
		t.Fatalf("len = %d, want 0", idx.Len())
	}
	if _, ok := idx.First(); ok {
		t.Fatalf("First on empty index must return false")
	}
}

func TestIndex_Boundaries(t *testing.T) {
	sections := []courseModels.Section{section(1, 1)}
	lessons := []courseModels.Lesson{
		lesson(10, 1, 1),
		lesson(11, 1, 2),
		lesson(12, 1, 3),
	}
	idx, _ := Flatten(sections, lessons)

	if next, ok := idx.Next(10); !ok || next != 11 {
		t.Fatalf("Next(10) = %d, %v", next, ok)
	}
	if prev, ok := idx.Prev(12); !ok || prev != 11 {
		t.Fatalf("Prev(12) = %d, %v", prev, ok)
	}
	if _, ok := idx.Next(12); ok {
		t.Fatalf("Next at the last lesson must not wrap")
	}
	if _, ok := idx.Prev(10); ok {
		t.Fatalf("Prev at the first lesson must not wrap")
	}
	if _, ok := idx.Next(999); ok {
		t.Fatalf("Next of an unknown lesson must return false")
	}
}
