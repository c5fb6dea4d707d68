package curriculum

import (
	"fmt"
	"sort"

	courseModels "elearn/models/course"
)

// Warning flags a non-fatal data-integrity problem found while flattening,
// e.g. a lesson pointing at a section that is not part of the course. The
// caller logs these and keeps going with the best available ordering.
type Warning struct {
	LessonID  uint
	SectionID uint
	Message   string
}

func (w Warning) String() string {
	return fmt.Sprintf("lesson %d: %s", w.LessonID, w.Message)
}

// Index is a flat, stable ordering of a course's lessons. It is rebuilt from
// the live curriculum on demand, never cached across requests, so lessons an
// instructor adds or removes after enrollment show up on the next call.
type Index struct {
	ordered  []uint
	position map[uint]int
}

// Flatten produces the single linear lesson order used for progress totals
// and player navigation. Sections are sorted by order index (ID as the
// tiebreaker, so the result is deterministic for equal order values), then
// lessons within each section the same way. Sections without lessons are
// skipped. Lessons referencing an unknown section are excluded and reported.
func Flatten(sections []courseModels.Section, lessons []courseModels.Lesson) (*Index, []Warning) {
	sorted := make([]courseModels.Section, len(sections))
	copy(sorted, sections)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].OrderIndex != sorted[j].OrderIndex {
			return sorted[i].OrderIndex < sorted[j].OrderIndex
		}
		return sorted[i].ID < sorted[j].ID
	})

	bySection := make(map[uint][]courseModels.Lesson)
	known := make(map[uint]bool, len(sorted))
	for _, s := range sorted {
		known[s.ID] = true
	}

	var warnings []Warning
	for _, l := range lessons {
		if !known[l.SectionID] {
			warnings = append(warnings, Warning{
				LessonID:  l.ID,
				SectionID: l.SectionID,
				Message:   fmt.Sprintf("references missing section %d, excluded from ordering", l.SectionID),
			})
			continue
		}
		bySection[l.SectionID] = append(bySection[l.SectionID], l)
	}

	idx := &Index{position: make(map[uint]int)}
	for _, s := range sorted {
		sectionLessons := bySection[s.ID]
		sort.SliceStable(sectionLessons, func(i, j int) bool {
			if sectionLessons[i].OrderIndex != sectionLessons[j].OrderIndex {
				return sectionLessons[i].OrderIndex < sectionLessons[j].OrderIndex
			}
			return sectionLessons[i].ID < sectionLessons[j].ID
		})
		for _, l := range sectionLessons {
			idx.position[l.ID] = len(idx.ordered)
			idx.ordered = append(idx.ordered, l.ID)
		}
	}

	return idx, warnings
}

// Len returns the total lesson count.
func (idx *Index) Len() int {
	return len(idx.ordered)
}

// Lessons returns the flattened lesson IDs in order.
func (idx *Index) Lessons() []uint {
	out := make([]uint, len(idx.ordered))
	copy(out, idx.ordered)
	return out
}

// Contains reports whether the lesson belongs to the flattened curriculum.
func (idx *Index) Contains(lessonID uint) bool {
	_, ok := idx.position[lessonID]
	return ok
}

// First returns the first lesson in flattened order.
func (idx *Index) First() (uint, bool) {
	if len(idx.ordered) == 0 {
		return 0, false
	}
	return idx.ordered[0], true
}

// Next returns the lesson after lessonID. At the last lesson, or when
// lessonID is not in the curriculum, it returns false rather than wrapping.
func (idx *Index) Next(lessonID uint) (uint, bool) {
	pos, ok := idx.position[lessonID]
	if !ok || pos+1 >= len(idx.ordered) {
		return 0, false
	}
	return idx.ordered[pos+1], true
}

// Prev returns the lesson before lessonID, with the same boundary behavior
// as Next.
func (idx *Index) Prev(lessonID uint) (uint, bool) {
	pos, ok := idx.position[lessonID]
	if !ok || pos == 0 {
		return 0, false
	}
	return idx.ordered[pos-1], true
}
