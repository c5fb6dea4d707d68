package curriculum

import (
	"testing"

	courseModels "elearn/models/course"
)

func navIndex(t *testing.T) *Index {
	t.Helper()
	sections := []courseModels.Section{section(1, 1)}
	lessons := []courseModels.Lesson{
		lesson(10, 1, 1),
		lesson(11, 1, 2),
		lesson(12, 1, 3),
	}
	idx, warnings := Flatten(sections, lessons)
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", warnings)
	}
	return idx
}

func ptr(v uint) *uint { return &v }

func TestResolve_Current(t *testing.T) {
	idx := navIndex(t)

	if got, ok := Resolve(idx, ptr(11), DirectionCurrent); !ok || got != 11 {
		t.Fatalf("Resolve(current) = %d, %v", got, ok)
	}

	// No resume point yet: the first lesson is the anchor
	if got, ok := Resolve(idx, nil, DirectionCurrent); !ok || got != 10 {
		t.Fatalf("Resolve(current, nil) = %d, %v", got, ok)
	}
}

func TestResolve_NextPrevious(t *testing.T) {
	idx := navIndex(t)

	if got, ok := Resolve(idx, ptr(10), DirectionNext); !ok || got != 11 {
		t.Fatalf("Resolve(next) = %d, %v", got, ok)
	}
	if got, ok := Resolve(idx, ptr(11), DirectionPrevious); !ok || got != 10 {
		t.Fatalf("Resolve(previous) = %d, %v", got, ok)
	}
	if _, ok := Resolve(idx, ptr(12), DirectionNext); ok {
		t.Fatalf("next past the last lesson must return false")
	}
	if _, ok := Resolve(idx, ptr(10), DirectionPrevious); ok {
		t.Fatalf("previous before the first lesson must return false")
	}
}

func TestResolve_DeletedAnchorFallsBackToFirst(t *testing.T) {
	idx := navIndex(t)

	// Resume point no longer exists, e.g. instructor removed the lesson
	if got, ok := Resolve(idx, ptr(999), DirectionCurrent); !ok || got != 10 {
		t.Fatalf("Resolve with stale anchor = %d, %v, want first lesson", got, ok)
	}
	if got, ok := Resolve(idx, ptr(999), DirectionNext); !ok || got != 11 {
		t.Fatalf("next from stale anchor = %d, %v, want second lesson", got, ok)
	}
}

func TestResolve_EmptyCurriculum(t *testing.T) {
	idx, _ := Flatten(nil, nil)
	if _, ok := Resolve(idx, nil, DirectionCurrent); ok {
		t.Fatalf("empty curriculum must resolve to nothing")
	}
}
