package curriculum

// Navigation directions accepted by the player.
const (
	DirectionCurrent  = "current"
	DirectionNext     = "next"
	DirectionPrevious = "previous"
)

// ValidDirection reports whether d is a known navigation direction.
func ValidDirection(d string) bool {
	switch d {
	case DirectionCurrent, DirectionNext, DirectionPrevious:
		return true
	}
	return false
}

// Resolve answers "what lesson should the player show" for an enrollment.
// current is the persisted resume point (nil when the student never started);
// when the player is mid-navigation it passes the lesson it is on instead.
// A current lesson that no longer exists in the curriculum (deleted by the
// instructor) falls back to the first lesson. Next/previous return false at
// either boundary rather than wrapping.
func Resolve(idx *Index, current *uint, direction string) (uint, bool) {
	anchor, ok := anchorLesson(idx, current)
	if !ok {
		return 0, false
	}

	switch direction {
	case DirectionNext:
		return idx.Next(anchor)
	case DirectionPrevious:
		return idx.Prev(anchor)
	default:
		return anchor, true
	}
}

// anchorLesson picks the lesson navigation is relative to: the stored current
// lesson when it still exists, otherwise the first lesson in flattened order.
func anchorLesson(idx *Index, current *uint) (uint, bool) {
	if current != nil && idx.Contains(*current) {
		return *current, true
	}
	return idx.First()
}
