package tv

import "time"

// Transition classifies how a show's next air date moved during a sync.
type Transition int

const (
	TransitionUnchanged Transition = iota
	TransitionChanged
	TransitionCleared
)

func (t Transition) String() string {
	switch t {
	case TransitionChanged:
		return "changed"
	case TransitionCleared:
		return "cleared"
	default:
		return "unchanged"
	}
}

// ClassifyNextAirDate compares the stored next air date with the freshly
// fetched one. Dates compare by calendar day.
func ClassifyNextAirDate(previous, current *time.Time) Transition {
	switch {
	case SameDate(previous, current):
		return TransitionUnchanged
	case current == nil:
		return TransitionCleared
	default:
		return TransitionChanged
	}
}

// SameDate reports whether two optional dates are both absent or fall on the
// same calendar day.
func SameDate(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return FormatDate(a) == FormatDate(b)
}
