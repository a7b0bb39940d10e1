package timetravel

import "fmt"

// Unset marks an interval end that is not known yet.
const Unset = -1

// TimeInterval is a span of ticks during which a cube was recording.
// End stays Unset while the recording is still open.
type TimeInterval struct {
	Start int
	End   int

	// Sealed is set once the interval can no longer be rewound: its rewind
	// ended in a replay, or the cube started a newer recording.
	Sealed bool
}

// NewTimeInterval opens an interval at start.
func NewTimeInterval(start int) TimeInterval {
	return TimeInterval{Start: start, End: Unset}
}

// IsOpen reports whether the end is still unknown.
func (iv TimeInterval) IsOpen() bool {
	return iv.End == Unset
}

// Contains reports whether tick t falls inside [Start, End], treating an
// open interval as unbounded on the right.
func (iv TimeInterval) Contains(t int) bool {
	return iv.Start <= t && (iv.End == Unset || iv.End >= t)
}

// Len returns the number of recorded ticks, or 0 while the interval is open.
func (iv TimeInterval) Len() int {
	if iv.IsOpen() {
		return 0
	}
	return iv.End - iv.Start + 1
}

func (iv TimeInterval) String() string {
	if iv.IsOpen() {
		return fmt.Sprintf("[%d, ?)", iv.Start)
	}
	return fmt.Sprintf("[%d, %d]", iv.Start, iv.End)
}
