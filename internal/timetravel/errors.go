package timetravel

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument reports a malformed constructor or call argument.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrCapacityExceeded reports a store past the history's recording horizon.
	ErrCapacityExceeded = errors.New("history capacity exceeded")
	// ErrSlotNotRecorded reports a restore from a slot that holds no snapshot.
	ErrSlotNotRecorded = errors.New("slot not recorded")
	// ErrOutOfRange reports a time index outside [0, capacity).
	ErrOutOfRange = errors.New("time index out of range")
	// ErrMissingBone reports a paired entity part the host could not resolve.
	ErrMissingBone = errors.New("missing bone")
	// ErrIntervalOverlap reports a recording that would overlap an existing interval.
	ErrIntervalOverlap = errors.New("interval overlap")
	// ErrUnknownCube reports a cube index that is not registered.
	ErrUnknownCube = errors.New("unknown cube")
	// ErrUnknownHistory reports a history index that is not registered.
	ErrUnknownHistory = errors.New("unknown history")
)

// EntityError wraps a failure local to one cube or history so the rest of
// the tick can complete.
type EntityError struct {
	Kind  string // "cube" or "history"
	Index int
	Op    string
	Tick  int
	Err   error
}

func (e *EntityError) Error() string {
	return fmt.Sprintf("%s %d: %s at tick %d: %v", e.Kind, e.Index, e.Op, e.Tick, e.Err)
}

func (e *EntityError) Unwrap() error {
	return e.Err
}
