package timetravel

// IntentKind is a one-shot request raised by game logic for a cube.
type IntentKind int

const (
	IntentRecord IntentKind = iota
	IntentRewind
	IntentReplay
)

func (k IntentKind) String() string {
	switch k {
	case IntentRecord:
		return "record"
	case IntentRewind:
		return "rewind"
	case IntentReplay:
		return "replay"
	default:
		return "unknown"
	}
}

// Intent targets one cube by manager index.
type Intent struct {
	Cube int
	Kind IntentKind
}

// IntentQueue collects the intents raised during one tick. Intents are
// consumed during the tick and whatever is left is dropped when the tick
// ends; nothing carries over to the next tick.
type IntentQueue struct {
	pending  []Intent
	consumed []bool
}

// Push queues an intent for the current tick. Duplicate intents collapse.
func (q *IntentQueue) Push(in Intent) {
	if q.Has(in.Cube, in.Kind) {
		return
	}
	q.pending = append(q.pending, in)
	q.consumed = append(q.consumed, false)
}

// Has reports whether an unconsumed intent of kind is pending for cube.
func (q *IntentQueue) Has(cube int, kind IntentKind) bool {
	for i, in := range q.pending {
		if in.Cube == cube && in.Kind == kind && !q.consumed[i] {
			return true
		}
	}
	return false
}

// Take consumes the pending intent of kind for cube and reports whether one
// existed.
func (q *IntentQueue) Take(cube int, kind IntentKind) bool {
	for i, in := range q.pending {
		if in.Cube == cube && in.Kind == kind && !q.consumed[i] {
			q.consumed[i] = true
			return true
		}
	}
	return false
}

// AnyPending reports whether any unconsumed intent of kind exists.
func (q *IntentQueue) AnyPending(kind IntentKind) bool {
	for i, in := range q.pending {
		if in.Kind == kind && !q.consumed[i] {
			return true
		}
	}
	return false
}

// Drain clears the queue and returns the intents that were never consumed.
func (q *IntentQueue) Drain() []Intent {
	var dropped []Intent
	for i, in := range q.pending {
		if !q.consumed[i] {
			dropped = append(dropped, in)
		}
	}
	q.pending = q.pending[:0]
	q.consumed = q.consumed[:0]
	return dropped
}

// removeCube discards intents for cube and shifts higher indices down,
// matching the manager's re-indexing.
func (q *IntentQueue) removeCube(cube int) {
	n := 0
	for i, in := range q.pending {
		if in.Cube == cube {
			continue
		}
		if in.Cube > cube {
			in.Cube--
		}
		q.pending[n] = in
		q.consumed[n] = q.consumed[i]
		n++
	}
	q.pending = q.pending[:n]
	q.consumed = q.consumed[:n]
}
