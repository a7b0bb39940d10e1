package timetravel

import (
	"fmt"
	"math"

	"chosenoffset.com/timecube/internal/core/geom"
)

// History records the local poses of a set of bones, one snapshot per time
// slot. Slots are relative to the earliest active recording, so slot 0 is
// the manager's minimum recording start.
//
// Storage grows on demand up to capacity slots.
type History struct {
	// Index is the position of this history in its manager, or -1.
	Index int

	source []Bone // recorded from
	target []Bone // replayed onto

	positions [][]geom.Vec3
	rotations [][]geom.Quat
	scales    [][]geom.Vec3
	recorded  []bool

	capacity int
}

// NewHistory creates a history that records and restores the same bones.
func NewHistory(bones []Bone, capacity int) (*History, error) {
	return NewCloneHistory(bones, bones, capacity)
}

// NewCloneHistory creates a history that records from source and restores
// onto target. When the first bones differ the history belongs to a time
// traveler.
func NewCloneHistory(source, target []Bone, capacity int) (*History, error) {
	if len(source) == 0 {
		return nil, fmt.Errorf("history needs at least one bone: %w", ErrInvalidArgument)
	}
	if len(target) != len(source) {
		return nil, fmt.Errorf("history has %d source bones but %d target bones: %w",
			len(source), len(target), ErrInvalidArgument)
	}
	if capacity <= 0 {
		return nil, fmt.Errorf("history capacity %d: %w", capacity, ErrInvalidArgument)
	}
	for i := range source {
		if source[i] == nil || target[i] == nil {
			return nil, fmt.Errorf("bone %d is nil: %w", i, ErrMissingBone)
		}
	}

	n := len(source)
	return &History{
		Index:     -1,
		source:    source,
		target:    target,
		positions: make([][]geom.Vec3, n),
		rotations: make([][]geom.Quat, n),
		scales:    make([][]geom.Vec3, n),
		capacity:  capacity,
	}, nil
}

// IsTimeTraveler reports whether playback targets a different entity than
// the one recorded.
func (h *History) IsTimeTraveler() bool {
	return h.source[0] != h.target[0]
}

// Capacity returns the maximum number of slots.
func (h *History) Capacity() int {
	return h.capacity
}

// BoneCount returns the number of recorded bones.
func (h *History) BoneCount() int {
	return len(h.source)
}

// Recorded reports whether slot holds a snapshot.
func (h *History) Recorded(slot int) bool {
	return slot >= 0 && slot < len(h.recorded) && h.recorded[slot]
}

// Name returns the name of the first target bone.
func (h *History) Name() string {
	return h.target[0].Name()
}

// StoreBones copies the current local pose of every source bone into slot.
func (h *History) StoreBones(slot int) error {
	if slot < 0 {
		return fmt.Errorf("store slot %d: %w", slot, ErrOutOfRange)
	}
	if slot >= h.capacity {
		return fmt.Errorf("store slot %d of %d: %w", slot, h.capacity, ErrCapacityExceeded)
	}

	h.grow(slot + 1)
	for i, bone := range h.source {
		p := bone.LocalPose()
		h.positions[i][slot] = p.Position
		h.rotations[i][slot] = p.Rotation
		h.scales[i][slot] = p.Scale
	}
	h.recorded[slot] = true
	return nil
}

// RestoreBones copies the snapshot in slot back onto every target bone.
func (h *History) RestoreBones(slot int) error {
	if err := h.checkRestore(slot); err != nil {
		return err
	}

	for i, bone := range h.target {
		bone.SetLocalPose(Pose{
			Position: h.positions[i][slot],
			Rotation: h.rotations[i][slot],
			Scale:    h.scales[i][slot],
		})
	}
	return nil
}

// RestoreBonesBlended restores a pose interpolated between the slots either
// side of the fractional time t. t must lie in [0, capacity-1].
//
// scale.x is treated as a facing flag rather than a continuous scale: when
// it changes sign between the two slots it snaps to the slot with the larger
// weight (the later slot on a tie) instead of passing through zero. For
// sprites that encode facing as x in {-1, +1} this never yields a mid-flip
// pose; a host that animates x-scale continuously across zero will see the
// same snap.
func (h *History) RestoreBonesBlended(t float64) error {
	if math.IsNaN(t) || t < 0 || t > float64(h.capacity-1) {
		return fmt.Errorf("blended restore at %v of %d: %w", t, h.capacity, ErrOutOfRange)
	}

	t1 := int(math.Floor(t))
	t2 := int(math.Ceil(t))
	w1 := math.Ceil(t) - t
	w2 := 1 - w1

	if err := h.checkRestore(t1); err != nil {
		return err
	}
	if err := h.checkRestore(t2); err != nil {
		return err
	}

	for i, bone := range h.target {
		s1, s2 := h.scales[i][t1], h.scales[i][t2]

		var x float64
		if s1.X*s2.X < 0 {
			if w1 > w2 {
				x = s1.X
			} else {
				x = s2.X
			}
		} else {
			x = w1*s1.X + w2*s2.X
		}

		bone.SetLocalPose(Pose{
			Position: geom.Weighted(h.positions[i][t1], w1, h.positions[i][t2], w2),
			Rotation: geom.Slerp(h.rotations[i][t1], h.rotations[i][t2], w2),
			Scale: geom.Vec3{
				X: x,
				Y: w1*s1.Y + w2*s2.Y,
				Z: w1*s1.Z + w2*s2.Z,
			},
		})
	}
	return nil
}

// Reset forgets every stored snapshot. Allocated storage is kept.
func (h *History) Reset() {
	clear(h.recorded)
}

func (h *History) checkRestore(slot int) error {
	if slot < 0 || slot >= h.capacity {
		return fmt.Errorf("restore slot %d of %d: %w", slot, h.capacity, ErrOutOfRange)
	}
	if !h.Recorded(slot) {
		return fmt.Errorf("restore slot %d: %w", slot, ErrSlotNotRecorded)
	}
	return nil
}

// grow extends every per-bone table to hold at least n slots.
func (h *History) grow(n int) {
	if n <= len(h.recorded) {
		return
	}
	for i := range h.source {
		h.positions[i] = append(h.positions[i], make([]geom.Vec3, n-len(h.positions[i]))...)
		h.rotations[i] = append(h.rotations[i], make([]geom.Quat, n-len(h.rotations[i]))...)
		h.scales[i] = append(h.scales[i], make([]geom.Vec3, n-len(h.scales[i]))...)
	}
	h.recorded = append(h.recorded, make([]bool, n-len(h.recorded))...)
}
