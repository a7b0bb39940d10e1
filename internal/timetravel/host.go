package timetravel

// ControlMode selects how the host interprets player input.
type ControlMode int

const (
	// ControlNormal is regular movement.
	ControlNormal ControlMode = iota
	// ControlRewind routes horizontal input to the rewinding cube's scrub
	// position.
	ControlRewind
)

func (m ControlMode) String() string {
	if m == ControlRewind {
		return "rewind"
	}
	return "normal"
}

// Host is the real-time simulation that owns entities, physics and input.
// The time travel subsystem drives it through this narrow interface.
type Host interface {
	// SpawnClone creates the ghost entity paired with cube and returns the
	// bones to record from (the player) and to replay onto (the ghost), in
	// matching order. A bone the host cannot resolve is reported with
	// ErrMissingBone.
	SpawnClone(cube *TimeCube) (source, target []Bone, err error)

	// DestroyClone removes the ghost paired with cube.
	DestroyClone(cube *TimeCube)

	// ParkClone hides the ghost paired with cube.
	ParkClone(cube *TimeCube)

	// SetDynamicsFrozen pauses or resumes physics for every dynamic body
	// except the player.
	SetDynamicsFrozen(frozen bool)

	// SetControlMode switches the player's input handling.
	SetControlMode(mode ControlMode)

	// ScrubAxis returns the rewind scrub input for this tick in [-1, 1].
	ScrubAxis() float64
}

// Clone is the ghost paired with a cube.
type Clone struct {
	History *History
}
