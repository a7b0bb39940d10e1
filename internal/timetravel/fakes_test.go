package timetravel

import (
	"fmt"

	"chosenoffset.com/timecube/internal/core/geom"
)

type fakeBone struct {
	name string
	pose Pose
}

func (b *fakeBone) Name() string        { return b.name }
func (b *fakeBone) LocalPose() Pose     { return b.pose }
func (b *fakeBone) SetLocalPose(p Pose) { b.pose = p }

func newBones(prefix string, n int) []Bone {
	bones := make([]Bone, n)
	for i := range bones {
		bones[i] = &fakeBone{name: fmt.Sprintf("%s%d", prefix, i), pose: IdentityPose}
	}
	return bones
}

// moveTo places every bone at x with the given facing.
func moveTo(bones []Bone, x, facing float64) {
	for i, b := range bones {
		b.SetLocalPose(Pose{
			Position: geom.Vec3{X: x, Y: float64(i)},
			Rotation: geom.FromAngleZ(x / 10),
			Scale:    geom.Vec3{X: facing, Y: 1, Z: 1},
		})
	}
}

func xOf(b Bone) float64 {
	return b.LocalPose().Position.X
}

type fakeHost struct {
	player    []Bone
	clones    map[*TimeCube][]Bone
	parked    map[*TimeCube]int
	destroyed []*TimeCube
	frozen    bool
	freezes   []bool
	mode      ControlMode
	axis      float64
	spawnErr  error
}

func newFakeHost() *fakeHost {
	return &fakeHost{
		player: newBones("player", 3),
		clones: make(map[*TimeCube][]Bone),
		parked: make(map[*TimeCube]int),
	}
}

func (h *fakeHost) SpawnClone(c *TimeCube) ([]Bone, []Bone, error) {
	if h.spawnErr != nil {
		return nil, nil, h.spawnErr
	}
	target := newBones(c.Name+"-ghost", len(h.player))
	h.clones[c] = target
	return h.player, target, nil
}

func (h *fakeHost) DestroyClone(c *TimeCube) {
	h.destroyed = append(h.destroyed, c)
	delete(h.clones, c)
}

func (h *fakeHost) ParkClone(c *TimeCube) { h.parked[c]++ }

func (h *fakeHost) SetDynamicsFrozen(frozen bool) {
	h.frozen = frozen
	h.freezes = append(h.freezes, frozen)
}

func (h *fakeHost) SetControlMode(mode ControlMode) { h.mode = mode }

func (h *fakeHost) ScrubAxis() float64 { return h.axis }
