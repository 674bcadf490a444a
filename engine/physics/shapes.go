package physics

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// Shape is the closed set of collider shapes: Ball and Cuboid.
type Shape interface {
	isShape()
	fmt.Stringer
}

// Ball is a sphere centered on its collider origin.
type Ball struct {
	Radius float32
}

func (Ball) isShape() {}

func (b Ball) String() string { return fmt.Sprintf("ball(%g)", b.Radius) }

// Cuboid is an oriented box given by its half extents.
type Cuboid struct {
	HalfExtents mgl32.Vec3
}

func (Cuboid) isShape() {}

func (c Cuboid) String() string {
	return fmt.Sprintf("cuboid(%g, %g, %g)", c.HalfExtents[0], c.HalfExtents[1], c.HalfExtents[2])
}

// InteractionGroups packs a 16-bit membership mask in the high half and a 16-bit filter mask in the low half.
type InteractionGroups uint32

// Collision groups used by the game.
const (
	// GroupStatic is the default group of level geometry.
	GroupStatic InteractionGroups = 0x00010001
	// GroupBin marks the scoring volume.
	GroupBin InteractionGroups = 0x00090009
	// GroupBall is the group of thrown projectiles.
	GroupBall InteractionGroups = 0x00010001
	// GroupScoringQuery is the query mask that only reports the scoring volume.
	GroupScoringQuery InteractionGroups = 0x00080008
	// GroupAll interacts with everything.
	GroupAll InteractionGroups = 0xFFFFFFFF
)

// NewInteractionGroups builds a group value from its membership and filter masks.
func NewInteractionGroups(memberships, filter uint16) InteractionGroups {
	return InteractionGroups(uint32(memberships)<<16 | uint32(filter))
}

// Memberships returns the groups this value belongs to.
func (g InteractionGroups) Memberships() uint16 {
	return uint16(g >> 16)
}

// Filter returns the groups this value can interact with.
func (g InteractionGroups) Filter() uint16 {
	return uint16(g)
}

// Test reports whether g and other can interact: each must belong to a group the other's filter accepts.
func (g InteractionGroups) Test(other InteractionGroups) bool {
	return g.Memberships()&other.Filter() != 0 && other.Memberships()&g.Filter() != 0
}

func (g InteractionGroups) String() string {
	return fmt.Sprintf("0x%08X", uint32(g))
}
