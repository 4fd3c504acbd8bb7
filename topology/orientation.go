package topology

import "fmt"

const (
	edgeOrientBits = 1
	faceOrientBits = 3

	// MaxEdgeIndex and MaxFaceIndex bound the global indices a packed
	// reference can carry.
	MaxEdgeIndex = 1<<(32-edgeOrientBits) - 1
	MaxFaceIndex = 1<<(32-faceOrientBits) - 1
)

// EdgeRef pairs a global edge index with the orientation of one local
// occurrence: bit 0 is set when the local vertex order is the reverse of the
// canonical (ascending) order.
type EdgeRef uint32

func NewEdgeRef(index int, reversed bool) EdgeRef {
	if index < 0 || index > MaxEdgeIndex {
		panic(fmt.Sprintf("topology: edge index %d out of range", index))
	}
	r := EdgeRef(index) << edgeOrientBits
	if reversed {
		r |= 1
	}
	return r
}

func (e EdgeRef) Index() int     { return int(e >> edgeOrientBits) }
func (e EdgeRef) Reversed() bool { return e&1 != 0 }

func (e EdgeRef) String() string {
	if e.Reversed() {
		return fmt.Sprintf("-%d", e.Index())
	}
	return fmt.Sprintf("+%d", e.Index())
}

// FaceRef pairs a global face index with a 3 bit orientation code selecting
// the rotation/reflection that carries the canonical vertex cycle onto the
// local one. Bit 2 is the reflection, bits 0..1 the rotation.
type FaceRef uint32

func NewFaceRef(index, code int) FaceRef {
	if index < 0 || index > MaxFaceIndex {
		panic(fmt.Sprintf("topology: face index %d out of range", index))
	}
	if code < 0 || code > 7 {
		panic(fmt.Sprintf("topology: face orientation code %d out of range", code))
	}
	return FaceRef(index)<<faceOrientBits | FaceRef(code)
}

func (f FaceRef) Index() int       { return int(f >> faceOrientBits) }
func (f FaceRef) Orientation() int { return int(f & (1<<faceOrientBits - 1)) }

func (f FaceRef) String() string {
	return fmt.Sprintf("%d/%d", f.Index(), f.Orientation())
}

const reflectBit = 4

// ApplyFaceOrientation returns the local vertex cycle obtained by applying
// the orientation code to a canonical cycle of length 3 or 4:
// local[i] = canonical[(r + s*i) mod n], s = -1 when reflected.
func ApplyFaceOrientation(canonical []int, code int) []int {
	n := len(canonical)
	r, s := code&3, 1
	if code&reflectBit != 0 {
		s = -1
	}
	if r >= n {
		panic(fmt.Sprintf("topology: rotation %d invalid for a %d-cycle", r, n))
	}
	local := make([]int, n)
	for i := range local {
		local[i] = canonical[((r+s*i)%n+n)%n]
	}
	return local
}

// faceOrientation finds the code carrying canonical onto local, reporting
// false when local is not a rotation or reflection of canonical.
func faceOrientation(canonical, local []int) (int, bool) {
	n := len(local)
	for _, reflect := range [2]int{0, reflectBit} {
		for r := 0; r < n; r++ {
			s := 1
			if reflect != 0 {
				s = -1
			}
			match := true
			for i := 0; i < n && match; i++ {
				match = local[i] == canonical[((r+s*i)%n+n)%n]
			}
			if match {
				return r | reflect, true
			}
		}
	}
	return 0, false
}

// canonicalFace rotates a vertex cycle so its smallest vertex leads, then
// reverses the winding if needed so the successor of the lead is smaller
// than its predecessor. For triangles this is ascending order.
func canonicalFace(local []int, canon []int) {
	n := len(local)
	m := 0
	for i := 1; i < n; i++ {
		if local[i] < local[m] {
			m = i
		}
	}
	s := 1
	if local[(m+1)%n] > local[(m-1+n)%n] {
		s = -1
	}
	for i := 0; i < n; i++ {
		canon[i] = local[((m+s*i)%n+n)%n]
	}
}
