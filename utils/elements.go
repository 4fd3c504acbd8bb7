package utils

import "fmt"

// ElementType represents the reference shape of a mesh entity

type ElementType int

const (
	Unknown ElementType = iota
	// 0D elements
	Point
	// 1D elements
	Line
	Line3 // 3-node line (quadratic)
	// 2D elements
	Triangle
	Quad
	Triangle6 // 6-node triangle (quadratic)
	Quad8     // 8-node quad (quadratic)
	Quad9     // 9-node quad
	// 3D elements
	Tet
	Hex
	Prism
	Pyramid
	Tet10     // 10-node tetrahedron (quadratic)
	Hex20     // 20-node hexahedron (quadratic)
	Prism15   // 15-node prism (quadratic)
	Pyramid13 // 13-node pyramid (quadratic)
)

// NoVertex fills the 4th slot of a triangular face in origin-0 tables.
const NoVertex = -1

// String representation of element types
func (e ElementType) String() string {
	names := []string{
		"Unknown",
		"Point",
		"Line", "Line3",
		"Triangle", "Quad", "Triangle6", "Quad8", "Quad9",
		"Tet", "Hex", "Prism", "Pyramid",
		"Tet10", "Hex20", "Prism15", "Pyramid13",
	}
	if e >= 0 && int(e) < len(names) {
		return names[e]
	}
	return "Invalid"
}

// Linear returns the first order shape sharing this element's topology.
// Shapes without a topology (Unknown, Point, out of range) panic.
func (e ElementType) Linear() ElementType {
	switch e {
	case Line, Line3:
		return Line
	case Triangle, Triangle6:
		return Triangle
	case Quad, Quad8, Quad9:
		return Quad
	case Tet, Tet10:
		return Tet
	case Hex, Hex20:
		return Hex
	case Prism, Prism15:
		return Prism
	case Pyramid, Pyramid13:
		return Pyramid
	}
	panic(fmt.Sprintf("utils: element type %v has no reference topology", e))
}

// IsValid reports whether the type has a reference topology
func (e ElementType) IsValid() bool {
	switch e {
	case Line, Line3, Triangle, Triangle6, Quad, Quad8, Quad9,
		Tet, Tet10, Hex, Hex20, Prism, Prism15, Pyramid, Pyramid13:
		return true
	}
	return false
}

// GetDimension returns the spatial dimension of the element
func (e ElementType) GetDimension() int {
	switch e {
	case Point:
		return 0
	case Line, Line3:
		return 1
	case Triangle, Quad, Triangle6, Quad8, Quad9:
		return 2
	case Tet, Hex, Prism, Pyramid, Tet10, Hex20, Prism15, Pyramid13:
		return 3
	default:
		return -1
	}
}

// GetNumNodes returns the number of nodes, including non-vertex nodes of
// quadratic variants
func (e ElementType) GetNumNodes() int {
	switch e {
	case Point:
		return 1
	case Line3:
		return 3
	case Triangle6:
		return 6
	case Quad8:
		return 8
	case Quad9:
		return 9
	case Tet10:
		return 10
	case Hex20:
		return 20
	case Prism15:
		return 15
	case Pyramid13:
		return 13
	case Unknown:
		return 0
	default:
		return e.NumVertices()
	}
}

// NumVertices returns the number of corner vertices. Quadratic variants
// report the count of their linear base.
func (e ElementType) NumVertices() int {
	return shapeTables[e.Linear()].nVerts
}

// NumEdges returns the number of reference edges
func (e ElementType) NumEdges() int {
	return len(shapeTables[e.Linear()].edges)
}

// NumFaces returns the number of reference faces. Surface shapes have a
// single face (themselves), segments have none.
func (e ElementType) NumFaces() int {
	return len(shapeTables[e.Linear()].faces)
}

// Edges returns the origin-0 local vertex pairs of each reference edge.
// The returned slice is shared and must not be modified.
func (e ElementType) Edges() [][2]int {
	return shapeTables[e.Linear()].edges
}

// Edges1 is Edges in origin-1 numbering
func (e ElementType) Edges1() [][2]int {
	return shapeTables[e.Linear()].edges1
}

// Faces returns the origin-0 local vertex cycle of each reference face,
// with NoVertex in the 4th slot for triangles. The returned slice is shared
// and must not be modified.
func (e ElementType) Faces() [][4]int {
	return shapeTables[e.Linear()].faces
}

// Faces1 is Faces in origin-1 numbering; triangles carry 0 in the 4th slot.
func (e ElementType) Faces1() [][4]int {
	return shapeTables[e.Linear()].faces1
}

// FaceType returns Triangle or Quad for the given local face
func (e ElementType) FaceType(localFace int) ElementType {
	if e.Faces()[localFace][3] == NoVertex {
		return Triangle
	}
	return Quad
}

// CornerVertices returns the leading corner entries of an element's node
// list. Higher order nodes follow the corners and are dropped.
func (e ElementType) CornerVertices(nodes []int) []int {
	n := e.NumVertices()
	return nodes[:n:n]
}

type shapeTable struct {
	nVerts int
	edges  [][2]int
	faces  [][4]int
	edges1 [][2]int
	faces1 [][4]int
}

// Edge traversal order follows the orientation convention of each shape:
// the tet lists its apex-linked edges first, the prism its two triangles
// then its vertical edges, the hex its bottom, top then vertical edges.
var shapeTables = map[ElementType]*shapeTable{
	Line: {
		nVerts: 2,
		edges:  [][2]int{{0, 1}},
	},
	Triangle: {
		nVerts: 3,
		edges:  [][2]int{{2, 0}, {1, 2}, {0, 1}},
		faces:  [][4]int{{0, 1, 2, NoVertex}},
	},
	Quad: {
		nVerts: 4,
		edges:  [][2]int{{0, 1}, {2, 3}, {3, 0}, {1, 2}},
		faces:  [][4]int{{0, 1, 2, 3}},
	},
	Tet: {
		nVerts: 4,
		edges: [][2]int{
			{3, 0}, {3, 1}, {3, 2},
			{0, 1}, {0, 2}, {1, 2},
		},
		faces: [][4]int{
			{3, 1, 2, NoVertex},
			{3, 2, 0, NoVertex},
			{3, 0, 1, NoVertex},
			{0, 2, 1, NoVertex},
		},
	},
	Prism: {
		nVerts: 6,
		edges: [][2]int{
			{2, 0}, {0, 1}, {2, 1},
			{5, 3}, {3, 4}, {5, 4},
			{2, 5}, {0, 3}, {1, 4},
		},
		faces: [][4]int{
			{0, 2, 1, NoVertex}, // bottom
			{3, 4, 5, NoVertex}, // top
			{2, 0, 3, 5},
			{0, 1, 4, 3},
			{1, 2, 5, 4},
		},
	},
	Pyramid: {
		nVerts: 5,
		edges: [][2]int{
			{0, 1}, {1, 2}, {0, 3}, {3, 2},
			{0, 4}, {1, 4}, {2, 4}, {3, 4},
		},
		faces: [][4]int{
			{0, 1, 4, NoVertex},
			{1, 2, 4, NoVertex},
			{2, 3, 4, NoVertex},
			{3, 0, 4, NoVertex},
			{0, 3, 2, 1}, // base
		},
	},
	Hex: {
		nVerts: 8,
		edges: [][2]int{
			{0, 1}, {2, 3}, {3, 0}, {1, 2},
			{4, 5}, {6, 7}, {7, 4}, {5, 6},
			{0, 4}, {1, 5}, {2, 6}, {3, 7},
		},
		faces: [][4]int{
			{0, 3, 2, 1}, // bottom
			{4, 5, 6, 7}, // top
			{0, 1, 5, 4},
			{1, 2, 6, 5},
			{2, 3, 7, 6},
			{3, 0, 4, 7},
		},
	},
}

func init() {
	// Origin-1 tables differ from origin-0 only by a constant offset; the
	// triangle sentinel maps from NoVertex to 0.
	for _, st := range shapeTables {
		st.edges1 = make([][2]int, len(st.edges))
		for i, e := range st.edges {
			st.edges1[i] = [2]int{e[0] + 1, e[1] + 1}
		}
		st.faces1 = make([][4]int, len(st.faces))
		for i, f := range st.faces {
			for j, v := range f {
				if v == NoVertex {
					st.faces1[i][j] = 0
				} else {
					st.faces1[i][j] = v + 1
				}
			}
		}
	}
}
