package mesh

import (
	"github.com/notargets/meshtopo/utils"
)

// TestMeshes provides a collection of standard test meshes shared by the
// readers and the topology tests. Every call to GetStandardTestMeshes builds
// fresh meshes, so tests may mutate them.
type TestMeshes struct {
	SingleTet     *Mesh
	SingleHex     *Mesh
	SinglePrism   *Mesh
	SinglePyramid *Mesh
	TwoTetMesh    *Mesh // Two tets sharing the face {1,2,3}
	MixedMesh     *Mesh // Hex with a pyramid on top, a prism on +x, a tet on the pyramid
}

// GetStandardTestMeshes returns a set of standard test meshes
func GetStandardTestMeshes() *TestMeshes {
	return &TestMeshes{
		SingleTet:     createSingleTet(),
		SingleHex:     createSingleHex(),
		SinglePrism:   createSinglePrism(),
		SinglePyramid: createSinglePyramid(),
		TwoTetMesh:    createTwoTetMesh(),
		MixedMesh:     createMixedMesh(),
	}
}

func fromNodes(nodes [][3]float64) *Mesh {
	m := NewMesh()
	for i, p := range nodes {
		m.AddNode(i+1, p[:])
	}
	return m
}

func mustAdd(m *Mesh, et utils.ElementType, verts ...int) {
	if _, err := m.AddElement(et, verts, 1); err != nil {
		panic(err)
	}
}

func cubeNodes() [][3]float64 {
	return [][3]float64{
		{0, 0, 0}, // 0: origin
		{1, 0, 0}, // 1: x
		{1, 1, 0}, // 2: xy
		{0, 1, 0}, // 3: y
		{0, 0, 1}, // 4: z
		{1, 0, 1}, // 5: xz
		{1, 1, 1}, // 6: xyz
		{0, 1, 1}, // 7: yz
	}
}

func createSingleTet() *Mesh {
	m := fromNodes([][3]float64{
		{0, 0, 0},
		{1, 0, 0},
		{0, 1, 0},
		{0, 0, 1},
	})
	mustAdd(m, utils.Tet, 0, 1, 2, 3)
	return m
}

func createSingleHex() *Mesh {
	m := fromNodes(cubeNodes())
	mustAdd(m, utils.Hex, 0, 1, 2, 3, 4, 5, 6, 7)
	return m
}

func createSinglePrism() *Mesh {
	m := fromNodes([][3]float64{
		{0, 0, 0}, {1, 0, 0}, {0, 1, 0},
		{0, 0, 1}, {1, 0, 1}, {0, 1, 1},
	})
	mustAdd(m, utils.Prism, 0, 1, 2, 3, 4, 5)
	return m
}

func createSinglePyramid() *Mesh {
	m := fromNodes([][3]float64{
		{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0},
		{0.5, 0.5, 1}, // apex
	})
	mustAdd(m, utils.Pyramid, 0, 1, 2, 3, 4)
	return m
}

func createTwoTetMesh() *Mesh {
	m := fromNodes([][3]float64{
		{0, 0, 0},
		{1, 0, 0},
		{0, 1, 0},
		{0, 0, 1},
		{1, 1, 1},
	})
	mustAdd(m, utils.Tet, 0, 1, 2, 3)
	mustAdd(m, utils.Tet, 1, 2, 3, 4)
	return m
}

func createMixedMesh() *Mesh {
	nodes := append(cubeNodes(),
		[3]float64{0.5, 0.5, 1.5},  // 8: pyramid apex
		[3]float64{1.5, 0.5, 0},    // 9: prism bottom
		[3]float64{1.5, 0.5, 1},    // 10: prism top
		[3]float64{0.5, -0.5, 1.3}, // 11: tet apex
	)
	m := fromNodes(nodes)
	mustAdd(m, utils.Hex, 0, 1, 2, 3, 4, 5, 6, 7)
	// Base shares the hex top face {4,5,6,7}
	mustAdd(m, utils.Pyramid, 4, 5, 6, 7, 8)
	// Quad face {2,0,3,5} maps to the hex face {1,2,6,5}
	mustAdd(m, utils.Prism, 1, 9, 2, 5, 10, 6)
	// Shares the pyramid triangle {4,5,8}
	mustAdd(m, utils.Tet, 4, 5, 8, 11)
	return m
}

// NewHexBlock returns a structured nx x ny x nz block of unit hexahedra
func NewHexBlock(nx, ny, nz int) *Mesh {
	m := NewMesh()
	vid := blockVertices(m, nx, ny, nz)
	for k := 0; k < nz; k++ {
		for j := 0; j < ny; j++ {
			for i := 0; i < nx; i++ {
				c := cellCorners(vid, i, j, k)
				mustAdd(m, utils.Hex, c[:]...)
			}
		}
	}
	return m
}

// NewTetBlock returns a structured block of hexahedral cells, each split into
// six tetrahedra around its main diagonal, which is conforming across cells.
func NewTetBlock(nx, ny, nz int) *Mesh {
	m := NewMesh()
	vid := blockVertices(m, nx, ny, nz)
	// Cell corners by bit pattern x + 2y + 4z
	paths := [6][3]int{
		{1, 2, 4}, {1, 4, 2}, {2, 1, 4}, {2, 4, 1}, {4, 1, 2}, {4, 2, 1},
	}
	for k := 0; k < nz; k++ {
		for j := 0; j < ny; j++ {
			for i := 0; i < nx; i++ {
				corner := func(bits int) int {
					return vid(i+bits&1, j+(bits>>1)&1, k+(bits>>2)&1)
				}
				for _, p := range paths {
					mustAdd(m, utils.Tet,
						corner(0), corner(p[0]), corner(p[0]|p[1]), corner(7))
				}
			}
		}
	}
	return m
}

func blockVertices(m *Mesh, nx, ny, nz int) func(i, j, k int) int {
	vid := func(i, j, k int) int {
		return i + (nx+1)*(j+(ny+1)*k)
	}
	for k := 0; k <= nz; k++ {
		for j := 0; j <= ny; j++ {
			for i := 0; i <= nx; i++ {
				m.AddNode(vid(i, j, k)+1, []float64{float64(i), float64(j), float64(k)})
			}
		}
	}
	return vid
}

func cellCorners(vid func(i, j, k int) int, i, j, k int) [8]int {
	return [8]int{
		vid(i, j, k), vid(i+1, j, k), vid(i+1, j+1, k), vid(i, j+1, k),
		vid(i, j, k+1), vid(i+1, j, k+1), vid(i+1, j+1, k+1), vid(i, j+1, k+1),
	}
}
