package readers

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/meshtopo/mesh"
	"github.com/notargets/meshtopo/topology"
	"github.com/notargets/meshtopo/utils"
)

func createTempMeshFile(t *testing.T, name, content string) string {
	t.Helper()
	tmpFile := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(tmpFile, []byte(content), 0644))
	return tmpFile
}

// requireConsistent builds the full topology of a freshly read mesh
func requireConsistent(t *testing.T, msh *mesh.Mesh) *topology.Topology {
	t.Helper()
	topo := topology.New(msh)
	require.NoError(t, topo.Update())
	return topo
}

const twoTetsMsh = `$MeshFormat
2.2 0 8
$EndMeshFormat
$PhysicalNames
2
2 1 "wall"
3 2 "fluid domain"
$EndPhysicalNames
$Nodes
5
1 0 0 0
2 1 0 0
3 0 1 0
4 0 0 1
5 1 1 1
$EndNodes
$Elements
6
1 15 2 0 1 1
2 1 2 0 1 1 2
3 2 2 1 1 1 3 2
4 4 2 2 1 1 2 3 4
5 4 2 2 1 2 3 4 5
6 99 2 0 0 1 2
$EndElements
$NodeData
1
"x"
$EndNodeData
`

func TestReadGmsh22(t *testing.T) {
	msh, err := ReadMeshFile(createTempMeshFile(t, "two_tets.msh", twoTetsMsh))
	require.NoError(t, err)

	assert.Equal(t, 5, msh.NumVertices())
	assert.Equal(t, 1.0, msh.Vertices[4].Z)
	require.Equal(t, 2, msh.NumElements())
	assert.Equal(t, []int{1, 2, 3, 4}, msh.Element(1).Vertices)
	assert.Equal(t, 2, msh.Element(0).Tag)

	require.Equal(t, 1, msh.NumSurfaceElements())
	se := msh.SurfaceElement(0)
	assert.Equal(t, utils.Triangle, se.Type)
	assert.Equal(t, []int{0, 2, 1}, se.Vertices)
	assert.Equal(t, 1, se.Tag)
	assert.Equal(t, mesh.NoOwner, se.Owner)

	require.Equal(t, 1, msh.NumSegments())
	assert.Equal(t, [2]int{0, 1}, msh.Segment(0).Vertices)

	assert.Equal(t, map[int]string{1: "wall", 2: "fluid domain"}, msh.BoundaryTags)

	topo := requireConsistent(t, msh)
	assert.Equal(t, 7, topo.NumFaces())
	a, b := topo.SurfaceNeighborVolumes(0)
	assert.Equal(t, [2]int{0, topology.NoNeighbor}, [2]int{a, b})
}

func TestReadGmsh22_Errors(t *testing.T) {
	tests := []struct {
		name, content string
	}{
		{"Version4", "$MeshFormat\n4.1 0 8\n$EndMeshFormat\n"},
		{"Binary", "$MeshFormat\n2.2 1 8\n$EndMeshFormat\n"},
		{"UnknownNode", `$MeshFormat
2.2 0 8
$EndMeshFormat
$Nodes
1
1 0 0 0
$EndNodes
$Elements
1
1 1 0 1 7
$EndElements
`},
		{"TruncatedNodes", "$MeshFormat\n2.2 0 8\n$EndMeshFormat\n$Nodes\n3\n1 0 0 0\n"},
		{"ElementsFirst", "$Elements\n0\n$EndElements\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadGmsh22(createTempMeshFile(t, "bad.msh", tt.content))
			assert.Error(t, err)
		})
	}
}

// The same mesh as twoTetsMsh in block form. The curve block carries a
// parametric coordinate, the point and the unknown element type are dropped.
const twoTetsMsh4 = `$MeshFormat
4.1 0 8
$EndMeshFormat
$PhysicalNames
2
2 1 "wall"
3 2 "fluid domain"
$EndPhysicalNames
$Entities
1 1 1 1
1 0 0 0 0
1 0 0 0 1 0 0 0 2 1 -2
1 0 0 0 1 1 0 1 1 0
1 0 0 0 1 1 1 1 2 0
$EndEntities
$Nodes
2 5 1 5
1 1 1 2
1
2
0 0 0 0
1 0 0 1
3 1 0 3
3
4
5
0 1 0
0 0 1
1 1 1
$EndNodes
$Elements
5 6 1 6
0 1 15 1
1 1
1 1 1 1
2 1 2
2 1 2 1
3 1 3 2
3 1 4 2
4 1 2 3 4
5 2 3 4 5
2 1 99 1
6 1 2
$EndElements
$NodeData
1
"x"
$EndNodeData
`

func TestReadGmsh4(t *testing.T) {
	msh, err := ReadMeshFile(createTempMeshFile(t, "two_tets.msh", twoTetsMsh4))
	require.NoError(t, err)

	assert.Equal(t, 5, msh.NumVertices())
	assert.Equal(t, 1.0, msh.Vertices[1].X)
	assert.Equal(t, 1.0, msh.Vertices[4].Z)
	require.Equal(t, 2, msh.NumElements())
	assert.Equal(t, []int{0, 1, 2, 3}, msh.Element(0).Vertices)
	assert.Equal(t, []int{1, 2, 3, 4}, msh.Element(1).Vertices)
	assert.Equal(t, 2, msh.Element(0).Tag)

	require.Equal(t, 1, msh.NumSurfaceElements())
	se := msh.SurfaceElement(0)
	assert.Equal(t, utils.Triangle, se.Type)
	assert.Equal(t, []int{0, 2, 1}, se.Vertices)
	assert.Equal(t, 1, se.Tag)

	require.Equal(t, 1, msh.NumSegments())
	assert.Equal(t, [2]int{0, 1}, msh.Segment(0).Vertices)
	assert.Equal(t, 0, msh.Segment(0).Tag)

	assert.Equal(t, map[int]string{1: "wall", 2: "fluid domain"}, msh.BoundaryTags)

	topo := requireConsistent(t, msh)
	assert.Equal(t, 7, topo.NumFaces())
	a, b := topo.SurfaceNeighborVolumes(0)
	assert.Equal(t, [2]int{0, topology.NoNeighbor}, [2]int{a, b})
}

// Both versions of the same mesh derive identical tables
func TestReadGmsh_VersionsAgree(t *testing.T) {
	m2, err := ReadGmsh(createTempMeshFile(t, "v2.msh", twoTetsMsh))
	require.NoError(t, err)
	m4, err := ReadGmsh(createTempMeshFile(t, "v4.msh", twoTetsMsh4))
	require.NoError(t, err)

	assert.Equal(t, requireConsistent(t, m2).Snapshot(), requireConsistent(t, m4).Snapshot())
}

func TestReadGmsh_Errors(t *testing.T) {
	tests := []struct {
		name, content, want string
	}{
		{"NoMeshFormat", "$Nodes\n0\n$EndNodes\n", "could not find $MeshFormat"},
		{"Version3", "$MeshFormat\n3.0 0 8\n$EndMeshFormat\n", "unsupported Gmsh format version: 3.0"},
		{"Version40", "$MeshFormat\n4.0 0 8\n$EndMeshFormat\n", "unsupported Gmsh format version: 4.0"},
		{"Binary4", "$MeshFormat\n4.1 1 8\n$EndMeshFormat\n", "binary"},
		{"ElementsFirst", "$MeshFormat\n4.1 0 8\n$EndMeshFormat\n$Elements\n0 0 0 0\n$EndElements\n", "before $Nodes"},
		{"UnknownNode", `$MeshFormat
4.1 0 8
$EndMeshFormat
$Nodes
1 1 1 1
0 1 0 1
1
0 0 0
$EndNodes
$Elements
1 1 1 1
1 1 1 1
1 1 7
$EndElements
`, "unknown node 7"},
		{"TruncatedNodeBlock", `$MeshFormat
4.1 0 8
$EndMeshFormat
$Nodes
1 2 1 2
3 1 0 2
1
2
0 0 0
`, "unexpected EOF"},
		{"ShortElementLine", `$MeshFormat
4.1 0 8
$EndMeshFormat
$Nodes
1 2 1 2
1 1 0 2
1
2
0 0 0
1 0 0
$EndNodes
$Elements
1 1 1 1
3 1 4 1
1 1 2
$EndElements
`, "expected 4 nodes, got 2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadGmsh(createTempMeshFile(t, "bad.msh", tt.content))
			assert.ErrorContains(t, err, tt.want)
		})
	}
}

const brickNeu = `        CONTROL INFO 2.4.6
** GAMBIT NEUTRAL FILE
brick
PROGRAM:                Gambit     VERSION:  2.4.6
     NUMNP     NELEM     NGRPS    NBSETS     NDFCD     NDFVL
         8         1         1         1         3         3
ENDOFSECTION
   NODAL COORDINATES 2.4.6
         1   0.0   0.0   0.0
         2   1.0   0.0   0.0
         3   0.0   1.0   0.0
         4   1.0   1.0   0.0
         5   0.0   0.0   1.0
         6   1.0   0.0   1.0
         7   0.0   1.0   1.0
         8   1.0   1.0   1.0
ENDOFSECTION
      ELEMENTS/CELLS 2.4.6
         1  4  8      1      2      3      4      5      6      7
                      8
ENDOFSECTION
       ELEMENT GROUP 2.4.6
GROUP:          3 ELEMENTS:          1 MATERIAL:          2 NFLAGS:          1
                           fluid
       0
       1
ENDOFSECTION
 BOUNDARY CONDITIONS 2.4.6
                           wall       1       6       0       6
         1        4        1
         1        4        2
         1        4        3
         1        4        4
         1        4        5
         1        4        6
ENDOFSECTION
`

func TestReadGambitNeutral_Brick(t *testing.T) {
	msh, err := ReadMeshFile(createTempMeshFile(t, "brick.neu", brickNeu))
	require.NoError(t, err)

	require.Equal(t, 1, msh.NumElements())
	el := msh.Element(0)
	assert.Equal(t, utils.Hex, el.Type)
	assert.Equal(t, 3, el.Tag)
	assert.Equal(t, []int{0, 1, 3, 2, 4, 5, 7, 6}, el.Vertices)
	// Counterclockwise bottom face
	assert.Equal(t, 1.0, msh.Vertices[el.Vertices[2]].X)
	assert.Equal(t, 1.0, msh.Vertices[el.Vertices[2]].Y)

	assert.Equal(t, "wall", msh.BoundaryTags[1])
	require.Equal(t, 6, msh.NumSurfaceElements())
	for _, se := range msh.SurfaceElements {
		assert.Equal(t, utils.Quad, se.Type)
		assert.Equal(t, 0, se.Owner)
		assert.Equal(t, 1, se.Tag)
	}

	topo := requireConsistent(t, msh)
	require.Equal(t, 6, topo.NumFaces())
	for f := 0; f < topo.NumFaces(); f++ {
		assert.NotEqual(t, topology.NoNeighbor, topo.FaceSurfaceElement(f), "face %d", f)
	}
}

const twoTetsNeu = `        CONTROL INFO 2.4.6
** GAMBIT NEUTRAL FILE
     NUMNP     NELEM     NGRPS    NBSETS     NDFCD     NDFVL
         5         2         1         2         3         3
ENDOFSECTION
   NODAL COORDINATES 2.4.6
         1   0.0   0.0   0.0
         2   1.0   0.0   0.0
         3   0.0   1.0   0.0
         4   0.0   0.0   1.0
         5   1.0   1.0   1.0
ENDOFSECTION
      ELEMENTS/CELLS 2.4.6
         1  6  4      1      2      3      4
         2  6  4      2      3      4      5
ENDOFSECTION
       ELEMENT GROUP 2.4.6
GROUP:          1 ELEMENTS:          2 MATERIAL:          2 NFLAGS:          1
                           fluid
       0
       1       2
ENDOFSECTION
 BOUNDARY CONDITIONS 2.4.6
                           inflow       1       1       0       6
         1        6        1
ENDOFSECTION
 BOUNDARY CONDITIONS 2.4.6
                           outflow       1       1       0       6
         2        6        3
ENDOFSECTION
`

func TestReadGambitNeutral_Tets(t *testing.T) {
	msh, err := ReadGambitNeutral(createTempMeshFile(t, "tets.neu", twoTetsNeu))
	require.NoError(t, err)

	assert.Equal(t, map[int]string{1: "inflow", 2: "outflow"}, msh.BoundaryTags)
	require.Equal(t, 2, msh.NumSurfaceElements())
	assert.ElementsMatch(t, []int{0, 1, 2}, msh.SurfaceElement(0).Vertices)
	assert.Equal(t, 1, msh.SurfaceElement(0).Tag)
	assert.ElementsMatch(t, []int{2, 3, 4}, msh.SurfaceElement(1).Vertices)
	assert.Equal(t, 1, msh.SurfaceElement(1).Owner)

	requireConsistent(t, msh)
}

// A 2D cell listed ahead of the tetrahedron shifts the Gambit element
// numbers of the volume cells.
const triThenTetNeu = `        CONTROL INFO 2.4.6
** GAMBIT NEUTRAL FILE
     NUMNP     NELEM     NGRPS    NBSETS     NDFCD     NDFVL
         4         2         0         1         3         3
ENDOFSECTION
   NODAL COORDINATES 2.4.6
         1   0.0   0.0   0.0
         2   1.0   0.0   0.0
         3   0.0   1.0   0.0
         4   0.0   0.0   1.0
ENDOFSECTION
      ELEMENTS/CELLS 2.4.6
         1  3  3      1      2      3
         2  6  4      1      2      3      4
ENDOFSECTION
 BOUNDARY CONDITIONS 2.4.6
                           wall       1       1       0       6
         2        6        3
ENDOFSECTION
`

func TestReadGambitNeutral_BoundaryOwnerIsVolumeIndex(t *testing.T) {
	msh, err := ReadGambitNeutral(createTempMeshFile(t, "mixed.neu", triThenTetNeu))
	require.NoError(t, err)

	require.Equal(t, 1, msh.NumElements())
	assert.Equal(t, utils.Tet, msh.Element(0).Type)
	require.Equal(t, 2, msh.NumSurfaceElements())

	cell := msh.SurfaceElement(0)
	assert.Equal(t, utils.Triangle, cell.Type)
	assert.Equal(t, mesh.NoOwner, cell.Owner)

	wall := msh.SurfaceElement(1)
	assert.Equal(t, 1, wall.Tag)
	assert.Equal(t, 0, wall.Owner)
	assert.ElementsMatch(t, []int{1, 2, 3}, wall.Vertices)

	topo := requireConsistent(t, msh)
	a, b := topo.SurfaceNeighborVolumes(1)
	assert.Equal(t, 0, a)
	assert.Equal(t, topology.NoNeighbor, b)
}

func TestReadGambitNeutral_Errors(t *testing.T) {
	_, err := ReadGambitNeutral(createTempMeshFile(t, "empty.neu", "nothing here\n"))
	assert.Error(t, err)

	bad := `     NUMNP     NELEM     NGRPS    NBSETS     NDFCD     NDFVL
         4         1         0         1         3         3
   NODAL COORDINATES 2.4.6
         1   0.0   0.0   0.0
         2   1.0   0.0   0.0
         3   0.0   1.0   0.0
         4   0.0   0.0   1.0
ENDOFSECTION
      ELEMENTS/CELLS 2.4.6
         1  6  4      1      2      3      4
ENDOFSECTION
 BOUNDARY CONDITIONS 2.4.6
                           wall       1       1       0       6
         1        6        5
ENDOFSECTION
`
	_, err = ReadGambitNeutral(createTempMeshFile(t, "badface.neu", bad))
	assert.ErrorContains(t, err, "no face 5")
}

const twoTetsSU2 = `% two tetrahedra sharing a face
NDIME= 3
NELEM= 2
10 0 1 2 3 0
10 1 2 3 4 1
NPOIN= 5
0.0 0.0 0.0 0
1.0 0.0 0.0 1
0.0 1.0 0.0 2
0.0 0.0 1.0 3
1.0 1.0 1.0 4
NMARK= 2
MARKER_TAG= inlet
MARKER_ELEMS= 1
5 0 2 1
MARKER_TAG= outlet
MARKER_ELEMS= 1
5 2 3 4
`

func TestReadSU2_3D(t *testing.T) {
	msh, err := ReadMeshFile(createTempMeshFile(t, "tets.su2", twoTetsSU2))
	require.NoError(t, err)

	assert.Equal(t, 5, msh.NumVertices())
	assert.Equal(t, 2, msh.NumElements())
	require.Equal(t, 2, msh.NumSurfaceElements())
	assert.Equal(t, 1, msh.SurfaceElement(0).Tag)
	assert.Equal(t, 2, msh.SurfaceElement(1).Tag)
	assert.Equal(t, map[int]string{1: "inlet", 2: "outlet"}, msh.BoundaryTags)

	topo := requireConsistent(t, msh)
	a, _ := topo.SurfaceNeighborVolumes(1)
	assert.Equal(t, 1, a)
}

const squareSU2 = `NDIME= 2
NELEM= 2
5 0 1 3
5 0 3 2
NPOIN= 4
0.0 0.0
1.0 0.0
0.0 1.0
1.0 1.0
NMARK= 1
MARKER_TAG= farfield
MARKER_ELEMS= 4
3 0 1
3 1 3
3 3 2
3 2 0
`

func TestReadSU2_2D(t *testing.T) {
	msh, err := ReadSU2(createTempMeshFile(t, "square.su2", squareSU2))
	require.NoError(t, err)

	assert.Equal(t, 0, msh.NumElements())
	assert.Equal(t, 2, msh.NumSurfaceElements())
	assert.Equal(t, 4, msh.NumSegments())
	assert.Equal(t, 2, msh.GetMeshDimension())

	topo := requireConsistent(t, msh)
	assert.Equal(t, 5, topo.NumEdges())
	for gi := 0; gi < msh.NumSegments(); gi++ {
		assert.Len(t, topo.SegmentSurfaceElements(gi), 1)
	}
}

func TestReadSU2_Errors(t *testing.T) {
	tests := []struct {
		name, content string
	}{
		{"NoDimension", "NPOIN= 0\n"},
		{"BadDimension", "NDIME= 4\n"},
		{"UnknownType", "NDIME= 3\nNELEM= 1\n42 0 1 2\nNPOIN= 0\n"},
		{"NodeOutOfRange", "NDIME= 2\nNELEM= 1\n5 0 1 9\nNPOIN= 3\n0 0\n1 0\n0 1\n"},
		{"BadMarker", "NDIME= 2\nNPOIN= 0\nNMARK= 1\nMARKER_ELEMS= 1\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadSU2(createTempMeshFile(t, "bad.su2", tt.content))
			assert.Error(t, err)
		})
	}
}

func TestReadMeshFile_UnknownExtension(t *testing.T) {
	_, err := ReadMeshFile("mesh.vtk")
	assert.ErrorContains(t, err, "unsupported mesh format")

	_, err = ReadMeshFile(filepath.Join(t.TempDir(), "missing.msh"))
	assert.Error(t, err)
}
