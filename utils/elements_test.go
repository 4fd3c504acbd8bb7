package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var linearShapes = []ElementType{Line, Triangle, Quad, Tet, Pyramid, Prism, Hex}

func TestElementType_Counts(t *testing.T) {
	tests := []struct {
		et                    ElementType
		nVerts, nEdges, nFace int
	}{
		{Line, 2, 1, 0},
		{Triangle, 3, 3, 1},
		{Quad, 4, 4, 1},
		{Tet, 4, 6, 4},
		{Pyramid, 5, 8, 5},
		{Prism, 6, 9, 5},
		{Hex, 8, 12, 6},
		// Quadratic variants report the topology of their linear base
		{Line3, 2, 1, 0},
		{Triangle6, 3, 3, 1},
		{Quad8, 4, 4, 1},
		{Quad9, 4, 4, 1},
		{Tet10, 4, 6, 4},
		{Pyramid13, 5, 8, 5},
		{Prism15, 6, 9, 5},
		{Hex20, 8, 12, 6},
	}
	for _, tt := range tests {
		t.Run(tt.et.String(), func(t *testing.T) {
			assert.Equal(t, tt.nVerts, tt.et.NumVertices())
			assert.Equal(t, tt.nEdges, tt.et.NumEdges())
			assert.Equal(t, tt.nFace, tt.et.NumFaces())
			assert.Len(t, tt.et.Edges(), tt.nEdges)
			assert.Len(t, tt.et.Faces(), tt.nFace)
		})
	}
}

func TestElementType_Origin1MatchesOrigin0(t *testing.T) {
	for _, et := range linearShapes {
		e0, e1 := et.Edges(), et.Edges1()
		require.Len(t, e1, len(e0))
		for i := range e0 {
			assert.Equal(t, [2]int{e0[i][0] + 1, e0[i][1] + 1}, e1[i], "%v edge %d", et, i)
		}
		f0, f1 := et.Faces(), et.Faces1()
		require.Len(t, f1, len(f0))
		for i := range f0 {
			for j := 0; j < 4; j++ {
				if f0[i][j] == NoVertex {
					assert.Equal(t, 0, f1[i][j])
				} else {
					assert.Equal(t, f0[i][j]+1, f1[i][j])
				}
			}
		}
	}
}

func TestElementType_TetEdgesApexFirst(t *testing.T) {
	edges := Tet.Edges()
	for i := 0; i < 3; i++ {
		assert.Equal(t, 3, edges[i][0], "edge %d should start at the apex", i)
	}
}

// Every edge of every reference face must be a reference edge of the shape,
// and every reference edge must lie on some face.
func TestElementType_FaceEdgesAreShapeEdges(t *testing.T) {
	for _, et := range []ElementType{Triangle, Quad, Tet, Pyramid, Prism, Hex} {
		t.Run(et.String(), func(t *testing.T) {
			edgeSet := make(map[[2]int]bool)
			for _, e := range et.Edges() {
				a, b := e[0], e[1]
				if a > b {
					a, b = b, a
				}
				edgeSet[[2]int{a, b}] = false
			}
			for fi, f := range et.Faces() {
				n := 4
				if f[3] == NoVertex {
					n = 3
				}
				for k := 0; k < n; k++ {
					a, b := f[k], f[(k+1)%n]
					if a > b {
						a, b = b, a
					}
					_, ok := edgeSet[[2]int{a, b}]
					assert.True(t, ok, "face %d edge {%d,%d} is not a shape edge", fi, a, b)
					edgeSet[[2]int{a, b}] = true
				}
			}
			for e, used := range edgeSet {
				assert.True(t, used, "edge %v lies on no face", e)
			}
		})
	}
}

func TestElementType_FaceType(t *testing.T) {
	assert.Equal(t, Triangle, Prism.FaceType(0))
	assert.Equal(t, Quad, Prism.FaceType(2))
	assert.Equal(t, Quad, Pyramid.FaceType(4))
	assert.Equal(t, Triangle, Tet10.FaceType(3))
	assert.Equal(t, Quad, Hex20.FaceType(5))
}

func TestElementType_UnknownPanics(t *testing.T) {
	assert.Panics(t, func() { Unknown.NumEdges() })
	assert.Panics(t, func() { Point.Faces() })
	assert.Panics(t, func() { ElementType(99).NumVertices() })
	assert.False(t, Point.IsValid())
	assert.True(t, Hex20.IsValid())
	assert.Equal(t, "Invalid", ElementType(99).String())
}

func TestElementType_NumNodes(t *testing.T) {
	assert.Equal(t, 10, Tet10.GetNumNodes())
	assert.Equal(t, 4, Tet.GetNumNodes())
	assert.Equal(t, 20, Hex20.GetNumNodes())
	assert.Equal(t, 1, Point.GetNumNodes())
	assert.Equal(t, 3, Tet.GetDimension())
	assert.Equal(t, 2, Quad9.GetDimension())
}

func TestElementType_CornerVertices(t *testing.T) {
	nodes := []int{7, 3, 9, 4, 10, 11, 12, 13, 14, 15}
	corners := Tet10.CornerVertices(nodes)
	assert.Equal(t, []int{7, 3, 9, 4}, corners)
	// Appending never reaches into the higher order nodes
	_ = append(corners, -1)
	assert.Equal(t, 10, nodes[4])
	assert.Equal(t, []int{5, 6, 7}, Triangle6.CornerVertices([]int{5, 6, 7, 1, 2, 3}))
	assert.Equal(t, []int{0, 1}, Line3.CornerVertices([]int{0, 1, 2}))
}
