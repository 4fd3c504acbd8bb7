package snapshot

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/meshtopo/mesh"
	"github.com/notargets/meshtopo/topology"
)

func buildSnapshot(t *testing.T, m *mesh.Mesh, opts ...topology.Option) *topology.Snapshot {
	t.Helper()
	topo := topology.New(m, opts...)
	require.NoError(t, topo.Update())
	return topo.Snapshot()
}

func mixedWithBoundary() *mesh.Mesh {
	m := mesh.GetStandardTestMeshes().MixedMesh
	m.AddBoundaryFaces(1)
	return m
}

func TestSnapshot_RoundTrip(t *testing.T) {
	s := buildSnapshot(t, mixedWithBoundary())
	for _, compress := range []bool{false, true} {
		data, err := Marshal(s, compress)
		require.NoError(t, err)
		assert.Equal(t, "MTOP", string(data[:4]))

		got, err := Unmarshal(data)
		require.NoError(t, err)
		assert.Equal(t, s, got, "compress=%v", compress)
	}
}

func TestSnapshot_RoundTripPartialBuild(t *testing.T) {
	s := buildSnapshot(t, mesh.NewTetBlock(1, 1, 1), topology.WithFaces(false))
	assert.Nil(t, s.FaceVertices)
	data, err := Marshal(s, true)
	require.NoError(t, err)
	got, err := Unmarshal(data)
	require.NoError(t, err)
	assert.Equal(t, s, got)
}

func TestSnapshot_File(t *testing.T) {
	s := buildSnapshot(t, mesh.NewHexBlock(3, 2, 2))
	path := filepath.Join(t.TempDir(), "block.mtop")
	require.NoError(t, WriteFile(path, s, true))
	got, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, s, got)

	_, err = ReadFile(filepath.Join(t.TempDir(), "missing.mtop"))
	assert.Error(t, err)
}

func TestSnapshot_RejectsBadInput(t *testing.T) {
	_, err := Unmarshal([]byte("nope"))
	assert.ErrorIs(t, err, ErrFormat)

	_, err = Unmarshal([]byte{'M', 'T', 'O', 'P', 9, 0})
	assert.ErrorContains(t, err, "version")

	_, err = Unmarshal([]byte{'M', 'T', 'O', 'P', version, 7})
	assert.ErrorContains(t, err, "codec")

	_, err = Unmarshal([]byte{'M', 'T', 'O', 'P', version, codecZstd, 1, 2, 3})
	assert.Error(t, err)
}

func TestDigest_Idempotence(t *testing.T) {
	m := mixedWithBoundary()
	topo := topology.New(m)
	require.NoError(t, topo.Update())
	d1, err := Digest(topo.Snapshot())
	require.NoError(t, err)

	// No-op update
	require.NoError(t, topo.Update())
	d2, err := Digest(topo.Snapshot())
	require.NoError(t, err)
	assert.Equal(t, d1, d2)

	// Rebuilding an unchanged mesh gives the same tables
	m.Touch()
	require.NoError(t, topo.Update())
	s := topo.Snapshot()
	s.Timestamp--
	d3, err := Digest(s)
	require.NoError(t, err)
	assert.Equal(t, d1, d3)

	// A separate build of an identical mesh also agrees
	d4, err := Digest(buildSnapshot(t, mixedWithBoundary()))
	require.NoError(t, err)
	assert.Equal(t, d1, d4)
	assert.Len(t, d4.String(), 64)

	// Reordering element connectivity changes the tables
	require.NoError(t, m.SetElementVertices(3, []int{5, 4, 11, 8}))
	require.NoError(t, topo.Update())
	d5, err := Digest(topo.Snapshot())
	require.NoError(t, err)
	assert.NotEqual(t, d1, d5)
}
