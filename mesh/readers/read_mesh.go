package readers

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/notargets/meshtopo/mesh"
	"github.com/notargets/meshtopo/utils"
)

// ReadMeshFile reads a mesh file based on extension
func ReadMeshFile(filename string) (*mesh.Mesh, error) {
	ext := strings.ToLower(filepath.Ext(filename))

	switch ext {
	case ".neu":
		return ReadGambitNeutral(filename)
	case ".msh":
		return ReadGmsh(filename)
	case ".su2":
		return ReadSU2(filename)
	default:
		return nil, fmt.Errorf("unsupported mesh format: %s", ext)
	}
}

func readFile(filename string, read func(r io.Reader) (*mesh.Mesh, error)) (*mesh.Mesh, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	msh, err := read(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(filename), err)
	}
	return msh, nil
}

func newScanner(r io.Reader) *bufio.Scanner {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)
	return scanner
}

// skipTo advances past the line equal to marker
func skipTo(scanner *bufio.Scanner, marker string) {
	for scanner.Scan() {
		if strings.TrimSpace(scanner.Text()) == marker {
			return
		}
	}
}

// entity is a file element with resolved vertex indices
type entity struct {
	etype utils.ElementType
	verts []int
	tag   int
	owner int
}

// addEntities files every entity by its own dimension: 3D shapes become
// volume elements, 2D shapes surface elements and lines segments. Points
// are dropped. Volume elements go first so surface owners can be checked.
func addEntities(msh *mesh.Mesh, entities []entity) error {
	sort.SliceStable(entities, func(i, j int) bool {
		return entities[i].etype.GetDimension() > entities[j].etype.GetDimension()
	})
	for i, e := range entities {
		var err error
		switch e.etype.GetDimension() {
		case 3:
			_, err = msh.AddElement(e.etype, e.verts, e.tag)
		case 2:
			_, err = msh.AddSurfaceElement(e.etype, e.verts, e.owner, e.tag)
		case 1:
			if len(e.verts) < 2 {
				err = fmt.Errorf("line with %d nodes", len(e.verts))
				break
			}
			_, err = msh.AddSegment(e.verts[0], e.verts[1], e.tag)
		}
		if err != nil {
			return fmt.Errorf("entity %d (%v): %w", i, e.etype, err)
		}
	}
	return nil
}
