package readers

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/notargets/meshtopo/mesh"
	"github.com/notargets/meshtopo/utils"
)

// ReadGmsh detects the Gmsh format version and reads the file with the
// matching reader
func ReadGmsh(filename string) (*mesh.Mesh, error) {
	version, err := gmshVersion(filename)
	if err != nil {
		return nil, err
	}

	switch {
	case strings.HasPrefix(version, "4."):
		return ReadGmsh4(filename)
	case strings.HasPrefix(version, "2."):
		return ReadGmsh22(filename)
	default:
		return nil, fmt.Errorf("%s: unsupported Gmsh format version: %s", filepath.Base(filename), version)
	}
}

// gmshVersion returns the version field of the $MeshFormat section
func gmshVersion(filename string) (string, error) {
	file, err := os.Open(filename)
	if err != nil {
		return "", err
	}
	defer file.Close()

	scanner := newScanner(file)
	for scanner.Scan() {
		if strings.TrimSpace(scanner.Text()) != "$MeshFormat" {
			continue
		}
		if scanner.Scan() {
			if parts := strings.Fields(scanner.Text()); len(parts) > 0 {
				return parts[0], nil
			}
		}
		break
	}
	if err = scanner.Err(); err != nil {
		return "", fmt.Errorf("%s: %w", filepath.Base(filename), err)
	}
	return "", fmt.Errorf("%s: could not find $MeshFormat section", filepath.Base(filename))
}

// gmshElementTypes maps Gmsh element type numbers to our ElementType; the
// numbering is shared by versions 2.2 and 4.1
var gmshElementTypes = map[int]utils.ElementType{
	1:  utils.Line,      // 2-node line
	2:  utils.Triangle,  // 3-node triangle
	3:  utils.Quad,      // 4-node quadrangle
	4:  utils.Tet,       // 4-node tetrahedron
	5:  utils.Hex,       // 8-node hexahedron
	6:  utils.Prism,     // 6-node prism
	7:  utils.Pyramid,   // 5-node pyramid
	8:  utils.Line3,     // 3-node line
	9:  utils.Triangle6, // 6-node triangle
	10: utils.Quad9,     // 9-node quadrangle
	11: utils.Tet10,     // 10-node tetrahedron
	15: utils.Point,     // 1-node point
	16: utils.Quad8,     // 8-node quadrangle
	17: utils.Hex20,     // 20-node hexahedron
	18: utils.Prism15,   // 15-node prism
	19: utils.Pyramid13, // 13-node pyramid
}
