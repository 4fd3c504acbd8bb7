package topology

import (
	"errors"
	"fmt"
)

// ErrInconsistentTopology is wrapped by every ConsistencyError, so callers
// can test with errors.Is.
var ErrInconsistentTopology = errors.New("inconsistent mesh topology")

// ErrorKind classifies a topology consistency failure
type ErrorKind uint8

const (
	// FaceOrientation: a face's vertex set is known but its cycle is not a
	// rotation or reflection of the canonical cycle.
	FaceOrientation ErrorKind = iota
	// NonManifoldFace: more than two volume elements share one face.
	NonManifoldFace
	// OrphanSurfaceElement: a surface element matches no volume element face.
	OrphanSurfaceElement
	// OwnerMismatch: a surface element's owner hint is not adjacent to its face.
	OwnerMismatch
)

func (k ErrorKind) String() string {
	switch k {
	case FaceOrientation:
		return "unreachable face orientation"
	case NonManifoldFace:
		return "face shared by more than two volume elements"
	case OrphanSurfaceElement:
		return "surface element without volume neighbor"
	case OwnerMismatch:
		return "surface element owner is not adjacent"
	}
	return fmt.Sprintf("ErrorKind(%d)", uint8(k))
}

// EntityKind names the mesh entity an error refers to
type EntityKind uint8

const (
	VolumeElement EntityKind = iota
	SurfaceElementEntity
	SegmentEntity
)

func (e EntityKind) String() string {
	switch e {
	case VolumeElement:
		return "element"
	case SurfaceElementEntity:
		return "surface element"
	case SegmentEntity:
		return "segment"
	}
	return fmt.Sprintf("EntityKind(%d)", uint8(e))
}

// ConsistencyError reports a malformed mesh found during Update
type ConsistencyError struct {
	Kind     ErrorKind
	Entity   EntityKind
	Index    int   // Entity index
	Local    int   // Local face index within the entity, -1 if not applicable
	Vertices []int // Global vertices of the offending face
	Detail   string
}

func (e *ConsistencyError) Error() string {
	msg := fmt.Sprintf("%s: %s %d", e.Kind, e.Entity, e.Index)
	if e.Local >= 0 {
		msg += fmt.Sprintf(" local face %d", e.Local)
	}
	msg += fmt.Sprintf(" vertices %v", e.Vertices)
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

func (e *ConsistencyError) Unwrap() error { return ErrInconsistentTopology }
