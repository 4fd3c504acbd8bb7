package utils

import (
	"fmt"
)

type Index2D struct {
	RI, CI Index
	Len    int
}

func NewIndex2D(RI, CI Index) (I2 Index2D, err error) {
	if len(RI) != len(CI) {
		err = fmt.Errorf("lengths of row and column indices must be the same: nr, nc = %v, %v", len(RI), len(CI))
		return
	}
	return Index2D{
		RI:  RI,
		CI:  CI,
		Len: len(RI),
	}, nil
}

type Index []int

func NewRange(rmin, rmax int) (r Index) {
	var (
		size = rmax - rmin + 1 // INCLUSIVE RANGE
	)
	if size < 0 {
		size = 0
	}
	r = make(Index, size)
	for i := range r {
		r[i] = i + rmin
	}
	return
}

func (I Index) Add(val int) (r Index) {
	r = make(Index, len(I))
	for i, ival := range I {
		r[i] = val + ival
	}
	return r
}

// IntersectSorted returns the values present in both I and J, both of which
// must be ascending.
func (I Index) IntersectSorted(J Index) (r Index) {
	var i, j int
	for i < len(I) && j < len(J) {
		switch {
		case I[i] < J[j]:
			i++
		case I[i] > J[j]:
			j++
		default:
			r = append(r, I[i])
			i++
			j++
		}
	}
	return
}
