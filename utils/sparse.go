package utils

import (
	"github.com/james-bowman/sparse"
	"gonum.org/v1/gonum/mat"
)

// ToCSR exposes the table as an nRows x nCols sparse pattern matrix with a 1
// at (row, value) for every entry. Row entries must be ascending and unique,
// which holds for incidence tables filled in entity order.
func (T Table) ToCSR(nCols int) *sparse.CSR {
	var (
		nr   = T.NumRows()
		ia   = make([]int, len(T.Offsets))
		ja   = make([]int, len(T.Data))
		data = make([]float64, len(T.Data))
	)
	copy(ia, T.Offsets)
	copy(ja, T.Data)
	for i := range data {
		data[i] = 1
	}
	if nr == 0 {
		ia = []int{0}
	}
	return sparse.NewCSR(nr, nCols, ia, ja, data)
}

// GramCSR returns Aᵀ·A, which for a pattern matrix counts shared rows between
// every pair of columns.
func GramCSR(A *sparse.CSR) *sparse.CSR {
	_, nc := A.Dims()
	At := A.T().(*sparse.CSC).ToCSR()
	G := sparse.NewCSR(nc, nc, nil, nil, nil)
	G.Mul(At, A)
	return G
}

// MatFindNonZero returns the row and column of every non zero of a sparse
// matrix, excluding the diagonal when offDiagonal is set.
func MatFindNonZero(M mat.Matrix, offDiagonal bool) (I Index2D) {
	var ri, ci Index
	visit := func(i, j int, v float64) {
		if v == 0 || (offDiagonal && i == j) {
			return
		}
		ri = append(ri, i)
		ci = append(ci, j)
	}
	switch m := M.(type) {
	case *sparse.CSR:
		m.DoNonZero(visit)
	default:
		nr, nc := M.Dims()
		for i := 0; i < nr; i++ {
			for j := 0; j < nc; j++ {
				visit(i, j, M.At(i, j))
			}
		}
	}
	I, _ = NewIndex2D(ri, ci)
	return
}
