// Package vf holds the in-memory view-factor data products the kernels
// populate and the codec serializes: the Earth/Sun sample streams and the
// dense element-element matrix.
package vf

import "github.com/cpmech/gosl/la"

// Sample is one (vector, timestamp) pair in a time-indexed view-factor
// stream.
type Sample struct {
	Timestamp float64
	Values    []float32
}

// Stream is a time-indexed vector stream: one Sample per orbit division for
// the Earth-IR/albedo streams, exactly one for the Sun stream.
type Stream []Sample

// Matrix is the dense N×N element-element view-factor matrix, backed by
// gosl/la's dense matrix allocator the way gofem's element routines
// allocate their stiffness/compliance matrices.
type Matrix struct {
	Rows, Cols int
	Data       [][]float64
}

// NewMatrix allocates an n×n zero matrix.
func NewMatrix(n int) *Matrix {
	return &Matrix{Rows: n, Cols: n, Data: la.MatAlloc(n, n)}
}

// NewMatrixShape allocates a rows×cols zero matrix.
func NewMatrixShape(rows, cols int) *Matrix {
	return &Matrix{Rows: rows, Cols: cols, Data: la.MatAlloc(rows, cols)}
}

// Row returns a mutable view of row i, the unit of work one worker owns at
// a time under the concurrency model in SPEC_FULL.md §5.
func (m *Matrix) Row(i int) []float64 { return m.Data[i] }
