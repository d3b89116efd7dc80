// Package codec implements the fixed-point packed binary layout the
// downstream transient heat solver reads: every float is pre-scaled by
// F = 65535 and truncated to an unsigned 16-bit integer, big-endian, no
// padding. Grounded on fem.fileio.go's paired GetEncoder/GetDecoder and
// SaveSol/ReadSol symmetry, adapted from gofem's self-describing gob/json
// encoders to a fixed binary layout (SPEC_FULL.md §4.6).
package codec

import (
	"encoding/binary"
	"io"
	"math"

	"github.com/dpedroso/radview/vf"
)

// F is the fixed-point scale factor, 2^16 - 1.
const F = 65535

// Pack16 scales x into [0, F] and truncates to uint16. Values above 1
// saturate at F; negative values are a documented precondition violation
// (the preprocessor never emits negative view factors) and wrap per
// standard unsigned conversion rather than being special-cased.
func Pack16(x float32) uint16 {
	scaled := float64(x) * F
	if scaled > F {
		return F
	}
	return uint16(scaled)
}

// Unpack16 is the inverse scale, recovering a value within 1/F of the
// original on [0, 1].
func Unpack16(v uint16) float32 {
	return float32(float64(v) / F)
}

// WriteViewFactors writes the three streams and the element-element matrix
// in the layout fixed by SPEC_FULL.md §4.6: IR stream, albedo stream, sun
// stream, then the matrix.
func WriteViewFactors(w io.Writer, ir, albedo, sun vf.Stream, elem *vf.Matrix) error {
	for _, stream := range []vf.Stream{ir, albedo, sun} {
		if err := writeStream(w, stream); err != nil {
			return err
		}
	}
	return writeMatrix(w, elem)
}

func writeStream(w io.Writer, stream vf.Stream) error {
	if err := binary.Write(w, binary.BigEndian, uint16(len(stream))); err != nil {
		return err
	}
	for _, sample := range stream {
		if err := binary.Write(w, binary.BigEndian, uint16(len(sample.Values))); err != nil {
			return err
		}
		bits := math.Float32bits(float32(sample.Timestamp))
		if err := binary.Write(w, binary.BigEndian, bits); err != nil {
			return err
		}
		for _, v := range sample.Values {
			if err := binary.Write(w, binary.BigEndian, Pack16(v)); err != nil {
				return err
			}
		}
	}
	return nil
}

func writeMatrix(w io.Writer, m *vf.Matrix) error {
	if err := binary.Write(w, binary.BigEndian, uint16(m.Rows)); err != nil {
		return err
	}
	if err := binary.Write(w, binary.BigEndian, uint16(m.Cols)); err != nil {
		return err
	}
	for i := 0; i < m.Rows; i++ {
		for j := 0; j < m.Cols; j++ {
			if err := binary.Write(w, binary.BigEndian, Pack16(float32(m.Data[i][j]))); err != nil {
				return err
			}
		}
	}
	return nil
}

// ReadViewFactors is the inverse of WriteViewFactors.
func ReadViewFactors(r io.Reader) (ir, albedo, sun vf.Stream, elem *vf.Matrix, err error) {
	if ir, err = readStream(r); err != nil {
		return
	}
	if albedo, err = readStream(r); err != nil {
		return
	}
	if sun, err = readStream(r); err != nil {
		return
	}
	elem, err = readMatrix(r)
	return
}

func readStream(r io.Reader) (vf.Stream, error) {
	var nTimestamps uint16
	if err := binary.Read(r, binary.BigEndian, &nTimestamps); err != nil {
		return nil, err
	}
	stream := make(vf.Stream, nTimestamps)
	for i := range stream {
		var nElements uint16
		if err := binary.Read(r, binary.BigEndian, &nElements); err != nil {
			return nil, err
		}
		var bits uint32
		if err := binary.Read(r, binary.BigEndian, &bits); err != nil {
			return nil, err
		}
		stream[i].Timestamp = float64(math.Float32frombits(bits))
		stream[i].Values = make([]float32, nElements)
		for j := range stream[i].Values {
			var packed uint16
			if err := binary.Read(r, binary.BigEndian, &packed); err != nil {
				return nil, err
			}
			stream[i].Values[j] = Unpack16(packed)
		}
	}
	return stream, nil
}

func readMatrix(r io.Reader) (*vf.Matrix, error) {
	var rows, cols uint16
	if err := binary.Read(r, binary.BigEndian, &rows); err != nil {
		return nil, err
	}
	if err := binary.Read(r, binary.BigEndian, &cols); err != nil {
		return nil, err
	}
	m := vf.NewMatrixShape(int(rows), int(cols))
	for i := 0; i < int(rows); i++ {
		for j := 0; j < int(cols); j++ {
			var packed uint16
			if err := binary.Read(r, binary.BigEndian, &packed); err != nil {
				return nil, err
			}
			m.Data[i][j] = float64(Unpack16(packed))
		}
	}
	return m, nil
}
