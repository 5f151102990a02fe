// Package vector provides a flat L2 vector index with database-backed persistence.
package vector

import (
	"encoding/binary"
	"fmt"
	"math"
	"sort"
)

// FlatIndex is a brute-force L2 (Euclidean) vector index. Vectors are addressed
// by position; callers map positions to record IDs.
type FlatIndex struct {
	dimensions int
	vectors    [][]float32
}

// FlatResult is a single search hit. Distance is squared-root L2 distance;
// smaller means more similar.
type FlatResult struct {
	Position int
	Distance float64
}

// NewFlatIndex creates an empty flat index with the given dimension.
func NewFlatIndex(dimensions int) (*FlatIndex, error) {
	if dimensions <= 0 {
		return nil, fmt.Errorf("dimensions must be positive")
	}
	return &FlatIndex{
		dimensions: dimensions,
		vectors:    make([][]float32, 0),
	}, nil
}

// Add appends vectors to the index. Positions are assigned in append order.
func (f *FlatIndex) Add(vectors [][]float32) error {
	for _, vec := range vectors {
		if len(vec) != f.dimensions {
			return fmt.Errorf("vector dimension mismatch: got %d, expected %d", len(vec), f.dimensions)
		}
		cp := make([]float32, f.dimensions)
		copy(cp, vec)
		f.vectors = append(f.vectors, cp)
	}
	return nil
}

// Search returns the k nearest vectors by L2 distance, ascending. If k exceeds
// the index size, all vectors are returned.
func (f *FlatIndex) Search(query []float32, k int) ([]FlatResult, error) {
	if len(query) != f.dimensions {
		return nil, fmt.Errorf("query dimension mismatch: got %d, expected %d", len(query), f.dimensions)
	}
	if k <= 0 || len(f.vectors) == 0 {
		return nil, nil
	}
	results := make([]FlatResult, len(f.vectors))
	for i, vec := range f.vectors {
		var sum float64
		for j := 0; j < f.dimensions; j++ {
			d := float64(query[j] - vec[j])
			sum += d * d
		}
		results[i] = FlatResult{Position: i, Distance: math.Sqrt(sum)}
	}
	sort.Slice(results, func(i, j int) bool {
		if results[i].Distance != results[j].Distance {
			return results[i].Distance < results[j].Distance
		}
		return results[i].Position < results[j].Position
	})
	if k > len(results) {
		k = len(results)
	}
	return results[:k], nil
}

// Dimensions returns the vector dimension.
func (f *FlatIndex) Dimensions() int {
	return f.dimensions
}

// Size returns the number of indexed vectors.
func (f *FlatIndex) Size() int {
	return len(f.vectors)
}

// Serialize encodes the index as dimensions (4), count (4), then count*dimensions
// float32 values, all little-endian.
func (f *FlatIndex) Serialize() []byte {
	out := make([]byte, 8+len(f.vectors)*f.dimensions*4)
	binary.LittleEndian.PutUint32(out[0:4], uint32(f.dimensions))
	binary.LittleEndian.PutUint32(out[4:8], uint32(len(f.vectors)))
	off := 8
	for _, vec := range f.vectors {
		for _, v := range vec {
			binary.LittleEndian.PutUint32(out[off:off+4], math.Float32bits(v))
			off += 4
		}
	}
	return out
}

// DeserializeFlatIndex decodes a serialized index. A malformed or truncated blob
// returns an error so callers can fall back to a rebuild.
func DeserializeFlatIndex(data []byte) (*FlatIndex, error) {
	if len(data) < 8 {
		return nil, fmt.Errorf("index blob too short: %d bytes", len(data))
	}
	dims := int(binary.LittleEndian.Uint32(data[0:4]))
	count := int(binary.LittleEndian.Uint32(data[4:8]))
	if dims <= 0 {
		return nil, fmt.Errorf("invalid dimensions %d in index blob", dims)
	}
	want := 8 + count*dims*4
	if len(data) != want {
		return nil, fmt.Errorf("index blob size mismatch: got %d bytes, expected %d", len(data), want)
	}
	idx := &FlatIndex{
		dimensions: dims,
		vectors:    make([][]float32, 0, count),
	}
	off := 8
	for i := 0; i < count; i++ {
		vec := make([]float32, dims)
		for j := 0; j < dims; j++ {
			vec[j] = math.Float32frombits(binary.LittleEndian.Uint32(data[off : off+4]))
			off += 4
		}
		idx.vectors = append(idx.vectors, vec)
	}
	return idx, nil
}
