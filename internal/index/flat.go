package index

import (
	"fmt"
	"sort"
)

// Hit is one search result: the row ordinal and its inner-product score.
type Hit struct {
	Ordinal int
	Score   float64
}

// Flat is an exact inner-product index over unit-normalized rows.
type Flat struct {
	dim  int
	rows []float32
}

// NewFlat returns an empty index for vectors of dimension dim.
func NewFlat(dim int) (*Flat, error) {
	if dim <= 0 {
		return nil, fmt.Errorf("invalid dim: %d", dim)
	}
	return &Flat{dim: dim}, nil
}

// Dim returns the vector dimension.
func (f *Flat) Dim() int { return f.dim }

// Len returns the number of rows.
func (f *Flat) Len() int { return len(f.rows) / f.dim }

// Add appends vectors as new rows after normalizing them. Either every vector
// is added or none is.
func (f *Flat) Add(vectors [][]float32) error {
	for i, v := range vectors {
		if len(v) != f.dim {
			return fmt.Errorf("vector %d: %w: got %d want %d", i, ErrVectorLengthMismatch, len(v), f.dim)
		}
	}
	for _, v := range vectors {
		f.rows = append(f.rows, NormalizeL2(v)...)
	}
	return nil
}

// Row returns a copy of row i.
func (f *Flat) Row(i int) []float32 {
	out := make([]float32, f.dim)
	copy(out, f.rows[i*f.dim:(i+1)*f.dim])
	return out
}

// Search returns up to k rows with the highest inner product against the
// normalized query, best first. Equal scores keep insertion order.
func (f *Flat) Search(query []float32, k int) ([]Hit, error) {
	if len(query) != f.dim {
		return nil, fmt.Errorf("query: %w: got %d want %d", ErrVectorLengthMismatch, len(query), f.dim)
	}
	n := f.Len()
	if k <= 0 || n == 0 {
		return nil, nil
	}
	q := NormalizeL2(query)

	hits := make([]Hit, n)
	for i := 0; i < n; i++ {
		var dot float64
		row := f.rows[i*f.dim : (i+1)*f.dim]
		for j, x := range row {
			dot += float64(x) * float64(q[j])
		}
		hits[i] = Hit{Ordinal: i, Score: dot}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })

	if k < len(hits) {
		hits = hits[:k]
	}
	return hits, nil
}
