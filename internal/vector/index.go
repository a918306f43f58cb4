package vector

import "context"

// Point is one embedded chunk stored in the index.
type Point struct {
	ID       string
	Values   []float32
	Metadata map[string]string
}

// Match is a similarity search hit.
type Match struct {
	ID       string
	Score    float64
	Metadata map[string]string
}

// Index abstracts the vector-similarity store. Services depend on this
// interface so retrieval can be faked in tests or disabled outright.
type Index interface {
	Upsert(ctx context.Context, points []Point) error
	Query(ctx context.Context, values []float32, topK int) ([]Match, error)
}
