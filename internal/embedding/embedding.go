// Package embedding provides deterministic text-to-vector mapping.
//
// The only in-tree model is a feature-hashing embedder: no network, no
// model weights, bit-identical output for identical input. That keeps
// semantic indexing rebuildable anywhere and makes vector equality a
// testable property.
package embedding

import (
	"hash/fnv"
	"math"
	"strings"
	"unicode"
)

// Model generates embeddings from text.
type Model interface {
	// Embed maps text to a unit-norm vector. Deterministic: identical
	// input always yields a bit-identical vector.
	Embed(text string) []float32

	// Name returns the model identifier recorded in index snapshots.
	Name() string

	// Dimensions returns the fixed vector length.
	Dimensions() int
}

// DefaultDimensions is the default vector length for the hash model.
const DefaultDimensions = 256

// HashModel is a feature-hashing embedder. Each token hashes into one of
// a fixed number of buckets with a deterministic sign; the accumulator is
// L2-normalized to a unit vector.
type HashModel struct {
	dims int
}

// NewHashModel creates a hash embedding model with the given vector
// length. Non-positive dims falls back to DefaultDimensions.
func NewHashModel(dims int) *HashModel {
	if dims <= 0 {
		dims = DefaultDimensions
	}
	return &HashModel{dims: dims}
}

// Name implements Model.
func (m *HashModel) Name() string { return "hash-v1" }

// Dimensions implements Model.
func (m *HashModel) Dimensions() int { return m.dims }

// Embed implements Model.
func (m *HashModel) Embed(text string) []float32 {
	vec := make([]float32, m.dims)

	for _, token := range Tokenize(text) {
		h := fnv.New64a()
		_, _ = h.Write([]byte(token))
		sum := h.Sum64()

		bucket := int(sum % uint64(m.dims))
		// One hash bit decides the sign so collisions partially cancel
		// instead of always reinforcing.
		if sum&(1<<63) != 0 {
			vec[bucket] -= 1
		} else {
			vec[bucket] += 1
		}
	}

	normalize(vec)
	return vec
}

// Tokenize splits text on whitespace and punctuation and lowercases the
// result. Underscores stay inside tokens so identifiers survive whole.
func Tokenize(text string) []string {
	var tokens []string
	var b strings.Builder

	flush := func() {
		if b.Len() > 0 {
			tokens = append(tokens, strings.ToLower(b.String()))
			b.Reset()
		}
	}

	for _, r := range text {
		if r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		} else {
			flush()
		}
	}
	flush()
	return tokens
}

// CosineSimilarity computes the cosine similarity between two vectors.
// Returns a value in [-1,1]; mismatched or empty vectors score 0.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	denom := math.Sqrt(normA) * math.Sqrt(normB)
	if denom == 0 {
		return 0
	}
	return dot / denom
}

func normalize(vec []float32) {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	if sum == 0 {
		return
	}
	norm := math.Sqrt(sum)
	for i := range vec {
		vec[i] = float32(float64(vec[i]) / norm)
	}
}
