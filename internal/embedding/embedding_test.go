package embedding

import (
	"math"
	"testing"
)

func TestEmbedDeterministic(t *testing.T) {
	m := NewHashModel(128)

	a := m.Embed("the quick brown fox")
	b := m.Embed("the quick brown fox")

	if len(a) != 128 || len(b) != 128 {
		t.Fatalf("vector length = %d/%d, want 128", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("vectors differ at %d: %v vs %v", i, a[i], b[i])
		}
	}
}

func TestEmbedUnitNorm(t *testing.T) {
	m := NewHashModel(DefaultDimensions)
	vec := m.Embed("func main() { fmt.Println(\"hello\") }")

	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	if math.Abs(sum-1) > 1e-6 {
		t.Errorf("sum of squares = %g, want 1 within 1e-6", sum)
	}
}

func TestEmbedEmptyTextIsZeroVector(t *testing.T) {
	m := NewHashModel(32)
	vec := m.Embed("   \n\t ")
	for i, v := range vec {
		if v != 0 {
			t.Fatalf("vec[%d] = %v, want 0 for empty text", i, v)
		}
	}
}

func TestSimilarTextsScoreHigher(t *testing.T) {
	m := NewHashModel(DefaultDimensions)

	q := m.Embed("alpha gamma")
	near := m.Embed("alpha beta gamma")
	far := m.Embed("unrelated content")

	if CosineSimilarity(q, near) <= CosineSimilarity(q, far) {
		t.Errorf("overlapping text should score higher: near=%g far=%g",
			CosineSimilarity(q, near), CosineSimilarity(q, far))
	}
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		text string
		want []string
	}{
		{"Hello, World!", []string{"hello", "world"}},
		{"foo_bar baz-qux", []string{"foo_bar", "baz", "qux"}},
		{"a.b(c)", []string{"a", "b", "c"}},
		{"", nil},
	}
	for _, tt := range tests {
		got := Tokenize(tt.text)
		if len(got) != len(tt.want) {
			t.Errorf("Tokenize(%q) = %v, want %v", tt.text, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("Tokenize(%q)[%d] = %q, want %q", tt.text, i, got[i], tt.want[i])
			}
		}
	}
}

func TestCosineSimilarityBounds(t *testing.T) {
	a := []float32{1, 0}
	b := []float32{0, 1}
	c := []float32{-1, 0}

	if got := CosineSimilarity(a, a); math.Abs(got-1) > 1e-9 {
		t.Errorf("cos(a,a) = %g, want 1", got)
	}
	if got := CosineSimilarity(a, b); math.Abs(got) > 1e-9 {
		t.Errorf("cos(a,b) = %g, want 0", got)
	}
	if got := CosineSimilarity(a, c); math.Abs(got+1) > 1e-9 {
		t.Errorf("cos(a,c) = %g, want -1", got)
	}
	if got := CosineSimilarity(a, []float32{1}); got != 0 {
		t.Errorf("mismatched lengths should score 0, got %g", got)
	}
}
