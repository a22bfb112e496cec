// Package semantic provides per-file embeddings and cosine-similarity
// search over a workspace.
package semantic

import (
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"aide/internal/embedding"
	"aide/internal/logging"
	"aide/internal/paths"
)

// Result is a single semantic search hit.
type Result struct {
	Path  string  `json:"path"`
	Score float64 `json:"score"` // cosine similarity in [-1,1]
}

// Options configures an Index.
type Options struct {
	Walk    paths.WalkOptions
	Workers int // concurrent embedding workers during Build; min 1
}

// Index holds one embedding per indexed file. Build replaces the whole
// embedding set atomically, so searches never observe a partial rebuild.
type Index struct {
	root   string
	model  embedding.Model
	opts   Options
	logger *logging.Logger

	mu         sync.RWMutex
	embeddings map[string][]float32
	builtAt    time.Time
}

// NewIndex creates a semantic index for the given workspace root.
func NewIndex(root string, model embedding.Model, opts Options, logger *logging.Logger) *Index {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	return &Index{
		root:       root,
		model:      model,
		opts:       opts,
		logger:     logger,
		embeddings: make(map[string][]float32),
	}
}

// Build walks all readable text files under the workspace root, computes
// one embedding per file and swaps the finished set in. Returns the number
// of indexed files. Per-file embedding runs on a bounded worker pool; the
// shared index is only touched once every unit has completed.
func (ix *Index) Build() int {
	files := paths.ListTextFiles(ix.root, ix.opts.Walk)

	type unit struct {
		path string
		vec  []float32
	}

	jobs := make(chan string)
	units := make(chan unit)

	var wg sync.WaitGroup
	for w := 0; w < ix.opts.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for rel := range jobs {
				data, err := os.ReadFile(filepath.Join(ix.root, filepath.FromSlash(rel)))
				if err != nil {
					if ix.logger != nil {
						ix.logger.Debug("Skipping unreadable file", map[string]interface{}{
							"path":  rel,
							"error": err.Error(),
						})
					}
					continue
				}
				units <- unit{path: rel, vec: ix.model.Embed(string(data))}
			}
		}()
	}

	go func() {
		for _, f := range files {
			jobs <- f
		}
		close(jobs)
		wg.Wait()
		close(units)
	}()

	// Merge into a fresh map; the live index is swapped only when the
	// build is complete.
	fresh := make(map[string][]float32, len(files))
	for u := range units {
		fresh[u.path] = u.vec
	}

	ix.mu.Lock()
	ix.embeddings = fresh
	ix.builtAt = time.Now()
	ix.mu.Unlock()

	if ix.logger != nil {
		ix.logger.Info("Semantic index built", map[string]interface{}{
			"files": len(fresh),
		})
	}
	return len(fresh)
}

// Search embeds the query with the index's model and returns the topK
// files by descending cosine similarity. Ties break by ascending path.
func (ix *Index) Search(query string, topK int) []Result {
	if topK <= 0 {
		return nil
	}
	qvec := ix.model.Embed(query)

	ix.mu.RLock()
	results := make([]Result, 0, len(ix.embeddings))
	for path, vec := range ix.embeddings {
		results = append(results, Result{
			Path:  path,
			Score: embedding.CosineSimilarity(qvec, vec),
		})
	}
	ix.mu.RUnlock()

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Path < results[j].Path
	})

	if len(results) > topK {
		results = results[:topK]
	}
	return results
}

// Len returns the number of indexed files.
func (ix *Index) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.embeddings)
}

// Embedding returns the stored vector for a path, if present.
func (ix *Index) Embedding(path string) ([]float32, bool) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	vec, ok := ix.embeddings[paths.Canonical(path)]
	return vec, ok
}
