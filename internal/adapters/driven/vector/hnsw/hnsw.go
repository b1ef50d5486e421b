package hnsw

import (
	"container/heap"
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"

	"github.com/YusuphaJuwara/chatbotgermano/internal/core/ports/driven"
)

// Ensure the adapter implements the interfaces.
var (
	_ driven.IndexBuilder = (*Builder)(nil)
	_ driven.VectorIndex  = (*Index)(nil)
)

// Default configuration values
const (
	DefaultEfConstruction = 512
	DefaultMaxConnections = 64
	DefaultEfSearch       = 128
)

// Config holds HNSW graph parameters.
type Config struct {
	// EfConstruction is the candidate list size during graph build.
	// Larger values give better recall at slower build times.
	EfConstruction int

	// MaxConnections is the number of links per node (M). Level 0
	// allows twice as many.
	MaxConnections int

	// EfSearch is the candidate list size during search. It is raised
	// to k when a search asks for more results.
	EfSearch int

	// Seed fixes level assignment for reproducible graphs. Zero means
	// a fixed default seed.
	Seed int64
}

func (c Config) withDefaults() Config {
	if c.EfConstruction <= 0 {
		c.EfConstruction = DefaultEfConstruction
	}
	if c.MaxConnections <= 0 {
		c.MaxConnections = DefaultMaxConnections
	}
	if c.EfSearch <= 0 {
		c.EfSearch = DefaultEfSearch
	}
	if c.Seed == 0 {
		c.Seed = 42
	}
	return c
}

// Builder constructs immutable HNSW indexes.
type Builder struct {
	cfg Config
}

// NewBuilder creates a builder with the given graph parameters.
// Zero values fall back to the defaults.
func NewBuilder(cfg Config) *Builder {
	return &Builder{cfg: cfg.withDefaults()}
}

// Build inserts all vectors into a fresh graph. Positions in the
// returned index match positions in the input slice.
func (b *Builder) Build(ctx context.Context, vectors [][]float32) (driven.VectorIndex, error) {
	if len(vectors) == 0 {
		return nil, errors.New("hnsw: no vectors to index")
	}

	dims := len(vectors[0])
	if dims == 0 {
		return nil, errors.New("hnsw: zero-dimensional vectors")
	}
	for i, v := range vectors {
		if len(v) != dims {
			return nil, fmt.Errorf("hnsw: vector %d has %d dimensions, want %d", i, len(v), dims)
		}
	}

	idx := &Index{
		cfg:       b.cfg,
		dims:      dims,
		vectors:   vectors,
		nodes:     make([]node, 0, len(vectors)),
		entry:     -1,
		levelMult: 1.0 / math.Log(float64(b.cfg.MaxConnections)),
		rng:       rand.New(rand.NewSource(b.cfg.Seed)),
	}

	for i := range vectors {
		if i%256 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		idx.insert(int32(i))
	}
	idx.rng = nil // graph is frozen
	return idx, nil
}

// node holds the adjacency lists of one vector, one list per level
// from 0 up to the node's top level.
type node struct {
	links [][]int32
}

func (n *node) level() int { return len(n.links) - 1 }

// Index is a built HNSW graph. Read-only after Build.
type Index struct {
	cfg      Config
	dims     int
	vectors  [][]float32
	nodes    []node
	entry    int32
	maxLevel int

	levelMult float64
	rng       *rand.Rand
}

// Len returns the number of indexed vectors.
func (i *Index) Len() int {
	return len(i.vectors)
}

// Search returns the k nearest vectors by inner product, best first.
// k larger than the index size returns everything.
func (i *Index) Search(_ context.Context, query []float32, k int) ([]driven.VectorHit, error) {
	if len(query) != i.dims {
		return nil, fmt.Errorf("hnsw: query has %d dimensions, want %d", len(query), i.dims)
	}
	if k <= 0 {
		return nil, nil
	}
	if k > len(i.vectors) {
		k = len(i.vectors)
	}

	ep := i.entry
	for level := i.maxLevel; level > 0; level-- {
		ep = i.greedyClosest(query, ep, level)
	}

	ef := i.cfg.EfSearch
	if ef < k {
		ef = k
	}
	best := i.searchLayer(query, ep, ef, 0)

	// The result heap pops worst first; fill back to front.
	for len(best) > k {
		heap.Pop(&best)
	}
	hits := make([]driven.VectorHit, len(best))
	for pos := len(best) - 1; pos >= 0; pos-- {
		entry := heap.Pop(&best).(scored)
		hits[pos] = driven.VectorHit{Position: int(entry.id), Score: entry.score}
	}
	return hits, nil
}

func (i *Index) insert(id int32) {
	level := i.randomLevel()
	n := node{links: make([][]int32, level+1)}

	if i.entry < 0 {
		i.nodes = append(i.nodes, n)
		i.entry = id
		i.maxLevel = level
		return
	}

	vec := i.vectors[id]
	i.nodes = append(i.nodes, n)

	ep := i.entry
	for l := i.maxLevel; l > level; l-- {
		ep = i.greedyClosest(vec, ep, l)
	}

	top := level
	if top > i.maxLevel {
		top = i.maxLevel
	}
	for l := top; l >= 0; l-- {
		results := i.searchLayer(vec, ep, i.cfg.EfConstruction, l)

		neighbors := selectBest(results, i.cfg.MaxConnections)
		i.nodes[id].links[l] = neighbors

		maxLinks := i.cfg.MaxConnections
		if l == 0 {
			maxLinks = 2 * i.cfg.MaxConnections
		}
		for _, nb := range neighbors {
			i.link(nb, id, l, maxLinks)
		}

		if len(neighbors) > 0 {
			ep = neighbors[0]
		}
	}

	if level > i.maxLevel {
		i.entry = id
		i.maxLevel = level
	}
}

func (i *Index) randomLevel() int {
	r := i.rng.Float64()
	if r < 1e-12 {
		r = 1e-12
	}
	return int(math.Floor(-math.Log(r) * i.levelMult))
}

// link adds target to source's level-l adjacency, pruning to maxLinks
// by keeping the closest neighbours.
func (i *Index) link(source, target int32, l, maxLinks int) {
	links := append(i.nodes[source].links[l], target)
	if len(links) > maxLinks {
		srcVec := i.vectors[source]
		candidates := make(minHeap, 0, len(links))
		for _, id := range links {
			heap.Push(&candidates, scored{id: id, score: dot(srcVec, i.vectors[id])})
		}
		for len(candidates) > maxLinks {
			heap.Pop(&candidates)
		}
		links = links[:0]
		for _, c := range candidates {
			links = append(links, c.id)
		}
	}
	i.nodes[source].links[l] = links
}

// greedyClosest walks level l towards the query, returning the local
// best node.
func (i *Index) greedyClosest(query []float32, ep int32, l int) int32 {
	best := ep
	bestScore := dot(query, i.vectors[ep])
	for {
		improved := false
		for _, nb := range i.nodes[best].links[l] {
			if score := dot(query, i.vectors[nb]); score > bestScore {
				best = nb
				bestScore = score
				improved = true
			}
		}
		if !improved {
			return best
		}
	}
}

// searchLayer runs the beam search at level l. The returned min-heap
// holds up to ef best candidates, worst on top.
func (i *Index) searchLayer(query []float32, ep int32, ef, l int) minHeap {
	visited := make(map[int32]struct{}, ef*4)
	visited[ep] = struct{}{}

	epScore := dot(query, i.vectors[ep])
	candidates := maxHeap{{id: ep, score: epScore}}
	results := minHeap{{id: ep, score: epScore}}

	for len(candidates) > 0 {
		current := heap.Pop(&candidates).(scored)
		if current.score < results[0].score && len(results) >= ef {
			break
		}

		for _, nb := range i.nodes[current.id].links[l] {
			if _, ok := visited[nb]; ok {
				continue
			}
			visited[nb] = struct{}{}

			score := dot(query, i.vectors[nb])
			if len(results) < ef || score > results[0].score {
				heap.Push(&candidates, scored{id: nb, score: score})
				heap.Push(&results, scored{id: nb, score: score})
				if len(results) > ef {
					heap.Pop(&results)
				}
			}
		}
	}
	return results
}

// selectBest takes the top m candidates from the result heap, closest
// first.
func selectBest(results minHeap, m int) []int32 {
	for len(results) > m {
		heap.Pop(&results)
	}
	out := make([]int32, len(results))
	for pos := len(results) - 1; pos >= 0; pos-- {
		out[pos] = heap.Pop(&results).(scored).id
	}
	return out
}

func dot(a, b []float32) float32 {
	var sum float32
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

// scored pairs a vector position with its inner-product score.
type scored struct {
	id    int32
	score float32
}

// minHeap pops the lowest score first.
type minHeap []scored

func (h minHeap) Len() int            { return len(h) }
func (h minHeap) Less(a, b int) bool  { return h[a].score < h[b].score }
func (h minHeap) Swap(a, b int)       { h[a], h[b] = h[b], h[a] }
func (h *minHeap) Push(x any) { *h = append(*h, x.(scored)) }
func (h *minHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// maxHeap pops the highest score first.
type maxHeap []scored

func (h maxHeap) Len() int            { return len(h) }
func (h maxHeap) Less(a, b int) bool  { return h[a].score > h[b].score }
func (h maxHeap) Swap(a, b int)       { h[a], h[b] = h[b], h[a] }
func (h *maxHeap) Push(x any) { *h = append(*h, x.(scored)) }
func (h *maxHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}
