package sitetrans

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"
)

// DefaultLookupWorkers is the lookup parallelism used with WithLookupWorkers
// when n is not positive.
const DefaultLookupWorkers = 8

// WithLookupWorkers resolves cache hits with up to n concurrent Get calls.
// Useful when the cache is remote (Redis) and each lookup is a round trip.
func WithLookupWorkers(n int) TranslatorOption {
	return func(t *Translator) {
		if n <= 0 {
			n = DefaultLookupWorkers
		}
		t.lookupWorkers = n
	}
}

// lookupCache returns the cached translations (by hash) and the unique
// misses in document order.
func (t *Translator) lookupCache(ctx context.Context, nodes []TextNode) (map[string]string, []TextNode) {
	if t.cache == nil || len(nodes) == 0 {
		return make(map[string]string), uniqueNodes(nodes)
	}
	if t.lookupWorkers > 1 {
		return ParallelCacheLookup(ctx, t.cache, nodes, t.targetLang, t.lookupWorkers)
	}

	hits := make(map[string]string)
	var misses []TextNode
	for _, node := range uniqueNodes(nodes) {
		if cached, ok := t.cache.Get(CacheKey(node.Hash, t.targetLang)); ok {
			hits[node.Hash] = cached
			continue
		}
		misses = append(misses, node)
	}
	return hits, misses
}

// ParallelCacheLookup performs cache lookups with at most workers in flight.
// It returns hits keyed by text hash and the unique misses in the order they
// first appear in nodes. A cancelled ctx turns the remaining lookups into
// misses.
func ParallelCacheLookup(ctx context.Context, cache TranslationCache, nodes []TextNode, targetLang string, workers int) (map[string]string, []TextNode) {
	unique := uniqueNodes(nodes)
	if cache == nil || len(unique) == 0 {
		return make(map[string]string), unique
	}

	var (
		mu   sync.Mutex
		hits = make(map[string]string, len(unique))
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, node := range unique {
		node := node
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}
			if val, ok := cache.Get(CacheKey(node.Hash, targetLang)); ok {
				mu.Lock()
				hits[node.Hash] = val
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	var misses []TextNode
	for _, node := range unique {
		if _, ok := hits[node.Hash]; !ok {
			misses = append(misses, node)
		}
	}
	return hits, misses
}

func uniqueNodes(nodes []TextNode) []TextNode {
	seen := make(map[string]bool, len(nodes))
	out := make([]TextNode, 0, len(nodes))
	for _, node := range nodes {
		if seen[node.Hash] {
			continue
		}
		seen[node.Hash] = true
		out = append(out, node)
	}
	return out
}
