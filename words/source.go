// Package words supplies the drawable word pool. The default source is a
// word list embedded at build time; sessions draw random candidates from it
// while excluding words already played.
package words

import (
	_ "embed"
	"math/rand/v2"
	"strings"
	"sync"
)

//go:embed words.txt
var embedded string

// Source hands out random words from a fixed pool. Safe for concurrent use
// by many sessions.
type Source struct {
	mu   sync.Mutex
	rng  *rand.Rand
	pool []string
}

// NewSource builds a source over the given pool. Blank lines and surrounding
// whitespace are stripped; duplicates are kept as-is, the pool is trusted.
func NewSource(pool []string, seed uint64) *Source {
	clean := make([]string, 0, len(pool))
	for _, w := range pool {
		w = strings.TrimSpace(w)
		if w != "" {
			clean = append(clean, w)
		}
	}
	return &Source{
		rng:  rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		pool: clean,
	}
}

// NewEmbeddedSource builds a source over the compiled-in word list.
func NewEmbeddedSource(seed uint64) *Source {
	return NewSource(strings.Split(embedded, "\n"), seed)
}

// RandomWords returns count distinct words, preferring ones outside the
// exclusion set. When the pool outside the exclusion set runs dry the
// exclusions are ignored for the remainder of the call rather than returning
// short.
func (s *Source) RandomWords(count int, excluding map[string]struct{}) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if count > len(s.pool) {
		count = len(s.pool)
	}

	candidates := make([]string, len(s.pool))
	copy(candidates, s.pool)
	s.rng.Shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})

	out := make([]string, 0, count)
	picked := make(map[string]struct{}, count)
	for _, w := range candidates {
		if len(out) == count {
			return out
		}
		if _, used := excluding[w]; used {
			continue
		}
		if _, dup := picked[w]; dup {
			continue
		}
		out = append(out, w)
		picked[w] = struct{}{}
	}
	for _, w := range candidates {
		if len(out) == count {
			break
		}
		if _, dup := picked[w]; dup {
			continue
		}
		out = append(out, w)
		picked[w] = struct{}{}
	}
	return out
}

// Len reports the pool size.
func (s *Source) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pool)
}
