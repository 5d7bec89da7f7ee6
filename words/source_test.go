package words

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSource_RandomWordsAreDistinct(t *testing.T) {
	t.Parallel()
	s := NewSource([]string{"apple", "banana", "cactus", "dragon", "igloo"}, 7)

	got := s.RandomWords(3, nil)
	require.Len(t, got, 3)
	seen := map[string]struct{}{}
	for _, w := range got {
		_, dup := seen[w]
		assert.False(t, dup, "duplicate word %q", w)
		seen[w] = struct{}{}
	}
}

func TestSource_ExclusionRespected(t *testing.T) {
	t.Parallel()
	s := NewSource([]string{"apple", "banana", "cactus", "dragon", "igloo"}, 7)

	excluding := map[string]struct{}{
		"apple":  {},
		"banana": {},
	}
	got := s.RandomWords(3, excluding)
	require.Len(t, got, 3)
	assert.NotContains(t, got, "apple")
	assert.NotContains(t, got, "banana")
}

func TestSource_StarvationFallsBackToUsedWords(t *testing.T) {
	t.Parallel()
	s := NewSource([]string{"apple", "banana", "cactus"}, 7)

	excluding := map[string]struct{}{
		"apple":  {},
		"banana": {},
	}
	// only one fresh word remains, the call still returns three
	got := s.RandomWords(3, excluding)
	require.Len(t, got, 3)
	assert.Contains(t, got, "cactus")
}

func TestSource_CountClampedToPool(t *testing.T) {
	t.Parallel()
	s := NewSource([]string{"apple", "banana"}, 7)

	got := s.RandomWords(5, nil)
	assert.Len(t, got, 2)
}

func TestSource_SameSeedSameSequence(t *testing.T) {
	t.Parallel()
	pool := []string{"apple", "banana", "cactus", "dragon", "igloo", "violin"}
	a := NewSource(pool, 42)
	b := NewSource(pool, 42)

	assert.Equal(t, a.RandomWords(3, nil), b.RandomWords(3, nil))
	assert.Equal(t, a.RandomWords(3, nil), b.RandomWords(3, nil))
}

func TestSource_EmbeddedListLoads(t *testing.T) {
	t.Parallel()
	s := NewEmbeddedSource(1)
	assert.Greater(t, s.Len(), 100)

	got := s.RandomWords(3, nil)
	assert.Len(t, got, 3)
}
