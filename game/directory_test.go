package game

import (
	"bytes"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDirectory(t *testing.T) *Directory {
	t.Helper()
	wordsSrc := &stubWordSource{batches: [][]string{{"apple", "banana", "cactus"}}}
	return NewDirectory(testConfig(), wordsSrc, newRecordingPubSub(), newStubStore(), newManualTickerFactory(), discardLogger())
}

func TestDirectory_CreateAndGet(t *testing.T) {
	t.Parallel()
	d := newTestDirectory(t)

	s := d.Create(testConfig())
	require.NotEmpty(t, s.ID)

	got, err := d.Get(s.ID)
	require.NoError(t, err)
	assert.Same(t, s, got)

	_, err = d.Get("00000000-0000-0000-0000-000000000000")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestDirectory_GetOrCreate(t *testing.T) {
	t.Parallel()
	d := newTestDirectory(t)

	s := d.GetOrCreate("room-1")
	require.NotNil(t, s)
	assert.Equal(t, "room-1", s.ID)
	assert.Same(t, s, d.GetOrCreate("room-1"))
	assert.Equal(t, 1, d.Count())
}

func TestDirectory_GetOrCreateReplacesTornDownSession(t *testing.T) {
	t.Parallel()
	d := newTestDirectory(t)

	s := d.GetOrCreate("room-1")
	_, err := s.Join("p1", "ana")
	require.NoError(t, err)
	require.NoError(t, s.Leave("p1"))

	require.Eventually(t, s.Closed, time.Second, 10*time.Millisecond)

	fresh := d.GetOrCreate("room-1")
	assert.NotSame(t, s, fresh)
	assert.False(t, fresh.Closed())
	_, err = fresh.Join("p2", "ben")
	assert.NoError(t, err)
}

func TestDirectory_ListDescribesSessions(t *testing.T) {
	t.Parallel()
	d := newTestDirectory(t)

	s1 := d.Create(testConfig())
	s2 := d.Create(testConfig())
	_, err := s1.Join("p1", "ana")
	require.NoError(t, err)

	snaps := d.List()
	require.Len(t, snaps, 2)

	byID := map[string]SessionSnapshot{}
	for _, snap := range snaps {
		byID[snap.ID] = snap
	}
	assert.Len(t, byID[s1.ID].Players, 1)
	assert.Empty(t, byID[s2.ID].Players)
	assert.Equal(t, "waiting", byID[s1.ID].Status)
}

func TestDirectory_EmptySessionRemovesItself(t *testing.T) {
	t.Parallel()
	d := newTestDirectory(t)

	s := d.Create(testConfig())
	_, err := s.Join("p1", "ana")
	require.NoError(t, err)
	require.Equal(t, 1, d.Count())

	require.NoError(t, s.Leave("p1"))

	assert.Eventually(t, func() bool {
		return d.Count() == 0
	}, time.Second, 10*time.Millisecond)
}

func TestDirectory_RemoveKeepsLiveReusedId(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	wordsSrc := &stubWordSource{batches: [][]string{{"apple", "banana", "cactus"}}}
	d := NewDirectory(testConfig(), wordsSrc, newRecordingPubSub(), newStubStore(), newManualTickerFactory(),
		slog.New(slog.NewTextHandler(&buf, nil)))

	s := d.GetOrCreate("room-1")

	// a removal racing a reuse of the same id leaves the live session alone
	d.remove("room-1")

	got, err := d.Get("room-1")
	require.NoError(t, err)
	assert.Same(t, s, got)
	assert.NotContains(t, buf.String(), "session removed")
}
