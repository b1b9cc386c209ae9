package history

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tonypeng1/moomoo/internal/aggregate"
	"github.com/tonypeng1/moomoo/internal/episode"
	"github.com/tonypeng1/moomoo/internal/recognize"
)

func sealedEpisode(alert bool) *episode.Episode {
	ep := &episode.Episode{
		ID:       uuid.New(),
		Started:  time.Now().Add(-time.Second),
		Finished: time.Now(),
		Alert:    alert,
	}
	if alert {
		ep.Hits = []recognize.Hit{{Term: "卖出", Raw: "信号 卖出", Kind: recognize.KindText, Variant: "luma"}}
		ep.Findings = []aggregate.Finding{{Term: "卖出", Confidence: 1.0}}
	}
	return ep
}

func TestAppendAndLatest(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "moomoo.db"))
	require.NoError(t, err)
	defer s.Close()

	first := sealedEpisode(false)
	second := sealedEpisode(true)
	second.Started = first.Started.Add(time.Second)
	require.NoError(t, s.Append(first))
	require.NoError(t, s.Append(second))

	got, err := s.Latest(10)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, second.ID.String(), got[0].ID, "newest first")
	assert.True(t, got[0].Alert)
	assert.Equal(t, []string{"卖出"}, got[0].Terms)
	assert.Equal(t, "信号 卖出", got[0].RawText)
	assert.False(t, got[1].Alert)
	assert.Empty(t, got[1].Terms)
}

func TestLatestLimit(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "moomoo.db"))
	require.NoError(t, err)
	defer s.Close()

	for i := 0; i < 5; i++ {
		require.NoError(t, s.Append(sealedEpisode(false)))
	}

	got, err := s.Latest(3)
	require.NoError(t, err)
	assert.Len(t, got, 3)
}

func TestOpenCreatesParentDirs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "deeper", "moomoo.db")
	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Append(sealedEpisode(false)))
	assert.FileExists(t, path)
}

func TestReopenKeepsRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "moomoo.db")

	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Append(sealedEpisode(true)))
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()

	got, err := s.Latest(10)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}
