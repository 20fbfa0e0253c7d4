package domain

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarize(t *testing.T) {
	now := time.Date(2024, time.November, 1, 9, 0, 0, 0, time.UTC)
	SetClock(clockwork.NewFakeClockAt(now))
	defer SetClock(nil)

	results, _ := NewDataset(fixtureTable()).Summaries(LevelCity)
	summaries := Summarize(results)

	require.Len(t, summaries, len(results))
	for i, s := range summaries {
		assert.Equal(t, results[i], s.Result)
		assert.Equal(t, now, s.GeneratedAt)
	}
	assert.Equal(t, "city:Las Vegas, NV", summaries[0].MessageKey())
}

func TestSummary_MessageKeyState(t *testing.T) {
	s := Summary{Result: Result{Geo: StateKey("Wisconsin")}}
	assert.Equal(t, "state:WI", s.MessageKey())
}
