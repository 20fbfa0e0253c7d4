package kafka

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/couchcryptid/music-event-insights/internal/config"
	"github.com/couchcryptid/music-event-insights/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSerializeToMessage(t *testing.T) {
	now := time.Date(2024, 4, 26, 15, 10, 0, 0, time.UTC)
	s := domain.Summary{
		Result: domain.Result{
			Geo:          domain.CityKey("Eau Claire", "Wisconsin"),
			EventCount:   1,
			AirportCount: 0,
			Population:   69421,
			Income:       decimal.RequireFromString("58275"),
		},
		GeneratedAt: now,
	}

	msg, err := serializeToMessage(s)
	require.NoError(t, err)

	assert.Equal(t, []byte("city:Eau Claire, WI"), msg.Key)
	assert.JSONEq(t, `{
		"geo": {"level": "city", "city": "Eau Claire", "state": "WI"},
		"event_count": 1,
		"airport_count": 0,
		"population": 69421,
		"median_household_income": "58275",
		"generated_at": "2024-04-26T15:10:00Z"
	}`, string(msg.Value))
	require.Len(t, msg.Headers, 2)
	assert.Equal(t, "level", msg.Headers[0].Key)
	assert.Equal(t, []byte("city"), msg.Headers[0].Value)
	assert.Equal(t, "generated_at", msg.Headers[1].Key)
	assert.Equal(t, []byte(now.Format(time.RFC3339)), msg.Headers[1].Value)
}

func TestSerializeToMessage_StateKey(t *testing.T) {
	msg, err := serializeToMessage(domain.Summary{Result: domain.Result{Geo: domain.StateKey("nevada")}})
	require.NoError(t, err)
	assert.Equal(t, []byte("state:NV"), msg.Key)
}

func TestWriter_EmptyBatchIsNoop(t *testing.T) {
	cfg := &config.Config{KafkaBrokers: []string{"localhost:1"}, KafkaSummaryTopic: "geo-summaries"}
	w := NewWriter(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	defer w.Close()

	require.NoError(t, w.LoadBatch(context.Background(), nil))
}
