package domain

import "time"

// Summary is a lookup result stamped for publication.
type Summary struct {
	Result
	GeneratedAt time.Time `json:"generated_at"`
}

// Summarize stamps every result with the current time.
func Summarize(results []Result) []Summary {
	now := clock.Now()
	out := make([]Summary, len(results))
	for i, r := range results {
		out[i] = Summary{Result: r, GeneratedAt: now}
	}
	return out
}

// MessageKey identifies the geography across publications, e.g. "city:Reno, NV".
func (s Summary) MessageKey() string {
	return s.Geo.Level.String() + ":" + s.Geo.String()
}
