package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEngagementRate(t *testing.T) {
	rate, ok := EngagementRate(10, 5, 3, 2, 200)
	assert.True(t, ok)
	assert.InDelta(t, 10.0, rate, 1e-9)

	_, ok = EngagementRate(10, 5, 3, 2, 0)
	assert.False(t, ok, "zero reach must not produce a rate")

	_, ok = EngagementRate(10, 5, 3, 2, -1)
	assert.False(t, ok)
}

func TestCompletion(t *testing.T) {
	tests := []struct {
		name                   string
		views, avg, total      float64
		wantOK                 bool
		wantDuration, wantRate float64
	}{
		{name: "full watch", views: 100, avg: 5.2, total: 520, wantOK: true, wantDuration: 5.2, wantRate: 100},
		{name: "half watch", views: 10, avg: 3, total: 60, wantOK: true, wantDuration: 6, wantRate: 50},
		{name: "no views", views: 0, avg: 5.2, total: 520},
		{name: "no average", views: 100, avg: 0, total: 520},
		{name: "no total", views: 100, avg: 5.2, total: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			duration, rate, ok := Completion(tt.views, tt.avg, tt.total)
			assert.Equal(t, tt.wantOK, ok)
			assert.InDelta(t, tt.wantDuration, duration, 1e-9)
			assert.InDelta(t, tt.wantRate, rate, 1e-9)
		})
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		seconds float64
		want    string
	}{
		{0, "0.0s"},
		{5.2, "5.2s"},
		{59.9, "59.9s"},
		{60, "1.0m"},
		{520, "8.7m"},
		{3599, "60.0m"},
		{3600, "1.0h"},
		{5400, "1.5h"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatDuration(tt.seconds), "seconds=%v", tt.seconds)
	}
}
