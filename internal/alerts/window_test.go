package alerts

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bingebuddy/bingebuddy/internal/config"
)

func TestWindow_IsOpen(t *testing.T) {
	mst := time.FixedZone("MST", -7*3600)
	w := Window{Location: mst, Weekday: time.Sunday, Start: 13 * time.Hour, End: 23*time.Hour + 59*time.Minute + 59*time.Second}

	tests := []struct {
		name string
		now  time.Time
		want bool
	}{
		{"sunday afternoon", time.Date(2024, 6, 2, 14, 0, 0, 0, mst), true},
		{"monday afternoon", time.Date(2024, 6, 3, 14, 0, 0, 0, mst), false},
		{"sunday morning", time.Date(2024, 6, 2, 8, 0, 0, 0, mst), false},
		{"start inclusive", time.Date(2024, 6, 2, 13, 0, 0, 0, mst), true},
		{"end inclusive", time.Date(2024, 6, 2, 23, 59, 59, 500, mst), true},
		{"just before start", time.Date(2024, 6, 2, 12, 59, 59, 0, mst), false},
		{"utc instant converted", time.Date(2024, 6, 2, 21, 0, 0, 0, time.UTC), true},
		{"utc sunday is local saturday", time.Date(2024, 6, 2, 3, 0, 0, 0, time.UTC), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, w.IsOpen(tt.now))
		})
	}
}

func TestWindowFromConfig(t *testing.T) {
	w, err := WindowFromConfig(config.AlertsConfig{
		Timezone: "America/Denver",
		Weekday:  "sunday",
		Start:    "13:00",
		End:      "23:59:59",
	})
	require.NoError(t, err)
	assert.Equal(t, time.Sunday, w.Weekday)
	assert.Equal(t, 13*time.Hour, w.Start)
	assert.Equal(t, "America/Denver", w.Location.String())

	_, err = WindowFromConfig(config.AlertsConfig{Timezone: "Nowhere/City", Weekday: "sunday", Start: "13:00", End: "14:00"})
	assert.Error(t, err)

	_, err = WindowFromConfig(config.AlertsConfig{Timezone: "UTC", Weekday: "sunday", Start: "14:00", End: "13:00"})
	assert.Error(t, err)
}

func TestWindow_Today(t *testing.T) {
	mst := time.FixedZone("MST", -7*3600)
	w := Window{Location: mst}
	got := w.Today(time.Date(2024, 6, 3, 2, 0, 0, 0, time.UTC))
	assert.Equal(t, "2024-06-02", got.Format("2006-01-02"))
}
