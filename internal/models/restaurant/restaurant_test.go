package restaurant

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimeOfDay(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    TimeOfDay
		wantErr bool
	}{
		{name: "hours and minutes", input: "09:30", want: 9*3600 + 30*60},
		{name: "with seconds", input: "09:30:15", want: 9*3600 + 30*60 + 15},
		{name: "midnight", input: "00:00", want: 0},
		{name: "end of day", input: "23:59:59", want: 23*3600 + 59*60 + 59},
		{name: "hour out of range", input: "24:00", wantErr: true},
		{name: "minute out of range", input: "10:60", wantErr: true},
		{name: "not a time", input: "lunch", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTimeOfDay(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTimeOfDay_String(t *testing.T) {
	assert.Equal(t, "09:05:00", TimeOfDay(9*3600+5*60).String())
	assert.Equal(t, "00:00:00", TimeOfDay(0).String())
	assert.Equal(t, "23:59:59", TimeOfDay(23*3600+59*60+59).String())
}

func TestTimeOfDay_Scan(t *testing.T) {
	var tod TimeOfDay

	require.NoError(t, tod.Scan("11:00:00"))
	assert.Equal(t, TimeOfDay(11*3600), tod)

	require.NoError(t, tod.Scan([]byte("21:30:00")))
	assert.Equal(t, TimeOfDay(21*3600+30*60), tod)

	require.NoError(t, tod.Scan(time.Date(2024, 1, 1, 14, 15, 16, 0, time.UTC)))
	assert.Equal(t, TimeOfDay(14*3600+15*60+16), tod)

	require.Error(t, tod.Scan(42))
}

func TestRestaurant_OpenAt(t *testing.T) {
	opening, err := ParseTimeOfDay("09:00")
	require.NoError(t, err)
	closing, err := ParseTimeOfDay("21:00")
	require.NoError(t, err)

	r := &Restaurant{OpeningTime: opening, ClosingTime: closing}

	tests := []struct {
		name string
		at   string
		want bool
	}{
		{name: "mid day", at: "12:00:00", want: true},
		{name: "second after opening", at: "09:00:01", want: true},
		{name: "second before closing", at: "20:59:59", want: true},
		{name: "exactly at opening", at: "09:00:00", want: false},
		{name: "exactly at closing", at: "21:00:00", want: false},
		{name: "before opening", at: "08:59:59", want: false},
		{name: "after closing", at: "21:00:01", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			at, err := ParseTimeOfDay(tt.at)
			require.NoError(t, err)
			assert.Equal(t, tt.want, r.OpenAt(at))
		})
	}
}
