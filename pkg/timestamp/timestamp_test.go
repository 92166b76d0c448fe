package timestamp

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		input any
		want  int64
	}{
		{"nil", nil, 0},
		{"zero int64", int64(0), 0},
		{"milliseconds int64", int64(1672574400000), 1672574400000},
		{"seconds int64", int64(1672574400), 1672574400000},
		{"milliseconds float64", float64(1672574400000), 1672574400000},
		{"seconds float64", float64(1672574400), 1672574400000},
		{"rfc3339 string", "2023-01-01T12:00:00Z", 1672574400000},
		{"numeric string seconds", "1672574400", 1672574400000},
		{"numeric string millis", "1672574400000", 1672574400000},
		{"empty string", "", 0},
		{"garbage string", "not a time", 0},
		{"unsupported type", struct{}{}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Parse(tt.input))
		})
	}
}

func TestParseTimeValue(t *testing.T) {
	now := time.Now()
	assert.Equal(t, now.UnixMilli(), Parse(now))
	assert.Equal(t, int64(0), Parse(time.Time{}))
}

func TestToUnixMs(t *testing.T) {
	assert.Equal(t, int64(0), ToUnixMs(time.Time{}))
	assert.Equal(t, int64(1672574400000), ToUnixMs(time.UnixMilli(1672574400000)))
}

func TestValidate(t *testing.T) {
	assert.NoError(t, Validate(0))
	assert.NoError(t, Validate(Now()))
	assert.Error(t, Validate(-1))
	assert.Error(t, Validate(99999999999999999))
}
