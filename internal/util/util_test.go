package util

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		seconds  float64
		expected string
	}{
		{0, "0:00:00"},
		{-5, "0:00:00"},
		{math.NaN(), "0:00:00"},
		{59.9, "0:00:59"},
		{125, "0:02:05"},
		{3661, "1:01:01"},
		{86400, "1 day, 0:00:00"},
		{2*86400 + 3723, "2 days, 1:02:03"},
	}

	for _, test := range tests {
		assert.Equal(t, test.expected, FormatDuration(test.seconds), "seconds=%v", test.seconds)
	}
}

func TestFormatETA(t *testing.T) {
	tests := []struct {
		eta      time.Duration
		expected string
	}{
		{-time.Second, ""},
		{0, ""},
		{30 * time.Second, "00:30"},
		{90 * time.Second, "01:30"},
		{time.Hour, "01:00:00"},
		{3661 * time.Second, "01:01:01"},
	}

	for _, test := range tests {
		assert.Equal(t, test.expected, FormatETA(test.eta), "eta=%v", test.eta)
	}
}

func TestHumanSize(t *testing.T) {
	assert.Equal(t, "2.5 MB", HumanSize(2_500_000))
	assert.Equal(t, "0 B", HumanSize(-1))
	assert.Equal(t, "512 B", HumanSize(512))
}

func TestHumanSpeed(t *testing.T) {
	assert.Equal(t, "", HumanSpeed(0))
	assert.Equal(t, "", HumanSpeed(math.Inf(1)))
	assert.Equal(t, "1.5 MB/s", HumanSpeed(1_500_000))
}

func TestClampPercent(t *testing.T) {
	assert.Equal(t, 0.0, ClampPercent(-10))
	assert.Equal(t, 0.0, ClampPercent(math.NaN()))
	assert.Equal(t, 42.5, ClampPercent(42.5))
	assert.Equal(t, 100.0, ClampPercent(180))
}
