package achievements

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevelForMetric(t *testing.T) {
	tests := []struct {
		name   string
		metric int64
		want   int
	}{
		{"zero activity", 0, 0},
		{"just below floor", 9, 0},
		{"exactly at floor", 10, 1},
		{"just below level 2", 99, 1},
		{"exactly level 2", 100, 2},
		{"mid table", 2500, 5},
		{"silver threshold", 100000, 10},
		{"gold threshold", 500000, 11},
		{"just below diamond", 999999, 11},
		{"diamond threshold", 1000000, 12},
		{"far beyond diamond", 5000000, 12},
		{"negative metric", -1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, LevelForMetric(tt.metric))
		})
	}
}

func TestThresholdForLevel(t *testing.T) {
	assert.Equal(t, int64(10), ThresholdForLevel(1))
	assert.Equal(t, int64(100), ThresholdForLevel(2))
	assert.Equal(t, int64(100000), ThresholdForLevel(LevelSilver))
	assert.Equal(t, int64(1000000), ThresholdForLevel(LevelDiamond))

	// Out-of-range levels clamp instead of panicking.
	assert.Equal(t, int64(10), ThresholdForLevel(0))
	assert.Equal(t, int64(10), ThresholdForLevel(-3))
	assert.Equal(t, int64(1000000), ThresholdForLevel(MaxLevel+5))
}

func TestThresholdsStrictlyAscending(t *testing.T) {
	for level := 2; level <= MaxLevel; level++ {
		assert.Greater(t, ThresholdForLevel(level), ThresholdForLevel(level-1),
			"threshold for level %d must exceed level %d", level, level-1)
	}
}

func TestLevelDisplayName(t *testing.T) {
	assert.Equal(t, "Level 1", LevelDisplayName(1, "en"))
	assert.Equal(t, "Level 9", LevelDisplayName(9, "en"))
	assert.Equal(t, "Silver", LevelDisplayName(LevelSilver, "en"))
	assert.Equal(t, "Gold", LevelDisplayName(LevelGold, "en"))
	assert.Equal(t, "Diamond", LevelDisplayName(LevelDiamond, "en"))

	assert.Equal(t, "Guld", LevelDisplayName(LevelGold, "sv"))
	assert.Equal(t, "Diamant", LevelDisplayName(LevelDiamond, "sv"))

	// Unknown locales fall back to English.
	assert.Equal(t, "Gold", LevelDisplayName(LevelGold, "fr"))
	assert.Equal(t, "Gold", LevelDisplayName(LevelGold, ""))

	// Out-of-range levels clamp.
	assert.Equal(t, "Level 1", LevelDisplayName(0, "en"))
	assert.Equal(t, "Diamond", LevelDisplayName(99, "en"))
}
