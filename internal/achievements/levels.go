// file: internal/achievements/levels.go
package achievements

import "fmt"

// levelThresholds maps levels 1..12 to the minimum metric value that earns
// them. The sequence is strictly ascending; levels 10-12 carry the named
// Silver/Gold/Diamond tiers.
var levelThresholds = [...]int64{
	10,      // 1
	100,     // 2
	500,     // 3
	1000,    // 4
	2000,    // 5
	5000,    // 6
	10000,   // 7
	20000,   // 8
	50000,   // 9
	100000,  // 10 Silver
	500000,  // 11 Gold
	1000000, // 12 Diamond
}

// MaxLevel is the highest achievable level.
const MaxLevel = len(levelThresholds)

const (
	LevelSilver  = 10
	LevelGold    = 11
	LevelDiamond = 12
)

// LevelForMetric returns the highest level whose threshold the metric
// reaches, or 0 when the metric is below the level-1 threshold.
func LevelForMetric(metric int64) int {
	level := 0
	for i, threshold := range levelThresholds {
		if metric < threshold {
			break
		}
		level = i + 1
	}
	return level
}

// ThresholdForLevel returns the metric value required for a level. Levels
// beyond the table clamp to the last threshold; levels below 1 clamp to the
// first.
func ThresholdForLevel(level int) int64 {
	if level < 1 {
		return levelThresholds[0]
	}
	if level > MaxLevel {
		return levelThresholds[MaxLevel-1]
	}
	return levelThresholds[level-1]
}

// tierNames holds the localized names of the three named tiers, keyed by
// BCP 47 language code.
var tierNames = map[string]map[int]string{
	"en": {
		LevelSilver:  "Silver",
		LevelGold:    "Gold",
		LevelDiamond: "Diamond",
	},
	"sv": {
		LevelSilver:  "Silver",
		LevelGold:    "Guld",
		LevelDiamond: "Diamant",
	},
}

// LevelDisplayName renders a level for display. Levels 1-9 render as
// "Level N"; the named tiers render in the requested locale, falling back
// to English for unknown locales. Out-of-range levels clamp.
func LevelDisplayName(level int, locale string) string {
	if level < 1 {
		level = 1
	}
	if level > MaxLevel {
		level = MaxLevel
	}
	if level < LevelSilver {
		return fmt.Sprintf("Level %d", level)
	}
	names, ok := tierNames[locale]
	if !ok {
		names = tierNames["en"]
	}
	return names[level]
}
