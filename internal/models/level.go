package models

import "sort"

// Level is a competitive level. Levels are ordered; see Levels.
type Level string

const (
	Level1              Level = "Level 1"
	Level2              Level = "Level 2"
	Level3              Level = "Level 3"
	Level4              Level = "Level 4"
	Level5              Level = "Level 5"
	Level6              Level = "Level 6"
	Level7              Level = "Level 7"
	Level8              Level = "Level 8"
	Level9              Level = "Level 9"
	JuniorInternational Level = "Junior International"
	SeniorInternational Level = "Senior International"
)

// unknownLevelRank sorts unrecognised levels after every known one
const unknownLevelRank = 100

var levelOrder = []Level{
	Level1, Level2, Level3, Level4, Level5, Level6, Level7, Level8, Level9,
	JuniorInternational, SeniorInternational,
}

var levelRanks = func() map[Level]int {
	m := make(map[Level]int, len(levelOrder))
	for i, l := range levelOrder {
		m[l] = i
	}
	return m
}()

// Levels returns every level in canonical order
func Levels() []Level {
	out := make([]Level, len(levelOrder))
	copy(out, levelOrder)
	return out
}

// ParseLevel returns the level named s and whether it is known
func ParseLevel(s string) (Level, bool) {
	l := Level(s)
	_, ok := levelRanks[l]
	return l, ok
}

// Rank is the level's position in canonical order
func (l Level) Rank() int {
	if r, ok := levelRanks[l]; ok {
		return r
	}
	return unknownLevelRank
}

// SortLevels orders levels canonically, unknown levels last by name
func SortLevels(levels []Level) {
	sort.SliceStable(levels, func(i, j int) bool {
		ri, rj := levels[i].Rank(), levels[j].Rank()
		if ri != rj {
			return ri < rj
		}
		return levels[i] < levels[j]
	})
}
