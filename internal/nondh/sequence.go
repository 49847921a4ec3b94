package nondh

import (
	"slices"
	"strconv"
	"strings"

	"github.com/stwalsh4118/landrecords/internal/models"
)

// Group order within the sequence, by the nondh's sort kind
var kindRank = map[models.SurveyKind]int{
	models.SurveyKindDirect:   0,
	models.SurveyKindBlock:    1,
	models.SurveyKindReSurvey: 2,
}

// Sort returns nondhs in legal sequence: grouped by SortKind (direct, block,
// re-survey), then by the numeric value of the nondh number. Remaining ties
// fall back to the raw number and then the ID, so the result is the same for
// every permutation of the input. The input slice is not modified.
func Sort(nondhs []models.Nondh) []models.Nondh {
	type keyed struct {
		nondh models.Nondh
		rank  int
		num   int64
	}

	items := make([]keyed, len(nondhs))
	for i, n := range nondhs {
		items[i] = keyed{
			nondh: n,
			rank:  kindRank[SortKind(n.AffectedSNos)],
			num:   NumericValue(n.Number),
		}
	}

	slices.SortFunc(items, func(a, b keyed) int {
		if a.rank != b.rank {
			return a.rank - b.rank
		}
		if a.num != b.num {
			if a.num < b.num {
				return -1
			}
			return 1
		}
		if c := strings.Compare(a.nondh.Number, b.nondh.Number); c != 0 {
			return c
		}
		return strings.Compare(a.nondh.ID.String(), b.nondh.ID.String())
	})

	ordered := make([]models.Nondh, len(items))
	for i, item := range items {
		ordered[i] = item.nondh
	}
	return ordered
}

// NumericValue parses the leading digits of a nondh number ("10-35" is 10).
// A number without leading digits is 0.
func NumericValue(number string) int64 {
	s := strings.TrimSpace(number)
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0
	}
	v, err := strconv.ParseInt(s[:end], 10, 64)
	if err != nil {
		return 0
	}
	return v
}
