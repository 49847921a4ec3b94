package nondh

import "github.com/stwalsh4118/landrecords/internal/models"

// The record screens and the sequencer disagree on which survey kind wins when
// a nondh touches several. Both tables are kept, under separate names.
var (
	// displayPriority: direct > block > re-survey.
	displayPriority = map[models.SurveyKind]int{
		models.SurveyKindDirect:   3,
		models.SurveyKindBlock:    2,
		models.SurveyKindReSurvey: 1,
	}

	// sortPriority: re-survey > block > direct.
	sortPriority = map[models.SurveyKind]int{
		models.SurveyKindReSurvey: 3,
		models.SurveyKindBlock:    2,
		models.SurveyKindDirect:   1,
	}
)

// PrimaryKind returns the survey kind shown for a set of references,
// preferring direct survey numbers, then block, then re-survey.
// An empty or unrecognized set is direct.
func PrimaryKind(refs []models.SurveyRef) models.SurveyKind {
	return highest(refs, displayPriority)
}

// SortKind returns the survey kind used to place a nondh in sequence,
// preferring re-survey numbers, then block, then direct.
// An empty or unrecognized set is direct.
func SortKind(refs []models.SurveyRef) models.SurveyKind {
	return highest(refs, sortPriority)
}

func highest(refs []models.SurveyRef, priority map[models.SurveyKind]int) models.SurveyKind {
	best := models.SurveyKindDirect
	bestRank := 0
	for _, ref := range refs {
		if rank := priority[ref.Type]; rank > bestRank {
			best, bestRank = ref.Type, rank
		}
	}
	return best
}
