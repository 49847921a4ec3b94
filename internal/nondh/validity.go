package nondh

import "github.com/stwalsh4118/landrecords/internal/models"

// Resolution is the resolved legal effect of one nondh in sequence.
type Resolution struct {
	Nondh    models.Nondh
	Position int
	Valid    bool
}

// ResolveChain walks ordered (as produced by Sort) and marks each nondh valid
// when an even number of later nondhs carry a detail with status invalid.
// statusByNumber holds the recorded status of each nondh's detail; nondhs
// without a detail never count as invalidating. Explicit cross-references are
// not consulted.
func ResolveChain(ordered []models.Nondh, statusByNumber map[string]models.Status) []Resolution {
	resolutions := make([]Resolution, len(ordered))

	invalidAfter := 0
	for i := len(ordered) - 1; i >= 0; i-- {
		resolutions[i] = Resolution{
			Nondh:    ordered[i],
			Position: i,
			Valid:    invalidAfter%2 == 0,
		}
		if statusByNumber[ordered[i].Number] == models.StatusInvalid {
			invalidAfter++
		}
	}

	return resolutions
}

// Resolve is ResolveChain keyed by nondh number. When a number repeats in the
// sequence, the earliest position wins.
func Resolve(ordered []models.Nondh, statusByNumber map[string]models.Status) map[string]bool {
	resolutions := ResolveChain(ordered, statusByNumber)
	valid := make(map[string]bool, len(resolutions))
	for _, r := range resolutions {
		if _, seen := valid[r.Nondh.Number]; !seen {
			valid[r.Nondh.Number] = r.Valid
		}
	}
	return valid
}
