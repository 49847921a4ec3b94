package nondh

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stwalsh4118/landrecords/internal/models"
	"github.com/stwalsh4118/landrecords/internal/validation"
)

func newNondh(number string, kinds ...models.SurveyKind) models.Nondh {
	refs := make([]models.SurveyRef, 0, len(kinds))
	for i, k := range kinds {
		refs = append(refs, models.SurveyRef{Number: string(rune('1' + i)), Type: k})
	}
	return models.Nondh{ID: uuid.New(), Number: number, AffectedSNos: refs}
}

func numbers(nondhs []models.Nondh) []string {
	out := make([]string, len(nondhs))
	for i, n := range nondhs {
		out[i] = n.Number
	}
	return out
}

func newEntryValidator(t *testing.T) *EntryValidator {
	t.Helper()
	v, err := validation.New()
	require.NoError(t, err)
	return NewEntryValidator(v)
}

func validDetail() *models.NondhDetailInput {
	return &models.NondhDetailInput{
		NondhNumber: "12",
		Type:        string(models.NondhTypeVarsai),
		Date:        "01022003",
		Vigat:       "Inherited by sons after death of holder",
		Status:      "valid",
	}
}

func TestValidate_AcceptsCompleteRecord(t *testing.T) {
	e := newEntryValidator(t)
	assert.Empty(t, e.Validate(validDetail(), 0))
}

func TestValidate_Violations(t *testing.T) {
	e := newEntryValidator(t)

	tests := []struct {
		name     string
		mutate   func(d *models.NondhDetailInput)
		contains []string
	}{
		{
			name:     "missing nondh number",
			mutate:   func(d *models.NondhDetailInput) { d.NondhNumber = "" },
			contains: []string{"nondhNumber"},
		},
		{
			name:     "missing type",
			mutate:   func(d *models.NondhDetailInput) { d.Type = "" },
			contains: []string{"type"},
		},
		{
			name:     "missing date",
			mutate:   func(d *models.NondhDetailInput) { d.Date = "" },
			contains: []string{"date"},
		},
		{
			name:     "short date",
			mutate:   func(d *models.NondhDetailInput) { d.Date = "1022003" },
			contains: []string{"date must be exactly 8 characters"},
		},
		{
			name:     "missing vigat",
			mutate:   func(d *models.NondhDetailInput) { d.Vigat = "" },
			contains: []string{"vigat"},
		},
		{
			name:     "unknown type",
			mutate:   func(d *models.NondhDetailInput) { d.Type = "Lease" },
			contains: []string{"type must be a known nondh type"},
		},
		{
			name: "invalid without reason",
			mutate: func(d *models.NondhDetailInput) {
				d.Status = "invalid"
				d.InvalidReason = "  "
			},
			contains: []string{"invalidReason is required when status is invalid"},
		},
		{
			name: "invalid status is case insensitive",
			mutate: func(d *models.NondhDetailInput) {
				d.Status = " Invalid"
			},
			contains: []string{"invalidReason"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := validDetail()
			tt.mutate(d)
			violations := e.Validate(d, 3)
			require.Len(t, violations, 1)
			for _, want := range tt.contains {
				assert.Contains(t, violations[0], want)
			}
			assert.True(t, strings.HasPrefix(violations[0], "nondh detail #4"))
		})
	}
}

func TestValidate_TypeIgnoresCase(t *testing.T) {
	e := newEntryValidator(t)
	d := validDetail()
	d.Type = " varsai "

	assert.Empty(t, e.Validate(d, 0))
}

func TestCheck_MissingReasonIsAdvisory(t *testing.T) {
	e := newEntryValidator(t)
	d := validDetail()
	d.Status = "invalid"

	violations, advisories := e.Check(d, 1)

	assert.Empty(t, violations)
	require.Len(t, advisories, 1)
	assert.Equal(t, "nondh detail #2 (nondh 12): invalidReason is required when status is invalid", advisories[0])
}

func TestCheck_AdvisoryKeptBesideViolations(t *testing.T) {
	e := newEntryValidator(t)
	d := validDetail()
	d.Status = "invalid"
	d.Vigat = ""

	violations, advisories := e.Check(d, 0)

	require.Len(t, violations, 1)
	assert.Contains(t, violations[0], "vigat")
	require.Len(t, advisories, 1)
	assert.Contains(t, advisories[0], "invalidReason")
}

func TestValidate_MappedInvalidStatusWithoutReasonAccepted(t *testing.T) {
	e := newEntryValidator(t)
	d := validDetail()
	d.Status = "cancelled"

	assert.Empty(t, e.Validate(d, 0))
}

func TestValidate_EvaluatesAllRules(t *testing.T) {
	e := newEntryValidator(t)
	d := &models.NondhDetailInput{Status: "invalid"}

	violations := e.Validate(d, 0)
	require.Len(t, violations, 5)
	assert.Contains(t, violations[0], "nondhNumber")
	assert.Contains(t, violations[1], "type")
	assert.Contains(t, violations[2], "date")
	assert.Contains(t, violations[3], "vigat")
	assert.Contains(t, violations[4], "invalidReason")
}

func TestValidate_NilRecord(t *testing.T) {
	e := newEntryValidator(t)
	assert.Len(t, e.Validate(nil, 0), 1)
}

func TestPrimaryKind(t *testing.T) {
	tests := []struct {
		name     string
		refs     []models.SurveyRef
		expected models.SurveyKind
	}{
		{name: "empty defaults to direct", refs: nil, expected: models.SurveyKindDirect},
		{name: "block only", refs: []models.SurveyRef{{Type: models.SurveyKindBlock}}, expected: models.SurveyKindBlock},
		{name: "re-survey only", refs: []models.SurveyRef{{Type: models.SurveyKindReSurvey}}, expected: models.SurveyKindReSurvey},
		{
			name:     "direct beats block and re-survey",
			refs:     []models.SurveyRef{{Type: models.SurveyKindReSurvey}, {Type: models.SurveyKindBlock}, {Type: models.SurveyKindDirect}},
			expected: models.SurveyKindDirect,
		},
		{
			name:     "block beats re-survey",
			refs:     []models.SurveyRef{{Type: models.SurveyKindReSurvey}, {Type: models.SurveyKindBlock}},
			expected: models.SurveyKindBlock,
		},
		{name: "unknown kind ignored", refs: []models.SurveyRef{{Type: "plot"}}, expected: models.SurveyKindDirect},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, PrimaryKind(tt.refs))
		})
	}
}

func TestSortKind_ReversesDisplayPriority(t *testing.T) {
	refs := []models.SurveyRef{{Type: models.SurveyKindDirect}, {Type: models.SurveyKindBlock}, {Type: models.SurveyKindReSurvey}}
	assert.Equal(t, models.SurveyKindReSurvey, SortKind(refs))
	assert.Equal(t, models.SurveyKindDirect, PrimaryKind(refs))

	refs = []models.SurveyRef{{Type: models.SurveyKindDirect}, {Type: models.SurveyKindBlock}}
	assert.Equal(t, models.SurveyKindBlock, SortKind(refs))
	assert.Equal(t, models.SurveyKindDirect, SortKind(nil))
}

func TestNumericValue(t *testing.T) {
	assert.Equal(t, int64(10), NumericValue("10-35"))
	assert.Equal(t, int64(7), NumericValue(" 7 "))
	assert.Equal(t, int64(0), NumericValue("abc"))
	assert.Equal(t, int64(0), NumericValue(""))
	assert.Equal(t, int64(123), NumericValue("123/A"))
}

func TestSort_GroupsByKindThenNumber(t *testing.T) {
	input := []models.Nondh{
		newNondh("5", models.SurveyKindReSurvey),
		newNondh("12", models.SurveyKindDirect),
		newNondh("3", models.SurveyKindBlock),
		newNondh("2", models.SurveyKindDirect),
		newNondh("1", models.SurveyKindDirect, models.SurveyKindReSurvey),
		newNondh("x", models.SurveyKindDirect),
	}

	ordered := Sort(input)
	assert.Equal(t, []string{"x", "2", "12", "3", "1", "5"}, numbers(ordered))
	// input untouched
	assert.Equal(t, "5", input[0].Number)
}

func TestSort_DeterministicAcrossPermutations(t *testing.T) {
	base := []models.Nondh{
		newNondh("10-35", models.SurveyKindDirect),
		newNondh("10", models.SurveyKindDirect),
		newNondh("10", models.SurveyKindDirect),
		newNondh("4", models.SurveyKindBlock),
		newNondh("abc", models.SurveyKindReSurvey),
		newNondh("0", models.SurveyKindReSurvey),
		newNondh("99", models.SurveyKindDirect),
	}
	want := Sort(base)

	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 50; i++ {
		shuffled := append([]models.Nondh(nil), base...)
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })
		got := Sort(shuffled)
		for j := range want {
			require.Equal(t, want[j].ID, got[j].ID, "permutation %d position %d", i, j)
		}
	}
}

func TestResolve_AllValid(t *testing.T) {
	ordered := Sort([]models.Nondh{
		newNondh("1", models.SurveyKindDirect),
		newNondh("2", models.SurveyKindDirect),
		newNondh("3", models.SurveyKindDirect),
	})
	statuses := map[string]models.Status{"1": models.StatusValid, "2": models.StatusNullified, "3": models.StatusValid}

	for number, valid := range Resolve(ordered, statuses) {
		assert.True(t, valid, "nondh %s", number)
	}
}

func TestResolve_ConcreteScenario(t *testing.T) {
	ordered := Sort([]models.Nondh{
		newNondh("3", models.SurveyKindDirect),
		newNondh("1", models.SurveyKindDirect),
		newNondh("2", models.SurveyKindDirect),
	})
	require.Equal(t, []string{"1", "2", "3"}, numbers(ordered))

	statuses := map[string]models.Status{
		"1": models.StatusValid,
		"2": models.StatusValid,
		"3": models.StatusInvalid,
	}

	valid := Resolve(ordered, statuses)
	assert.True(t, valid["3"])
	assert.False(t, valid["2"])
	assert.False(t, valid["1"])
}

func TestResolve_ParityLaw(t *testing.T) {
	var nondhs []models.Nondh
	for _, n := range []string{"1", "2", "3", "4", "5", "6"} {
		nondhs = append(nondhs, newNondh(n, models.SurveyKindDirect))
	}
	ordered := Sort(nondhs)

	baseline := map[string]models.Status{}
	for _, n := range ordered {
		baseline[n.Number] = models.StatusValid
	}
	base := ResolveChain(ordered, baseline)

	for p := range ordered {
		flipped := map[string]models.Status{}
		for k, v := range baseline {
			flipped[k] = v
		}
		flipped[ordered[p].Number] = models.StatusInvalid

		got := ResolveChain(ordered, flipped)
		for i := range ordered {
			if i < p {
				assert.NotEqual(t, base[i].Valid, got[i].Valid, "flip at %d, position %d", p, i)
			} else {
				assert.Equal(t, base[i].Valid, got[i].Valid, "flip at %d, position %d", p, i)
			}
		}
	}
}

func TestResolve_TwoInvalidSuccessorsCancel(t *testing.T) {
	ordered := Sort([]models.Nondh{
		newNondh("1", models.SurveyKindDirect),
		newNondh("2", models.SurveyKindDirect),
		newNondh("3", models.SurveyKindDirect),
	})
	statuses := map[string]models.Status{"2": models.StatusInvalid, "3": models.StatusInvalid}

	valid := Resolve(ordered, statuses)
	assert.True(t, valid["1"])
	assert.False(t, valid["2"])
	assert.True(t, valid["3"])
}

func TestResolveChain_MissingDetailIsNotInvalidating(t *testing.T) {
	ordered := Sort([]models.Nondh{
		newNondh("1", models.SurveyKindDirect),
		newNondh("2", models.SurveyKindDirect),
	})

	chain := ResolveChain(ordered, map[string]models.Status{})
	require.Len(t, chain, 2)
	assert.True(t, chain[0].Valid)
	assert.True(t, chain[1].Valid)
	assert.Equal(t, 1, chain[1].Position)
}
