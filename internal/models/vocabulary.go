package models

import "strings"

// Status is the internal validity vocabulary of a nondh detail.
type Status string

const (
	StatusValid     Status = "valid"
	StatusInvalid   Status = "invalid"
	StatusNullified Status = "nullified"
)

// InvalidReasonSentinel is stored when an invalid detail arrives without a reason.
const InvalidReasonSentinel = "NA"

// ParseStatus maps the external upload vocabulary onto Status.
// Anything unrecognized, including an empty string, is valid.
func ParseStatus(external string) Status {
	switch strings.ToLower(strings.TrimSpace(external)) {
	case "valid", "certified", "pramanit":
		return StatusValid
	case "invalid", "cancelled", "canceled", "radd":
		return StatusInvalid
	case "nullified", "rejected", "namanjoor":
		return StatusNullified
	default:
		return StatusValid
	}
}

// SurveyKind tags a survey reference with which numbering scheme it uses.
type SurveyKind string

const (
	SurveyKindDirect   SurveyKind = "s_no"
	SurveyKindBlock    SurveyKind = "block_no"
	SurveyKindReSurvey SurveyKind = "re_survey_no"
)

// SurveyRef is one survey number touched by a nondh.
type SurveyRef struct {
	Number string     `json:"number"`
	Type   SurveyKind `json:"type"`
}

// NondhType is the legal nature of a nondh detail.
type NondhType string

const (
	NondhTypeKabjedaar    NondhType = "Kabjedaar"
	NondhTypeEkatrikaran  NondhType = "Ekatrikaran"
	NondhTypeVarsai       NondhType = "Varsai"
	NondhTypeHakkami      NondhType = "Hakkami"
	NondhTypeHayatiMa     NondhType = "Hayati_ma_hakh_dakhal"
	NondhTypeVechand      NondhType = "Vechand"
	NondhTypeDurasti      NondhType = "Durasti"
	NondhTypePromulgation NondhType = "Promulgation"
	NondhTypeVehchani     NondhType = "Vehchani"
	NondhTypeBojo         NondhType = "Bojo"
	NondhTypeGanot        NondhType = "Ganot"
	NondhTypeHukam        NondhType = "Hukam"
	NondhTypeOther        NondhType = "Other"
)

var nondhTypes = []NondhType{
	NondhTypeKabjedaar,
	NondhTypeEkatrikaran,
	NondhTypeVarsai,
	NondhTypeHakkami,
	NondhTypeHayatiMa,
	NondhTypeVechand,
	NondhTypeDurasti,
	NondhTypePromulgation,
	NondhTypeVehchani,
	NondhTypeBojo,
	NondhTypeGanot,
	NondhTypeHukam,
	NondhTypeOther,
}

// ParseNondhType returns the canonical NondhType for s, ignoring case and
// surrounding space. ok is false when s is not in the vocabulary.
func ParseNondhType(s string) (t NondhType, ok bool) {
	s = strings.TrimSpace(s)
	for _, known := range nondhTypes {
		if strings.EqualFold(s, string(known)) {
			return known, true
		}
	}
	return NondhType(s), false
}

// IsSale reports whether the type carries sale deed fields (deed date, amount).
func (t NondhType) IsSale() bool {
	return t == NondhTypeVechand
}

// IsOrder reports whether the type carries order fields (hukam date and type,
// restraining order).
func (t NondhType) IsOrder() bool {
	return t == NondhTypeHukam || t == NondhTypeGanot
}
