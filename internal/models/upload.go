package models

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/stwalsh4118/landrecords/internal/area"
)

// FlexString is a string that can be unmarshaled from either a JSON string or a JSON number.
// Clerks type nondh and survey numbers into spreadsheets that export both forms.
type FlexString string

// UnmarshalJSON implements the json.Unmarshaler interface.
func (f *FlexString) UnmarshalJSON(data []byte) error {
	if len(data) == 0 || string(data) == "null" {
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = FlexString(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		*f = FlexString(n.String())
		return nil
	}

	return fmt.Errorf("FlexString: unexpected type, expected string or number")
}

// String returns the plain string value.
func (f FlexString) String() string {
	return string(f)
}

// FlexBool is a bool that also accepts "yes"/"no"/"true"/"false" strings.
type FlexBool bool

// UnmarshalJSON implements the json.Unmarshaler interface.
func (f *FlexBool) UnmarshalJSON(data []byte) error {
	if len(data) == 0 || string(data) == "null" {
		return nil
	}

	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		*f = FlexBool(b)
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("FlexBool: unexpected type, expected bool or string")
	}
	switch s {
	case "yes", "Yes", "YES", "y":
		*f = true
		return nil
	case "no", "No", "NO", "n", "":
		*f = false
		return nil
	}
	parsed, err := strconv.ParseBool(s)
	if err != nil {
		return fmt.Errorf("FlexBool: invalid bool string %q: %w", s, err)
	}
	*f = FlexBool(parsed)
	return nil
}

// Upload is one land record upload document.
type Upload struct {
	BasicInfo    BasicInfoInput     `json:"basicInfo"`
	YearSlabs    []YearSlabInput    `json:"yearSlabs,omitempty" validate:"-"`
	Nondhs       []NondhInput       `json:"nondhs" validate:"-"`
	NondhDetails []NondhDetailInput `json:"nondhDetails" validate:"-"`
}

// BasicInfoInput identifies the parcel being uploaded.
type BasicInfoInput struct {
	Area           *area.Input `json:"area,omitempty"`
	IsPromulgation *FlexBool   `json:"isPromulgation,omitempty"`
	District       string      `json:"district" validate:"required"`
	Taluka         string      `json:"taluka" validate:"required"`
	Village        string      `json:"village" validate:"required"`
	SurveyNo       FlexString  `json:"sNo,omitempty"`
	BlockNo        FlexString  `json:"blockNo,omitempty" validate:"required_without=ReSurveyNo"`
	ReSurveyNo     FlexString  `json:"reSurveyNo,omitempty"`
}

// YearSlabInput is one year slab of the parcel's history.
type YearSlabInput struct {
	Area         *area.Input `json:"area,omitempty"`
	SurveyNo     FlexString  `json:"sNo,omitempty"`
	SurveyNoType SurveyKind  `json:"sNoType,omitempty"`
	StartYear    int         `json:"startYear"`
	EndYear      int         `json:"endYear"`
}

// NondhInput is one entry of the nondhs array.
type NondhInput struct {
	DocURL       *string          `json:"docUrl,omitempty"`
	Number       FlexString       `json:"number"`
	AffectedSNos []SurveyRefInput `json:"affectedSNos"`
}

// SurveyRefInput is a survey reference as uploaded.
type SurveyRefInput struct {
	Number FlexString `json:"number"`
	Type   SurveyKind `json:"type"`
}

// NondhDetailInput is one entry of the nondhDetails array.
// Entry-level rules live in the tags and are checked record by record.
type NondhDetailInput struct {
	Area                 *area.Input          `json:"area,omitempty"`
	ShowInOutput         *FlexBool            `json:"showInOutput,omitempty"`
	Amount               *float64             `json:"amount,omitempty"`
	RestrainingOrder     *FlexBool            `json:"restrainingOrder,omitempty"`
	NondhNumber          FlexString           `json:"nondhNumber" validate:"required"`
	Type                 string               `json:"type" validate:"required,nondh_type"`
	Date                 string               `json:"date" validate:"required,len=8"`
	Vigat                string               `json:"vigat" validate:"required"`
	Status               string               `json:"status,omitempty"`
	InvalidReason        string               `json:"invalidReason,omitempty"`
	OldOwner             string               `json:"oldOwner,omitempty"`
	SDDate               string               `json:"sdDate,omitempty"`
	HukamDate            string               `json:"hukamDate,omitempty"`
	HukamType            string               `json:"hukamType,omitempty"`
	Owners               []OwnerInput         `json:"owners,omitempty" validate:"-"`
	NewOwners            []OwnerInput         `json:"newOwners,omitempty" validate:"-"`
	AffectedNondhDetails []AffectedNondhInput `json:"affectedNondhDetails,omitempty" validate:"-"`
}

// OwnerInput is one owner or new owner of a detail.
type OwnerInput struct {
	Area             *area.Input `json:"area,omitempty"`
	Name             string      `json:"name"`
	SurveyNumber     FlexString  `json:"surveyNumber,omitempty"`
	SurveyNumberType SurveyKind  `json:"surveyNumberType,omitempty"`
}

// AffectedNondhInput is an explicit cross-reference to another nondh.
type AffectedNondhInput struct {
	NondhNo       FlexString `json:"nondhNo"`
	Status        string     `json:"status"`
	InvalidReason string     `json:"invalidReason,omitempty"`
}

// OwnerCount returns the number of owner relations the detail will produce.
func (d *NondhDetailInput) OwnerCount() int {
	return len(d.Owners) + len(d.NewOwners)
}
