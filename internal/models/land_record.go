package models

import (
	"time"

	"github.com/google/uuid"
)

// LandRecord is a parcel identified by district/taluka/village plus one of
// survey, block or re-survey number. It owns every other ingested entity.
// Nullable columns use pointers to distinguish between zero values and NULL.
type LandRecord struct {
	CreatedAt      time.Time `json:"createdAt"`
	SurveyNo       *string   `json:"sNo,omitempty"`
	BlockNo        *string   `json:"blockNo,omitempty"`
	ReSurveyNo     *string   `json:"reSurveyNo,omitempty"`
	District       string    `json:"district"`
	Taluka         string    `json:"taluka"`
	Village        string    `json:"village"`
	AreaSqM        float64   `json:"areaSqm"`
	ID             uuid.UUID `json:"id"`
	IsPromulgation bool      `json:"isPromulgation"`
}

// YearSlab is a span of years during which a survey number held a given area.
type YearSlab struct {
	SurveyNo     *string    `json:"sNo,omitempty"`
	SurveyNoType SurveyKind `json:"sNoType"`
	StartYear    int        `json:"startYear"`
	EndYear      int        `json:"endYear"`
	AreaSqM      float64    `json:"areaSqm"`
	ID           uuid.UUID  `json:"id"`
	LandRecordID uuid.UUID  `json:"landRecordId"`
}

// Nondh is a numbered amendment event against a land record. Number is
// assigned by a clerk and may repeat or carry separators such as "10-35".
type Nondh struct {
	DocURL       *string     `json:"docUrl,omitempty"`
	Number       string      `json:"number"`
	AffectedSNos []SurveyRef `json:"affectedSNos"`
	ID           uuid.UUID   `json:"id"`
	LandRecordID uuid.UUID   `json:"landRecordId"`
}

// NondhDetail is the legal content of one nondh. Ordinal is the position of
// the record in the upload's nondhDetails array; the lowest ordinal per nondh
// number supplies the status used for validity resolution.
type NondhDetail struct {
	Date             *time.Time `json:"date,omitempty"`
	SDDate           *time.Time `json:"sdDate,omitempty"`
	HukamDate        *time.Time `json:"hukamDate,omitempty"`
	InvalidReason    *string    `json:"invalidReason,omitempty"`
	OldOwner         *string    `json:"oldOwner,omitempty"`
	Amount           *float64   `json:"amount,omitempty"`
	HukamType        *string    `json:"hukamType,omitempty"`
	RestrainingOrder *bool      `json:"restrainingOrder,omitempty"`
	NondhNumber      string     `json:"nondhNumber"`
	Type             NondhType  `json:"type"`
	DateRaw          string     `json:"dateRaw"`
	Vigat            string     `json:"vigat"`
	Status           Status     `json:"status"`
	AreaSqM          float64    `json:"areaSqm"`
	ID               uuid.UUID  `json:"id"`
	NondhID          uuid.UUID  `json:"nondhId"`
	Ordinal          int        `json:"ordinal"`
	ShowInOutput     bool       `json:"showInOutput"`
}

// AffectedNondh records that a detail explicitly invalidates another nondh number.
// It is kept for display; validity resolution does not read it.
type AffectedNondh struct {
	InvalidReason *string   `json:"invalidReason,omitempty"`
	NondhNo       string    `json:"nondhNo"`
	Status        Status    `json:"status"`
	ID            uuid.UUID `json:"id"`
	NondhDetailID uuid.UUID `json:"nondhDetailId"`
}

// OwnerRelation is one party's area share under a nondh detail. IsValid is
// derived from the resolved validity chain, never from the upload.
type OwnerRelation struct {
	SurveyNumber     *string    `json:"surveyNumber,omitempty"`
	SurveyNumberType SurveyKind `json:"surveyNumberType,omitempty"`
	OwnerName        string     `json:"ownerName"`
	AreaSqM          float64    `json:"areaSqm"`
	ID               uuid.UUID  `json:"id"`
	NondhDetailID    uuid.UUID  `json:"nondhDetailId"`
	IsNewOwner       bool       `json:"isNewOwner"`
	IsValid          bool       `json:"isValid"`
}
