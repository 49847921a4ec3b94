// Package area converts land areas between square meters, acres and guntha.
package area

import "math"

// Unit is an area unit tag as it appears in uploads and on persisted rows.
type Unit string

const (
	UnitSqM    Unit = "sq_m"
	UnitAcre   Unit = "acre"
	UnitGuntha Unit = "guntha"
)

// Conversion constants
const (
	SqMPerAcre    = 4046.86
	SqMPerGuntha  = 101.17
	GunthaPerAcre = 40
)

// Input is an uploaded area. Either SqM is set, or the Acre/Guntha pair.
type Input struct {
	SqM    *float64 `json:"sqm,omitempty"`
	Acre   *float64 `json:"acre,omitempty"`
	Guntha *float64 `json:"guntha,omitempty"`
}

// ToSquareMeters converts value in unit to square meters.
// An unknown unit is treated as square meters and the value is returned unchanged.
func ToSquareMeters(value float64, unit Unit) float64 {
	switch unit {
	case UnitAcre:
		return value * SqMPerAcre
	case UnitGuntha:
		return value * SqMPerGuntha
	default:
		return value
	}
}

// FromSquareMeters converts a square meter value into unit.
func FromSquareMeters(sqm float64, unit Unit) float64 {
	switch unit {
	case UnitAcre:
		return sqm / SqMPerAcre
	case UnitGuntha:
		return sqm / SqMPerGuntha
	default:
		return sqm
	}
}

// Parse normalizes an uploaded area to a single square meter value.
// A direct sqm value wins over an acre/guntha pair. Nil input yields zero.
func Parse(in *Input) (float64, Unit) {
	if in == nil {
		return 0, UnitSqM
	}
	if in.SqM != nil {
		return *in.SqM, UnitSqM
	}

	var sqm float64
	if in.Acre != nil {
		sqm += ToSquareMeters(*in.Acre, UnitAcre)
	}
	if in.Guntha != nil {
		sqm += ToSquareMeters(*in.Guntha, UnitGuntha)
	}
	return sqm, UnitSqM
}

// Split breaks a square meter value into whole acres and remaining guntha.
func Split(sqm float64) (acre int, guntha float64) {
	totalGuntha := sqm / SqMPerGuntha
	acre = int(totalGuntha) / GunthaPerAcre
	guntha = Round2(totalGuntha - float64(acre*GunthaPerAcre))
	return acre, guntha
}

// Round2 rounds to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// ParseUnit maps a free-form unit string to a Unit. Unrecognized values map to UnitSqM.
func ParseUnit(s string) Unit {
	switch Unit(s) {
	case UnitAcre, UnitGuntha:
		return Unit(s)
	default:
		return UnitSqM
	}
}
