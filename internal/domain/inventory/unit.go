package inventory

import (
	"strings"

	"github.com/shopspring/decimal"
	"github.com/stockbook/backend/internal/domain/shared"
)

// ConversionDirection tells how a secondary-unit quantity maps onto the
// primary (base) unit. A conversion rate is always defined as
// "1 primary unit = rate secondary units" (e.g., 1 BAG = 20 KGS), so
// converting a secondary quantity back to base divides by the rate when the
// secondary unit is the smaller one.
type ConversionDirection string

const (
	// DirectionMultiply multiplies the secondary quantity by the rate
	DirectionMultiply ConversionDirection = "MULTIPLY"
	// DirectionDivide divides the secondary quantity by the rate
	DirectionDivide ConversionDirection = "DIVIDE"
)

// UnitClass is the size class of a unit name
type UnitClass int

const (
	// UnitClassUnknown means the unit name matched neither list
	UnitClassUnknown UnitClass = iota
	// UnitClassSmall covers weight/volume/piece units (KG, GM, LTR, PCS, ...)
	UnitClassSmall
	// UnitClassLarge covers container units (BAG, BOX, DRUM, ...)
	UnitClassLarge
)

// smallUnits are measure units that typically appear many-per-container
var smallUnits = []string{
	"KG", "KGS", "KILOGRAM",
	"GM", "GRAM", "GMS",
	"LTR", "LITER", "ML",
	"METER", "MTR",
	"NOS", "PCS", "PIECE",
}

// largeUnits are container/packing units
var largeUnits = []string{
	"BAG", "BOX", "PACK", "PKT", "DRUM", "CAN",
	"BOTTLE", "JAR", "TIN", "BUNDLE", "ROLL",
	"CRT", "CARTON",
}

// fractionUnits are the units that may carry fractional quantities. Anything
// else is a discretely packed good and gets ceiled to whole units.
var fractionUnits = []string{"KG", "KGS", "KILOGRAM"}

// ClassifyUnit classifies a unit name by case-insensitive substring match
// against the known small and large unit lists. Small wins over large when a
// name happens to contain both.
func ClassifyUnit(name string) UnitClass {
	upper := strings.ToUpper(strings.TrimSpace(name))
	if upper == "" {
		return UnitClassUnknown
	}
	for _, u := range smallUnits {
		if strings.Contains(upper, u) {
			return UnitClassSmall
		}
	}
	for _, u := range largeUnits {
		if strings.Contains(upper, u) {
			return UnitClassLarge
		}
	}
	return UnitClassUnknown
}

// ResolveDirection determines the conversion direction from a secondary-unit
// quantity to the primary/base unit. The second return value reports whether
// the heuristic was ambiguous (neither list matched, or both units fell in
// the same class); callers log those so the data can be audited later.
//
// Decision table:
//
//	secondary SMALL, primary LARGE -> DIVIDE  (the dominant bags<->kilograms case)
//	secondary LARGE, primary SMALL -> MULTIPLY
//	anything else                  -> MULTIPLY (legacy fallback, ambiguous)
func ResolveDirection(primaryUnit, secondaryUnit string) (ConversionDirection, bool) {
	primaryClass := ClassifyUnit(primaryUnit)
	secondaryClass := ClassifyUnit(secondaryUnit)

	switch {
	case secondaryClass == UnitClassSmall && primaryClass == UnitClassLarge:
		return DirectionDivide, false
	case secondaryClass == UnitClassLarge && primaryClass == UnitClassSmall:
		return DirectionMultiply, false
	default:
		return DirectionMultiply, true
	}
}

// ToBaseQuantity converts a secondary-unit quantity to the primary/base unit
func ToBaseQuantity(qty decimal.Decimal, direction ConversionDirection, rate decimal.Decimal) (decimal.Decimal, error) {
	if rate.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, shared.NewDomainError("INVALID_CONVERSION_RATE", "Conversion rate must be positive")
	}
	if direction == DirectionDivide {
		return qty.Div(rate), nil
	}
	return qty.Mul(rate), nil
}

// FromBaseQuantity converts a primary/base quantity back to the secondary
// unit. It is the exact inverse of ToBaseQuantity for the same direction and
// rate, which is what ledger display formatting relies on.
func FromBaseQuantity(qty decimal.Decimal, direction ConversionDirection, rate decimal.Decimal) (decimal.Decimal, error) {
	if rate.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, shared.NewDomainError("INVALID_CONVERSION_RATE", "Conversion rate must be positive")
	}
	if direction == DirectionDivide {
		return qty.Mul(rate), nil
	}
	return qty.Div(rate), nil
}

// AllowsFractions returns true if quantities in the given unit may be
// fractional (weight units); all other units are manufactured and sold in
// whole numbers.
func AllowsFractions(unit string) bool {
	upper := strings.ToUpper(strings.TrimSpace(unit))
	for _, u := range fractionUnits {
		if strings.Contains(upper, u) {
			return true
		}
	}
	return false
}
