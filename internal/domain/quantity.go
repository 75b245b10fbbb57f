package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Unit is a measurement unit for seed quantities
type Unit string

const (
	UnitGram     Unit = "g"
	UnitKilogram Unit = "kg"
	UnitOunce    Unit = "oz"
	UnitPound    Unit = "lb"
)

// gramsPerUnit is the total conversion table to the canonical unit (grams).
// Units absent from this table are rejected, never guessed.
var gramsPerUnit = map[Unit]decimal.Decimal{
	UnitGram:     decimal.NewFromInt(1),
	UnitKilogram: decimal.NewFromInt(1000),
	UnitOunce:    decimal.RequireFromString("28.3495"),
	UnitPound:    decimal.RequireFromString("453.592"),
}

// Quantity is an amount paired with its unit. All ledger arithmetic
// happens on the canonical-gram form; decimal values keep repeated
// deductions from drifting the way float accumulation would.
type Quantity struct {
	Value decimal.Decimal `json:"value"`
	Unit  Unit            `json:"unit"`
}

// NewQuantity builds a Quantity from a float value
func NewQuantity(value float64, unit Unit) Quantity {
	return Quantity{Value: decimal.NewFromFloat(value), Unit: unit}
}

// Grams converts the quantity to canonical grams.
// Returns ErrUnknownUnit for units outside the conversion table.
func (q Quantity) Grams() (decimal.Decimal, error) {
	factor, ok := gramsPerUnit[q.Unit]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrUnknownUnit, q.Unit)
	}
	return q.Value.Mul(factor), nil
}

// Convert converts the quantity to the target unit.
// Returns ErrUnknownUnit when either side of the pair is unsupported.
func (q Quantity) Convert(to Unit) (Quantity, error) {
	grams, err := q.Grams()
	if err != nil {
		return Quantity{}, err
	}
	factor, ok := gramsPerUnit[to]
	if !ok {
		return Quantity{}, fmt.Errorf("%w: %q", ErrUnknownUnit, to)
	}
	return Quantity{Value: grams.Div(factor), Unit: to}, nil
}
