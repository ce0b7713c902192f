// Copyright (c) 2013, 2014 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package util

import (
	"math"
	"strconv"

	"github.com/pkg/errors"
)

// AmountUnit describes a method of converting an Amount to something
// other than the base unit of a tari. The value of the AmountUnit
// is the exponent component of the decadic multiple to convert from
// an amount in tari to an amount counted in units.
type AmountUnit int

// These constants define various units used when describing a tari
// monetary amount.
const (
	AmountMegaTari  AmountUnit = 6
	AmountKiloTari  AmountUnit = 3
	AmountTari      AmountUnit = 0
	AmountMilliTari AmountUnit = -3
	AmountMicroTari AmountUnit = -6
)

// String returns the unit as a string. For recognized units, the SI
// prefix is used, or "µT" for the base unit. For all unrecognized
// units, "1eN T" is returned, where N is the AmountUnit.
func (u AmountUnit) String() string {
	switch u {
	case AmountMegaTari:
		return "MT"
	case AmountKiloTari:
		return "kT"
	case AmountTari:
		return "T"
	case AmountMilliTari:
		return "mT"
	case AmountMicroTari:
		return "µT"
	default:
		return "1e" + strconv.FormatInt(int64(u), 10) + " T"
	}
}

// Amount represents the base tari monetary unit (colloquially referred to
// as a `MicroTari`). A single Amount is equal to 1e-6 of a tari.
type Amount uint64

// round converts a floating point number, which may or may not be
// representable as an integer, to the Amount integer type by rounding to
// the nearest integer. Amounts are unsigned, so anything below zero rounds
// to zero.
func round(f float64) Amount {
	if f <= 0 {
		return 0
	}
	return Amount(f + 0.5)
}

// NewAmount creates an Amount from a floating point value representing
// some value in tari. NewAmount errors if f is NaN, +-Infinity or negative,
// but does not check that the amount is within the total amount of tari
// producible as f may not refer to an amount at a single moment in time.
//
// NewAmount is specifically for converting T to µT. For creating a new
// Amount with a uint64 value which denotes a quantity of µT, do a simple
// type conversion from type uint64 to Amount.
func NewAmount(f float64) (Amount, error) {
	// The amount is invalid if it cannot be represented as an unsigned
	// integer type. This may happen if f is NaN, +-Infinity or negative.
	switch {
	case math.IsNaN(f):
		fallthrough
	case math.IsInf(f, 1):
		fallthrough
	case math.IsInf(f, -1):
		return 0, errors.New("invalid tari amount")
	case f < 0:
		return 0, errors.New("negative tari amount")
	}

	return round(f * MicroTariPerTari), nil
}

// ToUnit converts a monetary amount counted in tari base units to a
// floating point value representing an amount of tari.
func (a Amount) ToUnit(u AmountUnit) float64 {
	return float64(a) / math.Pow10(int(u+6))
}

// ToTari is the equivalent of calling ToUnit with AmountTari.
func (a Amount) ToTari() float64 {
	return a.ToUnit(AmountTari)
}

// Format formats a monetary amount counted in tari base units as a
// string for a given unit. The conversion will succeed for any unit,
// however, known units will be formatted with an appended label describing
// the units with single-letter SI prefixes.
func (a Amount) Format(u AmountUnit) string {
	units := " " + u.String()
	return strconv.FormatFloat(a.ToUnit(u), 'f', -int(u+6), 64) + units
}

// String is the equivalent of calling Format with AmountTari.
func (a Amount) String() string {
	return a.Format(AmountTari)
}

// MulF64 multiplies an Amount by a floating point value. While this is
// not an operation that must typically be done by a full node or wallet,
// it is useful for services that build on top of tari (for example,
// calculating a fee by multiplying by a percentage).
func (a Amount) MulF64(f float64) Amount {
	return round(float64(a) * f)
}
