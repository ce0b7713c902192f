// Copyright (c) 2013-2014 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package util

const (
	// MicroTariPerMilliTari is the number of µT in one milli-tari (1 mT).
	MicroTariPerMilliTari = 1000

	// MicroTariPerTari is the number of µT in one tari (1 T).
	MicroTariPerTari = 1000000

	// MaxMicroTari is the µT value of the full twenty-one billion tari
	// emission, and so the maximum amount a single output can hold.
	MaxMicroTari = 21000000000 * MicroTariPerTari
)
