// Package pedersen implements the homomorphic value commitments that the
// balance rules are expressed in, along with the point and scalar plumbing
// shared by the signature checks.
//
// A commitment to value v with blinding factor k is k·G + v·H, where G is the
// secp256k1 base point and H is a second generator with unknowable discrete
// log relative to G. Commitments serialize as 33-byte compressed points, with
// one extension: the point at infinity, which compressed SEC encoding cannot
// represent, serializes as 33 zero bytes. The zero commitment shows up
// whenever sums cancel, so it has to round-trip.
package pedersen

import (
	"encoding/binary"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/tari-project/tari-sub014/domain/consensus/model/externalapi"
	"golang.org/x/crypto/blake2b"
)

const secondGeneratorSeed = "tari_pedersen_value_generator"

// secondGenerator is H. It is derived by hashing the compressed encoding of
// the base point under a fixed seed and lifting the digest to a curve point,
// so its discrete log with respect to G is unknown to everyone.
var secondGenerator = deriveSecondGenerator()

func deriveSecondGenerator() *secp256k1.JacobianPoint {
	one := new(secp256k1.ModNScalar).SetInt(1)
	var base secp256k1.JacobianPoint
	secp256k1.ScalarBaseMultNonConst(one, &base)
	base.ToAffine()
	baseSerialized := secp256k1.NewPublicKey(&base.X, &base.Y).SerializeCompressed()

	preimage := make([]byte, 0, len(secondGeneratorSeed)+len(baseSerialized)+1)
	preimage = append(preimage, secondGeneratorSeed...)
	preimage = append(preimage, baseSerialized...)
	preimage = append(preimage, 0)
	counterIndex := len(preimage) - 1

	candidate := make([]byte, 1+32)
	candidate[0] = secp256k1.PubKeyFormatCompressedEven
	for counter := 0; counter < 256; counter++ {
		preimage[counterIndex] = byte(counter)
		digest := blake2b.Sum256(preimage)
		copy(candidate[1:], digest[:])
		pubKey, err := secp256k1.ParsePubKey(candidate)
		if err != nil {
			// The digest is not the x coordinate of a curve point. Roughly
			// half of all digests are, so a few iterations always suffice.
			continue
		}
		var point secp256k1.JacobianPoint
		pubKey.AsJacobian(&point)
		return &point
	}
	panic("no valid curve point found for the value generator in 256 attempts")
}

// Commit returns the commitment blinding·G + value·H.
func Commit(value uint64, blinding *secp256k1.ModNScalar) *externalapi.DomainCommitment {
	return CommitScalars(valueScalar(value), blinding)
}

// CommitValue returns the commitment value·H, a commitment with a zero
// blinding factor. This is the form consensus uses to bind public amounts
// such as the block reward into balance equations.
func CommitValue(value uint64) *externalapi.DomainCommitment {
	var valuePoint secp256k1.JacobianPoint
	secp256k1.ScalarMultNonConst(valueScalar(value), secondGenerator, &valuePoint)
	return SerializeCommitment(&valuePoint)
}

// CommitScalars returns blinding·G + value·H for a scalar-valued amount.
// Signature ephemerals use this form, where the value term is a nonce rather
// than an amount of money.
func CommitScalars(value, blinding *secp256k1.ModNScalar) *externalapi.DomainCommitment {
	var blindingPoint, valuePoint, result secp256k1.JacobianPoint
	secp256k1.ScalarBaseMultNonConst(blinding, &blindingPoint)
	secp256k1.ScalarMultNonConst(value, secondGenerator, &valuePoint)
	secp256k1.AddNonConst(&blindingPoint, &valuePoint, &result)
	return SerializeCommitment(&result)
}

func valueScalar(value uint64) *secp256k1.ModNScalar {
	var valueBytes [32]byte
	binary.BigEndian.PutUint64(valueBytes[24:], value)
	scalar := new(secp256k1.ModNScalar)
	scalar.SetBytes(&valueBytes)
	return scalar
}

// Add returns the commitment a + b.
func Add(a, b *externalapi.DomainCommitment) (*externalapi.DomainCommitment, error) {
	pointA, err := ParseCommitment(a)
	if err != nil {
		return nil, err
	}
	pointB, err := ParseCommitment(b)
	if err != nil {
		return nil, err
	}
	var result secp256k1.JacobianPoint
	secp256k1.AddNonConst(pointA, pointB, &result)
	return SerializeCommitment(&result), nil
}

// Sub returns the commitment a - b.
func Sub(a, b *externalapi.DomainCommitment) (*externalapi.DomainCommitment, error) {
	pointA, err := ParseCommitment(a)
	if err != nil {
		return nil, err
	}
	pointB, err := ParseCommitment(b)
	if err != nil {
		return nil, err
	}
	negatePoint(pointB)
	var result secp256k1.JacobianPoint
	secp256k1.AddNonConst(pointA, pointB, &result)
	return SerializeCommitment(&result), nil
}

// Sum returns the sum of all the given commitments. The sum of no
// commitments is the zero commitment.
func Sum(commitments ...*externalapi.DomainCommitment) (*externalapi.DomainCommitment, error) {
	var sum secp256k1.JacobianPoint
	for _, commitment := range commitments {
		point, err := ParseCommitment(commitment)
		if err != nil {
			return nil, err
		}
		var next secp256k1.JacobianPoint
		secp256k1.AddNonConst(&sum, point, &next)
		sum = next
	}
	return SerializeCommitment(&sum), nil
}

func negatePoint(point *secp256k1.JacobianPoint) {
	point.Y.Negate(1).Normalize()
}
