package pedersen

import (
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/pkg/errors"
	"github.com/tari-project/tari-sub014/domain/consensus/model/externalapi"
)

// ParseCommitment lifts a serialized commitment to a curve point. An all-zero
// commitment parses as the point at infinity.
func ParseCommitment(commitment *externalapi.DomainCommitment) (*secp256k1.JacobianPoint, error) {
	point, err := parsePoint(commitment.ByteSlice())
	if err != nil {
		return nil, errors.Wrapf(err, "invalid commitment %s", commitment)
	}
	return point, nil
}

// SerializeCommitment serializes a curve point as a commitment. The point at
// infinity serializes as 33 zero bytes.
func SerializeCommitment(point *secp256k1.JacobianPoint) *externalapi.DomainCommitment {
	commitment, err := externalapi.NewDomainCommitmentFromByteSlice(serializePoint(point))
	if err != nil {
		panic(errors.Wrap(err, "this should never happen. serialized points are always commitment-sized"))
	}
	return commitment
}

// ParsePublicKey lifts a serialized public key to a curve point, under the
// same all-zero-is-infinity convention as commitments. Signature equations
// are checked over the group, where the identity is a legitimate element even
// though honest signers never produce it.
func ParsePublicKey(publicKey *externalapi.DomainPublicKey) (*secp256k1.JacobianPoint, error) {
	point, err := parsePoint(publicKey.ByteSlice())
	if err != nil {
		return nil, errors.Wrapf(err, "invalid public key %s", publicKey)
	}
	return point, nil
}

// SerializePublicKey serializes a curve point as a public key.
func SerializePublicKey(point *secp256k1.JacobianPoint) *externalapi.DomainPublicKey {
	publicKey, err := externalapi.NewDomainPublicKeyFromByteSlice(serializePoint(point))
	if err != nil {
		panic(errors.Wrap(err, "this should never happen. serialized points are always public-key-sized"))
	}
	return publicKey
}

func parsePoint(serialized []byte) (*secp256k1.JacobianPoint, error) {
	if isAllZero(serialized) {
		return new(secp256k1.JacobianPoint), nil
	}
	pubKey, err := secp256k1.ParsePubKey(serialized)
	if err != nil {
		return nil, err
	}
	var point secp256k1.JacobianPoint
	pubKey.AsJacobian(&point)
	return &point, nil
}

func serializePoint(point *secp256k1.JacobianPoint) []byte {
	if point.Z.IsZero() {
		return make([]byte, externalapi.DomainCommitmentSize)
	}
	affine := *point
	affine.ToAffine()
	return secp256k1.NewPublicKey(&affine.X, &affine.Y).SerializeCompressed()
}

func isAllZero(serialized []byte) bool {
	for _, b := range serialized {
		if b != 0 {
			return false
		}
	}
	return true
}
