package pedersen

import (
	"encoding/hex"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/pkg/errors"
	"github.com/tari-project/tari-sub014/domain/consensus/model/externalapi"
)

// wideReductionFactor is 2^256 mod N, where N is the group order. It is used
// to fold the high limb of a 512-bit digest into the scalar field.
var wideReductionFactor = mustScalarFromHex(
	"000000000000000000000000000000014551231950b75fc4402da1732fc9bebf")

func mustScalarFromHex(scalarHex string) *secp256k1.ModNScalar {
	serialized, err := hex.DecodeString(scalarHex)
	if err != nil {
		panic(errors.Wrapf(err, "failed decoding scalar hex %s", scalarHex))
	}
	scalar := new(secp256k1.ModNScalar)
	if overflow := scalar.SetByteSlice(serialized); overflow {
		panic(errors.Errorf("scalar %s overflows the group order", scalarHex))
	}
	return scalar
}

// ScalarFromWideBytes reduces a 64-byte digest to a scalar modulo the group
// order. The digest is read as a big-endian 512-bit integer:
// e = hi·2^256 + lo ≡ hi·(2^256 mod N) + lo (mod N). Reducing from 512 bits
// keeps the bias of hash-derived scalars negligible.
func ScalarFromWideBytes(wide *[64]byte) *secp256k1.ModNScalar {
	var hi, lo secp256k1.ModNScalar
	hi.SetByteSlice(wide[:32])
	lo.SetByteSlice(wide[32:])
	return hi.Mul(wideReductionFactor).Add(&lo)
}

// ScalarFromHash reduces a 32-byte digest to a scalar modulo the group order.
// Unlike serialized signature scalars, digests are allowed to overflow the
// order; they reduce instead of being rejected.
func ScalarFromHash(hash *externalapi.DomainHash) *secp256k1.ModNScalar {
	scalar := new(secp256k1.ModNScalar)
	scalar.SetByteSlice(hash.ByteSlice())
	return scalar
}

// ParseScalar lifts a serialized scalar into the scalar field. Scalars that
// are not reduced modulo the group order are rejected, so every scalar has
// exactly one accepted encoding.
func ParseScalar(scalar *externalapi.DomainScalar) (*secp256k1.ModNScalar, error) {
	parsed := new(secp256k1.ModNScalar)
	if overflow := parsed.SetByteSlice(scalar.ByteSlice()); overflow {
		return nil, errors.Errorf("scalar %s is not reduced modulo the group order", scalar)
	}
	return parsed, nil
}

// SerializeScalar serializes a scalar field element.
func SerializeScalar(scalar *secp256k1.ModNScalar) *externalapi.DomainScalar {
	serialized := scalar.Bytes()
	return externalapi.NewDomainScalarFromByteArray(&serialized)
}
