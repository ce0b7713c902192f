// Package schnorr implements verification of the two signature forms carried
// by transaction bodies: plain Schnorr signatures over a public key, used by
// kernels and validator node registrations, and commitment-and-public-key
// signatures, used to bind output metadata to both the output commitment and
// the sender offset key.
//
// Challenge computation is not part of this package. Callers derive the
// challenge scalar from the appropriate domain-separated hash and pass it in,
// so the same equations serve every signature context.
package schnorr

import (
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/tari-project/tari-sub014/domain/consensus/model/externalapi"
	"github.com/tari-project/tari-sub014/domain/consensus/utils/pedersen"
)

// Verify reports whether signature is a valid Schnorr signature by publicKey
// over the given challenge: s·G == R + e·P. A false result means the equation
// does not hold; an error means one of the encodings is invalid.
func Verify(signature *externalapi.DomainSignature, publicKey *externalapi.DomainPublicKey,
	challenge *secp256k1.ModNScalar) (bool, error) {

	s, err := pedersen.ParseScalar(&signature.Signature)
	if err != nil {
		return false, err
	}
	publicNonce, err := pedersen.ParsePublicKey(&signature.PublicNonce)
	if err != nil {
		return false, err
	}
	publicKeyPoint, err := pedersen.ParsePublicKey(publicKey)
	if err != nil {
		return false, err
	}

	var left secp256k1.JacobianPoint
	secp256k1.ScalarBaseMultNonConst(s, &left)

	right := addWithScaled(publicNonce, challenge, publicKeyPoint)
	return pointsEqual(&left, right), nil
}

// VerifyComAndPub reports whether signature simultaneously proves an opening
// of commitment and knowledge of the secret key behind publicKey, for the
// given challenge:
//
//	u_a·H + u_x·G == R_a + e·C
//	u_y·G == R_p + e·P
//
// A false result means at least one equation does not hold; an error means
// one of the encodings is invalid.
func VerifyComAndPub(signature *externalapi.DomainComAndPubSignature,
	commitment *externalapi.DomainCommitment, publicKey *externalapi.DomainPublicKey,
	challenge *secp256k1.ModNScalar) (bool, error) {

	uA, err := pedersen.ParseScalar(&signature.UA)
	if err != nil {
		return false, err
	}
	uX, err := pedersen.ParseScalar(&signature.UX)
	if err != nil {
		return false, err
	}
	uY, err := pedersen.ParseScalar(&signature.UY)
	if err != nil {
		return false, err
	}

	ephemeralCommitment, err := pedersen.ParseCommitment(&signature.EphemeralCommitment)
	if err != nil {
		return false, err
	}
	ephemeralPubkey, err := pedersen.ParsePublicKey(&signature.EphemeralPubkey)
	if err != nil {
		return false, err
	}
	commitmentPoint, err := pedersen.ParseCommitment(commitment)
	if err != nil {
		return false, err
	}
	publicKeyPoint, err := pedersen.ParsePublicKey(publicKey)
	if err != nil {
		return false, err
	}

	commitmentLeft, err := pedersen.ParseCommitment(pedersen.CommitScalars(uA, uX))
	if err != nil {
		return false, err
	}
	commitmentRight := addWithScaled(ephemeralCommitment, challenge, commitmentPoint)
	if !pointsEqual(commitmentLeft, commitmentRight) {
		return false, nil
	}

	var publicKeyLeft secp256k1.JacobianPoint
	secp256k1.ScalarBaseMultNonConst(uY, &publicKeyLeft)
	publicKeyRight := addWithScaled(ephemeralPubkey, challenge, publicKeyPoint)
	return pointsEqual(&publicKeyLeft, publicKeyRight), nil
}

// Sign produces the Schnorr signature (R, s) over a precomputed challenge:
// R = r·G, s = r + e·k. The challenge is expected to already commit to R, so
// callers derive the public nonce first, hash it into the challenge, and only
// then sign.
func Sign(secretKey, nonce, challenge *secp256k1.ModNScalar) *externalapi.DomainSignature {
	s := new(secp256k1.ModNScalar).Set(challenge)
	s.Mul(secretKey).Add(nonce)
	return externalapi.NewDomainSignature(
		PublicKeyFromSecret(nonce), pedersen.SerializeScalar(s))
}

// SignComAndPub produces the commitment-and-public-key signature over a
// precomputed challenge. value and blinding open the signed commitment,
// secretKey is the key behind the signed public key, and the three nonces are
// the secrets behind the ephemeral commitment and ephemeral public key that
// the challenge already commits to.
func SignComAndPub(value, blinding, secretKey, nonceA, nonceX, nonceY,
	challenge *secp256k1.ModNScalar) *externalapi.DomainComAndPubSignature {

	uA := new(secp256k1.ModNScalar).Set(challenge)
	uA.Mul(value).Add(nonceA)
	uX := new(secp256k1.ModNScalar).Set(challenge)
	uX.Mul(blinding).Add(nonceX)
	uY := new(secp256k1.ModNScalar).Set(challenge)
	uY.Mul(secretKey).Add(nonceY)

	return &externalapi.DomainComAndPubSignature{
		EphemeralCommitment: *pedersen.CommitScalars(nonceA, nonceX),
		EphemeralPubkey:     *PublicKeyFromSecret(nonceY),
		UA:                  *pedersen.SerializeScalar(uA),
		UX:                  *pedersen.SerializeScalar(uX),
		UY:                  *pedersen.SerializeScalar(uY),
	}
}

// PublicKeyFromSecret returns the public counterpart k·G of a secret key.
func PublicKeyFromSecret(secretKey *secp256k1.ModNScalar) *externalapi.DomainPublicKey {
	var point secp256k1.JacobianPoint
	secp256k1.ScalarBaseMultNonConst(secretKey, &point)
	return pedersen.SerializePublicKey(&point)
}

// addWithScaled returns base + scale·point.
func addWithScaled(base *secp256k1.JacobianPoint, scale *secp256k1.ModNScalar,
	point *secp256k1.JacobianPoint) *secp256k1.JacobianPoint {

	var scaled, result secp256k1.JacobianPoint
	secp256k1.ScalarMultNonConst(scale, point, &scaled)
	secp256k1.AddNonConst(base, &scaled, &result)
	return &result
}

func pointsEqual(a, b *secp256k1.JacobianPoint) bool {
	if a.Z.IsZero() || b.Z.IsZero() {
		return a.Z.IsZero() && b.Z.IsZero()
	}
	affineA := *a
	affineB := *b
	affineA.ToAffine()
	affineB.ToAffine()
	return affineA.X.Equals(&affineB.X) && affineA.Y.Equals(&affineB.Y)
}
