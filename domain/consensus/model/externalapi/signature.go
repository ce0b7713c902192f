package externalapi

import (
	"fmt"
)

// DomainSignature is a Schnorr signature (R, s): a public nonce point and a
// signature scalar. Verification checks s*G == R + e*P for the challenge e.
type DomainSignature struct {
	PublicNonce DomainPublicKey
	Signature   DomainScalar
}

// NewDomainSignature constructs a DomainSignature from its parts.
func NewDomainSignature(publicNonce *DomainPublicKey, signature *DomainScalar) *DomainSignature {
	return &DomainSignature{
		PublicNonce: *publicNonce,
		Signature:   *signature,
	}
}

// If this doesn't compile, it means the type definition has been changed, so it's
// an indication to update Equal, Cmp and Clone accordingly.
var _ = DomainSignature{PublicNonce: DomainPublicKey{}, Signature: DomainScalar{}}

// Equal returns whether signature equals to other
func (signature *DomainSignature) Equal(other *DomainSignature) bool {
	if signature == nil || other == nil {
		return signature == other
	}

	return signature.PublicNonce.Equal(&other.PublicNonce) &&
		signature.Signature.Equal(&other.Signature)
}

// Cmp compares signature to other, nonce bytes first and signature scalar
// bytes second. This is the total order used for canonical kernel sorting.
func (signature *DomainSignature) Cmp(other *DomainSignature) int {
	if cmp := signature.PublicNonce.Cmp(&other.PublicNonce); cmp != 0 {
		return cmp
	}
	return signature.Signature.Cmp(&other.Signature)
}

// Clone returns a clone of signature
func (signature *DomainSignature) Clone() *DomainSignature {
	signatureClone := *signature
	return &signatureClone
}

func (signature DomainSignature) String() string {
	return fmt.Sprintf("nonce: %s, sig: %s", signature.PublicNonce, signature.Signature)
}

// DomainComAndPubSignature is a composite commitment-and-public-key signature
// (ephemeral commitment R_a, ephemeral pubkey R_p, scalars u_a, u_x, u_y).
// It proves knowledge of a commitment opening and of a secret key at once:
//
//	u_a*H + u_x*G == R_a + e*C
//	u_y*G         == R_p + e*P
type DomainComAndPubSignature struct {
	EphemeralCommitment DomainCommitment
	EphemeralPubkey     DomainPublicKey
	UA                  DomainScalar
	UX                  DomainScalar
	UY                  DomainScalar
}

// If this doesn't compile, it means the type definition has been changed, so it's
// an indication to update Equal, Cmp and Clone accordingly.
var _ = DomainComAndPubSignature{EphemeralCommitment: DomainCommitment{},
	EphemeralPubkey: DomainPublicKey{}, UA: DomainScalar{}, UX: DomainScalar{}, UY: DomainScalar{}}

// Equal returns whether signature equals to other
func (signature *DomainComAndPubSignature) Equal(other *DomainComAndPubSignature) bool {
	if signature == nil || other == nil {
		return signature == other
	}

	return signature.EphemeralCommitment.Equal(&other.EphemeralCommitment) &&
		signature.EphemeralPubkey.Equal(&other.EphemeralPubkey) &&
		signature.UA.Equal(&other.UA) &&
		signature.UX.Equal(&other.UX) &&
		signature.UY.Equal(&other.UY)
}

// Cmp compares signature to other field-by-field in declaration order.
// This is part of the total order used for canonical input sorting.
func (signature *DomainComAndPubSignature) Cmp(other *DomainComAndPubSignature) int {
	if cmp := signature.EphemeralCommitment.Cmp(&other.EphemeralCommitment); cmp != 0 {
		return cmp
	}
	if cmp := signature.EphemeralPubkey.Cmp(&other.EphemeralPubkey); cmp != 0 {
		return cmp
	}
	if cmp := signature.UA.Cmp(&other.UA); cmp != 0 {
		return cmp
	}
	if cmp := signature.UX.Cmp(&other.UX); cmp != 0 {
		return cmp
	}
	return signature.UY.Cmp(&other.UY)
}

// Clone returns a clone of signature
func (signature *DomainComAndPubSignature) Clone() *DomainComAndPubSignature {
	signatureClone := *signature
	return &signatureClone
}
