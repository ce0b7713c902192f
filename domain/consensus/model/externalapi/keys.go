package externalapi

import (
	"bytes"
	"encoding/hex"

	"github.com/pkg/errors"
)

// DomainCommitmentSize of array used to store a compressed Pedersen commitment point.
const DomainCommitmentSize = 33

// DomainCommitment is the domain representation of a Pedersen commitment
// commit(v, k) = k*G + v*H, serialized in compressed point form.
type DomainCommitment struct {
	commitmentArray [DomainCommitmentSize]byte
}

// NewDomainCommitmentFromByteArray constructs a new DomainCommitment out of a byte array
func NewDomainCommitmentFromByteArray(commitmentBytes *[DomainCommitmentSize]byte) *DomainCommitment {
	return &DomainCommitment{
		commitmentArray: *commitmentBytes,
	}
}

// NewDomainCommitmentFromByteSlice constructs a new DomainCommitment out of a byte slice.
// Returns an error if the length of the byte slice is not exactly `DomainCommitmentSize`
func NewDomainCommitmentFromByteSlice(commitmentBytes []byte) (*DomainCommitment, error) {
	if len(commitmentBytes) != DomainCommitmentSize {
		return nil, errors.Errorf("invalid commitment size. Want: %d, got: %d",
			DomainCommitmentSize, len(commitmentBytes))
	}
	commitment := DomainCommitment{
		commitmentArray: [DomainCommitmentSize]byte{},
	}
	copy(commitment.commitmentArray[:], commitmentBytes)
	return &commitment, nil
}

// NewDomainCommitmentFromString constructs a new DomainCommitment out of a hex string
func NewDomainCommitmentFromString(commitmentString string) (*DomainCommitment, error) {
	expectedLength := DomainCommitmentSize * 2
	if len(commitmentString) != expectedLength {
		return nil, errors.Errorf("commitment string length is %d, while it should be %d",
			len(commitmentString), expectedLength)
	}

	commitmentBytes, err := hex.DecodeString(commitmentString)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return NewDomainCommitmentFromByteSlice(commitmentBytes)
}

// String returns the commitment as the hexadecimal string of its bytes.
func (commitment DomainCommitment) String() string {
	return hex.EncodeToString(commitment.commitmentArray[:])
}

// ByteArray returns the bytes in this commitment represented as a bytes array.
// The bytes are cloned, therefore it is safe to modify the resulting array.
func (commitment *DomainCommitment) ByteArray() *[DomainCommitmentSize]byte {
	arrayClone := commitment.commitmentArray
	return &arrayClone
}

// ByteSlice returns the bytes in this commitment represented as a bytes slice.
// The bytes are cloned, therefore it is safe to modify the resulting slice.
func (commitment *DomainCommitment) ByteSlice() []byte {
	return commitment.ByteArray()[:]
}

// If this doesn't compile, it means the type definition has been changed, so it's
// an indication to update Equal accordingly.
var _ DomainCommitment = DomainCommitment{commitmentArray: [DomainCommitmentSize]byte{}}

// Equal returns whether commitment equals to other
func (commitment *DomainCommitment) Equal(other *DomainCommitment) bool {
	if commitment == nil || other == nil {
		return commitment == other
	}

	return commitment.commitmentArray == other.commitmentArray
}

// Cmp compares commitment to other byte-by-byte in natural order. This is the
// ordering used for canonical output sorting.
func (commitment *DomainCommitment) Cmp(other *DomainCommitment) int {
	return bytes.Compare(commitment.commitmentArray[:], other.commitmentArray[:])
}

// DomainPublicKeySize of array used to store a compressed public key point.
const DomainPublicKeySize = 33

// DomainPublicKey is the domain representation of a curve point used as a
// public key, serialized in compressed form.
type DomainPublicKey struct {
	publicKeyArray [DomainPublicKeySize]byte
}

// NewDomainPublicKeyFromByteArray constructs a new DomainPublicKey out of a byte array
func NewDomainPublicKeyFromByteArray(publicKeyBytes *[DomainPublicKeySize]byte) *DomainPublicKey {
	return &DomainPublicKey{
		publicKeyArray: *publicKeyBytes,
	}
}

// NewDomainPublicKeyFromByteSlice constructs a new DomainPublicKey out of a byte slice.
// Returns an error if the length of the byte slice is not exactly `DomainPublicKeySize`
func NewDomainPublicKeyFromByteSlice(publicKeyBytes []byte) (*DomainPublicKey, error) {
	if len(publicKeyBytes) != DomainPublicKeySize {
		return nil, errors.Errorf("invalid public key size. Want: %d, got: %d",
			DomainPublicKeySize, len(publicKeyBytes))
	}
	publicKey := DomainPublicKey{
		publicKeyArray: [DomainPublicKeySize]byte{},
	}
	copy(publicKey.publicKeyArray[:], publicKeyBytes)
	return &publicKey, nil
}

// NewDomainPublicKeyFromString constructs a new DomainPublicKey out of a hex string
func NewDomainPublicKeyFromString(publicKeyString string) (*DomainPublicKey, error) {
	expectedLength := DomainPublicKeySize * 2
	if len(publicKeyString) != expectedLength {
		return nil, errors.Errorf("public key string length is %d, while it should be %d",
			len(publicKeyString), expectedLength)
	}

	publicKeyBytes, err := hex.DecodeString(publicKeyString)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return NewDomainPublicKeyFromByteSlice(publicKeyBytes)
}

// String returns the public key as the hexadecimal string of its bytes.
func (publicKey DomainPublicKey) String() string {
	return hex.EncodeToString(publicKey.publicKeyArray[:])
}

// ByteArray returns the bytes in this public key represented as a bytes array.
// The bytes are cloned, therefore it is safe to modify the resulting array.
func (publicKey *DomainPublicKey) ByteArray() *[DomainPublicKeySize]byte {
	arrayClone := publicKey.publicKeyArray
	return &arrayClone
}

// ByteSlice returns the bytes in this public key represented as a bytes slice.
// The bytes are cloned, therefore it is safe to modify the resulting slice.
func (publicKey *DomainPublicKey) ByteSlice() []byte {
	return publicKey.ByteArray()[:]
}

var _ DomainPublicKey = DomainPublicKey{publicKeyArray: [DomainPublicKeySize]byte{}}

// Equal returns whether publicKey equals to other
func (publicKey *DomainPublicKey) Equal(other *DomainPublicKey) bool {
	if publicKey == nil || other == nil {
		return publicKey == other
	}

	return publicKey.publicKeyArray == other.publicKeyArray
}

// Cmp compares publicKey to other byte-by-byte in natural order.
func (publicKey *DomainPublicKey) Cmp(other *DomainPublicKey) int {
	return bytes.Compare(publicKey.publicKeyArray[:], other.publicKeyArray[:])
}

// DomainScalarSize of array used to store a curve scalar.
const DomainScalarSize = 32

// DomainScalar is the domain representation of a scalar in the curve's group
// order, serialized big-endian. Secret keys and signature scalars use it.
type DomainScalar struct {
	scalarArray [DomainScalarSize]byte
}

// NewDomainScalarFromByteArray constructs a new DomainScalar out of a byte array
func NewDomainScalarFromByteArray(scalarBytes *[DomainScalarSize]byte) *DomainScalar {
	return &DomainScalar{
		scalarArray: *scalarBytes,
	}
}

// NewDomainScalarFromByteSlice constructs a new DomainScalar out of a byte slice.
// Returns an error if the length of the byte slice is not exactly `DomainScalarSize`
func NewDomainScalarFromByteSlice(scalarBytes []byte) (*DomainScalar, error) {
	if len(scalarBytes) != DomainScalarSize {
		return nil, errors.Errorf("invalid scalar size. Want: %d, got: %d",
			DomainScalarSize, len(scalarBytes))
	}
	scalar := DomainScalar{
		scalarArray: [DomainScalarSize]byte{},
	}
	copy(scalar.scalarArray[:], scalarBytes)
	return &scalar, nil
}

// NewDomainScalarFromString constructs a new DomainScalar out of a hex string
func NewDomainScalarFromString(scalarString string) (*DomainScalar, error) {
	expectedLength := DomainScalarSize * 2
	if len(scalarString) != expectedLength {
		return nil, errors.Errorf("scalar string length is %d, while it should be %d",
			len(scalarString), expectedLength)
	}

	scalarBytes, err := hex.DecodeString(scalarString)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return NewDomainScalarFromByteSlice(scalarBytes)
}

// String returns the scalar as the hexadecimal string of its bytes.
func (scalar DomainScalar) String() string {
	return hex.EncodeToString(scalar.scalarArray[:])
}

// ByteArray returns the bytes in this scalar represented as a bytes array.
// The bytes are cloned, therefore it is safe to modify the resulting array.
func (scalar *DomainScalar) ByteArray() *[DomainScalarSize]byte {
	arrayClone := scalar.scalarArray
	return &arrayClone
}

// ByteSlice returns the bytes in this scalar represented as a bytes slice.
// The bytes are cloned, therefore it is safe to modify the resulting slice.
func (scalar *DomainScalar) ByteSlice() []byte {
	return scalar.ByteArray()[:]
}

var _ DomainScalar = DomainScalar{scalarArray: [DomainScalarSize]byte{}}

// Equal returns whether scalar equals to other
func (scalar *DomainScalar) Equal(other *DomainScalar) bool {
	if scalar == nil || other == nil {
		return scalar == other
	}

	return scalar.scalarArray == other.scalarArray
}

// Cmp compares scalar to other byte-by-byte in natural order.
func (scalar *DomainScalar) Cmp(other *DomainScalar) int {
	return bytes.Compare(scalar.scalarArray[:], other.scalarArray[:])
}
