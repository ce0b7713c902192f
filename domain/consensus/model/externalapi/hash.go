package externalapi

import (
	"bytes"
	"encoding/hex"

	"github.com/pkg/errors"
)

// DomainHashSize is the size, in bytes, of every hash in the domain.
const DomainHashSize = 32

// DomainHash is a 32-byte digest as it appears in consensus data
// structures. It is immutable once constructed.
type DomainHash struct {
	hashArray [DomainHashSize]byte
}

// NewDomainHashFromByteArray wraps a byte array in a DomainHash.
func NewDomainHashFromByteArray(hashBytes *[DomainHashSize]byte) *DomainHash {
	return &DomainHash{
		hashArray: *hashBytes,
	}
}

// NewDomainHashFromByteSlice copies a byte slice of length DomainHashSize
// into a DomainHash, and errors on any other length.
func NewDomainHashFromByteSlice(hashBytes []byte) (*DomainHash, error) {
	if len(hashBytes) != DomainHashSize {
		return nil, errors.Errorf("invalid hash size. Want: %d, got: %d",
			DomainHashSize, len(hashBytes))
	}
	var domainHash DomainHash
	copy(domainHash.hashArray[:], hashBytes)
	return &domainHash, nil
}

// NewDomainHashFromString parses a hex string of length DomainHashSize*2
// into a DomainHash.
func NewDomainHashFromString(hashString string) (*DomainHash, error) {
	expectedLength := DomainHashSize * 2
	if len(hashString) != expectedLength {
		return nil, errors.Errorf("hash string length is %d, while it should be %d",
			len(hashString), expectedLength)
	}

	hashBytes, err := hex.DecodeString(hashString)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return NewDomainHashFromByteSlice(hashBytes)
}

// String returns the hash encoded as a hexadecimal string.
func (hash DomainHash) String() string {
	return hex.EncodeToString(hash.hashArray[:])
}

// ByteArray returns a copy of the hash bytes as an array. Modifying the
// returned array does not affect the hash.
func (hash *DomainHash) ByteArray() *[DomainHashSize]byte {
	arrayClone := hash.hashArray
	return &arrayClone
}

// ByteSlice returns a copy of the hash bytes as a slice. Modifying the
// returned slice does not affect the hash.
func (hash *DomainHash) ByteSlice() []byte {
	return hash.ByteArray()[:]
}

// If this doesn't compile, it means the type definition has been changed, so it's
// an indication to update Equal and Clone accordingly.
var _ DomainHash = DomainHash{hashArray: [DomainHashSize]byte{}}

// Equal reports whether hash and other hold the same bytes. A nil hash is
// equal only to another nil hash.
func (hash *DomainHash) Equal(other *DomainHash) bool {
	if hash == nil || other == nil {
		return hash == other
	}

	return hash.hashArray == other.hashArray
}

// Cmp compares hash to other byte-by-byte in natural order and returns
//
//	-1 if hash <  other
//	 0 if hash == other
//	+1 if hash >  other
//
// This is the ordering used for canonical body sorting.
func (hash *DomainHash) Cmp(other *DomainHash) int {
	return bytes.Compare(hash.hashArray[:], other.hashArray[:])
}

// Less returns true iff hash is less than other in natural byte order.
func (hash *DomainHash) Less(other *DomainHash) bool {
	return hash.Cmp(other) < 0
}

// CloneHashes copies a hash slice. The hashes themselves are shared, which
// is safe since DomainHash is read-only.
func CloneHashes(hashes []*DomainHash) []*DomainHash {
	clone := make([]*DomainHash, len(hashes))
	copy(clone, hashes)
	return clone
}

// HashesEqual reports whether a and b hold equal hashes in the same order.
func HashesEqual(a, b []*DomainHash) bool {
	if len(a) != len(b) {
		return false
	}

	for i, hash := range a {
		if !hash.Equal(b[i]) {
			return false
		}
	}
	return true
}
