// Package consensusserialization implements the canonical byte encoding of
// transaction bodies and their parts. The same encoding backs database
// storage, file and hex exchange, and the preimages of consensus hashes, so
// every field written here is consensus-critical.
//
// The encoding is deliberately plain: fixed-width integers are little-endian,
// variable-length byte strings carry a little-endian uint64 length prefix,
// optional fields carry a presence byte, and collections carry an element
// count followed by the elements in order.
package consensusserialization

import (
	"io"

	"github.com/pkg/errors"
	"github.com/tari-project/tari-sub014/domain/consensus/model/externalapi"
	"github.com/tari-project/tari-sub014/util/binaryserializer"
)

const (
	// maxByteSliceLength bounds decoder allocations for a single
	// variable-length field. It is far above anything consensus rules
	// accept, so honest data never trips it.
	maxByteSliceLength = 1 << 25

	// maxCollectionLength bounds decoder allocations for a single
	// collection of serialized elements.
	maxCollectionLength = 1 << 20
)

// WriteElement writes a variable-length byte string with its length prefix.
func WriteElement(w io.Writer, element []byte) error {
	err := binaryserializer.PutUint64(w, uint64(len(element)))
	if err != nil {
		return err
	}
	_, err = w.Write(element)
	return errors.WithStack(err)
}

// ReadElement reads a variable-length byte string written by WriteElement.
func ReadElement(r io.Reader) ([]byte, error) {
	length, err := binaryserializer.Uint64(r)
	if err != nil {
		return nil, err
	}
	if length > maxByteSliceLength {
		return nil, errors.Errorf("serialized byte string length %d is larger "+
			"than the maximum of %d", length, maxByteSliceLength)
	}
	element := make([]byte, length)
	_, err = io.ReadFull(r, element)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return element, nil
}

// WriteCollectionLength writes the element count of a collection.
func WriteCollectionLength(w io.Writer, length uint64) error {
	return binaryserializer.PutUint64(w, length)
}

// ReadCollectionLength reads an element count and rejects counts too large to
// be honest.
func ReadCollectionLength(r io.Reader) (uint64, error) {
	length, err := binaryserializer.Uint64(r)
	if err != nil {
		return 0, err
	}
	if length > maxCollectionLength {
		return 0, errors.Errorf("serialized collection length %d is larger "+
			"than the maximum of %d", length, maxCollectionLength)
	}
	return length, nil
}

// WriteBool writes a bool as a single byte, 0x00 or 0x01.
func WriteBool(w io.Writer, value bool) error {
	var b uint8
	if value {
		b = 1
	}
	return binaryserializer.PutUint8(w, b)
}

// ReadBool reads a bool written by WriteBool. Any byte other than 0x00 or
// 0x01 is rejected, so bools have exactly one encoding.
func ReadBool(r io.Reader) (bool, error) {
	b, err := binaryserializer.Uint8(r)
	if err != nil {
		return false, err
	}
	switch b {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return false, errors.Errorf("invalid serialized bool value %d", b)
	}
}

func writeFixedBytes(w io.Writer, element []byte) error {
	_, err := w.Write(element)
	return errors.WithStack(err)
}

func readFixedBytes(r io.Reader, length int) ([]byte, error) {
	element := make([]byte, length)
	_, err := io.ReadFull(r, element)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return element, nil
}

// SerializeDomainHash writes a hash's raw bytes.
func SerializeDomainHash(w io.Writer, hash *externalapi.DomainHash) error {
	return writeFixedBytes(w, hash.ByteSlice())
}

// DeserializeDomainHash reads a hash's raw bytes.
func DeserializeDomainHash(r io.Reader) (*externalapi.DomainHash, error) {
	serialized, err := readFixedBytes(r, externalapi.DomainHashSize)
	if err != nil {
		return nil, err
	}
	return externalapi.NewDomainHashFromByteSlice(serialized)
}

// SerializeCommitment writes a commitment's raw bytes.
func SerializeCommitment(w io.Writer, commitment *externalapi.DomainCommitment) error {
	return writeFixedBytes(w, commitment.ByteSlice())
}

// DeserializeCommitment reads a commitment's raw bytes.
func DeserializeCommitment(r io.Reader) (*externalapi.DomainCommitment, error) {
	serialized, err := readFixedBytes(r, externalapi.DomainCommitmentSize)
	if err != nil {
		return nil, err
	}
	return externalapi.NewDomainCommitmentFromByteSlice(serialized)
}

// SerializePublicKey writes a public key's raw bytes.
func SerializePublicKey(w io.Writer, publicKey *externalapi.DomainPublicKey) error {
	return writeFixedBytes(w, publicKey.ByteSlice())
}

// DeserializePublicKey reads a public key's raw bytes.
func DeserializePublicKey(r io.Reader) (*externalapi.DomainPublicKey, error) {
	serialized, err := readFixedBytes(r, externalapi.DomainPublicKeySize)
	if err != nil {
		return nil, err
	}
	return externalapi.NewDomainPublicKeyFromByteSlice(serialized)
}

// SerializeScalar writes a scalar's raw bytes.
func SerializeScalar(w io.Writer, scalar *externalapi.DomainScalar) error {
	return writeFixedBytes(w, scalar.ByteSlice())
}

// DeserializeScalar reads a scalar's raw bytes.
func DeserializeScalar(r io.Reader) (*externalapi.DomainScalar, error) {
	serialized, err := readFixedBytes(r, externalapi.DomainScalarSize)
	if err != nil {
		return nil, err
	}
	return externalapi.NewDomainScalarFromByteSlice(serialized)
}
