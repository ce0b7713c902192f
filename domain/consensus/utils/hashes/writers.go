package hashes

import (
	"hash"

	"github.com/pkg/errors"
	"github.com/tari-project/tari-sub014/domain/consensus/model/externalapi"
)

// HashWriter is used to incrementally hash data without concatenating all of the data to a single buffer
// it exposes an infallible Write function for cleaner usage
type HashWriter struct {
	hash.Hash
}

// InfallibleWrite is just like write but doesn't return anything
func (h HashWriter) InfallibleWrite(p []byte) {
	// This write can never return an error, this is part of the hash.Hash interface contract.
	_, err := h.Write(p)
	if err != nil {
		panic(errors.Wrap(err, "this should never happen. hash.Hash interface promises to not return errors."))
	}
}

// Finalize returns the resulting hash
func (h HashWriter) Finalize() *externalapi.DomainHash {
	var sum [externalapi.DomainHashSize]byte
	// This should prevent `h.Sum` from allocating an output buffer, by using the DomainHash buffer. we still copy because we don't want to rely on that.
	copy(sum[:], h.Sum(sum[:0]))
	return externalapi.NewDomainHashFromByteArray(&sum)
}

// WideHashSize is the size in bytes of the digest produced by a WideHashWriter.
const WideHashSize = 64

// WideHashWriter is like HashWriter, but for the 512-bit hashes that back
// scalar derivation. The wide digest is reduced modulo the group order by
// the caller, which keeps the reduction bias negligible.
type WideHashWriter struct {
	hash.Hash
}

// InfallibleWrite is just like write but doesn't return anything
func (h WideHashWriter) InfallibleWrite(p []byte) {
	_, err := h.Write(p)
	if err != nil {
		panic(errors.Wrap(err, "this should never happen. hash.Hash interface promises to not return errors."))
	}
}

// Finalize returns the resulting wide digest
func (h WideHashWriter) Finalize() [WideHashSize]byte {
	var sum [WideHashSize]byte
	copy(sum[:], h.Sum(sum[:0]))
	return sum
}
