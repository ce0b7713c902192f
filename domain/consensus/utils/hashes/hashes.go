package hashes

import (
	"encoding/binary"
	"fmt"

	"github.com/pkg/errors"
	"golang.org/x/crypto/blake2b"
)

// Every consensus hasher is seeded with a tag of the form
// "{domain}.v{version}.{label}" before any payload bytes are written to it,
// so a digest produced for one purpose can never be replayed as a digest for
// another. The tag is written length-prefixed, the same framing used for
// variable-length payload fields.
const (
	transactionHashDomain   = "com.tari.base_layer.core.transactions"
	validatorNodeHashDomain = "com.tari.base_layer.core.validator_node"
	keyManagerHashDomain    = "com.tari.base_layer.key_manager"
)

type infallibleWriter interface {
	InfallibleWrite(p []byte)
}

func writeDomainSeparationTag(writer infallibleWriter, domain string, version uint64, label string) {
	tag := fmt.Sprintf("%s.v%d.%s", domain, version, label)
	var length [8]byte
	binary.LittleEndian.PutUint64(length[:], uint64(len(tag)))
	writer.InfallibleWrite(length[:])
	writer.InfallibleWrite([]byte(tag))
}

func newDomainSeparatedHashWriter(domain string, version uint64, label string) HashWriter {
	blake, err := blake2b.New256(nil)
	if err != nil {
		panic(errors.Wrap(err, "this should never happen. blake2b.New256 without a key never fails"))
	}
	writer := HashWriter{blake}
	writeDomainSeparationTag(writer, domain, version, label)
	return writer
}

func newDomainSeparatedWideHashWriter(domain string, version uint64, label string) WideHashWriter {
	blake, err := blake2b.New512(nil)
	if err != nil {
		panic(errors.Wrap(err, "this should never happen. blake2b.New512 without a key never fails"))
	}
	writer := WideHashWriter{blake}
	writeDomainSeparationTag(writer, domain, version, label)
	return writer
}

// NewTransactionInputHashWriter returns a new HashWriter used for canonical
// transaction input hashes
func NewTransactionInputHashWriter() HashWriter {
	return newDomainSeparatedHashWriter(transactionHashDomain, 0, "transaction_input")
}

// NewTransactionOutputHashWriter returns a new HashWriter used for the output
// identity hash that inputs commit to when they spend an output
func NewTransactionOutputHashWriter() HashWriter {
	return newDomainSeparatedHashWriter(transactionHashDomain, 0, "transaction_output")
}

// NewTransactionKernelHashWriter returns a new HashWriter used for transaction
// kernel hashes
func NewTransactionKernelHashWriter() HashWriter {
	return newDomainSeparatedHashWriter(transactionHashDomain, 0, "transaction_kernel")
}

// NewKernelSignatureHashWriter returns a new HashWriter used for the challenge
// of a kernel excess signature
func NewKernelSignatureHashWriter() HashWriter {
	return newDomainSeparatedHashWriter(transactionHashDomain, 0, "kernel_signature")
}

// NewMetadataMessageHashWriter returns a new HashWriter used for the first
// stage of a metadata signature challenge, the message digest over the output
// metadata fields
func NewMetadataMessageHashWriter() HashWriter {
	return newDomainSeparatedHashWriter(transactionHashDomain, 0, "metadata_message")
}

// NewMetadataSignatureHashWriter returns a new WideHashWriter used for the
// final metadata signature challenge. The wide digest is reduced to a scalar
// by the verifier.
func NewMetadataSignatureHashWriter() WideHashWriter {
	return newDomainSeparatedWideHashWriter(transactionHashDomain, 0, "metadata_signature")
}

// NewOutputSMTHashWriter returns a new HashWriter used for the leaf values of
// the unspent output set commitment
func NewOutputSMTHashWriter() HashWriter {
	return newDomainSeparatedHashWriter(transactionHashDomain, 0, "smt_hash")
}

// NewValidatorNodeSignatureHashWriter returns a new HashWriter used for the
// challenge of a validator node registration signature
func NewValidatorNodeSignatureHashWriter() HashWriter {
	return newDomainSeparatedHashWriter(validatorNodeHashDomain, 0, "validator_node_signature")
}

// NewKeyDerivationHashWriter returns a new WideHashWriter used to derive
// child keys from wallet seed entropy
func NewKeyDerivationHashWriter() WideHashWriter {
	return newDomainSeparatedWideHashWriter(keyManagerHashDomain, 0, "derive_key")
}
