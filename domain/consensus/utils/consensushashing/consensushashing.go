// Package consensushashing computes the consensus hashes and signature
// challenges of transaction body parts. Each digest is produced by a
// domain-separated hasher, and every multi-field preimage is framed by the
// canonical serialization rules, so two distinct structures can never share a
// preimage.
package consensushashing

import (
	"github.com/pkg/errors"
	"github.com/tari-project/tari-sub014/domain/consensus/model/externalapi"
	"github.com/tari-project/tari-sub014/domain/consensus/utils/consensusserialization"
	"github.com/tari-project/tari-sub014/domain/consensus/utils/hashes"
	"github.com/tari-project/tari-sub014/util/binaryserializer"
)

// OutputHash returns the output's identity hash, the value an input commits
// to when it spends the output. It deliberately covers only the fields that
// define which output is being spent: version, features, commitment, script
// and covenant. Witness data such as the metadata signature is excluded, so
// the hash of an output never changes after it is created.
func OutputHash(output *externalapi.DomainTransactionOutput) *externalapi.DomainHash {
	return OutputHashFromFields(output.Version, output.Features, &output.Commitment,
		output.Script, output.Covenant)
}

// OutputHashFromFields returns the output identity hash for the given fields.
// Inputs in full form use this to recompute the hash of the output they spend.
func OutputHashFromFields(version uint8, features *externalapi.OutputFeatures,
	commitment *externalapi.DomainCommitment, script []byte, covenant []byte) *externalapi.DomainHash {

	writer := hashes.NewTransactionOutputHashWriter()
	err := binaryserializer.PutUint8(writer, version)
	if err == nil {
		err = consensusserialization.SerializeOutputFeatures(writer, features)
	}
	if err == nil {
		err = consensusserialization.SerializeCommitment(writer, commitment)
	}
	if err == nil {
		err = consensusserialization.WriteElement(writer, script)
	}
	if err == nil {
		err = consensusserialization.WriteElement(writer, covenant)
	}
	if err != nil {
		panic(errors.Wrap(err, "this should never happen. Writing to a hash never fails"))
	}
	return writer.Finalize()
}

// InputOutputHash returns the hash of the output the input spends: the stored
// hash for an input in compact form, or the recomputed output identity hash
// for an input in full form. The two agree whenever the full form is an
// honest resolution of the compact form.
func InputOutputHash(input *externalapi.DomainTransactionInput) *externalapi.DomainHash {
	if input.IsCompact() {
		return input.SpentOutputHash()
	}
	outputData, err := input.SpentOutputData()
	if err != nil {
		panic(errors.Wrap(err, "this should never happen. The input is not compact"))
	}
	return OutputHashFromFields(outputData.Version, outputData.Features,
		&outputData.Commitment, outputData.Script, outputData.Covenant)
}

// InputCanonicalHash returns the canonical hash of an input in full form,
// covering the spent output's identifying fields together with the input's
// own witness data. Inputs in compact form have no canonical hash; resolving
// them comes first.
func InputCanonicalHash(input *externalapi.DomainTransactionInput) (*externalapi.DomainHash, error) {
	outputData, err := input.SpentOutputData()
	if err != nil {
		return nil, err
	}

	writer := hashes.NewTransactionInputHashWriter()
	err = binaryserializer.PutUint8(writer, input.Version)
	if err == nil {
		err = consensusserialization.SerializeOutputFeatures(writer, outputData.Features)
	}
	if err == nil {
		err = consensusserialization.SerializeCommitment(writer, &outputData.Commitment)
	}
	if err == nil {
		err = consensusserialization.WriteElement(writer, outputData.Script)
	}
	if err == nil {
		err = consensusserialization.SerializePublicKey(writer, &outputData.SenderOffsetPublicKey)
	}
	if err == nil {
		err = consensusserialization.SerializeComAndPubSignature(writer, &input.ScriptSignature)
	}
	if err == nil {
		err = consensusserialization.WriteElement(writer, input.InputData)
	}
	if err == nil {
		err = consensusserialization.WriteElement(writer, outputData.Covenant)
	}
	if err != nil {
		panic(errors.Wrap(err, "this should never happen. Writing to a hash never fails"))
	}
	return writer.Finalize(), nil
}

// KernelHash returns the kernel's hash over all of its fields.
func KernelHash(kernel *externalapi.DomainTransactionKernel) *externalapi.DomainHash {
	writer := hashes.NewTransactionKernelHashWriter()
	err := binaryserializer.PutUint8(writer, kernel.Version)
	if err == nil {
		err = binaryserializer.PutUint8(writer, uint8(kernel.Features))
	}
	if err == nil {
		err = binaryserializer.PutUint64(writer, kernel.Fee)
	}
	if err == nil {
		err = binaryserializer.PutUint64(writer, kernel.LockHeight)
	}
	if err == nil {
		err = consensusserialization.SerializeCommitment(writer, &kernel.Excess)
	}
	if err == nil {
		err = consensusserialization.SerializeSignature(writer, &kernel.ExcessSig)
	}
	if err == nil {
		err = consensusserialization.WriteBool(writer, kernel.BurnCommitment != nil)
	}
	if err == nil && kernel.BurnCommitment != nil {
		err = consensusserialization.SerializeCommitment(writer, kernel.BurnCommitment)
	}
	if err != nil {
		panic(errors.Wrap(err, "this should never happen. Writing to a hash never fails"))
	}
	return writer.Finalize()
}

// KernelSignatureChallenge returns the challenge the kernel's excess
// signature is verified against. The challenge binds the signature's own
// public nonce, the excess, and every kernel field the signature asserts,
// so none of them can be altered after signing.
func KernelSignatureChallenge(kernel *externalapi.DomainTransactionKernel) *externalapi.DomainHash {
	return KernelSignatureChallengeFromParts(kernel.Version, &kernel.ExcessSig.PublicNonce,
		&kernel.Excess, kernel.Fee, kernel.LockHeight, kernel.Features, kernel.BurnCommitment)
}

// KernelSignatureChallengeFromParts returns the kernel signature challenge for
// the given parts. Signers use this form before the kernel exists.
func KernelSignatureChallengeFromParts(version uint8, publicNonce *externalapi.DomainPublicKey,
	excess *externalapi.DomainCommitment, fee uint64, lockHeight uint64,
	features externalapi.KernelFeatures, burnCommitment *externalapi.DomainCommitment) *externalapi.DomainHash {

	writer := hashes.NewKernelSignatureHashWriter()
	err := binaryserializer.PutUint8(writer, version)
	if err == nil {
		err = consensusserialization.SerializePublicKey(writer, publicNonce)
	}
	if err == nil {
		err = consensusserialization.SerializeCommitment(writer, excess)
	}
	if err == nil {
		err = binaryserializer.PutUint64(writer, fee)
	}
	if err == nil {
		err = binaryserializer.PutUint64(writer, lockHeight)
	}
	if err == nil {
		err = binaryserializer.PutUint8(writer, uint8(features))
	}
	if err == nil {
		err = consensusserialization.WriteBool(writer, burnCommitment != nil)
	}
	if err == nil && burnCommitment != nil {
		err = consensusserialization.SerializeCommitment(writer, burnCommitment)
	}
	if err != nil {
		panic(errors.Wrap(err, "this should never happen. Writing to a hash never fails"))
	}
	return writer.Finalize()
}

// MetadataSignatureMessage returns the first stage of the metadata signature
// challenge: a digest over the output's metadata fields.
func MetadataSignatureMessage(output *externalapi.DomainTransactionOutput) *externalapi.DomainHash {
	return MetadataSignatureMessageFromParts(output.Version, output.Script, output.Features,
		output.Covenant, output.EncryptedData, output.MinimumValuePromise)
}

// MetadataSignatureMessageFromParts returns the metadata signature message for
// the given parts.
func MetadataSignatureMessageFromParts(version uint8, script []byte,
	features *externalapi.OutputFeatures, covenant []byte, encryptedData []byte,
	minimumValuePromise uint64) *externalapi.DomainHash {

	writer := hashes.NewMetadataMessageHashWriter()
	err := binaryserializer.PutUint8(writer, version)
	if err == nil {
		err = consensusserialization.WriteElement(writer, script)
	}
	if err == nil {
		err = consensusserialization.SerializeOutputFeatures(writer, features)
	}
	if err == nil {
		err = consensusserialization.WriteElement(writer, covenant)
	}
	if err == nil {
		err = consensusserialization.WriteElement(writer, encryptedData)
	}
	if err == nil {
		err = binaryserializer.PutUint64(writer, minimumValuePromise)
	}
	if err != nil {
		panic(errors.Wrap(err, "this should never happen. Writing to a hash never fails"))
	}
	return writer.Finalize()
}

// MetadataSignatureChallenge returns the final metadata signature challenge of
// an output as a wide digest. Verifiers reduce it to a scalar.
func MetadataSignatureChallenge(output *externalapi.DomainTransactionOutput) [hashes.WideHashSize]byte {
	message := MetadataSignatureMessage(output)
	return MetadataSignatureChallengeFromParts(&output.MetadataSignature.EphemeralPubkey,
		&output.MetadataSignature.EphemeralCommitment, &output.SenderOffsetPublicKey,
		&output.Commitment, message)
}

// MetadataSignatureChallengeFromParts returns the metadata signature challenge
// for the given parts.
func MetadataSignatureChallengeFromParts(ephemeralPubkey *externalapi.DomainPublicKey,
	ephemeralCommitment *externalapi.DomainCommitment,
	senderOffsetPublicKey *externalapi.DomainPublicKey,
	commitment *externalapi.DomainCommitment,
	message *externalapi.DomainHash) [hashes.WideHashSize]byte {

	writer := hashes.NewMetadataSignatureHashWriter()
	err := consensusserialization.SerializePublicKey(writer, ephemeralPubkey)
	if err == nil {
		err = consensusserialization.SerializeCommitment(writer, ephemeralCommitment)
	}
	if err == nil {
		err = consensusserialization.SerializePublicKey(writer, senderOffsetPublicKey)
	}
	if err == nil {
		err = consensusserialization.SerializeCommitment(writer, commitment)
	}
	if err == nil {
		err = consensusserialization.SerializeDomainHash(writer, message)
	}
	if err != nil {
		panic(errors.Wrap(err, "this should never happen. Writing to a hash never fails"))
	}
	return writer.Finalize()
}

// ValidatorNodeSignatureChallenge returns the challenge a validator node
// registration signature is verified against.
func ValidatorNodeSignatureChallenge(publicKey *externalapi.DomainPublicKey,
	publicNonce *externalapi.DomainPublicKey, message []byte) *externalapi.DomainHash {

	writer := hashes.NewValidatorNodeSignatureHashWriter()
	err := consensusserialization.SerializePublicKey(writer, publicKey)
	if err == nil {
		err = consensusserialization.SerializePublicKey(writer, publicNonce)
	}
	if err == nil {
		err = consensusserialization.WriteElement(writer, message)
	}
	if err != nil {
		panic(errors.Wrap(err, "this should never happen. Writing to a hash never fails"))
	}
	return writer.Finalize()
}

// OutputSMTValueHash returns the leaf value recorded in the unspent output
// set commitment for an output: a digest binding the output's hash to the
// height it was mined at.
func OutputSMTValueHash(outputHash *externalapi.DomainHash, minedHeight uint64) *externalapi.DomainHash {
	writer := hashes.NewOutputSMTHashWriter()
	err := consensusserialization.SerializeDomainHash(writer, outputHash)
	if err == nil {
		err = binaryserializer.PutUint64(writer, minedHeight)
	}
	if err != nil {
		panic(errors.Wrap(err, "this should never happen. Writing to a hash never fails"))
	}
	return writer.Finalize()
}
