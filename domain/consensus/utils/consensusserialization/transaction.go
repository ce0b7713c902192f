package consensusserialization

import (
	"io"

	"github.com/pkg/errors"
	"github.com/tari-project/tari-sub014/domain/consensus/model/externalapi"
	"github.com/tari-project/tari-sub014/domain/consensus/utils/tariscript"
	"github.com/tari-project/tari-sub014/util/binaryserializer"
)

// Spent output form tags separating the two encodings of a transaction input.
const (
	spentOutputCompactTag = uint8(0)
	spentOutputFullTag    = uint8(1)
)

// SerializeOutputFeatures writes the serialized form of output features.
func SerializeOutputFeatures(w io.Writer, features *externalapi.OutputFeatures) error {
	err := binaryserializer.PutUint8(w, features.Version)
	if err != nil {
		return err
	}
	err = binaryserializer.PutUint8(w, uint8(features.OutputType))
	if err != nil {
		return err
	}
	err = binaryserializer.PutUint64(w, features.Maturity)
	if err != nil {
		return err
	}
	err = WriteElement(w, features.CoinbaseExtra)
	if err != nil {
		return err
	}
	err = binaryserializer.PutUint8(w, uint8(features.RangeProofType))
	if err != nil {
		return err
	}
	err = WriteBool(w, features.ValidatorNodeRegistration != nil)
	if err != nil {
		return err
	}
	if features.ValidatorNodeRegistration != nil {
		err = SerializePublicKey(w, &features.ValidatorNodeRegistration.PublicKey)
		if err != nil {
			return err
		}
		err = SerializeSignature(w, &features.ValidatorNodeRegistration.Signature)
		if err != nil {
			return err
		}
	}
	return nil
}

// DeserializeOutputFeatures reads the serialized form of output features.
func DeserializeOutputFeatures(r io.Reader) (*externalapi.OutputFeatures, error) {
	features := &externalapi.OutputFeatures{}
	version, err := binaryserializer.Uint8(r)
	if err != nil {
		return nil, err
	}
	features.Version = version

	outputType, err := binaryserializer.Uint8(r)
	if err != nil {
		return nil, err
	}
	features.OutputType = externalapi.OutputType(outputType)

	features.Maturity, err = binaryserializer.Uint64(r)
	if err != nil {
		return nil, err
	}
	features.CoinbaseExtra, err = ReadElement(r)
	if err != nil {
		return nil, err
	}

	rangeProofType, err := binaryserializer.Uint8(r)
	if err != nil {
		return nil, err
	}
	features.RangeProofType = externalapi.RangeProofType(rangeProofType)

	hasRegistration, err := ReadBool(r)
	if err != nil {
		return nil, err
	}
	if hasRegistration {
		publicKey, err := DeserializePublicKey(r)
		if err != nil {
			return nil, err
		}
		signature, err := DeserializeSignature(r)
		if err != nil {
			return nil, err
		}
		features.ValidatorNodeRegistration = &externalapi.DomainValidatorNodeRegistration{
			PublicKey: *publicKey,
			Signature: *signature,
		}
	}
	return features, nil
}

// SerializeSignature writes a Schnorr signature: public nonce then response
// scalar.
func SerializeSignature(w io.Writer, signature *externalapi.DomainSignature) error {
	err := SerializePublicKey(w, &signature.PublicNonce)
	if err != nil {
		return err
	}
	return SerializeScalar(w, &signature.Signature)
}

// DeserializeSignature reads a Schnorr signature.
func DeserializeSignature(r io.Reader) (*externalapi.DomainSignature, error) {
	publicNonce, err := DeserializePublicKey(r)
	if err != nil {
		return nil, err
	}
	signature, err := DeserializeScalar(r)
	if err != nil {
		return nil, err
	}
	return externalapi.NewDomainSignature(publicNonce, signature), nil
}

// SerializeComAndPubSignature writes a commitment-and-public-key signature:
// the two ephemerals then the three response scalars.
func SerializeComAndPubSignature(w io.Writer, signature *externalapi.DomainComAndPubSignature) error {
	err := SerializeCommitment(w, &signature.EphemeralCommitment)
	if err != nil {
		return err
	}
	err = SerializePublicKey(w, &signature.EphemeralPubkey)
	if err != nil {
		return err
	}
	err = SerializeScalar(w, &signature.UA)
	if err != nil {
		return err
	}
	err = SerializeScalar(w, &signature.UX)
	if err != nil {
		return err
	}
	return SerializeScalar(w, &signature.UY)
}

// DeserializeComAndPubSignature reads a commitment-and-public-key signature.
func DeserializeComAndPubSignature(r io.Reader) (*externalapi.DomainComAndPubSignature, error) {
	ephemeralCommitment, err := DeserializeCommitment(r)
	if err != nil {
		return nil, err
	}
	ephemeralPubkey, err := DeserializePublicKey(r)
	if err != nil {
		return nil, err
	}
	uA, err := DeserializeScalar(r)
	if err != nil {
		return nil, err
	}
	uX, err := DeserializeScalar(r)
	if err != nil {
		return nil, err
	}
	uY, err := DeserializeScalar(r)
	if err != nil {
		return nil, err
	}
	return &externalapi.DomainComAndPubSignature{
		EphemeralCommitment: *ephemeralCommitment,
		EphemeralPubkey:     *ephemeralPubkey,
		UA:                  *uA,
		UX:                  *uX,
		UY:                  *uY,
	}, nil
}

// SerializeTransactionOutput writes the full serialized form of an output.
func SerializeTransactionOutput(w io.Writer, output *externalapi.DomainTransactionOutput) error {
	err := binaryserializer.PutUint8(w, output.Version)
	if err != nil {
		return err
	}
	err = SerializeOutputFeatures(w, output.Features)
	if err != nil {
		return err
	}
	err = SerializeCommitment(w, &output.Commitment)
	if err != nil {
		return err
	}
	err = WriteElement(w, output.RangeProof)
	if err != nil {
		return err
	}
	err = WriteElement(w, output.Script)
	if err != nil {
		return err
	}
	err = SerializePublicKey(w, &output.SenderOffsetPublicKey)
	if err != nil {
		return err
	}
	err = SerializeComAndPubSignature(w, &output.MetadataSignature)
	if err != nil {
		return err
	}
	err = WriteElement(w, output.Covenant)
	if err != nil {
		return err
	}
	err = WriteElement(w, output.EncryptedData)
	if err != nil {
		return err
	}
	return binaryserializer.PutUint64(w, output.MinimumValuePromise)
}

// DeserializeTransactionOutput reads the full serialized form of an output.
func DeserializeTransactionOutput(r io.Reader) (*externalapi.DomainTransactionOutput, error) {
	output := &externalapi.DomainTransactionOutput{}
	version, err := binaryserializer.Uint8(r)
	if err != nil {
		return nil, err
	}
	output.Version = version

	output.Features, err = DeserializeOutputFeatures(r)
	if err != nil {
		return nil, err
	}
	commitment, err := DeserializeCommitment(r)
	if err != nil {
		return nil, err
	}
	output.Commitment = *commitment

	output.RangeProof, err = ReadElement(r)
	if err != nil {
		return nil, err
	}
	output.Script, err = ReadElement(r)
	if err != nil {
		return nil, err
	}
	err = tariscript.Validate(output.Script)
	if err != nil {
		return nil, errors.Wrap(err, "invalid output script")
	}
	senderOffsetPublicKey, err := DeserializePublicKey(r)
	if err != nil {
		return nil, err
	}
	output.SenderOffsetPublicKey = *senderOffsetPublicKey

	metadataSignature, err := DeserializeComAndPubSignature(r)
	if err != nil {
		return nil, err
	}
	output.MetadataSignature = *metadataSignature

	output.Covenant, err = ReadElement(r)
	if err != nil {
		return nil, err
	}
	output.EncryptedData, err = ReadElement(r)
	if err != nil {
		return nil, err
	}
	output.MinimumValuePromise, err = binaryserializer.Uint64(r)
	if err != nil {
		return nil, err
	}
	return output, nil
}

// SerializeTransactionInput writes the serialized form of an input. The spent
// output is tagged with its form, so both compact and full inputs round-trip.
func SerializeTransactionInput(w io.Writer, input *externalapi.DomainTransactionInput) error {
	err := binaryserializer.PutUint8(w, input.Version)
	if err != nil {
		return err
	}
	if input.IsCompact() {
		err = binaryserializer.PutUint8(w, spentOutputCompactTag)
		if err != nil {
			return err
		}
		err = SerializeDomainHash(w, input.SpentOutputHash())
		if err != nil {
			return err
		}
	} else {
		err = binaryserializer.PutUint8(w, spentOutputFullTag)
		if err != nil {
			return err
		}
		outputData, err := input.SpentOutputData()
		if err != nil {
			return err
		}
		err = serializeSpentOutputData(w, outputData)
		if err != nil {
			return err
		}
	}
	err = WriteElement(w, input.InputData)
	if err != nil {
		return err
	}
	return SerializeComAndPubSignature(w, &input.ScriptSignature)
}

// DeserializeTransactionInput reads the serialized form of an input.
func DeserializeTransactionInput(r io.Reader) (*externalapi.DomainTransactionInput, error) {
	input := &externalapi.DomainTransactionInput{}
	version, err := binaryserializer.Uint8(r)
	if err != nil {
		return nil, err
	}
	input.Version = version

	formTag, err := binaryserializer.Uint8(r)
	if err != nil {
		return nil, err
	}
	switch formTag {
	case spentOutputCompactTag:
		outputHash, err := DeserializeDomainHash(r)
		if err != nil {
			return nil, err
		}
		input.SpentOutput = externalapi.NewSpentOutputFromHash(outputHash)
	case spentOutputFullTag:
		outputData, err := deserializeSpentOutputData(r)
		if err != nil {
			return nil, err
		}
		input.SpentOutput = externalapi.NewSpentOutputFromData(outputData)
	default:
		return nil, errors.Errorf("invalid serialized spent output form tag %d", formTag)
	}

	input.InputData, err = ReadElement(r)
	if err != nil {
		return nil, err
	}
	scriptSignature, err := DeserializeComAndPubSignature(r)
	if err != nil {
		return nil, err
	}
	input.ScriptSignature = *scriptSignature
	return input, nil
}

func serializeSpentOutputData(w io.Writer, data *externalapi.DomainSpentOutputData) error {
	err := binaryserializer.PutUint8(w, data.Version)
	if err != nil {
		return err
	}
	err = SerializeOutputFeatures(w, data.Features)
	if err != nil {
		return err
	}
	err = SerializeCommitment(w, &data.Commitment)
	if err != nil {
		return err
	}
	err = WriteElement(w, data.Script)
	if err != nil {
		return err
	}
	err = SerializePublicKey(w, &data.SenderOffsetPublicKey)
	if err != nil {
		return err
	}
	err = WriteElement(w, data.Covenant)
	if err != nil {
		return err
	}
	err = WriteElement(w, data.EncryptedData)
	if err != nil {
		return err
	}
	return binaryserializer.PutUint64(w, data.MinimumValuePromise)
}

func deserializeSpentOutputData(r io.Reader) (*externalapi.DomainSpentOutputData, error) {
	data := &externalapi.DomainSpentOutputData{}
	version, err := binaryserializer.Uint8(r)
	if err != nil {
		return nil, err
	}
	data.Version = version

	data.Features, err = DeserializeOutputFeatures(r)
	if err != nil {
		return nil, err
	}
	commitment, err := DeserializeCommitment(r)
	if err != nil {
		return nil, err
	}
	data.Commitment = *commitment

	data.Script, err = ReadElement(r)
	if err != nil {
		return nil, err
	}
	err = tariscript.Validate(data.Script)
	if err != nil {
		return nil, errors.Wrap(err, "invalid spent output script")
	}
	senderOffsetPublicKey, err := DeserializePublicKey(r)
	if err != nil {
		return nil, err
	}
	data.SenderOffsetPublicKey = *senderOffsetPublicKey

	data.Covenant, err = ReadElement(r)
	if err != nil {
		return nil, err
	}
	data.EncryptedData, err = ReadElement(r)
	if err != nil {
		return nil, err
	}
	data.MinimumValuePromise, err = binaryserializer.Uint64(r)
	if err != nil {
		return nil, err
	}
	return data, nil
}

// SerializeTransactionKernel writes the serialized form of a kernel.
func SerializeTransactionKernel(w io.Writer, kernel *externalapi.DomainTransactionKernel) error {
	err := binaryserializer.PutUint8(w, kernel.Version)
	if err != nil {
		return err
	}
	err = binaryserializer.PutUint8(w, uint8(kernel.Features))
	if err != nil {
		return err
	}
	err = binaryserializer.PutUint64(w, kernel.Fee)
	if err != nil {
		return err
	}
	err = binaryserializer.PutUint64(w, kernel.LockHeight)
	if err != nil {
		return err
	}
	err = SerializeCommitment(w, &kernel.Excess)
	if err != nil {
		return err
	}
	err = SerializeSignature(w, &kernel.ExcessSig)
	if err != nil {
		return err
	}
	err = WriteBool(w, kernel.BurnCommitment != nil)
	if err != nil {
		return err
	}
	if kernel.BurnCommitment != nil {
		err = SerializeCommitment(w, kernel.BurnCommitment)
		if err != nil {
			return err
		}
	}
	return nil
}

// DeserializeTransactionKernel reads the serialized form of a kernel.
func DeserializeTransactionKernel(r io.Reader) (*externalapi.DomainTransactionKernel, error) {
	kernel := &externalapi.DomainTransactionKernel{}
	version, err := binaryserializer.Uint8(r)
	if err != nil {
		return nil, err
	}
	kernel.Version = version

	features, err := binaryserializer.Uint8(r)
	if err != nil {
		return nil, err
	}
	kernel.Features = externalapi.KernelFeatures(features)

	kernel.Fee, err = binaryserializer.Uint64(r)
	if err != nil {
		return nil, err
	}
	kernel.LockHeight, err = binaryserializer.Uint64(r)
	if err != nil {
		return nil, err
	}
	excess, err := DeserializeCommitment(r)
	if err != nil {
		return nil, err
	}
	kernel.Excess = *excess

	excessSig, err := DeserializeSignature(r)
	if err != nil {
		return nil, err
	}
	kernel.ExcessSig = *excessSig

	hasBurnCommitment, err := ReadBool(r)
	if err != nil {
		return nil, err
	}
	if hasBurnCommitment {
		kernel.BurnCommitment, err = DeserializeCommitment(r)
		if err != nil {
			return nil, err
		}
	}
	return kernel, nil
}
