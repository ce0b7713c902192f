// Package keymanager derives wallet keys deterministically from seed
// entropy. Keys are organized into branches, each identified by a wire byte
// shared with hardware wallets and a label persisted in wallet databases;
// within a branch, keys are numbered by an index that only ever grows.
package keymanager

import (
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/pkg/errors"
	"github.com/tyler-smith/go-bip39"

	"github.com/tari-project/tari-sub014/domain/consensus/model/externalapi"
	"github.com/tari-project/tari-sub014/domain/consensus/utils/consensusserialization"
	"github.com/tari-project/tari-sub014/domain/consensus/utils/hashes"
	"github.com/tari-project/tari-sub014/domain/consensus/utils/pedersen"
	"github.com/tari-project/tari-sub014/domain/consensus/utils/schnorr"
	"github.com/tari-project/tari-sub014/util/binaryserializer"
)

// KeyManager derives keys from one wallet seed. Derivation is pure: the same
// entropy, branch and index always produce the same key, so a wallet can be
// recovered from its mnemonic alone by rescanning branch indices.
type KeyManager struct {
	entropy []byte
	store   *IndexStore
}

// New returns a KeyManager deriving from the given seed entropy. The index
// store may be nil for a derivation-only manager that never hands out fresh
// keys.
func New(entropy []byte, store *IndexStore) *KeyManager {
	return &KeyManager{
		entropy: append([]byte{}, entropy...),
		store:   store,
	}
}

// FromMnemonic returns a KeyManager deriving from the entropy the given
// mnemonic encodes.
func FromMnemonic(mnemonic string, store *IndexStore) (*KeyManager, error) {
	entropy, err := bip39.EntropyFromMnemonic(mnemonic)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return New(entropy, store), nil
}

// NewMnemonic generates a fresh 24-word mnemonic carrying 256 bits of seed
// entropy.
func NewMnemonic() (string, error) {
	entropy, err := bip39.NewEntropy(256)
	if err != nil {
		return "", errors.WithStack(err)
	}
	mnemonic, err := bip39.NewMnemonic(entropy)
	if err != nil {
		return "", errors.WithStack(err)
	}
	return mnemonic, nil
}

// Mnemonic returns the mnemonic encoding the manager's seed entropy.
func (km *KeyManager) Mnemonic() (string, error) {
	mnemonic, err := bip39.NewMnemonic(km.entropy)
	if err != nil {
		return "", errors.WithStack(err)
	}
	return mnemonic, nil
}

// DeriveKey returns the secret key at the given index of the given branch.
func (km *KeyManager) DeriveKey(branch TransactionKeyManagerBranch, index uint64) *secp256k1.ModNScalar {
	writer := hashes.NewKeyDerivationHashWriter()
	err := consensusserialization.WriteElement(writer, km.entropy)
	if err == nil {
		err = consensusserialization.WriteElement(writer, []byte(branch.Label()))
	}
	if err == nil {
		err = binaryserializer.PutUint64(writer, index)
	}
	if err != nil {
		panic(errors.Wrap(err, "this should never happen. Writing to a hash never fails"))
	}
	wide := writer.Finalize()
	return pedersen.ScalarFromWideBytes(&wide)
}

// DerivePublicKey returns the public key at the given index of the given
// branch.
func (km *KeyManager) DerivePublicKey(branch TransactionKeyManagerBranch,
	index uint64) *externalapi.DomainPublicKey {

	return schnorr.PublicKeyFromSecret(km.DeriveKey(branch, index))
}

// NextKey hands out the branch's next unused key together with its index,
// advancing the persisted branch counter.
func (km *KeyManager) NextKey(branch TransactionKeyManagerBranch) (*secp256k1.ModNScalar, uint64, error) {
	if km.store == nil {
		return nil, 0, errors.New("the key manager has no index store to hand out fresh keys from")
	}
	index, err := km.store.NextIndex(branch)
	if err != nil {
		return nil, 0, err
	}
	return km.DeriveKey(branch, index), index, nil
}
