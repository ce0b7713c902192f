package keymanager

import (
	"github.com/pkg/errors"
)

// TransactionKeyManagerBranch identifies the derivation domain a wallet key
// belongs to. A branch is identified two ways: a wire byte shared with
// hardware-wallet firmware and a string label persisted in wallet databases.
// Both are append-only. Renumbering a byte or renaming a label silently
// corrupts existing wallets, so existing entries must never change.
type TransactionKeyManagerBranch byte

const (
	// BranchDataEncryption keys encrypt the value and mask recovery data
	// carried in an output's encrypted data field.
	BranchDataEncryption TransactionKeyManagerBranch = 0x00
	// BranchMetadataEphemeralNonce keys are the ephemeral nonces of
	// metadata signatures.
	BranchMetadataEphemeralNonce TransactionKeyManagerBranch = 0x01
	// BranchCommitmentMask keys blind output commitments.
	BranchCommitmentMask TransactionKeyManagerBranch = 0x02
	// BranchNonce keys are general-purpose signing nonces.
	BranchNonce TransactionKeyManagerBranch = 0x03
	// BranchKernelNonce keys are the nonces of kernel excess signatures.
	BranchKernelNonce TransactionKeyManagerBranch = 0x04
	// BranchSenderOffset keys are the sender offsets signed into metadata
	// signatures.
	BranchSenderOffset TransactionKeyManagerBranch = 0x05
	// BranchOneSidedSenderOffset keys are sender offsets for one-sided
	// payments.
	BranchOneSidedSenderOffset TransactionKeyManagerBranch = 0x06
	// BranchSpend keys are script spending keys.
	BranchSpend TransactionKeyManagerBranch = 0x07
	// BranchRandomKey keys serve protocols that need a fresh key with no
	// other role.
	BranchRandomKey TransactionKeyManagerBranch = 0x08
	// BranchPreMine keys control pre-mine outputs.
	BranchPreMine TransactionKeyManagerBranch = 0x09
)

// Branches returns every branch, in wire byte order.
func Branches() []TransactionKeyManagerBranch {
	return []TransactionKeyManagerBranch{
		BranchDataEncryption,
		BranchMetadataEphemeralNonce,
		BranchCommitmentMask,
		BranchNonce,
		BranchKernelNonce,
		BranchSenderOffset,
		BranchOneSidedSenderOffset,
		BranchSpend,
		BranchRandomKey,
		BranchPreMine,
	}
}

// Label returns the branch's database label. The spacing and casing of each
// label is part of the wallet database format.
func (branch TransactionKeyManagerBranch) Label() string {
	switch branch {
	case BranchDataEncryption:
		return "data encryption"
	case BranchMetadataEphemeralNonce:
		return "metadata ephemeral nonce"
	case BranchCommitmentMask:
		return "commitment mask"
	case BranchNonce:
		return "nonce"
	case BranchKernelNonce:
		return "kernel nonce"
	case BranchSenderOffset:
		return "sender offset"
	case BranchOneSidedSenderOffset:
		return "one-sided sender offset"
	case BranchSpend:
		return "spend"
	case BranchRandomKey:
		return "random key"
	case BranchPreMine:
		return "pre_mine"
	default:
		return "unknown"
	}
}

func (branch TransactionKeyManagerBranch) String() string {
	return branch.Label()
}

// BranchFromByte returns the branch carrying the given wire byte.
func BranchFromByte(value byte) (TransactionKeyManagerBranch, error) {
	branch := TransactionKeyManagerBranch(value)
	if branch > BranchPreMine {
		return 0, errors.Errorf("unknown key manager branch byte %#02x", value)
	}
	return branch, nil
}

// BranchFromLabel returns the branch carrying the given database label.
func BranchFromLabel(label string) (TransactionKeyManagerBranch, error) {
	for _, branch := range Branches() {
		if branch.Label() == label {
			return branch, nil
		}
	}
	return 0, errors.Errorf("unknown key manager branch label %q", label)
}
