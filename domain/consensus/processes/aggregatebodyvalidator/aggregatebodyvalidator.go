// Package aggregatebodyvalidator implements the consensus rules that decide
// whether an aggregate body of inputs, outputs and kernels may enter the
// chain. Bodies are validated twice: once in isolation, proving the body is
// internally consistent, and once in context, proving it against current
// chain state through a BlockchainBackend.
package aggregatebodyvalidator

import (
	"github.com/tari-project/tari-sub014/domain/consensus/model"
	"github.com/tari-project/tari-sub014/domain/consensus/utils/consensusconstants"
)

// aggregateBodyValidator exposes a set of validation classes, after which
// it's possible to determine whether an aggregate body is valid
type aggregateBodyValidator struct {
	constantsManager *consensusconstants.Manager
	backend          model.BlockchainBackend
}

// New instantiates a new AggregateBodyValidator. All backend reads of a
// single validation run must come from one consistent snapshot; that is the
// backend's contract, not enforced here.
func New(constantsManager *consensusconstants.Manager, backend model.BlockchainBackend) model.AggregateBodyValidator {
	return &aggregateBodyValidator{
		constantsManager: constantsManager,
		backend:          backend,
	}
}
