package model

import (
	"github.com/tari-project/tari-sub014/domain/consensus/model/externalapi"
	"github.com/tari-project/tari-sub014/domain/consensus/utils/aggregatebody"
)

// AggregateBodyValidator exposes a set of validation classes, after which
// it's possible to determine whether an aggregate body is valid
type AggregateBodyValidator interface {
	// ValidateBodyInIsolation validates the body without touching chain
	// state: the body balances against the given transaction offset and
	// reward, and all its signatures verify.
	ValidateBodyInIsolation(body *aggregatebody.AggregateBody, txOffset *externalapi.DomainScalar,
		totalReward uint64, height uint64) error

	// ValidateBodyInContext validates the body against current chain state
	// at the given height. On success it returns the resolved body, with
	// every compact input upgraded to full form.
	ValidateBodyInContext(body *aggregatebody.AggregateBody, height uint64) (*aggregatebody.AggregateBody, error)
}
