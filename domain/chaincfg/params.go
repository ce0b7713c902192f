// Package chaincfg defines the parameters of every Tari network a node or
// tool can join.
package chaincfg

import (
	"github.com/tari-project/tari-sub014/domain/consensus/utils/consensusconstants"
)

// Params defines a Tari network by its parameters. These parameters may be
// used by Tari applications to differentiate networks as well as keys and
// stored state for one network from those intended for use on another
// network.
type Params struct {
	// Name defines a human-readable identifier for the network.
	Name string

	// Constants holds the consensus constant sets that apply on the
	// network, ordered by the height they come into effect at.
	Constants []consensusconstants.Constants
}

// ConstantsManager builds the height-resolving constants manager of the
// network.
func (params *Params) ConstantsManager() (*consensusconstants.Manager, error) {
	return consensusconstants.NewManager(params.Constants)
}

// MainnetParams defines the network parameters for the main Tari network.
var MainnetParams = Params{
	Name:      "tari-mainnet",
	Constants: consensusconstants.MainNet(),
}

// StagenetParams defines the network parameters for the stage network, the
// long-lived public rehearsal of the main network. Consensus rules match the
// main network.
var StagenetParams = Params{
	Name:      "tari-stagenet",
	Constants: consensusconstants.MainNet(),
}

// NextnetParams defines the network parameters for the next-release network,
// where upcoming releases run ahead of their activation on the main network.
// Consensus rules match the main network.
var NextnetParams = Params{
	Name:      "tari-nextnet",
	Constants: consensusconstants.MainNet(),
}

// LocalnetParams defines the network parameters for an isolated local
// development network.
var LocalnetParams = Params{
	Name:      "tari-localnet",
	Constants: consensusconstants.LocalNet(),
}
