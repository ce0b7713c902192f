package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/jessevdk/go-flags"
	"github.com/pkg/errors"
	"github.com/tari-project/tari-sub014/domain/chaincfg"
)

// NetworkFlags holds the network configuration, that is which network is selected.
type NetworkFlags struct {
	Stagenet                    bool   `long:"stagenet" description:"Use the stage rehearsal network"`
	Nextnet                     bool   `long:"nextnet" description:"Use the next-release network"`
	Localnet                    bool   `long:"localnet" description:"Use the local development network"`
	OverrideConsensusParamsFile string `long:"override-consensus-params-file" description:"Overrides consensus constants (allowed only on localnet)"`

	ActiveNetParams *chaincfg.Params
}

type overrideConsensusParamsConfig struct {
	CoinbaseMinMaturity                       *uint64 `json:"coinbaseMinMaturity"`
	CoinbaseExtraMaxSize                      *int    `json:"coinbaseExtraMaxSize"`
	MaxBlockTransactionWeight                 *uint64 `json:"maxBlockTransactionWeight"`
	MaxScriptByteSize                         *int    `json:"maxScriptByteSize"`
	ValidatorNodeRegistrationMinDepositAmount *uint64 `json:"validatorNodeRegistrationMinDepositAmount"`
	ValidatorNodeRegistrationMinLockHeight    *uint64 `json:"validatorNodeRegistrationMinLockHeight"`
}

// ResolveNetwork parses the network command line argument and sets NetParams accordingly.
// It returns error if more than one network was selected, nil otherwise.
func (networkFlags *NetworkFlags) ResolveNetwork(parser *flags.Parser) error {
	//NetParams holds the selected network parameters. Default value is main-net.
	networkFlags.ActiveNetParams = &chaincfg.MainnetParams
	// Multiple networks can't be selected simultaneously.
	numNets := 0
	// Count number of network flags passed; assign active network params
	// while we're at it
	if networkFlags.Stagenet {
		numNets++
		networkFlags.ActiveNetParams = &chaincfg.StagenetParams
	}
	if networkFlags.Nextnet {
		numNets++
		networkFlags.ActiveNetParams = &chaincfg.NextnetParams
	}
	if networkFlags.Localnet {
		numNets++
		networkFlags.ActiveNetParams = &chaincfg.LocalnetParams
	}
	if numNets > 1 {
		message := "Multiple networks parameters (stagenet, nextnet, localnet, etc.) cannot be used " +
			"together. Please choose only one network"
		err := errors.Errorf(message)
		fmt.Fprintln(os.Stderr, err)
		parser.WriteHelp(os.Stderr)
		return err
	}

	return networkFlags.overrideConsensusParams()
}

// NetParams returns the ActiveNetParams
func (networkFlags *NetworkFlags) NetParams() *chaincfg.Params {
	return networkFlags.ActiveNetParams
}

func (networkFlags *NetworkFlags) overrideConsensusParams() error {

	if networkFlags.OverrideConsensusParamsFile == "" {
		return nil
	}

	if !networkFlags.Localnet {
		return errors.Errorf("override-consensus-params-file is allowed only when using localnet")
	}

	overrideConsensusParamsFile, err := os.Open(networkFlags.OverrideConsensusParamsFile)
	if err != nil {
		return err
	}
	defer overrideConsensusParamsFile.Close()

	decoder := json.NewDecoder(overrideConsensusParamsFile)
	config := &overrideConsensusParamsConfig{}
	err = decoder.Decode(config)
	if err != nil {
		return err
	}

	// The overrides apply to every constant set of the network, whatever
	// height it takes effect at.
	for i := range networkFlags.ActiveNetParams.Constants {
		constants := &networkFlags.ActiveNetParams.Constants[i]

		if config.CoinbaseMinMaturity != nil {
			constants.CoinbaseMinMaturity = *config.CoinbaseMinMaturity
		}

		if config.CoinbaseExtraMaxSize != nil {
			constants.CoinbaseExtraMaxSize = *config.CoinbaseExtraMaxSize
		}

		if config.MaxBlockTransactionWeight != nil {
			constants.MaxBlockTransactionWeight = *config.MaxBlockTransactionWeight
		}

		if config.MaxScriptByteSize != nil {
			constants.MaxScriptByteSize = *config.MaxScriptByteSize
		}

		if config.ValidatorNodeRegistrationMinDepositAmount != nil {
			constants.ValidatorNodeRegistrationMinDepositAmount = *config.ValidatorNodeRegistrationMinDepositAmount
		}

		if config.ValidatorNodeRegistrationMinLockHeight != nil {
			constants.ValidatorNodeRegistrationMinLockHeight = *config.ValidatorNodeRegistrationMinLockHeight
		}
	}

	return nil
}
