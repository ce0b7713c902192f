package main

import (
	"bytes"
	"fmt"
	"os"

	"github.com/pkg/errors"
	"golang.org/x/crypto/blake2b"

	"github.com/tari-project/tari-sub014/domain/consensus/datastructures/chainstore"
	"github.com/tari-project/tari-sub014/domain/consensus/model/externalapi"
	"github.com/tari-project/tari-sub014/domain/consensus/processes/aggregatebodyvalidator"
	"github.com/tari-project/tari-sub014/domain/consensus/utils/aggregatebody"
	"github.com/tari-project/tari-sub014/infrastructure/logger"
	"github.com/tari-project/tari-sub014/util"
	"github.com/tari-project/tari-sub014/util/panics"
	"github.com/tari-project/tari-sub014/util/profiling"
	"github.com/tari-project/tari-sub014/version"
)

func main() {
	err := checkBodyMain()
	if err != nil {
		os.Exit(1)
	}
}

func checkBodyMain() error {
	defer panics.HandlePanic(log, nil)

	cfg, err := parseConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing command-line arguments: %s\n", err)
		return err
	}
	defer logger.BackendLog.Close()

	log.Infof("Version %s", version.Version())
	log.Infof("Network %s", cfg.NetParams().Name)

	// Enable http profiling server if requested.
	if cfg.Profile != "" {
		profiling.Start(cfg.Profile, log)
	}

	err = checkBody(cfg)
	if err != nil {
		log.Errorf("Body check failed: %s", err)
		return err
	}
	return nil
}

func checkBody(cfg *configFlags) error {
	bodyBytes, err := os.ReadFile(cfg.BodyFile)
	if err != nil {
		return errors.Wrapf(err, "could not read the body file %s", cfg.BodyFile)
	}
	body, err := aggregatebody.Deserialize(bytes.NewReader(bodyBytes))
	if err != nil {
		return errors.Wrapf(err, "could not decode the body file %s", cfg.BodyFile)
	}
	var totalFees uint64
	for _, kernel := range body.Kernels() {
		totalFees += kernel.Fee
	}
	log.Infof("Loaded a body with %d inputs, %d outputs and %d kernels carrying %s in fees",
		len(body.Inputs()), len(body.Outputs()), len(body.Kernels()), util.Amount(totalFees))

	txOffset, err := parseTxOffset(cfg.TxOffset)
	if err != nil {
		return err
	}

	constantsManager, err := cfg.NetParams().ConstantsManager()
	if err != nil {
		return err
	}

	store, err := chainstore.Open(cfg.DataDir)
	if err != nil {
		return err
	}
	defer func() {
		closeErr := store.Close()
		if closeErr != nil {
			log.Warnf("Could not close the chain store: %s", closeErr)
		}
	}()
	log.Infof("Unspent output set holds %d outputs, root %x",
		store.UnspentOutputCount(), store.UnspentTreeRoot())

	validator := aggregatebodyvalidator.New(constantsManager, store)

	err = validator.ValidateBodyInIsolation(body, txOffset, cfg.Reward, cfg.Height)
	if err != nil {
		return errors.Wrap(err, "the body is not internally consistent")
	}
	log.Infof("The body is internally consistent")

	resolvedBody, err := validator.ValidateBodyInContext(body, cfg.Height)
	if err != nil {
		return errors.Wrapf(err, "the body is not valid against the chain at height %d", cfg.Height)
	}
	log.Infof("The body is valid against the chain at height %d", cfg.Height)

	if !cfg.Apply {
		return nil
	}

	// The tool is not a node, so no mined block exists to put the kernels
	// under. The hash of the body bytes stands in for it.
	blockHashBytes := blake2b.Sum256(bodyBytes)
	blockHash, err := externalapi.NewDomainHashFromByteSlice(blockHashBytes[:])
	if err != nil {
		return err
	}

	err = store.ApplyBody(resolvedBody, blockHash, cfg.Height)
	if err != nil {
		return errors.Wrap(err, "could not apply the body to the chain store")
	}
	log.Infof("Applied the body under block %s. Unspent output set now holds %d outputs, root %x",
		blockHash, store.UnspentOutputCount(), store.UnspentTreeRoot())
	return nil
}

func parseTxOffset(offsetHex string) (*externalapi.DomainScalar, error) {
	if offsetHex == "" {
		return externalapi.NewDomainScalarFromByteArray(&[externalapi.DomainScalarSize]byte{}), nil
	}
	offset, err := externalapi.NewDomainScalarFromString(offsetHex)
	if err != nil {
		return nil, errors.Wrap(err, "could not parse the transaction offset")
	}
	return offset, nil
}
