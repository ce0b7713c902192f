package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jessevdk/go-flags"
	"github.com/tari-project/tari-sub014/domain/chaincfg"
	"github.com/tari-project/tari-sub014/domain/consensus/utils/consensusconstants"
)

func testParser() *flags.Parser {
	return flags.NewParser(&NetworkFlags{}, flags.None)
}

func TestResolveNetworkDefaultsToMainnet(t *testing.T) {
	networkFlags := &NetworkFlags{}
	err := networkFlags.ResolveNetwork(testParser())
	if err != nil {
		t.Fatalf("ResolveNetwork: %+v", err)
	}
	if networkFlags.NetParams() != &chaincfg.MainnetParams {
		t.Errorf("expected mainnet parameters, got %s", networkFlags.NetParams().Name)
	}
}

func TestResolveNetworkSelectsLocalnet(t *testing.T) {
	networkFlags := &NetworkFlags{Localnet: true}
	err := networkFlags.ResolveNetwork(testParser())
	if err != nil {
		t.Fatalf("ResolveNetwork: %+v", err)
	}
	if networkFlags.NetParams() != &chaincfg.LocalnetParams {
		t.Errorf("expected localnet parameters, got %s", networkFlags.NetParams().Name)
	}
}

func TestResolveNetworkRejectsMultipleNetworks(t *testing.T) {
	networkFlags := &NetworkFlags{Stagenet: true, Localnet: true}
	err := networkFlags.ResolveNetwork(testParser())
	if err == nil {
		t.Fatal("ResolveNetwork accepted two networks at once")
	}
}

func TestOverrideConsensusParams(t *testing.T) {
	// The override mutates the shared localnet parameters, so put them
	// back when done.
	defer func() {
		chaincfg.LocalnetParams.Constants = consensusconstants.LocalNet()
	}()

	overrideFile := filepath.Join(t.TempDir(), "override.json")
	overrideJSON := `{"coinbaseMinMaturity": 7, "maxBlockTransactionWeight": 12345}`
	err := os.WriteFile(overrideFile, []byte(overrideJSON), 0600)
	if err != nil {
		t.Fatalf("WriteFile: %+v", err)
	}

	networkFlags := &NetworkFlags{Localnet: true, OverrideConsensusParamsFile: overrideFile}
	err = networkFlags.ResolveNetwork(testParser())
	if err != nil {
		t.Fatalf("ResolveNetwork: %+v", err)
	}

	constants := networkFlags.NetParams().Constants[0]
	if constants.CoinbaseMinMaturity != 7 {
		t.Errorf("CoinbaseMinMaturity was not overridden: got %d, want 7", constants.CoinbaseMinMaturity)
	}
	if constants.MaxBlockTransactionWeight != 12345 {
		t.Errorf("MaxBlockTransactionWeight was not overridden: got %d, want 12345",
			constants.MaxBlockTransactionWeight)
	}
	if constants.CoinbaseExtraMaxSize != consensusconstants.LocalNet()[0].CoinbaseExtraMaxSize {
		t.Errorf("CoinbaseExtraMaxSize changed without an override: got %d", constants.CoinbaseExtraMaxSize)
	}
}

func TestOverrideConsensusParamsRequiresLocalnet(t *testing.T) {
	networkFlags := &NetworkFlags{OverrideConsensusParamsFile: "override.json"}
	err := networkFlags.ResolveNetwork(testParser())
	if err == nil {
		t.Fatal("ResolveNetwork accepted a consensus override outside localnet")
	}
}
