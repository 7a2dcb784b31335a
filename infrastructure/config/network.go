package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/jessevdk/go-flags"
	"github.com/pkg/errors"
	"github.com/poolforge/poolcreator/domain/netconfig"
)

// NetworkFlags holds the network configuration, that is which network is selected.
type NetworkFlags struct {
	Testnet                   bool   `long:"testnet" description:"Use the test network"`
	Devnet                    bool   `long:"devnet" description:"Use the development network"`
	Localnet                  bool   `long:"localnet" description:"Use a network running on this machine"`
	OverrideNetworkParamsFile string `long:"override-network-params-file" description:"Overrides network params (allowed only on devnet and localnet)"`

	ActiveNetParams *netconfig.Params
}

type overrideNetworkParamsConfig struct {
	RPCURL           *string `json:"rpcURL"`
	GasCoinType      *string `json:"gasCoinType"`
	DefaultGasBudget *uint64 `json:"defaultGasBudget"`
	FaucetURL        *string `json:"faucetURL"`
}

// ResolveNetwork parses the network command line argument and sets ActiveNetParams accordingly.
// It returns error if more than one network was selected, nil otherwise.
func (networkFlags *NetworkFlags) ResolveNetwork(parser *flags.Parser) error {
	// Copy so overrides never leak into the package-level params
	activeNetParams := netconfig.MainnetParams
	numNets := 0
	if networkFlags.Testnet {
		numNets++
		activeNetParams = netconfig.TestnetParams
	}
	if networkFlags.Devnet {
		numNets++
		activeNetParams = netconfig.DevnetParams
	}
	if networkFlags.Localnet {
		numNets++
		activeNetParams = netconfig.LocalnetParams
	}
	if numNets > 1 {
		message := "Multiple networks parameters (testnet, devnet, localnet) cannot be used " +
			"together. Please choose only one network"
		err := errors.Errorf(message)
		if parser != nil {
			fmt.Fprintln(os.Stderr, err)
			parser.WriteHelp(os.Stderr)
		}
		return err
	}
	networkFlags.ActiveNetParams = &activeNetParams

	return networkFlags.overrideNetworkParams()
}

// NetParams returns the ActiveNetParams
func (networkFlags *NetworkFlags) NetParams() *netconfig.Params {
	return networkFlags.ActiveNetParams
}

func (networkFlags *NetworkFlags) overrideNetworkParams() error {
	if networkFlags.OverrideNetworkParamsFile == "" {
		return nil
	}

	if !networkFlags.Devnet && !networkFlags.Localnet {
		return errors.Errorf("override-network-params-file is allowed only when using devnet or localnet")
	}

	overrideNetworkParamsFile, err := os.Open(networkFlags.OverrideNetworkParamsFile)
	if err != nil {
		return err
	}
	defer overrideNetworkParamsFile.Close()

	decoder := json.NewDecoder(overrideNetworkParamsFile)
	decoder.DisallowUnknownFields()
	config := &overrideNetworkParamsConfig{}
	err = decoder.Decode(config)
	if err != nil {
		return errors.Wrapf(err, "error parsing %s", networkFlags.OverrideNetworkParamsFile)
	}

	if config.RPCURL != nil {
		networkFlags.ActiveNetParams.RPCURL = *config.RPCURL
	}

	if config.GasCoinType != nil {
		networkFlags.ActiveNetParams.GasCoinType = *config.GasCoinType
	}

	if config.DefaultGasBudget != nil {
		if *config.DefaultGasBudget == 0 {
			return errors.Errorf("defaultGasBudget must be greater than 0")
		}
		networkFlags.ActiveNetParams.DefaultGasBudget = *config.DefaultGasBudget
	}

	if config.FaucetURL != nil {
		networkFlags.ActiveNetParams.FaucetURL = *config.FaucetURL
	}

	return nil
}
