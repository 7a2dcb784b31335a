package netconfig

// Params defines a ledger network by the endpoints and defaults used to
// build and submit transactions on it
type Params struct {
	// Name is a human-readable identifier for the network
	Name string

	// RPCURL is the default JSON-RPC endpoint of a full node
	RPCURL string

	// GasCoinType is the coin type gas is paid in
	GasCoinType string

	// DefaultGasBudget is the gas budget used when none is configured
	DefaultGasBudget uint64

	// FaucetURL is the faucet endpoint of the network, if it has one
	FaucetURL string
}

// SuiCoinType is the native coin type of every network
const SuiCoinType = "0x2::sui::SUI"

// MainnetParams defines the network parameters for the main network
var MainnetParams = Params{
	Name:             "mainnet",
	RPCURL:           "https://fullnode.mainnet.sui.io:443",
	GasCoinType:      SuiCoinType,
	DefaultGasBudget: 10_000_000,
}

// TestnetParams defines the network parameters for the test network
var TestnetParams = Params{
	Name:             "testnet",
	RPCURL:           "https://fullnode.testnet.sui.io:443",
	GasCoinType:      SuiCoinType,
	DefaultGasBudget: 10_000_000,
	FaucetURL:        "https://faucet.testnet.sui.io/v1/gas",
}

// DevnetParams defines the network parameters for the development network
var DevnetParams = Params{
	Name:             "devnet",
	RPCURL:           "https://fullnode.devnet.sui.io:443",
	GasCoinType:      SuiCoinType,
	DefaultGasBudget: 10_000_000,
	FaucetURL:        "https://faucet.devnet.sui.io/v1/gas",
}

// LocalnetParams defines the network parameters for a node running locally
var LocalnetParams = Params{
	Name:             "localnet",
	RPCURL:           "http://127.0.0.1:9000",
	GasCoinType:      SuiCoinType,
	DefaultGasBudget: 10_000_000,
	FaucetURL:        "http://127.0.0.1:9123/gas",
}
