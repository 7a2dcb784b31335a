package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/btcsuite/btcutil"
	"github.com/jessevdk/go-flags"
	"github.com/pkg/errors"
	"github.com/poolforge/poolcreator/cmd/poolcreator/keys"
	"github.com/poolforge/poolcreator/cmd/poolcreator/libpoolcreator"
	"github.com/poolforge/poolcreator/infrastructure/config"
)

const (
	createPoolSubCmd    = "create-pool"
	coinsSubCmd         = "coins"
	txStatusSubCmd      = "tx-status"
	importKeySubCmd     = "import-key"
	newKeySubCmd        = "new-key"
	showAddressesSubCmd = "show-addresses"
)

const (
	defaultConfigFilename = "poolcreator.conf"
	defaultLogDirname     = "logs"
	defaultLogFilename    = "poolcreator.log"
	defaultErrLogFilename = "poolcreator_err.log"
	defaultLogLevel       = "info"
)

var (
	defaultAppDir     = btcutil.AppDataDir("poolcreator", false)
	defaultConfigFile = filepath.Join(defaultAppDir, defaultConfigFilename)
)

type configFlags struct {
	ConfigFile string `long:"configfile" short:"C" description:"Path to configuration file"`
	AppDir     string `long:"appdir" short:"b" description:"Directory to store keys and logs"`
	LogLevel   string `long:"loglevel" short:"d" description:"Logging level for all subsystems {trace, debug, info, warn, error, critical} -- You may also specify <subsystem>=<level>,<subsystem2>=<level>,... to set the log level for individual subsystems"`
	config.NetworkFlags
}

// RPCFlags configures the connection to the ledger node
type RPCFlags struct {
	RPCServer string        `long:"rpcserver" short:"s" description:"RPC server to connect to (defaults to the network's full node)"`
	Proxy     string        `long:"proxy" description:"Connect via SOCKS5 proxy (eg. 127.0.0.1:9050)"`
	ProxyUser string        `long:"proxyuser" description:"Username for proxy server"`
	ProxyPass string        `long:"proxypass" default-mask:"-" description:"Password for proxy server"`
	Timeout   time.Duration `long:"timeout" description:"Timeout of each RPC request (eg. 30s)"`
}

// KeystoreFlags selects the keystore holding the signing keys
type KeystoreFlags struct {
	KeysFile     string `long:"keys-file" short:"f" description:"Encrypted keys file location (default: ~/.poolcreator/<network>/keys.json (*nix), %USERPROFILE%\\AppData\\Local\\Poolcreator\\<network>\\keys.json (Windows))"`
	FileKeystore string `long:"file-keystore" description:"Use a plaintext keystore in the ledger client's format instead of the encrypted keys file"`
	Password     string `long:"password" short:"p" default-mask:"-" description:"Keys file password (prompted for when omitted)"`
}

type createPoolConfig struct {
	RPCFlags
	KeystoreFlags

	PackageID        string `long:"package-id" description:"Package holding the pool creation module"`
	Module           string `long:"module" description:"Module holding the pool creation function"`
	Function         string `long:"function" description:"Pool creation function"`
	Sender           string `long:"sender" description:"Address that signs and pays for the transaction"`
	GlobalConfig     string `long:"global-config" description:"Global config object of the protocol"`
	Pools            string `long:"pools" description:"Pools registry object of the protocol"`
	TickSpacing      uint32 `long:"tick-spacing" description:"Tick spacing of the new pool"`
	InitializePrice  string `long:"initialize-price" description:"Initial sqrt price of the pool as a u128"`
	URL              string `long:"url" description:"Pool url"`
	TickLower        uint32 `long:"tick-lower" description:"Lower tick of the initial position"`
	FixAmountB       bool   `long:"fix-amount-b" description:"Fix the amount of coin B instead of coin A"`
	CoinTypeA        string `long:"coin-type-a" description:"Type of coin A (eg. 0x2::sui::SUI)" required:"true"`
	CoinTypeB        string `long:"coin-type-b" description:"Type of coin B" required:"true"`
	AmountA          uint64 `long:"amount-a" description:"Amount of coin A, in its smallest unit"`
	AmountB          uint64 `long:"amount-b" description:"Amount of coin B, in its smallest unit"`
	OwnedCoins       bool   `long:"owned-coins" description:"Pass the pool coins as owned objects, merging several coins when needed"`
	ClockTimestampMs uint64 `long:"clock-timestamp-ms" description:"Timestamp carried by the clock input"`
	GasCoinType      string `long:"gas-coin-type" description:"Type of the coins paying for gas"`
	GasBudget        uint64 `long:"gas-budget" description:"Gas budget of the transaction"`
	CoinPageSize     uint   `long:"coin-page-size" description:"Number of coins fetched per request"`
	MaxCoinPages     int    `long:"max-coin-pages" description:"Maximum number of coin pages fetched per coin type (0 for no limit)"`
	Policy           string `long:"policy" description:"Confirmation policy {fire-and-forget, wait-for-local-execution, wait-for-effects-cert}" default:"wait-for-local-execution"`
	DryRun           bool   `long:"dry-run" description:"Print the unsigned transaction instead of signing and submitting it"`
	config.NetworkFlags
}

type coinsConfig struct {
	RPCFlags
	Address  string `long:"address" short:"a" description:"Owner of the coins" required:"true"`
	CoinType string `long:"coin-type" short:"t" description:"Type of the coins (defaults to the gas coin type)"`
	PageSize uint   `long:"page-size" description:"Number of coins fetched per request"`
	MaxPages int    `long:"max-pages" description:"Maximum number of pages to fetch (0 for no limit)" default:"1"`
	config.NetworkFlags
}

type txStatusConfig struct {
	RPCFlags
	Digest string `long:"digest" short:"t" description:"Digest of the transaction (base58)" required:"true"`
	config.NetworkFlags
}

type importKeyConfig struct {
	KeystoreFlags
	Key            string `long:"key" short:"k" default-mask:"-" description:"A suiprivkey encoded private key or a mnemonic (prompted for when omitted)"`
	DerivationPath string `long:"derivation-path" description:"Derivation path of mnemonic keys"`
	config.NetworkFlags
}

type newKeyConfig struct {
	KeystoreFlags
	DerivationPath string `long:"derivation-path" description:"Derivation path of the generated key"`
	config.NetworkFlags
}

type showAddressesConfig struct {
	KeystoreFlags
	config.NetworkFlags
}

type commandConfig interface {
	networkFlags() *config.NetworkFlags
}

func (conf *createPoolConfig) networkFlags() *config.NetworkFlags    { return &conf.NetworkFlags }
func (conf *coinsConfig) networkFlags() *config.NetworkFlags         { return &conf.NetworkFlags }
func (conf *txStatusConfig) networkFlags() *config.NetworkFlags      { return &conf.NetworkFlags }
func (conf *importKeyConfig) networkFlags() *config.NetworkFlags     { return &conf.NetworkFlags }
func (conf *newKeyConfig) networkFlags() *config.NetworkFlags        { return &conf.NetworkFlags }
func (conf *showAddressesConfig) networkFlags() *config.NetworkFlags { return &conf.NetworkFlags }

func keystoreFlagsOf(conf commandConfig) *KeystoreFlags {
	switch conf := conf.(type) {
	case *createPoolConfig:
		return &conf.KeystoreFlags
	case *importKeyConfig:
		return &conf.KeystoreFlags
	case *newKeyConfig:
		return &conf.KeystoreFlags
	case *showAddressesConfig:
		return &conf.KeystoreFlags
	}
	return nil
}

func newParser(cfg *configFlags, options flags.Options) (*flags.Parser, map[string]commandConfig) {
	parser := flags.NewParser(cfg, options)
	commands := map[string]commandConfig{
		createPoolSubCmd:    &createPoolConfig{},
		coinsSubCmd:         &coinsConfig{},
		txStatusSubCmd:      &txStatusConfig{},
		importKeySubCmd:     &importKeyConfig{},
		newKeySubCmd:        &newKeyConfig{},
		showAddressesSubCmd: &showAddressesConfig{},
	}

	parser.AddCommand(createPoolSubCmd, "Creates a pool",
		"Selects coins, builds, signs and submits a pool creation transaction", commands[createPoolSubCmd])
	parser.AddCommand(coinsSubCmd, "Lists the coins of an address",
		"Lists the coins of one type owned by an address", commands[coinsSubCmd])
	parser.AddCommand(txStatusSubCmd, "Shows the status of a transaction",
		"Queries the outcome of a submitted transaction, eg. after a confirmation timeout", commands[txStatusSubCmd])
	parser.AddCommand(importKeySubCmd, "Imports a private key",
		"Imports a suiprivkey encoded private key or a mnemonic into the encrypted keys file", commands[importKeySubCmd])
	parser.AddCommand(newKeySubCmd, "Generates a new key",
		"Generates a mnemonic, derives its key and adds it to the encrypted keys file", commands[newKeySubCmd])
	parser.AddCommand(showAddressesSubCmd, "Shows the addresses of the keystore",
		"Shows the addresses of the keys in the keystore", commands[showAddressesSubCmd])

	return parser, commands
}

func parseCommandLine() (subCommand string, conf commandConfig, cfg *configFlags) {
	// Pre-parse the command line to find the config file.
	preCfg := &configFlags{ConfigFile: defaultConfigFile}
	preParser, _ := newParser(preCfg, flags.HelpFlag|flags.IgnoreUnknown)
	_, err := preParser.Parse()
	if err != nil {
		var flagsErr *flags.Error
		if ok := errors.As(err, &flagsErr); ok && flagsErr.Type == flags.ErrHelp {
			fmt.Fprintln(os.Stdout, err)
			os.Exit(0)
		}
	}

	cfg = &configFlags{}
	parser, commands := newParser(cfg, flags.PrintErrors|flags.HelpFlag)

	err = flags.NewIniParser(parser).ParseFile(preCfg.ConfigFile)
	if err != nil {
		var pathErr *os.PathError
		if !errors.As(err, &pathErr) || preCfg.ConfigFile != defaultConfigFile {
			printErrorAndExit(errors.Wrapf(err, "error parsing config file %s", preCfg.ConfigFile))
		}
	}

	// Parse command line options again to ensure they take precedence.
	_, err = parser.Parse()
	if err != nil {
		var flagsErr *flags.Error
		if ok := errors.As(err, &flagsErr); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	if cfg.AppDir == "" {
		cfg.AppDir = defaultAppDir
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = defaultLogLevel
	}

	subCommand = parser.Command.Active.Name
	conf = commands[subCommand]
	networkFlags := conf.networkFlags()
	combineNetworkFlags(networkFlags, &cfg.NetworkFlags)
	err = networkFlags.ResolveNetwork(parser)
	if err != nil {
		printErrorAndExit(err)
	}

	keystoreConf := keystoreFlagsOf(conf)
	if keystoreConf != nil && keystoreConf.KeysFile == "" {
		keystoreConf.KeysFile = keys.DefaultEncryptedKeystorePath(cfg.AppDir, networkFlags.NetParams().Name)
	}

	if createPoolConf, ok := conf.(*createPoolConfig); ok {
		_, err := libpoolcreator.ParseConfirmationPolicy(createPoolConf.Policy)
		if err != nil {
			printErrorAndExit(err)
		}
	}

	return subCommand, conf, cfg
}

func combineNetworkFlags(dst, src *config.NetworkFlags) {
	dst.Testnet = dst.Testnet || src.Testnet
	dst.Devnet = dst.Devnet || src.Devnet
	dst.Localnet = dst.Localnet || src.Localnet
	if dst.OverrideNetworkParamsFile == "" {
		dst.OverrideNetworkParamsFile = src.OverrideNetworkParamsFile
	}
}

func logDir(cfg *configFlags) string {
	return filepath.Join(cfg.AppDir, defaultLogDirname)
}
