package libpoolcreator

import (
	"context"
	"math/big"

	"github.com/pkg/errors"
	"github.com/poolforge/poolcreator/app/appmessage"
	"github.com/poolforge/poolcreator/cmd/poolcreator/keys"
	"github.com/poolforge/poolcreator/domain/ledger/model/externalapi"
	"github.com/poolforge/poolcreator/domain/ledger/ptb"
	"github.com/poolforge/poolcreator/domain/ledger/utils/serialization"
	"github.com/poolforge/poolcreator/domain/netconfig"
)

// LedgerClient is the read and submit API of a ledger node
type LedgerClient interface {
	GetCoins(ctx context.Context, owner externalapi.Address, coinType string,
		cursor *string, limit uint) (*appmessage.GetCoinsResponse, error)
	GetCoinMetadata(ctx context.Context, coinType string) (*appmessage.CoinMetadata, error)
	GetReferenceGasPrice(ctx context.Context) (uint64, error)
	ExecuteTransactionBlock(ctx context.Context, txBytes string, signatures []string,
		options *appmessage.TransactionBlockResponseOptions,
		requestType appmessage.ExecuteTransactionRequestType) (*appmessage.TransactionBlockResponse, error)
	GetTransactionBlock(ctx context.Context, digest externalapi.Digest,
		options *appmessage.TransactionBlockResponseOptions) (*appmessage.TransactionBlockResponse, error)
}

// Defaults of the pool creation call
const (
	DefaultPackageID    = "0x0c7ae833c220aa73a3643a0d508afa4ac5d50d97312ea4584e35f9eb21b9df12"
	DefaultModule       = "pool_creator"
	DefaultFunction     = "create_pool_v2"
	DefaultSender       = "0x26c25b83e42a5dd4af29b28db94eacc2caa037d6f311d17b8d7975f50ce4a451"
	DefaultGlobalConfig = "0x9774e359588ead122af1c7e7f64e14ade261cfeecdb5d0eb4a5b3b4c8ab8bd3e"
	DefaultPools        = "0x50eb61dd5928cec5ea04711a2e9b72e5237e79e9fbcd2ce3d5469dc8708e0ee2"
	DefaultTickSpacing  = 60
	DefaultGasBudget    = 10_000_000
)

// PoolConfig is the complete configuration of one pool creation
type PoolConfig struct {
	PackageID externalapi.PackageID
	Module    string
	Function  string
	Sender    externalapi.Address

	// GlobalConfig and Pools identify the protocol's shared objects. They are
	// passed to the call as strings.
	GlobalConfig    string
	Pools           string
	TickSpacing     uint32
	InitializePrice *big.Int
	URL             string
	TickLower       uint32
	FixAmountA      bool

	CoinTypeA string
	CoinTypeB string
	AmountA   uint64
	AmountB   uint64

	// CoinObjectKind is how the pool coins are passed: ImmOrOwned or
	// Receiving. Receiving coins cannot be merged, so each must cover its
	// amount on its own.
	CoinObjectKind externalapi.ObjectArgKind

	ClockTimestampMs uint64

	GasCoinType string
	GasBudget   uint64

	CoinPageSize uint
	MaxCoinPages int

	Policy          ConfirmationPolicy
	ResponseOptions *ResponseOptions
}

// DefaultPoolConfig returns the configuration of a pool creation on netParams
// with every parameter at its default
func DefaultPoolConfig(netParams *netconfig.Params) (*PoolConfig, error) {
	packageID, err := externalapi.ObjectIDFromHex(DefaultPackageID)
	if err != nil {
		return nil, err
	}
	sender, err := externalapi.AddressFromHex(DefaultSender)
	if err != nil {
		return nil, err
	}
	gasBudget := uint64(DefaultGasBudget)
	if netParams.DefaultGasBudget != 0 {
		gasBudget = netParams.DefaultGasBudget
	}
	return &PoolConfig{
		PackageID:       packageID,
		Module:          DefaultModule,
		Function:        DefaultFunction,
		Sender:          sender,
		GlobalConfig:    DefaultGlobalConfig,
		Pools:           DefaultPools,
		TickSpacing:     DefaultTickSpacing,
		InitializePrice: big.NewInt(0),
		FixAmountA:      true,
		CoinObjectKind:  externalapi.ObjectArgReceiving,
		GasCoinType:     netParams.GasCoinType,
		GasBudget:       gasBudget,
		CoinPageSize:    DefaultCoinPageSize,
		Policy:          WaitForLocalExecution,
		ResponseOptions: FullContent(),
	}, nil
}

// Validate checks the configuration before any request is made. Coin types
// are rewritten in their canonical form.
func (cfg *PoolConfig) Validate() error {
	if !externalapi.IsValidIdentifier(cfg.Module) {
		return errors.Wrapf(ptb.ErrInvalidIdentifier, "module name %q", cfg.Module)
	}
	if !externalapi.IsValidIdentifier(cfg.Function) {
		return errors.Wrapf(ptb.ErrInvalidIdentifier, "function name %q", cfg.Function)
	}
	if cfg.GasBudget == 0 {
		return errors.Wrapf(externalapi.ErrInvalidGasData, "gas budget must be greater than 0")
	}
	if cfg.CoinTypeA == "" || cfg.CoinTypeB == "" {
		return errors.Errorf("both pool coin types are required")
	}
	for _, coinType := range []*string{&cfg.CoinTypeA, &cfg.CoinTypeB, &cfg.GasCoinType} {
		canonical, err := externalapi.CanonicalStructTag(*coinType)
		if err != nil {
			return errors.Wrapf(err, "invalid coin type %s", *coinType)
		}
		*coinType = canonical
	}
	if cfg.CoinObjectKind != externalapi.ObjectArgImmOrOwned && cfg.CoinObjectKind != externalapi.ObjectArgReceiving {
		return errors.Errorf("pool coins must be passed as owned or receiving objects")
	}
	if cfg.InitializePrice == nil {
		return errors.Errorf("an initialize price is required")
	}
	return nil
}

// PoolTransaction is a finished, unsigned pool creation transaction with
// everything that was fetched to build it
type PoolTransaction struct {
	Data      *externalapi.TransactionData
	GasCoins  *CoinSelection
	CoinsA    *CoinSelection
	CoinsB    *CoinSelection
	MetadataA *serialization.CoinMetadata
	MetadataB *serialization.CoinMetadata
	GasPrice  uint64
}

// BuildPoolTransaction selects coins, fetches metadata and the reference gas
// price, and builds the unsigned pool creation transaction
func BuildPoolTransaction(ctx context.Context, client LedgerClient, cfg *PoolConfig) (*PoolTransaction, error) {
	onEnd := log.LogAndMeasureExecutionTime("BuildPoolTransaction")
	defer onEnd()

	err := cfg.Validate()
	if err != nil {
		return nil, err
	}

	selector := NewCoinSelector(client, cfg.Sender, cfg.CoinPageSize, cfg.MaxCoinPages)
	gasCoins, err := selector.SelectCoins(ctx, cfg.GasCoinType, cfg.GasBudget, false)
	if err != nil {
		return nil, errors.Wrapf(err, "error selecting the gas payment")
	}
	singleCoin := cfg.CoinObjectKind == externalapi.ObjectArgReceiving
	coinsA, err := selector.SelectCoins(ctx, cfg.CoinTypeA, cfg.AmountA, singleCoin)
	if err != nil {
		return nil, errors.Wrapf(err, "error selecting coin A")
	}
	coinsB, err := selector.SelectCoins(ctx, cfg.CoinTypeB, cfg.AmountB, singleCoin)
	if err != nil {
		return nil, errors.Wrapf(err, "error selecting coin B")
	}

	metadataA, err := FetchCoinMetadata(ctx, client, cfg.CoinTypeA)
	if err != nil {
		return nil, err
	}
	metadataB, err := FetchCoinMetadata(ctx, client, cfg.CoinTypeB)
	if err != nil {
		return nil, err
	}

	transaction, err := buildPoolProgrammableTransaction(cfg, coinsA, coinsB, metadataA, metadataB)
	if err != nil {
		return nil, err
	}

	gasPrice, err := ReferenceGasPrice(ctx, client)
	if err != nil {
		return nil, err
	}

	data, err := externalapi.NewProgrammableTransactionData(cfg.Sender, gasCoins.Refs(), transaction,
		cfg.GasBudget, gasPrice)
	if err != nil {
		return nil, err
	}

	return &PoolTransaction{
		Data:      data,
		GasCoins:  gasCoins,
		CoinsA:    coinsA,
		CoinsB:    coinsB,
		MetadataA: metadataA,
		MetadataB: metadataB,
		GasPrice:  gasPrice,
	}, nil
}

func buildPoolProgrammableTransaction(cfg *PoolConfig, coinsA, coinsB *CoinSelection,
	metadataA, metadataB *serialization.CoinMetadata) (*externalapi.ProgrammableTransaction, error) {

	initializePrice, err := serialization.NewU128FromBig(cfg.InitializePrice)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid initialize price")
	}

	builder := ptb.NewBuilder()
	arguments := make([]ptb.Argument, 0, 12)
	appendPure := func(value serialization.Value) error {
		argument, err := builder.Pure(value)
		if err != nil {
			return err
		}
		arguments = append(arguments, argument)
		return nil
	}
	appendCoin := func(coin *appmessage.Coin) error {
		argument, err := builder.Object(&ptb.ObjectArg{Kind: cfg.CoinObjectKind, Ref: coin.Ref()})
		if err != nil {
			return err
		}
		arguments = append(arguments, argument)
		return nil
	}

	leadingValues := []serialization.Value{
		serialization.String(cfg.GlobalConfig),
		serialization.String(cfg.Pools),
		serialization.U32(cfg.TickSpacing),
		initializePrice,
		serialization.String(cfg.URL),
		serialization.U32(cfg.TickLower),
	}
	for _, value := range leadingValues {
		err := appendPure(value)
		if err != nil {
			return nil, err
		}
	}
	err = appendCoin(coinsA.Primary())
	if err != nil {
		return nil, err
	}
	err = appendCoin(coinsB.Primary())
	if err != nil {
		return nil, err
	}
	trailingValues := []serialization.Value{
		metadataA,
		metadataB,
		serialization.Bool(cfg.FixAmountA),
		serialization.NewClock(cfg.ClockTimestampMs),
	}
	for _, value := range trailingValues {
		err := appendPure(value)
		if err != nil {
			return nil, err
		}
	}

	const coinASlot, coinBSlot = 6, 7
	for _, merge := range []struct {
		destination ptb.Argument
		selection   *CoinSelection
	}{
		{arguments[coinASlot], coinsA},
		{arguments[coinBSlot], coinsB},
	} {
		if len(merge.selection.Coins) < 2 {
			continue
		}
		sources := make([]ptb.Argument, 0, len(merge.selection.Coins)-1)
		for _, coin := range merge.selection.Coins[1:] {
			source, err := builder.Object(&ptb.ObjectArg{Kind: externalapi.ObjectArgImmOrOwned, Ref: coin.Ref()})
			if err != nil {
				return nil, err
			}
			sources = append(sources, source)
		}
		_, err := builder.MergeCoins(merge.destination, sources)
		if err != nil {
			return nil, err
		}
		log.Debugf("Merging %d extra %s coins into %s", len(sources), merge.selection.CoinType,
			merge.selection.Primary().CoinObjectID)
	}

	_, err = builder.MoveCall(cfg.PackageID, cfg.Module, cfg.Function, nil, arguments)
	if err != nil {
		return nil, err
	}
	return builder.Finish()
}

// CreatePool builds, signs and submits the pool creation transaction
func CreatePool(ctx context.Context, client LedgerClient, keystore keys.Keystore,
	cfg *PoolConfig) (*ExecutionResponse, error) {

	poolTransaction, err := BuildPoolTransaction(ctx, client, cfg)
	if err != nil {
		return nil, err
	}

	signed, err := Sign(keystore, poolTransaction.Data)
	if err != nil {
		return nil, err
	}
	log.Infof("Signed transaction %s paying gas %d at price %d", signed.Digest,
		cfg.GasBudget, poolTransaction.GasPrice)

	options := cfg.ResponseOptions
	if options == nil {
		options = FullContent()
	}
	return Submit(ctx, client, signed, options, cfg.Policy)
}
