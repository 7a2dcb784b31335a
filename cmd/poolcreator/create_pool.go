package main

import (
	"context"
	"encoding/base64"
	"fmt"
	"math/big"

	"github.com/pkg/errors"
	"github.com/poolforge/poolcreator/cmd/poolcreator/libpoolcreator"
	"github.com/poolforge/poolcreator/domain/ledger/model/externalapi"
	"github.com/poolforge/poolcreator/domain/ledger/utils/serialization"
	"github.com/poolforge/poolcreator/infrastructure/os/signal"
)

func createPool(conf *createPoolConfig) error {
	poolConfig, err := poolConfigFromFlags(conf)
	if err != nil {
		return err
	}

	client, err := connectToRPC(conf.NetParams(), &conf.RPCFlags)
	if err != nil {
		return err
	}
	defer client.Close()

	ctx, cancel := signal.InterruptContext(context.Background())
	defer cancel()

	if conf.DryRun {
		poolTransaction, err := libpoolcreator.BuildPoolTransaction(ctx, client, poolConfig)
		if err != nil {
			return err
		}
		return printPoolTransaction(poolTransaction)
	}

	keystore, err := openKeystore(&conf.KeystoreFlags)
	if err != nil {
		return err
	}

	var response *libpoolcreator.ExecutionResponse
	doneChan := make(chan struct{})
	spawn("createPool", func() {
		defer close(doneChan)
		response, err = libpoolcreator.CreatePool(ctx, client, keystore, poolConfig)
	})
	<-doneChan

	if err != nil {
		var timeoutError *libpoolcreator.ConfirmationTimeoutError
		if errors.As(err, &timeoutError) {
			fmt.Printf("The transaction %s was submitted but its outcome is unknown.\n", timeoutError.Digest)
			fmt.Printf("Check it with: poolcreator %s --digest %s\n", txStatusSubCmd, timeoutError.Digest)
		}
		return err
	}

	printExecutionResponse(response)
	return nil
}

func poolConfigFromFlags(conf *createPoolConfig) (*libpoolcreator.PoolConfig, error) {
	poolConfig, err := libpoolcreator.DefaultPoolConfig(conf.NetParams())
	if err != nil {
		return nil, err
	}

	if conf.PackageID != "" {
		poolConfig.PackageID, err = externalapi.ObjectIDFromHex(conf.PackageID)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid package id")
		}
	}
	if conf.Module != "" {
		poolConfig.Module = conf.Module
	}
	if conf.Function != "" {
		poolConfig.Function = conf.Function
	}
	if conf.Sender != "" {
		poolConfig.Sender, err = externalapi.AddressFromHex(conf.Sender)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid sender")
		}
	}
	if conf.GlobalConfig != "" {
		poolConfig.GlobalConfig = conf.GlobalConfig
	}
	if conf.Pools != "" {
		poolConfig.Pools = conf.Pools
	}
	if conf.TickSpacing != 0 {
		poolConfig.TickSpacing = conf.TickSpacing
	}
	if conf.InitializePrice != "" {
		initializePrice, ok := new(big.Int).SetString(conf.InitializePrice, 10)
		if !ok {
			return nil, errors.Errorf("invalid initialize price %s", conf.InitializePrice)
		}
		_, err := serialization.NewU128FromBig(initializePrice)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid initialize price %s", conf.InitializePrice)
		}
		poolConfig.InitializePrice = initializePrice
	}
	poolConfig.URL = conf.URL
	poolConfig.TickLower = conf.TickLower
	poolConfig.FixAmountA = !conf.FixAmountB

	poolConfig.CoinTypeA = conf.CoinTypeA
	poolConfig.CoinTypeB = conf.CoinTypeB
	poolConfig.AmountA = conf.AmountA
	poolConfig.AmountB = conf.AmountB
	if conf.OwnedCoins {
		poolConfig.CoinObjectKind = externalapi.ObjectArgImmOrOwned
	}
	poolConfig.ClockTimestampMs = conf.ClockTimestampMs

	if conf.GasCoinType != "" {
		poolConfig.GasCoinType = conf.GasCoinType
	}
	if conf.GasBudget != 0 {
		poolConfig.GasBudget = conf.GasBudget
	}
	if conf.CoinPageSize != 0 {
		poolConfig.CoinPageSize = conf.CoinPageSize
	}
	poolConfig.MaxCoinPages = conf.MaxCoinPages

	poolConfig.Policy, err = libpoolcreator.ParseConfirmationPolicy(conf.Policy)
	if err != nil {
		return nil, err
	}

	err = poolConfig.Validate()
	if err != nil {
		return nil, err
	}
	return poolConfig, nil
}

func printPoolTransaction(poolTransaction *libpoolcreator.PoolTransaction) error {
	txBytes, err := serialization.SerializeTransactionData(poolTransaction.Data)
	if err != nil {
		return err
	}

	fmt.Printf("Gas price:\t%d\n", poolTransaction.GasPrice)
	printCoinSelection("Gas coins", poolTransaction.GasCoins)
	printCoinSelection("Coins A", poolTransaction.CoinsA)
	printCoinSelection("Coins B", poolTransaction.CoinsB)
	fmt.Printf("Metadata A:\t%s (%d decimals)\n", poolTransaction.MetadataA.Symbol, poolTransaction.MetadataA.Decimals)
	fmt.Printf("Metadata B:\t%s (%d decimals)\n", poolTransaction.MetadataB.Symbol, poolTransaction.MetadataB.Decimals)
	fmt.Printf("\nUnsigned transaction (base64):\n%s\n", base64.StdEncoding.EncodeToString(txBytes))
	return nil
}

func printCoinSelection(title string, selection *libpoolcreator.CoinSelection) {
	fmt.Printf("%s:\t%d %s in %d coins\n", title, selection.Total, selection.CoinType, len(selection.Coins))
	for _, coin := range selection.Coins {
		fmt.Printf("\t%s\n", coin.Ref())
	}
}

func printExecutionResponse(response *libpoolcreator.ExecutionResponse) {
	fmt.Printf("Transaction digest:\t%s\n", response.Digest)
	if !response.EffectsDigest.IsZero() {
		fmt.Printf("Effects digest:\t\t%s\n", response.EffectsDigest)
	}
	if response.Response != nil && response.Response.Effects != nil {
		fmt.Printf("Status:\t\t\t%s\n", response.Response.Effects.Status.Status)
	}
	if response.Response != nil && response.Response.Effects != nil && response.Response.Effects.GasUsed != nil {
		gasUsed := response.Response.Effects.GasUsed
		fmt.Printf("Gas used:\t\tcomputation %d, storage %d, rebate %d\n",
			gasUsed.ComputationCost, gasUsed.StorageCost, gasUsed.StorageRebate)
	}
	if response.Response != nil && response.Response.Checkpoint != nil {
		fmt.Printf("Checkpoint:\t\t%d\n", *response.Response.Checkpoint)
	}
}
