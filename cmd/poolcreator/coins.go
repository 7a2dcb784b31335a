package main

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/poolforge/poolcreator/cmd/poolcreator/libpoolcreator"
	"github.com/poolforge/poolcreator/domain/ledger/model/externalapi"
)

func coins(conf *coinsConfig) error {
	owner, err := externalapi.AddressFromHex(conf.Address)
	if err != nil {
		return errors.Wrapf(err, "invalid address")
	}
	coinType := conf.CoinType
	if coinType == "" {
		coinType = conf.NetParams().GasCoinType
	}

	client, err := connectToRPC(conf.NetParams(), &conf.RPCFlags)
	if err != nil {
		return err
	}
	defer client.Close()

	ctx := context.Background()
	metadata, err := libpoolcreator.FetchCoinMetadata(ctx, client, coinType)
	if err != nil {
		log.Warnf("Could not fetch the metadata of %s: %s", coinType, err)
	}

	iterator := libpoolcreator.NewCoinIterator(client, owner, coinType, conf.PageSize)
	var total uint64
	count := 0
	for pages := 0; !iterator.Done() && (conf.MaxPages == 0 || pages < conf.MaxPages); pages++ {
		page, err := iterator.NextPage(ctx)
		if err != nil {
			return err
		}
		for _, coin := range page {
			fmt.Printf("%s\t%d\n", coin.Ref(), coin.Balance)
			total += uint64(coin.Balance)
			count++
		}
	}

	symbol := coinType
	if metadata != nil {
		symbol = metadata.Symbol
	}
	fmt.Printf("\nTotal:\t%d %s in %d coins\n", total, symbol, count)
	if !iterator.Done() {
		fmt.Printf("More coins are available, raise --max-pages to list them\n")
	}
	return nil
}
