package main

import (
	"context"

	"github.com/pkg/errors"
	"github.com/poolforge/poolcreator/cmd/poolcreator/libpoolcreator"
	"github.com/poolforge/poolcreator/domain/ledger/model/externalapi"
)

func txStatus(conf *txStatusConfig) error {
	digest, err := externalapi.DigestFromBase58(conf.Digest)
	if err != nil {
		return errors.Wrapf(err, "invalid digest")
	}

	client, err := connectToRPC(conf.NetParams(), &conf.RPCFlags)
	if err != nil {
		return err
	}
	defer client.Close()

	response, err := libpoolcreator.QueryTransaction(context.Background(), client, digest, libpoolcreator.FullContent())
	if err != nil {
		return err
	}
	printExecutionResponse(response)
	return nil
}
