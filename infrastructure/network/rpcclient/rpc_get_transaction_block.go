package rpcclient

import (
	"context"

	"github.com/poolforge/poolcreator/app/appmessage"
	"github.com/poolforge/poolcreator/domain/ledger/model/externalapi"
)

// GetTransactionBlock sends an RPC request respective to the function's name and returns the RPC server's response
func (c *RPCClient) GetTransactionBlock(ctx context.Context, digest externalapi.Digest,
	options *appmessage.TransactionBlockResponseOptions) (*appmessage.TransactionBlockResponse, error) {

	var response appmessage.TransactionBlockResponse
	err := c.call(ctx, &response, "sui_getTransactionBlock", digest.String(), options)
	if err != nil {
		return nil, err
	}
	return &response, nil
}
