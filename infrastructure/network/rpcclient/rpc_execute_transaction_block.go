package rpcclient

import (
	"context"

	"github.com/poolforge/poolcreator/app/appmessage"
)

// ExecuteTransactionBlock sends an RPC request respective to the function's name and returns the RPC server's response.
// txBytes and every signature are base64 encoded.
func (c *RPCClient) ExecuteTransactionBlock(ctx context.Context, txBytes string, signatures []string,
	options *appmessage.TransactionBlockResponseOptions,
	requestType appmessage.ExecuteTransactionRequestType) (*appmessage.TransactionBlockResponse, error) {

	var response appmessage.TransactionBlockResponse
	err := c.call(ctx, &response, "sui_executeTransactionBlock", txBytes, signatures, options, requestType)
	if err != nil {
		return nil, err
	}
	return &response, nil
}
