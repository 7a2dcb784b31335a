package rpcclient

import (
	"context"

	"github.com/poolforge/poolcreator/app/appmessage"
)

// GetReferenceGasPrice sends an RPC request respective to the function's name and returns the RPC server's response
func (c *RPCClient) GetReferenceGasPrice(ctx context.Context) (uint64, error) {
	var response appmessage.BigInt
	err := c.call(ctx, &response, "suix_getReferenceGasPrice")
	if err != nil {
		return 0, err
	}
	return uint64(response), nil
}
