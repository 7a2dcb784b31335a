package rpcclient

import (
	"context"

	"github.com/poolforge/poolcreator/app/appmessage"
	"github.com/poolforge/poolcreator/domain/ledger/model/externalapi"
)

// GetCoins sends an RPC request respective to the function's name and returns the RPC server's response.
// A nil cursor requests the first page.
func (c *RPCClient) GetCoins(ctx context.Context, owner externalapi.Address, coinType string,
	cursor *string, limit uint) (*appmessage.GetCoinsResponse, error) {

	var response appmessage.GetCoinsResponse
	err := c.call(ctx, &response, "suix_getCoins", owner.String(), coinType, cursor, limit)
	if err != nil {
		return nil, err
	}
	return &response, nil
}
