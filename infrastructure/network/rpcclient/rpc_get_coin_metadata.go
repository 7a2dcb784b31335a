package rpcclient

import (
	"context"

	"github.com/poolforge/poolcreator/app/appmessage"
)

// GetCoinMetadata sends an RPC request respective to the function's name and returns the RPC server's response.
// It returns nil if the coin type has no metadata.
func (c *RPCClient) GetCoinMetadata(ctx context.Context, coinType string) (*appmessage.CoinMetadata, error) {
	var response *appmessage.CoinMetadata
	err := c.call(ctx, &response, "suix_getCoinMetadata", coinType)
	if err != nil {
		return nil, err
	}
	return response, nil
}
